package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kendall-kelly/warranty-dispatch-api/cache"
	"github.com/kendall-kelly/warranty-dispatch-api/config"
)

// TestHealthCheck is a unit test for the healthCheck handler function
func TestHealthCheck(t *testing.T) {
	// Set Gin to test mode
	gin.SetMode(gin.TestMode)

	// Create a test context and response recorder
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	// Call the handler
	healthCheck(c)

	// Assert the status code
	assert.Equal(t, http.StatusOK, w.Code, "Expected status code 200")

	// Parse the response body
	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(t, err, "Response should be valid JSON")

	// Assert the response structure
	assert.Equal(t, true, response["success"], "Expected success to be true")
	assert.Equal(t, "Warranty Dispatch API is running", response["message"], "Expected correct message")
}

// TestHealthCheckResponseFormat tests the exact JSON format
func TestHealthCheckResponseFormat(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	healthCheck(c)

	// Verify JSON content type
	assert.Equal(t, "application/json; charset=utf-8", w.Header().Get("Content-Type"))

	// Verify response has exactly 2 fields
	var response map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &response)
	assert.Len(t, response, 2, "Response should have exactly 2 fields")
	assert.Contains(t, response, "success")
	assert.Contains(t, response, "message")
}

func TestCorsConfig(t *testing.T) {
	cfg := &config.Config{CORSOrigins: []string{"http://localhost:5173"}}
	corsCfg := corsConfig(cfg)
	assert.Equal(t, []string{"http://localhost:5173"}, corsCfg.AllowOrigins)
	assert.False(t, corsCfg.AllowAllOrigins)
	assert.True(t, corsCfg.AllowCredentials)
	assert.Contains(t, corsCfg.ExposeHeaders, "Content-Disposition")

	corsCfg = corsConfig(&config.Config{})
	assert.True(t, corsCfg.AllowAllOrigins)
	assert.False(t, corsCfg.AllowCredentials)
	assert.Empty(t, corsCfg.AllowOrigins)
}

func TestOpenCache_DefaultsToMemory(t *testing.T) {
	snapshots, closeCache, err := openCache(context.Background(), &config.Config{CacheTTL: time.Minute})
	require.NoError(t, err)
	defer closeCache()

	_, ok := snapshots.(*cache.MemoryCache)
	assert.True(t, ok, "Without REDIS_ADDR the in-process cache should be used")
}

func TestDatabaseStatus_NoConnection(t *testing.T) {
	gin.SetMode(gin.TestMode)
	previous := config.GetDB()
	config.SetDB(nil)
	defer config.SetDB(previous)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/v1/database/status", nil)

	databaseStatus(c)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
