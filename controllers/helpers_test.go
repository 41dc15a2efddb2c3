package controllers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/kendall-kelly/warranty-dispatch-api/cache"
	"github.com/kendall-kelly/warranty-dispatch-api/config"
	"github.com/kendall-kelly/warranty-dispatch-api/models"
	"github.com/kendall-kelly/warranty-dispatch-api/services"
	"github.com/kendall-kelly/warranty-dispatch-api/validation"
)

var testNow = time.Date(2024, 3, 5, 9, 30, 0, 0, time.UTC)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), config.QuietGormConfig())
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&models.Order{}, &models.Technician{}); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}
	return db
}

// setupTestRouter wires a fresh database, cache and dispatch service behind
// the API routes
func setupTestRouter(t *testing.T) (*gin.Engine, *services.DispatchService) {
	gin.SetMode(gin.TestMode)
	require.NoError(t, validation.Register())

	db := setupTestDB(t)
	config.SetDB(db)
	config.SetConfig(&config.Config{WeekStartDay: time.Monday})

	dispatch := services.InitDispatchService(db, cache.NewMemoryCache(0))
	tick := 0
	dispatch.SetClock(func() time.Time {
		tick++
		return testNow.Add(time.Duration(tick) * time.Second)
	})
	services.SetExportService(nil)

	router := gin.New()
	RegisterRoutes(router.Group("/api/v1"))
	return router, dispatch
}

func performRequest(router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		payload, _ := json.Marshal(body)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, _ := http.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response), "Response should be valid JSON: %s", w.Body.String())
	return response
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	response := decodeResponse(t, w)
	errBody, ok := response["error"].(map[string]interface{})
	require.True(t, ok, "expected error envelope, got %s", w.Body.String())
	return errBody["code"].(string)
}

func strPtr(s string) *string {
	return &s
}
