package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// startServer serves the full application router on a random local port
func startServer(t *testing.T) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(setupRouter(t))
	t.Cleanup(server.Close)
	return server
}

func getJSON(t *testing.T, client *http.Client, url string, out interface{}) *http.Response {
	t.Helper()
	resp, err := client.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(body, out), string(body))
	return resp
}

// TestAPIHealthEndpointAcceptance checks the health endpoint over a real connection
func TestAPIHealthEndpointAcceptance(t *testing.T) {
	server := startServer(t)

	var response struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}
	resp := getJSON(t, server.Client(), server.URL+"/api/v1/health", &response)

	assert.Equal(t, http.StatusOK, resp.StatusCode, "Health endpoint should return 200 OK")
	assert.True(t, response.Success, "Success field should be true")
	assert.Equal(t, "Warranty Dispatch API is running", response.Message)
}

// TestHealthEndpointAvailability tests that repeated requests keep succeeding
func TestHealthEndpointAvailability(t *testing.T) {
	server := startServer(t)

	for i := 0; i < 5; i++ {
		var response map[string]interface{}
		resp := getJSON(t, server.Client(), server.URL+"/api/v1/health", &response)
		assert.Equal(t, http.StatusOK, resp.StatusCode, fmt.Sprintf("Request %d should succeed", i+1))
		assert.Equal(t, true, response["success"], fmt.Sprintf("Request %d should have success=true", i+1))
	}
}

// TestHealthEndpointResponseTime tests that the endpoint responds quickly
func TestHealthEndpointResponseTime(t *testing.T) {
	server := startServer(t)

	start := time.Now()
	resp, err := server.Client().Get(server.URL + "/api/v1/health")
	duration := time.Since(start)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Less(t, duration, 500*time.Millisecond, "Health endpoint should answer well under a second")
}

// TestOrderRoundTripAcceptance creates an order over HTTP and reads it back
func TestOrderRoundTripAcceptance(t *testing.T) {
	server := startServer(t)
	client := server.Client()

	resp, err := client.Post(server.URL+"/api/v1/orders", "application/json",
		strings.NewReader(`{"title":"Heizung defekt","location":"Berlin","start_date":"2024-03-04T08:00:00Z"}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var created struct {
		Data struct {
			ID          string `json:"id"`
			OrderNumber string `json:"order_number"`
			StartDate   string `json:"start_date"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
	assert.True(t, strings.HasPrefix(created.Data.OrderNumber, "AUF-"))
	assert.Equal(t, "2024-03-04", created.Data.StartDate, "Dates are stored as calendar dates")

	var listed struct {
		Total int `json:"total"`
		Data  []struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	getJSON(t, client, server.URL+"/api/v1/orders?q=berlin", &listed)
	require.Equal(t, 1, listed.Total)
	assert.Equal(t, created.Data.ID, listed.Data[0].ID)
}
