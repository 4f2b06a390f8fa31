package handlers_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eshaffer321/contactbook/internal/api/dto"
	"github.com/eshaffer321/contactbook/internal/api/handlers"
)

func TestHealthHandler_ServeHTTP(t *testing.T) {
	t.Run("returns 200 OK with schema version", func(t *testing.T) {
		svc, repo := newTestService()
		repo.Version = 2
		handler := handlers.NewHealthHandler(svc, testLogger())

		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

		var response dto.HealthResponse
		err := json.NewDecoder(rec.Body).Decode(&response)
		require.NoError(t, err)

		assert.Equal(t, "ok", response.Status)
		assert.Equal(t, "ok", response.Database)
		assert.Equal(t, int64(2), response.SchemaVersion)
		assert.NotEmpty(t, response.Timestamp)
		assert.Empty(t, response.Error)
	})

	t.Run("returns 503 when the database is down", func(t *testing.T) {
		svc, repo := newTestService()
		repo.PingErr = errors.New("database is locked")
		handler := handlers.NewHealthHandler(svc, testLogger())

		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

		var response dto.HealthResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&response))
		assert.Equal(t, "degraded", response.Status)
		assert.Equal(t, "unavailable", response.Database)
		assert.Contains(t, response.Error, "database is locked")
	})
}
