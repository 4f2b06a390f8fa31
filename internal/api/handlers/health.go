package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/eshaffer321/contactbook/internal/api/dto"
)

// healthTimeout bounds the database check so a stuck store fails fast.
const healthTimeout = 2 * time.Second

// HealthChecker reports whether the contact store is usable.
type HealthChecker interface {
	CheckHealth(ctx context.Context) (int64, error)
}

// HealthHandler handles health check requests.
type HealthHandler struct {
	checker HealthChecker
	logger  *slog.Logger
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(checker HealthChecker, logger *slog.Logger) *HealthHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &HealthHandler{checker: checker, logger: logger}
}

// ServeHTTP handles the health check request.
// It answers 503 with status "degraded" when the database does not respond.
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
	defer cancel()

	response := dto.NewHealthResponse()
	status := http.StatusOK

	version, err := h.checker.CheckHealth(ctx)
	if err != nil {
		h.logger.Warn("health check failed", slog.Any("error", err))
		response.Status = "degraded"
		response.Database = "unavailable"
		response.Error = err.Error()
		status = http.StatusServiceUnavailable
	} else {
		response.Database = "ok"
		response.SchemaVersion = version
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(response)
}
