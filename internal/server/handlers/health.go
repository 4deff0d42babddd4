package handlers

import (
	"log/slog"
	"net/http"

	"github.com/tranphatthinh/gramctl/internal/apierrors"
	"github.com/tranphatthinh/gramctl/internal/storage"
)

// HealthHandler handles health check requests
type HealthHandler struct {
	store  storage.Store
	logger *slog.Logger
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(store storage.Store, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{
		store:  store,
		logger: logger,
	}
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status string                 `json:"status"`
	Checks map[string]CheckResult `json:"checks"`
}

// CheckResult represents a single health check result
type CheckResult struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// GetHealth handles GET /health
func (h *HealthHandler) GetHealth(w http.ResponseWriter, r *http.Request) {
	response := HealthResponse{
		Status: "healthy",
		Checks: make(map[string]CheckResult),
	}

	if err := h.store.Ping(r.Context()); err != nil {
		response.Checks["storage"] = CheckResult{
			Status:  "unhealthy",
			Message: err.Error(),
		}
		response.Status = "unhealthy"

		h.logger.Error("Health check failed: storage unhealthy", "error", err)

		apierrors.WriteJSON(w, http.StatusServiceUnavailable, response)
		return
	}

	response.Checks["storage"] = CheckResult{
		Status: "healthy",
	}

	apierrors.WriteJSON(w, http.StatusOK, response)
}
