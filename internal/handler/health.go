package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/yourorg/bloodlink/internal/infrastructure/mongo"
)

// HealthHandler handles health check endpoints
type HealthHandler struct {
	store  *mongo.Client
	logger *slog.Logger
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(store *mongo.Client, logger *slog.Logger) *HealthHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &HealthHandler{
		store:  store,
		logger: logger,
	}
}

// HealthResponse represents the health status response
type HealthResponse struct {
	Status string `json:"status"`
}

// ReadinessResponse represents the readiness check response
type ReadinessResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// Health handles GET /healthz - Simple liveness check
// Returns 200 if the server is running
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(HealthResponse{Status: "ok"})
}

// Ready handles GET /readyz - Readiness check for Kubernetes
// Returns 200 only if the document store answers a ping
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	checks := make(map[string]string)

	mongoOK := false
	if h.store != nil {
		if err := h.store.Ping(ctx); err == nil {
			checks["mongodb"] = "ok"
			mongoOK = true
		} else {
			checks["mongodb"] = "error: " + err.Error()
		}
	} else {
		checks["mongodb"] = "not configured"
	}

	status := "ready"
	statusCode := http.StatusOK
	if !mongoOK {
		status = "not_ready"
		statusCode = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(ReadinessResponse{
		Status: status,
		Checks: checks,
	})

	if !mongoOK {
		h.logger.Warn("readiness check failed",
			slog.String("mongodb", checks["mongodb"]),
		)
	}
}
