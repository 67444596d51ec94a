package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/yourorg/bloodlink/internal/domain"
	"github.com/yourorg/bloodlink/internal/security/audit"
	"github.com/yourorg/bloodlink/internal/security/middleware"
	"github.com/yourorg/bloodlink/internal/service"
)

// BloodRequestHandler exposes CRUD endpoints for blood requests
type BloodRequestHandler struct {
	requests *service.BloodRequestService
	audit    *audit.Logger
	logger   *slog.Logger
}

// NewBloodRequestHandler creates a new blood request handler
func NewBloodRequestHandler(requests *service.BloodRequestService, auditLog *audit.Logger, logger *slog.Logger) *BloodRequestHandler {
	return &BloodRequestHandler{
		requests: requests,
		audit:    auditLog,
		logger:   logger,
	}
}

// Create handles POST /api/v1/blood-requests (public)
func (h *BloodRequestHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input service.BloodRequestInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		h.logger.Debug("failed to decode blood request", slog.String("error", err.Error()))
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	req, err := h.requests.Create(r.Context(), input)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"message":      "blood request created successfully",
		"bloodRequest": req,
	})
}

// List handles GET /api/v1/blood-requests (public)
func (h *BloodRequestHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := domain.BloodRequestFilter{
		UrgencyLevel: q.Get("urgencyLevel"),
		BloodGroup:   q.Get("bloodGroup"),
	}

	page := parseQueryInt(q.Get("page"), 1)
	limit := parseQueryInt(q.Get("limit"), 10)

	result, err := h.requests.List(r.Context(), filter, page, limit)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"bloodRequests": result.Requests,
		"totalPages":    result.TotalPages,
		"currentPage":   result.CurrentPage,
	})
}

// Get handles GET /api/v1/blood-requests/{id} (public)
func (h *BloodRequestHandler) Get(w http.ResponseWriter, r *http.Request) {
	req, err := h.requests.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, req)
}

// Update handles PUT /api/v1/blood-requests/{id} (auth required)
func (h *BloodRequestHandler) Update(w http.ResponseWriter, r *http.Request) {
	var patch service.BloodRequestPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	req, err := h.requests.Update(r.Context(), r.PathValue("id"), patch)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message":      "blood request updated",
		"bloodRequest": req,
	})
}

// Delete handles DELETE /api/v1/blood-requests/{id} (auth required)
func (h *BloodRequestHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := h.requests.Delete(r.Context(), id); err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	if claims := middleware.GetClaimsFromContext(r.Context()); claims != nil {
		h.audit.LogDeletion(r.Context(), claims.DonorID, "blood_request", id, "success")
	}
	writeJSON(w, http.StatusOK, map[string]any{"message": "blood request deleted"})
}

func parseQueryInt(raw string, fallback int64) int64 {
	if raw == "" {
		return fallback
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || n < 1 {
		return fallback
	}
	return n
}
