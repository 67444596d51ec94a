package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/yourorg/bloodlink/internal/domain"
	"github.com/yourorg/bloodlink/internal/security/audit"
	"github.com/yourorg/bloodlink/internal/security/middleware"
	"github.com/yourorg/bloodlink/internal/service"
)

// ReportHandler exposes endpoints for abuse reports
type ReportHandler struct {
	reports *service.ReportService
	audit   *audit.Logger
	logger  *slog.Logger
}

// NewReportHandler creates a new report handler
func NewReportHandler(reports *service.ReportService, auditLog *audit.Logger, logger *slog.Logger) *ReportHandler {
	return &ReportHandler{
		reports: reports,
		audit:   auditLog,
		logger:  logger,
	}
}

// anonymousReportResponse is the reduced projection returned for anonymous
// reports: no identification, description, or evidence.
type anonymousReportResponse struct {
	ID             string    `json:"id"`
	UserType       string    `json:"userType"`
	ReportCategory string    `json:"reportCategory"`
	CreatedAt      time.Time `json:"createdAt"`
}

// Create handles POST /api/v1/reports (public)
func (h *ReportHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input service.ReportInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		h.logger.Debug("failed to decode report", slog.String("error", err.Error()))
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	report, err := h.reports.Create(r.Context(), input)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	var payload any = report
	if report.Anonymous {
		payload = anonymousReportResponse{
			ID:             report.ID.Hex(),
			UserType:       report.UserType,
			ReportCategory: report.ReportCategory,
			CreatedAt:      report.CreatedAt,
		}
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "report submitted successfully",
		"report":  payload,
	})
}

// List handles GET /api/v1/reports (public); identification is never included
func (h *ReportHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := domain.ReportFilter{Category: q.Get("category")}
	if raw := q.Get("anonymous"); raw != "" {
		anonymous := raw == "true"
		filter.Anonymous = &anonymous
	}

	page := parseQueryInt(q.Get("page"), 1)
	limit := parseQueryInt(q.Get("limit"), 10)

	result, err := h.reports.List(r.Context(), filter, page, limit)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"reports":     result.Reports,
		"totalPages":  result.TotalPages,
		"currentPage": result.CurrentPage,
	})
}

// Get handles GET /api/v1/reports/{id} (auth required)
func (h *ReportHandler) Get(w http.ResponseWriter, r *http.Request) {
	report, err := h.reports.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, report)
}

// Delete handles DELETE /api/v1/reports/{id} (auth required)
func (h *ReportHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := h.reports.Delete(r.Context(), id); err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	if claims := middleware.GetClaimsFromContext(r.Context()); claims != nil {
		h.audit.LogDeletion(r.Context(), claims.DonorID, "report", id, "success")
	}
	writeJSON(w, http.StatusOK, map[string]any{"message": "report deleted"})
}
