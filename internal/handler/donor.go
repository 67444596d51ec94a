package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/yourorg/bloodlink/internal/domain"
	"github.com/yourorg/bloodlink/internal/security/audit"
	"github.com/yourorg/bloodlink/internal/security/middleware"
	"github.com/yourorg/bloodlink/internal/service"
)

// DonorHandler exposes registration, login, and profile endpoints
type DonorHandler struct {
	donors *service.DonorService
	audit  *audit.Logger
	logger *slog.Logger
}

// NewDonorHandler creates a new donor handler
func NewDonorHandler(donors *service.DonorService, auditLog *audit.Logger, logger *slog.Logger) *DonorHandler {
	return &DonorHandler{
		donors: donors,
		audit:  auditLog,
		logger: logger,
	}
}

// authResponse carries a token plus the redacted donor record
type authResponse struct {
	Message string        `json:"message"`
	Token   string        `json:"token"`
	Donor   *domain.Donor `json:"donor"`
}

// Register handles POST /api/v1/donor/register
func (h *DonorHandler) Register(w http.ResponseWriter, r *http.Request) {
	var input service.RegisterInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		h.logger.Debug("failed to decode register request", slog.String("error", err.Error()))
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.donors.Register(r.Context(), input)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	h.audit.LogRegistration(r.Context(), result.Donor.ID.Hex(), "success", "")
	writeJSON(w, http.StatusCreated, authResponse{
		Message: "donor registered successfully",
		Token:   result.Token,
		Donor:   result.Donor,
	})
}

// loginRequest represents login credentials
type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login handles POST /api/v1/donor/login
func (h *DonorHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "email and password required")
		return
	}

	result, err := h.donors.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.audit.LogLogin(r.Context(), "", "failed", "rejected credentials for "+req.Email)
		respondServiceError(w, h.logger, err)
		return
	}

	h.audit.LogLogin(r.Context(), result.Donor.ID.Hex(), "success", "")
	writeJSON(w, http.StatusOK, authResponse{
		Message: "login successful",
		Token:   result.Token,
		Donor:   result.Donor,
	})
}

// Profile handles GET /api/v1/donor/profile
func (h *DonorHandler) Profile(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaimsFromContext(r.Context())
	if claims == nil {
		writeError(w, http.StatusUnauthorized, "access token required")
		return
	}

	donor, err := h.donors.Profile(r.Context(), claims.DonorID)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, donor)
}
