package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/yourorg/bloodlink/internal/domain"
	"github.com/yourorg/bloodlink/internal/observability/metrics"
	"github.com/yourorg/bloodlink/internal/validation"
)

const (
	defaultPage  = 1
	defaultLimit = 10
	maxLimit     = 100
)

// BloodRequestService handles creation and CRUD over blood requests
type BloodRequestService struct {
	repo      domain.BloodRequestRepository
	validator *validation.Validator
	logger    *slog.Logger
}

// NewBloodRequestService creates a new blood request service
func NewBloodRequestService(repo domain.BloodRequestRepository, validator *validation.Validator, logger *slog.Logger) *BloodRequestService {
	if logger == nil {
		logger = slog.Default()
	}
	if validator == nil {
		validator = validation.NewValidator()
	}

	return &BloodRequestService{
		repo:      repo,
		validator: validator,
		logger:    logger,
	}
}

// BloodRequestInput carries the fields accepted at creation
type BloodRequestInput struct {
	PatientName           string    `json:"patientName"`
	BloodGroup            string    `json:"bloodGroup"`
	UrgencyLevel          string    `json:"urgencyLevel"`
	UnitsNeeded           int       `json:"unitsNeeded"`
	RequiredBy            time.Time `json:"requiredBy"`
	HospitalName          string    `json:"hospitalName"`
	DoctorName            string    `json:"doctorName"`
	PrimaryContact        string    `json:"primaryContact"`
	EmergencyContact      string    `json:"emergencyContact"`
	Location              string    `json:"location"`
	MedicalReason         string    `json:"medicalReason"`
	AdditionalInformation string    `json:"additionalInformation"`
	DetailsDescription    string    `json:"detailsDescription"`
}

// BloodRequestPatch carries partial updates; nil fields are left unchanged
type BloodRequestPatch struct {
	PatientName           *string    `json:"patientName"`
	BloodGroup            *string    `json:"bloodGroup"`
	UrgencyLevel          *string    `json:"urgencyLevel"`
	UnitsNeeded           *int       `json:"unitsNeeded"`
	RequiredBy            *time.Time `json:"requiredBy"`
	HospitalName          *string    `json:"hospitalName"`
	DoctorName            *string    `json:"doctorName"`
	PrimaryContact        *string    `json:"primaryContact"`
	EmergencyContact      *string    `json:"emergencyContact"`
	Location              *string    `json:"location"`
	MedicalReason         *string    `json:"medicalReason"`
	AdditionalInformation *string    `json:"additionalInformation"`
	DetailsDescription    *string    `json:"detailsDescription"`
}

// BloodRequestPage is a page of listed requests
type BloodRequestPage struct {
	Requests    []*domain.BloodRequest
	TotalPages  int64
	CurrentPage int64
}

// Create validates and persists a new blood request
func (s *BloodRequestService) Create(ctx context.Context, input BloodRequestInput) (*domain.BloodRequest, error) {
	req := &domain.BloodRequest{
		PatientName:           strings.TrimSpace(input.PatientName),
		BloodGroup:            input.BloodGroup,
		UrgencyLevel:          input.UrgencyLevel,
		UnitsNeeded:           input.UnitsNeeded,
		RequiredBy:            input.RequiredBy,
		HospitalName:          strings.TrimSpace(input.HospitalName),
		DoctorName:            strings.TrimSpace(input.DoctorName),
		PrimaryContact:        strings.TrimSpace(input.PrimaryContact),
		EmergencyContact:      strings.TrimSpace(input.EmergencyContact),
		Location:              strings.TrimSpace(input.Location),
		MedicalReason:         strings.TrimSpace(input.MedicalReason),
		AdditionalInformation: strings.TrimSpace(input.AdditionalInformation),
		DetailsDescription:    strings.TrimSpace(input.DetailsDescription),
	}

	if err := s.validator.ValidateBloodRequest(req); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, req); err != nil {
		return nil, err
	}

	metrics.ObserveBloodRequestCreated(req.UrgencyLevel)
	s.logger.Info("blood request created",
		slog.String("id", req.ID.Hex()),
		slog.String("urgency", req.UrgencyLevel),
		slog.String("blood_group", req.BloodGroup),
	)

	return req, nil
}

// List returns a page of blood requests, newest first
func (s *BloodRequestService) List(ctx context.Context, filter domain.BloodRequestFilter, page, limit int64) (*BloodRequestPage, error) {
	page, limit = normalizePaging(page, limit)

	requests, total, err := s.repo.List(ctx, filter, page, limit)
	if err != nil {
		return nil, err
	}

	return &BloodRequestPage{
		Requests:    requests,
		TotalPages:  totalPages(total, limit),
		CurrentPage: page,
	}, nil
}

// Get retrieves a single blood request
func (s *BloodRequestService) Get(ctx context.Context, id string) (*domain.BloodRequest, error) {
	return s.repo.GetByID(ctx, id)
}

// Update applies a partial update and re-validates the whole document, so a
// patch can never move a record into an invalid state.
func (s *BloodRequestService) Update(ctx context.Context, id string, patch BloodRequestPatch) (*domain.BloodRequest, error) {
	req, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	applyBloodRequestPatch(req, patch)

	if err := s.validator.ValidateBloodRequest(req); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, req); err != nil {
		return nil, err
	}

	s.logger.Info("blood request updated", slog.String("id", id))
	return req, nil
}

// Delete removes a blood request
func (s *BloodRequestService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("blood request deleted", slog.String("id", id))
	return nil
}

func applyBloodRequestPatch(req *domain.BloodRequest, patch BloodRequestPatch) {
	if patch.PatientName != nil {
		req.PatientName = strings.TrimSpace(*patch.PatientName)
	}
	if patch.BloodGroup != nil {
		req.BloodGroup = *patch.BloodGroup
	}
	if patch.UrgencyLevel != nil {
		req.UrgencyLevel = *patch.UrgencyLevel
	}
	if patch.UnitsNeeded != nil {
		req.UnitsNeeded = *patch.UnitsNeeded
	}
	if patch.RequiredBy != nil {
		req.RequiredBy = *patch.RequiredBy
	}
	if patch.HospitalName != nil {
		req.HospitalName = strings.TrimSpace(*patch.HospitalName)
	}
	if patch.DoctorName != nil {
		req.DoctorName = strings.TrimSpace(*patch.DoctorName)
	}
	if patch.PrimaryContact != nil {
		req.PrimaryContact = strings.TrimSpace(*patch.PrimaryContact)
	}
	if patch.EmergencyContact != nil {
		req.EmergencyContact = strings.TrimSpace(*patch.EmergencyContact)
	}
	if patch.Location != nil {
		req.Location = strings.TrimSpace(*patch.Location)
	}
	if patch.MedicalReason != nil {
		req.MedicalReason = strings.TrimSpace(*patch.MedicalReason)
	}
	if patch.AdditionalInformation != nil {
		req.AdditionalInformation = strings.TrimSpace(*patch.AdditionalInformation)
	}
	if patch.DetailsDescription != nil {
		req.DetailsDescription = strings.TrimSpace(*patch.DetailsDescription)
	}
}

func normalizePaging(page, limit int64) (int64, int64) {
	if page < 1 {
		page = defaultPage
	}
	if limit < 1 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	return page, limit
}

func totalPages(total, limit int64) int64 {
	if total == 0 {
		return 0
	}
	return (total + limit - 1) / limit
}
