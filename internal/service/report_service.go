package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/yourorg/bloodlink/internal/domain"
	"github.com/yourorg/bloodlink/internal/observability/metrics"
	"github.com/yourorg/bloodlink/internal/validation"
)

// ReportService handles abuse report creation, listing, reads, and deletion
type ReportService struct {
	repo      domain.ReportRepository
	validator *validation.Validator
	logger    *slog.Logger
}

// NewReportService creates a new report service
func NewReportService(repo domain.ReportRepository, validator *validation.Validator, logger *slog.Logger) *ReportService {
	if logger == nil {
		logger = slog.Default()
	}
	if validator == nil {
		validator = validation.NewValidator()
	}

	return &ReportService{
		repo:      repo,
		validator: validator,
		logger:    logger,
	}
}

// ReportInput carries the fields accepted at creation
type ReportInput struct {
	UserType            string `json:"userType"`
	UserIdentification  string `json:"userIdentification"`
	ReportCategory      string `json:"reportCategory"`
	DetailedDescription string `json:"detailedDescription"`
	SupportingEvidence  string `json:"supportingEvidence"`
	Anonymous           bool   `json:"anonymous"`
}

// ReportPage is a page of listed reports
type ReportPage struct {
	Reports     []*domain.Report
	TotalPages  int64
	CurrentPage int64
}

// Create validates and persists a report. For anonymous reports the
// identification is dropped before persistence, even when supplied.
func (s *ReportService) Create(ctx context.Context, input ReportInput) (*domain.Report, error) {
	report := &domain.Report{
		UserType:            input.UserType,
		UserIdentification:  strings.TrimSpace(input.UserIdentification),
		ReportCategory:      input.ReportCategory,
		DetailedDescription: strings.TrimSpace(input.DetailedDescription),
		SupportingEvidence:  strings.TrimSpace(input.SupportingEvidence),
		Anonymous:           input.Anonymous,
	}

	if err := s.validator.ValidateReport(report); err != nil {
		return nil, err
	}

	if report.Anonymous {
		report.UserIdentification = ""
	}

	if err := s.repo.Create(ctx, report); err != nil {
		return nil, err
	}

	metrics.ObserveReportCreated(report.ReportCategory, report.Anonymous)
	s.logger.Info("report created",
		slog.String("id", report.ID.Hex()),
		slog.String("category", report.ReportCategory),
		slog.Bool("anonymous", report.Anonymous),
	)

	return report, nil
}

// List returns a page of reports, newest first, with identification
// stripped from every item regardless of the anonymous flag.
func (s *ReportService) List(ctx context.Context, filter domain.ReportFilter, page, limit int64) (*ReportPage, error) {
	page, limit = normalizePaging(page, limit)

	reports, total, err := s.repo.List(ctx, filter, page, limit)
	if err != nil {
		return nil, err
	}

	// The repository already excludes identification at the query level;
	// clearing here keeps the guarantee independent of the storage impl.
	for _, r := range reports {
		r.UserIdentification = ""
	}

	return &ReportPage{
		Reports:     reports,
		TotalPages:  totalPages(total, limit),
		CurrentPage: page,
	}, nil
}

// Get retrieves a single report, stripping identification when anonymous.
func (s *ReportService) Get(ctx context.Context, id string) (*domain.Report, error) {
	report, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if report.Anonymous {
		report.UserIdentification = ""
	}
	return report, nil
}

// Delete removes a report
func (s *ReportService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("report deleted", slog.String("id", id))
	return nil
}
