package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/yourorg/bloodlink/internal/domain"
	"github.com/yourorg/bloodlink/internal/observability/metrics"
	"github.com/yourorg/bloodlink/internal/security/auth"
	"github.com/yourorg/bloodlink/internal/validation"
)

// DonorService orchestrates donor registration, login, and profile reads
type DonorService struct {
	repo      domain.DonorRepository
	tokens    *auth.TokenManager
	validator *validation.Validator
	tokenTTL  time.Duration
	logger    *slog.Logger
}

// NewDonorService creates a new donor service
func NewDonorService(
	repo domain.DonorRepository,
	tokens *auth.TokenManager,
	validator *validation.Validator,
	tokenTTL time.Duration,
	logger *slog.Logger,
) *DonorService {
	if logger == nil {
		logger = slog.Default()
	}
	if validator == nil {
		validator = validation.NewValidator()
	}

	return &DonorService{
		repo:      repo,
		tokens:    tokens,
		validator: validator,
		tokenTTL:  tokenTTL,
		logger:    logger,
	}
}

// RegisterInput carries the registration form fields
type RegisterInput struct {
	FullName        string    `json:"fullName"`
	Email           string    `json:"email"`
	PhoneNumber     string    `json:"phoneNumber"`
	DateOfBirth     time.Time `json:"dateOfBirth"`
	Gender          string    `json:"gender"`
	BloodGroup      string    `json:"bloodGroup"`
	Weight          float64   `json:"weight"`
	Address         string    `json:"address"`
	Password        string    `json:"password"`
	ConfirmPassword string    `json:"confirmPassword"`
}

// AuthResult is the outcome of a successful registration or login
type AuthResult struct {
	Token string
	Donor *domain.Donor
}

// Register creates a donor account: uniqueness pre-check, password
// confirmation, field validation, hashing, persistence, token issuance.
// Any failing step short-circuits; nothing is persisted on failure.
func (s *DonorService) Register(ctx context.Context, input RegisterInput) (*AuthResult, error) {
	donor := &domain.Donor{
		FullName:    strings.TrimSpace(input.FullName),
		Email:       strings.ToLower(strings.TrimSpace(input.Email)),
		PhoneNumber: strings.TrimSpace(input.PhoneNumber),
		DateOfBirth: input.DateOfBirth,
		Gender:      input.Gender,
		BloodGroup:  input.BloodGroup,
		Weight:      input.Weight,
		Address:     strings.TrimSpace(input.Address),
	}

	// Pre-check; the unique indexes remain the authoritative guard.
	// Email takes precedence when both fields would collide.
	existing, err := s.repo.FindByEmailOrPhone(ctx, donor.Email, donor.PhoneNumber)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("uniqueness check failed: %w", err)
	}
	if existing != nil {
		metrics.ObserveRegistration("conflict")
		if existing.Email == donor.Email {
			return nil, domain.ErrEmailTaken
		}
		return nil, domain.ErrPhoneTaken
	}

	if input.ConfirmPassword != input.Password {
		ve := domain.NewValidationError()
		ve.Add("confirmPassword", "passwords do not match")
		metrics.ObserveRegistration("invalid")
		return nil, ve
	}

	if err := s.validator.ValidateDonor(donor, input.Password); err != nil {
		metrics.ObserveRegistration("invalid")
		return nil, err
	}

	hash, err := auth.HashPassword(input.Password)
	if err != nil {
		s.logger.Error("failed to hash password", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to register donor: %w", err)
	}
	donor.PasswordHash = hash

	if err := s.repo.Create(ctx, donor); err != nil {
		if errors.Is(err, domain.ErrEmailTaken) || errors.Is(err, domain.ErrPhoneTaken) {
			metrics.ObserveRegistration("conflict")
			return nil, err
		}
		metrics.ObserveRegistration("error")
		return nil, err
	}

	token, err := s.tokens.GenerateToken(donor.ID.Hex(), donor.Email, s.tokenTTL)
	if err != nil {
		s.logger.Error("failed to sign token",
			slog.String("donor_id", donor.ID.Hex()),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	metrics.ObserveRegistration("success")
	s.logger.Info("donor registered",
		slog.String("donor_id", donor.ID.Hex()),
		slog.String("blood_group", donor.BloodGroup),
	)

	return &AuthResult{Token: token, Donor: donor}, nil
}

// Login verifies credentials and issues a token. A missing account and a
// wrong password return the same error so callers cannot probe for emails.
func (s *DonorService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	donor, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			metrics.ObserveLogin("failure")
			return nil, domain.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("login lookup failed: %w", err)
	}

	if !auth.CheckPassword(password, donor.PasswordHash) {
		metrics.ObserveLogin("failure")
		s.logger.Info("login failed", slog.String("donor_id", donor.ID.Hex()))
		return nil, domain.ErrInvalidCredentials
	}

	token, err := s.tokens.GenerateToken(donor.ID.Hex(), donor.Email, s.tokenTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	metrics.ObserveLogin("success")
	s.logger.Info("donor logged in", slog.String("donor_id", donor.ID.Hex()))

	return &AuthResult{Token: token, Donor: donor}, nil
}

// Profile fetches the donor identified by a verified token's subject.
func (s *DonorService) Profile(ctx context.Context, donorID string) (*domain.Donor, error) {
	donor, err := s.repo.GetByID(ctx, donorID)
	if err != nil {
		return nil, err
	}
	return donor, nil
}
