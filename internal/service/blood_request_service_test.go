package service

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/yourorg/bloodlink/internal/domain"
	"github.com/yourorg/bloodlink/internal/validation"
)

type memBloodRequestRepo struct {
	requests []*domain.BloodRequest
}

func (m *memBloodRequestRepo) Create(_ context.Context, r *domain.BloodRequest) error {
	r.ID = primitive.NewObjectID()
	r.CreatedAt = time.Now().Add(time.Duration(len(m.requests)) * time.Millisecond)
	r.UpdatedAt = r.CreatedAt
	m.requests = append(m.requests, r)
	return nil
}

func (m *memBloodRequestRepo) GetByID(_ context.Context, id string) (*domain.BloodRequest, error) {
	for _, r := range m.requests {
		if r.ID.Hex() == id {
			return r, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *memBloodRequestRepo) List(_ context.Context, filter domain.BloodRequestFilter, page, limit int64) ([]*domain.BloodRequest, int64, error) {
	matching := []*domain.BloodRequest{}
	for _, r := range m.requests {
		if filter.UrgencyLevel != "" && r.UrgencyLevel != filter.UrgencyLevel {
			continue
		}
		if filter.BloodGroup != "" && r.BloodGroup != filter.BloodGroup {
			continue
		}
		matching = append(matching, r)
	}
	sort.Slice(matching, func(i, j int) bool {
		return matching[i].CreatedAt.After(matching[j].CreatedAt)
	})

	total := int64(len(matching))
	start := (page - 1) * limit
	if start > total {
		start = total
	}
	end := start + limit
	if end > total {
		end = total
	}
	return matching[start:end], total, nil
}

func (m *memBloodRequestRepo) Update(_ context.Context, req *domain.BloodRequest) error {
	for i, r := range m.requests {
		if r.ID == req.ID {
			m.requests[i] = req
			return nil
		}
	}
	return domain.ErrNotFound
}

func (m *memBloodRequestRepo) Delete(_ context.Context, id string) error {
	for i, r := range m.requests {
		if r.ID.Hex() == id {
			m.requests = append(m.requests[:i], m.requests[i+1:]...)
			return nil
		}
	}
	return domain.ErrNotFound
}

func newTestBloodRequestService(repo *memBloodRequestRepo) *BloodRequestService {
	v := &validation.Validator{Now: func() time.Time { return testNow }}
	return NewBloodRequestService(repo, v, nil)
}

func validBloodRequestInput() BloodRequestInput {
	return BloodRequestInput{
		PatientName:      "Bob Patient",
		BloodGroup:       "AB-",
		UrgencyLevel:     "High",
		UnitsNeeded:      2,
		RequiredBy:       testNow.AddDate(0, 0, 1),
		HospitalName:     "General Hospital",
		DoctorName:       "Dr. Grey",
		PrimaryContact:   "bob@example.com",
		EmergencyContact: "+1 987 654 3210",
		Location:         "Springfield General, Ward 3",
		MedicalReason:    "scheduled surgery requiring transfusion",
	}
}

func TestCreateBloodRequest(t *testing.T) {
	repo := &memBloodRequestRepo{}
	s := newTestBloodRequestService(repo)

	req, err := s.Create(context.Background(), validBloodRequestInput())
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if req.ID.IsZero() {
		t.Fatalf("expected assigned id")
	}

	// A past deadline fails validation and persists nothing.
	input := validBloodRequestInput()
	input.RequiredBy = testNow.AddDate(0, 0, -1)
	if _, err := s.Create(context.Background(), input); err == nil {
		t.Fatalf("expected past deadline to fail")
	}
	if len(repo.requests) != 1 {
		t.Fatalf("failed create must not persist, have %d records", len(repo.requests))
	}
}

func TestListBloodRequestsPagination(t *testing.T) {
	repo := &memBloodRequestRepo{}
	s := newTestBloodRequestService(repo)

	for i := 0; i < 25; i++ {
		input := validBloodRequestInput()
		if i%2 == 0 {
			input.UrgencyLevel = "Critical"
		}
		if _, err := s.Create(context.Background(), input); err != nil {
			t.Fatalf("create %d failed: %v", i, err)
		}
	}

	page, err := s.List(context.Background(), domain.BloodRequestFilter{}, 1, 10)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(page.Requests) != 10 || page.TotalPages != 3 || page.CurrentPage != 1 {
		t.Fatalf("unexpected page: %d items, %d pages, current %d",
			len(page.Requests), page.TotalPages, page.CurrentPage)
	}

	// Newest first.
	for i := 1; i < len(page.Requests); i++ {
		if page.Requests[i].CreatedAt.After(page.Requests[i-1].CreatedAt) {
			t.Fatalf("expected newest-first ordering")
		}
	}

	filtered, err := s.List(context.Background(), domain.BloodRequestFilter{UrgencyLevel: "Critical"}, 1, 10)
	if err != nil {
		t.Fatalf("filtered list failed: %v", err)
	}
	if filtered.TotalPages != 2 {
		t.Fatalf("expected 13 critical requests over 2 pages, got %d pages", filtered.TotalPages)
	}
	for _, r := range filtered.Requests {
		if r.UrgencyLevel != "Critical" {
			t.Fatalf("filter leaked urgency %q", r.UrgencyLevel)
		}
	}

	// Out-of-range paging values fall back to defaults.
	fallback, err := s.List(context.Background(), domain.BloodRequestFilter{}, -3, 0)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if fallback.CurrentPage != 1 || len(fallback.Requests) != 10 {
		t.Fatalf("expected default paging, got page %d with %d items",
			fallback.CurrentPage, len(fallback.Requests))
	}
}

func TestUpdateBloodRequest(t *testing.T) {
	repo := &memBloodRequestRepo{}
	s := newTestBloodRequestService(repo)

	created, err := s.Create(context.Background(), validBloodRequestInput())
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	urgency := "Critical"
	units := 4
	updated, err := s.Update(context.Background(), created.ID.Hex(), BloodRequestPatch{
		UrgencyLevel: &urgency,
		UnitsNeeded:  &units,
	})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if updated.UrgencyLevel != "Critical" || updated.UnitsNeeded != 4 {
		t.Fatalf("patch not applied: %+v", updated)
	}
	if updated.PatientName != "Bob Patient" {
		t.Fatalf("unpatched field changed: %q", updated.PatientName)
	}

	// A patch that breaks validation is rejected.
	bad := "Panic"
	if _, err := s.Update(context.Background(), created.ID.Hex(), BloodRequestPatch{UrgencyLevel: &bad}); err == nil {
		t.Fatalf("expected invalid urgency to fail")
	}

	// Unknown id is not-found, not a validation failure.
	_, err = s.Update(context.Background(), primitive.NewObjectID().Hex(), BloodRequestPatch{UrgencyLevel: &urgency})
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestDeleteBloodRequest(t *testing.T) {
	repo := &memBloodRequestRepo{}
	s := newTestBloodRequestService(repo)

	created, err := s.Create(context.Background(), validBloodRequestInput())
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if err := s.Delete(context.Background(), created.ID.Hex()); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if err := s.Delete(context.Background(), created.ID.Hex()); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found on second delete, got %v", err)
	}
}
