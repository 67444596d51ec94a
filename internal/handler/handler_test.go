package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/yourorg/bloodlink/internal/domain"
	"github.com/yourorg/bloodlink/internal/security/audit"
	"github.com/yourorg/bloodlink/internal/security/auth"
	"github.com/yourorg/bloodlink/internal/security/middleware"
	"github.com/yourorg/bloodlink/internal/service"
	"github.com/yourorg/bloodlink/internal/validation"
)

var testNow = time.Date(2026, time.June, 15, 12, 0, 0, 0, time.UTC)

type fakeDonorRepo struct {
	donors []*domain.Donor
}

func (f *fakeDonorRepo) Create(_ context.Context, d *domain.Donor) error {
	for _, existing := range f.donors {
		if existing.Email == d.Email {
			return domain.ErrEmailTaken
		}
		if existing.PhoneNumber == d.PhoneNumber {
			return domain.ErrPhoneTaken
		}
	}
	d.ID = primitive.NewObjectID()
	d.CreatedAt = time.Now()
	d.UpdatedAt = d.CreatedAt
	f.donors = append(f.donors, d)
	return nil
}

func (f *fakeDonorRepo) GetByID(_ context.Context, id string) (*domain.Donor, error) {
	for _, d := range f.donors {
		if d.ID.Hex() == id {
			return d, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeDonorRepo) GetByEmail(_ context.Context, email string) (*domain.Donor, error) {
	for _, d := range f.donors {
		if d.Email == email {
			return d, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeDonorRepo) FindByEmailOrPhone(_ context.Context, email, phone string) (*domain.Donor, error) {
	for _, d := range f.donors {
		if d.Email == email || d.PhoneNumber == phone {
			return d, nil
		}
	}
	return nil, domain.ErrNotFound
}

type fakeBloodRequestRepo struct {
	requests []*domain.BloodRequest
}

func (f *fakeBloodRequestRepo) Create(_ context.Context, r *domain.BloodRequest) error {
	r.ID = primitive.NewObjectID()
	r.CreatedAt = time.Now().Add(time.Duration(len(f.requests)) * time.Millisecond)
	r.UpdatedAt = r.CreatedAt
	f.requests = append(f.requests, r)
	return nil
}

func (f *fakeBloodRequestRepo) GetByID(_ context.Context, id string) (*domain.BloodRequest, error) {
	for _, r := range f.requests {
		if r.ID.Hex() == id {
			return r, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeBloodRequestRepo) List(_ context.Context, filter domain.BloodRequestFilter, page, limit int64) ([]*domain.BloodRequest, int64, error) {
	matching := []*domain.BloodRequest{}
	for _, r := range f.requests {
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

func (f *fakeBloodRequestRepo) Update(_ context.Context, req *domain.BloodRequest) error {
	for i, r := range f.requests {
		if r.ID == req.ID {
			f.requests[i] = req
			return nil
		}
	}
	return domain.ErrNotFound
}

func (f *fakeBloodRequestRepo) Delete(_ context.Context, id string) error {
	for i, r := range f.requests {
		if r.ID.Hex() == id {
			f.requests = append(f.requests[:i], f.requests[i+1:]...)
			return nil
		}
	}
	return domain.ErrNotFound
}

type fakeReportRepo struct {
	reports []*domain.Report
}

func (f *fakeReportRepo) Create(_ context.Context, r *domain.Report) error {
	r.ID = primitive.NewObjectID()
	r.CreatedAt = time.Now()
	r.UpdatedAt = r.CreatedAt
	stored := *r
	f.reports = append(f.reports, &stored)
	return nil
}

func (f *fakeReportRepo) GetByID(_ context.Context, id string) (*domain.Report, error) {
	for _, r := range f.reports {
		if r.ID.Hex() == id {
			clone := *r
			return &clone, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeReportRepo) List(_ context.Context, filter domain.ReportFilter, page, limit int64) ([]*domain.Report, int64, error) {
	matching := []*domain.Report{}
	for _, r := range f.reports {
		if filter.Category != "" && r.ReportCategory != filter.Category {
			continue
		}
		if filter.Anonymous != nil && r.Anonymous != *filter.Anonymous {
			continue
		}
		clone := *r
		clone.UserIdentification = ""
		matching = append(matching, &clone)
	}
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

func (f *fakeReportRepo) Delete(_ context.Context, id string) error {
	for i, r := range f.reports {
		if r.ID.Hex() == id {
			f.reports = append(f.reports[:i], f.reports[i+1:]...)
			return nil
		}
	}
	return domain.ErrNotFound
}

// newTestServer wires the real handlers, services, and auth middleware over
// in-memory repositories, mirroring the production route table.
func newTestServer(t *testing.T) http.Handler {
	t.Helper()

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	tm := auth.NewTokenManager("test-secret", "bloodlink")
	v := &validation.Validator{Now: func() time.Time { return testNow }}

	donorSvc := service.NewDonorService(&fakeDonorRepo{}, tm, v, time.Hour, log)
	requestSvc := service.NewBloodRequestService(&fakeBloodRequestRepo{}, v, log)
	reportSvc := service.NewReportService(&fakeReportRepo{}, v, log)

	auditLog := audit.NewLogger(log)
	donorHandler := NewDonorHandler(donorSvc, auditLog, log)
	requestHandler := NewBloodRequestHandler(requestSvc, auditLog, log)
	reportHandler := NewReportHandler(reportSvc, auditLog, log)

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/donor/register", donorHandler.Register)
	mux.HandleFunc("POST /api/v1/donor/login", donorHandler.Login)
	mux.HandleFunc("GET /api/v1/donor/profile", donorHandler.Profile)
	mux.HandleFunc("POST /api/v1/blood-requests", requestHandler.Create)
	mux.HandleFunc("GET /api/v1/blood-requests", requestHandler.List)
	mux.HandleFunc("GET /api/v1/blood-requests/{id}", requestHandler.Get)
	mux.HandleFunc("PUT /api/v1/blood-requests/{id}", requestHandler.Update)
	mux.HandleFunc("DELETE /api/v1/blood-requests/{id}", requestHandler.Delete)
	mux.HandleFunc("POST /api/v1/reports", reportHandler.Create)
	mux.HandleFunc("GET /api/v1/reports", reportHandler.List)
	mux.HandleFunc("GET /api/v1/reports/{id}", reportHandler.Get)
	mux.HandleFunc("DELETE /api/v1/reports/{id}", reportHandler.Delete)

	return middleware.ValidateJSONContentType(log)(middleware.JWTMiddleware(tm, log)(mux))
}

func doRequest(t *testing.T, srv http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return body
}

func registerPayload() map[string]any {
	return map[string]any{
		"fullName":        "Alice Donor",
		"email":           "Alice@Example.com",
		"phoneNumber":     "+1 234 567 8901",
		"dateOfBirth":     "1995-01-10T00:00:00Z",
		"gender":          "Female",
		"bloodGroup":      "O+",
		"weight":          62,
		"address":         "12 Example Street, Springfield",
		"password":        "secret123",
		"confirmPassword": "secret123",
	}
}

func bloodRequestPayload() map[string]any {
	return map[string]any{
		"patientName":      "Bob Patient",
		"bloodGroup":       "AB-",
		"urgencyLevel":     "High",
		"unitsNeeded":      2,
		"requiredBy":       testNow.AddDate(0, 0, 1).Format(time.RFC3339),
		"hospitalName":     "General Hospital",
		"doctorName":       "Dr. Grey",
		"primaryContact":   "bob@example.com",
		"emergencyContact": "+1 987 654 3210",
		"location":         "Springfield General, Ward 3",
		"medicalReason":    "scheduled surgery requiring transfusion",
	}
}

func TestDonorAuthFlow(t *testing.T) {
	srv := newTestServer(t)

	rec := doRequest(t, srv, http.MethodPost, "/api/v1/donor/register", "", registerPayload())
	if rec.Code != http.StatusCreated {
		t.Fatalf("register: got %d, body %s", rec.Code, rec.Body.String())
	}
	body := decodeBody(t, rec)
	token, _ := body["token"].(string)
	if token == "" {
		t.Fatalf("register response missing token: %v", body)
	}
	if strings.Contains(rec.Body.String(), "secret123") || strings.Contains(rec.Body.String(), "passwordHash") {
		t.Fatalf("register response leaked credentials: %s", rec.Body.String())
	}
	donor, _ := body["donor"].(map[string]any)
	if donor["email"] != "alice@example.com" {
		t.Fatalf("expected normalized email, got %v", donor["email"])
	}

	// Login with the right password.
	rec = doRequest(t, srv, http.MethodPost, "/api/v1/donor/login", "", map[string]any{
		"email": "alice@example.com", "password": "secret123",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("login: got %d, body %s", rec.Code, rec.Body.String())
	}
	if decodeBody(t, rec)["token"] == "" {
		t.Fatalf("login response missing token")
	}

	// Wrong password is 401 with a generic message.
	rec = doRequest(t, srv, http.MethodPost, "/api/v1/donor/login", "", map[string]any{
		"email": "alice@example.com", "password": "wrong",
	})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("bad login: got %d, want 401", rec.Code)
	}
	if decodeBody(t, rec)["error"] != "invalid email or password" {
		t.Fatalf("unexpected bad login body: %s", rec.Body.String())
	}

	// Profile with token.
	rec = doRequest(t, srv, http.MethodGet, "/api/v1/donor/profile", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("profile: got %d, body %s", rec.Code, rec.Body.String())
	}
	if decodeBody(t, rec)["email"] != "alice@example.com" {
		t.Fatalf("unexpected profile body: %s", rec.Body.String())
	}

	// Missing token is 401, garbage token is 403.
	rec = doRequest(t, srv, http.MethodGet, "/api/v1/donor/profile", "", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("no token: got %d, want 401", rec.Code)
	}
	rec = doRequest(t, srv, http.MethodGet, "/api/v1/donor/profile", "not-a-jwt", nil)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("garbage token: got %d, want 403", rec.Code)
	}
}

func TestRegisterValidationAndConflicts(t *testing.T) {
	srv := newTestServer(t)

	payload := registerPayload()
	payload["dateOfBirth"] = "2010-01-01T00:00:00Z"
	rec := doRequest(t, srv, http.MethodPost, "/api/v1/donor/register", "", payload)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("underage register: got %d, want 400", rec.Code)
	}
	if decodeBody(t, rec)["error"] == "" {
		t.Fatalf("expected error envelope, got %s", rec.Body.String())
	}

	if rec := doRequest(t, srv, http.MethodPost, "/api/v1/donor/register", "", registerPayload()); rec.Code != http.StatusCreated {
		t.Fatalf("register: got %d", rec.Code)
	}
	rec = doRequest(t, srv, http.MethodPost, "/api/v1/donor/register", "", registerPayload())
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("duplicate register: got %d, want 400", rec.Code)
	}
	if decodeBody(t, rec)["error"] != "Email already registered" {
		t.Fatalf("unexpected conflict body: %s", rec.Body.String())
	}
}

func TestBloodRequestEndpoints(t *testing.T) {
	srv := newTestServer(t)

	rec := doRequest(t, srv, http.MethodPost, "/api/v1/donor/register", "", registerPayload())
	if rec.Code != http.StatusCreated {
		t.Fatalf("register: got %d", rec.Code)
	}
	token := decodeBody(t, rec)["token"].(string)

	// Creation is public.
	rec = doRequest(t, srv, http.MethodPost, "/api/v1/blood-requests", "", bloodRequestPayload())
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: got %d, body %s", rec.Code, rec.Body.String())
	}
	created := decodeBody(t, rec)["bloodRequest"].(map[string]any)
	id := created["id"].(string)

	rec = doRequest(t, srv, http.MethodGet, "/api/v1/blood-requests?urgencyLevel=High", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list: got %d", rec.Code)
	}
	listing := decodeBody(t, rec)
	if listing["currentPage"].(float64) != 1 || listing["totalPages"].(float64) != 1 {
		t.Fatalf("unexpected paging: %s", rec.Body.String())
	}

	// Update requires a token.
	patch := map[string]any{"urgencyLevel": "Critical"}
	rec = doRequest(t, srv, http.MethodPut, "/api/v1/blood-requests/"+id, "", patch)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("unauthenticated update: got %d, want 401", rec.Code)
	}
	rec = doRequest(t, srv, http.MethodPut, "/api/v1/blood-requests/"+id, token, patch)
	if rec.Code != http.StatusOK {
		t.Fatalf("update: got %d, body %s", rec.Code, rec.Body.String())
	}
	updated := decodeBody(t, rec)["bloodRequest"].(map[string]any)
	if updated["urgencyLevel"] != "Critical" {
		t.Fatalf("patch not applied: %s", rec.Body.String())
	}

	// Delete, then the record is gone.
	rec = doRequest(t, srv, http.MethodDelete, "/api/v1/blood-requests/"+id, token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete: got %d", rec.Code)
	}
	rec = doRequest(t, srv, http.MethodGet, "/api/v1/blood-requests/"+id, "", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("get after delete: got %d, want 404", rec.Code)
	}
}

func TestReportEndpoints(t *testing.T) {
	srv := newTestServer(t)

	rec := doRequest(t, srv, http.MethodPost, "/api/v1/donor/register", "", registerPayload())
	if rec.Code != http.StatusCreated {
		t.Fatalf("register: got %d", rec.Code)
	}
	token := decodeBody(t, rec)["token"].(string)

	// Anonymous create returns the reduced projection.
	rec = doRequest(t, srv, http.MethodPost, "/api/v1/reports", "", map[string]any{
		"userType":            "recipient",
		"userIdentification":  "reporter@example.com",
		"reportCategory":      "fraud",
		"detailedDescription": "this account keeps posting fake requests",
		"anonymous":           true,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("anonymous create: got %d, body %s", rec.Code, rec.Body.String())
	}
	if strings.Contains(rec.Body.String(), "reporter@example.com") ||
		strings.Contains(rec.Body.String(), "detailedDescription") {
		t.Fatalf("anonymous response leaked details: %s", rec.Body.String())
	}
	anonID := decodeBody(t, rec)["report"].(map[string]any)["id"].(string)

	// Named create keeps the full record.
	rec = doRequest(t, srv, http.MethodPost, "/api/v1/reports", "", map[string]any{
		"userType":            "blood donor",
		"userIdentification":  "named@example.com",
		"reportCategory":      "spam",
		"detailedDescription": "repeated duplicate postings from this account",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("named create: got %d, body %s", rec.Code, rec.Body.String())
	}

	// Listing is public and never carries identification.
	rec = doRequest(t, srv, http.MethodGet, "/api/v1/reports", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list: got %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "named@example.com") {
		t.Fatalf("listing leaked identification: %s", rec.Body.String())
	}

	// Single reads require a token.
	rec = doRequest(t, srv, http.MethodGet, "/api/v1/reports/"+anonID, "", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("unauthenticated get: got %d, want 401", rec.Code)
	}
	rec = doRequest(t, srv, http.MethodGet, "/api/v1/reports/"+anonID, token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get: got %d, body %s", rec.Code, rec.Body.String())
	}
	if strings.Contains(rec.Body.String(), "reporter@example.com") {
		t.Fatalf("anonymous single read leaked identification: %s", rec.Body.String())
	}

	rec = doRequest(t, srv, http.MethodDelete, "/api/v1/reports/"+anonID, token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete: got %d", rec.Code)
	}
	rec = doRequest(t, srv, http.MethodGet, "/api/v1/reports/"+anonID, token, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("get after delete: got %d, want 404", rec.Code)
	}
}

func TestUnknownIDsReturnNotFound(t *testing.T) {
	srv := newTestServer(t)

	unknown := primitive.NewObjectID().Hex()
	rec := doRequest(t, srv, http.MethodGet, "/api/v1/blood-requests/"+unknown, "", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("got %d, want 404", rec.Code)
	}
	if decodeBody(t, rec)["error"] == "" {
		t.Fatalf("expected error envelope, got %s", rec.Body.String())
	}

	// A malformed object id is also treated as not found, not a server error.
	rec = doRequest(t, srv, http.MethodGet, "/api/v1/blood-requests/not-an-id", "", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("malformed id: got %d, want 404", rec.Code)
	}
}
