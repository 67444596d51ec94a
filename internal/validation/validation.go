package validation

import (
	"regexp"
	"strings"
	"time"

	"github.com/yourorg/bloodlink/internal/domain"
)

var (
	emailPattern = regexp.MustCompile(`^\w+([.-]?\w+)*@\w+([.-]?\w+)*(\.\w{2,3})+$`)
	// Optional leading +, then at least 10 digits/spaces/hyphens.
	phonePattern = regexp.MustCompile(`^\+?[\d\s-]{10,}$`)
)

// Validator enforces field-level constraints before persistence. The clock
// is injected so deadline and age checks stay testable.
type Validator struct {
	Now func() time.Time
}

func NewValidator() *Validator {
	return &Validator{Now: time.Now}
}

// IsEmail reports whether v looks like an email address.
func IsEmail(v string) bool {
	return emailPattern.MatchString(v)
}

// IsPhone reports whether v looks like a phone number.
func IsPhone(v string) bool {
	return phonePattern.MatchString(v)
}

// IsContact accepts either shape; used for contact and identification fields.
func IsContact(v string) bool {
	return IsPhone(v) || IsEmail(v)
}

// Age returns whole years between dob and now, calendar-aware: one year is
// subtracted when the birthday has not yet occurred in the current year.
func Age(dob, now time.Time) int {
	years := now.Year() - dob.Year()
	if now.Month() < dob.Month() || (now.Month() == dob.Month() && now.Day() < dob.Day()) {
		years--
	}
	return years
}

// ValidateDonor checks a donor record plus the plaintext password prior to
// hashing. All violations are aggregated; nothing persists on failure.
func (v *Validator) ValidateDonor(d *domain.Donor, password string) error {
	ve := domain.NewValidationError()

	if len(strings.TrimSpace(d.FullName)) < 2 {
		ve.Add("fullName", "full name must be at least 2 characters")
	}
	if !IsEmail(d.Email) {
		ve.Add("email", "please enter a valid email")
	}
	if !IsPhone(d.PhoneNumber) {
		ve.Add("phoneNumber", "please enter a valid phone number (at least 10 digits)")
	}
	if d.DateOfBirth.IsZero() {
		ve.Add("dateOfBirth", "date of birth is required")
	} else if age := Age(d.DateOfBirth, v.Now()); age < 18 || age > 65 {
		ve.Add("dateOfBirth", "age must be between 18 and 65 years")
	}
	if !contains(domain.Genders, d.Gender) {
		ve.Add("gender", "gender must be Male, Female, or Other")
	}
	if !contains(domain.BloodGroups, d.BloodGroup) {
		ve.Add("bloodGroup", "invalid blood group")
	}
	if d.Weight < 50 {
		ve.Add("weight", "weight must be at least 50kg")
	}
	if len(strings.TrimSpace(d.Address)) < 10 {
		ve.Add("address", "address must be at least 10 characters")
	}
	if len(password) < 6 {
		ve.Add("password", "password must be at least 6 characters")
	}

	return ve.Err()
}

// ValidateBloodRequest checks a blood request. The requiredBy deadline must
// be strictly after the validator's current time.
func (v *Validator) ValidateBloodRequest(r *domain.BloodRequest) error {
	ve := domain.NewValidationError()

	if len(strings.TrimSpace(r.PatientName)) < 2 {
		ve.Add("patientName", "patient name must be at least 2 characters")
	}
	if !contains(domain.BloodGroups, r.BloodGroup) {
		ve.Add("bloodGroup", "invalid blood group")
	}
	if !contains(domain.UrgencyLevels, r.UrgencyLevel) {
		ve.Add("urgencyLevel", "urgency level must be Low, Medium, High, or Critical")
	}
	if r.UnitsNeeded < 1 {
		ve.Add("unitsNeeded", "at least 1 unit is required")
	}
	if r.RequiredBy.IsZero() {
		ve.Add("requiredBy", "required by date is required")
	} else if !r.RequiredBy.After(v.Now()) {
		ve.Add("requiredBy", "required by date must be in the future")
	}
	if len(strings.TrimSpace(r.HospitalName)) < 2 {
		ve.Add("hospitalName", "hospital name must be at least 2 characters")
	}
	if len(strings.TrimSpace(r.DoctorName)) < 2 {
		ve.Add("doctorName", "doctor name must be at least 2 characters")
	}
	if !IsContact(r.PrimaryContact) {
		ve.Add("primaryContact", "invalid phone or email for primary contact")
	}
	if !IsContact(r.EmergencyContact) {
		ve.Add("emergencyContact", "invalid phone or email for emergency contact")
	}
	if len(strings.TrimSpace(r.Location)) < 5 {
		ve.Add("location", "location must be at least 5 characters")
	}
	if len(strings.TrimSpace(r.MedicalReason)) < 10 {
		ve.Add("medicalReason", "medical reason must be at least 10 characters")
	}

	return ve.Err()
}

// ValidateReport checks an abuse report. Identification is required unless
// the report is anonymous.
func (v *Validator) ValidateReport(r *domain.Report) error {
	ve := domain.NewValidationError()

	if !contains(domain.ReportUserTypes, r.UserType) {
		ve.Add("userType", "user type must be blood donor, recipient, or other")
	}
	if !r.Anonymous && r.UserIdentification == "" {
		ve.Add("userIdentification", "user identification is required for non-anonymous reports")
	}
	if r.UserIdentification != "" && !IsContact(r.UserIdentification) {
		ve.Add("userIdentification", "user identification must be a valid phone number or email")
	}
	if !contains(domain.ReportCategories, r.ReportCategory) {
		ve.Add("reportCategory", "invalid report category")
	}
	if len(strings.TrimSpace(r.DetailedDescription)) < 10 {
		ve.Add("detailedDescription", "detailed description must be at least 10 characters")
	}

	return ve.Err()
}

func contains(allowed []string, value string) bool {
	for _, a := range allowed {
		if a == value {
			return true
		}
	}
	return false
}
