package domain

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UrgencyLevels enumerates the accepted urgency values for a blood request.
var UrgencyLevels = []string{"Low", "Medium", "High", "Critical"}

// BloodRequest represents a public solicitation for blood.
type BloodRequest struct {
	ID                    primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	PatientName           string             `bson:"patientName" json:"patientName"`
	BloodGroup            string             `bson:"bloodGroup" json:"bloodGroup"`
	UrgencyLevel          string             `bson:"urgencyLevel" json:"urgencyLevel"`
	UnitsNeeded           int                `bson:"unitsNeeded" json:"unitsNeeded"`
	RequiredBy            time.Time          `bson:"requiredBy" json:"requiredBy"`
	HospitalName          string             `bson:"hospitalName" json:"hospitalName"`
	DoctorName            string             `bson:"doctorName" json:"doctorName"`
	PrimaryContact        string             `bson:"primaryContact" json:"primaryContact"`
	EmergencyContact      string             `bson:"emergencyContact" json:"emergencyContact"`
	Location              string             `bson:"location" json:"location"`
	MedicalReason         string             `bson:"medicalReason" json:"medicalReason"`
	AdditionalInformation string             `bson:"additionalInformation,omitempty" json:"additionalInformation,omitempty"`
	DetailsDescription    string             `bson:"detailsDescription,omitempty" json:"detailsDescription,omitempty"`
	CreatedAt             time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt             time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// BloodRequestFilter restricts listing to exact-match equality on a small
// fixed set of fields. Empty values are ignored.
type BloodRequestFilter struct {
	UrgencyLevel string
	BloodGroup   string
}

// BloodRequestRepository defines data access for blood requests.
// List returns the requested page sorted newest-first plus the total count
// of matching documents.
type BloodRequestRepository interface {
	Create(ctx context.Context, req *BloodRequest) error
	GetByID(ctx context.Context, id string) (*BloodRequest, error)
	List(ctx context.Context, filter BloodRequestFilter, page, limit int64) ([]*BloodRequest, int64, error)
	Update(ctx context.Context, req *BloodRequest) error
	Delete(ctx context.Context, id string) error
}
