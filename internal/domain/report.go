package domain

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Accepted reporter types and report categories.
var (
	ReportUserTypes  = []string{"blood donor", "recipient", "other"}
	ReportCategories = []string{"fake people", "harassment", "spam", "fraud", "other", "rude behavior"}
)

// Report represents an abuse or incident report. UserIdentification is a
// phone number or email; for anonymous reports it is never persisted and
// never returned, even when supplied.
type Report struct {
	ID                  primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserType            string             `bson:"userType" json:"userType"`
	UserIdentification  string             `bson:"userIdentification,omitempty" json:"userIdentification,omitempty"`
	ReportCategory      string             `bson:"reportCategory" json:"reportCategory"`
	DetailedDescription string             `bson:"detailedDescription" json:"detailedDescription"`
	SupportingEvidence  string             `bson:"supportingEvidence,omitempty" json:"supportingEvidence,omitempty"`
	Anonymous           bool               `bson:"anonymous" json:"anonymous"`
	CreatedAt           time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt           time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// ReportFilter restricts listing to exact-match equality. Anonymous is a
// tri-state: nil means no filter.
type ReportFilter struct {
	Category  string
	Anonymous *bool
}

// ReportRepository defines data access for reports.
// List strips userIdentification from every returned item at the query level.
type ReportRepository interface {
	Create(ctx context.Context, report *Report) error
	GetByID(ctx context.Context, id string) (*Report, error)
	List(ctx context.Context, filter ReportFilter, page, limit int64) ([]*Report, int64, error)
	Delete(ctx context.Context, id string) error
}
