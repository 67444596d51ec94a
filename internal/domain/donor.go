package domain

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Gender and blood group values accepted at registration.
var (
	Genders     = []string{"Male", "Female", "Other"}
	BloodGroups = []string{"A+", "A-", "B+", "B-", "AB+", "AB-", "O+", "O-"}
)

// Donor represents a registered blood donor.
// PasswordHash is never serialized to JSON.
type Donor struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	FullName     string             `bson:"fullName" json:"fullName"`
	Email        string             `bson:"email" json:"email"`
	PhoneNumber  string             `bson:"phoneNumber" json:"phoneNumber"`
	DateOfBirth  time.Time          `bson:"dateOfBirth" json:"dateOfBirth"`
	Gender       string             `bson:"gender" json:"gender"`
	BloodGroup   string             `bson:"bloodGroup" json:"bloodGroup"`
	Weight       float64            `bson:"weight" json:"weight"`
	Address      string             `bson:"address" json:"address"`
	PasswordHash string             `bson:"passwordHash" json:"-"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// DonorRepository defines data access for donors.
// Create reports ErrEmailTaken or ErrPhoneTaken when a unique index rejects
// the insert, so a racing duplicate registration still surfaces as a conflict.
type DonorRepository interface {
	Create(ctx context.Context, donor *Donor) error
	GetByID(ctx context.Context, id string) (*Donor, error)
	GetByEmail(ctx context.Context, email string) (*Donor, error)
	FindByEmailOrPhone(ctx context.Context, email, phone string) (*Donor, error)
}
