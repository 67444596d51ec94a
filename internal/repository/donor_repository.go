package repository

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/yourorg/bloodlink/internal/domain"
)

// MongoDonorRepository implements domain.DonorRepository on the donors collection
type MongoDonorRepository struct {
	coll   *mongo.Collection
	logger *slog.Logger
}

// NewMongoDonorRepository creates a new donor repository
func NewMongoDonorRepository(coll *mongo.Collection, logger *slog.Logger) *MongoDonorRepository {
	if logger == nil {
		logger = slog.Default()
	}

	return &MongoDonorRepository{
		coll:   coll,
		logger: logger,
	}
}

// Create inserts a new donor. A duplicate-key rejection from the unique
// indexes maps to ErrEmailTaken or ErrPhoneTaken so a racing registration
// surfaces as the same conflict the pre-check would have produced.
func (r *MongoDonorRepository) Create(ctx context.Context, donor *domain.Donor) error {
	now := time.Now().UTC()
	donor.CreatedAt = now
	donor.UpdatedAt = now

	res, err := r.coll.InsertOne(ctx, donor)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return duplicateDonorField(err)
		}
		r.logger.Error("failed to create donor",
			slog.String("email", donor.Email),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("failed to create donor: %w", err)
	}

	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		donor.ID = oid
	}
	return nil
}

// GetByID retrieves a donor by its hex identifier
func (r *MongoDonorRepository) GetByID(ctx context.Context, id string) (*domain.Donor, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrNotFound
	}

	donor := &domain.Donor{}
	err = r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(donor)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrNotFound
		}
		r.logger.Error("failed to get donor by id",
			slog.String("id", id),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("failed to get donor: %w", err)
	}

	return donor, nil
}

// GetByEmail retrieves a donor by email, including the password hash for
// credential verification.
func (r *MongoDonorRepository) GetByEmail(ctx context.Context, email string) (*domain.Donor, error) {
	donor := &domain.Donor{}
	err := r.coll.FindOne(ctx, bson.M{"email": email}).Decode(donor)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get donor by email: %w", err)
	}

	return donor, nil
}

// FindByEmailOrPhone retrieves a donor matching either field, for the
// registration uniqueness pre-check.
func (r *MongoDonorRepository) FindByEmailOrPhone(ctx context.Context, email, phone string) (*domain.Donor, error) {
	filter := bson.M{"$or": []bson.M{
		{"email": email},
		{"phoneNumber": phone},
	}}

	donor := &domain.Donor{}
	err := r.coll.FindOne(ctx, filter).Decode(donor)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find donor by email or phone: %w", err)
	}

	return donor, nil
}

// duplicateDonorField decides which unique index rejected the insert.
// Index names follow the driver's default <field>_1 convention.
func duplicateDonorField(err error) error {
	var we mongo.WriteException
	if errors.As(err, &we) {
		for _, e := range we.WriteErrors {
			if strings.Contains(e.Message, "phoneNumber") {
				return domain.ErrPhoneTaken
			}
		}
	}
	return domain.ErrEmailTaken
}
