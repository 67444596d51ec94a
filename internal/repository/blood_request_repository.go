package repository

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/yourorg/bloodlink/internal/domain"
)

// MongoBloodRequestRepository implements domain.BloodRequestRepository
type MongoBloodRequestRepository struct {
	coll   *mongo.Collection
	logger *slog.Logger
}

// NewMongoBloodRequestRepository creates a new blood request repository
func NewMongoBloodRequestRepository(coll *mongo.Collection, logger *slog.Logger) *MongoBloodRequestRepository {
	if logger == nil {
		logger = slog.Default()
	}

	return &MongoBloodRequestRepository{
		coll:   coll,
		logger: logger,
	}
}

// Create inserts a new blood request
func (r *MongoBloodRequestRepository) Create(ctx context.Context, req *domain.BloodRequest) error {
	now := time.Now().UTC()
	req.CreatedAt = now
	req.UpdatedAt = now

	res, err := r.coll.InsertOne(ctx, req)
	if err != nil {
		r.logger.Error("failed to create blood request",
			slog.String("patient", req.PatientName),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("failed to create blood request: %w", err)
	}

	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		req.ID = oid
	}
	return nil
}

// GetByID retrieves a blood request by its hex identifier
func (r *MongoBloodRequestRepository) GetByID(ctx context.Context, id string) (*domain.BloodRequest, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrNotFound
	}

	req := &domain.BloodRequest{}
	err = r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(req)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrNotFound
		}
		r.logger.Error("failed to get blood request",
			slog.String("id", id),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("failed to get blood request: %w", err)
	}

	return req, nil
}

// List returns a page of blood requests, newest first, plus the total count
// of documents matching the filter.
func (r *MongoBloodRequestRepository) List(ctx context.Context, filter domain.BloodRequestFilter, page, limit int64) ([]*domain.BloodRequest, int64, error) {
	query := bson.M{}
	if filter.UrgencyLevel != "" {
		query["urgencyLevel"] = filter.UrgencyLevel
	}
	if filter.BloodGroup != "" {
		query["bloodGroup"] = filter.BloodGroup
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip((page - 1) * limit).
		SetLimit(limit)

	cursor, err := r.coll.Find(ctx, query, opts)
	if err != nil {
		r.logger.Error("failed to list blood requests", slog.String("error", err.Error()))
		return nil, 0, fmt.Errorf("failed to list blood requests: %w", err)
	}

	requests := []*domain.BloodRequest{}
	if err := cursor.All(ctx, &requests); err != nil {
		return nil, 0, fmt.Errorf("failed to decode blood requests: %w", err)
	}

	total, err := r.coll.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count blood requests: %w", err)
	}

	return requests, total, nil
}

// Update replaces an existing blood request document
func (r *MongoBloodRequestRepository) Update(ctx context.Context, req *domain.BloodRequest) error {
	req.UpdatedAt = time.Now().UTC()

	res, err := r.coll.ReplaceOne(ctx, bson.M{"_id": req.ID}, req)
	if err != nil {
		r.logger.Error("failed to update blood request",
			slog.String("id", req.ID.Hex()),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("failed to update blood request: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrNotFound
	}

	return nil
}

// Delete removes a blood request
func (r *MongoBloodRequestRepository) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrNotFound
	}

	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("failed to delete blood request: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrNotFound
	}

	return nil
}
