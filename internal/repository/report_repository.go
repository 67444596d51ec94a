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

// MongoReportRepository implements domain.ReportRepository
type MongoReportRepository struct {
	coll   *mongo.Collection
	logger *slog.Logger
}

// NewMongoReportRepository creates a new report repository
func NewMongoReportRepository(coll *mongo.Collection, logger *slog.Logger) *MongoReportRepository {
	if logger == nil {
		logger = slog.Default()
	}

	return &MongoReportRepository{
		coll:   coll,
		logger: logger,
	}
}

// Create inserts a new report. Callers clear UserIdentification on anonymous
// reports before this point; the bson omitempty tag keeps the field out of
// the stored document entirely.
func (r *MongoReportRepository) Create(ctx context.Context, report *domain.Report) error {
	now := time.Now().UTC()
	report.CreatedAt = now
	report.UpdatedAt = now

	res, err := r.coll.InsertOne(ctx, report)
	if err != nil {
		r.logger.Error("failed to create report",
			slog.String("category", report.ReportCategory),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("failed to create report: %w", err)
	}

	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		report.ID = oid
	}
	return nil
}

// GetByID retrieves a report by its hex identifier
func (r *MongoReportRepository) GetByID(ctx context.Context, id string) (*domain.Report, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrNotFound
	}

	report := &domain.Report{}
	err = r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(report)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrNotFound
		}
		r.logger.Error("failed to get report",
			slog.String("id", id),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("failed to get report: %w", err)
	}

	return report, nil
}

// List returns a page of reports, newest first. The userIdentification field
// is excluded at the query level, so no listing ever carries it.
func (r *MongoReportRepository) List(ctx context.Context, filter domain.ReportFilter, page, limit int64) ([]*domain.Report, int64, error) {
	query := bson.M{}
	if filter.Category != "" {
		query["reportCategory"] = filter.Category
	}
	if filter.Anonymous != nil {
		query["anonymous"] = *filter.Anonymous
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip((page - 1) * limit).
		SetLimit(limit).
		SetProjection(bson.M{"userIdentification": 0})

	cursor, err := r.coll.Find(ctx, query, opts)
	if err != nil {
		r.logger.Error("failed to list reports", slog.String("error", err.Error()))
		return nil, 0, fmt.Errorf("failed to list reports: %w", err)
	}

	reports := []*domain.Report{}
	if err := cursor.All(ctx, &reports); err != nil {
		return nil, 0, fmt.Errorf("failed to decode reports: %w", err)
	}

	total, err := r.coll.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count reports: %w", err)
	}

	return reports, total, nil
}

// Delete removes a report
func (r *MongoReportRepository) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrNotFound
	}

	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("failed to delete report: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrNotFound
	}

	return nil
}
