package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/jasalink/service-booking/internal/domain"
	reviewDomain "github.com/jasalink/service-booking/internal/domain/review"
)

// ReviewModel is the GORM model for the reviews table. The unique index on
// booking_id is what makes a review one-time: of two racing submissions the
// database rejects the second.
type ReviewModel struct {
	ID         uuid.UUID       `gorm:"type:uuid;primaryKey"`
	BookingID  uuid.UUID       `gorm:"type:uuid;uniqueIndex;not null"`
	CustomerID uuid.UUID       `gorm:"type:uuid;index;not null"`
	WorkerID   uuid.UUID       `gorm:"type:uuid;index;not null"`
	Rating     int             `gorm:"not null"`
	Comment    string          `gorm:"size:1000"`
	ImageURLs  json.RawMessage `gorm:"type:jsonb"`
	CreatedAt  time.Time       `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (ReviewModel) TableName() string {
	return "reviews"
}

// GormReviewRepository is the GORM-based implementation of review.Repository.
type GormReviewRepository struct {
	db *gorm.DB
}

// NewGormReviewRepository creates a new GormReviewRepository.
func NewGormReviewRepository(db *gorm.DB) *GormReviewRepository {
	return &GormReviewRepository{db: db}
}

// Save persists a new review; fails AlreadyReviewed when the booking
// already has one.
func (r *GormReviewRepository) Save(ctx context.Context, rv *reviewDomain.Review) error {
	model := toReviewModel(rv)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.NewAlreadyReviewedError()
		}
		return fmt.Errorf("failed to save review: %w", err)
	}
	return nil
}

// FindByBookingID retrieves the review attached to a booking, if any.
func (r *GormReviewRepository) FindByBookingID(ctx context.Context, bookingID uuid.UUID) (*reviewDomain.Review, error) {
	var model ReviewModel
	if err := r.db.WithContext(ctx).Where("booking_id = ?", bookingID).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("review", bookingID.String())
		}
		return nil, fmt.Errorf("failed to find review by booking: %w", err)
	}
	return toDomainReview(&model), nil
}

// FindByWorkerID retrieves reviews received by a worker with pagination,
// newest first.
func (r *GormReviewRepository) FindByWorkerID(ctx context.Context, workerID uuid.UUID, page, limit int) ([]*reviewDomain.Review, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&ReviewModel{}).Where("worker_id = ?", workerID).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count reviews: %w", err)
	}

	var models []ReviewModel
	offset := (page - 1) * limit
	if err := r.db.WithContext(ctx).
		Where("worker_id = ?", workerID).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to find reviews: %w", err)
	}

	reviews := make([]*reviewDomain.Review, len(models))
	for i, m := range models {
		reviews[i] = toDomainReview(&m)
	}
	return reviews, total, nil
}

// RatingSummary returns the review count and average rating for a worker.
func (r *GormReviewRepository) RatingSummary(ctx context.Context, workerID uuid.UUID) (*reviewDomain.RatingSummary, error) {
	var row struct {
		ReviewCount   int64
		AverageRating float64
	}
	if err := r.db.WithContext(ctx).Model(&ReviewModel{}).
		Select("count(*) as review_count, coalesce(avg(rating), 0) as average_rating").
		Where("worker_id = ?", workerID).
		Scan(&row).Error; err != nil {
		return nil, fmt.Errorf("failed to compute rating summary: %w", err)
	}

	return &reviewDomain.RatingSummary{
		WorkerID:      workerID,
		ReviewCount:   row.ReviewCount,
		AverageRating: row.AverageRating,
	}, nil
}

// --- Conversion Helpers ---

func toReviewModel(rv *reviewDomain.Review) *ReviewModel {
	var imagesJSON json.RawMessage
	if len(rv.ImageURLs()) > 0 {
		imagesJSON, _ = json.Marshal(rv.ImageURLs())
	}

	return &ReviewModel{
		ID:         rv.ID(),
		BookingID:  rv.BookingID(),
		CustomerID: rv.CustomerID(),
		WorkerID:   rv.WorkerID(),
		Rating:     rv.Rating(),
		Comment:    rv.Comment(),
		ImageURLs:  imagesJSON,
		CreatedAt:  rv.CreatedAt(),
	}
}

func toDomainReview(m *ReviewModel) *reviewDomain.Review {
	var images []string
	if len(m.ImageURLs) > 0 {
		_ = json.Unmarshal(m.ImageURLs, &images)
	}

	return reviewDomain.ReconstructReview(
		m.ID,
		m.BookingID,
		m.CustomerID,
		m.WorkerID,
		m.Rating,
		m.Comment,
		images,
		m.CreatedAt,
	)
}
