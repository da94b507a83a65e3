package review

import (
	"context"

	"github.com/google/uuid"
)

// RatingSummary aggregates a worker's received ratings.
type RatingSummary struct {
	WorkerID      uuid.UUID `json:"worker_id"`
	ReviewCount   int64     `json:"review_count"`
	AverageRating float64   `json:"average_rating"`
}

// Repository defines the persistence contract for reviews. Save must be
// backed by a uniqueness guarantee on the booking so that of two racing
// submissions exactly one wins.
type Repository interface {
	// Save persists a new review; fails AlreadyReviewed when the booking
	// already has one.
	Save(ctx context.Context, review *Review) error

	// FindByBookingID retrieves the review attached to a booking, if any.
	FindByBookingID(ctx context.Context, bookingID uuid.UUID) (*Review, error)

	// FindByWorkerID retrieves reviews received by a worker with pagination,
	// newest first.
	FindByWorkerID(ctx context.Context, workerID uuid.UUID, page, limit int) ([]*Review, int64, error)

	// RatingSummary returns the review count and average rating for a worker.
	RatingSummary(ctx context.Context, workerID uuid.UUID) (*RatingSummary, error)
}
