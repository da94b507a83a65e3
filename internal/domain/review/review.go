package review

import (
	"time"

	"github.com/google/uuid"

	"github.com/jasalink/service-booking/internal/domain"
)

const (
	minRating     = 1
	maxRating     = 5
	maxCommentLen = 1000
	maxImages     = 5
)

// Review is a customer's one-time rating of a completed booking. Reviews
// are immutable once created; there is no edit or delete path.
type Review struct {
	id         uuid.UUID
	bookingID  uuid.UUID
	customerID uuid.UUID
	workerID   uuid.UUID
	rating     int
	comment    string
	imageURLs  []string
	createdAt  time.Time
}

// NewReview creates a validated Review for the given booking.
func NewReview(bookingID, customerID, workerID uuid.UUID, rating int, comment string, imageURLs []string, now time.Time) (*Review, error) {
	if bookingID == uuid.Nil {
		return nil, domain.NewValidationError("booking ID is required")
	}
	if customerID == uuid.Nil {
		return nil, domain.NewValidationError("customer ID is required")
	}
	if workerID == uuid.Nil {
		return nil, domain.NewValidationError("worker ID is required")
	}
	if rating < minRating || rating > maxRating {
		return nil, domain.NewValidationError("rating must be between 1 and 5")
	}
	if len(comment) > maxCommentLen {
		return nil, domain.NewValidationError("comment is too long")
	}
	if len(imageURLs) > maxImages {
		return nil, domain.NewValidationError("too many review images")
	}

	return &Review{
		id:         uuid.New(),
		bookingID:  bookingID,
		customerID: customerID,
		workerID:   workerID,
		rating:     rating,
		comment:    comment,
		imageURLs:  imageURLs,
		createdAt:  now,
	}, nil
}

// ReconstructReview rebuilds a Review from persistence data (no validation).
func ReconstructReview(id, bookingID, customerID, workerID uuid.UUID, rating int, comment string, imageURLs []string, createdAt time.Time) *Review {
	return &Review{
		id:         id,
		bookingID:  bookingID,
		customerID: customerID,
		workerID:   workerID,
		rating:     rating,
		comment:    comment,
		imageURLs:  imageURLs,
		createdAt:  createdAt,
	}
}

// ID returns the review's unique identifier.
func (r *Review) ID() uuid.UUID { return r.id }

// BookingID returns the reviewed booking's ID.
func (r *Review) BookingID() uuid.UUID { return r.bookingID }

// CustomerID returns the reviewing customer's user ID.
func (r *Review) CustomerID() uuid.UUID { return r.customerID }

// WorkerID returns the reviewed worker's user ID.
func (r *Review) WorkerID() uuid.UUID { return r.workerID }

// Rating returns the 1-5 star rating.
func (r *Review) Rating() int { return r.rating }

// Comment returns the free-text comment.
func (r *Review) Comment() string { return r.comment }

// ImageURLs returns the optional review images.
func (r *Review) ImageURLs() []string { return r.imageURLs }

// CreatedAt returns the creation timestamp.
func (r *Review) CreatedAt() time.Time { return r.createdAt }
