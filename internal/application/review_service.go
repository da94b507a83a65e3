package application

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/jasalink/service-booking/internal/domain"
	bookingDomain "github.com/jasalink/service-booking/internal/domain/booking"
	reviewDomain "github.com/jasalink/service-booking/internal/domain/review"
	"github.com/jasalink/service-booking/internal/events"
	"github.com/jasalink/service-booking/pkg/kafka"
)

const ratingCacheTTL = 5 * time.Minute

// SubmitReviewRequest holds a customer's review of a completed booking.
type SubmitReviewRequest struct {
	Version   int64    `json:"version" binding:"required"`
	Rating    int      `json:"rating" binding:"required,min=1,max=5"`
	Comment   string   `json:"comment"`
	ImageURLs []string `json:"image_urls"`
}

// ReviewDTO is the response representation of a review.
type ReviewDTO struct {
	ID         uuid.UUID `json:"id"`
	BookingID  uuid.UUID `json:"booking_id"`
	CustomerID uuid.UUID `json:"customer_id"`
	WorkerID   uuid.UUID `json:"worker_id"`
	Rating     int       `json:"rating"`
	Comment    string    `json:"comment,omitempty"`
	ImageURLs  []string  `json:"image_urls,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// ReviewService handles review submission and the worker rating read side.
type ReviewService struct {
	bookings bookingDomain.Repository
	reviews  reviewDomain.Repository
	cache    *redis.Client
	producer EventPublisher
	logger   *zap.Logger
	now      func() time.Time
}

// NewReviewService creates a new ReviewService.
func NewReviewService(
	bookings bookingDomain.Repository,
	reviews reviewDomain.Repository,
	cache *redis.Client,
	producer EventPublisher,
	logger *zap.Logger,
) *ReviewService {
	return &ReviewService{
		bookings: bookings,
		reviews:  reviews,
		cache:    cache,
		producer: producer,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// SubmitReview attaches a one-time review to a completed booking. The
// review row is written first; its unique booking index makes exactly one
// of two racing submissions win, and the booking's version guard catches
// the loser before it can double-attach.
func (s *ReviewService) SubmitReview(ctx context.Context, bookingID uuid.UUID, customerID uuid.UUID, req SubmitReviewRequest) (*BookingDTO, error) {
	bk, err := s.bookings.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if bk.Version() != req.Version {
		return nil, domain.NewStaleStateError("booking has changed since it was read, re-fetch and retry")
	}

	if err := bk.CanReview(customerID, bookingDomain.RoleCustomer); err != nil {
		return nil, err
	}

	now := s.now()
	rv, err := reviewDomain.NewReview(bk.ID(), bk.CustomerID(), bk.WorkerID(), req.Rating, req.Comment, req.ImageURLs, now)
	if err != nil {
		return nil, err
	}

	if err := s.reviews.Save(ctx, rv); err != nil {
		return nil, err
	}

	if err := bk.AttachReview(rv.ID(), customerID, bookingDomain.RoleCustomer, now); err != nil {
		return nil, err
	}
	bk.IncrementVersion(now)
	if err := s.bookings.Update(ctx, bk); err != nil {
		return nil, err
	}

	s.invalidateRating(ctx, bk.WorkerID())
	s.publishReviewSubmitted(ctx, rv, now)

	dto := bookingToDTO(bk, now)
	return &dto, nil
}

// GetWorkerReviews retrieves paginated reviews received by a worker.
func (s *ReviewService) GetWorkerReviews(ctx context.Context, workerID uuid.UUID, page, limit int) ([]ReviewDTO, int64, error) {
	reviews, total, err := s.reviews.FindByWorkerID(ctx, workerID, page, limit)
	if err != nil {
		return nil, 0, err
	}

	dtos := make([]ReviewDTO, len(reviews))
	for i, rv := range reviews {
		dtos[i] = toReviewDTO(rv)
	}
	return dtos, total, nil
}

// GetWorkerRating returns the worker's review count and average rating,
// served from redis when fresh.
func (s *ReviewService) GetWorkerRating(ctx context.Context, workerID uuid.UUID) (*reviewDomain.RatingSummary, error) {
	key := ratingCacheKey(workerID)

	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, key).Bytes(); err == nil {
			var summary reviewDomain.RatingSummary
			if err := json.Unmarshal(cached, &summary); err == nil {
				return &summary, nil
			}
		}
	}

	summary, err := s.reviews.RatingSummary(ctx, workerID)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if payload, err := json.Marshal(summary); err == nil {
			if err := s.cache.Set(ctx, key, payload, ratingCacheTTL).Err(); err != nil {
				s.logger.Warn("failed to cache rating summary", zap.Error(err))
			}
		}
	}
	return summary, nil
}

func (s *ReviewService) invalidateRating(ctx context.Context, workerID uuid.UUID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, ratingCacheKey(workerID)).Err(); err != nil {
		s.logger.Warn("failed to invalidate rating cache",
			zap.String("worker_id", workerID.String()),
			zap.Error(err),
		)
	}
}

func (s *ReviewService) publishReviewSubmitted(ctx context.Context, rv *reviewDomain.Review, at time.Time) {
	evt := events.ReviewSubmittedEvent{
		ReviewID:  rv.ID(),
		BookingID: rv.BookingID(),
		WorkerID:  rv.WorkerID(),
		Rating:    rv.Rating(),
		At:        at,
	}
	cloudEvent, err := kafka.NewCloudEvent(eventSource, events.ReviewSubmitted, evt)
	if err != nil {
		s.logger.Error("failed to create cloud event", zap.Error(err))
		return
	}
	if err := s.producer.Publish(ctx, events.TopicReviewEvents, rv.BookingID().String(), cloudEvent); err != nil {
		s.logger.Error("failed to publish review event", zap.Error(err))
	}
}

func ratingCacheKey(workerID uuid.UUID) string {
	return fmt.Sprintf("worker:rating:%s", workerID)
}

func toReviewDTO(rv *reviewDomain.Review) ReviewDTO {
	return ReviewDTO{
		ID:         rv.ID(),
		BookingID:  rv.BookingID(),
		CustomerID: rv.CustomerID(),
		WorkerID:   rv.WorkerID(),
		Rating:     rv.Rating(),
		Comment:    rv.Comment(),
		ImageURLs:  rv.ImageURLs(),
		CreatedAt:  rv.CreatedAt(),
	}
}
