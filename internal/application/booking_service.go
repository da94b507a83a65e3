package application

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jasalink/service-booking/internal/domain"
	bookingDomain "github.com/jasalink/service-booking/internal/domain/booking"
	"github.com/jasalink/service-booking/internal/events"
	"github.com/jasalink/service-booking/pkg/kafka"
)

const eventSource = "service-booking"

// EventPublisher publishes CloudEvents; satisfied by *kafka.Producer.
type EventPublisher interface {
	Publish(ctx context.Context, topic, key string, event kafka.CloudEvent) error
}

// CreateBookingRequest holds the data needed to request a new booking.
type CreateBookingRequest struct {
	WorkerID    uuid.UUID `json:"worker_id" binding:"required"`
	ScheduledAt time.Time `json:"scheduled_at" binding:"required"`
	Description string    `json:"description" binding:"required"`
}

// ProposeQuoteRequest holds a worker's quote proposal.
type ProposeQuoteRequest struct {
	Version     int64      `json:"version" binding:"required"`
	AmountCents int64      `json:"amount_cents" binding:"required"`
	Details     string     `json:"details"`
	ValidUntil  *time.Time `json:"valid_until"`
}

// RespondRequest holds an accept/decline decision on a booking. A customer
// decision targets the current quote and must name it; a worker decision
// responds to the request directly.
type RespondRequest struct {
	Version  int64      `json:"version" binding:"required"`
	Decision string     `json:"decision" binding:"required,oneof=accept decline"`
	QuoteID  *uuid.UUID `json:"quote_id"`
	Reason   string     `json:"reason"`
}

// QuoteDTO is the response representation of a quote, with lazy expiry
// already applied to the status.
type QuoteDTO struct {
	ID            uuid.UUID  `json:"id"`
	AmountCents   int64      `json:"amount_cents"`
	Details       string     `json:"details,omitempty"`
	ProposedAt    time.Time  `json:"proposed_at"`
	ValidUntil    *time.Time `json:"valid_until,omitempty"`
	Status        string     `json:"status"`
	DeclineReason string     `json:"decline_reason,omitempty"`
}

// BookingDTO is the response representation of a booking.
type BookingDTO struct {
	ID            uuid.UUID  `json:"id"`
	CustomerID    uuid.UUID  `json:"customer_id"`
	WorkerID      uuid.UUID  `json:"worker_id"`
	Status        string     `json:"status"`
	Description   string     `json:"description"`
	ScheduledAt   time.Time  `json:"scheduled_at"`
	Quotes        []QuoteDTO `json:"quotes,omitempty"`
	CancelReason  string     `json:"cancel_reason,omitempty"`
	DeclineReason string     `json:"decline_reason,omitempty"`
	ReviewID      *uuid.UUID `json:"review_id,omitempty"`
	CompletedAt   *time.Time `json:"completed_at,omitempty"`
	CancelledAt   *time.Time `json:"cancelled_at,omitempty"`
	Version       int64      `json:"version"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// BookingService orchestrates the booking lifecycle: it loads a snapshot,
// applies the engine's rules, persists the result under optimistic locking,
// and emits lifecycle events. It never samples the wall clock inside a
// decision; a single injected clock supplies "now".
type BookingService struct {
	repo     bookingDomain.Repository
	policy   bookingDomain.Policy
	producer EventPublisher
	logger   *zap.Logger
	now      func() time.Time
}

// NewBookingService creates a new BookingService.
func NewBookingService(
	repo bookingDomain.Repository,
	policy bookingDomain.Policy,
	producer EventPublisher,
	logger *zap.Logger,
) *BookingService {
	return &BookingService{
		repo:     repo,
		policy:   policy,
		producer: producer,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// RequestBooking creates a new booking in quote_requested for the customer.
func (s *BookingService) RequestBooking(ctx context.Context, customerID uuid.UUID, req CreateBookingRequest) (*BookingDTO, error) {
	now := s.now()
	bk, err := bookingDomain.NewBooking(customerID, req.WorkerID, req.ScheduledAt, req.Description, now)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Save(ctx, bk); err != nil {
		return nil, err
	}

	s.publishLifecycle(ctx, events.BookingRequested, bk, "", bookingDomain.RoleCustomer, now)

	dto := s.toBookingDTO(bk)
	return &dto, nil
}

// ProposeQuote records a worker's quote against the booking.
func (s *BookingService) ProposeQuote(ctx context.Context, bookingID uuid.UUID, workerID uuid.UUID, req ProposeQuoteRequest) (*BookingDTO, error) {
	bk, err := s.loadVersion(ctx, bookingID, req.Version)
	if err != nil {
		return nil, err
	}
	role, err := s.partyRole(bk, workerID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	from := bk.Status()
	quote, err := bk.ProposeQuote(req.AmountCents, req.Details, req.ValidUntil, role, now)
	if err != nil {
		return nil, err
	}

	if err := s.persist(ctx, bk, now); err != nil {
		return nil, err
	}

	s.publishEvent(ctx, events.TopicBookingEvents, events.QuoteProposed, bk.ID().String(), events.QuoteProposedEvent{
		BookingID:   bk.ID(),
		QuoteID:     quote.ID,
		WorkerID:    bk.WorkerID(),
		AmountCents: quote.AmountCents,
		ValidUntil:  quote.ValidUntil,
		At:          now,
	})
	if from != bk.Status() {
		s.publishLifecycle(ctx, events.QuoteProposed, bk, from, role, now)
	}

	dto := s.toBookingDTO(bk)
	return &dto, nil
}

// RespondToBooking applies an accept or decline decision from either party.
func (s *BookingService) RespondToBooking(ctx context.Context, bookingID uuid.UUID, actorID uuid.UUID, req RespondRequest) (*BookingDTO, error) {
	bk, err := s.loadVersion(ctx, bookingID, req.Version)
	if err != nil {
		return nil, err
	}
	role, err := s.partyRole(bk, actorID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	from := bk.Status()

	switch role {
	case bookingDomain.RoleCustomer:
		if req.QuoteID == nil {
			return nil, domain.NewValidationError("quote_id is required to respond to a quote")
		}
		if req.Decision == "accept" {
			err = bk.AcceptQuote(*req.QuoteID, role, now)
		} else {
			err = bk.DeclineQuote(*req.QuoteID, req.Reason, role, now)
		}
	case bookingDomain.RoleWorker:
		if req.Decision == "accept" {
			err = bk.Accept(role, now)
		} else {
			err = bk.Decline(req.Reason, role, now)
		}
	}
	if err != nil {
		return nil, err
	}

	if err := s.persist(ctx, bk, now); err != nil {
		return nil, err
	}

	eventType := events.BookingAccepted
	if bk.Status() == bookingDomain.StatusDeclined {
		eventType = events.BookingDeclined
	}
	s.publishLifecycle(ctx, eventType, bk, from, role, now)

	dto := s.toBookingDTO(bk)
	return &dto, nil
}

// StartWork marks the worker as on-site and working.
func (s *BookingService) StartWork(ctx context.Context, bookingID uuid.UUID, actorID uuid.UUID, version int64) (*BookingDTO, error) {
	return s.transition(ctx, bookingID, actorID, version, events.WorkStarted,
		func(bk *bookingDomain.Booking, role bookingDomain.Role, now time.Time) error {
			return bk.StartWork(role, now)
		})
}

// CompleteWork marks the job finished and stamps completedAt.
func (s *BookingService) CompleteWork(ctx context.Context, bookingID uuid.UUID, actorID uuid.UUID, version int64) (*BookingDTO, error) {
	return s.transition(ctx, bookingID, actorID, version, events.WorkCompleted,
		func(bk *bookingDomain.Booking, role bookingDomain.Role, now time.Time) error {
			return bk.CompleteWork(role, now)
		})
}

// CancelBooking cancels a booking, subject to the lead-time policy.
func (s *BookingService) CancelBooking(ctx context.Context, bookingID uuid.UUID, actorID uuid.UUID, version int64, reason string) (*BookingDTO, error) {
	return s.transition(ctx, bookingID, actorID, version, events.BookingCancelled,
		func(bk *bookingDomain.Booking, role bookingDomain.Role, now time.Time) error {
			return s.policy.Cancel(bk, reason, role, now)
		})
}

// RescheduleBooking moves the agreed service time, subject to the stricter
// reschedule lead-time policy. The status does not change.
func (s *BookingService) RescheduleBooking(ctx context.Context, bookingID uuid.UUID, actorID uuid.UUID, version int64, newTime time.Time) (*BookingDTO, error) {
	bk, err := s.loadVersion(ctx, bookingID, version)
	if err != nil {
		return nil, err
	}
	role, err := s.partyRole(bk, actorID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	oldTime := bk.ScheduledAt()
	if err := s.policy.Reschedule(bk, newTime, now); err != nil {
		return nil, err
	}

	if err := s.persist(ctx, bk, now); err != nil {
		return nil, err
	}

	s.publishEvent(ctx, events.TopicBookingEvents, events.BookingRescheduled, bk.ID().String(), events.BookingRescheduledEvent{
		BookingID:      bk.ID(),
		OldScheduledAt: oldTime,
		NewScheduledAt: newTime,
		ActorRole:      string(role),
		At:             now,
	})

	dto := s.toBookingDTO(bk)
	return &dto, nil
}

// GetBooking retrieves a single booking visible to the caller.
func (s *BookingService) GetBooking(ctx context.Context, bookingID uuid.UUID, actorID uuid.UUID, isAdmin bool) (*BookingDTO, error) {
	bk, err := s.repo.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !isAdmin {
		if _, ok := bk.PartyRole(actorID); !ok {
			return nil, domain.NewForbiddenError("booking does not involve this user")
		}
	}
	dto := s.toBookingDTO(bk)
	return &dto, nil
}

// GetCustomerBookings retrieves paginated bookings requested by a customer.
func (s *BookingService) GetCustomerBookings(ctx context.Context, customerID uuid.UUID, page, limit int) ([]BookingDTO, int64, error) {
	bookings, total, err := s.repo.FindByCustomerID(ctx, customerID, page, limit)
	if err != nil {
		return nil, 0, err
	}
	return s.toBookingDTOs(bookings), total, nil
}

// GetWorkerBookings retrieves paginated bookings addressed to a worker.
func (s *BookingService) GetWorkerBookings(ctx context.Context, workerID uuid.UUID, page, limit int) ([]BookingDTO, int64, error) {
	bookings, total, err := s.repo.FindByWorkerID(ctx, workerID, page, limit)
	if err != nil {
		return nil, 0, err
	}
	return s.toBookingDTOs(bookings), total, nil
}

// --- Admin ---

// BookingStatsDTO holds booking counts for the admin dashboard.
type BookingStatsDTO struct {
	TotalBookings int64            `json:"total_bookings"`
	ByStatus      map[string]int64 `json:"by_status"`
}

// ListAllBookings returns a paginated list of all bookings (admin).
func (s *BookingService) ListAllBookings(ctx context.Context, page, limit int) ([]BookingDTO, int64, error) {
	bookings, total, err := s.repo.ListAll(ctx, page, limit)
	if err != nil {
		return nil, 0, err
	}
	return s.toBookingDTOs(bookings), total, nil
}

// GetBookingStats returns aggregate booking statistics (admin).
func (s *BookingService) GetBookingStats(ctx context.Context) (*BookingStatsDTO, error) {
	counts, err := s.repo.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}

	var total int64
	for _, c := range counts {
		total += c
	}
	return &BookingStatsDTO{TotalBookings: total, ByStatus: counts}, nil
}

// --- Helpers ---

// transition is the shared shape of the single-step lifecycle operations:
// load at the expected version, resolve the caller's side, apply, persist,
// publish.
func (s *BookingService) transition(
	ctx context.Context,
	bookingID uuid.UUID,
	actorID uuid.UUID,
	version int64,
	eventType string,
	apply func(*bookingDomain.Booking, bookingDomain.Role, time.Time) error,
) (*BookingDTO, error) {
	bk, err := s.loadVersion(ctx, bookingID, version)
	if err != nil {
		return nil, err
	}
	role, err := s.partyRole(bk, actorID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	from := bk.Status()
	if err := apply(bk, role, now); err != nil {
		return nil, err
	}

	if err := s.persist(ctx, bk, now); err != nil {
		return nil, err
	}

	s.publishLifecycle(ctx, eventType, bk, from, role, now)

	dto := s.toBookingDTO(bk)
	return &dto, nil
}

// loadVersion fetches the booking and rejects the call with StaleState when
// the caller's snapshot is behind the stored aggregate. The version-guarded
// UPDATE enforces the same rule again at write time.
func (s *BookingService) loadVersion(ctx context.Context, id uuid.UUID, version int64) (*bookingDomain.Booking, error) {
	bk, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if bk.Version() != version {
		return nil, domain.NewStaleStateError("booking has changed since it was read, re-fetch and retry")
	}
	return bk, nil
}

// partyRole resolves which side of the booking the caller is on.
func (s *BookingService) partyRole(bk *bookingDomain.Booking, actorID uuid.UUID) (bookingDomain.Role, error) {
	role, ok := bk.PartyRole(actorID)
	if !ok {
		return "", domain.NewForbiddenError("booking does not involve this user")
	}
	return role, nil
}

func (s *BookingService) persist(ctx context.Context, bk *bookingDomain.Booking, now time.Time) error {
	bk.IncrementVersion(now)
	return s.repo.Update(ctx, bk)
}

func (s *BookingService) publishLifecycle(ctx context.Context, eventType string, bk *bookingDomain.Booking, from bookingDomain.Status, actor bookingDomain.Role, at time.Time) {
	s.publishEvent(ctx, events.TopicBookingEvents, eventType, bk.ID().String(), events.LifecycleEvent{
		BookingID:  bk.ID(),
		CustomerID: bk.CustomerID(),
		WorkerID:   bk.WorkerID(),
		FromStatus: string(from),
		ToStatus:   string(bk.Status()),
		ActorRole:  string(actor),
		At:         at,
	})
}

// publishEvent is fire-and-forget: a broker outage never fails the
// transition that triggered it.
func (s *BookingService) publishEvent(ctx context.Context, topic, eventType, key string, data interface{}) {
	cloudEvent, err := kafka.NewCloudEvent(eventSource, eventType, data)
	if err != nil {
		s.logger.Error("failed to create cloud event",
			zap.String("event_type", eventType),
			zap.Error(err),
		)
		return
	}

	if err := s.producer.Publish(ctx, topic, key, cloudEvent); err != nil {
		s.logger.Error("failed to publish event",
			zap.String("topic", topic),
			zap.String("event_type", eventType),
			zap.Error(err),
		)
	}
}

func (s *BookingService) toBookingDTO(bk *bookingDomain.Booking) BookingDTO {
	return bookingToDTO(bk, s.now())
}

func bookingToDTO(bk *bookingDomain.Booking, now time.Time) BookingDTO {
	quotes := make([]QuoteDTO, len(bk.Quotes()))
	for i, q := range bk.Quotes() {
		quotes[i] = QuoteDTO{
			ID:            q.ID,
			AmountCents:   q.AmountCents,
			Details:       q.Details,
			ProposedAt:    q.ProposedAt,
			ValidUntil:    q.ValidUntil,
			Status:        string(q.EffectiveStatus(now)),
			DeclineReason: q.DeclineReason,
		}
	}

	return BookingDTO{
		ID:            bk.ID(),
		CustomerID:    bk.CustomerID(),
		WorkerID:      bk.WorkerID(),
		Status:        string(bk.Status()),
		Description:   bk.Description(),
		ScheduledAt:   bk.ScheduledAt(),
		Quotes:        quotes,
		CancelReason:  bk.CancelReason(),
		DeclineReason: bk.DeclineReason(),
		ReviewID:      bk.ReviewID(),
		CompletedAt:   bk.CompletedAt(),
		CancelledAt:   bk.CancelledAt(),
		Version:       bk.Version(),
		CreatedAt:     bk.CreatedAt(),
		UpdatedAt:     bk.UpdatedAt(),
	}
}

func (s *BookingService) toBookingDTOs(bookings []*bookingDomain.Booking) []BookingDTO {
	dtos := make([]BookingDTO, len(bookings))
	for i, bk := range bookings {
		dtos[i] = s.toBookingDTO(bk)
	}
	return dtos
}
