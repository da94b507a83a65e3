package booking

import (
	"time"

	"github.com/google/uuid"

	"github.com/jasalink/service-booking/internal/domain"
)

const (
	maxDescriptionLen = 1000
	maxReasonLen      = 500
)

// Booking is the aggregate root for a single service engagement between a
// customer and a worker. It holds no wall clock of its own: every behavior
// method takes the caller's notion of "now" so that time-window rules are
// deterministic under test.
type Booking struct {
	id          uuid.UUID
	customerID  uuid.UUID
	workerID    uuid.UUID
	status      Status
	description string
	scheduledAt time.Time

	// quotes is the negotiation history, oldest first. At most one entry is
	// proposed-and-unexpired at any time; superseded quotes are marked
	// expired, never removed.
	quotes []Quote

	cancelReason  string
	declineReason string
	reviewID      *uuid.UUID

	completedAt *time.Time
	cancelledAt *time.Time

	version   int64
	createdAt time.Time
	updatedAt time.Time
}

// NewBooking creates a new Booking aggregate with status=quote_requested.
func NewBooking(customerID, workerID uuid.UUID, scheduledAt time.Time, description string, now time.Time) (*Booking, error) {
	if customerID == uuid.Nil {
		return nil, domain.NewValidationError("customer ID is required")
	}
	if workerID == uuid.Nil {
		return nil, domain.NewValidationError("worker ID is required")
	}
	if description == "" {
		return nil, domain.NewValidationError("description is required")
	}
	if len(description) > maxDescriptionLen {
		return nil, domain.NewValidationError("description is too long")
	}
	if !scheduledAt.After(now) {
		return nil, domain.NewInvalidScheduleError("scheduled time must be in the future")
	}

	return &Booking{
		id:          uuid.New(),
		customerID:  customerID,
		workerID:    workerID,
		status:      StatusQuoteRequested,
		description: description,
		scheduledAt: scheduledAt,
		version:     1,
		createdAt:   now,
		updatedAt:   now,
	}, nil
}

// ReconstructBooking rebuilds a Booking from persistence data (no validation).
func ReconstructBooking(
	id uuid.UUID,
	customerID uuid.UUID,
	workerID uuid.UUID,
	status Status,
	description string,
	scheduledAt time.Time,
	quotes []Quote,
	cancelReason string,
	declineReason string,
	reviewID *uuid.UUID,
	completedAt *time.Time,
	cancelledAt *time.Time,
	version int64,
	createdAt time.Time,
	updatedAt time.Time,
) *Booking {
	return &Booking{
		id:            id,
		customerID:    customerID,
		workerID:      workerID,
		status:        status,
		description:   description,
		scheduledAt:   scheduledAt,
		quotes:        quotes,
		cancelReason:  cancelReason,
		declineReason: declineReason,
		reviewID:      reviewID,
		completedAt:   completedAt,
		cancelledAt:   cancelledAt,
		version:       version,
		createdAt:     createdAt,
		updatedAt:     updatedAt,
	}
}

// --- Getters ---

// ID returns the booking's unique identifier.
func (b *Booking) ID() uuid.UUID { return b.id }

// CustomerID returns the requesting customer's user ID.
func (b *Booking) CustomerID() uuid.UUID { return b.customerID }

// WorkerID returns the worker's user ID.
func (b *Booking) WorkerID() uuid.UUID { return b.workerID }

// Status returns the current booking status.
func (b *Booking) Status() Status { return b.status }

// Description returns the customer's description of the requested service.
func (b *Booking) Description() string { return b.description }

// ScheduledAt returns the agreed or requested service time.
func (b *Booking) ScheduledAt() time.Time { return b.scheduledAt }

// Quotes returns the full negotiation history, oldest first.
func (b *Booking) Quotes() []Quote { return b.quotes }

// CancelReason returns the cancellation reason.
func (b *Booking) CancelReason() string { return b.cancelReason }

// DeclineReason returns the reason given when the request was declined directly.
func (b *Booking) DeclineReason() string { return b.declineReason }

// ReviewID returns the attached review's ID, or nil if not reviewed.
func (b *Booking) ReviewID() *uuid.UUID { return b.reviewID }

// CompletedAt returns the time the work was completed.
func (b *Booking) CompletedAt() *time.Time { return b.completedAt }

// CancelledAt returns the time the booking was cancelled.
func (b *Booking) CancelledAt() *time.Time { return b.cancelledAt }

// Version returns the entity version for optimistic locking.
func (b *Booking) Version() int64 { return b.version }

// CreatedAt returns the creation timestamp.
func (b *Booking) CreatedAt() time.Time { return b.createdAt }

// UpdatedAt returns the last-updated timestamp.
func (b *Booking) UpdatedAt() time.Time { return b.updatedAt }

// CurrentQuote returns the quote currently awaiting a response, or nil.
// A proposed quote whose validity has lapsed does not count.
func (b *Booking) CurrentQuote(now time.Time) *Quote {
	for i := len(b.quotes) - 1; i >= 0; i-- {
		if b.quotes[i].EffectiveStatus(now) == QuoteProposed {
			return &b.quotes[i]
		}
	}
	return nil
}

// PartyRole reports which side of the booking the given user is on.
func (b *Booking) PartyRole(userID uuid.UUID) (Role, bool) {
	switch userID {
	case b.customerID:
		return RoleCustomer, true
	case b.workerID:
		return RoleWorker, true
	}
	return "", false
}

// --- Behavior ---

// transitionTo runs the status change through the state machine and stamps
// the lifecycle timestamp on success.
func (b *Booking) transitionTo(requested Status, actor Role, now time.Time) error {
	field, err := Transition(b.status, requested, actor)
	if err != nil {
		return err
	}
	b.status = requested
	field.stamp(b, now)
	b.updatedAt = now
	return nil
}

// ProposeQuote records a worker's price proposal. The first quote on a
// fresh request moves the booking to pending; proposing on an already
// pending booking leaves the status unchanged.
func (b *Booking) ProposeQuote(amountCents int64, details string, validUntil *time.Time, actor Role, now time.Time) (*Quote, error) {
	if actor != RoleWorker {
		return nil, domain.NewUnauthorizedActorError(string(actor), string(b.status), string(StatusPending))
	}
	if b.status != StatusQuoteRequested && b.status != StatusPending {
		return nil, domain.NewWrongStatusError("quote", string(b.status))
	}
	if b.CurrentQuote(now) != nil {
		return nil, &domain.Error{Kind: domain.KindWrongStatus, Message: "a quote is already awaiting a response on this booking"}
	}
	if amountCents <= 0 {
		return nil, domain.NewValidationError("quote amount must be positive")
	}
	if validUntil != nil && !validUntil.After(now) {
		return nil, domain.NewValidationError("quote validity must end in the future")
	}

	// Materialize lazy expiry on any superseded quote so the history never
	// carries two proposed entries.
	for i := range b.quotes {
		if b.quotes[i].Status == QuoteProposed {
			b.quotes[i].Status = QuoteExpired
		}
	}

	q := Quote{
		ID:          uuid.New(),
		AmountCents: amountCents,
		Details:     details,
		ProposedAt:  now,
		ValidUntil:  validUntil,
		Status:      QuoteProposed,
	}
	b.quotes = append(b.quotes, q)

	if b.status == StatusQuoteRequested {
		if err := b.transitionTo(StatusPending, actor, now); err != nil {
			return nil, err
		}
	} else {
		b.updatedAt = now
	}
	return &b.quotes[len(b.quotes)-1], nil
}

// AcceptQuote accepts the named quote on the customer's behalf. The quote
// status and booking status change together; a failure leaves both
// untouched.
func (b *Booking) AcceptQuote(quoteID uuid.UUID, actor Role, now time.Time) error {
	if actor != RoleCustomer {
		return domain.NewUnauthorizedActorError(string(actor), string(b.status), string(StatusAccepted))
	}
	q := b.findQuote(quoteID)
	if q == nil || q.Status != QuoteProposed {
		return domain.NewQuoteNotFoundError(quoteID.String())
	}
	if q.IsExpired(now) {
		return domain.NewQuoteExpiredError()
	}
	if err := b.transitionTo(StatusAccepted, actor, now); err != nil {
		return err
	}
	q.Status = QuoteAccepted
	return nil
}

// DeclineQuote declines the named quote on the customer's behalf and the
// booking with it. The reason is stored for audit only.
func (b *Booking) DeclineQuote(quoteID uuid.UUID, reason string, actor Role, now time.Time) error {
	if actor != RoleCustomer {
		return domain.NewUnauthorizedActorError(string(actor), string(b.status), string(StatusDeclined))
	}
	if len(reason) > maxReasonLen {
		return domain.NewValidationError("decline reason is too long")
	}
	q := b.findQuote(quoteID)
	if q == nil || (q.Status != QuoteProposed && q.Status != QuoteExpired) {
		return domain.NewQuoteNotFoundError(quoteID.String())
	}
	if err := b.transitionTo(StatusDeclined, actor, now); err != nil {
		return err
	}
	q.Status = QuoteDeclined
	q.DeclineReason = reason
	return nil
}

// Accept lets the worker take the booking at its requested terms without a
// quote round-trip.
func (b *Booking) Accept(actor Role, now time.Time) error {
	if actor != RoleWorker {
		return domain.NewUnauthorizedActorError(string(actor), string(b.status), string(StatusAccepted))
	}
	return b.transitionTo(StatusAccepted, actor, now)
}

// Decline lets the worker turn down the request outright.
func (b *Booking) Decline(reason string, actor Role, now time.Time) error {
	if actor != RoleWorker {
		return domain.NewUnauthorizedActorError(string(actor), string(b.status), string(StatusDeclined))
	}
	if len(reason) > maxReasonLen {
		return domain.NewValidationError("decline reason is too long")
	}
	if err := b.transitionTo(StatusDeclined, actor, now); err != nil {
		return err
	}
	b.declineReason = reason
	return nil
}

// StartWork transitions the booking from accepted to in_progress.
func (b *Booking) StartWork(actor Role, now time.Time) error {
	return b.transitionTo(StatusInProgress, actor, now)
}

// CompleteWork transitions the booking from in_progress to completed and
// stamps completedAt.
func (b *Booking) CompleteWork(actor Role, now time.Time) error {
	return b.transitionTo(StatusCompleted, actor, now)
}

// Cancel transitions the booking to cancelled and stamps cancelledAt. The
// time-window policy is layered on top of this by Policy.Cancel; this
// method enforces transition legality only.
func (b *Booking) Cancel(reason string, actor Role, now time.Time) error {
	if len(reason) > maxReasonLen {
		return domain.NewValidationError("cancel reason is too long")
	}
	if err := b.transitionTo(StatusCancelled, actor, now); err != nil {
		return err
	}
	b.cancelReason = reason
	return nil
}

// Reschedule moves the agreed service time without changing status. The
// time-window policy is layered on top by Policy.Reschedule.
func (b *Booking) Reschedule(newTime time.Time, now time.Time) error {
	if !newTime.After(now) {
		return domain.NewInvalidScheduleError("new scheduled time must be in the future")
	}
	b.scheduledAt = newTime
	b.updatedAt = now
	return nil
}

// CanReview reports whether the given actor may attach a review right now.
func (b *Booking) CanReview(actorID uuid.UUID, actor Role) error {
	if actor != RoleCustomer || actorID != b.customerID {
		return domain.NewForbiddenError("only the booking's customer may leave a review")
	}
	if b.status != StatusCompleted {
		return domain.NewNotCompletedError(string(b.status))
	}
	if b.reviewID != nil {
		return domain.NewAlreadyReviewedError()
	}
	return nil
}

// AttachReview links a review to the booking. The link is one-way: once set
// it is never cleared, so a second attach always fails AlreadyReviewed.
func (b *Booking) AttachReview(reviewID uuid.UUID, actorID uuid.UUID, actor Role, now time.Time) error {
	if err := b.CanReview(actorID, actor); err != nil {
		return err
	}
	id := reviewID
	b.reviewID = &id
	b.updatedAt = now
	return nil
}

// IncrementVersion bumps the version for optimistic locking.
func (b *Booking) IncrementVersion(now time.Time) {
	b.version++
	b.updatedAt = now
}

func (b *Booking) findQuote(quoteID uuid.UUID) *Quote {
	for i := range b.quotes {
		if b.quotes[i].ID == quoteID {
			return &b.quotes[i]
		}
	}
	return nil
}
