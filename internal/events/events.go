package events

import (
	"time"

	"github.com/google/uuid"
)

// Topics the service publishes to. Downstream consumers (notification
// dispatch, search indexing) subscribe to these; nothing in this service
// consumes them.
const (
	TopicBookingEvents = "booking.events"
	TopicReviewEvents  = "review.events"
)

// Event types, named <aggregate>.<fact>.
const (
	BookingRequested   = "booking.requested"
	QuoteProposed      = "booking.quote_proposed"
	BookingAccepted    = "booking.accepted"
	BookingDeclined    = "booking.declined"
	WorkStarted        = "booking.work_started"
	WorkCompleted      = "booking.work_completed"
	BookingCancelled   = "booking.cancelled"
	BookingRescheduled = "booking.rescheduled"
	ReviewSubmitted    = "review.submitted"
)

// LifecycleEvent is emitted on every successful status transition. It is
// the abstract notification contract: consumers learn what moved, who moved
// it, and when, without coupling to the full booking payload.
type LifecycleEvent struct {
	BookingID  uuid.UUID `json:"booking_id"`
	CustomerID uuid.UUID `json:"customer_id"`
	WorkerID   uuid.UUID `json:"worker_id"`
	FromStatus string    `json:"from_status"`
	ToStatus   string    `json:"to_status"`
	ActorRole  string    `json:"actor_role"`
	At         time.Time `json:"at"`
}

// QuoteProposedEvent is emitted when a worker proposes a quote, including
// when the proposal leaves the booking status unchanged.
type QuoteProposedEvent struct {
	BookingID   uuid.UUID  `json:"booking_id"`
	QuoteID     uuid.UUID  `json:"quote_id"`
	WorkerID    uuid.UUID  `json:"worker_id"`
	AmountCents int64      `json:"amount_cents"`
	ValidUntil  *time.Time `json:"valid_until,omitempty"`
	At          time.Time  `json:"at"`
}

// BookingRescheduledEvent is emitted when the scheduled time moves.
type BookingRescheduledEvent struct {
	BookingID      uuid.UUID `json:"booking_id"`
	OldScheduledAt time.Time `json:"old_scheduled_at"`
	NewScheduledAt time.Time `json:"new_scheduled_at"`
	ActorRole      string    `json:"actor_role"`
	At             time.Time `json:"at"`
}

// ReviewSubmittedEvent is emitted when a completed booking receives its review.
type ReviewSubmittedEvent struct {
	ReviewID  uuid.UUID `json:"review_id"`
	BookingID uuid.UUID `json:"booking_id"`
	WorkerID  uuid.UUID `json:"worker_id"`
	Rating    int       `json:"rating"`
	At        time.Time `json:"at"`
}
