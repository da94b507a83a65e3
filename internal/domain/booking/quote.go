package booking

import (
	"time"

	"github.com/google/uuid"
)

// QuoteStatus represents the state of a price quote within a booking.
type QuoteStatus string

const (
	QuoteProposed QuoteStatus = "proposed"
	QuoteAccepted QuoteStatus = "accepted"
	QuoteDeclined QuoteStatus = "declined"
	QuoteExpired  QuoteStatus = "expired"
)

// Quote is a worker's proposed price and terms for a booking. It is a value
// object embedded in the Booking aggregate; once accepted or declined it is
// terminal, and an expired quote is never revived — re-negotiation always
// creates a new Quote.
type Quote struct {
	ID            uuid.UUID   `json:"id"`
	AmountCents   int64       `json:"amount_cents"`
	Details       string      `json:"details"`
	ProposedAt    time.Time   `json:"proposed_at"`
	ValidUntil    *time.Time  `json:"valid_until,omitempty"`
	Status        QuoteStatus `json:"status"`
	DeclineReason string      `json:"decline_reason,omitempty"`
}

// IsExpired reports whether the quote's validity window has passed. Expiry
// is evaluated lazily at read time; no background process sweeps quotes.
func (q Quote) IsExpired(now time.Time) bool {
	return q.ValidUntil != nil && now.After(*q.ValidUntil)
}

// EffectiveStatus returns the quote status with lazy expiry applied: a
// still-proposed quote whose validity has passed reads as expired.
func (q Quote) EffectiveStatus(now time.Time) QuoteStatus {
	if q.Status == QuoteProposed && q.IsExpired(now) {
		return QuoteExpired
	}
	return q.Status
}
