package booking

import (
	"time"

	"github.com/jasalink/service-booking/internal/domain"
)

// Default lead times before the scheduled service time. Rescheduling needs
// more notice than an outright cancellation.
const (
	DefaultCancelLeadTime     = 2 * time.Hour
	DefaultRescheduleLeadTime = 4 * time.Hour
)

// cancellableStatuses are the phases during which the schedule window rules
// apply. Work already in progress is settled between the parties directly
// and cannot be cancelled through this policy.
var cancellableStatuses = map[Status]bool{
	StatusQuoteRequested: true,
	StatusPending:        true,
	StatusAccepted:       true,
}

// Policy evaluates the time-windowed cancellation and reschedule rules.
// It is a separate layer over the transition table on purpose: widening a
// window never touches transition legality, and vice versa.
type Policy struct {
	CancelLeadTime     time.Duration
	RescheduleLeadTime time.Duration
}

// DefaultPolicy returns the policy with the standard 2h/4h lead times.
func DefaultPolicy() Policy {
	return Policy{
		CancelLeadTime:     DefaultCancelLeadTime,
		RescheduleLeadTime: DefaultRescheduleLeadTime,
	}
}

// CanCancel returns nil iff the booking may be cancelled at the given
// instant. The lead-time comparison is strict: exactly at the boundary the
// window is already closed.
func (p Policy) CanCancel(b *Booking, now time.Time) error {
	if !cancellableStatuses[b.Status()] {
		return domain.NewWrongStatusError("cancel", string(b.Status()))
	}
	if b.ScheduledAt().Sub(now) <= p.CancelLeadTime {
		return domain.NewTooCloseToScheduleError("cancelled", p.CancelLeadTime.String())
	}
	return nil
}

// CanReschedule returns nil iff the booking may be rescheduled at the given
// instant. Same statuses as cancellation, stricter window.
func (p Policy) CanReschedule(b *Booking, now time.Time) error {
	if !cancellableStatuses[b.Status()] {
		return domain.NewWrongStatusError("reschedule", string(b.Status()))
	}
	if b.ScheduledAt().Sub(now) <= p.RescheduleLeadTime {
		return domain.NewTooCloseToScheduleError("rescheduled", p.RescheduleLeadTime.String())
	}
	return nil
}

// Cancel re-validates the window and then delegates to the state machine.
// A caller must pass both checks for cancellation to succeed.
func (p Policy) Cancel(b *Booking, reason string, actor Role, now time.Time) error {
	if err := p.CanCancel(b, now); err != nil {
		return err
	}
	return b.Cancel(reason, actor, now)
}

// Reschedule re-validates the window and then moves the scheduled time.
func (p Policy) Reschedule(b *Booking, newTime time.Time, now time.Time) error {
	if err := p.CanReschedule(b, now); err != nil {
		return err
	}
	return b.Reschedule(newTime, now)
}
