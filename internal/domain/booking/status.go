package booking

import (
	"fmt"
	"time"

	"github.com/jasalink/service-booking/internal/domain"
)

// Status represents the current state of a booking in its lifecycle.
type Status string

const (
	StatusQuoteRequested Status = "quote_requested"
	StatusPending        Status = "pending"
	StatusAccepted       Status = "accepted"
	StatusInProgress     Status = "in_progress"
	StatusCompleted      Status = "completed"
	StatusCancelled      Status = "cancelled"
	StatusDeclined       Status = "declined"
)

// Role identifies which party requests a transition.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleWorker   Role = "worker"
	RoleSystem   Role = "system"
)

// StampField names the lifecycle timestamp a successful transition sets.
type StampField int

const (
	StampNone StampField = iota
	StampCompletedAt
	StampCancelledAt
)

// validTransitions defines the state machine for booking status transitions.
var validTransitions = map[Status][]Status{
	StatusQuoteRequested: {StatusPending, StatusAccepted, StatusDeclined, StatusCancelled},
	StatusPending:        {StatusAccepted, StatusDeclined, StatusCancelled},
	StatusAccepted:       {StatusInProgress, StatusCancelled},
	StatusInProgress:     {StatusCompleted, StatusCancelled},
	StatusCompleted:      {},
	StatusCancelled:      {},
	StatusDeclined:       {},
}

type edge struct {
	from, to Status
}

// edgeRoles restricts who may drive each legal transition. The customer
// appears on the accepted/declined edges because the quote sub-protocol
// reaches them on the customer's behalf; a worker reaches them by
// responding to the request directly.
var edgeRoles = map[edge][]Role{
	{StatusQuoteRequested, StatusPending}:   {RoleWorker},
	{StatusQuoteRequested, StatusAccepted}:  {RoleWorker},
	{StatusQuoteRequested, StatusDeclined}:  {RoleWorker},
	{StatusQuoteRequested, StatusCancelled}: {RoleCustomer, RoleWorker},
	{StatusPending, StatusAccepted}:         {RoleCustomer, RoleWorker},
	{StatusPending, StatusDeclined}:         {RoleCustomer, RoleWorker},
	{StatusPending, StatusCancelled}:        {RoleCustomer, RoleWorker},
	{StatusAccepted, StatusInProgress}:      {RoleWorker},
	{StatusAccepted, StatusCancelled}:       {RoleCustomer, RoleWorker},
	{StatusInProgress, StatusCompleted}:     {RoleWorker},
	{StatusInProgress, StatusCancelled}:     {RoleCustomer, RoleWorker},
}

// stampFields maps target statuses to the timestamp they set on arrival.
var stampFields = map[Status]StampField{
	StatusCompleted: StampCompletedAt,
	StatusCancelled: StampCancelledAt,
}

// Transition validates a proposed status change. It is a pure function of
// (current, requested, actor): on success it reports which lifecycle
// timestamp the caller must stamp, otherwise it fails with
// IllegalTransition or UnauthorizedActor and nothing else.
func Transition(current, requested Status, actor Role) (StampField, error) {
	if !current.CanTransitionTo(requested) {
		return StampNone, domain.NewIllegalTransitionError(string(current), string(requested))
	}
	allowed := edgeRoles[edge{current, requested}]
	for _, r := range allowed {
		if r == actor {
			return stampFields[requested], nil
		}
	}
	return StampNone, domain.NewUnauthorizedActorError(string(actor), string(current), string(requested))
}

// IsValid returns true if the status is a recognized booking status.
func (s Status) IsValid() bool {
	_, exists := validTransitions[s]
	return exists
}

// CanTransitionTo returns true if a transition from this status to the target is allowed.
func (s Status) CanTransitionTo(target Status) bool {
	allowed, exists := validTransitions[s]
	if !exists {
		return false
	}
	for _, t := range allowed {
		if t == target {
			return true
		}
	}
	return false
}

// IsTerminal returns true if no further transitions are possible from this status.
func (s Status) IsTerminal() bool {
	allowed, exists := validTransitions[s]
	if !exists {
		return true
	}
	return len(allowed) == 0
}

// String returns the string representation of the status.
func (s Status) String() string {
	return string(s)
}

// AllStatuses returns every recognized status.
func AllStatuses() []Status {
	return []Status{
		StatusQuoteRequested,
		StatusPending,
		StatusAccepted,
		StatusInProgress,
		StatusCompleted,
		StatusCancelled,
		StatusDeclined,
	}
}

// ParseStatus converts a string to a Status, returning an error if invalid.
func ParseStatus(s string) (Status, error) {
	status := Status(s)
	if !status.IsValid() {
		return "", fmt.Errorf("invalid booking status: %s", s)
	}
	return status, nil
}

// IsValid returns true if the role is a recognized actor role.
func (r Role) IsValid() bool {
	switch r {
	case RoleCustomer, RoleWorker, RoleSystem:
		return true
	}
	return false
}

// String returns the string representation of the role.
func (r Role) String() string {
	return string(r)
}

// ParseRole converts a string to a Role, returning an error if invalid.
func ParseRole(s string) (Role, error) {
	role := Role(s)
	if !role.IsValid() {
		return "", fmt.Errorf("invalid actor role: %s", s)
	}
	return role, nil
}

// stamp applies a StampField to the matching timestamp pointer.
func (f StampField) stamp(b *Booking, now time.Time) {
	switch f {
	case StampCompletedAt:
		t := now
		b.completedAt = &t
	case StampCancelledAt:
		t := now
		b.cancelledAt = &t
	}
}
