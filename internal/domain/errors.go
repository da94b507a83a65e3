package domain

import "fmt"

// ErrorKind classifies a domain rejection. Every kind maps to exactly one
// HTTP status at the transport boundary and is never retryable as-is: the
// caller must re-fetch current state before trying again.
type ErrorKind string

const (
	KindIllegalTransition  ErrorKind = "ILLEGAL_TRANSITION"
	KindUnauthorizedActor  ErrorKind = "UNAUTHORIZED_ACTOR"
	KindStaleState         ErrorKind = "STALE_STATE"
	KindQuoteExpired       ErrorKind = "QUOTE_EXPIRED"
	KindQuoteNotFound      ErrorKind = "QUOTE_NOT_FOUND"
	KindTooCloseToSchedule ErrorKind = "TOO_CLOSE_TO_SCHEDULE"
	KindWrongStatus        ErrorKind = "WRONG_STATUS"
	KindAlreadyReviewed    ErrorKind = "ALREADY_REVIEWED"
	KindNotCompleted       ErrorKind = "NOT_COMPLETED"
	KindForbidden          ErrorKind = "FORBIDDEN"
	KindInvalidSchedule    ErrorKind = "INVALID_SCHEDULE"
	KindValidation         ErrorKind = "VALIDATION"
	KindNotFound           ErrorKind = "NOT_FOUND"
)

// Error is a structured domain rejection carrying a machine-readable kind
// and a human-readable reason.
type Error struct {
	Kind    ErrorKind
	Message string
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// NewIllegalTransitionError reports a status change not present in the transition table.
func NewIllegalTransitionError(from, to string) *Error {
	return &Error{Kind: KindIllegalTransition, Message: fmt.Sprintf("cannot transition booking from %s to %s", from, to)}
}

// NewUnauthorizedActorError reports a legal transition requested by the wrong party.
func NewUnauthorizedActorError(role, from, to string) *Error {
	return &Error{Kind: KindUnauthorizedActor, Message: fmt.Sprintf("role %s may not transition booking from %s to %s", role, from, to)}
}

// NewStaleStateError reports an optimistic-concurrency conflict.
func NewStaleStateError(message string) *Error {
	return &Error{Kind: KindStaleState, Message: message}
}

// NewQuoteExpiredError reports an attempt to act on a quote past its validity.
func NewQuoteExpiredError() *Error {
	return &Error{Kind: KindQuoteExpired, Message: "this quote has expired, please request a new one"}
}

// NewQuoteNotFoundError reports that the named quote is not the booking's current quote.
func NewQuoteNotFoundError(quoteID string) *Error {
	return &Error{Kind: KindQuoteNotFound, Message: fmt.Sprintf("quote %s not found on booking", quoteID)}
}

// NewTooCloseToScheduleError reports a cancel/reschedule inside the lead-time window.
func NewTooCloseToScheduleError(action string, lead string) *Error {
	return &Error{Kind: KindTooCloseToSchedule, Message: fmt.Sprintf("booking can no longer be %s less than %s before the scheduled time", action, lead)}
}

// NewWrongStatusError reports an operation attempted against an incompatible status.
func NewWrongStatusError(op, status string) *Error {
	return &Error{Kind: KindWrongStatus, Message: fmt.Sprintf("cannot %s a booking in status %s", op, status)}
}

// NewAlreadyReviewedError reports a duplicate review attempt.
func NewAlreadyReviewedError() *Error {
	return &Error{Kind: KindAlreadyReviewed, Message: "booking has already been reviewed"}
}

// NewNotCompletedError reports a review attempt on a booking that has not finished.
func NewNotCompletedError(status string) *Error {
	return &Error{Kind: KindNotCompleted, Message: fmt.Sprintf("only completed bookings can be reviewed, booking is %s", status)}
}

// NewForbiddenError reports an operation attempted by a party that does not own it.
func NewForbiddenError(message string) *Error {
	return &Error{Kind: KindForbidden, Message: message}
}

// NewInvalidScheduleError reports an unusable requested service time.
func NewInvalidScheduleError(message string) *Error {
	return &Error{Kind: KindInvalidSchedule, Message: message}
}

// NewValidationError reports malformed or missing input.
func NewValidationError(message string) *Error {
	return &Error{Kind: KindValidation, Message: message}
}

// NewNotFoundError reports a missing entity.
func NewNotFoundError(entity, id string) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf("%s %s not found", entity, id)}
}
