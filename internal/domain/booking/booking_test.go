package booking

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jasalink/service-booking/internal/domain"
)

var t0 = time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)

func newTestBooking(t *testing.T, scheduledAt time.Time) *Booking {
	t.Helper()
	b, err := NewBooking(uuid.New(), uuid.New(), scheduledAt, "fix leaking kitchen sink", t0)
	require.NoError(t, err)
	return b
}

func TestNewBooking(t *testing.T) {
	b := newTestBooking(t, t0.Add(5*time.Hour))
	assert.Equal(t, StatusQuoteRequested, b.Status())
	assert.Equal(t, int64(1), b.Version())
	assert.Equal(t, t0, b.CreatedAt())
	assert.Nil(t, b.ReviewID())
	assert.Nil(t, b.CompletedAt())
}

func TestNewBooking_Validation(t *testing.T) {
	customerID, workerID := uuid.New(), uuid.New()

	_, err := NewBooking(uuid.Nil, workerID, t0.Add(time.Hour), "desc", t0)
	assertKind(t, err, domain.KindValidation)

	_, err = NewBooking(customerID, workerID, t0.Add(time.Hour), "", t0)
	assertKind(t, err, domain.KindValidation)

	_, err = NewBooking(customerID, workerID, t0.Add(-time.Minute), "desc", t0)
	assertKind(t, err, domain.KindInvalidSchedule)

	_, err = NewBooking(customerID, workerID, t0, "desc", t0)
	assertKind(t, err, domain.KindInvalidSchedule)
}

func TestProposeQuote_MovesFreshRequestToPending(t *testing.T) {
	b := newTestBooking(t, t0.Add(24*time.Hour))

	q, err := b.ProposeQuote(5000, "parts and labour", nil, RoleWorker, t0)
	require.NoError(t, err)

	assert.Equal(t, StatusPending, b.Status())
	assert.Equal(t, QuoteProposed, q.Status)
	assert.Equal(t, int64(5000), q.AmountCents)
	assert.Equal(t, t0, q.ProposedAt)
}

func TestProposeQuote_KeepsPendingStatus(t *testing.T) {
	b := newTestBooking(t, t0.Add(24*time.Hour))
	validUntil := t0.Add(time.Hour)
	_, err := b.ProposeQuote(5000, "first", &validUntil, RoleWorker, t0)
	require.NoError(t, err)

	// First quote lapses; a new one may be proposed without a status change.
	later := t0.Add(2 * time.Hour)
	q, err := b.ProposeQuote(6000, "second", nil, RoleWorker, later)
	require.NoError(t, err)
	assert.Equal(t, StatusPending, b.Status())
	assert.Equal(t, QuoteProposed, q.Status)

	// The superseded quote was materialized as expired, never revived.
	assert.Equal(t, QuoteExpired, b.Quotes()[0].Status)
}

func TestProposeQuote_Rejections(t *testing.T) {
	b := newTestBooking(t, t0.Add(24*time.Hour))

	_, err := b.ProposeQuote(5000, "", nil, RoleCustomer, t0)
	assertKind(t, err, domain.KindUnauthorizedActor)

	_, err = b.ProposeQuote(0, "", nil, RoleWorker, t0)
	assertKind(t, err, domain.KindValidation)

	past := t0.Add(-time.Minute)
	_, err = b.ProposeQuote(5000, "", &past, RoleWorker, t0)
	assertKind(t, err, domain.KindValidation)

	_, err = b.ProposeQuote(5000, "", nil, RoleWorker, t0)
	require.NoError(t, err)

	// A live proposed quote blocks re-proposal.
	_, err = b.ProposeQuote(7000, "", nil, RoleWorker, t0.Add(time.Minute))
	assertKind(t, err, domain.KindWrongStatus)

	// Terminal and post-acceptance statuses cannot be quoted.
	require.NoError(t, b.Accept(RoleWorker, t0.Add(time.Minute)))
	_, err = b.ProposeQuote(7000, "", nil, RoleWorker, t0.Add(2*time.Minute))
	assertKind(t, err, domain.KindWrongStatus)
}

// At any time at most one quote on the booking is proposed.
func TestQuoteExclusivity(t *testing.T) {
	b := newTestBooking(t, t0.Add(48*time.Hour))

	now := t0
	for i := 0; i < 4; i++ {
		validUntil := now.Add(30 * time.Minute)
		_, err := b.ProposeQuote(int64(1000*(i+1)), "round", &validUntil, RoleWorker, now)
		require.NoError(t, err)
		now = now.Add(time.Hour)
	}

	proposed := 0
	for _, q := range b.Quotes() {
		if q.EffectiveStatus(now) == QuoteProposed {
			proposed++
		}
	}
	assert.LessOrEqual(t, proposed, 1)
	assert.Len(t, b.Quotes(), 4)
}

func TestAcceptQuote_SyncsQuoteAndBookingStatus(t *testing.T) {
	b := newTestBooking(t, t0.Add(24*time.Hour))
	q, err := b.ProposeQuote(5000, "", nil, RoleWorker, t0)
	require.NoError(t, err)

	require.NoError(t, b.AcceptQuote(q.ID, RoleCustomer, t0.Add(time.Minute)))

	assert.Equal(t, StatusAccepted, b.Status())
	assert.Equal(t, QuoteAccepted, b.Quotes()[0].Status)
}

func TestAcceptQuote_Rejections(t *testing.T) {
	b := newTestBooking(t, t0.Add(24*time.Hour))
	validUntil := t0.Add(time.Hour)
	q, err := b.ProposeQuote(5000, "", &validUntil, RoleWorker, t0)
	require.NoError(t, err)

	err = b.AcceptQuote(uuid.New(), RoleCustomer, t0)
	assertKind(t, err, domain.KindQuoteNotFound)

	err = b.AcceptQuote(q.ID, RoleWorker, t0)
	assertKind(t, err, domain.KindUnauthorizedActor)

	err = b.AcceptQuote(q.ID, RoleCustomer, t0.Add(2*time.Hour))
	assertKind(t, err, domain.KindQuoteExpired)

	// A failed accept leaves both statuses untouched.
	assert.Equal(t, StatusPending, b.Status())
	assert.Equal(t, QuoteProposed, b.Quotes()[0].Status)
}

func TestDeclineQuote(t *testing.T) {
	b := newTestBooking(t, t0.Add(24*time.Hour))
	q, err := b.ProposeQuote(5000, "", nil, RoleWorker, t0)
	require.NoError(t, err)

	require.NoError(t, b.DeclineQuote(q.ID, "too expensive", RoleCustomer, t0.Add(time.Minute)))

	assert.Equal(t, StatusDeclined, b.Status())
	assert.Equal(t, QuoteDeclined, b.Quotes()[0].Status)
	assert.Equal(t, "too expensive", b.Quotes()[0].DeclineReason)
	assert.True(t, b.Status().IsTerminal())
}

func TestWorkerDirectResponses(t *testing.T) {
	b := newTestBooking(t, t0.Add(24*time.Hour))
	require.NoError(t, b.Accept(RoleWorker, t0))
	assert.Equal(t, StatusAccepted, b.Status())

	b2 := newTestBooking(t, t0.Add(24*time.Hour))
	require.NoError(t, b2.Decline("fully booked this week", RoleWorker, t0))
	assert.Equal(t, StatusDeclined, b2.Status())
	assert.Equal(t, "fully booked this week", b2.DeclineReason())

	b3 := newTestBooking(t, t0.Add(24*time.Hour))
	err := b3.Accept(RoleCustomer, t0)
	assertKind(t, err, domain.KindUnauthorizedActor)
}

func TestWorkFlowStampsCompletedAt(t *testing.T) {
	b := newTestBooking(t, t0.Add(24*time.Hour))
	require.NoError(t, b.Accept(RoleWorker, t0))
	require.NoError(t, b.StartWork(RoleWorker, t0.Add(time.Hour)))
	assert.Equal(t, StatusInProgress, b.Status())

	done := t0.Add(3 * time.Hour)
	require.NoError(t, b.CompleteWork(RoleWorker, done))
	assert.Equal(t, StatusCompleted, b.Status())
	require.NotNil(t, b.CompletedAt())
	assert.Equal(t, done, *b.CompletedAt())

	err := b.StartWork(RoleWorker, done)
	assertKind(t, err, domain.KindIllegalTransition)
}

func TestStartWork_CustomerForbidden(t *testing.T) {
	b := newTestBooking(t, t0.Add(24*time.Hour))
	require.NoError(t, b.Accept(RoleWorker, t0))
	err := b.StartWork(RoleCustomer, t0)
	assertKind(t, err, domain.KindUnauthorizedActor)
}

func TestAttachReview_ExactlyOnce(t *testing.T) {
	b := newTestBooking(t, t0.Add(24*time.Hour))
	require.NoError(t, b.Accept(RoleWorker, t0))
	require.NoError(t, b.StartWork(RoleWorker, t0))
	require.NoError(t, b.CompleteWork(RoleWorker, t0.Add(time.Hour)))

	reviewID := uuid.New()
	require.NoError(t, b.AttachReview(reviewID, b.CustomerID(), RoleCustomer, t0.Add(2*time.Hour)))
	require.NotNil(t, b.ReviewID())
	assert.Equal(t, reviewID, *b.ReviewID())

	err := b.AttachReview(uuid.New(), b.CustomerID(), RoleCustomer, t0.Add(3*time.Hour))
	assertKind(t, err, domain.KindAlreadyReviewed)
	assert.Equal(t, reviewID, *b.ReviewID())
}

func TestCanReview_Gates(t *testing.T) {
	b := newTestBooking(t, t0.Add(24*time.Hour))

	err := b.CanReview(b.CustomerID(), RoleCustomer)
	assertKind(t, err, domain.KindNotCompleted)

	err = b.CanReview(b.WorkerID(), RoleWorker)
	assertKind(t, err, domain.KindForbidden)

	err = b.CanReview(uuid.New(), RoleCustomer)
	assertKind(t, err, domain.KindForbidden)
}

func TestPartyRole(t *testing.T) {
	b := newTestBooking(t, t0.Add(24*time.Hour))

	role, ok := b.PartyRole(b.CustomerID())
	require.True(t, ok)
	assert.Equal(t, RoleCustomer, role)

	role, ok = b.PartyRole(b.WorkerID())
	require.True(t, ok)
	assert.Equal(t, RoleWorker, role)

	_, ok = b.PartyRole(uuid.New())
	assert.False(t, ok)
}

// Walks a full negotiation under time pressure: booking at T+5h, quote at T valid for 1h,
// accept attempt at T+2h fails expired, cancel at T+3h is exactly on the
// 2h boundary and fails, cancel at T+2h59m succeeds.
func TestLifecycleScenario(t *testing.T) {
	policy := DefaultPolicy()
	b := newTestBooking(t, t0.Add(5*time.Hour))

	validUntil := t0.Add(time.Hour)
	q, err := b.ProposeQuote(5000, "standard rate", &validUntil, RoleWorker, t0)
	require.NoError(t, err)
	assert.Equal(t, StatusPending, b.Status())

	err = b.AcceptQuote(q.ID, RoleCustomer, t0.Add(2*time.Hour))
	assertKind(t, err, domain.KindQuoteExpired)

	err = policy.Cancel(b, "changed my mind", RoleCustomer, t0.Add(3*time.Hour))
	assertKind(t, err, domain.KindTooCloseToSchedule)
	assert.Equal(t, StatusPending, b.Status())

	cancelAt := t0.Add(2*time.Hour + 59*time.Minute)
	require.NoError(t, policy.Cancel(b, "changed my mind", RoleCustomer, cancelAt))
	assert.Equal(t, StatusCancelled, b.Status())
	require.NotNil(t, b.CancelledAt())
	assert.Equal(t, cancelAt, *b.CancelledAt())
	assert.Equal(t, "changed my mind", b.CancelReason())
}
