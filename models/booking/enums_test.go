package booking

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBookingStatusTransitions(t *testing.T) {
	allowed := map[BookingStatus][]BookingStatus{
		StatusPendingPayment: {StatusCreated},
		StatusCreated:        {StatusPicked, StatusReturned},
		StatusPicked:         {StatusShipped},
		StatusShipped:        {StatusDelivered},
		StatusDelivered:      {},
		StatusReturned:       {},
	}

	for _, from := range GetAllBookingStatuses() {
		for _, to := range GetAllBookingStatuses() {
			want := from == to
			for _, ok := range allowed[from] {
				if to == ok {
					want = true
				}
			}
			assert.Equal(t, want, from.CanTransitionTo(to), "%s -> %s", from, to)
		}
	}
}

func TestBookingStatusSkippingStagesRejected(t *testing.T) {
	assert.False(t, StatusCreated.CanTransitionTo(StatusShipped))
	assert.False(t, StatusCreated.CanTransitionTo(StatusDelivered))
	assert.False(t, StatusPicked.CanTransitionTo(StatusDelivered))
	assert.False(t, StatusDelivered.CanTransitionTo(StatusReturned))
}

func TestPaymentStatusTransitions(t *testing.T) {
	assert.True(t, PaymentPending.CanTransitionTo(PaymentPaid))
	assert.True(t, PaymentPending.CanTransitionTo(PaymentFailed))
	assert.True(t, PaymentFailed.CanTransitionTo(PaymentPaid))
	assert.True(t, PaymentPaid.CanTransitionTo(PaymentRefunded))

	assert.False(t, PaymentPaid.CanTransitionTo(PaymentPending))
	assert.False(t, PaymentFailed.CanTransitionTo(PaymentRefunded))
	assert.False(t, PaymentRefunded.CanTransitionTo(PaymentPaid))
}

func TestApplyPaymentOutcomeAdvancesPendingPayment(t *testing.T) {
	status, payment := ApplyPaymentOutcome(StatusPendingPayment, PaymentPending, OutcomeSuccess)
	assert.Equal(t, StatusCreated, status)
	assert.Equal(t, PaymentPaid, payment)
}

func TestApplyPaymentOutcomeLeavesAdvancedStatusAlone(t *testing.T) {
	status, payment := ApplyPaymentOutcome(StatusShipped, PaymentPending, OutcomeSuccess)
	assert.Equal(t, StatusShipped, status)
	assert.Equal(t, PaymentPaid, payment)
}

func TestApplyPaymentOutcomeFailureKeepsStatus(t *testing.T) {
	status, payment := ApplyPaymentOutcome(StatusPendingPayment, PaymentPending, OutcomeFailed)
	assert.Equal(t, StatusPendingPayment, status)
	assert.Equal(t, PaymentFailed, payment)
}

func TestApplyPaymentOutcomeLateFailureAfterPaidIsNoop(t *testing.T) {
	// A duplicated or out-of-order FAILED callback must never regress a
	// booking that already collected the money.
	status, payment := ApplyPaymentOutcome(StatusCreated, PaymentPaid, OutcomeFailed)
	assert.Equal(t, StatusCreated, status)
	assert.Equal(t, PaymentPaid, payment)
}

func TestApplyPaymentOutcomeRefundedIsTerminal(t *testing.T) {
	status, payment := ApplyPaymentOutcome(StatusCreated, PaymentRefunded, OutcomeSuccess)
	assert.Equal(t, StatusCreated, status)
	assert.Equal(t, PaymentRefunded, payment)

	status, payment = ApplyPaymentOutcome(StatusCreated, PaymentRefunded, OutcomeFailed)
	assert.Equal(t, StatusCreated, status)
	assert.Equal(t, PaymentRefunded, payment)
}

func TestApplyPaymentOutcomePendingIsNoop(t *testing.T) {
	status, payment := ApplyPaymentOutcome(StatusCreated, PaymentFailed, OutcomePending)
	assert.Equal(t, StatusCreated, status)
	assert.Equal(t, PaymentFailed, payment)
}

func TestApplyPaymentOutcomeSuccessIsIdempotent(t *testing.T) {
	status, payment := ApplyPaymentOutcome(StatusPendingPayment, PaymentPending, OutcomeSuccess)
	status, payment = ApplyPaymentOutcome(status, payment, OutcomeSuccess)
	assert.Equal(t, StatusCreated, status)
	assert.Equal(t, PaymentPaid, payment)
}

func TestStatusValidity(t *testing.T) {
	for _, s := range GetAllBookingStatuses() {
		assert.True(t, s.IsValid(), s)
	}
	assert.False(t, BookingStatus("cancelled").IsValid())
	assert.False(t, PaymentStatus("chargeback").IsValid())
	assert.True(t, MethodCOD.IsValid())
	assert.True(t, MethodOnline.IsValid())
	assert.False(t, PaymentMethod("wallet").IsValid())
}
