package booking

// BookingStatus is the delivery progress of a booking.
type BookingStatus string

const (
	StatusPendingPayment BookingStatus = "pending_payment"
	StatusCreated        BookingStatus = "created"
	StatusPicked         BookingStatus = "picked"
	StatusShipped        BookingStatus = "shipped"
	StatusDelivered      BookingStatus = "delivered"
	StatusReturned       BookingStatus = "returned"
)

// PaymentStatus is the money side of a booking.
type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentPaid     PaymentStatus = "paid"
	PaymentFailed   PaymentStatus = "failed"
	PaymentRefunded PaymentStatus = "refunded"
)

// PaymentMethod selects how the fare is collected.
type PaymentMethod string

const (
	MethodCOD    PaymentMethod = "cod"
	MethodOnline PaymentMethod = "online"
)

// PaymentOutcome is the reconciled result of a gateway transaction.
type PaymentOutcome string

const (
	OutcomeSuccess PaymentOutcome = "SUCCESS"
	OutcomeFailed  PaymentOutcome = "FAILED"
	OutcomePending PaymentOutcome = "PENDING"
)

func (bs BookingStatus) String() string {
	return string(bs)
}

func (bs BookingStatus) IsValid() bool {
	switch bs {
	case StatusPendingPayment, StatusCreated, StatusPicked, StatusShipped, StatusDelivered, StatusReturned:
		return true
	default:
		return false
	}
}

// IsCompleted returns true if the booking is in a terminal state.
func (bs BookingStatus) IsCompleted() bool {
	return bs == StatusDelivered || bs == StatusReturned
}

func (ps PaymentStatus) String() string {
	return string(ps)
}

func (ps PaymentStatus) IsValid() bool {
	switch ps {
	case PaymentPending, PaymentPaid, PaymentFailed, PaymentRefunded:
		return true
	default:
		return false
	}
}

func (pm PaymentMethod) IsValid() bool {
	return pm == MethodCOD || pm == MethodOnline
}

// CanTransitionTo reports whether the delivery status may move to next.
// A same-status update is treated as a permitted no-op.
func (bs BookingStatus) CanTransitionTo(next BookingStatus) bool {
	if bs == next {
		return true
	}
	switch bs {
	case StatusPendingPayment:
		return next == StatusCreated
	case StatusCreated:
		return next == StatusPicked || next == StatusReturned
	case StatusPicked:
		return next == StatusShipped
	case StatusShipped:
		return next == StatusDelivered
	default:
		return false
	}
}

// CanTransitionTo reports whether the payment status may move to next.
// A failed attempt may be retried into paid; refunds only follow paid.
func (ps PaymentStatus) CanTransitionTo(next PaymentStatus) bool {
	if ps == next {
		return true
	}
	switch ps {
	case PaymentPending:
		return next == PaymentPaid || next == PaymentFailed
	case PaymentFailed:
		return next == PaymentPaid
	case PaymentPaid:
		return next == PaymentRefunded
	default:
		return false
	}
}

// GetAllBookingStatuses returns all valid booking statuses.
func GetAllBookingStatuses() []BookingStatus {
	return []BookingStatus{
		StatusPendingPayment,
		StatusCreated,
		StatusPicked,
		StatusShipped,
		StatusDelivered,
		StatusReturned,
	}
}

// ApplyPaymentOutcome maps a gateway outcome onto the booking's two status
// fields. Paid while awaiting payment advances the booking to created in the
// same step; both returned values must be persisted in one write. Outcomes
// the payment state machine forbids, like a late FAILED callback after the
// booking is already paid, leave both fields untouched.
func ApplyPaymentOutcome(status BookingStatus, payment PaymentStatus, outcome PaymentOutcome) (BookingStatus, PaymentStatus) {
	switch outcome {
	case OutcomeSuccess:
		if !payment.CanTransitionTo(PaymentPaid) {
			return status, payment
		}
		if status == StatusPendingPayment {
			return StatusCreated, PaymentPaid
		}
		return status, PaymentPaid
	case OutcomeFailed:
		if !payment.CanTransitionTo(PaymentFailed) {
			return status, payment
		}
		return status, PaymentFailed
	default:
		return status, payment
	}
}
