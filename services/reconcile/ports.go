package reconcile

import (
	"context"
	"time"

	"parcel-delivery/httpServices/paymentgateway"
	bookingModel "parcel-delivery/models/booking"
	stagedModel "parcel-delivery/models/staged"
	fareTypes "parcel-delivery/types/fare"
)

// BookingStore is the slice of the booking service the protocol depends on.
type BookingStore interface {
	GetByID(ctx context.Context, id uint) (*bookingModel.Booking, error)
	GetByBookingID(ctx context.Context, bookingID string) (*bookingModel.Booking, error)
	CreateFromStaged(ctx context.Context, rec *stagedModel.StagedBooking) (*bookingModel.Booking, error)
	ApplyPaymentOutcome(ctx context.Context, b *bookingModel.Booking, outcome bookingModel.PaymentOutcome, note string) error
}

// StagedStore is the holding area for not-yet-confirmed online bookings.
type StagedStore interface {
	Stage(ctx context.Context, rec *stagedModel.StagedBooking) (string, error)
	Get(ctx context.Context, merchantRef string) (*stagedModel.StagedBooking, error)
	AttachBookingID(ctx context.Context, merchantRef, bookingID string) error
	Delete(ctx context.Context, merchantRef string) error
	DeleteAfter(merchantRef string, delay time.Duration)
	Claim(ctx context.Context, merchantRef string) (bool, error)
	ReleaseClaim(ctx context.Context, merchantRef string) error
}

// Gateway is the outbound payment-provider client.
type Gateway interface {
	CreatePaymentPage(ctx context.Context, req paymentgateway.CreatePageRequest) (*paymentgateway.CreatePageResponse, error)
	CheckStatus(ctx context.Context, merchantRef string) (*paymentgateway.StatusResponse, error)
}

// Quoter computes the fare a staged payment is collected against.
type Quoter interface {
	Quote(ctx context.Context, req fareTypes.QuoteRequest) (*fareTypes.QuoteResponse, error)
}
