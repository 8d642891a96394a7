package payment

import (
	"fmt"
	"time"

	"parcel-delivery/types"
	bookingTypes "parcel-delivery/types/booking"
)

// CreatePaymentRequest initiates an online payment, either for an existing
// booking (BookingID set) or for full booking data that is staged until the
// gateway confirms the money moved.
type CreatePaymentRequest struct {
	BookingID string                             `json:"booking_id" validate:"omitempty,max=50"`
	Booking   *bookingTypes.BookingCreateRequest `json:"booking" validate:"omitempty"`
}

// StatusRequest asks for the current transaction status of a payment attempt.
type StatusRequest struct {
	MerchantRef string `json:"merchant_ref" validate:"required,max=64"`
}

// CreatePaymentResponse carries the hosted payment page back to the client.
type CreatePaymentResponse struct {
	MerchantRef string    `json:"merchant_ref"`
	PayURL      string    `json:"pay_url"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// StatusResponse is the reconciled state of a payment attempt.
type StatusResponse struct {
	MerchantRef string `json:"merchant_ref"`
	Outcome     string `json:"outcome"`
	BookingID   string `json:"booking_id,omitempty"`
}

func (r CreatePaymentRequest) Validate() error {
	if err := types.ValidateStruct(r); err != nil {
		return err
	}
	if r.BookingID == "" && r.Booking == nil {
		return fmt.Errorf("either booking_id or booking data is required")
	}
	if r.BookingID != "" && r.Booking != nil {
		return fmt.Errorf("booking_id and booking data are mutually exclusive")
	}
	if r.Booking != nil {
		if r.Booking.PaymentMethod != "online" {
			return fmt.Errorf("staged bookings must use the online payment method")
		}
		return r.Booking.Validate()
	}
	return nil
}

func (r StatusRequest) Validate() error {
	if r.MerchantRef == "" {
		return fmt.Errorf("merchant_ref is required")
	}
	return nil
}
