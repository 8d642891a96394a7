package staged

import (
	"time"

	"parcel-delivery/models/booking"
)

// StagedBooking holds an online-payment booking before the gateway confirms
// payment. It lives in Redis keyed by the merchant reference id and never
// becomes a permanent booking on its own.
type StagedBooking struct {
	UserID      uint                  `json:"user_id"`
	Pickup      booking.AddressDetail `json:"pickup"`
	Drop        booking.AddressDetail `json:"drop"`
	Parcel      booking.ParcelDetail  `json:"parcel"`
	Fare        int64                 `json:"fare"`
	CouponCode  *string               `json:"coupon_code,omitempty"`
	MerchantRef string                `json:"merchant_ref"`

	// BookingID is filled once the permanent booking is materialized, so a
	// concurrent redirect read still learns which booking it became.
	BookingID *string `json:"booking_id,omitempty"`

	ExpiresAt time.Time `json:"expires_at"`
}

// IsExpired reports passive expiry; readers treat expired records as absent
// even when physically still present.
func (s *StagedBooking) IsExpired(at time.Time) bool {
	return at.After(s.ExpiresAt)
}
