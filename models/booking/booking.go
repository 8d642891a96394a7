package booking

import (
	"time"

	"parcel-delivery/models/user"
)

// AddressDetail is the pickup or drop contact block embedded on a booking.
type AddressDetail struct {
	Name     string  `gorm:"size:255;not null" json:"name"`
	Phone    string  `gorm:"size:20;not null" json:"phone"`
	Address  string  `gorm:"type:text;not null" json:"address"`
	City     string  `gorm:"size:120;not null" json:"city"`
	State    string  `gorm:"size:120" json:"state"`
	Pincode  string  `gorm:"size:20" json:"pincode"`
	Landmark *string `gorm:"size:255" json:"landmark,omitempty"`
}

// ParcelDetail describes the shipment itself.
type ParcelDetail struct {
	Type       string   `gorm:"size:100;not null" json:"type"`
	WeightKg   float64  `gorm:"type:decimal(8,2);not null" json:"weight_kg"`
	Dimensions *string  `gorm:"size:100" json:"dimensions,omitempty"`
	Value      *float64 `gorm:"type:decimal(12,2)" json:"value,omitempty"`
}

// Booking is the durable record of a delivery order. BookingID is the
// human-readable sequential identifier and doubles as the tracking number.
type Booking struct {
	ID uint `gorm:"primaryKey;autoIncrement" json:"id"`

	BookingID string `gorm:"type:varchar(50);not null;uniqueIndex" json:"booking_id"`

	UserID uint      `gorm:"not null;index" json:"user_id"`
	User   user.User `gorm:"foreignKey:UserID" json:"user"`

	Pickup AddressDetail `gorm:"embedded;embeddedPrefix:pickup_" json:"pickup"`
	Drop   AddressDetail `gorm:"embedded;embeddedPrefix:drop_" json:"drop"`
	Parcel ParcelDetail  `gorm:"embedded;embeddedPrefix:parcel_" json:"parcel"`

	Status        BookingStatus `gorm:"size:30;not null;index" json:"status"`
	PaymentStatus PaymentStatus `gorm:"size:20;not null" json:"payment_status"`
	PaymentMethod PaymentMethod `gorm:"size:20;not null" json:"payment_method"`

	Fare       *int64  `gorm:"type:bigint" json:"fare,omitempty"`
	CouponCode *string `gorm:"size:50" json:"coupon_code,omitempty"`

	PODSignature *string    `gorm:"type:text" json:"pod_signature,omitempty"`
	PODSignedBy  *string    `gorm:"size:255" json:"pod_signed_by,omitempty"`
	PODSignedAt  *time.Time `json:"pod_signed_at,omitempty"`

	DeliveredAt *time.Time `json:"delivered_at,omitempty"`

	ReturnReason *string    `gorm:"type:text" json:"return_reason,omitempty"`
	ReturnedAt   *time.Time `json:"returned_at,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
