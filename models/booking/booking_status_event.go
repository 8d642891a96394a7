package booking

import (
	"time"
)

// BookingStatusEvent records a status or payment-status change on a booking.
type BookingStatusEvent struct {
	ID uint `gorm:"primaryKey;autoIncrement" json:"id"`

	// Foreign key for booking relationship
	BookingID uint    `gorm:"not null;index" json:"booking_id"`
	Booking   Booking `gorm:"foreignKey:BookingID" json:"booking"`

	Status        BookingStatus `gorm:"size:30;not null" json:"status"`
	PaymentStatus PaymentStatus `gorm:"size:20;not null" json:"payment_status"`
	Note          string        `gorm:"type:text" json:"note,omitempty"`
	CreatedBy     string        `gorm:"type:varchar(255);not null" json:"created_by"`
	CreatedAt     time.Time     `gorm:"autoCreateTime" json:"created_at"`
}

// TableName sets the table name for the BookingStatusEvent model
func (BookingStatusEvent) TableName() string {
	return "booking_status_events"
}
