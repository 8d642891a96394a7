package booking

// DailyCounter backs the per-day sequential suffix of booking ids. Rows are
// bumped with an atomic upsert so two concurrent bookings on the same day can
// never observe the same value.
type DailyCounter struct {
	Day     string `gorm:"type:varchar(10);primaryKey" json:"day"` // DD-MM-YYYY
	Counter int    `gorm:"not null;default:0" json:"counter"`
}

// TableName sets the table name for the DailyCounter model
func (DailyCounter) TableName() string {
	return "booking_counters"
}
