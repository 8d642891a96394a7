package database

import (
	"fmt"
	"os"

	"parcel-delivery/logger"
	"parcel-delivery/models/booking"
	"parcel-delivery/models/coupon"
	"parcel-delivery/models/log"
	"parcel-delivery/models/pricing"
	"parcel-delivery/models/user"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

// InitDB initializes the database connection with auto migration and indexing
func InitDB() (*gorm.DB, error) {
	host := os.Getenv("DB_HOST")
	port := os.Getenv("DB_PORT")
	database := os.Getenv("DB_DATABASE")
	username := os.Getenv("DB_USERNAME")
	password := os.Getenv("DB_PASSWORD")
	sslmode := os.Getenv("DB_SSLMODE")
	if sslmode == "" {
		sslmode = "disable"
	}

	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		host, port, username, password, database, sslmode)

	var err error
	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		logger.Error("Failed to connect to the database", err)
		return nil, err
	}
	logger.Success("Successfully connected to the database")

	if err := autoMigrate(); err != nil {
		logger.Error("Failed to run migrations", err)
		return nil, err
	}
	logger.Success("All migrations completed successfully")

	if err := createIndexes(); err != nil {
		logger.Error("Failed to create indexes", err)
		return nil, err
	}

	return DB, nil
}

// autoMigrate runs auto migration for all models, foundation tables first.
func autoMigrate() error {
	stage1 := []interface{}{
		&user.User{},
		&pricing.PricingTier{},
		&pricing.CityRoute{},
		&coupon.Coupon{},
		&booking.DailyCounter{},
	}
	for _, model := range stage1 {
		if err := DB.AutoMigrate(model); err != nil {
			return fmt.Errorf("failed to migrate %T: %w", model, err)
		}
	}

	stage2 := []interface{}{
		&booking.Booking{},
		&booking.BookingStatusEvent{},
		&log.Log{},
	}
	for _, model := range stage2 {
		if err := DB.AutoMigrate(model); err != nil {
			return fmt.Errorf("failed to migrate %T: %w", model, err)
		}
	}

	return nil
}

// createIndexes adds lookup indexes AutoMigrate does not cover.
func createIndexes() error {
	statements := []string{
		"CREATE INDEX IF NOT EXISTS idx_bookings_user_created ON bookings (user_id, created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_bookings_payment_status ON bookings (payment_status)",
		"CREATE INDEX IF NOT EXISTS idx_booking_status_events_booking ON booking_status_events (booking_id, created_at)",
		"CREATE INDEX IF NOT EXISTS idx_city_routes_cities ON city_routes (LOWER(from_city), LOWER(to_city))",
	}

	for _, stmt := range statements {
		if err := DB.Exec(stmt).Error; err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}
	return nil
}
