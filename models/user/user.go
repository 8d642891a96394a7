package user

import (
	"time"
)

// User model with fields based on the JWT token structure
type User struct {
	ID            uint    `gorm:"primaryKey;autoIncrement" json:"id"`
	Uuid          string  `gorm:"type:varchar(255);not null;unique" json:"uuid"`
	Name          string  `gorm:"type:varchar(255);not null" json:"name"`
	Phone         string  `gorm:"type:varchar(20);not null;unique" json:"phone"`
	PhoneVerified bool    `gorm:"type:bool;default:false" json:"phone_verified"`
	Email         *string `gorm:"type:varchar(255);unique" json:"email,omitempty"`
	Role          string  `gorm:"type:varchar(50);not null;default:'customer'" json:"role"`

	// Push-notification device token, absent until the app registers one.
	DeviceToken *string `gorm:"type:varchar(512)" json:"device_token,omitempty"`

	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt *time.Time `gorm:"index" json:"deleted_at,omitempty"`
}
