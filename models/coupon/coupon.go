package coupon

import (
	"time"
)

// DiscountType selects how a coupon's value is interpreted.
type DiscountType string

const (
	DiscountPercentage DiscountType = "percentage"
	DiscountFixed      DiscountType = "fixed"
)

// Coupon is a discount rule applied to a fare quote. UsedCount never exceeds
// MaxUsage, and a coupon's discount never exceeds the order amount.
type Coupon struct {
	ID            uint         `gorm:"primaryKey;autoIncrement" json:"id"`
	Code          string       `gorm:"type:varchar(50);not null;uniqueIndex" json:"code"`
	DiscountType  DiscountType `gorm:"size:20;not null" json:"discount_type"`
	DiscountValue float64      `gorm:"type:decimal(10,2);not null" json:"discount_value"`
	MinOrderAmt   *int64       `gorm:"type:bigint" json:"min_order_amount,omitempty"`
	MaxDiscount   *int64       `gorm:"type:bigint" json:"max_discount,omitempty"`
	MaxUsage      *int         `gorm:"type:int" json:"max_usage,omitempty"`
	UsedCount     int          `gorm:"not null;default:0" json:"used_count"`
	ValidFrom     time.Time    `gorm:"not null" json:"valid_from"`
	ValidUntil    time.Time    `gorm:"not null" json:"valid_until"`
	Active        bool         `gorm:"not null;default:true" json:"active"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// IsUsableAt reports whether the coupon can discount an order of the given
// amount at the given time. Callers normalize the code before lookup.
func (c *Coupon) IsUsableAt(amount int64, at time.Time) bool {
	if !c.Active {
		return false
	}
	if at.Before(c.ValidFrom) || at.After(c.ValidUntil) {
		return false
	}
	if c.MinOrderAmt != nil && amount < *c.MinOrderAmt {
		return false
	}
	if c.MaxUsage != nil && c.UsedCount >= *c.MaxUsage {
		return false
	}
	return true
}
