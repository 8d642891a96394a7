package pricing

import (
	"time"
)

// PricingTier is one distance/weight band of the fallback rule set.
type PricingTier struct {
	ID          uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Position    int       `gorm:"not null;index" json:"position"`
	MinKm       float64   `gorm:"type:decimal(8,2);not null" json:"min_km"`
	MaxKm       float64   `gorm:"type:decimal(8,2);not null" json:"max_km"`
	MaxWeightKg float64   `gorm:"type:decimal(8,2);not null" json:"max_weight_kg"`
	Fare        int64     `gorm:"not null" json:"fare"`
	ApplyGST    bool      `gorm:"not null;default:true" json:"apply_gst"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// CityRoute is a fixed-price override for a named city pair, matched in both
// directions independent of computed distance.
type CityRoute struct {
	ID         uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	FromCity   string    `gorm:"size:120;not null;index:idx_city_routes_pair" json:"from_city"`
	ToCity     string    `gorm:"size:120;not null;index:idx_city_routes_pair" json:"to_city"`
	BaseFare   int64     `gorm:"not null" json:"base_fare"`
	HeavyFare  int64     `gorm:"not null" json:"heavy_fare"`
	GSTPercent float64   `gorm:"type:decimal(5,2);not null" json:"gst_percent"`
	Active     bool      `gorm:"not null;default:true" json:"active"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// Tier is the in-memory shape the fare engine iterates over.
type Tier struct {
	MinKm       float64
	MaxKm       float64
	MaxWeightKg float64
	Fare        int64
	ApplyGST    bool
}

// RuleSet is the pricing snapshot injected into the fare engine.
type RuleSet struct {
	Tiers       []Tier
	GSTPercent  float64
	MinimumFare int64
}

// DefaultRuleSet is the fallback used when no pricing rows have been
// configured yet. The lowest local tier carries no GST.
func DefaultRuleSet() RuleSet {
	return RuleSet{
		Tiers: []Tier{
			{MinKm: 0, MaxKm: 30, MaxWeightKg: 3, Fare: 50, ApplyGST: false},
			{MinKm: 0, MaxKm: 30, MaxWeightKg: 10, Fare: 60, ApplyGST: true},
			{MinKm: 30, MaxKm: 100, MaxWeightKg: 3, Fare: 60, ApplyGST: true},
			{MinKm: 30, MaxKm: 100, MaxWeightKg: 10, Fare: 70, ApplyGST: true},
			{MinKm: 100, MaxKm: 500, MaxWeightKg: 10, Fare: 120, ApplyGST: true},
		},
		GSTPercent:  18,
		MinimumFare: 40,
	}
}

// ToRuleSet converts configured tier rows into an engine snapshot, keeping
// the configured ordering.
func ToRuleSet(tiers []PricingTier, gstPercent float64, minimumFare int64) RuleSet {
	rs := RuleSet{GSTPercent: gstPercent, MinimumFare: minimumFare}
	for _, t := range tiers {
		rs.Tiers = append(rs.Tiers, Tier{
			MinKm:       t.MinKm,
			MaxKm:       t.MaxKm,
			MaxWeightKg: t.MaxWeightKg,
			Fare:        t.Fare,
			ApplyGST:    t.ApplyGST,
		})
	}
	return rs
}
