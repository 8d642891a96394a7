package seeders

import (
	"parcel-delivery/logger"
	"parcel-delivery/models/pricing"

	"gorm.io/gorm"
)

// SeedPricing loads the default distance tiers and a starter set of city
// routes when the tables are empty. Safe to run on every boot.
func SeedPricing(db *gorm.DB) error {
	var tierCount int64
	if err := db.Model(&pricing.PricingTier{}).Count(&tierCount).Error; err != nil {
		return err
	}

	if tierCount == 0 {
		defaults := pricing.DefaultRuleSet()
		tiers := make([]pricing.PricingTier, 0, len(defaults.Tiers))
		for i, t := range defaults.Tiers {
			tiers = append(tiers, pricing.PricingTier{
				Position:    i,
				MinKm:       t.MinKm,
				MaxKm:       t.MaxKm,
				MaxWeightKg: t.MaxWeightKg,
				Fare:        t.Fare,
				ApplyGST:    t.ApplyGST,
			})
		}
		if err := db.Create(&tiers).Error; err != nil {
			return err
		}
		logger.Success("Seeded default pricing tiers")
	}

	var routeCount int64
	if err := db.Model(&pricing.CityRoute{}).Count(&routeCount).Error; err != nil {
		return err
	}

	if routeCount == 0 {
		routes := []pricing.CityRoute{
			{FromCity: "Mumbai", ToCity: "Delhi", BaseFare: 500, HeavyFare: 800, GSTPercent: 18, Active: true},
			{FromCity: "Mumbai", ToCity: "Pune", BaseFare: 150, HeavyFare: 250, GSTPercent: 18, Active: true},
			{FromCity: "Delhi", ToCity: "Jaipur", BaseFare: 200, HeavyFare: 320, GSTPercent: 18, Active: true},
		}
		if err := db.Create(&routes).Error; err != nil {
			return err
		}
		logger.Success("Seeded default city routes")
	}

	return nil
}
