package fare

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"parcel-delivery/apperrors"
	"parcel-delivery/models/coupon"
	"parcel-delivery/models/pricing"

	"gorm.io/gorm"
)

// CouponRepo is the gorm-backed coupon lookup.
type CouponRepo struct {
	DB *gorm.DB
}

func NewCouponRepo(db *gorm.DB) *CouponRepo {
	return &CouponRepo{DB: db}
}

func (r *CouponRepo) GetByCode(ctx context.Context, code string) (*coupon.Coupon, error) {
	var c coupon.Coupon
	err := r.DB.WithContext(ctx).Where("code = ?", code).First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: coupon %s", apperrors.ErrNotFound, code)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: coupon lookup: %v", apperrors.ErrInternal, err)
	}
	return &c, nil
}

// RouteRepo is the gorm-backed city route lookup.
type RouteRepo struct {
	DB *gorm.DB
}

func NewRouteRepo(db *gorm.DB) *RouteRepo {
	return &RouteRepo{DB: db}
}

// Find matches a city pair case-insensitively in both directions.
func (r *RouteRepo) Find(ctx context.Context, cityA, cityB string) (*pricing.CityRoute, error) {
	a := strings.ToLower(strings.TrimSpace(cityA))
	b := strings.ToLower(strings.TrimSpace(cityB))

	var route pricing.CityRoute
	err := r.DB.WithContext(ctx).
		Where("active = ?", true).
		Where("(LOWER(from_city) = ? AND LOWER(to_city) = ?) OR (LOWER(from_city) = ? AND LOWER(to_city) = ?)", a, b, b, a).
		First(&route).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: no route for %s-%s", apperrors.ErrNotFound, cityA, cityB)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: route lookup: %v", apperrors.ErrInternal, err)
	}
	return &route, nil
}

// LoadRuleSet builds the pricing snapshot for the fare engine from the
// configured tiers, falling back to the built-in defaults when none exist.
func LoadRuleSet(db *gorm.DB) pricing.RuleSet {
	var tiers []pricing.PricingTier
	if err := db.Order("position asc").Find(&tiers).Error; err != nil || len(tiers) == 0 {
		return pricing.DefaultRuleSet()
	}

	defaults := pricing.DefaultRuleSet()
	gst := defaults.GSTPercent
	if raw := os.Getenv("PRICING_GST_PERCENT"); raw != "" {
		if v, err := strconv.ParseFloat(raw, 64); err == nil && v >= 0 {
			gst = v
		}
	}

	return pricing.ToRuleSet(tiers, gst, defaults.MinimumFare)
}
