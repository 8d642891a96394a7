package fare

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"parcel-delivery/apperrors"
	"parcel-delivery/logger"
	"parcel-delivery/models/coupon"
	"parcel-delivery/models/pricing"
	fareTypes "parcel-delivery/types/fare"
	"parcel-delivery/utils"
)

// Weight above this uses a city route's heavy fare.
const heavyWeightKg = 3

// CouponSource looks up a coupon by its normalized code.
type CouponSource interface {
	GetByCode(ctx context.Context, code string) (*coupon.Coupon, error)
}

// RouteSource finds an active fixed-price route for a city pair, checking
// both directions.
type RouteSource interface {
	Find(ctx context.Context, cityA, cityB string) (*pricing.CityRoute, error)
}

// Engine turns distance, weight, an optional city pair and an optional
// coupon into a fare breakdown. Quoting is deterministic for a given rule
// snapshot and lookup state.
type Engine struct {
	rules   pricing.RuleSet
	routes  RouteSource
	coupons CouponSource
	nowFn   func() time.Time
}

func NewEngine(rules pricing.RuleSet, routes RouteSource, coupons CouponSource) *Engine {
	return &Engine{
		rules:   rules,
		routes:  routes,
		coupons: coupons,
		nowFn:   time.Now,
	}
}

// Quote computes the fare breakdown for a request the caller has validated.
func (e *Engine) Quote(ctx context.Context, req fareTypes.QuoteRequest) (*fareTypes.QuoteResponse, error) {
	resp := &fareTypes.QuoteResponse{
		DistanceKm: utils.Round2(req.DistanceKm),
		WeightKg:   req.WeightKg,
	}

	pickup := strings.TrimSpace(req.PickupCity)
	drop := strings.TrimSpace(req.DropCity)

	if pickup != "" && drop != "" {
		route, err := e.routes.Find(ctx, pickup, drop)
		if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
			// A store failure is not "no route configured"; quoting the
			// distance fallback here could charge the wrong fare.
			return nil, err
		}
		if route != nil {
			resp.RouteMatch = true
			resp.BaseFare = route.BaseFare
			if req.WeightKg > heavyWeightKg {
				resp.BaseFare = route.HeavyFare
			}
			resp.GST = utils.RoundMoney(float64(resp.BaseFare) * route.GSTPercent / 100)
		}
	}

	if !resp.RouteMatch {
		fareAmt, applyGST := e.distanceFare(req.DistanceKm, req.WeightKg)
		resp.BaseFare = fareAmt
		if applyGST {
			resp.GST = utils.RoundMoney(float64(fareAmt) * e.rules.GSTPercent / 100)
		}
	}

	resp.Total = resp.BaseFare + resp.GST
	resp.FinalFare = resp.Total

	if req.CouponCode != "" {
		e.applyCoupon(ctx, req.CouponCode, resp)
	}

	return resp, nil
}

// distanceFare selects the first tier covering the distance and weight. With
// no match it falls back to the costliest tier; an empty rule set falls back
// to the configured minimum fare with GST disabled.
func (e *Engine) distanceFare(distanceKm, weightKg float64) (int64, bool) {
	if len(e.rules.Tiers) == 0 {
		return e.rules.MinimumFare, false
	}

	for _, t := range e.rules.Tiers {
		if distanceKm >= t.MinKm && distanceKm <= t.MaxKm && weightKg <= t.MaxWeightKg {
			return t.Fare, t.ApplyGST
		}
	}

	highest := e.rules.Tiers[0]
	for _, t := range e.rules.Tiers[1:] {
		if t.Fare > highest.Fare {
			highest = t
		}
	}
	return highest.Fare, highest.ApplyGST
}

// applyCoupon discounts the quote in place. A coupon that cannot be applied
// is ignored silently so fare quoting never hard-fails on a bad code.
func (e *Engine) applyCoupon(ctx context.Context, code string, resp *fareTypes.QuoteResponse) {
	normalized := strings.ToUpper(strings.TrimSpace(code))

	c, err := e.coupons.GetByCode(ctx, normalized)
	if err != nil || c == nil {
		logger.Debug(fmt.Sprintf("Coupon %s not applied: lookup failed", normalized))
		return
	}

	if !c.IsUsableAt(resp.Total, e.nowFn()) {
		logger.Debug(fmt.Sprintf("Coupon %s not applied: not usable for amount %d", normalized, resp.Total))
		return
	}

	var discount int64
	switch c.DiscountType {
	case coupon.DiscountPercentage:
		discount = utils.RoundMoney(float64(resp.Total) * c.DiscountValue / 100)
	case coupon.DiscountFixed:
		discount = utils.RoundMoney(c.DiscountValue)
	default:
		return
	}

	if c.MaxDiscount != nil && discount > *c.MaxDiscount {
		discount = *c.MaxDiscount
	}
	if discount > resp.Total {
		discount = resp.Total
	}
	if discount <= 0 {
		return
	}

	resp.Discount = discount
	resp.FinalFare = resp.Total - discount
	resp.CouponUsed = normalized
}
