package fare

import (
	"fmt"

	"parcel-delivery/types"
)

// QuoteRequest asks for a fare. City names are optional; when both are set a
// fixed city-route price wins over distance-based pricing.
type QuoteRequest struct {
	DistanceKm float64 `json:"distance_km" validate:"omitempty,gte=0"`
	WeightKg   float64 `json:"weight_kg" validate:"required,gt=0"`
	PickupCity string  `json:"pickup_city" validate:"omitempty,max=120"`
	DropCity   string  `json:"drop_city" validate:"omitempty,max=120"`
	CouponCode string  `json:"coupon_code" validate:"omitempty,max=50"`
}

// QuoteResponse is the fare breakdown returned to the caller.
type QuoteResponse struct {
	DistanceKm float64 `json:"distance_km"`
	WeightKg   float64 `json:"weight_kg"`
	BaseFare   int64   `json:"base_fare"`
	GST        int64   `json:"gst"`
	Total      int64   `json:"total"`
	Discount   int64   `json:"discount"`
	FinalFare  int64   `json:"final_fare"`
	CouponUsed string  `json:"coupon_used,omitempty"`
	RouteMatch bool    `json:"route_match"`
}

func (r QuoteRequest) Validate() error {
	if err := types.ValidateStruct(r); err != nil {
		return err
	}
	if r.WeightKg <= 0 {
		return fmt.Errorf("weight_kg must be positive")
	}
	hasRoute := r.PickupCity != "" && r.DropCity != ""
	if !hasRoute && r.DistanceKm <= 0 {
		return fmt.Errorf("distance_km must be positive when no city pair is given")
	}
	return nil
}
