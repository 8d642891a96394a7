package booking

import (
	"fmt"

	"parcel-delivery/types"
	"parcel-delivery/utils"
)

// AddressPayload mirrors the pickup/drop block of a booking.
type AddressPayload struct {
	Name     string `json:"name" validate:"required,min=1,max=255"`
	Phone    string `json:"phone" validate:"required,min=6,max=20"`
	Address  string `json:"address" validate:"required,min=1"`
	City     string `json:"city" validate:"required,min=1,max=120"`
	State    string `json:"state" validate:"omitempty,max=120"`
	Pincode  string `json:"pincode" validate:"omitempty,max=20"`
	Landmark string `json:"landmark" validate:"omitempty,max=255"`
}

// ParcelPayload mirrors the parcel block of a booking.
type ParcelPayload struct {
	Type       string  `json:"type" validate:"required,min=1,max=100"`
	WeightKg   float64 `json:"weight_kg" validate:"required,gt=0"`
	Dimensions string  `json:"dimensions" validate:"omitempty,max=100"`
	Value      float64 `json:"value" validate:"omitempty,gte=0"`
}

// BookingCreateRequest is the payload for creating a booking. DistanceKm is
// resolved by the map layer on the client side before booking.
type BookingCreateRequest struct {
	PaymentMethod string         `json:"payment_method" validate:"required,oneof=cod online"`
	DistanceKm    float64        `json:"distance_km" validate:"required,gt=0"`
	Pickup        AddressPayload `json:"pickup" validate:"required"`
	Drop          AddressPayload `json:"drop" validate:"required"`
	Parcel        ParcelPayload  `json:"parcel" validate:"required"`
	CouponCode    string         `json:"coupon_code" validate:"omitempty,max=50"`
}

// StatusUpdateRequest changes the delivery status of a booking. Reason is
// required only when the new status is returned.
type StatusUpdateRequest struct {
	Status string `json:"status" validate:"required"`
	Reason string `json:"reason" validate:"omitempty"`
}

// PaymentStatusUpdateRequest changes the payment status of a booking.
type PaymentStatusUpdateRequest struct {
	PaymentStatus string `json:"payment_status" validate:"required"`
}

// PODRequest records a proof-of-delivery signature.
type PODRequest struct {
	Signature string `json:"signature" validate:"required"`
	SignedBy  string `json:"signed_by" validate:"required,max=255"`
}

// use first step validation
func (b BookingCreateRequest) Validate() error {
	if err := types.ValidateStruct(b); err != nil {
		return err
	}
	if b.PaymentMethod != "cod" && b.PaymentMethod != "online" {
		return fmt.Errorf("payment_method must be either 'cod' or 'online'")
	}
	if b.DistanceKm <= 0 {
		return fmt.Errorf("distance_km must be positive")
	}
	if err := b.Pickup.validate("pickup"); err != nil {
		return err
	}
	if err := b.Drop.validate("drop"); err != nil {
		return err
	}
	if b.Parcel.Type == "" {
		return fmt.Errorf("parcel type is required")
	}
	if b.Parcel.WeightKg <= 0 {
		return fmt.Errorf("parcel weight_kg must be positive")
	}
	return nil
}

func (a AddressPayload) validate(side string) error {
	if a.Name == "" {
		return fmt.Errorf("%s name is required", side)
	}
	if a.Phone == "" {
		return fmt.Errorf("%s phone is required", side)
	}
	if !utils.ValidatePhoneNumber(a.Phone) {
		return fmt.Errorf("%s phone must be a valid mobile number", side)
	}
	if a.Address == "" {
		return fmt.Errorf("%s address is required", side)
	}
	if a.City == "" {
		return fmt.Errorf("%s city is required", side)
	}
	return nil
}

func (r StatusUpdateRequest) Validate() error {
	if r.Status == "" {
		return fmt.Errorf("status is required")
	}
	if r.Status == "returned" && r.Reason == "" {
		return fmt.Errorf("reason is required when returning a booking")
	}
	return nil
}

func (r PaymentStatusUpdateRequest) Validate() error {
	if r.PaymentStatus == "" {
		return fmt.Errorf("payment_status is required")
	}
	return nil
}

func (r PODRequest) Validate() error {
	if r.Signature == "" {
		return fmt.Errorf("signature is required")
	}
	if r.SignedBy == "" {
		return fmt.Errorf("signed_by is required")
	}
	return nil
}
