package booking

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validCreateRequest() BookingCreateRequest {
	return BookingCreateRequest{
		PaymentMethod: "cod",
		DistanceKm:    20,
		Pickup: AddressPayload{
			Name: "Asha", Phone: "+919812345670", Address: "12 MG Road", City: "Pune",
		},
		Drop: AddressPayload{
			Name: "Ravi", Phone: "9812345671", Address: "4 Link Road", City: "Mumbai",
		},
		Parcel: ParcelPayload{Type: "documents", WeightKg: 2},
	}
}

func TestBookingCreateRequestValidate(t *testing.T) {
	require.NoError(t, validCreateRequest().Validate())
}

func TestBookingCreateRequestRejectsBadPhones(t *testing.T) {
	cases := []string{
		"12345",         // too short
		"5812345670",    // mobile numbers start at 6
		"+929812345670", // wrong country prefix
		"98123456701",   // too long
		"98-1234-5670",  // separators not accepted
	}
	for _, phone := range cases {
		req := validCreateRequest()
		req.Pickup.Phone = phone
		assert.Error(t, req.Validate(), phone)

		req = validCreateRequest()
		req.Drop.Phone = phone
		assert.Error(t, req.Validate(), phone)
	}
}

func TestBookingCreateRequestRejectsBadMethodAndDistance(t *testing.T) {
	req := validCreateRequest()
	req.PaymentMethod = "wallet"
	assert.Error(t, req.Validate())

	req = validCreateRequest()
	req.DistanceKm = 0
	assert.Error(t, req.Validate())
}
