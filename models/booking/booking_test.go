package booking

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBookingTrackingFields(t *testing.T) {
	deliveredAt := time.Date(2025, 6, 15, 18, 30, 0, 0, time.UTC)
	b := Booking{
		BookingID:     "PD-15-06-2025-001",
		Status:        StatusDelivered,
		PaymentStatus: PaymentPaid,
		DeliveredAt:   &deliveredAt,
	}

	raw, err := json.Marshal(b)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"delivered_at":"2025-06-15T18:30:00Z"`)
}

func TestBookingDeliveredAtOmittedUntilDelivery(t *testing.T) {
	b := Booking{BookingID: "PD-15-06-2025-002", Status: StatusShipped}

	raw, err := json.Marshal(b)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "delivered_at")
}
