package staged

import (
	"testing"
	"time"

	"parcel-delivery/apperrors"
	bookingModel "parcel-delivery/models/booking"
	stagedModel "parcel-delivery/models/staged"

	"github.com/stretchr/testify/assert"
)

func validRecord() *stagedModel.StagedBooking {
	return &stagedModel.StagedBooking{
		UserID: 1,
		Pickup: bookingModel.AddressDetail{
			Name: "Asha", Phone: "+919812345670", Address: "12 MG Road", City: "Pune",
		},
		Drop: bookingModel.AddressDetail{
			Name: "Ravi", Phone: "+919812345671", Address: "4 Link Road", City: "Mumbai",
		},
		Parcel:      bookingModel.ParcelDetail{Type: "documents", WeightKg: 2},
		Fare:        83,
		MerchantRef: "PDSTGABC123",
	}
}

func TestKeyDerivation(t *testing.T) {
	assert.Equal(t, "staged:PDSTGABC123", Key("PDSTGABC123"))
	assert.Equal(t, "staged:PDSTGABC123", Key("  pdstgabc123 "))
	assert.Equal(t, "staged:PDSTGABC-123", Key("pdstg abc-123!"))
}

func TestValidateRecordAcceptsCompletePayload(t *testing.T) {
	assert.NoError(t, ValidateRecord(validRecord()))
}

func TestValidateRecordRejectsIncompletePayloads(t *testing.T) {
	mutations := map[string]func(*stagedModel.StagedBooking){
		"missing user":      func(r *stagedModel.StagedBooking) { r.UserID = 0 },
		"missing ref":       func(r *stagedModel.StagedBooking) { r.MerchantRef = "" },
		"missing pickup":    func(r *stagedModel.StagedBooking) { r.Pickup.Phone = "" },
		"missing drop":      func(r *stagedModel.StagedBooking) { r.Drop.Address = "" },
		"missing parcel":    func(r *stagedModel.StagedBooking) { r.Parcel.Type = "" },
		"zero weight":       func(r *stagedModel.StagedBooking) { r.Parcel.WeightKg = 0 },
		"zero fare":         func(r *stagedModel.StagedBooking) { r.Fare = 0 },
		"negative fare":     func(r *stagedModel.StagedBooking) { r.Fare = -10 },
	}

	for name, mutate := range mutations {
		rec := validRecord()
		mutate(rec)
		assert.ErrorIs(t, ValidateRecord(rec), apperrors.ErrInvalidArgument, name)
	}

	assert.ErrorIs(t, ValidateRecord(nil), apperrors.ErrInvalidArgument)
}

func TestRecordExpiry(t *testing.T) {
	rec := validRecord()
	rec.ExpiresAt = time.Now().Add(time.Minute)
	assert.False(t, rec.IsExpired(time.Now()))
	assert.True(t, rec.IsExpired(time.Now().Add(2*time.Minute)))
}
