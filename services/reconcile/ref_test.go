package reconcile

import (
	"testing"

	"parcel-delivery/apperrors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewStagedRefRoundTrip(t *testing.T) {
	ref := NewStagedRef()
	assert.Equal(t, RefStaged, ref.Kind)

	parsed, err := ParseRef(ref.Raw)
	require.NoError(t, err)
	assert.Equal(t, RefStaged, parsed.Kind)
	assert.Equal(t, ref.Raw, parsed.Raw)
}

func TestNewStagedRefsAreUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		ref := NewStagedRef()
		assert.False(t, seen[ref.Raw], ref.Raw)
		seen[ref.Raw] = true
	}
}

func TestNewBookingRefRoundTrip(t *testing.T) {
	ref := NewBookingRef(42)
	assert.Equal(t, RefBooking, ref.Kind)
	assert.Equal(t, uint(42), ref.BookingPK)

	parsed, err := ParseRef(ref.Raw)
	require.NoError(t, err)
	assert.Equal(t, RefBooking, parsed.Kind)
	assert.Equal(t, uint(42), parsed.BookingPK)
}

func TestParseRefTrimsWhitespace(t *testing.T) {
	parsed, err := ParseRef("  PDBKG7T1700000000 ")
	require.NoError(t, err)
	assert.Equal(t, uint(7), parsed.BookingPK)
}

func TestParseRefRejectsMalformed(t *testing.T) {
	cases := []string{
		"",
		"PDSTG",
		"PDBKG",
		"PDBKGT1700000000",
		"PDBKGxT1700000000",
		"PDBKG0T1700000000",
		"PDBKG12",
		"ORDER-123",
	}
	for _, raw := range cases {
		_, err := ParseRef(raw)
		assert.ErrorIs(t, err, apperrors.ErrInvalidArgument, raw)
	}
}
