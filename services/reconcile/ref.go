package reconcile

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"parcel-delivery/apperrors"

	"github.com/google/uuid"
)

// Merchant reference prefixes. The kind is decided once when the reference
// is minted; ParseRef is the single place the webhook path recovers it.
const (
	stagedPrefix  = "PDSTG"
	bookingPrefix = "PDBKG"
)

// RefKind discriminates what a merchant reference points at.
type RefKind int

const (
	// RefStaged references a staged, not-yet-created booking.
	RefStaged RefKind = iota
	// RefBooking references an existing permanent booking.
	RefBooking
)

// Ref is a typed merchant reference correlating one payment attempt across
// initiate, webhook and redirect.
type Ref struct {
	Kind      RefKind
	Raw       string
	BookingPK uint
}

// NewStagedRef mints a reference for a payment attempt with no booking yet.
func NewStagedRef() Ref {
	raw := stagedPrefix + strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", ""))
	return Ref{Kind: RefStaged, Raw: raw}
}

// NewBookingRef mints a reference for a payment attempt against an existing
// booking. The timestamp keeps retried attempts distinct at the gateway.
func NewBookingRef(bookingPK uint) Ref {
	raw := fmt.Sprintf("%s%dT%d", bookingPrefix, bookingPK, time.Now().Unix())
	return Ref{Kind: RefBooking, Raw: raw, BookingPK: bookingPK}
}

// ParseRef recovers the typed reference from its wire form.
func ParseRef(raw string) (Ref, error) {
	raw = strings.TrimSpace(raw)

	switch {
	case strings.HasPrefix(raw, stagedPrefix):
		if len(raw) <= len(stagedPrefix) {
			return Ref{}, fmt.Errorf("%w: malformed staged merchant reference", apperrors.ErrInvalidArgument)
		}
		return Ref{Kind: RefStaged, Raw: raw}, nil

	case strings.HasPrefix(raw, bookingPrefix):
		body := raw[len(bookingPrefix):]
		idPart, _, found := strings.Cut(body, "T")
		if !found || idPart == "" {
			return Ref{}, fmt.Errorf("%w: malformed booking merchant reference", apperrors.ErrInvalidArgument)
		}
		pk, err := strconv.ParseUint(idPart, 10, 32)
		if err != nil || pk == 0 {
			return Ref{}, fmt.Errorf("%w: malformed booking merchant reference", apperrors.ErrInvalidArgument)
		}
		return Ref{Kind: RefBooking, Raw: raw, BookingPK: uint(pk)}, nil

	default:
		return Ref{}, fmt.Errorf("%w: unknown merchant reference %q", apperrors.ErrInvalidArgument, raw)
	}
}
