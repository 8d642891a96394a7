package staged

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"parcel-delivery/apperrors"
	"parcel-delivery/logger"
	stagedModel "parcel-delivery/models/staged"
	"parcel-delivery/utils"

	"github.com/go-redis/redis/v8"
)

const (
	keyPrefix   = "staged:"
	claimSuffix = ":claim"

	// TTL bounds how long an unconfirmed payment can still materialize.
	TTL = time.Hour

	// GraceDelay keeps a successful record readable long enough for the
	// slower of webhook/redirect to observe the attached booking id.
	GraceDelay = 30 * time.Second
)

// Store is the Redis-backed holding area for online-payment bookings that
// have not been confirmed yet.
type Store struct {
	rdb *redis.Client
}

func NewStore(rdb *redis.Client) *Store {
	return &Store{rdb: rdb}
}

// Key derives the store key deterministically from the merchant reference,
// so any callback path can recompute it without a side index.
func Key(merchantRef string) string {
	return keyPrefix + utils.NormalizeKey(merchantRef)
}

// ValidateRecord rejects staged payloads missing pickup/drop/parcel details
// or carrying a non-positive fare.
func ValidateRecord(rec *stagedModel.StagedBooking) error {
	if rec == nil {
		return fmt.Errorf("%w: staged record is nil", apperrors.ErrInvalidArgument)
	}
	if rec.UserID == 0 {
		return fmt.Errorf("%w: staged record missing user", apperrors.ErrInvalidArgument)
	}
	if rec.MerchantRef == "" {
		return fmt.Errorf("%w: staged record missing merchant reference", apperrors.ErrInvalidArgument)
	}
	if rec.Pickup.Name == "" || rec.Pickup.Phone == "" || rec.Pickup.Address == "" {
		return fmt.Errorf("%w: staged record missing pickup details", apperrors.ErrInvalidArgument)
	}
	if rec.Drop.Name == "" || rec.Drop.Phone == "" || rec.Drop.Address == "" {
		return fmt.Errorf("%w: staged record missing drop details", apperrors.ErrInvalidArgument)
	}
	if rec.Parcel.Type == "" || rec.Parcel.WeightKg <= 0 {
		return fmt.Errorf("%w: staged record missing parcel details", apperrors.ErrInvalidArgument)
	}
	if rec.Fare <= 0 {
		return fmt.Errorf("%w: staged record fare must be positive", apperrors.ErrInvalidArgument)
	}
	return nil
}

// Stage writes the record under its merchant reference with a one hour TTL
// and returns the derived key.
func (s *Store) Stage(ctx context.Context, rec *stagedModel.StagedBooking) (string, error) {
	if err := ValidateRecord(rec); err != nil {
		return "", err
	}

	rec.ExpiresAt = time.Now().Add(TTL)

	body, err := json.Marshal(rec)
	if err != nil {
		return "", fmt.Errorf("marshal staged record: %w", err)
	}

	key := Key(rec.MerchantRef)
	if err := s.rdb.Set(ctx, key, body, TTL).Err(); err != nil {
		return "", fmt.Errorf("%w: stage booking: %v", apperrors.ErrInternal, err)
	}

	return key, nil
}

// Get fetches the record for a merchant reference. Absent and passively
// expired records both report ErrNotFound.
func (s *Store) Get(ctx context.Context, merchantRef string) (*stagedModel.StagedBooking, error) {
	raw, err := s.rdb.Get(ctx, Key(merchantRef)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("%w: no staged booking for %s", apperrors.ErrNotFound, merchantRef)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: read staged booking: %v", apperrors.ErrInternal, err)
	}

	var rec stagedModel.StagedBooking
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, fmt.Errorf("%w: corrupt staged booking: %v", apperrors.ErrInternal, err)
	}

	if rec.IsExpired(time.Now()) {
		return nil, fmt.Errorf("%w: staged booking for %s has expired", apperrors.ErrNotFound, merchantRef)
	}

	return &rec, nil
}

// AttachBookingID records the materialized booking id on the staged record,
// preserving its remaining TTL.
func (s *Store) AttachBookingID(ctx context.Context, merchantRef, bookingID string) error {
	rec, err := s.Get(ctx, merchantRef)
	if err != nil {
		return err
	}

	rec.BookingID = &bookingID

	body, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal staged record: %w", err)
	}

	key := Key(merchantRef)
	ttl, err := s.rdb.TTL(ctx, key).Result()
	if err != nil || ttl <= 0 {
		ttl = GraceDelay
	}

	if err := s.rdb.Set(ctx, key, body, ttl).Err(); err != nil {
		return fmt.Errorf("%w: attach booking id: %v", apperrors.ErrInternal, err)
	}
	return nil
}

// Delete removes the record and its claim flag immediately.
func (s *Store) Delete(ctx context.Context, merchantRef string) error {
	key := Key(merchantRef)
	if err := s.rdb.Del(ctx, key, key+claimSuffix).Err(); err != nil {
		return fmt.Errorf("%w: delete staged booking: %v", apperrors.ErrInternal, err)
	}
	return nil
}

// DeleteAfter schedules deletion off the request path, leaving a grace
// window for a concurrent redirect read.
func (s *Store) DeleteAfter(merchantRef string, delay time.Duration) {
	time.AfterFunc(delay, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.Delete(ctx, merchantRef); err != nil {
			logger.Error("Deferred staged booking delete failed for "+merchantRef, err)
		}
	})
}

// Claim atomically marks the merchant reference as being materialized.
// Exactly one of the racing reconciliation paths wins the flag.
func (s *Store) Claim(ctx context.Context, merchantRef string) (bool, error) {
	ok, err := s.rdb.SetNX(ctx, Key(merchantRef)+claimSuffix, "1", TTL).Result()
	if err != nil {
		return false, fmt.Errorf("%w: claim staged booking: %v", apperrors.ErrInternal, err)
	}
	return ok, nil
}

// ReleaseClaim undoes a claim whose materialization failed, so a retried
// callback can attempt it again.
func (s *Store) ReleaseClaim(ctx context.Context, merchantRef string) error {
	if err := s.rdb.Del(ctx, Key(merchantRef)+claimSuffix).Err(); err != nil {
		return fmt.Errorf("%w: release claim: %v", apperrors.ErrInternal, err)
	}
	return nil
}
