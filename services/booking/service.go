package booking

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"parcel-delivery/apperrors"
	"parcel-delivery/logger"
	bookingModel "parcel-delivery/models/booking"
	"parcel-delivery/models/coupon"
	stagedModel "parcel-delivery/models/staged"
	"parcel-delivery/services/notification"
	bookingTypes "parcel-delivery/types/booking"

	"github.com/jinzhu/now"
	"gorm.io/gorm"
)

const defaultIDPrefix = "PD"

// Service owns the permanent Booking entity: creation, status mutation and
// lookups. Every effective transition fires a best-effort notification and
// appends a status event row.
type Service struct {
	DB       *gorm.DB
	Notifier notification.Dispatcher
}

func NewService(db *gorm.DB, notifier notification.Dispatcher) *Service {
	return &Service{
		DB:       db,
		Notifier: notifier,
	}
}

// FormatBookingID renders the human-readable sequential id, which doubles
// as the tracking number.
func FormatBookingID(prefix, day string, n int) string {
	return fmt.Sprintf("%s-%s-%03d", prefix, day, n)
}

// nextBookingID reserves the next per-day suffix with an atomic upsert, so
// concurrent creations on the same day never collide.
func (s *Service) nextBookingID(tx *gorm.DB, at time.Time) (string, error) {
	day := now.With(at).BeginningOfDay().Format("02-01-2006")

	var counter int
	err := tx.Raw(
		`INSERT INTO booking_counters (day, counter) VALUES (?, 1)
		 ON CONFLICT (day) DO UPDATE SET counter = booking_counters.counter + 1
		 RETURNING counter`, day,
	).Scan(&counter).Error
	if err != nil {
		return "", fmt.Errorf("%w: reserve booking id: %v", apperrors.ErrInternal, err)
	}

	prefix := os.Getenv("BOOKING_ID_PREFIX")
	if prefix == "" {
		prefix = defaultIDPrefix
	}
	return FormatBookingID(prefix, day, counter), nil
}

// CreateCOD creates a cash-on-delivery booking immediately in the created
// state with payment pending.
func (s *Service) CreateCOD(ctx context.Context, userID uint, req bookingTypes.BookingCreateRequest, fare int64) (*bookingModel.Booking, error) {
	if fare <= 0 {
		return nil, fmt.Errorf("%w: fare must be positive", apperrors.ErrInvalidArgument)
	}

	b := bookingFromPayload(userID, req.Pickup, req.Drop, req.Parcel, req.CouponCode, fare)
	b.Status = bookingModel.StatusCreated
	b.PaymentStatus = bookingModel.PaymentPending
	b.PaymentMethod = bookingModel.MethodCOD

	if err := s.create(ctx, b, "booking created"); err != nil {
		return nil, err
	}

	go s.Notifier.Notify(context.WithoutCancel(ctx), b.UserID,
		"Booking confirmed",
		fmt.Sprintf("Your booking %s has been created. Pay %d on delivery.", b.BookingID, fare),
		map[string]interface{}{"booking_id": b.BookingID, "status": string(b.Status)},
	)

	return b, nil
}

// CreateFromStaged materializes a permanent booking from a confirmed staged
// payload. The booking starts in pending_payment; the reconciliation core
// flips it to paid/created right after. A coupon carried on the staged
// payload consumes one usage.
func (s *Service) CreateFromStaged(ctx context.Context, rec *stagedModel.StagedBooking) (*bookingModel.Booking, error) {
	b := bookingFromPayloadParts(rec.UserID, rec.Pickup, rec.Drop, rec.Parcel, rec.CouponCode, rec.Fare)
	b.Status = bookingModel.StatusPendingPayment
	b.PaymentStatus = bookingModel.PaymentPending
	b.PaymentMethod = bookingModel.MethodOnline

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		id, err := s.nextBookingID(tx, time.Now())
		if err != nil {
			return err
		}
		b.BookingID = id

		if err := tx.Create(b).Error; err != nil {
			return fmt.Errorf("%w: create booking: %v", apperrors.ErrInternal, err)
		}

		if b.CouponCode != nil && *b.CouponCode != "" {
			if err := tx.Model(&coupon.Coupon{}).
				Where("code = ?", *b.CouponCode).
				UpdateColumn("used_count", gorm.Expr("used_count + 1")).Error; err != nil {
				return fmt.Errorf("%w: consume coupon: %v", apperrors.ErrInternal, err)
			}
		}

		return s.appendEvent(tx, b, "materialized from staged payment "+rec.MerchantRef)
	})
	if err != nil {
		return nil, err
	}

	logger.Success(fmt.Sprintf("Booking %s materialized from staged payment %s", b.BookingID, rec.MerchantRef))
	return b, nil
}

func (s *Service) create(ctx context.Context, b *bookingModel.Booking, note string) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		id, err := s.nextBookingID(tx, time.Now())
		if err != nil {
			return err
		}
		b.BookingID = id

		if err := tx.Create(b).Error; err != nil {
			return fmt.Errorf("%w: create booking: %v", apperrors.ErrInternal, err)
		}

		return s.appendEvent(tx, b, note)
	})
}

// GetByID fetches a booking by its numeric primary key.
func (s *Service) GetByID(ctx context.Context, id uint) (*bookingModel.Booking, error) {
	var b bookingModel.Booking
	err := s.DB.WithContext(ctx).First(&b, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: booking %d", apperrors.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: booking lookup: %v", apperrors.ErrInternal, err)
	}
	return &b, nil
}

// GetByBookingID fetches a booking by its human-readable tracking number.
func (s *Service) GetByBookingID(ctx context.Context, bookingID string) (*bookingModel.Booking, error) {
	var b bookingModel.Booking
	err := s.DB.WithContext(ctx).Where("booking_id = ?", bookingID).First(&b).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: booking %s", apperrors.ErrNotFound, bookingID)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: booking lookup: %v", apperrors.ErrInternal, err)
	}
	return &b, nil
}

// ListByUser returns the user's bookings, newest first. Online bookings
// still awaiting payment never appear here because they only exist as
// staged records until the money moves.
func (s *Service) ListByUser(ctx context.Context, userID uint) ([]bookingModel.Booking, error) {
	var bookings []bookingModel.Booking
	err := s.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at desc").
		Find(&bookings).Error
	if err != nil {
		return nil, fmt.Errorf("%w: list bookings: %v", apperrors.ErrInternal, err)
	}
	return bookings, nil
}

// UpdateStatus advances the delivery status. Returning requires a reason.
// A same-status update is a silent no-op.
func (s *Service) UpdateStatus(ctx context.Context, id uint, next bookingModel.BookingStatus, reason, updatedBy string) (*bookingModel.Booking, error) {
	if !next.IsValid() {
		return nil, fmt.Errorf("%w: unknown status %q", apperrors.ErrInvalidArgument, next)
	}
	if next == bookingModel.StatusReturned && reason == "" {
		return nil, fmt.Errorf("%w: return reason is required", apperrors.ErrInvalidArgument)
	}

	b, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if b.Status == next {
		return b, nil
	}
	if !b.Status.CanTransitionTo(next) {
		return nil, fmt.Errorf("%w: cannot move booking from %s to %s", apperrors.ErrInvalidArgument, b.Status, next)
	}

	updates := map[string]interface{}{"status": next}
	if next == bookingModel.StatusReturned {
		nowTs := time.Now()
		updates["return_reason"] = reason
		updates["returned_at"] = nowTs
		b.ReturnReason = &reason
		b.ReturnedAt = &nowTs
	}
	if next == bookingModel.StatusDelivered {
		nowTs := time.Now()
		updates["delivered_at"] = nowTs
		b.DeliveredAt = &nowTs
	}

	prev := b.Status
	b.Status = next

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&bookingModel.Booking{}).Where("id = ?", b.ID).Updates(updates).Error; err != nil {
			return fmt.Errorf("%w: update status: %v", apperrors.ErrInternal, err)
		}
		return s.appendEventBy(tx, b, fmt.Sprintf("status %s -> %s", prev, next), updatedBy)
	})
	if err != nil {
		return nil, err
	}

	go s.Notifier.Notify(context.WithoutCancel(ctx), b.UserID,
		"Booking update",
		fmt.Sprintf("Your booking %s is now %s.", b.BookingID, next),
		map[string]interface{}{"booking_id": b.BookingID, "status": string(next)},
	)

	return b, nil
}

// ApplyPaymentOutcome maps a gateway outcome onto the booking and persists
// both status fields in a single write. Re-applying an outcome that changes
// nothing is a no-op.
func (s *Service) ApplyPaymentOutcome(ctx context.Context, b *bookingModel.Booking, outcome bookingModel.PaymentOutcome, note string) error {
	nextStatus, nextPayment := bookingModel.ApplyPaymentOutcome(b.Status, b.PaymentStatus, outcome)
	if nextStatus == b.Status && nextPayment == b.PaymentStatus {
		return nil
	}

	prevStatus, prevPayment := b.Status, b.PaymentStatus
	b.Status = nextStatus
	b.PaymentStatus = nextPayment

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{
			"status":         nextStatus,
			"payment_status": nextPayment,
		}
		if err := tx.Model(&bookingModel.Booking{}).Where("id = ?", b.ID).Updates(updates).Error; err != nil {
			return fmt.Errorf("%w: apply payment outcome: %v", apperrors.ErrInternal, err)
		}
		return s.appendEvent(tx, b, note)
	})
	if err != nil {
		b.Status = prevStatus
		b.PaymentStatus = prevPayment
		return err
	}

	title := "Payment update"
	body := fmt.Sprintf("Payment for booking %s is %s.", b.BookingID, nextPayment)
	if nextPayment == bookingModel.PaymentPaid {
		title = "Payment received"
		body = fmt.Sprintf("Payment for booking %s was successful.", b.BookingID)
	}
	go s.Notifier.Notify(context.WithoutCancel(ctx), b.UserID, title, body,
		map[string]interface{}{"booking_id": b.BookingID, "payment_status": string(nextPayment)},
	)

	return nil
}

// UpdatePaymentStatus is the admin-facing payment mutation, including the
// paid -> refunded branch the reconciliation protocol never takes itself.
func (s *Service) UpdatePaymentStatus(ctx context.Context, id uint, next bookingModel.PaymentStatus, updatedBy string) (*bookingModel.Booking, error) {
	if !next.IsValid() {
		return nil, fmt.Errorf("%w: unknown payment status %q", apperrors.ErrInvalidArgument, next)
	}

	b, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if b.PaymentStatus == next {
		return b, nil
	}
	if !b.PaymentStatus.CanTransitionTo(next) {
		return nil, fmt.Errorf("%w: cannot move payment from %s to %s", apperrors.ErrInvalidArgument, b.PaymentStatus, next)
	}

	switch next {
	case bookingModel.PaymentPaid:
		if err := s.ApplyPaymentOutcome(ctx, b, bookingModel.OutcomeSuccess, "payment marked paid by "+updatedBy); err != nil {
			return nil, err
		}
		return b, nil
	case bookingModel.PaymentFailed:
		if err := s.ApplyPaymentOutcome(ctx, b, bookingModel.OutcomeFailed, "payment marked failed by "+updatedBy); err != nil {
			return nil, err
		}
		return b, nil
	}

	prev := b.PaymentStatus
	b.PaymentStatus = next

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&bookingModel.Booking{}).Where("id = ?", b.ID).
			Update("payment_status", next).Error; err != nil {
			return fmt.Errorf("%w: update payment status: %v", apperrors.ErrInternal, err)
		}
		return s.appendEventBy(tx, b, fmt.Sprintf("payment %s -> %s", prev, next), updatedBy)
	})
	if err != nil {
		return nil, err
	}

	go s.Notifier.Notify(context.WithoutCancel(ctx), b.UserID,
		"Payment update",
		fmt.Sprintf("Payment for booking %s is now %s.", b.BookingID, next),
		map[string]interface{}{"booking_id": b.BookingID, "payment_status": string(next)},
	)

	return b, nil
}

// SetFare stores the computed fare on a booking.
func (s *Service) SetFare(ctx context.Context, id uint, fare int64) error {
	if fare < 0 {
		return fmt.Errorf("%w: fare cannot be negative", apperrors.ErrInvalidArgument)
	}

	res := s.DB.WithContext(ctx).Model(&bookingModel.Booking{}).Where("id = ?", id).Update("fare", fare)
	if res.Error != nil {
		return fmt.Errorf("%w: set fare: %v", apperrors.ErrInternal, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: booking %d", apperrors.ErrNotFound, id)
	}
	return nil
}

// RecordPOD captures the proof-of-delivery signature and, when the parcel
// was still in transit, marks the booking delivered in the same update.
func (s *Service) RecordPOD(ctx context.Context, id uint, signature, signedBy, updatedBy string) (*bookingModel.Booking, error) {
	if signature == "" || signedBy == "" {
		return nil, fmt.Errorf("%w: signature and signer are required", apperrors.ErrInvalidArgument)
	}

	b, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if b.Status != bookingModel.StatusShipped && b.Status != bookingModel.StatusDelivered {
		return nil, fmt.Errorf("%w: booking %s is not out for delivery", apperrors.ErrInvalidArgument, b.BookingID)
	}

	signedAt := time.Now()
	prev := b.Status
	b.PODSignature = &signature
	b.PODSignedBy = &signedBy
	b.PODSignedAt = &signedAt
	b.Status = bookingModel.StatusDelivered
	if b.DeliveredAt == nil {
		b.DeliveredAt = &signedAt
	}

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{
			"pod_signature": signature,
			"pod_signed_by": signedBy,
			"pod_signed_at": signedAt,
			"status":        bookingModel.StatusDelivered,
			"delivered_at":  *b.DeliveredAt,
		}
		if err := tx.Model(&bookingModel.Booking{}).Where("id = ?", b.ID).Updates(updates).Error; err != nil {
			return fmt.Errorf("%w: record pod: %v", apperrors.ErrInternal, err)
		}
		return s.appendEventBy(tx, b, "proof of delivery captured", updatedBy)
	})
	if err != nil {
		return nil, err
	}

	if prev != bookingModel.StatusDelivered {
		go s.Notifier.Notify(context.WithoutCancel(ctx), b.UserID,
			"Parcel delivered",
			fmt.Sprintf("Your booking %s has been delivered.", b.BookingID),
			map[string]interface{}{"booking_id": b.BookingID, "status": string(bookingModel.StatusDelivered)},
		)
	}

	return b, nil
}

func (s *Service) appendEvent(tx *gorm.DB, b *bookingModel.Booking, note string) error {
	return s.appendEventBy(tx, b, note, "system")
}

func (s *Service) appendEventBy(tx *gorm.DB, b *bookingModel.Booking, note, createdBy string) error {
	ev := bookingModel.BookingStatusEvent{
		BookingID:     b.ID,
		Status:        b.Status,
		PaymentStatus: b.PaymentStatus,
		Note:          note,
		CreatedBy:     createdBy,
	}
	if err := tx.Create(&ev).Error; err != nil {
		return fmt.Errorf("%w: append status event: %v", apperrors.ErrInternal, err)
	}
	return nil
}

func bookingFromPayload(userID uint, pickup, drop bookingTypes.AddressPayload, parcel bookingTypes.ParcelPayload, couponCode string, fare int64) *bookingModel.Booking {
	b := &bookingModel.Booking{
		UserID: userID,
		Pickup: addressFromPayload(pickup),
		Drop:   addressFromPayload(drop),
		Parcel: parcelFromPayload(parcel),
		Fare:   &fare,
	}
	if couponCode != "" {
		b.CouponCode = &couponCode
	}
	return b
}

func bookingFromPayloadParts(userID uint, pickup, drop bookingModel.AddressDetail, parcel bookingModel.ParcelDetail, couponCode *string, fare int64) *bookingModel.Booking {
	return &bookingModel.Booking{
		UserID:     userID,
		Pickup:     pickup,
		Drop:       drop,
		Parcel:     parcel,
		Fare:       &fare,
		CouponCode: couponCode,
	}
}

func addressFromPayload(p bookingTypes.AddressPayload) bookingModel.AddressDetail {
	a := bookingModel.AddressDetail{
		Name:    p.Name,
		Phone:   p.Phone,
		Address: p.Address,
		City:    p.City,
		State:   p.State,
		Pincode: p.Pincode,
	}
	if p.Landmark != "" {
		a.Landmark = &p.Landmark
	}
	return a
}

func parcelFromPayload(p bookingTypes.ParcelPayload) bookingModel.ParcelDetail {
	d := bookingModel.ParcelDetail{
		Type:     p.Type,
		WeightKg: p.WeightKg,
	}
	if p.Dimensions != "" {
		d.Dimensions = &p.Dimensions
	}
	if p.Value > 0 {
		v := p.Value
		d.Value = &v
	}
	return d
}
