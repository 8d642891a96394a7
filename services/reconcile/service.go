package reconcile

import (
	"context"
	"fmt"

	"parcel-delivery/apperrors"
	"parcel-delivery/httpServices/paymentgateway"
	"parcel-delivery/logger"
	bookingModel "parcel-delivery/models/booking"
	stagedModel "parcel-delivery/models/staged"
	"parcel-delivery/services/staged"
	bookingTypes "parcel-delivery/types/booking"
	fareTypes "parcel-delivery/types/fare"
	paymentTypes "parcel-delivery/types/payment"
)

// Service orchestrates payment initiation and the idempotent reconciliation
// of gateway callbacks onto booking state. Webhook and redirect handling for
// the same merchant reference may run concurrently; the staged-store claim
// flag and the grace-delayed delete keep that race safe.
type Service struct {
	bookings BookingStore
	staged   StagedStore
	gateway  Gateway
	quoter   Quoter

	// publicBaseURL is where the gateway redirects the payer's browser.
	publicBaseURL string
}

func NewService(bookings BookingStore, stagedStore StagedStore, gateway Gateway, quoter Quoter, publicBaseURL string) *Service {
	return &Service{
		bookings:      bookings,
		staged:        stagedStore,
		gateway:       gateway,
		quoter:        quoter,
		publicBaseURL: publicBaseURL,
	}
}

// Initiate requests a hosted payment page, staging the booking data first
// when no permanent booking exists yet.
func (s *Service) Initiate(ctx context.Context, userID uint, payerPhone string, req paymentTypes.CreatePaymentRequest) (*paymentTypes.CreatePaymentResponse, error) {
	var (
		ref    Ref
		amount int64
	)

	if req.BookingID != "" {
		b, err := s.bookings.GetByBookingID(ctx, req.BookingID)
		if err != nil {
			return nil, err
		}
		if b.UserID != userID {
			return nil, fmt.Errorf("%w: booking belongs to another user", apperrors.ErrForbidden)
		}
		if b.PaymentStatus == bookingModel.PaymentPaid {
			return nil, fmt.Errorf("%w: booking %s is already paid", apperrors.ErrInvalidArgument, b.BookingID)
		}
		if b.Fare == nil || *b.Fare <= 0 {
			return nil, fmt.Errorf("%w: booking %s has no fare to collect", apperrors.ErrInvalidArgument, b.BookingID)
		}

		ref = NewBookingRef(b.ID)
		amount = *b.Fare
	} else {
		quote, err := s.quoter.Quote(ctx, fareTypes.QuoteRequest{
			DistanceKm: req.Booking.DistanceKm,
			WeightKg:   req.Booking.Parcel.WeightKg,
			PickupCity: req.Booking.Pickup.City,
			DropCity:   req.Booking.Drop.City,
			CouponCode: req.Booking.CouponCode,
		})
		if err != nil {
			return nil, err
		}

		ref = NewStagedRef()
		amount = quote.FinalFare

		rec := stagedRecord(userID, req.Booking, quote, ref.Raw)
		if _, err := s.staged.Stage(ctx, rec); err != nil {
			return nil, err
		}
	}

	page, err := s.gateway.CreatePaymentPage(ctx, paymentgateway.CreatePageRequest{
		MerchantRef: ref.Raw,
		Amount:      amount,
		PayerPhone:  payerPhone,
		SuccessURL:  s.publicBaseURL + "/api/payments/success?merchant_ref=" + ref.Raw,
		FailedURL:   s.publicBaseURL + "/api/payments/failed?merchant_ref=" + ref.Raw,
	})
	if err != nil {
		// A staged record left behind expires on its own TTL.
		return nil, err
	}

	return &paymentTypes.CreatePaymentResponse{
		MerchantRef: ref.Raw,
		PayURL:      page.PayURL,
		ExpiresAt:   page.ExpiresAt,
	}, nil
}

// HandleWebhook reconciles a validated gateway push. The HTTP layer always
// acknowledges 200 regardless of the returned error.
func (s *Service) HandleWebhook(ctx context.Context, payload *paymentgateway.WebhookPayload) error {
	_, err := s.Reconcile(ctx, payload.MerchantRef, outcomeFromTxn(payload.TxnStatus))
	return err
}

// CheckAndReconcile re-verifies the transaction directly with the gateway
// and reconciles the verified outcome. Redirect and poll handling never
// trust the caller's claim of success. PENDING is a non-error result.
func (s *Service) CheckAndReconcile(ctx context.Context, merchantRef string) (*paymentTypes.StatusResponse, error) {
	if _, err := ParseRef(merchantRef); err != nil {
		return nil, err
	}

	st, err := s.gateway.CheckStatus(ctx, merchantRef)
	if err != nil {
		return nil, err
	}

	outcome := outcomeFromTxn(st.TxnStatus)
	if outcome == bookingModel.OutcomePending {
		return &paymentTypes.StatusResponse{
			MerchantRef: merchantRef,
			Outcome:     string(bookingModel.OutcomePending),
		}, nil
	}

	bookingID, err := s.Reconcile(ctx, merchantRef, outcome)
	if err != nil {
		return nil, err
	}

	return &paymentTypes.StatusResponse{
		MerchantRef: merchantRef,
		Outcome:     string(outcome),
		BookingID:   bookingID,
	}, nil
}

// Reconcile is the idempotent core both the webhook and the redirect/poll
// paths converge on. It returns the permanent booking id affected, when one
// is known.
func (s *Service) Reconcile(ctx context.Context, merchantRef string, outcome bookingModel.PaymentOutcome) (string, error) {
	ref, err := ParseRef(merchantRef)
	if err != nil {
		return "", err
	}

	if outcome == bookingModel.OutcomePending {
		return "", nil
	}

	if ref.Kind == RefStaged {
		return s.reconcileStaged(ctx, ref, outcome)
	}
	return s.reconcileBooking(ctx, ref, outcome)
}

func (s *Service) reconcileStaged(ctx context.Context, ref Ref, outcome bookingModel.PaymentOutcome) (string, error) {
	if outcome == bookingModel.OutcomeFailed {
		// No booking is ever created for a failed staged attempt.
		if err := s.staged.Delete(ctx, ref.Raw); err != nil {
			return "", err
		}
		logger.Info("Staged payment " + ref.Raw + " failed, record dropped")
		return "", nil
	}

	rec, err := s.staged.Get(ctx, ref.Raw)
	if err != nil {
		// Expired TTL or unknown/duplicate reference after cleanup: a
		// reportable anomaly, not something to retry.
		logger.Error("Successful payment "+ref.Raw+" has no staged record", err)
		return "", err
	}

	// Another reconciliation path already materialized the booking.
	if rec.BookingID != nil && *rec.BookingID != "" {
		return s.ensurePaid(ctx, *rec.BookingID)
	}

	claimed, err := s.staged.Claim(ctx, ref.Raw)
	if err != nil {
		return "", err
	}
	if !claimed {
		// The racing path holds the claim; its attach may not have landed
		// yet. Report what is known without creating anything.
		rec, err := s.staged.Get(ctx, ref.Raw)
		if err == nil && rec.BookingID != nil {
			return *rec.BookingID, nil
		}
		logger.Info("Reconciliation for " + ref.Raw + " already in progress")
		return "", nil
	}

	b, err := s.bookings.CreateFromStaged(ctx, rec)
	if err != nil {
		if relErr := s.staged.ReleaseClaim(ctx, ref.Raw); relErr != nil {
			logger.Error("Failed to release claim for "+ref.Raw, relErr)
		}
		return "", err
	}

	// Attach before flipping payment state: if the flip fails mid-way, a
	// retried callback finds the booking id and repairs the payment status
	// instead of creating a second booking.
	if err := s.staged.AttachBookingID(ctx, ref.Raw, b.BookingID); err != nil {
		logger.Error("Failed to attach booking id to "+ref.Raw, err)
	}

	if err := s.bookings.ApplyPaymentOutcome(ctx, b, bookingModel.OutcomeSuccess, "online payment confirmed for "+ref.Raw); err != nil {
		// Money has moved; surface the error so the caller retries.
		return b.BookingID, err
	}

	s.staged.DeleteAfter(ref.Raw, staged.GraceDelay)

	return b.BookingID, nil
}

func (s *Service) reconcileBooking(ctx context.Context, ref Ref, outcome bookingModel.PaymentOutcome) (string, error) {
	b, err := s.bookings.GetByID(ctx, ref.BookingPK)
	if err != nil {
		return "", err
	}

	note := fmt.Sprintf("gateway reported %s for %s", outcome, ref.Raw)
	if err := s.bookings.ApplyPaymentOutcome(ctx, b, outcome, note); err != nil {
		return b.BookingID, err
	}

	return b.BookingID, nil
}

// ensurePaid re-applies the success outcome to an already materialized
// booking; a repeat on a paid booking is a no-op.
func (s *Service) ensurePaid(ctx context.Context, bookingID string) (string, error) {
	b, err := s.bookings.GetByBookingID(ctx, bookingID)
	if err != nil {
		return "", err
	}
	if err := s.bookings.ApplyPaymentOutcome(ctx, b, bookingModel.OutcomeSuccess, "payment success replayed"); err != nil {
		return bookingID, err
	}
	return bookingID, nil
}

func outcomeFromTxn(txnStatus string) bookingModel.PaymentOutcome {
	switch txnStatus {
	case paymentgateway.TxnSuccess:
		return bookingModel.OutcomeSuccess
	case paymentgateway.TxnFailed:
		return bookingModel.OutcomeFailed
	default:
		return bookingModel.OutcomePending
	}
}

func stagedRecord(userID uint, req *bookingTypes.BookingCreateRequest, quote *fareTypes.QuoteResponse, merchantRef string) *stagedModel.StagedBooking {
	rec := &stagedModel.StagedBooking{
		UserID: userID,
		Pickup: addressDetail(req.Pickup),
		Drop:   addressDetail(req.Drop),
		Parcel: parcelDetail(req.Parcel),
		Fare:   quote.FinalFare,

		MerchantRef: merchantRef,
	}
	if quote.CouponUsed != "" {
		code := quote.CouponUsed
		rec.CouponCode = &code
	}
	return rec
}

func addressDetail(p bookingTypes.AddressPayload) bookingModel.AddressDetail {
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

func parcelDetail(p bookingTypes.ParcelPayload) bookingModel.ParcelDetail {
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
