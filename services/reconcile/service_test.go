package reconcile

import (
	"context"
	"fmt"
	"testing"
	"time"

	"parcel-delivery/apperrors"
	"parcel-delivery/httpServices/paymentgateway"
	bookingModel "parcel-delivery/models/booking"
	stagedModel "parcel-delivery/models/staged"
	bookingTypes "parcel-delivery/types/booking"
	fareTypes "parcel-delivery/types/fare"
	paymentTypes "parcel-delivery/types/payment"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBookings struct {
	nextPK   uint
	byPK     map[uint]*bookingModel.Booking
	byID     map[string]*bookingModel.Booking
	created  int
	outcomes []bookingModel.PaymentOutcome

	applyErr error
}

func newFakeBookings() *fakeBookings {
	return &fakeBookings{
		nextPK: 1,
		byPK:   make(map[uint]*bookingModel.Booking),
		byID:   make(map[string]*bookingModel.Booking),
	}
}

func (f *fakeBookings) add(b *bookingModel.Booking) {
	if b.ID == 0 {
		b.ID = f.nextPK
		f.nextPK++
	}
	f.byPK[b.ID] = b
	f.byID[b.BookingID] = b
}

func (f *fakeBookings) GetByID(_ context.Context, id uint) (*bookingModel.Booking, error) {
	b, ok := f.byPK[id]
	if !ok {
		return nil, fmt.Errorf("%w: booking %d", apperrors.ErrNotFound, id)
	}
	return b, nil
}

func (f *fakeBookings) GetByBookingID(_ context.Context, bookingID string) (*bookingModel.Booking, error) {
	b, ok := f.byID[bookingID]
	if !ok {
		return nil, fmt.Errorf("%w: booking %s", apperrors.ErrNotFound, bookingID)
	}
	return b, nil
}

func (f *fakeBookings) CreateFromStaged(_ context.Context, rec *stagedModel.StagedBooking) (*bookingModel.Booking, error) {
	f.created++
	fare := rec.Fare
	b := &bookingModel.Booking{
		BookingID:     fmt.Sprintf("PD-15-06-2025-%03d", f.created),
		UserID:        rec.UserID,
		Status:        bookingModel.StatusPendingPayment,
		PaymentStatus: bookingModel.PaymentPending,
		PaymentMethod: bookingModel.MethodOnline,
		Fare:          &fare,
	}
	f.add(b)
	return b, nil
}

func (f *fakeBookings) ApplyPaymentOutcome(_ context.Context, b *bookingModel.Booking, outcome bookingModel.PaymentOutcome, _ string) error {
	if f.applyErr != nil {
		return f.applyErr
	}
	f.outcomes = append(f.outcomes, outcome)
	b.Status, b.PaymentStatus = bookingModel.ApplyPaymentOutcome(b.Status, b.PaymentStatus, outcome)
	return nil
}

type fakeStaged struct {
	records map[string]*stagedModel.StagedBooking
	claims  map[string]bool
	deleted []string
}

func newFakeStaged() *fakeStaged {
	return &fakeStaged{
		records: make(map[string]*stagedModel.StagedBooking),
		claims:  make(map[string]bool),
	}
}

func (f *fakeStaged) Stage(_ context.Context, rec *stagedModel.StagedBooking) (string, error) {
	f.records[rec.MerchantRef] = rec
	return rec.MerchantRef, nil
}

func (f *fakeStaged) Get(_ context.Context, merchantRef string) (*stagedModel.StagedBooking, error) {
	rec, ok := f.records[merchantRef]
	if !ok {
		return nil, fmt.Errorf("%w: staged %s", apperrors.ErrNotFound, merchantRef)
	}
	return rec, nil
}

func (f *fakeStaged) AttachBookingID(_ context.Context, merchantRef, bookingID string) error {
	rec, ok := f.records[merchantRef]
	if !ok {
		return fmt.Errorf("%w: staged %s", apperrors.ErrNotFound, merchantRef)
	}
	rec.BookingID = &bookingID
	return nil
}

func (f *fakeStaged) Delete(_ context.Context, merchantRef string) error {
	delete(f.records, merchantRef)
	f.deleted = append(f.deleted, merchantRef)
	return nil
}

func (f *fakeStaged) DeleteAfter(merchantRef string, _ time.Duration) {
	f.deleted = append(f.deleted, merchantRef)
}

func (f *fakeStaged) Claim(_ context.Context, merchantRef string) (bool, error) {
	if f.claims[merchantRef] {
		return false, nil
	}
	f.claims[merchantRef] = true
	return true, nil
}

func (f *fakeStaged) ReleaseClaim(_ context.Context, merchantRef string) error {
	delete(f.claims, merchantRef)
	return nil
}

type fakeGateway struct {
	pages    []paymentgateway.CreatePageRequest
	status   map[string]string
	checkErr error
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{status: make(map[string]string)}
}

func (f *fakeGateway) CreatePaymentPage(_ context.Context, req paymentgateway.CreatePageRequest) (*paymentgateway.CreatePageResponse, error) {
	f.pages = append(f.pages, req)
	return &paymentgateway.CreatePageResponse{
		Success:   true,
		PayURL:    "https://pay.example/" + req.MerchantRef,
		ExpiresAt: time.Now().Add(time.Hour),
	}, nil
}

func (f *fakeGateway) CheckStatus(_ context.Context, merchantRef string) (*paymentgateway.StatusResponse, error) {
	if f.checkErr != nil {
		return nil, f.checkErr
	}
	txn, ok := f.status[merchantRef]
	if !ok {
		txn = paymentgateway.TxnPending
	}
	return &paymentgateway.StatusResponse{
		Success:     true,
		MerchantRef: merchantRef,
		TxnStatus:   txn,
	}, nil
}

type fakeQuoter struct{}

func (fakeQuoter) Quote(_ context.Context, req fareTypes.QuoteRequest) (*fareTypes.QuoteResponse, error) {
	return &fareTypes.QuoteResponse{
		DistanceKm: req.DistanceKm,
		WeightKg:   req.WeightKg,
		BaseFare:   70,
		GST:        13,
		Total:      83,
		FinalFare:  83,
	}, nil
}

func newTestService() (*Service, *fakeBookings, *fakeStaged, *fakeGateway) {
	bookings := newFakeBookings()
	stagedStore := newFakeStaged()
	gateway := newFakeGateway()
	svc := NewService(bookings, stagedStore, gateway, fakeQuoter{}, "https://parcel.example")
	return svc, bookings, stagedStore, gateway
}

func onlineBooking() *bookingTypes.BookingCreateRequest {
	return &bookingTypes.BookingCreateRequest{
		PaymentMethod: "online",
		DistanceKm:    45,
		Pickup: bookingTypes.AddressPayload{
			Name: "Asha", Phone: "+919812345670", Address: "12 MG Road", City: "Pune",
		},
		Drop: bookingTypes.AddressPayload{
			Name: "Ravi", Phone: "+919812345671", Address: "4 Link Road", City: "Mumbai",
		},
		Parcel: bookingTypes.ParcelPayload{Type: "documents", WeightKg: 4},
	}
}

func stageAttempt(t *testing.T, svc *Service) string {
	t.Helper()
	page, err := svc.Initiate(context.Background(), 1, "+919812345670", paymentTypes.CreatePaymentRequest{Booking: onlineBooking()})
	require.NoError(t, err)
	return page.MerchantRef
}

func TestInitiateStagesBookingAndRequestsPage(t *testing.T) {
	svc, bookings, stagedStore, gateway := newTestService()

	page, err := svc.Initiate(context.Background(), 1, "+919812345670", paymentTypes.CreatePaymentRequest{Booking: onlineBooking()})
	require.NoError(t, err)

	assert.NotEmpty(t, page.PayURL)
	parsed, err := ParseRef(page.MerchantRef)
	require.NoError(t, err)
	assert.Equal(t, RefStaged, parsed.Kind)

	rec, err := stagedStore.Get(context.Background(), page.MerchantRef)
	require.NoError(t, err)
	assert.Equal(t, int64(83), rec.Fare)
	assert.Equal(t, 0, bookings.created)

	require.Len(t, gateway.pages, 1)
	assert.Equal(t, int64(83), gateway.pages[0].Amount)
	assert.Contains(t, gateway.pages[0].SuccessURL, page.MerchantRef)
}

func TestInitiateForExistingBooking(t *testing.T) {
	svc, bookings, _, gateway := newTestService()
	fare := int64(120)
	b := &bookingModel.Booking{
		BookingID:     "PD-15-06-2025-001",
		UserID:        1,
		Status:        bookingModel.StatusCreated,
		PaymentStatus: bookingModel.PaymentPending,
		PaymentMethod: bookingModel.MethodCOD,
		Fare:          &fare,
	}
	bookings.add(b)

	page, err := svc.Initiate(context.Background(), 1, "+919812345670", paymentTypes.CreatePaymentRequest{BookingID: b.BookingID})
	require.NoError(t, err)

	parsed, err := ParseRef(page.MerchantRef)
	require.NoError(t, err)
	assert.Equal(t, RefBooking, parsed.Kind)
	assert.Equal(t, b.ID, parsed.BookingPK)
	require.Len(t, gateway.pages, 1)
	assert.Equal(t, int64(120), gateway.pages[0].Amount)
}

func TestInitiateRejectsPaidBooking(t *testing.T) {
	svc, bookings, _, _ := newTestService()
	fare := int64(120)
	bookings.add(&bookingModel.Booking{
		BookingID:     "PD-15-06-2025-001",
		UserID:        1,
		Status:        bookingModel.StatusCreated,
		PaymentStatus: bookingModel.PaymentPaid,
		Fare:          &fare,
	})

	_, err := svc.Initiate(context.Background(), 1, "+919812345670", paymentTypes.CreatePaymentRequest{BookingID: "PD-15-06-2025-001"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidArgument)
}

func TestInitiateRejectsOtherUsersBooking(t *testing.T) {
	svc, bookings, _, _ := newTestService()
	fare := int64(120)
	bookings.add(&bookingModel.Booking{
		BookingID:     "PD-15-06-2025-001",
		UserID:        2,
		Status:        bookingModel.StatusCreated,
		PaymentStatus: bookingModel.PaymentPending,
		Fare:          &fare,
	})

	_, err := svc.Initiate(context.Background(), 1, "+919812345670", paymentTypes.CreatePaymentRequest{BookingID: "PD-15-06-2025-001"})
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
}

func TestReconcileStagedSuccessCreatesBooking(t *testing.T) {
	svc, bookings, stagedStore, _ := newTestService()
	ref := stageAttempt(t, svc)

	bookingID, err := svc.Reconcile(context.Background(), ref, bookingModel.OutcomeSuccess)
	require.NoError(t, err)
	require.NotEmpty(t, bookingID)

	assert.Equal(t, 1, bookings.created)
	b := bookings.byID[bookingID]
	require.NotNil(t, b)
	assert.Equal(t, bookingModel.StatusCreated, b.Status)
	assert.Equal(t, bookingModel.PaymentPaid, b.PaymentStatus)
	assert.Contains(t, stagedStore.deleted, ref)
}

func TestReconcileStagedSuccessTwiceCreatesOneBooking(t *testing.T) {
	svc, bookings, _, _ := newTestService()
	ref := stageAttempt(t, svc)

	first, err := svc.Reconcile(context.Background(), ref, bookingModel.OutcomeSuccess)
	require.NoError(t, err)

	second, err := svc.Reconcile(context.Background(), ref, bookingModel.OutcomeSuccess)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, bookings.created)
	assert.Equal(t, bookingModel.PaymentPaid, bookings.byID[first].PaymentStatus)
}

func TestReconcileStagedRaceLoserCreatesNothing(t *testing.T) {
	svc, bookings, stagedStore, _ := newTestService()
	ref := stageAttempt(t, svc)

	// Another reconciliation holds the claim but has not attached an id yet.
	claimed, err := stagedStore.Claim(context.Background(), ref)
	require.NoError(t, err)
	require.True(t, claimed)

	bookingID, err := svc.Reconcile(context.Background(), ref, bookingModel.OutcomeSuccess)
	require.NoError(t, err)
	assert.Empty(t, bookingID)
	assert.Equal(t, 0, bookings.created)
}

func TestReconcileStagedFailureDeletesWithoutBooking(t *testing.T) {
	svc, bookings, stagedStore, _ := newTestService()
	ref := stageAttempt(t, svc)

	bookingID, err := svc.Reconcile(context.Background(), ref, bookingModel.OutcomeFailed)
	require.NoError(t, err)
	assert.Empty(t, bookingID)
	assert.Equal(t, 0, bookings.created)
	assert.Contains(t, stagedStore.deleted, ref)

	_, err = stagedStore.Get(context.Background(), ref)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestReconcileStagedSuccessWithoutRecordIsAnomaly(t *testing.T) {
	svc, bookings, _, _ := newTestService()
	ref := NewStagedRef()

	_, err := svc.Reconcile(context.Background(), ref.Raw, bookingModel.OutcomeSuccess)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.Equal(t, 0, bookings.created)
}

func TestReconcileStagedRepairsFailedPaymentFlip(t *testing.T) {
	svc, bookings, _, _ := newTestService()
	ref := stageAttempt(t, svc)

	bookings.applyErr = fmt.Errorf("%w: db write failed", apperrors.ErrInternal)

	bookingID, err := svc.Reconcile(context.Background(), ref, bookingModel.OutcomeSuccess)
	require.Error(t, err)
	assert.NotEmpty(t, bookingID)

	// The attach landed, so a retried callback repairs the payment flip
	// instead of creating a second booking.
	bookings.applyErr = nil
	repaired, err := svc.Reconcile(context.Background(), ref, bookingModel.OutcomeSuccess)
	require.NoError(t, err)
	assert.Equal(t, bookingID, repaired)
	assert.Equal(t, 1, bookings.created)
	assert.Equal(t, bookingModel.PaymentPaid, bookings.byID[repaired].PaymentStatus)
}

func TestReconcileBookingRefOutcomes(t *testing.T) {
	svc, bookings, _, _ := newTestService()
	fare := int64(120)
	b := &bookingModel.Booking{
		BookingID:     "PD-15-06-2025-001",
		UserID:        1,
		Status:        bookingModel.StatusCreated,
		PaymentStatus: bookingModel.PaymentPending,
		Fare:          &fare,
	}
	bookings.add(b)
	ref := NewBookingRef(b.ID)

	bookingID, err := svc.Reconcile(context.Background(), ref.Raw, bookingModel.OutcomeFailed)
	require.NoError(t, err)
	assert.Equal(t, b.BookingID, bookingID)
	assert.Equal(t, bookingModel.PaymentFailed, b.PaymentStatus)

	// A later successful retry recovers from failed.
	_, err = svc.Reconcile(context.Background(), ref.Raw, bookingModel.OutcomeSuccess)
	require.NoError(t, err)
	assert.Equal(t, bookingModel.PaymentPaid, b.PaymentStatus)
}

func TestCheckAndReconcilePendingIsNotAnError(t *testing.T) {
	svc, bookings, _, gateway := newTestService()
	ref := stageAttempt(t, svc)
	gateway.status[ref] = paymentgateway.TxnPending

	status, err := svc.CheckAndReconcile(context.Background(), ref)
	require.NoError(t, err)
	assert.Equal(t, string(bookingModel.OutcomePending), status.Outcome)
	assert.Empty(t, status.BookingID)
	assert.Equal(t, 0, bookings.created)
}

func TestCheckAndReconcileVerifiesWithGateway(t *testing.T) {
	svc, bookings, _, gateway := newTestService()
	ref := stageAttempt(t, svc)
	gateway.status[ref] = paymentgateway.TxnSuccess

	status, err := svc.CheckAndReconcile(context.Background(), ref)
	require.NoError(t, err)
	assert.Equal(t, string(bookingModel.OutcomeSuccess), status.Outcome)
	assert.NotEmpty(t, status.BookingID)
	assert.Equal(t, 1, bookings.created)
}

func TestCheckAndReconcileRejectsUnknownRef(t *testing.T) {
	svc, _, _, _ := newTestService()

	_, err := svc.CheckAndReconcile(context.Background(), "ORDER-999")
	assert.ErrorIs(t, err, apperrors.ErrInvalidArgument)
}

func TestHandleWebhookFailedOutcome(t *testing.T) {
	svc, bookings, stagedStore, _ := newTestService()
	ref := stageAttempt(t, svc)

	err := svc.HandleWebhook(context.Background(), &paymentgateway.WebhookPayload{
		MerchantRef: ref,
		TxnStatus:   paymentgateway.TxnFailed,
	})
	require.NoError(t, err)
	assert.Equal(t, 0, bookings.created)
	assert.Contains(t, stagedStore.deleted, ref)
}
