package booking

import (
	"errors"
	"strconv"

	"parcel-delivery/apperrors"
	"parcel-delivery/logger"
	bookingModel "parcel-delivery/models/booking"
	userModel "parcel-delivery/models/user"
	bookingService "parcel-delivery/services/booking"
	fareService "parcel-delivery/services/fare"
	"parcel-delivery/services/reconcile"
	"parcel-delivery/types"
	bookingTypes "parcel-delivery/types/booking"
	fareTypes "parcel-delivery/types/fare"
	paymentTypes "parcel-delivery/types/payment"
	"parcel-delivery/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"gorm.io/gorm"
)

// BookingController handles booking-related HTTP requests
type BookingController struct {
	DB       *gorm.DB
	Logger   *logger.AsyncLogger
	Service  *bookingService.Service
	Fare     *fareService.Engine
	Payments *reconcile.Service
}

// NewBookingController creates a new booking controller
func NewBookingController(db *gorm.DB, asyncLogger *logger.AsyncLogger, svc *bookingService.Service, fare *fareService.Engine, payments *reconcile.Service) *BookingController {
	return &BookingController{
		DB:       db,
		Logger:   asyncLogger,
		Service:  svc,
		Fare:     fare,
		Payments: payments,
	}
}

func (bc *BookingController) logAPIRequest(c *fiber.Ctx) {
	logEntry := utils.CreateSanitizedLogEntry(c)
	bc.Logger.Log(logEntry)
}

func (bc *BookingController) sendResponseWithLog(c *fiber.Ctx, status int, response types.ApiResponse) error {
	result := c.Status(status).JSON(response)
	bc.logAPIRequest(c)
	return result
}

// currentUser resolves the authenticated user from the token claims.
func (bc *BookingController) currentUser(c *fiber.Ctx) (*userModel.User, error) {
	claims, ok := c.Locals("user").(jwt.MapClaims)
	if !ok {
		return nil, errors.New("invalid user claims")
	}

	userUUID, ok := claims["uuid"].(string)
	if !ok || userUUID == "" {
		return nil, errors.New("user uuid not found in token")
	}

	return utils.GetUserByUUID(userUUID)
}

// Store creates a new booking. COD bookings are created immediately; online
// bookings are staged and the hosted payment page is returned instead.
func (bc *BookingController) Store(c *fiber.Ctx) error {
	var req bookingTypes.BookingCreateRequest
	if err := c.BodyParser(&req); err != nil {
		logger.Error("Failed to parse booking body", err)
		return bc.sendResponseWithLog(c, fiber.StatusBadRequest, types.Fail("Invalid request body"))
	}

	if err := req.Validate(); err != nil {
		return bc.sendResponseWithLog(c, fiber.StatusBadRequest, types.Fail(err.Error()))
	}

	userInfo, err := bc.currentUser(c)
	if err != nil {
		logger.Error("Error resolving user from token", err)
		return bc.sendResponseWithLog(c, fiber.StatusUnauthorized, types.Fail("User not found"))
	}

	if req.PaymentMethod == string(bookingModel.MethodOnline) {
		page, err := bc.Payments.Initiate(c.Context(), userInfo.ID, userInfo.Phone, paymentTypes.CreatePaymentRequest{Booking: &req})
		if err != nil {
			logger.Error("Failed to initiate online booking payment", err)
			return bc.sendResponseWithLog(c, apperrors.HTTPStatus(err), types.Fail("Could not initiate payment"))
		}
		return bc.sendResponseWithLog(c, fiber.StatusAccepted, types.Ok(page))
	}

	quote, err := bc.Fare.Quote(c.Context(), fareTypes.QuoteRequest{
		DistanceKm: req.DistanceKm,
		WeightKg:   req.Parcel.WeightKg,
		PickupCity: req.Pickup.City,
		DropCity:   req.Drop.City,
		CouponCode: req.CouponCode,
	})
	if err != nil {
		logger.Error("Fare computation failed for booking", err)
		return bc.sendResponseWithLog(c, apperrors.HTTPStatus(err), types.Fail("Could not compute fare"))
	}

	created, err := bc.Service.CreateCOD(c.Context(), userInfo.ID, req, quote.FinalFare)
	if err != nil {
		logger.Error("Failed to create booking", err)
		return bc.sendResponseWithLog(c, apperrors.HTTPStatus(err), types.Fail("Could not create booking"))
	}

	return bc.sendResponseWithLog(c, fiber.StatusCreated, types.Ok(created))
}

// Index lists the authenticated user's bookings, newest first.
func (bc *BookingController) Index(c *fiber.Ctx) error {
	userInfo, err := bc.currentUser(c)
	if err != nil {
		logger.Error("Error resolving user from token", err)
		return bc.sendResponseWithLog(c, fiber.StatusUnauthorized, types.Fail("User not found"))
	}

	bookings, err := bc.Service.ListByUser(c.Context(), userInfo.ID)
	if err != nil {
		logger.Error("Failed to list bookings", err)
		return bc.sendResponseWithLog(c, apperrors.HTTPStatus(err), types.Fail("Could not list bookings"))
	}

	return bc.sendResponseWithLog(c, fiber.StatusOK, types.Ok(bookings))
}

// Track looks a booking up by its tracking number. Public.
func (bc *BookingController) Track(c *fiber.Ctx) error {
	trackingNumber := c.Params("trackingNumber")
	if trackingNumber == "" {
		return bc.sendResponseWithLog(c, fiber.StatusBadRequest, types.Fail("Tracking number is required"))
	}

	b, err := bc.Service.GetByBookingID(c.Context(), trackingNumber)
	if err != nil {
		return bc.sendResponseWithLog(c, apperrors.HTTPStatus(err), types.Fail("Booking not found"))
	}

	return bc.sendResponseWithLog(c, fiber.StatusOK, types.Ok(fiber.Map{
		"booking_id":     b.BookingID,
		"status":         b.Status,
		"payment_status": b.PaymentStatus,
		"created_at":     b.CreatedAt,
		"delivered_at":   b.DeliveredAt,
	}))
}

// UpdateStatus moves a booking to the next delivery status.
func (bc *BookingController) UpdateStatus(c *fiber.Ctx) error {
	id, err := bc.paramID(c)
	if err != nil {
		return bc.sendResponseWithLog(c, fiber.StatusBadRequest, types.Fail("Invalid booking id"))
	}

	var req bookingTypes.StatusUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		logger.Error("Failed to parse status update body", err)
		return bc.sendResponseWithLog(c, fiber.StatusBadRequest, types.Fail("Invalid request body"))
	}
	if err := req.Validate(); err != nil {
		return bc.sendResponseWithLog(c, fiber.StatusBadRequest, types.Fail(err.Error()))
	}

	next := bookingModel.BookingStatus(req.Status)
	if !next.IsValid() {
		return bc.sendResponseWithLog(c, fiber.StatusBadRequest, types.Fail("Unknown status "+req.Status))
	}

	updated, err := bc.Service.UpdateStatus(c.Context(), id, next, req.Reason, bc.actor(c))
	if err != nil {
		logger.Error("Failed to update booking status", err)
		return bc.sendResponseWithLog(c, apperrors.HTTPStatus(err), types.Fail(err.Error()))
	}

	return bc.sendResponseWithLog(c, fiber.StatusOK, types.Ok(updated))
}

// UpdatePaymentStatus is the manual override for payment state. Admin only.
func (bc *BookingController) UpdatePaymentStatus(c *fiber.Ctx) error {
	id, err := bc.paramID(c)
	if err != nil {
		return bc.sendResponseWithLog(c, fiber.StatusBadRequest, types.Fail("Invalid booking id"))
	}

	var req bookingTypes.PaymentStatusUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		logger.Error("Failed to parse payment status body", err)
		return bc.sendResponseWithLog(c, fiber.StatusBadRequest, types.Fail("Invalid request body"))
	}
	if err := req.Validate(); err != nil {
		return bc.sendResponseWithLog(c, fiber.StatusBadRequest, types.Fail(err.Error()))
	}

	next := bookingModel.PaymentStatus(req.PaymentStatus)
	if !next.IsValid() {
		return bc.sendResponseWithLog(c, fiber.StatusBadRequest, types.Fail("Unknown payment status "+req.PaymentStatus))
	}

	updated, err := bc.Service.UpdatePaymentStatus(c.Context(), id, next, bc.actor(c))
	if err != nil {
		logger.Error("Failed to update payment status", err)
		return bc.sendResponseWithLog(c, apperrors.HTTPStatus(err), types.Fail(err.Error()))
	}

	return bc.sendResponseWithLog(c, fiber.StatusOK, types.Ok(updated))
}

// SetFare overrides the stored fare of a booking. Admin only.
func (bc *BookingController) SetFare(c *fiber.Ctx) error {
	id, err := bc.paramID(c)
	if err != nil {
		return bc.sendResponseWithLog(c, fiber.StatusBadRequest, types.Fail("Invalid booking id"))
	}

	var req struct {
		Fare int64 `json:"fare"`
	}
	if err := c.BodyParser(&req); err != nil {
		logger.Error("Failed to parse fare body", err)
		return bc.sendResponseWithLog(c, fiber.StatusBadRequest, types.Fail("Invalid request body"))
	}

	if err := bc.Service.SetFare(c.Context(), id, req.Fare); err != nil {
		logger.Error("Failed to set fare", err)
		return bc.sendResponseWithLog(c, apperrors.HTTPStatus(err), types.Fail(err.Error()))
	}

	return bc.sendResponseWithLog(c, fiber.StatusOK, types.Ok(fiber.Map{"id": id, "fare": req.Fare}))
}

// RecordPOD stores the proof-of-delivery signature and marks the booking
// delivered.
func (bc *BookingController) RecordPOD(c *fiber.Ctx) error {
	id, err := bc.paramID(c)
	if err != nil {
		return bc.sendResponseWithLog(c, fiber.StatusBadRequest, types.Fail("Invalid booking id"))
	}

	var req bookingTypes.PODRequest
	if err := c.BodyParser(&req); err != nil {
		logger.Error("Failed to parse POD body", err)
		return bc.sendResponseWithLog(c, fiber.StatusBadRequest, types.Fail("Invalid request body"))
	}
	if err := req.Validate(); err != nil {
		return bc.sendResponseWithLog(c, fiber.StatusBadRequest, types.Fail(err.Error()))
	}

	updated, err := bc.Service.RecordPOD(c.Context(), id, req.Signature, req.SignedBy, bc.actor(c))
	if err != nil {
		logger.Error("Failed to record proof of delivery", err)
		return bc.sendResponseWithLog(c, apperrors.HTTPStatus(err), types.Fail(err.Error()))
	}

	return bc.sendResponseWithLog(c, fiber.StatusOK, types.Ok(updated))
}

func (bc *BookingController) paramID(c *fiber.Ctx) (uint, error) {
	raw := c.Params("id")
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, errors.New("invalid booking id " + raw)
	}
	return uint(id), nil
}

func (bc *BookingController) actor(c *fiber.Ctx) string {
	claims, ok := c.Locals("user").(jwt.MapClaims)
	if !ok {
		return "system"
	}
	if uuid, ok := claims["uuid"].(string); ok && uuid != "" {
		return uuid
	}
	return "system"
}
