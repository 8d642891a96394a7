package payment

import (
	"errors"

	"parcel-delivery/apperrors"
	"parcel-delivery/httpServices/paymentgateway"
	"parcel-delivery/logger"
	userModel "parcel-delivery/models/user"
	"parcel-delivery/services/reconcile"
	"parcel-delivery/types"
	paymentTypes "parcel-delivery/types/payment"
	"parcel-delivery/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"gorm.io/gorm"
)

// PaymentController handles payment initiation, callbacks and status checks
type PaymentController struct {
	DB      *gorm.DB
	Logger  *logger.AsyncLogger
	Service *reconcile.Service
}

// NewPaymentController creates a new payment controller
func NewPaymentController(db *gorm.DB, asyncLogger *logger.AsyncLogger, svc *reconcile.Service) *PaymentController {
	return &PaymentController{
		DB:      db,
		Logger:  asyncLogger,
		Service: svc,
	}
}

func (pc *PaymentController) logAPIRequest(c *fiber.Ctx) {
	logEntry := utils.CreateSanitizedLogEntry(c)
	pc.Logger.Log(logEntry)
}

func (pc *PaymentController) sendResponseWithLog(c *fiber.Ctx, status int, response types.ApiResponse) error {
	result := c.Status(status).JSON(response)
	pc.logAPIRequest(c)
	return result
}

func (pc *PaymentController) currentUser(c *fiber.Ctx) (*userModel.User, error) {
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

// Create requests a hosted payment page, either for an existing unpaid
// booking or for full booking data that is staged until payment confirms.
func (pc *PaymentController) Create(c *fiber.Ctx) error {
	var req paymentTypes.CreatePaymentRequest
	if err := c.BodyParser(&req); err != nil {
		logger.Error("Failed to parse payment create body", err)
		return pc.sendResponseWithLog(c, fiber.StatusBadRequest, types.Fail("Invalid request body"))
	}

	if err := req.Validate(); err != nil {
		return pc.sendResponseWithLog(c, fiber.StatusBadRequest, types.Fail(err.Error()))
	}

	userInfo, err := pc.currentUser(c)
	if err != nil {
		logger.Error("Error resolving user from token", err)
		return pc.sendResponseWithLog(c, fiber.StatusUnauthorized, types.Fail("User not found"))
	}

	page, err := pc.Service.Initiate(c.Context(), userInfo.ID, userInfo.Phone, req)
	if err != nil {
		logger.Error("Failed to initiate payment", err)
		return pc.sendResponseWithLog(c, apperrors.HTTPStatus(err), types.Fail(err.Error()))
	}

	return pc.sendResponseWithLog(c, fiber.StatusOK, types.Ok(page))
}

// Webhook receives the gateway's server-to-server transaction push. The
// response is always 200 so the gateway stops retrying; failures are
// reconciled later through the status check path.
func (pc *PaymentController) Webhook(c *fiber.Ctx) error {
	payload, err := paymentgateway.ValidateWebhookPayload(c.Body(), c.Get("X-VERIFY"))
	if err != nil {
		logger.Error("Rejected webhook with bad signature", err)
		return pc.sendResponseWithLog(c, fiber.StatusOK, types.Fail("Invalid payload"))
	}

	if err := pc.Service.HandleWebhook(c.Context(), payload); err != nil {
		logger.Error("Webhook reconciliation failed for "+payload.MerchantRef, err)
		return pc.sendResponseWithLog(c, fiber.StatusOK, types.Fail("Reconciliation failed"))
	}

	return pc.sendResponseWithLog(c, fiber.StatusOK, types.Ok(fiber.Map{"acknowledged": true}))
}

// Status re-verifies a payment with the gateway and reconciles the verified
// outcome. Used by the client to poll after returning from the pay page.
func (pc *PaymentController) Status(c *fiber.Ctx) error {
	var req paymentTypes.StatusRequest
	if err := c.BodyParser(&req); err != nil {
		logger.Error("Failed to parse payment status body", err)
		return pc.sendResponseWithLog(c, fiber.StatusBadRequest, types.Fail("Invalid request body"))
	}

	if err := req.Validate(); err != nil {
		return pc.sendResponseWithLog(c, fiber.StatusBadRequest, types.Fail(err.Error()))
	}

	status, err := pc.Service.CheckAndReconcile(c.Context(), req.MerchantRef)
	if err != nil {
		logger.Error("Payment status check failed for "+req.MerchantRef, err)
		return pc.sendResponseWithLog(c, apperrors.HTTPStatus(err), types.Fail(err.Error()))
	}

	return pc.sendResponseWithLog(c, fiber.StatusOK, types.Ok(status))
}

// SuccessRedirect lands the payer's browser after the gateway reports
// success. The outcome is still verified directly with the gateway.
func (pc *PaymentController) SuccessRedirect(c *fiber.Ctx) error {
	return pc.redirect(c)
}

// FailedRedirect lands the payer's browser after a failed or abandoned
// payment attempt.
func (pc *PaymentController) FailedRedirect(c *fiber.Ctx) error {
	return pc.redirect(c)
}

func (pc *PaymentController) redirect(c *fiber.Ctx) error {
	merchantRef := c.Query("merchant_ref")
	if merchantRef == "" {
		return pc.sendResponseWithLog(c, fiber.StatusBadRequest, types.Fail("merchant_ref is required"))
	}

	status, err := pc.Service.CheckAndReconcile(c.Context(), merchantRef)
	if err != nil {
		logger.Error("Redirect reconciliation failed for "+merchantRef, err)
		return pc.sendResponseWithLog(c, apperrors.HTTPStatus(err), types.Fail(err.Error()))
	}

	return pc.sendResponseWithLog(c, fiber.StatusOK, types.Ok(status))
}
