package fare

import (
	"parcel-delivery/logger"
	fareService "parcel-delivery/services/fare"
	"parcel-delivery/types"
	fareTypes "parcel-delivery/types/fare"
	"parcel-delivery/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// FareController handles fare quotation HTTP requests
type FareController struct {
	DB     *gorm.DB
	Logger *logger.AsyncLogger
	Engine *fareService.Engine
}

// NewFareController creates a new fare controller
func NewFareController(db *gorm.DB, asyncLogger *logger.AsyncLogger, engine *fareService.Engine) *FareController {
	return &FareController{
		DB:     db,
		Logger: asyncLogger,
		Engine: engine,
	}
}

func (fc *FareController) logAPIRequest(c *fiber.Ctx) {
	logEntry := utils.CreateSanitizedLogEntry(c)
	fc.Logger.Log(logEntry)
}

func (fc *FareController) sendResponseWithLog(c *fiber.Ctx, status int, response types.ApiResponse) error {
	result := c.Status(status).JSON(response)
	fc.logAPIRequest(c)
	return result
}

// Quote computes the fare for a distance/weight or a city pair, optionally
// with a coupon applied. Quotes are not persisted.
func (fc *FareController) Quote(c *fiber.Ctx) error {
	var req fareTypes.QuoteRequest
	if err := c.BodyParser(&req); err != nil {
		logger.Error("Failed to parse fare quote body", err)
		return fc.sendResponseWithLog(c, fiber.StatusBadRequest, types.Fail("Invalid request body"))
	}

	if err := req.Validate(); err != nil {
		return fc.sendResponseWithLog(c, fiber.StatusBadRequest, types.Fail(err.Error()))
	}

	quote, err := fc.Engine.Quote(c.Context(), req)
	if err != nil {
		logger.Error("Fare quote failed", err)
		return fc.sendResponseWithLog(c, fiber.StatusInternalServerError, types.Fail("Could not compute fare"))
	}

	return fc.sendResponseWithLog(c, fiber.StatusOK, types.Ok(quote))
}
