package routes

import (
	"os"

	"parcel-delivery/constants"
	bookingController "parcel-delivery/controllers/booking"
	fareController "parcel-delivery/controllers/fare"
	paymentController "parcel-delivery/controllers/payment"
	"parcel-delivery/httpServices/paymentgateway"
	"parcel-delivery/httpServices/push"
	"parcel-delivery/logger"
	"parcel-delivery/middleware"
	bookingService "parcel-delivery/services/booking"
	fareService "parcel-delivery/services/fare"
	"parcel-delivery/services/notification"
	"parcel-delivery/services/reconcile"
	stagedService "parcel-delivery/services/staged"

	"github.com/go-redis/redis/v8"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func SetupRoutes(app *fiber.App, db *gorm.DB, rdb *redis.Client) {
	asyncLogger := logger.NewAsyncLogger(db)
	go asyncLogger.ProcessLog()
	app.Hooks().OnShutdown(func() error {
		asyncLogger.Close()
		return nil
	})

	pushClient := push.NewClient(os.Getenv("PUSH_SERVER_URL"))
	notifier := notification.NewPushDispatcher(db, pushClient)

	bookings := bookingService.NewService(db, notifier)
	fareEngine := fareService.NewEngine(
		fareService.LoadRuleSet(db),
		fareService.NewRouteRepo(db),
		fareService.NewCouponRepo(db),
	)
	stagedStore := stagedService.NewStore(rdb)
	gateway := paymentgateway.NewClient(os.Getenv("PAYMENT_GATEWAY_URL"))
	payments := reconcile.NewService(bookings, stagedStore, gateway, fareEngine, os.Getenv("APP_BASE_URL"))

	bookingCtl := bookingController.NewBookingController(db, asyncLogger, bookings, fareEngine, payments)
	fareCtl := fareController.NewFareController(db, asyncLogger, fareEngine)
	paymentCtl := paymentController.NewPaymentController(db, asyncLogger, payments)

	// Index route
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"service": "parcel-delivery", "status": "ok"})
	})

	/*=============================================================================
	| Public Routes
	===============================================================================*/
	api := app.Group("/api")
	api.Post("/map/fare", fareCtl.Quote)
	api.Get("/bookings/track/:trackingNumber", bookingCtl.Track)

	api.Post("/payments/webhook", paymentCtl.Webhook)
	api.Get("/payments/success", paymentCtl.SuccessRedirect)
	api.Get("/payments/failed", paymentCtl.FailedRedirect)

	/*=============================================================================
	| Booking Routes
	===============================================================================*/
	bookingGroup := api.Group("/bookings")

	bookingGroup.Post("/", middleware.RequireAuth(), bookingCtl.Store)
	bookingGroup.Get("/", middleware.RequireAuth(), bookingCtl.Index)

	bookingGroup.Patch("/:id/status", middleware.RequireRoles(
		constants.DeliveryRoles...,
	), bookingCtl.UpdateStatus)

	bookingGroup.Patch("/:id/payment-status", middleware.RequireAdmin(), bookingCtl.UpdatePaymentStatus)
	bookingGroup.Patch("/:id/fare", middleware.RequireAdmin(), bookingCtl.SetFare)

	bookingGroup.Post("/:id/pod", middleware.RequireRoles(
		constants.DeliveryRoles...,
	), bookingCtl.RecordPOD)

	/*=============================================================================
	| Payment Routes
	===============================================================================*/
	paymentGroup := api.Group("/payments")

	paymentGroup.Post("/create", middleware.RequireAuth(), paymentCtl.Create)
	paymentGroup.Post("/status", middleware.RequireAuth(), paymentCtl.Status)
}
