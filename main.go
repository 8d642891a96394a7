package main

import (
	"os"
	"time"

	"parcel-delivery/database"
	"parcel-delivery/database/seeders"
	"parcel-delivery/logger"
	"parcel-delivery/routes"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/joho/godotenv"
)

func main() {
	app := fiber.New(fiber.Config{
		ReadBufferSize:  32768, // 32KB read buffer
		WriteBufferSize: 32768, // 32KB write buffer
		ReadTimeout:     time.Second * 30,
		WriteTimeout:    time.Second * 30,
		BodyLimit:       5 * 1024 * 1024, // 5MB body limit
	})

	if err := godotenv.Load(); err != nil {
		logger.Warning("No .env file found, relying on environment")
	}

	db, err := database.InitDB()
	if err != nil {
		logger.Error("Failed to connect to the database", err)
		return
	}

	rdb, err := database.InitRedis()
	if err != nil {
		logger.Error("Failed to connect to redis", err)
		return
	}

	if err := seeders.SeedPricing(db); err != nil {
		logger.Error("Failed to seed pricing data", err)
		return
	}

	app.Use(cors.New(cors.Config{
		AllowOrigins:     os.Getenv("FRONTEND_URL"),
		AllowMethods:     "GET,POST,PUT,PATCH,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
	}))

	routes.SetupRoutes(app, db, rdb)

	appHost := os.Getenv("APP_HOST")
	appPort := os.Getenv("APP_PORT")
	logger.Success("Server is running on ip: " + appHost + " port: " + appPort)
	if err := app.Listen(appHost + ":" + appPort); err != nil {
		logger.Error("Server stopped", err)
	}
}
