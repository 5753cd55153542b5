package main

import (
	"log"
	"strings"

	"edusynapse/config"
	"edusynapse/database"
	assessmentRoutes "edusynapse/routers/assessmentRoutes"
	authRoutes "edusynapse/routers/authRoutes"
	dashboardRoutes "edusynapse/routers/dashboardRoutes"
	sessionRoutes "edusynapse/routers/sessionRoutes"
	"edusynapse/services"
	"edusynapse/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
)

func main() {
	config.LoadConfig()
	database.ConnectDb()

	app := fiber.New(fiber.Config{
		AppName: config.AppConfig.AppName,
	})

	app.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(config.AppConfig.CORSOriginList(), ","),
		AllowMethods: "GET,POST,PUT,PATCH,DELETE",
		AllowHeaders: "Content-Type,Authorization",
	}))

	// Enable the built-in logger middleware to log all requests
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${ip} ${method} ${path} ${status} ${latency}\n",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": true, "message": "ok"})
	})

	authRoutes.SetupAuthRoutes(app)
	sessionRoutes.SetupSessionRoutes(app)
	assessmentRoutes.SetupAssessmentRoutes(app)
	dashboardRoutes.SetupDashboardRoutes(app)

	if count, err := services.LoadSeedContent(); err != nil {
		log.Printf("Failed to load seed content: %v", err)
	} else if count > 0 {
		log.Printf("Loaded %d knowledge entries", count)
	}

	utils.InitializeSessionSchedulers()

	log.Printf("Server is running on port %s", config.AppConfig.Port)
	log.Fatal(app.Listen(":" + config.AppConfig.Port))
}
