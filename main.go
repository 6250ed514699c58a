package main

import (
	"log"
	"os"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/gofiber/fiber/v2"

	"commit/config"
	controller "commit/controllers"
	"commit/middleware"
	"commit/routes"
	"commit/worker"
)

func main() {
	// Initialize logger
	logger := log.New(os.Stdout, "COMMIT: ", log.Ldate|log.Ltime|log.Lshortfile)

	// Load configuration
	if err := config.LoadConfig(); err != nil {
		logger.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize error reporting when a DSN is configured
	if config.AppConfig.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:         config.AppConfig.SentryDSN,
			Environment: config.AppConfig.Environment,
		}); err != nil {
			logger.Printf("Sentry initialization failed: %v", err)
		}
		defer sentry.Flush(2 * time.Second)
	}

	// Initialize database connection
	if err := config.ConnectDB(); err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}

	// Create Fiber app
	app := fiber.New()

	// Add CORS middleware
	app.Use(middleware.CORS())

	// Staged-deletion manager; expired windows commit the hard delete
	undoWindow := time.Duration(config.AppConfig.UndoWindowMS) * time.Millisecond
	undoLogger := log.New(os.Stdout, "UNDO: ", log.LstdFlags)
	undoManager := worker.NewUndoManager(undoWindow, controller.HardDeleteAgreement(config.DB, undoLogger), undoLogger)
	defer undoManager.Stop()

	// Setup routes
	routes.SetupRoutes(app, config.DB, undoManager)

	// Health check endpoint
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "running",
			"version": "1.0.0",
		})
	})

	// Start server
	logger.Printf("🚀 Server starting on port %s", config.AppConfig.ServerPort)
	if err := app.Listen(":" + config.AppConfig.ServerPort); err != nil {
		logger.Fatalf("Failed to start server: %v", err)
	}
}
