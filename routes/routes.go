package routes

import (
	"log"
	"os"

	controller "commit/controllers"
	"commit/middleware"
	"commit/worker"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/websocket/v2"
	"gorm.io/gorm"
)

func SetupAPIRoutes(app *fiber.App, db *gorm.DB, undo *worker.UndoManager) {
	// Initialize controllers with their respective loggers
	memberController := controller.NewMemberController(db, log.New(os.Stdout, "MEMBER: ", log.LstdFlags))
	agreementController := controller.NewAgreementController(db, log.New(os.Stdout, "AGREEMENT: ", log.LstdFlags), undo)
	deliverableController := controller.NewDeliverableController(db, log.New(os.Stdout, "DELIVERABLE: ", log.LstdFlags))
	updateController := controller.NewUpdateController(db, log.New(os.Stdout, "UPDATE: ", log.LstdFlags))
	analyticsController := controller.NewAnalyticsController(db, log.New(os.Stdout, "ANALYTICS: ", log.LstdFlags))

	// API group with request logging and write rate limiting
	api := app.Group("/api/v1", logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}), middleware.MutationRateLimiter())

	// Team member routes
	member := api.Group("/members")
	member.Get("/", memberController.GetMembers)
	member.Post("/", memberController.CreateMember)

	// Agreement routes
	agreement := api.Group("/agreements")
	agreement.Get("/", agreementController.GetAgreements)
	agreement.Post("/", agreementController.CreateAgreement)
	agreement.Post("/:id/sign", agreementController.SignAgreement)
	agreement.Get("/:id/signatures", agreementController.GetSignatures)
	agreement.Get("/:id/signed", agreementController.HasUserSigned)
	agreement.Delete("/:id", agreementController.DeleteAgreement)
	agreement.Delete("/:id/permanent", agreementController.PermanentlyDeleteAgreement)

	// Staged deletion routes; deletion IDs are not agreement IDs
	agreement.Get("/deletions", agreementController.GetPendingDeletions)
	agreement.Post("/deletions/:deletionId/undo", agreementController.UndoDeletion)
	agreement.Post("/deletions/:deletionId/dismiss", agreementController.DismissDeletion)

	// Deliverable routes
	deliverable := api.Group("/deliverables")
	deliverable.Get("/", deliverableController.GetDeliverables)
	deliverable.Post("/", deliverableController.CreateDeliverable)
	deliverable.Put("/:id", deliverableController.UpdateDeliverable)
	deliverable.Put("/:id/progress", deliverableController.UpdateProgress)
	deliverable.Delete("/:id", deliverableController.DeleteDeliverable)
	deliverable.Post("/:id/dependencies", deliverableController.AddDependency)
	deliverable.Delete("/:id/dependencies/:dependsOnId", deliverableController.RemoveDependency)

	// Update feed routes
	update := api.Group("/updates")
	update.Get("/", updateController.GetUpdates)
	update.Post("/", updateController.CreateUpdate)
	update.Post("/:id/reactions", updateController.ToggleReaction)

	// WebSocket route for the live feed
	app.Get("/api/v1/updates/stream", websocket.New(func(c *websocket.Conn) {
		updateController.StreamUpdates(c)
	}))

	// Analytics routes
	api.Get("/analytics", analyticsController.GetAnalytics)

	// Log initialization
	log.Println("API routes initialized successfully")
}

func SetupRoutes(app *fiber.App, db *gorm.DB, undo *worker.UndoManager) {
	// Setup health check endpoint
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	// Setup API routes
	SetupAPIRoutes(app, db, undo)

	// Setup 404 handler
	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error":   "Not Found",
			"message": "The requested resource was not found",
		})
	})
}
