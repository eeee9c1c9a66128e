package routes

import (
	"os"

	"github.com/gofiber/fiber/v2"

	"github.com/shecare-health/shecare-backend/internal/handlers"
	"github.com/shecare-health/shecare-backend/internal/middleware"
)

// SetupRoutes configures all API routes
func SetupRoutes(app *fiber.App, whatsapp *handlers.WhatsAppHandler, tasks *handlers.TasksHandler) {

	// Root endpoint
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "Welcome to the SheCare Backend!",
			"version": "1.0.0",
			"endpoints": fiber.Map{
				"health":  "/health",
				"webhook": "/webhook/whatsapp",
				"tasks":   "/tasks/send-daily-tips",
			},
		})
	})

	app.Get("/health", handlers.HandleHealth)

	// ========== WEBHOOK ROUTES ==========
	webhooks := app.Group("/webhook")

	// WhatsApp webhook - signature validation is skipped in development so
	// local tunnels (ngrok) work without Twilio's signing headers.
	if os.Getenv("ENVIRONMENT") == "development" || os.Getenv("DISABLE_WEBHOOK_VALIDATION") == "true" {
		webhooks.Post("/whatsapp", whatsapp.HandleWebhook)
	} else {
		webhooks.Post("/whatsapp", middleware.ValidateTwilioSignature(), whatsapp.HandleWebhook)
	}

	// ========== CRON ROUTES ==========
	app.Post("/tasks/send-daily-tips", tasks.HandleSendDailyTips)
}
