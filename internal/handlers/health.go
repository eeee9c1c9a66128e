package handlers

import (
	"github.com/gofiber/fiber/v2"
)

// HandleHealth is the monitoring health check.
func HandleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "healthy",
		"service": "SheCare Backend",
		"version": "1.0.0",
	})
}
