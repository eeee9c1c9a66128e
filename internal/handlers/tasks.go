package handlers

import (
	"log"
	"os"

	"github.com/gofiber/fiber/v2"

	"github.com/shecare-health/shecare-backend/internal/services"
)

// TasksHandler exposes cron-triggered maintenance endpoints.
type TasksHandler struct {
	broadcaster *services.TipBroadcaster
}

func NewTasksHandler(broadcaster *services.TipBroadcaster) *TasksHandler {
	return &TasksHandler{broadcaster: broadcaster}
}

// HandleSendDailyTips triggers the daily tip broadcast. Guarded by a shared
// secret so only the scheduler can call it.
func (h *TasksHandler) HandleSendDailyTips(c *fiber.Ctx) error {
	secret := os.Getenv("CRON_SECRET")
	if secret == "" || c.Get("X-CRON-KEY") != secret {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "Forbidden",
		})
	}

	sent, err := h.broadcaster.BroadcastDailyTips(c.UserContext())
	if err != nil {
		log.Printf("❌ Daily tip broadcast failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "broadcast failed",
		})
	}

	return c.JSON(fiber.Map{
		"status": "daily health tips sent",
		"sent":   sent,
	})
}
