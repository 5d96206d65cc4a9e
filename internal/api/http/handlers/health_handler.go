package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/request-desk/internal/store"
)

// HealthHandler exposes liveness and readiness probes.
type HealthHandler struct {
	store store.TicketStore
}

// NewHealthHandler constructs handler.
func NewHealthHandler(ticketStore store.TicketStore) *HealthHandler {
	return &HealthHandler{store: ticketStore}
}

// Live GET /health/live.
func (h *HealthHandler) Live(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

// Ready GET /health/ready.
func (h *HealthHandler) Ready(c *fiber.Ctx) error {
	if h.store != nil {
		if err := h.store.Ping(c.UserContext()); err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"status": "degraded",
				"store":  err.Error(),
			})
		}
	}
	return c.JSON(fiber.Map{"status": "ok"})
}
