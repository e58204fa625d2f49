package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/prioritization-service/internal/service"
)

// AnalyticsHandler serves aggregate read models.
type AnalyticsHandler struct {
	service *service.TicketService
}

// NewAnalyticsHandler constructs handler.
func NewAnalyticsHandler(ticketService *service.TicketService) *AnalyticsHandler {
	return &AnalyticsHandler{service: ticketService}
}

// Statistics GET /api/analytics/statistics.
func (h *AnalyticsHandler) Statistics(c *fiber.Ctx) error {
	stats, err := h.service.Statistics(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": stats})
}

// AIPerformance GET /api/analytics/ai-performance.
func (h *AnalyticsHandler) AIPerformance(c *fiber.Ctx) error {
	report, err := h.service.AIPerformanceReport(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": report})
}

// Reset POST /api/system/reset. Drops all tickets and reseeds the sample set.
func (h *AnalyticsHandler) Reset(c *fiber.Ctx) error {
	seeded, err := h.service.Reset(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"data": fiber.Map{
			"message":        "system reset complete",
			"tickets_seeded": seeded,
		},
	})
}
