package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/prioritization-service/internal/api/http/handlers"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health    *handlers.HealthHandler
	Tickets   *handlers.TicketsHandler
	Analytics *handlers.AnalyticsHandler
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	api := app.Group("/api")

	tickets := api.Group("/tickets")
	tickets.Post("", cfg.Tickets.CreateTicket)
	tickets.Get("", cfg.Tickets.ListTickets)
	// Static route before the :id routes so "queue" is not captured as an id.
	tickets.Get("/queue", cfg.Tickets.Queue)
	tickets.Get("/:id", cfg.Tickets.GetTicket)
	tickets.Patch("/:id", cfg.Tickets.UpdateTicket)
	tickets.Delete("/:id", cfg.Tickets.DeleteTicket)
	tickets.Post("/:id/reprioritize", cfg.Tickets.Reprioritize)
	tickets.Post("/:id/override", cfg.Tickets.ApplyOverride)
	tickets.Delete("/:id/override", cfg.Tickets.RemoveOverride)
	tickets.Get("/:id/explanation", cfg.Tickets.Explanation)
	tickets.Post("/:id/feedback", cfg.Tickets.SubmitFeedback)
	tickets.Get("/:id/history", cfg.Tickets.History)

	analytics := api.Group("/analytics")
	analytics.Get("/statistics", cfg.Analytics.Statistics)
	analytics.Get("/ai-performance", cfg.Analytics.AIPerformance)

	api.Post("/system/reset", cfg.Analytics.Reset)
}
