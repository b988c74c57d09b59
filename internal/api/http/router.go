package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/facility-triage/internal/api/http/handlers"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health  *handlers.HealthHandler
	Tickets *handlers.TicketsHandler
	Staff   *handlers.StaffHandler
	Triage  *handlers.TriageHandler
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	tickets := app.Group("/tickets")
	tickets.Post("", cfg.Tickets.CreateTicket)
	tickets.Get("", cfg.Tickets.ListTickets)
	tickets.Get("/:id", cfg.Tickets.GetTicket)
	tickets.Patch("/:id/status", cfg.Tickets.UpdateStatus)
	tickets.Get("/:id/history", cfg.Tickets.GetHistory)

	app.Get("/staff", cfg.Staff.ListCandidates)

	triage := app.Group("/triage")
	triage.Post("/run", cfg.Triage.RunCycle)
	triage.Get("/rules", cfg.Triage.GetRules)
}
