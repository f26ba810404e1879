package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/helpdesk-kit/ticket-bot/internal/api/http/handlers"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health *handlers.HealthHandler
	Ops    *handlers.OpsHandler
	Admin  *handlers.AdminHandler
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	ops := app.Group("/ops")
	ops.Get("/tickets", cfg.Ops.ListTickets)
	ops.Get("/tickets/:id", cfg.Ops.GetTicket)
	ops.Get("/stats", cfg.Ops.GetStats)

	ops.Get("/guilds/:guildId/settings", cfg.Admin.GetGuildSettings)
	ops.Put("/guilds/:guildId/settings", cfg.Admin.UpdateGuildSettings)
	ops.Post("/reminders", cfg.Admin.CreateReminder)
}
