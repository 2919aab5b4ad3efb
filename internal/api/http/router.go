package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-service/internal/api/http/handlers"
	"github.com/spec-kit/helpdesk-service/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Users          *handlers.UsersHandler
	Companies      *handlers.CompaniesHandler
	Tickets        *handlers.TicketsHandler
	Resolutions    *handlers.ResolutionsHandler
	AuthMiddleware *auth.AuthMiddleware
	RateLimit      fiber.Handler
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/metrics", cfg.Health.Metrics)

	authGroup := app.Group("/auth")
	authGroup.Post("/register", cfg.Users.Register)
	authGroup.Post("/login", cfg.Users.Login)

	profiles := app.Group("/profiles", cfg.AuthMiddleware.Handle, auth.RequireAuthenticated())
	profiles.Get("/", cfg.Users.ListProfiles)
	profiles.Get("/me", cfg.Users.Me)
	profiles.Post("/:id/assign-role", cfg.Users.AssignRole)

	companies := app.Group("/companies", cfg.AuthMiddleware.Optional)
	companies.Get("/", cfg.Companies.List)
	companies.Post("/", auth.RequireAuthenticated(), cfg.Companies.Create)
	companies.Get("/:slug", cfg.Companies.Get)

	rateLimit := cfg.RateLimit
	if rateLimit == nil {
		rateLimit = func(c *fiber.Ctx) error { return c.Next() }
	}

	tickets := companies.Group("/:slug/tickets")
	tickets.Get("/", rateLimit, cfg.Tickets.ListTickets)
	tickets.Post("/", rateLimit, cfg.Tickets.CreateTicket)
	tickets.Get("/:id", rateLimit, cfg.Tickets.GetTicket)
	tickets.Patch("/:id", cfg.Tickets.UpdateTicket)
	tickets.Post("/:id/assign", auth.RequireAuthenticated(), cfg.Tickets.AssignTicket)

	resolutions := companies.Group("/:slug/ticket-resolution")
	resolutions.Get("/", cfg.Resolutions.List)
	resolutions.Get("/:id", cfg.Resolutions.Get)
}
