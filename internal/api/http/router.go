package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/spec-kit/ticketapp/internal/api/http/handlers"
	"github.com/spec-kit/ticketapp/internal/auth"
	"github.com/spec-kit/ticketapp/internal/observability"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	BasePath    string
	Profile     *auth.ProfileMiddleware
	Guards      *auth.Guards
	AuthLimiter *RateLimiter
	Metrics     *observability.Metrics
	Health      *handlers.HealthHandler
	Pages       *handlers.PagesHandler
	Users       *handlers.UsersHandler
	Tickets     *handlers.TicketsHandler
}

// RegisterRoutes wires HTTP routes under the base path. Probes and metrics
// are registered before the profile middleware so they never mint cookies.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	root := app.Group(cfg.BasePath)

	root.Get("/health/live", cfg.Health.Live)
	root.Get("/health/ready", cfg.Health.Ready)
	if cfg.Metrics != nil {
		root.Get("/metrics", adaptor.HTTPHandler(cfg.Metrics.Handler()))
	}

	root.Use(cfg.Profile.Handle)

	api := root.Group("/api")
	api.Post("/auth/signup", cfg.AuthLimiter.Handle, cfg.Users.Signup)
	api.Post("/auth/login", cfg.AuthLimiter.Handle, cfg.Users.Login)
	api.Post("/auth/logout", cfg.Users.Logout)
	api.Get("/session", cfg.Users.Session)
	api.Post("/validate", cfg.Users.Validate)

	tickets := api.Group("/tickets", cfg.Guards.RequireSession())
	tickets.Get("", cfg.Tickets.ListTickets)
	tickets.Post("", cfg.Tickets.CreateTicket)
	tickets.Get("/stats", cfg.Tickets.Stats)
	tickets.Get("/:id", cfg.Tickets.GetTicket)
	tickets.Patch("/:id", cfg.Tickets.UpdateTicket)
	tickets.Delete("/:id", cfg.Tickets.DeleteTicket)

	guest := cfg.Guards.RedirectIfAuthenticated()
	root.Post("/auth/login", guest, cfg.AuthLimiter.Handle, cfg.Pages.Login)
	root.Post("/auth/signup", guest, cfg.AuthLimiter.Handle, cfg.Pages.Signup)
	root.Post("/auth/logout", cfg.Pages.Logout)
	root.Post("/tickets/create", cfg.Guards.RequireAuth(), cfg.Pages.CreateTicket)
	root.Post("/tickets/edit/:id", cfg.Guards.RequireAuth(), cfg.Pages.UpdateTicket)
	root.Post("/tickets/delete/:id", cfg.Guards.RequireAuth(), cfg.Pages.DeleteTicket)

	if cfg.BasePath != "" {
		root.Get("", cfg.Pages.Show)
	}
	root.Get("/*", cfg.Pages.Show)
}
