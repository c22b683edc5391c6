package http

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/ticketapp/internal/api/http/handlers"
	"github.com/spec-kit/ticketapp/internal/auth"
	"github.com/spec-kit/ticketapp/internal/config"
	"github.com/spec-kit/ticketapp/internal/events"
	"github.com/spec-kit/ticketapp/internal/observability"
	"github.com/spec-kit/ticketapp/internal/persistence"
	"github.com/spec-kit/ticketapp/internal/repository"
	"github.com/spec-kit/ticketapp/internal/service"
	"github.com/spec-kit/ticketapp/internal/view"
	"github.com/spec-kit/ticketapp/internal/worker"
)

// Server is the assembled Fiber application.
type Server struct {
	App     *fiber.App
	limiter *RateLimiter
}

// NewServer wires repositories, services and handlers on top of store.
// A nil metrics disables the /metrics endpoint.
func NewServer(cfg config.Config, store persistence.Store, logger *zap.Logger, metrics *observability.Metrics) (*Server, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	renderer, err := view.NewRenderer(cfg.App.BasePath)
	if err != nil {
		return nil, fmt.Errorf("load templates: %w", err)
	}

	directoryRepo := repository.NewDirectoryRepository(store)
	sessionRepo := repository.NewSessionRepository(store)
	dispatcher := events.NewInMemoryDispatcher()

	authService := service.NewAuthService(cfg, service.AuthDependencies{
		DirectoryRepo: directoryRepo,
		SessionRepo:   sessionRepo,
		Dispatcher:    dispatcher,
		Logger:        logger,
	})
	ticketService := service.NewTicketService(cfg, service.TicketDependencies{
		DirectoryRepo: directoryRepo,
		SessionRepo:   sessionRepo,
		Dispatcher:    dispatcher,
		Logger:        logger,
	})
	notificationService := service.NewNotificationService(dispatcher, logger)
	worker.StartNotificationWorker(dispatcher, notificationService, metrics)

	cookiePath := cfg.App.BasePath
	if cookiePath == "" {
		cookiePath = "/"
	}
	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.ProfileTTL())
	profile := auth.NewProfileMiddleware(tokens, auth.CookieOptions{Path: cookiePath, Secure: cfg.App.CookieSecure}, logger)
	guards := auth.NewGuards(sessionRepo, renderer.URL)
	limiter := NewRateLimiter(NewRateLimiterConfig(cfg.Auth.RateLimitPerMinute, cfg.Auth.RateLimitBurst), logger)

	app := fiber.New(fiber.Config{
		AppName:               cfg.App.Name,
		DisableStartupMessage: true,
	})
	RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())
	RegisterRoutes(app, RouteConfig{
		BasePath:    cfg.App.BasePath,
		Profile:     profile,
		Guards:      guards,
		AuthLimiter: limiter,
		Metrics:     metrics,
		Health:      handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, cfg.Storage.Driver, store),
		Pages:       handlers.NewPagesHandler(renderer, authService, ticketService, guards, logger),
		Users:       handlers.NewUsersHandler(authService, profile),
		Tickets:     handlers.NewTicketsHandler(ticketService),
	})

	return &Server{App: app, limiter: limiter}, nil
}

// Shutdown stops the server and its background work.
func (s *Server) Shutdown() error {
	s.limiter.Stop()
	return s.App.Shutdown()
}
