package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/ticketapp/internal/domain"
	"github.com/spec-kit/ticketapp/internal/repository"
	apperrors "github.com/spec-kit/ticketapp/pkg/util/errorutil"
)

// Guards checks the session of the resolved profile.
type Guards struct {
	sessions repository.SessionRepository
	urlFor   func(path string) string
}

// NewGuards builds guards; urlFor prefixes redirect targets with the base path.
func NewGuards(sessions repository.SessionRepository, urlFor func(string) string) *Guards {
	return &Guards{sessions: sessions, urlFor: urlFor}
}

func (g *Guards) loadSession(c *fiber.Ctx) (*domain.Session, error) {
	if cached, ok := c.Locals(sessionKey).(*domain.Session); ok {
		return cached, nil
	}
	profileID, ok := ProfileFromContext(c)
	if !ok {
		return nil, nil
	}
	session, err := g.sessions.Get(c.UserContext(), profileID)
	if err != nil {
		return nil, err
	}
	if session != nil {
		c.Locals(sessionKey, session)
	}
	return session, nil
}

// Session returns the session of the request's profile, or nil.
func (g *Guards) Session(c *fiber.Ctx) (*domain.Session, error) {
	return g.loadSession(c)
}

// RequireAuth redirects page requests without a session to the login view.
func (g *Guards) RequireAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		session, err := g.loadSession(c)
		if err != nil {
			return err
		}
		if session == nil {
			return c.Redirect(g.urlFor("/auth/login"), fiber.StatusFound)
		}
		return c.Next()
	}
}

// RequireSession rejects API requests without a session.
func (g *Guards) RequireSession() fiber.Handler {
	return func(c *fiber.Ctx) error {
		session, err := g.loadSession(c)
		if err != nil {
			return err
		}
		if session == nil {
			return apperrors.NewNoActiveSession()
		}
		return c.Next()
	}
}

// RedirectIfAuthenticated sends logged-in visitors of login and signup to the dashboard.
func (g *Guards) RedirectIfAuthenticated() fiber.Handler {
	return func(c *fiber.Ctx) error {
		session, err := g.loadSession(c)
		if err != nil {
			return err
		}
		if session != nil {
			return c.Redirect(g.urlFor("/dashboard"), fiber.StatusFound)
		}
		return c.Next()
	}
}

// SessionFromContext returns the session loaded by a guard, if any.
func SessionFromContext(c *fiber.Ctx) (*domain.Session, bool) {
	session, ok := c.Locals(sessionKey).(*domain.Session)
	return session, ok && session != nil
}

// ForgetSession drops the cached session after login, signup or logout.
func ForgetSession(c *fiber.Ctx) {
	c.Locals(sessionKey, nil)
}
