package auth

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	profileKey = "auth_profile"
	sessionKey = "auth_session"

	// ProfileCookie carries the signed profile token.
	ProfileCookie = "ticketapp_profile"
)

// CookieOptions shapes the profile cookie.
type CookieOptions struct {
	Path   string
	Secure bool
}

// ProfileMiddleware resolves the browser profile of every request, minting a
// new profile when the caller presents no valid token.
type ProfileMiddleware struct {
	tokens *TokenManager
	cookie CookieOptions
	logger *zap.Logger
}

// NewProfileMiddleware constructs middleware.
func NewProfileMiddleware(tokens *TokenManager, cookie CookieOptions, logger *zap.Logger) *ProfileMiddleware {
	if cookie.Path == "" {
		cookie.Path = "/"
	}
	return &ProfileMiddleware{tokens: tokens, cookie: cookie, logger: logger}
}

// Handle attaches the profile id to the request.
func (m *ProfileMiddleware) Handle(c *fiber.Ctx) error {
	if token := presentedToken(c); token != "" {
		if claims, err := m.tokens.ParseToken(token); err == nil {
			c.Locals(profileKey, claims.ProfileID)
			return c.Next()
		}
		m.logger.Debug("discarding invalid profile token", zap.String("path", c.Path()))
	}

	profileID := uuid.NewString()
	if err := m.issue(c, profileID); err != nil {
		return err
	}
	c.Locals(profileKey, profileID)
	return c.Next()
}

// Token returns a fresh token for the request's profile, for API clients that
// cannot keep cookies.
func (m *ProfileMiddleware) Token(c *fiber.Ctx) (string, time.Time, error) {
	profileID, _ := ProfileFromContext(c)
	return m.tokens.GenerateToken(profileID)
}

func (m *ProfileMiddleware) issue(c *fiber.Ctx, profileID string) error {
	token, expiresAt, err := m.tokens.GenerateToken(profileID)
	if err != nil {
		return err
	}
	c.Cookie(&fiber.Cookie{
		Name:     ProfileCookie,
		Value:    token,
		Path:     m.cookie.Path,
		Expires:  expiresAt,
		Secure:   m.cookie.Secure,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	return nil
}

func presentedToken(c *fiber.Ctx) string {
	authHeader := c.Get(fiber.HeaderAuthorization)
	if authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
	}
	return c.Cookies(ProfileCookie)
}

// ProfileFromContext retrieves the profile id resolved by ProfileMiddleware.
func ProfileFromContext(c *fiber.Ctx) (string, bool) {
	val, ok := c.Locals(profileKey).(string)
	return val, ok && val != ""
}
