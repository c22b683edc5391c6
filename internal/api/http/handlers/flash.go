package handlers

import (
	"encoding/base64"
	"encoding/json"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/ticketapp/internal/view"
)

const flashCookie = "ticketapp_flash"

// setFlash stores a toast for the next page view.
func setFlash(c *fiber.Ctx, path string, toast *view.Toast) {
	raw, err := json.Marshal(toast)
	if err != nil {
		return
	}
	c.Cookie(&fiber.Cookie{
		Name:     flashCookie,
		Value:    base64.RawURLEncoding.EncodeToString(raw),
		Path:     path,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

// takeFlash returns the pending toast, if any, and clears it.
func takeFlash(c *fiber.Ctx, path string) *view.Toast {
	value := c.Cookies(flashCookie)
	if value == "" {
		return nil
	}
	c.Cookie(&fiber.Cookie{
		Name:     flashCookie,
		Value:    "",
		Path:     path,
		Expires:  time.Unix(0, 0),
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	raw, err := base64.RawURLEncoding.DecodeString(value)
	if err != nil {
		return nil
	}
	var toast view.Toast
	if err := json.Unmarshal(raw, &toast); err != nil || toast.Message == "" {
		return nil
	}
	return &toast
}
