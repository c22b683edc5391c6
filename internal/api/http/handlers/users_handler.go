package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/ticketapp/internal/api/dto"
	"github.com/spec-kit/ticketapp/internal/auth"
	"github.com/spec-kit/ticketapp/internal/domain"
	"github.com/spec-kit/ticketapp/internal/service"
	"github.com/spec-kit/ticketapp/internal/validation"
	apperrors "github.com/spec-kit/ticketapp/pkg/util/errorutil"
)

// UsersHandler exposes the JSON auth endpoints.
type UsersHandler struct {
	auth    *service.AuthService
	profile *auth.ProfileMiddleware
}

// NewUsersHandler constructs handler.
func NewUsersHandler(authService *service.AuthService, profile *auth.ProfileMiddleware) *UsersHandler {
	return &UsersHandler{auth: authService, profile: profile}
}

// Signup handles POST /api/auth/signup.
func (h *UsersHandler) Signup(c *fiber.Ctx) error {
	var req dto.SignupRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	profileID, _ := auth.ProfileFromContext(c)

	session, err := h.auth.Signup(c.UserContext(), profileID, service.SignupInput{
		Name:            req.Name,
		Email:           req.Email,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
	})
	if err != nil {
		return err
	}
	return h.respondSession(c, fiber.StatusCreated, session)
}

// Login handles POST /api/auth/login.
func (h *UsersHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	profileID, _ := auth.ProfileFromContext(c)

	session, err := h.auth.Login(c.UserContext(), profileID, req.Email, req.Password)
	if err != nil {
		return err
	}
	return h.respondSession(c, fiber.StatusOK, session)
}

// Logout handles POST /api/auth/logout.
func (h *UsersHandler) Logout(c *fiber.Ctx) error {
	profileID, _ := auth.ProfileFromContext(c)
	if err := h.auth.Logout(c.UserContext(), profileID); err != nil {
		return err
	}
	auth.ForgetSession(c)
	return c.JSON(fiber.Map{"data": fiber.Map{"loggedOut": true}})
}

// Session handles GET /api/session.
func (h *UsersHandler) Session(c *fiber.Ctx) error {
	profileID, _ := auth.ProfileFromContext(c)
	session, err := h.auth.CurrentSession(c.UserContext(), profileID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": session})
}

// Validate handles POST /api/validate, the per-field check run on blur.
func (h *UsersHandler) Validate(c *fiber.Ctx) error {
	var req dto.ValidateRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	form := validation.Form{}
	for k, v := range req.Form {
		form[validation.Field(k)] = v
	}
	result := validation.ValidateField(validation.Field(req.Field), req.Value, form)
	return c.JSON(fiber.Map{"data": result})
}

func (h *UsersHandler) respondSession(c *fiber.Ctx, status int, session *domain.Session) error {
	auth.ForgetSession(c)
	token, exp, err := h.profile.Token(c)
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	return c.Status(status).JSON(fiber.Map{
		"data": dto.AuthResponse{Session: *session, Token: token, ExpiresAt: exp},
	})
}
