package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/ticketapp/internal/api/dto"
	"github.com/spec-kit/ticketapp/internal/auth"
	"github.com/spec-kit/ticketapp/internal/domain"
	"github.com/spec-kit/ticketapp/internal/service"
	"github.com/spec-kit/ticketapp/internal/view"
	apperrors "github.com/spec-kit/ticketapp/pkg/util/errorutil"
)

const formErrorsToast = "Please fix the errors in the form"

// Login handles POST /auth/login.
func (h *PagesHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	profileID, _ := auth.ProfileFromContext(c)

	session, err := h.auth.Login(c.UserContext(), profileID, req.Email, req.Password)
	if err != nil {
		form := map[string]string{"email": req.Email}
		return h.formError(c, view.PageLogin, view.PageData{Title: "Log in", Form: form}, err, "Login failed")
	}
	auth.ForgetSession(c)
	h.logger.Debug("form login", zap.String("profile_id", profileID), zap.String("user_id", session.ID))
	return h.redirectWithToast(c, "/dashboard", view.Success("Login successful! Redirecting..."))
}

// Signup handles POST /auth/signup.
func (h *PagesHandler) Signup(c *fiber.Ctx) error {
	var req dto.SignupRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	profileID, _ := auth.ProfileFromContext(c)

	_, err := h.auth.Signup(c.UserContext(), profileID, service.SignupInput{
		Name:            req.Name,
		Email:           req.Email,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
	})
	if err != nil {
		form := map[string]string{"name": req.Name, "email": req.Email}
		return h.formError(c, view.PageSignup, view.PageData{Title: "Sign up", Form: form}, err, "Signup failed")
	}
	auth.ForgetSession(c)
	return h.redirectWithToast(c, "/dashboard", view.Success("Account created successfully! Redirecting..."))
}

// Logout handles POST /auth/logout.
func (h *PagesHandler) Logout(c *fiber.Ctx) error {
	profileID, _ := auth.ProfileFromContext(c)
	if err := h.auth.Logout(c.UserContext(), profileID); err != nil {
		return err
	}
	auth.ForgetSession(c)
	return h.redirectWithToast(c, "/", view.Success("Log out successful"))
}

// CreateTicket handles POST /tickets/create.
func (h *PagesHandler) CreateTicket(c *fiber.Ctx) error {
	var req dto.CreateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	profileID, _ := auth.ProfileFromContext(c)

	_, err := h.tickets.AddTicket(c.UserContext(), profileID, service.TicketInput{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
	})
	if err != nil {
		return h.ticketFormError(c, "create", "", req, err)
	}
	return h.redirectWithToast(c, "/tickets", view.Success("Ticket created successfully"))
}

// UpdateTicket handles POST /tickets/edit/:id. HTML forms always submit
// every field, so all three are applied.
func (h *PagesHandler) UpdateTicket(c *fiber.Ctx) error {
	var req dto.CreateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	profileID, _ := auth.ProfileFromContext(c)
	id := c.Params("id")

	status := req.Status
	if status == "" {
		status = domain.TicketStatusOpen
	}
	_, ok, err := h.tickets.UpdateTicket(c.UserContext(), profileID, id, service.TicketPatch{
		Title:       &req.Title,
		Description: &req.Description,
		Status:      &status,
	})
	if err != nil {
		return h.ticketFormError(c, "edit", id, req, err)
	}
	if !ok {
		return h.redirectWithToast(c, "/tickets", view.Error("Ticket not found"))
	}
	return h.redirectWithToast(c, "/tickets", view.Success("Ticket updated successfully"))
}

// DeleteTicket handles POST /tickets/delete/:id.
func (h *PagesHandler) DeleteTicket(c *fiber.Ctx) error {
	profileID, _ := auth.ProfileFromContext(c)
	if err := h.tickets.DeleteTicket(c.UserContext(), profileID, c.Params("id")); err != nil {
		if apperrors.HasCode(err, apperrors.CodeNoActiveSession) {
			return h.pageError(c, err)
		}
		h.logger.Warn("delete ticket", zap.String("profile_id", profileID), zap.Error(err))
		return h.redirectWithToast(c, "/tickets", view.Error("Failed to delete ticket"))
	}
	return h.redirectWithToast(c, "/tickets", view.Success("Ticket deleted successfully"))
}

func (h *PagesHandler) ticketFormError(c *fiber.Ctx, mode, id string, req dto.CreateTicketRequest, err error) error {
	data := view.PageData{
		Title:    "New ticket",
		Mode:     mode,
		TicketID: id,
		Form:     ticketForm(req.Title, req.Description, string(req.Status)),
	}
	if mode == "edit" {
		data.Title = "Edit ticket"
	}
	return h.formError(c, view.PageTicketForm, data, err, "Failed to save ticket")
}

// formError re-renders page with the failure: field errors for validation,
// a toast for everything else. Server errors propagate.
func (h *PagesHandler) formError(c *fiber.Ctx, page string, data view.PageData, err error, fallback string) error {
	if apperrors.HasCode(err, apperrors.CodeNoActiveSession) {
		return h.pageError(c, err)
	}
	de := apperrors.ToDomainError(err)
	if de.HTTPStatus >= fiber.StatusInternalServerError {
		return err
	}

	if fields, ok := formFailure(err); ok {
		data.Errors = fields
		data.Toast = view.Error(formErrorsToast)
	} else {
		msg := de.Message
		if msg == "" {
			msg = fallback
		}
		data.Toast = view.Error(msg)
	}
	session, sessErr := h.guards.Session(c)
	if sessErr == nil {
		data.Session = session
	}
	return h.render(c, de.HTTPStatus, page, data)
}
