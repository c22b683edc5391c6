package handlers

import (
	"bytes"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/ticketapp/internal/auth"
	"github.com/spec-kit/ticketapp/internal/domain"
	"github.com/spec-kit/ticketapp/internal/service"
	"github.com/spec-kit/ticketapp/internal/view"
	apperrors "github.com/spec-kit/ticketapp/pkg/util/errorutil"
)

// DashboardRecentLimit is how many tickets the dashboard lists.
const DashboardRecentLimit = 5

// PagesHandler serves the HTML views and their form submissions.
type PagesHandler struct {
	renderer *view.Renderer
	auth     *service.AuthService
	tickets  *service.TicketService
	guards   *auth.Guards
	logger   *zap.Logger
}

// NewPagesHandler constructs handler.
func NewPagesHandler(renderer *view.Renderer, authService *service.AuthService, ticketService *service.TicketService, guards *auth.Guards, logger *zap.Logger) *PagesHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PagesHandler{renderer: renderer, auth: authService, tickets: ticketService, guards: guards, logger: logger}
}

// Show handles every GET page request through the route table.
func (h *PagesHandler) Show(c *fiber.Ctx) error {
	route, found := Resolve(h.relativePath(c))

	session, err := h.guards.Session(c)
	if err != nil {
		return err
	}
	switch route.Access {
	case AccessUser:
		if session == nil {
			return c.Redirect(h.renderer.URL("/auth/login"), fiber.StatusFound)
		}
	case AccessGuest:
		if session != nil {
			return c.Redirect(h.renderer.URL("/dashboard"), fiber.StatusFound)
		}
	}

	status := fiber.StatusOK
	if !found {
		status = fiber.StatusNotFound
	}
	data := view.PageData{Session: session, Toast: takeFlash(c, h.cookiePath())}

	profileID, _ := auth.ProfileFromContext(c)
	ctx := c.UserContext()
	switch route.View {
	case view.PageLanding:
		if !found {
			data.Title = "Page not found"
		}
	case view.PageLogin:
		data.Title = "Log in"
	case view.PageSignup:
		data.Title = "Sign up"
	case view.PageDashboard:
		data.Title = "Dashboard"
		if data.Stats, err = h.tickets.GetTicketStats(ctx, profileID); err != nil {
			return h.pageError(c, err)
		}
		if data.Tickets, err = h.tickets.Recent(ctx, profileID, DashboardRecentLimit); err != nil {
			return h.pageError(c, err)
		}
	case view.PageTickets:
		data.Title = "Tickets"
		data.Filter = route.Mode
		if route.Mode == "active" {
			data.Tickets, err = h.tickets.ListActive(ctx, profileID)
		} else {
			data.Tickets, err = h.tickets.LoadTickets(ctx, profileID)
		}
		if err != nil {
			return h.pageError(c, err)
		}
	case view.PageTicketForm:
		data.Mode = route.Mode
		data.TicketID = route.TicketID
		data.Form = map[string]string{"status": string(domain.TicketStatusOpen)}
		data.Title = "New ticket"
		if route.Mode == "edit" {
			data.Title = "Edit ticket"
			ticket, err := h.tickets.GetTicketByID(ctx, profileID, route.TicketID)
			if apperrors.HasCode(err, apperrors.CodeNotFound) {
				return h.redirectWithToast(c, "/tickets", view.Error("Ticket not found"))
			}
			if err != nil {
				return h.pageError(c, err)
			}
			data.Ticket = ticket
			data.Form = ticketForm(ticket.Title, ticket.Description, string(ticket.Status))
		}
	}
	return h.render(c, status, route.View, data)
}

func (h *PagesHandler) render(c *fiber.Ctx, status int, page string, data view.PageData) error {
	var buf bytes.Buffer
	if err := h.renderer.Render(&buf, page, data); err != nil {
		return apperrors.NewInternalError(err)
	}
	c.Type("html", "utf-8")
	return c.Status(status).Send(buf.Bytes())
}

// pageError turns a service failure into a redirect: a lost session goes to
// the login page, anything else back to the landing page with a toast.
func (h *PagesHandler) pageError(c *fiber.Ctx, err error) error {
	if apperrors.HasCode(err, apperrors.CodeNoActiveSession) {
		auth.ForgetSession(c)
		return h.redirectWithToast(c, "/auth/login", view.Error("Please log in to continue"))
	}
	de := apperrors.ToDomainError(err)
	if de.HTTPStatus >= fiber.StatusInternalServerError {
		return err
	}
	return h.redirectWithToast(c, "/", view.Error(de.Message))
}

func (h *PagesHandler) redirectWithToast(c *fiber.Ctx, path string, toast *view.Toast) error {
	setFlash(c, h.cookiePath(), toast)
	return c.Redirect(h.renderer.URL(path), fiber.StatusSeeOther)
}

func (h *PagesHandler) relativePath(c *fiber.Ctx) string {
	path := c.Path()
	if base := h.renderer.BasePath(); base != "" {
		path = strings.TrimPrefix(path, base)
	}
	return path
}

func (h *PagesHandler) cookiePath() string {
	if base := h.renderer.BasePath(); base != "" {
		return base
	}
	return "/"
}

func ticketForm(title, description, status string) map[string]string {
	return map[string]string{"title": title, "description": description, "status": status}
}

// formFailure extracts per-field messages from a validation error.
func formFailure(err error) (map[string]string, bool) {
	var de *apperrors.DomainError
	if !errors.As(err, &de) || de.Code != apperrors.CodeValidationFailed {
		return nil, false
	}
	fields := make(map[string]string, len(de.Details))
	for k, v := range de.Details {
		if msg, ok := v.(string); ok {
			fields[k] = msg
		}
	}
	return fields, true
}
