package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/ticketapp/internal/api/dto"
	"github.com/spec-kit/ticketapp/internal/auth"
	"github.com/spec-kit/ticketapp/internal/domain"
	"github.com/spec-kit/ticketapp/internal/service"
	"github.com/spec-kit/ticketapp/internal/view"
	apperrors "github.com/spec-kit/ticketapp/pkg/util/errorutil"
)

// TicketsHandler manages the JSON ticket endpoints of the session's user.
type TicketsHandler struct {
	service *service.TicketService
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(ticketService *service.TicketService) *TicketsHandler {
	return &TicketsHandler{service: ticketService}
}

// ListTickets GET /api/tickets. ?filter=active drops closed tickets.
func (h *TicketsHandler) ListTickets(c *fiber.Ctx) error {
	profileID, _ := auth.ProfileFromContext(c)

	var (
		tickets []domain.Ticket
		err     error
	)
	switch c.Query("filter") {
	case "active":
		tickets, err = h.service.ListActive(c.UserContext(), profileID)
	case "recent":
		tickets, err = h.service.Recent(c.UserContext(), profileID, c.QueryInt("limit", DashboardRecentLimit))
	default:
		tickets, err = h.service.LoadTickets(c.UserContext(), profileID)
	}
	if err != nil {
		return err
	}
	items := make([]dto.TicketResponse, 0, len(tickets))
	for i := range tickets {
		items = append(items, ticketResponse(&tickets[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// CreateTicket POST /api/tickets.
func (h *TicketsHandler) CreateTicket(c *fiber.Ctx) error {
	var req dto.CreateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	profileID, _ := auth.ProfileFromContext(c)

	ticket, err := h.service.AddTicket(c.UserContext(), profileID, service.TicketInput{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": ticketResponse(ticket)})
}

// GetTicket GET /api/tickets/:id.
func (h *TicketsHandler) GetTicket(c *fiber.Ctx) error {
	profileID, _ := auth.ProfileFromContext(c)
	ticket, err := h.service.GetTicketByID(c.UserContext(), profileID, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketResponse(ticket)})
}

// UpdateTicket PATCH /api/tickets/:id.
func (h *TicketsHandler) UpdateTicket(c *fiber.Ctx) error {
	var req dto.UpdateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	profileID, _ := auth.ProfileFromContext(c)
	id := c.Params("id")

	ticket, ok, err := h.service.UpdateTicket(c.UserContext(), profileID, id, service.TicketPatch{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
	})
	if err != nil {
		return err
	}
	if !ok {
		return apperrors.NewNotFound("ticket", map[string]any{"id": id})
	}
	return c.JSON(fiber.Map{"data": ticketResponse(ticket)})
}

// DeleteTicket DELETE /api/tickets/:id. Deleting an absent ticket succeeds.
func (h *TicketsHandler) DeleteTicket(c *fiber.Ctx) error {
	profileID, _ := auth.ProfileFromContext(c)
	if err := h.service.DeleteTicket(c.UserContext(), profileID, c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Stats GET /api/tickets/stats.
func (h *TicketsHandler) Stats(c *fiber.Ctx) error {
	profileID, _ := auth.ProfileFromContext(c)
	stats, err := h.service.GetTicketStats(c.UserContext(), profileID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": stats})
}

func ticketResponse(ticket *domain.Ticket) dto.TicketResponse {
	return dto.TicketResponse{
		ID:          ticket.ID,
		Title:       ticket.Title,
		Description: ticket.Description,
		Status:      ticket.Status,
		StatusLabel: view.Style(ticket.Status).Label,
		CreatedAt:   ticket.CreatedAt,
		UpdatedAt:   ticket.UpdatedAt,
	}
}
