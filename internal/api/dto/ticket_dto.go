package dto

import (
	"time"

	"github.com/spec-kit/ticketapp/internal/domain"
)

// CreateTicketRequest payload.
type CreateTicketRequest struct {
	Title       string              `json:"title" form:"title"`
	Description string              `json:"description" form:"description"`
	Status      domain.TicketStatus `json:"status" form:"status"`
}

// UpdateTicketRequest payload; absent fields are kept.
type UpdateTicketRequest struct {
	Title       *string              `json:"title"`
	Description *string              `json:"description"`
	Status      *domain.TicketStatus `json:"status"`
}

// TicketResponse mirrors the persisted ticket layout plus display fields.
type TicketResponse struct {
	ID          string              `json:"id"`
	Title       string              `json:"title"`
	Description string              `json:"description,omitempty"`
	Status      domain.TicketStatus `json:"status"`
	StatusLabel string              `json:"statusLabel"`
	CreatedAt   time.Time           `json:"createdAt"`
	UpdatedAt   *time.Time          `json:"updatedAt,omitempty"`
}
