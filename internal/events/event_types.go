package events

import (
	"time"

	"github.com/spec-kit/ticketapp/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventUserSignedUp  EventType = "user_signed_up"
	EventUserLoggedIn  EventType = "user_logged_in"
	EventUserLoggedOut EventType = "user_logged_out"
	EventLoginFailed   EventType = "login_failed"
	EventTicketCreated EventType = "ticket_created"
	EventTicketUpdated EventType = "ticket_updated"
	EventTicketDeleted EventType = "ticket_deleted"
	EventStoreConflict EventType = "store_conflict"
)

// AllEventTypes lists every event the services publish.
var AllEventTypes = []EventType{
	EventUserSignedUp,
	EventUserLoggedIn,
	EventUserLoggedOut,
	EventLoginFailed,
	EventTicketCreated,
	EventTicketUpdated,
	EventTicketDeleted,
	EventStoreConflict,
}

// Event represents a domain event emitted by services.
type Event struct {
	Type      EventType   `json:"type"`
	ProfileID string      `json:"profile_id"`
	UserID    string      `json:"user_id,omitempty"`
	TicketID  string      `json:"ticket_id,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload,omitempty"`
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	Title  string              `json:"title"`
	Status domain.TicketStatus `json:"status"`
}

// TicketUpdatedPayload payload.
type TicketUpdatedPayload struct {
	OldStatus domain.TicketStatus `json:"old_status"`
	NewStatus domain.TicketStatus `json:"new_status"`
}

// StoreConflictPayload payload.
type StoreConflictPayload struct {
	Operation string `json:"operation"`
	Attempt   int    `json:"attempt"`
}
