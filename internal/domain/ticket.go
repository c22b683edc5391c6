package domain

import "time"

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusOpen       TicketStatus = "open"
	TicketStatusInProgress TicketStatus = "in_progress"
	TicketStatusClosed     TicketStatus = "closed"
)

// TicketStatuses lists the valid statuses in display order.
var TicketStatuses = []TicketStatus{TicketStatusOpen, TicketStatusInProgress, TicketStatusClosed}

// Valid reports whether s is one of the known statuses.
func (s TicketStatus) Valid() bool {
	switch s {
	case TicketStatusOpen, TicketStatusInProgress, TicketStatusClosed:
		return true
	}
	return false
}

// Ticket is a unit of trackable work owned by exactly one user.
type Ticket struct {
	ID          string       `json:"id" yaml:"id"`
	Title       string       `json:"title" yaml:"title"`
	Description string       `json:"description" yaml:"description,omitempty"`
	Status      TicketStatus `json:"status" yaml:"status"`
	CreatedAt   time.Time    `json:"createdAt" yaml:"createdAt"`
	UpdatedAt   *time.Time   `json:"updatedAt,omitempty" yaml:"updatedAt,omitempty"`
}

// Clone returns a copy that shares no pointers with t.
func (t Ticket) Clone() Ticket {
	if t.UpdatedAt != nil {
		updated := *t.UpdatedAt
		t.UpdatedAt = &updated
	}
	return t
}

// TicketStats aggregates ticket counts by status.
type TicketStats struct {
	Total      int `json:"total" yaml:"total"`
	Open       int `json:"open" yaml:"open"`
	InProgress int `json:"inProgress" yaml:"inProgress"`
	Closed     int `json:"closed" yaml:"closed"`
}

// CloneTickets deep-copies a ticket sequence. A nil input yields an empty slice.
func CloneTickets(tickets []Ticket) []Ticket {
	out := make([]Ticket, 0, len(tickets))
	for _, t := range tickets {
		out = append(out, t.Clone())
	}
	return out
}
