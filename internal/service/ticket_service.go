package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/ticketapp/internal/config"
	"github.com/spec-kit/ticketapp/internal/domain"
	"github.com/spec-kit/ticketapp/internal/events"
	"github.com/spec-kit/ticketapp/internal/repository"
	"github.com/spec-kit/ticketapp/internal/validation"
	apperrors "github.com/spec-kit/ticketapp/pkg/util/errorutil"
)

// TicketService is the ticket store of the current session's user.
type TicketService struct {
	*directoryAccess
}

// TicketDependencies bundles repositories for ticket service.
type TicketDependencies struct {
	DirectoryRepo repository.DirectoryRepository
	SessionRepo   repository.SessionRepository
	Dispatcher    events.Dispatcher
	Logger        *zap.Logger
	Clock         Clock
}

// TicketInput describes a ticket to create. Empty ID and nil CreatedAt are assigned.
type TicketInput struct {
	ID          string
	Title       string
	Description string
	Status      domain.TicketStatus
	CreatedAt   *time.Time
}

// TicketPatch lists the fields to overwrite; nil fields are kept.
type TicketPatch struct {
	Title       *string
	Description *string
	Status      *domain.TicketStatus
}

// NewTicketService constructs the service.
func NewTicketService(cfg config.Config, deps TicketDependencies) *TicketService {
	return &TicketService{
		directoryAccess: newDirectoryAccess(cfg, deps.DirectoryRepo, deps.SessionRepo, deps.Dispatcher, deps.Logger, deps.Clock),
	}
}

// LoadTickets returns a copy of the user's tickets, initializing a missing
// collection to empty.
func (s *TicketService) LoadTickets(ctx context.Context, profileID string) ([]domain.Ticket, error) {
	dir, err := s.directory.Load(ctx, profileID)
	if err != nil {
		return nil, err
	}
	idx, err := s.currentUser(ctx, profileID, dir)
	if err != nil {
		return nil, err
	}
	if dir.Users[idx].Tickets != nil {
		return domain.CloneTickets(dir.Users[idx].Tickets), nil
	}

	userID := dir.Users[idx].ID
	err = s.mutate(ctx, profileID, "init_tickets", func(dir *domain.Directory) error {
		i := dir.FindByID(userID)
		if i < 0 {
			return apperrors.NewNoActiveSession()
		}
		if dir.Users[i].Tickets != nil {
			return errNoChange
		}
		dir.Users[i].Tickets = []domain.Ticket{}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return []domain.Ticket{}, nil
}

// SaveTickets replaces the user's ticket collection with a copy of tickets.
func (s *TicketService) SaveTickets(ctx context.Context, profileID string, tickets []domain.Ticket) error {
	return s.mutateUser(ctx, profileID, "save_tickets", func(user *domain.User) error {
		user.Tickets = domain.CloneTickets(tickets)
		return nil
	})
}

// AddTicket validates in, assigns id and creation time, and appends it.
func (s *TicketService) AddTicket(ctx context.Context, profileID string, in TicketInput) (*domain.Ticket, error) {
	if err := validateTicket(in.Title, string(in.Status)); err != nil {
		return nil, err
	}
	status := in.Status
	if status == "" {
		status = domain.TicketStatusOpen
	}

	var created domain.Ticket
	err := s.mutateUser(ctx, profileID, "add_ticket", func(user *domain.User) error {
		now := s.now()
		created = domain.Ticket{
			ID:          in.ID,
			Title:       strings.TrimSpace(in.Title),
			Description: strings.TrimSpace(in.Description),
			Status:      status,
			CreatedAt:   now,
		}
		if created.ID == "" {
			created.ID = timeDerivedID(now, func(id string) bool { return indexOfTicket(user.Tickets, id) >= 0 })
		}
		if in.CreatedAt != nil {
			created.CreatedAt = in.CreatedAt.UTC().Truncate(time.Millisecond)
		}
		if user.Tickets == nil {
			user.Tickets = []domain.Ticket{}
		}
		user.Tickets = append(user.Tickets, created)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.Event{
		Type:      events.EventTicketCreated,
		ProfileID: profileID,
		TicketID:  created.ID,
		Payload:   events.TicketCreatedPayload{Title: created.Title, Status: created.Status},
	})
	out := created.Clone()
	return &out, nil
}

// UpdateTicket merges patch into the ticket and stamps updatedAt. It reports
// false, without error, when the user has no ticket with id.
func (s *TicketService) UpdateTicket(ctx context.Context, profileID, id string, patch TicketPatch) (*domain.Ticket, bool, error) {
	if patch.Title != nil {
		if res := validation.Title(*patch.Title); !res.IsValid {
			return nil, false, apperrors.NewValidationError(res.Message, map[string]any{string(validation.FieldTitle): res.Message})
		}
	}
	if patch.Status != nil {
		if res := validation.Status(string(*patch.Status)); !res.IsValid || *patch.Status == "" {
			msg := validation.Status("invalid").Message
			return nil, false, apperrors.NewValidationError(msg, map[string]any{string(validation.FieldStatus): msg})
		}
	}

	var (
		updated   domain.Ticket
		oldStatus domain.TicketStatus
		found     bool
	)
	err := s.mutateUser(ctx, profileID, "update_ticket", func(user *domain.User) error {
		i := indexOfTicket(user.Tickets, id)
		if i < 0 {
			found = false
			return errNoChange
		}
		found = true
		t := user.Tickets[i]
		oldStatus = t.Status
		if patch.Title != nil {
			t.Title = strings.TrimSpace(*patch.Title)
		}
		if patch.Description != nil {
			t.Description = strings.TrimSpace(*patch.Description)
		}
		if patch.Status != nil {
			t.Status = *patch.Status
		}
		now := s.now()
		t.UpdatedAt = &now
		user.Tickets[i] = t
		updated = t
		return nil
	})
	if err != nil || !found {
		return nil, false, err
	}

	s.publish(ctx, events.Event{
		Type:      events.EventTicketUpdated,
		ProfileID: profileID,
		TicketID:  id,
		Payload:   events.TicketUpdatedPayload{OldStatus: oldStatus, NewStatus: updated.Status},
	})
	out := updated.Clone()
	return &out, true, nil
}

// DeleteTicket removes the ticket with id. Deleting an absent ticket succeeds.
func (s *TicketService) DeleteTicket(ctx context.Context, profileID, id string) error {
	removed := false
	err := s.mutateUser(ctx, profileID, "delete_ticket", func(user *domain.User) error {
		i := indexOfTicket(user.Tickets, id)
		if i < 0 {
			removed = false
			return errNoChange
		}
		user.Tickets = append(user.Tickets[:i:i], user.Tickets[i+1:]...)
		removed = true
		return nil
	})
	if err != nil {
		return err
	}
	if removed {
		s.publish(ctx, events.Event{Type: events.EventTicketDeleted, ProfileID: profileID, TicketID: id})
	}
	return nil
}

// GetTicketByID returns a copy of the ticket or NOT_FOUND.
func (s *TicketService) GetTicketByID(ctx context.Context, profileID, id string) (*domain.Ticket, error) {
	tickets, err := s.LoadTickets(ctx, profileID)
	if err != nil {
		return nil, err
	}
	i := indexOfTicket(tickets, id)
	if i < 0 {
		return nil, apperrors.NewNotFound("ticket", map[string]any{"id": id})
	}
	out := tickets[i]
	return &out, nil
}

// GetTicketStats counts the user's tickets by status.
func (s *TicketService) GetTicketStats(ctx context.Context, profileID string) (domain.TicketStats, error) {
	tickets, err := s.LoadTickets(ctx, profileID)
	if err != nil {
		return domain.TicketStats{}, err
	}
	return ComputeStats(tickets), nil
}

// ListActive returns the tickets that are not closed, in stored order.
func (s *TicketService) ListActive(ctx context.Context, profileID string) ([]domain.Ticket, error) {
	tickets, err := s.LoadTickets(ctx, profileID)
	if err != nil {
		return nil, err
	}
	active := make([]domain.Ticket, 0, len(tickets))
	for _, t := range tickets {
		if t.Status != domain.TicketStatusClosed {
			active = append(active, t)
		}
	}
	return active, nil
}

// Recent returns up to n tickets, newest first.
func (s *TicketService) Recent(ctx context.Context, profileID string, n int) ([]domain.Ticket, error) {
	tickets, err := s.LoadTickets(ctx, profileID)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(tickets, func(i, j int) bool {
		return tickets[i].CreatedAt.After(tickets[j].CreatedAt)
	})
	if n >= 0 && len(tickets) > n {
		tickets = tickets[:n]
	}
	return tickets, nil
}

// ComputeStats counts tickets by status in one pass.
func ComputeStats(tickets []domain.Ticket) domain.TicketStats {
	stats := domain.TicketStats{Total: len(tickets)}
	for _, t := range tickets {
		switch t.Status {
		case domain.TicketStatusOpen:
			stats.Open++
		case domain.TicketStatusInProgress:
			stats.InProgress++
		case domain.TicketStatusClosed:
			stats.Closed++
		}
	}
	return stats
}

func (s *TicketService) mutateUser(ctx context.Context, profileID, operation string, fn func(user *domain.User) error) error {
	return s.mutate(ctx, profileID, operation, func(dir *domain.Directory) error {
		idx, err := s.currentUser(ctx, profileID, dir)
		if err != nil {
			return err
		}
		return fn(&dir.Users[idx])
	})
}

func validateTicket(title, status string) error {
	failures := validation.ValidateForm(validation.Form{
		validation.FieldTitle:  title,
		validation.FieldStatus: status,
	}, validation.FieldTitle, validation.FieldStatus)
	if len(failures) > 0 {
		return apperrors.NewValidationError("Please fix the errors in the form", validation.Details(failures))
	}
	return nil
}

func indexOfTicket(tickets []domain.Ticket, id string) int {
	for i := range tickets {
		if tickets[i].ID == id {
			return i
		}
	}
	return -1
}
