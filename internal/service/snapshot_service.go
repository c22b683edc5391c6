package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/ticketapp/internal/domain"
	"github.com/spec-kit/ticketapp/internal/repository"
	apperrors "github.com/spec-kit/ticketapp/pkg/util/errorutil"
)

// Snapshot is the full persisted state of one profile, keyed like the
// records it was read from.
type Snapshot struct {
	Users   []domain.User   `json:"ticketapp_users" yaml:"ticketapp_users"`
	Session *domain.Session `json:"ticketapp_session" yaml:"ticketapp_session"`
}

// UserSummary is a password-free listing row.
type UserSummary struct {
	ID        string             `json:"id" yaml:"id"`
	Name      string             `json:"name" yaml:"name"`
	Email     string             `json:"email" yaml:"email"`
	CreatedAt time.Time          `json:"createdAt" yaml:"createdAt"`
	LoggedIn  bool               `json:"loggedIn" yaml:"loggedIn"`
	Stats     domain.TicketStats `json:"stats" yaml:"stats"`
}

// SnapshotService exports and imports whole profiles for operators.
type SnapshotService struct {
	directory repository.DirectoryRepository
	sessions  repository.SessionRepository
	logger    *zap.Logger
}

// NewSnapshotService builds the service.
func NewSnapshotService(directory repository.DirectoryRepository, sessions repository.SessionRepository, logger *zap.Logger) *SnapshotService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SnapshotService{directory: directory, sessions: sessions, logger: logger}
}

// Export reads both records of the profile.
func (s *SnapshotService) Export(ctx context.Context, profileID string) (*Snapshot, error) {
	dir, err := s.directory.Load(ctx, profileID)
	if err != nil {
		return nil, err
	}
	session, err := s.sessions.Get(ctx, profileID)
	if err != nil {
		return nil, err
	}
	return &Snapshot{Users: dir.Users, Session: session}, nil
}

// Import replaces the profile's records with snap. Emails must be unique and
// a session must refer to an imported user.
func (s *SnapshotService) Import(ctx context.Context, profileID string, snap Snapshot) error {
	if err := ValidateSnapshot(snap); err != nil {
		return err
	}
	if err := s.directory.Replace(ctx, profileID, snap.Users); err != nil {
		return err
	}
	if snap.Session == nil {
		if err := s.sessions.Delete(ctx, profileID); err != nil {
			return err
		}
	} else if err := s.sessions.Put(ctx, profileID, *snap.Session); err != nil {
		return err
	}
	s.logger.Info("imported profile snapshot",
		zap.String("profile_id", profileID),
		zap.Int("users", len(snap.Users)),
		zap.Bool("session", snap.Session != nil))
	return nil
}

// Users lists the profile's users with their ticket counts.
func (s *SnapshotService) Users(ctx context.Context, profileID string) ([]UserSummary, error) {
	snap, err := s.Export(ctx, profileID)
	if err != nil {
		return nil, err
	}
	out := make([]UserSummary, 0, len(snap.Users))
	for _, u := range snap.Users {
		out = append(out, UserSummary{
			ID:        u.ID,
			Name:      u.Name,
			Email:     u.Email,
			CreatedAt: u.CreatedAt,
			LoggedIn:  snap.Session != nil && snap.Session.ID == u.ID,
			Stats:     ComputeStats(u.Tickets),
		})
	}
	return out, nil
}

// StatsByEmail counts the tickets of the user registered with email.
func (s *SnapshotService) StatsByEmail(ctx context.Context, profileID, email string) (domain.TicketStats, error) {
	dir, err := s.directory.Load(ctx, profileID)
	if err != nil {
		return domain.TicketStats{}, err
	}
	idx := dir.FindByEmail(email)
	if idx < 0 {
		return domain.TicketStats{}, apperrors.NewNotFound("user", map[string]any{"email": email})
	}
	return ComputeStats(dir.Users[idx].Tickets), nil
}

// ValidateSnapshot rejects duplicate emails, unknown statuses and a session
// without a matching user.
func ValidateSnapshot(snap Snapshot) error {
	emails := make(map[string]struct{}, len(snap.Users))
	ids := make(map[string]struct{}, len(snap.Users))
	for _, u := range snap.Users {
		if _, dup := emails[u.Email]; dup {
			return apperrors.NewValidationError(fmt.Sprintf("duplicate email %q", u.Email), map[string]any{"email": u.Email})
		}
		emails[u.Email] = struct{}{}
		ids[u.ID] = struct{}{}
		for _, t := range u.Tickets {
			if !t.Status.Valid() {
				return apperrors.NewValidationError(fmt.Sprintf("ticket %s has invalid status %q", t.ID, t.Status), map[string]any{"ticket": t.ID})
			}
		}
	}
	if snap.Session != nil {
		if _, ok := ids[snap.Session.ID]; !ok {
			return apperrors.NewValidationError("session refers to an unknown user", map[string]any{"session": snap.Session.ID})
		}
	}
	return nil
}
