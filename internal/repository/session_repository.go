package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spec-kit/ticketapp/internal/domain"
	"github.com/spec-kit/ticketapp/internal/persistence"
)

// SessionRepository persists the single session record of a profile.
type SessionRepository interface {
	// Get returns nil and no error when the profile has no session.
	Get(ctx context.Context, profileID string) (*domain.Session, error)
	Put(ctx context.Context, profileID string, session domain.Session) error
	Delete(ctx context.Context, profileID string) error
	// DeleteTicketView drops the cached ticket view left behind by older clients.
	DeleteTicketView(ctx context.Context, profileID string) error
}

type sessionRepository struct {
	store persistence.Store
}

// NewSessionRepository returns a Store-backed implementation.
func NewSessionRepository(store persistence.Store) SessionRepository {
	return &sessionRepository{store: store}
}

func (r *sessionRepository) Get(ctx context.Context, profileID string) (*domain.Session, error) {
	rec, err := r.store.Get(ctx, persistence.ProfileKey(profileID, SessionKey))
	if errors.Is(err, persistence.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var session domain.Session
	if err := json.Unmarshal(rec.Value, &session); err != nil {
		return nil, fmt.Errorf("decode %s: %w", SessionKey, err)
	}
	return &session, nil
}

func (r *sessionRepository) Put(ctx context.Context, profileID string, session domain.Session) error {
	payload, err := json.Marshal(session)
	if err != nil {
		return err
	}
	_, err = r.store.Put(ctx, persistence.ProfileKey(profileID, SessionKey), payload, persistence.AnyRevision)
	return err
}

func (r *sessionRepository) Delete(ctx context.Context, profileID string) error {
	return r.store.Delete(ctx, persistence.ProfileKey(profileID, SessionKey))
}

func (r *sessionRepository) DeleteTicketView(ctx context.Context, profileID string) error {
	return r.store.Delete(ctx, persistence.ProfileKey(profileID, TicketViewKey))
}
