package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spec-kit/ticketapp/internal/domain"
	"github.com/spec-kit/ticketapp/internal/persistence"
)

// Keys of the two records every profile owns.
const (
	UsersKey      = "ticketapp_users"
	SessionKey    = "ticketapp_session"
	TicketViewKey = "tickets"
)

// ErrConflict is returned by Save when the directory changed since it was loaded.
var ErrConflict = errors.New("repository: directory changed concurrently")

// DirectoryRepository persists the user directory of a profile as one JSON array.
type DirectoryRepository interface {
	Load(ctx context.Context, profileID string) (*domain.Directory, error)
	Save(ctx context.Context, profileID string, dir *domain.Directory) error
	Replace(ctx context.Context, profileID string, users []domain.User) error
}

type directoryRepository struct {
	store persistence.Store
}

// NewDirectoryRepository returns a Store-backed implementation.
func NewDirectoryRepository(store persistence.Store) DirectoryRepository {
	return &directoryRepository{store: store}
}

// Load returns an empty directory with revision 0 when nothing is stored yet.
func (r *directoryRepository) Load(ctx context.Context, profileID string) (*domain.Directory, error) {
	rec, err := r.store.Get(ctx, persistence.ProfileKey(profileID, UsersKey))
	if errors.Is(err, persistence.ErrNotFound) {
		return &domain.Directory{Users: []domain.User{}}, nil
	}
	if err != nil {
		return nil, err
	}

	users, err := DecodeUsers(rec.Value)
	if err != nil {
		return nil, err
	}
	return &domain.Directory{Users: users, Revision: rec.Revision}, nil
}

// Save writes dir only if nobody else saved since it was loaded; on success
// dir.Revision is advanced.
func (r *directoryRepository) Save(ctx context.Context, profileID string, dir *domain.Directory) error {
	payload, err := EncodeUsers(dir.Users)
	if err != nil {
		return err
	}
	rev, err := r.store.Put(ctx, persistence.ProfileKey(profileID, UsersKey), payload, dir.Revision)
	if errors.Is(err, persistence.ErrRevisionMismatch) {
		return ErrConflict
	}
	if err != nil {
		return err
	}
	dir.Revision = rev
	return nil
}

func (r *directoryRepository) Replace(ctx context.Context, profileID string, users []domain.User) error {
	payload, err := EncodeUsers(users)
	if err != nil {
		return err
	}
	_, err = r.store.Put(ctx, persistence.ProfileKey(profileID, UsersKey), payload, persistence.AnyRevision)
	return err
}

// EncodeUsers serializes users in the persisted layout. A nil slice encodes as [].
func EncodeUsers(users []domain.User) ([]byte, error) {
	if users == nil {
		users = []domain.User{}
	}
	return json.Marshal(users)
}

// DecodeUsers parses the persisted layout.
func DecodeUsers(raw []byte) ([]domain.User, error) {
	var users []domain.User
	if err := json.Unmarshal(raw, &users); err != nil {
		return nil, fmt.Errorf("decode %s: %w", UsersKey, err)
	}
	if users == nil {
		users = []domain.User{}
	}
	return users, nil
}
