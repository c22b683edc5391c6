package service

import (
	"context"
	"errors"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/ticketapp/internal/domain"
	"github.com/spec-kit/ticketapp/internal/events"
	"github.com/spec-kit/ticketapp/internal/repository"
	apperrors "github.com/spec-kit/ticketapp/pkg/util/errorutil"
)

// Clock returns the current time. Tests substitute a fixed clock.
type Clock func() time.Time

func utcNow() time.Time {
	return time.Now().UTC()
}

// errNoChange lets a mutation skip the write when nothing changed.
var errNoChange = errors.New("no change")

// directoryAccess is the read-modify-write core shared by the services.
// Every mutation reloads the whole directory, applies fn and saves it with a
// compare-and-swap on the revision, retrying when another writer got there first.
type directoryAccess struct {
	directory  repository.DirectoryRepository
	sessions   repository.SessionRepository
	dispatcher events.Dispatcher
	logger     *zap.Logger
	clock      Clock
	maxRetries int
}

// now is truncated to the millisecond precision records are stored with.
func (d *directoryAccess) now() time.Time {
	return d.clock().UTC().Truncate(time.Millisecond)
}

func (d *directoryAccess) mutate(ctx context.Context, profileID, operation string, fn func(dir *domain.Directory) error) error {
	for attempt := 1; attempt <= d.maxRetries; attempt++ {
		dir, err := d.directory.Load(ctx, profileID)
		if err != nil {
			return err
		}
		if err := fn(dir); err != nil {
			if errors.Is(err, errNoChange) {
				return nil
			}
			return err
		}

		err = d.directory.Save(ctx, profileID, dir)
		if err == nil {
			return nil
		}
		if !errors.Is(err, repository.ErrConflict) {
			return err
		}

		d.logger.Debug("directory write conflict",
			zap.String("profile_id", profileID),
			zap.String("operation", operation),
			zap.Int("attempt", attempt))
		d.publish(ctx, events.Event{
			Type:      events.EventStoreConflict,
			ProfileID: profileID,
			Payload:   events.StoreConflictPayload{Operation: operation, Attempt: attempt},
		})
		if err := ctx.Err(); err != nil {
			return err
		}
	}
	return apperrors.NewConflict("the data changed in another tab, please retry", map[string]any{"operation": operation})
}

// currentUser resolves the session of the profile to its index in dir.
func (d *directoryAccess) currentUser(ctx context.Context, profileID string, dir *domain.Directory) (int, error) {
	session, err := d.sessions.Get(ctx, profileID)
	if err != nil {
		return -1, err
	}
	if session == nil || session.ID == "" {
		return -1, apperrors.NewNoActiveSession()
	}
	idx := dir.FindByID(session.ID)
	if idx < 0 {
		return -1, apperrors.NewNoActiveSession()
	}
	return idx, nil
}

func (d *directoryAccess) publish(ctx context.Context, event events.Event) {
	if d.dispatcher == nil {
		return
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = d.now()
	}
	if err := d.dispatcher.Publish(ctx, event); err != nil {
		d.logger.Warn("event handler failed", zap.String("event", string(event.Type)), zap.Error(err))
	}
}

// timeDerivedID returns now in Unix milliseconds as a string, incremented
// until taken reports it unused.
func timeDerivedID(now time.Time, taken func(string) bool) string {
	ms := now.UnixMilli()
	for {
		id := strconv.FormatInt(ms, 10)
		if !taken(id) {
			return id
		}
		ms++
	}
}

// sleepCtx waits for d or until ctx is done.
func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
