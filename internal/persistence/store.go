package persistence

import (
	"context"
	"errors"
	"strings"
)

// AnyRevision makes Put overwrite regardless of the stored revision.
const AnyRevision int64 = -1

var (
	// ErrNotFound is returned when a key has no stored value.
	ErrNotFound = errors.New("persistence: key not found")
	// ErrRevisionMismatch is returned when a conditional Put lost a race.
	ErrRevisionMismatch = errors.New("persistence: revision mismatch")
)

// Record is a stored value together with its revision. Revisions start at 1.
type Record struct {
	Value    []byte
	Revision int64
}

// Store is the key-value port the repositories persist through.
//
// Put with expectRevision 0 only succeeds if the key is absent; a positive
// expectRevision must equal the current revision; AnyRevision always writes.
// Put returns the new revision.
type Store interface {
	Get(ctx context.Context, key string) (Record, error)
	Put(ctx context.Context, key string, value []byte, expectRevision int64) (int64, error)
	Delete(ctx context.Context, key string) error
	Ping(ctx context.Context) error
	Close() error
}

// ProfileKey namespaces key under a browser profile.
func ProfileKey(profileID, key string) string {
	return "profile:" + profileID + ":" + key
}

// SplitProfileKey reverses ProfileKey.
func SplitProfileKey(full string) (profileID, key string, ok bool) {
	rest, found := strings.CutPrefix(full, "profile:")
	if !found {
		return "", "", false
	}
	profileID, key, ok = strings.Cut(rest, ":")
	return profileID, key, ok
}

func checkRevision(current, expect int64, exists bool) error {
	switch {
	case expect == AnyRevision:
		return nil
	case expect == 0 && exists:
		return ErrRevisionMismatch
	case expect > 0 && (!exists || current != expect):
		return ErrRevisionMismatch
	}
	return nil
}
