package persistence

import (
	"context"
	"sync"
)

// Memory is an in-process Store used for development and tests.
type Memory struct {
	mu      sync.RWMutex
	records map[string]Record
}

// NewMemory returns an empty store.
func NewMemory() *Memory {
	return &Memory{records: make(map[string]Record)}
}

func (m *Memory) Get(_ context.Context, key string) (Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.records[key]
	if !ok {
		return Record{}, ErrNotFound
	}
	return Record{Value: append([]byte(nil), rec.Value...), Revision: rec.Revision}, nil
}

func (m *Memory) Put(_ context.Context, key string, value []byte, expectRevision int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	current, exists := m.records[key]
	if err := checkRevision(current.Revision, expectRevision, exists); err != nil {
		return 0, err
	}
	next := current.Revision + 1
	m.records[key] = Record{Value: append([]byte(nil), value...), Revision: next}
	return next, nil
}

func (m *Memory) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.records, key)
	return nil
}

func (m *Memory) Ping(context.Context) error { return nil }

func (m *Memory) Close() error { return nil }
