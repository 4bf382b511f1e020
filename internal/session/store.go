package session

import (
	"context"
	"sync"

	"kb-chat/internal/common/errors"
)

// Store persists sessions between runs of the client.
type Store interface {
	Load(ctx context.Context, id string) (*Session, error)
	Save(ctx context.Context, s *Session) error
	Delete(ctx context.Context, id string) error
}

// MemoryStore keeps snapshots in process memory.
type MemoryStore struct {
	mu    sync.RWMutex
	items map[string]Snapshot
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{items: make(map[string]Snapshot)}
}

func (m *MemoryStore) Load(_ context.Context, id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	snap, ok := m.items[id]
	if !ok {
		return nil, errors.NewSessionNotFoundError(id)
	}
	return FromSnapshot(snap), nil
}

func (m *MemoryStore) Save(_ context.Context, s *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[s.ID()] = s.Snapshot()
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, id)
	return nil
}

// LoadOrNew loads id, or starts a fresh session when id is empty or unknown.
func LoadOrNew(ctx context.Context, store Store, id string) (*Session, error) {
	if id == "" {
		return New(), nil
	}
	s, err := store.Load(ctx, id)
	if err == nil {
		return s, nil
	}
	if errors.HasCode(err, errors.ErrCodeSessionNotFound) {
		fresh := New()
		fresh.id = id
		return fresh, nil
	}
	return nil, err
}
