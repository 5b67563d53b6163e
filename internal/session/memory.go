package session

import (
	"context"
	"sync"

	commonErrors "github.com/Alturino/medkit/internal/common/errors"
)

type MemoryStore struct {
	mu sync.Mutex
	id string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) Get(context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.id == "" {
		return "", commonErrors.ErrSessionNotFound
	}
	return m.id, nil
}

func (m *MemoryStore) SetIfAbsent(_ context.Context, id string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.id == "" {
		m.id = id
	}
	return m.id, nil
}

func (m *MemoryStore) Close() error { return nil }
