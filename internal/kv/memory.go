package kv

import (
	"context"
	"sync"

	"storyboard-server/internal/models"
)

// Compile-time check to ensure MemoryStore implements Store
var _ Store = (*MemoryStore)(nil)

// MemoryStore keeps slots in process memory. It is the default backend for
// local runs and the backend used in tests.
type MemoryStore struct {
	mu      sync.RWMutex
	data    map[string]string
	failErr error
	writes  int
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string]string)}
}

// FailWith makes every subsequent call return err. Pass nil to recover.
func (m *MemoryStore) FailWith(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failErr = err
}

// Writes returns the number of successful Set calls.
func (m *MemoryStore) Writes() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.writes
}

func (m *MemoryStore) Get(_ context.Context, key string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.failErr != nil {
		return "", m.failErr
	}
	v, ok := m.data[key]
	if !ok {
		return "", models.ErrKeyNotFound
	}
	return v, nil
}

func (m *MemoryStore) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failErr != nil {
		return m.failErr
	}
	m.data[key] = value
	m.writes++
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failErr != nil {
		return m.failErr
	}
	for _, k := range keys {
		delete(m.data, k)
	}
	return nil
}
