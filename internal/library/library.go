// Package library hands out the persisted image and story stores of each user.
package library

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"storyboard-server/internal/kv"
	"storyboard-server/internal/models"
	"storyboard-server/internal/store"
)

// Library is one user's drawings and stories.
type Library struct {
	Images  *store.ImageStore
	Stories *store.StoryStore
}

// Manager caches a hydrated Library per user.
type Manager struct {
	slots  kv.Store
	logger *zap.Logger

	mu    sync.Mutex
	users map[string]*Library
}

// NewManager creates a Manager whose libraries persist into slots under
// "user:<id>:".
func NewManager(slots kv.Store, logger *zap.Logger) *Manager {
	return &Manager{
		slots:  slots,
		logger: logger.Named("Library"),
		users:  make(map[string]*Library),
	}
}

// KeyPrefix returns the slot prefix of userID.
func KeyPrefix(userID string) string {
	return "user:" + userID + ":"
}

// For returns the library of userID, hydrating it on first use. When a stored
// snapshot cannot be read the library is not cached and the error wraps
// models.ErrStorageUnavailable; a later call retries.
func (m *Manager) For(ctx context.Context, userID string) (*Library, error) {
	if userID == "" {
		return nil, fmt.Errorf("empty user id: %w", models.ErrInvalidInput)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if lib, ok := m.users[userID]; ok {
		return lib, nil
	}

	slots := kv.Prefixed(m.slots, KeyPrefix(userID))
	log := m.logger.With(zap.String("userID", userID))
	lib := &Library{
		Images:  store.NewPersistentImageStore(slots, log),
		Stories: store.NewStoryStore(slots, log),
	}
	if err := lib.Images.Hydrate(ctx); err != nil {
		return nil, fmt.Errorf("load images of %s: %w", userID, err)
	}
	if err := lib.Stories.Hydrate(ctx); err != nil {
		return nil, fmt.Errorf("load stories of %s: %w", userID, err)
	}
	m.users[userID] = lib
	log.Debug("Library loaded")
	return lib, nil
}
