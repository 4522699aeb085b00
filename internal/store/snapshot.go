package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"storyboard-server/internal/kv"
	"storyboard-server/internal/models"
)

// Slot names used by the stores.
const (
	StoryListKey = "STORY_LIST"
	ImageListKey = "IMAGE_LIST"
	UserKey      = "user"
	TokenKey     = "token"
)

// snapshot serialises a whole list into one slot.
type snapshot[T any] struct {
	slots  kv.Store
	key    string
	logger *zap.Logger
}

func (s *snapshot[T]) save(ctx context.Context, items []T) error {
	if items == nil {
		items = []T{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("%w: marshal %s: %v", models.ErrPersistence, s.key, err)
	}
	if err := s.slots.Set(ctx, s.key, string(data)); err != nil {
		s.logger.Error("Failed to write snapshot", zap.String("key", s.key), zap.Int("items", len(items)), zap.Error(err))
		return fmt.Errorf("%w: write %s: %w", models.ErrPersistence, s.key, err)
	}
	s.logger.Debug("Snapshot written", zap.String("key", s.key), zap.Int("items", len(items)))
	return nil
}

// load returns the stored list. ok is false when the slot is empty, unreadable
// or corrupt. Only a read failure of an existing slot is returned as an error,
// wrapped in models.ErrStorageUnavailable; parse failures are logged.
func (s *snapshot[T]) load(ctx context.Context) (items []T, ok bool, err error) {
	raw, err := s.slots.Get(ctx, s.key)
	if err != nil {
		if errors.Is(err, models.ErrKeyNotFound) {
			s.logger.Debug("No snapshot stored", zap.String("key", s.key))
			return nil, false, nil
		}
		s.logger.Error("Failed to load snapshot", zap.String("key", s.key), zap.Error(err))
		return nil, false, fmt.Errorf("%w: read %s: %w", models.ErrStorageUnavailable, s.key, err)
	}
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		s.logger.Error("Failed to parse snapshot", zap.String("key", s.key), zap.Error(err))
		return nil, false, nil
	}
	return items, true, nil
}
