package store

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"storyboard-server/internal/kv"
	"storyboard-server/internal/models"
)

// StoryStore is the ordered list of completed stories, persisted to the
// STORY_LIST slot after every change.
type StoryStore struct {
	mu      sync.Mutex
	stories []models.Story
	snap    *snapshot[models.Story]
	logger  *zap.Logger
}

// NewStoryStore creates a store over slots. Call Hydrate once before use.
func NewStoryStore(slots kv.Store, logger *zap.Logger) *StoryStore {
	l := logger.Named("StoryStore")
	return &StoryStore{
		logger: l,
		snap:   &snapshot[models.Story]{slots: slots, key: StoryListKey, logger: l},
	}
}

// Hydrate replaces the list with the stored snapshot. A missing, unreadable
// or corrupt snapshot is logged and leaves the list as it was. A read failure
// is also returned (models.ErrStorageUnavailable) so callers that share the
// slot can refuse to overwrite it.
func (s *StoryStore) Hydrate(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	items, ok, err := s.snap.load(ctx)
	if ok {
		s.stories = items
		s.logger.Info("Stories hydrated", zap.Int("count", len(items)))
	}
	return err
}

// Add puts story at the front of the list and saves.
func (s *StoryStore) Add(ctx context.Context, story models.Story) error {
	story = story.Clone()
	if story.Scenes == nil {
		story.Scenes = []models.Scene{}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stories = append([]models.Story{story}, s.stories...)
	return s.snap.save(ctx, s.stories)
}

// Remove drops every story identified by uri and saves. A nil uri removes
// stories without a representative image. The list is saved even on a miss,
// matching the write-on-every-call behaviour of the app.
func (s *StoryStore) Remove(ctx context.Context, uri *string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.stories[:0:0]
	for i := range s.stories {
		if !s.stories[i].HasURI(uri) {
			kept = append(kept, s.stories[i])
		}
	}
	removed := len(s.stories) - len(kept)
	s.stories = kept
	return removed, s.snap.save(ctx, s.stories)
}

// List returns a deep copy of the stories, most recent first.
func (s *StoryStore) List() []models.Story {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Story, len(s.stories))
	for i, st := range s.stories {
		out[i] = st.Clone()
	}
	return out
}

// Get returns the first story identified by uri.
func (s *StoryStore) Get(uri *string) (models.Story, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.stories {
		if s.stories[i].HasURI(uri) {
			return s.stories[i].Clone(), true
		}
	}
	return models.Story{}, false
}

// UpdateScene applies patch to scene index of the first story identified by uri.
func (s *StoryStore) UpdateScene(ctx context.Context, uri *string, index int, patch models.ScenePatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, err := s.findLocked(uri, index)
	if err != nil {
		return err
	}
	patch.Apply(&st.Scenes[index])
	return s.snap.save(ctx, s.stories)
}

// RemoveScene deletes scene index of the first story identified by uri.
func (s *StoryStore) RemoveScene(ctx context.Context, uri *string, index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, err := s.findLocked(uri, index)
	if err != nil {
		return err
	}
	st.Scenes = append(st.Scenes[:index:index], st.Scenes[index+1:]...)
	return s.snap.save(ctx, s.stories)
}

// Save writes the current list to the slot.
func (s *StoryStore) Save(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snap.save(ctx, s.stories)
}

func (s *StoryStore) findLocked(uri *string, index int) (*models.Story, error) {
	for i := range s.stories {
		if !s.stories[i].HasURI(uri) {
			continue
		}
		st := &s.stories[i]
		if index < 0 || index >= len(st.Scenes) {
			return nil, fmt.Errorf("scene %d of %d: %w", index, len(st.Scenes), models.ErrNotFound)
		}
		return st, nil
	}
	return nil, fmt.Errorf("story: %w", models.ErrNotFound)
}
