package store

import (
	"context"
	"strings"
	"sync"

	"go.uber.org/zap"

	"storyboard-server/internal/kv"
	"storyboard-server/internal/models"
)

// ImageStore is the ordered list of uploaded images, most recent first.
type ImageStore struct {
	mu     sync.Mutex
	images []models.ImageRecord
	snap   *snapshot[models.ImageRecord]
	logger *zap.Logger
}

// NewImageStore creates an ephemeral store; its contents are lost on restart.
func NewImageStore(logger *zap.Logger) *ImageStore {
	return &ImageStore{logger: logger.Named("ImageStore")}
}

// NewPersistentImageStore creates a store that snapshots to the IMAGE_LIST slot.
func NewPersistentImageStore(slots kv.Store, logger *zap.Logger) *ImageStore {
	l := logger.Named("ImageStore")
	return &ImageStore{
		logger: l,
		snap:   &snapshot[models.ImageRecord]{slots: slots, key: ImageListKey, logger: l},
	}
}

// Hydrate replaces the list with the stored snapshot, if one can be read,
// and returns read failures. It is a no-op for ephemeral stores.
func (s *ImageStore) Hydrate(ctx context.Context) error {
	if s.snap == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	items, ok, err := s.snap.load(ctx)
	if ok {
		s.images = items
		s.logger.Info("Images hydrated", zap.Int("count", len(items)))
	}
	return err
}

// Add puts image at the front of the list.
func (s *ImageStore) Add(ctx context.Context, image models.ImageRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.images = append([]models.ImageRecord{image}, s.images...)
	return s.saveLocked(ctx)
}

// Update merges patch into every image whose URI equals uri and reports how
// many matched. A miss is not an error and writes nothing.
func (s *ImageStore) Update(ctx context.Context, uri string, patch models.ImagePatch) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	matched := 0
	for i := range s.images {
		if s.images[i].URI == uri {
			patch.Apply(&s.images[i])
			matched++
		}
	}
	if matched == 0 {
		return 0, nil
	}
	return matched, s.saveLocked(ctx)
}

// Remove drops every image whose URI equals uri and reports how many were removed.
func (s *ImageStore) Remove(ctx context.Context, uri string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.images[:0:0]
	for _, img := range s.images {
		if img.URI != uri {
			kept = append(kept, img)
		}
	}
	removed := len(s.images) - len(kept)
	if removed == 0 {
		return 0, nil
	}
	s.images = kept
	return removed, s.saveLocked(ctx)
}

// List returns a copy of the images, most recently added first.
func (s *ImageStore) List() []models.ImageRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.ImageRecord, len(s.images))
	copy(out, s.images)
	return out
}

// Search returns the images whose title or description contains query,
// ignoring case. An empty query returns the whole list.
func (s *ImageStore) Search(query string) []models.ImageRecord {
	q := strings.ToLower(strings.TrimSpace(query))
	all := s.List()
	if q == "" {
		return all
	}
	out := make([]models.ImageRecord, 0, len(all))
	for _, img := range all {
		if strings.Contains(strings.ToLower(img.Title), q) || strings.Contains(strings.ToLower(img.Description), q) {
			out = append(out, img)
		}
	}
	return out
}

// Save writes the current list to the backing slot.
func (s *ImageStore) Save(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveLocked(ctx)
}

func (s *ImageStore) saveLocked(ctx context.Context) error {
	if s.snap == nil {
		return nil
	}
	return s.snap.save(ctx, s.images)
}
