package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/MrSnakeDoc/jot/internal/domain"
	"github.com/MrSnakeDoc/jot/internal/logger"
	"github.com/MrSnakeDoc/jot/internal/storage"
)

// CategoryStore owns the category collection, in creation order.
type CategoryStore struct {
	storage storage.Storage
	logger  logger.Logger
	now     func() time.Time

	mu         sync.RWMutex
	categories []domain.Category
	ready      bool
	lastID     int64
}

func NewCategoryStore(st storage.Storage, log logger.Logger, opts Options) *CategoryStore {
	opts = opts.withDefaults()
	return &CategoryStore{
		storage:    st,
		logger:     log,
		now:        opts.Now,
		categories: []domain.Category{},
	}
}

// Load reads the persisted categories. Same failure policy as NoteStore.Load.
func (s *CategoryStore) Load(ctx context.Context) error {
	blob, err := s.storage.Get(ctx, storage.KeyCategories)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("failed to load categories: %w", err)
	}

	categories := []domain.Category{}
	if err == nil {
		decoded, derr := decodeCategories(blob)
		if derr != nil {
			s.logger.Warn("stored categories unreadable, starting empty", logger.Error(derr))
		} else {
			categories = decoded
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.categories = categories
	s.lastID = 0
	for _, c := range s.categories {
		if id := domain.IDMillis(c.ID); id > s.lastID {
			s.lastID = id
		}
	}
	s.ready = true

	s.logger.Info("categories loaded", logger.Int("count", len(s.categories)))
	return nil
}

// Ready reports whether the initial load has completed.
func (s *CategoryStore) Ready() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ready
}

func (s *CategoryStore) persistLocked(ctx context.Context) {
	if !s.ready {
		return
	}
	blob, err := encodeCategories(s.categories)
	if err != nil {
		s.logger.Error("failed to encode categories", logger.Error(err))
		return
	}
	ctx, cancel := persistContext(ctx)
	defer cancel()
	if err := s.storage.Set(ctx, storage.KeyCategories, blob); err != nil {
		s.logger.Warn("failed to persist categories", logger.Error(err))
	}
}

func (s *CategoryStore) indexLocked(id string) int {
	for i := range s.categories {
		if s.categories[i].ID == id {
			return i
		}
	}
	return -1
}

// Categories returns a copy of the collection.
func (s *CategoryStore) Categories() []domain.Category {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Category, len(s.categories))
	copy(out, s.categories)
	return out
}

// Get returns the category with the given id.
func (s *CategoryStore) Get(id string) (domain.Category, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if i := s.indexLocked(id); i >= 0 {
		return s.categories[i], true
	}
	return domain.Category{}, false
}

// Len returns the number of categories.
// Has reports whether a category with the given id exists.
func (s *CategoryStore) Has(id string) bool {
	_, ok := s.Get(id)
	return ok
}

func (s *CategoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.categories)
}

// AddCategory appends a category. An empty color falls back to
// domain.DefaultCategoryColor.
func (s *CategoryStore) AddCategory(ctx context.Context, in domain.CategoryInput) domain.Category {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := domain.Millis(s.now())
	id := now
	if id <= s.lastID {
		id = s.lastID + 1
	}
	s.lastID = id

	c := domain.Category{
		ID:        domain.FormatID(id),
		Name:      in.Name,
		Color:     in.Color,
		CreatedAt: now,
	}
	if c.Color == "" {
		c.Color = domain.DefaultCategoryColor
	}

	s.categories = append(s.categories, c)
	s.persistLocked(ctx)
	return c
}

// UpdateCategory merges patch into the category.
func (s *CategoryStore) UpdateCategory(ctx context.Context, id string, patch domain.CategoryPatch) (domain.Category, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexLocked(id)
	if i < 0 {
		return domain.Category{}, false
	}
	patch.Apply(&s.categories[i])
	s.persistLocked(ctx)
	return s.categories[i], true
}

// DeleteCategory removes the category. Notes that reference it keep the
// now dangling id.
func (s *CategoryStore) DeleteCategory(ctx context.Context, id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexLocked(id)
	if i < 0 {
		return false
	}
	s.categories = append(s.categories[:i:i], s.categories[i+1:]...)
	s.persistLocked(ctx)
	return true
}

// Import appends categories whose id is not already present.
func (s *CategoryStore) Import(ctx context.Context, categories []domain.Category) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	added := 0
	for _, c := range categories {
		if c.ID == "" || s.indexLocked(c.ID) >= 0 {
			continue
		}
		if c.Color == "" {
			c.Color = domain.DefaultCategoryColor
		}
		s.categories = append(s.categories, c)
		if id := domain.IDMillis(c.ID); id > s.lastID {
			s.lastID = id
		}
		added++
	}
	if added > 0 {
		s.persistLocked(ctx)
	}
	return added
}
