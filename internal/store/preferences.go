package store

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"

	"github.com/MrSnakeDoc/jot/internal/logger"
	"github.com/MrSnakeDoc/jot/internal/storage"
)

// nullCategory is the stored value meaning "no category filter".
const nullCategory = "null"

// Preferences holds the two persisted view settings: the active category
// filter and the favorites-only toggle. Each change is written through.
type Preferences struct {
	storage storage.Storage
	logger  logger.Logger

	mu                sync.RWMutex
	activeCategory    *string
	showOnlyFavorites bool
}

func NewPreferences(st storage.Storage, log logger.Logger) *Preferences {
	return &Preferences{storage: st, logger: log}
}

// Load reads both keys. Missing keys keep the defaults (no filter, all notes).
func (p *Preferences) Load(ctx context.Context) error {
	category, err := p.storage.Get(ctx, storage.KeySelectedCategory)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("failed to load selected category: %w", err)
	}
	categoryFound := err == nil

	favorites, err := p.storage.Get(ctx, storage.KeyShowOnlyFavorites)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("failed to load favorites filter: %w", err)
	}
	favoritesFound := err == nil

	p.mu.Lock()
	defer p.mu.Unlock()

	p.activeCategory = nil
	if categoryFound && category != nullCategory && category != "" {
		p.activeCategory = &category
	}

	p.showOnlyFavorites = false
	if favoritesFound {
		// Only the exact string "true" enables the filter.
		p.showOnlyFavorites = favorites == "true"
		if favorites != "true" && favorites != "false" {
			p.logger.Warn("unexpected stored favorites filter, treating as false",
				logger.String("value", favorites))
		}
	}
	return nil
}

// ActiveCategory returns the category filter, nil meaning every category.
func (p *Preferences) ActiveCategory() *string {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.activeCategory == nil {
		return nil
	}
	id := *p.activeCategory
	return &id
}

// ShowOnlyFavorites returns the favorites-only toggle.
func (p *Preferences) ShowOnlyFavorites() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.showOnlyFavorites
}

// SetActiveCategory sets (or with nil clears) the category filter.
func (p *Preferences) SetActiveCategory(ctx context.Context, id *string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	value := nullCategory
	p.activeCategory = nil
	if id != nil {
		v := *id
		p.activeCategory = &v
		value = v
	}
	ctx, cancel := persistContext(ctx)
	defer cancel()
	if err := p.storage.Set(ctx, storage.KeySelectedCategory, value); err != nil {
		p.logger.Warn("failed to persist selected category", logger.Error(err))
	}
}

// SetShowOnlyFavorites sets the favorites-only toggle.
func (p *Preferences) SetShowOnlyFavorites(ctx context.Context, on bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.showOnlyFavorites = on
	ctx, cancel := persistContext(ctx)
	defer cancel()
	if err := p.storage.Set(ctx, storage.KeyShowOnlyFavorites, strconv.FormatBool(on)); err != nil {
		p.logger.Warn("failed to persist favorites filter", logger.Error(err))
	}
}
