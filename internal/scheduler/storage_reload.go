package scheduler

import (
	"context"
	"time"

	"github.com/MrSnakeDoc/jot/internal/logger"
)

// Reloader re-reads persisted state after another process changed it.
type Reloader interface {
	Reload(ctx context.Context) error
}

// StorageReloader reloads the notebook when the data file changes on disk.
// Bursts of change notifications within the debounce window collapse into
// one reload.
type StorageReloader struct {
	target   Reloader
	logger   logger.Logger
	debounce time.Duration
	trigger  chan struct{}
	stopCh   chan struct{}
}

func NewStorageReloader(target Reloader, log logger.Logger, debounce time.Duration) *StorageReloader {
	return &StorageReloader{
		target:   target,
		logger:   log,
		debounce: debounce,
		trigger:  make(chan struct{}, 1),
		stopCh:   make(chan struct{}),
	}
}

// Notify asks for a reload. It never blocks; pending requests coalesce.
func (r *StorageReloader) Notify(keys []string) {
	r.logger.Debug("data file changed externally", logger.Strings("keys", keys))
	select {
	case r.trigger <- struct{}{}:
	default:
	}
}

// Start runs the reload loop until Stop or ctx is done.
func (r *StorageReloader) Start(ctx context.Context) {
	go func() {
		for {
			select {
			case <-r.trigger:
				if r.debounce > 0 {
					select {
					case <-time.After(r.debounce):
					case <-r.stopCh:
						return
					case <-ctx.Done():
						return
					}
					// Drop notifications that arrived while waiting.
					select {
					case <-r.trigger:
					default:
					}
				}
				r.logger.Info("reloading notebook after external change")
				if err := r.target.Reload(ctx); err != nil {
					r.logger.Error("failed to reload notebook", logger.Error(err))
				}
			case <-r.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Stop stops the reload loop.
func (r *StorageReloader) Stop() {
	close(r.stopCh)
}
