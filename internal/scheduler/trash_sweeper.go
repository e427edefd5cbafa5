package scheduler

import (
	"context"
	"time"

	"github.com/MrSnakeDoc/jot/internal/logger"
)

// Purger removes trashed notes older than the retention window.
type Purger interface {
	PurgeExpired(ctx context.Context) int
}

// TrashSweeper runs the load-time purge periodically, since a long-running
// process never reloads.
type TrashSweeper struct {
	purger   Purger
	logger   logger.Logger
	interval time.Duration
	onPurge  func(n int)
	stopCh   chan struct{}
}

// NewTrashSweeper creates a sweeper. An interval <= 0 disables the periodic
// sweep; Start then only sweeps once. onPurge, when set, receives the number
// of notes removed by every sweep that removed something.
func NewTrashSweeper(p Purger, log logger.Logger, interval time.Duration, onPurge func(n int)) *TrashSweeper {
	return &TrashSweeper{
		purger:   p,
		logger:   log,
		interval: interval,
		onPurge:  onPurge,
		stopCh:   make(chan struct{}),
	}
}

// Start sweeps once, then every interval until Stop or ctx is done.
func (s *TrashSweeper) Start(ctx context.Context) error {
	s.Sweep(ctx)

	if !s.Periodic() {
		s.logger.Info("periodic trash sweep disabled")
		return nil
	}

	ticker := time.NewTicker(s.interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				s.Sweep(ctx)
			case <-s.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	return nil
}

// Periodic reports whether Start keeps sweeping after the first pass.
func (s *TrashSweeper) Periodic() bool {
	return s.interval > 0
}

// Stop stops the sweeper.
func (s *TrashSweeper) Stop() {
	close(s.stopCh)
}

// Sweep purges expired notes and returns how many were removed.
func (s *TrashSweeper) Sweep(ctx context.Context) int {
	n := s.purger.PurgeExpired(ctx)
	if n == 0 {
		s.logger.Debug("no trashed notes to purge")
		return 0
	}

	s.logger.Info("purged expired notes from trash",
		logger.Int("purged", n),
		logger.Duration("interval", s.interval))
	if s.onPurge != nil {
		s.onPurge(n)
	}
	return n
}
