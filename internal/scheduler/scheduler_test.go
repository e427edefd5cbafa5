package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/MrSnakeDoc/jot/internal/domain"
	"github.com/MrSnakeDoc/jot/internal/logger"
	"github.com/MrSnakeDoc/jot/internal/storage"
	"github.com/MrSnakeDoc/jot/internal/store"
)

func TestTrashSweeper_Sweep(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	clock := func() time.Time { return now }

	notes := store.NewNoteStore(storage.NewMemory(), logger.NewNop(), store.Options{Now: clock})
	if err := notes.Load(ctx); err != nil {
		t.Fatal(err)
	}

	recent := notes.AddNote(ctx, domain.NoteInput{Title: "recently deleted"})
	old := notes.AddNote(ctx, domain.NoteInput{Title: "deleted long ago"})
	active := notes.AddNote(ctx, domain.NoteInput{Title: "active"})

	now = now.Add(-35 * 24 * time.Hour)
	notes.DeleteNote(ctx, old.ID)
	now = now.Add(25 * 24 * time.Hour)
	notes.DeleteNote(ctx, recent.ID)
	now = now.Add(10 * 24 * time.Hour)

	var reported int
	sweeper := NewTrashSweeper(notes, logger.NewNop(), time.Hour, func(n int) { reported += n })

	if n := sweeper.Sweep(ctx); n != 1 {
		t.Fatalf("Sweep() = %d, want 1", n)
	}
	if reported != 1 {
		t.Errorf("onPurge received %d, want 1", reported)
	}
	if _, ok := notes.Get(old.ID); ok {
		t.Error("note trashed 35 days ago was not purged")
	}
	if _, ok := notes.Get(recent.ID); !ok {
		t.Error("note trashed 10 days ago was purged")
	}
	if _, ok := notes.Get(active.ID); !ok {
		t.Error("active note was purged")
	}

	if n := sweeper.Sweep(ctx); n != 0 {
		t.Errorf("second Sweep() = %d, want 0", n)
	}
}

type purgeCounter struct{ calls atomic.Int32 }

func (p *purgeCounter) PurgeExpired(context.Context) int {
	p.calls.Add(1)
	return 0
}

func TestTrashSweeper_StartSweepsImmediatelyAndPeriodically(t *testing.T) {
	p := &purgeCounter{}
	sweeper := NewTrashSweeper(p, logger.NewNop(), 10*time.Millisecond, nil)

	if err := sweeper.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	defer sweeper.Stop()

	if p.calls.Load() < 1 {
		t.Fatal("Start() should sweep once before returning")
	}

	deadline := time.Now().Add(2 * time.Second)
	for p.calls.Load() < 3 {
		if time.Now().After(deadline) {
			t.Fatalf("sweeper ran %d times, want periodic sweeps", p.calls.Load())
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestTrashSweeper_ZeroIntervalDisablesPeriodicSweep(t *testing.T) {
	for _, interval := range []time.Duration{0, -time.Second} {
		p := &purgeCounter{}
		sweeper := NewTrashSweeper(p, logger.NewNop(), interval, nil)
		if sweeper.Periodic() {
			t.Errorf("interval %v: Periodic() = true, want false", interval)
		}

		if err := sweeper.Start(context.Background()); err != nil {
			t.Fatal(err)
		}
		time.Sleep(50 * time.Millisecond)
		sweeper.Stop()

		if got := p.calls.Load(); got != 1 {
			t.Errorf("interval %v: sweeper ran %d times, want only the initial sweep", interval, got)
		}
	}
}

type reloadCounter struct{ calls atomic.Int32 }

func (r *reloadCounter) Reload(context.Context) error {
	r.calls.Add(1)
	return nil
}

func TestStorageReloader_CoalescesNotifications(t *testing.T) {
	target := &reloadCounter{}
	r := NewStorageReloader(target, logger.NewNop(), 50*time.Millisecond)
	r.Start(context.Background())
	defer r.Stop()

	for i := 0; i < 5; i++ {
		r.Notify([]string{storage.KeyNotes})
	}

	deadline := time.Now().Add(2 * time.Second)
	for target.calls.Load() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("reload never happened")
		}
		time.Sleep(5 * time.Millisecond)
	}
	time.Sleep(100 * time.Millisecond)

	if got := target.calls.Load(); got != 1 {
		t.Errorf("Reload() called %d times, want 1 for a burst", got)
	}
}
