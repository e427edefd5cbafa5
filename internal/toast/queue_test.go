package toast

import (
	"sync/atomic"
	"testing"
	"time"
)

func messages(list []Toast) []string {
	out := make([]string, len(list))
	for i, t := range list {
		out[i] = t.Message
	}
	return out
}

func TestQueue_CapEvictsOldest(t *testing.T) {
	q := NewQueue(Config{DefaultDuration: time.Hour})
	defer q.Close()

	for _, m := range []string{"1", "2", "3", "4"} {
		q.Show(m, Info)
	}

	got := messages(q.List())
	if len(got) != 3 || got[0] != "2" || got[2] != "4" {
		t.Errorf("List() = %v, want [2 3 4]", got)
	}
}

func TestQueue_AutoDismiss(t *testing.T) {
	q := NewQueue(Config{})
	defer q.Close()

	q.Show("short", Success, WithDuration(20*time.Millisecond))
	q.Show("long", Success, WithDuration(time.Hour))

	deadline := time.Now().Add(2 * time.Second)
	for len(q.List()) != 1 {
		if time.Now().After(deadline) {
			t.Fatalf("short toast never expired: %v", messages(q.List()))
		}
		time.Sleep(5 * time.Millisecond)
	}
	if got := q.List()[0].Message; got != "long" {
		t.Errorf("remaining toast = %q, want long", got)
	}
}

func TestQueue_DismissAndTrigger(t *testing.T) {
	q := NewQueue(Config{DefaultDuration: time.Hour})
	defer q.Close()

	var ran atomic.Int32
	plain := q.Show("plain", Info)
	undo := q.Show("deleted", Success, WithAction("Undo", func() { ran.Add(1) }))

	if q.Trigger(plain) {
		t.Error("Trigger() on a toast without action should report false")
	}
	if !q.Trigger(undo) {
		t.Fatal("Trigger() failed")
	}
	if ran.Load() != 1 {
		t.Errorf("action ran %d times, want 1", ran.Load())
	}
	if q.Trigger(undo) {
		t.Error("Trigger() on a gone toast should report false")
	}

	if !q.Dismiss(plain) || q.Dismiss(plain) {
		t.Error("Dismiss() should succeed once then report false")
	}
	if len(q.List()) != 0 {
		t.Errorf("List() = %v, want empty", messages(q.List()))
	}
}

func TestQueue_UnknownTypeFallsBackToInfo(t *testing.T) {
	q := NewQueue(Config{DefaultDuration: time.Hour})
	defer q.Close()

	q.Show("x", Type("shout"))
	if got := q.List()[0].Type; got != Info {
		t.Errorf("Type = %q, want info", got)
	}
}

func TestQueue_StaleTimerDoesNotDismiss(t *testing.T) {
	q := NewQueue(Config{DefaultDuration: time.Hour})
	defer q.Close()

	id := q.Show("x", Info)
	q.mu.Lock()
	staleGen := q.entries[0].gen - 1
	q.mu.Unlock()

	q.expire(id, staleGen)
	if len(q.List()) != 1 {
		t.Error("timer armed for an older generation dismissed the toast")
	}
}

func TestQueue_Subscribe(t *testing.T) {
	q := NewQueue(Config{DefaultDuration: time.Hour})

	ch, cancel := q.Subscribe()
	if initial := <-ch; len(initial) != 0 {
		t.Fatalf("initial list = %v, want empty", messages(initial))
	}

	q.Show("a", Info)
	q.Show("b", Info)

	// Only the latest list is buffered.
	if got := messages(<-ch); len(got) != 2 || got[1] != "b" {
		t.Errorf("latest list = %v, want [a b]", got)
	}

	cancel()
	cancel()
	if _, ok := <-ch; ok {
		t.Error("channel still open after cancel")
	}

	q.Close()
	if closed, _ := q.Subscribe(); closed != nil {
		if _, ok := <-closed; ok {
			t.Error("Subscribe() after Close() should return a closed channel")
		}
	}
}
