// Package toast is the notification queue: a bounded list of short-lived
// messages, each dismissed by its own timer.
package toast

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	DefaultMaxToasts = 3
	DefaultDuration  = 3 * time.Second
)

type Type string

const (
	Success Type = "success"
	Error   Type = "error"
	Info    Type = "info"
	Warning Type = "warning"
)

// Valid reports whether t is a known toast type.
func (t Type) Valid() bool {
	switch t {
	case Success, Error, Info, Warning:
		return true
	}
	return false
}

// Action is the optional button carried by a toast.
type Action struct {
	Label string
	Run   func()
}

// Toast is a snapshot of one visible notification.
type Toast struct {
	ID        string
	Message   string
	Type      Type
	Duration  time.Duration
	CreatedAt time.Time
	Action    *Action
}

// Option customizes a single toast.
type Option func(*Toast)

// WithDuration overrides the queue's default lifetime.
func WithDuration(d time.Duration) Option {
	return func(t *Toast) {
		if d > 0 {
			t.Duration = d
		}
	}
}

// WithAction attaches an action button.
func WithAction(label string, run func()) Option {
	return func(t *Toast) {
		t.Action = &Action{Label: label, Run: run}
	}
}

// Config tunes a Queue. Zero values pick the defaults.
type Config struct {
	MaxToasts       int
	DefaultDuration time.Duration
}

type entry struct {
	toast Toast
	timer *time.Timer
	gen   uint64
}

// Queue holds the visible toasts, oldest first.
type Queue struct {
	maxToasts       int
	defaultDuration time.Duration

	mu      sync.Mutex
	entries []*entry
	gen     uint64
	subs    map[uint64]chan []Toast
	nextSub uint64
	closed  bool
}

func NewQueue(cfg Config) *Queue {
	if cfg.MaxToasts <= 0 {
		cfg.MaxToasts = DefaultMaxToasts
	}
	if cfg.DefaultDuration <= 0 {
		cfg.DefaultDuration = DefaultDuration
	}
	return &Queue{
		maxToasts:       cfg.MaxToasts,
		defaultDuration: cfg.DefaultDuration,
		subs:            make(map[uint64]chan []Toast),
	}
}

// Show appends a toast and returns its id. When the queue is full the
// oldest toasts are evicted and their timers stopped. An unknown type
// falls back to Info.
func (q *Queue) Show(message string, typ Type, opts ...Option) string {
	if !typ.Valid() {
		typ = Info
	}
	t := Toast{
		ID:        uuid.NewString(),
		Message:   message,
		Type:      typ,
		Duration:  q.defaultDuration,
		CreatedAt: time.Now(),
	}
	for _, opt := range opts {
		opt(&t)
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return t.ID
	}

	q.gen++
	e := &entry{toast: t, gen: q.gen}
	id, gen := t.ID, e.gen
	e.timer = time.AfterFunc(t.Duration, func() {
		q.expire(id, gen)
	})

	q.entries = append(q.entries, e)
	if over := len(q.entries) - q.maxToasts; over > 0 {
		for _, old := range q.entries[:over] {
			old.timer.Stop()
		}
		q.entries = append([]*entry(nil), q.entries[over:]...)
	}

	q.publishLocked()
	return t.ID
}

// expire is the timer callback. It only removes the entry it was armed for.
func (q *Queue) expire(id string, gen uint64) {
	q.mu.Lock()
	defer q.mu.Unlock()

	i := q.indexLocked(id)
	if i < 0 || q.entries[i].gen != gen {
		return
	}
	q.removeLocked(i)
	q.publishLocked()
}

// Dismiss removes a toast and stops its timer. Unknown ids are ignored.
func (q *Queue) Dismiss(id string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	i := q.indexLocked(id)
	if i < 0 {
		return false
	}
	q.removeLocked(i)
	q.publishLocked()
	return true
}

// Trigger runs the toast's action and dismisses it. It returns false when
// the toast is gone (expired, evicted, dismissed) or has no action.
func (q *Queue) Trigger(id string) bool {
	q.mu.Lock()
	i := q.indexLocked(id)
	if i < 0 || q.entries[i].toast.Action == nil {
		q.mu.Unlock()
		return false
	}
	run := q.entries[i].toast.Action.Run
	q.removeLocked(i)
	q.publishLocked()
	q.mu.Unlock()

	// The action may show toasts of its own.
	if run != nil {
		run()
	}
	return true
}

// List returns the visible toasts, oldest first.
func (q *Queue) List() []Toast {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.snapshotLocked()
}

// Subscribe returns a channel receiving the toast list after every change,
// and a function to stop the subscription. Slow readers only ever see the
// latest list.
func (q *Queue) Subscribe() (<-chan []Toast, func()) {
	q.mu.Lock()
	defer q.mu.Unlock()

	ch := make(chan []Toast, 1)
	if q.closed {
		close(ch)
		return ch, func() {}
	}

	q.nextSub++
	key := q.nextSub
	q.subs[key] = ch
	ch <- q.snapshotLocked()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			q.mu.Lock()
			defer q.mu.Unlock()
			if _, ok := q.subs[key]; ok {
				delete(q.subs, key)
				close(ch)
			}
		})
	}
}

// Close stops every timer, clears the queue and ends all subscriptions.
func (q *Queue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}
	q.closed = true
	for _, e := range q.entries {
		e.timer.Stop()
	}
	q.entries = nil
	for key, ch := range q.subs {
		close(ch)
		delete(q.subs, key)
	}
}

func (q *Queue) indexLocked(id string) int {
	for i, e := range q.entries {
		if e.toast.ID == id {
			return i
		}
	}
	return -1
}

func (q *Queue) removeLocked(i int) {
	q.entries[i].timer.Stop()
	q.entries = append(q.entries[:i:i], q.entries[i+1:]...)
}

func (q *Queue) snapshotLocked() []Toast {
	out := make([]Toast, len(q.entries))
	for i, e := range q.entries {
		out[i] = e.toast
	}
	return out
}

func (q *Queue) publishLocked() {
	if len(q.subs) == 0 {
		return
	}
	list := q.snapshotLocked()
	for _, ch := range q.subs {
		select {
		case <-ch:
		default:
		}
		ch <- list
	}
}
