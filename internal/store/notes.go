// Package store holds the in-memory note and category collections and
// mirrors every change to the key-value storage once the initial load
// has completed.
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

// Options tunes a store. Zero values pick the defaults.
type Options struct {
	// Retention is how long trashed notes are kept. Default domain.DefaultTrashRetention.
	Retention time.Duration
	// Now is the clock. Default time.Now.
	Now func() time.Time
}

// persistTimeout bounds one write-through once it is detached from the caller.
const persistTimeout = 5 * time.Second

// persistContext detaches a write-through from the caller's cancellation.
// A change already applied in memory must reach storage even when the
// request that made it goes away.
func persistContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), persistTimeout)
}

func (o Options) withDefaults() Options {
	if o.Retention <= 0 {
		o.Retention = domain.DefaultTrashRetention
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

// NoteStore owns the note collection: active notes and the trash live in
// the same slice, partitioned by DeletedAt.
type NoteStore struct {
	storage   storage.Storage
	logger    logger.Logger
	now       func() time.Time
	retention time.Duration

	mu     sync.RWMutex
	notes  []domain.Note
	ready  bool
	lastID int64
}

// NewNoteStore creates an empty, not yet loaded store.
func NewNoteStore(st storage.Storage, log logger.Logger, opts Options) *NoteStore {
	opts = opts.withDefaults()
	return &NoteStore{
		storage:   st,
		logger:    log,
		now:       opts.Now,
		retention: opts.Retention,
		notes:     []domain.Note{},
	}
}

// Retention returns the configured trash retention.
func (s *NoteStore) Retention() time.Duration {
	return s.retention
}

// Ready reports whether the initial load has completed.
func (s *NoteStore) Ready() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ready
}

// Load reads the persisted collection, normalizes legacy records and drops
// trashed notes older than the retention window. It may be called again to
// pick up an external change; the in-memory collection is replaced.
//
// A missing key starts an empty collection. An unreadable blob is logged
// and also starts empty. Only storage errors are returned.
func (s *NoteStore) Load(ctx context.Context) error {
	blob, err := s.storage.Get(ctx, storage.KeyNotes)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("failed to load notes: %w", err)
	}

	notes := []domain.Note{}
	if err == nil {
		decoded, skipped, derr := decodeNotes(blob)
		switch {
		case derr != nil:
			s.logger.Warn("stored notes unreadable, starting empty", logger.Error(derr))
		default:
			notes = decoded
			if skipped > 0 {
				s.logger.Warn("skipped unreadable note records", logger.Int("count", skipped))
			}
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.notes = notes
	purged := s.purgeLocked()
	s.lastID = 0
	for _, n := range s.notes {
		if id := domain.IDMillis(n.ID); id > s.lastID {
			s.lastID = id
		}
	}

	wasReady := s.ready
	s.ready = true

	s.logger.Info("notes loaded",
		logger.Int("count", len(s.notes)),
		logger.Int("purged", purged))

	// The first load writes back the normalized collection; reloads only
	// write when the purge changed something.
	if !wasReady || purged > 0 {
		s.persistLocked(ctx)
	}
	return nil
}

// persistLocked writes the whole collection. Caller holds s.mu.
// Failures are logged; memory stays authoritative.
func (s *NoteStore) persistLocked(ctx context.Context) {
	if !s.ready {
		return
	}
	blob, err := encodeNotes(s.notes)
	if err != nil {
		s.logger.Error("failed to encode notes", logger.Error(err))
		return
	}
	ctx, cancel := persistContext(ctx)
	defer cancel()
	if err := s.storage.Set(ctx, storage.KeyNotes, blob); err != nil {
		s.logger.Warn("failed to persist notes", logger.Error(err))
	}
}

// nextIDLocked returns a fresh millisecond id. Two notes created within
// the same millisecond get consecutive ids.
func (s *NoteStore) nextIDLocked(nowMs int64) string {
	id := nowMs
	if id <= s.lastID {
		id = s.lastID + 1
	}
	s.lastID = id
	return domain.FormatID(id)
}

func (s *NoteStore) indexLocked(id string) int {
	for i := range s.notes {
		if s.notes[i].ID == id {
			return i
		}
	}
	return -1
}

// Notes returns the active notes, in collection order (newest first).
func (s *NoteStore) Notes() []domain.Note {
	return s.collect(func(n domain.Note) bool { return !n.IsTrashed() })
}

// TrashNotes returns the soft-deleted notes, in collection order.
func (s *NoteStore) TrashNotes() []domain.Note {
	return s.collect(domain.Note.IsTrashed)
}

// AllNotes returns every note, trashed included.
func (s *NoteStore) AllNotes() []domain.Note {
	return s.collect(func(domain.Note) bool { return true })
}

func (s *NoteStore) collect(keep func(domain.Note) bool) []domain.Note {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Note, 0, len(s.notes))
	for _, n := range s.notes {
		if keep(n) {
			out = append(out, n.Clone())
		}
	}
	return out
}

// Get returns the note with the given id, trashed or not.
func (s *NoteStore) Get(id string) (domain.Note, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if i := s.indexLocked(id); i >= 0 {
		return s.notes[i].Clone(), true
	}
	return domain.Note{}, false
}

// Counts returns the number of active and trashed notes.
func (s *NoteStore) Counts() (active, trashed int) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, n := range s.notes {
		if n.IsTrashed() {
			trashed++
		} else {
			active++
		}
	}
	return active, trashed
}

// AddNote creates a note and prepends it to the collection.
func (s *NoteStore) AddNote(ctx context.Context, in domain.NoteInput) domain.Note {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := domain.Millis(s.now())
	n := domain.Note{
		ID:         s.nextIDLocked(now),
		Title:      in.Title,
		Content:    in.Content,
		IsFavorite: in.IsFavorite,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if in.CategoryID != nil {
		id := *in.CategoryID
		n.CategoryID = &id
	}

	s.notes = append([]domain.Note{n}, s.notes...)
	s.persistLocked(ctx)
	return n.Clone()
}

// UpdateNote merges patch into the note and refreshes UpdatedAt.
// Unknown ids leave the collection untouched.
func (s *NoteStore) UpdateNote(ctx context.Context, id string, patch domain.NotePatch) (domain.Note, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexLocked(id)
	if i < 0 {
		return domain.Note{}, false
	}
	patch.Apply(&s.notes[i])
	s.notes[i].UpdatedAt = domain.Millis(s.now())
	s.persistLocked(ctx)
	return s.notes[i].Clone(), true
}

// ToggleFavorite flips IsFavorite and refreshes UpdatedAt.
func (s *NoteStore) ToggleFavorite(ctx context.Context, id string) (domain.Note, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexLocked(id)
	if i < 0 {
		return domain.Note{}, false
	}
	s.notes[i].IsFavorite = !s.notes[i].IsFavorite
	s.notes[i].UpdatedAt = domain.Millis(s.now())
	s.persistLocked(ctx)
	return s.notes[i].Clone(), true
}

// DeleteNote moves an active note to the trash. It returns the note as it
// was before the move, for undo.
func (s *NoteStore) DeleteNote(ctx context.Context, id string) (domain.Note, bool) {
	deleted := s.DeleteMultiple(ctx, []string{id})
	if len(deleted) == 0 {
		return domain.Note{}, false
	}
	return deleted[0], true
}

// DeleteMultiple moves every listed active note to the trash with a single
// write. Unknown and already trashed ids are ignored. The returned
// snapshots are taken before the move.
func (s *NoteStore) DeleteMultiple(ctx context.Context, ids []string) []domain.Note {
	if len(ids) == 0 {
		return nil
	}
	want := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		want[id] = struct{}{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := domain.Millis(s.now())
	var deleted []domain.Note
	for i := range s.notes {
		if _, ok := want[s.notes[i].ID]; !ok || s.notes[i].IsTrashed() {
			continue
		}
		deleted = append(deleted, s.notes[i].Clone())
		at := now
		s.notes[i].DeletedAt = &at
	}

	if len(deleted) > 0 {
		s.persistLocked(ctx)
	}
	return deleted
}

// RestoreNotes clears DeletedAt on every note whose id appears in records.
// Records that are no longer in the collection (purged in the meantime)
// are skipped. It returns how many notes came back.
func (s *NoteStore) RestoreNotes(ctx context.Context, records []domain.Note) int {
	ids := make([]string, 0, len(records))
	for _, r := range records {
		ids = append(ids, r.ID)
	}
	return s.restore(ctx, ids)
}

// RestoreFromTrash brings a single trashed note back.
func (s *NoteStore) RestoreFromTrash(ctx context.Context, id string) bool {
	return s.restore(ctx, []string{id}) == 1
}

func (s *NoteStore) restore(ctx context.Context, ids []string) int {
	want := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		want[id] = struct{}{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	restored := 0
	for i := range s.notes {
		if _, ok := want[s.notes[i].ID]; !ok || !s.notes[i].IsTrashed() {
			continue
		}
		s.notes[i].DeletedAt = nil
		restored++
	}
	if restored > 0 {
		s.persistLocked(ctx)
	}
	return restored
}

// PermanentlyDelete removes a note from the collection for good.
func (s *NoteStore) PermanentlyDelete(ctx context.Context, id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexLocked(id)
	if i < 0 {
		return false
	}
	s.notes = append(s.notes[:i:i], s.notes[i+1:]...)
	s.persistLocked(ctx)
	return true
}

// EmptyTrash removes every trashed note and returns how many were removed.
func (s *NoteStore) EmptyTrash(ctx context.Context) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := s.removeLocked(domain.Note.IsTrashed)
	if removed > 0 {
		s.persistLocked(ctx)
	}
	return removed
}

// PurgeExpired removes trashed notes older than the retention window.
func (s *NoteStore) PurgeExpired(ctx context.Context) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	purged := s.purgeLocked()
	if purged > 0 {
		s.persistLocked(ctx)
	}
	return purged
}

// purgeLocked drops trashed notes whose DeletedAt is strictly before
// now - retention. A note exactly at the threshold is kept.
func (s *NoteStore) purgeLocked() int {
	threshold := domain.Millis(s.now()) - s.retention.Milliseconds()
	return s.removeLocked(func(n domain.Note) bool {
		return n.DeletedAt != nil && *n.DeletedAt < threshold
	})
}

func (s *NoteStore) removeLocked(drop func(domain.Note) bool) int {
	kept := make([]domain.Note, 0, len(s.notes))
	for _, n := range s.notes {
		if !drop(n) {
			kept = append(kept, n)
		}
	}
	removed := len(s.notes) - len(kept)
	s.notes = kept
	return removed
}

// Import appends notes whose id is not already present, normalized the
// same way as on load. It returns how many were added.
func (s *NoteStore) Import(ctx context.Context, notes []domain.Note) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing := make(map[string]struct{}, len(s.notes))
	for _, n := range s.notes {
		existing[n.ID] = struct{}{}
	}

	added := 0
	for _, n := range notes {
		if n.ID == "" {
			continue
		}
		if _, ok := existing[n.ID]; ok {
			continue
		}
		n = NormalizeNote(n.Clone())
		s.notes = append(s.notes, n)
		existing[n.ID] = struct{}{}
		if id := domain.IDMillis(n.ID); id > s.lastID {
			s.lastID = id
		}
		added++
	}
	if added > 0 {
		s.persistLocked(ctx)
	}
	return added
}
