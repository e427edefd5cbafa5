package store

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"pgregory.net/rapid"

	"github.com/MrSnakeDoc/jot/internal/domain"
	"github.com/MrSnakeDoc/jot/internal/logger"
	"github.com/MrSnakeDoc/jot/internal/storage"
)

// fakeClock is a manually advanced clock.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.UnixMilli(1_700_000_000_000)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newLoadedNotes(t *testing.T, st storage.Storage, clock *fakeClock) *NoteStore {
	t.Helper()
	s := NewNoteStore(st, logger.NewNop(), Options{Now: clock.Now})
	if err := s.Load(context.Background()); err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	return s
}

func noteIDs(notes []domain.Note) []string {
	out := make([]string, len(notes))
	for i, n := range notes {
		out[i] = n.ID
	}
	return out
}

func equalIDs(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestNoteStore_LoadNormalizesLegacyRecords(t *testing.T) {
	st := storage.NewMemory()
	legacy := `[
		{"id":"1690000000000","title":"old","content":"x","isFavorite":true},
		{"id":"1690000000001","title":"zero","content":"","isFavorite":false,"createdAt":0,"updatedAt":0},
		{"id":"legacy","title":"odd id","content":"","isFavorite":false},
		{"title":"no id"}
	]`
	if err := st.Set(context.Background(), storage.KeyNotes, legacy); err != nil {
		t.Fatal(err)
	}

	s := newLoadedNotes(t, st, newFakeClock())
	notes := s.AllNotes()

	if len(notes) != 3 {
		t.Fatalf("expected 3 notes (record without id skipped), got %d", len(notes))
	}

	tests := []struct {
		id      string
		created int64
	}{
		{"1690000000000", 1690000000000},
		{"1690000000001", 1690000000001},
		{"legacy", 0},
	}
	for i, tt := range tests {
		n := notes[i]
		if n.ID != tt.id {
			t.Errorf("notes[%d].ID = %q, want %q", i, n.ID, tt.id)
		}
		if n.CreatedAt != tt.created || n.UpdatedAt != tt.created {
			t.Errorf("%s: createdAt/updatedAt = %d/%d, want %d", tt.id, n.CreatedAt, n.UpdatedAt, tt.created)
		}
		if n.IsTrashed() {
			t.Errorf("%s: legacy record should be active", tt.id)
		}
	}
	if !notes[0].IsFavorite {
		t.Error("isFavorite lost during normalization")
	}
}

func TestNoteStore_LoadUnreadableBlobStartsEmpty(t *testing.T) {
	for _, blob := range []string{"{not json", `{"id":"1"}`, `"text"`} {
		st := storage.NewMemory()
		_ = st.Set(context.Background(), storage.KeyNotes, blob)

		s := newLoadedNotes(t, st, newFakeClock())
		if got := s.AllNotes(); len(got) != 0 {
			t.Errorf("blob %q: expected empty collection, got %d notes", blob, len(got))
		}
	}
}

func TestNoteStore_LoadPropagatesStorageErrors(t *testing.T) {
	s := NewNoteStore(failingStorage{}, logger.NewNop(), Options{})
	if err := s.Load(context.Background()); err == nil {
		t.Fatal("expected Load() to fail on a storage error")
	}
	if s.Ready() {
		t.Error("store should not be ready after a failed load")
	}
}

func TestNoteStore_NoWritesBeforeLoad(t *testing.T) {
	st := storage.NewMemory()
	s := NewNoteStore(st, logger.NewNop(), Options{Now: newFakeClock().Now})

	s.AddNote(context.Background(), domain.NoteInput{Title: "early"})

	if _, err := st.Get(context.Background(), storage.KeyNotes); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("storage written before load, Get() error = %v", err)
	}
}

func TestNoteStore_AddNote(t *testing.T) {
	clock := newFakeClock()
	s := newLoadedNotes(t, storage.NewMemory(), clock)
	work := "work"

	a := s.AddNote(context.Background(), domain.NoteInput{Title: "a", CategoryID: &work})
	b := s.AddNote(context.Background(), domain.NoteInput{Title: "b"})

	if a.ID == b.ID {
		t.Fatalf("two notes in the same millisecond share id %s", a.ID)
	}
	if domain.IDMillis(b.ID) != domain.IDMillis(a.ID)+1 {
		t.Errorf("colliding id should be bumped by 1ms: a=%s b=%s", a.ID, b.ID)
	}
	if a.CreatedAt != domain.Millis(clock.Now()) || a.UpdatedAt != a.CreatedAt {
		t.Errorf("timestamps = %d/%d, want %d", a.CreatedAt, a.UpdatedAt, domain.Millis(clock.Now()))
	}
	if !a.HasCategory("work") {
		t.Errorf("categoryId = %v, want work", a.CategoryID)
	}

	got := noteIDs(s.Notes())
	if !equalIDs(got, []string{b.ID, a.ID}) {
		t.Errorf("Notes() = %v, want newest first", got)
	}
}

func TestNoteStore_UpdateAndToggle(t *testing.T) {
	ctx := context.Background()
	clock := newFakeClock()
	s := newLoadedNotes(t, storage.NewMemory(), clock)
	n := s.AddNote(ctx, domain.NoteInput{Title: "draft", Content: "body"})

	clock.Advance(time.Minute)
	title := "final"
	updated, ok := s.UpdateNote(ctx, n.ID, domain.NotePatch{Title: &title})
	if !ok {
		t.Fatal("UpdateNote() reported unknown id")
	}
	if updated.Title != "final" || updated.Content != "body" {
		t.Errorf("patch not merged: %+v", updated)
	}
	if updated.UpdatedAt != domain.Millis(clock.Now()) || updated.CreatedAt != n.CreatedAt {
		t.Errorf("updatedAt = %d, createdAt = %d", updated.UpdatedAt, updated.CreatedAt)
	}

	clock.Advance(time.Minute)
	toggled, _ := s.ToggleFavorite(ctx, n.ID)
	if !toggled.IsFavorite || toggled.UpdatedAt != domain.Millis(clock.Now()) {
		t.Errorf("ToggleFavorite() = %+v", toggled)
	}

	if _, ok := s.UpdateNote(ctx, "missing", domain.NotePatch{Title: &title}); ok {
		t.Error("UpdateNote() on unknown id should report false")
	}
	if _, ok := s.ToggleFavorite(ctx, "missing"); ok {
		t.Error("ToggleFavorite() on unknown id should report false")
	}
}

func TestNoteStore_SoftDeleteLifecycle(t *testing.T) {
	ctx := context.Background()
	clock := newFakeClock()
	s := newLoadedNotes(t, storage.NewMemory(), clock)
	n := s.AddNote(ctx, domain.NoteInput{Title: "t"})

	clock.Advance(time.Hour)
	before, ok := s.DeleteNote(ctx, n.ID)
	if !ok || before.IsTrashed() {
		t.Fatalf("DeleteNote() = (%+v, %v), want pre-delete snapshot", before, ok)
	}

	trashed, _ := s.Get(n.ID)
	if !trashed.IsTrashed() || *trashed.DeletedAt != domain.Millis(clock.Now()) {
		t.Errorf("deletedAt = %v, want now", trashed.DeletedAt)
	}
	if trashed.UpdatedAt != n.UpdatedAt {
		t.Error("soft delete must not touch updatedAt")
	}
	if _, ok := s.DeleteNote(ctx, n.ID); ok {
		t.Error("deleting an already trashed note should report false")
	}

	if !s.RestoreFromTrash(ctx, n.ID) {
		t.Fatal("RestoreFromTrash() failed")
	}
	restored, _ := s.Get(n.ID)
	if restored.IsTrashed() || restored.UpdatedAt != n.UpdatedAt {
		t.Errorf("restored = %+v", restored)
	}
	if s.RestoreFromTrash(ctx, n.ID) {
		t.Error("restoring an active note should report false")
	}

	s.DeleteNote(ctx, n.ID)
	if !s.PermanentlyDelete(ctx, n.ID) {
		t.Fatal("PermanentlyDelete() failed")
	}
	if _, ok := s.Get(n.ID); ok {
		t.Error("note still present after PermanentlyDelete()")
	}
}

func TestNoteStore_DeleteMultipleAndEmptyTrash(t *testing.T) {
	ctx := context.Background()
	clock := newFakeClock()
	s := newLoadedNotes(t, storage.NewMemory(), clock)

	var ids []string
	for i := 0; i < 4; i++ {
		ids = append(ids, s.AddNote(ctx, domain.NoteInput{Title: "n"}).ID)
	}

	deleted := s.DeleteMultiple(ctx, []string{ids[0], ids[2], "missing"})
	if len(deleted) != 2 {
		t.Fatalf("DeleteMultiple() deleted %d, want 2", len(deleted))
	}
	active, trashed := s.Counts()
	if active != 2 || trashed != 2 {
		t.Errorf("Counts() = %d/%d, want 2/2", active, trashed)
	}

	if n := s.RestoreNotes(ctx, append(deleted, domain.Note{ID: "gone"})); n != 2 {
		t.Errorf("RestoreNotes() = %d, want 2 (unknown ids ignored)", n)
	}

	s.DeleteMultiple(ctx, ids[:3])
	if n := s.EmptyTrash(ctx); n != 3 {
		t.Errorf("EmptyTrash() = %d, want 3", n)
	}
	if got := noteIDs(s.AllNotes()); !equalIDs(got, []string{ids[3]}) {
		t.Errorf("AllNotes() = %v, want [%s]", got, ids[3])
	}
}

func TestNoteStore_PurgeBoundary(t *testing.T) {
	clock := newFakeClock()
	now := domain.Millis(clock.Now())
	retention := domain.DefaultTrashRetention.Milliseconds()

	atThreshold := now - retention
	pastThreshold := now - retention - 1
	recent := now - 1000

	records := []domain.Note{
		{ID: "1", Title: "at", CreatedAt: 1, UpdatedAt: 1, DeletedAt: &atThreshold},
		{ID: "2", Title: "past", CreatedAt: 2, UpdatedAt: 2, DeletedAt: &pastThreshold},
		{ID: "3", Title: "recent", CreatedAt: 3, UpdatedAt: 3, DeletedAt: &recent},
		{ID: "4", Title: "active", CreatedAt: 4, UpdatedAt: 4},
	}
	blob, _ := json.Marshal(records)
	st := storage.NewMemory()
	_ = st.Set(context.Background(), storage.KeyNotes, string(blob))

	s := newLoadedNotes(t, st, clock)

	got := noteIDs(s.AllNotes())
	if !equalIDs(got, []string{"1", "3", "4"}) {
		t.Errorf("after load AllNotes() = %v, want [1 3 4]", got)
	}

	persisted, _ := st.Get(context.Background(), storage.KeyNotes)
	var stored []domain.Note
	_ = json.Unmarshal([]byte(persisted), &stored)
	if len(stored) != 3 {
		t.Errorf("purge not written back, storage holds %d notes", len(stored))
	}

	clock.Advance(time.Millisecond)
	if n := s.PurgeExpired(context.Background()); n != 1 {
		t.Errorf("PurgeExpired() = %d, want 1 (the note now past the threshold)", n)
	}
}

func TestNoteStore_PersistenceRoundTrip(t *testing.T) {
	ctx := context.Background()
	clock := newFakeClock()
	st := storage.NewMemory()
	s := newLoadedNotes(t, st, clock)

	cat := "c1"
	a := s.AddNote(ctx, domain.NoteInput{Title: "a", Content: "x", CategoryID: &cat})
	clock.Advance(time.Second)
	b := s.AddNote(ctx, domain.NoteInput{Title: "b", IsFavorite: true})
	s.DeleteNote(ctx, a.ID)

	reloaded := newLoadedNotes(t, st, clock)
	want, got := s.AllNotes(), reloaded.AllNotes()
	if len(got) != len(want) {
		t.Fatalf("reloaded %d notes, want %d", len(got), len(want))
	}
	for i := range want {
		w, g := want[i], got[i]
		if w.ID != g.ID || w.Title != g.Title || w.Content != g.Content ||
			w.IsFavorite != g.IsFavorite || w.CreatedAt != g.CreatedAt || w.UpdatedAt != g.UpdatedAt ||
			w.IsTrashed() != g.IsTrashed() || (w.CategoryID == nil) != (g.CategoryID == nil) {
			t.Errorf("note %d differs after reload: %+v vs %+v", i, w, g)
		}
	}

	// The id high-water mark survives a reload.
	c := reloaded.AddNote(ctx, domain.NoteInput{Title: "c"})
	if domain.IDMillis(c.ID) <= domain.IDMillis(b.ID) {
		t.Errorf("new id %s not above existing %s", c.ID, b.ID)
	}
}

// Create A then B, soft-delete A, restore A: A goes back to its original
// slot, after B.
func TestNoteStore_GroceriesScenario(t *testing.T) {
	ctx := context.Background()
	clock := newFakeClock()
	s := newLoadedNotes(t, storage.NewMemory(), clock)

	a := s.AddNote(ctx, domain.NoteInput{Title: "Groceries", Content: "milk, eggs"})
	if got := noteIDs(domain.Apply(s.Notes(), domain.DefaultQuery())); !equalIDs(got, []string{a.ID}) {
		t.Fatalf("visible = %v", got)
	}

	b := s.AddNote(ctx, domain.NoteInput{Title: "B"})
	if got := noteIDs(domain.Apply(s.Notes(), domain.DefaultQuery())); !equalIDs(got, []string{b.ID, a.ID}) {
		t.Fatalf("visible = %v, want B before A", got)
	}

	deleted := s.DeleteMultiple(ctx, []string{a.ID})
	if got := noteIDs(s.Notes()); !equalIDs(got, []string{b.ID}) {
		t.Errorf("Notes() = %v, want only B", got)
	}
	if got := noteIDs(s.TrashNotes()); !equalIDs(got, []string{a.ID}) {
		t.Errorf("TrashNotes() = %v, want only A", got)
	}

	s.RestoreNotes(ctx, deleted)
	if got := noteIDs(domain.Apply(s.Notes(), domain.DefaultQuery())); !equalIDs(got, []string{b.ID, a.ID}) {
		t.Errorf("visible after restore = %v, want B before A", got)
	}
	if got := noteIDs(s.Notes()); !equalIDs(got, []string{b.ID, a.ID}) {
		t.Errorf("collection order after restore = %v, A should keep its slot", got)
	}
}

func TestNoteStore_Import(t *testing.T) {
	ctx := context.Background()
	s := newLoadedNotes(t, storage.NewMemory(), newFakeClock())
	existing := s.AddNote(ctx, domain.NoteInput{Title: "kept"})

	added := s.Import(ctx, []domain.Note{
		{ID: existing.ID, Title: "overwrite attempt"},
		{ID: "1600000000000", Title: "imported"},
		{ID: "", Title: "no id"},
	})
	if added != 1 {
		t.Fatalf("Import() = %d, want 1", added)
	}
	kept, _ := s.Get(existing.ID)
	if kept.Title != "kept" {
		t.Error("Import() overwrote an existing note")
	}
	imported, _ := s.Get("1600000000000")
	if imported.CreatedAt != 1600000000000 {
		t.Errorf("imported note not normalized: createdAt = %d", imported.CreatedAt)
	}
}

// Every note is in exactly one of Notes() and TrashNotes(), whatever the
// sequence of operations.
func TestNoteStore_PartitionProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		ctx := context.Background()
		clock := newFakeClock()
		s := NewNoteStore(storage.NewMemory(), logger.NewNop(), Options{Now: clock.Now})
		if err := s.Load(ctx); err != nil {
			t.Fatal(err)
		}

		var ids []string
		steps := rapid.IntRange(1, 40).Draw(t, "steps")
		for i := 0; i < steps; i++ {
			clock.Advance(time.Duration(rapid.IntRange(0, 3).Draw(t, "ms")) * time.Millisecond)

			if len(ids) == 0 {
				ids = append(ids, s.AddNote(ctx, domain.NoteInput{Title: "n"}).ID)
				continue
			}
			id := rapid.SampledFrom(ids).Draw(t, "id")
			switch rapid.IntRange(0, 6).Draw(t, "op") {
			case 0:
				ids = append(ids, s.AddNote(ctx, domain.NoteInput{Title: "n"}).ID)
			case 1:
				s.DeleteNote(ctx, id)
			case 2:
				s.RestoreFromTrash(ctx, id)
			case 3:
				s.ToggleFavorite(ctx, id)
			case 4:
				s.PermanentlyDelete(ctx, id)
			case 5:
				s.DeleteMultiple(ctx, rapid.SliceOf(rapid.SampledFrom(ids)).Draw(t, "batch"))
			case 6:
				s.EmptyTrash(ctx)
			}
		}

		all := noteIDs(s.AllNotes())
		parts := append(noteIDs(s.Notes()), noteIDs(s.TrashNotes())...)
		sort.Strings(all)
		sort.Strings(parts)
		if !equalIDs(all, parts) {
			t.Fatalf("partition broken: all=%v active+trash=%v", all, parts)
		}

		seen := make(map[string]bool)
		for _, id := range all {
			if seen[id] {
				t.Fatalf("duplicate id %s", id)
			}
			seen[id] = true
		}
	})
}

func TestNormalizeIdempotent(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := domain.Note{
			ID:        rapid.OneOf(rapid.Just("legacy"), rapid.StringMatching(`[1-9][0-9]{12}`)).Draw(t, "id"),
			Title:     rapid.String().Draw(t, "title"),
			CreatedAt: rapid.OneOf(rapid.Just(int64(0)), rapid.Int64Range(1, 1<<42)).Draw(t, "created"),
			UpdatedAt: rapid.OneOf(rapid.Just(int64(0)), rapid.Int64Range(1, 1<<42)).Draw(t, "updated"),
		}

		once := NormalizeNote(n)
		twice := NormalizeNote(once)
		if once.CreatedAt != twice.CreatedAt || once.UpdatedAt != twice.UpdatedAt {
			t.Fatalf("normalization not idempotent: %+v -> %+v", once, twice)
		}
		if n.CreatedAt != 0 && once.CreatedAt != n.CreatedAt {
			t.Fatalf("present createdAt overwritten: %d -> %d", n.CreatedAt, once.CreatedAt)
		}
	})
}

type failingStorage struct{}

func (failingStorage) Get(context.Context, string) (string, error) {
	return "", errors.New("backend down")
}
func (failingStorage) Set(context.Context, string, string) error { return errors.New("backend down") }
func (failingStorage) Delete(context.Context, string) error      { return errors.New("backend down") }
func (failingStorage) Close() error                              { return nil }

// ctxStorage refuses writes once the context is done, like a network backend.
type ctxStorage struct {
	*storage.Memory
}

func (s ctxStorage) Set(ctx context.Context, key, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.Memory.Set(ctx, key, value)
}

func TestWriteThroughSurvivesCancelledContext(t *testing.T) {
	st := ctxStorage{Memory: storage.NewMemory()}
	clock := newFakeClock()
	notes := newLoadedNotes(t, st, clock)
	categories := newLoadedCategories(t, st, clock)
	prefs := NewPreferences(st, logger.NewNop())
	if err := prefs.Load(context.Background()); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	n := notes.AddNote(ctx, domain.NoteInput{Title: "kept"})
	c := categories.AddCategory(ctx, domain.CategoryInput{Name: "Work"})
	prefs.SetActiveCategory(ctx, &c.ID)
	prefs.SetShowOnlyFavorites(ctx, true)

	fresh := newLoadedNotes(t, st, clock)
	if _, ok := fresh.Get(n.ID); !ok {
		t.Error("note written with a cancelled context was not persisted")
	}
	freshCategories := newLoadedCategories(t, st, clock)
	if _, ok := freshCategories.Get(c.ID); !ok {
		t.Error("category written with a cancelled context was not persisted")
	}
	freshPrefs := NewPreferences(st, logger.NewNop())
	if err := freshPrefs.Load(context.Background()); err != nil {
		t.Fatal(err)
	}
	if got := freshPrefs.ActiveCategory(); got == nil || *got != c.ID {
		t.Errorf("active category = %v, want %s", got, c.ID)
	}
	if !freshPrefs.ShowOnlyFavorites() {
		t.Error("favorites filter written with a cancelled context was not persisted")
	}
}
