// Package notebook is the single entry point callers use: it composes the
// note and category stores, the view preferences, the selection state and
// the toast queue, and adds user feedback and undo on top of them.
package notebook

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/MrSnakeDoc/jot/internal/domain"
	"github.com/MrSnakeDoc/jot/internal/logger"
	"github.com/MrSnakeDoc/jot/internal/selection"
	"github.com/MrSnakeDoc/jot/internal/store"
	"github.com/MrSnakeDoc/jot/internal/toast"
)

// DefaultUndoWindow is how long the undo action of a delete stays reachable.
const DefaultUndoWindow = 5 * time.Second

type Config struct {
	UndoWindow time.Duration
	Now        func() time.Time
}

// Notebook is safe for concurrent use.
type Notebook struct {
	notes      *store.NoteStore
	categories *store.CategoryStore
	prefs      *store.Preferences
	selection  *selection.State
	toasts     *toast.Queue
	logger     logger.Logger

	undoWindow time.Duration
	now        func() time.Time

	mu        sync.Mutex
	search    string
	sortBy    domain.SortBy
	sortOrder domain.SortOrder
	pending   pendingUndo
	undoSeq   uint64
}

func New(
	notes *store.NoteStore,
	categories *store.CategoryStore,
	prefs *store.Preferences,
	toasts *toast.Queue,
	log logger.Logger,
	cfg Config,
) *Notebook {
	if cfg.UndoWindow <= 0 {
		cfg.UndoWindow = DefaultUndoWindow
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	q := domain.DefaultQuery()
	return &Notebook{
		notes:      notes,
		categories: categories,
		prefs:      prefs,
		selection:  selection.New(),
		toasts:     toasts,
		logger:     log,
		undoWindow: cfg.UndoWindow,
		now:        cfg.Now,
		sortBy:     q.SortBy,
		sortOrder:  q.SortOrder,
	}
}

// Load runs the initial load of every store.
func (nb *Notebook) Load(ctx context.Context) error {
	if err := nb.notes.Load(ctx); err != nil {
		return err
	}
	if err := nb.categories.Load(ctx); err != nil {
		return err
	}
	if err := nb.prefs.Load(ctx); err != nil {
		return err
	}
	return nil
}

// Reload re-reads every key from storage after an external change and
// drops selected ids that are no longer active.
func (nb *Notebook) Reload(ctx context.Context) error {
	if err := nb.Load(ctx); err != nil {
		return fmt.Errorf("reload notebook: %w", err)
	}
	nb.selection.Prune(nb.isActive)
	return nil
}

// Ready reports whether the stores finished their initial load.
func (nb *Notebook) Ready() bool {
	return nb.notes.Ready() && nb.categories.Ready()
}

// Toasts exposes the notification queue.
func (nb *Notebook) Toasts() *toast.Queue {
	return nb.toasts
}

// Retention returns the trash retention window.
func (nb *Notebook) Retention() time.Duration {
	return nb.notes.Retention()
}

// ─────────────────────────────
// Notes
// ─────────────────────────────

// Notes returns the active notes in collection order.
func (nb *Notebook) Notes() []domain.Note { return nb.notes.Notes() }

// Trash returns the trashed notes in collection order.
func (nb *Notebook) Trash() []domain.Note { return nb.notes.TrashNotes() }

// AllNotes returns every note.
func (nb *Notebook) AllNotes() []domain.Note { return nb.notes.AllNotes() }

// Note returns a note by id, trashed or not.
func (nb *Notebook) Note(id string) (domain.Note, bool) { return nb.notes.Get(id) }

// Counts returns the number of active and trashed notes.
func (nb *Notebook) Counts() (active, trashed int) { return nb.notes.Counts() }

// Visible is the filtered and sorted list of active notes.
func (nb *Notebook) Visible() []domain.Note {
	return domain.Apply(nb.notes.Notes(), nb.Query())
}

func (nb *Notebook) CreateNote(ctx context.Context, in domain.NoteInput) domain.Note {
	n := nb.notes.AddNote(ctx, in)
	nb.toasts.Show("Note created", toast.Success)
	return n
}

func (nb *Notebook) UpdateNote(ctx context.Context, id string, patch domain.NotePatch) (domain.Note, bool) {
	n, ok := nb.notes.UpdateNote(ctx, id, patch)
	if ok {
		nb.toasts.Show("Note updated", toast.Success)
	}
	return n, ok
}

func (nb *Notebook) ToggleFavorite(ctx context.Context, id string) (domain.Note, bool) {
	n, ok := nb.notes.ToggleFavorite(ctx, id)
	if !ok {
		return n, false
	}
	if n.IsFavorite {
		nb.toasts.Show("Added to favorites", toast.Info)
	} else {
		nb.toasts.Show("Removed from favorites", toast.Info)
	}
	return n, true
}

// DeleteNote moves a note to the trash and offers an undo.
func (nb *Notebook) DeleteNote(ctx context.Context, id string) bool {
	return nb.DeleteNotes(ctx, []string{id}) == 1
}

// DeleteNotes moves the listed notes to the trash with a single undo.
func (nb *Notebook) DeleteNotes(ctx context.Context, ids []string) int {
	deleted := nb.notes.DeleteMultiple(ctx, ids)
	if len(deleted) == 0 {
		return 0
	}
	nb.selection.Prune(nb.isActive)

	msg := "Note moved to trash"
	if len(deleted) > 1 {
		msg = fmt.Sprintf("%d notes moved to trash", len(deleted))
	}
	nb.offerUndo(deleted, msg)
	return len(deleted)
}

// DeleteSelected trashes the current selection and leaves selection mode.
func (nb *Notebook) DeleteSelected(ctx context.Context) int {
	ids := nb.selection.IDs()
	if len(ids) == 0 {
		return 0
	}
	n := nb.DeleteNotes(ctx, ids)
	nb.selection.Exit()
	return n
}

// RestoreFromTrash brings a trashed note back.
func (nb *Notebook) RestoreFromTrash(ctx context.Context, id string) bool {
	if !nb.notes.RestoreFromTrash(ctx, id) {
		return false
	}
	nb.toasts.Show("Note restored", toast.Success)
	return true
}

// PermanentlyDelete removes a note for good.
func (nb *Notebook) PermanentlyDelete(ctx context.Context, id string) bool {
	if !nb.notes.PermanentlyDelete(ctx, id) {
		return false
	}
	nb.selection.Prune(nb.isActive)
	nb.toasts.Show("Note permanently deleted", toast.Warning)
	return true
}

// EmptyTrash permanently removes every trashed note.
func (nb *Notebook) EmptyTrash(ctx context.Context) int {
	n := nb.notes.EmptyTrash(ctx)
	if n > 0 {
		nb.toasts.Show("Trash emptied", toast.Warning)
	}
	return n
}

// PurgeExpired removes trashed notes past the retention window.
func (nb *Notebook) PurgeExpired(ctx context.Context) int {
	return nb.notes.PurgeExpired(ctx)
}

// DaysUntilPurge is the number of days left before a trashed note is purged.
func (nb *Notebook) DaysUntilPurge(n domain.Note) int {
	return domain.DaysUntilPurge(n, nb.now(), nb.notes.Retention())
}

// Import adds notes and categories whose ids are not already present.
func (nb *Notebook) Import(ctx context.Context, notes []domain.Note, categories []domain.Category) (addedNotes, addedCategories int) {
	addedCategories = nb.categories.Import(ctx, categories)
	addedNotes = nb.notes.Import(ctx, notes)
	return addedNotes, addedCategories
}

func (nb *Notebook) isActive(id string) bool {
	n, ok := nb.notes.Get(id)
	return ok && !n.IsTrashed()
}

// ─────────────────────────────
// Categories
// ─────────────────────────────

func (nb *Notebook) Categories() []domain.Category { return nb.categories.Categories() }

func (nb *Notebook) Category(id string) (domain.Category, bool) { return nb.categories.Get(id) }

func (nb *Notebook) CategoryCount() int { return nb.categories.Len() }

func (nb *Notebook) CreateCategory(ctx context.Context, in domain.CategoryInput) domain.Category {
	c := nb.categories.AddCategory(ctx, in)
	nb.toasts.Show(fmt.Sprintf("Category %q created", c.Name), toast.Success)
	return c
}

func (nb *Notebook) UpdateCategory(ctx context.Context, id string, patch domain.CategoryPatch) (domain.Category, bool) {
	return nb.categories.UpdateCategory(ctx, id, patch)
}

// DeleteCategory removes the category; notes keep their reference. The
// category filter is cleared when it pointed at the deleted category.
func (nb *Notebook) DeleteCategory(ctx context.Context, id string) bool {
	if !nb.categories.DeleteCategory(ctx, id) {
		return false
	}
	if active := nb.prefs.ActiveCategory(); active != nil && *active == id {
		nb.prefs.SetActiveCategory(ctx, nil)
	}
	nb.toasts.Show("Category deleted", toast.Info)
	return true
}

// ─────────────────────────────
// Filter / sort
// ─────────────────────────────

// Query returns the current filter and sort state.
func (nb *Notebook) Query() domain.Query {
	nb.mu.Lock()
	q := domain.Query{
		Search:    nb.search,
		SortBy:    nb.sortBy,
		SortOrder: nb.sortOrder,
	}
	nb.mu.Unlock()

	q.CategoryID = nb.prefs.ActiveCategory()
	q.OnlyFavorites = nb.prefs.ShowOnlyFavorites()
	q.KnownCategory = nb.categories.Has
	return q
}

// FilterPatch is a partial filter update; nil fields are left untouched.
// When SetCategory is true CategoryID replaces the active category, nil clears it.
type FilterPatch struct {
	Search        *string
	SortBy        *domain.SortBy
	SortOrder     *domain.SortOrder
	SetCategory   bool
	CategoryID    *string
	OnlyFavorites *bool
}

// UpdateFilter applies patch and returns the resulting state.
func (nb *Notebook) UpdateFilter(ctx context.Context, patch FilterPatch) domain.Query {
	nb.mu.Lock()
	if patch.Search != nil {
		nb.search = *patch.Search
	}
	if patch.SortBy != nil {
		nb.sortBy = *patch.SortBy
	}
	if patch.SortOrder != nil {
		nb.sortOrder = *patch.SortOrder
	}
	nb.mu.Unlock()

	if patch.SetCategory {
		nb.prefs.SetActiveCategory(ctx, patch.CategoryID)
	}
	if patch.OnlyFavorites != nil {
		nb.prefs.SetShowOnlyFavorites(ctx, *patch.OnlyFavorites)
	}
	return nb.Query()
}

// SetSearch sets the search text.
func (nb *Notebook) SetSearch(search string) {
	nb.mu.Lock()
	defer nb.mu.Unlock()
	nb.search = search
}

// SetSort sets the sort key and direction.
func (nb *Notebook) SetSort(by domain.SortBy, order domain.SortOrder) {
	nb.mu.Lock()
	defer nb.mu.Unlock()
	nb.sortBy = by
	nb.sortOrder = order
}

// SetActiveCategory sets (nil clears) the category filter.
func (nb *Notebook) SetActiveCategory(ctx context.Context, id *string) {
	nb.prefs.SetActiveCategory(ctx, id)
}

// SetShowOnlyFavorites toggles the favorites-only filter.
func (nb *Notebook) SetShowOnlyFavorites(ctx context.Context, on bool) {
	nb.prefs.SetShowOnlyFavorites(ctx, on)
}

// ─────────────────────────────
// Selection
// ─────────────────────────────

// SelectionState is a read-only view of the selection.
type SelectionState struct {
	Active bool
	IDs    []string
}

// Selection returns the selection, without ids of notes that are no
// longer active.
func (nb *Notebook) Selection() SelectionState {
	nb.selection.Prune(nb.isActive)
	return SelectionState{
		Active: nb.selection.Active(),
		IDs:    nb.selection.IDs(),
	}
}

// EnterSelection turns selection mode on, optionally seeded with one note.
func (nb *Notebook) EnterSelection(seed ...string) {
	nb.selection.Enter(seed...)
}

func (nb *Notebook) ToggleSelection(id string) {
	nb.selection.Toggle(id)
}

// SelectAllVisible selects every visible note, or clears the selection
// when it already covers them.
func (nb *Notebook) SelectAllVisible() {
	visible := nb.Visible()
	ids := make([]string, len(visible))
	for i, n := range visible {
		ids[i] = n.ID
	}
	nb.selection.Prune(nb.isActive)
	nb.selection.SelectAll(ids)
}

func (nb *Notebook) ExitSelection() {
	nb.selection.Exit()
}
