package domain

import (
	"strconv"
	"time"
)

// DefaultTrashRetention is how long a soft-deleted note stays in the trash
// before it becomes eligible for permanent removal.
const DefaultTrashRetention = 30 * 24 * time.Hour

// Note is the canonical, fully-populated note record.
//
// The JSON field names are the persisted encoding and must not change:
// existing stored collections are decoded with them.
type Note struct {
	// ─────────────────────────────
	// Identity (immutable)
	// ─────────────────────────────

	// ID is the decimal epoch-millisecond timestamp of creation.
	// Example: "1718035200000"
	ID string `json:"id" yaml:"id"`

	// ─────────────────────────────
	// Content
	// ─────────────────────────────

	Title      string `json:"title" yaml:"title"`
	Content    string `json:"content" yaml:"content"`
	IsFavorite bool   `json:"isFavorite" yaml:"isFavorite"`

	// CategoryID references a Category. It may dangle after the category
	// is deleted; readers treat a dangling id as "no category".
	CategoryID *string `json:"categoryId" yaml:"categoryId"`

	// ─────────────────────────────
	// Timestamps (epoch milliseconds)
	// ─────────────────────────────

	CreatedAt int64 `json:"createdAt" yaml:"createdAt"`

	// UpdatedAt is refreshed on every content mutation, favorite toggle included.
	UpdatedAt int64 `json:"updatedAt" yaml:"updatedAt"`

	// ─────────────────────────────
	// Trash
	// ─────────────────────────────

	// DeletedAt marks the note as soft-deleted. nil means active.
	DeletedAt *int64 `json:"deletedAt" yaml:"deletedAt"`
}

// NoteInput carries the caller-provided fields of a new note.
type NoteInput struct {
	Title      string
	Content    string
	IsFavorite bool
	CategoryID *string
}

// NotePatch is a partial update. Nil fields are left untouched; when
// SetCategory is true CategoryID replaces the current value, nil included.
type NotePatch struct {
	Title       *string
	Content     *string
	IsFavorite  *bool
	SetCategory bool
	CategoryID  *string
}

// IsTrashed reports whether the note sits in the trash.
func (n Note) IsTrashed() bool {
	return n.DeletedAt != nil
}

// Clone returns a deep copy, so callers never share pointer fields with a store.
func (n Note) Clone() Note {
	c := n
	if n.CategoryID != nil {
		id := *n.CategoryID
		c.CategoryID = &id
	}
	if n.DeletedAt != nil {
		at := *n.DeletedAt
		c.DeletedAt = &at
	}
	return c
}

// Apply merges the patch into the note. It does not touch UpdatedAt.
func (p NotePatch) Apply(n *Note) {
	if p.Title != nil {
		n.Title = *p.Title
	}
	if p.Content != nil {
		n.Content = *p.Content
	}
	if p.IsFavorite != nil {
		n.IsFavorite = *p.IsFavorite
	}
	if p.SetCategory {
		if p.CategoryID == nil {
			n.CategoryID = nil
		} else {
			id := *p.CategoryID
			n.CategoryID = &id
		}
	}
}

// HasCategory reports whether the note references exactly the given category id.
func (n Note) HasCategory(id string) bool {
	return n.CategoryID != nil && *n.CategoryID == id
}

// IDMillis parses the numeric id. Non-numeric legacy ids yield 0.
func IDMillis(id string) int64 {
	v, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return 0
	}
	return v
}

// Created returns createdAt, falling back to the numeric id.
func (n Note) Created() int64 {
	if n.CreatedAt != 0 {
		return n.CreatedAt
	}
	return IDMillis(n.ID)
}

// Updated returns updatedAt, falling back to createdAt, then to the numeric id.
func (n Note) Updated() int64 {
	if n.UpdatedAt != 0 {
		return n.UpdatedAt
	}
	return n.Created()
}

// DaysUntilPurge is the number of whole days (rounded up, never negative)
// before a trashed note is eligible for permanent removal. Active notes return 0.
func DaysUntilPurge(n Note, now time.Time, retention time.Duration) int {
	if n.DeletedAt == nil {
		return 0
	}
	expires := *n.DeletedAt + retention.Milliseconds()
	left := expires - Millis(now)
	if left <= 0 {
		return 0
	}
	day := (24 * time.Hour).Milliseconds()
	return int((left + day - 1) / day)
}

// Millis converts t to epoch milliseconds.
func Millis(t time.Time) int64 {
	return t.UnixMilli()
}

// FormatID renders an epoch-millisecond value as a record id.
func FormatID(ms int64) string {
	return strconv.FormatInt(ms, 10)
}
