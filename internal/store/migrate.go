package store

import (
	"encoding/json"
	"fmt"

	"github.com/MrSnakeDoc/jot/internal/domain"
)

// storedNote is the widest shape a persisted note has ever had. Records
// written before timestamps existed lack createdAt/updatedAt, and records
// written before the trash existed lack deletedAt.
type storedNote struct {
	ID         string  `json:"id"`
	Title      string  `json:"title"`
	Content    string  `json:"content"`
	IsFavorite bool    `json:"isFavorite"`
	CreatedAt  *int64  `json:"createdAt"`
	UpdatedAt  *int64  `json:"updatedAt"`
	CategoryID *string `json:"categoryId"`
	DeletedAt  *int64  `json:"deletedAt"`
}

// normalize produces the canonical record:
//   - createdAt missing or zero -> numeric id
//   - updatedAt missing or zero -> numeric id
//   - deletedAt missing -> nil (active)
//
// Running it on an already canonical record is a no-op.
func (s storedNote) normalize() domain.Note {
	fromID := domain.IDMillis(s.ID)

	n := domain.Note{
		ID:         s.ID,
		Title:      s.Title,
		Content:    s.Content,
		IsFavorite: s.IsFavorite,
		CreatedAt:  fromID,
		UpdatedAt:  fromID,
		CategoryID: s.CategoryID,
		DeletedAt:  s.DeletedAt,
	}
	if s.CreatedAt != nil && *s.CreatedAt != 0 {
		n.CreatedAt = *s.CreatedAt
	}
	if s.UpdatedAt != nil && *s.UpdatedAt != 0 {
		n.UpdatedAt = *s.UpdatedAt
	}
	return n
}

// decodeNotes parses a persisted notes blob. A blob that is not a JSON
// array is an error; individual records that cannot be decoded are
// returned in skipped and left out.
func decodeNotes(blob string) (notes []domain.Note, skipped int, err error) {
	var raw []json.RawMessage
	if err := json.Unmarshal([]byte(blob), &raw); err != nil {
		return nil, 0, fmt.Errorf("notes blob is not a json array: %w", err)
	}

	notes = make([]domain.Note, 0, len(raw))
	for _, r := range raw {
		var sn storedNote
		if err := json.Unmarshal(r, &sn); err != nil || sn.ID == "" {
			skipped++
			continue
		}
		notes = append(notes, sn.normalize())
	}
	return notes, skipped, nil
}

// NormalizeNote applies the load-time normalization to a note coming from
// another source (backup import).
func NormalizeNote(n domain.Note) domain.Note {
	created, updated := n.CreatedAt, n.UpdatedAt
	return storedNote{
		ID:         n.ID,
		Title:      n.Title,
		Content:    n.Content,
		IsFavorite: n.IsFavorite,
		CreatedAt:  &created,
		UpdatedAt:  &updated,
		CategoryID: n.CategoryID,
		DeletedAt:  n.DeletedAt,
	}.normalize()
}

func encodeNotes(notes []domain.Note) (string, error) {
	if notes == nil {
		notes = []domain.Note{}
	}
	data, err := json.Marshal(notes)
	if err != nil {
		return "", fmt.Errorf("failed to encode notes: %w", err)
	}
	return string(data), nil
}

func decodeCategories(blob string) ([]domain.Category, error) {
	var categories []domain.Category
	if err := json.Unmarshal([]byte(blob), &categories); err != nil {
		return nil, fmt.Errorf("categories blob is not a json array: %w", err)
	}
	if categories == nil {
		categories = []domain.Category{}
	}
	return categories, nil
}

func encodeCategories(categories []domain.Category) (string, error) {
	if categories == nil {
		categories = []domain.Category{}
	}
	data, err := json.Marshal(categories)
	if err != nil {
		return "", fmt.Errorf("failed to encode categories: %w", err)
	}
	return string(data), nil
}
