package backup

import (
	"time"

	"github.com/MrSnakeDoc/jot/internal/domain"
)

// Mapper converts between backup documents and domain records.
type Mapper struct {
	now func() time.Time
}

func NewMapper(now func() time.Time) *Mapper {
	if now == nil {
		now = time.Now
	}
	return &Mapper{now: now}
}

// ToDocument builds a backup from the full collections and the current filter.
func (m *Mapper) ToDocument(notes []domain.Note, categories []domain.Category, q domain.Query) Document {
	doc := Document{
		Version:    FormatVersion,
		ExportedAt: m.now().UTC(),
		Preferences: Preferences{
			OnlyFavorites: q.OnlyFavorites,
		},
		Categories: make([]CategoryRecord, 0, len(categories)),
		Notes:      make([]NoteRecord, 0, len(notes)),
	}
	if q.CategoryID != nil {
		doc.Preferences.Category = *q.CategoryID
	}

	for _, c := range categories {
		doc.Categories = append(doc.Categories, CategoryRecord{
			ID:      c.ID,
			Name:    c.Name,
			Color:   c.Color,
			Created: fromMillis(c.CreatedAt),
		})
	}

	for _, n := range notes {
		rec := NoteRecord{
			ID:       n.ID,
			Title:    n.Title,
			Content:  n.Content,
			Favorite: n.IsFavorite,
			Created:  fromMillis(n.CreatedAt),
			Updated:  fromMillis(n.UpdatedAt),
		}
		if n.CategoryID != nil {
			rec.Category = *n.CategoryID
		}
		if n.DeletedAt != nil {
			d := fromMillis(*n.DeletedAt)
			rec.Deleted = &d
		}
		doc.Notes = append(doc.Notes, rec)
	}
	return doc
}

// FromDocument returns the records of doc. Records without an id are
// dropped and counted in skipped.
func (m *Mapper) FromDocument(doc Document) (notes []domain.Note, categories []domain.Category, skipped int) {
	for _, rec := range doc.Categories {
		if rec.ID == "" {
			skipped++
			continue
		}
		c := domain.Category{
			ID:        rec.ID,
			Name:      rec.Name,
			Color:     rec.Color,
			CreatedAt: toMillis(rec.Created),
		}
		if c.Color == "" {
			c.Color = domain.DefaultCategoryColor
		}
		if c.CreatedAt == 0 {
			c.CreatedAt = domain.IDMillis(c.ID)
		}
		categories = append(categories, c)
	}

	for _, rec := range doc.Notes {
		if rec.ID == "" {
			skipped++
			continue
		}
		n := domain.Note{
			ID:         rec.ID,
			Title:      rec.Title,
			Content:    rec.Content,
			IsFavorite: rec.Favorite,
			CreatedAt:  toMillis(rec.Created),
			UpdatedAt:  toMillis(rec.Updated),
		}
		if rec.Category != "" {
			id := rec.Category
			n.CategoryID = &id
		}
		if rec.Deleted != nil {
			at := toMillis(*rec.Deleted)
			n.DeletedAt = &at
		}
		notes = append(notes, n)
	}
	return notes, categories, skipped
}

func fromMillis(ms int64) time.Time {
	if ms == 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms).UTC()
}

func toMillis(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixMilli()
}
