package handlers

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/MrSnakeDoc/jot/internal/domain"
	"github.com/MrSnakeDoc/jot/internal/notebook"
	"github.com/MrSnakeDoc/jot/internal/toast"
)

// noteView is domain.Note plus the days left before a trashed note is purged.
type noteView struct {
	domain.Note
	DaysUntilPurge *int `json:"daysUntilPurge,omitempty"`
}

func viewNote(nb *notebook.Notebook, n domain.Note) noteView {
	v := noteView{Note: n}
	if n.IsTrashed() {
		days := nb.DaysUntilPurge(n)
		v.DaysUntilPurge = &days
	}
	return v
}

func viewNotes(nb *notebook.Notebook, notes []domain.Note) []noteView {
	out := make([]noteView, len(notes))
	for i, n := range notes {
		out[i] = viewNote(nb, n)
	}
	return out
}

// categoryView adds the text color readable on the category color.
type categoryView struct {
	domain.Category
	TextColor string `json:"textColor"`
}

func viewCategory(c domain.Category) categoryView {
	return categoryView{Category: c, TextColor: domain.ContrastTextColor(c.Color)}
}

func viewCategories(categories []domain.Category) []categoryView {
	out := make([]categoryView, len(categories))
	for i, c := range categories {
		out[i] = viewCategory(c)
	}
	return out
}

type filterView struct {
	Search        string  `json:"search"`
	SortBy        string  `json:"sortBy"`
	SortOrder     string  `json:"sortOrder"`
	CategoryID    *string `json:"categoryId"`
	OnlyFavorites bool    `json:"showOnlyFavorites"`
}

func viewFilter(q domain.Query) filterView {
	return filterView{
		Search:        q.Search,
		SortBy:        string(q.SortBy),
		SortOrder:     string(q.SortOrder),
		CategoryID:    q.CategoryID,
		OnlyFavorites: q.OnlyFavorites,
	}
}

type selectionView struct {
	Active bool     `json:"active"`
	IDs    []string `json:"ids"`
}

func viewSelection(s notebook.SelectionState) selectionView {
	ids := s.IDs
	if ids == nil {
		ids = []string{}
	}
	return selectionView{Active: s.Active, IDs: ids}
}

type toastView struct {
	ID          string    `json:"id"`
	Message     string    `json:"message"`
	Type        string    `json:"type"`
	Duration    int64     `json:"duration"` // milliseconds
	CreatedAt   time.Time `json:"createdAt"`
	ActionLabel string    `json:"actionLabel,omitempty"`
}

func viewToasts(list []toast.Toast) []toastView {
	out := make([]toastView, len(list))
	for i, t := range list {
		out[i] = toastView{
			ID:        t.ID,
			Message:   t.Message,
			Type:      string(t.Type),
			Duration:  t.Duration.Milliseconds(),
			CreatedAt: t.CreatedAt,
		}
		if t.Action != nil {
			out[i].ActionLabel = t.Action.Label
		}
	}
	return out
}

// optionalString tells an absent field from an explicit null.
type optionalString struct {
	Set   bool
	Value *string
}

func (o *optionalString) UnmarshalJSON(data []byte) error {
	o.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		o.Value = nil
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	o.Value = &s
	return nil
}
