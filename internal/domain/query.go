package domain

import (
	"fmt"
	"sort"
	"strings"
)

// SortBy selects the key the visible note list is ordered by.
type SortBy string

const (
	SortByDate     SortBy = "date"     // creation date
	SortByFavorite SortBy = "favorite" // favorites first (desc)
	SortByUpdated  SortBy = "updated"  // last update
)

// SortOrder is the sort direction.
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// ParseSortBy validates a sort key coming from the outside.
func ParseSortBy(s string) (SortBy, error) {
	switch SortBy(s) {
	case SortByDate, SortByFavorite, SortByUpdated:
		return SortBy(s), nil
	default:
		return "", fmt.Errorf("unknown sort key %q", s)
	}
}

// ParseSortOrder validates a sort direction coming from the outside.
func ParseSortOrder(s string) (SortOrder, error) {
	switch SortOrder(s) {
	case SortAsc, SortDesc:
		return SortOrder(s), nil
	default:
		return "", fmt.Errorf("unknown sort order %q", s)
	}
}

// Query is the full filter/sort state used to derive the visible list.
type Query struct {
	Search        string
	SortBy        SortBy
	SortOrder     SortOrder
	CategoryID    *string // nil = every category
	OnlyFavorites bool

	// KnownCategory, when set, reports whether a category id still exists.
	// A CategoryID it rejects matches no note, even notes still tagged
	// with the dangling id.
	KnownCategory func(id string) bool
}

// DefaultQuery is newest-first by creation date with no filter.
func DefaultQuery() Query {
	return Query{SortBy: SortByDate, SortOrder: SortDesc}
}

// Matches reports whether n passes the search, category and favorites
// predicates. All three must hold.
func (q Query) Matches(n Note) bool {
	return q.matchesSearch(n) && q.matchesCategory(n) && q.matchesFavorites(n)
}

func (q Query) matchesSearch(n Note) bool {
	if q.Search == "" {
		return true
	}
	needle := strings.ToLower(q.Search)
	return strings.Contains(strings.ToLower(n.Title), needle) ||
		strings.Contains(strings.ToLower(n.Content), needle)
}

func (q Query) matchesCategory(n Note) bool {
	if q.CategoryID == nil {
		return true
	}
	if q.KnownCategory != nil && !q.KnownCategory(*q.CategoryID) {
		return false
	}
	return n.HasCategory(*q.CategoryID)
}

func (q Query) matchesFavorites(n Note) bool {
	return !q.OnlyFavorites || n.IsFavorite
}

// Apply filters notes with q and returns them sorted in a new slice.
// The input slice is never reordered. Equal keys keep their input order.
func Apply(notes []Note, q Query) []Note {
	out := make([]Note, 0, len(notes))
	for _, n := range notes {
		if q.Matches(n) {
			out = append(out, n)
		}
	}

	key := sortKey(q.SortBy)
	asc := q.SortOrder == SortAsc
	sort.SliceStable(out, func(i, j int) bool {
		a, b := key(out[i]), key(out[j])
		if asc {
			return a < b
		}
		return a > b
	})
	return out
}

func sortKey(by SortBy) func(Note) int64 {
	switch by {
	case SortByFavorite:
		return func(n Note) int64 {
			if n.IsFavorite {
				return 1
			}
			return 0
		}
	case SortByUpdated:
		return Note.Updated
	default:
		return Note.Created
	}
}
