package handlers

import (
	"net/http"

	"github.com/MrSnakeDoc/jot/internal/domain"
	"github.com/MrSnakeDoc/jot/internal/httpserver/deps"
	"github.com/MrSnakeDoc/jot/internal/notebook"
)

type filterRequest struct {
	Search        *string        `json:"search"`
	SortBy        *string        `json:"sortBy" validate:"omitnil,oneof=date favorite updated"`
	SortOrder     *string        `json:"sortOrder" validate:"omitnil,oneof=asc desc"`
	CategoryID    optionalString `json:"categoryId"`
	OnlyFavorites *bool          `json:"showOnlyFavorites"`
}

func GetFilter(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, viewFilter(d.Notebook.Query()))
	}
}

// PatchFilter updates search, sort, active category and favorites-only.
// An explicit null categoryId clears the category filter.
func PatchFilter(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req filterRequest
		if !bind(d, w, r, &req) {
			return
		}

		patch := notebook.FilterPatch{
			Search:        req.Search,
			SetCategory:   req.CategoryID.Set,
			CategoryID:    req.CategoryID.Value,
			OnlyFavorites: req.OnlyFavorites,
		}
		if req.SortBy != nil {
			by := domain.SortBy(*req.SortBy)
			patch.SortBy = &by
		}
		if req.SortOrder != nil {
			order := domain.SortOrder(*req.SortOrder)
			patch.SortOrder = &order
		}
		if patch.CategoryID != nil && *patch.CategoryID == "" {
			patch.CategoryID = nil
		}

		q := d.Notebook.UpdateFilter(r.Context(), patch)
		writeJSON(w, http.StatusOK, viewFilter(q))
	}
}
