package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/jot/internal/domain"
	"github.com/MrSnakeDoc/jot/internal/httpserver/deps"
)

type createCategoryRequest struct {
	Name  string `json:"name" validate:"required,max=20"`
	Color string `json:"color" validate:"omitempty,hexcolor,len=7"`
}

type updateCategoryRequest struct {
	Name  *string `json:"name" validate:"omitempty,max=20"`
	Color *string `json:"color" validate:"omitempty,hexcolor,len=7"`
}

func ListCategories(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, viewCategories(d.Notebook.Categories()))
	}
}

func CreateCategory(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createCategoryRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		req.Name = strings.TrimSpace(req.Name)
		if err := d.Validate.Struct(req); err != nil {
			writeValidationError(w, err)
			return
		}

		c := d.Notebook.CreateCategory(r.Context(), domain.CategoryInput{Name: req.Name, Color: req.Color})
		writeJSON(w, http.StatusCreated, viewCategory(c))
	}
}

func UpdateCategory(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req updateCategoryRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		if req.Name != nil {
			name := strings.TrimSpace(*req.Name)
			if name == "" {
				writeJSON(w, http.StatusUnprocessableEntity, errorResponse{
					Error:  "validation failed",
					Fields: map[string]string{"name": "is required"},
				})
				return
			}
			req.Name = &name
		}
		if err := d.Validate.Struct(req); err != nil {
			writeValidationError(w, err)
			return
		}

		c, ok := d.Notebook.UpdateCategory(r.Context(), chi.URLParam(r, "id"), domain.CategoryPatch{
			Name:  req.Name,
			Color: req.Color,
		})
		if !ok {
			notFound(w, "category")
			return
		}
		writeJSON(w, http.StatusOK, viewCategory(c))
	}
}

// DeleteCategory removes the category. Notes keep their dangling reference.
func DeleteCategory(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !d.Notebook.DeleteCategory(r.Context(), chi.URLParam(r, "id")) {
			notFound(w, "category")
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
