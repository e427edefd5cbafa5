package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/jot/internal/httpserver/deps"
)

type enterSelectionRequest struct {
	Seed string `json:"seed"`
}

func GetSelection(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, viewSelection(d.Notebook.Selection()))
	}
}

// EnterSelection turns selection mode on, seeded with an optional note id.
func EnterSelection(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req enterSelectionRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		if req.Seed != "" {
			if _, ok := d.Notebook.Note(req.Seed); !ok {
				notFound(w, "note")
				return
			}
			d.Notebook.EnterSelection(req.Seed)
		} else {
			d.Notebook.EnterSelection()
		}
		writeJSON(w, http.StatusOK, viewSelection(d.Notebook.Selection()))
	}
}

func ToggleSelection(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		d.Notebook.ToggleSelection(chi.URLParam(r, "id"))
		writeJSON(w, http.StatusOK, viewSelection(d.Notebook.Selection()))
	}
}

// SelectAll selects every visible note, or clears when all are selected.
func SelectAll(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		d.Notebook.SelectAllVisible()
		writeJSON(w, http.StatusOK, viewSelection(d.Notebook.Selection()))
	}
}

func ExitSelection(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		d.Notebook.ExitSelection()
		writeJSON(w, http.StatusOK, viewSelection(d.Notebook.Selection()))
	}
}

// DeleteSelected trashes the selection and leaves selection mode.
func DeleteSelected(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		n := d.Notebook.DeleteSelected(r.Context())
		writeJSON(w, http.StatusOK, countResponse{Count: n})
	}
}
