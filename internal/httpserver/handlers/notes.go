package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/jot/internal/domain"
	"github.com/MrSnakeDoc/jot/internal/httpserver/deps"
	"github.com/MrSnakeDoc/jot/internal/logger"
)

type createNoteRequest struct {
	Title      string  `json:"title" validate:"required_without=Content"`
	Content    string  `json:"content" validate:"required_without=Title"`
	IsFavorite bool    `json:"isFavorite"`
	CategoryID *string `json:"categoryId" validate:"omitempty,min=1"`
}

type updateNoteRequest struct {
	Title      *string        `json:"title"`
	Content    *string        `json:"content"`
	IsFavorite *bool          `json:"isFavorite"`
	CategoryID optionalString `json:"categoryId"`
}

type bulkRequest struct {
	IDs []string `json:"ids" validate:"required,min=1,dive,required"`
}

type countResponse struct {
	Count int `json:"count"`
}

// ListNotes serves GET /api/notes?view=active|trash|all.
func ListNotes(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		nb := d.Notebook
		switch view := r.URL.Query().Get("view"); view {
		case "", "active":
			writeJSON(w, http.StatusOK, viewNotes(nb, nb.Notes()))
		case "trash":
			writeJSON(w, http.StatusOK, viewNotes(nb, nb.Trash()))
		case "all":
			writeJSON(w, http.StatusOK, viewNotes(nb, nb.AllNotes()))
		default:
			writeError(w, http.StatusBadRequest, "unknown view "+view+" (want active, trash or all)")
		}
	}
}

// VisibleNotes serves the filtered, sorted list.
func VisibleNotes(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, viewNotes(d.Notebook, d.Notebook.Visible()))
	}
}

func GetNote(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		n, ok := d.Notebook.Note(chi.URLParam(r, "id"))
		if !ok {
			notFound(w, "note")
			return
		}
		writeJSON(w, http.StatusOK, viewNote(d.Notebook, n))
	}
}

func CreateNote(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createNoteRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		req.Title = strings.TrimSpace(req.Title)
		req.Content = strings.TrimSpace(req.Content)
		if err := d.Validate.Struct(req); err != nil {
			writeValidationError(w, err)
			return
		}

		n := d.Notebook.CreateNote(r.Context(), domain.NoteInput{
			Title:      req.Title,
			Content:    req.Content,
			IsFavorite: req.IsFavorite,
			CategoryID: req.CategoryID,
		})
		d.Logger.Debug("note created", logger.String("note_id", n.ID))
		writeJSON(w, http.StatusCreated, viewNote(d.Notebook, n))
	}
}

func UpdateNote(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		var req updateNoteRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		current, ok := d.Notebook.Note(id)
		if !ok {
			notFound(w, "note")
			return
		}

		patch := domain.NotePatch{
			IsFavorite:  req.IsFavorite,
			SetCategory: req.CategoryID.Set,
			CategoryID:  req.CategoryID.Value,
		}
		if req.Title != nil {
			title := strings.TrimSpace(*req.Title)
			patch.Title = &title
		}
		if req.Content != nil {
			content := strings.TrimSpace(*req.Content)
			patch.Content = &content
		}

		merged := current
		patch.Apply(&merged)
		if merged.Title == "" && merged.Content == "" {
			writeJSON(w, http.StatusUnprocessableEntity, errorResponse{
				Error:  "validation failed",
				Fields: map[string]string{"title": "title and content cannot both be empty"},
			})
			return
		}

		n, ok := d.Notebook.UpdateNote(r.Context(), id, patch)
		if !ok {
			notFound(w, "note")
			return
		}
		writeJSON(w, http.StatusOK, viewNote(d.Notebook, n))
	}
}

func ToggleFavorite(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		n, ok := d.Notebook.ToggleFavorite(r.Context(), chi.URLParam(r, "id"))
		if !ok {
			notFound(w, "note")
			return
		}
		writeJSON(w, http.StatusOK, viewNote(d.Notebook, n))
	}
}

// DeleteNote moves a note to the trash.
func DeleteNote(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !d.Notebook.DeleteNote(r.Context(), chi.URLParam(r, "id")) {
			notFound(w, "note")
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// BulkDelete moves the listed notes to the trash.
func BulkDelete(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req bulkRequest
		if !bind(d, w, r, &req) {
			return
		}
		n := d.Notebook.DeleteNotes(r.Context(), req.IDs)
		writeJSON(w, http.StatusOK, countResponse{Count: n})
	}
}

// RestoreNote brings a note back from the trash.
func RestoreNote(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if !d.Notebook.RestoreFromTrash(r.Context(), id) {
			notFound(w, "trashed note")
			return
		}
		n, _ := d.Notebook.Note(id)
		writeJSON(w, http.StatusOK, viewNote(d.Notebook, n))
	}
}

// PurgeNote permanently deletes one note.
func PurgeNote(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !d.Notebook.PermanentlyDelete(r.Context(), chi.URLParam(r, "id")) {
			notFound(w, "note")
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func EmptyTrash(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		n := d.Notebook.EmptyTrash(r.Context())
		writeJSON(w, http.StatusOK, countResponse{Count: n})
	}
}
