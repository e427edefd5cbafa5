package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/jot/internal/httpserver/deps"
)

func ListToasts(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, viewToasts(d.Notebook.Toasts().List()))
	}
}

func DismissToast(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !d.Notebook.Toasts().Dismiss(chi.URLParam(r, "id")) {
			notFound(w, "toast")
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// TriggerToast runs the toast action (undo) and dismisses it.
func TriggerToast(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !d.Notebook.Toasts().Trigger(chi.URLParam(r, "id")) {
			notFound(w, "toast action")
			return
		}
		writeJSON(w, http.StatusOK, viewToasts(d.Notebook.Toasts().List()))
	}
}
