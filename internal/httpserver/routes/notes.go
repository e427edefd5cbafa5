package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/jot/internal/httpserver/deps"
	"github.com/MrSnakeDoc/jot/internal/httpserver/handlers"
)

func init() { Register(registerNotes) }

func registerNotes(r chi.Router, d deps.Deps) {
	a := api(r, d)
	a.Get("/api/notes", handlers.ListNotes(d))
	a.Get("/api/notes/visible", handlers.VisibleNotes(d))
	a.Get("/api/notes/{id}", handlers.GetNote(d))

	w := writes(a, d)
	w.Post("/api/notes", handlers.CreateNote(d))
	w.Post("/api/notes/bulk-delete", handlers.BulkDelete(d))
	w.Patch("/api/notes/{id}", handlers.UpdateNote(d))
	w.Delete("/api/notes/{id}", handlers.DeleteNote(d))
	w.Post("/api/notes/{id}/favorite", handlers.ToggleFavorite(d))
	w.Post("/api/notes/{id}/restore", handlers.RestoreNote(d))

	w.Delete("/api/trash/{id}", handlers.PurgeNote(d))
	w.Delete("/api/trash", handlers.EmptyTrash(d))
}
