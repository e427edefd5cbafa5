package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/jot/internal/httpserver/deps"
	"github.com/MrSnakeDoc/jot/internal/httpserver/handlers"
)

func init() { Register(registerView) }

// registerView wires the per-session view state: filter, selection and toasts.
func registerView(r chi.Router, d deps.Deps) {
	a := api(r, d)
	a.Get("/api/filter", handlers.GetFilter(d))
	a.Get("/api/selection", handlers.GetSelection(d))
	a.Get("/api/toasts", handlers.ListToasts(d))

	w := writes(a, d)
	w.Patch("/api/filter", handlers.PatchFilter(d))

	w.Post("/api/selection/enter", handlers.EnterSelection(d))
	w.Post("/api/selection/toggle/{id}", handlers.ToggleSelection(d))
	w.Post("/api/selection/all", handlers.SelectAll(d))
	w.Post("/api/selection/exit", handlers.ExitSelection(d))
	w.Post("/api/selection/delete", handlers.DeleteSelected(d))

	w.Post("/api/toasts/{id}/dismiss", handlers.DismissToast(d))
	w.Post("/api/toasts/{id}/action", handlers.TriggerToast(d))
}
