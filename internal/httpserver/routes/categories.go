package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/jot/internal/httpserver/deps"
	"github.com/MrSnakeDoc/jot/internal/httpserver/handlers"
)

func init() { Register(registerCategories) }

func registerCategories(r chi.Router, d deps.Deps) {
	a := api(r, d)
	a.Get("/api/categories", handlers.ListCategories(d))

	w := writes(a, d)
	w.Post("/api/categories", handlers.CreateCategory(d))
	w.Patch("/api/categories/{id}", handlers.UpdateCategory(d))
	w.Delete("/api/categories/{id}", handlers.DeleteCategory(d))
}
