package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/jot/internal/httpserver/deps"
	"github.com/MrSnakeDoc/jot/internal/httpserver/handlers"
)

func init() { Register(registerAdmin) }

func registerAdmin(r chi.Router, d deps.Deps) {
	a := api(r, d)
	a.Get("/api/infra", handlers.Infra(d))
	writes(a, d).Post("/api/reload", handlers.Reload(d))
}
