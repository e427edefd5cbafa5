package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/jot/internal/httpserver/deps"
	"github.com/MrSnakeDoc/jot/internal/httpserver/handlers"
)

func init() { Register(registerBackup) }

func registerBackup(r chi.Router, d deps.Deps) {
	a := api(r, d)
	a.Get("/api/backup", handlers.ExportBackup(d))
	writes(a, d).Post("/api/backup", handlers.ImportBackup(d))
}
