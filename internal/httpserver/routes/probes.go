package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/jot/internal/httpserver/deps"
	"github.com/MrSnakeDoc/jot/internal/httpserver/handlers"
)

func init() { Register(registerProbes) }

func registerProbes(r chi.Router, d deps.Deps) {
	r.Get("/healthz", handlers.Healthz(d))
	api(r, d).Get("/readyz", handlers.Readyz(d))
	if d.Metrics != nil {
		api(r, d).Handle("/metrics", d.Metrics.Handler())
	}
}
