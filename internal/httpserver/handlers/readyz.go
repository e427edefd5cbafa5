package handlers

import (
	"net/http"

	"github.com/MrSnakeDoc/jot/internal/httpserver/deps"
)

type readyzResponse struct {
	Ready bool `json:"ready"`
}

// Readyz reports 503 until the notebook finished its initial load.
func Readyz(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ready := d.Notebook != nil && d.Notebook.Ready()
		status := http.StatusOK
		if !ready {
			status = http.StatusServiceUnavailable
		}
		writeJSON(w, status, readyzResponse{Ready: ready})
	}
}
