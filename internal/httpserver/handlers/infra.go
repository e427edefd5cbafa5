package handlers

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/MrSnakeDoc/jot/internal/httpserver/deps"
)

type componentStatus struct {
	OK     bool     `json:"ok"`
	Mode   string   `json:"mode,omitempty"`
	Error  string   `json:"error,omitempty"`
	Active *int     `json:"active,omitempty"`
	Trash  *int     `json:"trash,omitempty"`
	Count  *int     `json:"count,omitempty"`
	Keys   []string `json:"keys,omitempty"`
}

type infraResponse struct {
	Status     string                     `json:"status"`
	Components map[string]componentStatus `json:"components"`
}

// pinger is implemented by backends with a remote connection.
type pinger interface {
	Ping(ctx context.Context) error
}

// keyLister is implemented by backends that can enumerate their keys.
type keyLister interface {
	Keys(ctx context.Context) ([]string, error)
}

// Infra reports the storage backend and collection sizes.
func Infra(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		nb := d.Notebook
		active, trashed := nb.Counts()
		categories := nb.CategoryCount()

		components := map[string]componentStatus{
			"storage": checkStorage(r.Context(), d),
			"notes": {
				OK:     nb.Ready(),
				Active: &active,
				Trash:  &trashed,
			},
			"categories": {
				OK:    nb.Ready(),
				Count: &categories,
			},
		}

		writeJSON(w, http.StatusOK, infraResponse{
			Status:     overallStatus(components),
			Components: components,
		})
	}
}

func overallStatus(components map[string]componentStatus) string {
	if notes, ok := components["notes"]; ok && !notes.OK {
		return "loading"
	}
	// Memory stays authoritative when the backend fails; writes are lost on restart.
	if st, ok := components["storage"]; ok && !st.OK {
		return "degraded"
	}
	return "ok"
}

func checkStorage(ctx context.Context, d deps.Deps) componentStatus {
	if d.Storage == nil {
		return componentStatus{OK: false, Error: "not initialized"}
	}
	status := componentStatus{OK: true, Mode: string(d.StorageKind)}

	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if p, ok := d.Storage.(pinger); ok {
		if err := p.Ping(ctx); err != nil {
			status.OK = false
			status.Error = err.Error()
			return status
		}
	}
	if l, ok := d.Storage.(keyLister); ok {
		keys, err := l.Keys(ctx)
		if err != nil {
			status.OK = false
			status.Error = err.Error()
			return status
		}
		sort.Strings(keys)
		status.Keys = keys
	}
	return status
}
