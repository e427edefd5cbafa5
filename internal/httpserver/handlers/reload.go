package handlers

import (
	"net/http"

	"github.com/MrSnakeDoc/jot/internal/httpserver/deps"
	"github.com/MrSnakeDoc/jot/internal/logger"
)

type reloadResponse struct {
	Active int `json:"active"`
	Trash  int `json:"trash"`
}

// Reload re-reads every key from storage, purging expired trash.
func Reload(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := d.Notebook.Reload(r.Context()); err != nil {
			d.Logger.Warn("manual reload failed",
				logger.String("remote_ip", r.RemoteAddr),
				logger.Error(err))
			writeError(w, http.StatusInternalServerError, "reload failed")
			return
		}
		d.Logger.Info("manual reload triggered via endpoint",
			logger.String("remote_ip", r.RemoteAddr))

		active, trashed := d.Notebook.Counts()
		writeJSON(w, http.StatusOK, reloadResponse{Active: active, Trash: trashed})
	}
}
