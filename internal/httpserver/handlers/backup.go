package handlers

import (
	"io"
	"net/http"

	"github.com/MrSnakeDoc/jot/internal/httpserver/deps"
	"github.com/MrSnakeDoc/jot/internal/logger"
	"github.com/MrSnakeDoc/jot/internal/sources/backup"
)

type importResponse struct {
	Notes      int `json:"notes"`
	Categories int `json:"categories"`
	Skipped    int `json:"skipped"`
}

// ExportBackup streams the whole notebook as a YAML backup.
func ExportBackup(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		nb := d.Notebook
		doc := backup.NewMapper(d.Now).ToDocument(nb.AllNotes(), nb.Categories(), nb.Query())

		w.Header().Set("Content-Type", "application/yaml")
		w.Header().Set("Content-Disposition", `attachment; filename="jot-backup.yaml"`)
		if err := backup.Encode(w, doc); err != nil {
			d.Logger.Warn("backup export failed", logger.Error(err))
		}
	}
}

// ImportBackup merges a YAML backup. Records whose id already exists are
// skipped; view preferences in the document are ignored.
func ImportBackup(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		doc, err := backup.Decode(io.LimitReader(r.Body, 16*maxBodyBytes))
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		notes, categories, skipped := backup.NewMapper(d.Now).FromDocument(doc)
		addedNotes, addedCategories := d.Notebook.Import(r.Context(), notes, categories)
		skipped += len(notes) - addedNotes + len(categories) - addedCategories

		d.Logger.Info("backup imported",
			logger.Int("notes", addedNotes),
			logger.Int("categories", addedCategories),
			logger.Int("skipped", skipped))
		writeJSON(w, http.StatusOK, importResponse{
			Notes:      addedNotes,
			Categories: addedCategories,
			Skipped:    skipped,
		})
	}
}
