package handler

import (
	"errors"
	"net/http"

	"ewastevision/internal/dto"
	"ewastevision/internal/logger"
	"ewastevision/internal/service/storage"
)

const maxSnapshotLimit = 200

// SnapshotStore lists and resolves recorded snapshots.
type SnapshotStore interface {
	Recent(filter *dto.SnapshotFilters) (*dto.SnapshotsData, error)
	Path(filename string) (string, error)
}

// SnapshotsHandler returns the most recent snapshots, optionally filtered by class.
func SnapshotsHandler(store SnapshotStore, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		limit := atoiDefault(q.Get("limit"), 24)
		if limit > maxSnapshotLimit {
			limit = maxSnapshotLimit
		}

		data, err := store.Recent(&dto.SnapshotFilters{
			Source:    q.Get("source"),
			ClassName: q.Get("class"),
			Limit:     limit,
		})
		if err != nil {
			logger.Error("Error querying snapshots: %v", err)
			writeError(w, http.StatusInternalServerError, "failed to list snapshots")
			return
		}

		writeJSON(w, http.StatusOK, data)
	}
}

// ViewSnapshotHandler serves one recorded snapshot image.
func ViewSnapshotHandler(store SnapshotStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := r.URL.Query().Get("file")
		if name == "" {
			writeError(w, http.StatusBadRequest, "file parameter is required")
			return
		}

		path, err := store.Path(name)
		if err != nil {
			if errors.Is(err, storage.ErrSnapshotNotFound) {
				writeError(w, http.StatusNotFound, "snapshot not found")
				return
			}
			writeError(w, http.StatusInternalServerError, "failed to resolve snapshot")
			return
		}

		w.Header().Set("Content-Type", "image/jpeg")
		http.ServeFile(w, r, path)
	}
}
