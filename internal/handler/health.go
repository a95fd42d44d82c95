package handler

import (
	"net/http"

	"ewastevision/internal/dto"
)

// HealthHandler reports the state produced by status.
func HealthHandler(status func() dto.HealthResponse) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, status())
	}
}
