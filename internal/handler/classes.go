package handler

import (
	"net/http"

	"ewastevision/internal/dto"
	"ewastevision/internal/model"
)

// ClassesHandler lists the detection classes with their display colors in RGB order.
func ClassesHandler(colors model.ColorMap) http.HandlerFunc {
	classes := make(map[string]dto.ClassInfo, len(colors))
	for name, c := range colors {
		classes[name] = dto.ClassInfo{Color: [3]uint8{c.R, c.G, c.B}}
	}

	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, classes)
	}
}
