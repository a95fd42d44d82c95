package handler

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"

	"ewastevision/internal/logger"
	"ewastevision/internal/model"
)

//go:embed templates/index.html
var templatesFS embed.FS

var indexTemplate = template.Must(template.ParseFS(templatesFS, "templates/index.html"))

// ClassSwatch is one legend entry on the demo page.
type ClassSwatch struct {
	Name    string
	R, G, B uint8
}

// PageInfo is rendered into the demo page.
type PageInfo struct {
	ServerIP   string
	ServerPort int
	FeedURL    string
	Classes    []ClassSwatch
}

// NewPageInfo builds the page data with the legend in the given class order.
func NewPageInfo(serverIP string, port int, feedURL string, order []string, colors model.ColorMap) PageInfo {
	info := PageInfo{ServerIP: serverIP, ServerPort: port, FeedURL: feedURL}
	for _, name := range order {
		c := colors.Color(name)
		info.Classes = append(info.Classes, ClassSwatch{Name: name, R: c.R, G: c.G, B: c.B})
	}
	return info
}

// IndexHandler serves the live stream demo page.
func IndexHandler(info PageInfo, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}

		var buf bytes.Buffer
		if err := indexTemplate.Execute(&buf, info); err != nil {
			logger.Error("Error rendering index page: %v", err)
			writeError(w, http.StatusInternalServerError, "failed to render page")
			return
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write(buf.Bytes())
	}
}
