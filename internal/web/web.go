// Package web serves the relay's auto-refreshing now-playing page.
//
// The page is purely presentational: static HTML/CSS embedded in the binary,
// rendered once through [html/template] to inject the poll interval, with all
// track rendering done client-side against /api/now-playing.
package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"strconv"
)

//go:embed static
var staticFiles embed.FS

const defaultPollIntervalSeconds = 3

// PageHandler serves the polling page and its stylesheet.
type PageHandler struct {
	tmpl           *template.Template
	pollIntervalMS int
}

// NewPageHandler parses the embedded page template with the given poll interval.
func NewPageHandler(pollIntervalSeconds int) (*PageHandler, error) {
	if pollIntervalSeconds <= 0 {
		pollIntervalSeconds = defaultPollIntervalSeconds
	}

	tmpl, err := template.ParseFS(staticFiles, "static/index.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse page template: %w", err)
	}

	return &PageHandler{
		tmpl:           tmpl,
		pollIntervalMS: pollIntervalSeconds * 1000,
	}, nil
}

// Routes returns the HTTP routes this handler serves.
func (h *PageHandler) Routes() []string {
	return []string{"/", "/static/styles.css"}
}

// ServeHTTP renders the page or serves the stylesheet.
func (h *PageHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Path {
	case "/":
		// template.JS keeps the interval literal byte-exact; the JS-context
		// escaper pads bare ints with spaces.
		var buf bytes.Buffer
		data := map[string]any{"PollIntervalMS": template.JS(strconv.Itoa(h.pollIntervalMS))}
		if err := h.tmpl.Execute(&buf, data); err != nil {
			http.Error(w, "failed to render page", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write(buf.Bytes())
	case "/static/styles.css":
		css, err := staticFiles.ReadFile("static/styles.css")
		if err != nil {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "text/css; charset=utf-8")
		w.Write(css)
	default:
		// the "/" pattern catches every unregistered path
		http.Error(w, "not found", http.StatusNotFound)
	}
}
