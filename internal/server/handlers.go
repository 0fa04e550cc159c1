package server

import (
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/nowplay/internal/formatter"
	"github.com/desertthunder/nowplay/internal/services"
	"github.com/desertthunder/nowplay/internal/shared"
)

// APIHandler serves the relay's JSON and plain-text playback endpoints.
type APIHandler struct {
	player services.Player
	logger *log.Logger
}

// NewAPIHandler creates an APIHandler backed by the given player.
func NewAPIHandler(player services.Player, logger *log.Logger) *APIHandler {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &APIHandler{player: player, logger: logger}
}

// Routes returns the HTTP routes this handler serves.
func (h *APIHandler) Routes() []string {
	return []string{"/api/health", "/api/now-playing", "/api/now-playing.txt"}
}

// ServeHTTP dispatches on the request path.
func (h *APIHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Path {
	case "/api/health":
		h.Health(w, r)
	case "/api/now-playing":
		h.NowPlaying(w, r)
	case "/api/now-playing.txt":
		h.NowPlayingText(w, r)
	default:
		writeError(w, http.StatusNotFound, "not found")
	}
}

// Health reports liveness. Always admitted by access control, still rate limited.
func (h *APIHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// NowPlaying returns the normalized playback snapshot as JSON.
//
// Any upstream failure maps to a 502 with the relay's JSON error body.
func (h *APIHandler) NowPlaying(w http.ResponseWriter, r *http.Request) {
	view, err := h.player.NowPlaying(r.Context())
	if err != nil {
		h.logger.Error("upstream fetch failed", "error", err)
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, view)
}

// NowPlayingText returns "<track> — <artist>" when something is playing and
// an empty body otherwise. Upstream failures get a 502 with an empty body;
// scripts consuming this endpoint only care about the line itself.
func (h *APIHandler) NowPlayingText(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")

	view, err := h.player.NowPlaying(r.Context())
	if err != nil {
		h.logger.Error("upstream fetch failed", "error", err)
		w.WriteHeader(http.StatusBadGateway)
		return
	}

	if line := formatter.PlainLine(view); line != "" {
		w.Write([]byte(line + "\n"))
	}
}
