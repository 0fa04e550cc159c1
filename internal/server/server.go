// package server contains middleware & handlers for the now-playing relay
package server

import (
	"encoding/json"
	"net/http"
)

// Middleware wraps an http.Handler and returns a new http.Handler with additional behavior.
// The relay's stack is request logging, rate limiting, access control, and cache suppression.
type Middleware func(http.Handler) http.Handler

// Handler defines the interface for HTTP request handlers in the relay.
// Implementations handle specific endpoints (health, playback status, the polling page).
type Handler interface {
	http.Handler      // ServeHTTP handles the HTTP request and writes the response
	Routes() []string // Routes returns the path patterns this handler serves
}

// Router defines the interface for HTTP routing and middleware management.
type Router interface {
	Use(middleware ...Middleware)                     // Use adds middleware to the router's middleware stack
	Handle(method, path string, handler http.Handler) // Handle registers a handler for the specified method and path
	Handler(handler Handler)                          // Handler registers a custom Handler implementation
	ServeHTTP(w http.ResponseWriter, r *http.Request) // ServeHTTP implements http.Handler for the entire router
}

// writeJSON serializes v with the given status. API responses are never cacheable.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes the relay's JSON error body.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
