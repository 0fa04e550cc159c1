package server

import (
	"context"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/nowplay/internal/shared"
)

const (
	defaultWindow = 60 * time.Second
	defaultMax    = 120
)

// rateWindow tracks request counts for one (client, route) key.
type rateWindow struct {
	count   int
	resetAt time.Time
}

// Gate is the combined rate-limit and access-control checkpoint applied to
// every /api route. Rate limiting runs before access control, so an
// unauthenticated flood is throttled before the auth check executes.
//
// The window table is mutex guarded; entries are created lazily per key and
// recycled in place when their window elapses.
type Gate struct {
	window time.Duration
	max    int
	public bool
	secret string
	logger *log.Logger

	mu      sync.Mutex
	windows map[string]rateWindow
}

// GateOpts contains configuration options for creating a Gate.
type GateOpts struct {
	Window time.Duration
	Max    int
	Public bool
	Secret string
	Logger *log.Logger
}

// NewGate creates a Gate with the provided limits and access policy.
func NewGate(opts GateOpts) *Gate {
	if opts.Window <= 0 {
		opts.Window = defaultWindow
	}
	if opts.Max <= 0 {
		opts.Max = defaultMax
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}

	return &Gate{
		window:  opts.Window,
		max:     opts.Max,
		public:  opts.Public,
		secret:  opts.Secret,
		logger:  opts.Logger,
		windows: make(map[string]rateWindow),
	}
}

// Allow records a request against key and reports whether it fits in the
// current window. A fresh window starts whenever none exists or the previous
// one has elapsed.
func (g *Gate) Allow(key string) bool {
	now := time.Now()

	g.mu.Lock()
	defer g.mu.Unlock()

	win, ok := g.windows[key]
	if !ok || now.After(win.resetAt) {
		g.windows[key] = rateWindow{count: 1, resetAt: now.Add(g.window)}
		return true
	}
	if win.count >= g.max {
		return false
	}
	win.count++
	g.windows[key] = win
	return true
}

// Authorized reports whether the request may pass access control.
//
// Public mode with no configured secret admits everyone. Otherwise the
// Authorization header must carry a bearer token exactly equal to the secret.
func (g *Gate) Authorized(r *http.Request) bool {
	if g.public && g.secret == "" {
		return true
	}

	header := r.Header.Get("Authorization")
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok {
		return false
	}
	return token == g.secret
}

// RateLimit returns middleware enforcing the per-(client, route) window on /api routes.
func (g *Gate) RateLimit() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !strings.HasPrefix(r.URL.Path, "/api/") {
				next.ServeHTTP(w, r)
				return
			}

			key := ClientIP(r) + "|" + r.URL.Path
			if !g.Allow(key) {
				g.logger.Warn("rate limited", "key", key)
				writeError(w, http.StatusTooManyRequests, shared.ErrRateLimited.Error())
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// AccessControl returns middleware gating /api routes behind the shared secret.
//
// The health endpoint is always admitted so probes work without credentials.
func (g *Gate) AccessControl() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !strings.HasPrefix(r.URL.Path, "/api/") || r.URL.Path == "/api/health" {
				next.ServeHTTP(w, r)
				return
			}

			if !g.Authorized(r) {
				writeError(w, http.StatusUnauthorized, shared.ErrUnauthorized.Error())
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Sweep removes windows whose reset time has passed and returns the number evicted.
//
// Purely an upkeep concern: admission decisions are identical with or without it.
func (g *Gate) Sweep(now time.Time) int {
	g.mu.Lock()
	defer g.mu.Unlock()

	evicted := 0
	for key, win := range g.windows {
		if now.After(win.resetAt) {
			delete(g.windows, key)
			evicted++
		}
	}
	return evicted
}

// SweepLoop runs Sweep on the given interval until ctx is cancelled.
func (g *Gate) SweepLoop(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if n := g.Sweep(now); n > 0 {
				g.logger.Debug("swept rate windows", "evicted", n)
			}
		}
	}
}

// Keys returns the number of tracked rate windows.
func (g *Gate) Keys() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.windows)
}

// ClientIP extracts a best-effort client address: the first X-Forwarded-For
// hop when present, otherwise the connection's remote host.
func ClientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if first, _, ok := strings.Cut(fwd, ","); ok {
			return strings.TrimSpace(first)
		}
		return strings.TrimSpace(fwd)
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// RequestLogger returns middleware tagging each request with a generated ID
// and logging method, path, and client.
func RequestLogger(logger *log.Logger) Middleware {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := shared.GenerateID()
			w.Header().Set("X-Request-ID", id)
			logger.Info("request", "id", id, "method", r.Method, "path", r.URL.Path, "client", ClientIP(r))
			next.ServeHTTP(w, r)
		})
	}
}
