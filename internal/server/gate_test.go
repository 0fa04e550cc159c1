package server

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestGateAllow(t *testing.T) {
	t.Run("Admits Up To Max", func(t *testing.T) {
		gate := NewGate(GateOpts{Window: time.Minute, Max: 3, Public: true})

		for i := 0; i < 3; i++ {
			if !gate.Allow("1.2.3.4|/api/now-playing") {
				t.Fatalf("request %d should be admitted", i+1)
			}
		}
		if gate.Allow("1.2.3.4|/api/now-playing") {
			t.Error("request over the max should be rejected")
		}
	})

	t.Run("Keys Are Independent", func(t *testing.T) {
		gate := NewGate(GateOpts{Window: time.Minute, Max: 1, Public: true})

		if !gate.Allow("1.2.3.4|/api/now-playing") {
			t.Fatal("first key should be admitted")
		}
		if !gate.Allow("5.6.7.8|/api/now-playing") {
			t.Error("a different client should have its own window")
		}
		if !gate.Allow("1.2.3.4|/api/health") {
			t.Error("a different route should have its own window")
		}
	})

	t.Run("Window Reset", func(t *testing.T) {
		gate := NewGate(GateOpts{Window: 20 * time.Millisecond, Max: 1, Public: true})

		if !gate.Allow("k") {
			t.Fatal("first request should be admitted")
		}
		if gate.Allow("k") {
			t.Fatal("second request in window should be rejected")
		}

		time.Sleep(30 * time.Millisecond)

		if !gate.Allow("k") {
			t.Error("request after window elapse should start a fresh window")
		}
	})

	t.Run("Defaults", func(t *testing.T) {
		gate := NewGate(GateOpts{})
		if gate.window != defaultWindow {
			t.Errorf("expected default window, got %v", gate.window)
		}
		if gate.max != defaultMax {
			t.Errorf("expected default max, got %d", gate.max)
		}
	})
}

func TestGateSweep(t *testing.T) {
	gate := NewGate(GateOpts{Window: time.Minute, Max: 5, Public: true})

	gate.Allow("a")
	gate.Allow("b")
	if gate.Keys() != 2 {
		t.Fatalf("expected 2 tracked keys, got %d", gate.Keys())
	}

	if n := gate.Sweep(time.Now()); n != 0 {
		t.Errorf("live windows should not be evicted, got %d", n)
	}

	if n := gate.Sweep(time.Now().Add(2 * time.Minute)); n != 2 {
		t.Errorf("expected 2 evictions, got %d", n)
	}
	if gate.Keys() != 0 {
		t.Errorf("expected empty table after sweep, got %d keys", gate.Keys())
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	gate := NewGate(GateOpts{Window: time.Minute, Max: 2, Public: true})
	handler := gate.RateLimit()(okHandler())

	do := func(path string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.RemoteAddr = "9.9.9.9:1234"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec
	}

	for i := 0; i < 2; i++ {
		if rec := do("/api/now-playing"); rec.Code != http.StatusOK {
			t.Fatalf("request %d should pass, got %d", i+1, rec.Code)
		}
	}

	rec := do("/api/now-playing")
	if rec.Code != http.StatusTooManyRequests {
		t.Errorf("expected 429, got %d", rec.Code)
	}
	if got := rec.Header().Get("Cache-Control"); got != "no-store" {
		t.Errorf("rejection should be non-cacheable, got %q", got)
	}
	if !strings.Contains(rec.Body.String(), "error") {
		t.Errorf("expected JSON error body, got %s", rec.Body.String())
	}

	t.Run("Non API Paths Bypass", func(t *testing.T) {
		for i := 0; i < 5; i++ {
			if rec := do("/"); rec.Code != http.StatusOK {
				t.Fatalf("page request should never be limited, got %d", rec.Code)
			}
		}
	})
}

func TestAccessControlMiddleware(t *testing.T) {
	do := func(gate *Gate, path, authorization string) *httptest.ResponseRecorder {
		handler := gate.AccessControl()(okHandler())
		req := httptest.NewRequest(http.MethodGet, path, nil)
		if authorization != "" {
			req.Header.Set("Authorization", authorization)
		}
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec
	}

	t.Run("Public Mode Admits All", func(t *testing.T) {
		gate := NewGate(GateOpts{Public: true})
		if rec := do(gate, "/api/now-playing", ""); rec.Code != http.StatusOK {
			t.Errorf("expected 200 in public mode, got %d", rec.Code)
		}
	})

	t.Run("Gated Mode", func(t *testing.T) {
		gate := NewGate(GateOpts{Public: false, Secret: "hunter2"})

		if rec := do(gate, "/api/now-playing", "Bearer hunter2"); rec.Code != http.StatusOK {
			t.Errorf("correct bearer token should pass, got %d", rec.Code)
		}

		for name, header := range map[string]string{
			"missing header":  "",
			"wrong token":     "Bearer hunter3",
			"malformed value": "hunter2",
			"wrong scheme":    "Basic hunter2",
		} {
			t.Run(name, func(t *testing.T) {
				rec := do(gate, "/api/now-playing", header)
				if rec.Code != http.StatusUnauthorized {
					t.Errorf("expected 401, got %d", rec.Code)
				}
				if got := rec.Header().Get("Cache-Control"); got != "no-store" {
					t.Errorf("rejection should be non-cacheable, got %q", got)
				}
			})
		}
	})

	t.Run("Health Bypasses Access Control", func(t *testing.T) {
		gate := NewGate(GateOpts{Public: false, Secret: "hunter2"})
		if rec := do(gate, "/api/health", ""); rec.Code != http.StatusOK {
			t.Errorf("health should be admitted without credentials, got %d", rec.Code)
		}
	})

	t.Run("Page Bypasses Access Control", func(t *testing.T) {
		gate := NewGate(GateOpts{Public: false, Secret: "hunter2"})
		if rec := do(gate, "/", ""); rec.Code != http.StatusOK {
			t.Errorf("page should be admitted without credentials, got %d", rec.Code)
		}
	})

	t.Run("Secret Overrides Public Flag", func(t *testing.T) {
		gate := NewGate(GateOpts{Public: true, Secret: "hunter2"})
		if rec := do(gate, "/api/now-playing", ""); rec.Code != http.StatusUnauthorized {
			t.Errorf("configured secret should gate even public mode, got %d", rec.Code)
		}
	})
}

func TestClientIP(t *testing.T) {
	tc := []struct {
		name       string
		remoteAddr string
		forwarded  string
		want       string
	}{
		{"remote addr", "10.0.0.1:5555", "", "10.0.0.1"},
		{"forwarded single", "10.0.0.1:5555", "203.0.113.9", "203.0.113.9"},
		{"forwarded chain", "10.0.0.1:5555", "203.0.113.9, 198.51.100.2", "203.0.113.9"},
		{"unparseable remote", "not-a-hostport", "", "not-a-hostport"},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
			req.RemoteAddr = tt.remoteAddr
			if tt.forwarded != "" {
				req.Header.Set("X-Forwarded-For", tt.forwarded)
			}
			if got := ClientIP(req); got != tt.want {
				t.Errorf("ClientIP() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestGateOrdering(t *testing.T) {
	// Rate limiting runs before access control: a flood without credentials
	// is throttled once the window fills, not endlessly 401'd.
	gate := NewGate(GateOpts{Window: time.Minute, Max: 2, Public: false, Secret: "hunter2"})

	router := NewBasicRouter()
	router.Use(gate.RateLimit(), gate.AccessControl())
	router.Handle(http.MethodGet, "/api/now-playing", okHandler())

	codes := []int{}
	for i := 0; i < 4; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/now-playing", nil)
		req.RemoteAddr = "9.9.9.9:1234"
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}

	want := []int{http.StatusUnauthorized, http.StatusUnauthorized, http.StatusTooManyRequests, http.StatusTooManyRequests}
	if fmt.Sprint(codes) != fmt.Sprint(want) {
		t.Errorf("expected %v, got %v", want, codes)
	}
}
