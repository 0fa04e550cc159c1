// Package server provides HTTP routing, middleware, and the relay's API handlers.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
//
// The [BasicRouter] implementation uses [http.ServeMux] internally with method filtering.
//
// # The Gate
//
// [Gate] is the checkpoint in front of the API routes: a per-(client IP, path)
// fixed-window rate limiter followed by bearer-token access control. Rate
// limiting is evaluated first so an unauthenticated flood is throttled before
// the auth check runs. Rejections are 429 and 401 respectively, both with the
// JSON error body and both marked non-cacheable.
//
// The window table grows one entry per distinct (client, path) key; [Gate.SweepLoop]
// periodically evicts elapsed windows so the table does not grow without bound.
//
// # Handlers
//
// Custom handlers implement the [Handler] interface, which wraps the stdlib handler interface and adds routes,
// allowing handlers to register multiple routes to encapsulate route definitions within the implementation.
//
// [APIHandler] serves /api/health, /api/now-playing, and /api/now-playing.txt.
// Every /api response carries Cache-Control: no-store.
package server
