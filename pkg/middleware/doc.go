// Package middleware provides the access control gate and rate limiting for
// the storefront API.
//
// # Access Control Gate
//
// SessionMiddleware is the authentication check: it reads the session cookie,
// verifies the token, resolves the embedded user ID against the user store,
// and attaches the user to the request context. Absent, invalid, or stale
// credentials all produce the same 401 response.
//
//	protected := router.NewRoute().Subrouter()
//	protected.Use(session.Handler)
//
// RequireAdmin is the authorization check and is only ever mounted behind
// SessionMiddleware:
//
//	admin := protected.NewRoute().Subrouter()
//	admin.Use(middleware.RequireAdmin)
//
// The per-request state machine is strictly ordered:
// Unauthenticated -> Authenticated -> Authorized. A failed transition
// short-circuits with 401 or 403 before the handler runs.
//
// # Rate Limiting
//
// NewRateLimiter is an in-process token bucket; DistributedRateLimiter is the
// Redis-backed fixed window used to throttle login attempts across instances.
//
// # Related Packages
//
//   - pkg/auth: token verification
//   - pkg/users: user resolution
package middleware
