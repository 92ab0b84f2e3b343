// Package contextkeys provides centralized context key definitions
//
// IMPORTANT: All context keys used across the application must be defined here.
// This prevents typos, documents dependencies, and makes key usage discoverable.
package contextkeys

// Key is the type for context keys to prevent collisions
type Key string

const (
	// UserKey contains the authenticated *users.User
	// Set by: middleware.SessionMiddleware (pkg/middleware/auth.go)
	// Required by: all protected API endpoints
	// Type: *users.User
	UserKey Key = "authenticated_user"

	// RequestIDKey contains request ID string
	// Set by: httputil.RequestIDMiddleware (pkg/httputil/middleware.go)
	// Used by: httputil.LoggingMiddleware request log lines
	// Type: string
	RequestIDKey Key = "request_id"
)
