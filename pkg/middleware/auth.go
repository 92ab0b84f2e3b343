package middleware

import (
	"context"
	"net/http"

	"github.com/proshop/proshop/pkg/auth"
	"github.com/proshop/proshop/pkg/contextkeys"
	"github.com/proshop/proshop/pkg/httputil"
	"github.com/proshop/proshop/pkg/users"
)

// SessionMiddleware authenticates requests from the session cookie.
type SessionMiddleware struct {
	issuer *auth.TokenIssuer
	store  users.Store
}

// NewSessionMiddleware creates the authentication middleware.
func NewSessionMiddleware(issuer *auth.TokenIssuer, store users.Store) *SessionMiddleware {
	return &SessionMiddleware{issuer: issuer, store: store}
}

// Handler wraps an HTTP handler with the authentication check. The failure
// response is identical for a missing cookie, a bad signature, an expired
// token, and a deleted user holding a stale valid token.
func (m *SessionMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := auth.SessionFromRequest(r)
		if !ok {
			httputil.WriteUnauthorized(w, "not authenticated")
			return
		}

		userID, err := m.issuer.Verify(token)
		if err != nil {
			httputil.WriteUnauthorized(w, "not authenticated")
			return
		}

		user, err := m.store.FindByID(r.Context(), userID)
		if err != nil {
			// ErrNotFound covers a stale token for a deleted user; any
			// store failure also ends the request here.
			httputil.WriteUnauthorized(w, "not authenticated")
			return
		}

		ctx := WithUser(r.Context(), user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAdmin enforces the administrator flag on an already-authenticated
// request. It must always be mounted behind SessionMiddleware.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := GetUser(r)
		if user == nil {
			httputil.WriteUnauthorized(w, "not authenticated")
			return
		}
		if !user.IsAdmin {
			httputil.WriteForbidden(w, "admin access required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// WithUser stores the authenticated user in the context.
func WithUser(ctx context.Context, u *users.User) context.Context {
	return context.WithValue(ctx, contextkeys.UserKey, u)
}

// GetUser extracts the authenticated user from the request, or nil.
func GetUser(r *http.Request) *users.User {
	u, ok := r.Context().Value(contextkeys.UserKey).(*users.User)
	if !ok {
		return nil
	}
	return u
}
