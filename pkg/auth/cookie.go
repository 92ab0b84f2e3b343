package auth

import (
	"net/http"
	"time"
)

// SessionCookieName is the single named cookie that carries the session token.
const SessionCookieName = "proshop_session"

// SetSessionCookie writes the session token into an HttpOnly cookie whose
// lifetime matches the token expiry. SameSite=Strict blocks cross-site
// submission; Secure is dropped only in local development mode.
func SetSessionCookie(w http.ResponseWriter, token string, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(SessionTTL / time.Second),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteStrictMode,
	})
}

// ClearSessionCookie overwrites the session cookie with an empty value and an
// already-past expiry, causing immediate client-side discard.
func ClearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
}

// SessionFromRequest extracts the raw session token from the request cookie.
func SessionFromRequest(r *http.Request) (string, bool) {
	c, err := r.Cookie(SessionCookieName)
	if err != nil || c.Value == "" {
		return "", false
	}
	return c.Value, true
}
