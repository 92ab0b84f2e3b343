// Package auth implements the credential primitives for the storefront API:
// password hashing, session token issuance/verification, and the session cookie.
//
// # Passwords
//
//	hash, err := auth.HashPassword("secret1")
//	ok := auth.CheckPassword("secret1", hash)
//
// # Session Tokens
//
// Session tokens are HS256-signed JWTs whose only custom claim is the user ID.
// The signing secret is injected once at startup; tokens expire 30 days after
// issuance and are never stored server-side.
//
//	issuer := auth.NewTokenIssuer(secret)
//	token, err := issuer.Issue(user.ID)
//	userID, err := issuer.Verify(token)
//
// # Session Cookie
//
// The token travels in an HttpOnly, SameSite=Strict cookie. Secure is set
// unless the server runs in local development mode.
//
//	auth.SetSessionCookie(w, token, cfg.SecureCookies())
//	auth.ClearSessionCookie(w)
//
// # Related Packages
//
//   - pkg/middleware: resolves the cookie to a user on protected routes
package auth
