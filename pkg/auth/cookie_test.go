package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetSessionCookie(t *testing.T) {
	rec := httptest.NewRecorder()
	SetSessionCookie(rec, "tok-value", true)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	c := cookies[0]
	assert.Equal(t, SessionCookieName, c.Name)
	assert.Equal(t, "tok-value", c.Value)
	assert.True(t, c.HttpOnly)
	assert.True(t, c.Secure)
	assert.Equal(t, http.SameSiteStrictMode, c.SameSite)
	assert.Equal(t, int(SessionTTL.Seconds()), c.MaxAge)
}

func TestSetSessionCookieDevMode(t *testing.T) {
	rec := httptest.NewRecorder()
	SetSessionCookie(rec, "tok-value", false)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.False(t, cookies[0].Secure)
	assert.True(t, cookies[0].HttpOnly)
}

func TestClearSessionCookie(t *testing.T) {
	rec := httptest.NewRecorder()
	ClearSessionCookie(rec)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	c := cookies[0]
	assert.Equal(t, SessionCookieName, c.Name)
	assert.Empty(t, c.Value)
	assert.Negative(t, c.MaxAge)
}

func TestSessionFromRequest(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	_, ok := SessionFromRequest(r)
	assert.False(t, ok)

	r.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "tok-value"})
	tok, ok := SessionFromRequest(r)
	assert.True(t, ok)
	assert.Equal(t, "tok-value", tok)
}
