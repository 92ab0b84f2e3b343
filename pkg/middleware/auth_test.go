package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/proshop/proshop/pkg/auth"
	"github.com/proshop/proshop/pkg/users"
)

// fakeStore is an in-memory users.Store for middleware tests.
type fakeStore struct {
	byID map[string]*users.User
}

func (f *fakeStore) FindByEmail(_ context.Context, email string) (*users.User, error) {
	for _, u := range f.byID {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, users.ErrNotFound
}

func (f *fakeStore) FindByID(_ context.Context, id string) (*users.User, error) {
	if u, ok := f.byID[id]; ok {
		return u, nil
	}
	return nil, users.ErrNotFound
}

func (f *fakeStore) Create(_ context.Context, u *users.User) error { f.byID[u.ID] = u; return nil }
func (f *fakeStore) Save(_ context.Context, u *users.User) error   { f.byID[u.ID] = u; return nil }
func (f *fakeStore) Delete(_ context.Context, id string) error     { delete(f.byID, id); return nil }
func (f *fakeStore) List(_ context.Context) ([]*users.User, error) {
	var out []*users.User
	for _, u := range f.byID {
		out = append(out, u)
	}
	return out, nil
}

func setupGate(t *testing.T) (*SessionMiddleware, *auth.TokenIssuer, *fakeStore) {
	t.Helper()
	issuer := auth.NewTokenIssuer([]byte("test-secret"))
	store := &fakeStore{byID: map[string]*users.User{}}
	return NewSessionMiddleware(issuer, store), issuer, store
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestSessionMiddlewareNoCookie(t *testing.T) {
	gate, _, _ := setupGate(t)

	rec := httptest.NewRecorder()
	gate.Handler(okHandler()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"error":"not authenticated"}`, rec.Body.String())
}

func TestSessionMiddlewareInvalidToken(t *testing.T) {
	gate, _, _ := setupGate(t)

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(&http.Cookie{Name: auth.SessionCookieName, Value: "garbage"})
	rec := httptest.NewRecorder()
	gate.Handler(okHandler()).ServeHTTP(rec, r)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestSessionMiddlewareStaleTokenForDeletedUser(t *testing.T) {
	gate, issuer, _ := setupGate(t)

	// Token is validly signed, but no such user exists anymore.
	token, err := issuer.Issue("deleted-user")
	require.NoError(t, err)

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(&http.Cookie{Name: auth.SessionCookieName, Value: token})
	rec := httptest.NewRecorder()
	gate.Handler(okHandler()).ServeHTTP(rec, r)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"error":"not authenticated"}`, rec.Body.String())
}

func TestSessionMiddlewareAttachesUser(t *testing.T) {
	gate, issuer, store := setupGate(t)
	store.byID["u1"] = &users.User{ID: "u1", Name: "A", Email: "a@x.com"}

	token, err := issuer.Issue("u1")
	require.NoError(t, err)

	var got *users.User
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = GetUser(r)
		w.WriteHeader(http.StatusOK)
	})

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(&http.Cookie{Name: auth.SessionCookieName, Value: token})
	rec := httptest.NewRecorder()
	gate.Handler(next).ServeHTTP(rec, r)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, got)
	assert.Equal(t, "u1", got.ID)
}

func TestRequireAdmin(t *testing.T) {
	tests := []struct {
		name       string
		user       *users.User
		wantStatus int
	}{
		{name: "no user in context", user: nil, wantStatus: http.StatusUnauthorized},
		{name: "non-admin", user: &users.User{ID: "u1"}, wantStatus: http.StatusForbidden},
		{name: "admin", user: &users.User{ID: "u1", IsAdmin: true}, wantStatus: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.user != nil {
				r = r.WithContext(WithUser(r.Context(), tt.user))
			}
			rec := httptest.NewRecorder()
			RequireAdmin(okHandler()).ServeHTTP(rec, r)
			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}

// An authenticated non-admin must see 403 from the admin gate, never 401.
func TestGateOrdering(t *testing.T) {
	gate, issuer, store := setupGate(t)
	store.byID["u1"] = &users.User{ID: "u1", Name: "A", Email: "a@x.com", IsAdmin: false}

	token, err := issuer.Issue("u1")
	require.NoError(t, err)

	chain := gate.Handler(RequireAdmin(okHandler()))
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(&http.Cookie{Name: auth.SessionCookieName, Value: token})
	rec := httptest.NewRecorder()
	chain.ServeHTTP(rec, r)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}
