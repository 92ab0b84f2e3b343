package users

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestStore(t *testing.T) *SQLStore {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	store := NewSQLStore(db)
	require.NoError(t, store.Migrate(context.Background()))
	return store
}

func newTestUser(email string) *User {
	return &User{
		Name:         "Test User",
		Email:        email,
		PasswordHash: "$2a$10$fakefakefakefakefakefakefakefakefakefakefakefakefakef",
	}
}

func TestCreateAndFind(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	u := newTestUser("a@x.com")
	require.NoError(t, store.Create(ctx, u))
	assert.NotEmpty(t, u.ID)
	assert.False(t, u.CreatedAt.IsZero())

	byEmail, err := store.FindByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, byEmail.ID)
	assert.Equal(t, u.PasswordHash, byEmail.PasswordHash)

	byID, err := store.FindByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", byID.Email)
}

func TestFindNotFound(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	_, err := store.FindByEmail(ctx, "missing@x.com")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = store.FindByID(ctx, "no-such-id")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCreateDuplicateEmail(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Create(ctx, newTestUser("dup@x.com")))

	err := store.Create(ctx, newTestUser("dup@x.com"))
	assert.ErrorIs(t, err, ErrDuplicateEmail)

	// No second record was created.
	all, err := store.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestSave(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	u := newTestUser("a@x.com")
	require.NoError(t, store.Create(ctx, u))

	u.Name = "Renamed"
	u.IsAdmin = true
	require.NoError(t, store.Save(ctx, u))

	got, err := store.FindByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", got.Name)
	assert.True(t, got.IsAdmin)
}

func TestSaveDuplicateEmail(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Create(ctx, newTestUser("a@x.com")))
	u := newTestUser("b@x.com")
	require.NoError(t, store.Create(ctx, u))

	u.Email = "a@x.com"
	assert.ErrorIs(t, store.Save(ctx, u), ErrDuplicateEmail)
}

func TestSaveMissingUser(t *testing.T) {
	store := setupTestStore(t)

	u := newTestUser("ghost@x.com")
	u.ID = "no-such-id"
	assert.ErrorIs(t, store.Save(context.Background(), u), ErrNotFound)
}

func TestDelete(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	u := newTestUser("a@x.com")
	require.NoError(t, store.Create(ctx, u))
	require.NoError(t, store.Delete(ctx, u.ID))

	_, err := store.FindByID(ctx, u.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, store.Delete(ctx, u.ID), ErrNotFound)
}

func TestList(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	all, err := store.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)

	require.NoError(t, store.Create(ctx, newTestUser("a@x.com")))
	require.NoError(t, store.Create(ctx, newTestUser("b@x.com")))

	all, err = store.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestPostgresUniqueViolationMapping(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("INSERT INTO users").
		WillReturnError(&pq.Error{Code: "23505"})

	store := NewSQLStore(db)
	err = store.Create(context.Background(), newTestUser("a@x.com"))
	assert.ErrorIs(t, err, ErrDuplicateEmail)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProfileExcludesHash(t *testing.T) {
	u := newTestUser("a@x.com")
	u.ID = "id-1"
	p := u.Profile()
	assert.Equal(t, Profile{ID: "id-1", Name: "Test User", Email: "a@x.com"}, p)
}
