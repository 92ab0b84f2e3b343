package products

import (
	"context"
	"database/sql"
	"fmt"
	"testing"

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

func seedProduct(t *testing.T, store *SQLStore, name string, rating float64) *Product {
	t.Helper()
	p := &Product{Name: name, Price: 9.99, CountInStock: 3, Rating: rating}
	require.NoError(t, store.Create(context.Background(), p))
	return p
}

func TestCreateAndFind(t *testing.T) {
	store := setupTestStore(t)

	p := seedProduct(t, store, "Airpods", 0)
	got, err := store.FindByID(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Airpods", got.Name)
	assert.Equal(t, 9.99, got.Price)

	_, err = store.FindByID(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListKeywordAndPagination(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	for i := 0; i < 12; i++ {
		seedProduct(t, store, fmt.Sprintf("Camera %d", i), 0)
	}
	seedProduct(t, store, "Keyboard", 0)

	page, err := store.List(ctx, "", 1, 10)
	require.NoError(t, err)
	assert.Len(t, page.Products, 10)
	assert.Equal(t, 13, page.Total)
	assert.Equal(t, 2, page.Pages)

	page, err = store.List(ctx, "camera", 2, 10)
	require.NoError(t, err)
	assert.Len(t, page.Products, 2)
	assert.Equal(t, 12, page.Total)

	page, err = store.List(ctx, "keyboard", 1, 10)
	require.NoError(t, err)
	require.Len(t, page.Products, 1)
	assert.Equal(t, "Keyboard", page.Products[0].Name)

	page, err = store.List(ctx, "nothing-matches", 1, 10)
	require.NoError(t, err)
	assert.Empty(t, page.Products)
	assert.Equal(t, 1, page.Pages)
}

func TestTop(t *testing.T) {
	store := setupTestStore(t)

	seedProduct(t, store, "Mid", 3.0)
	seedProduct(t, store, "Best", 4.8)
	seedProduct(t, store, "Worst", 1.2)

	top, err := store.Top(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, "Best", top[0].Name)
	assert.Equal(t, "Mid", top[1].Name)
}

func TestSaveAndDelete(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	p := seedProduct(t, store, "Monitor", 0)
	p.Price = 129.50
	p.CountInStock = 0
	require.NoError(t, store.Save(ctx, p))

	got, err := store.FindByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 129.50, got.Price)
	assert.Zero(t, got.CountInStock)

	require.NoError(t, store.Delete(ctx, p.ID))
	_, err = store.FindByID(ctx, p.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, store.Save(ctx, p), ErrNotFound)
	assert.ErrorIs(t, store.Delete(ctx, p.ID), ErrNotFound)
}

func TestAddReviewUpdatesAggregate(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	p := seedProduct(t, store, "Phone", 0)

	require.NoError(t, store.AddReview(ctx, &Review{
		ProductID: p.ID, UserID: "u1", UserName: "A", Rating: 5, Comment: "great",
	}))
	require.NoError(t, store.AddReview(ctx, &Review{
		ProductID: p.ID, UserID: "u2", UserName: "B", Rating: 3,
	}))

	got, err := store.FindByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.NumReviews)
	assert.InDelta(t, 4.0, got.Rating, 0.001)

	reviews, err := store.Reviews(ctx, p.ID)
	require.NoError(t, err)
	assert.Len(t, reviews, 2)
}

func TestAddReviewDuplicate(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	p := seedProduct(t, store, "Phone", 0)
	require.NoError(t, store.AddReview(ctx, &Review{ProductID: p.ID, UserID: "u1", UserName: "A", Rating: 5}))

	err := store.AddReview(ctx, &Review{ProductID: p.ID, UserID: "u1", UserName: "A", Rating: 1})
	assert.ErrorIs(t, err, ErrDuplicateReview)

	// Aggregate unchanged by the rejected write.
	got, err := store.FindByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.NumReviews)
	assert.InDelta(t, 5.0, got.Rating, 0.001)
}

// Runs against a foreign-key-enforcing connection so the missing product maps
// to ErrNotFound rather than leaking a driver constraint error.
func TestAddReviewMissingProduct(t *testing.T) {
	db, err := sql.Open("sqlite3", ":memory:?_foreign_keys=on")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	store := NewSQLStore(db)
	ctx := context.Background()
	require.NoError(t, store.Migrate(ctx))

	err = store.AddReview(ctx, &Review{ProductID: "missing", UserID: "u1", UserName: "A", Rating: 4})
	assert.ErrorIs(t, err, ErrNotFound)

	// Nothing was left behind by the rolled-back transaction.
	reviews, err := store.Reviews(ctx, "missing")
	require.NoError(t, err)
	assert.Empty(t, reviews)
}
