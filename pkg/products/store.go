package products

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

var (
	// ErrNotFound indicates no product matched the lookup key.
	ErrNotFound = errors.New("product not found")
	// ErrDuplicateReview indicates the user already reviewed the product.
	ErrDuplicateReview = errors.New("product already reviewed")
)

// Store is the persistence adapter for the catalog.
type Store interface {
	List(ctx context.Context, keyword string, page, pageSize int) (*Page, error)
	Top(ctx context.Context, limit int) ([]*Product, error)
	FindByID(ctx context.Context, id string) (*Product, error)
	Create(ctx context.Context, p *Product) error
	Save(ctx context.Context, p *Product) error
	Delete(ctx context.Context, id string) error
	AddReview(ctx context.Context, rev *Review) error
	Reviews(ctx context.Context, productID string) ([]*Review, error)
}

// Schema creates the catalog tables, portable between PostgreSQL and the
// SQLite test database.
const Schema = `
CREATE TABLE IF NOT EXISTS products (
	id             TEXT PRIMARY KEY,
	name           TEXT NOT NULL,
	description    TEXT NOT NULL DEFAULT '',
	brand          TEXT NOT NULL DEFAULT '',
	category       TEXT NOT NULL DEFAULT '',
	image          TEXT NOT NULL DEFAULT '',
	price          REAL NOT NULL DEFAULT 0,
	count_in_stock INTEGER NOT NULL DEFAULT 0,
	rating         REAL NOT NULL DEFAULT 0,
	num_reviews    INTEGER NOT NULL DEFAULT 0,
	created_by     TEXT NOT NULL DEFAULT '',
	created_at     TIMESTAMP NOT NULL,
	updated_at     TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS reviews (
	id         TEXT PRIMARY KEY,
	product_id TEXT NOT NULL REFERENCES products(id) ON DELETE CASCADE,
	user_id    TEXT NOT NULL,
	user_name  TEXT NOT NULL,
	rating     INTEGER NOT NULL,
	comment    TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMP NOT NULL,
	UNIQUE (product_id, user_id)
);
`

// SQLStore implements Store using database/sql.
type SQLStore struct {
	db *sql.DB
}

// NewSQLStore creates a product store over the given database handle.
func NewSQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{db: db}
}

// Migrate creates the catalog tables if they do not exist.
func (s *SQLStore) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("failed to migrate product tables: %w", err)
	}
	return nil
}

const productColumns = "id, name, description, brand, category, image, price, count_in_stock, rating, num_reviews, created_by, created_at, updated_at"

func scanProduct(row interface{ Scan(...interface{}) error }) (*Product, error) {
	p := &Product{}
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Brand, &p.Category, &p.Image,
		&p.Price, &p.CountInStock, &p.Rating, &p.NumReviews, &p.CreatedBy, &p.CreatedAt, &p.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan product: %w", err)
	}
	return p, nil
}

// List returns one page of products, optionally filtered by a case-insensitive
// keyword match on the name.
func (s *SQLStore) List(ctx context.Context, keyword string, page, pageSize int) (*Page, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 10
	}

	where := ""
	args := []interface{}{}
	if keyword != "" {
		where = "WHERE LOWER(name) LIKE $1"
		args = append(args, "%"+strings.ToLower(keyword)+"%")
	}

	var total int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM products "+where, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("failed to count products: %w", err)
	}

	limitPos := len(args) + 1
	query := fmt.Sprintf("SELECT %s FROM products %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d",
		productColumns, where, limitPos, limitPos+1)
	args = append(args, pageSize, (page-1)*pageSize)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	out := &Page{Page: page, Total: total, Products: []*Product{}}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out.Products = append(out.Products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}

	out.Pages = (total + pageSize - 1) / pageSize
	if out.Pages == 0 {
		out.Pages = 1
	}
	return out, nil
}

// Top returns the highest-rated products.
func (s *SQLStore) Top(ctx context.Context, limit int) ([]*Product, error) {
	if limit < 1 {
		limit = 3
	}
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+productColumns+" FROM products ORDER BY rating DESC LIMIT $1", limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list top products: %w", err)
	}
	defer rows.Close()

	var out []*Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// FindByID looks a product up by id.
func (s *SQLStore) FindByID(ctx context.Context, id string) (*Product, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+productColumns+" FROM products WHERE id = $1", id)
	return scanProduct(row)
}

// Create inserts a new product. An empty ID is assigned a fresh UUID.
func (s *SQLStore) Create(ctx context.Context, p *Product) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO products (id, name, description, brand, category, image, price,
			count_in_stock, rating, num_reviews, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`, p.ID, p.Name, p.Description, p.Brand, p.Category, p.Image, p.Price,
		p.CountInStock, p.Rating, p.NumReviews, p.CreatedBy, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}
	return nil
}

// Save persists the mutable fields of an existing product.
func (s *SQLStore) Save(ctx context.Context, p *Product) error {
	p.UpdatedAt = time.Now().UTC()

	res, err := s.db.ExecContext(ctx, `
		UPDATE products
		SET name = $1, description = $2, brand = $3, category = $4, image = $5,
			price = $6, count_in_stock = $7, rating = $8, num_reviews = $9, updated_at = $10
		WHERE id = $11
	`, p.Name, p.Description, p.Brand, p.Category, p.Image,
		p.Price, p.CountInStock, p.Rating, p.NumReviews, p.UpdatedAt, p.ID)
	if err != nil {
		return fmt.Errorf("failed to save product: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a product and, via cascade, its reviews.
func (s *SQLStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM products WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// AddReview inserts a review and recomputes the product's rating aggregate
// in the same transaction.
func (s *SQLStore) AddReview(ctx context.Context, rev *Review) error {
	if rev.ID == "" {
		rev.ID = uuid.NewString()
	}
	rev.CreatedAt = time.Now().UTC()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin review transaction: %w", err)
	}
	defer tx.Rollback()

	// Checked inside the transaction so a missing product surfaces as
	// ErrNotFound, not as a driver-specific foreign key violation.
	var productCount int
	if err := tx.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM products WHERE id = $1", rev.ProductID).Scan(&productCount); err != nil {
		return fmt.Errorf("failed to check product: %w", err)
	}
	if productCount == 0 {
		return ErrNotFound
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO reviews (id, product_id, user_id, user_name, rating, comment, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, rev.ID, rev.ProductID, rev.UserID, rev.UserName, rev.Rating, rev.Comment, rev.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateReview
		}
		return fmt.Errorf("failed to insert review: %w", err)
	}

	res, err := tx.ExecContext(ctx, `
		UPDATE products
		SET num_reviews = (SELECT COUNT(*) FROM reviews WHERE product_id = $1),
			rating = (SELECT AVG(rating) FROM reviews WHERE product_id = $1),
			updated_at = $2
		WHERE id = $1
	`, rev.ProductID, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to update rating aggregate: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit review: %w", err)
	}
	return nil
}

// Reviews returns all reviews for a product, newest first.
func (s *SQLStore) Reviews(ctx context.Context, productID string) ([]*Review, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, product_id, user_id, user_name, rating, comment, created_at
		FROM reviews WHERE product_id = $1 ORDER BY created_at DESC
	`, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to list reviews: %w", err)
	}
	defer rows.Close()

	var out []*Review
	for rows.Next() {
		rev := &Review{}
		if err := rows.Scan(&rev.ID, &rev.ProductID, &rev.UserID, &rev.UserName,
			&rev.Rating, &rev.Comment, &rev.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan review: %w", err)
		}
		out = append(out, rev)
	}
	return out, rows.Err()
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
