package orders

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound indicates no order matched the lookup key.
var ErrNotFound = errors.New("order not found")

// Store is the persistence adapter for orders.
type Store interface {
	Create(ctx context.Context, o *Order) error
	FindByID(ctx context.Context, id string) (*Order, error)
	ListByUser(ctx context.Context, userID string) ([]*Order, error)
	List(ctx context.Context) ([]*Order, error)
	MarkPaid(ctx context.Context, id string) (*Order, error)
	MarkDelivered(ctx context.Context, id string) (*Order, error)
}

// Schema creates the orders table. Items and shipping are stored as JSON
// documents; they are immutable snapshots, never queried field-by-field.
const Schema = `
CREATE TABLE IF NOT EXISTS orders (
	id             TEXT PRIMARY KEY,
	user_id        TEXT NOT NULL,
	items          TEXT NOT NULL,
	shipping       TEXT NOT NULL,
	payment_method TEXT NOT NULL DEFAULT '',
	total          REAL NOT NULL DEFAULT 0,
	is_paid        BOOLEAN NOT NULL DEFAULT FALSE,
	paid_at        TIMESTAMP,
	is_delivered   BOOLEAN NOT NULL DEFAULT FALSE,
	delivered_at   TIMESTAMP,
	created_at     TIMESTAMP NOT NULL,
	updated_at     TIMESTAMP NOT NULL
);
`

// SQLStore implements Store using database/sql.
type SQLStore struct {
	db *sql.DB
}

// NewSQLStore creates an order store over the given database handle.
func NewSQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{db: db}
}

// Migrate creates the orders table if it does not exist.
func (s *SQLStore) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("failed to migrate orders table: %w", err)
	}
	return nil
}

const orderColumns = "id, user_id, items, shipping, payment_method, total, is_paid, paid_at, is_delivered, delivered_at, created_at, updated_at"

func scanOrder(row interface{ Scan(...interface{}) error }) (*Order, error) {
	o := &Order{}
	var itemsJSON, shippingJSON []byte
	err := row.Scan(&o.ID, &o.UserID, &itemsJSON, &shippingJSON, &o.PaymentMethod,
		&o.Total, &o.IsPaid, &o.PaidAt, &o.IsDelivered, &o.DeliveredAt, &o.CreatedAt, &o.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan order: %w", err)
	}
	if err := json.Unmarshal(itemsJSON, &o.Items); err != nil {
		return nil, fmt.Errorf("failed to decode order items: %w", err)
	}
	if err := json.Unmarshal(shippingJSON, &o.Shipping); err != nil {
		return nil, fmt.Errorf("failed to decode shipping address: %w", err)
	}
	return o, nil
}

// Create inserts a new order. An empty ID is assigned a fresh UUID.
func (s *SQLStore) Create(ctx context.Context, o *Order) error {
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	o.CreatedAt = now
	o.UpdatedAt = now

	itemsJSON, err := json.Marshal(o.Items)
	if err != nil {
		return fmt.Errorf("failed to encode order items: %w", err)
	}
	shippingJSON, err := json.Marshal(o.Shipping)
	if err != nil {
		return fmt.Errorf("failed to encode shipping address: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO orders (id, user_id, items, shipping, payment_method, total,
			is_paid, is_delivered, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, o.ID, o.UserID, itemsJSON, shippingJSON, o.PaymentMethod, o.Total,
		o.IsPaid, o.IsDelivered, o.CreatedAt, o.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}
	return nil
}

// FindByID looks an order up by id.
func (s *SQLStore) FindByID(ctx context.Context, id string) (*Order, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+orderColumns+" FROM orders WHERE id = $1", id)
	return scanOrder(row)
}

// ListByUser returns all orders placed by the given user, newest first.
func (s *SQLStore) ListByUser(ctx context.Context, userID string) ([]*Order, error) {
	return s.queryOrders(ctx,
		"SELECT "+orderColumns+" FROM orders WHERE user_id = $1 ORDER BY created_at DESC", userID)
}

// List returns all orders, newest first.
func (s *SQLStore) List(ctx context.Context) ([]*Order, error) {
	return s.queryOrders(ctx,
		"SELECT "+orderColumns+" FROM orders ORDER BY created_at DESC")
}

func (s *SQLStore) queryOrders(ctx context.Context, query string, args ...interface{}) ([]*Order, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	defer rows.Close()

	var out []*Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

// MarkPaid records payment and returns the updated order.
func (s *SQLStore) MarkPaid(ctx context.Context, id string) (*Order, error) {
	return s.setFlag(ctx, id, "is_paid", "paid_at")
}

// MarkDelivered records delivery and returns the updated order.
func (s *SQLStore) MarkDelivered(ctx context.Context, id string) (*Order, error) {
	return s.setFlag(ctx, id, "is_delivered", "delivered_at")
}

func (s *SQLStore) setFlag(ctx context.Context, id, flagCol, atCol string) (*Order, error) {
	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx, fmt.Sprintf(`
		UPDATE orders SET %s = TRUE, %s = $1, updated_at = $1 WHERE id = $2
	`, flagCol, atCol), now, id)
	if err != nil {
		return nil, fmt.Errorf("failed to update order: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return nil, ErrNotFound
	}
	return s.FindByID(ctx, id)
}
