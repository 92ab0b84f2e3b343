package orders

import "time"

// Item is one line of an order: a snapshot of the product at purchase time,
// so later catalog edits do not rewrite order history.
type Item struct {
	ProductID string  `json:"product_id"`
	Name      string  `json:"name"`
	Image     string  `json:"image"`
	Price     float64 `json:"price"`
	Qty       int     `json:"qty"`
}

// ShippingAddress is the delivery destination for an order.
type ShippingAddress struct {
	Address    string `json:"address"`
	City       string `json:"city"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
}

// Order is a persisted purchase.
type Order struct {
	ID            string          `json:"id"`
	UserID        string          `json:"user_id"`
	Items         []Item          `json:"items"`
	Shipping      ShippingAddress `json:"shipping"`
	PaymentMethod string          `json:"payment_method"`
	Total         float64         `json:"total"`
	IsPaid        bool            `json:"is_paid"`
	PaidAt        *time.Time      `json:"paid_at,omitempty"`
	IsDelivered   bool            `json:"is_delivered"`
	DeliveredAt   *time.Time      `json:"delivered_at,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}
