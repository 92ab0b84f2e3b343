package products

import "time"

// Product is a catalog entry. Rating and NumReviews are maintained as an
// aggregate over the reviews table whenever a review is added.
type Product struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	Brand        string    `json:"brand"`
	Category     string    `json:"category"`
	Image        string    `json:"image"`
	Price        float64   `json:"price"`
	CountInStock int       `json:"count_in_stock"`
	Rating       float64   `json:"rating"`
	NumReviews   int       `json:"num_reviews"`
	CreatedBy    string    `json:"created_by"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Review is a single user's rating of a product. One review per user per
// product, enforced by a unique index.
type Review struct {
	ID        string    `json:"id"`
	ProductID string    `json:"product_id"`
	UserID    string    `json:"user_id"`
	UserName  string    `json:"user_name"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"created_at"`
}

// Page is one page of catalog results.
type Page struct {
	Products []*Product `json:"products"`
	Page     int        `json:"page"`
	Pages    int        `json:"pages"`
	Total    int        `json:"total"`
}
