// Package products provides the product catalog: persisted products, keyword
// search with pagination, top-rated listing, and per-user reviews with a
// maintained rating aggregate.
package products
