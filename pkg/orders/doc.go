// Package orders provides order records: creation from a cart snapshot,
// owner-scoped listing, and the paid/delivered state transitions.
package orders
