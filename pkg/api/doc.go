// Package api wires the HTTP surface of the storefront: user authentication
// and account management, the product catalog, orders, and image uploads.
//
// Route guards follow the order authentication-then-authorization: protected
// routes are wrapped by the session gate, admin routes additionally by
// RequireAdmin. The guard chain runs before any handler code.
package api
