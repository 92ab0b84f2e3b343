// Package users provides the user identity record and its persistence adapter.
//
// The Store interface is the only path to the users table: lookup by email or
// id, create, save (full-row update), delete, and list. No validation beyond
// field presence happens here; policy lives in the handlers.
//
// # Related Packages
//
//   - pkg/auth: password hashing for the password_hash column
//   - pkg/middleware: resolves session tokens to users via Store.FindByID
package users
