// Package repository implements database access for users, credentials,
// sessions and per-user state blobs.  Sentinel errors defined here let
// handlers map failure scenarios onto HTTP statuses without string
// matching: ErrEmailExists becomes a 409 Conflict, while a plain
// sql.ErrNoRows from a lookup means the row is absent and callers decide
// whether that is a 401, a default response, or a real error.
package repository

import "errors"

// ErrEmailExists is returned when signup collides with an existing
// account.  Handlers should translate this into an HTTP 409 response.
var ErrEmailExists = errors.New("email already exists")
