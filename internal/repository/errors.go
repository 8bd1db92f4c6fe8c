// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// handlers to distinguish between different failure scenarios and map
// them onto the right HTTP status without inspecting driver error
// strings themselves.
package repository

import "errors"

// ErrNotFound is returned when a requested entity does not exist.
// Handlers translate this into an HTTP 404 response.
var ErrNotFound = errors.New("not found")

// ErrUserExists is returned when an insert collides with the unique
// username or email constraint.  Handlers translate this into an HTTP
// 409 response.  The existence check for registration is the insert
// itself: two concurrent registrations race to the constraint and the
// loser surfaces this error.
var ErrUserExists = errors.New("username or email already exists")
