// Package repository implements data access over MySQL.  Sentinel
// errors defined here let handlers map failure modes to HTTP status
// codes without inspecting driver errors.
package repository

import "errors"

// ErrNotFound is returned when a referenced row does not exist (or is
// not visible to the caller).  Handlers translate it to HTTP 404.
var ErrNotFound = errors.New("not found")

// ErrForbidden is returned when the caller attempts an operation on a
// resource they do not own and they are not an admin.  Handlers
// translate it to HTTP 403.
var ErrForbidden = errors.New("forbidden")

// ErrConflict is reserved for operations that cannot proceed due to
// conflicting state, such as future idempotency checks.  Handlers
// translate it to HTTP 409.
var ErrConflict = errors.New("conflict")

// ErrEmailExists is returned when registration hits the unique email
// constraint.  Handlers translate it to HTTP 409.
var ErrEmailExists = errors.New("email already exists")
