package models

import "errors"

// Error taxonomy shared by the stores and controllers. Controllers map these
// to HTTP status codes at the boundary; the underlying cause is only logged
// server-side.
var (
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrNotFound        = errors.New("not found")
	ErrConflict        = errors.New("already exists")
	ErrUnavailable     = errors.New("unavailable")
)
