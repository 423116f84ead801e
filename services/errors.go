package services

import "errors"

// Error kinds surfaced by the service layer. Controllers map them to HTTP
// status codes with errors.Is; the wrapped message is safe to return to the
// client.
var (
	ErrValidation   = errors.New("validation error")
	ErrNotFound     = errors.New("not found")
	ErrUnauthorized = errors.New("unauthorized")
	ErrConflict     = errors.New("already exists")
	ErrInternal     = errors.New("internal error")
)
