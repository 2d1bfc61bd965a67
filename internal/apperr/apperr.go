package apperr

import "errors"

// Engine-level outcome tags. Services return these wrapped with detail via
// fmt.Errorf("%w: ...") and handlers map them to HTTP status codes.
var (
	ErrNotFound     = errors.New("not found")
	ErrValidation   = errors.New("validation error")
	ErrForbidden    = errors.New("forbidden")
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("unauthorized")
)
