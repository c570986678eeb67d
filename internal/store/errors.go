package store

import "errors"

// Sentinel errors for business-rule failures. Store functions wrap these with
// fmt.Errorf("%w: ...") and callers match with errors.Is; the API layer maps
// them to HTTP status codes. Anything else is an internal storage failure.
var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("conflict")
	ErrInvalid  = errors.New("invalid input")
)
