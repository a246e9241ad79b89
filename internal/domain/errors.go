package domain

import "errors"

// Sentinel errors for domain-level error discrimination.
// Services wrap these so handlers can map to HTTP status codes without leaking infrastructure details.
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrBadRequest   = errors.New("bad request")
)

// Error pairs one of the sentinels above with the exact message shown to
// the client. errors.Is against the sentinel still works through Unwrap.
type Error struct {
	kind    error
	message string
}

// E builds a client-facing domain error of the given kind.
func E(kind error, message string) error {
	return &Error{kind: kind, message: message}
}

func (e *Error) Error() string { return e.message }
func (e *Error) Unwrap() error { return e.kind }
