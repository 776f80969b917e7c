package service

import "errors"

// Sentinel errors for errors.Is checks in handlers.
var (
	// ErrNotFound covers both a missing todo and a todo owned by another
	// user. The two are deliberately merged so that the existence of
	// other users' records never leaks.
	ErrNotFound = errors.New("not found")

	ErrValidation         = errors.New("validation error")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUsernameTaken      = errors.New("username already taken")
)

// ValidationError carries the offending field. errors.Is(err,
// ErrValidation) matches it via Unwrap.
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Msg
}

func (e *ValidationError) Unwrap() error { return ErrValidation }
