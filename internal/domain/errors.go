package domain

import (
	"errors"
	"fmt"
)

// Error categories surfaced by the core. Specific errors below wrap one of
// these so callers can branch with errors.Is on the category.
var (
	ErrUnauthenticated = errors.New("authorization required")
	ErrForbidden       = errors.New("forbidden")
	ErrNotFound        = errors.New("not found")
	ErrConflict        = errors.New("conflict")
	ErrInvalidInput    = errors.New("invalid input")
)

var (
	ErrAlreadyRegistered = fmt.Errorf("%w: already registered for this conference", ErrConflict)
	ErrNoSeatsAvailable  = fmt.Errorf("%w: there are no seats available", ErrConflict)
	ErrNotRegistered     = fmt.Errorf("%w: not registered for this conference", ErrConflict)
	ErrInvalidSpeakers   = fmt.Errorf("%w: no speaker profile key resolved", ErrConflict)

	ErrInvalidTime = fmt.Errorf("%w: time must use format HH:MM (00:00-23:59)", ErrInvalidInput)
	ErrInvalidKey  = fmt.Errorf("%w: malformed websafe key", ErrInvalidInput)
)
