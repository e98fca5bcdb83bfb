package services

import (
	"errors"
	"strings"
)

// Domain errors surfaced to the boundary layer
var (
	ErrPersonaNotFound    = errors.New("persona not found")
	ErrEmailAlreadyExists = errors.New("email already registered")
	ErrInvalidArgument    = errors.New("invalid argument")
)

// isUniqueViolation reports whether err is the SQLite unique-constraint
// rejection. The constraint is the authoritative guard for concurrent
// writers racing past the optimistic email pre-check.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
