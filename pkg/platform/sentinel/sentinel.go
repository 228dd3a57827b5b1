// Package sentinel declares the error values stores return for factual
// outcomes: a record that is not there, an identity already taken, an entity
// in the wrong state for the requested change, a backing service that is not
// answering. Handlers translate these into HTTP statuses; input validation
// uses coded domain errors instead.
package sentinel

import "errors"

var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrInvalidState = errors.New("invalid state")
	ErrUnavailable  = errors.New("unavailable")
)
