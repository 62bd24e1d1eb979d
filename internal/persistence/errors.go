package persistence

import "errors"

var (
	// ErrNotFound is returned when the requested record does not exist.
	ErrNotFound = errors.New("persistence: not found")
	// ErrStatusConflict is returned when a status transition finds the record
	// no longer pending.
	ErrStatusConflict = errors.New("persistence: status conflict")
)
