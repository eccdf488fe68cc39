package store

import "errors"

var (
	// ErrNotFound indicates the requested record does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrInvalidRecord indicates a record failed validation before storage.
	ErrInvalidRecord = errors.New("invalid record")
)
