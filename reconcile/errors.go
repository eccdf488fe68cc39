package reconcile

import "errors"

var (
	// ErrStoreRequired is returned when a relational store is not provided.
	ErrStoreRequired = errors.New("store required")

	// ErrIndexRequired is returned when a vector index is not provided.
	ErrIndexRequired = errors.New("vector index required")

	// ErrUnauthorized is returned when the admin token does not match.
	ErrUnauthorized = errors.New("unauthorized")
)
