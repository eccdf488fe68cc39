package retrieval

import "errors"

var (
	// ErrIndexRequired is returned when a vector index is not provided.
	ErrIndexRequired = errors.New("vector index required")

	// ErrRetrieval wraps failures from the underlying vector search.
	ErrRetrieval = errors.New("retrieval failed")
)
