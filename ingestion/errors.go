package ingestion

import "errors"

var (
	// ErrIndexRequired is returned when a vector index is not provided.
	ErrIndexRequired = errors.New("vector index required")

	// ErrIngestion wraps any failure in the load, split or index stages.
	ErrIngestion = errors.New("ingestion failed")
)
