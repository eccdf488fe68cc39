package upload

import "errors"

var (
	// ErrFileRepositoryRequired is returned when a file repository is not provided.
	ErrFileRepositoryRequired = errors.New("file repository required")

	// ErrPipelineRequired is returned when an ingestion pipeline is not provided.
	ErrPipelineRequired = errors.New("ingestion pipeline required")

	// ErrUploadDirRequired is returned when no upload directory is configured.
	ErrUploadDirRequired = errors.New("upload directory required")

	// ErrUpload wraps any failure while saving, registering or ingesting
	// an uploaded file.
	ErrUpload = errors.New("upload failed")
)
