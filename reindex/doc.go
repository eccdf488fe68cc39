// Package reindex re-embeds existing chunks with a new or updated
// embedding model.
//
// Chunks are processed in batches with progress reporting and retry
// with exponential backoff around the embedding calls. Content and
// metadata are preserved; only vectors change.
package reindex
