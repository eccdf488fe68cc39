// Package ingestion turns files into indexed chunks.
//
// The Pipeline type runs the full sequence for one file: load the
// document, split it into chunks, tag every chunk with caller metadata,
// and add the batch to the vector index. The sequence is synchronous so
// a nil return means the file is queryable; a non-nil return means none
// of its chunks should be trusted and the caller should compensate at
// the file level.
package ingestion
