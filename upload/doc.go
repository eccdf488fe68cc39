// Package upload accepts document uploads and hands them to ingestion.
//
// Each upload is saved under a unique name, registered in the file
// store and ingested synchronously. Batch uploads run concurrently
// through a worker pool while individual files still ingest atomically:
// an upload either completes fully or is rolled back.
package upload
