// Package reconcile keeps the relational store, the vector index and
// the upload directory consistent when files are removed.
//
// Deletion treats the relational record as authoritative. A failure
// cleaning up indexed chunks or the on-disk copy downgrades the result
// to a partial status with warnings instead of failing the deletion,
// since a retried delete would no longer find the record.
package reconcile
