// Package store defines the relational repositories used for file and
// chat-history bookkeeping. The vector index holds chunk content; this
// package holds everything about files and conversations that needs to
// survive a vector index rebuild.
//
// The SQLite-backed implementation lives in the sqlite subpackage.
package store
