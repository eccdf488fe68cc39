package core

//go:generate go run ../cmd/musgen

import (
	"encoding/binary"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for domain entities.
// It is generated using content-based hashing or database sequences.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// This ensures that identical content produces identical IDs.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// Metadata keys attached by the ingestion pipeline. SourceFileKey is present
// on every stored chunk; the others depend on the tags supplied at ingest time.
const (
	SourceFileKey = "source_file"
	FileIDKey     = "file_id"
	FilenameKey   = "filename"
	UserIDKey     = "user_id"
	HeadersKey    = "headers"
)

// Document is a unit of raw text produced by a loader, together with
// source metadata. Documents are transient: they exist only between
// loading and chunking and are never persisted.
type Document struct {
	Content  string
	Metadata map[string]string
}

// Chunk is a bounded span of document text plus metadata, the unit stored
// in and retrieved from the vector index. Chunks are immutable once stored
// and are embedded exactly once.
type Chunk struct {
	Id         ID
	Content    string
	Metadata   map[string]string
	Vector     []float32 // Embedding vector, populated when the chunk is added to the index
	InsertedAt time.Time
}

// ChunkID generates a deterministic ID for a chunk from its content,
// metadata and position within its batch. The metadata keeps overlapping
// text from distinct files or sections distinct; the ordinal keeps repeated
// spans of one file from colliding with each other.
func ChunkID(content string, metadata map[string]string, ordinal int) ID {
	keys := make([]string, 0, len(metadata))
	for k := range metadata {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	sb.WriteString(strconv.Itoa(ordinal))
	sb.WriteByte(0)
	sb.WriteString(content)
	for _, k := range keys {
		sb.WriteByte(0)
		sb.WriteString(k)
		sb.WriteByte(0)
		sb.WriteString(metadata[k])
	}
	return IDFromContent(sb.String())
}

// FileRecord is the relational record for an uploaded file. It is the
// source of truth for file existence and ownership; chunks in the vector
// index reference it through the file_id metadata tag, a soft foreign key
// with no transactional link (see the reconcile package).
type FileRecord struct {
	Id         int64
	Filename   string
	Filepath   string
	UploadTime time.Time
	Metadata   string // JSON-encoded free-form metadata
	UserID     string
}

// ChatEntry is a single logged question/answer turn.
type ChatEntry struct {
	Id        int64
	UserID    string
	FileID    int64 // 0 when the question was not scoped to a file
	Question  string
	Answer    string
	Timestamp time.Time
}

// RetrievedChunk pairs a chunk with the similarity score reported by the
// vector index. Scores never leave the retrieval layer; output order alone
// encodes relevance for callers.
type RetrievedChunk struct {
	Chunk *Chunk
	Score float32
}

// CloneMetadata returns a shallow copy of a metadata map.
// A nil map clones to an empty, non-nil map.
func CloneMetadata(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
