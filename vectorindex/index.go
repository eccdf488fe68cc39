package vectorindex

import (
	"context"

	"github.com/harborai/docqa/core"
)

// Filter is an exact-match equality filter over chunk metadata. A chunk
// matches when every key/value pair is present in its metadata. No range
// or boolean composition is supported at this layer.
type Filter map[string]string

// Matches reports whether the chunk's metadata satisfies every filter pair.
func (f Filter) Matches(meta map[string]string) bool {
	for k, v := range f {
		if meta[k] != v {
			return false
		}
	}
	return true
}

// Index is an embedding-indexed chunk store. Chunks are embedded exactly
// once, on Add; Search embeds the query. Implementations must be safe for
// concurrent use.
type Index interface {
	// Add embeds and stores a batch of chunks in one call. Chunks that fail
	// validation reject the whole batch before any embedding happens.
	// Already-stored entries are not guaranteed to be rolled back when a
	// later write in the batch fails.
	Add(ctx context.Context, chunks []*core.Chunk) error

	// Search returns up to k chunks most similar to the query, constrained
	// by the metadata filter if non-empty, ordered by similarity descending.
	Search(ctx context.Context, query string, k int, filter Filter) ([]*core.RetrievedChunk, error)

	// Delete removes every chunk matching the filter and returns how many
	// entries were removed. An empty filter matches nothing.
	Delete(ctx context.Context, filter Filter) (int, error)

	// IDs returns the identifiers of every stored chunk.
	IDs(ctx context.Context) ([]core.ID, error)

	// DeleteByIDs removes chunks by identifier. Unknown IDs are ignored.
	DeleteByIDs(ctx context.Context, ids ...core.ID) error

	// Close closes the index and releases resources.
	Close() error
}
