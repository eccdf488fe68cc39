package badger

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"os"
	"slices"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"

	"github.com/harborai/docqa/ai"
	"github.com/harborai/docqa/core"
	"github.com/harborai/docqa/vectorindex"
)

// Index is a BadgerDB-backed vector index. Chunks are embedded through the
// configured embedder when added and matched by brute-force cosine
// similarity when searched. All operations are safe for concurrent use.
type Index struct {
	db       *badger.DB
	embedder ai.Embedder
	logger   *slog.Logger
}

var _ vectorindex.Index = (*Index)(nil)

// badgerLoggerAdapter adapts slog.Logger to badger.Logger interface.
type badgerLoggerAdapter struct {
	logger *slog.Logger
}

var _ badger.Logger = (*badgerLoggerAdapter)(nil)

func (bl *badgerLoggerAdapter) Errorf(msg string, items ...any) {
	bl.logger.Error(fmt.Sprintf(msg, items...))
}

func (bl *badgerLoggerAdapter) Warningf(msg string, items ...any) {
	bl.logger.Warn(fmt.Sprintf(msg, items...))
}

func (bl *badgerLoggerAdapter) Infof(msg string, items ...any) {
	bl.logger.Info(fmt.Sprintf(msg, items...))
}

func (bl *badgerLoggerAdapter) Debugf(msg string, items ...any) {
	bl.logger.Debug(fmt.Sprintf(msg, items...))
}

// Open opens a vector index persisted at the specified directory path.
// Creates the directory if it doesn't exist. With inMemory set, the path
// is ignored and nothing is persisted.
func Open(path string, inMemory bool, embedder ai.Embedder) (*Index, error) {
	if embedder == nil {
		return nil, vectorindex.ErrEmbedderRequired
	}

	var opts badger.Options

	if inMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		info, err := os.Stat(path)
		if err != nil {
			if os.IsNotExist(err) {
				if err := os.MkdirAll(path, 0755); err != nil {
					return nil, err
				}
				info, err = os.Stat(path)
				if err != nil {
					return nil, err
				}
			} else {
				return nil, err
			}
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("%s is not a directory", path)
		}
		opts = badger.DefaultOptions(path)
	}

	opts.Logger = &badgerLoggerAdapter{logger: slog.Default()}
	opts.Compression = options.None

	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}

	return &Index{
		db:       db,
		embedder: embedder,
		logger:   slog.Default().With("component", "badger-index"),
	}, nil
}

// Close closes the underlying BadgerDB database.
func (x *Index) Close() error {
	return x.db.Close()
}

// IsClosed returns true if the database is closed.
func (x *Index) IsClosed() bool {
	return x.db.IsClosed()
}

// Add validates, embeds and stores a batch of chunks. The whole batch is
// embedded in one call; each chunk is embedded exactly once and never
// re-embedded. A write failure partway through may leave earlier entries
// stored; the caller owns compensation at the record level.
func (x *Index) Add(ctx context.Context, chunks []*core.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	contents := make([]string, len(chunks))
	for i, chunk := range chunks {
		if err := core.ValidateChunk(chunk); err != nil {
			return err
		}
		contents[i] = chunk.Content
	}

	vectors, err := x.embedder.EmbedTexts(ctx, contents)
	if err != nil {
		return err
	}
	if len(vectors) != len(chunks) {
		return fmt.Errorf("embedder returned %d vectors for %d chunks", len(vectors), len(chunks))
	}

	now := time.Now().UTC()
	err = x.db.Update(func(tx *badger.Txn) error {
		for i, chunk := range chunks {
			chunk.Vector = vectors[i]
			chunk.InsertedAt = now
			if chunk.Id == 0 {
				chunk.Id = core.ChunkID(chunk.Content, chunk.Metadata, i)
			}
			if err := tx.Set(makeChunkKey(chunk.Id), vectorindex.MarshalChunk(chunk)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	x.logger.Info("added chunks to index", "count", len(chunks))
	return nil
}

// Search embeds the query and returns up to k chunks by cosine similarity,
// restricted to entries matching the filter.
func (x *Index) Search(ctx context.Context, query string, k int, filter vectorindex.Filter) ([]*core.RetrievedChunk, error) {
	if k <= 0 {
		return []*core.RetrievedChunk{}, nil
	}

	queryVector, err := x.embedder.EmbedText(ctx, query)
	if err != nil {
		return nil, err
	}

	var results []*core.RetrievedChunk
	err = x.db.View(func(tx *badger.Txn) error {
		return x.forEachChunk(tx, func(chunk *core.Chunk) error {
			if len(chunk.Vector) == 0 {
				return nil
			}
			if len(filter) > 0 && !filter.Matches(chunk.Metadata) {
				return nil
			}
			results = append(results, &core.RetrievedChunk{
				Chunk: chunk,
				Score: cosineSimilarity(queryVector, chunk.Vector),
			})
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	// Sort by similarity descending
	slices.SortFunc(results, func(a, b *core.RetrievedChunk) int {
		if a.Score > b.Score {
			return -1
		}
		if a.Score < b.Score {
			return 1
		}
		return 0
	})

	if len(results) > k {
		results = results[:k]
	}
	return results, nil
}

// Delete removes every chunk matching the filter. An empty filter matches
// nothing; clearing the whole index goes through IDs/DeleteByIDs instead.
func (x *Index) Delete(ctx context.Context, filter vectorindex.Filter) (int, error) {
	if len(filter) == 0 {
		return 0, nil
	}

	var doomed [][]byte
	err := x.db.View(func(tx *badger.Txn) error {
		return x.forEachChunk(tx, func(chunk *core.Chunk) error {
			if filter.Matches(chunk.Metadata) {
				doomed = append(doomed, makeChunkKey(chunk.Id))
			}
			return nil
		})
	})
	if err != nil {
		return 0, err
	}

	if err := x.deleteKeys(doomed); err != nil {
		return 0, err
	}

	x.logger.Info("deleted chunks by filter", "count", len(doomed))
	return len(doomed), nil
}

// IDs returns the identifiers of every stored chunk.
func (x *Index) IDs(ctx context.Context) ([]core.ID, error) {
	var ids []core.ID
	err := x.db.View(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(chunkKeyPrefix)
		opts.PrefetchValues = false
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			id, err := parseChunkKey(iter.Item().Key())
			if err != nil {
				return err
			}
			ids = append(ids, id)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// GetChunks fetches stored chunks by identifier. Unknown IDs are
// skipped, so the result may be shorter than the request.
func (x *Index) GetChunks(ctx context.Context, ids ...core.ID) ([]*core.Chunk, error) {
	chunks := make([]*core.Chunk, 0, len(ids))
	err := x.db.View(func(tx *badger.Txn) error {
		for _, id := range ids {
			item, err := tx.Get(makeChunkKey(id))
			if err != nil {
				if err == badger.ErrKeyNotFound {
					continue
				}
				return err
			}
			err = item.Value(func(val []byte) error {
				chunk, err := vectorindex.UnmarshalChunk(val)
				if err != nil {
					return err
				}
				chunks = append(chunks, chunk)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return chunks, nil
}

// PutChunks writes chunks back verbatim, without re-embedding. Used by
// maintenance operations that already computed the vectors.
func (x *Index) PutChunks(ctx context.Context, chunks []*core.Chunk) error {
	return x.db.Update(func(tx *badger.Txn) error {
		for _, chunk := range chunks {
			if err := tx.Set(makeChunkKey(chunk.Id), vectorindex.MarshalChunk(chunk)); err != nil {
				return err
			}
		}
		return nil
	})
}

// DeleteByIDs removes chunks by identifier. Unknown IDs are ignored.
func (x *Index) DeleteByIDs(ctx context.Context, ids ...core.ID) error {
	keys := make([][]byte, len(ids))
	for i, id := range ids {
		keys[i] = makeChunkKey(id)
	}
	return x.deleteKeys(keys)
}

// forEachChunk iterates every stored chunk within the given transaction.
func (x *Index) forEachChunk(tx *badger.Txn, fn func(chunk *core.Chunk) error) error {
	opts := badger.DefaultIteratorOptions
	opts.Prefix = []byte(chunkKeyPrefix)
	iter := tx.NewIterator(opts)
	defer iter.Close()

	for iter.Rewind(); iter.Valid(); iter.Next() {
		var chunk *core.Chunk
		err := iter.Item().Value(func(val []byte) error {
			var err error
			chunk, err = vectorindex.UnmarshalChunk(val)
			return err
		})
		if err != nil {
			return err
		}
		if chunk == nil {
			continue
		}
		if err := fn(chunk); err != nil {
			return err
		}
	}
	return nil
}

// deleteKeys removes keys in a write batch so large deletions don't
// overflow a single transaction.
func (x *Index) deleteKeys(keys [][]byte) error {
	if len(keys) == 0 {
		return nil
	}

	wb := x.db.NewWriteBatch()
	defer wb.Cancel()

	for _, key := range keys {
		if err := wb.Delete(key); err != nil {
			return err
		}
	}
	return wb.Flush()
}

// cosineSimilarity computes the cosine of the angle between two vectors.
// Returns 0 for mismatched or zero-length vectors.
func cosineSimilarity(a, b []float32) float32 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(normA) * math.Sqrt(normB)))
}
