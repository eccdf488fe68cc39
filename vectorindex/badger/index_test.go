package badger

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harborai/docqa/ai/mock"
	"github.com/harborai/docqa/core"
	"github.com/harborai/docqa/vectorindex"
)

func newTestIndex(t *testing.T) *Index {
	t.Helper()

	idx, err := NewMemoryIndex(mock.NewMockEmbedder())
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, idx.Close())
	})
	return idx
}

func makeChunk(content string, meta map[string]string) *core.Chunk {
	if meta == nil {
		meta = map[string]string{}
	}
	if _, ok := meta[core.SourceFileKey]; !ok {
		meta[core.SourceFileKey] = "test.txt"
	}
	return &core.Chunk{Content: content, Metadata: meta}
}

func TestIndexAdd(t *testing.T) {
	t.Run("assigns ids vectors and timestamps", func(t *testing.T) {
		idx := newTestIndex(t)

		chunks := []*core.Chunk{
			makeChunk("alpha", nil),
			makeChunk("beta", nil),
		}
		require.NoError(t, idx.Add(context.Background(), chunks))

		for _, chunk := range chunks {
			assert.NotZero(t, chunk.Id)
			assert.NotEmpty(t, chunk.Vector)
			assert.False(t, chunk.InsertedAt.IsZero())
		}

		ids, err := idx.IDs(context.Background())
		require.NoError(t, err)
		assert.Len(t, ids, 2)
	})

	t.Run("stores every chunk of a batch with repeated content", func(t *testing.T) {
		idx := newTestIndex(t)

		meta := map[string]string{core.SourceFileKey: "repeat.txt"}
		chunks := []*core.Chunk{
			makeChunk("the same sentence", core.CloneMetadata(meta)),
			makeChunk("the same sentence", core.CloneMetadata(meta)),
			makeChunk("the same sentence", core.CloneMetadata(meta)),
		}
		require.NoError(t, idx.Add(context.Background(), chunks))
		assert.NotEqual(t, chunks[0].Id, chunks[1].Id)

		ids, err := idx.IDs(context.Background())
		require.NoError(t, err)
		assert.Len(t, ids, 3)
	})

	t.Run("rejects invalid chunks", func(t *testing.T) {
		idx := newTestIndex(t)

		err := idx.Add(context.Background(), []*core.Chunk{{Content: ""}})
		require.Error(t, err)

		ids, err := idx.IDs(context.Background())
		require.NoError(t, err)
		assert.Empty(t, ids)
	})

	t.Run("empty batch is a no-op", func(t *testing.T) {
		idx := newTestIndex(t)
		require.NoError(t, idx.Add(context.Background(), nil))
	})
}

func TestIndexSearch(t *testing.T) {
	t.Run("returns the closest match first", func(t *testing.T) {
		idx := newTestIndex(t)

		require.NoError(t, idx.Add(context.Background(), []*core.Chunk{
			makeChunk("the refund policy allows returns within 30 days", nil),
			makeChunk("our office hours are nine to five", nil),
		}))

		results, err := idx.Search(context.Background(), "the refund policy allows returns within 30 days", 2, nil)
		require.NoError(t, err)
		require.Len(t, results, 2)

		// The deterministic mock embedder maps identical text to
		// identical vectors, so the exact match scores highest.
		assert.Equal(t, "the refund policy allows returns within 30 days", results[0].Chunk.Content)
		assert.Greater(t, results[0].Score, results[1].Score)
	})

	t.Run("truncates to k", func(t *testing.T) {
		idx := newTestIndex(t)

		var chunks []*core.Chunk
		for i := 0; i < 5; i++ {
			chunks = append(chunks, makeChunk(fmt.Sprintf("document number %d", i), nil))
		}
		require.NoError(t, idx.Add(context.Background(), chunks))

		results, err := idx.Search(context.Background(), "document", 3, nil)
		require.NoError(t, err)
		assert.Len(t, results, 3)
	})

	t.Run("filter restricts candidates", func(t *testing.T) {
		idx := newTestIndex(t)

		require.NoError(t, idx.Add(context.Background(), []*core.Chunk{
			makeChunk("shared knowledge", map[string]string{core.UserIDKey: "alice"}),
			makeChunk("shared knowledge too", map[string]string{core.UserIDKey: "bob"}),
		}))

		results, err := idx.Search(context.Background(), "shared knowledge", 10,
			vectorindex.Filter{core.UserIDKey: "alice"})
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, "alice", results[0].Chunk.Metadata[core.UserIDKey])
	})

	t.Run("non-positive k returns nothing", func(t *testing.T) {
		idx := newTestIndex(t)

		require.NoError(t, idx.Add(context.Background(), []*core.Chunk{makeChunk("anything", nil)}))

		results, err := idx.Search(context.Background(), "anything", 0, nil)
		require.NoError(t, err)
		assert.Empty(t, results)
	})
}

func TestIndexDelete(t *testing.T) {
	t.Run("removes matching chunks and reports count", func(t *testing.T) {
		idx := newTestIndex(t)

		require.NoError(t, idx.Add(context.Background(), []*core.Chunk{
			makeChunk("first", map[string]string{core.FileIDKey: "7"}),
			makeChunk("second", map[string]string{core.FileIDKey: "7"}),
			makeChunk("third", map[string]string{core.FileIDKey: "8"}),
		}))

		n, err := idx.Delete(context.Background(), vectorindex.Filter{core.FileIDKey: "7"})
		require.NoError(t, err)
		assert.Equal(t, 2, n)

		ids, err := idx.IDs(context.Background())
		require.NoError(t, err)
		assert.Len(t, ids, 1)
	})

	t.Run("empty filter matches nothing", func(t *testing.T) {
		idx := newTestIndex(t)

		require.NoError(t, idx.Add(context.Background(), []*core.Chunk{makeChunk("keep me", nil)}))

		n, err := idx.Delete(context.Background(), nil)
		require.NoError(t, err)
		assert.Zero(t, n)

		ids, err := idx.IDs(context.Background())
		require.NoError(t, err)
		assert.Len(t, ids, 1)
	})
}

func TestIndexDeleteByIDs(t *testing.T) {
	idx := newTestIndex(t)

	chunks := []*core.Chunk{
		makeChunk("one", nil),
		makeChunk("two", nil),
	}
	require.NoError(t, idx.Add(context.Background(), chunks))

	require.NoError(t, idx.DeleteByIDs(context.Background(), chunks[0].Id))

	ids, err := idx.IDs(context.Background())
	require.NoError(t, err)
	require.Len(t, ids, 1)
	assert.Equal(t, chunks[1].Id, ids[0])

	// Unknown IDs are ignored.
	require.NoError(t, idx.DeleteByIDs(context.Background(), core.ID(12345)))
}

func TestCosineSimilarity(t *testing.T) {
	assert.InDelta(t, 1.0, cosineSimilarity([]float32{1, 0}, []float32{2, 0}), 1e-6)
	assert.InDelta(t, 0.0, cosineSimilarity([]float32{1, 0}, []float32{0, 1}), 1e-6)
	assert.InDelta(t, -1.0, cosineSimilarity([]float32{1, 0}, []float32{-1, 0}), 1e-6)
	assert.Zero(t, cosineSimilarity([]float32{1}, []float32{1, 2}))
	assert.Zero(t, cosineSimilarity(nil, nil))
}
