package reindex

import (
	"bytes"
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harborai/docqa/ai/mock"
	"github.com/harborai/docqa/core"
	vibadger "github.com/harborai/docqa/vectorindex/badger"
)

func seedIndex(t *testing.T, n int) *vibadger.Index {
	t.Helper()

	idx, err := vibadger.NewMemoryIndex(mock.NewMockEmbedder())
	require.NoError(t, err)
	t.Cleanup(func() { idx.Close() })

	var chunks []*core.Chunk
	for i := 0; i < n; i++ {
		chunks = append(chunks, &core.Chunk{
			Content:  fmt.Sprintf("chunk number %d", i),
			Metadata: map[string]string{core.SourceFileKey: "seed.txt"},
		})
	}
	require.NoError(t, idx.Add(context.Background(), chunks))
	return idx
}

func TestReindexerRun(t *testing.T) {
	t.Run("replaces every vector", func(t *testing.T) {
		idx := seedIndex(t, 7)

		// A new "model" producing a constant, recognizable vector.
		embedder := mock.NewMockEmbedder()
		embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
			vectors := make([][]float32, len(texts))
			for i := range texts {
				vectors[i] = []float32{1, 2, 3}
			}
			return vectors, nil
		}

		var out bytes.Buffer
		reindexer := NewReindexer(idx, embedder, &Config{
			BatchSize:      3,
			ReportInterval: 1,
			MaxRetries:     1,
			RetryDelay:     time.Millisecond,
		}, &out)

		require.NoError(t, reindexer.Run(context.Background()))

		ids, err := idx.IDs(context.Background())
		require.NoError(t, err)
		chunks, err := idx.GetChunks(context.Background(), ids...)
		require.NoError(t, err)
		require.Len(t, chunks, 7)

		for _, chunk := range chunks {
			assert.Equal(t, []float32{1, 2, 3}, chunk.Vector)
			assert.NotEmpty(t, chunk.Content)
		}

		assert.Contains(t, out.String(), "Starting reindex of 7 chunks")
	})

	t.Run("empty index is a no-op", func(t *testing.T) {
		idx := seedIndex(t, 0)

		var out bytes.Buffer
		reindexer := NewReindexer(idx, mock.NewMockEmbedder(), nil, &out)
		require.NoError(t, reindexer.Run(context.Background()))
		assert.Contains(t, out.String(), "No chunks found")
	})

	t.Run("retries transient embedding failures", func(t *testing.T) {
		idx := seedIndex(t, 2)

		var calls int
		embedder := mock.NewMockEmbedder()
		embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
			calls++
			if calls == 1 {
				return nil, fmt.Errorf("transient")
			}
			vectors := make([][]float32, len(texts))
			for i := range texts {
				vectors[i] = []float32{9}
			}
			return vectors, nil
		}

		var out bytes.Buffer
		reindexer := NewReindexer(idx, embedder, &Config{
			BatchSize:      10,
			ReportInterval: 10,
			MaxRetries:     3,
			RetryDelay:     time.Millisecond,
		}, &out)

		require.NoError(t, reindexer.Run(context.Background()))
		assert.Equal(t, 2, calls)
	})

	t.Run("persistent failure aborts", func(t *testing.T) {
		idx := seedIndex(t, 2)

		embedder := mock.NewMockEmbedder()
		embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
			return nil, fmt.Errorf("down for good")
		}

		var out bytes.Buffer
		reindexer := NewReindexer(idx, embedder, &Config{
			BatchSize:      10,
			ReportInterval: 10,
			MaxRetries:     2,
			RetryDelay:     time.Millisecond,
		}, &out)

		err := reindexer.Run(context.Background())
		assert.ErrorContains(t, err, "after 2 attempts")
	})
}

func TestRetryWithBackoff(t *testing.T) {
	t.Run("rejects non-positive attempts", func(t *testing.T) {
		err := RetryWithBackoff(context.Background(), func() error { return nil }, 0, time.Millisecond)
		assert.ErrorIs(t, err, ErrInvalidMaxAttempts)
	})

	t.Run("stops on success", func(t *testing.T) {
		var calls int
		err := RetryWithBackoff(context.Background(), func() error {
			calls++
			if calls < 3 {
				return fmt.Errorf("not yet")
			}
			return nil
		}, 5, time.Millisecond)
		require.NoError(t, err)
		assert.Equal(t, 3, calls)
	})

	t.Run("returns last error when exhausted", func(t *testing.T) {
		err := RetryWithBackoff(context.Background(), func() error {
			return fmt.Errorf("always failing")
		}, 2, time.Millisecond)
		assert.ErrorContains(t, err, "always failing")
	})

	t.Run("honors cancellation", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		err := RetryWithBackoff(ctx, func() error { return fmt.Errorf("nope") }, 3, time.Minute)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestProgressTracker(t *testing.T) {
	var out bytes.Buffer
	tracker := NewProgressTracker(&out, 10, 5)

	// Updates before Start are ignored.
	tracker.Increment(3)
	assert.Empty(t, out.String())

	tracker.Start()
	tracker.Increment(5)
	assert.Contains(t, out.String(), "5/10")

	tracker.Increment(20)
	tracker.Finish()
	assert.Contains(t, out.String(), "10/10")
	assert.Contains(t, out.String(), "100.0%")
}
