package upload

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harborai/docqa/ai/mock"
	"github.com/harborai/docqa/core"
	"github.com/harborai/docqa/ingestion"
	"github.com/harborai/docqa/loader"
	"github.com/harborai/docqa/store/sqlite"
	vibadger "github.com/harborai/docqa/vectorindex/badger"
)

type fixture struct {
	store    *sqlite.Store
	index    *vibadger.Index
	embedder *mock.MockEmbedder
	uploader *Uploader
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()

	s, err := sqlite.Open("")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	embedder := mock.NewMockEmbedder()
	idx, err := vibadger.NewMemoryIndex(embedder)
	require.NoError(t, err)
	t.Cleanup(func() { idx.Close() })

	pipeline, err := ingestion.NewPipeline(idx)
	require.NoError(t, err)

	uploader, err := NewUploader(s.Files(), pipeline, filepath.Join(t.TempDir(), "uploads"), opts...)
	require.NoError(t, err)
	t.Cleanup(func() { uploader.Close() })

	return &fixture{store: s, index: idx, embedder: embedder, uploader: uploader}
}

func TestUpload(t *testing.T) {
	t.Run("saves registers and ingests", func(t *testing.T) {
		f := newFixture(t)

		record, err := f.uploader.Upload(context.Background(),
			strings.NewReader("the refund policy allows returns within 30 days"),
			"policy.txt", "alice")
		require.NoError(t, err)
		require.NotZero(t, record.Id)
		assert.Equal(t, "policy.txt", record.Filename)
		assert.Equal(t, "alice", record.UserID)

		// Stored under a unique name, not the original.
		assert.NotEqual(t, "policy.txt", filepath.Base(record.Filepath))
		assert.True(t, strings.HasSuffix(record.Filepath, "_policy.txt"))
		_, err = os.Stat(record.Filepath)
		require.NoError(t, err)

		results, err := f.index.Search(context.Background(), "refund policy", 5, nil)
		require.NoError(t, err)
		require.NotEmpty(t, results)
		assert.Equal(t, "alice", results[0].Chunk.Metadata[core.UserIDKey])
		assert.Equal(t, "policy.txt", results[0].Chunk.Metadata[core.FilenameKey])
	})

	t.Run("rejects unsupported extensions before saving", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.uploader.Upload(context.Background(),
			strings.NewReader("binary"), "image.png", "alice")
		assert.ErrorIs(t, err, loader.ErrUnsupportedFormat)

		records, err := f.store.Files().List(context.Background(), "")
		require.NoError(t, err)
		assert.Empty(t, records)
	})

	t.Run("identical filenames do not collide", func(t *testing.T) {
		f := newFixture(t)

		first, err := f.uploader.Upload(context.Background(),
			strings.NewReader("first body"), "doc.txt", "alice")
		require.NoError(t, err)

		second, err := f.uploader.Upload(context.Background(),
			strings.NewReader("second body"), "doc.txt", "alice")
		require.NoError(t, err)

		assert.NotEqual(t, first.Filepath, second.Filepath)
	})

	t.Run("failed ingestion rolls everything back", func(t *testing.T) {
		f := newFixture(t)

		f.embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
			return nil, errors.New("embedding service down")
		}

		_, err := f.uploader.Upload(context.Background(),
			strings.NewReader("doomed content"), "doomed.txt", "alice")
		assert.ErrorIs(t, err, ErrUpload)

		records, err := f.store.Files().List(context.Background(), "")
		require.NoError(t, err)
		assert.Empty(t, records)

		entries, err := os.ReadDir(f.uploader.uploadDir)
		require.NoError(t, err)
		assert.Empty(t, entries)
	})
}

func TestUploadAll(t *testing.T) {
	f := newFixture(t, WithPoolSize(4))

	dir := t.TempDir()
	var paths []string
	for i := 0; i < 5; i++ {
		path := filepath.Join(dir, fmt.Sprintf("doc%d.txt", i))
		require.NoError(t, os.WriteFile(path, []byte(fmt.Sprintf("document body %d", i)), 0644))
		paths = append(paths, path)
	}
	// One bad entry in the middle.
	paths = slices.Insert(paths, 2, filepath.Join(dir, "missing.txt"))

	results := f.uploader.UploadAll(context.Background(), paths, "alice")
	require.Len(t, results, 6)

	var failed int
	for i, result := range results {
		assert.Equal(t, paths[i], result.Path)
		if result.Err != nil {
			failed++
			assert.Nil(t, result.Record)
		} else {
			assert.NotNil(t, result.Record)
		}
	}
	assert.Equal(t, 1, failed)

	records, err := f.store.Files().List(context.Background(), "alice")
	require.NoError(t, err)
	assert.Len(t, records, 5)
}
