package reconcile

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harborai/docqa/ai/mock"
	"github.com/harborai/docqa/core"
	"github.com/harborai/docqa/store"
	"github.com/harborai/docqa/store/sqlite"
	"github.com/harborai/docqa/vectorindex"
	vibadger "github.com/harborai/docqa/vectorindex/badger"
)

type fixture struct {
	store      *sqlite.Store
	index      *vectorindex.Handle
	reconciler *Reconciler
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()

	s, err := sqlite.Open("")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	// On-disk index so Reopen sees the same data.
	indexDir := filepath.Join(t.TempDir(), "index")
	handle, err := vectorindex.NewHandle(func() (vectorindex.Index, error) {
		return vibadger.Open(indexDir, false, mock.NewMockEmbedder())
	})
	require.NoError(t, err)
	t.Cleanup(func() { handle.Close() })

	reconciler, err := NewReconciler(s, handle, opts...)
	require.NoError(t, err)

	return &fixture{store: s, index: handle, reconciler: reconciler}
}

// addFile registers a file record with an on-disk copy and indexed chunks.
func (f *fixture) addFile(t *testing.T, filename, userID string, contents ...string) *core.FileRecord {
	t.Helper()

	path := filepath.Join(t.TempDir(), filename)
	require.NoError(t, os.WriteFile(path, []byte("payload"), 0644))

	record, err := f.store.Files().Add(context.Background(), &core.FileRecord{
		Filename: filename,
		Filepath: path,
		UserID:   userID,
	})
	require.NoError(t, err)

	var chunks []*core.Chunk
	for _, content := range contents {
		chunks = append(chunks, &core.Chunk{
			Content: content,
			Metadata: map[string]string{
				core.SourceFileKey: path,
				core.FileIDKey:     strconv.FormatInt(record.Id, 10),
				core.FilenameKey:   filename,
				core.UserIDKey:     userID,
			},
		})
	}
	require.NoError(t, f.index.Add(context.Background(), chunks))

	return record
}

func TestNewReconciler(t *testing.T) {
	s, err := sqlite.Open("")
	require.NoError(t, err)
	defer s.Close()

	handle, err := vectorindex.NewHandle(func() (vectorindex.Index, error) {
		return vibadger.NewMemoryIndex(mock.NewMockEmbedder())
	})
	require.NoError(t, err)
	defer handle.Close()

	_, err = NewReconciler(nil, handle)
	assert.ErrorIs(t, err, ErrStoreRequired)

	_, err = NewReconciler(s, nil)
	assert.ErrorIs(t, err, ErrIndexRequired)
}

func TestDeleteFile(t *testing.T) {
	t.Run("removes record disk copy and chunks", func(t *testing.T) {
		f := newFixture(t)

		doomed := f.addFile(t, "a.txt", "alice", "chunk from a")
		kept := f.addFile(t, "b.txt", "alice", "chunk from b")

		result, err := f.reconciler.DeleteFile(context.Background(), doomed.Id)
		require.NoError(t, err)
		assert.Equal(t, StatusDeleted, result.Status)
		assert.Empty(t, result.Warnings)

		_, err = f.store.Files().Get(context.Background(), doomed.Id)
		assert.ErrorIs(t, err, store.ErrNotFound)

		_, err = os.Stat(doomed.Filepath)
		assert.True(t, errors.Is(err, os.ErrNotExist))

		// Survivors stay queryable through the reopened index.
		results, err := f.index.Search(context.Background(), "chunk from b", 10, nil)
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, kept.Filename, results[0].Chunk.Metadata[core.FilenameKey])
	})

	t.Run("catches chunks tagged only by filename", func(t *testing.T) {
		f := newFixture(t)

		record, err := f.store.Files().Add(context.Background(), &core.FileRecord{
			Filename: "legacy.txt",
		})
		require.NoError(t, err)

		// Legacy chunk without a file id tag.
		require.NoError(t, f.index.Add(context.Background(), []*core.Chunk{{
			Content: "legacy content",
			Metadata: map[string]string{
				core.SourceFileKey: "legacy.txt",
				core.FilenameKey:   "legacy.txt",
			},
		}}))

		result, err := f.reconciler.DeleteFile(context.Background(), record.Id)
		require.NoError(t, err)
		assert.Equal(t, StatusDeleted, result.Status)

		ids, err := f.index.IDs(context.Background())
		require.NoError(t, err)
		assert.Empty(t, ids)
	})

	t.Run("missing file returns ErrNotFound", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.reconciler.DeleteFile(context.Background(), 999)
		assert.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("missing disk copy is not a warning", func(t *testing.T) {
		f := newFixture(t)

		record := f.addFile(t, "gone.txt", "alice", "content")
		require.NoError(t, os.Remove(record.Filepath))

		result, err := f.reconciler.DeleteFile(context.Background(), record.Id)
		require.NoError(t, err)
		assert.Equal(t, StatusDeleted, result.Status)
		assert.Empty(t, result.Warnings)
	})
}

func TestClearAll(t *testing.T) {
	t.Run("wrong token leaves everything intact", func(t *testing.T) {
		f := newFixture(t, WithAdminToken("secret"))

		f.addFile(t, "a.txt", "alice", "content")
		_, err := f.store.Chats().AddEntry(context.Background(), &core.ChatEntry{
			Question: "q", Answer: "a",
		})
		require.NoError(t, err)

		_, err = f.reconciler.ClearAll(context.Background(), "wrong")
		assert.ErrorIs(t, err, ErrUnauthorized)

		files, err := f.store.Files().List(context.Background(), "")
		require.NoError(t, err)
		assert.Len(t, files, 1)

		entries, err := f.store.Chats().List(context.Background(), "")
		require.NoError(t, err)
		assert.Len(t, entries, 1)

		ids, err := f.index.IDs(context.Background())
		require.NoError(t, err)
		assert.Len(t, ids, 1)
	})

	t.Run("unset token always refuses", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.reconciler.ClearAll(context.Background(), "")
		assert.ErrorIs(t, err, ErrUnauthorized)
	})

	t.Run("matching token wipes and reports counts", func(t *testing.T) {
		f := newFixture(t, WithAdminToken("secret"))

		f.addFile(t, "a.txt", "alice", "first", "second")
		f.addFile(t, "b.txt", "bob", "third")
		for range 3 {
			_, err := f.store.Chats().AddEntry(context.Background(), &core.ChatEntry{
				Question: "q", Answer: "a",
			})
			require.NoError(t, err)
		}

		result, err := f.reconciler.ClearAll(context.Background(), "secret")
		require.NoError(t, err)
		assert.Equal(t, 2, result.FilesDeleted)
		assert.Equal(t, 3, result.ChatsDeleted)
		assert.Empty(t, result.Warnings)

		ids, err := f.index.IDs(context.Background())
		require.NoError(t, err)
		assert.Empty(t, ids)
	})
}
