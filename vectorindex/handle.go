package vectorindex

import (
	"context"
	"log/slog"
	"sync"

	"github.com/harborai/docqa/core"
)

// OpenFunc constructs an Index against its backing path. The Handle calls
// it once on creation and again on every Reopen.
type OpenFunc func() (Index, error)

// Handle owns the process-wide index reference and makes the swap-on-delete
// behavior safe: retrieval and ingestion take a read lock on the current
// index, Reopen takes a write lock to close and reconstruct it. The backing
// store is not trusted to provide read-after-write visibility of deletions
// within one handle, so reconciliation reopens it after deletes.
type Handle struct {
	mu     sync.RWMutex
	open   OpenFunc
	idx    Index
	logger *slog.Logger
}

var _ Index = (*Handle)(nil)

// NewHandle opens the index and wraps it in a guarded handle.
func NewHandle(open OpenFunc) (*Handle, error) {
	if open == nil {
		return nil, ErrOpenFuncRequired
	}

	idx, err := open()
	if err != nil {
		return nil, err
	}

	return &Handle{
		open:   open,
		idx:    idx,
		logger: slog.Default().With("component", "index-handle"),
	}, nil
}

// Add delegates to the current index under a read lock.
func (h *Handle) Add(ctx context.Context, chunks []*core.Chunk) error {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.idx.Add(ctx, chunks)
}

// Search delegates to the current index under a read lock.
func (h *Handle) Search(ctx context.Context, query string, k int, filter Filter) ([]*core.RetrievedChunk, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.idx.Search(ctx, query, k, filter)
}

// Delete delegates to the current index under a read lock.
func (h *Handle) Delete(ctx context.Context, filter Filter) (int, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.idx.Delete(ctx, filter)
}

// IDs delegates to the current index under a read lock.
func (h *Handle) IDs(ctx context.Context) ([]core.ID, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.idx.IDs(ctx)
}

// DeleteByIDs delegates to the current index under a read lock.
func (h *Handle) DeleteByIDs(ctx context.Context, ids ...core.ID) error {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.idx.DeleteByIDs(ctx, ids...)
}

// Reopen closes the current index and reconstructs it against the same
// backing path, forcing the store to observe prior deletions. In-flight
// operations finish against the old index before the swap takes effect.
func (h *Handle) Reopen() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.idx.Close(); err != nil {
		h.logger.Warn("error closing index during reopen", "err", err)
	}

	idx, err := h.open()
	if err != nil {
		h.logger.Error("failed to reopen index", "err", err)
		return err
	}

	h.idx = idx
	h.logger.Info("index reopened")
	return nil
}

// Close closes the current index. The handle should not be used afterwards.
func (h *Handle) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.idx.Close()
}
