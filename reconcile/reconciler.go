// Copyright 2026 Harbor AI
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package reconcile

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"

	"github.com/harborai/docqa/core"
	"github.com/harborai/docqa/store"
	"github.com/harborai/docqa/vectorindex"
)

// Status values reported by deletion operations.
const (
	StatusDeleted = "deleted"
	StatusPartial = "partial"
)

// ReopenableIndex is a vector index whose backing storage can be
// reopened after destructive maintenance.
type ReopenableIndex interface {
	vectorindex.Index
	Reopen() error
}

// DeleteResult reports the outcome of deleting one file. Warnings hold
// cleanup steps that failed without blocking the deletion itself.
type DeleteResult struct {
	FileID   int64
	Filename string
	Status   string
	Warnings []string
}

// ClearResult reports the outcome of clearing all data.
type ClearResult struct {
	FilesDeleted int
	ChatsDeleted int
	Warnings     []string
}

// Reconciler removes files and their derived state across the relational
// store, the vector index and the filesystem. The relational record is
// the source of truth: once it is gone the file no longer exists, and
// any index or disk leftovers are reported as warnings rather than
// failing the operation.
type Reconciler struct {
	store      store.Store
	index      ReopenableIndex
	adminToken string
	logger     *slog.Logger
}

// Option configures a Reconciler.
type Option func(*Reconciler) error

// WithAdminToken sets the token required by ClearAll. An empty token
// disables ClearAll entirely.
func WithAdminToken(token string) Option {
	return func(r *Reconciler) error {
		r.adminToken = token
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(r *Reconciler) error {
		if logger == nil {
			logger = slog.Default()
		}
		r.logger = logger
		return nil
	}
}

// NewReconciler creates a reconciler over the given store and index.
func NewReconciler(st store.Store, index ReopenableIndex, opts ...Option) (*Reconciler, error) {
	if st == nil {
		return nil, ErrStoreRequired
	}
	if index == nil {
		return nil, ErrIndexRequired
	}

	r := &Reconciler{
		store:  st,
		index:  index,
		logger: slog.Default().With("component", "reconcile"),
	}

	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, err
		}
	}

	return r, nil
}

// DeleteFile removes a file record with its disk copy and indexed
// chunks. Chunks are deleted twice, by file ID and again by filename,
// so that entries tagged under either key are caught. The index is
// reopened afterwards to release space held by the deleted entries.
// Returns store.ErrNotFound when the file does not exist.
func (r *Reconciler) DeleteFile(ctx context.Context, fileID int64) (*DeleteResult, error) {
	record, err := r.store.Files().Get(ctx, fileID)
	if err != nil {
		return nil, err
	}

	result := &DeleteResult{FileID: fileID, Filename: record.Filename}

	if record.Filepath != "" {
		if err := os.Remove(record.Filepath); err != nil && !errors.Is(err, fs.ErrNotExist) {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("removing %s from disk: %v", record.Filepath, err))
		}
	}

	if err := r.store.Files().Delete(ctx, fileID); err != nil {
		return nil, err
	}

	if _, err := r.index.Delete(ctx, vectorindex.Filter{
		core.FileIDKey: strconv.FormatInt(fileID, 10),
	}); err != nil {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("deleting chunks by file id: %v", err))
	}

	if _, err := r.index.Delete(ctx, vectorindex.Filter{
		core.FilenameKey: record.Filename,
	}); err != nil {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("deleting chunks by filename: %v", err))
	}

	if err := r.index.Reopen(); err != nil {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("reopening index: %v", err))
	}

	result.Status = StatusDeleted
	if len(result.Warnings) > 0 {
		result.Status = StatusPartial
		r.logger.Warn("file deleted with warnings",
			"fileID", fileID, "warnings", result.Warnings)
	} else {
		r.logger.Info("file deleted", "fileID", fileID, "filename", record.Filename)
	}

	return result, nil
}

// ClearAll wipes chat history, file records and every indexed chunk.
// The token must match the configured admin token exactly; on mismatch
// nothing is touched and ErrUnauthorized is returned.
func (r *Reconciler) ClearAll(ctx context.Context, token string) (*ClearResult, error) {
	if r.adminToken == "" ||
		subtle.ConstantTimeCompare([]byte(token), []byte(r.adminToken)) != 1 {
		return nil, ErrUnauthorized
	}

	// One transaction so a failure cannot leave chats gone but files kept.
	files, chats, err := r.store.Clear(ctx)
	if err != nil {
		return nil, err
	}
	result := &ClearResult{FilesDeleted: files, ChatsDeleted: chats}

	ids, err := r.index.IDs(ctx)
	if err != nil {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("listing indexed chunks: %v", err))
	} else if err := r.index.DeleteByIDs(ctx, ids...); err != nil {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("deleting indexed chunks: %v", err))
	}

	if err := r.index.Reopen(); err != nil {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("reopening index: %v", err))
	}

	r.logger.Info("cleared all data",
		"files", result.FilesDeleted, "chats", result.ChatsDeleted,
		"warnings", len(result.Warnings))

	return result, nil
}
