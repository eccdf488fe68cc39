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

package upload

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"sync"

	"github.com/google/uuid"
	"github.com/panjf2000/ants/v2"

	"github.com/harborai/docqa/core"
	"github.com/harborai/docqa/ingestion"
	"github.com/harborai/docqa/loader"
	"github.com/harborai/docqa/store"
)

// Uploader accepts document uploads: it saves the payload to the upload
// directory, registers a file record and ingests the file into the
// vector index. A failed ingestion rolls the record and the saved file
// back so no half-ingested file remains visible.
type Uploader struct {
	files     store.FileRepository
	pipeline  *ingestion.Pipeline
	uploadDir string
	pool      *ants.Pool
	logger    *slog.Logger
}

// Option configures an Uploader.
type Option func(*Uploader) error

// WithPoolSize sets the worker pool size for batch uploads.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(u *Uploader) error {
		if size < 1 {
			size = 1
		}

		if u.pool != nil {
			u.pool.Release()
		}

		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		u.pool = pool
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(u *Uploader) error {
		if logger == nil {
			logger = slog.Default()
		}
		u.logger = logger
		return nil
	}
}

// NewUploader creates an uploader storing payloads under uploadDir.
func NewUploader(files store.FileRepository, pipeline *ingestion.Pipeline, uploadDir string, opts ...Option) (*Uploader, error) {
	if files == nil {
		return nil, ErrFileRepositoryRequired
	}
	if pipeline == nil {
		return nil, ErrPipelineRequired
	}
	if uploadDir == "" {
		return nil, ErrUploadDirRequired
	}

	if err := os.MkdirAll(uploadDir, 0755); err != nil {
		return nil, fmt.Errorf("creating upload directory: %w", err)
	}

	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}
	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	u := &Uploader{
		files:     files,
		pipeline:  pipeline,
		uploadDir: uploadDir,
		pool:      pool,
		logger:    slog.Default().With("component", "upload"),
	}

	for _, opt := range opts {
		if err := opt(u); err != nil {
			pool.Release()
			return nil, err
		}
	}

	return u, nil
}

// Close releases the worker pool.
func (u *Uploader) Close() error {
	u.pool.Release()
	return nil
}

// Upload stores the payload, registers it for the user and ingests it.
// The stored copy gets a unique name so identically named uploads never
// collide. When Upload returns nil the file is queryable; on error no
// trace of it remains.
func (u *Uploader) Upload(ctx context.Context, r io.Reader, filename, userID string) (*core.FileRecord, error) {
	base := filepath.Base(filename)
	if !loader.IsAllowed(base) {
		return nil, fmt.Errorf("%w: %s", loader.ErrUnsupportedFormat, loader.Ext(base))
	}

	savedPath := filepath.Join(u.uploadDir, uuid.New().String()+"_"+base)
	if err := u.savePayload(savedPath, r); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUpload, err)
	}

	record, err := u.files.Add(ctx, &core.FileRecord{
		Filename: base,
		Filepath: savedPath,
		UserID:   userID,
	})
	if err != nil {
		u.removeSaved(savedPath)
		return nil, fmt.Errorf("%w: %w", ErrUpload, err)
	}

	_, err = u.pipeline.Ingest(ctx, savedPath, map[string]string{
		core.FileIDKey:   strconv.FormatInt(record.Id, 10),
		core.FilenameKey: base,
		core.UserIDKey:   userID,
	})
	if err != nil {
		// Roll back so a failed ingestion leaves nothing visible.
		if derr := u.files.Delete(ctx, record.Id); derr != nil {
			u.logger.Error("rollback of file record failed",
				"fileID", record.Id, "err", derr)
		}
		u.removeSaved(savedPath)
		return nil, fmt.Errorf("%w: %w", ErrUpload, err)
	}

	u.logger.Info("uploaded file",
		"fileID", record.Id, "filename", base, "user", userID)
	return record, nil
}

// UploadFile is Upload for a file already on disk.
func (u *Uploader) UploadFile(ctx context.Context, path, userID string) (*core.FileRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUpload, err)
	}
	defer f.Close()

	return u.Upload(ctx, f, filepath.Base(path), userID)
}

// Result pairs one batch entry with its outcome.
type Result struct {
	Path   string
	Record *core.FileRecord
	Err    error
}

// UploadAll ingests many files concurrently through the worker pool.
// Results are returned in input order; a failed entry carries its error
// and does not stop the rest.
func (u *Uploader) UploadAll(ctx context.Context, paths []string, userID string) []Result {
	results := make([]Result, len(paths))

	var wg sync.WaitGroup
	for i, path := range paths {
		wg.Add(1)
		err := u.pool.Submit(func() {
			defer wg.Done()
			record, err := u.UploadFile(ctx, path, userID)
			results[i] = Result{Path: path, Record: record, Err: err}
		})
		if err != nil {
			wg.Done()
			results[i] = Result{Path: path, Err: err}
		}
	}
	wg.Wait()

	return results
}

func (u *Uploader) savePayload(path string, r io.Reader) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return err
	}

	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		u.removeSaved(path)
		return err
	}
	return f.Close()
}

func (u *Uploader) removeSaved(path string) {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		u.logger.Warn("failed to remove saved upload", "path", path, "err", err)
	}
}
