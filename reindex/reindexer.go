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

package reindex

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/harborai/docqa/ai"
	"github.com/harborai/docqa/core"
)

// ChunkStore is the slice of the vector index that reindexing needs:
// enumerating chunks, reading them back and writing them with fresh
// vectors.
type ChunkStore interface {
	IDs(ctx context.Context) ([]core.ID, error)
	GetChunks(ctx context.Context, ids ...core.ID) ([]*core.Chunk, error)
	PutChunks(ctx context.Context, chunks []*core.Chunk) error
}

// Config holds configuration for the reindexing operation.
type Config struct {
	// BatchSize is the number of chunks to process in each batch
	BatchSize int

	// ReportInterval is how often to report progress (number of chunks)
	ReportInterval int

	// MaxRetries is the maximum number of retry attempts for failed embedding calls
	MaxRetries int

	// RetryDelay is the base delay for exponential backoff
	RetryDelay time.Duration
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		BatchSize:      100,
		ReportInterval: 100,
		MaxRetries:     3,
		RetryDelay:     1 * time.Second,
	}
}

// Reindexer re-embeds every chunk in the index, typically after the
// embedding model changed. Chunk content and metadata are untouched;
// only the vectors are replaced.
type Reindexer struct {
	store    ChunkStore
	embedder ai.Embedder
	config   *Config
	progress io.Writer
}

// NewReindexer creates a reindexer.
// progress: where to write progress output (typically os.Stderr)
func NewReindexer(store ChunkStore, embedder ai.Embedder, config *Config, progress io.Writer) *Reindexer {
	if config == nil {
		config = DefaultConfig()
	}
	return &Reindexer{
		store:    store,
		embedder: embedder,
		config:   config,
		progress: progress,
	}
}

// Run re-embeds all chunks in batches, reporting progress as it goes.
// A batch that keeps failing after retries aborts the run; completed
// batches stay updated.
func (r *Reindexer) Run(ctx context.Context) error {
	ids, err := r.store.IDs(ctx)
	if err != nil {
		return fmt.Errorf("failed to enumerate chunks: %w", err)
	}

	total := len(ids)
	if total == 0 {
		fmt.Fprintf(r.progress, "No chunks found in index (0 chunks)\n")
		return nil
	}

	fmt.Fprintf(r.progress, "Starting reindex of %d chunks (batch size: %d)\n",
		total, r.config.BatchSize)

	tracker := NewProgressTracker(r.progress, total, r.config.ReportInterval)
	tracker.Start()

	for start := 0; start < total; start += r.config.BatchSize {
		end := min(start+r.config.BatchSize, total)

		chunks, err := r.store.GetChunks(ctx, ids[start:end]...)
		if err != nil {
			return fmt.Errorf("failed to read batch: %w", err)
		}
		if len(chunks) == 0 {
			tracker.Increment(end - start)
			continue
		}

		if err := r.processBatch(ctx, chunks); err != nil {
			return err
		}
		tracker.Increment(end - start)
	}

	tracker.Finish()
	fmt.Fprintf(r.progress, "Reindexed %d chunks in %s\n", total, tracker.Elapsed().Round(time.Second))
	return nil
}

// processBatch embeds one batch of chunk contents and writes the chunks
// back with their new vectors.
func (r *Reindexer) processBatch(ctx context.Context, chunks []*core.Chunk) error {
	texts := make([]string, len(chunks))
	for i, chunk := range chunks {
		texts[i] = chunk.Content
	}

	var vectors [][]float32
	err := RetryWithBackoff(ctx, func() error {
		var err error
		vectors, err = r.embedder.EmbedTexts(ctx, texts)
		return err
	}, r.config.MaxRetries, r.config.RetryDelay)
	if err != nil {
		return fmt.Errorf("failed to generate embeddings after %d attempts: %w", r.config.MaxRetries, err)
	}

	if len(vectors) != len(chunks) {
		return fmt.Errorf("embedding count mismatch: expected %d, got %d", len(chunks), len(vectors))
	}

	for i := range chunks {
		chunks[i].Vector = vectors[i]
	}

	if err := r.store.PutChunks(ctx, chunks); err != nil {
		return fmt.Errorf("failed to write batch: %w", err)
	}
	return nil
}
