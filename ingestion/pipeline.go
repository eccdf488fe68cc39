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

package ingestion

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/harborai/docqa/chunker"
	"github.com/harborai/docqa/core"
	"github.com/harborai/docqa/loader"
	"github.com/harborai/docqa/vectorindex"
)

// Pipeline turns a file on disk into indexed chunks. Each call runs the
// full load, split, tag and index sequence synchronously; when Ingest
// returns nil the chunks are queryable.
type Pipeline struct {
	index    vectorindex.Index
	strategy chunker.Strategy
	splitter func(ext string) chunker.Splitter
	logger   *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithStrategy fixes the chunking strategy instead of choosing per file
// extension. Default is StrategyAuto.
func WithStrategy(strategy chunker.Strategy) Option {
	return func(p *Pipeline) error {
		p.strategy = strategy
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// NewPipeline creates an ingestion pipeline writing into the given index.
func NewPipeline(index vectorindex.Index, opts ...Option) (*Pipeline, error) {
	if index == nil {
		return nil, ErrIndexRequired
	}

	p := &Pipeline{
		index:    index,
		strategy: chunker.StrategyAuto,
		logger:   slog.Default().With("component", "ingestion"),
	}

	for _, opt := range opts {
		if err := opt(p); err != nil {
			return nil, err
		}
	}

	p.splitter = func(ext string) chunker.Splitter {
		return chunker.Select(ext, p.strategy)
	}

	return p, nil
}

// Ingest loads the file at path, splits it into chunks, stamps every
// chunk with the given tags plus its source file, and adds the whole
// batch to the index in one call. Tags overwrite loader metadata on key
// collision. Returns the number of chunks indexed.
func (p *Pipeline) Ingest(ctx context.Context, filePath string, tags map[string]string) (int, error) {
	docs, err := loader.Load(ctx, filePath)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrIngestion, err)
	}

	split := p.splitter(loader.Ext(filePath))

	chunks, err := split.Split(docs)
	if err != nil {
		return 0, fmt.Errorf("%w: splitting %s: %w", ErrIngestion, filePath, err)
	}

	for _, chunk := range chunks {
		if chunk.Metadata == nil {
			chunk.Metadata = map[string]string{}
		}
		for key, value := range tags {
			chunk.Metadata[key] = value
		}
		chunk.Metadata[core.SourceFileKey] = filePath
	}

	if len(chunks) == 0 {
		p.logger.Warn("no chunks produced", "file", filePath)
		return 0, nil
	}

	if err := p.index.Add(ctx, chunks); err != nil {
		return 0, fmt.Errorf("%w: indexing %s: %w", ErrIngestion, filePath, err)
	}

	p.logger.Info("ingested file", "file", filePath, "chunks", len(chunks))
	return len(chunks), nil
}
