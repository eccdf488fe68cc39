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

package retrieval

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/harborai/docqa/core"
	"github.com/harborai/docqa/vectorindex"
)

// Retriever runs hybrid retrieval over a vector index: semantic search
// constrained by metadata, re-ranked so that keyword hits come first.
type Retriever struct {
	index  vectorindex.Index
	logger *slog.Logger
}

// Option configures a Retriever.
type Option func(*Retriever) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(r *Retriever) error {
		if logger == nil {
			logger = slog.Default()
		}
		r.logger = logger
		return nil
	}
}

// Query carries the optional knobs for one retrieval.
type Query struct {
	// Keywords promote chunks containing any of them (case-insensitive)
	// ahead of purely semantic matches. Relative order within each group
	// is preserved.
	Keywords []string

	// Filter restricts candidates to chunks whose metadata matches every
	// entry exactly.
	Filter vectorindex.Filter

	// UserID scopes retrieval to one user's chunks. Empty means no user
	// scoping.
	UserID string
}

// NewRetriever creates a retriever over the given index.
func NewRetriever(index vectorindex.Index, opts ...Option) (*Retriever, error) {
	if index == nil {
		return nil, ErrIndexRequired
	}

	r := &Retriever{
		index:  index,
		logger: slog.Default().With("component", "retrieval"),
	}

	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, err
		}
	}

	return r, nil
}

// Retrieve returns up to k chunks relevant to the query text.
func (r *Retriever) Retrieve(ctx context.Context, text string, k int, query Query) ([]*core.Chunk, error) {
	return r.RetrieveWithMonitor(ctx, text, k, query, nil)
}

// RetrieveWithMonitor is Retrieve with observation hooks. The monitor
// receives callbacks at each stage; nil means no monitoring.
func (r *Retriever) RetrieveWithMonitor(ctx context.Context, text string, k int, query Query, monitor RetrieveMonitor) ([]*core.Chunk, error) {
	if monitor == nil {
		monitor = &noopMonitor{}
	}

	monitor.Start(text)

	filter := vectorindex.Filter{}
	for key, value := range query.Filter {
		filter[key] = value
	}
	// User scoping always wins; a caller filter cannot widen it.
	if query.UserID != "" {
		filter[core.UserIDKey] = query.UserID
	}

	results, err := r.index.Search(ctx, text, k, filter)
	if err != nil {
		r.logger.Error("vector search failed", "err", err)
		return nil, fmt.Errorf("%w: %w", ErrRetrieval, err)
	}
	monitor.AfterVectorSearch(results)

	// Keyword hits first, each group keeping its similarity order.
	var promoted, remainder []*core.Chunk
	for _, result := range results {
		if containsAnyKeyword(result.Chunk.Content, query.Keywords) {
			monitor.KeywordHit(result.Chunk)
			promoted = append(promoted, result.Chunk)
		} else {
			remainder = append(remainder, result.Chunk)
		}
	}

	seen := make(map[core.ID]bool, len(results))
	chunks := make([]*core.Chunk, 0, len(results))
	for _, chunk := range append(promoted, remainder...) {
		if seen[chunk.Id] {
			continue
		}
		seen[chunk.Id] = true
		chunks = append(chunks, chunk)
	}

	if len(chunks) > k {
		chunks = chunks[:k]
	}
	monitor.Finish(chunks)

	return chunks, nil
}
