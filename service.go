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

package docqa

import (
	"log/slog"
	"path/filepath"

	"github.com/harborai/docqa/ai"
	"github.com/harborai/docqa/ai/openai"
	"github.com/harborai/docqa/chat"
	"github.com/harborai/docqa/chunker"
	"github.com/harborai/docqa/ingestion"
	"github.com/harborai/docqa/reconcile"
	"github.com/harborai/docqa/retrieval"
	"github.com/harborai/docqa/store"
	"github.com/harborai/docqa/store/sqlite"
	"github.com/harborai/docqa/upload"
	"github.com/harborai/docqa/vectorindex"
	vibadger "github.com/harborai/docqa/vectorindex/badger"
)

// Service wires the document QA stack together: relational store,
// vector index, AI provider and the domain services on top of them.
// All state lives under one data directory.
type Service struct {
	store    *sqlite.Store
	index    *vectorindex.Handle
	provider ai.Provider
	logger   *slog.Logger

	options *serviceOptions
}

// ServiceOption configures a Service.
type ServiceOption func(*serviceOptions)

type serviceOptions struct {
	aiConfig   *ai.Config
	adminToken string
	strategy   chunker.Strategy
	provider   ai.Provider
}

// WithAIConfig sets the AI endpoints and models.
// Default is ai.DefaultConfig().
func WithAIConfig(config *ai.Config) ServiceOption {
	return func(o *serviceOptions) {
		if config != nil {
			o.aiConfig = config
		}
	}
}

// WithAdminToken enables destructive admin operations guarded by the
// given token. Unset, ClearAll always refuses.
func WithAdminToken(token string) ServiceOption {
	return func(o *serviceOptions) {
		o.adminToken = token
	}
}

// WithChunkingStrategy fixes the chunking strategy for all ingestion.
// Default is chunker.StrategyAuto.
func WithChunkingStrategy(strategy chunker.Strategy) ServiceOption {
	return func(o *serviceOptions) {
		o.strategy = strategy
	}
}

// WithProvider substitutes the AI provider, bypassing the OpenAI one.
// Intended for tests.
func WithProvider(provider ai.Provider) ServiceOption {
	return func(o *serviceOptions) {
		o.provider = provider
	}
}

// NewService opens a service rooted at dataDir. The relational store,
// vector index and upload directory are created under it as needed.
func NewService(dataDir string, opts ...ServiceOption) (*Service, error) {
	options := &serviceOptions{
		aiConfig: ai.DefaultConfig(),
		strategy: chunker.StrategyAuto,
	}
	for _, opt := range opts {
		opt(options)
	}

	provider := options.provider
	if provider == nil {
		var err error
		provider, err = openai.NewProvider(options.aiConfig)
		if err != nil {
			return nil, err
		}
	}

	relStore, err := sqlite.Open(filepath.Join(dataDir, "metadata.db"))
	if err != nil {
		provider.Close()
		return nil, err
	}

	indexDir := filepath.Join(dataDir, "index")
	index, err := vectorindex.NewHandle(func() (vectorindex.Index, error) {
		return vibadger.Open(indexDir, false, provider.Embedder())
	})
	if err != nil {
		relStore.Close()
		provider.Close()
		return nil, err
	}

	return &Service{
		store:    relStore,
		index:    index,
		provider: provider,
		logger:   slog.Default(),
		options:  options,
	}, nil
}

// Close releases the index, the store and the AI provider.
func (s *Service) Close() error {
	if err := s.provider.Close(); err != nil {
		s.logger.Error("error closing AI provider", "err", err)
	}

	if err := s.index.Close(); err != nil {
		s.logger.Error("error closing vector index", "err", err)
		return err
	}
	if err := s.store.Close(); err != nil {
		s.logger.Error("error closing store", "err", err)
		return err
	}
	return nil
}

// Files returns the file repository.
func (s *Service) Files() store.FileRepository {
	return s.store.Files()
}

// Chats returns the chat history repository.
func (s *Service) Chats() store.ChatHistoryRepository {
	return s.store.Chats()
}

// Index returns the vector index handle.
func (s *Service) Index() *vectorindex.Handle {
	return s.index
}

// NewIngestionPipeline creates a pipeline writing into the index.
func (s *Service) NewIngestionPipeline(opts ...ingestion.Option) (*ingestion.Pipeline, error) {
	opts = append([]ingestion.Option{ingestion.WithStrategy(s.options.strategy)}, opts...)
	return ingestion.NewPipeline(s.index, opts...)
}

// NewRetriever creates a retriever over the index.
func (s *Service) NewRetriever(opts ...retrieval.Option) (*retrieval.Retriever, error) {
	return retrieval.NewRetriever(s.index, opts...)
}

// NewUploader creates an uploader storing payloads under the given
// directory.
func (s *Service) NewUploader(uploadDir string, opts ...upload.Option) (*upload.Uploader, error) {
	pipeline, err := s.NewIngestionPipeline()
	if err != nil {
		return nil, err
	}
	return upload.NewUploader(s.store.Files(), pipeline, uploadDir, opts...)
}

// NewReconciler creates a reconciler over the store and index.
func (s *Service) NewReconciler(opts ...reconcile.Option) (*reconcile.Reconciler, error) {
	opts = append([]reconcile.Option{reconcile.WithAdminToken(s.options.adminToken)}, opts...)
	return reconcile.NewReconciler(s.store, s.index, opts...)
}

// NewChatService creates a question answering service.
func (s *Service) NewChatService(opts ...chat.Option) (*chat.Service, error) {
	retriever, err := s.NewRetriever()
	if err != nil {
		return nil, err
	}
	return chat.NewService(s.store.Files(), s.store.Chats(), retriever, s.provider.Completer(), opts...)
}
