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

package chat

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/harborai/docqa/ai"
	"github.com/harborai/docqa/core"
	"github.com/harborai/docqa/retrieval"
	"github.com/harborai/docqa/store"
	"github.com/harborai/docqa/vectorindex"
)

// DefaultTopK is the number of chunks retrieved per question.
const DefaultTopK = 5

// Request is one question from one user. FileID zero means answer from
// all of the user's files; a non-zero FileID scopes retrieval to that
// file and must belong to the user.
type Request struct {
	UserID   string
	Question string
	FileID   int64
	Keywords []string
}

// Answer is the completion plus the files it most likely drew from.
type Answer struct {
	Text    string
	Sources []string
}

// Service answers questions against a user's ingested documents.
type Service struct {
	files     store.FileRepository
	chats     store.ChatHistoryRepository
	retriever *retrieval.Retriever
	completer ai.Completer
	topK      int
	logger    *slog.Logger
}

// Option configures a Service.
type Option func(*Service) error

// WithTopK sets how many chunks are retrieved per question.
// Default is DefaultTopK.
func WithTopK(k int) Option {
	return func(s *Service) error {
		if k < 1 {
			k = DefaultTopK
		}
		s.topK = k
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// NewService creates a chat service.
func NewService(
	files store.FileRepository,
	chats store.ChatHistoryRepository,
	retriever *retrieval.Retriever,
	completer ai.Completer,
	opts ...Option,
) (*Service, error) {
	if files == nil {
		return nil, ErrFileRepositoryRequired
	}
	if chats == nil {
		return nil, ErrChatRepositoryRequired
	}
	if retriever == nil {
		return nil, ErrRetrieverRequired
	}
	if completer == nil {
		return nil, ErrCompleterRequired
	}

	s := &Service{
		files:     files,
		chats:     chats,
		retriever: retriever,
		completer: completer,
		topK:      DefaultTopK,
		logger:    slog.Default().With("component", "chat"),
	}

	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// Ask retrieves the relevant chunks for the question, asks the language
// model with them as context, records the exchange and attributes the
// answer to its most likely source file.
func (s *Service) Ask(ctx context.Context, req Request) (*Answer, error) {
	if req.Question == "" {
		return nil, ErrEmptyQuestion
	}

	records, err := s.files.List(ctx, req.UserID)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return &Answer{Text: noDocumentsAnswer}, nil
	}

	liveFiles := make(map[string]bool, len(records))
	for _, record := range records {
		liveFiles[strconv.FormatInt(record.Id, 10)] = true
	}

	query := retrieval.Query{UserID: req.UserID, Keywords: req.Keywords}
	if req.FileID != 0 {
		if !liveFiles[strconv.FormatInt(req.FileID, 10)] {
			return nil, ErrFileNotOwned
		}
		query.Filter = vectorindex.Filter{
			core.FileIDKey: strconv.FormatInt(req.FileID, 10),
		}
	}

	chunks, err := s.retriever.Retrieve(ctx, req.Question, s.topK, query)
	if err != nil {
		return nil, err
	}

	// Drop chunks whose file record is gone; the index may lag behind a
	// deletion until reconciliation finishes.
	kept := chunks[:0]
	for _, chunk := range chunks {
		if fileID, ok := chunk.Metadata[core.FileIDKey]; ok && !liveFiles[fileID] {
			continue
		}
		kept = append(kept, chunk)
	}
	chunks = kept

	if len(chunks) == 0 {
		return &Answer{Text: noContextAnswer}, nil
	}

	text, err := s.completer.Complete(ctx, buildPrompt(req.Question, chunks))
	if err != nil {
		return nil, err
	}

	answer := &Answer{
		Text:    text,
		Sources: attributeSources(chunks),
	}

	if _, err := s.chats.AddEntry(ctx, &core.ChatEntry{
		UserID:   req.UserID,
		FileID:   req.FileID,
		Question: req.Question,
		Answer:   text,
	}); err != nil {
		s.logger.Warn("failed to record chat entry", "err", err)
	}

	return answer, nil
}

// History returns the user's past exchanges, oldest first.
func (s *Service) History(ctx context.Context, userID string) ([]*core.ChatEntry, error) {
	return s.chats.List(ctx, userID)
}
