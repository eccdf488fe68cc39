package chunker

import (
	"log/slog"

	"github.com/tmc/langchaingo/textsplitter"

	"github.com/harborai/docqa/core"
)

// CharacterSplitter splits documents into fixed-size character windows
// with overlap between consecutive chunks of the same document.
type CharacterSplitter struct {
	chunkSize    int
	chunkOverlap int
	logger       *slog.Logger
}

// CharacterOption configures a CharacterSplitter.
type CharacterOption func(*CharacterSplitter)

// WithCharacterChunkSize overrides the target chunk size.
func WithCharacterChunkSize(size int) CharacterOption {
	return func(s *CharacterSplitter) {
		if size > 0 {
			s.chunkSize = size
		}
	}
}

// WithCharacterChunkOverlap overrides the overlap between consecutive chunks.
func WithCharacterChunkOverlap(overlap int) CharacterOption {
	return func(s *CharacterSplitter) {
		if overlap >= 0 {
			s.chunkOverlap = overlap
		}
	}
}

// NewCharacterSplitter creates a character-window splitter with the default
// size parameters.
func NewCharacterSplitter(opts ...CharacterOption) *CharacterSplitter {
	s := &CharacterSplitter{
		chunkSize:    DefaultChunkSize,
		chunkOverlap: DefaultChunkOverlap,
		logger:       slog.Default().With("component", "character-splitter"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Split splits every document into character-window chunks. Each chunk
// inherits a copy of its parent document's metadata.
func (s *CharacterSplitter) Split(docs []core.Document) ([]*core.Chunk, error) {
	split := textsplitter.NewRecursiveCharacter(
		textsplitter.WithChunkSize(s.chunkSize),
		textsplitter.WithChunkOverlap(s.chunkOverlap),
	)

	var chunks []*core.Chunk
	for _, doc := range docs {
		pieces, err := split.SplitText(doc.Content)
		if err != nil {
			return nil, err
		}
		for _, piece := range pieces {
			chunks = append(chunks, &core.Chunk{
				Content:  piece,
				Metadata: core.CloneMetadata(doc.Metadata),
			})
		}
	}

	s.logger.Debug("split documents", "documents", len(docs), "chunks", len(chunks))
	return chunks, nil
}
