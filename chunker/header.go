package chunker

import (
	"errors"
	"log/slog"
	"strings"

	"github.com/tmc/langchaingo/textsplitter"

	"github.com/harborai/docqa/core"
)

// errNoHeaders indicates a document has no #, ## or ### boundaries to split on.
var errNoHeaders = errors.New("no header boundaries found")

// HeaderSplitter splits markdown-like documents on #, ## and ### boundaries,
// recording the heading path of each chunk in its metadata. Documents the
// header pass cannot handle fall back to character-window splitting; the
// fallback is logged as a warning, never raised.
type HeaderSplitter struct {
	chunkSize    int
	chunkOverlap int
	fallback     *CharacterSplitter
	logger       *slog.Logger
}

// HeaderOption configures a HeaderSplitter.
type HeaderOption func(*HeaderSplitter)

// WithHeaderChunkSize overrides the target chunk size.
func WithHeaderChunkSize(size int) HeaderOption {
	return func(s *HeaderSplitter) {
		if size > 0 {
			s.chunkSize = size
		}
	}
}

// WithHeaderChunkOverlap overrides the overlap between consecutive chunks.
func WithHeaderChunkOverlap(overlap int) HeaderOption {
	return func(s *HeaderSplitter) {
		if overlap >= 0 {
			s.chunkOverlap = overlap
		}
	}
}

// NewHeaderSplitter creates a header-based splitter with the default
// size parameters.
func NewHeaderSplitter(opts ...HeaderOption) *HeaderSplitter {
	s := &HeaderSplitter{
		chunkSize:    DefaultChunkSize,
		chunkOverlap: DefaultChunkOverlap,
		logger:       slog.Default().With("component", "header-splitter"),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.fallback = NewCharacterSplitter(
		WithCharacterChunkSize(s.chunkSize),
		WithCharacterChunkOverlap(s.chunkOverlap),
	)
	return s
}

// section is a contiguous span of text under one heading path.
type section struct {
	headers [3]string // active #, ##, ### headings
	text    string
}

// headerPath joins the active headings into a readable path.
func (s *section) headerPath() string {
	parts := make([]string, 0, 3)
	for _, h := range s.headers {
		if h != "" {
			parts = append(parts, h)
		}
	}
	return strings.Join(parts, " > ")
}

// Split splits each document on header boundaries. A document the header
// pass rejects is re-split with the character fallback instead.
func (s *HeaderSplitter) Split(docs []core.Document) ([]*core.Chunk, error) {
	var chunks []*core.Chunk
	for _, doc := range docs {
		sections, err := trySplitByHeaders(doc.Content)
		if err != nil {
			s.logger.Warn("header splitting failed, falling back to character splitting",
				"source", doc.Metadata["source"], "err", err)
			fallbackChunks, fbErr := s.fallback.Split([]core.Document{doc})
			if fbErr != nil {
				return nil, fbErr
			}
			chunks = append(chunks, fallbackChunks...)
			continue
		}

		sectionChunks, err := s.chunkSections(doc, sections)
		if err != nil {
			return nil, err
		}
		chunks = append(chunks, sectionChunks...)
	}
	return chunks, nil
}

// chunkSections turns sections into chunks, sub-splitting any section whose
// text exceeds the chunk size so the size bound still holds in header mode.
func (s *HeaderSplitter) chunkSections(doc core.Document, sections []section) ([]*core.Chunk, error) {
	sub := textsplitter.NewRecursiveCharacter(
		textsplitter.WithChunkSize(s.chunkSize),
		textsplitter.WithChunkOverlap(s.chunkOverlap),
	)

	var chunks []*core.Chunk
	for _, sec := range sections {
		if sec.text == "" {
			continue
		}

		pieces := []string{sec.text}
		if len(sec.text) > s.chunkSize {
			var err error
			pieces, err = sub.SplitText(sec.text)
			if err != nil {
				return nil, err
			}
		}

		for _, piece := range pieces {
			meta := core.CloneMetadata(doc.Metadata)
			if path := sec.headerPath(); path != "" {
				meta[core.HeadersKey] = path
			}
			chunks = append(chunks, &core.Chunk{
				Content:  piece,
				Metadata: meta,
			})
		}
	}
	return chunks, nil
}

// trySplitByHeaders partitions text into sections on #, ## and ### lines.
// It fails when the text holds no header boundaries at all, which signals
// the caller to use the character fallback instead of raising.
func trySplitByHeaders(text string) ([]section, error) {
	lines := strings.Split(text, "\n")

	var sections []section
	var current section
	var body []string
	sawHeader := false

	flush := func() {
		current.text = strings.TrimSpace(strings.Join(body, "\n"))
		sections = append(sections, current)
		body = body[:0]
	}

	for _, line := range lines {
		level, title := headerLine(line)
		if level == 0 {
			body = append(body, line)
			continue
		}

		sawHeader = true
		flush()

		// Entering a header resets all deeper levels.
		headers := current.headers
		headers[level-1] = title
		for i := level; i < len(headers); i++ {
			headers[i] = ""
		}
		current = section{headers: headers}
	}
	flush()

	if !sawHeader {
		return nil, errNoHeaders
	}
	return sections, nil
}

// headerLine reports the heading level (1-3) and title of a markdown header
// line, or level 0 for a regular line. Deeper headings (####+) stay in the
// body text of their enclosing section.
func headerLine(line string) (int, string) {
	trimmed := strings.TrimSpace(line)
	for level := 3; level >= 1; level-- {
		prefix := strings.Repeat("#", level) + " "
		if strings.HasPrefix(trimmed, prefix) {
			return level, strings.TrimSpace(strings.TrimPrefix(trimmed, prefix))
		}
	}
	return 0, ""
}
