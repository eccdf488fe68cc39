package chunker

import (
	"github.com/harborai/docqa/core"
)

// Strategy selects how documents are split into chunks.
type Strategy string

const (
	// StrategyAuto picks header splitting for markdown variants and
	// character splitting for everything else.
	StrategyAuto Strategy = "auto"
	// StrategyHeader forces header-based splitting.
	StrategyHeader Strategy = "header"
	// StrategyCharacter forces character-window splitting.
	StrategyCharacter Strategy = "character"
)

// Size parameters shared by both strategies. Overlap exists so that a fact
// split across a chunk boundary is still retrievable from at least one chunk.
const (
	DefaultChunkSize    = 1000
	DefaultChunkOverlap = 100
)

// markdownExtensions are the extensions treated as markdown under StrategyAuto.
var markdownExtensions = map[string]bool{
	".md":       true,
	".markdown": true,
}

// Splitter turns loaded documents into chunks. Splitting never alters text
// content: chunks concatenated with overlap removed reconstruct the source,
// up to structural separator stripping in header mode.
type Splitter interface {
	Split(docs []core.Document) ([]*core.Chunk, error)
}

// Select returns the splitter for a file extension under the declared
// strategy. Header splitting is used when declared is StrategyHeader, or
// when declared is StrategyAuto and the extension is a markdown variant;
// character-window splitting otherwise.
func Select(ext string, declared Strategy) Splitter {
	if declared == StrategyHeader || (declared == StrategyAuto && markdownExtensions[ext]) {
		return NewHeaderSplitter()
	}
	return NewCharacterSplitter()
}
