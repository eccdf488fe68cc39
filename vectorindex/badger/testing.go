package badger

import (
	"github.com/harborai/docqa/ai"
)

// NewMemoryIndex creates an in-memory index for testing. Nothing is
// persisted; closing discards all data.
func NewMemoryIndex(embedder ai.Embedder) (*Index, error) {
	return Open("", true, embedder)
}
