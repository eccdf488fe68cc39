package mock

import (
	"context"
	"hash/fnv"
)

// Vector width matching the nomic-embed-text model the service defaults
// to. Tests comparing vectors care only that the width is uniform across
// the index.
const mockVectorDim = 768

// MockEmbedder is a test double for ai.Embedder. With no overrides it
// embeds deterministically: the same text always maps to the same unit
// vector, so an exact-text query ranks its chunk first under cosine
// similarity. Set the function fields to inject failures or fixed vectors.
type MockEmbedder struct {
	// EmbedTextFunc overrides EmbedText when set.
	EmbedTextFunc func(ctx context.Context, text string) ([]float32, error)

	// EmbedTextsFunc overrides EmbedTexts when set.
	EmbedTextsFunc func(ctx context.Context, texts []string) ([][]float32, error)

	callCount int
}

// NewMockEmbedder returns a mock embedder with the default deterministic
// behavior. The concrete type is returned so tests can reach the override
// fields and the call counter.
func NewMockEmbedder() *MockEmbedder {
	return &MockEmbedder{}
}

// EmbedText returns the deterministic vector for text, or defers to
// EmbedTextFunc when set.
func (m *MockEmbedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	m.callCount++

	if m.EmbedTextFunc != nil {
		return m.EmbedTextFunc(ctx, text)
	}
	return textVector(text), nil
}

// EmbedTexts embeds each text independently, so a batch and the equivalent
// sequence of single calls produce the same vectors.
func (m *MockEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	m.callCount++

	if m.EmbedTextsFunc != nil {
		return m.EmbedTextsFunc(ctx, texts)
	}

	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		vectors[i] = textVector(text)
	}
	return vectors, nil
}

// CallCount returns how many times either embed method was invoked.
func (m *MockEmbedder) CallCount() int {
	return m.callCount
}

// Reset clears the call count and any injected overrides.
func (m *MockEmbedder) Reset() {
	m.callCount = 0
	m.EmbedTextFunc = nil
	m.EmbedTextsFunc = nil
}

// textVector derives a pseudo-random unit vector from the FNV hash of the
// text. No semantic structure, only determinism.
func textVector(text string) []float32 {
	h := fnv.New32a()
	h.Write([]byte(text))
	state := h.Sum32()

	vector := make([]float32, mockVectorDim)
	for i := range vector {
		state = state*1664525 + 1013904223
		vector[i] = float32(state%1000) / 1000.0
	}

	var sumSquares float32
	for _, v := range vector {
		sumSquares += v * v
	}
	if sumSquares > 0 {
		inv := float32(1.0) / sumSquares
		for i := range vector {
			vector[i] *= inv
		}
	}
	return vector
}
