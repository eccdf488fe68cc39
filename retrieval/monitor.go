package retrieval

import "github.com/harborai/docqa/core"

// RetrieveMonitor provides hooks to observe the retrieval process.
// Implement this interface to track intermediate steps and results.
type RetrieveMonitor interface {
	Start(query string)
	AfterVectorSearch(results []*core.RetrievedChunk)
	KeywordHit(chunk *core.Chunk)
	Finish(chunks []*core.Chunk)
}

// noopMonitor is a no-op implementation of RetrieveMonitor
type noopMonitor struct{}

var _ RetrieveMonitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ string)                            {}
func (n *noopMonitor) AfterVectorSearch(_ []*core.RetrievedChunk) {}
func (n *noopMonitor) KeywordHit(_ *core.Chunk)                  {}
func (n *noopMonitor) Finish(_ []*core.Chunk)                    {}
