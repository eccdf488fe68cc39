package chat

import (
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/harborai/docqa/core"
)

const systemPrompt = `You are a helpful assistant that answers questions using only the provided context.
If the context does not contain the answer, say so instead of guessing.
Format your answer in Markdown.`

const noDocumentsAnswer = "You have no uploaded documents yet. Upload a document and ask again."

const noContextAnswer = "I could not find anything relevant to that question in your documents."

// uploadPrefix matches the uuid prefix prepended to stored filenames.
var uploadPrefix = regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}_`)

// buildPrompt assembles the completion prompt from the question and the
// retrieved chunks.
func buildPrompt(question string, chunks []*core.Chunk) string {
	var b strings.Builder
	b.WriteString(systemPrompt)
	b.WriteString("\n\nContext:\n")
	for _, chunk := range chunks {
		b.WriteString(chunk.Content)
		b.WriteString("\n---\n")
	}
	b.WriteString("\nQuestion: ")
	b.WriteString(question)
	b.WriteString("\nAnswer:")
	return b.String()
}

// attributeSources names the files the answer most likely drew from,
// ordered by how many retrieved chunks each contributed. Stored upload
// prefixes are stripped so callers see the original filename.
func attributeSources(chunks []*core.Chunk) []string {
	counts := map[string]int{}
	for _, chunk := range chunks {
		source := chunk.Metadata[core.FilenameKey]
		if source == "" {
			source = filepath.Base(chunk.Metadata[core.SourceFileKey])
		}
		if source == "" || source == "." {
			continue
		}
		counts[uploadPrefix.ReplaceAllString(source, "")]++
	}

	sources := make([]string, 0, len(counts))
	for source := range counts {
		sources = append(sources, source)
	}
	sort.Slice(sources, func(i, j int) bool {
		if counts[sources[i]] != counts[sources[j]] {
			return counts[sources[i]] > counts[sources[j]]
		}
		return sources[i] < sources[j]
	})

	return sources
}
