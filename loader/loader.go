package loader

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/tmc/langchaingo/documentloaders"
	"github.com/tmc/langchaingo/schema"

	"github.com/harborai/docqa/core"
)

// AllowedExtensions is the fixed set of ingestible file extensions.
// The upload boundary and the loader must reject the same set identically,
// so both check against this single constant.
var AllowedExtensions = map[string]bool{
	".pdf":  true,
	".docx": true,
	".txt":  true,
	".csv":  true,
	".xlsx": true,
}

// Ext returns the lowercased extension of path, including the dot.
func Ext(path string) string {
	return strings.ToLower(filepath.Ext(path))
}

// IsAllowed reports whether the file's extension is in the allowed set.
// Matching is case-insensitive.
func IsAllowed(path string) bool {
	return AllowedExtensions[Ext(path)]
}

// Load reads the file at path and returns its contents as a sequence of
// documents with source metadata attached. Dispatch is strictly on file
// extension. The extension check here is deliberately redundant with the
// upload boundary's fast-reject: Load can be reached directly, without
// going through the upload flow.
func Load(ctx context.Context, path string) ([]core.Document, error) {
	ext := Ext(path)
	logger := slog.Default().With("component", "loader")
	logger.Debug("loading document", "path", path, "ext", ext)

	if !AllowedExtensions[ext] {
		logger.Error("unsupported file extension", "ext", ext)
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, ext)
	}

	var docs []core.Document
	var err error

	switch ext {
	case ".docx":
		docs, err = loadWordDocument(path)
	case ".xlsx":
		docs, err = loadSpreadsheet(path)
	default:
		docs, err = loadWithLangchain(ctx, path, ext)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrLoad, path, err)
	}

	logger.Info("loaded documents", "path", path, "count", len(docs))
	return docs, nil
}

// loadWithLangchain reads pdf, txt and csv files through the langchaingo
// document loaders. PDF files produce one document per page.
func loadWithLangchain(ctx context.Context, path, ext string) ([]core.Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var dl documentloaders.Loader
	switch ext {
	case ".pdf":
		info, statErr := f.Stat()
		if statErr != nil {
			return nil, statErr
		}
		dl = documentloaders.NewPDF(f, info.Size())
	case ".csv":
		dl = documentloaders.NewCSV(f)
	default:
		dl = documentloaders.NewText(f)
	}

	raw, err := dl.Load(ctx)
	if err != nil {
		return nil, err
	}
	return fromSchemaDocs(raw, path), nil
}

// fromSchemaDocs converts langchaingo documents into core documents,
// string-coercing metadata values and attaching the source path.
func fromSchemaDocs(raw []schema.Document, path string) []core.Document {
	docs := make([]core.Document, 0, len(raw))
	for _, d := range raw {
		meta := make(map[string]string, len(d.Metadata)+1)
		for k, v := range d.Metadata {
			meta[k] = fmt.Sprint(v)
		}
		meta["source"] = path
		docs = append(docs, core.Document{
			Content:  d.PageContent,
			Metadata: meta,
		})
	}
	return docs
}
