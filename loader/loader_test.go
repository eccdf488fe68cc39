package loader

import (
	"archive/zip"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestIsAllowed(t *testing.T) {
	t.Run("allowed extensions", func(t *testing.T) {
		for _, path := range []string{"a.pdf", "b.docx", "c.txt", "d.csv", "e.xlsx"} {
			assert.True(t, IsAllowed(path), path)
		}
	})

	t.Run("case-insensitive", func(t *testing.T) {
		assert.True(t, IsAllowed("REPORT.PDF"))
		assert.True(t, IsAllowed("notes.TxT"))
	})

	t.Run("rejected extensions", func(t *testing.T) {
		for _, path := range []string{"a.md", "b.exe", "c.png", "noext", "d.txt.gz"} {
			assert.False(t, IsAllowed(path), path)
		}
	})
}

func TestLoad_UnsupportedFormat(t *testing.T) {
	_, err := Load(context.Background(), "/tmp/evil.exe")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestLoad_Text(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("hello retrieval world"), 0644))

	docs, err := Load(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "hello retrieval world", docs[0].Content)
	assert.Equal(t, path, docs[0].Metadata["source"])
}

func TestLoad_CSV(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "table.csv")
	require.NoError(t, os.WriteFile(path, []byte("name,city\nada,london\n"), 0644))

	docs, err := Load(context.Background(), path)
	require.NoError(t, err)
	require.NotEmpty(t, docs)
	assert.Contains(t, docs[0].Content, "ada")
	assert.Equal(t, path, docs[0].Metadata["source"])
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(context.Background(), "/nonexistent/nowhere.txt")
	assert.ErrorIs(t, err, ErrLoad)
}

func TestLoad_WordDocument(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "memo.docx")
	writeMinimalDocx(t, path, []string{"First paragraph.", "Second paragraph."})

	docs, err := Load(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "First paragraph.\nSecond paragraph.", docs[0].Content)
	assert.Equal(t, path, docs[0].Metadata["source"])
}

func TestLoad_WordDocumentCorrupt(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "broken.docx")
	require.NoError(t, os.WriteFile(path, []byte("not a zip archive"), 0644))

	_, err := Load(context.Background(), path)
	assert.ErrorIs(t, err, ErrLoad)
}

func TestLoad_Spreadsheet(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "inventory.xlsx")

	f := excelize.NewFile()
	require.NoError(t, f.SetCellValue("Sheet1", "A1", "item"))
	require.NoError(t, f.SetCellValue("Sheet1", "B1", "count"))
	require.NoError(t, f.SetCellValue("Sheet1", "A2", "widget"))
	require.NoError(t, f.SetCellValue("Sheet1", "B2", 42))
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	docs, err := Load(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Contains(t, docs[0].Content, "item, count")
	assert.Contains(t, docs[0].Content, "widget, 42")
	assert.Equal(t, "Sheet1", docs[0].Metadata["sheet"])
}

// writeMinimalDocx builds the smallest DOCX archive the loader understands:
// a ZIP container with a word/document.xml holding one run per paragraph.
func writeMinimalDocx(t *testing.T, path string, paragraphs []string) {
	t.Helper()

	out, err := os.Create(path)
	require.NoError(t, err)
	defer out.Close()

	zw := zip.NewWriter(out)
	w, err := zw.Create("word/document.xml")
	require.NoError(t, err)

	body := ""
	for _, p := range paragraphs {
		body += "<w:p><w:r><w:t>" + p + "</w:t></w:r></w:p>"
	}
	doc := `<?xml version="1.0" encoding="UTF-8"?>` +
		`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">` +
		`<w:body>` + body + `</w:body></w:document>`

	_, err = w.Write([]byte(doc))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
}
