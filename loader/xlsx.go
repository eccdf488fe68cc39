package loader

import (
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/harborai/docqa/core"
)

// loadSpreadsheet reads an .xlsx workbook, producing one document per sheet.
// Rows are rendered as comma-separated lines so they chunk and retrieve the
// same way CSV content does.
func loadSpreadsheet(path string) ([]core.Document, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var docs []core.Document
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return nil, err
		}

		var sb strings.Builder
		for i, row := range rows {
			if i > 0 {
				sb.WriteString("\n")
			}
			sb.WriteString(strings.Join(row, ", "))
		}

		content := strings.TrimSpace(sb.String())
		if content == "" {
			continue
		}

		docs = append(docs, core.Document{
			Content: content,
			Metadata: map[string]string{
				"source": path,
				"sheet":  sheet,
			},
		})
	}

	return docs, nil
}
