package extract

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"
)

// maxXLSRows caps how much of a legacy workbook is read; bank statements
// never come close.
const maxXLSRows = 50000

// extractXLSX flattens every sheet into tab-separated rows, sheets in
// workbook order with the sheet name as a heading.
func extractXLSX(f File) (Extraction, error) {
	wb, err := excelize.OpenReader(bytes.NewReader(f.Data))
	if err != nil {
		return Extraction{}, fmt.Errorf("open xlsx: %w", err)
	}
	defer wb.Close()

	var sb strings.Builder
	sheets := wb.GetSheetList()
	for i, sheet := range sheets {
		rows, err := wb.GetRows(sheet)
		if err != nil {
			return Extraction{}, fmt.Errorf("read sheet %q: %w", sheet, err)
		}
		if i > 0 {
			sb.WriteString("\n\n")
		}
		if len(sheets) > 1 {
			sb.WriteString(sheet + "\n")
		}
		writeRows(&sb, rows)
	}

	text := strings.TrimSpace(sb.String())
	if text == "" {
		return Extraction{}, fmt.Errorf("%s contains no cell data", f.Name)
	}
	return Extraction{Text: text}, nil
}

// extractXLS handles the legacy BIFF format.
func extractXLS(f File) (Extraction, error) {
	wb, err := xls.OpenReader(bytes.NewReader(f.Data), "utf-8")
	if err != nil {
		return Extraction{}, fmt.Errorf("open xls: %w", err)
	}

	rows := wb.ReadAllCells(maxXLSRows)
	var sb strings.Builder
	writeRows(&sb, rows)

	text := strings.TrimSpace(sb.String())
	if text == "" {
		return Extraction{}, fmt.Errorf("%s contains no cell data", f.Name)
	}
	return Extraction{Text: text}, nil
}

func writeRows(sb *strings.Builder, rows [][]string) {
	for _, row := range rows {
		line := strings.TrimRight(strings.Join(row, "\t"), "\t ")
		if strings.TrimSpace(line) == "" {
			continue
		}
		sb.WriteString(line)
		sb.WriteByte('\n')
	}
}
