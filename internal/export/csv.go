package export

import (
	"strings"
)

// renderCSV writes every field quoted, comma-delimited, CRLF-terminated so
// spreadsheet apps open the file without an import dialog.
func renderCSV(t Table) []byte {
	var sb strings.Builder
	for _, row := range t.allRows() {
		for i, field := range row {
			if i > 0 {
				sb.WriteByte(',')
			}
			sb.WriteByte('"')
			sb.WriteString(strings.ReplaceAll(field, `"`, `""`))
			sb.WriteByte('"')
		}
		sb.WriteString("\r\n")
	}
	return []byte(sb.String())
}

// renderTSV is the clipboard payload: tab-separated, no quoting, tabs and
// newlines inside fields collapsed to spaces.
func renderTSV(t Table) []byte {
	clean := func(s string) string {
		s = strings.ReplaceAll(s, "\t", " ")
		s = strings.ReplaceAll(s, "\n", " ")
		return s
	}
	var sb strings.Builder
	for _, row := range t.allRows() {
		for i, field := range row {
			if i > 0 {
				sb.WriteByte('\t')
			}
			sb.WriteString(clean(field))
		}
		sb.WriteByte('\n')
	}
	return []byte(sb.String())
}
