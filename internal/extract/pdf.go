package extract

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"

	"statement-agent/internal/core"
)

// rasterDPI is the pdftoppm render resolution. 300 DPI keeps small-print
// transaction tables legible to the vision model.
const rasterDPI = "300"

// extractPDF prefers page-by-page rasterization (one PNG per page) so the
// vision OCR sees the statement exactly as printed. When poppler-utils is
// not installed, it falls back to the text layer via ledongthuc/pdf,
// guarded by a readability check so identity-encoded fonts never produce
// garbage text.
func extractPDF(ctx context.Context, f File) (Extraction, error) {
	images, rasterErr := rasterizePDF(ctx, f.Data)
	if rasterErr == nil {
		return Extraction{Images: images}, nil
	}

	text, textErr := pdfText(f.Data)
	if textErr == nil && isReadableText(text) {
		return Extraction{Text: text}, nil
	}

	if textErr == nil {
		textErr = fmt.Errorf("text layer is unreadable (likely a scanned or custom-font PDF)")
	}
	return Extraction{}, fmt.Errorf("cannot extract PDF: rasterize: %v; text: %v", rasterErr, textErr)
}

// rasterizePDF shells out to pdftoppm (poppler-utils) and returns the
// rendered pages in order.
func rasterizePDF(ctx context.Context, data []byte) ([]core.Image, error) {
	if _, err := exec.LookPath("pdftoppm"); err != nil {
		return nil, fmt.Errorf("pdftoppm not available (install poppler-utils): %w", err)
	}

	tmpDir, err := os.MkdirTemp("", "statement-pages-*")
	if err != nil {
		return nil, fmt.Errorf("create temp dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	pdfPath := filepath.Join(tmpDir, "input.pdf")
	if err := os.WriteFile(pdfPath, data, 0o600); err != nil {
		return nil, fmt.Errorf("write temp pdf: %w", err)
	}

	prefix := filepath.Join(tmpDir, "page")
	cmd := exec.CommandContext(ctx, "pdftoppm", "-r", rasterDPI, "-png", pdfPath, prefix)
	if out, err := cmd.CombinedOutput(); err != nil {
		return nil, fmt.Errorf("pdftoppm: %v (output: %s)", err, strings.TrimSpace(string(out)))
	}

	entries, err := os.ReadDir(tmpDir)
	if err != nil {
		return nil, fmt.Errorf("read temp dir: %w", err)
	}
	var names []string
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".png") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	if len(names) == 0 {
		return nil, fmt.Errorf("pdftoppm produced no page images")
	}

	images := make([]core.Image, 0, len(names))
	for _, name := range names {
		b, err := os.ReadFile(filepath.Join(tmpDir, name))
		if err != nil {
			return nil, fmt.Errorf("read page image: %w", err)
		}
		images = append(images, core.Image{MimeType: "image/png", Data: b})
	}
	return images, nil
}

// pdfText extracts the text layer row by row. The library panics on some
// malformed files, so the whole call is recover-guarded.
func pdfText(data []byte) (text string, err error) {
	defer func() {
		if rv := recover(); rv != nil {
			err = fmt.Errorf("pdf library crashed: %v", rv)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}
	numPages := r.NumPage()
	if numPages == 0 {
		return "", fmt.Errorf("pdf has no pages")
	}

	var pages []string
	for i := 1; i <= numPages; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		rows, err := page.GetTextByRow()
		if err != nil {
			continue
		}
		var lines []string
		for _, row := range rows {
			var parts []string
			for _, word := range row.Content {
				parts = append(parts, word.S)
			}
			if line := strings.TrimSpace(strings.Join(parts, " ")); line != "" {
				lines = append(lines, line)
			}
		}
		pages = append(pages, strings.Join(lines, "\n"))
	}
	return strings.Join(pages, "\n\n"), nil
}
