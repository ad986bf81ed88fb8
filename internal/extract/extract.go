// Package extract turns uploaded statement files into raw text or page
// images ready for the AI extraction service. PDF pages are rasterized to
// images for recognition fidelity; spreadsheets and plain text decode
// directly; image files pass through untouched.
package extract

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/sync/errgroup"

	"statement-agent/internal/core"
)

// TextSeparator joins the text of independently extracted files in input
// order.
const TextSeparator = "\n\n----------\n\n"

// File is one uploaded statement document.
type File struct {
	Name      string
	MediaType string // declared by the client; extension is the fallback
	Data      []byte
}

// Extraction is the result for a single file: decoded text, page images,
// or both (never neither on success).
type Extraction struct {
	Text   string
	Images []core.Image
}

// ErrUnsupported marks files whose media type has no extraction path.
type ErrUnsupported struct {
	Name      string
	MediaType string
}

func (e *ErrUnsupported) Error() string {
	return fmt.Sprintf("unsupported file type %q for %s", e.MediaType, e.Name)
}

// ExtractFile dispatches on the file's media type (extension as fallback).
func ExtractFile(ctx context.Context, f File) (Extraction, error) {
	switch kindOf(f) {
	case kindPDF:
		return extractPDF(ctx, f)
	case kindImage:
		return Extraction{Images: []core.Image{{MimeType: imageMime(f), Data: f.Data}}}, nil
	case kindText:
		return extractPlainText(f)
	case kindXLSX:
		return extractXLSX(f)
	case kindXLS:
		return extractXLS(f)
	case kindDOCX:
		return extractDOCX(f)
	default:
		return Extraction{}, &ErrUnsupported{Name: f.Name, MediaType: f.MediaType}
	}
}

// ExtractAll extracts every file concurrently, one task per file, and
// returns results in input order. No state is shared between tasks. Any
// failure cancels the remaining extractions and aborts the whole batch.
func ExtractAll(ctx context.Context, files []File) ([]Extraction, error) {
	results := make([]Extraction, len(files))
	g, ctx := errgroup.WithContext(ctx)
	for i, f := range files {
		g.Go(func() error {
			ex, err := ExtractFile(ctx, f)
			if err != nil {
				return fmt.Errorf("%s: %w", f.Name, err)
			}
			results[i] = ex
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// Combine merges per-file extractions in input order: native text parts
// joined with TextSeparator, images collected for OCR afterwards.
func Combine(results []Extraction) (string, []core.Image) {
	var parts []string
	var images []core.Image
	for _, r := range results {
		if t := strings.TrimSpace(r.Text); t != "" {
			parts = append(parts, t)
		}
		images = append(images, r.Images...)
	}
	return strings.Join(parts, TextSeparator), images
}

type fileKind int

const (
	kindUnknown fileKind = iota
	kindPDF
	kindImage
	kindText
	kindXLSX
	kindXLS
	kindDOCX
)

func kindOf(f File) fileKind {
	mt := strings.ToLower(strings.TrimSpace(f.MediaType))
	if i := strings.IndexByte(mt, ';'); i >= 0 {
		mt = strings.TrimSpace(mt[:i])
	}
	switch mt {
	case "application/pdf":
		return kindPDF
	case "image/png", "image/jpeg", "image/webp":
		return kindImage
	case "text/plain", "text/csv", "text/tab-separated-values":
		return kindText
	case "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet":
		return kindXLSX
	case "application/vnd.ms-excel":
		return kindXLS
	case "application/vnd.openxmlformats-officedocument.wordprocessingml.document":
		return kindDOCX
	}

	switch strings.ToLower(filepath.Ext(f.Name)) {
	case ".pdf":
		return kindPDF
	case ".png", ".jpg", ".jpeg", ".webp":
		return kindImage
	case ".txt", ".csv", ".tsv", ".md":
		return kindText
	case ".xlsx":
		return kindXLSX
	case ".xls":
		return kindXLS
	case ".docx":
		return kindDOCX
	}
	return kindUnknown
}

func imageMime(f File) string {
	mt := strings.ToLower(strings.TrimSpace(f.MediaType))
	switch mt {
	case "image/png", "image/jpeg", "image/webp":
		return mt
	}
	switch strings.ToLower(filepath.Ext(f.Name)) {
	case ".png":
		return "image/png"
	case ".webp":
		return "image/webp"
	default:
		return "image/jpeg"
	}
}

func extractPlainText(f File) (Extraction, error) {
	if !utf8.Valid(f.Data) {
		return Extraction{}, fmt.Errorf("%s is not valid UTF-8 text", f.Name)
	}
	text := strings.TrimSpace(string(f.Data))
	if text == "" {
		return Extraction{}, fmt.Errorf("%s contains no text", f.Name)
	}
	return Extraction{Text: text}, nil
}

// readableQuality returns the ratio of letters, digits, whitespace and
// common punctuation to total runes. Vietnamese statements are full of
// diacritics, so any unicode letter counts as readable; control bytes and
// replacement runes from broken font encodings drag the ratio down.
func readableQuality(text string) float64 {
	total, readable := 0, 0
	for _, r := range text {
		total++
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) ||
			unicode.IsPunct(r) || r == '+' || r == '=' || r == '$' || r == '€' || r == '₫' {
			readable++
		}
	}
	if total == 0 {
		return 0
	}
	return float64(readable) / float64(total)
}

// isReadableText guards against garbage from identity-encoded PDF fonts:
// require some minimum length and a high readable-rune ratio.
func isReadableText(text string) bool {
	return len(text) > 50 && readableQuality(text) > 0.6
}
