package extract

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

// extractDOCX pulls the paragraph text out of word/document.xml. A .docx
// file is a zip container; the document body is WordprocessingML where
// <w:t> elements carry the visible text and <w:p> closes a paragraph.
func extractDOCX(f File) (Extraction, error) {
	zr, err := zip.NewReader(bytes.NewReader(f.Data), int64(len(f.Data)))
	if err != nil {
		return Extraction{}, fmt.Errorf("open docx: %w", err)
	}

	var doc *zip.File
	for _, zf := range zr.File {
		if zf.Name == "word/document.xml" {
			doc = zf
			break
		}
	}
	if doc == nil {
		return Extraction{}, fmt.Errorf("%s has no word/document.xml", f.Name)
	}

	rc, err := doc.Open()
	if err != nil {
		return Extraction{}, fmt.Errorf("read document.xml: %w", err)
	}
	defer rc.Close()

	text, err := wordXMLText(rc)
	if err != nil {
		return Extraction{}, fmt.Errorf("parse document.xml: %w", err)
	}
	if strings.TrimSpace(text) == "" {
		return Extraction{}, fmt.Errorf("%s contains no text", f.Name)
	}
	return Extraction{Text: strings.TrimSpace(text)}, nil
}

func wordXMLText(r io.Reader) (string, error) {
	dec := xml.NewDecoder(r)
	var sb strings.Builder
	inText := false
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "t":
				inText = true
			case "tab":
				sb.WriteByte('\t')
			case "br":
				sb.WriteByte('\n')
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				sb.WriteByte('\n')
			}
		case xml.CharData:
			if inText {
				sb.Write(t)
			}
		}
	}
	return sb.String(), nil
}
