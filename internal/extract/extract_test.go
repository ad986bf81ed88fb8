package extract

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"statement-agent/internal/core"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name      string
		mediaType string
		fileName  string
		want      fileKind
	}{
		{"pdf by mime", "application/pdf", "x.bin", kindPDF},
		{"pdf by extension", "", "statement.PDF", kindPDF},
		{"mime with parameters", "text/plain; charset=utf-8", "notes", kindText},
		{"csv", "text/csv", "x.csv", kindText},
		{"jpeg", "image/jpeg", "scan.jpg", kindImage},
		{"webp by extension", "", "photo.webp", kindImage},
		{"xlsx mime", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", "x", kindXLSX},
		{"xls by extension", "", "old.xls", kindXLS},
		{"docx by extension", "", "doc.docx", kindDOCX},
		{"unknown", "application/octet-stream", "blob.bin", kindUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := kindOf(File{Name: tt.fileName, MediaType: tt.mediaType})
			if got != tt.want {
				t.Errorf("kindOf = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestExtractFile_PlainText(t *testing.T) {
	ex, err := ExtractFile(context.Background(), File{
		Name:      "statement.txt",
		MediaType: "text/plain",
		Data:      []byte("  01/02/2025  NAP TIEN  500000  \n"),
	})
	if err != nil {
		t.Fatalf("ExtractFile: %v", err)
	}
	if ex.Text != "01/02/2025  NAP TIEN  500000" {
		t.Errorf("text = %q", ex.Text)
	}
	if len(ex.Images) != 0 {
		t.Error("plain text must not yield images")
	}
}

func TestExtractFile_InvalidUTF8(t *testing.T) {
	_, err := ExtractFile(context.Background(), File{
		Name:      "x.txt",
		MediaType: "text/plain",
		Data:      []byte{0xff, 0xfe, 0x00},
	})
	if err == nil {
		t.Fatal("expected error for invalid UTF-8")
	}
}

func TestExtractFile_ImagePassthrough(t *testing.T) {
	data := []byte{0x89, 'P', 'N', 'G'}
	ex, err := ExtractFile(context.Background(), File{Name: "page.png", MediaType: "image/png", Data: data})
	if err != nil {
		t.Fatalf("ExtractFile: %v", err)
	}
	if len(ex.Images) != 1 || ex.Images[0].MimeType != "image/png" || !bytes.Equal(ex.Images[0].Data, data) {
		t.Errorf("image passthrough mangled the file: %+v", ex)
	}
}

func TestExtractFile_Unsupported(t *testing.T) {
	_, err := ExtractFile(context.Background(), File{Name: "a.exe", MediaType: "application/x-msdownload"})
	var unsupported *ErrUnsupported
	if !errors.As(err, &unsupported) {
		t.Fatalf("expected ErrUnsupported, got %v", err)
	}
}

func TestExtractAll_OrderPreserved(t *testing.T) {
	files := []File{
		{Name: "b.txt", MediaType: "text/plain", Data: []byte("second file content goes here")},
		{Name: "a.txt", MediaType: "text/plain", Data: []byte("first by position, despite the name")},
	}
	results, err := ExtractAll(context.Background(), files)
	if err != nil {
		t.Fatalf("ExtractAll: %v", err)
	}
	if !strings.HasPrefix(results[0].Text, "second") {
		t.Error("results are not in input order")
	}
}

func TestExtractAll_FailureAborts(t *testing.T) {
	files := []File{
		{Name: "ok.txt", MediaType: "text/plain", Data: []byte("fine")},
		{Name: "bad.bin", MediaType: "application/octet-stream"},
	}
	if _, err := ExtractAll(context.Background(), files); err == nil {
		t.Fatal("expected batch failure")
	}
}

func TestCombine(t *testing.T) {
	text, images := Combine([]Extraction{
		{Text: "part one"},
		{Images: []core.Image{{MimeType: "image/jpeg", Data: []byte{0xff, 0xd8}}}},
		{Text: "part two"},
	})
	if text != "part one"+TextSeparator+"part two" {
		t.Errorf("combined text = %q", text)
	}
	if len(images) != 1 || images[0].MimeType != "image/jpeg" {
		t.Errorf("images not collected: %+v", images)
	}
}

func TestExtractDOCX(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("word/document.xml")
	if err != nil {
		t.Fatal(err)
	}
	_, _ = w.Write([]byte(`<?xml version="1.0"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
 <w:body>
  <w:p><w:r><w:t>SAO KE TAI KHOAN</w:t></w:r></w:p>
  <w:p><w:r><w:t>01/02/2025</w:t><w:tab/><w:t>500000</w:t></w:r></w:p>
 </w:body>
</w:document>`))
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}

	ex, err := extractDOCX(File{Name: "x.docx", Data: buf.Bytes()})
	if err != nil {
		t.Fatalf("extractDOCX: %v", err)
	}
	want := "SAO KE TAI KHOAN\n01/02/2025\t500000"
	if ex.Text != want {
		t.Errorf("text = %q, want %q", ex.Text, want)
	}
}

func TestReadableQuality(t *testing.T) {
	if q := readableQuality("Số dư đầu kỳ: 1.000.000 VND"); q < 0.95 {
		t.Errorf("vietnamese text scored %f, want near 1", q)
	}
	garbage := strings.Repeat("\x01\x02�", 50)
	if isReadableText(garbage) {
		t.Error("control-byte garbage classified as readable")
	}
}
