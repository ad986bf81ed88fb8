package export

import (
	"bytes"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"statement-agent/internal/core"
)

func d(s string) decimal.Decimal {
	v, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return v
}

func exportLedger() core.Ledger {
	return core.Ledger{
		AccountInfo: core.AccountInfo{
			AccountName:   "PHAM VAN D",
			AccountNumber: "19036789",
			BankName:      "BIDV",
		},
		Transactions: []core.Transaction{
			{Date: "01/04/2025", TransactionCode: "FT2501", Description: `chuyen "luong"`, Debit: d("5000000")},
			{Date: "02/04/2025", Description: "phi dich vu", Credit: d("0"), Fee: d("11000"), VAT: d("1100")},
		},
		OpeningBalance: d("200000"),
		EndingBalance:  d("5187900"),
	}
}

func TestBuild(t *testing.T) {
	table := Build(exportLedger())

	if len(table.Rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(table.Rows))
	}
	// Running balance per row.
	if table.Rows[0][7] != "5200000" {
		t.Errorf("row 0 balance = %q", table.Rows[0][7])
	}
	if table.Rows[1][7] != "5187900" {
		t.Errorf("row 1 balance = %q", table.Rows[1][7])
	}
	// Totals row carries the column sums and the final balance.
	if table.Totals[3] != "5000000" || table.Totals[5] != "11000" || table.Totals[6] != "1100" {
		t.Errorf("totals = %v", table.Totals)
	}
	if table.Totals[7] != "5187900" {
		t.Errorf("final balance = %q", table.Totals[7])
	}
	if table.Opening[7] != "200000" {
		t.Errorf("opening = %q", table.Opening[7])
	}
}

func TestRenderCSV(t *testing.T) {
	data, ct, err := Render(exportLedger(), FormatCSV)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.HasPrefix(ct, "text/csv") {
		t.Errorf("content type = %q", ct)
	}

	lines := strings.Split(strings.TrimRight(string(data), "\r\n"), "\r\n")
	// header + opening + 2 transactions + totals
	if len(lines) != 5 {
		t.Fatalf("lines = %d, want 5", len(lines))
	}
	if lines[0] != `"Ngày","Mã GD","Diễn giải","Tiền vào","Tiền ra","Phí","VAT","Số dư"` {
		t.Errorf("header = %s", lines[0])
	}
	if !strings.Contains(lines[1], "Số dư đầu kỳ") {
		t.Errorf("opening row = %s", lines[1])
	}
	// Inner quotes are doubled.
	if !strings.Contains(lines[2], `"chuyen ""luong"""`) {
		t.Errorf("quote escaping: %s", lines[2])
	}
	if !strings.Contains(lines[4], "Tổng cộng") {
		t.Errorf("totals row = %s", lines[4])
	}
}

func TestRenderTSV(t *testing.T) {
	ledger := exportLedger()
	ledger.Transactions[0].Description = "has\ttab and\nnewline"
	data, _, err := Render(ledger, FormatTSV)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	if len(lines) != 5 {
		t.Fatalf("lines = %d, want 5", len(lines))
	}
	if got := strings.Count(lines[2], "\t"); got != 7 {
		t.Errorf("row has %d tabs, want 7 (field content must not add tabs)", got)
	}
}

func TestRenderHTML(t *testing.T) {
	data, _, err := Render(exportLedger(), FormatHTML)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	html := string(data)
	for _, want := range []string{"<table", "PHAM VAN D", "19036789", "Số dư đầu kỳ", "Tổng cộng", "5187900"} {
		if !strings.Contains(html, want) {
			t.Errorf("html missing %q", want)
		}
	}
	// Template escaping must keep markup out of cell content.
	ledger := exportLedger()
	ledger.Transactions[0].Description = "<script>alert(1)</script>"
	data, _, _ = Render(ledger, FormatHTML)
	if strings.Contains(string(data), "<script>alert") {
		t.Error("description was not escaped")
	}
}

func TestRenderXLSX(t *testing.T) {
	data, ct, err := Render(exportLedger(), FormatXLSX)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if ct != "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet" {
		t.Errorf("content type = %q", ct)
	}
	// XLSX is a zip container.
	if !bytes.HasPrefix(data, []byte{'P', 'K'}) {
		t.Error("payload is not a zip archive")
	}
}

func TestParseFormat(t *testing.T) {
	for _, ok := range []string{"csv", "html", "tsv", "xlsx"} {
		if _, err := ParseFormat(ok); err != nil {
			t.Errorf("ParseFormat(%q): %v", ok, err)
		}
	}
	if _, err := ParseFormat("pdf"); err == nil {
		t.Error("expected error for unsupported format")
	}
}
