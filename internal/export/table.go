// Package export serializes a ledger into the download formats: CSV,
// a standalone HTML document, a tab-separated clipboard payload, and XLSX.
// Every format renders the same rows: header, opening balance, one row
// per transaction with its running balance, and a totals row.
package export

import (
	"fmt"

	"github.com/shopspring/decimal"

	"statement-agent/internal/core"
)

// Format selects an output serialization.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatHTML Format = "html"
	FormatTSV  Format = "tsv"
	FormatXLSX Format = "xlsx"
)

// Header is the column row shared by all formats.
var Header = []string{"Ngày", "Mã GD", "Diễn giải", "Tiền vào", "Tiền ra", "Phí", "VAT", "Số dư"}

// Table is the format-independent row model.
type Table struct {
	AccountInfo core.AccountInfo
	Opening     []string
	Rows        [][]string
	Totals      []string
}

// Build flattens a ledger into display rows with per-row running balances.
func Build(l core.Ledger) Table {
	balances, final := core.RunningBalances(l.OpeningBalance, l.Transactions)

	t := Table{
		AccountInfo: l.AccountInfo,
		Opening:     []string{"", "", "Số dư đầu kỳ", "", "", "", "", l.OpeningBalance.String()},
		Rows:        make([][]string, 0, len(l.Transactions)),
	}

	sumDebit, sumCredit, sumFee, sumVAT := decimal.Zero, decimal.Zero, decimal.Zero, decimal.Zero
	for i, tx := range l.Transactions {
		t.Rows = append(t.Rows, []string{
			tx.Date,
			tx.TransactionCode,
			tx.Description,
			tx.Debit.String(),
			tx.Credit.String(),
			tx.Fee.String(),
			tx.VAT.String(),
			balances[i].String(),
		})
		sumDebit = sumDebit.Add(tx.Debit)
		sumCredit = sumCredit.Add(tx.Credit)
		sumFee = sumFee.Add(tx.Fee)
		sumVAT = sumVAT.Add(tx.VAT)
	}

	t.Totals = []string{
		"", "", "Tổng cộng",
		sumDebit.String(), sumCredit.String(), sumFee.String(), sumVAT.String(),
		final.String(),
	}
	return t
}

// Render serializes the ledger and returns the payload and its content
// type.
func Render(l core.Ledger, f Format) ([]byte, string, error) {
	table := Build(l)
	switch f {
	case FormatCSV:
		return renderCSV(table), "text/csv; charset=utf-8", nil
	case FormatHTML:
		b, err := renderHTML(table)
		return b, "text/html; charset=utf-8", err
	case FormatTSV:
		return renderTSV(table), "text/tab-separated-values; charset=utf-8", nil
	case FormatXLSX:
		b, err := renderXLSX(table)
		return b, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", err
	default:
		return nil, "", fmt.Errorf("unknown export format %q", f)
	}
}

// ParseFormat validates a format query value.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatCSV, FormatHTML, FormatTSV, FormatXLSX:
		return Format(s), nil
	}
	return "", fmt.Errorf("unknown export format %q", s)
}

// allRows yields every row in display order.
func (t Table) allRows() [][]string {
	rows := make([][]string, 0, len(t.Rows)+3)
	rows = append(rows, Header)
	rows = append(rows, t.Opening)
	rows = append(rows, t.Rows...)
	rows = append(rows, t.Totals)
	return rows
}
