package repl

import (
	"fmt"
	"strings"

	"statement-agent/internal/app"
	"statement-agent/internal/core"
)

func printTable(view *app.LedgerView) {
	l := view.Ledger
	fmt.Println()
	fmt.Println(strings.Repeat("=", 110))
	fmt.Printf("  SAO KÊ TÀI KHOẢN\n")
	if l.AccountInfo.BankName != "" {
		fmt.Printf("  Ngân hàng : %s\n", l.AccountInfo.BankName)
	}
	if l.AccountInfo.AccountNumber != "" {
		fmt.Printf("  Tài khoản : %s %s\n", l.AccountInfo.AccountNumber, l.AccountInfo.AccountName)
	}
	if l.AccountInfo.Branch != "" {
		fmt.Printf("  Chi nhánh : %s\n", l.AccountInfo.Branch)
	}
	fmt.Println(strings.Repeat("=", 110))
	fmt.Printf("  %-3s %-12s %-14s %-26s %12s %12s %8s %8s %14s\n",
		"#", "NGÀY", "MÃ GD", "DIỄN GIẢI", "TIỀN VÀO", "TIỀN RA", "PHÍ", "VAT", "SỐ DƯ")
	fmt.Println(strings.Repeat("-", 110))
	fmt.Printf("  %-3s %-12s %-14s %-26s %12s %12s %8s %8s %14s\n",
		"", "", "", "Số dư đầu kỳ", "", "", "", "", l.OpeningBalance.StringFixed(0))
	for i, tx := range l.Transactions {
		desc := tx.Description
		if len([]rune(desc)) > 25 {
			desc = string([]rune(desc)[:22]) + "..."
		}
		balance := ""
		if i < len(view.RunningBalances) {
			balance = view.RunningBalances[i].StringFixed(0)
		}
		fmt.Printf("  %-3d %-12s %-14s %-26s %12s %12s %8s %8s %14s\n",
			i, tx.Date, tx.TransactionCode, desc,
			tx.Debit.StringFixed(0), tx.Credit.StringFixed(0),
			tx.Fee.StringFixed(0), tx.VAT.StringFixed(0), balance)
	}
	fmt.Println(strings.Repeat("=", 110))
}

func printWarning(w *core.BalanceMismatchWarning) {
	if w == nil {
		return
	}
	fmt.Println()
	fmt.Printf("  CẢNH BÁO: %s\n", w.Message)
}

func printHelp() {
	fmt.Println()
	fmt.Println("STATEMENT AGENT — COMMANDS")
	fmt.Println(strings.Repeat("=", 62))
	fmt.Println()
	fmt.Println("  LEDGER")
	fmt.Println("  /table                           Show the statement table")
	fmt.Println("  /warning                         Show the balance reconciliation result")
	fmt.Println("  /raw                             Show the extracted raw text")
	fmt.Println()
	fmt.Println("  EDITING")
	fmt.Println("  /set <index> <field> <value>     Set debit/credit/fee/vat directly")
	fmt.Println("  /add                             Add a transaction (interactive)")
	fmt.Println("  /undo                            Revert the last change")
	fmt.Println()
	fmt.Println("  EXPORT")
	fmt.Println("  /export <format> <path>          Write csv, html, tsv, or xlsx")
	fmt.Println()
	fmt.Println("  SESSION")
	fmt.Println("  /help                            Show this help")
	fmt.Println("  /exit                            Exit")
	fmt.Println()
	fmt.Println("  AGENT MODE  (no / prefix)")
	fmt.Println("  Describe an edit in natural language, Vietnamese or English.")
	fmt.Println("  Example: \"sửa phí giao dịch số 2 thành 11000\"")
	fmt.Println(strings.Repeat("=", 62))
}
