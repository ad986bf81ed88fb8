package repl

import (
	"bufio"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"statement-agent/internal/core"
)

// handleAddTransaction runs an interactive prompt for a new transaction.
// Returns ok=false when the user cancels.
func handleAddTransaction(reader *bufio.Reader) (core.Transaction, bool) {
	fmt.Println("Adding a transaction. Leave a field blank to use its default, type 'cancel' to abort.")

	readLine := func(label string) (string, bool) {
		fmt.Printf("  %s: ", label)
		raw, _ := reader.ReadString('\n')
		raw = strings.TrimSpace(raw)
		if strings.ToLower(raw) == "cancel" {
			return "", false
		}
		return raw, true
	}
	readAmount := func(label string) (decimal.Decimal, bool) {
		for {
			raw, ok := readLine(label)
			if !ok {
				return decimal.Zero, false
			}
			if raw == "" {
				return decimal.Zero, true
			}
			v, err := decimal.NewFromString(raw)
			if err != nil || v.IsNegative() {
				fmt.Println("  Invalid amount.")
				continue
			}
			return v, true
		}
	}

	var tx core.Transaction
	var ok bool

	if tx.Date, ok = readLine("Date (DD/MM/YYYY, blank for today)"); !ok {
		fmt.Println("Cancelled.")
		return core.Transaction{}, false
	}
	if tx.Date == "" {
		tx.Date = time.Now().Format("02/01/2006")
	}
	if tx.TransactionCode, ok = readLine("Transaction code"); !ok {
		fmt.Println("Cancelled.")
		return core.Transaction{}, false
	}
	if tx.Description, ok = readLine("Description"); !ok {
		fmt.Println("Cancelled.")
		return core.Transaction{}, false
	}
	if tx.Description == "" {
		tx.Description = core.AddedDescriptionPlaceholder
	}
	if tx.Debit, ok = readAmount("Money in (debit)"); !ok {
		fmt.Println("Cancelled.")
		return core.Transaction{}, false
	}
	if tx.Credit, ok = readAmount("Money out (credit)"); !ok {
		fmt.Println("Cancelled.")
		return core.Transaction{}, false
	}
	if tx.Fee, ok = readAmount("Fee"); !ok {
		fmt.Println("Cancelled.")
		return core.Transaction{}, false
	}
	if tx.VAT, ok = readAmount("VAT"); !ok {
		fmt.Println("Cancelled.")
		return core.Transaction{}, false
	}
	return tx, true
}
