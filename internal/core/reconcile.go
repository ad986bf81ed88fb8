package core

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// mismatchTolerance absorbs rounding differences between the statement's
// declared ending balance and the replayed running balance.
var mismatchTolerance = decimal.NewFromInt(1)

// BalanceMismatchWarning is produced when replaying all transactions from
// the opening balance does not land on the declared ending balance. It is
// advisory: edits and exports proceed regardless.
type BalanceMismatchWarning struct {
	Computed   decimal.Decimal `json:"computed"`
	Declared   decimal.Decimal `json:"declared"`
	Difference decimal.Decimal `json:"difference"` // computed − declared
	Message    string          `json:"message"`
}

// RunningBalances folds the transaction list left to right starting from
// opening: balance' = balance + debit − credit − fee − vat. It returns the
// balance after each row (for per-row display) and the final value.
func RunningBalances(opening decimal.Decimal, txs []Transaction) ([]decimal.Decimal, decimal.Decimal) {
	balances := make([]decimal.Decimal, len(txs))
	bal := opening
	for i, tx := range txs {
		bal = bal.Add(tx.Debit).Sub(tx.Credit).Sub(tx.Fee).Sub(tx.VAT)
		balances[i] = bal
	}
	return balances, bal
}

// Reconcile compares the replayed ending balance against the declared one.
// A declared balance of zero means the statement did not state one, so no
// warning is possible. Returns nil when the ledger reconciles.
func Reconcile(l Ledger) *BalanceMismatchWarning {
	_, computed := RunningBalances(l.OpeningBalance, l.Transactions)

	if l.EndingBalance.IsZero() {
		return nil
	}
	diff := computed.Sub(l.EndingBalance)
	if diff.Abs().LessThanOrEqual(mismatchTolerance) {
		return nil
	}

	return &BalanceMismatchWarning{
		Computed:   computed,
		Declared:   l.EndingBalance,
		Difference: diff,
		Message: fmt.Sprintf(
			"Số dư cuối kỳ không khớp: tính từ giao dịch được %s, sao kê ghi %s (chênh lệch %s).",
			computed.String(), l.EndingBalance.String(), diff.String()),
	}
}
