package core

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// AddedDescriptionPlaceholder fills the description of a transaction added
// without one.
const AddedDescriptionPlaceholder = "Giao dịch thêm thủ công"

// LedgerStore owns the current ledger and a linear undo history.
// Every mutation pushes the pre-mutation snapshot onto the history before
// replacing the current ledger, so the top of the history is always the
// state to restore on undo. There is no redo.
//
// The store itself is not safe for concurrent use; the owning session
// serializes access.
type LedgerStore struct {
	current Ledger
	history []Ledger
}

// NewLedgerStore creates a store seeded with the post-extraction ledger.
// The seed snapshot anchors the history so undo can never erase the
// original extraction result.
func NewLedgerStore(initial Ledger) *LedgerStore {
	return &LedgerStore{
		current: initial.Clone(),
		history: []Ledger{initial.Clone()},
	}
}

// Current returns a deep copy of the current ledger.
func (s *LedgerStore) Current() Ledger {
	return s.current.Clone()
}

// HistoryLen returns the number of history snapshots.
func (s *LedgerStore) HistoryLen() int {
	return len(s.history)
}

// Replace installs a freshly extracted ledger, discarding all history.
func (s *LedgerStore) Replace(l Ledger) {
	s.current = l.Clone()
	s.history = []Ledger{l.Clone()}
}

// UpdateField writes value into one numeric field of the transaction at
// index. The pre-mutation ledger is pushed onto the history first.
func (s *LedgerStore) UpdateField(index int, field Field, value decimal.Decimal) error {
	if index < 0 || index >= len(s.current.Transactions) {
		return fmt.Errorf("transaction index %d out of range (have %d)", index, len(s.current.Transactions))
	}
	if !ValidField(field) {
		return fmt.Errorf("field %q is not editable", field)
	}

	next := s.current.Clone()
	tx := &next.Transactions[index]
	switch field {
	case FieldDebit:
		tx.Debit = value
	case FieldCredit:
		tx.Credit = value
	case FieldFee:
		tx.Fee = value
	case FieldVAT:
		tx.VAT = value
	}

	s.history = append(s.history, s.current.Clone())
	s.current = next
	return nil
}

// AddTransaction appends tx to the end of the list. Additions never re-sort
// chronologically. Missing date and description get display defaults;
// monetary zero values stay zero.
func (s *LedgerStore) AddTransaction(tx Transaction) {
	if tx.Date == "" {
		tx.Date = time.Now().Format("02/01/2006")
	}
	if tx.Description == "" {
		tx.Description = AddedDescriptionPlaceholder
	}

	next := s.current.Clone()
	next.Transactions = append(next.Transactions, tx)

	s.history = append(s.history, s.current.Clone())
	s.current = next
}

// Undo restores the most recent history snapshot. When only the seed
// snapshot remains it is a no-op: the initial extraction is never erased.
func (s *LedgerStore) Undo() {
	if len(s.history) <= 1 {
		return
	}
	last := len(s.history) - 1
	s.current = s.history[last]
	s.history = s.history[:last]
}
