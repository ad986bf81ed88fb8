package core_test

import (
	"reflect"
	"testing"
	"time"

	"statement-agent/internal/core"
)

func seedLedger() core.Ledger {
	return core.Ledger{
		AccountInfo: core.AccountInfo{
			AccountName:   "NGUYEN VAN A",
			AccountNumber: "0123456789",
			BankName:      "Vietcombank",
		},
		Transactions: []core.Transaction{
			tx("500", "0", "0", "0"),
			tx("0", "200", "2", "0"),
		},
		OpeningBalance: d("1000"),
		EndingBalance:  d("1298"),
	}
}

func TestLedgerStore_UpdateField(t *testing.T) {
	initial := seedLedger()
	s := core.NewLedgerStore(initial)

	if err := s.UpdateField(1, core.FieldCredit, d("250")); err != nil {
		t.Fatalf("UpdateField: %v", err)
	}

	got := s.Current()
	if !got.Transactions[1].Credit.Equal(d("250")) {
		t.Errorf("credit = %s, want 250", got.Transactions[1].Credit)
	}
	// Everything except the edited field is untouched.
	if !got.Transactions[0].Debit.Equal(d("500")) || !got.Transactions[1].Fee.Equal(d("2")) {
		t.Error("unrelated fields changed")
	}
	if s.HistoryLen() != 2 {
		t.Errorf("history length = %d, want 2", s.HistoryLen())
	}

	// Undo restores the pre-mutation ledger exactly.
	s.Undo()
	if !reflect.DeepEqual(s.Current(), initial) {
		t.Error("undo did not restore the pre-mutation ledger")
	}
}

func TestLedgerStore_UpdateField_Errors(t *testing.T) {
	tests := []struct {
		name  string
		index int
		field core.Field
	}{
		{"negative index", -1, core.FieldDebit},
		{"index past end", 2, core.FieldDebit},
		{"non-editable field", 0, core.Field("description")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := core.NewLedgerStore(seedLedger())
			if err := s.UpdateField(tt.index, tt.field, d("1")); err == nil {
				t.Error("expected error, got nil")
			}
			if s.HistoryLen() != 1 {
				t.Error("failed update must not push history")
			}
		})
	}
}

func TestLedgerStore_AddTransaction_Defaults(t *testing.T) {
	s := core.NewLedgerStore(seedLedger())
	s.AddTransaction(core.Transaction{Debit: d("100")})

	got := s.Current()
	added := got.Transactions[len(got.Transactions)-1]

	today := time.Now().Format("02/01/2006")
	if added.Date != today {
		t.Errorf("date = %q, want today %q", added.Date, today)
	}
	if added.Description != core.AddedDescriptionPlaceholder {
		t.Errorf("description = %q, want placeholder", added.Description)
	}
	if !added.Credit.IsZero() || !added.Fee.IsZero() || !added.VAT.IsZero() {
		t.Error("unspecified amounts must default to zero")
	}
	if s.HistoryLen() != 2 {
		t.Errorf("history length = %d, want 2", s.HistoryLen())
	}
}

func TestLedgerStore_AddTransaction_Appends(t *testing.T) {
	s := core.NewLedgerStore(seedLedger())
	// Out-of-order date: additions are append-only, never re-sorted.
	s.AddTransaction(core.Transaction{Date: "01/01/1999", Description: "old", Debit: d("1")})
	got := s.Current()
	if got.Transactions[len(got.Transactions)-1].Description != "old" {
		t.Error("added transaction is not last")
	}
}

func TestLedgerStore_Undo_NoopAtSeed(t *testing.T) {
	initial := seedLedger()
	s := core.NewLedgerStore(initial)

	s.Undo()
	s.Undo()
	if !reflect.DeepEqual(s.Current(), initial) {
		t.Error("undo with only the seed snapshot must not change the ledger")
	}
	if s.HistoryLen() != 1 {
		t.Errorf("history length = %d, want 1", s.HistoryLen())
	}
}

func TestLedgerStore_Undo_Sequence(t *testing.T) {
	initial := seedLedger()
	s := core.NewLedgerStore(initial)

	_ = s.UpdateField(0, core.FieldDebit, d("501"))
	s.AddTransaction(core.Transaction{Date: "02/02/2025", Description: "x", Debit: d("9")})

	s.Undo() // drops the addition
	if n := len(s.Current().Transactions); n != 2 {
		t.Fatalf("after first undo: %d transactions, want 2", n)
	}
	if !s.Current().Transactions[0].Debit.Equal(d("501")) {
		t.Error("first undo must keep the earlier field edit")
	}

	s.Undo() // drops the field edit
	if !reflect.DeepEqual(s.Current(), initial) {
		t.Error("second undo did not restore the initial ledger")
	}
}

func TestLedgerStore_Replace_ResetsHistory(t *testing.T) {
	s := core.NewLedgerStore(seedLedger())
	_ = s.UpdateField(0, core.FieldDebit, d("1"))

	fresh := seedLedger()
	fresh.OpeningBalance = d("5000")
	s.Replace(fresh)

	if s.HistoryLen() != 1 {
		t.Errorf("history length = %d, want 1 after replace", s.HistoryLen())
	}
	s.Undo()
	if !s.Current().OpeningBalance.Equal(d("5000")) {
		t.Error("undo after replace must not resurrect the old ledger")
	}
}

func TestLedgerStore_CurrentIsACopy(t *testing.T) {
	s := core.NewLedgerStore(seedLedger())
	snap := s.Current()
	snap.Transactions[0].Debit = d("999999")
	if s.Current().Transactions[0].Debit.Equal(d("999999")) {
		t.Error("mutating a snapshot leaked into the store")
	}
}
