package core

import (
	"github.com/shopspring/decimal"
)

// AccountInfo is the account header extracted from a statement.
// All fields are free text and may be empty when the statement omits them.
type AccountInfo struct {
	AccountName   string `json:"account_name"`
	AccountNumber string `json:"account_number"`
	BankName      string `json:"bank_name"`
	Branch        string `json:"branch"`
}

// Transaction is a single statement row. Monetary fields are non-negative;
// by accounting convention at most one of Debit/Credit is non-zero per row,
// but that convention is carried by the extraction prompt, not validated here.
type Transaction struct {
	TransactionCode string          `json:"transaction_code,omitempty"`
	Date            string          `json:"date"`
	Description     string          `json:"description"`
	Debit           decimal.Decimal `json:"debit"`
	Credit          decimal.Decimal `json:"credit"`
	Fee             decimal.Decimal `json:"fee"`
	VAT             decimal.Decimal `json:"vat"`
}

// Ledger is the structured result of an extraction: account header, the
// chronological transaction list, and the declared opening/ending balances.
// It is replaced wholesale on every extraction or confirmed mutation.
type Ledger struct {
	AccountInfo    AccountInfo     `json:"account_info"`
	Transactions   []Transaction   `json:"transactions"`
	OpeningBalance decimal.Decimal `json:"opening_balance"`
	EndingBalance  decimal.Decimal `json:"ending_balance"`
}

// Clone returns a deep copy. Mutations must never alias the transaction
// slice of a history snapshot.
func (l Ledger) Clone() Ledger {
	out := l
	out.Transactions = make([]Transaction, len(l.Transactions))
	copy(out.Transactions, l.Transactions)
	return out
}

// Field identifies a numeric transaction field editable in place.
type Field string

const (
	FieldDebit  Field = "debit"
	FieldCredit Field = "credit"
	FieldFee    Field = "fee"
	FieldVAT    Field = "vat"
)

// ValidField reports whether f names an editable numeric field.
func ValidField(f Field) bool {
	switch f {
	case FieldDebit, FieldCredit, FieldFee, FieldVAT:
		return true
	}
	return false
}

// Intent is the assistant's classification of a chat message.
type Intent string

const (
	IntentUpdate Intent = "update"
	IntentAdd    Intent = "add"
	IntentUndo   Intent = "undo"
	IntentQuery  Intent = "query"
)

// UpdateMutation sets one numeric field of the transaction at Index.
type UpdateMutation struct {
	Index int             `json:"index"`
	Field Field           `json:"field"`
	Value decimal.Decimal `json:"value"`
}

// PendingAction is a proposed mutation awaiting explicit user confirmation.
// At most one exists per session. Update is set for IntentUpdate, Add for
// IntentAdd; IntentUndo carries no payload.
type PendingAction struct {
	Kind   Intent          `json:"kind"`
	Update *UpdateMutation `json:"update,omitempty"`
	Add    *Transaction    `json:"add,omitempty"`
}

// ChatRole labels a transcript entry.
type ChatRole string

const (
	RoleUser      ChatRole = "user"
	RoleAssistant ChatRole = "assistant"
)

// ChatMessage is one transcript entry, kept for conversational context.
type ChatMessage struct {
	Role ChatRole `json:"role"`
	Text string   `json:"text"`
}

// ChatReply is the structured output of the conversational endpoint.
type ChatReply struct {
	ResponseText         string
	Action               Intent
	Update               *UpdateMutation
	Add                  *Transaction
	ConfirmationRequired bool
}

// ConverseInput is everything the conversational endpoint sees for one
// turn: the new message plus the full editing context.
type ConverseInput struct {
	Message    string
	Ledger     Ledger
	Transcript []ChatMessage
	RawText    string
	Images     []Image
}

// Image is a page or photo handed to the vision model.
type Image struct {
	MimeType string
	Data     []byte
}
