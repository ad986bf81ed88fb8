package app

import (
	"github.com/shopspring/decimal"

	"statement-agent/internal/core"
)

// LedgerView is the ledger plus everything derived from it for display.
type LedgerView struct {
	SessionID            string                       `json:"session_id"`
	Ledger               core.Ledger                  `json:"ledger"`
	RunningBalances      []decimal.Decimal            `json:"running_balances"`
	Warning              *core.BalanceMismatchWarning `json:"warning,omitempty"`
	AwaitingConfirmation bool                         `json:"awaiting_confirmation"`
}

// StatementResult is returned by ProcessStatement and Restructure.
type StatementResult struct {
	StatementID string   `json:"statement_id,omitempty"`
	FileNames   []string `json:"file_names"`
	RawText     string   `json:"raw_text"`
	LedgerView
}

// ChatResult is one protocol turn: the assistant reply and the refreshed
// ledger view.
type ChatResult struct {
	Reply   string `json:"reply"`
	Applied bool   `json:"applied"`
	LedgerView
}
