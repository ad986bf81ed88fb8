package ai

import (
	"context"
	"fmt"
	"math"

	"github.com/shopspring/decimal"

	"statement-agent/internal/core"
)

// ledgerWire is the schema-constrained shape the model fills in. Amounts
// travel as plain numbers and are converted to decimals after normalizing;
// core stays free of float arithmetic.
type ledgerWire struct {
	AccountInfo  accountInfoWire   `json:"account_info" jsonschema_description:"The account holder details printed on the statement header"`
	Transactions []transactionWire `json:"transactions" jsonschema_description:"Every transaction row, in the order printed on the statement"`
	// Balances as printed; 0 when the statement does not state them.
	OpeningBalance float64 `json:"opening_balance" jsonschema_description:"The opening balance printed on the statement, 0 if absent"`
	EndingBalance  float64 `json:"ending_balance" jsonschema_description:"The ending/closing balance printed on the statement, 0 if absent"`
}

type accountInfoWire struct {
	AccountName   string `json:"account_name" jsonschema_description:"Account holder name, empty string if not printed"`
	AccountNumber string `json:"account_number" jsonschema_description:"Account number, empty string if not printed"`
	BankName      string `json:"bank_name" jsonschema_description:"Bank name, empty string if not printed"`
	Branch        string `json:"branch" jsonschema_description:"Branch name, empty string if not printed"`
}

type transactionWire struct {
	TransactionCode string  `json:"transaction_code" jsonschema_description:"Transaction reference code, empty string if absent"`
	Date            string  `json:"date" jsonschema_description:"Transaction date exactly as printed (e.g. dd/mm/yyyy)"`
	Description     string  `json:"description" jsonschema_description:"Transaction narrative/description"`
	Debit           float64 `json:"debit" jsonschema_description:"Money IN (credit to the account holder), non-negative, 0 if none"`
	Credit          float64 `json:"credit" jsonschema_description:"Money OUT (withdrawal/payment), non-negative, 0 if none"`
	Fee             float64 `json:"fee" jsonschema_description:"Transaction fee, 0 if none"`
	VAT             float64 `json:"vat" jsonschema_description:"VAT charged on the fee, 0 if none"`
}

const structurePrompt = `You are an expert bank-statement analyst for Vietnamese banks.
Convert the raw statement text below into the structured schema.
Rules:
1. Keep transactions in the order they appear on the statement.
2. Amounts are plain non-negative numbers with NO thousand separators. Vietnamese statements write 1.234.567,89 — read the dots as thousand separators.
3. For each transaction, at most one of debit/credit is non-zero: debit is money coming in, credit is money going out.
4. fee and vat are 0 unless the row states them.
5. Any field the statement does not state: numbers become 0, strings become "".
6. Dates stay exactly as printed.

Statement text:
%s`

// Temperature 0: extraction of the same statement must be deterministic.
const structureTemperature = 0

// StructureStatement converts raw statement text into a Ledger.
func (a *Agent) StructureStatement(ctx context.Context, rawText string) (*core.Ledger, error) {
	var wire ledgerWire
	prompt := fmt.Sprintf(structurePrompt, rawText)
	err := a.structured(ctx, userMessage(prompt, nil),
		"bank_statement_ledger",
		"The structured ledger extracted from a bank statement",
		structureTemperature, &wire)
	if err != nil {
		return nil, err
	}
	ledger := wire.toLedger()
	return &ledger, nil
}

func (w ledgerWire) toLedger() core.Ledger {
	out := core.Ledger{
		AccountInfo: core.AccountInfo{
			AccountName:   w.AccountInfo.AccountName,
			AccountNumber: w.AccountInfo.AccountNumber,
			BankName:      w.AccountInfo.BankName,
			Branch:        w.AccountInfo.Branch,
		},
		Transactions:   make([]core.Transaction, 0, len(w.Transactions)),
		OpeningBalance: toDecimal(w.OpeningBalance, true),
		EndingBalance:  toDecimal(w.EndingBalance, true),
	}
	for _, t := range w.Transactions {
		out.Transactions = append(out.Transactions, t.toTransaction())
	}
	return out
}

func (t transactionWire) toTransaction() core.Transaction {
	return core.Transaction{
		TransactionCode: t.TransactionCode,
		Date:            t.Date,
		Description:     t.Description,
		Debit:           toDecimal(t.Debit, false),
		Credit:          toDecimal(t.Credit, false),
		Fee:             toDecimal(t.Fee, false),
		VAT:             toDecimal(t.VAT, false),
	}
}

// toDecimal normalizes model output: NaN/Inf collapse to 0, and transaction
// amounts are clamped to their absolute value (balances may be negative,
// amounts may not).
func toDecimal(v float64, allowNegative bool) decimal.Decimal {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return decimal.Zero
	}
	d := decimal.NewFromFloat(v)
	if !allowNegative && d.IsNegative() {
		d = d.Abs()
	}
	return d
}
