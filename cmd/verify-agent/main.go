package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"

	"statement-agent/internal/ai"
	"statement-agent/internal/core"
)

func main() {
	_ = godotenv.Load() // Load .env if present

	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		log.Fatal("OPENAI_API_KEY not set")
	}

	agent := ai.NewAgent(apiKey, os.Getenv("OPENAI_MODEL"))
	ctx := context.Background()

	statement := `NGÂN HÀNG TMCP Á CHÂU (ACB)
SAO KÊ TÀI KHOẢN
Số tài khoản: 123456789  Chủ tài khoản: NGUYEN VAN A
Kỳ sao kê: 01/07/2026 - 31/07/2026
Số dư đầu kỳ: 1.000.000

Ngày	Mã GD	Diễn giải	Ghi có	Ghi nợ	Phí
05/07/2026	FT2607051234	NGUYEN VAN B chuyen tien	500.000
12/07/2026	FT2607129876	Thanh toan hoa don dien		350.000	3.300

Số dư cuối kỳ: 1.146.700`

	fmt.Println("STRUCTURING SAMPLE STATEMENT...")
	ledger, err := agent.StructureStatement(ctx, statement)
	if err != nil {
		log.Fatalf("Error: %v", err)
	}

	fmt.Printf("\n--- LEDGER ---\n")
	fmt.Printf("Bank:    %s\n", ledger.AccountInfo.BankName)
	fmt.Printf("Account: %s (%s)\n", ledger.AccountInfo.AccountNumber, ledger.AccountInfo.AccountName)
	fmt.Printf("Opening: %s  Ending: %s\n", ledger.OpeningBalance, ledger.EndingBalance)
	fmt.Println("Transactions:")
	for i, tx := range ledger.Transactions {
		fmt.Printf("  [%d] %s %s  in=%s out=%s fee=%s vat=%s  %s\n",
			i, tx.Date, tx.TransactionCode, tx.Debit, tx.Credit, tx.Fee, tx.VAT, tx.Description)
	}
	if w := core.Reconcile(*ledger); w != nil {
		fmt.Printf("\nWARNING: %s\n", w.Message)
	} else {
		fmt.Println("\nBalances reconcile.")
	}

	fmt.Println("\nASKING FOR AN EDIT PROPOSAL...")
	reply, err := agent.Converse(ctx, core.ConverseInput{
		Message: "sửa phí giao dịch thứ hai thành 5500",
		Ledger:  *ledger,
	})
	if err != nil {
		log.Fatalf("Error: %v", err)
	}
	fmt.Printf("Action: %s\n", reply.Action)
	fmt.Printf("Reply:  %s\n", reply.ResponseText)
	if reply.Update != nil {
		fmt.Printf("Update: tx %d, %s -> %s\n", reply.Update.Index, reply.Update.Field, reply.Update.Value)
	}
}
