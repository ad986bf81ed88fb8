package repl

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"mime"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"statement-agent/internal/app"
	"statement-agent/internal/core"
	"statement-agent/internal/export"
)

// Run processes the given statement files and starts the interactive loop.
// Slash commands are dispatched deterministically; anything else goes
// through the AI chat protocol.
func Run(ctx context.Context, svc app.ApplicationService, reader *bufio.Reader, paths []string) {
	files := make([]app.UploadedFile, 0, len(paths))
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			log.Fatalf("Failed to read %s: %v", p, err)
		}
		files = append(files, app.UploadedFile{
			Name:      filepath.Base(p),
			MediaType: mime.TypeByExtension(filepath.Ext(p)),
			Data:      data,
		})
	}

	fmt.Println("Statement Agent")
	fmt.Printf("Processing %d file(s)...\n", len(files))

	result, err := svc.ProcessStatement(ctx, files)
	if err != nil {
		log.Fatalf("Failed to process statement: %v", err)
	}
	sessionID := result.SessionID

	printTable(&result.LedgerView)
	printWarning(result.Warning)
	fmt.Println("Describe an edit in natural language, or use /help for commands.")
	fmt.Println(strings.Repeat("-", 70))

	errExit := fmt.Errorf("exit")

	dispatchSlash := func(input string) error {
		tokens := strings.Fields(strings.TrimPrefix(input, "/"))
		if len(tokens) == 0 {
			return nil
		}
		cmd := strings.ToLower(tokens[0])
		args := tokens[1:]

		switch cmd {
		case "table", "t":
			view, err := svc.GetSession(ctx, sessionID)
			if err != nil {
				return err
			}
			printTable(view)
			printWarning(view.Warning)

		case "warning", "w":
			view, err := svc.GetSession(ctx, sessionID)
			if err != nil {
				return err
			}
			if view.Warning == nil {
				fmt.Println("Số dư đối soát khớp.")
			} else {
				printWarning(view.Warning)
			}

		case "set":
			if len(args) < 3 {
				fmt.Println("Usage: /set <index> <debit|credit|fee|vat> <value>")
				return nil
			}
			index, err := strconv.Atoi(args[0])
			if err != nil {
				fmt.Printf("Invalid index: %s\n", args[0])
				return nil
			}
			field := core.Field(strings.ToLower(args[1]))
			if !core.ValidField(field) {
				fmt.Printf("Invalid field: %s\n", args[1])
				return nil
			}
			value, err := decimal.NewFromString(args[2])
			if err != nil || value.IsNegative() {
				fmt.Printf("Invalid value: %s\n", args[2])
				return nil
			}
			view, err := svc.UpdateTransactionField(ctx, sessionID, index, field, value)
			if err != nil {
				return err
			}
			printTable(view)
			printWarning(view.Warning)

		case "add":
			tx, ok := handleAddTransaction(reader)
			if !ok {
				return nil
			}
			view, err := svc.AddTransaction(ctx, sessionID, tx)
			if err != nil {
				return err
			}
			printTable(view)
			printWarning(view.Warning)

		case "undo", "u":
			view, err := svc.Undo(ctx, sessionID)
			if err != nil {
				return err
			}
			fmt.Println("Đã hoàn tác.")
			printTable(view)
			printWarning(view.Warning)

		case "export":
			if len(args) < 2 {
				fmt.Println("Usage: /export <csv|html|tsv|xlsx> <path>")
				return nil
			}
			format, err := export.ParseFormat(strings.ToLower(args[0]))
			if err != nil {
				fmt.Printf("Invalid format: %s\n", args[0])
				return nil
			}
			data, _, err := svc.Export(ctx, sessionID, format)
			if err != nil {
				return err
			}
			if err := os.WriteFile(args[1], data, 0o644); err != nil {
				return err
			}
			fmt.Printf("Exported %d bytes to %s\n", len(data), args[1])

		case "raw":
			fmt.Println(result.RawText)

		case "help", "h":
			printHelp()

		case "exit", "quit", "e", "q":
			return errExit

		default:
			fmt.Printf("Unknown command: /%s  (type /help for all commands)\n", cmd)
		}
		return nil
	}

	for {
		fmt.Print("\n> ")
		input, readErr := reader.ReadString('\n')
		input = strings.TrimSpace(input)
		if input == "" {
			if readErr != nil {
				break
			}
			continue
		}

		// Slash prefix → deterministic command dispatcher, no AI invoked.
		if strings.HasPrefix(input, "/") {
			if err := dispatchSlash(input); err != nil {
				if err == errExit {
					fmt.Println("Goodbye!")
					break
				}
				fmt.Printf("Error: %v\n", err)
			}
			continue
		}

		chatResult, err := svc.Chat(ctx, sessionID, input, nil)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			continue
		}
		fmt.Printf("\n[AI]: %s\n", chatResult.Reply)
		if chatResult.Applied {
			printTable(&chatResult.LedgerView)
			printWarning(chatResult.Warning)
		}
	}
}
