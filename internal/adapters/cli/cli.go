package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"statement-agent/internal/app"
	"statement-agent/internal/export"
)

// Run executes a one-shot CLI command and exits.
// args is os.Args[1:] — the first element is the subcommand name.
func Run(ctx context.Context, svc app.ApplicationService, args []string) {
	switch args[0] {
	case "convert", "conv", "c":
		// Usage: app convert <format> <output-path> <file> [file...]
		if len(args) < 4 {
			log.Fatal("Usage: app convert <csv|html|tsv|xlsx> <output-path> <file> [file...]")
		}
		format, err := export.ParseFormat(strings.ToLower(args[1]))
		if err != nil {
			log.Fatalf("Invalid format: %v", err)
		}
		result := process(ctx, svc, args[3:])
		data, _, err := svc.Export(ctx, result.SessionID, format)
		if err != nil {
			log.Fatalf("Export failed: %v", err)
		}
		if err := os.WriteFile(args[2], data, 0o644); err != nil {
			log.Fatalf("Failed to write output: %v", err)
		}
		if result.Warning != nil {
			fmt.Fprintln(os.Stderr, "WARNING:", result.Warning.Message)
		}
		fmt.Printf("Wrote %d bytes to %s\n", len(data), args[2])

	case "structure", "struct", "s":
		// Usage: app structure <file> [file...]  — ledger JSON on stdout
		if len(args) < 2 {
			log.Fatal("Usage: app structure <file> [file...]")
		}
		result := process(ctx, svc, args[1:])
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		enc.Encode(result.Ledger)
		if result.Warning != nil {
			fmt.Fprintln(os.Stderr, "WARNING:", result.Warning.Message)
		}

	case "text", "t":
		// Usage: app text <file> [file...]  — extracted raw text on stdout
		if len(args) < 2 {
			log.Fatal("Usage: app text <file> [file...]")
		}
		result := process(ctx, svc, args[1:])
		fmt.Println(result.RawText)

	default:
		log.Fatalf("Unknown command: %s\nAvailable: convert, structure, text", args[0])
	}
}

func process(ctx context.Context, svc app.ApplicationService, paths []string) *app.StatementResult {
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
	result, err := svc.ProcessStatement(ctx, files)
	if err != nil {
		log.Fatalf("Failed to process statement: %v", err)
	}
	return result
}
