package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"statement-agent/internal/adapters/cli"
	"statement-agent/internal/adapters/repl"
	"statement-agent/internal/ai"
	"statement-agent/internal/app"
	"statement-agent/internal/db"
	"statement-agent/internal/session"
)

func main() {
	_ = godotenv.Load()

	ctx := context.Background()

	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		log.Println("Warning: OPENAI_API_KEY is not set")
	}
	agent := ai.NewAgent(apiKey, os.Getenv("OPENAI_MODEL"))

	var statements app.StatementStore
	if os.Getenv("DATABASE_URL") != "" {
		pool, err := db.NewPool(ctx)
		if err != nil {
			log.Fatalf("database: %v", err)
		}
		defer pool.Close()
		statements = db.NewStatementStore(pool)
	}

	ttl := 60 * time.Minute
	if v := os.Getenv("SESSION_TTL_MINUTES"); v != "" {
		minutes, err := strconv.Atoi(v)
		if err != nil || minutes <= 0 {
			log.Fatalf("invalid SESSION_TTL_MINUTES: %q", v)
		}
		ttl = time.Duration(minutes) * time.Minute
	}
	sessions := session.NewStore(ttl)

	svc := app.NewAppService(agent, sessions, statements)

	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "repl", "r":
		if len(os.Args) < 3 {
			log.Fatal("Usage: app repl <file> [file...]")
		}
		repl.Run(ctx, svc, bufio.NewReader(os.Stdin), os.Args[2:])
	default:
		cli.Run(ctx, svc, os.Args[1:])
	}
}

func usage() {
	fmt.Println("Usage:")
	fmt.Println("  app convert <csv|html|tsv|xlsx> <output-path> <file> [file...]")
	fmt.Println("  app structure <file> [file...]")
	fmt.Println("  app text <file> [file...]")
	fmt.Println("  app repl <file> [file...]")
}
