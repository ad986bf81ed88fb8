package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	webAdapter "statement-agent/internal/adapters/web"
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

	// The database is optional. Without it the service still works,
	// statements just cannot be fetched back or restructured later.
	var statements app.StatementStore
	if os.Getenv("DATABASE_URL") != "" {
		pool, err := db.NewPool(ctx)
		if err != nil {
			log.Fatalf("database: %v", err)
		}
		defer pool.Close()
		statements = db.NewStatementStore(pool)
	} else {
		log.Println("Warning: DATABASE_URL is not set, statement persistence disabled")
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
	sessions.StartPurge(ctx)

	uploadDir := os.Getenv("UPLOAD_DIR")
	if uploadDir == "" {
		uploadDir = os.TempDir()
	}
	if err := os.MkdirAll(uploadDir, 0o700); err != nil {
		log.Fatalf("upload dir: %v", err)
	}

	svc := app.NewAppService(agent, sessions, statements)

	port := os.Getenv("SERVER_PORT")
	if port == "" {
		port = "8080"
	}

	allowedOrigins := os.Getenv("ALLOWED_ORIGINS")
	handler := webAdapter.NewHandler(svc, allowedOrigins, uploadDir)

	log.Printf("server starting on :%s", port)
	if err := http.ListenAndServe(":"+port, handler); err != nil {
		log.Fatalf("server: %v", err)
	}
}
