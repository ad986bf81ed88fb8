package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrStatementNotFound is returned for unknown statement ids.
var ErrStatementNotFound = errors.New("statement not found")

// Statement is the persisted part of an upload: the raw extracted text and
// the original file names. The structured ledger and chat history are
// deliberately not persisted; they can be rebuilt from the raw text.
type Statement struct {
	ID        string    `json:"id"`
	FileNames []string  `json:"file_names"`
	RawText   string    `json:"raw_text"`
	CreatedAt time.Time `json:"created_at"`
}

// StatementStore persists statements in Postgres.
type StatementStore struct {
	pool *pgxpool.Pool
}

func NewStatementStore(pool *pgxpool.Pool) *StatementStore {
	return &StatementStore{pool: pool}
}

// Save inserts a new statement row and returns its id.
func (s *StatementStore) Save(ctx context.Context, fileNames []string, rawText string) (string, error) {
	id := uuid.NewString()
	_, err := s.pool.Exec(ctx, `
		INSERT INTO statements (id, file_names, raw_text, created_at)
		VALUES ($1, $2, $3, NOW())
	`, id, fileNames, rawText)
	if err != nil {
		return "", fmt.Errorf("failed to insert statement: %w", err)
	}
	return id, nil
}

// Get loads one statement by id.
func (s *StatementStore) Get(ctx context.Context, id string) (*Statement, error) {
	var st Statement
	err := s.pool.QueryRow(ctx, `
		SELECT id, file_names, raw_text, created_at
		FROM statements WHERE id = $1
	`, id).Scan(&st.ID, &st.FileNames, &st.RawText, &st.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrStatementNotFound
		}
		return nil, fmt.Errorf("failed to fetch statement: %w", err)
	}
	return &st, nil
}
