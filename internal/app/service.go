package app

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"statement-agent/internal/core"
	"statement-agent/internal/db"
	"statement-agent/internal/export"
)

// ErrSessionNotFound is returned for unknown or expired session ids.
var ErrSessionNotFound = errors.New("session not found or expired")

// ErrPersistenceDisabled is returned by statement lookups when the service
// runs without a database.
var ErrPersistenceDisabled = errors.New("statement persistence is disabled")

// ErrExtraction marks failures in the file extraction stage.
var ErrExtraction = errors.New("extraction failed")

// ErrAI marks failures in the AI transcription or structuring stage.
var ErrAI = errors.New("ai request failed")

// UploadedFile is one file of a statement upload.
type UploadedFile struct {
	Name      string
	MediaType string // declared content type; extension is the fallback
	Data      []byte
}

// ApplicationService is the single interface all adapters (web, REPL, CLI)
// call. Implementations contain no display logic of any kind.
type ApplicationService interface {
	// ProcessStatement extracts the uploaded files, OCRs any page images,
	// structures the combined text into a ledger, and opens a review
	// session. No session is created when any step fails.
	ProcessStatement(ctx context.Context, files []UploadedFile) (*StatementResult, error)

	// GetSession returns the current ledger view for a session.
	GetSession(ctx context.Context, sessionID string) (*LedgerView, error)

	// UpdateTransactionField applies a direct cell edit to one numeric
	// field. The pre-edit ledger is kept in the undo history.
	UpdateTransactionField(ctx context.Context, sessionID string, index int, field core.Field, value decimal.Decimal) (*LedgerView, error)

	// AddTransaction appends a transaction, defaulting missing date and
	// description.
	AddTransaction(ctx context.Context, sessionID string, tx core.Transaction) (*LedgerView, error)

	// Undo reverts the most recent mutation; a no-op at the initial
	// extraction result.
	Undo(ctx context.Context, sessionID string) (*LedgerView, error)

	// Chat runs one turn of the confirmation-gated mutation protocol.
	// Returns session.ErrBusy while a previous turn is in flight.
	Chat(ctx context.Context, sessionID, text string, images []core.Image) (*ChatResult, error)

	// Export serializes the current ledger; returns the payload and its
	// content type.
	Export(ctx context.Context, sessionID string, format export.Format) ([]byte, string, error)

	// GetStatement loads a persisted raw statement by id.
	GetStatement(ctx context.Context, statementID string) (*db.Statement, error)

	// Restructure re-runs the structuring endpoint over a persisted raw
	// statement and opens a fresh session, skipping extraction and OCR.
	Restructure(ctx context.Context, statementID string) (*StatementResult, error)
}

// StatementStore is the persistence boundary for raw statement text. A nil
// store disables persistence.
type StatementStore interface {
	Save(ctx context.Context, fileNames []string, rawText string) (string, error)
	Get(ctx context.Context, id string) (*db.Statement, error)
}
