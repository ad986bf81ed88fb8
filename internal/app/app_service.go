package app

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/shopspring/decimal"

	"statement-agent/internal/ai"
	"statement-agent/internal/core"
	"statement-agent/internal/db"
	"statement-agent/internal/export"
	"statement-agent/internal/extract"
	"statement-agent/internal/session"
)

type appService struct {
	agent      ai.ExtractionService
	sessions   *session.Store
	gate       *session.Gate
	statements StatementStore // nil disables persistence
}

// NewAppService wires the application service. statements may be nil when
// no database is configured.
func NewAppService(agent ai.ExtractionService, sessions *session.Store, statements StatementStore) ApplicationService {
	return &appService{
		agent:      agent,
		sessions:   sessions,
		gate:       session.NewGate(agent),
		statements: statements,
	}
}

func (s *appService) ProcessStatement(ctx context.Context, files []UploadedFile) (*StatementResult, error) {
	if len(files) == 0 {
		return nil, fmt.Errorf("no files uploaded")
	}

	extractFiles := make([]extract.File, len(files))
	fileNames := make([]string, len(files))
	for i, f := range files {
		extractFiles[i] = extract.File{Name: f.Name, MediaType: f.MediaType, Data: f.Data}
		fileNames[i] = f.Name
	}

	results, err := extract.ExtractAll(ctx, extractFiles)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrExtraction, err)
	}
	text, images := extract.Combine(results)

	// OCR text goes after the native text, in page order.
	if len(images) > 0 {
		ocrText, err := s.agent.Transcribe(ctx, images)
		if err != nil {
			return nil, fmt.Errorf("%w: ocr: %w", ErrAI, err)
		}
		if text == "" {
			text = ocrText
		} else {
			text = text + extract.TextSeparator + ocrText
		}
	}
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("no statement content could be extracted")
	}

	ledger, err := s.agent.StructureStatement(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("%w: structuring: %w", ErrAI, err)
	}

	// Persistence is best effort: a failed save must not discard a
	// successful extraction.
	statementID := ""
	if s.statements != nil {
		statementID, err = s.statements.Save(ctx, fileNames, text)
		if err != nil {
			log.Printf("statement save failed: %v", err)
			statementID = ""
		}
	}

	sess := s.sessions.Create(*ledger, text, fileNames, statementID)
	return s.statementResult(sess), nil
}

func (s *appService) GetSession(_ context.Context, sessionID string) (*LedgerView, error) {
	sess, ok := s.sessions.Get(sessionID)
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s.view(sess), nil
}

func (s *appService) UpdateTransactionField(_ context.Context, sessionID string, index int, field core.Field, value decimal.Decimal) (*LedgerView, error) {
	sess, ok := s.sessions.Get(sessionID)
	if !ok {
		return nil, ErrSessionNotFound
	}
	if err := sess.UpdateField(index, field, value); err != nil {
		return nil, err
	}
	return s.view(sess), nil
}

func (s *appService) AddTransaction(_ context.Context, sessionID string, tx core.Transaction) (*LedgerView, error) {
	sess, ok := s.sessions.Get(sessionID)
	if !ok {
		return nil, ErrSessionNotFound
	}
	sess.AddTransaction(tx)
	return s.view(sess), nil
}

func (s *appService) Undo(_ context.Context, sessionID string) (*LedgerView, error) {
	sess, ok := s.sessions.Get(sessionID)
	if !ok {
		return nil, ErrSessionNotFound
	}
	sess.Undo()
	return s.view(sess), nil
}

func (s *appService) Chat(ctx context.Context, sessionID, text string, images []core.Image) (*ChatResult, error) {
	sess, ok := s.sessions.Get(sessionID)
	if !ok {
		return nil, ErrSessionNotFound
	}
	out, err := s.gate.HandleMessage(ctx, sess, text, images)
	if err != nil {
		return nil, err
	}
	return &ChatResult{
		Reply:      out.Reply,
		Applied:    out.Applied,
		LedgerView: *s.view(sess),
	}, nil
}

func (s *appService) Export(_ context.Context, sessionID string, format export.Format) ([]byte, string, error) {
	sess, ok := s.sessions.Get(sessionID)
	if !ok {
		return nil, "", ErrSessionNotFound
	}
	return export.Render(sess.Ledger(), format)
}

func (s *appService) GetStatement(ctx context.Context, statementID string) (*db.Statement, error) {
	if s.statements == nil {
		return nil, ErrPersistenceDisabled
	}
	return s.statements.Get(ctx, statementID)
}

func (s *appService) Restructure(ctx context.Context, statementID string) (*StatementResult, error) {
	if s.statements == nil {
		return nil, ErrPersistenceDisabled
	}
	st, err := s.statements.Get(ctx, statementID)
	if err != nil {
		return nil, err
	}

	ledger, err := s.agent.StructureStatement(ctx, st.RawText)
	if err != nil {
		return nil, fmt.Errorf("%w: structuring: %w", ErrAI, err)
	}

	sess := s.sessions.Create(*ledger, st.RawText, st.FileNames, st.ID)
	return s.statementResult(sess), nil
}

func (s *appService) view(sess *session.Session) *LedgerView {
	ledger := sess.Ledger()
	balances, _ := core.RunningBalances(ledger.OpeningBalance, ledger.Transactions)
	return &LedgerView{
		SessionID:            sess.ID,
		Ledger:               ledger,
		RunningBalances:      balances,
		Warning:              core.Reconcile(ledger),
		AwaitingConfirmation: sess.Pending() != nil,
	}
}

func (s *appService) statementResult(sess *session.Session) *StatementResult {
	return &StatementResult{
		StatementID: sess.StatementID,
		FileNames:   sess.FileNames,
		RawText:     sess.RawText,
		LedgerView:  *s.view(sess),
	}
}
