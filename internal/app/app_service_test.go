package app_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"statement-agent/internal/app"
	"statement-agent/internal/core"
	"statement-agent/internal/db"
	"statement-agent/internal/export"
	"statement-agent/internal/session"
)

type fakeAgent struct {
	ledger      core.Ledger
	transcripts int
	structured  []string
}

func (f *fakeAgent) Transcribe(_ context.Context, images []core.Image) (string, error) {
	f.transcripts++
	return "ocr text", nil
}

func (f *fakeAgent) StructureStatement(_ context.Context, rawText string) (*core.Ledger, error) {
	f.structured = append(f.structured, rawText)
	out := f.ledger.Clone()
	return &out, nil
}

func (f *fakeAgent) Converse(_ context.Context, _ core.ConverseInput) (*core.ChatReply, error) {
	return &core.ChatReply{ResponseText: "ok", Action: core.IntentQuery}, nil
}

type memStatementStore struct {
	saved map[string]*db.Statement
}

func newMemStatementStore() *memStatementStore {
	return &memStatementStore{saved: make(map[string]*db.Statement)}
}

func (m *memStatementStore) Save(_ context.Context, fileNames []string, rawText string) (string, error) {
	id := "st-1"
	m.saved[id] = &db.Statement{ID: id, FileNames: fileNames, RawText: rawText, CreatedAt: time.Now()}
	return id, nil
}

func (m *memStatementStore) Get(_ context.Context, id string) (*db.Statement, error) {
	st, ok := m.saved[id]
	if !ok {
		return nil, db.ErrStatementNotFound
	}
	return st, nil
}

func sampleLedger() core.Ledger {
	return core.Ledger{
		AccountInfo:    core.AccountInfo{BankName: "ACB", AccountNumber: "123456789"},
		OpeningBalance: decimal.NewFromInt(1000),
		EndingBalance:  decimal.NewFromInt(1500),
		Transactions: []core.Transaction{
			{Date: "05/07/2026", Description: "chuyen tien", Debit: decimal.NewFromInt(500)},
		},
	}
}

func newTestService(t *testing.T) (app.ApplicationService, *fakeAgent, *memStatementStore) {
	t.Helper()
	agent := &fakeAgent{ledger: sampleLedger()}
	statements := newMemStatementStore()
	svc := app.NewAppService(agent, session.NewStore(time.Hour), statements)
	return svc, agent, statements
}

func textFile(name, content string) app.UploadedFile {
	return app.UploadedFile{Name: name, MediaType: "text/plain", Data: []byte(content)}
}

func TestProcessStatementCreatesSession(t *testing.T) {
	svc, agent, statements := newTestService(t)
	ctx := context.Background()

	result, err := svc.ProcessStatement(ctx, []app.UploadedFile{textFile("saoke.txt", "Ngày 05/07 chuyen tien 500.000")})
	if err != nil {
		t.Fatal(err)
	}

	if result.SessionID == "" {
		t.Error("no session id")
	}
	if result.StatementID != "st-1" {
		t.Errorf("statement id = %q, want st-1", result.StatementID)
	}
	if len(result.Ledger.Transactions) != 1 {
		t.Fatalf("transactions = %d, want 1", len(result.Ledger.Transactions))
	}
	if len(result.RunningBalances) != 1 || !result.RunningBalances[0].Equal(decimal.NewFromInt(1500)) {
		t.Errorf("running balances = %v", result.RunningBalances)
	}
	if result.Warning != nil {
		t.Errorf("unexpected warning: %+v", result.Warning)
	}
	if agent.transcripts != 0 {
		t.Errorf("transcribe called %d times for a text-only upload", agent.transcripts)
	}
	if len(agent.structured) != 1 || !strings.Contains(agent.structured[0], "chuyen tien") {
		t.Errorf("structured inputs = %v", agent.structured)
	}
	if len(statements.saved) != 1 {
		t.Errorf("saved statements = %d, want 1", len(statements.saved))
	}
}

func TestProcessStatementNoFiles(t *testing.T) {
	svc, _, _ := newTestService(t)
	if _, err := svc.ProcessStatement(context.Background(), nil); err == nil {
		t.Fatal("expected error for empty upload")
	}
}

func TestProcessStatementWithoutPersistence(t *testing.T) {
	agent := &fakeAgent{ledger: sampleLedger()}
	svc := app.NewAppService(agent, session.NewStore(time.Hour), nil)

	result, err := svc.ProcessStatement(context.Background(), []app.UploadedFile{textFile("saoke.txt", "some rows")})
	if err != nil {
		t.Fatal(err)
	}
	if result.StatementID != "" {
		t.Errorf("statement id = %q, want empty", result.StatementID)
	}

	if _, err := svc.GetStatement(context.Background(), "whatever"); err != app.ErrPersistenceDisabled {
		t.Errorf("err = %v, want ErrPersistenceDisabled", err)
	}
}

func TestEditUndoRoundTrip(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	result, err := svc.ProcessStatement(ctx, []app.UploadedFile{textFile("saoke.txt", "rows")})
	if err != nil {
		t.Fatal(err)
	}
	id := result.SessionID

	view, err := svc.UpdateTransactionField(ctx, id, 0, core.FieldFee, decimal.NewFromInt(3300))
	if err != nil {
		t.Fatal(err)
	}
	if !view.Ledger.Transactions[0].Fee.Equal(decimal.NewFromInt(3300)) {
		t.Errorf("fee = %s after update", view.Ledger.Transactions[0].Fee)
	}
	if view.Warning == nil {
		t.Error("expected mismatch warning after fee edit")
	}

	view, err = svc.Undo(ctx, id)
	if err != nil {
		t.Fatal(err)
	}
	if !view.Ledger.Transactions[0].Fee.IsZero() {
		t.Errorf("fee = %s after undo, want 0", view.Ledger.Transactions[0].Fee)
	}
	if view.Warning != nil {
		t.Errorf("warning survived undo: %+v", view.Warning)
	}
}

func TestAddTransaction(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	result, err := svc.ProcessStatement(ctx, []app.UploadedFile{textFile("saoke.txt", "rows")})
	if err != nil {
		t.Fatal(err)
	}

	view, err := svc.AddTransaction(ctx, result.SessionID, core.Transaction{Credit: decimal.NewFromInt(200)})
	if err != nil {
		t.Fatal(err)
	}
	if len(view.Ledger.Transactions) != 2 {
		t.Fatalf("transactions = %d, want 2", len(view.Ledger.Transactions))
	}
	added := view.Ledger.Transactions[1]
	if added.Description != core.AddedDescriptionPlaceholder {
		t.Errorf("description = %q", added.Description)
	}
	if added.Date == "" {
		t.Error("added transaction has no date")
	}
}

func TestSessionNotFound(t *testing.T) {
	svc, _, _ := newTestService(t)
	if _, err := svc.GetSession(context.Background(), "missing"); err != app.ErrSessionNotFound {
		t.Errorf("err = %v, want ErrSessionNotFound", err)
	}
	if _, _, err := svc.Export(context.Background(), "missing", export.FormatCSV); err != app.ErrSessionNotFound {
		t.Errorf("err = %v, want ErrSessionNotFound", err)
	}
}

func TestExportCSV(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	result, err := svc.ProcessStatement(ctx, []app.UploadedFile{textFile("saoke.txt", "rows")})
	if err != nil {
		t.Fatal(err)
	}

	data, contentType, err := svc.Export(ctx, result.SessionID, export.FormatCSV)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(contentType, "text/csv") {
		t.Errorf("content type = %q", contentType)
	}
	if !strings.Contains(string(data), "chuyen tien") {
		t.Error("csv missing transaction description")
	}
}

func TestRestructure(t *testing.T) {
	svc, agent, _ := newTestService(t)
	ctx := context.Background()

	first, err := svc.ProcessStatement(ctx, []app.UploadedFile{textFile("saoke.txt", "original rows")})
	if err != nil {
		t.Fatal(err)
	}

	second, err := svc.Restructure(ctx, first.StatementID)
	if err != nil {
		t.Fatal(err)
	}
	if second.SessionID == first.SessionID {
		t.Error("restructure reused the session")
	}
	if len(agent.structured) != 2 {
		t.Fatalf("structure calls = %d, want 2", len(agent.structured))
	}
	if agent.structured[1] != agent.structured[0] {
		t.Error("restructure did not reuse the persisted raw text")
	}

	if _, err := svc.Restructure(ctx, "missing"); err != db.ErrStatementNotFound {
		t.Errorf("err = %v, want ErrStatementNotFound", err)
	}
}
