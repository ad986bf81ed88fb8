// Package session holds the per-statement review state: the ledger store
// with its undo history, the chat transcript, and the confirmation gate
// for chat-driven mutations.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"statement-agent/internal/core"
)

// DefaultTTL is how long an idle session survives before the purge
// goroutine evicts it.
const DefaultTTL = 60 * time.Minute

// Session is the review state for one processed statement. All access goes
// through its methods; the embedded mutex serializes direct edits against
// chat turns.
type Session struct {
	ID          string
	StatementID string // persisted statement row id, empty when persistence is off
	FileNames   []string
	RawText     string

	mu         sync.Mutex
	ledger     *core.LedgerStore
	transcript []core.ChatMessage
	pending    *core.PendingAction
	busy       bool // one chat turn in flight at a time
	lastActive time.Time
}

// Ledger returns a snapshot of the current ledger.
func (s *Session) Ledger() core.Ledger {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.Current()
}

// Transcript returns a copy of the chat transcript.
func (s *Session) Transcript() []core.ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.ChatMessage, len(s.transcript))
	copy(out, s.transcript)
	return out
}

// Pending reports whether a mutation proposal awaits confirmation.
func (s *Session) Pending() *core.PendingAction {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending == nil {
		return nil
	}
	p := *s.pending
	return &p
}

// UpdateField applies a direct cell edit.
func (s *Session) UpdateField(index int, field core.Field, value decimal.Decimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.UpdateField(index, field, value)
}

// AddTransaction applies a direct row addition.
func (s *Session) AddTransaction(tx core.Transaction) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ledger.AddTransaction(tx)
}

// Undo reverts the most recent mutation.
func (s *Session) Undo() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ledger.Undo()
}

// tryBegin claims the session for one chat turn. It fails while another
// turn is still in flight, which keeps proposals strictly ordered.
func (s *Session) tryBegin() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.busy {
		return false
	}
	s.busy = true
	return true
}

func (s *Session) end() {
	s.mu.Lock()
	s.busy = false
	s.mu.Unlock()
}

func (s *Session) touch() {
	s.mu.Lock()
	s.lastActive = time.Now()
	s.mu.Unlock()
}

func (s *Session) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActive
}

// Store is a thread-safe in-memory session registry with TTL expiry.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*Session
	ttl      time.Duration
}

func NewStore(ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Store{sessions: make(map[string]*Session), ttl: ttl}
}

// Create opens a session seeded with a freshly extracted ledger.
func (st *Store) Create(ledger core.Ledger, rawText string, fileNames []string, statementID string) *Session {
	s := &Session{
		ID:          uuid.NewString(),
		StatementID: statementID,
		FileNames:   fileNames,
		RawText:     rawText,
		ledger:      core.NewLedgerStore(ledger),
		lastActive:  time.Now(),
	}
	st.mu.Lock()
	st.sessions[s.ID] = s
	st.mu.Unlock()
	return s
}

// Get returns the session and refreshes its idle timer. Expired sessions
// are evicted on access.
func (st *Store) Get(id string) (*Session, bool) {
	st.mu.Lock()
	s, ok := st.sessions[id]
	if ok && time.Since(s.idleSince()) > st.ttl {
		delete(st.sessions, id)
		ok = false
	}
	st.mu.Unlock()
	if !ok {
		return nil, false
	}
	s.touch()
	return s, true
}

func (st *Store) Delete(id string) {
	st.mu.Lock()
	delete(st.sessions, id)
	st.mu.Unlock()
}

// StartPurge evicts expired sessions every five minutes until ctx ends.
func (st *Store) StartPurge(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				st.mu.Lock()
				for id, s := range st.sessions {
					if time.Since(s.idleSince()) > st.ttl {
						delete(st.sessions, id)
					}
				}
				st.mu.Unlock()
			}
		}
	}()
}
