package session

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"statement-agent/internal/core"
)

// Fixed gate replies. The gate speaks Vietnamese like the statements it
// guards; the model handles other languages in its own responses.
const (
	MsgApplied           = "Đã thực hiện xong. Bạn cần chỉnh sửa gì thêm không?"
	MsgCancelled         = "Đã hủy thao tác. Bạn cần gì thêm không?"
	MsgApology           = "Xin lỗi, tôi gặp sự cố khi xử lý yêu cầu. Bạn thử lại giúp nhé."
	MsgImageWhilePending = "Vui lòng xác nhận hoặc hủy thao tác đang chờ trước khi gửi thêm ảnh."
	MsgStaleIndex        = "Giao dịch cần sửa không còn tồn tại nên thao tác đã được hủy."
)

// ErrBusy is returned while a previous chat turn is still in flight.
var ErrBusy = errors.New("a chat turn is already in progress")

// affirmatives is the closed vocabulary that confirms a pending action.
// Matching is exact after trimming and lowercasing; anything else declines.
// A decline is never re-parsed as a new request.
var affirmatives = map[string]bool{
	"có":      true,
	"ok":      true,
	"okay":    true,
	"oke":     true,
	"yes":     true,
	"đồng ý":  true,
	"ừ":       true,
	"ừm":      true,
	"uhm":     true,
	"uh":      true,
	"confirm": true,
	"được":    true,
	"dc":      true,
	"chuẩn":   true,
}

// IsAffirmative reports whether text confirms a pending action.
func IsAffirmative(text string) bool {
	return affirmatives[strings.ToLower(strings.TrimSpace(text))]
}

// Converser is the conversational endpoint of the AI extraction service.
// It is an interface so the gate is testable without the remote model.
type Converser interface {
	Converse(ctx context.Context, in core.ConverseInput) (*core.ChatReply, error)
}

// ChatOutcome is what one chat turn produced.
type ChatOutcome struct {
	Reply                string
	Applied              bool // a pending action was applied this turn
	AwaitingConfirmation bool // a proposal now awaits the next message
}

// Gate is the two-state mutation protocol: Idle, where messages go to the
// conversational endpoint, and AwaitingConfirmation, where the next
// message is resolved locally as a yes/no answer. Every mutating action
// passes through a confirmation turn; the gate fails closed on AI errors.
type Gate struct {
	ai Converser
}

func NewGate(ai Converser) *Gate {
	return &Gate{ai: ai}
}

// HandleMessage runs one chat turn against s. AI failures surface as the
// fixed apologetic reply, never as partial mutations. Returns ErrBusy when
// a previous turn has not finished.
func (g *Gate) HandleMessage(ctx context.Context, s *Session, text string, images []core.Image) (*ChatOutcome, error) {
	if !s.tryBegin() {
		return nil, ErrBusy
	}
	defer s.end()

	if s.Pending() != nil {
		return g.resolvePending(s, text, images), nil
	}
	return g.propose(ctx, s, text, images), nil
}

// resolvePending handles the confirmation turn. This path never calls the
// AI: the yes/no decision is purely local pattern matching.
func (g *Gate) resolvePending(s *Session, text string, images []core.Image) *ChatOutcome {
	// Attached images must wait until the pending proposal is resolved.
	if len(images) > 0 {
		s.appendTurn(text, MsgImageWhilePending)
		return &ChatOutcome{Reply: MsgImageWhilePending, AwaitingConfirmation: true}
	}

	if !IsAffirmative(text) {
		s.clearPending()
		s.appendTurn(text, MsgCancelled)
		return &ChatOutcome{Reply: MsgCancelled}
	}

	reply := MsgApplied
	applied := true
	if err := s.applyPending(); err != nil {
		// The proposal went stale (e.g. the row was removed by an undo
		// between proposal and confirmation). Bounds are re-checked at
		// confirmation time, so the mutation is dropped, not misapplied.
		log.Printf("session %s: pending action dropped: %v", s.ID, err)
		reply = MsgStaleIndex
		applied = false
	}
	s.appendTurn(text, reply)
	return &ChatOutcome{Reply: reply, Applied: applied}
}

// propose handles an Idle-state message: classify intent remotely, then
// either answer (query) or park the mutation behind a confirmation.
func (g *Gate) propose(ctx context.Context, s *Session, text string, images []core.Image) *ChatOutcome {
	in := core.ConverseInput{
		Message:    text,
		Ledger:     s.Ledger(),
		Transcript: s.Transcript(),
		RawText:    s.RawText,
		Images:     images,
	}

	reply, err := g.ai.Converse(ctx, in)
	if err != nil {
		log.Printf("session %s: conversational endpoint: %v", s.ID, err)
		s.appendTurn(text, MsgApology)
		return &ChatOutcome{Reply: MsgApology}
	}

	if reply.Action == core.IntentQuery {
		s.appendTurn(text, reply.ResponseText)
		return &ChatOutcome{Reply: reply.ResponseText}
	}

	// Mutating intent. The model is told to always request confirmation;
	// if it ever does not, the gate still demands one.
	pending := &core.PendingAction{Kind: reply.Action, Update: reply.Update, Add: reply.Add}
	s.setPending(pending)
	s.appendTurn(text, reply.ResponseText)
	return &ChatOutcome{Reply: reply.ResponseText, AwaitingConfirmation: true}
}

func (s *Session) setPending(p *core.PendingAction) {
	s.mu.Lock()
	s.pending = p
	s.mu.Unlock()
}

func (s *Session) clearPending() {
	s.mu.Lock()
	s.pending = nil
	s.mu.Unlock()
}

// applyPending dispatches the pending action to the ledger store and
// clears it. Update indexes are validated against the current ledger, not
// the one the proposal was made on.
func (s *Session) applyPending() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.pending
	s.pending = nil
	if p == nil {
		return nil
	}
	switch p.Kind {
	case core.IntentUpdate:
		if p.Update == nil {
			return fmt.Errorf("update action without update payload")
		}
		return s.ledger.UpdateField(p.Update.Index, p.Update.Field, p.Update.Value)
	case core.IntentAdd:
		if p.Add == nil {
			return fmt.Errorf("add action without add payload")
		}
		s.ledger.AddTransaction(*p.Add)
	case core.IntentUndo:
		s.ledger.Undo()
	}
	return nil
}

func (s *Session) appendTurn(userText, assistantText string) {
	s.mu.Lock()
	s.transcript = append(s.transcript,
		core.ChatMessage{Role: core.RoleUser, Text: userText},
		core.ChatMessage{Role: core.RoleAssistant, Text: assistantText},
	)
	s.mu.Unlock()
}
