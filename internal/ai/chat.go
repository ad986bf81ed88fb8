package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"statement-agent/internal/core"
)

// Low but non-zero temperature: replies should read naturally while intent
// classification stays stable.
const chatTemperature = 0.3

// chatReplyWire mirrors core.ChatReply with schema annotations. Exactly one
// payload accompanies its action, none for undo/query.
type chatReplyWire struct {
	ResponseText         string           `json:"response_text" jsonschema_description:"Your reply to the user, in the user's language. For mutating actions this is the confirmation question."`
	Action               string           `json:"action" jsonschema:"enum=update,enum=add,enum=undo,enum=query" jsonschema_description:"Intent: update an existing transaction field, add a new transaction, undo the last change, or answer a question"`
	Update               *updateWire      `json:"update,omitempty" jsonschema_description:"Required when action is update"`
	Add                  *transactionWire `json:"add,omitempty" jsonschema_description:"Required when action is add"`
	ConfirmationRequired bool             `json:"confirmation_required" jsonschema_description:"True for every mutating action (update, add, undo): the user must confirm before it is applied"`
}

type updateWire struct {
	Index int     `json:"index" jsonschema_description:"Zero-based position of the transaction in the current table"`
	Field string  `json:"field" jsonschema:"enum=debit,enum=credit,enum=fee,enum=vat" jsonschema_description:"Which numeric field to change"`
	Value float64 `json:"value" jsonschema_description:"The new non-negative value"`
}

const chatPromptHeader = `You are a careful accounting assistant helping a user review a bank statement that was converted to a transaction table.
You receive the current table, the original statement text, and the conversation so far.

Classify the user's request:
- "query": they ask about the data. Answer concisely from the table and statement text.
- "update": they want to change a debit/credit/fee/vat value of one existing row. Fill "update" with the zero-based row index, the field, and the new value.
- "add": they want a new transaction appended. Fill "add"; leave unknown amounts 0 and unknown strings "".
- "undo": they want to revert the last change.

For every mutating action set confirmation_required to true and make response_text a short question restating exactly what will change, so the user can answer yes or no.
If a pasted image accompanies the message, read the transaction details from it.
Never invent numbers: when the request is ambiguous, treat it as a query and ask what they mean.
Reply in the user's language (usually Vietnamese).`

// Converse runs one turn of the review conversation.
func (a *Agent) Converse(ctx context.Context, in core.ConverseInput) (*core.ChatReply, error) {
	ledgerJSON, err := json.Marshal(in.Ledger)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal ledger: %w", err)
	}

	var sb strings.Builder
	sb.WriteString(chatPromptHeader)
	sb.WriteString("\n\nCurrent transaction table (JSON):\n")
	sb.Write(ledgerJSON)
	sb.WriteString("\n\nOriginal statement text:\n")
	sb.WriteString(in.RawText)
	if len(in.Transcript) > 0 {
		sb.WriteString("\n\nConversation so far:\n")
		for _, m := range in.Transcript {
			sb.WriteString(string(m.Role))
			sb.WriteString(": ")
			sb.WriteString(m.Text)
			sb.WriteByte('\n')
		}
	}
	sb.WriteString("\nUser message: ")
	sb.WriteString(in.Message)

	var wire chatReplyWire
	err = a.structured(ctx, userMessage(sb.String(), in.Images),
		"statement_chat_reply",
		"The assistant's reply and classified intent for one chat turn",
		chatTemperature, &wire)
	if err != nil {
		return nil, err
	}
	return wire.toReply()
}

func (w chatReplyWire) toReply() (*core.ChatReply, error) {
	reply := &core.ChatReply{
		ResponseText:         w.ResponseText,
		ConfirmationRequired: w.ConfirmationRequired,
	}

	switch core.Intent(w.Action) {
	case core.IntentQuery:
		reply.Action = core.IntentQuery
	case core.IntentUndo:
		reply.Action = core.IntentUndo
	case core.IntentUpdate:
		if w.Update == nil {
			return nil, fmt.Errorf("update action without update payload")
		}
		field := core.Field(w.Update.Field)
		if !core.ValidField(field) {
			return nil, fmt.Errorf("update action with unknown field %q", w.Update.Field)
		}
		reply.Action = core.IntentUpdate
		reply.Update = &core.UpdateMutation{
			Index: w.Update.Index,
			Field: field,
			Value: toDecimal(w.Update.Value, false),
		}
	case core.IntentAdd:
		if w.Add == nil {
			return nil, fmt.Errorf("add action without add payload")
		}
		tx := w.Add.toTransaction()
		reply.Action = core.IntentAdd
		reply.Add = &tx
	default:
		return nil, fmt.Errorf("unknown action %q", w.Action)
	}
	return reply, nil
}
