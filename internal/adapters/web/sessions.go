package web

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"statement-agent/internal/core"
	"statement-agent/internal/export"
)

func (h *Handler) getSession(w http.ResponseWriter, r *http.Request) {
	view, err := h.svc.GetSession(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, view)
}

type updateTransactionRequest struct {
	Field string          `json:"field"`
	Value decimal.Decimal `json:"value"`
}

// updateTransaction sets one numeric field of one transaction directly,
// bypassing the chat confirmation flow.
func (h *Handler) updateTransaction(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		writeError(w, r, "invalid transaction index", "BAD_REQUEST", http.StatusBadRequest)
		return
	}

	var req updateTransactionRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	field := core.Field(req.Field)
	if !core.ValidField(field) {
		writeError(w, r, "invalid field: "+req.Field, "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	if req.Value.IsNegative() {
		writeError(w, r, "value must not be negative", "BAD_REQUEST", http.StatusBadRequest)
		return
	}

	view, err := h.svc.UpdateTransactionField(r.Context(), chi.URLParam(r, "sessionID"), index, field, req.Value)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, view)
}

type addTransactionRequest struct {
	TransactionCode string          `json:"transaction_code"`
	Date            string          `json:"date"`
	Description     string          `json:"description"`
	Debit           decimal.Decimal `json:"debit"`
	Credit          decimal.Decimal `json:"credit"`
	Fee             decimal.Decimal `json:"fee"`
	VAT             decimal.Decimal `json:"vat"`
}

func (h *Handler) addTransaction(w http.ResponseWriter, r *http.Request) {
	var req addTransactionRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	tx := core.Transaction{
		TransactionCode: req.TransactionCode,
		Date:            req.Date,
		Description:     req.Description,
		Debit:           req.Debit,
		Credit:          req.Credit,
		Fee:             req.Fee,
		VAT:             req.VAT,
	}

	view, err := h.svc.AddTransaction(r.Context(), chi.URLParam(r, "sessionID"), tx)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, view)
}

func (h *Handler) undo(w http.ResponseWriter, r *http.Request) {
	view, err := h.svc.Undo(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, view)
}

// export streams the ledger in the requested format with a download
// disposition. Format defaults to csv.
func (h *Handler) export(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("format")
	if name == "" {
		name = "csv"
	}
	format, err := export.ParseFormat(name)
	if err != nil {
		writeError(w, r, err.Error(), "BAD_REQUEST", http.StatusBadRequest)
		return
	}

	data, contentType, err := h.svc.Export(r.Context(), chi.URLParam(r, "sessionID"), format)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "sao-ke."+string(format)))
	w.Write(data)
}
