package http

import (
	"fmt"
	"net/http"
	"strings"

	"fintrack/internal/core"
	"fintrack/internal/ledger"
	"fintrack/internal/storage"
)

type transactionRequest struct {
	Type        string `json:"type"`
	Amount      string `json:"amount"`
	AccountID   int64  `json:"account_id"`
	ToAccountID *int64 `json:"to_account_id,omitempty"`
	CategoryID  *int64 `json:"category_id,omitempty"`
	Description string `json:"description"`
	Notes       string `json:"notes,omitempty"`
	Date        string `json:"date"`
}

// draftFromRequest maps the wire shape onto the typed draft for the
// requested transaction kind.
func draftFromRequest(req transactionRequest) (core.TransactionDraft, error) {
	amount, err := core.ParseAmount(req.Amount)
	if err != nil {
		return nil, err
	}
	date, err := core.ParseDate(req.Date)
	if err != nil {
		return nil, err
	}

	description := sanitizeInput(req.Description)
	notes := sanitizeInput(req.Notes)

	switch core.TransactionType(req.Type) {
	case core.TransactionIncome:
		var categoryID int64
		if req.CategoryID != nil {
			categoryID = *req.CategoryID
		}
		return core.IncomeDraft{
			AccountID:   req.AccountID,
			CategoryID:  categoryID,
			Amount:      amount,
			Description: description,
			Notes:       notes,
			Date:        date,
		}, nil
	case core.TransactionExpense:
		var categoryID int64
		if req.CategoryID != nil {
			categoryID = *req.CategoryID
		}
		return core.ExpenseDraft{
			AccountID:   req.AccountID,
			CategoryID:  categoryID,
			Amount:      amount,
			Description: description,
			Notes:       notes,
			Date:        date,
		}, nil
	case core.TransactionTransfer:
		var toAccountID int64
		if req.ToAccountID != nil {
			toAccountID = *req.ToAccountID
		}
		return core.TransferDraft{
			FromAccountID: req.AccountID,
			ToAccountID:   toAccountID,
			Amount:        amount,
			Description:   description,
			Notes:         notes,
			Date:          date,
		}, nil
	default:
		return nil, fmt.Errorf("%w: unknown transaction type %q", core.ErrValidation, req.Type)
	}
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	owner, err := ownerID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req transactionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	draft, err := draftFromRequest(req)
	if err != nil {
		writeError(w, r, err)
		return
	}

	transaction, err := s.ledger.CreateTransaction(r.Context(), owner, draft)
	if err != nil {
		writeError(w, r, err)
		return
	}

	s.reports.Invalidate(owner)
	writeJSON(w, http.StatusCreated, toTransaction(transaction))
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	owner, err := ownerID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	filter := storage.TransactionFilter{
		Type:       core.TransactionType(strings.TrimSpace(r.URL.Query().Get("type"))),
		AccountID:  queryInt64(r, "account_id"),
		CategoryID: queryInt64(r, "category_id"),
		Month:      queryInt(r, "month"),
		Year:       queryInt(r, "year"),
		Search:     sanitizeInput(r.URL.Query().Get("q")),
		Limit:      queryInt(r, "limit"),
	}

	transactions, err := s.ledger.ListTransactions(r.Context(), owner, filter)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toTransactions(transactions))
}

func (s *Server) handleGetTransaction(w http.ResponseWriter, r *http.Request) {
	owner, err := ownerID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	transaction, err := s.ledger.GetTransaction(r.Context(), owner, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toTransaction(transaction))
}

type transactionPatchRequest struct {
	Amount      *string `json:"amount,omitempty"`
	AccountID   *int64  `json:"account_id,omitempty"`
	ToAccountID *int64  `json:"to_account_id,omitempty"`
	CategoryID  *int64  `json:"category_id,omitempty"`
	Description *string `json:"description,omitempty"`
	Notes       *string `json:"notes,omitempty"`
	Date        *string `json:"date,omitempty"`
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	owner, err := ownerID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req transactionPatchRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	patch := ledger.TransactionPatch{
		AccountID:   req.AccountID,
		ToAccountID: req.ToAccountID,
		CategoryID:  req.CategoryID,
	}
	if req.Amount != nil {
		amount, err := core.ParseAmount(*req.Amount)
		if err != nil {
			writeError(w, r, err)
			return
		}
		patch.Amount = &amount
	}
	if req.Description != nil {
		description := sanitizeInput(*req.Description)
		patch.Description = &description
	}
	if req.Notes != nil {
		notes := sanitizeInput(*req.Notes)
		patch.Notes = &notes
	}
	if req.Date != nil {
		date, err := core.ParseDate(*req.Date)
		if err != nil {
			writeError(w, r, err)
			return
		}
		patch.Date = &date
	}

	transaction, err := s.ledger.UpdateTransaction(r.Context(), owner, id, patch)
	if err != nil {
		writeError(w, r, err)
		return
	}

	s.reports.Invalidate(owner)
	writeJSON(w, http.StatusOK, toTransaction(transaction))
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	owner, err := ownerID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := s.ledger.DeleteTransaction(r.Context(), owner, id); err != nil {
		writeError(w, r, err)
		return
	}

	s.reports.Invalidate(owner)
	writeJSON(w, http.StatusNoContent, nil)
}

func (s *Server) handleMonthlySummary(w http.ResponseWriter, r *http.Request) {
	owner, err := ownerID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	month, year := parseYearMonth(r)
	summary, err := s.ledger.GetMonthlySummary(r.Context(), owner, month, year)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, monthlySummaryJSON{
		Month:    summary.Month,
		Year:     summary.Year,
		Income:   toMoney(summary.Income),
		Expenses: toMoney(summary.Expenses),
		Net:      toMoney(summary.Net),
	})
}
