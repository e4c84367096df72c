package http

import (
	"net/http"

	"fintrack/internal/core"
)

type budgetRequest struct {
	CategoryID int64  `json:"category_id"`
	Amount     string `json:"amount"`
	Month      int    `json:"month,omitempty"`
	Year       int    `json:"year,omitempty"`
}

func (s *Server) handleCreateBudget(w http.ResponseWriter, r *http.Request) {
	owner, err := ownerID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req budgetRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	amount, err := core.ParseAmount(req.Amount)
	if err != nil {
		writeError(w, r, err)
		return
	}

	b, err := s.budgets.Create(r.Context(), owner, req.CategoryID, amount, req.Month, req.Year)
	if err != nil {
		writeError(w, r, err)
		return
	}

	s.reports.Invalidate(owner)
	writeJSON(w, http.StatusCreated, toBudget(b))
}

func (s *Server) handleListBudgets(w http.ResponseWriter, r *http.Request) {
	owner, err := ownerID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	month, year := parseYearMonth(r)
	statuses, err := s.budgets.ListWithSpending(r.Context(), owner, month, year)
	if err != nil {
		writeError(w, r, err)
		return
	}

	out := make([]budgetStatusJSON, 0, len(statuses))
	for _, st := range statuses {
		out = append(out, toBudgetStatus(st))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleBudgetSummary(w http.ResponseWriter, r *http.Request) {
	owner, err := ownerID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	month, year := parseYearMonth(r)
	summary, err := s.budgets.GetBudgetSummary(r.Context(), owner, month, year)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toBudgetSummary(summary))
}

type budgetAmountRequest struct {
	Amount string `json:"amount"`
}

func (s *Server) handleUpdateBudget(w http.ResponseWriter, r *http.Request) {
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

	var req budgetAmountRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	amount, err := core.ParseAmount(req.Amount)
	if err != nil {
		writeError(w, r, err)
		return
	}

	b, err := s.budgets.UpdateAmount(r.Context(), owner, id, amount)
	if err != nil {
		writeError(w, r, err)
		return
	}

	s.reports.Invalidate(owner)
	writeJSON(w, http.StatusOK, toBudget(b))
}

func (s *Server) handleDeleteBudget(w http.ResponseWriter, r *http.Request) {
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

	if err := s.budgets.Delete(r.Context(), owner, id); err != nil {
		writeError(w, r, err)
		return
	}

	s.reports.Invalidate(owner)
	writeJSON(w, http.StatusNoContent, nil)
}

type copyBudgetsRequest struct {
	Month int `json:"month"`
	Year  int `json:"year"`
}

// handleCopyBudgets carries the given month's budgets into the next
// month, skipping categories already budgeted there.
func (s *Server) handleCopyBudgets(w http.ResponseWriter, r *http.Request) {
	owner, err := ownerID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req copyBudgetsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	budgets, err := s.budgets.CopyToNextMonth(r.Context(), owner, req.Month, req.Year)
	if err != nil {
		writeError(w, r, err)
		return
	}

	out := make([]budgetJSON, 0, len(budgets))
	for _, b := range budgets {
		out = append(out, toBudget(b))
	}

	s.reports.Invalidate(owner)
	writeJSON(w, http.StatusOK, out)
}
