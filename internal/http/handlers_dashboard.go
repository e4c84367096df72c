package http

import (
	"net/http"
	"strings"

	"fintrack/internal/core"
)

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	owner, err := ownerID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	dashboard, err := s.reports.GetDashboard(r.Context(), owner)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toDashboard(dashboard))
}

type createUserRequest struct {
	Email string `json:"email"`
}

func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	email := strings.TrimSpace(req.Email)
	if email == "" {
		writeError(w, r, core.ErrValidation)
		return
	}

	id, err := s.store.Queries().CreateUser(r.Context(), email)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]int64{"id": id})
}

type savingsGoalRequest struct {
	Amount string `json:"amount"`
}

func (s *Server) handleGetSavingsGoal(w http.ResponseWriter, r *http.Request) {
	owner, err := ownerID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	cents, err := s.store.Queries().MonthlySavingsGoal(r.Context(), owner)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]moneyJSON{"savings_goal": toMoney(core.Money{Cents: cents})})
}

func (s *Server) handleSetSavingsGoal(w http.ResponseWriter, r *http.Request) {
	owner, err := ownerID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req savingsGoalRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	amount, err := core.ParseAmount(req.Amount)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := s.store.Queries().SetMonthlySavingsGoal(r.Context(), owner, amount.Cents); err != nil {
		writeError(w, r, err)
		return
	}

	s.reports.Invalidate(owner)
	writeJSON(w, http.StatusNoContent, nil)
}
