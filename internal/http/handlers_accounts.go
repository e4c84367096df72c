package http

import (
	"net/http"

	"fintrack/internal/core"
)

type accountRequest struct {
	Name           string `json:"name"`
	Type           string `json:"type"`
	OpeningBalance string `json:"opening_balance,omitempty"`
}

func (s *Server) handleCreateAccount(w http.ResponseWriter, r *http.Request) {
	owner, err := ownerID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req accountRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	opening := core.Money{}
	if req.OpeningBalance != "" {
		opening, err = core.ParseBalance(req.OpeningBalance)
		if err != nil {
			writeError(w, r, err)
			return
		}
	}

	account, err := s.ledger.CreateAccount(r.Context(), owner,
		sanitizeInput(req.Name), core.AccountType(req.Type), opening)
	if err != nil {
		writeError(w, r, err)
		return
	}

	s.reports.Invalidate(owner)
	writeJSON(w, http.StatusCreated, toAccount(account))
}

func (s *Server) handleListAccounts(w http.ResponseWriter, r *http.Request) {
	owner, err := ownerID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	accounts, err := s.ledger.ListAccounts(r.Context(), owner)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toAccounts(accounts))
}

func (s *Server) handleGetAccount(w http.ResponseWriter, r *http.Request) {
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

	account, err := s.ledger.GetAccount(r.Context(), owner, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toAccount(account))
}

func (s *Server) handleUpdateAccount(w http.ResponseWriter, r *http.Request) {
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

	var req accountRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	account, err := s.ledger.UpdateAccount(r.Context(), owner, id,
		sanitizeInput(req.Name), core.AccountType(req.Type))
	if err != nil {
		writeError(w, r, err)
		return
	}

	s.reports.Invalidate(owner)
	writeJSON(w, http.StatusOK, toAccount(account))
}

func (s *Server) handleDeactivateAccount(w http.ResponseWriter, r *http.Request) {
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

	if err := s.ledger.DeactivateAccount(r.Context(), owner, id); err != nil {
		writeError(w, r, err)
		return
	}

	s.reports.Invalidate(owner)
	writeJSON(w, http.StatusNoContent, nil)
}

func (s *Server) handleRecalculateBalance(w http.ResponseWriter, r *http.Request) {
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

	account, err := s.ledger.RecalculateBalance(r.Context(), owner, id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	s.reports.Invalidate(owner)
	writeJSON(w, http.StatusOK, toAccount(account))
}

func (s *Server) handleAccountsSummary(w http.ResponseWriter, r *http.Request) {
	owner, err := ownerID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	summary, err := s.ledger.GetAccountsSummary(r.Context(), owner)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toAccountsSummary(summary))
}
