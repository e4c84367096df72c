package http

import (
	"context"
	"net/http"

	"fintrack/internal/core"
	"fintrack/internal/goal"
)

type goalRequest struct {
	Name          string `json:"name"`
	TargetAmount  string `json:"target_amount"`
	AccountID     *int64 `json:"account_id,omitempty"`
	Deadline      string `json:"deadline,omitempty"`
	MonthlyTarget string `json:"monthly_target,omitempty"`
}

func (s *Server) handleCreateGoal(w http.ResponseWriter, r *http.Request) {
	owner, err := ownerID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req goalRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	target, err := core.ParseAmount(req.TargetAmount)
	if err != nil {
		writeError(w, r, err)
		return
	}
	deadline, err := parseOptionalDate(req.Deadline)
	if err != nil {
		writeError(w, r, err)
		return
	}
	monthlyTarget := core.Money{}
	if req.MonthlyTarget != "" {
		monthlyTarget, err = core.ParseAmount(req.MonthlyTarget)
		if err != nil {
			writeError(w, r, err)
			return
		}
	}

	g, err := s.goals.Create(r.Context(), owner, goal.CreateParams{
		Name:          sanitizeInput(req.Name),
		TargetAmount:  target,
		AccountID:     req.AccountID,
		Deadline:      deadline,
		MonthlyTarget: monthlyTarget,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	s.reports.Invalidate(owner)
	writeJSON(w, http.StatusCreated, toGoal(s.goals.StatusOf(g)))
}

func (s *Server) handleListGoals(w http.ResponseWriter, r *http.Request) {
	owner, err := ownerID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	includeCompleted := r.URL.Query().Get("include_completed") == "true"
	goals, err := s.goals.List(r.Context(), owner, includeCompleted)
	if err != nil {
		writeError(w, r, err)
		return
	}

	out := make([]goalJSON, 0, len(goals))
	for _, g := range goals {
		out = append(out, toGoal(s.goals.StatusOf(g)))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetGoal(w http.ResponseWriter, r *http.Request) {
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

	g, err := s.goals.Get(r.Context(), owner, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toGoal(s.goals.StatusOf(g)))
}

type goalPatchRequest struct {
	Name          *string `json:"name,omitempty"`
	TargetAmount  *string `json:"target_amount,omitempty"`
	AccountID     *int64  `json:"account_id,omitempty"`
	Deadline      *string `json:"deadline,omitempty"`
	MonthlyTarget *string `json:"monthly_target,omitempty"`
}

func (s *Server) handleUpdateGoal(w http.ResponseWriter, r *http.Request) {
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

	var req goalPatchRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	params := goal.UpdateParams{AccountID: req.AccountID}
	if req.Name != nil {
		name := sanitizeInput(*req.Name)
		params.Name = &name
	}
	if req.TargetAmount != nil {
		target, err := core.ParseAmount(*req.TargetAmount)
		if err != nil {
			writeError(w, r, err)
			return
		}
		params.TargetAmount = &target
	}
	if req.Deadline != nil {
		deadline, err := parseOptionalDate(*req.Deadline)
		if err != nil {
			writeError(w, r, err)
			return
		}
		params.Deadline = &deadline
	}
	if req.MonthlyTarget != nil {
		monthlyTarget, err := core.ParseAmount(*req.MonthlyTarget)
		if err != nil {
			writeError(w, r, err)
			return
		}
		params.MonthlyTarget = &monthlyTarget
	}

	g, err := s.goals.Update(r.Context(), owner, id, params)
	if err != nil {
		writeError(w, r, err)
		return
	}

	s.reports.Invalidate(owner)
	writeJSON(w, http.StatusOK, toGoal(s.goals.StatusOf(g)))
}

func (s *Server) handleDeleteGoal(w http.ResponseWriter, r *http.Request) {
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

	if err := s.goals.Delete(r.Context(), owner, id); err != nil {
		writeError(w, r, err)
		return
	}

	s.reports.Invalidate(owner)
	writeJSON(w, http.StatusNoContent, nil)
}

type fundRequest struct {
	Amount    string `json:"amount"`
	AccountID *int64 `json:"account_id,omitempty"`
	Notes     string `json:"notes,omitempty"`
	Date      string `json:"date,omitempty"`
}

func (s *Server) handleAddFunds(w http.ResponseWriter, r *http.Request) {
	s.handleFundMovement(w, r, s.goals.AddFunds)
}

func (s *Server) handleWithdrawFunds(w http.ResponseWriter, r *http.Request) {
	s.handleFundMovement(w, r, s.goals.WithdrawFunds)
}

func (s *Server) handleFundMovement(
	w http.ResponseWriter,
	r *http.Request,
	move func(ctx context.Context, ownerID, goalID int64, amount core.Money, p goal.FundParams) (core.GoalAllocation, error),
) {
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

	var req fundRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	amount, err := core.ParseAmount(req.Amount)
	if err != nil {
		writeError(w, r, err)
		return
	}
	date, err := parseOptionalDate(req.Date)
	if err != nil {
		writeError(w, r, err)
		return
	}

	allocation, err := move(r.Context(), owner, id, amount, goal.FundParams{
		AccountID: req.AccountID,
		Notes:     sanitizeInput(req.Notes),
		Date:      date,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	s.reports.Invalidate(owner)
	writeJSON(w, http.StatusCreated, toAllocation(allocation))
}

func (s *Server) handleListAllocations(w http.ResponseWriter, r *http.Request) {
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

	allocations, err := s.goals.Allocations(r.Context(), owner, id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	out := make([]allocationJSON, 0, len(allocations))
	for _, a := range allocations {
		out = append(out, toAllocation(a))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGoalsSummary(w http.ResponseWriter, r *http.Request) {
	owner, err := ownerID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	summary, err := s.goals.GetGoalsSummary(r.Context(), owner)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toGoalsSummary(summary))
}
