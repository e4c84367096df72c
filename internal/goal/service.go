// Package goal implements the savings-goal funding state machine.
// current_amount moves only through allocations: deposits append a
// positive allocation, withdrawals a negated one, and the completed
// flag follows current vs target after every change.
package goal

import (
	"context"
	"log/slog"

	"fintrack/internal/core"
	"fintrack/internal/storage"
)

// EventPublisher receives notifications after an allocation has
// committed. Best-effort; failures are logged and swallowed.
type EventPublisher interface {
	PublishGoalEvent(ctx context.Context, kind string, goalID, allocationID int64) error
}

type Service struct {
	store  *storage.Repository
	events EventPublisher
	clock  core.Clock
}

func NewService(store *storage.Repository, events EventPublisher, clock core.Clock) *Service {
	if clock == nil {
		clock = core.SystemClock()
	}
	return &Service{store: store, events: events, clock: clock}
}

// CreateParams are the goal creation inputs. A zero MonthlyTarget with
// a deadline set derives the target automatically.
type CreateParams struct {
	Name          string
	TargetAmount  core.Money
	AccountID     *int64
	Deadline      core.Date
	MonthlyTarget core.Money
}

// FundParams are the optional allocation inputs shared by deposits and
// withdrawals. A nil AccountID falls back to the goal's linked
// account; a zero Date means today.
type FundParams struct {
	AccountID *int64
	Notes     string
	Date      core.Date
}

// Status is a goal with its derived read-side fields.
type Status struct {
	Goal          core.Goal
	Progress      float64
	Remaining     core.Money
	DaysRemaining *int
}

// Summary aggregates the owner's active goals.
type Summary struct {
	Goals           []Status
	TotalTarget     core.Money
	TotalSaved      core.Money
	OverallProgress float64
}

// Create stores a new goal. When a deadline is given without an
// explicit monthly target, the target is derived as
// (target - current) / monthsUntilDeadline, with a floor of one month
// so near-term and past deadlines never divide by zero.
func (s *Service) Create(ctx context.Context, ownerID int64, p CreateParams) (core.Goal, error) {
	g := core.Goal{
		OwnerID:       ownerID,
		AccountID:     p.AccountID,
		Name:          p.Name,
		TargetAmount:  p.TargetAmount,
		Deadline:      p.Deadline,
		MonthlyTarget: p.MonthlyTarget,
	}
	if err := g.Validate(); err != nil {
		return core.Goal{}, err
	}
	if p.AccountID != nil {
		if _, err := s.store.Queries().GetAccount(ctx, ownerID, *p.AccountID); err != nil {
			return core.Goal{}, err
		}
	}

	if !g.Deadline.IsEmpty() && g.MonthlyTarget.IsZero() {
		g.MonthlyTarget = deriveMonthlyTarget(g, core.DateOf(s.clock.Now()))
	}

	if err := s.store.Queries().CreateGoal(ctx, &g); err != nil {
		return core.Goal{}, err
	}
	slog.InfoContext(ctx, "goal created",
		"goal_id", g.ID, "target_cents", g.TargetAmount.Cents,
		"monthly_target_cents", g.MonthlyTarget.Cents)
	return g, nil
}

// deriveMonthlyTarget spreads the outstanding amount over the whole
// months left until the deadline, half-up rounded to a cent.
func deriveMonthlyTarget(g core.Goal, today core.Date) core.Money {
	months := core.MonthsBetween(today, g.Deadline)
	if months < 1 {
		months = 1
	}
	outstanding := g.TargetAmount.Cents - g.CurrentAmount.Cents
	if outstanding <= 0 {
		return core.Money{}
	}
	return core.Money{Cents: (outstanding + int64(months)/2) / int64(months)}
}

func (s *Service) Get(ctx context.Context, ownerID, id int64) (core.Goal, error) {
	return s.store.Queries().GetGoal(ctx, ownerID, id)
}

func (s *Service) List(ctx context.Context, ownerID int64, includeCompleted bool) ([]core.Goal, error) {
	return s.store.Queries().ListGoals(ctx, ownerID, includeCompleted)
}

// UpdateParams carry the editable goal fields; nil means keep.
// CurrentAmount and the completed flag are not editable anywhere but
// the allocation path.
type UpdateParams struct {
	Name          *string
	TargetAmount  *core.Money
	AccountID     *int64
	Deadline      *core.Date
	MonthlyTarget *core.Money
}

func (s *Service) Update(ctx context.Context, ownerID, id int64, p UpdateParams) (core.Goal, error) {
	g, err := s.store.Queries().GetGoal(ctx, ownerID, id)
	if err != nil {
		return core.Goal{}, err
	}
	if p.Name != nil {
		g.Name = *p.Name
	}
	if p.TargetAmount != nil {
		g.TargetAmount = *p.TargetAmount
	}
	if p.AccountID != nil {
		g.AccountID = p.AccountID
	}
	if p.Deadline != nil {
		g.Deadline = *p.Deadline
	}
	if p.MonthlyTarget != nil {
		g.MonthlyTarget = *p.MonthlyTarget
	}
	if err := g.Validate(); err != nil {
		return core.Goal{}, err
	}
	if err := s.store.Queries().UpdateGoal(ctx, g); err != nil {
		return core.Goal{}, err
	}
	return g, nil
}

func (s *Service) Delete(ctx context.Context, ownerID, id int64) error {
	return s.store.Queries().DeleteGoal(ctx, ownerID, id)
}

// AddFunds appends a positive allocation and advances the goal,
// flipping it to completed when the target is reached. Allocation and
// counter commit together.
func (s *Service) AddFunds(ctx context.Context, ownerID, goalID int64, amount core.Money, p FundParams) (core.GoalAllocation, error) {
	if err := amount.Validate(); err != nil {
		return core.GoalAllocation{}, err
	}

	var allocation core.GoalAllocation
	err := s.store.InTx(ctx, func(q *storage.Queries) error {
		g, err := q.GetGoal(ctx, ownerID, goalID)
		if err != nil {
			return err
		}

		allocation = s.newAllocation(g, amount, p)
		if err := q.CreateAllocation(ctx, &allocation); err != nil {
			return err
		}

		current, err := q.AdjustGoalCurrent(ctx, goalID, amount.Cents)
		if err != nil {
			return err
		}
		if current >= g.TargetAmount.Cents && !g.Completed {
			return q.SetGoalCompleted(ctx, goalID, true)
		}
		return nil
	})
	if err != nil {
		return core.GoalAllocation{}, err
	}

	slog.InfoContext(ctx, "goal funded",
		"goal_id", goalID, "allocation_id", allocation.ID, "amount_cents", amount.Cents)
	s.publish(ctx, "funded", goalID, allocation.ID)
	return allocation, nil
}

// WithdrawFunds appends a negated allocation and reduces the goal,
// flipping a completed goal back to active when it drops below target.
// The amount must not exceed the currently saved amount; the check
// runs before the unit of work opens, matching the boundary-validation
// placement of the original behavior (see DESIGN.md on the concurrency
// caveat).
func (s *Service) WithdrawFunds(ctx context.Context, ownerID, goalID int64, amount core.Money, p FundParams) (core.GoalAllocation, error) {
	if err := amount.Validate(); err != nil {
		return core.GoalAllocation{}, err
	}
	g, err := s.store.Queries().GetGoal(ctx, ownerID, goalID)
	if err != nil {
		return core.GoalAllocation{}, err
	}
	if amount.Cents > g.CurrentAmount.Cents {
		return core.GoalAllocation{}, core.ErrInsufficientFunds
	}

	if p.Notes == "" {
		p.Notes = "Withdrawal"
	}

	var allocation core.GoalAllocation
	err = s.store.InTx(ctx, func(q *storage.Queries) error {
		allocation = s.newAllocation(g, amount.Neg(), p)
		if err := q.CreateAllocation(ctx, &allocation); err != nil {
			return err
		}

		current, err := q.AdjustGoalCurrent(ctx, goalID, -amount.Cents)
		if err != nil {
			return err
		}
		if current < g.TargetAmount.Cents && g.Completed {
			return q.SetGoalCompleted(ctx, goalID, false)
		}
		return nil
	})
	if err != nil {
		return core.GoalAllocation{}, err
	}

	slog.InfoContext(ctx, "goal withdrawal",
		"goal_id", goalID, "allocation_id", allocation.ID, "amount_cents", amount.Cents)
	s.publish(ctx, "withdrawn", goalID, allocation.ID)
	return allocation, nil
}

func (s *Service) newAllocation(g core.Goal, amount core.Money, p FundParams) core.GoalAllocation {
	accountID := p.AccountID
	if accountID == nil {
		accountID = g.AccountID
	}
	date := p.Date
	if date.IsEmpty() {
		date = core.DateOf(s.clock.Now())
	}
	return core.GoalAllocation{
		GoalID:    g.ID,
		OwnerID:   g.OwnerID,
		AccountID: accountID,
		Amount:    amount,
		Notes:     p.Notes,
		Date:      date,
	}
}

// Allocations returns the goal's funding history, newest first. The
// goal lookup enforces owner scope before the history is read.
func (s *Service) Allocations(ctx context.Context, ownerID, goalID int64) ([]core.GoalAllocation, error) {
	if _, err := s.store.Queries().GetGoal(ctx, ownerID, goalID); err != nil {
		return nil, err
	}
	return s.store.Queries().ListAllocations(ctx, ownerID, goalID)
}

// StatusOf attaches the derived read-side fields to a goal.
func (s *Service) StatusOf(g core.Goal) Status {
	return Status{
		Goal:          g,
		Progress:      g.Progress(),
		Remaining:     g.Remaining(),
		DaysRemaining: g.DaysRemaining(s.clock.Now()),
	}
}

// GetGoalsSummary aggregates the owner's active goals.
func (s *Service) GetGoalsSummary(ctx context.Context, ownerID int64) (Summary, error) {
	goals, err := s.store.Queries().ListGoals(ctx, ownerID, false)
	if err != nil {
		return Summary{}, err
	}

	var totalTarget, totalSaved core.Money
	statuses := make([]Status, 0, len(goals))
	for _, g := range goals {
		totalTarget = totalTarget.Add(g.TargetAmount)
		totalSaved = totalSaved.Add(g.CurrentAmount)
		statuses = append(statuses, s.StatusOf(g))
	}

	overall := 0.0
	if totalTarget.Cents > 0 {
		overall = float64(totalSaved.Cents) / float64(totalTarget.Cents) * 100
		if overall > 100 {
			overall = 100
		}
	}

	return Summary{
		Goals:           statuses,
		TotalTarget:     totalTarget,
		TotalSaved:      totalSaved,
		OverallProgress: overall,
	}, nil
}

// TopGoals returns the active goals with the nearest deadlines.
func (s *Service) TopGoals(ctx context.Context, ownerID int64, limit int) ([]core.Goal, error) {
	goals, err := s.store.Queries().ListGoals(ctx, ownerID, false)
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(goals) > limit {
		goals = goals[:limit]
	}
	return goals, nil
}

func (s *Service) publish(ctx context.Context, kind string, goalID, allocationID int64) {
	if s.events == nil {
		return
	}
	if err := s.events.PublishGoalEvent(ctx, kind, goalID, allocationID); err != nil {
		slog.ErrorContext(ctx, "failed to publish goal event",
			"kind", kind, "goal_id", goalID, "error", err)
	}
}
