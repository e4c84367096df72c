package storage

import (
	"context"
	"database/sql"
	"fmt"

	"fintrack/internal/core"
)

const goalColumns = `id, user_id, account_id, name, target_amount_cents,
	current_amount_cents, deadline, monthly_target_cents, is_completed`

func scanGoal(row interface{ Scan(...any) error }) (core.Goal, error) {
	var g core.Goal
	var account sql.NullInt64
	var deadline sql.NullString
	err := row.Scan(&g.ID, &g.OwnerID, &account, &g.Name, &g.TargetAmount.Cents,
		&g.CurrentAmount.Cents, &deadline, &g.MonthlyTarget.Cents, &g.Completed)
	if err != nil {
		return core.Goal{}, err
	}
	if account.Valid {
		g.AccountID = &account.Int64
	}
	if deadline.Valid && deadline.String != "" {
		if g.Deadline, err = core.ParseDate(deadline.String); err != nil {
			return core.Goal{}, fmt.Errorf("goal deadline %q: %w", deadline.String, err)
		}
	}
	return g, nil
}

func nullableDate(d core.Date) any {
	if d.IsEmpty() {
		return nil
	}
	return d.String()
}

func (q *Queries) CreateGoal(ctx context.Context, g *core.Goal) error {
	err := q.db.QueryRowContext(ctx, `
		INSERT INTO goals (user_id, account_id, name, target_amount_cents,
			current_amount_cents, deadline, monthly_target_cents, is_completed)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id`,
		g.OwnerID, nullableID(g.AccountID), g.Name, g.TargetAmount.Cents,
		g.CurrentAmount.Cents, nullableDate(g.Deadline), g.MonthlyTarget.Cents,
		g.Completed).Scan(&g.ID)
	if err != nil {
		return fmt.Errorf("create goal: %w", err)
	}
	return nil
}

func (q *Queries) GetGoal(ctx context.Context, ownerID, id int64) (core.Goal, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT `+goalColumns+` FROM goals WHERE id = ? AND user_id = ?`, id, ownerID)
	g, err := scanGoal(row)
	if err == sql.ErrNoRows {
		return core.Goal{}, fmt.Errorf("goal %d: %w", id, core.ErrNotFound)
	}
	if err != nil {
		return core.Goal{}, fmt.Errorf("get goal: %w", err)
	}
	return g, nil
}

// GetGoalAnyOwner loads a goal without owner scoping, for background
// consumers that receive only the goal ID.
func (q *Queries) GetGoalAnyOwner(ctx context.Context, id int64) (core.Goal, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT `+goalColumns+` FROM goals WHERE id = ?`, id)
	g, err := scanGoal(row)
	if err == sql.ErrNoRows {
		return core.Goal{}, fmt.Errorf("goal %d: %w", id, core.ErrNotFound)
	}
	if err != nil {
		return core.Goal{}, fmt.Errorf("get goal: %w", err)
	}
	return g, nil
}

// ListGoals orders by deadline (no-deadline goals last). Completed
// goals are excluded unless asked for.
func (q *Queries) ListGoals(ctx context.Context, ownerID int64, includeCompleted bool) ([]core.Goal, error) {
	query := `SELECT ` + goalColumns + ` FROM goals WHERE user_id = ?`
	if !includeCompleted {
		query += ` AND is_completed = 0`
	}
	query += ` ORDER BY deadline IS NULL, deadline`

	rows, err := q.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list goals: %w", err)
	}
	defer rows.Close()

	var goals []core.Goal
	for rows.Next() {
		g, err := scanGoal(rows)
		if err != nil {
			return nil, fmt.Errorf("scan goal: %w", err)
		}
		goals = append(goals, g)
	}
	return goals, rows.Err()
}

// UpdateGoal persists the editable fields. CurrentAmount and the
// completed flag are deliberately not included; those only move
// through the allocation path.
func (q *Queries) UpdateGoal(ctx context.Context, g core.Goal) error {
	res, err := q.db.ExecContext(ctx, `
		UPDATE goals SET name = ?, account_id = ?, target_amount_cents = ?,
			deadline = ?, monthly_target_cents = ?
		WHERE id = ? AND user_id = ?`,
		g.Name, nullableID(g.AccountID), g.TargetAmount.Cents,
		nullableDate(g.Deadline), g.MonthlyTarget.Cents, g.ID, g.OwnerID)
	if err != nil {
		return fmt.Errorf("update goal: %w", err)
	}
	return requireRow(res, "goal", g.ID)
}

func (q *Queries) DeleteGoal(ctx context.Context, ownerID, id int64) error {
	res, err := q.db.ExecContext(ctx,
		`DELETE FROM goals WHERE id = ? AND user_id = ?`, id, ownerID)
	if err != nil {
		return fmt.Errorf("delete goal: %w", err)
	}
	return requireRow(res, "goal", id)
}

// AdjustGoalCurrent applies a signed delta to current_amount in one
// statement and returns the new value.
func (q *Queries) AdjustGoalCurrent(ctx context.Context, goalID, deltaCents int64) (int64, error) {
	var current int64
	err := q.db.QueryRowContext(ctx, `
		UPDATE goals SET current_amount_cents = current_amount_cents + ?
		WHERE id = ?
		RETURNING current_amount_cents`, deltaCents, goalID).Scan(&current)
	if err == sql.ErrNoRows {
		return 0, fmt.Errorf("goal %d: %w", goalID, core.ErrNotFound)
	}
	if err != nil {
		return 0, fmt.Errorf("adjust goal current: %w", err)
	}
	return current, nil
}

func (q *Queries) SetGoalCompleted(ctx context.Context, goalID int64, completed bool) error {
	res, err := q.db.ExecContext(ctx,
		`UPDATE goals SET is_completed = ? WHERE id = ?`, completed, goalID)
	if err != nil {
		return fmt.Errorf("set goal completed: %w", err)
	}
	return requireRow(res, "goal", goalID)
}

func (q *Queries) CreateAllocation(ctx context.Context, a *core.GoalAllocation) error {
	err := q.db.QueryRowContext(ctx, `
		INSERT INTO goal_allocations (goal_id, user_id, account_id, amount_cents, notes, allocation_date)
		VALUES (?, ?, ?, ?, ?, ?)
		RETURNING id`,
		a.GoalID, a.OwnerID, nullableID(a.AccountID), a.Amount.Cents, a.Notes,
		a.Date.String()).Scan(&a.ID)
	if err != nil {
		return fmt.Errorf("create allocation: %w", err)
	}
	return nil
}

// ListAllocations returns a goal's funding history, newest first.
func (q *Queries) ListAllocations(ctx context.Context, ownerID, goalID int64) ([]core.GoalAllocation, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT id, goal_id, user_id, account_id, amount_cents, notes, allocation_date
		FROM goal_allocations
		WHERE goal_id = ? AND user_id = ?
		ORDER BY allocation_date DESC, id DESC`, goalID, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list allocations: %w", err)
	}
	defer rows.Close()

	var allocations []core.GoalAllocation
	for rows.Next() {
		var a core.GoalAllocation
		var account sql.NullInt64
		var date string
		if err := rows.Scan(&a.ID, &a.GoalID, &a.OwnerID, &account, &a.Amount.Cents, &a.Notes, &date); err != nil {
			return nil, fmt.Errorf("scan allocation: %w", err)
		}
		if account.Valid {
			a.AccountID = &account.Int64
		}
		if a.Date, err = core.ParseDate(date); err != nil {
			return nil, fmt.Errorf("allocation date %q: %w", date, err)
		}
		allocations = append(allocations, a)
	}
	return allocations, rows.Err()
}

// SumAllocations totals a goal's signed allocation amounts. Used by
// reconciliation checks; current_amount must always equal this.
func (q *Queries) SumAllocations(ctx context.Context, goalID int64) (int64, error) {
	var sum int64
	err := q.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(amount_cents), 0) FROM goal_allocations WHERE goal_id = ?`,
		goalID).Scan(&sum)
	if err != nil {
		return 0, fmt.Errorf("sum allocations: %w", err)
	}
	return sum, nil
}
