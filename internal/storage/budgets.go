package storage

import (
	"context"
	"database/sql"
	"fmt"

	"fintrack/internal/core"
)

const budgetColumns = `id, user_id, category_id, amount_cents, month, year`

func scanBudget(row interface{ Scan(...any) error }) (core.Budget, error) {
	var b core.Budget
	err := row.Scan(&b.ID, &b.OwnerID, &b.CategoryID, &b.Amount.Cents, &b.Month, &b.Year)
	return b, err
}

func (q *Queries) CreateBudget(ctx context.Context, b *core.Budget) error {
	err := q.db.QueryRowContext(ctx, `
		INSERT INTO budgets (user_id, category_id, amount_cents, month, year)
		VALUES (?, ?, ?, ?, ?)
		RETURNING id`,
		b.OwnerID, b.CategoryID, b.Amount.Cents, b.Month, b.Year).Scan(&b.ID)
	if err != nil {
		return fmt.Errorf("create budget: %w", err)
	}
	return nil
}

func (q *Queries) GetBudget(ctx context.Context, ownerID, id int64) (core.Budget, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT `+budgetColumns+` FROM budgets WHERE id = ? AND user_id = ?`, id, ownerID)
	b, err := scanBudget(row)
	if err == sql.ErrNoRows {
		return core.Budget{}, fmt.Errorf("budget %d: %w", id, core.ErrNotFound)
	}
	if err != nil {
		return core.Budget{}, fmt.Errorf("get budget: %w", err)
	}
	return b, nil
}

// FindBudget looks a budget up by its natural key. Absence is not an
// error here; copy-to-next-month probes with this.
func (q *Queries) FindBudget(ctx context.Context, ownerID, categoryID int64, month, year int) (core.Budget, bool, error) {
	row := q.db.QueryRowContext(ctx, `
		SELECT `+budgetColumns+` FROM budgets
		WHERE user_id = ? AND category_id = ? AND month = ? AND year = ?`,
		ownerID, categoryID, month, year)
	b, err := scanBudget(row)
	if err == sql.ErrNoRows {
		return core.Budget{}, false, nil
	}
	if err != nil {
		return core.Budget{}, false, fmt.Errorf("find budget: %w", err)
	}
	return b, true, nil
}

func (q *Queries) ListBudgets(ctx context.Context, ownerID int64, month, year int) ([]core.Budget, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT `+budgetColumns+` FROM budgets
		WHERE user_id = ? AND month = ? AND year = ?
		ORDER BY id`, ownerID, month, year)
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}
	defer rows.Close()

	var budgets []core.Budget
	for rows.Next() {
		b, err := scanBudget(rows)
		if err != nil {
			return nil, fmt.Errorf("scan budget: %w", err)
		}
		budgets = append(budgets, b)
	}
	return budgets, rows.Err()
}

// UpdateBudgetAmount changes the limit only; the period and category
// are part of the budget's identity.
func (q *Queries) UpdateBudgetAmount(ctx context.Context, ownerID, id, amountCents int64) error {
	res, err := q.db.ExecContext(ctx,
		`UPDATE budgets SET amount_cents = ? WHERE id = ? AND user_id = ?`,
		amountCents, id, ownerID)
	if err != nil {
		return fmt.Errorf("update budget: %w", err)
	}
	return requireRow(res, "budget", id)
}

func (q *Queries) DeleteBudget(ctx context.Context, ownerID, id int64) error {
	res, err := q.db.ExecContext(ctx,
		`DELETE FROM budgets WHERE id = ? AND user_id = ?`, id, ownerID)
	if err != nil {
		return fmt.Errorf("delete budget: %w", err)
	}
	return requireRow(res, "budget", id)
}
