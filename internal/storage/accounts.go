package storage

import (
	"context"
	"database/sql"
	"fmt"

	"fintrack/internal/core"
)

const accountColumns = `id, user_id, name, type, balance_cents, is_active`

func scanAccount(row interface{ Scan(...any) error }) (core.Account, error) {
	var a core.Account
	var typ string
	err := row.Scan(&a.ID, &a.OwnerID, &a.Name, &typ, &a.Balance.Cents, &a.Active)
	if err != nil {
		return core.Account{}, err
	}
	a.Type = core.AccountType(typ)
	return a, nil
}

func (q *Queries) CreateAccount(ctx context.Context, a *core.Account) error {
	err := q.db.QueryRowContext(ctx, `
		INSERT INTO accounts (user_id, name, type, balance_cents, is_active)
		VALUES (?, ?, ?, ?, ?)
		RETURNING id`,
		a.OwnerID, a.Name, string(a.Type), a.Balance.Cents, a.Active).Scan(&a.ID)
	if err != nil {
		return fmt.Errorf("create account: %w", err)
	}
	return nil
}

// GetAccount loads one of the owner's accounts. A row owned by someone
// else is indistinguishable from an absent one.
func (q *Queries) GetAccount(ctx context.Context, ownerID, id int64) (core.Account, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE id = ? AND user_id = ?`, id, ownerID)
	a, err := scanAccount(row)
	if err == sql.ErrNoRows {
		return core.Account{}, fmt.Errorf("account %d: %w", id, core.ErrNotFound)
	}
	if err != nil {
		return core.Account{}, fmt.Errorf("get account: %w", err)
	}
	return a, nil
}

func (q *Queries) ListAccounts(ctx context.Context, ownerID int64, activeOnly bool) ([]core.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE user_id = ?`
	if activeOnly {
		query += ` AND is_active = 1`
	}
	query += ` ORDER BY name`

	rows, err := q.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	defer rows.Close()

	var accounts []core.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

func (q *Queries) UpdateAccount(ctx context.Context, a core.Account) error {
	res, err := q.db.ExecContext(ctx, `
		UPDATE accounts SET name = ?, type = ?, is_active = ?
		WHERE id = ? AND user_id = ?`,
		a.Name, string(a.Type), a.Active, a.ID, a.OwnerID)
	if err != nil {
		return fmt.Errorf("update account: %w", err)
	}
	return requireRow(res, "account", a.ID)
}

// AdjustBalance applies a signed delta to the stored balance in one
// statement, so concurrent adjustments never lose updates.
func (q *Queries) AdjustBalance(ctx context.Context, accountID, deltaCents int64) error {
	res, err := q.db.ExecContext(ctx,
		`UPDATE accounts SET balance_cents = balance_cents + ? WHERE id = ?`,
		deltaCents, accountID)
	if err != nil {
		return fmt.Errorf("adjust balance: %w", err)
	}
	return requireRow(res, "account", accountID)
}

func (q *Queries) SetBalance(ctx context.Context, accountID, cents int64) error {
	res, err := q.db.ExecContext(ctx,
		`UPDATE accounts SET balance_cents = ? WHERE id = ?`, cents, accountID)
	if err != nil {
		return fmt.Errorf("set balance: %w", err)
	}
	return requireRow(res, "account", accountID)
}

// AccountNet recomputes an account's balance from its transaction
// history: income - expenses - transfers out + transfers in.
func (q *Queries) AccountNet(ctx context.Context, accountID int64) (int64, error) {
	var net int64
	err := q.db.QueryRowContext(ctx, `
		SELECT
			COALESCE((SELECT SUM(amount_cents) FROM transactions WHERE account_id = ?1 AND type = 'income'), 0)
			- COALESCE((SELECT SUM(amount_cents) FROM transactions WHERE account_id = ?1 AND type = 'expense'), 0)
			- COALESCE((SELECT SUM(amount_cents) FROM transactions WHERE account_id = ?1 AND type = 'transfer'), 0)
			+ COALESCE((SELECT SUM(amount_cents) FROM transactions WHERE to_account_id = ?1 AND type = 'transfer'), 0)`,
		accountID).Scan(&net)
	if err != nil {
		return 0, fmt.Errorf("account net: %w", err)
	}
	return net, nil
}

// BalanceTotals sums active-account balances for the owner: the full
// total plus the positive (assets) and negative (liabilities)
// portions.
func (q *Queries) BalanceTotals(ctx context.Context, ownerID int64) (total, assets, liabilities int64, err error) {
	err = q.db.QueryRowContext(ctx, `
		SELECT
			COALESCE(SUM(balance_cents), 0),
			COALESCE(SUM(CASE WHEN balance_cents > 0 THEN balance_cents ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN balance_cents < 0 THEN -balance_cents ELSE 0 END), 0)
		FROM accounts WHERE user_id = ? AND is_active = 1`,
		ownerID).Scan(&total, &assets, &liabilities)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("balance totals: %w", err)
	}
	return total, assets, liabilities, nil
}

func requireRow(res sql.Result, entity string, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%s %d: %w", entity, id, core.ErrNotFound)
	}
	return nil
}
