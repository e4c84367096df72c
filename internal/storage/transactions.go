package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"fintrack/internal/core"
)

const transactionColumns = `id, user_id, type, amount_cents, account_id, to_account_id,
	category_id, description, notes, transaction_date, version, created_at`

// TransactionFilter narrows ListTransactions. Zero values mean "no
// restriction".
type TransactionFilter struct {
	Type       core.TransactionType
	AccountID  int64
	CategoryID int64
	Month      int
	Year       int
	Search     string
	Limit      int
}

func scanTransaction(row interface{ Scan(...any) error }) (core.Transaction, error) {
	var t core.Transaction
	var typ, date, createdAt string
	var toAccount, category sql.NullInt64
	err := row.Scan(&t.ID, &t.OwnerID, &typ, &t.Amount.Cents, &t.AccountID,
		&toAccount, &category, &t.Description, &t.Notes, &date, &t.Version, &createdAt)
	if err != nil {
		return core.Transaction{}, err
	}
	t.Type = core.TransactionType(typ)
	if toAccount.Valid {
		t.ToAccountID = &toAccount.Int64
	}
	if category.Valid {
		t.CategoryID = &category.Int64
	}
	if t.Date, err = core.ParseDate(date); err != nil {
		return core.Transaction{}, fmt.Errorf("transaction date %q: %w", date, err)
	}
	if ts, err := time.Parse("2006-01-02 15:04:05", createdAt); err == nil {
		t.CreatedAt = ts
	}
	return t, nil
}

func (q *Queries) CreateTransaction(ctx context.Context, t *core.Transaction) error {
	err := q.db.QueryRowContext(ctx, `
		INSERT INTO transactions (user_id, type, amount_cents, account_id, to_account_id,
			category_id, description, notes, transaction_date)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id, version`,
		t.OwnerID, string(t.Type), t.Amount.Cents, t.AccountID, nullableID(t.ToAccountID),
		nullableID(t.CategoryID), t.Description, t.Notes, t.Date.String()).
		Scan(&t.ID, &t.Version)
	if err != nil {
		return fmt.Errorf("create transaction: %w", err)
	}
	return nil
}

func (q *Queries) GetTransaction(ctx context.Context, ownerID, id int64) (core.Transaction, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT `+transactionColumns+` FROM transactions WHERE id = ? AND user_id = ?`,
		id, ownerID)
	t, err := scanTransaction(row)
	if err == sql.ErrNoRows {
		return core.Transaction{}, fmt.Errorf("transaction %d: %w", id, core.ErrNotFound)
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("get transaction: %w", err)
	}
	return t, nil
}

// UpdateTransaction persists the mutable fields and bumps the sync
// version so the export worker picks the row up again.
func (q *Queries) UpdateTransaction(ctx context.Context, t *core.Transaction) error {
	res, err := q.db.ExecContext(ctx, `
		UPDATE transactions
		SET amount_cents = ?, account_id = ?, to_account_id = ?, category_id = ?,
			description = ?, notes = ?, transaction_date = ?,
			version = version + 1, synced = 0
		WHERE id = ? AND user_id = ?`,
		t.Amount.Cents, t.AccountID, nullableID(t.ToAccountID), nullableID(t.CategoryID),
		t.Description, t.Notes, t.Date.String(), t.ID, t.OwnerID)
	if err != nil {
		return fmt.Errorf("update transaction: %w", err)
	}
	if err := requireRow(res, "transaction", t.ID); err != nil {
		return err
	}
	t.Version++
	return nil
}

func (q *Queries) DeleteTransaction(ctx context.Context, ownerID, id int64) error {
	res, err := q.db.ExecContext(ctx,
		`DELETE FROM transactions WHERE id = ? AND user_id = ?`, id, ownerID)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	return requireRow(res, "transaction", id)
}

func (q *Queries) ListTransactions(ctx context.Context, ownerID int64, f TransactionFilter) ([]core.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE user_id = ?`
	args := []any{ownerID}

	if f.Type != "" {
		query += ` AND type = ?`
		args = append(args, string(f.Type))
	}
	if f.AccountID != 0 {
		query += ` AND account_id = ?`
		args = append(args, f.AccountID)
	}
	if f.CategoryID != 0 {
		query += ` AND category_id = ?`
		args = append(args, f.CategoryID)
	}
	if f.Month != 0 && f.Year != 0 {
		start, end := core.MonthBounds(f.Month, f.Year)
		query += ` AND transaction_date >= ? AND transaction_date < ?`
		args = append(args, start.String(), end.String())
	}
	if f.Search != "" {
		query += ` AND description LIKE ?`
		args = append(args, "%"+f.Search+"%")
	}
	query += ` ORDER BY transaction_date DESC, created_at DESC`
	if f.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, f.Limit)
	}

	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var transactions []core.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		transactions = append(transactions, t)
	}
	return transactions, rows.Err()
}

// SumTransactions totals amounts of one type for the owner inside a
// half-open date range.
func (q *Queries) SumTransactions(ctx context.Context, ownerID int64, typ core.TransactionType, from, to core.Date) (int64, error) {
	var sum int64
	err := q.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(amount_cents), 0) FROM transactions
		WHERE user_id = ? AND type = ? AND transaction_date >= ? AND transaction_date < ?`,
		ownerID, string(typ), from.String(), to.String()).Scan(&sum)
	if err != nil {
		return 0, fmt.Errorf("sum transactions: %w", err)
	}
	return sum, nil
}

// CategorySpent totals expense amounts for one category inside a
// half-open date range. Budget "spent" is always derived through this,
// never stored.
func (q *Queries) CategorySpent(ctx context.Context, ownerID, categoryID int64, from, to core.Date) (int64, error) {
	var sum int64
	err := q.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(amount_cents), 0) FROM transactions
		WHERE user_id = ? AND category_id = ? AND type = 'expense'
			AND transaction_date >= ? AND transaction_date < ?`,
		ownerID, categoryID, from.String(), to.String()).Scan(&sum)
	if err != nil {
		return 0, fmt.Errorf("category spent: %w", err)
	}
	return sum, nil
}

// PendingSync identifies a transaction row the export worker has not
// mirrored yet.
type PendingSync struct {
	ID      int64
	Version int64
}

func (q *Queries) ListPendingSync(ctx context.Context, limit int) ([]PendingSync, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT id, version FROM transactions
		WHERE synced = 0 AND sync_error = 0
		ORDER BY id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list pending sync: %w", err)
	}
	defer rows.Close()

	var pending []PendingSync
	for rows.Next() {
		var p PendingSync
		if err := rows.Scan(&p.ID, &p.Version); err != nil {
			return nil, fmt.Errorf("scan pending sync: %w", err)
		}
		pending = append(pending, p)
	}
	return pending, rows.Err()
}

// MarkSynced records a successful export, but only if the row has not
// been edited again since the exported version.
func (q *Queries) MarkSynced(ctx context.Context, id, version int64) error {
	_, err := q.db.ExecContext(ctx,
		`UPDATE transactions SET synced = 1, sync_error = 0 WHERE id = ? AND version = ?`,
		id, version)
	if err != nil {
		return fmt.Errorf("mark synced: %w", err)
	}
	return nil
}

func (q *Queries) MarkSyncError(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx,
		`UPDATE transactions SET sync_error = 1 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("mark sync error: %w", err)
	}
	return nil
}

// GetTransactionAnyOwner loads a transaction without owner scoping.
// Export-worker use only: messages carry no owner and the worker acts
// for the system, not a user.
func (q *Queries) GetTransactionAnyOwner(ctx context.Context, id int64) (core.Transaction, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT `+transactionColumns+` FROM transactions WHERE id = ?`, id)
	t, err := scanTransaction(row)
	if err == sql.ErrNoRows {
		return core.Transaction{}, fmt.Errorf("transaction %d: %w", id, core.ErrNotFound)
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("get transaction: %w", err)
	}
	return t, nil
}

func nullableID(id *int64) any {
	if id == nil {
		return nil
	}
	return *id
}
