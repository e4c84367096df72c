// Package storage is the persistent ledger store: SQLite behind
// database/sql, schema managed by embedded migrations. Every query is
// owner-scoped; financial mutations run through InTx so row writes and
// balance side effects commit or roll back together.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// DBTX is satisfied by both *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Queries bundles all ledger queries over one connection or transaction.
type Queries struct {
	db DBTX
}

func New(db DBTX) *Queries { return &Queries{db: db} }

// Repository owns the SQLite handle and hands out query bundles.
type Repository struct {
	db      *sql.DB
	queries *Queries
}

func Open(dbPath string) (*Repository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	// _txlock=immediate takes the write lock at BEGIN, so concurrent
	// writers queue on busy_timeout instead of failing mid-transaction.
	dsn := dbPath + "?_txlock=immediate&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Repository{db: db, queries: New(db)}, nil
}

func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Queries returns the auto-commit query bundle for reads and
// standalone writes.
func (r *Repository) Queries() *Queries { return r.queries }

// Ping checks database liveness for readiness probes.
func (r *Repository) Ping(ctx context.Context) error { return r.db.PingContext(ctx) }

// InTx runs fn inside a single database transaction. fn receives a
// query bundle bound to that transaction; any error rolls everything
// back.
func (r *Repository) InTx(ctx context.Context, fn func(q *Queries) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	if err := fn(New(tx)); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("%w (rollback: %v)", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// CreateUser inserts a user row and returns its id. The tracker keys
// everything by owner; user management itself lives outside this
// module.
func (q *Queries) CreateUser(ctx context.Context, email string) (int64, error) {
	var id int64
	err := q.db.QueryRowContext(ctx,
		`INSERT INTO users (email) VALUES (?) RETURNING id`, email).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("create user: %w", err)
	}
	return id, nil
}

// MonthlySavingsGoal returns the user's configured monthly savings
// goal in cents, or zero when none is set.
func (q *Queries) MonthlySavingsGoal(ctx context.Context, ownerID int64) (int64, error) {
	var cents int64
	err := q.db.QueryRowContext(ctx,
		`SELECT monthly_savings_goal_cents FROM user_settings WHERE user_id = ?`,
		ownerID).Scan(&cents)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("get monthly savings goal: %w", err)
	}
	return cents, nil
}

// SetMonthlySavingsGoal upserts the user's monthly savings goal.
func (q *Queries) SetMonthlySavingsGoal(ctx context.Context, ownerID, cents int64) error {
	_, err := q.db.ExecContext(ctx, `
		INSERT INTO user_settings (user_id, monthly_savings_goal_cents) VALUES (?, ?)
		ON CONFLICT (user_id) DO UPDATE SET monthly_savings_goal_cents = excluded.monthly_savings_goal_cents`,
		ownerID, cents)
	if err != nil {
		return fmt.Errorf("set monthly savings goal: %w", err)
	}
	return nil
}
