package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"fintrack/internal/core"
)

func newTestRepo(t *testing.T) (*Repository, int64) {
	t.Helper()

	repo, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	t.Cleanup(func() { repo.Close() })

	owner, err := repo.Queries().CreateUser(context.Background(), "test@example.com")
	if err != nil {
		t.Fatalf("create test user: %v", err)
	}
	return repo, owner
}

func seedAccount(t *testing.T, repo *Repository, owner int64, name string, cents int64) core.Account {
	t.Helper()
	a := core.Account{OwnerID: owner, Name: name, Type: core.AccountBank, Balance: core.Money{Cents: cents}, Active: true}
	if err := repo.Queries().CreateAccount(context.Background(), &a); err != nil {
		t.Fatalf("create account %s: %v", name, err)
	}
	return a
}

func seedExpense(t *testing.T, repo *Repository, owner, accountID int64, cents int64, date core.Date) core.Transaction {
	t.Helper()
	tx := core.Transaction{
		OwnerID:     owner,
		Type:        core.TransactionExpense,
		Amount:      core.Money{Cents: cents},
		AccountID:   accountID,
		Description: "seed",
		Date:        date,
	}
	if err := repo.Queries().CreateTransaction(context.Background(), &tx); err != nil {
		t.Fatalf("create transaction: %v", err)
	}
	return tx
}

func TestOwnerScoping(t *testing.T) {
	repo, owner := newTestRepo(t)
	ctx := context.Background()

	other, err := repo.Queries().CreateUser(ctx, "other@example.com")
	if err != nil {
		t.Fatalf("create second user: %v", err)
	}

	account := seedAccount(t, repo, owner, "Checking", 1000)
	tx := seedExpense(t, repo, owner, account.ID, 100, core.NewDate(2025, 3, 1))

	if _, err := repo.Queries().GetAccount(ctx, other, account.ID); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("cross-owner account error = %v, want ErrNotFound", err)
	}
	if _, err := repo.Queries().GetTransaction(ctx, other, tx.ID); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("cross-owner transaction error = %v, want ErrNotFound", err)
	}

	// Lists stay empty for the other owner rather than erroring.
	accounts, err := repo.Queries().ListAccounts(ctx, other, false)
	if err != nil {
		t.Fatalf("list accounts: %v", err)
	}
	if len(accounts) != 0 {
		t.Errorf("other owner sees %d accounts, want 0", len(accounts))
	}
}

func TestAdjustBalance(t *testing.T) {
	repo, owner := newTestRepo(t)
	ctx := context.Background()

	account := seedAccount(t, repo, owner, "Checking", 1000)

	if err := repo.Queries().AdjustBalance(ctx, account.ID, 250); err != nil {
		t.Fatalf("credit: %v", err)
	}
	if err := repo.Queries().AdjustBalance(ctx, account.ID, -400); err != nil {
		t.Fatalf("debit: %v", err)
	}

	got, err := repo.Queries().GetAccount(ctx, owner, account.ID)
	if err != nil {
		t.Fatalf("get account: %v", err)
	}
	if got.Balance.Cents != 850 {
		t.Errorf("balance = %d, want 850", got.Balance.Cents)
	}

	if err := repo.Queries().AdjustBalance(ctx, 9999, 100); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("adjust missing account error = %v, want ErrNotFound", err)
	}
}

func TestSyncLifecycle(t *testing.T) {
	repo, owner := newTestRepo(t)
	ctx := context.Background()

	account := seedAccount(t, repo, owner, "Checking", 0)
	tx := seedExpense(t, repo, owner, account.ID, 100, core.NewDate(2025, 3, 1))

	pending, err := repo.Queries().ListPendingSync(ctx, 10)
	if err != nil {
		t.Fatalf("list pending: %v", err)
	}
	if len(pending) != 1 || pending[0].ID != tx.ID || pending[0].Version != tx.Version {
		t.Fatalf("pending = %+v, want one entry for transaction %d v%d", pending, tx.ID, tx.Version)
	}

	if err := repo.Queries().MarkSynced(ctx, tx.ID, tx.Version); err != nil {
		t.Fatalf("mark synced: %v", err)
	}
	pending, err = repo.Queries().ListPendingSync(ctx, 10)
	if err != nil {
		t.Fatalf("list pending: %v", err)
	}
	if len(pending) != 0 {
		t.Errorf("pending after sync = %d entries, want 0", len(pending))
	}
}

func TestMarkSyncedStaleVersionIsNoOp(t *testing.T) {
	repo, owner := newTestRepo(t)
	ctx := context.Background()

	account := seedAccount(t, repo, owner, "Checking", 0)
	tx := seedExpense(t, repo, owner, account.ID, 100, core.NewDate(2025, 3, 1))

	// An edit bumps the version and reopens the sync flag.
	tx.Amount = core.Money{Cents: 200}
	if err := repo.Queries().UpdateTransaction(ctx, &tx); err != nil {
		t.Fatalf("update transaction: %v", err)
	}

	// Acking the pre-edit version must not mark the newer row synced.
	if err := repo.Queries().MarkSynced(ctx, tx.ID, tx.Version-1); err != nil {
		t.Fatalf("stale mark synced: %v", err)
	}
	pending, err := repo.Queries().ListPendingSync(ctx, 10)
	if err != nil {
		t.Fatalf("list pending: %v", err)
	}
	if len(pending) != 1 {
		t.Fatalf("pending = %d entries after stale ack, want 1", len(pending))
	}
	if pending[0].Version != tx.Version {
		t.Errorf("pending version = %d, want %d", pending[0].Version, tx.Version)
	}
}

func TestMarkSyncErrorExcludesFromPending(t *testing.T) {
	repo, owner := newTestRepo(t)
	ctx := context.Background()

	account := seedAccount(t, repo, owner, "Checking", 0)
	tx := seedExpense(t, repo, owner, account.ID, 100, core.NewDate(2025, 3, 1))

	if err := repo.Queries().MarkSyncError(ctx, tx.ID); err != nil {
		t.Fatalf("mark sync error: %v", err)
	}
	pending, err := repo.Queries().ListPendingSync(ctx, 10)
	if err != nil {
		t.Fatalf("list pending: %v", err)
	}
	if len(pending) != 0 {
		t.Errorf("errored row still pending: %+v", pending)
	}
}

func TestFindBudgetAbsenceIsNotAnError(t *testing.T) {
	repo, owner := newTestRepo(t)
	ctx := context.Background()

	_, found, err := repo.Queries().FindBudget(ctx, owner, 42, 3, 2025)
	if err != nil {
		t.Fatalf("find budget: %v", err)
	}
	if found {
		t.Error("found budget in empty table")
	}
}

func TestTransactionFilter(t *testing.T) {
	repo, owner := newTestRepo(t)
	ctx := context.Background()

	a := seedAccount(t, repo, owner, "Checking", 0)
	b := seedAccount(t, repo, owner, "Wallet", 0)

	seedExpense(t, repo, owner, a.ID, 100, core.NewDate(2025, 3, 1))
	seedExpense(t, repo, owner, a.ID, 200, core.NewDate(2025, 4, 1))
	seedExpense(t, repo, owner, b.ID, 300, core.NewDate(2025, 3, 15))

	byAccount, err := repo.Queries().ListTransactions(ctx, owner, TransactionFilter{AccountID: a.ID})
	if err != nil {
		t.Fatalf("filter by account: %v", err)
	}
	if len(byAccount) != 2 {
		t.Errorf("account filter matched %d rows, want 2", len(byAccount))
	}

	byMonth, err := repo.Queries().ListTransactions(ctx, owner, TransactionFilter{Month: 3, Year: 2025})
	if err != nil {
		t.Fatalf("filter by month: %v", err)
	}
	if len(byMonth) != 2 {
		t.Errorf("month filter matched %d rows, want 2", len(byMonth))
	}

	limited, err := repo.Queries().ListTransactions(ctx, owner, TransactionFilter{Limit: 1})
	if err != nil {
		t.Fatalf("filter with limit: %v", err)
	}
	if len(limited) != 1 {
		t.Errorf("limit 1 returned %d rows", len(limited))
	}
}

func TestInTxRollsBackOnError(t *testing.T) {
	repo, owner := newTestRepo(t)
	ctx := context.Background()

	account := seedAccount(t, repo, owner, "Checking", 1000)

	wantErr := errors.New("abort")
	err := repo.InTx(ctx, func(q *Queries) error {
		if err := q.AdjustBalance(ctx, account.ID, 500); err != nil {
			return err
		}
		return wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Fatalf("InTx error = %v, want abort", err)
	}

	got, err := repo.Queries().GetAccount(ctx, owner, account.ID)
	if err != nil {
		t.Fatalf("get account: %v", err)
	}
	if got.Balance.Cents != 1000 {
		t.Errorf("balance = %d after rollback, want 1000", got.Balance.Cents)
	}
}

func TestMonthlySavingsGoalDefaultsToZero(t *testing.T) {
	repo, owner := newTestRepo(t)
	ctx := context.Background()

	goal, err := repo.Queries().MonthlySavingsGoal(ctx, owner)
	if err != nil {
		t.Fatalf("read savings goal: %v", err)
	}
	if goal != 0 {
		t.Errorf("default savings goal = %d, want 0", goal)
	}

	if err := repo.Queries().SetMonthlySavingsGoal(ctx, owner, 50000); err != nil {
		t.Fatalf("set savings goal: %v", err)
	}
	goal, err = repo.Queries().MonthlySavingsGoal(ctx, owner)
	if err != nil {
		t.Fatalf("read savings goal: %v", err)
	}
	if goal != 50000 {
		t.Errorf("savings goal = %d, want 50000", goal)
	}

	// Upsert replaces rather than duplicates.
	if err := repo.Queries().SetMonthlySavingsGoal(ctx, owner, 60000); err != nil {
		t.Fatalf("update savings goal: %v", err)
	}
	goal, err = repo.Queries().MonthlySavingsGoal(ctx, owner)
	if err != nil {
		t.Fatalf("read savings goal: %v", err)
	}
	if goal != 60000 {
		t.Errorf("savings goal = %d, want 60000", goal)
	}
}
