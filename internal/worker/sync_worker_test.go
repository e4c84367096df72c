package worker

import (
	"context"
	"path/filepath"
	"testing"

	"fintrack/internal/amqp"
	"fintrack/internal/core"
	"fintrack/internal/sheets/memory"
	"fintrack/internal/storage"
)

type fixture struct {
	worker *SyncWorker
	store  *storage.Repository
	sink   *memory.Store
	owner  int64
}

func newFixture(t *testing.T) fixture {
	t.Helper()

	repo, err := storage.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	t.Cleanup(func() { repo.Close() })

	owner, err := repo.Queries().CreateUser(context.Background(), "test@example.com")
	if err != nil {
		t.Fatalf("create test user: %v", err)
	}

	sink := memory.New()
	return fixture{
		worker: NewSyncWorker(repo, sink, 10),
		store:  repo,
		sink:   sink,
		owner:  owner,
	}
}

func (f fixture) seedAccount(t *testing.T, name string) core.Account {
	t.Helper()
	a := core.Account{OwnerID: f.owner, Name: name, Type: core.AccountBank, Active: true}
	if err := f.store.Queries().CreateAccount(context.Background(), &a); err != nil {
		t.Fatalf("create account %s: %v", name, err)
	}
	return a
}

func (f fixture) seedCategory(t *testing.T, name string) core.Category {
	t.Helper()
	c := core.Category{OwnerID: f.owner, Name: name, Type: core.CategoryExpense, Active: true}
	if err := f.store.Queries().CreateCategory(context.Background(), &c); err != nil {
		t.Fatalf("create category %s: %v", name, err)
	}
	return c
}

func (f fixture) seedExpense(t *testing.T, accountID, categoryID int64, cents int64, description string) core.Transaction {
	t.Helper()
	tx := core.Transaction{
		OwnerID:     f.owner,
		Type:        core.TransactionExpense,
		Amount:      core.Money{Cents: cents},
		AccountID:   accountID,
		CategoryID:  &categoryID,
		Description: description,
		Date:        core.NewDate(2025, 3, 1),
	}
	if err := f.store.Queries().CreateTransaction(context.Background(), &tx); err != nil {
		t.Fatalf("create transaction: %v", err)
	}
	return tx
}

func TestHandleEventExportsRow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	account := f.seedAccount(t, "Checking")
	food := f.seedCategory(t, "Food")
	tx := f.seedExpense(t, account.ID, food.ID, 4500, "Groceries")

	msg := amqp.NewTransactionEventMessage(amqp.KindCreated, tx.ID, tx.Version)
	if err := f.worker.HandleEvent(ctx, msg); err != nil {
		t.Fatalf("handle event: %v", err)
	}

	rows := f.sink.Rows()
	if len(rows) != 1 {
		t.Fatalf("exported %d rows, want 1", len(rows))
	}
	row := rows[0]
	if row.Description != "Groceries" {
		t.Errorf("description = %q", row.Description)
	}
	if row.Account != "Checking" || row.Category != "Food" {
		t.Errorf("resolved names = %q / %q, want Checking / Food", row.Account, row.Category)
	}
	if row.Amount.Cents != 4500 {
		t.Errorf("amount = %d, want 4500", row.Amount.Cents)
	}

	// The export acked the row.
	pending, err := f.store.Queries().ListPendingSync(ctx, 10)
	if err != nil {
		t.Fatalf("list pending: %v", err)
	}
	if len(pending) != 0 {
		t.Errorf("row still pending after export: %+v", pending)
	}
}

func TestHandleEventDeletedKindIsNoOp(t *testing.T) {
	f := newFixture(t)

	msg := amqp.NewTransactionEventMessage(amqp.KindDeleted, 42, 1)
	if err := f.worker.HandleEvent(context.Background(), msg); err != nil {
		t.Fatalf("deleted event: %v", err)
	}
	if len(f.sink.Rows()) != 0 {
		t.Error("deleted event produced an export row")
	}
}

func TestHandleEventToleratesGoneTransaction(t *testing.T) {
	f := newFixture(t)

	// The row was deleted between publish and delivery; ack and move on.
	msg := amqp.NewTransactionEventMessage(amqp.KindCreated, 9999, 1)
	if err := f.worker.HandleEvent(context.Background(), msg); err != nil {
		t.Fatalf("gone transaction: %v", err)
	}
	if len(f.sink.Rows()) != 0 {
		t.Error("missing transaction produced an export row")
	}
}

func TestHandleEventStaleVersionExportsCurrentRow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	account := f.seedAccount(t, "Checking")
	food := f.seedCategory(t, "Food")
	tx := f.seedExpense(t, account.ID, food.ID, 1000, "Original")

	tx.Description = "Edited"
	if err := f.store.Queries().UpdateTransaction(ctx, &tx); err != nil {
		t.Fatalf("update transaction: %v", err)
	}

	// Delivering the pre-edit event exports the post-edit row.
	msg := amqp.NewTransactionEventMessage(amqp.KindUpdated, tx.ID, tx.Version-1)
	if err := f.worker.HandleEvent(ctx, msg); err != nil {
		t.Fatalf("stale event: %v", err)
	}

	rows := f.sink.Rows()
	if len(rows) != 1 {
		t.Fatalf("exported %d rows, want 1", len(rows))
	}
	if rows[0].Description != "Edited" {
		t.Errorf("exported %q, want the current row", rows[0].Description)
	}
}

func TestHandleGoalEvent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	g := core.Goal{
		OwnerID:      f.owner,
		Name:         "Vacation",
		TargetAmount: core.Money{Cents: 100000},
	}
	if err := f.store.Queries().CreateGoal(ctx, &g); err != nil {
		t.Fatalf("create goal: %v", err)
	}

	msg := amqp.NewGoalEventMessage("funded", g.ID, 1)
	if err := f.worker.HandleGoalEvent(ctx, msg); err != nil {
		t.Fatalf("handle goal event: %v", err)
	}
}

func TestHandleGoalEventToleratesGoneGoal(t *testing.T) {
	f := newFixture(t)

	// Goal deleted between publish and delivery; ack and move on.
	msg := amqp.NewGoalEventMessage("withdrawn", 9999, 1)
	if err := f.worker.HandleGoalEvent(context.Background(), msg); err != nil {
		t.Fatalf("gone goal: %v", err)
	}
}

func TestProcessPendingDrainsBacklog(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	account := f.seedAccount(t, "Checking")
	food := f.seedCategory(t, "Food")
	for i := 0; i < 3; i++ {
		f.seedExpense(t, account.ID, food.ID, int64(100*(i+1)), "seed")
	}

	if err := f.worker.ProcessPending(ctx); err != nil {
		t.Fatalf("process pending: %v", err)
	}

	if got := len(f.sink.Rows()); got != 3 {
		t.Errorf("exported %d rows, want 3", got)
	}
	pending, err := f.store.Queries().ListPendingSync(ctx, 10)
	if err != nil {
		t.Fatalf("list pending: %v", err)
	}
	if len(pending) != 0 {
		t.Errorf("%d rows still pending after drain", len(pending))
	}

	// A second pass finds nothing to do.
	if err := f.worker.ProcessPending(ctx); err != nil {
		t.Fatalf("second pass: %v", err)
	}
	if got := len(f.sink.Rows()); got != 3 {
		t.Errorf("second pass re-exported rows: %d total", got)
	}
}

func TestPendingBatchRespectsLimit(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	account := f.seedAccount(t, "Checking")
	food := f.seedCategory(t, "Food")
	for i := 0; i < 5; i++ {
		f.seedExpense(t, account.ID, food.ID, 100, "seed")
	}

	small := NewSyncWorker(f.store, f.sink, 2)
	if err := small.ProcessPending(ctx); err != nil {
		t.Fatalf("process pending: %v", err)
	}
	if got := len(f.sink.Rows()); got != 2 {
		t.Errorf("batch of 2 exported %d rows", got)
	}

	// StartupSyncCheck uses a widened batch and clears the rest.
	if err := small.StartupSyncCheck(ctx); err != nil {
		t.Fatalf("startup sync check: %v", err)
	}
	if got := len(f.sink.Rows()); got != 5 {
		t.Errorf("after startup check %d rows exported, want 5", got)
	}
}
