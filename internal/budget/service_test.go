package budget

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/ledger"
	"fintrack/internal/storage"
)

type fixture struct {
	budgets *Service
	ledger  *ledger.Service
	owner   int64
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

	clock := core.FixedClock{Instant: time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC)}
	return fixture{
		budgets: NewService(repo, clock),
		ledger:  ledger.NewService(repo, nil, clock),
		owner:   owner,
	}
}

func (f fixture) category(t *testing.T, name string) core.Category {
	t.Helper()
	c, err := f.ledger.CreateCategory(context.Background(), f.owner, name, core.CategoryExpense)
	if err != nil {
		t.Fatalf("create category %s: %v", name, err)
	}
	return c
}

func (f fixture) spend(t *testing.T, accountID, categoryID, cents int64, date core.Date) {
	t.Helper()
	_, err := f.ledger.CreateTransaction(context.Background(), f.owner, core.ExpenseDraft{
		AccountID: accountID, CategoryID: categoryID,
		Amount: core.Money{Cents: cents}, Description: "seed", Date: date,
	})
	if err != nil {
		t.Fatalf("seed expense: %v", err)
	}
}

func TestCreateDefaultsToCurrentPeriod(t *testing.T) {
	f := newFixture(t)
	food := f.category(t, "Food")

	b, err := f.budgets.Create(context.Background(), f.owner, food.ID, core.Money{Cents: 50000}, 0, 0)
	if err != nil {
		t.Fatalf("create budget: %v", err)
	}
	if b.Month != 3 || b.Year != 2025 {
		t.Errorf("period = %d/%d, want 3/2025", b.Month, b.Year)
	}
	if b.ID == 0 {
		t.Error("budget ID not assigned")
	}
}

func TestCreateRejectsDuplicatePeriod(t *testing.T) {
	f := newFixture(t)
	food := f.category(t, "Food")
	ctx := context.Background()

	if _, err := f.budgets.Create(ctx, f.owner, food.ID, core.Money{Cents: 50000}, 3, 2025); err != nil {
		t.Fatalf("create budget: %v", err)
	}
	_, err := f.budgets.Create(ctx, f.owner, food.ID, core.Money{Cents: 60000}, 3, 2025)
	if !errors.Is(err, core.ErrValidation) {
		t.Errorf("duplicate budget error = %v, want ErrValidation", err)
	}

	// A different period for the same category is fine.
	if _, err := f.budgets.Create(ctx, f.owner, food.ID, core.Money{Cents: 60000}, 4, 2025); err != nil {
		t.Errorf("next-period budget: %v", err)
	}
}

func TestCreateUnknownCategory(t *testing.T) {
	f := newFixture(t)

	_, err := f.budgets.Create(context.Background(), f.owner, 9999, core.Money{Cents: 50000}, 3, 2025)
	if !errors.Is(err, core.ErrNotFound) {
		t.Errorf("unknown category error = %v, want ErrNotFound", err)
	}
}

func TestListWithSpending(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	food := f.category(t, "Food")
	transport := f.category(t, "Transport")
	account, err := f.ledger.CreateAccount(ctx, f.owner, "Checking", core.AccountBank, core.Money{Cents: 1000000})
	if err != nil {
		t.Fatalf("create account: %v", err)
	}

	if _, err := f.budgets.Create(ctx, f.owner, food.ID, core.Money{Cents: 50000}, 3, 2025); err != nil {
		t.Fatalf("create food budget: %v", err)
	}
	if _, err := f.budgets.Create(ctx, f.owner, transport.ID, core.Money{Cents: 10000}, 3, 2025); err != nil {
		t.Fatalf("create transport budget: %v", err)
	}

	f.spend(t, account.ID, food.ID, 20000, core.NewDate(2025, 3, 5))
	f.spend(t, account.ID, food.ID, 10000, core.NewDate(2025, 3, 20))
	f.spend(t, account.ID, transport.ID, 12000, core.NewDate(2025, 3, 8))
	// Outside the period, never counted.
	f.spend(t, account.ID, food.ID, 99999, core.NewDate(2025, 4, 1))

	statuses, err := f.budgets.ListWithSpending(ctx, f.owner, 3, 2025)
	if err != nil {
		t.Fatalf("list with spending: %v", err)
	}
	if len(statuses) != 2 {
		t.Fatalf("got %d statuses, want 2", len(statuses))
	}

	byCategory := map[int64]Status{}
	for _, st := range statuses {
		byCategory[st.Budget.CategoryID] = st
	}

	fs := byCategory[food.ID]
	if fs.Spent.Cents != 30000 {
		t.Errorf("food spent = %d, want 30000", fs.Spent.Cents)
	}
	if fs.Remaining.Cents != 20000 {
		t.Errorf("food remaining = %d, want 20000", fs.Remaining.Cents)
	}
	if fs.Progress != 60 {
		t.Errorf("food progress = %v, want 60", fs.Progress)
	}
	if fs.OverBudget {
		t.Error("food flagged over budget at 60%")
	}
	if fs.CategoryName != "Food" {
		t.Errorf("food category name = %q", fs.CategoryName)
	}

	ts := byCategory[transport.ID]
	if ts.Spent.Cents != 12000 {
		t.Errorf("transport spent = %d, want 12000", ts.Spent.Cents)
	}
	if !ts.OverBudget {
		t.Error("transport not flagged over budget at 120%")
	}
	if ts.Remaining.Cents != -2000 {
		t.Errorf("transport remaining = %d, want -2000", ts.Remaining.Cents)
	}
}

func TestGetBudgetSummaryTotals(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	food := f.category(t, "Food")
	transport := f.category(t, "Transport")
	account, err := f.ledger.CreateAccount(ctx, f.owner, "Checking", core.AccountBank, core.Money{Cents: 1000000})
	if err != nil {
		t.Fatalf("create account: %v", err)
	}

	if _, err := f.budgets.Create(ctx, f.owner, food.ID, core.Money{Cents: 40000}, 3, 2025); err != nil {
		t.Fatalf("create food budget: %v", err)
	}
	if _, err := f.budgets.Create(ctx, f.owner, transport.ID, core.Money{Cents: 10000}, 3, 2025); err != nil {
		t.Fatalf("create transport budget: %v", err)
	}

	f.spend(t, account.ID, food.ID, 10000, core.NewDate(2025, 3, 5))
	f.spend(t, account.ID, transport.ID, 2500, core.NewDate(2025, 3, 6))

	summary, err := f.budgets.GetBudgetSummary(ctx, f.owner, 3, 2025)
	if err != nil {
		t.Fatalf("budget summary: %v", err)
	}
	if summary.TotalBudget.Cents != 50000 {
		t.Errorf("total budget = %d, want 50000", summary.TotalBudget.Cents)
	}
	if summary.TotalSpent.Cents != 12500 {
		t.Errorf("total spent = %d, want 12500", summary.TotalSpent.Cents)
	}
	if summary.TotalRemaining.Cents != 37500 {
		t.Errorf("total remaining = %d, want 37500", summary.TotalRemaining.Cents)
	}
	if summary.OverallProgress != 25 {
		t.Errorf("overall progress = %v, want 25", summary.OverallProgress)
	}
}

func TestCopyToNextMonth(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	food := f.category(t, "Food")
	transport := f.category(t, "Transport")

	if _, err := f.budgets.Create(ctx, f.owner, food.ID, core.Money{Cents: 40000}, 3, 2025); err != nil {
		t.Fatalf("create food budget: %v", err)
	}
	if _, err := f.budgets.Create(ctx, f.owner, transport.ID, core.Money{Cents: 10000}, 3, 2025); err != nil {
		t.Fatalf("create transport budget: %v", err)
	}
	// Already present in the target period, must survive the copy.
	if _, err := f.budgets.Create(ctx, f.owner, food.ID, core.Money{Cents: 77777}, 4, 2025); err != nil {
		t.Fatalf("create existing april budget: %v", err)
	}

	copied, err := f.budgets.CopyToNextMonth(ctx, f.owner, 3, 2025)
	if err != nil {
		t.Fatalf("copy to next month: %v", err)
	}
	if len(copied) != 2 {
		t.Fatalf("copied %d budgets, want 2", len(copied))
	}

	april, err := f.budgets.ListWithSpending(ctx, f.owner, 4, 2025)
	if err != nil {
		t.Fatalf("list april: %v", err)
	}
	if len(april) != 2 {
		t.Fatalf("april has %d budgets, want 2", len(april))
	}
	for _, st := range april {
		switch st.Budget.CategoryID {
		case food.ID:
			if st.Budget.Amount.Cents != 77777 {
				t.Errorf("existing april food amount overwritten: %d", st.Budget.Amount.Cents)
			}
		case transport.ID:
			if st.Budget.Amount.Cents != 10000 {
				t.Errorf("april transport amount = %d, want 10000", st.Budget.Amount.Cents)
			}
		}
	}

	// Running the copy again changes nothing.
	if _, err := f.budgets.CopyToNextMonth(ctx, f.owner, 3, 2025); err != nil {
		t.Fatalf("second copy: %v", err)
	}
	again, err := f.budgets.ListWithSpending(ctx, f.owner, 4, 2025)
	if err != nil {
		t.Fatalf("list april again: %v", err)
	}
	if len(again) != 2 {
		t.Errorf("april has %d budgets after second copy, want 2", len(again))
	}
}

func TestCopyDecemberRollsIntoJanuary(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	food := f.category(t, "Food")
	if _, err := f.budgets.Create(ctx, f.owner, food.ID, core.Money{Cents: 40000}, 12, 2025); err != nil {
		t.Fatalf("create december budget: %v", err)
	}

	copied, err := f.budgets.CopyToNextMonth(ctx, f.owner, 12, 2025)
	if err != nil {
		t.Fatalf("copy december: %v", err)
	}
	if len(copied) != 1 {
		t.Fatalf("copied %d budgets, want 1", len(copied))
	}
	if copied[0].Month != 1 || copied[0].Year != 2026 {
		t.Errorf("copied period = %d/%d, want 1/2026", copied[0].Month, copied[0].Year)
	}
}

func TestUpdateAmount(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	food := f.category(t, "Food")
	b, err := f.budgets.Create(ctx, f.owner, food.ID, core.Money{Cents: 40000}, 3, 2025)
	if err != nil {
		t.Fatalf("create budget: %v", err)
	}

	updated, err := f.budgets.UpdateAmount(ctx, f.owner, b.ID, core.Money{Cents: 55000})
	if err != nil {
		t.Fatalf("update amount: %v", err)
	}
	if updated.Amount.Cents != 55000 {
		t.Errorf("amount = %d, want 55000", updated.Amount.Cents)
	}

	if _, err := f.budgets.UpdateAmount(ctx, f.owner, b.ID, core.Money{Cents: -1}); !errors.Is(err, core.ErrValidation) {
		t.Errorf("negative amount error = %v, want ErrValidation", err)
	}
}

func TestDeleteBudget(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	food := f.category(t, "Food")
	b, err := f.budgets.Create(ctx, f.owner, food.ID, core.Money{Cents: 40000}, 3, 2025)
	if err != nil {
		t.Fatalf("create budget: %v", err)
	}

	if err := f.budgets.Delete(ctx, f.owner, b.ID); err != nil {
		t.Fatalf("delete budget: %v", err)
	}
	if _, err := f.budgets.Get(ctx, f.owner, b.ID); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("get deleted budget error = %v, want ErrNotFound", err)
	}
}
