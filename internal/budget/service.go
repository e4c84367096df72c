// Package budget derives spending status for monthly category budgets.
// Spent, remaining and progress are computed from the transaction
// ledger on every read and are never persisted, so they cannot drift
// from the transactions they summarize.
package budget

import (
	"context"
	"fmt"
	"log/slog"

	"fintrack/internal/core"
	"fintrack/internal/storage"
)

// Status is a budget joined with its derived spending figures.
type Status struct {
	Budget       core.Budget
	CategoryName string
	Spent        core.Money
	Remaining    core.Money
	Progress     float64
	OverBudget   bool
}

// Summary aggregates one period's budgets for the presentation layer.
type Summary struct {
	Budgets         []Status
	TotalBudget     core.Money
	TotalSpent      core.Money
	TotalRemaining  core.Money
	OverallProgress float64
}

type Service struct {
	store *storage.Repository
	clock core.Clock
}

func NewService(store *storage.Repository, clock core.Clock) *Service {
	if clock == nil {
		clock = core.SystemClock()
	}
	return &Service{store: store, clock: clock}
}

// Create adds a budget for a category and period. Month/year default
// to the current period when zero. A second budget for the same
// (category, month, year) is a validation error; the store enforces
// the same uniqueness.
func (s *Service) Create(ctx context.Context, ownerID, categoryID int64, amount core.Money, month, year int) (core.Budget, error) {
	if month == 0 || year == 0 {
		now := s.clock.Now()
		month, year = int(now.Month()), now.Year()
	}

	b := core.Budget{OwnerID: ownerID, CategoryID: categoryID, Amount: amount, Month: month, Year: year}
	if err := b.Validate(); err != nil {
		return core.Budget{}, err
	}
	if _, err := s.store.Queries().GetCategory(ctx, ownerID, categoryID); err != nil {
		return core.Budget{}, err
	}
	if _, exists, err := s.store.Queries().FindBudget(ctx, ownerID, categoryID, month, year); err != nil {
		return core.Budget{}, err
	} else if exists {
		return core.Budget{}, fmt.Errorf("%w: budget for category %d already exists for %d/%d",
			core.ErrValidation, categoryID, month, year)
	}

	if err := s.store.Queries().CreateBudget(ctx, &b); err != nil {
		return core.Budget{}, err
	}
	return b, nil
}

func (s *Service) Get(ctx context.Context, ownerID, id int64) (core.Budget, error) {
	return s.store.Queries().GetBudget(ctx, ownerID, id)
}

// UpdateAmount changes the limit only. Category and period identify
// the budget and stay fixed.
func (s *Service) UpdateAmount(ctx context.Context, ownerID, id int64, amount core.Money) (core.Budget, error) {
	if err := amount.Validate(); err != nil {
		return core.Budget{}, err
	}
	if err := s.store.Queries().UpdateBudgetAmount(ctx, ownerID, id, amount.Cents); err != nil {
		return core.Budget{}, err
	}
	return s.store.Queries().GetBudget(ctx, ownerID, id)
}

func (s *Service) Delete(ctx context.Context, ownerID, id int64) error {
	return s.store.Queries().DeleteBudget(ctx, ownerID, id)
}

// Spent sums the period's expense transactions for the budget's
// category, by transaction date.
func (s *Service) Spent(ctx context.Context, b core.Budget) (core.Money, error) {
	from, to := core.MonthBounds(b.Month, b.Year)
	cents, err := s.store.Queries().CategorySpent(ctx, b.OwnerID, b.CategoryID, from, to)
	if err != nil {
		return core.Money{}, err
	}
	return core.Money{Cents: cents}, nil
}

// ListWithSpending returns the period's budgets with derived figures.
// Month/year default to the current period when zero.
func (s *Service) ListWithSpending(ctx context.Context, ownerID int64, month, year int) ([]Status, error) {
	if month == 0 || year == 0 {
		now := s.clock.Now()
		month, year = int(now.Month()), now.Year()
	}

	budgets, err := s.store.Queries().ListBudgets(ctx, ownerID, month, year)
	if err != nil {
		return nil, err
	}

	statuses := make([]Status, 0, len(budgets))
	for _, b := range budgets {
		spent, err := s.Spent(ctx, b)
		if err != nil {
			return nil, err
		}
		name := ""
		if c, err := s.store.Queries().GetCategory(ctx, ownerID, b.CategoryID); err == nil {
			name = c.Name
		}
		statuses = append(statuses, Status{
			Budget:       b,
			CategoryName: name,
			Spent:        spent,
			Remaining:    b.Remaining(spent),
			Progress:     b.Progress(spent),
			OverBudget:   b.OverBudget(spent),
		})
	}
	return statuses, nil
}

// GetBudgetSummary aggregates a period's budgets into totals.
func (s *Service) GetBudgetSummary(ctx context.Context, ownerID int64, month, year int) (Summary, error) {
	statuses, err := s.ListWithSpending(ctx, ownerID, month, year)
	if err != nil {
		return Summary{}, err
	}

	var totalBudget, totalSpent core.Money
	for _, st := range statuses {
		totalBudget = totalBudget.Add(st.Budget.Amount)
		totalSpent = totalSpent.Add(st.Spent)
	}

	overall := 0.0
	if totalBudget.Cents > 0 {
		overall = float64(totalSpent.Cents) / float64(totalBudget.Cents) * 100
		if overall > 100 {
			overall = 100
		}
	}

	return Summary{
		Budgets:         statuses,
		TotalBudget:     totalBudget,
		TotalSpent:      totalSpent,
		TotalRemaining:  totalBudget.Sub(totalSpent),
		OverallProgress: overall,
	}, nil
}

// CopyToNextMonth upserts every budget of the source period into the
// following period, rolling December into January. Existing
// target-period budgets are left untouched, so the operation is
// idempotent: running it twice creates no duplicates and changes no
// amounts.
func (s *Service) CopyToNextMonth(ctx context.Context, ownerID int64, month, year int) ([]core.Budget, error) {
	source, err := s.store.Queries().ListBudgets(ctx, ownerID, month, year)
	if err != nil {
		return nil, err
	}

	nextMonth, nextYear := core.NextPeriod(month, year)
	copied := make([]core.Budget, 0, len(source))

	err = s.store.InTx(ctx, func(q *storage.Queries) error {
		for _, b := range source {
			existing, found, err := q.FindBudget(ctx, ownerID, b.CategoryID, nextMonth, nextYear)
			if err != nil {
				return err
			}
			if found {
				copied = append(copied, existing)
				continue
			}
			nb := core.Budget{
				OwnerID:    ownerID,
				CategoryID: b.CategoryID,
				Amount:     b.Amount,
				Month:      nextMonth,
				Year:       nextYear,
			}
			if err := q.CreateBudget(ctx, &nb); err != nil {
				return err
			}
			copied = append(copied, nb)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "budgets copied to next period",
		"from", fmt.Sprintf("%d/%d", month, year),
		"to", fmt.Sprintf("%d/%d", nextMonth, nextYear),
		"count", len(copied))
	return copied, nil
}
