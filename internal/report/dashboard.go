// Package report builds the read-only dashboard aggregation consumed
// by presentation layers. Everything here is a pure function of stored
// state; the cache in front is a convenience, not a source of truth.
package report

import (
	"context"
	"strconv"
	"time"

	"fintrack/internal/cache"
	"fintrack/internal/core"
	"fintrack/internal/goal"
	"fintrack/internal/ledger"
	"fintrack/internal/storage"
)

const (
	dashboardCacheSize = 256
	dashboardCacheTTL  = 30 * time.Second
	recentCount        = 5
	topGoalCount       = 3
)

type Stats struct {
	TotalBalance     core.Money
	MonthlyIncome    core.Money
	MonthlyExpenses  core.Money
	ProjectedSavings core.Money
}

// Tracker compares the month's net savings against the user's
// configured monthly savings goal.
type Tracker struct {
	Income          core.Money
	Expenses        core.Money
	NetSavings      core.Money
	SavingsGoal     core.Money
	SavingsProgress float64
	OnTrack         bool
	Shortfall       core.Money
}

type Dashboard struct {
	Stats              Stats
	MonthlyTracker     Tracker
	RecentTransactions []core.Transaction
	TopGoals           []goal.Status
}

type Service struct {
	ledgerSvc *ledger.Service
	goalSvc   *goal.Service
	store     *storage.Repository
	clock     core.Clock
	cache     *cache.LRU[Dashboard]
}

func NewService(ledgerSvc *ledger.Service, goalSvc *goal.Service, store *storage.Repository, clock core.Clock) *Service {
	if clock == nil {
		clock = core.SystemClock()
	}
	return &Service{
		ledgerSvc: ledgerSvc,
		goalSvc:   goalSvc,
		store:     store,
		clock:     clock,
		cache:     cache.NewLRU[Dashboard](dashboardCacheSize, dashboardCacheTTL),
	}
}

// GetDashboard assembles the current month's overview for one owner.
func (s *Service) GetDashboard(ctx context.Context, ownerID int64) (Dashboard, error) {
	key := strconv.FormatInt(ownerID, 10)
	if d, ok := s.cache.Get(key); ok {
		return d, nil
	}

	now := s.clock.Now()
	month, year := int(now.Month()), now.Year()

	summary, err := s.ledgerSvc.GetMonthlySummary(ctx, ownerID, month, year)
	if err != nil {
		return Dashboard{}, err
	}

	accounts, err := s.ledgerSvc.GetAccountsSummary(ctx, ownerID)
	if err != nil {
		return Dashboard{}, err
	}

	savingsGoalCents, err := s.store.Queries().MonthlySavingsGoal(ctx, ownerID)
	if err != nil {
		return Dashboard{}, err
	}
	savingsGoal := core.Money{Cents: savingsGoalCents}

	recent, err := s.ledgerSvc.RecentTransactions(ctx, ownerID, recentCount)
	if err != nil {
		return Dashboard{}, err
	}

	topGoals, err := s.goalSvc.TopGoals(ctx, ownerID, topGoalCount)
	if err != nil {
		return Dashboard{}, err
	}
	goalStatuses := make([]goal.Status, 0, len(topGoals))
	for _, g := range topGoals {
		goalStatuses = append(goalStatuses, s.goalSvc.StatusOf(g))
	}

	d := Dashboard{
		Stats: Stats{
			TotalBalance:     accounts.TotalBalance,
			MonthlyIncome:    summary.Income,
			MonthlyExpenses:  summary.Expenses,
			ProjectedSavings: summary.Net,
		},
		MonthlyTracker:     buildTracker(summary, savingsGoal),
		RecentTransactions: recent,
		TopGoals:           goalStatuses,
	}

	s.cache.Set(key, d)
	return d, nil
}

// Invalidate drops the owner's cached dashboard; call after any write
// to their ledger.
func (s *Service) Invalidate(ownerID int64) {
	s.cache.Delete(strconv.FormatInt(ownerID, 10))
}

func buildTracker(summary ledger.MonthlySummary, savingsGoal core.Money) Tracker {
	onTrack := summary.Net.Cents >= savingsGoal.Cents

	progress := 0.0
	if savingsGoal.Cents > 0 {
		progress = float64(summary.Net.Cents) / float64(savingsGoal.Cents) * 100
		if progress > 100 {
			progress = 100
		}
		if progress < 0 {
			progress = 0
		}
	}

	shortfall := core.Money{}
	if !onTrack {
		shortfall = savingsGoal.Sub(summary.Net)
	}

	return Tracker{
		Income:          summary.Income,
		Expenses:        summary.Expenses,
		NetSavings:      summary.Net,
		SavingsGoal:     savingsGoal,
		SavingsProgress: progress,
		OnTrack:         onTrack,
		Shortfall:       shortfall,
	}
}
