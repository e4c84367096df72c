package http

import (
	"time"

	"fintrack/internal/budget"
	"fintrack/internal/core"
	"fintrack/internal/goal"
	"fintrack/internal/ledger"
	"fintrack/internal/report"
)

// Response shapes. Amounts travel twice: raw cents for arithmetic and
// a formatted decimal string for display.

type moneyJSON struct {
	Cents     int64  `json:"cents"`
	Formatted string `json:"formatted"`
}

func toMoney(m core.Money) moneyJSON {
	return moneyJSON{Cents: m.Cents, Formatted: m.String()}
}

type accountJSON struct {
	ID      int64     `json:"id"`
	Name    string    `json:"name"`
	Type    string    `json:"type"`
	Balance moneyJSON `json:"balance"`
	Active  bool      `json:"active"`
}

func toAccount(a core.Account) accountJSON {
	return accountJSON{
		ID:      a.ID,
		Name:    a.Name,
		Type:    string(a.Type),
		Balance: toMoney(a.Balance),
		Active:  a.Active,
	}
}

func toAccounts(accounts []core.Account) []accountJSON {
	out := make([]accountJSON, 0, len(accounts))
	for _, a := range accounts {
		out = append(out, toAccount(a))
	}
	return out
}

type accountsSummaryJSON struct {
	Accounts         []accountJSON `json:"accounts"`
	TotalBalance     moneyJSON     `json:"total_balance"`
	TotalAssets      moneyJSON     `json:"total_assets"`
	TotalLiabilities moneyJSON     `json:"total_liabilities"`
	NetWorth         moneyJSON     `json:"net_worth"`
}

func toAccountsSummary(s ledger.AccountsSummary) accountsSummaryJSON {
	return accountsSummaryJSON{
		Accounts:         toAccounts(s.Accounts),
		TotalBalance:     toMoney(s.TotalBalance),
		TotalAssets:      toMoney(s.TotalAssets),
		TotalLiabilities: toMoney(s.TotalLiabilities),
		NetWorth:         toMoney(s.NetWorth),
	}
}

type categoryJSON struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Type   string `json:"type"`
	Active bool   `json:"active"`
}

func toCategory(c core.Category) categoryJSON {
	return categoryJSON{ID: c.ID, Name: c.Name, Type: string(c.Type), Active: c.Active}
}

type transactionJSON struct {
	ID          int64     `json:"id"`
	Type        string    `json:"type"`
	Amount      moneyJSON `json:"amount"`
	AccountID   int64     `json:"account_id"`
	ToAccountID *int64    `json:"to_account_id,omitempty"`
	CategoryID  *int64    `json:"category_id,omitempty"`
	Description string    `json:"description"`
	Notes       string    `json:"notes,omitempty"`
	Date        string    `json:"date"`
	Version     int64     `json:"version"`
	CreatedAt   string    `json:"created_at"`
}

func toTransaction(t core.Transaction) transactionJSON {
	return transactionJSON{
		ID:          t.ID,
		Type:        string(t.Type),
		Amount:      toMoney(t.Amount),
		AccountID:   t.AccountID,
		ToAccountID: t.ToAccountID,
		CategoryID:  t.CategoryID,
		Description: t.Description,
		Notes:       t.Notes,
		Date:        t.Date.String(),
		Version:     t.Version,
		CreatedAt:   t.CreatedAt.Format(time.RFC3339),
	}
}

func toTransactions(ts []core.Transaction) []transactionJSON {
	out := make([]transactionJSON, 0, len(ts))
	for _, t := range ts {
		out = append(out, toTransaction(t))
	}
	return out
}

type monthlySummaryJSON struct {
	Month    int       `json:"month"`
	Year     int       `json:"year"`
	Income   moneyJSON `json:"income"`
	Expenses moneyJSON `json:"expenses"`
	Net      moneyJSON `json:"net"`
}

type budgetStatusJSON struct {
	ID           int64     `json:"id"`
	CategoryID   int64     `json:"category_id"`
	CategoryName string    `json:"category_name"`
	Amount       moneyJSON `json:"amount"`
	Month        int       `json:"month"`
	Year         int       `json:"year"`
	Spent        moneyJSON `json:"spent"`
	Remaining    moneyJSON `json:"remaining"`
	Progress     float64   `json:"progress"`
	OverBudget   bool      `json:"over_budget"`
}

func toBudgetStatus(s budget.Status) budgetStatusJSON {
	return budgetStatusJSON{
		ID:           s.Budget.ID,
		CategoryID:   s.Budget.CategoryID,
		CategoryName: s.CategoryName,
		Amount:       toMoney(s.Budget.Amount),
		Month:        s.Budget.Month,
		Year:         s.Budget.Year,
		Spent:        toMoney(s.Spent),
		Remaining:    toMoney(s.Remaining),
		Progress:     s.Progress,
		OverBudget:   s.OverBudget,
	}
}

type budgetJSON struct {
	ID         int64     `json:"id"`
	CategoryID int64     `json:"category_id"`
	Amount     moneyJSON `json:"amount"`
	Month      int       `json:"month"`
	Year       int       `json:"year"`
}

func toBudget(b core.Budget) budgetJSON {
	return budgetJSON{
		ID:         b.ID,
		CategoryID: b.CategoryID,
		Amount:     toMoney(b.Amount),
		Month:      b.Month,
		Year:       b.Year,
	}
}

type budgetSummaryJSON struct {
	Budgets         []budgetStatusJSON `json:"budgets"`
	TotalBudget     moneyJSON          `json:"total_budget"`
	TotalSpent      moneyJSON          `json:"total_spent"`
	TotalRemaining  moneyJSON          `json:"total_remaining"`
	OverallProgress float64            `json:"overall_progress"`
}

func toBudgetSummary(s budget.Summary) budgetSummaryJSON {
	budgets := make([]budgetStatusJSON, 0, len(s.Budgets))
	for _, b := range s.Budgets {
		budgets = append(budgets, toBudgetStatus(b))
	}
	return budgetSummaryJSON{
		Budgets:         budgets,
		TotalBudget:     toMoney(s.TotalBudget),
		TotalSpent:      toMoney(s.TotalSpent),
		TotalRemaining:  toMoney(s.TotalRemaining),
		OverallProgress: s.OverallProgress,
	}
}

type goalJSON struct {
	ID            int64     `json:"id"`
	Name          string    `json:"name"`
	AccountID     *int64    `json:"account_id,omitempty"`
	TargetAmount  moneyJSON `json:"target_amount"`
	CurrentAmount moneyJSON `json:"current_amount"`
	Deadline      string    `json:"deadline,omitempty"`
	MonthlyTarget moneyJSON `json:"monthly_target"`
	Completed     bool      `json:"completed"`
	Progress      float64   `json:"progress"`
	Remaining     moneyJSON `json:"remaining"`
	DaysRemaining *int      `json:"days_remaining,omitempty"`
}

func toGoal(s goal.Status) goalJSON {
	g := s.Goal
	return goalJSON{
		ID:            g.ID,
		Name:          g.Name,
		AccountID:     g.AccountID,
		TargetAmount:  toMoney(g.TargetAmount),
		CurrentAmount: toMoney(g.CurrentAmount),
		Deadline:      g.Deadline.String(),
		MonthlyTarget: toMoney(g.MonthlyTarget),
		Completed:     g.Completed,
		Progress:      s.Progress,
		Remaining:     toMoney(s.Remaining),
		DaysRemaining: s.DaysRemaining,
	}
}

type goalsSummaryJSON struct {
	Goals           []goalJSON `json:"goals"`
	TotalTarget     moneyJSON  `json:"total_target"`
	TotalSaved      moneyJSON  `json:"total_saved"`
	OverallProgress float64    `json:"overall_progress"`
}

func toGoalsSummary(s goal.Summary) goalsSummaryJSON {
	goals := make([]goalJSON, 0, len(s.Goals))
	for _, g := range s.Goals {
		goals = append(goals, toGoal(g))
	}
	return goalsSummaryJSON{
		Goals:           goals,
		TotalTarget:     toMoney(s.TotalTarget),
		TotalSaved:      toMoney(s.TotalSaved),
		OverallProgress: s.OverallProgress,
	}
}

type allocationJSON struct {
	ID        int64     `json:"id"`
	GoalID    int64     `json:"goal_id"`
	AccountID *int64    `json:"account_id,omitempty"`
	Amount    moneyJSON `json:"amount"`
	Notes     string    `json:"notes,omitempty"`
	Date      string    `json:"date"`
}

func toAllocation(a core.GoalAllocation) allocationJSON {
	return allocationJSON{
		ID:        a.ID,
		GoalID:    a.GoalID,
		AccountID: a.AccountID,
		Amount:    toMoney(a.Amount),
		Notes:     a.Notes,
		Date:      a.Date.String(),
	}
}

type dashboardJSON struct {
	Stats struct {
		TotalBalance     moneyJSON `json:"total_balance"`
		MonthlyIncome    moneyJSON `json:"monthly_income"`
		MonthlyExpenses  moneyJSON `json:"monthly_expenses"`
		ProjectedSavings moneyJSON `json:"projected_savings"`
	} `json:"stats"`
	MonthlyTracker struct {
		Income          moneyJSON `json:"income"`
		Expenses        moneyJSON `json:"expenses"`
		NetSavings      moneyJSON `json:"net_savings"`
		SavingsGoal     moneyJSON `json:"savings_goal"`
		SavingsProgress float64   `json:"savings_progress"`
		OnTrack         bool      `json:"on_track"`
		Shortfall       moneyJSON `json:"shortfall"`
	} `json:"monthly_tracker"`
	RecentTransactions []transactionJSON `json:"recent_transactions"`
	TopGoals           []goalJSON        `json:"top_goals"`
}

func toDashboard(d report.Dashboard) dashboardJSON {
	var out dashboardJSON
	out.Stats.TotalBalance = toMoney(d.Stats.TotalBalance)
	out.Stats.MonthlyIncome = toMoney(d.Stats.MonthlyIncome)
	out.Stats.MonthlyExpenses = toMoney(d.Stats.MonthlyExpenses)
	out.Stats.ProjectedSavings = toMoney(d.Stats.ProjectedSavings)

	out.MonthlyTracker.Income = toMoney(d.MonthlyTracker.Income)
	out.MonthlyTracker.Expenses = toMoney(d.MonthlyTracker.Expenses)
	out.MonthlyTracker.NetSavings = toMoney(d.MonthlyTracker.NetSavings)
	out.MonthlyTracker.SavingsGoal = toMoney(d.MonthlyTracker.SavingsGoal)
	out.MonthlyTracker.SavingsProgress = d.MonthlyTracker.SavingsProgress
	out.MonthlyTracker.OnTrack = d.MonthlyTracker.OnTrack
	out.MonthlyTracker.Shortfall = toMoney(d.MonthlyTracker.Shortfall)

	out.RecentTransactions = toTransactions(d.RecentTransactions)
	out.TopGoals = make([]goalJSON, 0, len(d.TopGoals))
	for _, g := range d.TopGoals {
		out.TopGoals = append(out.TopGoals, toGoal(g))
	}
	return out
}
