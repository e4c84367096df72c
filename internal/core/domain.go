package core

import (
	"strings"
	"time"
)

const (
	AccountBank       AccountType = "bank"
	AccountEwallet    AccountType = "ewallet"
	AccountCash       AccountType = "cash"
	AccountCreditCard AccountType = "credit_card"
)

const (
	CategoryIncome  CategoryType = "income"
	CategoryExpense CategoryType = "expense"
)

const (
	TransactionIncome   TransactionType = "income"
	TransactionExpense  TransactionType = "expense"
	TransactionTransfer TransactionType = "transfer"
)

type (
	AccountType     string
	CategoryType    string
	TransactionType string

	// Date is a calendar date; the time-of-day part is always midnight UTC.
	Date struct {
		time.Time
	}

	// Account belongs to exactly one owner. Balance is the running net
	// of all the account's transaction effects and is recomputable from
	// the transaction history at any time.
	Account struct {
		ID      int64
		OwnerID int64
		Name    string
		Type    AccountType
		Balance Money
		Active  bool
	}

	// Category tags income and expense transactions. Transfers never
	// carry one.
	Category struct {
		ID      int64
		OwnerID int64
		Name    string
		Type    CategoryType
		Active  bool
	}

	// Transaction is a single ledger entry. AccountID is the source for
	// all types; ToAccountID is set for transfers only and CategoryID
	// for income/expense only. Amount is always positive; the sign of
	// its balance effect comes from Type.
	Transaction struct {
		ID          int64
		OwnerID     int64
		Type        TransactionType
		Amount      Money
		AccountID   int64
		ToAccountID *int64
		CategoryID  *int64
		Description string
		Notes       string
		Date        Date
		Version     int64
		CreatedAt   time.Time
	}

	// Budget is a monthly spending limit for one category. Spent,
	// remaining and progress are never stored; they are derived from
	// the transaction set on read.
	Budget struct {
		ID         int64
		OwnerID    int64
		CategoryID int64
		Amount     Money
		Month      int // 1-12
		Year       int
	}

	// Goal is a savings target. CurrentAmount is mutated only through
	// allocations and always equals the sum of their signed amounts.
	// A zero Deadline means no deadline; a zero MonthlyTarget means
	// none was set or derived.
	Goal struct {
		ID            int64
		OwnerID       int64
		AccountID     *int64
		Name          string
		TargetAmount  Money
		CurrentAmount Money
		Deadline      Date
		MonthlyTarget Money
		Completed     bool
	}

	// GoalAllocation is one signed funding event against a goal:
	// positive for a deposit, negative for a withdrawal. Allocations
	// are append-only; corrections are new allocations.
	GoalAllocation struct {
		ID        int64
		GoalID    int64
		OwnerID   int64
		AccountID *int64
		Amount    Money
		Notes     string
		Date      Date
	}
)

// NewDate creates a Date from year, month and day.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates an instant to its calendar date in UTC.
func DateOf(t time.Time) Date {
	return NewDate(t.UTC().Year(), int(t.UTC().Month()), t.UTC().Day())
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", strings.TrimSpace(s))
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date{Time: t}, nil
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

// IsEmpty reports whether the date was never set (optional dates).
func (d Date) IsEmpty() bool { return d.IsZero() }

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format("2006-01-02")
}

func (t AccountType) Validate() error {
	switch t {
	case AccountBank, AccountEwallet, AccountCash, AccountCreditCard:
		return nil
	}
	return ErrInvalidAccountType
}

func (t CategoryType) Validate() error {
	switch t {
	case CategoryIncome, CategoryExpense:
		return nil
	}
	return ErrInvalidCategoryType
}

func (a Account) Validate() error {
	if strings.TrimSpace(a.Name) == "" {
		return ErrEmptyName
	}
	return a.Type.Validate()
}

func (c Category) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyName
	}
	return c.Type.Validate()
}

func (b Budget) Validate() error {
	if b.CategoryID == 0 {
		return ErrMissingCategory
	}
	if err := b.Amount.Validate(); err != nil {
		return err
	}
	if b.Month < 1 || b.Month > 12 {
		return ErrInvalidMonth
	}
	return nil
}

// Spent-derived accessors. Spent itself comes from the budget
// aggregator; these keep the arithmetic in one place.

// Remaining is amount minus spent and may go negative.
func (b Budget) Remaining(spent Money) Money { return b.Amount.Sub(spent) }

// Progress is spent/amount as a percentage, capped at 100 for display.
// A zero budget amount reports 0.
func (b Budget) Progress(spent Money) float64 {
	if b.Amount.Cents <= 0 {
		return 0
	}
	p := float64(spent.Cents) / float64(b.Amount.Cents) * 100
	if p > 100 {
		return 100
	}
	return p
}

// OverBudget uses the uncapped comparison, unlike Progress.
func (b Budget) OverBudget(spent Money) bool { return spent.Cents > b.Amount.Cents }

func (g Goal) Validate() error {
	if strings.TrimSpace(g.Name) == "" {
		return ErrEmptyName
	}
	return g.TargetAmount.Validate()
}

// Progress is current/target as a percentage, capped at 100. A zero
// target reports 0.
func (g Goal) Progress() float64 {
	if g.TargetAmount.Cents <= 0 {
		return 0
	}
	p := float64(g.CurrentAmount.Cents) / float64(g.TargetAmount.Cents) * 100
	if p > 100 {
		return 100
	}
	return p
}

// Remaining is target minus current, floored at zero.
func (g Goal) Remaining() Money {
	r := g.TargetAmount.Sub(g.CurrentAmount)
	if r.Cents < 0 {
		return Money{}
	}
	return r
}

// DaysRemaining is the number of days until the deadline, floored at
// zero, or nil when the goal has no deadline.
func (g Goal) DaysRemaining(now time.Time) *int {
	if g.Deadline.IsEmpty() {
		return nil
	}
	days := DaysBetween(DateOf(now), g.Deadline)
	if days < 0 {
		days = 0
	}
	return &days
}
