package core

import (
	"errors"
	"testing"
	"time"
)

func TestBudgetDerived(t *testing.T) {
	b := Budget{Amount: Money{Cents: 50000}}

	spent := Money{Cents: 60000}
	if got := b.Remaining(spent); got.Cents != -10000 {
		t.Fatalf("remaining expected -10000, got %d", got.Cents)
	}
	if got := b.Progress(spent); got != 100 {
		t.Fatalf("progress expected capped 100, got %v", got)
	}
	if !b.OverBudget(spent) {
		t.Fatal("expected over budget")
	}

	spent = Money{Cents: 25000}
	if got := b.Progress(spent); got != 50 {
		t.Fatalf("progress expected 50, got %v", got)
	}
	if b.OverBudget(spent) {
		t.Fatal("did not expect over budget")
	}

	zero := Budget{}
	if got := zero.Progress(Money{Cents: 100}); got != 0 {
		t.Fatalf("zero-amount budget progress expected 0, got %v", got)
	}
}

func TestGoalDerived(t *testing.T) {
	g := Goal{TargetAmount: Money{Cents: 100000}, CurrentAmount: Money{Cents: 25000}}
	if got := g.Progress(); got != 25 {
		t.Fatalf("progress expected 25, got %v", got)
	}
	if got := g.Remaining(); got.Cents != 75000 {
		t.Fatalf("remaining expected 75000, got %d", got.Cents)
	}

	g.CurrentAmount = Money{Cents: 120000}
	if got := g.Progress(); got != 100 {
		t.Fatalf("progress expected capped 100, got %v", got)
	}
	if got := g.Remaining(); got.Cents != 0 {
		t.Fatalf("remaining expected floored 0, got %d", got.Cents)
	}

	if (Goal{}).Progress() != 0 {
		t.Fatal("zero-target goal progress expected 0")
	}
}

func TestGoalDaysRemaining(t *testing.T) {
	now := time.Date(2026, 8, 1, 15, 30, 0, 0, time.UTC)

	g := Goal{Deadline: NewDate(2026, 8, 11)}
	if got := g.DaysRemaining(now); got == nil || *got != 10 {
		t.Fatalf("expected 10 days, got %v", got)
	}

	g.Deadline = NewDate(2026, 7, 1)
	if got := g.DaysRemaining(now); got == nil || *got != 0 {
		t.Fatalf("past deadline expected 0, got %v", got)
	}

	if got := (Goal{}).DaysRemaining(now); got != nil {
		t.Fatalf("no deadline expected nil, got %v", got)
	}
}

func TestAccountValidate(t *testing.T) {
	good := Account{Name: "Checking", Type: AccountBank}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if err := (Account{Name: " ", Type: AccountBank}).Validate(); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if err := (Account{Name: "x", Type: "stocks"}).Validate(); !errors.Is(err, ErrInvalidAccountType) {
		t.Fatalf("expected invalid account type, got %v", err)
	}
}

func TestBudgetValidate(t *testing.T) {
	good := Budget{CategoryID: 1, Amount: Money{Cents: 100}, Month: 12, Year: 2026}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	bads := []Budget{
		{Amount: Money{Cents: 100}, Month: 1},              // no category
		{CategoryID: 1, Month: 1},                          // zero amount
		{CategoryID: 1, Amount: Money{Cents: 1}, Month: 0}, // bad month
		{CategoryID: 1, Amount: Money{Cents: 1}, Month: 13},
	}
	for i, b := range bads {
		if err := b.Validate(); !errors.Is(err, ErrValidation) {
			t.Fatalf("case %d expected validation error, got %v", i, err)
		}
	}
}
