package core

import (
	"errors"
	"testing"
)

func TestIncomeDraftValidate(t *testing.T) {
	good := IncomeDraft{
		AccountID:   1,
		CategoryID:  2,
		Amount:      Money{Cents: 100},
		Description: "salary",
		Date:        NewDate(2026, 8, 1),
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	cases := []struct {
		name string
		d    IncomeDraft
		want error
	}{
		{"missing account", IncomeDraft{CategoryID: 2, Amount: Money{Cents: 1}, Description: "x", Date: NewDate(2026, 8, 1)}, ErrMissingAccount},
		{"missing category", IncomeDraft{AccountID: 1, Amount: Money{Cents: 1}, Description: "x", Date: NewDate(2026, 8, 1)}, ErrMissingCategory},
		{"zero amount", IncomeDraft{AccountID: 1, CategoryID: 2, Description: "x", Date: NewDate(2026, 8, 1)}, ErrInvalidAmount},
		{"empty description", IncomeDraft{AccountID: 1, CategoryID: 2, Amount: Money{Cents: 1}, Description: "  ", Date: NewDate(2026, 8, 1)}, ErrEmptyDescription},
		{"zero date", IncomeDraft{AccountID: 1, CategoryID: 2, Amount: Money{Cents: 1}, Description: "x"}, ErrInvalidDate},
	}
	for _, tc := range cases {
		if err := tc.d.Validate(); !errors.Is(err, tc.want) {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.want, err)
		}
	}
}

func TestTransferDraftValidate(t *testing.T) {
	good := TransferDraft{
		FromAccountID: 1,
		ToAccountID:   2,
		Amount:        Money{Cents: 100},
		Date:          NewDate(2026, 8, 1),
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	same := good
	same.ToAccountID = 1
	if err := same.Validate(); !errors.Is(err, ErrSameAccount) {
		t.Fatalf("expected same-account error, got %v", err)
	}

	missing := good
	missing.ToAccountID = 0
	if err := missing.Validate(); !errors.Is(err, ErrMissingAccount) {
		t.Fatalf("expected missing-account error, got %v", err)
	}
}

func TestDraftTypes(t *testing.T) {
	drafts := []TransactionDraft{IncomeDraft{}, ExpenseDraft{}, TransferDraft{}}
	want := []TransactionType{TransactionIncome, TransactionExpense, TransactionTransfer}
	for i, d := range drafts {
		if d.TransactionType() != want[i] {
			t.Fatalf("draft %d expected type %q, got %q", i, want[i], d.TransactionType())
		}
	}
}
