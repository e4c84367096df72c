package ledger

import (
	"testing"

	"fintrack/internal/core"
)

func ptr(v int64) *int64 { return &v }

func sumByAccount(deltas []BalanceDelta) map[int64]int64 {
	out := make(map[int64]int64)
	for _, d := range deltas {
		out[d.AccountID] += d.Cents
	}
	return out
}

func TestEffect(t *testing.T) {
	tests := []struct {
		name string
		tx   core.Transaction
		want map[int64]int64
	}{
		{
			name: "income credits its account",
			tx:   core.Transaction{Type: core.TransactionIncome, AccountID: 1, Amount: core.Money{Cents: 5000}},
			want: map[int64]int64{1: 5000},
		},
		{
			name: "expense debits its account",
			tx:   core.Transaction{Type: core.TransactionExpense, AccountID: 1, Amount: core.Money{Cents: 1250}},
			want: map[int64]int64{1: -1250},
		},
		{
			name: "transfer moves between accounts",
			tx:   core.Transaction{Type: core.TransactionTransfer, AccountID: 1, ToAccountID: ptr(2), Amount: core.Money{Cents: 3000}},
			want: map[int64]int64{1: -3000, 2: 3000},
		},
		{
			name: "transfer with missing destination only debits source",
			tx:   core.Transaction{Type: core.TransactionTransfer, AccountID: 1, Amount: core.Money{Cents: 3000}},
			want: map[int64]int64{1: -3000},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := sumByAccount(Effect(tt.tx))
			if len(got) != len(tt.want) {
				t.Fatalf("Effect() touched %d accounts, want %d", len(got), len(tt.want))
			}
			for id, cents := range tt.want {
				if got[id] != cents {
					t.Errorf("Effect() account %d = %d, want %d", id, got[id], cents)
				}
			}
		})
	}
}

func TestReverseCancelsEffect(t *testing.T) {
	txs := []core.Transaction{
		{Type: core.TransactionIncome, AccountID: 1, Amount: core.Money{Cents: 5000}},
		{Type: core.TransactionExpense, AccountID: 2, Amount: core.Money{Cents: 999}},
		{Type: core.TransactionTransfer, AccountID: 1, ToAccountID: ptr(2), Amount: core.Money{Cents: 42}},
	}

	for _, tx := range txs {
		net := sumByAccount(append(Effect(tx), Reverse(tx)...))
		for id, cents := range net {
			if cents != 0 {
				t.Errorf("%s: effect+reverse leaves account %d at %d, want 0", tx.Type, id, cents)
			}
		}
	}
}

func TestReplace(t *testing.T) {
	old := core.Transaction{Type: core.TransactionExpense, AccountID: 1, Amount: core.Money{Cents: 1000}}
	updated := core.Transaction{Type: core.TransactionExpense, AccountID: 2, Amount: core.Money{Cents: 2500}}

	net := sumByAccount(Replace(old, updated))
	if net[1] != 1000 {
		t.Errorf("Replace() account 1 = %d, want +1000 (old effect undone)", net[1])
	}
	if net[2] != -2500 {
		t.Errorf("Replace() account 2 = %d, want -2500 (new effect applied)", net[2])
	}
}

func TestReplaceSameStateIsNeutral(t *testing.T) {
	tx := core.Transaction{Type: core.TransactionTransfer, AccountID: 1, ToAccountID: ptr(2), Amount: core.Money{Cents: 700}}
	for id, cents := range sumByAccount(Replace(tx, tx)) {
		if cents != 0 {
			t.Errorf("Replace(tx, tx) leaves account %d at %d, want 0", id, cents)
		}
	}
}
