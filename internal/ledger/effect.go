// Package ledger keeps account balances and the transaction ledger
// consistent: the balance engine computes the signed effect a
// transaction has on its account(s), and the lifecycle service applies
// create/update/delete atomically with that effect.
package ledger

import (
	"context"
	"fmt"

	"fintrack/internal/core"
	"fintrack/internal/storage"
)

// BalanceDelta is one signed adjustment to one account's balance.
type BalanceDelta struct {
	AccountID int64
	Cents     int64
}

// Effect computes the balance deltas a transaction applies when it
// enters the ledger: income credits its account, expense debits it,
// a transfer debits the source and credits the destination. Pure.
func Effect(t core.Transaction) []BalanceDelta {
	switch t.Type {
	case core.TransactionIncome:
		return []BalanceDelta{{AccountID: t.AccountID, Cents: t.Amount.Cents}}
	case core.TransactionExpense:
		return []BalanceDelta{{AccountID: t.AccountID, Cents: -t.Amount.Cents}}
	case core.TransactionTransfer:
		deltas := []BalanceDelta{{AccountID: t.AccountID, Cents: -t.Amount.Cents}}
		// A validated transfer always has a destination; the nil check
		// only guards rows that predate validation.
		if t.ToAccountID != nil {
			deltas = append(deltas, BalanceDelta{AccountID: *t.ToAccountID, Cents: t.Amount.Cents})
		}
		return deltas
	}
	return nil
}

// Reverse is the algebraic inverse of Effect: the deltas that undo a
// previously applied transaction.
func Reverse(t core.Transaction) []BalanceDelta {
	return negate(Effect(t))
}

// Replace is the reverse-then-reapply primitive behind every
// transaction update: undo the effect of the stored state, apply the
// effect of the new state. It is used even when the edit touches no
// financial field, which makes partial amount/account changes safe by
// construction.
func Replace(old, new core.Transaction) []BalanceDelta {
	return append(Reverse(old), Effect(new)...)
}

func negate(deltas []BalanceDelta) []BalanceDelta {
	out := make([]BalanceDelta, len(deltas))
	for i, d := range deltas {
		out[i] = BalanceDelta{AccountID: d.AccountID, Cents: -d.Cents}
	}
	return out
}

// applyDeltas persists a set of balance deltas inside the caller's
// transaction. A referenced account that no longer exists is a
// consistency violation and aborts the whole unit of work.
func applyDeltas(ctx context.Context, q *storage.Queries, deltas []BalanceDelta) error {
	for _, d := range deltas {
		if d.Cents == 0 {
			continue
		}
		if err := q.AdjustBalance(ctx, d.AccountID, d.Cents); err != nil {
			return fmt.Errorf("%w: balance update for account %d failed: %v",
				core.ErrConsistency, d.AccountID, err)
		}
	}
	return nil
}
