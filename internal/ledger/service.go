package ledger

import (
	"context"
	"fmt"
	"log/slog"

	"fintrack/internal/core"
	"fintrack/internal/storage"
)

// EventPublisher receives notifications after a ledger mutation has
// committed. Publishing is best-effort; failures are logged, never
// surfaced to the caller.
type EventPublisher interface {
	PublishTransactionEvent(ctx context.Context, kind string, id, version int64) error
}

// Service is the transaction lifecycle manager. Every financial
// mutation runs in a single store transaction so the row write and the
// balance effect are all-or-nothing.
type Service struct {
	store  *storage.Repository
	events EventPublisher
	clock  core.Clock
}

func NewService(store *storage.Repository, events EventPublisher, clock core.Clock) *Service {
	if clock == nil {
		clock = core.SystemClock()
	}
	return &Service{store: store, events: events, clock: clock}
}

// TransactionPatch carries the updatable transaction fields. Nil means
// "keep the stored value". The transaction type itself is not
// updatable.
type TransactionPatch struct {
	Amount      *core.Money
	AccountID   *int64
	ToAccountID *int64
	CategoryID  *int64
	Description *string
	Notes       *string
	Date        *core.Date
}

// CreateTransaction validates the draft, persists the row and applies
// its balance effect in one unit of work.
func (s *Service) CreateTransaction(ctx context.Context, ownerID int64, draft core.TransactionDraft) (core.Transaction, error) {
	if err := draft.Validate(); err != nil {
		return core.Transaction{}, err
	}

	t := transactionFromDraft(ownerID, draft)

	err := s.store.InTx(ctx, func(q *storage.Queries) error {
		if err := s.checkReferences(ctx, q, t); err != nil {
			return err
		}
		if err := q.CreateTransaction(ctx, &t); err != nil {
			return err
		}
		return applyDeltas(ctx, q, Effect(t))
	})
	if err != nil {
		return core.Transaction{}, err
	}

	slog.InfoContext(ctx, "transaction created",
		"transaction_id", t.ID, "type", string(t.Type), "amount_cents", t.Amount.Cents)
	s.publish(ctx, "created", t.ID, t.Version)
	return t, nil
}

// UpdateTransaction reverses the currently stored effect, persists the
// merged fields and re-applies the effect of the new state. The
// two-phase replace happens even when the edit touches only
// description or notes.
func (s *Service) UpdateTransaction(ctx context.Context, ownerID, id int64, patch TransactionPatch) (core.Transaction, error) {
	var updated core.Transaction

	err := s.store.InTx(ctx, func(q *storage.Queries) error {
		stored, err := q.GetTransaction(ctx, ownerID, id)
		if err != nil {
			return err
		}

		updated = merge(stored, patch)
		if err := validateMerged(updated); err != nil {
			return err
		}
		if err := s.checkReferences(ctx, q, updated); err != nil {
			return err
		}

		deltas := Replace(stored, updated)
		if err := q.UpdateTransaction(ctx, &updated); err != nil {
			return err
		}
		return applyDeltas(ctx, q, deltas)
	})
	if err != nil {
		return core.Transaction{}, err
	}

	slog.InfoContext(ctx, "transaction updated",
		"transaction_id", updated.ID, "type", string(updated.Type), "amount_cents", updated.Amount.Cents)
	s.publish(ctx, "updated", updated.ID, updated.Version)
	return updated, nil
}

// DeleteTransaction reverses the stored effect and removes the row.
func (s *Service) DeleteTransaction(ctx context.Context, ownerID, id int64) error {
	var deleted core.Transaction

	err := s.store.InTx(ctx, func(q *storage.Queries) error {
		stored, err := q.GetTransaction(ctx, ownerID, id)
		if err != nil {
			return err
		}
		deleted = stored

		if err := applyDeltas(ctx, q, Reverse(stored)); err != nil {
			return err
		}
		return q.DeleteTransaction(ctx, ownerID, id)
	})
	if err != nil {
		return err
	}

	slog.InfoContext(ctx, "transaction deleted",
		"transaction_id", deleted.ID, "type", string(deleted.Type))
	s.publish(ctx, "deleted", deleted.ID, deleted.Version)
	return nil
}

func (s *Service) GetTransaction(ctx context.Context, ownerID, id int64) (core.Transaction, error) {
	return s.store.Queries().GetTransaction(ctx, ownerID, id)
}

func (s *Service) ListTransactions(ctx context.Context, ownerID int64, f storage.TransactionFilter) ([]core.Transaction, error) {
	return s.store.Queries().ListTransactions(ctx, ownerID, f)
}

// RecentTransactions returns the owner's latest transactions, newest
// first.
func (s *Service) RecentTransactions(ctx context.Context, ownerID int64, limit int) ([]core.Transaction, error) {
	return s.store.Queries().ListTransactions(ctx, ownerID, storage.TransactionFilter{Limit: limit})
}

// MonthlySummary totals income and expenses for a calendar month.
// Month and Year carry the period that was actually summed, which
// matters when the caller left them zero and the clock filled them in.
type MonthlySummary struct {
	Month    int
	Year     int
	Income   core.Money
	Expenses core.Money
	Net      core.Money
}

func (s *Service) MonthlyIncome(ctx context.Context, ownerID int64, month, year int) (core.Money, error) {
	return s.sumForMonth(ctx, ownerID, core.TransactionIncome, month, year)
}

func (s *Service) MonthlyExpenses(ctx context.Context, ownerID int64, month, year int) (core.Money, error) {
	return s.sumForMonth(ctx, ownerID, core.TransactionExpense, month, year)
}

// GetMonthlySummary sums the period's activity. Month/year default to
// the current period when zero.
func (s *Service) GetMonthlySummary(ctx context.Context, ownerID int64, month, year int) (MonthlySummary, error) {
	if month == 0 || year == 0 {
		now := s.clock.Now()
		month, year = int(now.Month()), now.Year()
	}

	income, err := s.MonthlyIncome(ctx, ownerID, month, year)
	if err != nil {
		return MonthlySummary{}, err
	}
	expenses, err := s.MonthlyExpenses(ctx, ownerID, month, year)
	if err != nil {
		return MonthlySummary{}, err
	}
	return MonthlySummary{
		Month:    month,
		Year:     year,
		Income:   income,
		Expenses: expenses,
		Net:      income.Sub(expenses),
	}, nil
}

func (s *Service) sumForMonth(ctx context.Context, ownerID int64, typ core.TransactionType, month, year int) (core.Money, error) {
	from, to := core.MonthBounds(month, year)
	cents, err := s.store.Queries().SumTransactions(ctx, ownerID, typ, from, to)
	if err != nil {
		return core.Money{}, err
	}
	return core.Money{Cents: cents}, nil
}

// transactionFromDraft builds the persistable row for each draft
// variant. The switch is exhaustive over the sealed draft set.
func transactionFromDraft(ownerID int64, draft core.TransactionDraft) core.Transaction {
	switch d := draft.(type) {
	case core.IncomeDraft:
		categoryID := d.CategoryID
		return core.Transaction{
			OwnerID:     ownerID,
			Type:        core.TransactionIncome,
			Amount:      d.Amount,
			AccountID:   d.AccountID,
			CategoryID:  &categoryID,
			Description: d.Description,
			Notes:       d.Notes,
			Date:        d.Date,
		}
	case core.ExpenseDraft:
		categoryID := d.CategoryID
		return core.Transaction{
			OwnerID:     ownerID,
			Type:        core.TransactionExpense,
			Amount:      d.Amount,
			AccountID:   d.AccountID,
			CategoryID:  &categoryID,
			Description: d.Description,
			Notes:       d.Notes,
			Date:        d.Date,
		}
	case core.TransferDraft:
		toAccountID := d.ToAccountID
		description := d.Description
		if description == "" {
			description = "Transfer"
		}
		return core.Transaction{
			OwnerID:     ownerID,
			Type:        core.TransactionTransfer,
			Amount:      d.Amount,
			AccountID:   d.FromAccountID,
			ToAccountID: &toAccountID,
			Description: description,
			Notes:       d.Notes,
			Date:        d.Date,
		}
	}
	panic(fmt.Sprintf("unknown draft type %T", draft))
}

func merge(stored core.Transaction, patch TransactionPatch) core.Transaction {
	t := stored
	if patch.Amount != nil {
		t.Amount = *patch.Amount
	}
	if patch.AccountID != nil {
		t.AccountID = *patch.AccountID
	}
	if patch.ToAccountID != nil {
		t.ToAccountID = patch.ToAccountID
	}
	if patch.CategoryID != nil {
		t.CategoryID = patch.CategoryID
	}
	if patch.Description != nil {
		t.Description = *patch.Description
	}
	if patch.Notes != nil {
		t.Notes = *patch.Notes
	}
	if patch.Date != nil {
		t.Date = *patch.Date
	}
	return t
}

// validateMerged re-checks the cross-field invariants on the
// post-merge state, so a partial edit cannot produce a self-transfer,
// a non-positive amount, or role fields that contradict the type.
func validateMerged(t core.Transaction) error {
	if err := t.Amount.Validate(); err != nil {
		return err
	}
	if err := t.Date.Validate(); err != nil {
		return err
	}
	if t.Type == core.TransactionTransfer {
		if t.ToAccountID == nil {
			return core.ErrMissingAccount
		}
		if *t.ToAccountID == t.AccountID {
			return core.ErrSameAccount
		}
		if t.CategoryID != nil {
			return fmt.Errorf("%w: transfers cannot carry a category", core.ErrValidation)
		}
		return nil
	}
	if t.ToAccountID != nil {
		return fmt.Errorf("%w: destination account is only valid on transfers", core.ErrValidation)
	}
	if t.CategoryID == nil {
		return core.ErrMissingCategory
	}
	return nil
}

// checkReferences confirms the accounts (and category, if any) the
// transaction points at exist and belong to the owner.
func (s *Service) checkReferences(ctx context.Context, q *storage.Queries, t core.Transaction) error {
	if _, err := q.GetAccount(ctx, t.OwnerID, t.AccountID); err != nil {
		return err
	}
	if t.ToAccountID != nil {
		if _, err := q.GetAccount(ctx, t.OwnerID, *t.ToAccountID); err != nil {
			return err
		}
	}
	if t.CategoryID != nil {
		if _, err := q.GetCategory(ctx, t.OwnerID, *t.CategoryID); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) publish(ctx context.Context, kind string, id, version int64) {
	if s.events == nil {
		return
	}
	if err := s.events.PublishTransactionEvent(ctx, kind, id, version); err != nil {
		slog.ErrorContext(ctx, "failed to publish transaction event",
			"kind", kind, "transaction_id", id, "error", err)
	}
}
