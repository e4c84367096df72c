// Package worker exports transaction changes to a spreadsheet. It is
// driven by AMQP notifications with a polling fallback for messages
// lost while the worker was down.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"fintrack/internal/amqp"
	"fintrack/internal/core"
	"fintrack/internal/sheets"
	"fintrack/internal/storage"
)

type SyncWorker struct {
	store     *storage.Repository
	writer    sheets.TransactionWriter
	batchSize int
}

func NewSyncWorker(store *storage.Repository, writer sheets.TransactionWriter, batchSize int) *SyncWorker {
	return &SyncWorker{
		store:     store,
		writer:    writer,
		batchSize: batchSize,
	}
}

// HandleEvent processes one transaction event from AMQP. Deleted
// transactions have nothing to export; the stored row is already gone.
func (w *SyncWorker) HandleEvent(ctx context.Context, msg *amqp.TransactionEventMessage) error {
	slog.InfoContext(ctx, "Processing transaction event",
		"kind", msg.Kind,
		"id", msg.ID,
		"version", msg.Version)

	if msg.Kind == amqp.KindDeleted {
		return nil
	}

	t, err := w.store.Queries().GetTransactionAnyOwner(ctx, msg.ID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			// Deleted between publish and delivery.
			slog.WarnContext(ctx, "Transaction gone before export", "id", msg.ID)
			return nil
		}
		return fmt.Errorf("get transaction: %w", err)
	}

	// A stale version means a newer event is already in flight for
	// this transaction; exporting the current row covers both.
	if t.Version > msg.Version {
		slog.InfoContext(ctx, "Superseded event, exporting current version",
			"id", msg.ID,
			"event_version", msg.Version,
			"current_version", t.Version)
	}

	return w.exportTransaction(ctx, t)
}

// HandleGoalEvent processes one goal funding event. Goals have no
// export destination; the handler records the funding state so the
// queue is drained and the movement is traceable.
func (w *SyncWorker) HandleGoalEvent(ctx context.Context, msg *amqp.GoalEventMessage) error {
	g, err := w.store.Queries().GetGoalAnyOwner(ctx, msg.GoalID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			// Deleted between publish and delivery.
			slog.WarnContext(ctx, "Goal gone before processing", "goal_id", msg.GoalID)
			return nil
		}
		return fmt.Errorf("get goal: %w", err)
	}

	slog.InfoContext(ctx, "Goal funding recorded",
		"kind", msg.Kind,
		"goal_id", g.ID,
		"allocation_id", msg.AllocationID,
		"name", g.Name,
		"current_cents", g.CurrentAmount.Cents,
		"target_cents", g.TargetAmount.Cents,
		"completed", g.Completed)
	return nil
}

// ProcessPending exports transactions that never got a successful
// export, as a backup for lost AMQP messages.
func (w *SyncWorker) ProcessPending(ctx context.Context) error {
	return w.processPendingBatch(ctx, w.batchSize)
}

// StartupSyncCheck drains the pending backlog at worker startup with a
// larger batch, recovering from downtime.
func (w *SyncWorker) StartupSyncCheck(ctx context.Context) error {
	return w.processPendingBatch(ctx, w.batchSize*5)
}

func (w *SyncWorker) processPendingBatch(ctx context.Context, limit int) error {
	pending, err := w.store.Queries().ListPendingSync(ctx, limit)
	if err != nil {
		return fmt.Errorf("list pending transactions: %w", err)
	}
	if len(pending) == 0 {
		return nil
	}

	slog.InfoContext(ctx, "Processing pending transactions", "count", len(pending))

	synced := 0
	failed := 0
	for _, p := range pending {
		t, err := w.store.Queries().GetTransactionAnyOwner(ctx, p.ID)
		if err != nil {
			slog.ErrorContext(ctx, "Failed to load pending transaction", "id", p.ID, "error", err)
			if markErr := w.store.Queries().MarkSyncError(ctx, p.ID); markErr != nil {
				slog.ErrorContext(ctx, "Failed to mark sync error", "id", p.ID, "error", markErr)
			}
			failed++
			continue
		}
		if err := w.exportTransaction(ctx, t); err != nil {
			slog.ErrorContext(ctx, "Failed to export pending transaction", "id", p.ID, "error", err)
			failed++
			continue
		}
		synced++
	}

	slog.InfoContext(ctx, "Pending sync pass completed",
		"total", len(pending),
		"synced", synced,
		"errors", failed)
	return nil
}

func (w *SyncWorker) exportTransaction(ctx context.Context, t core.Transaction) error {
	row, err := w.buildRow(ctx, t)
	if err != nil {
		if markErr := w.store.Queries().MarkSyncError(ctx, t.ID); markErr != nil {
			slog.ErrorContext(ctx, "Failed to mark sync error", "id", t.ID, "error", markErr)
		}
		return fmt.Errorf("build export row: %w", err)
	}

	ref, err := w.writer.Append(ctx, row)
	if err != nil {
		if markErr := w.store.Queries().MarkSyncError(ctx, t.ID); markErr != nil {
			slog.ErrorContext(ctx, "Failed to mark sync error", "id", t.ID, "error", markErr)
		}
		return fmt.Errorf("append export row: %w", err)
	}

	// Guarded by version so a concurrent update keeps the row pending.
	if err := w.store.Queries().MarkSynced(ctx, t.ID, t.Version); err != nil {
		// The export itself worked; do not fail the message.
		slog.ErrorContext(ctx, "Failed to mark as synced", "id", t.ID, "error", err)
	}

	slog.InfoContext(ctx, "Exported transaction",
		"id", t.ID,
		"version", t.Version,
		"row_ref", ref)
	return nil
}

// buildRow resolves account and category names so the spreadsheet is
// readable without database access.
func (w *SyncWorker) buildRow(ctx context.Context, t core.Transaction) (sheets.Row, error) {
	account, err := w.store.Queries().GetAccount(ctx, t.OwnerID, t.AccountID)
	if err != nil {
		return sheets.Row{}, fmt.Errorf("resolve account %d: %w", t.AccountID, err)
	}

	row := sheets.Row{
		Date:        t.Date,
		Type:        t.Type,
		Description: t.Description,
		Amount:      t.Amount,
		Account:     account.Name,
	}

	if t.ToAccountID != nil {
		to, err := w.store.Queries().GetAccount(ctx, t.OwnerID, *t.ToAccountID)
		if err != nil {
			return sheets.Row{}, fmt.Errorf("resolve destination account %d: %w", *t.ToAccountID, err)
		}
		row.ToAccount = to.Name
	}

	if t.CategoryID != nil {
		cat, err := w.store.Queries().GetCategory(ctx, t.OwnerID, *t.CategoryID)
		if err != nil {
			return sheets.Row{}, fmt.Errorf("resolve category %d: %w", *t.CategoryID, err)
		}
		row.Category = cat.Name
	}

	return row, nil
}
