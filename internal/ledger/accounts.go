package ledger

import (
	"context"
	"log/slog"

	"fintrack/internal/core"
	"fintrack/internal/storage"
)

// AccountsSummary aggregates the owner's active accounts. Liabilities
// are reported as a positive magnitude.
type AccountsSummary struct {
	Accounts         []core.Account
	TotalBalance     core.Money
	TotalAssets      core.Money
	TotalLiabilities core.Money
	NetWorth         core.Money
}

func (s *Service) CreateAccount(ctx context.Context, ownerID int64, name string, typ core.AccountType, openingBalance core.Money) (core.Account, error) {
	a := core.Account{
		OwnerID: ownerID,
		Name:    name,
		Type:    typ,
		Balance: openingBalance,
		Active:  true,
	}
	if err := a.Validate(); err != nil {
		return core.Account{}, err
	}
	if err := s.store.Queries().CreateAccount(ctx, &a); err != nil {
		return core.Account{}, err
	}
	slog.InfoContext(ctx, "account created",
		"account_id", a.ID, "type", string(a.Type), "balance_cents", a.Balance.Cents)
	return a, nil
}

func (s *Service) GetAccount(ctx context.Context, ownerID, id int64) (core.Account, error) {
	return s.store.Queries().GetAccount(ctx, ownerID, id)
}

func (s *Service) ListAccounts(ctx context.Context, ownerID int64) ([]core.Account, error) {
	return s.store.Queries().ListAccounts(ctx, ownerID, true)
}

// UpdateAccount renames or retypes an account. The balance is not
// editable here; it only moves through transaction effects and
// reconciliation.
func (s *Service) UpdateAccount(ctx context.Context, ownerID, id int64, name string, typ core.AccountType) (core.Account, error) {
	a, err := s.store.Queries().GetAccount(ctx, ownerID, id)
	if err != nil {
		return core.Account{}, err
	}
	if name != "" {
		a.Name = name
	}
	if typ != "" {
		a.Type = typ
	}
	if err := a.Validate(); err != nil {
		return core.Account{}, err
	}
	if err := s.store.Queries().UpdateAccount(ctx, a); err != nil {
		return core.Account{}, err
	}
	return a, nil
}

// DeactivateAccount soft-deletes: the row and its transaction history
// stay, the account just stops appearing in active listings.
func (s *Service) DeactivateAccount(ctx context.Context, ownerID, id int64) error {
	a, err := s.store.Queries().GetAccount(ctx, ownerID, id)
	if err != nil {
		return err
	}
	a.Active = false
	return s.store.Queries().UpdateAccount(ctx, a)
}

// RecalculateBalance rebuilds an account's balance from its full
// transaction history. The stored balance must already equal the
// recomputed one whenever the lifecycle invariants held; this is the
// reconciliation escape hatch.
func (s *Service) RecalculateBalance(ctx context.Context, ownerID, id int64) (core.Account, error) {
	var a core.Account
	err := s.store.InTx(ctx, func(q *storage.Queries) error {
		var err error
		if a, err = q.GetAccount(ctx, ownerID, id); err != nil {
			return err
		}
		net, err := q.AccountNet(ctx, id)
		if err != nil {
			return err
		}
		if err := q.SetBalance(ctx, id, net); err != nil {
			return err
		}
		if a.Balance.Cents != net {
			slog.WarnContext(ctx, "account balance drifted from transaction history",
				"account_id", id, "stored_cents", a.Balance.Cents, "recomputed_cents", net)
		}
		a.Balance = core.Money{Cents: net}
		return nil
	})
	if err != nil {
		return core.Account{}, err
	}
	return a, nil
}

// GetAccountsSummary is the read-only aggregation used by the
// presentation layer.
func (s *Service) GetAccountsSummary(ctx context.Context, ownerID int64) (AccountsSummary, error) {
	accounts, err := s.store.Queries().ListAccounts(ctx, ownerID, true)
	if err != nil {
		return AccountsSummary{}, err
	}
	total, assets, liabilities, err := s.store.Queries().BalanceTotals(ctx, ownerID)
	if err != nil {
		return AccountsSummary{}, err
	}
	return AccountsSummary{
		Accounts:         accounts,
		TotalBalance:     core.Money{Cents: total},
		TotalAssets:      core.Money{Cents: assets},
		TotalLiabilities: core.Money{Cents: liabilities},
		NetWorth:         core.Money{Cents: assets - liabilities},
	}, nil
}
