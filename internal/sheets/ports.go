package sheets

import (
	"context"

	"fintrack/internal/core"
)

// Row is one exported transaction with account and category names
// already resolved, so writers never need database access.
type Row struct {
	Date        core.Date
	Type        core.TransactionType
	Description string
	Amount      core.Money
	Account     string
	ToAccount   string
	Category    string
}

// Ports for outbound adapters.
type (
	TransactionWriter interface {
		Append(ctx context.Context, r Row) (rowRef string, err error)
	}
)
