package core

import "strings"

// Transaction drafts form a sum type over the three transaction roles.
// Each variant carries exactly the fields its role requires, so a
// draft that validates can always be persisted without re-checking
// role/field consistency. Dispatch is by type switch; the sealed
// draft() method keeps the set closed.
type (
	TransactionDraft interface {
		TransactionType() TransactionType
		Validate() error
		draft()
	}

	IncomeDraft struct {
		AccountID   int64
		CategoryID  int64
		Amount      Money
		Description string
		Notes       string
		Date        Date
	}

	ExpenseDraft struct {
		AccountID   int64
		CategoryID  int64
		Amount      Money
		Description string
		Notes       string
		Date        Date
	}

	TransferDraft struct {
		FromAccountID int64
		ToAccountID   int64
		Amount        Money
		Description   string
		Notes         string
		Date          Date
	}
)

func (IncomeDraft) draft()   {}
func (ExpenseDraft) draft()  {}
func (TransferDraft) draft() {}

func (IncomeDraft) TransactionType() TransactionType   { return TransactionIncome }
func (ExpenseDraft) TransactionType() TransactionType  { return TransactionExpense }
func (TransferDraft) TransactionType() TransactionType { return TransactionTransfer }

func (d IncomeDraft) Validate() error {
	return validateCategorized(d.AccountID, d.CategoryID, d.Amount, d.Description, d.Date)
}

func (d ExpenseDraft) Validate() error {
	return validateCategorized(d.AccountID, d.CategoryID, d.Amount, d.Description, d.Date)
}

func (d TransferDraft) Validate() error {
	if d.FromAccountID == 0 || d.ToAccountID == 0 {
		return ErrMissingAccount
	}
	if d.FromAccountID == d.ToAccountID {
		return ErrSameAccount
	}
	if err := d.Amount.Validate(); err != nil {
		return err
	}
	return d.Date.Validate()
}

func validateCategorized(accountID, categoryID int64, amount Money, description string, date Date) error {
	if accountID == 0 {
		return ErrMissingAccount
	}
	if categoryID == 0 {
		return ErrMissingCategory
	}
	if err := amount.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(description) == "" {
		return ErrEmptyDescription
	}
	return date.Validate()
}
