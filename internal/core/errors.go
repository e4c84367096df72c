package core

import (
	"errors"
	"fmt"
)

// Error taxonomy. Every domain error wraps one of the three category
// sentinels so callers can map it with errors.Is without knowing the
// specific failure.
var (
	ErrValidation  = errors.New("validation error")
	ErrNotFound    = errors.New("not found")
	ErrConsistency = errors.New("consistency error")
)

var (
	ErrInvalidAmount       = fmt.Errorf("%w: invalid amount", ErrValidation)
	ErrEmptyDescription    = fmt.Errorf("%w: empty description", ErrValidation)
	ErrEmptyName           = fmt.Errorf("%w: empty name", ErrValidation)
	ErrInvalidDate         = fmt.Errorf("%w: invalid date", ErrValidation)
	ErrInvalidMonth        = fmt.Errorf("%w: invalid month", ErrValidation)
	ErrMissingAccount      = fmt.Errorf("%w: missing account", ErrValidation)
	ErrMissingCategory     = fmt.Errorf("%w: missing category", ErrValidation)
	ErrSameAccount         = fmt.Errorf("%w: transfer source and destination account are the same", ErrValidation)
	ErrInvalidAccountType  = fmt.Errorf("%w: invalid account type", ErrValidation)
	ErrInvalidCategoryType = fmt.Errorf("%w: invalid category type", ErrValidation)
	ErrInsufficientFunds   = fmt.Errorf("%w: withdrawal exceeds saved amount", ErrValidation)
)
