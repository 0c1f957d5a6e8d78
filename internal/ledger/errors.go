package ledger

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/cabstats/internal/model"
	"github.com/cleared-dev/cabstats/internal/store"
)

var (
	// ErrValidation marks missing or out-of-range input.
	ErrValidation = errors.New("validation failed")
	// ErrNotFound is shared with the store so lookups of missing records
	// match it without translation.
	ErrNotFound = store.ErrNotFound
	// ErrPreconditionFailed marks an operation invalid in the current state,
	// such as ending a ride when none is active.
	ErrPreconditionFailed = errors.New("precondition failed")
	// ErrInvalidArgument marks a self-transfer or a non-positive amount.
	ErrInvalidArgument = errors.New("invalid argument")
)

// ValidationError describes one rejected input field.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

func (e ValidationError) Unwrap() error {
	return ErrValidation
}

// rejected reports whether err is a business rule refusal rather than a
// storage failure.
func rejected(err error) bool {
	return errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrPreconditionFailed) ||
		errors.Is(err, ErrInvalidArgument)
}

func precondition(msg string) error {
	return fmt.Errorf("%w: %s", ErrPreconditionFailed, msg)
}

func invalidArgument(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}

func unknownAccount(name model.AccountName) error {
	return fmt.Errorf("account %q: %w", name, ErrNotFound)
}

// checkCents rejects amounts with more than two decimal places.
func checkCents(field string, d decimal.Decimal) error {
	if !model.IsCents(d) {
		return ValidationError{Field: field, Message: fmt.Sprintf("%s has more than 2 decimal places", d)}
	}
	return nil
}
