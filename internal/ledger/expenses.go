package ledger

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/cabstats/internal/model"
)

// ExpenseInput is what the driver enters for an expense.
type ExpenseInput struct {
	Category    model.ExpenseCategory
	Amount      decimal.Decimal
	Account     model.AccountName // ignored for fuel, which always comes out of the Fuel Account
	Description string
}

// Target returns the account the expense is debited from.
func (in ExpenseInput) Target() model.AccountName {
	if in.Category == model.CategoryFuel {
		return model.AccountFuel
	}
	return in.Account
}

// Validate checks the input without touching the ledger.
func (in ExpenseInput) Validate() error {
	if in.Category == "" {
		return ValidationError{Field: "category", Message: "is required"}
	}
	if !in.Category.Valid() {
		return ValidationError{Field: "category", Message: fmt.Sprintf("unknown category %q", in.Category)}
	}
	if in.Amount.IsZero() {
		return ValidationError{Field: "amount", Message: "is required"}
	}
	if in.Amount.IsNegative() {
		return ValidationError{Field: "amount", Message: "must be greater than zero"}
	}
	if err := checkCents("amount", in.Amount); err != nil {
		return err
	}
	target := in.Target()
	if target == "" {
		return ValidationError{Field: "account", Message: "is required"}
	}
	if !target.Valid() {
		return unknownAccount(target)
	}
	return nil
}

// AddExpense records an expense against the active session, if any, and
// debits the target account.
func (e *Engine) AddExpense(ctx context.Context, in ExpenseInput) (model.Expense, error) {
	if err := in.Validate(); err != nil {
		return model.Expense{}, err
	}
	var exp model.Expense
	err := e.mutate(ctx, "add_expense", func(ctx context.Context) error {
		sess, err := e.store.ActiveSession(ctx)
		if err != nil {
			return err
		}
		var sessionID *string
		if sess != nil {
			sessionID = &sess.ID
		}

		exp, err = e.store.InsertExpense(ctx, model.Expense{
			SessionID:   sessionID,
			Category:    in.Category,
			Amount:      in.Amount,
			Account:     in.Target(),
			Description: in.Description,
			CreatedAt:   e.now(),
		})
		if err != nil {
			return err
		}
		return e.adjustNamed(ctx, exp.Account, exp.Amount.Neg())
	})
	return exp, err
}

// DeleteExpense removes an expense and credits its amount back.
func (e *Engine) DeleteExpense(ctx context.Context, expenseID string) error {
	return e.mutate(ctx, "delete_expense", func(ctx context.Context) error {
		exp, err := e.store.GetExpense(ctx, expenseID)
		if err != nil {
			return err
		}
		if err := e.adjustNamed(ctx, exp.Account, exp.Amount); err != nil {
			return err
		}
		return e.store.DeleteExpense(ctx, exp.ID)
	})
}
