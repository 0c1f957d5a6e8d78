package ledger

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/cabstats/internal/model"
)

// AdjustBalance adds delta to the account with the given id.
func (e *Engine) AdjustBalance(ctx context.Context, accountID string, delta decimal.Decimal) error {
	if err := checkCents("delta", delta); err != nil {
		return err
	}
	return e.mutate(ctx, "adjust_balance", func(ctx context.Context) error {
		return e.adjustBalance(ctx, accountID, delta)
	})
}

// AdjustAccount applies a manual correction to the named account.
func (e *Engine) AdjustAccount(ctx context.Context, name model.AccountName, delta decimal.Decimal) error {
	if !name.Valid() {
		return unknownAccount(name)
	}
	if delta.IsZero() {
		return ValidationError{Field: "delta", Message: "must not be zero"}
	}
	if err := checkCents("delta", delta); err != nil {
		return err
	}
	return e.mutate(ctx, "adjust_account", func(ctx context.Context) error {
		return e.adjustNamed(ctx, name, delta)
	})
}

// TransferBetweenAccounts moves amount from one account to another.
func (e *Engine) TransferBetweenAccounts(ctx context.Context, from, to model.AccountName, amount decimal.Decimal) error {
	if from == to {
		return invalidArgument("cannot transfer from %s to itself", from)
	}
	if !amount.IsPositive() {
		return invalidArgument("transfer amount must be positive, got %s", amount)
	}
	if err := checkCents("amount", amount); err != nil {
		return err
	}
	return e.mutate(ctx, "transfer", func(ctx context.Context) error {
		if err := e.adjustNamed(ctx, from, amount.Neg()); err != nil {
			return err
		}
		return e.adjustNamed(ctx, to, amount)
	})
}

// TransferToFuelAccount moves amount from the source account into the Fuel
// Account and completes pending fuel transfers oldest first. A transfer only
// partly covered is split: the covered part completes and the rest stays
// pending. Amounts beyond the pending total are rejected.
func (e *Engine) TransferToFuelAccount(ctx context.Context, amount decimal.Decimal, from model.AccountName) error {
	if err := checkFuelSource(from); err != nil {
		return err
	}
	if !amount.IsPositive() {
		return invalidArgument("transfer amount must be positive, got %s", amount)
	}
	if err := checkCents("amount", amount); err != nil {
		return err
	}
	return e.mutate(ctx, "fuel_transfer", func(ctx context.Context) error {
		pending, err := e.store.PendingTransfers(ctx)
		if err != nil {
			return err
		}
		if total := model.PendingTotal(pending); amount.GreaterThan(total) {
			return invalidArgument("amount %s exceeds pending fuel transfer %s",
				amount.StringFixed(model.Cents), total.StringFixed(model.Cents))
		}
		return e.transferToFuel(ctx, amount, from, pending)
	})
}

// TransferAllPending moves the whole pending total into the Fuel Account and
// returns the amount moved.
func (e *Engine) TransferAllPending(ctx context.Context, from model.AccountName) (decimal.Decimal, error) {
	if err := checkFuelSource(from); err != nil {
		return decimal.Zero, err
	}
	var moved decimal.Decimal
	err := e.mutate(ctx, "fuel_transfer_all", func(ctx context.Context) error {
		pending, err := e.store.PendingTransfers(ctx)
		if err != nil {
			return err
		}
		moved = model.PendingTotal(pending)
		if !moved.IsPositive() {
			return precondition("no pending fuel transfer")
		}
		return e.transferToFuel(ctx, moved, from, pending)
	})
	if err != nil {
		return decimal.Zero, err
	}
	return moved, nil
}

func checkFuelSource(from model.AccountName) error {
	if !from.Valid() {
		return unknownAccount(from)
	}
	if from == model.AccountFuel {
		return invalidArgument("cannot transfer from %s to itself", from)
	}
	return nil
}

func (e *Engine) transferToFuel(ctx context.Context, amount decimal.Decimal, from model.AccountName, pending []model.FuelTransfer) error {
	if err := e.adjustNamed(ctx, from, amount.Neg()); err != nil {
		return err
	}
	if err := e.adjustNamed(ctx, model.AccountFuel, amount); err != nil {
		return err
	}

	now := e.now()
	remaining := amount
	for _, t := range pending {
		if !remaining.IsPositive() {
			break
		}
		origin := t.FromAccount
		covered := decimal.Min(t.Amount, remaining)
		rest := t.Amount.Sub(covered)

		t.Amount = covered
		t.FromAccount = from
		t.Status = model.TransferCompleted
		t.CompletedAt = &now
		if err := e.store.UpdateTransfer(ctx, t); err != nil {
			return err
		}
		remaining = remaining.Sub(covered)

		if rest.IsPositive() {
			_, err := e.store.InsertTransfer(ctx, model.FuelTransfer{
				RideID:      t.RideID,
				Amount:      rest,
				FromAccount: origin,
				ToAccount:   model.AccountFuel,
				Status:      model.TransferPending,
				CreatedAt:   t.CreatedAt,
			})
			if err != nil {
				return err
			}
		}
	}
	return nil
}

// adjustBalance is the only code path that changes a stored balance. The
// balance is read inside the caller's transaction.
func (e *Engine) adjustBalance(ctx context.Context, accountID string, delta decimal.Decimal) error {
	acct, err := e.store.GetAccount(ctx, accountID)
	if err != nil {
		return err
	}
	if err := e.store.SetBalance(ctx, acct.ID, acct.Balance.Add(delta), e.now()); err != nil {
		return err
	}
	e.log.Debug(ctx, "balance adjusted",
		"account", string(acct.Name),
		"delta", delta.StringFixed(model.Cents))
	return nil
}

func (e *Engine) adjustNamed(ctx context.Context, name model.AccountName, delta decimal.Decimal) error {
	acct, err := e.store.GetAccountByName(ctx, name)
	if err != nil {
		return fmt.Errorf("adjusting %s: %w", name, err)
	}
	return e.adjustBalance(ctx, acct.ID, delta)
}
