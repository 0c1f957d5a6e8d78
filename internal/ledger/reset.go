package ledger

import (
	"context"

	"github.com/cleared-dev/cabstats/internal/model"
)

// ResetAllData clears every session, ride, fuel transfer and expense along
// with the active ride, then sets every balance to exactly zero.
func (e *Engine) ResetAllData(ctx context.Context) error {
	return e.mutate(ctx, "reset", func(ctx context.Context) error {
		steps := []func(context.Context) error{
			e.store.ClearActiveRide,
			e.store.ClearTransfers,
			e.store.ClearRides,
			e.store.ClearExpenses,
			e.store.ClearSessions,
		}
		for _, step := range steps {
			if err := step(ctx); err != nil {
				return err
			}
		}
		now := e.now()
		if err := e.store.SeedAccounts(ctx, model.AccountNames(), now); err != nil {
			return err
		}
		return e.store.ZeroBalances(ctx, now)
	})
}
