package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransferStatus is the lifecycle state of a fuel transfer.
type TransferStatus string

const (
	TransferPending   TransferStatus = "pending"
	TransferCompleted TransferStatus = "completed"
	TransferReversed  TransferStatus = "reversed"  // money moved back after the ride was deleted
	TransferCancelled TransferStatus = "cancelled" // ride deleted before the money moved
)

// FuelTransfer tracks a ride's fuel allocation on its way into the Fuel Account.
type FuelTransfer struct {
	ID          string
	RideID      string
	Amount      decimal.Decimal
	FromAccount AccountName // account the money was (or will be) taken from
	ToAccount   AccountName // always AccountFuel
	Status      TransferStatus
	CreatedAt   time.Time
	CompletedAt *time.Time
	ReversedAt  *time.Time // set when reversed or cancelled
}

// PendingTotal sums the amounts of pending transfers.
func PendingTotal(transfers []FuelTransfer) decimal.Decimal {
	total := decimal.Zero
	for _, t := range transfers {
		if t.Status == TransferPending {
			total = total.Add(t.Amount)
		}
	}
	return total
}
