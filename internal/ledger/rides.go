package ledger

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/cabstats/internal/logger"
	"github.com/cleared-dev/cabstats/internal/model"
)

// RideInput is what the driver enters when a ride ends.
type RideInput struct {
	Km            decimal.Decimal
	Fare          decimal.Decimal
	AirportFee    decimal.Decimal
	PlatformFee   decimal.Decimal
	Tolls         decimal.Decimal
	OtherFees     decimal.Decimal
	RideType      model.RideType
	PaymentMethod model.AccountName
}

// Validate checks the input without touching the ledger.
func (in RideInput) Validate() error {
	if !in.Fare.IsPositive() {
		return ValidationError{Field: "fare", Message: "must be greater than zero"}
	}
	if !in.Km.IsPositive() {
		return ValidationError{Field: "km", Message: "must be greater than zero"}
	}
	fees := []struct {
		field string
		value decimal.Decimal
	}{
		{"airport fee", in.AirportFee},
		{"platform fee", in.PlatformFee},
		{"tolls", in.Tolls},
		{"other fees", in.OtherFees},
	}
	for _, f := range fees {
		if f.value.IsNegative() {
			return ValidationError{Field: f.field, Message: "must not be negative"}
		}
		if err := checkCents(f.field, f.value); err != nil {
			return err
		}
	}
	if err := checkCents("fare", in.Fare); err != nil {
		return err
	}
	if in.RideType == "" {
		return ValidationError{Field: "ride type", Message: "is required"}
	}
	if !in.RideType.Valid() {
		return ValidationError{Field: "ride type", Message: fmt.Sprintf("unknown ride type %q", in.RideType)}
	}
	if in.PaymentMethod == "" {
		return ValidationError{Field: "payment method", Message: "is required"}
	}
	if !in.PaymentMethod.IsPaymentMethod() {
		return ValidationError{Field: "payment method", Message: fmt.Sprintf("%q cannot receive fares", in.PaymentMethod)}
	}
	return nil
}

// StartRide puts a new ride in the active slot. It needs an active session
// and no other ride in progress.
func (e *Engine) StartRide(ctx context.Context) (model.Ride, error) {
	var ride model.Ride
	err := e.mutate(ctx, "start_ride", func(ctx context.Context) error {
		sess, err := e.store.ActiveSession(ctx)
		if err != nil {
			return err
		}
		if sess == nil {
			return precondition("no active session")
		}
		active, err := e.store.ActiveRide(ctx)
		if err != nil {
			return err
		}
		if active != nil {
			return precondition(fmt.Sprintf("ride started at %s is still in progress", active.StartTime.Format("15:04")))
		}

		now := e.now()
		sessionID := sess.ID
		ride, err = e.store.SaveActiveRide(ctx, model.Ride{
			SessionID: &sessionID,
			StartTime: now,
			CreatedAt: now,
		})
		return err
	})
	return ride, err
}

// EndRide finalizes the active ride: it records the ride, credits the fare to
// the payment account and earmarks the fuel share of a positive profit as a
// pending transfer from the Main Account.
func (e *Engine) EndRide(ctx context.Context, in RideInput) (model.Ride, error) {
	var ride model.Ride
	err := e.mutate(ctx, "end_ride", func(ctx context.Context) error {
		active, err := e.store.ActiveRide(ctx)
		if err != nil {
			return err
		}
		if active == nil {
			return precondition("no ride in progress")
		}
		if err := in.Validate(); err != nil {
			return err
		}

		ride = e.finalize(*active, in)
		if ride, err = e.store.InsertRide(ctx, ride); err != nil {
			return err
		}
		if err := e.adjustNamed(ctx, ride.PaymentMethod, ride.Fare); err != nil {
			return err
		}
		if ride.FuelAllocation.IsPositive() {
			_, err := e.store.InsertTransfer(ctx, model.FuelTransfer{
				RideID:      ride.ID,
				Amount:      ride.FuelAllocation,
				FromAccount: model.AccountMain,
				ToAccount:   model.AccountFuel,
				Status:      model.TransferPending,
				CreatedAt:   *ride.EndTime,
			})
			if err != nil {
				return err
			}
		}
		return e.store.ClearActiveRide(ctx)
	})
	return ride, err
}

// finalize fills in the entered figures and the derived metrics.
func (e *Engine) finalize(r model.Ride, in RideInput) model.Ride {
	end := e.now()
	r.EndTime = &end
	r.Km = in.Km
	r.Fare = in.Fare
	r.AirportFee = in.AirportFee
	r.PlatformFee = in.PlatformFee
	r.Tolls = in.Tolls
	r.OtherFees = in.OtherFees
	r.RideType = in.RideType
	r.PaymentMethod = in.PaymentMethod

	r.Profit = r.Fare.Sub(r.TotalFees())
	r.ProfitPerKm = decimal.Zero
	if r.Km.IsPositive() {
		r.ProfitPerKm = r.Profit.DivRound(r.Km, model.Cents)
	}
	r.ProfitPerMin = decimal.Zero
	if mins := r.DurationMinutes(); mins > 0 {
		r.ProfitPerMin = r.Profit.DivRound(decimal.NewFromInt(int64(mins)), model.Cents)
	}
	// Negative profit gives a negative allocation; it is recorded as is and
	// produces no transfer.
	r.FuelAllocation = r.Profit.Mul(e.fuelShare).Round(model.Cents)
	return r
}

// DiscardRide drops the ride in progress without recording anything.
func (e *Engine) DiscardRide(ctx context.Context) error {
	return e.mutate(ctx, "discard_ride", func(ctx context.Context) error {
		active, err := e.store.ActiveRide(ctx)
		if err != nil {
			return err
		}
		if active == nil {
			return precondition("no ride in progress")
		}
		return e.store.ClearActiveRide(ctx)
	})
}

// DeleteRide removes a finished ride and undoes its money movements. The fare
// is debited back from the payment account. Completed fuel transfers for the
// ride are moved back out of the Fuel Account and marked reversed; pending
// ones are cancelled.
func (e *Engine) DeleteRide(ctx context.Context, rideID string) error {
	ctx = logger.WithRideID(ctx, rideID)
	return e.mutate(ctx, "delete_ride", func(ctx context.Context) error {
		ride, err := e.store.GetRide(ctx, rideID)
		if err != nil {
			return err
		}
		if err := e.adjustNamed(ctx, ride.PaymentMethod, ride.Fare.Neg()); err != nil {
			return err
		}

		transfers, err := e.store.TransfersForRide(ctx, ride.ID)
		if err != nil {
			return err
		}
		now := e.now()
		for _, t := range transfers {
			switch t.Status {
			case model.TransferCompleted:
				if err := e.adjustNamed(ctx, model.AccountFuel, t.Amount.Neg()); err != nil {
					return err
				}
				if err := e.adjustNamed(ctx, t.FromAccount, t.Amount); err != nil {
					return err
				}
				t.Status = model.TransferReversed
			case model.TransferPending:
				t.Status = model.TransferCancelled
			default:
				continue
			}
			t.ReversedAt = &now
			if err := e.store.UpdateTransfer(ctx, t); err != nil {
				return err
			}
		}
		return e.store.DeleteRide(ctx, ride.ID)
	})
}
