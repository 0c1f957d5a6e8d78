package commands

import (
	"context"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/cabstats/internal/id"
	"github.com/cleared-dev/cabstats/internal/ledger"
	"github.com/cleared-dev/cabstats/internal/model"
)

func newRideCommand() *cobra.Command {
	rideCmd := &cobra.Command{
		Use:   "ride",
		Short: "Record rides",
	}
	rideCmd.AddCommand(
		newRideStartCommand(),
		newRideEndCommand(),
		newRideDiscardCommand(),
		newRideDeleteCommand(),
		newRideListCommand(),
	)
	return rideCmd
}

func newRideStartCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start a ride in the active session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app) error {
				r, err := a.ledger.StartRide(ctx)
				if err != nil {
					return err
				}
				a.record("start_ride", "", r.ID)
				a.printf("Ride %s started at %s\n", id.Short(r.ID), r.StartTime.Local().Format("15:04"))
				return nil
			})
		},
	}
}

func newRideEndCommand() *cobra.Command {
	var fare, km, airportFee, platformFee, tolls, otherFees, rideType, payment string

	cmd := &cobra.Command{
		Use:   "end",
		Short: "Finish the ride in progress",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := rideInput(fare, km, airportFee, platformFee, tolls, otherFees, rideType, payment)
			if err != nil {
				return err
			}
			return withApp(cmd, func(ctx context.Context, a *app) error {
				r, err := a.ledger.EndRide(ctx, in)
				if err != nil {
					return err
				}
				a.record("end_ride",
					fmt.Sprintf("%s, fare %s to %s, profit %s", r.RideType, r.Fare.StringFixed(2), r.PaymentMethod, r.Profit.StringFixed(2)),
					r.ID)

				tw := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
				fmt.Fprintf(tw, "Ride\t%s (%s)\n", id.Short(r.ID), r.RideType)
				fmt.Fprintf(tw, "Duration\t%d min\n", r.DurationMinutes())
				fmt.Fprintf(tw, "Fare\t%s to %s\n", a.money(r.Fare), r.PaymentMethod)
				fmt.Fprintf(tw, "Profit\t%s\n", a.money(r.Profit))
				fmt.Fprintf(tw, "Per km\t%s\n", a.money(r.ProfitPerKm))
				fmt.Fprintf(tw, "Per minute\t%s\n", a.money(r.ProfitPerMin))
				fmt.Fprintf(tw, "Fuel allocation\t%s\n", a.money(r.FuelAllocation))
				fmt.Fprintf(tw, "Pending fuel transfer\t%s\n", a.money(a.ledger.PendingFuelTransfer()))
				return tw.Flush()
			})
		},
	}

	cmd.Flags().StringVar(&fare, "fare", "", "fare received (required)")
	cmd.Flags().StringVar(&km, "km", "", "distance driven (required)")
	cmd.Flags().StringVar(&airportFee, "airport-fee", "", "airport fee")
	cmd.Flags().StringVar(&platformFee, "platform-fee", "", "platform commission")
	cmd.Flags().StringVar(&tolls, "tolls", "", "tolls paid")
	cmd.Flags().StringVar(&otherFees, "other-fees", "", "any other fees")
	cmd.Flags().StringVar(&rideType, "type", "", "Uber, Rapido, Ola, Private or Other (required)")
	cmd.Flags().StringVar(&payment, "pay", "", "account the fare was paid into: cash, main or platform (required)")
	return cmd
}

func rideInput(fare, km, airportFee, platformFee, tolls, otherFees, rideType, payment string) (ledger.RideInput, error) {
	var (
		in  ledger.RideInput
		err error
	)
	if in.Fare, err = parseAmount("fare", fare); err != nil {
		return in, err
	}
	if in.Km, err = parseAmount("km", km); err != nil {
		return in, err
	}
	if in.AirportFee, err = parseAmount("airport fee", airportFee); err != nil {
		return in, err
	}
	if in.PlatformFee, err = parseAmount("platform fee", platformFee); err != nil {
		return in, err
	}
	if in.Tolls, err = parseAmount("tolls", tolls); err != nil {
		return in, err
	}
	if in.OtherFees, err = parseAmount("other fees", otherFees); err != nil {
		return in, err
	}
	if rideType != "" {
		if in.RideType, err = model.ParseRideType(rideType); err != nil {
			return in, ledger.ValidationError{Field: "ride type", Message: err.Error()}
		}
	}
	if payment != "" {
		if in.PaymentMethod, err = model.ParseAccountName(payment); err != nil {
			return in, ledger.ValidationError{Field: "payment method", Message: err.Error()}
		}
	}
	return in, nil
}

func newRideDiscardCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "discard",
		Short: "Drop the ride in progress without recording it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app) error {
				active := a.ledger.ActiveRide()
				if err := a.ledger.DiscardRide(ctx); err != nil {
					return err
				}
				a.record("discard_ride", "", active.ID)
				a.printf("Discarded ride %s\n", id.Short(active.ID))
				return nil
			})
		},
	}
}

func newRideDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <ride-id>",
		Short: "Delete a ride and reverse its fare and fuel allocation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app) error {
				rides := a.ledger.Rides()
				ids := make([]string, len(rides))
				for i, r := range rides {
					ids[i] = r.ID
				}
				rideID, err := resolveID("ride", ids, args[0])
				if err != nil {
					return err
				}
				r, err := a.ledger.Ride(rideID)
				if err != nil {
					return err
				}
				if err := a.ledger.DeleteRide(ctx, rideID); err != nil {
					return err
				}
				a.record("delete_ride", fmt.Sprintf("reversed fare %s from %s", r.Fare.StringFixed(2), r.PaymentMethod), rideID)
				a.printf("Deleted ride %s, %s taken back from %s\n", id.Short(rideID), a.money(r.Fare), r.PaymentMethod)
				return nil
			})
		},
	}
}

func newRideListCommand() *cobra.Command {
	var date string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List finished rides",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app) error {
				rides := a.ledger.Rides()
				if date != "" {
					day, err := parseDay(date)
					if err != nil {
						return err
					}
					rides = a.ledger.RidesOn(day)
				}

				tw := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
				fmt.Fprintln(tw, "ID\tSTARTED\tTYPE\tKM\tMIN\tFARE\tPROFIT\tPAID TO")
				for _, r := range rides {
					fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%s\t%s\t%s\n",
						id.Short(r.ID), r.StartTime.Local().Format(time.DateTime), r.RideType, r.Km,
						r.DurationMinutes(), a.money(r.Fare), a.money(r.Profit), r.PaymentMethod)
				}
				return tw.Flush()
			})
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "only rides on this day (YYYY-MM-DD)")
	return cmd
}

// parseDay reads a YYYY-MM-DD date in local time.
func parseDay(s string) (time.Time, error) {
	day, err := time.ParseInLocation(time.DateOnly, s, time.Local)
	if err != nil {
		return time.Time{}, ledger.ValidationError{Field: "date", Message: fmt.Sprintf("%q is not YYYY-MM-DD", s)}
	}
	return day, nil
}
