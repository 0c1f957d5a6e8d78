package commands

import (
	"context"
	"errors"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/cleared-dev/cabstats/internal/id"
	"github.com/cleared-dev/cabstats/internal/model"
)

func newFuelCommand() *cobra.Command {
	fuelCmd := &cobra.Command{
		Use:   "fuel",
		Short: "Fuel allocations and transfers",
	}
	fuelCmd.AddCommand(newFuelStatusCommand(), newFuelTransferCommand())
	return fuelCmd
}

func newFuelStatusCommand() *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the pending fuel transfer and its records",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app) error {
				fuel, err := a.ledger.Account(model.AccountFuel)
				if err != nil {
					return err
				}
				a.printf("Fuel Account: %s\n", a.money(fuel.Balance))
				a.printf("Pending transfer: %s\n", a.money(a.ledger.PendingFuelTransfer()))

				var rows []model.FuelTransfer
				for _, t := range a.ledger.FuelTransfers() {
					if all || t.Status == model.TransferPending {
						rows = append(rows, t)
					}
				}
				if len(rows) == 0 {
					return nil
				}
				a.printf("\n")
				tw := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
				fmt.Fprintln(tw, "ID\tRIDE\tAMOUNT\tFROM\tSTATUS\tCREATED")
				for _, t := range rows {
					fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
						id.Short(t.ID), id.Short(t.RideID), a.money(t.Amount), t.FromAccount, t.Status,
						t.CreatedAt.Local().Format(time.DateTime))
				}
				return tw.Flush()
			})
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "include completed, reversed and cancelled transfers")
	return cmd
}

func newFuelTransferCommand() *cobra.Command {
	var all bool
	var from string

	cmd := &cobra.Command{
		Use:   "transfer [amount]",
		Short: "Move money into the Fuel Account against pending allocations",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if all == (len(args) == 1) {
				return errors.New("give either an amount or --all")
			}
			return withApp(cmd, func(ctx context.Context, a *app) error {
				source := a.cfg.FuelSource()
				if from != "" {
					var err error
					if source, err = model.ParseAccountName(from); err != nil {
						return err
					}
				}

				var moved decimal.Decimal
				if all {
					var err error
					if moved, err = a.ledger.TransferAllPending(ctx, source); err != nil {
						return err
					}
				} else {
					amount, err := parseAmount("amount", args[0])
					if err != nil {
						return err
					}
					if err := a.ledger.TransferToFuelAccount(ctx, amount, source); err != nil {
						return err
					}
					moved = amount
				}

				a.record("fuel_transfer", fmt.Sprintf("%s from %s", a.money(moved), source), "")
				a.printf("Moved %s from %s to %s, %s still pending\n",
					a.money(moved), source, model.AccountFuel, a.money(a.ledger.PendingFuelTransfer()))
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "transfer the whole pending amount")
	cmd.Flags().StringVar(&from, "from", "", "source account (default from config)")
	return cmd
}
