package commands

import (
	"context"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/cabstats/internal/format"
	"github.com/cleared-dev/cabstats/internal/model"
)

func newAccountCommand() *cobra.Command {
	accountCmd := &cobra.Command{
		Use:   "account",
		Short: "Account balances and transfers",
	}
	accountCmd.AddCommand(
		newAccountListCommand(),
		newAccountAdjustCommand(),
		newAccountTransferCommand(),
	)
	return accountCmd
}

func newAccountListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Show every account balance",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app) error {
				tw := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
				fmt.Fprintln(tw, "ACCOUNT\tBALANCE\tUPDATED")
				for _, acct := range a.ledger.Accounts() {
					fmt.Fprintf(tw, "%s\t%s\t%s\n", acct.Name, a.money(acct.Balance), acct.UpdatedAt.Local().Format(time.DateTime))
				}
				fmt.Fprintf(tw, "Total\t%s\t\n", a.money(a.ledger.CombinedBalance()))
				return tw.Flush()
			})
		},
	}
}

func newAccountAdjustCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "adjust <account> <delta>",
		Short: "Manually correct an account balance",
		Long:  "Adds delta (negative to subtract) to the account. Accounts: main, fuel, cash, platform.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, err := model.ParseAccountName(args[0])
			if err != nil {
				return err
			}
			delta, err := parseAmount("delta", args[1])
			if err != nil {
				return err
			}
			return withApp(cmd, func(ctx context.Context, a *app) error {
				if err := a.ledger.AdjustAccount(ctx, name, delta); err != nil {
					return err
				}
				acct, err := a.ledger.Account(name)
				if err != nil {
					return err
				}
				a.record("adjust_account", fmt.Sprintf("%s %s", name, format.Signed(delta, a.cfg.Ledger.Currency)), acct.ID)
				a.printf("%s: %s\n", name, a.money(acct.Balance))
				return nil
			})
		},
	}
}

func newAccountTransferCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "transfer <from> <to> <amount>",
		Short: "Move money between two accounts",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			from, err := model.ParseAccountName(args[0])
			if err != nil {
				return err
			}
			to, err := model.ParseAccountName(args[1])
			if err != nil {
				return err
			}
			amount, err := parseAmount("amount", args[2])
			if err != nil {
				return err
			}
			return withApp(cmd, func(ctx context.Context, a *app) error {
				if err := a.ledger.TransferBetweenAccounts(ctx, from, to, amount); err != nil {
					return err
				}
				a.record("transfer", fmt.Sprintf("%s from %s to %s", a.money(amount), from, to), "")
				a.printf("Moved %s from %s to %s\n", a.money(amount), from, to)
				return nil
			})
		},
	}
}

func newBalanceCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "balance",
		Short: "Show the combined balance, pending fuel and today's profit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app) error {
				today := a.ledger.DateStats(time.Now())
				tw := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
				fmt.Fprintf(tw, "Combined balance\t%s\n", a.money(a.ledger.CombinedBalance()))
				fmt.Fprintf(tw, "Pending fuel transfer\t%s\n", a.money(a.ledger.PendingFuelTransfer()))
				fmt.Fprintf(tw, "Today's rides\t%d\n", today.TotalRides)
				fmt.Fprintf(tw, "Today's profit\t%s\n", a.money(today.TotalProfit))
				if sess := a.ledger.CurrentSession(); sess != nil {
					fmt.Fprintf(tw, "Active session\t%s\n", sess.Name)
				}
				if r := a.ledger.ActiveRide(); r != nil {
					fmt.Fprintf(tw, "Ride in progress since\t%s\n", r.StartTime.Local().Format("15:04"))
				}
				return tw.Flush()
			})
		},
	}
}
