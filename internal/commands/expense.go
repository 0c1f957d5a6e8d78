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

func newExpenseCommand() *cobra.Command {
	expenseCmd := &cobra.Command{
		Use:   "expense",
		Short: "Record expenses",
	}
	expenseCmd.AddCommand(newExpenseAddCommand(), newExpenseDeleteCommand(), newExpenseListCommand())
	return expenseCmd
}

func newExpenseAddCommand() *cobra.Command {
	var account, note string

	cmd := &cobra.Command{
		Use:   "add <category> <amount>",
		Short: "Record an expense and debit its account",
		Long:  "Categories: Airport Fee, Cigarette, Cleaning, Food, Fuel, Goodies, Other, Other Fees, Parking Fee, Platform Fee, Rent, Tolls, Water, Withdrawals. Fuel is always paid from the Fuel Account.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			category, err := model.ParseExpenseCategory(args[0])
			if err != nil {
				return ledger.ValidationError{Field: "category", Message: err.Error()}
			}
			amount, err := parseAmount("amount", args[1])
			if err != nil {
				return err
			}
			in := ledger.ExpenseInput{Category: category, Amount: amount, Description: note}
			if account != "" {
				if in.Account, err = model.ParseAccountName(account); err != nil {
					return err
				}
			}

			return withApp(cmd, func(ctx context.Context, a *app) error {
				x, err := a.ledger.AddExpense(ctx, in)
				if err != nil {
					return err
				}
				a.record("add_expense", fmt.Sprintf("%s %s from %s", x.Category, x.Amount.StringFixed(2), x.Account), x.ID)
				a.printf("Recorded %s %s from %s (%s)\n", x.Category, a.money(x.Amount), x.Account, id.Short(x.ID))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&account, "account", "", "account paid from: main, cash or platform")
	cmd.Flags().StringVar(&note, "note", "", "free-text description")
	return cmd
}

func newExpenseDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <expense-id>",
		Short: "Delete an expense and credit its amount back",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app) error {
				var (
					ids  []string
					byID = map[string]model.Expense{}
				)
				for _, x := range a.ledger.Expenses() {
					ids = append(ids, x.ID)
					byID[x.ID] = x
				}
				expenseID, err := resolveID("expense", ids, args[0])
				if err != nil {
					return err
				}
				if err := a.ledger.DeleteExpense(ctx, expenseID); err != nil {
					return err
				}
				x := byID[expenseID]
				a.record("delete_expense", fmt.Sprintf("credited %s back to %s", x.Amount.StringFixed(2), x.Account), expenseID)
				a.printf("Deleted expense %s, %s returned to %s\n", id.Short(expenseID), a.money(x.Amount), x.Account)
				return nil
			})
		},
	}
}

func newExpenseListCommand() *cobra.Command {
	var date string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List expenses",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app) error {
				expenses := a.ledger.Expenses()
				if date != "" {
					day, err := parseDay(date)
					if err != nil {
						return err
					}
					expenses = a.ledger.ExpensesOn(day)
				}

				tw := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
				fmt.Fprintln(tw, "ID\tRECORDED\tCATEGORY\tAMOUNT\tACCOUNT\tNOTE")
				for _, x := range expenses {
					fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
						id.Short(x.ID), x.CreatedAt.Local().Format(time.DateTime), x.Category,
						a.money(x.Amount), x.Account, x.Description)
				}
				return tw.Flush()
			})
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "only expenses on this day (YYYY-MM-DD)")
	return cmd
}
