package commands

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/cabstats/internal/format"
	"github.com/cleared-dev/cabstats/internal/ledger"
	"github.com/cleared-dev/cabstats/internal/model"
	"github.com/cleared-dev/cabstats/internal/stats"
)

func newStatsCommand() *cobra.Command {
	statsCmd := &cobra.Command{
		Use:   "stats",
		Short: "Earnings and expense statistics",
	}
	statsCmd.AddCommand(newStatsDateCommand(), newStatsSessionCommand())
	return statsCmd
}

func newStatsDateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "date [YYYY-MM-DD]",
		Short: "Statistics for one calendar day (default today)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			day := time.Now()
			if len(args) == 1 {
				var err error
				if day, err = parseDay(args[0]); err != nil {
					return err
				}
			}
			return withApp(cmd, func(ctx context.Context, a *app) error {
				a.printf("Statistics for %s\n\n", day.Format(time.DateOnly))
				return printSummary(a.out, a.ledger.DateStats(day), a.cfg.Ledger.Currency)
			})
		},
	}
}

func newStatsSessionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "session <session-id|#number|current>",
		Short: "Statistics for one session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app) error {
				var sessionID string
				if strings.EqualFold(args[0], "current") {
					cur := a.ledger.CurrentSession()
					if cur == nil {
						return fmt.Errorf("%w: no active session", ledger.ErrPreconditionFailed)
					}
					sessionID = cur.ID
				} else if strings.HasPrefix(args[0], "#") {
					sess, err := sessionByNumber(a.ledger.Sessions(), args[0])
					if err != nil {
						return err
					}
					sessionID = sess.ID
				} else {
					var err error
					if sessionID, err = resolveID("session", sessionIDs(a.ledger.Sessions()), args[0]); err != nil {
						return err
					}
				}

				s, err := a.ledger.SessionStats(sessionID)
				if err != nil {
					return err
				}
				a.printf("%s (%s)\n", s.Session.Name, s.Session.Status)
				a.printf("Duration: %d min, odometer: %s km\n\n", s.DurationMinutes, s.SessionKm)
				return printSummary(a.out, s.Summary, a.cfg.Ledger.Currency)
			})
		},
	}
}

func printSummary(w io.Writer, s stats.Summary, currency string) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	rows := []struct {
		label, value string
	}{
		{"Rides", fmt.Sprint(s.TotalRides)},
		{"Earnings", format.Money(s.TotalEarnings, currency)},
		{"Profit", format.Money(s.TotalProfit, currency)},
		{"Average fare", format.Money(s.AverageFare, currency)},
		{"Average profit", format.Money(s.AverageProfit, currency)},
		{"Best ride", format.Money(s.BestRide, currency)},
		{"Worst ride", format.Money(s.WorstRide, currency)},
		{"Distance", s.TotalKm.String() + " km"},
		{"Average distance", s.AverageDistance.String() + " km"},
		{"Time driving", fmt.Sprintf("%d min", s.TotalMinutes)},
		{"Average duration", s.AverageDuration.String() + " min"},
		{"Profit per km", format.Money(s.ProfitPerKm, currency)},
		{"Profit per minute", format.Money(s.ProfitPerMinute, currency)},
		{"Fuel allocation", format.Money(s.TotalFuelAllocation, currency)},
		{"Expenses", format.Money(s.TotalExpenses, currency)},
		{"Most expensive category", s.MostExpensiveCategory},
		{"Gross earnings", format.Money(s.GrossEarnings, currency)},
		{"Net profit", format.Money(s.NetProfit, currency)},
		{"Profit margin", format.Percent(s.ProfitMargin)},
	}
	for _, r := range rows {
		fmt.Fprintf(tw, "%s\t%s\n", r.label, r.value)
	}

	if len(s.ExpensesByCategory) > 0 {
		fmt.Fprintln(tw, "\nExpenses by category\t")
		for _, c := range model.ExpenseCategories() {
			if amount, ok := s.ExpensesByCategory[c]; ok {
				fmt.Fprintf(tw, "  %s\t%s\n", c, format.Money(amount, currency))
			}
		}
	}
	return tw.Flush()
}
