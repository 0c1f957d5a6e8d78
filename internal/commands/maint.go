package commands

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/cabstats/internal/activity"
	"github.com/cleared-dev/cabstats/internal/export"
	"github.com/cleared-dev/cabstats/internal/id"
)

// ErrInconsistent is returned by check when the ledger breaks a rule.
var ErrInconsistent = errors.New("ledger is inconsistent")

func newCheckCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Verify the ledger's internal consistency",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app) error {
				issues, err := a.ledger.Check(ctx)
				if err != nil {
					return err
				}
				if len(issues) == 0 {
					a.printf("Ledger is consistent\n")
					return nil
				}
				for _, issue := range issues {
					a.printf("%s\n", issue)
				}
				return fmt.Errorf("%w: %d issue(s)", ErrInconsistent, len(issues))
			})
		},
	}
}

func newExportCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "export <directory>",
		Short: "Write every collection as CSV",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := filepath.Abs(args[0])
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}
			return withApp(cmd, func(ctx context.Context, a *app) error {
				paths, err := export.Dir(out, a.ledger.Snapshot())
				if err != nil {
					return err
				}
				a.record("export", fmt.Sprintf("%d files to %s", len(paths), out), "")
				for _, p := range paths {
					a.printf("wrote %s\n", p)
				}
				return nil
			})
		},
	}
}

func newLogCommand() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "log",
		Short: "Show recent activity",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := dataDir(cmd)
			if err != nil {
				return err
			}
			entries, err := activity.Tail(dir, limit)
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "TIME\tACTION\tID\tDETAILS")
			for _, e := range entries {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
					e.Timestamp.Local().Format(time.DateTime), e.Action, id.Short(e.EntityID), e.Details)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of entries to show, 0 for all")
	return cmd
}

func newResetCommand() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Delete every session, ride, expense and transfer and zero all balances",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return errors.New("reset is irreversible, rerun with --yes to confirm")
			}
			return withApp(cmd, func(ctx context.Context, a *app) error {
				if err := a.ledger.ResetAllData(ctx); err != nil {
					return err
				}
				a.record("reset", "all data cleared, balances zeroed", "")
				a.printf("All data cleared\n")
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&yes, "yes", false, "confirm the reset")
	return cmd
}
