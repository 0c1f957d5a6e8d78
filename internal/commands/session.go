package commands

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/cleared-dev/cabstats/internal/id"
	"github.com/cleared-dev/cabstats/internal/ledger"
	"github.com/cleared-dev/cabstats/internal/model"
)

func newSessionCommand() *cobra.Command {
	sessionCmd := &cobra.Command{
		Use:   "session",
		Short: "Start and end driving sessions",
	}
	sessionCmd.AddCommand(newSessionStartCommand(), newSessionEndCommand(), newSessionListCommand())
	return sessionCmd
}

func newSessionStartCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "start <odometer-km>",
		Short: "Start a session at the current odometer reading",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			km, err := parseOdometer("start km", args[0])
			if err != nil {
				return err
			}
			return withApp(cmd, func(ctx context.Context, a *app) error {
				sess, err := a.ledger.StartSession(ctx, km)
				if err != nil {
					return err
				}
				a.record("start_session", fmt.Sprintf("%s at %s km", sess.Name, km), sess.ID)
				a.printf("Started %s (%s) at %s km\n", sess.Name, id.Short(sess.ID), km)
				return nil
			})
		},
	}
}

func newSessionEndCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "end <odometer-km>",
		Short: "End the active session at the current odometer reading",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			km, err := parseOdometer("end km", args[0])
			if err != nil {
				return err
			}
			return withApp(cmd, func(ctx context.Context, a *app) error {
				sess, err := a.ledger.EndSession(ctx, km)
				if err != nil {
					return err
				}
				a.record("end_session", fmt.Sprintf("%s, %s km", sess.Name, sess.TotalKm), sess.ID)
				a.printf("Ended %s: %s km driven\n", sess.Name, sess.TotalKm)
				return nil
			})
		},
	}
}

func newSessionListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List sessions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app) error {
				tw := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
				fmt.Fprintln(tw, "ID\tNAME\tSTATUS\tSTARTED\tENDED\tKM")
				for _, s := range a.ledger.Sessions() {
					fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
						id.Short(s.ID), s.Name, s.Status,
						s.StartTime.Local().Format(time.DateTime), endedAt(s), s.TotalKm)
				}
				return tw.Flush()
			})
		},
	}
}

func endedAt(s model.Session) string {
	if s.EndTime == nil {
		return "-"
	}
	return s.EndTime.Local().Format(time.DateTime)
}

func sessionIDs(sessions []model.Session) []string {
	ids := make([]string, len(sessions))
	for i, s := range sessions {
		ids[i] = s.ID
	}
	return ids
}

// sessionByNumber finds a session by its display number, e.g. "#3".
func sessionByNumber(sessions []model.Session, num string) (model.Session, error) {
	want, err := id.ParseSessionName("Session " + num)
	if err != nil {
		return model.Session{}, ledger.ValidationError{Field: "session", Message: err.Error()}
	}
	for _, s := range sessions {
		if seq, err := id.ParseSessionName(s.Name); err == nil && seq == want {
			return s, nil
		}
	}
	return model.Session{}, fmt.Errorf("%w: session %s", ledger.ErrNotFound, num)
}

// parseOdometer is parseAmount for readings that must be given.
func parseOdometer(name, s string) (decimal.Decimal, error) {
	if strings.TrimSpace(s) == "" {
		return decimal.Zero, ledger.ValidationError{Field: name, Message: "is required"}
	}
	return parseAmount(name, s)
}
