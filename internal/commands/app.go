package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/cleared-dev/cabstats/internal/activity"
	"github.com/cleared-dev/cabstats/internal/config"
	"github.com/cleared-dev/cabstats/internal/format"
	"github.com/cleared-dev/cabstats/internal/id"
	"github.com/cleared-dev/cabstats/internal/ledger"
	"github.com/cleared-dev/cabstats/internal/logger"
	"github.com/cleared-dev/cabstats/internal/store"
)

// EnvDir overrides the default data directory.
const EnvDir = "CABSTATS_DIR"

// app is everything a command needs once the data directory is open.
type app struct {
	dir    string
	cfg    *config.Config
	store  *store.Store
	ledger *ledger.Engine
	log    logger.Logger
	out    io.Writer
	errOut io.Writer
}

// dataDir resolves the data directory from the --dir flag, CABSTATS_DIR,
// or ~/.cabstats, in that order.
func dataDir(cmd *cobra.Command) (string, error) {
	dir, _ := cmd.Flags().GetString("dir")
	if dir == "" {
		dir = os.Getenv(EnvDir)
	}
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("finding home directory: %w", err)
		}
		dir = filepath.Join(home, ".cabstats")
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolving path: %w", err)
	}
	return abs, nil
}

func openApp(cmd *cobra.Command) (*app, error) {
	dir, err := dataDir(cmd)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}
	cfg, err := config.LoadDir(dir)
	if err != nil {
		return nil, err
	}

	log := logger.New(cmd.ErrOrStderr(), cfg.Log.Level, cfg.Log.Format)
	ctx := cmd.Context()
	st, err := store.Open(ctx, cfg.DatabasePath(dir))
	if err != nil {
		return nil, err
	}
	eng, err := ledger.New(ctx, st, ledger.Options{
		FuelShare: cfg.Ledger.FuelShare,
		Logger:    log,
	})
	if err != nil {
		st.Close()
		return nil, err
	}

	return &app{
		dir:    dir,
		cfg:    cfg,
		store:  st,
		ledger: eng,
		log:    log,
		out:    cmd.OutOrStdout(),
		errOut: cmd.ErrOrStderr(),
	}, nil
}

// withApp opens the data directory for the duration of fn.
func withApp(cmd *cobra.Command, fn func(ctx context.Context, a *app) error) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.store.Close()
	return fn(cmd.Context(), a)
}

// record appends to the activity log. A failed write is reported but does
// not fail the command, the ledger change is already committed.
func (a *app) record(action, details, entityID string) {
	err := activity.Append(a.dir, activity.Entry{
		Timestamp: time.Now(),
		Action:    action,
		Details:   details,
		EntityID:  entityID,
	})
	if err != nil {
		fmt.Fprintf(a.errOut, "warning: failed to write activity log: %v\n", err)
	}
}

func (a *app) money(d decimal.Decimal) string {
	return format.Money(d, a.cfg.Ledger.Currency)
}

func (a *app) printf(msg string, args ...any) {
	fmt.Fprintf(a.out, msg, args...)
}

// resolveID expands a unique id prefix.
func resolveID(kind string, ids []string, prefix string) (string, error) {
	full, err := id.Match(ids, prefix)
	if errors.Is(err, id.ErrNoMatch) {
		return "", fmt.Errorf("%s %q: %w", kind, prefix, ledger.ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("%s: %w", kind, err)
	}
	return full, nil
}

// parseAmount parses a decimal flag or argument; empty means zero.
func parseAmount(name, s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ledger.ValidationError{Field: name, Message: fmt.Sprintf("%q is not a number", s)}
	}
	return d, nil
}
