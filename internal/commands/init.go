package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/cabstats/internal/config"
)

func newInitCommand() *cobra.Command {
	var currency, fuelShare, fuelSource string

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create the data directory, config and database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := dataDir(cmd)
			if err != nil {
				return err
			}
			return runInit(cmd, dir, currency, fuelShare, fuelSource)
		},
	}

	cmd.Flags().StringVar(&currency, "currency", "INR", "currency code used for display")
	cmd.Flags().StringVar(&fuelShare, "fuel-share", "0.5", "share of ride profit earmarked for fuel")
	cmd.Flags().StringVar(&fuelSource, "fuel-source", "main", "default account fuel transfers are paid from")

	return cmd
}

func runInit(cmd *cobra.Command, dir, currency, fuelShare, fuelSource string) error {
	for _, d := range []string{dir, filepath.Join(dir, "logs")} {
		if err := os.MkdirAll(d, 0o755); err != nil {
			return fmt.Errorf("creating directory %s: %w", d, err)
		}
	}

	cfgPath := filepath.Join(dir, config.FileName)
	if _, err := os.Stat(cfgPath); err == nil {
		return fmt.Errorf("%s already exists", cfgPath)
	} else if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("checking config: %w", err)
	}

	cfg := config.Default()
	cfg.Ledger.Currency = currency
	share, err := parseAmount("fuel share", fuelShare)
	if err != nil {
		return err
	}
	cfg.Ledger.FuelShare = share
	cfg.Ledger.DefaultFuelSource = fuelSource
	if err := cfg.Validate(); err != nil {
		return err
	}
	cfg.Ledger.DefaultFuelSource = string(cfg.FuelSource())
	if err := config.Save(cfgPath, cfg); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	// Opening the ledger creates the schema and seeds the accounts.
	return withApp(cmd, func(ctx context.Context, a *app) error {
		a.record("init", fmt.Sprintf("currency %s, fuel share %s", currency, share), "")
		a.printf("Initialized cabstats at %s\n", dir)
		return nil
	})
}
