package commands

import (
	"github.com/spf13/cobra"

	"github.com/cleared-dev/cabstats/internal/buildinfo"
)

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "cabstats",
		Short:   "Income and expense ledger for cab drivers",
		Version: buildinfo.String(),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().String("dir", "", "data directory (default $"+EnvDir+" or ~/.cabstats)")

	rootCmd.AddCommand(
		newInitCommand(),
		newAccountCommand(),
		newBalanceCommand(),
		newFuelCommand(),
		newSessionCommand(),
		newRideCommand(),
		newExpenseCommand(),
		newStatsCommand(),
		newCheckCommand(),
		newExportCommand(),
		newLogCommand(),
		newResetCommand(),
	)

	return rootCmd
}
