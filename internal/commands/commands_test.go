package commands_test

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/cabstats/internal/activity"
	"github.com/cleared-dev/cabstats/internal/commands"
	"github.com/cleared-dev/cabstats/internal/config"
	"github.com/cleared-dev/cabstats/internal/export"
	"github.com/cleared-dev/cabstats/internal/ledger"
)

func runCabstats(t *testing.T, dir string, args ...string) (string, error) {
	t.Helper()
	cmd := commands.NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--dir", dir}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func mustRun(t *testing.T, dir string, args ...string) string {
	t.Helper()
	out, err := runCabstats(t, dir, args...)
	require.NoError(t, err, "cabstats %v: %s", args, out)
	return out
}

// lastEntityID returns the entity id of the newest activity entry for action.
func lastEntityID(t *testing.T, dir, action string) string {
	t.Helper()
	entries, err := activity.Read(dir)
	require.NoError(t, err)
	for i := len(entries) - 1; i >= 0; i-- {
		if entries[i].Action == action {
			return entries[i].EntityID
		}
	}
	t.Fatalf("no %s entry in activity log", action)
	return ""
}

// listedID returns the id column of the first table row containing marker.
func listedID(t *testing.T, out, marker string) string {
	t.Helper()
	for _, line := range strings.Split(out, "\n")[1:] {
		if strings.Contains(line, marker) {
			return strings.Fields(line)[0]
		}
	}
	t.Fatalf("no row containing %q in:\n%s", marker, out)
	return ""
}

func initDir(t *testing.T) string {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "data")
	mustRun(t, dir, "init")
	return dir
}

func TestInit_CreatesStructure(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "data")
	out := mustRun(t, dir, "init", "--fuel-share", "0.4", "--fuel-source", "cash")
	assert.Contains(t, out, "Initialized cabstats at "+dir)

	for _, f := range []string{config.FileName, "cabstats.db", "logs"} {
		_, err := os.Stat(filepath.Join(dir, f))
		assert.NoError(t, err, "%s should exist", f)
	}

	cfg, err := config.Load(filepath.Join(dir, config.FileName))
	require.NoError(t, err)
	assert.Equal(t, "0.4", cfg.Ledger.FuelShare.String())
	assert.Equal(t, "Cash Account", cfg.Ledger.DefaultFuelSource)
	assert.Equal(t, "INR", cfg.Ledger.Currency)

	_, err = runCabstats(t, dir, "init")
	assert.ErrorContains(t, err, "already exists")
}

func TestInit_RejectsBadFuelShare(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "data")
	_, err := runCabstats(t, dir, "init", "--fuel-share", "1.5")
	assert.ErrorContains(t, err, "fuel_share")

	_, err = os.Stat(filepath.Join(dir, config.FileName))
	assert.True(t, os.IsNotExist(err))
}

func TestRideWorkflow(t *testing.T) {
	dir := initDir(t)

	mustRun(t, dir, "session", "start", "1000")
	mustRun(t, dir, "ride", "start")
	out := mustRun(t, dir, "ride", "end", "--fare", "500", "--km", "10", "--type", "uber", "--pay", "main")
	assert.Contains(t, out, "Fuel allocation")
	assert.Contains(t, out, "₹250.00")

	out = mustRun(t, dir, "account", "list")
	assert.Contains(t, out, "Main Account")
	assert.Contains(t, out, "₹500.00")

	out = mustRun(t, dir, "fuel", "status")
	assert.Contains(t, out, "Pending transfer: ₹250.00")
	assert.Contains(t, out, "pending")

	out = mustRun(t, dir, "fuel", "transfer", "250")
	assert.Contains(t, out, "Moved ₹250.00 from Main Account to Fuel Account, ₹0.00 still pending")

	out = mustRun(t, dir, "balance")
	assert.Contains(t, out, "Combined balance")
	assert.Contains(t, out, "Active session")

	out = mustRun(t, dir, "check")
	assert.Contains(t, out, "Ledger is consistent")

	rideID := listedID(t, mustRun(t, dir, "ride", "list"), "Uber")
	out = mustRun(t, dir, "ride", "delete", rideID)
	assert.Contains(t, out, "Deleted ride "+rideID)

	out = mustRun(t, dir, "account", "list")
	assert.Contains(t, out, "Total")
	assert.NotContains(t, out, "₹250.00")
	mustRun(t, dir, "check")

	out = mustRun(t, dir, "session", "end", "1042")
	assert.Contains(t, out, "42 km driven")

	out = mustRun(t, dir, "log", "--limit", "0")
	for _, action := range []string{"init", "start_session", "start_ride", "end_ride", "fuel_transfer", "delete_ride", "end_session"} {
		assert.Contains(t, out, action)
	}
}

func TestRide_Errors(t *testing.T) {
	dir := initDir(t)

	_, err := runCabstats(t, dir, "ride", "start")
	assert.ErrorIs(t, err, ledger.ErrPreconditionFailed)

	_, err = runCabstats(t, dir, "ride", "end", "--fare", "500", "--km", "10", "--type", "uber", "--pay", "main")
	assert.ErrorIs(t, err, ledger.ErrPreconditionFailed)

	mustRun(t, dir, "session", "start", "0")
	mustRun(t, dir, "ride", "start")

	_, err = runCabstats(t, dir, "ride", "end", "--km", "10", "--type", "uber", "--pay", "main")
	assert.ErrorIs(t, err, ledger.ErrValidation)
	_, err = runCabstats(t, dir, "ride", "end", "--fare", "abc", "--km", "10", "--type", "uber", "--pay", "main")
	assert.ErrorIs(t, err, ledger.ErrValidation)
	_, err = runCabstats(t, dir, "ride", "end", "--fare", "500", "--km", "10", "--type", "taxi", "--pay", "main")
	assert.ErrorIs(t, err, ledger.ErrValidation)
	_, err = runCabstats(t, dir, "ride", "end", "--fare", "500", "--km", "10", "--type", "uber", "--pay", "fuel")
	assert.ErrorIs(t, err, ledger.ErrValidation)

	out := mustRun(t, dir, "ride", "discard")
	assert.Contains(t, out, "Discarded ride")

	_, err = runCabstats(t, dir, "ride", "delete", "ffffffff")
	assert.ErrorIs(t, err, ledger.ErrNotFound)
}

func TestSession_RequiresOdometer(t *testing.T) {
	dir := initDir(t)

	_, err := runCabstats(t, dir, "session", "start", " ")
	assert.ErrorIs(t, err, ledger.ErrValidation)
	assert.NotContains(t, mustRun(t, dir, "session", "list"), "Session #1")

	mustRun(t, dir, "session", "start", "100")
	_, err = runCabstats(t, dir, "session", "end", "")
	assert.ErrorIs(t, err, ledger.ErrValidation)
	assert.Contains(t, mustRun(t, dir, "session", "list"), "active")
}

func TestExpenses(t *testing.T) {
	dir := initDir(t)

	out := mustRun(t, dir, "expense", "add", "food", "120", "--account", "cash", "--note", "lunch")
	assert.Contains(t, out, "Recorded Food ₹120.00 from Cash Account")
	out = mustRun(t, dir, "expense", "add", "fuel", "800")
	assert.Contains(t, out, "from Fuel Account")

	out = mustRun(t, dir, "expense", "list")
	assert.Contains(t, out, "lunch")
	assert.Contains(t, out, "Fuel Account")

	out = mustRun(t, dir, "stats", "date")
	assert.Contains(t, out, "Most expensive category")
	assert.Contains(t, out, "Fuel")
	assert.Contains(t, out, "-₹920.00")

	_, err := runCabstats(t, dir, "expense", "add", "food", "10")
	assert.ErrorIs(t, err, ledger.ErrValidation, "non-fuel expense needs an account")
	_, err = runCabstats(t, dir, "expense", "add", "snacks", "10", "--account", "cash")
	assert.ErrorIs(t, err, ledger.ErrValidation)

	expenseID := lastEntityID(t, dir, "add_expense")
	out = mustRun(t, dir, "expense", "delete", expenseID)
	assert.Contains(t, out, "returned to Fuel Account")
	mustRun(t, dir, "check")
}

func TestExpenseDelete_ByListedID(t *testing.T) {
	dir := initDir(t)
	mustRun(t, dir, "expense", "add", "food", "50", "--account", "cash", "--note", "lunch")
	mustRun(t, dir, "expense", "add", "water", "20", "--account", "cash", "--note", "bottle")

	out := mustRun(t, dir, "expense", "list")
	lunch, bottle := listedID(t, out, "lunch"), listedID(t, out, "bottle")
	assert.NotEqual(t, lunch, bottle)

	out = mustRun(t, dir, "expense", "delete", lunch)
	assert.Contains(t, out, "Deleted expense "+lunch)

	out = mustRun(t, dir, "expense", "list")
	assert.NotContains(t, out, "lunch")
	assert.Contains(t, out, "bottle")
}

func TestAccountCommands(t *testing.T) {
	dir := initDir(t)

	out := mustRun(t, dir, "account", "adjust", "cash", "300")
	assert.Contains(t, out, "Cash Account: ₹300.00")

	out = mustRun(t, dir, "account", "transfer", "cash", "platform", "120.50")
	assert.Contains(t, out, "Moved ₹120.50 from Cash Account to Platform Account")

	_, err := runCabstats(t, dir, "account", "transfer", "cash", "cash", "10")
	assert.ErrorIs(t, err, ledger.ErrInvalidArgument)
	_, err = runCabstats(t, dir, "account", "adjust", "savings", "10")
	assert.Error(t, err)

	_, err = runCabstats(t, dir, "fuel", "transfer", "--all")
	assert.ErrorIs(t, err, ledger.ErrPreconditionFailed)
	_, err = runCabstats(t, dir, "fuel", "transfer")
	assert.ErrorContains(t, err, "either an amount or --all")
}

func TestStatsSession(t *testing.T) {
	dir := initDir(t)

	_, err := runCabstats(t, dir, "stats", "session", "current")
	assert.ErrorIs(t, err, ledger.ErrPreconditionFailed)

	mustRun(t, dir, "session", "start", "500")
	mustRun(t, dir, "ride", "start")
	mustRun(t, dir, "ride", "end", "--fare", "300", "--km", "6", "--platform-fee", "30", "--type", "ola", "--pay", "platform")

	out := mustRun(t, dir, "stats", "session", "current")
	assert.Contains(t, out, "Session #1 (active)")
	assert.Contains(t, out, "₹270.00")

	out = mustRun(t, dir, "stats", "session", "#1")
	assert.Contains(t, out, "Session #1")
	_, err = runCabstats(t, dir, "stats", "session", "#9")
	assert.ErrorIs(t, err, ledger.ErrNotFound)
	_, err = runCabstats(t, dir, "stats", "session", "#x")
	assert.ErrorIs(t, err, ledger.ErrValidation)

	sessionID := lastEntityID(t, dir, "start_session")
	out = mustRun(t, dir, "stats", "session", sessionID[:8])
	assert.Contains(t, out, "Session #1")

	_, err = runCabstats(t, dir, "stats", "date", "19-10-2026")
	assert.ErrorIs(t, err, ledger.ErrValidation)
}

func TestExportAndReset(t *testing.T) {
	dir := initDir(t)
	mustRun(t, dir, "account", "adjust", "main", "99")

	outDir := filepath.Join(t.TempDir(), "export")
	out := mustRun(t, dir, "export", outDir)
	assert.Contains(t, out, export.AccountsFile)
	data, err := os.ReadFile(filepath.Join(outDir, export.AccountsFile))
	require.NoError(t, err)
	assert.Contains(t, string(data), "Main Account,99.00")

	_, err = runCabstats(t, dir, "reset")
	assert.ErrorContains(t, err, "--yes")

	mustRun(t, dir, "reset", "--yes")
	out = mustRun(t, dir, "account", "list")
	assert.NotContains(t, out, "₹99.00")
	assert.Contains(t, out, "₹0.00")
}
