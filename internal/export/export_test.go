package export

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/cabstats/internal/ledger"
	"github.com/cleared-dev/cabstats/internal/model"
)

var t0 = time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func readCSV(t *testing.T, data string) [][]string {
	t.Helper()
	records, err := csv.NewReader(strings.NewReader(data)).ReadAll()
	require.NoError(t, err)
	return records
}

func TestWriteRides(t *testing.T) {
	sid := "sess-1"
	end := t0.Add(20 * time.Minute)
	rides := []model.Ride{{
		ID:             "ride-1",
		SessionID:      &sid,
		StartTime:      t0,
		EndTime:        &end,
		Km:             dec("10.5"),
		Fare:           dec("500"),
		PlatformFee:    dec("50"),
		RideType:       model.RideUber,
		PaymentMethod:  model.AccountMain,
		Profit:         dec("450"),
		ProfitPerKm:    dec("42.86"),
		ProfitPerMin:   dec("22.5"),
		FuelAllocation: dec("225"),
	}}

	var buf bytes.Buffer
	require.NoError(t, WriteRides(&buf, rides))

	records := readCSV(t, buf.String())
	require.Len(t, records, 2)
	assert.Equal(t, strings.Split(RidesHeader, ","), records[0])
	assert.Equal(t, []string{
		"ride-1", "sess-1", "2026-10-19T09:00:00Z", "2026-10-19T09:20:00Z", "Uber", "Main Account",
		"10.5", "500.00", "0.00", "50.00", "0.00", "0.00", "450.00", "42.86", "22.50", "225.00",
	}, records[1])
}

func TestWriteExpenses_QuotesDescription(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteExpenses(&buf, []model.Expense{{
		ID: "exp-1", Category: model.CategoryFood, Account: model.AccountCash,
		Amount: dec("120"), Description: "tea, snacks", CreatedAt: t0,
	}}))

	records := readCSV(t, buf.String())
	require.Len(t, records, 2)
	assert.Equal(t, []string{"exp-1", "", "2026-10-19T09:00:00Z", "Food", "Cash Account", "120.00", "tea, snacks"}, records[1])
}

func TestWriteTransfers(t *testing.T) {
	done := t0.Add(time.Hour)
	var buf bytes.Buffer
	require.NoError(t, WriteTransfers(&buf, []model.FuelTransfer{{
		ID: "tr-1", RideID: "ride-1", Status: model.TransferCompleted, Amount: dec("250"),
		FromAccount: model.AccountMain, ToAccount: model.AccountFuel, CreatedAt: t0, CompletedAt: &done,
	}}))

	records := readCSV(t, buf.String())
	require.Len(t, records, 2)
	assert.Equal(t, []string{
		"tr-1", "ride-1", "completed", "250.00", "Main Account", "Fuel Account",
		"2026-10-19T09:00:00Z", "2026-10-19T10:00:00Z", "",
	}, records[1])
}

func TestWriteSessions_Active(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteSessions(&buf, []model.Session{{
		ID: "s1", Name: "Session #1", Status: model.SessionActive, StartTime: t0, StartKm: dec("1200"),
	}}))

	records := readCSV(t, buf.String())
	require.Len(t, records, 2)
	assert.Equal(t, []string{"s1", "Session #1", "active", "2026-10-19T09:00:00Z", "", "1200", "", "0"}, records[1])
}

func TestDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	state := ledger.State{
		Accounts: []model.Account{{ID: "a1", Name: model.AccountMain, Balance: dec("-12.5"), UpdatedAt: t0}},
	}

	paths, err := Dir(dir, state)
	require.NoError(t, err)
	require.Len(t, paths, 5)

	data, err := os.ReadFile(filepath.Join(dir, AccountsFile))
	require.NoError(t, err)
	assert.Equal(t, AccountsHeader+"\na1,Main Account,-12.50,2026-10-19T09:00:00Z\n", string(data))

	data, err = os.ReadFile(filepath.Join(dir, RidesFile))
	require.NoError(t, err)
	assert.Equal(t, RidesHeader+"\n", string(data), "empty collections still get a header")
}
