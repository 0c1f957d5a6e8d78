package model

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAccountName(t *testing.T) {
	tests := []struct {
		input string
		want  AccountName
	}{
		{"Main Account", AccountMain},
		{"main account", AccountMain},
		{"fuel", AccountFuel},
		{"CASH", AccountCash},
		{" Platform ", AccountPlatform},
	}
	for _, tt := range tests {
		got, err := ParseAccountName(tt.input)
		require.NoError(t, err, "input: %q", tt.input)
		assert.Equal(t, tt.want, got)
	}

	_, err := ParseAccountName("Savings")
	assert.Error(t, err)
}

func TestAccountName_IsPaymentMethod(t *testing.T) {
	assert.True(t, AccountMain.IsPaymentMethod())
	assert.True(t, AccountCash.IsPaymentMethod())
	assert.True(t, AccountPlatform.IsPaymentMethod())
	assert.False(t, AccountFuel.IsPaymentMethod())
	assert.False(t, AccountName("Savings").IsPaymentMethod())
}

func TestParseRideType(t *testing.T) {
	got, err := ParseRideType("uber")
	require.NoError(t, err)
	assert.Equal(t, RideUber, got)

	_, err = ParseRideType("Lyft")
	assert.Error(t, err)
	assert.False(t, RideType("").Valid())
}

func TestParseExpenseCategory(t *testing.T) {
	tests := []struct {
		input string
		want  ExpenseCategory
	}{
		{"Fuel", CategoryFuel},
		{"parking-fee", CategoryParkingFee},
		{"other_fees", CategoryOtherFees},
		{"Airport Fee", CategoryAirportFee},
	}
	for _, tt := range tests {
		got, err := ParseExpenseCategory(tt.input)
		require.NoError(t, err, "input: %q", tt.input)
		assert.Equal(t, tt.want, got)
	}

	_, err := ParseExpenseCategory("Insurance")
	assert.Error(t, err)
	assert.Len(t, ExpenseCategories(), 14)
}

func TestIsCents(t *testing.T) {
	assert.True(t, IsCents(decimal.RequireFromString("12.34")))
	assert.True(t, IsCents(decimal.RequireFromString("12")))
	assert.True(t, IsCents(decimal.RequireFromString("-0.5")))
	assert.False(t, IsCents(decimal.RequireFromString("0.005")))
}

func TestDurationMinutes(t *testing.T) {
	start := time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)
	tests := []struct {
		end  time.Time
		want int
	}{
		{start, 0},
		{start.Add(29 * time.Second), 0},
		{start.Add(30 * time.Second), 1},
		{start.Add(14*time.Minute + 40*time.Second), 15},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, DurationMinutes(start, tt.end), "end %s", tt.end)
	}

	r := Ride{StartTime: start}
	assert.Equal(t, 0, r.DurationMinutes(), "in-progress ride has no duration")
	end := start.Add(20 * time.Minute)
	r.EndTime = &end
	assert.Equal(t, 20, r.DurationMinutes())
}

func TestRide_TotalFees(t *testing.T) {
	r := Ride{
		AirportFee:  decimal.NewFromInt(50),
		PlatformFee: decimal.RequireFromString("12.50"),
		Tolls:       decimal.NewFromInt(30),
		OtherFees:   decimal.Zero,
	}
	assert.True(t, r.TotalFees().Equal(decimal.RequireFromString("92.50")))
}

func TestPendingTotal(t *testing.T) {
	transfers := []FuelTransfer{
		{Amount: decimal.NewFromInt(100), Status: TransferPending},
		{Amount: decimal.NewFromInt(40), Status: TransferCompleted},
		{Amount: decimal.RequireFromString("12.5"), Status: TransferPending},
		{Amount: decimal.NewFromInt(7), Status: TransferCancelled},
	}
	assert.True(t, PendingTotal(transfers).Equal(decimal.RequireFromString("112.5")))
	assert.True(t, PendingTotal(nil).IsZero())
}
