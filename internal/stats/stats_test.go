package stats

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/cabstats/internal/model"
)

var day = time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func ride(start time.Time, minutes int, km, fare, profit string, sessionID *string) model.Ride {
	end := start.Add(time.Duration(minutes) * time.Minute)
	p := dec(profit)
	return model.Ride{
		SessionID:      sessionID,
		StartTime:      start,
		EndTime:        &end,
		Km:             dec(km),
		Fare:           dec(fare),
		Profit:         p,
		FuelAllocation: p.Mul(dec("0.5")).Round(2),
		CreatedAt:      end,
	}
}

func expense(at time.Time, cat model.ExpenseCategory, amount string, sessionID *string) model.Expense {
	return model.Expense{SessionID: sessionID, Category: cat, Amount: dec(amount), CreatedAt: at}
}

func assertDec(t *testing.T, want string, got decimal.Decimal, field string) {
	t.Helper()
	assert.True(t, dec(want).Equal(got), "%s: want %s, got %s", field, want, got)
}

func TestSummarize_Empty(t *testing.T) {
	s := Summarize(nil, nil)

	assert.Zero(t, s.TotalRides)
	assert.Zero(t, s.TotalMinutes)
	for name, v := range map[string]decimal.Decimal{
		"TotalEarnings": s.TotalEarnings, "TotalProfit": s.TotalProfit,
		"AverageFare": s.AverageFare, "AverageProfit": s.AverageProfit,
		"BestRide": s.BestRide, "WorstRide": s.WorstRide,
		"TotalKm": s.TotalKm, "AverageDistance": s.AverageDistance,
		"AverageDuration": s.AverageDuration, "ProfitPerKm": s.ProfitPerKm,
		"ProfitPerMinute": s.ProfitPerMinute, "TotalFuelAllocation": s.TotalFuelAllocation,
		"TotalExpenses": s.TotalExpenses, "GrossEarnings": s.GrossEarnings,
		"NetProfit": s.NetProfit, "ProfitMargin": s.ProfitMargin,
	} {
		assert.True(t, v.IsZero(), "%s should be zero, got %s", name, v)
	}
	assert.Empty(t, s.ExpensesByCategory)
	assert.Equal(t, NoCategory, s.MostExpensiveCategory)
}

func TestSummarize(t *testing.T) {
	start := day.Add(9 * time.Hour)
	rides := []model.Ride{
		ride(start, 20, "10", "500", "450", nil),
		ride(start.Add(time.Hour), 40, "30", "900", "800", nil),
		ride(start.Add(2*time.Hour), 30, "5", "100", "-20", nil),
	}
	expenses := []model.Expense{
		expense(start, model.CategoryFuel, "600", nil),
		expense(start, model.CategoryFood, "150", nil),
		expense(start, model.CategoryFuel, "100", nil),
	}

	s := Summarize(rides, expenses)

	assert.Equal(t, 3, s.TotalRides)
	assertDec(t, "1500", s.TotalEarnings, "TotalEarnings")
	assertDec(t, "1230", s.TotalProfit, "TotalProfit")
	assertDec(t, "500", s.AverageFare, "AverageFare")
	assertDec(t, "410", s.AverageProfit, "AverageProfit")
	assertDec(t, "800", s.BestRide, "BestRide")
	assertDec(t, "-20", s.WorstRide, "WorstRide")

	assertDec(t, "45", s.TotalKm, "TotalKm")
	assertDec(t, "15", s.AverageDistance, "AverageDistance")
	assert.Equal(t, 90, s.TotalMinutes)
	assertDec(t, "30", s.AverageDuration, "AverageDuration")

	assertDec(t, "27.33", s.ProfitPerKm, "ProfitPerKm")
	assertDec(t, "13.67", s.ProfitPerMinute, "ProfitPerMinute")
	assertDec(t, "615", s.TotalFuelAllocation, "TotalFuelAllocation")

	assertDec(t, "850", s.TotalExpenses, "TotalExpenses")
	require.Len(t, s.ExpensesByCategory, 2)
	assertDec(t, "700", s.ExpensesByCategory[model.CategoryFuel], "Fuel")
	assertDec(t, "150", s.ExpensesByCategory[model.CategoryFood], "Food")
	assert.Equal(t, "Fuel", s.MostExpensiveCategory)

	assertDec(t, "1500", s.GrossEarnings, "GrossEarnings")
	assertDec(t, "650", s.NetProfit, "NetProfit")
	assertDec(t, "43.33", s.ProfitMargin, "ProfitMargin")
}

func TestSummarize_ExpensesOnly(t *testing.T) {
	s := Summarize(nil, []model.Expense{expense(day, model.CategoryRent, "300", nil)})

	assertDec(t, "-300", s.NetProfit, "NetProfit")
	assert.True(t, s.ProfitMargin.IsZero(), "no earnings means no margin")
	assert.Equal(t, "Rent", s.MostExpensiveCategory)
}

func TestMostExpensive_TieGoesToFirstListed(t *testing.T) {
	got := mostExpensive(map[model.ExpenseCategory]decimal.Decimal{
		model.CategoryWater: dec("50"),
		model.CategoryFood:  dec("50"),
	})
	assert.Equal(t, "Food", got)
}

func TestForDate(t *testing.T) {
	today := day.Add(10 * time.Hour)
	yesterday := day.Add(-2 * time.Hour)
	rides := []model.Ride{
		ride(today, 10, "4", "200", "180", nil),
		ride(yesterday, 10, "4", "300", "280", nil),
	}
	expenses := []model.Expense{
		expense(today, model.CategoryWater, "20", nil),
		expense(yesterday, model.CategoryFuel, "500", nil),
	}

	s := ForDate(rides, expenses, day.Add(15*time.Hour))
	assert.Equal(t, 1, s.TotalRides)
	assertDec(t, "200", s.TotalEarnings, "TotalEarnings")
	assertDec(t, "20", s.TotalExpenses, "TotalExpenses")

	empty := ForDate(rides, expenses, day.AddDate(0, 0, 5))
	assert.Zero(t, empty.TotalRides)
	assert.Equal(t, NoCategory, empty.MostExpensiveCategory)
}

func TestSameDay_UsesDayLocation(t *testing.T) {
	ist := time.FixedZone("IST", 5*3600+1800)
	// 20:00 UTC on the 18th is 01:30 on the 19th in IST.
	at := time.Date(2026, 10, 18, 20, 0, 0, 0, time.UTC)

	assert.True(t, SameDay(at, time.Date(2026, 10, 19, 12, 0, 0, 0, ist)))
	assert.False(t, SameDay(at, time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)))
}

func TestForSession(t *testing.T) {
	sid, other := "session-1", "session-2"
	start := day.Add(8 * time.Hour)
	end := start.Add(6 * time.Hour)
	session := model.Session{
		ID:        sid,
		StartTime: start,
		EndTime:   &end,
		StartKm:   dec("1000"),
		TotalKm:   dec("140"),
		Status:    model.SessionCompleted,
	}
	rides := []model.Ride{
		ride(start.Add(time.Hour), 30, "12", "400", "380", &sid),
		ride(start.Add(2*time.Hour), 30, "12", "400", "380", &other),
		ride(start.Add(3*time.Hour), 30, "12", "400", "380", nil),
	}
	expenses := []model.Expense{
		expense(start, model.CategoryParkingFee, "40", &sid),
		expense(start, model.CategoryFood, "90", nil),
	}

	s := ForSession(session, rides, expenses, end.Add(10*time.Hour))
	assert.Equal(t, 1, s.TotalRides)
	assertDec(t, "40", s.TotalExpenses, "TotalExpenses")
	assert.Equal(t, "Parking Fee", s.MostExpensiveCategory)
	assert.Equal(t, 360, s.DurationMinutes, "completed session ends at EndTime")
	assertDec(t, "140", s.SessionKm, "SessionKm")
	assert.Equal(t, sid, s.Session.ID)
}

func TestForSession_ActiveRunsToNow(t *testing.T) {
	start := day.Add(8 * time.Hour)
	session := model.Session{ID: "s", StartTime: start, Status: model.SessionActive}

	s := ForSession(session, nil, nil, start.Add(95*time.Minute))
	assert.Equal(t, 95, s.DurationMinutes)
	assert.True(t, s.SessionKm.IsZero())
	assert.Zero(t, s.TotalRides)
}
