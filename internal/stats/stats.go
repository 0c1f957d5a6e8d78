// Package stats aggregates rides and expenses into read-only summaries.
package stats

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/cabstats/internal/model"
)

// NoCategory is reported as the most expensive category when there are no expenses.
const NoCategory = "None"

var hundred = decimal.NewFromInt(100)

// Summary is the aggregate over a set of rides and expenses.
type Summary struct {
	TotalRides    int
	TotalEarnings decimal.Decimal
	TotalProfit   decimal.Decimal
	AverageFare   decimal.Decimal
	AverageProfit decimal.Decimal
	BestRide      decimal.Decimal // highest single-ride profit
	WorstRide     decimal.Decimal // lowest single-ride profit

	TotalKm         decimal.Decimal
	AverageDistance decimal.Decimal
	TotalMinutes    int
	AverageDuration decimal.Decimal // minutes

	ProfitPerKm         decimal.Decimal
	ProfitPerMinute     decimal.Decimal
	TotalFuelAllocation decimal.Decimal

	TotalExpenses         decimal.Decimal
	ExpensesByCategory    map[model.ExpenseCategory]decimal.Decimal
	MostExpensiveCategory string

	GrossEarnings decimal.Decimal
	NetProfit     decimal.Decimal
	ProfitMargin  decimal.Decimal // percent of gross earnings
}

// SessionSummary adds the session's own duration and odometer distance.
type SessionSummary struct {
	Summary
	Session         model.Session
	DurationMinutes int             // to now while the session is active
	SessionKm       decimal.Decimal // odometer distance, zero until the session ends
}

// Summarize aggregates rides and expenses. Ratios are rounded to cents and
// every zero denominator yields zero.
func Summarize(rides []model.Ride, expenses []model.Expense) Summary {
	s := Summary{
		TotalRides:            len(rides),
		ExpensesByCategory:    make(map[model.ExpenseCategory]decimal.Decimal),
		MostExpensiveCategory: NoCategory,
	}

	for i, r := range rides {
		s.TotalEarnings = s.TotalEarnings.Add(r.Fare)
		s.TotalProfit = s.TotalProfit.Add(r.Profit)
		s.TotalKm = s.TotalKm.Add(r.Km)
		s.TotalMinutes += r.DurationMinutes()
		s.TotalFuelAllocation = s.TotalFuelAllocation.Add(r.FuelAllocation)

		if i == 0 || r.Profit.GreaterThan(s.BestRide) {
			s.BestRide = r.Profit
		}
		if i == 0 || r.Profit.LessThan(s.WorstRide) {
			s.WorstRide = r.Profit
		}
	}

	count := decimal.NewFromInt(int64(s.TotalRides))
	minutes := decimal.NewFromInt(int64(s.TotalMinutes))
	s.AverageFare = ratio(s.TotalEarnings, count)
	s.AverageProfit = ratio(s.TotalProfit, count)
	s.AverageDistance = ratio(s.TotalKm, count)
	s.AverageDuration = ratio(minutes, count)
	s.ProfitPerKm = ratio(s.TotalProfit, s.TotalKm)
	s.ProfitPerMinute = ratio(s.TotalProfit, minutes)

	for _, e := range expenses {
		s.TotalExpenses = s.TotalExpenses.Add(e.Amount)
		s.ExpensesByCategory[e.Category] = s.ExpensesByCategory[e.Category].Add(e.Amount)
	}
	s.MostExpensiveCategory = mostExpensive(s.ExpensesByCategory)

	s.GrossEarnings = s.TotalEarnings
	s.NetProfit = s.GrossEarnings.Sub(s.TotalExpenses)
	if s.GrossEarnings.IsPositive() {
		s.ProfitMargin = s.NetProfit.Mul(hundred).DivRound(s.GrossEarnings, model.Cents)
	}
	return s
}

// ForDate summarizes the rides and expenses created on day's calendar date,
// in day's location.
func ForDate(rides []model.Ride, expenses []model.Expense, day time.Time) Summary {
	var dayRides []model.Ride
	for _, r := range rides {
		if SameDay(r.CreatedAt, day) {
			dayRides = append(dayRides, r)
		}
	}
	var dayExpenses []model.Expense
	for _, e := range expenses {
		if SameDay(e.CreatedAt, day) {
			dayExpenses = append(dayExpenses, e)
		}
	}
	return Summarize(dayRides, dayExpenses)
}

// ForSession summarizes the rides and expenses attributed to session.
func ForSession(session model.Session, rides []model.Ride, expenses []model.Expense, now time.Time) SessionSummary {
	var sessRides []model.Ride
	for _, r := range rides {
		if r.InSession(session.ID) {
			sessRides = append(sessRides, r)
		}
	}
	var sessExpenses []model.Expense
	for _, e := range expenses {
		if e.InSession(session.ID) {
			sessExpenses = append(sessExpenses, e)
		}
	}

	end := now
	if session.EndTime != nil {
		end = *session.EndTime
	}
	return SessionSummary{
		Summary:         Summarize(sessRides, sessExpenses),
		Session:         session,
		DurationMinutes: model.DurationMinutes(session.StartTime, end),
		SessionKm:       session.TotalKm,
	}
}

// SameDay reports whether t falls on day's calendar date in day's location.
func SameDay(t, day time.Time) bool {
	ty, tm, td := t.In(day.Location()).Date()
	dy, dm, dd := day.Date()
	return ty == dy && tm == dm && td == dd
}

func ratio(num, den decimal.Decimal) decimal.Decimal {
	if den.IsZero() {
		return decimal.Zero
	}
	return num.DivRound(den, model.Cents)
}

// mostExpensive returns the category with the largest total; ties go to the
// category listed first.
func mostExpensive(byCategory map[model.ExpenseCategory]decimal.Decimal) string {
	best := NoCategory
	var bestAmount decimal.Decimal
	for _, c := range model.ExpenseCategories() {
		amount, ok := byCategory[c]
		if !ok {
			continue
		}
		if best == NoCategory || amount.GreaterThan(bestAmount) {
			best = string(c)
			bestAmount = amount
		}
	}
	return best
}
