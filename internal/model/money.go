package model

import "github.com/shopspring/decimal"

// Cents is the number of fractional digits every stored amount is limited to.
const Cents = 2

// IsCents reports whether d has no more than two decimal places.
func IsCents(d decimal.Decimal) bool {
	return d.Equal(d.Round(Cents))
}

// Sum adds up amounts.
func Sum(amounts ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, a := range amounts {
		total = total.Add(a)
	}
	return total
}
