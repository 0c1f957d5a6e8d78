// Package format renders ledger amounts for the terminal.
package format

import (
	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// Money formats amount in currency using its symbol and separators,
// e.g. "₹1,250.50". Unknown currency codes fall back to "1250.50 XYZ".
func Money(amount decimal.Decimal, currency string) string {
	cur := money.GetCurrency(currency)
	if cur == nil {
		return amount.StringFixed(2) + " " + currency
	}
	factor, _ := decimal.NewFromInt(10).PowInt32(int32(cur.Fraction))
	minor := amount.Round(int32(cur.Fraction)).Mul(factor)
	return money.New(minor.IntPart(), currency).Display()
}

// Signed is Money with an explicit "+" on positive amounts.
func Signed(amount decimal.Decimal, currency string) string {
	if amount.IsPositive() {
		return "+" + Money(amount, currency)
	}
	return Money(amount, currency)
}

// Percent formats a percentage with two decimals, e.g. "43.33%".
func Percent(p decimal.Decimal) string {
	return p.StringFixed(2) + "%"
}
