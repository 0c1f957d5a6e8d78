package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ExpenseCategory classifies an expense.
type ExpenseCategory string

const (
	CategoryAirportFee  ExpenseCategory = "Airport Fee"
	CategoryCigarette   ExpenseCategory = "Cigarette"
	CategoryCleaning    ExpenseCategory = "Cleaning"
	CategoryFood        ExpenseCategory = "Food"
	CategoryFuel        ExpenseCategory = "Fuel"
	CategoryGoodies     ExpenseCategory = "Goodies"
	CategoryOther       ExpenseCategory = "Other"
	CategoryOtherFees   ExpenseCategory = "Other Fees"
	CategoryParkingFee  ExpenseCategory = "Parking Fee"
	CategoryPlatformFee ExpenseCategory = "Platform Fee"
	CategoryRent        ExpenseCategory = "Rent"
	CategoryTolls       ExpenseCategory = "Tolls"
	CategoryWater       ExpenseCategory = "Water"
	CategoryWithdrawals ExpenseCategory = "Withdrawals"
)

// ExpenseCategories returns every category in display order.
func ExpenseCategories() []ExpenseCategory {
	return []ExpenseCategory{
		CategoryAirportFee,
		CategoryCigarette,
		CategoryCleaning,
		CategoryFood,
		CategoryFuel,
		CategoryGoodies,
		CategoryOther,
		CategoryOtherFees,
		CategoryParkingFee,
		CategoryPlatformFee,
		CategoryRent,
		CategoryTolls,
		CategoryWater,
		CategoryWithdrawals,
	}
}

// Valid reports whether c is a known category.
func (c ExpenseCategory) Valid() bool {
	for _, ec := range ExpenseCategories() {
		if c == ec {
			return true
		}
	}
	return false
}

// ParseExpenseCategory matches s against the known categories,
// case-insensitively. Dashes and underscores stand in for spaces.
func ParseExpenseCategory(s string) (ExpenseCategory, error) {
	norm := strings.NewReplacer("-", " ", "_", " ").Replace(strings.TrimSpace(s))
	for _, ec := range ExpenseCategories() {
		if strings.EqualFold(norm, string(ec)) {
			return ec, nil
		}
	}
	return "", fmt.Errorf("unknown expense category %q", s)
}

// Expense is money spent from one account.
type Expense struct {
	ID          string
	SessionID   *string
	Category    ExpenseCategory
	Amount      decimal.Decimal // always positive
	Account     AccountName     // Fuel Account when Category is Fuel
	Description string
	CreatedAt   time.Time
}

// InSession reports whether the expense was recorded during session id.
func (e Expense) InSession(id string) bool {
	return e.SessionID != nil && *e.SessionID == id
}
