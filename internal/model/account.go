package model

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// AccountName identifies one of the fixed money accounts.
type AccountName string

const (
	AccountMain     AccountName = "Main Account"
	AccountFuel     AccountName = "Fuel Account"
	AccountCash     AccountName = "Cash Account"
	AccountPlatform AccountName = "Platform Account"
)

// AccountNames returns every account in seed order.
func AccountNames() []AccountName {
	return []AccountName{AccountMain, AccountFuel, AccountCash, AccountPlatform}
}

// PaymentMethods returns the accounts a fare can be credited to.
func PaymentMethods() []AccountName {
	return []AccountName{AccountCash, AccountMain, AccountPlatform}
}

// Valid reports whether n is one of the fixed accounts.
func (n AccountName) Valid() bool {
	switch n {
	case AccountMain, AccountFuel, AccountCash, AccountPlatform:
		return true
	}
	return false
}

// IsPaymentMethod reports whether fares may be credited to n.
func (n AccountName) IsPaymentMethod() bool {
	return slices.Contains(PaymentMethods(), n)
}

// ParseAccountName accepts the full account name or its first word
// ("main", "fuel", "cash", "platform"), case-insensitively.
func ParseAccountName(s string) (AccountName, error) {
	s = strings.TrimSpace(s)
	for _, n := range AccountNames() {
		if strings.EqualFold(s, string(n)) {
			return n, nil
		}
		short, _, _ := strings.Cut(string(n), " ")
		if strings.EqualFold(s, short) {
			return n, nil
		}
	}
	return "", fmt.Errorf("unknown account %q", s)
}

// Account is a named money bucket. Balance may go negative.
type Account struct {
	ID        string
	Name      AccountName
	Balance   decimal.Decimal
	UpdatedAt time.Time
}
