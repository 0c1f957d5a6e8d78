package format

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestMoney(t *testing.T) {
	tests := []struct {
		amount   string
		currency string
		want     string
	}{
		{"1250.5", "INR", "₹1,250.50"},
		{"0", "INR", "₹0.00"},
		{"-12", "INR", "-₹12.00"},
		{"1234567.891", "USD", "$1,234,567.89"},
		{"99.99", "XYZ", "99.99 XYZ"},
	}
	for _, tt := range tests {
		t.Run(tt.amount+" "+tt.currency, func(t *testing.T) {
			assert.Equal(t, tt.want, Money(decimal.RequireFromString(tt.amount), tt.currency))
		})
	}
}

func TestSigned(t *testing.T) {
	assert.Equal(t, "+₹5.00", Signed(decimal.NewFromInt(5), "INR"))
	assert.Equal(t, "-₹5.00", Signed(decimal.NewFromInt(-5), "INR"))
	assert.Equal(t, "₹0.00", Signed(decimal.Zero, "INR"))
}

func TestPercent(t *testing.T) {
	assert.Equal(t, "43.33%", Percent(decimal.RequireFromString("43.333")))
	assert.Equal(t, "0.00%", Percent(decimal.Zero))
}
