package utils

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrAmountNotPos     = errors.New("amount must be positive")
	ErrAmountTooPrecise = errors.New("amount has more than two decimal places")
)

// ParseAmount parses a user supplied money value such as "50" or "12.50".
// Zero, negative and sub-cent values are rejected.
func ParseAmount(raw string) (decimal.Decimal, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return decimal.Zero, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	if !d.IsPositive() {
		return decimal.Zero, ErrAmountNotPos
	}
	if !d.Equal(d.Truncate(2)) {
		return decimal.Zero, ErrAmountTooPrecise
	}
	return d.Truncate(2), nil
}

// FormatMoney keeps consistent two-place formatting for currency fields.
func FormatMoney(amount decimal.Decimal) string {
	return amount.StringFixed(2)
}

// SumMoney adds amounts exactly.
func SumMoney(amounts ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, a := range amounts {
		total = total.Add(a)
	}
	return total
}
