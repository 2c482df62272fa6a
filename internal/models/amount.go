package models

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// AmountScale is the number of fractional digits kept on every amount.
const AmountScale = 4

// Amount is an exact fixed-point monetary value.
type Amount = decimal.Decimal

// ParseAmount parses a decimal string and truncates it to AmountScale digits.
// Truncation never rounds: "1.23456" becomes "1.2345".
func ParseAmount(s string) (Amount, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	return d.Truncate(AmountScale), nil
}
