// Package money implements fixed-point currency arithmetic in integer
// minor units (cents). Amounts never pass through binary floating point;
// division happens only when rendering for display.
package money

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Money is an amount in minor units of the practice's currency.
type Money int64

// ErrInvalidAmount is returned when a negative amount is supplied where a
// non-negative one is required (unit prices, tax rates).
var ErrInvalidAmount = errors.New("invalid amount: must be non-negative")

// FromMinor wraps a raw minor-unit value.
func FromMinor(v int64) Money { return Money(v) }

// Minor returns the raw minor-unit value.
func (m Money) Minor() int64 { return int64(m) }

// Add returns m + o.
func (m Money) Add(o Money) Money { return m + o }

// Sub returns m - o.
func (m Money) Sub(o Money) Money { return m - o }

// MulQty multiplies a unit price by an integer quantity.
// The unit price must be non-negative and the quantity positive.
func (m Money) MulQty(qty int) (Money, error) {
	if m < 0 {
		return 0, ErrInvalidAmount
	}
	if qty < 1 {
		return 0, fmt.Errorf("invalid quantity %d: must be a positive integer", qty)
	}
	return m * Money(qty), nil
}

// Percentage applies a rate expressed in basis points (850 = 8.5%) and
// rounds to the nearest minor unit, half up.
func Percentage(amount Money, rateBPS int64) (Money, error) {
	if amount < 0 || rateBPS < 0 {
		return 0, ErrInvalidAmount
	}
	return Money((int64(amount)*rateBPS + 5000) / 10000), nil
}

// Format renders the amount with a currency symbol and two fraction
// digits, e.g. Format(13563, "$") == "$135.63". Negative amounts carry a
// leading minus sign.
func (m Money) Format(symbol string) string {
	units := int64(m)
	sign := ""
	if units < 0 {
		sign = "-"
		units = -units
	}
	return fmt.Sprintf("%s%s%d.%02d", sign, symbol, units/100, units%100)
}

// String renders the amount as a plain decimal, e.g. "135.63".
func (m Money) String() string { return m.Format("") }

// Parse reads a decimal amount string ("135.63", "-7", "0.5") into minor
// units. At most two fraction digits are accepted; a lone "." or empty
// string is an error.
func Parse(s string) (Money, error) {
	neg := false
	if strings.HasPrefix(s, "-") {
		neg = true
		s = s[1:]
	}
	whole, frac, hasFrac := strings.Cut(s, ".")
	if whole == "" && frac == "" {
		return 0, fmt.Errorf("invalid amount %q", s)
	}
	units := int64(0)
	if whole != "" {
		v, err := strconv.ParseUint(whole, 10, 63)
		if err != nil {
			return 0, fmt.Errorf("invalid amount %q", s)
		}
		units = int64(v) * 100
	}
	if hasFrac {
		if len(frac) == 0 || len(frac) > 2 {
			return 0, fmt.Errorf("invalid amount %q: expected at most two fraction digits", s)
		}
		v, err := strconv.ParseInt(frac, 10, 64)
		if err != nil || v < 0 {
			return 0, fmt.Errorf("invalid amount %q", s)
		}
		if len(frac) == 1 {
			v *= 10
		}
		units += v
	}
	if neg {
		units = -units
	}
	return Money(units), nil
}
