package money

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrInvalidAmount is returned for negative, non-finite or unrepresentable amounts.
var ErrInvalidAmount = errors.New("invalid amount")

// Cents represents a monetary value stored in minor units.
type Cents int64

var (
	hundred  = decimal.NewFromInt(100)
	maxCents = decimal.NewFromInt(math.MaxInt64)
)

// FromDecimal rounds d to two fractional digits (half away from zero) and
// converts it to minor units.
func FromDecimal(d decimal.Decimal) (Cents, error) {
	if d.IsNegative() {
		return 0, fmt.Errorf("%w: %s is negative", ErrInvalidAmount, d.String())
	}
	minor := d.Round(2).Mul(hundred)
	if minor.GreaterThan(maxCents) {
		return 0, fmt.Errorf("%w: %s out of range", ErrInvalidAmount, d.String())
	}
	return Cents(minor.IntPart()), nil
}

// DecimalFromFloat converts a float boundary value to a decimal, rejecting NaN and infinities.
func DecimalFromFloat(f float64) (decimal.Decimal, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return decimal.Zero, fmt.Errorf("%w: non-finite value", ErrInvalidAmount)
	}
	return decimal.NewFromFloat(f), nil
}

// ParseDecimal parses a non-negative decimal string such as "12.5" or "3".
func ParseDecimal(s string) (decimal.Decimal, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return decimal.Zero, fmt.Errorf("%w: empty value", ErrInvalidAmount)
	}
	d, err := decimal.NewFromString(trimmed)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	if d.IsNegative() {
		return decimal.Zero, fmt.Errorf("%w: %q is negative", ErrInvalidAmount, s)
	}
	return d, nil
}

// Parse reads a decimal string and returns it in minor units.
func Parse(s string) (Cents, error) {
	d, err := ParseDecimal(s)
	if err != nil {
		return 0, err
	}
	return FromDecimal(d)
}

// Decimal returns c as a decimal with two fractional digits.
func (c Cents) Decimal() decimal.Decimal {
	return decimal.New(int64(c), -2)
}

// String formats c as a plain decimal with exactly two fractional digits, e.g. "1234.56".
func (c Cents) String() string {
	v := int64(c)
	sign := ""
	if v < 0 {
		sign = "-"
	}
	units := v / 100
	frac := v % 100
	if v < 0 {
		units, frac = -units, -frac
	}
	return sign + strconv.FormatInt(units, 10) + "." + fmt.Sprintf("%02d", frac)
}

// IsZero reports whether c is zero.
func (c Cents) IsZero() bool { return c == 0 }

// MarshalText renders c as its decimal string so JSON carries "5882.35" rather than 588235.
func (c Cents) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText parses a non-negative decimal string.
func (c *Cents) UnmarshalText(text []byte) error {
	v, err := Parse(string(text))
	if err != nil {
		return err
	}
	*c = v
	return nil
}
