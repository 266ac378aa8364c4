package pricing

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/noah-isme/quotepay/internal/money"
)

var (
	// ErrInvalidAmount is returned when a quantity, unit price or subtotal is negative or non-finite.
	ErrInvalidAmount = money.ErrInvalidAmount
	// ErrInvalidFeeRate indicates a fee was requested with a rate outside [0, 1).
	ErrInvalidFeeRate = errors.New("invalid fee rate")
)

var one = decimal.NewFromInt(1)

// Item describes a quote line, either a catalog product or a service entry.
type Item struct {
	Description string
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
}

// Fee configures the processor-fee gross-up. Rate is ignored unless Applied is set.
type Fee struct {
	Applied bool
	Rate    decimal.Decimal
}

// Summary aggregates computed quote totals.
type Summary struct {
	ItemLines     []money.Cents
	ServiceLines  []money.Cents
	ItemsTotal    money.Cents
	ServicesTotal money.Cents
	Subtotal      money.Cents
	FeeApplied    bool
	FeeRate       decimal.Decimal
	FeeAmount     money.Cents
	GrandTotal    money.Cents
}

// LineTotal returns quantity × unitPrice rounded to cents. Only the final
// product is rounded.
func LineTotal(quantity, unitPrice decimal.Decimal) (money.Cents, error) {
	if quantity.IsNegative() {
		return 0, fmt.Errorf("%w: quantity %s is negative", ErrInvalidAmount, quantity.String())
	}
	if unitPrice.IsNegative() {
		return 0, fmt.Errorf("%w: unit price %s is negative", ErrInvalidAmount, unitPrice.String())
	}
	return money.FromDecimal(quantity.Mul(unitPrice))
}

// LineTotalFloat is LineTotal for callers holding float64 values.
func LineTotalFloat(quantity, unitPrice float64) (money.Cents, error) {
	q, err := money.DecimalFromFloat(quantity)
	if err != nil {
		return 0, fmt.Errorf("quantity: %w", err)
	}
	p, err := money.DecimalFromFloat(unitPrice)
	if err != nil {
		return 0, fmt.Errorf("unit price: %w", err)
	}
	return LineTotal(q, p)
}

// Subtotal sums the line totals of items.
func Subtotal(items []Item) (money.Cents, error) {
	_, total, err := lineTotals(items)
	return total, err
}

func lineTotals(items []Item) ([]money.Cents, money.Cents, error) {
	lines := make([]money.Cents, 0, len(items))
	var total money.Cents
	for i, it := range items {
		line, err := LineTotal(it.Quantity, it.UnitPrice)
		if err != nil {
			return nil, 0, fmt.Errorf("item %d: %w", i, err)
		}
		next := total + line
		if next < total {
			return nil, 0, fmt.Errorf("item %d: %w: subtotal overflow", i, ErrInvalidAmount)
		}
		lines = append(lines, line)
		total = next
	}
	return lines, total, nil
}

// Totals applies the optional fee gross-up to subtotal. With a fee the grand
// total is subtotal / (1 - rate) rounded to cents, so the seller nets the
// subtotal once the processor keeps rate of the total. FeeAmount is the
// difference of the rounded figures.
func Totals(subtotal money.Cents, fee Fee) (Summary, error) {
	if subtotal < 0 {
		return Summary{}, fmt.Errorf("%w: subtotal %s is negative", ErrInvalidAmount, subtotal)
	}
	summary := Summary{
		Subtotal:   subtotal,
		FeeRate:    decimal.Zero,
		GrandTotal: subtotal,
	}
	if !fee.Applied {
		return summary, nil
	}
	if err := ValidateRate(fee.Rate); err != nil {
		return Summary{}, err
	}
	grand, err := money.FromDecimal(decimal.NewFromInt(int64(subtotal)).DivRound(one.Sub(fee.Rate), 0).Shift(-2))
	if err != nil {
		return Summary{}, err
	}
	summary.FeeApplied = true
	summary.FeeRate = fee.Rate
	summary.GrandTotal = grand
	summary.FeeAmount = grand - subtotal
	return summary, nil
}

// Compute prices a quote made of catalog items and service entries.
func Compute(items, services []Item, fee Fee) (Summary, error) {
	itemLines, itemsTotal, err := lineTotals(items)
	if err != nil {
		return Summary{}, fmt.Errorf("items: %w", err)
	}
	serviceLines, servicesTotal, err := lineTotals(services)
	if err != nil {
		return Summary{}, fmt.Errorf("services: %w", err)
	}
	subtotal := itemsTotal + servicesTotal
	if subtotal < itemsTotal {
		return Summary{}, fmt.Errorf("%w: subtotal overflow", ErrInvalidAmount)
	}
	summary, err := Totals(subtotal, fee)
	if err != nil {
		return Summary{}, err
	}
	summary.ItemLines = itemLines
	summary.ServiceLines = serviceLines
	summary.ItemsTotal = itemsTotal
	summary.ServicesTotal = servicesTotal
	return summary, nil
}

// ValidateRate reports ErrInvalidFeeRate unless 0 <= rate < 1.
func ValidateRate(rate decimal.Decimal) error {
	if rate.IsNegative() || rate.GreaterThanOrEqual(one) {
		return fmt.Errorf("%w: %s not in [0, 1)", ErrInvalidFeeRate, rate.String())
	}
	return nil
}

// ParseRate reads a fee rate written either as a fraction ("0.15") or a percentage ("15%").
func ParseRate(value string) (decimal.Decimal, error) {
	trimmed := strings.TrimSpace(value)
	percent := strings.HasSuffix(trimmed, "%")
	trimmed = strings.TrimSpace(strings.TrimSuffix(trimmed, "%"))
	if trimmed == "" {
		return decimal.Zero, fmt.Errorf("%w: empty", ErrInvalidFeeRate)
	}
	rate, err := decimal.NewFromString(trimmed)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidFeeRate, value)
	}
	if percent {
		rate = rate.Shift(-2)
	}
	if err := ValidateRate(rate); err != nil {
		return decimal.Zero, err
	}
	return rate, nil
}
