package pricing_test

import (
	"math"
	"math/rand"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/quotepay/internal/money"
	"github.com/noah-isme/quotepay/internal/pricing"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestLineTotalRoundsFinalProductOnly(t *testing.T) {
	cases := []struct {
		qty, price string
		want       money.Cents
	}{
		{"1", "150.00", 15000},
		{"3", "0.333", 100},    // 0.999 -> 1.00
		{"1.5", "0.01", 2},     // 0.015 -> 0.02
		{"2.5", "10.01", 2503}, // 25.025 -> 25.03
		{"0", "99.99", 0},
		{"0.333", "0.03", 1}, // 0.00999 -> 0.01
	}
	for _, tc := range cases {
		got, err := pricing.LineTotal(dec(tc.qty), dec(tc.price))
		require.NoError(t, err)
		require.Equal(t, tc.want, got, "%s x %s", tc.qty, tc.price)
	}
}

func TestLineTotalMatchesIntegerArithmetic(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 2000; i++ {
		milliQty := rng.Int63n(1_000_000)
		cents := rng.Int63n(10_000_000)
		qty := decimal.New(milliQty, -3)
		price := decimal.New(cents, -2)
		got, err := pricing.LineTotal(qty, price)
		require.NoError(t, err)
		want := (milliQty*cents + 500) / 1000
		require.Equal(t, money.Cents(want), got, "%s x %s", qty, price)
	}
}

func TestLineTotalRejectsInvalidInput(t *testing.T) {
	_, err := pricing.LineTotal(dec("-1"), dec("10"))
	require.ErrorIs(t, err, pricing.ErrInvalidAmount)
	_, err = pricing.LineTotal(dec("1"), dec("-0.01"))
	require.ErrorIs(t, err, pricing.ErrInvalidAmount)

	for _, f := range []float64{math.NaN(), math.Inf(1)} {
		_, err = pricing.LineTotalFloat(f, 1)
		require.ErrorIs(t, err, pricing.ErrInvalidAmount)
		_, err = pricing.LineTotalFloat(1, f)
		require.ErrorIs(t, err, pricing.ErrInvalidAmount)
	}
	got, err := pricing.LineTotalFloat(3, 19.9)
	require.NoError(t, err)
	require.Equal(t, money.Cents(5970), got)
}

func TestSubtotal(t *testing.T) {
	items := []pricing.Item{
		{Description: "Painel", Quantity: dec("2"), UnitPrice: dec("1200.00")},
		{Description: "Cabo", Quantity: dec("15.5"), UnitPrice: dec("3.99")},
	}
	got, err := pricing.Subtotal(items)
	require.NoError(t, err)
	require.Equal(t, money.Cents(240000+6185), got) // 61.845 -> 61.85

	empty, err := pricing.Subtotal(nil)
	require.NoError(t, err)
	require.Zero(t, empty)

	items = append(items, pricing.Item{Quantity: dec("-1"), UnitPrice: dec("1")})
	_, err = pricing.Subtotal(items)
	require.ErrorIs(t, err, pricing.ErrInvalidAmount)
	require.Contains(t, err.Error(), "item 2")
}

func TestTotalsFeeGrossUp(t *testing.T) {
	summary, err := pricing.Totals(500000, pricing.Fee{Applied: true, Rate: dec("0.15")})
	require.NoError(t, err)
	require.True(t, summary.FeeApplied)
	require.Equal(t, money.Cents(588235), summary.GrandTotal)
	require.Equal(t, money.Cents(88235), summary.FeeAmount)
	require.Equal(t, "5882.35", summary.GrandTotal.String())
	require.Equal(t, "882.35", summary.FeeAmount.String())
}

func TestTotalsWithoutFeeIgnoresRate(t *testing.T) {
	for _, rate := range []string{"0", "0.15", "1", "7", "-3"} {
		summary, err := pricing.Totals(123456, pricing.Fee{Applied: false, Rate: dec(rate)})
		require.NoError(t, err)
		require.False(t, summary.FeeApplied)
		require.Equal(t, money.Cents(123456), summary.GrandTotal)
		require.Zero(t, summary.FeeAmount)
		require.Equal(t, "0.00", summary.FeeAmount.String())
	}
}

func TestTotalsRejectsRateOutsideRange(t *testing.T) {
	for _, rate := range []string{"1", "1.5", "-0.01"} {
		_, err := pricing.Totals(1000, pricing.Fee{Applied: true, Rate: dec(rate)})
		require.ErrorIs(t, err, pricing.ErrInvalidFeeRate, rate)
	}
	_, err := pricing.Totals(-1, pricing.Fee{})
	require.ErrorIs(t, err, pricing.ErrInvalidAmount)
}

func TestTotalsGrossUpProperties(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 2000; i++ {
		subtotal := rng.Int63n(100_000_000)
		pct := rng.Int63n(100) // 0..99 percent
		rate := decimal.New(pct, -2)
		summary, err := pricing.Totals(money.Cents(subtotal), pricing.Fee{Applied: true, Rate: rate})
		require.NoError(t, err)

		denom := 100 - pct
		want := (2*subtotal*100 + denom) / (2 * denom)
		require.Equal(t, money.Cents(want), summary.GrandTotal, "subtotal=%d pct=%d", subtotal, pct)
		require.Equal(t, summary.GrandTotal-summary.Subtotal, summary.FeeAmount)
		require.GreaterOrEqual(t, int64(summary.GrandTotal), subtotal)
	}
}

func TestCompute(t *testing.T) {
	items := []pricing.Item{{Quantity: dec("10"), UnitPrice: dec("450.00")}}
	services := []pricing.Item{{Description: "Instalacao", Quantity: dec("1"), UnitPrice: dec("500.00")}}
	summary, err := pricing.Compute(items, services, pricing.Fee{Applied: true, Rate: dec("0.15")})
	require.NoError(t, err)
	require.Equal(t, []money.Cents{450000}, summary.ItemLines)
	require.Equal(t, []money.Cents{50000}, summary.ServiceLines)
	require.Equal(t, money.Cents(450000), summary.ItemsTotal)
	require.Equal(t, money.Cents(50000), summary.ServicesTotal)
	require.Equal(t, money.Cents(500000), summary.Subtotal)
	require.Equal(t, money.Cents(588235), summary.GrandTotal)

	_, err = pricing.Compute(nil, []pricing.Item{{Quantity: dec("1"), UnitPrice: dec("-2")}}, pricing.Fee{})
	require.ErrorIs(t, err, pricing.ErrInvalidAmount)
	require.Contains(t, err.Error(), "services")
}

func TestParseRate(t *testing.T) {
	rate, err := pricing.ParseRate("0.15")
	require.NoError(t, err)
	require.True(t, rate.Equal(dec("0.15")))

	rate, err = pricing.ParseRate(" 15% ")
	require.NoError(t, err)
	require.True(t, rate.Equal(dec("0.15")))

	for _, bad := range []string{"", "%", "abc", "1", "100%", "-0.1"} {
		_, err := pricing.ParseRate(bad)
		require.ErrorIs(t, err, pricing.ErrInvalidFeeRate, bad)
	}
}
