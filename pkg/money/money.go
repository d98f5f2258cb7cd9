// Package money holds the rounding rules shared by order totals and rating
// averages. All arithmetic goes through decimal to avoid binary float drift.
package money

import "github.com/shopspring/decimal"

// Places is the number of decimal places every stored amount is rounded to.
const Places = 2

// Round2 rounds v half away from zero to two decimal places.
func Round2(v float64) float64 {
	return decimal.NewFromFloat(v).Round(Places).InexactFloat64()
}

// LineTotal returns price × quantity without rounding.
func LineTotal(price float64, quantity int) decimal.Decimal {
	return decimal.NewFromFloat(price).Mul(decimal.NewFromInt(int64(quantity)))
}

// Mean returns sum/count rounded to two places. A zero count yields zero.
func Mean(sum int64, count int) float64 {
	if count == 0 {
		return 0
	}
	return decimal.NewFromInt(sum).
		Div(decimal.NewFromInt(int64(count))).
		Round(Places).
		InexactFloat64()
}

// Total sums the given amounts and rounds the result to two places.
func Total(amounts ...decimal.Decimal) float64 {
	return decimal.Sum(decimal.Zero, amounts...).Round(Places).InexactFloat64()
}
