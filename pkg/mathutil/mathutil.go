// Package mathutil provides small numeric helpers shared by the projection and
// wizard packages.
package mathutil

import (
	"math"

	"github.com/iwvelando/company-valuation/pkg/constants"
)

// Round rounds a value to two decimals, i.e. to represent real currency.
func Round(val float64) float64 {
	return math.Round(val*constants.DecimalPrecision) / constants.DecimalPrecision
}

// WithinTolerance checks if two values are within a specified tolerance
func WithinTolerance(val1, val2, tolerance float64) bool {
	return math.Abs(val1-val2) <= tolerance
}

// Ratio returns part/total, or zero when total is not positive.
func Ratio(part, total int) float64 {
	if total <= 0 {
		return 0
	}
	return float64(part) / float64(total)
}

// Grow applies a fractional growth rate to a value, e.g. Grow(100, 0.25) == 125.
func Grow(value, rate float64) float64 {
	return value * (1 + rate)
}

// Discount returns the present value of an amount received after the given
// number of periods at the given per-period rate.
func Discount(amount, rate float64, periods int) float64 {
	return amount / math.Pow(1+rate, float64(periods))
}

// IsFinite reports whether val is neither NaN nor infinite.
func IsFinite(val float64) bool {
	return !math.IsNaN(val) && !math.IsInf(val, 0)
}
