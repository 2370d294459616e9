// Package format renders and parses the monetary and percentage values shown
// on valuation screens.
package format

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrEmptyAmount is returned by ParseAmount for blank input.
var ErrEmptyAmount = errors.New("amount is empty")

// Currency returns a dollar amount with thousands separators (e.g., "-$1,234.56").
func Currency(amount float64) string {
	formatted := groupThousands(math.Abs(amount))
	if amount < 0 {
		return "-$" + formatted
	}
	return "$" + formatted
}

// Percent renders a fraction as a percentage with one decimal, e.g. 0.125 -> "12.5%".
func Percent(fraction float64) string {
	return strconv.FormatFloat(fraction*100, 'f', 1, 64) + "%"
}

// ParseAmount accepts user-typed amounts such as "100000", "100,000.50" or
// "$100,000" and returns the numeric value.
func ParseAmount(raw string) (float64, error) {
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.TrimPrefix(cleaned, "$")
	cleaned = strings.ReplaceAll(cleaned, ",", "")
	cleaned = strings.TrimSpace(cleaned)
	if cleaned == "" {
		return 0, ErrEmptyAmount
	}

	value, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q: %w", raw, err)
	}
	return value, nil
}

func groupThousands(value float64) string {
	whole, frac, _ := strings.Cut(fmt.Sprintf("%.2f", value), ".")
	if len(whole) <= 3 {
		return whole + "." + frac
	}

	var builder strings.Builder
	for i, digit := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			builder.WriteByte(',')
		}
		builder.WriteRune(digit)
	}
	return builder.String() + "." + frac
}
