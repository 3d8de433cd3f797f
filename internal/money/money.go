// Package money rounds and formats currency amounts for output. Amounts are
// computed as float64 and only rounded at the edges.
package money

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Round returns value rounded half away from zero to whole cents.
func Round(value float64) float64 {
	rounded, _ := decimal.NewFromFloat(value).Round(2).Float64()
	return rounded
}

// Format renders value with two decimals and a dot separator.
func Format(value float64) string {
	return decimal.NewFromFloat(value).StringFixed(2)
}

// FormatEUR renders value the way the documents print it, e.g. "1.234,50 EUR".
func FormatEUR(value float64) string {
	fixed := decimal.NewFromFloat(value).StringFixed(2)
	negative := strings.HasPrefix(fixed, "-")
	fixed = strings.TrimPrefix(fixed, "-")

	whole, cents, _ := strings.Cut(fixed, ".")
	var grouped strings.Builder
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			grouped.WriteByte('.')
		}
		grouped.WriteRune(r)
	}

	result := grouped.String() + "," + cents + " EUR"
	if negative {
		return "-" + result
	}
	return result
}

// Equal compares two amounts at cent precision.
func Equal(a, b float64) bool {
	return decimal.NewFromFloat(a).Round(2).Equal(decimal.NewFromFloat(b).Round(2))
}
