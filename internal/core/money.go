// Package core holds the savings domain types and the number formatting
// shared by every presentation surface.
//
// Formatting never fails and never produces NaN text.
package core

import (
	"math"
	"strconv"
	"strings"
)

// Fixed formats v with exactly decimals fractional digits, rounding halves
// away from zero. Non-finite values format as zero.
//
// Examples:
//
//	Fixed(12.346, 2) -> "12.35"
//	Fixed(0, 1)      -> "0.0"
//	Fixed(NaN, 1)    -> "0.0"
func Fixed(v float64, decimals int) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		v = 0
	}
	if decimals < 0 {
		decimals = 0
	}
	scale := math.Pow10(decimals)
	if scaled := v * scale; !math.IsInf(scaled, 0) {
		v = math.Round(scaled) / scale
	}
	s := strconv.FormatFloat(v, 'f', decimals, 64)
	// "-0.0" reads badly on a card
	if strings.TrimLeft(s, "-0.") == "" {
		s = strings.TrimPrefix(s, "-")
	}
	return s
}

// Whole rounds v half away from zero and formats it without decimals.
func Whole(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "0"
	}
	return strconv.FormatInt(int64(math.Round(v)), 10)
}

// WithCurrency appends the currency symbol after the amount, the way the
// dashboard displays shekel amounts ("12.50 ₪"). An empty symbol returns
// the amount unchanged.
func WithCurrency(amount, symbol string) string {
	if symbol == "" {
		return amount
	}
	return amount + " " + symbol
}

// Ratio returns num/den*100, or 0 when den is not positive.
func Ratio(num, den float64) float64 {
	if den <= 0 {
		return 0
	}
	return num / den * 100
}
