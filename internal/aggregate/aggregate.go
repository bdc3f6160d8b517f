// Package aggregate computes summary figures over a filtered entity list.
// Every division by zero resolves to 0.
package aggregate

import (
	"math"

	"savingsdash/internal/core"
)

// Summarize totals entities. The average usage is weighted by coupon count.
func Summarize(entities []core.Entity) core.Summary {
	var (
		s             core.Summary
		weightedUsage float64
	)
	for _, e := range entities {
		s.TotalSavings += e.Savings
		s.TotalPossibleValue += e.TotalValue
		s.TotalCoupons += e.CouponsCount
		s.ActiveCoupons += e.ActiveCoupons
		weightedUsage += e.UsagePercentage * float64(e.CouponsCount)
	}
	if s.TotalCoupons > 0 {
		s.AvgUsagePercentage = weightedUsage / float64(s.TotalCoupons)
	}
	s.SavingsPercentage = core.Ratio(s.TotalSavings, s.TotalPossibleValue)
	return s
}

// PercentOfEntityValue is savings over total value as a one decimal string,
// "0.0" when the entity has no value.
func PercentOfEntityValue(e core.Entity) string {
	if e.TotalValue <= 0 {
		return "0.0"
	}
	return core.Fixed(e.Savings/e.TotalValue*100, 1)
}

// ShareOf returns part as a percentage of whole, 0 when whole is not positive.
func ShareOf(part, whole float64) float64 {
	return core.Ratio(part, whole)
}

// TotalSavings sums savings without building a full summary.
func TotalSavings(entities []core.Entity) float64 {
	var total float64
	for _, e := range entities {
		total += e.Savings
	}
	return total
}

// Round2 rounds to two decimals for display and comparisons in JSON.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
