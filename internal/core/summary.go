package core

// Summary holds the aggregate figures of a filtered entity list.
type Summary struct {
	TotalSavings       float64
	TotalPossibleValue float64
	TotalCoupons       int
	ActiveCoupons      int
	AvgUsagePercentage float64
	SavingsPercentage  float64
}
