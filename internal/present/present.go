// Package present formats aggregates for the summary cards and the table.
package present

import (
	"strconv"

	"savingsdash/internal/aggregate"
	"savingsdash/internal/core"
)

// Card is one summary tile.
type Card struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Value    string `json:"value"`
	Subtitle string `json:"subtitle,omitempty"`
}

// Row is one table line.
type Row struct {
	Key     string `json:"key"`
	Savings string `json:"savings"`
	Percent string `json:"percent"`
}

// Presenter holds display settings only; it has no selection state.
type Presenter struct {
	Currency string
}

// New returns a presenter appending currency to amounts.
func New(currency string) Presenter {
	return Presenter{Currency: currency}
}

// Cards renders the four summary figures.
func (p Presenter) Cards(s core.Summary) []Card {
	return []Card{
		{
			ID:       "total-savings",
			Title:    "Total savings",
			Value:    core.WithCurrency(core.Whole(s.TotalSavings), p.Currency),
			Subtitle: "of " + core.WithCurrency(core.Whole(s.TotalPossibleValue), p.Currency) + " possible",
		},
		{
			ID:    "savings-percentage",
			Title: "Savings percentage",
			Value: core.Whole(s.SavingsPercentage) + "%",
		},
		{
			ID:       "total-coupons",
			Title:    "Coupons",
			Value:    strconv.Itoa(s.TotalCoupons),
			Subtitle: strconv.Itoa(s.ActiveCoupons) + " active",
		},
		{
			ID:    "average-usage",
			Title: "Average usage",
			Value: core.Whole(s.AvgUsagePercentage) + "%",
		},
	}
}

// Rows renders one row per entity in the given order.
func (p Presenter) Rows(entities []core.Entity) []Row {
	rows := make([]Row, len(entities))
	for i, e := range entities {
		rows[i] = Row{
			Key:     e.Key,
			Savings: core.WithCurrency(core.Fixed(e.Savings, 2), p.Currency),
			Percent: aggregate.PercentOfEntityValue(e) + "%",
		}
	}
	return rows
}
