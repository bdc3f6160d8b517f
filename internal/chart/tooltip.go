package chart

import (
	"fmt"

	"savingsdash/internal/aggregate"
	"savingsdash/internal/core"
)

// Tooltips holds the detail lines of every label a chart can show, per kind.
// They are built once from the whole dataset and shipped with initialize.
type Tooltips map[Kind]map[string][]string

// BuildTooltips computes the tooltip lines of every entity and month.
// Points sharing a month have their lines concatenated in load order.
func BuildTooltips(entities []core.Entity, timeline []core.TimelinePoint, currency string) Tooltips {
	total := aggregate.TotalSavings(entities)
	category := make(map[string][]string, len(entities))
	for _, e := range entities {
		category[e.Key] = EntityTooltip(e, total, currency)
	}
	months := make(map[string][]string, len(timeline))
	for _, p := range timeline {
		months[p.Month] = append(months[p.Month], PointTooltip(p, currency)...)
	}
	return Tooltips{KindCategory: category, KindTimeline: months}
}

// EntityTooltip lists the detail shown when hovering an entity: its savings,
// its share of totalSavings, coupons, usage and remaining value.
// totalSavings is the savings of the whole dataset, not of the filtered view.
func EntityTooltip(e core.Entity, totalSavings float64, currency string) []string {
	return []string{
		fmt.Sprintf("%s: %s", e.Key, core.WithCurrency(core.Fixed(e.Savings, 2), currency)),
		fmt.Sprintf("Share of total savings: %s%%", core.Fixed(aggregate.ShareOf(e.Savings, totalSavings), 1)),
		fmt.Sprintf("Coupons: %d", e.CouponsCount),
		fmt.Sprintf("Usage: %s%%", core.Fixed(e.UsagePercentage, 1)),
		fmt.Sprintf("Remaining: %s", core.WithCurrency(core.Fixed(e.RemainingValue, 2), currency)),
	}
}

// LabelTooltip resolves label through lookup. Unknown labels get a single
// line with the raw value.
func LabelTooltip(lookup Lookup, label string, value, totalSavings float64, currency string) []string {
	if lookup != nil {
		if e, ok := lookup.Lookup(label); ok {
			return EntityTooltip(e, totalSavings, currency)
		}
	}
	return []string{fmt.Sprintf("%s: %s", label, core.Fixed(value, 2))}
}

// PointTooltip lists the monthly value and every optional field the point
// carries, followed by the companies of that month.
func PointTooltip(p core.TimelinePoint, currency string) []string {
	money := func(v float64) string { return core.WithCurrency(core.Fixed(v, 2), currency) }

	lines := []string{"Savings this month: " + money(p.Value)}
	if p.OriginalValue != nil {
		lines = append(lines, "Original value: "+money(*p.OriginalValue))
	}
	if p.RemainingValue != nil {
		lines = append(lines, "Remaining value: "+money(*p.RemainingValue))
	}
	if p.CouponsCount != nil {
		lines = append(lines, fmt.Sprintf("Coupons bought: %d", *p.CouponsCount))
	}
	if p.DiscountPercentage != nil {
		lines = append(lines, fmt.Sprintf("Average discount: %s%%", core.Fixed(*p.DiscountPercentage, 1)))
	}
	companies := p.Companies
	if len(companies) == 0 && p.Company != "" {
		companies = []string{p.Company}
	}
	if len(companies) > 0 {
		lines = append(lines, "Companies this month:")
		for _, c := range companies {
			lines = append(lines, "• "+c)
		}
	}
	return lines
}
