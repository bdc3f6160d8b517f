package core

import (
	"errors"
	"strings"
)

type (
	// Entity is one company with its savings statistics.
	Entity struct {
		Key             string  `json:"company"`
		Savings         float64 `json:"savings"`
		TotalValue      float64 `json:"total_value"`
		CouponsCount    int     `json:"coupons_count"`
		ActiveCoupons   int     `json:"active_coupons"`
		UsagePercentage float64 `json:"usage_percentage"`
		RemainingValue  float64 `json:"remaining_value"`
	}

	// TimelinePoint is one month of the savings time series. Optional
	// fields are nil when the source did not carry them.
	TimelinePoint struct {
		Month              string   `json:"month"`
		Value              float64  `json:"value"`
		OriginalValue      *float64 `json:"original_value,omitempty"`
		RemainingValue     *float64 `json:"remaining_value,omitempty"`
		CouponsCount       *int     `json:"coupons_count,omitempty"`
		DiscountPercentage *float64 `json:"discount_percentage,omitempty"`
		Company            string   `json:"company,omitempty"`
		Companies          []string `json:"companies,omitempty"`
	}
)

// Validation errors of an Entity.
var (
	ErrEmptyKey        = errors.New("empty entity key")
	ErrNegativeMetric  = errors.New("negative metric")
	ErrUsageOutOfRange = errors.New("usage percentage out of range")
)

// Validate reports whether e can be shown. Decoders clamp metrics before
// calling it, so in practice only a blank key fails there.
func (e Entity) Validate() error {
	if strings.TrimSpace(e.Key) == "" {
		return ErrEmptyKey
	}
	if e.Savings < 0 || e.TotalValue < 0 || e.RemainingValue < 0 || e.CouponsCount < 0 || e.ActiveCoupons < 0 {
		return ErrNegativeMetric
	}
	if e.UsagePercentage < 0 || e.UsagePercentage > 100 {
		return ErrUsageOutOfRange
	}
	return nil
}

// Unconditional reports whether the point carries no entity association
// and therefore survives every filter.
func (p TimelinePoint) Unconditional() bool {
	return p.Company == "" && len(p.Companies) == 0
}

// MentionsAny reports whether the point's company or companies intersect keys.
func (p TimelinePoint) MentionsAny(keys func(string) bool) bool {
	if p.Company != "" && keys(p.Company) {
		return true
	}
	for _, c := range p.Companies {
		if keys(c) {
			return true
		}
	}
	return false
}

// Float returns a pointer to v, for building points with optional fields.
func Float(v float64) *float64 { return &v }

// Int returns a pointer to v.
func Int(v int) *int { return &v }
