// Package chart turns filtered data into chart series and drives an external
// charting surface through a create-once, update-in-place contract.
package chart

import (
	"savingsdash/internal/core"
)

// Kind identifies one of the dashboard charts.
type Kind string

const (
	// KindCategory is the savings per company pie.
	KindCategory Kind = "category"
	// KindTimeline is the monthly savings line.
	KindTimeline Kind = "timeline"
)

// Kinds lists the charts in render order.
var Kinds = []Kind{KindCategory, KindTimeline}

// Surface is an external chart instance. Initialize builds the chart,
// replacing any previous one. Update must replace labels and values of the
// existing chart without recreating it.
type Surface interface {
	Initialize(kind Kind, labels []string, values []float64, opts Options) error
	Update(labels []string, values []float64) error
}

// Lookup gives surfaces access to full entity records for point detail.
type Lookup interface {
	Lookup(key string) (core.Entity, bool)
}

// Series is a chart-ready list of labelled values.
type Series struct {
	Labels []string  `json:"labels"`
	Values []float64 `json:"values"`
}

// Len is the number of points.
func (s Series) Len() int { return len(s.Labels) }

// CategorySeries pairs each entity key with its savings, in the given order.
func CategorySeries(entities []core.Entity) Series {
	s := Series{
		Labels: make([]string, len(entities)),
		Values: make([]float64, len(entities)),
	}
	for i, e := range entities {
		s.Labels[i] = e.Key
		s.Values[i] = e.Savings
	}
	return s
}

// TimeSeries pairs each month label with its value, in the given order.
func TimeSeries(points []core.TimelinePoint) Series {
	s := Series{
		Labels: make([]string, len(points)),
		Values: make([]float64, len(points)),
	}
	for i, p := range points {
		s.Labels[i] = p.Month
		s.Values[i] = p.Value
	}
	return s
}
