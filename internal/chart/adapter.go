package chart

import (
	"errors"
	"fmt"
	"slices"

	"savingsdash/internal/core"
)

// Adapter owns one surface per chart kind. The first Render initializes each
// surface; later renders update it in place.
type Adapter struct {
	surfaces    map[Kind]Surface
	initialized map[Kind]bool
	last        map[Kind]Series
	lookup      Lookup
	tooltips    Tooltips
	viewport    Viewport
}

// NewAdapter binds the category and timeline surfaces. lookup is handed to
// every surface at initialization and never rebuilt.
func NewAdapter(category, timeline Surface, lookup Lookup, viewport Viewport) *Adapter {
	return &Adapter{
		surfaces: map[Kind]Surface{
			KindCategory: category,
			KindTimeline: timeline,
		},
		initialized: make(map[Kind]bool, 2),
		last:        make(map[Kind]Series, 2),
		lookup:      lookup,
		viewport:    viewport,
	}
}

// Render pushes the series built from the filtered data to both surfaces.
func (a *Adapter) Render(entities []core.Entity, timeline []core.TimelinePoint) error {
	return errors.Join(
		a.render(KindCategory, CategorySeries(entities)),
		a.render(KindTimeline, TimeSeries(timeline)),
	)
}

func (a *Adapter) render(kind Kind, s Series) error {
	surface := a.surfaces[kind]
	if surface == nil {
		return nil
	}
	if !a.initialized[kind] {
		if err := surface.Initialize(kind, s.Labels, s.Values, a.Options(kind)); err != nil {
			return fmt.Errorf("initialize %s chart: %w", kind, err)
		}
		a.initialized[kind] = true
	} else if err := surface.Update(s.Labels, s.Values); err != nil {
		return fmt.Errorf("update %s chart: %w", kind, err)
	}
	a.last[kind] = s
	return nil
}

// Resize records the new width. When the layout switches between narrow and
// wide, every initialized chart is rebuilt with its last series and rebuilt
// is true. Selection and data are untouched.
func (a *Adapter) Resize(width int) (rebuilt bool, err error) {
	wasNarrow := a.viewport.Narrow()
	a.viewport.Width = width
	if a.viewport.Narrow() == wasNarrow {
		return false, nil
	}
	return a.Rebuild()
}

// Rebuild re-initializes every initialized chart with its last series and
// the current layout options, for surfaces that lost their charts.
func (a *Adapter) Rebuild() (rebuilt bool, err error) {
	var errs []error
	for _, kind := range Kinds {
		if !a.initialized[kind] {
			continue
		}
		s := a.Last(kind)
		if err := a.surfaces[kind].Initialize(kind, s.Labels, s.Values, a.Options(kind)); err != nil {
			errs = append(errs, fmt.Errorf("rebuild %s chart: %w", kind, err))
			continue
		}
		rebuilt = true
	}
	return rebuilt, errors.Join(errs...)
}

// WithTooltips attaches precomputed tooltip lines to every later
// initialization.
func (a *Adapter) WithTooltips(t Tooltips) *Adapter {
	a.tooltips = t
	return a
}

// Options returns the current layout options of kind.
func (a *Adapter) Options(kind Kind) Options {
	opts := OptionsFor(kind, a.viewport.Narrow(), a.lookup)
	opts.Tooltips = a.tooltips[kind]
	return opts
}

// Narrow reports the current layout class.
func (a *Adapter) Narrow() bool { return a.viewport.Narrow() }

// Last returns a copy of the series most recently sent for kind.
func (a *Adapter) Last(kind Kind) Series {
	s := a.last[kind]
	return Series{Labels: slices.Clone(s.Labels), Values: slices.Clone(s.Values)}
}
