// Package dashboard ties one dataset, its selection, the chart adapter and
// the presenter into a session driven by selection events.
package dashboard

import (
	"fmt"

	"savingsdash/internal/aggregate"
	"savingsdash/internal/chart"
	"savingsdash/internal/core"
	"savingsdash/internal/dataset"
	"savingsdash/internal/filter"
	"savingsdash/internal/log"
	"savingsdash/internal/present"
	"savingsdash/internal/selection"
)

// View is everything a surface needs to draw the dashboard for one state.
type View struct {
	Selection        selection.Snapshot   `json:"selection"`
	Modifier         bool                 `json:"modifier"`
	Entities         []core.Entity        `json:"entities"`
	Timeline         []core.TimelinePoint `json:"timeline"`
	TimelineFellBack bool                 `json:"timeline_fell_back"`
	Summary          core.Summary         `json:"summary"`
	Cards            []present.Card       `json:"cards"`
	Rows             []present.Row        `json:"rows"`
	DatasetSavings   float64              `json:"dataset_savings"`
}

// Filter is one clickable chip in canonical order.
type Filter struct {
	Key      string `json:"key"`
	Index    int    `json:"index"`
	Selected bool   `json:"selected"`
}

// Config carries what a session needs besides its dataset.
type Config struct {
	Currency string
	Viewport chart.Viewport
	Category chart.Surface
	Timeline chart.Surface
	Logger   *log.Logger
}

// Session is owned by a single dashboard view. Events run to completion one
// at a time; callers sharing a session across goroutines must serialize.
type Session struct {
	store     *dataset.Store
	machine   *selection.Machine
	adapter   *chart.Adapter
	presenter present.Presenter
	logger    *log.Logger
	started   bool
	total     float64
}

// New creates a session in the All state. Nothing is rendered until Start.
func New(store *dataset.Store, cfg Config) *Session {
	if store == nil {
		store = dataset.Empty()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.Discard()
	}
	adapter := chart.NewAdapter(cfg.Category, cfg.Timeline, store, cfg.Viewport).
		WithTooltips(chart.BuildTooltips(store.Entities(), store.Timeline(), cfg.Currency))
	return &Session{
		store:     store,
		machine:   selection.NewMachine(store),
		adapter:   adapter,
		presenter: present.New(cfg.Currency),
		logger:    logger.WithComponent(log.ComponentDashboard),
		total:     aggregate.TotalSavings(store.Entities()),
	}
}

// Start performs the first render, initializing the chart surfaces.
// Calling it again re-renders the current state.
func (s *Session) Start() View {
	s.started = true
	return s.recompute()
}

// Dispatch applies ev and recomputes the view. A rejected event leaves the
// state as it was; the returned view is still renderable.
func (s *Session) Dispatch(ev selection.Event) (View, error) {
	if _, err := s.machine.Dispatch(ev); err != nil {
		s.logger.Debug("Selection event rejected",
			log.FieldOperation, log.OpDispatch,
			log.FieldEvent, eventName(ev),
			log.FieldError, err.Error())
		return s.view(), fmt.Errorf("dispatch %s: %w", eventName(ev), err)
	}
	if _, ok := ev.(selection.SetModifier); ok && s.started {
		// the modifier changes no data, nothing to redraw
		return s.view(), nil
	}
	s.started = true
	return s.recompute(), nil
}

// Resize forwards a viewport change to the charts. It never touches the
// selection or the filtered data.
func (s *Session) Resize(width int) bool {
	rebuilt, err := s.adapter.Resize(width)
	if err != nil {
		s.logger.Warn("Chart rebuild failed",
			log.FieldOperation, log.OpResize,
			log.FieldWidth, width,
			log.FieldError, err.Error())
	}
	return rebuilt
}

// Redraw re-initializes the charts with what they last showed, or performs
// the first render when the session has not started.
func (s *Session) Redraw() View {
	if !s.started {
		return s.Start()
	}
	if _, err := s.adapter.Rebuild(); err != nil {
		s.logger.Warn("Chart rebuild failed",
			log.FieldOperation, log.OpRender,
			log.FieldError, err.Error())
	}
	return s.view()
}

// View computes the current view without touching the charts.
func (s *Session) View() View { return s.view() }

// Filters lists every entity chip with its position and selection mark.
func (s *Session) Filters() []Filter {
	state := s.machine.State()
	keys := s.store.Keys()
	out := make([]Filter, len(keys))
	for i, k := range keys {
		out[i] = Filter{Key: k, Index: i, Selected: state.Contains(k)}
	}
	return out
}

// State returns the current selection.
func (s *Session) State() selection.State { return s.machine.State() }

// Store returns the session dataset.
func (s *Session) Store() *dataset.Store { return s.store }

// Narrow reports whether the charts use the narrow layout.
func (s *Session) Narrow() bool { return s.adapter.Narrow() }

// Tooltip returns the detail lines for a category label.
func (s *Session) Tooltip(key string, value float64) []string {
	return chart.LabelTooltip(s.store, key, value, s.total, s.presenter.Currency)
}

func (s *Session) recompute() View {
	v := s.view()
	if err := s.adapter.Render(v.Entities, v.Timeline); err != nil {
		s.logger.Warn("Chart render failed",
			log.FieldOperation, log.OpRender,
			log.FieldError, err.Error())
	}
	return v
}

func (s *Session) view() View {
	state := s.machine.State()
	entities := filter.Entities(s.store.Entities(), state)
	timeline, fellBack := filter.Timeline(s.store.Timeline(), state)
	if fellBack {
		s.logger.Debug("Timeline filter empty, showing full timeline",
			log.FieldOperation, log.OpFilter,
			log.FieldSelected, state.Len())
	}
	summary := aggregate.Summarize(entities)
	return View{
		Selection:        state.Snapshot(),
		Modifier:         s.machine.Modifier(),
		Entities:         entities,
		Timeline:         timeline,
		TimelineFellBack: fellBack,
		Summary:          summary,
		Cards:            s.presenter.Cards(summary),
		Rows:             s.presenter.Rows(entities),
		DatasetSavings:   s.total,
	}
}

func eventName(ev selection.Event) string {
	if ev == nil {
		return "nil"
	}
	return ev.Name()
}
