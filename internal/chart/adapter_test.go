package chart

import (
	"errors"
	"reflect"
	"testing"

	"savingsdash/internal/core"
	"savingsdash/internal/dataset"
)

// fakeSurface counts chart instances to prove updates never recreate.
type fakeSurface struct {
	instances int
	updates   int
	labels    []string
	values    []float64
	opts      Options
	failNext  error
}

func (f *fakeSurface) Initialize(_ Kind, labels []string, values []float64, opts Options) error {
	if err := f.failNext; err != nil {
		f.failNext = nil
		return err
	}
	f.instances++
	f.labels, f.values, f.opts = labels, values, opts
	return nil
}

func (f *fakeSurface) Update(labels []string, values []float64) error {
	if err := f.failNext; err != nil {
		f.failNext = nil
		return err
	}
	f.updates++
	f.labels, f.values = labels, values
	return nil
}

func testStore() *dataset.Store {
	return dataset.New([]core.Entity{
		{Key: "A", Savings: 30}, {Key: "B", Savings: 20}, {Key: "C", Savings: 10},
	}, []core.TimelinePoint{
		{Month: "Jan", Value: 5, Company: "A"},
		{Month: "Feb", Value: 7},
	})
}

func TestAdapterInitializesOnceThenUpdates(t *testing.T) {
	store := testStore()
	cat, line := &fakeSurface{}, &fakeSurface{}
	a := NewAdapter(cat, line, store, Viewport{Width: 1024})

	if err := a.Render(store.Entities(), store.Timeline()); err != nil {
		t.Fatalf("first render: %v", err)
	}
	if cat.instances != 1 || line.instances != 1 || cat.updates != 0 {
		t.Fatalf("first render must initialize each surface once")
	}
	if !reflect.DeepEqual(cat.labels, []string{"A", "B", "C"}) || !reflect.DeepEqual(cat.values, []float64{30, 20, 10}) {
		t.Fatalf("unexpected category series %v %v", cat.labels, cat.values)
	}
	if !reflect.DeepEqual(line.labels, []string{"Jan", "Feb"}) {
		t.Fatalf("unexpected timeline labels %v", line.labels)
	}
	if cat.opts.Lookup == nil {
		t.Fatalf("surface did not receive the metadata lookup")
	}

	for i := 0; i < 3; i++ {
		if err := a.Render(store.Entities()[1:], store.Timeline()[1:]); err != nil {
			t.Fatalf("render %d: %v", i, err)
		}
	}
	if cat.instances != 1 || line.instances != 1 {
		t.Fatalf("updates recreated the chart: %d/%d instances", cat.instances, line.instances)
	}
	if cat.updates != 3 || line.updates != 3 {
		t.Fatalf("expected 3 updates, got %d/%d", cat.updates, line.updates)
	}
	if !reflect.DeepEqual(cat.labels, []string{"B", "C"}) {
		t.Fatalf("update did not replace labels: %v", cat.labels)
	}
}

func TestAdapterLookupComesFromStore(t *testing.T) {
	store := testStore()
	cat := &fakeSurface{}
	a := NewAdapter(cat, nil, store, Viewport{})
	if err := a.Render(store.Entities()[:1], nil); err != nil {
		t.Fatalf("render: %v", err)
	}
	// the lookup still resolves entities that are filtered out
	if e, ok := cat.opts.Lookup.Lookup("C"); !ok || e.Savings != 10 {
		t.Fatalf("lookup should see the whole dataset, got %+v %v", e, ok)
	}
}

func TestAdapterResizeRebuildsOnlyAcrossBreakpoint(t *testing.T) {
	store := testStore()
	cat, line := &fakeSurface{}, &fakeSurface{}
	a := NewAdapter(cat, line, store, Viewport{Width: 1200, Breakpoint: 768})
	if err := a.Render(store.Entities(), store.Timeline()); err != nil {
		t.Fatalf("render: %v", err)
	}

	if rebuilt, err := a.Resize(900); err != nil || rebuilt {
		t.Fatalf("staying wide must not rebuild (rebuilt=%v err=%v)", rebuilt, err)
	}
	rebuilt, err := a.Resize(500)
	if err != nil || !rebuilt {
		t.Fatalf("crossing the breakpoint must rebuild (rebuilt=%v err=%v)", rebuilt, err)
	}
	if cat.instances != 2 || line.instances != 2 {
		t.Fatalf("expected a rebuild of both charts")
	}
	if cat.opts.LegendPosition != LegendBottom || cat.opts.FontSize != 10 || line.opts.TickRotation != 45 {
		t.Fatalf("narrow options not applied: %+v / %+v", cat.opts, line.opts)
	}
	if !reflect.DeepEqual(cat.labels, []string{"A", "B", "C"}) {
		t.Fatalf("rebuild must reuse the last series, got %v", cat.labels)
	}
}

func TestAdapterResizeBeforeRender(t *testing.T) {
	cat := &fakeSurface{}
	a := NewAdapter(cat, nil, nil, Viewport{Width: 1200})
	if rebuilt, err := a.Resize(300); err != nil || rebuilt {
		t.Fatalf("nothing to rebuild before first render")
	}
	if !a.Narrow() {
		t.Fatalf("width should still be recorded")
	}
}

func TestAdapterSurfaceErrors(t *testing.T) {
	store := testStore()
	boom := errors.New("boom")
	cat := &fakeSurface{failNext: boom}
	a := NewAdapter(cat, &fakeSurface{}, store, Viewport{})

	if err := a.Render(store.Entities(), store.Timeline()); !errors.Is(err, boom) {
		t.Fatalf("expected surface error, got %v", err)
	}
	// a failed initialize is retried on the next render
	if err := a.Render(store.Entities(), store.Timeline()); err != nil {
		t.Fatalf("second render: %v", err)
	}
	if cat.instances != 1 || cat.updates != 0 {
		t.Fatalf("expected initialize on retry, got %d instances %d updates", cat.instances, cat.updates)
	}
}

func TestColorsArePositional(t *testing.T) {
	colors := Colors(Palette, 17)
	if colors[0] != Palette[0] || colors[15] != Palette[0] || colors[16] != Palette[1] {
		t.Fatalf("palette must cycle by position: %v", colors)
	}
	if Colors(nil, 3) != nil || Colors(Palette, 0) != nil {
		t.Fatalf("expected nil colors")
	}
}

func TestViewportNarrow(t *testing.T) {
	cases := []struct {
		v    Viewport
		want bool
	}{
		{Viewport{Width: 0}, false},
		{Viewport{Width: 767}, true},
		{Viewport{Width: 768}, false},
		{Viewport{Width: 900, Breakpoint: 1000}, true},
	}
	for _, tc := range cases {
		if got := tc.v.Narrow(); got != tc.want {
			t.Fatalf("%+v.Narrow() = %v, want %v", tc.v, got, tc.want)
		}
	}
}

func TestAdapterShipsTooltipsOnInitializeOnly(t *testing.T) {
	store := testStore()
	r := NewRecorder(KindCategory)
	a := NewAdapter(r, nil, store, Viewport{}).
		WithTooltips(BuildTooltips(store.Entities(), store.Timeline(), "₪"))

	if err := a.Render(store.Entities()[:1], nil); err != nil {
		t.Fatalf("render: %v", err)
	}
	if err := a.Render(store.Entities(), nil); err != nil {
		t.Fatalf("render: %v", err)
	}
	cmds := r.Drain()
	if len(cmds) != 2 || cmds[0].Options == nil || cmds[1].Options != nil {
		t.Fatalf("expected options on initialize only, got %+v", cmds)
	}
	// filtered out entities still have their detail
	if got := cmds[0].Options.Tooltips["C"]; len(got) == 0 || got[0] != "C: 10.00 ₪" {
		t.Fatalf("unexpected tooltip for C: %q", got)
	}
}

func TestAdapterRebuildUsesLastSeries(t *testing.T) {
	store := testStore()
	cat := &fakeSurface{}
	a := NewAdapter(cat, nil, store, Viewport{})
	if err := a.Render(store.Entities()[1:], nil); err != nil {
		t.Fatalf("render: %v", err)
	}
	last := a.Last(KindCategory)
	last.Labels[0] = "mutated"

	if rebuilt, err := a.Rebuild(); err != nil || !rebuilt {
		t.Fatalf("rebuild = %v, %v", rebuilt, err)
	}
	if cat.instances != 2 || !reflect.DeepEqual(cat.labels, []string{"B", "C"}) {
		t.Fatalf("rebuild should reuse the last series, got %v (%d instances)", cat.labels, cat.instances)
	}
}
