package selection

import (
	"errors"
	"math/rand/v2"
	"reflect"
	"testing"
)

// fixedIndex positions keys in slice order.
type fixedIndex []string

func (f fixedIndex) Position(key string) (int, bool) {
	for i, k := range f {
		if k == key {
			return i, true
		}
	}
	return 0, false
}

func (f fixedIndex) KeysInRange(lo, hi int) []string {
	lo, hi = max(lo, 0), min(hi, len(f)-1)
	if lo > hi {
		return nil
	}
	return append([]string(nil), f[lo:hi+1]...)
}

var abcde = fixedIndex{"A", "B", "C", "D", "E"}

func mustReduce(t *testing.T, m Model, ev Event) Model {
	t.Helper()
	next, err := Reduce(m, ev, abcde)
	if err != nil {
		t.Fatalf("Reduce(%T): %v", ev, err)
	}
	return next
}

func TestToggleFromAll(t *testing.T) {
	m := mustReduce(t, Model{}, Toggle{Key: "C", Index: 2})
	if m.State.IsAll() || !reflect.DeepEqual(m.State.Keys(), []string{"C"}) {
		t.Fatalf("expected subset {C}, got %v", m.State.Keys())
	}
	if last, ok := m.State.LastIndex(); !ok || last != 2 {
		t.Fatalf("expected last index 2, got %d,%v", last, ok)
	}
}

func TestToggleAddAndRemove(t *testing.T) {
	m := mustReduce(t, Model{}, Toggle{Key: "A", Index: 0})
	m = mustReduce(t, m, Toggle{Key: "D", Index: 3})
	if !reflect.DeepEqual(m.State.Keys(), []string{"A", "D"}) {
		t.Fatalf("unexpected keys %v", m.State.Keys())
	}
	m = mustReduce(t, m, Toggle{Key: "A", Index: 0})
	if !reflect.DeepEqual(m.State.Keys(), []string{"D"}) {
		t.Fatalf("unexpected keys %v", m.State.Keys())
	}
	if last, _ := m.State.LastIndex(); last != 0 {
		t.Fatalf("removal should still record the clicked index, got %d", last)
	}
}

func TestToggleCollapseToAll(t *testing.T) {
	m := mustReduce(t, Model{}, Toggle{Key: "B", Index: 1})
	m = mustReduce(t, m, Toggle{Key: "B", Index: 1})
	if !m.State.IsAll() || m.State.Len() != 0 {
		t.Fatalf("emptied subset must collapse to All")
	}
	if last, ok := m.State.LastIndex(); !ok || last != 1 {
		t.Fatalf("collapsed All must keep last index 1, got %d (%v)", last, ok)
	}
	if !m.State.Equal(AllState()) {
		t.Fatalf("collapsed All must equal a reset All")
	}
}

func TestRangeAfterCollapse(t *testing.T) {
	m := mustReduce(t, Model{}, Toggle{Key: "B", Index: 1})
	m = mustReduce(t, m, Toggle{Key: "B", Index: 1})
	m = mustReduce(t, m, SetModifier{Active: true})
	m = mustReduce(t, m, RangeSelect{Key: "D", Index: 3})

	if !reflect.DeepEqual(m.State.Keys(), []string{"B", "C", "D"}) {
		t.Fatalf("expected B..D after collapse, got %v", m.State.Keys())
	}
	if last, _ := m.State.LastIndex(); last != 3 {
		t.Fatalf("expected last index 3, got %d", last)
	}
}

func TestSelectAllClearsLastIndex(t *testing.T) {
	m := mustReduce(t, Model{}, Toggle{Key: "B", Index: 1})
	m = mustReduce(t, m, SelectAll{})
	m = mustReduce(t, m, SetModifier{Active: true})
	if _, ok := m.State.LastIndex(); ok {
		t.Fatalf("reset All carries no last index")
	}
	m = mustReduce(t, m, RangeSelect{Key: "D", Index: 3})
	if !reflect.DeepEqual(m.State.Keys(), []string{"D"}) {
		t.Fatalf("range without anchor must toggle, got %v", m.State.Keys())
	}
}

func TestSelectAllIdempotent(t *testing.T) {
	m := mustReduce(t, Model{}, Toggle{Key: "B", Index: 1})
	once := mustReduce(t, m, SelectAll{})
	twice := mustReduce(t, once, SelectAll{})
	if !once.State.IsAll() || !once.State.Equal(twice.State) || once.Modifier != twice.Modifier {
		t.Fatalf("SelectAll must be idempotent")
	}
}

func TestRangeSelect(t *testing.T) {
	m := mustReduce(t, Model{}, Toggle{Key: "B", Index: 1})
	m = mustReduce(t, m, SetModifier{Active: true})
	m = mustReduce(t, m, RangeSelect{Key: "D", Index: 3})

	if !reflect.DeepEqual(m.State.Keys(), []string{"B", "C", "D"}) {
		t.Fatalf("expected B..D, got %v", m.State.Keys())
	}
	if last, _ := m.State.LastIndex(); last != 3 {
		t.Fatalf("expected last index 3, got %d", last)
	}

	// backwards range stays additive
	m = mustReduce(t, m, SetModifier{Active: false})
	m = mustReduce(t, m, Toggle{Key: "C", Index: 2})
	m = mustReduce(t, m, SetModifier{Active: true})
	m = mustReduce(t, m, RangeSelect{Key: "A", Index: 0})
	if !reflect.DeepEqual(m.State.Keys(), []string{"A", "B", "C", "D"}) {
		t.Fatalf("expected A..D, got %v", m.State.Keys())
	}
}

func TestRangeSelectFallsBackToToggle(t *testing.T) {
	cases := []struct {
		name  string
		start Model
		ev    RangeSelect
		want  []string
	}{
		{
			name:  "modifier released",
			start: mustReduce(t, Model{}, Toggle{Key: "A", Index: 0}),
			ev:    RangeSelect{Key: "C", Index: 2},
			want:  []string{"A", "C"},
		},
		{
			name:  "no last index",
			start: Model{Modifier: true},
			ev:    RangeSelect{Key: "C", Index: 2},
			want:  []string{"C"},
		},
		{
			name:  "same index",
			start: Model{State: mustReduce(t, Model{}, Toggle{Key: "C", Index: 2}).State, Modifier: true},
			ev:    RangeSelect{Key: "C", Index: 2},
			want:  nil,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			m := mustReduce(t, tc.start, tc.ev)
			if !reflect.DeepEqual(m.State.Keys(), tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, m.State.Keys())
			}
		})
	}
}

func TestModifierDoesNotChangeSelection(t *testing.T) {
	m := mustReduce(t, Model{}, Toggle{Key: "E", Index: 4})
	next := mustReduce(t, m, SetModifier{Active: true})
	if !next.Modifier || !next.State.Equal(m.State) {
		t.Fatalf("modifier event must only flip the flag")
	}
}

func TestUnknownEntityRejected(t *testing.T) {
	m := mustReduce(t, Model{}, Toggle{Key: "A", Index: 0})
	for _, ev := range []Event{Toggle{Key: "Z"}, RangeSelect{Key: "Z"}} {
		next, err := Reduce(m, ev, abcde)
		if !errors.Is(err, ErrUnknownEntity) {
			t.Fatalf("expected ErrUnknownEntity, got %v", err)
		}
		if !next.State.Equal(m.State) {
			t.Fatalf("rejected event must leave state unchanged")
		}
	}
	if _, err := Reduce(m, nil, abcde); !errors.Is(err, ErrUnknownEvent) {
		t.Fatalf("expected ErrUnknownEvent, got %v", err)
	}
}

func TestIndexIsNormalizedFromKey(t *testing.T) {
	m := mustReduce(t, Model{}, Toggle{Key: "D", Index: 99})
	if last, _ := m.State.LastIndex(); last != 3 {
		t.Fatalf("expected position of D, got %d", last)
	}
}

// TestReachableStateInvariants drives random event sequences and checks the
// state invariants after every step.
func TestReachableStateInvariants(t *testing.T) {
	r := rand.New(rand.NewPCG(7, 11))
	known := map[string]bool{}
	for _, k := range abcde {
		known[k] = true
	}

	for run := 0; run < 200; run++ {
		m := Model{}
		for step := 0; step < 40; step++ {
			i := r.IntN(len(abcde))
			var ev Event
			switch r.IntN(4) {
			case 0:
				ev = SelectAll{}
			case 1:
				ev = Toggle{Key: abcde[i], Index: i}
			case 2:
				ev = RangeSelect{Key: abcde[i], Index: i}
			default:
				ev = SetModifier{Active: r.IntN(2) == 0}
			}

			prev := m
			m = mustReduce(t, m, ev)

			if m.State.IsAll() == (m.State.Len() > 0) {
				t.Fatalf("state is neither All nor a non-empty Subset")
			}
			for _, k := range m.State.Keys() {
				if !known[k] {
					t.Fatalf("subset contains unknown key %q", k)
				}
			}
			if last, ok := m.State.LastIndex(); ok && (last < 0 || last >= len(abcde)) {
				t.Fatalf("invalid last index %d", last)
			}

			if rs, ok := ev.(RangeSelect); ok && prev.Modifier {
				if last, had := prev.State.LastIndex(); had && last != i {
					for _, k := range prev.State.Keys() {
						if !m.State.Contains(k) {
							t.Fatalf("range select removed %q", k)
						}
					}
					for _, k := range abcde.KeysInRange(min(last, i), max(last, i)) {
						if !m.State.Contains(k) {
							t.Fatalf("range select missed %q (key %s)", k, rs.Key)
						}
					}
				}
			}
		}
	}
}

func TestMachineDispatch(t *testing.T) {
	mc := NewMachine(abcde)
	if !mc.State().IsAll() || mc.Modifier() {
		t.Fatalf("machine must start in All with modifier released")
	}
	if _, err := mc.Dispatch(Toggle{Key: "B", Index: 1}); err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	before := mc.State()
	if _, err := mc.Dispatch(Toggle{Key: "nope"}); err == nil {
		t.Fatalf("expected error for unknown key")
	}
	if !mc.State().Equal(before) {
		t.Fatalf("failed dispatch changed the state")
	}
	if _, err := mc.Dispatch(SetModifier{Active: true}); err != nil || !mc.Modifier() {
		t.Fatalf("modifier not recorded")
	}
}

func TestSnapshot(t *testing.T) {
	all := AllState().Snapshot()
	if !all.All || len(all.Keys) != 0 || all.LastIndex != nil {
		t.Fatalf("unexpected All snapshot %+v", all)
	}
	m := mustReduce(t, Model{}, Toggle{Key: "B", Index: 1})
	snap := m.State.Snapshot()
	if snap.All || !reflect.DeepEqual(snap.Keys, []string{"B"}) || snap.LastIndex == nil || *snap.LastIndex != 1 {
		t.Fatalf("unexpected subset snapshot %+v", snap)
	}
	m = mustReduce(t, m, Toggle{Key: "B", Index: 1})
	collapsed := m.State.Snapshot()
	if !collapsed.All || len(collapsed.Keys) != 0 || collapsed.LastIndex == nil || *collapsed.LastIndex != 1 {
		t.Fatalf("unexpected collapsed snapshot %+v", collapsed)
	}
}
