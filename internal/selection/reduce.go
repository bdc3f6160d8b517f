package selection

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownEntity rejects events naming a key that was never loaded.
	ErrUnknownEntity = errors.New("unknown entity")
	// ErrUnknownEvent rejects a nil or foreign event value.
	ErrUnknownEvent = errors.New("unknown selection event")
)

// Index resolves entity keys to their fixed positions.
type Index interface {
	Position(key string) (int, bool)
	KeysInRange(lo, hi int) []string
}

// Model is the reducer input: the selection plus the modifier flag.
type Model struct {
	State    State
	Modifier bool
}

// Reduce applies ev to m. On error m is returned unchanged.
//
// The key of a Toggle or RangeSelect is authoritative; the recorded last
// index is the key's position in idx, whatever Index the event carried.
func Reduce(m Model, ev Event, idx Index) (Model, error) {
	switch e := ev.(type) {
	case SelectAll:
		m.State = AllState()
		return m, nil

	case SetModifier:
		m.Modifier = e.Active
		return m, nil

	case Toggle:
		pos, err := resolve(idx, e.Key)
		if err != nil {
			return m, err
		}
		m.State = toggle(m.State, e.Key, pos)
		return m, nil

	case RangeSelect:
		pos, err := resolve(idx, e.Key)
		if err != nil {
			return m, err
		}
		last, ok := m.State.LastIndex()
		if !m.Modifier || !ok || last == pos {
			m.State = toggle(m.State, e.Key, pos)
			return m, nil
		}
		keys := m.State.clone()
		for _, k := range idx.KeysInRange(min(last, pos), max(last, pos)) {
			keys[k] = struct{}{}
		}
		m.State = subset(keys, pos)
		return m, nil
	}
	return m, fmt.Errorf("%w: %T", ErrUnknownEvent, ev)
}

func resolve(idx Index, key string) (int, error) {
	pos, ok := idx.Position(key)
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownEntity, key)
	}
	return pos, nil
}

func toggle(s State, key string, pos int) State {
	keys := s.clone()
	if _, selected := keys[key]; selected {
		delete(keys, key)
	} else {
		keys[key] = struct{}{}
	}
	// an emptied subset collapses to All, still anchored at pos
	return subset(keys, pos)
}
