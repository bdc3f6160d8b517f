// Package selection implements the multi-select filter state of the
// dashboard as a pure reducer over explicit events.
package selection

import (
	"slices"
)

// State is either All or a non-empty Subset of entity keys. The zero value
// is All. All reached by emptying a Subset keeps the last index so a
// following range select still has an anchor.
type State struct {
	keys      map[string]struct{}
	lastIndex int
	hasLast   bool
}

// AllState returns the All state without a last index.
func AllState() State { return State{} }

// subset builds a State anchored at lastIndex. An empty key set yields All
// with the anchor kept.
func subset(keys map[string]struct{}, lastIndex int) State {
	if len(keys) == 0 {
		keys = nil
	}
	return State{keys: keys, lastIndex: lastIndex, hasLast: true}
}

// IsAll reports whether every entity is selected through the All sentinel.
func (s State) IsAll() bool { return len(s.keys) == 0 }

// Contains reports whether key is explicitly selected. It is false for
// every key while the state is All.
func (s State) Contains(key string) bool {
	_, ok := s.keys[key]
	return ok
}

// Len is the number of explicitly selected keys, 0 for All.
func (s State) Len() int { return len(s.keys) }

// Keys returns the selected keys sorted, or nil for All.
func (s State) Keys() []string {
	if s.IsAll() {
		return nil
	}
	keys := make([]string, 0, len(s.keys))
	for k := range s.keys {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// LastIndex is the position of the most recently clicked entity.
func (s State) LastIndex() (int, bool) {
	return s.lastIndex, s.hasLast
}

// Equal compares two states. Two All states are equal whatever their last
// index; two subsets must also agree on it.
func (s State) Equal(o State) bool {
	if s.IsAll() || o.IsAll() {
		return s.IsAll() == o.IsAll()
	}
	if s.hasLast != o.hasLast || s.lastIndex != o.lastIndex || len(s.keys) != len(o.keys) {
		return false
	}
	for k := range s.keys {
		if _, ok := o.keys[k]; !ok {
			return false
		}
	}
	return true
}

func (s State) clone() map[string]struct{} {
	keys := make(map[string]struct{}, len(s.keys)+1)
	for k := range s.keys {
		keys[k] = struct{}{}
	}
	return keys
}

// Snapshot is the serializable form of a State.
type Snapshot struct {
	All       bool     `json:"all"`
	Keys      []string `json:"keys"`
	LastIndex *int     `json:"last_index"`
}

// Snapshot returns a copy safe to hand to templates and JSON encoders.
func (s State) Snapshot() Snapshot {
	snap := Snapshot{All: s.IsAll(), Keys: s.Keys()}
	if snap.Keys == nil {
		snap.Keys = []string{}
	}
	if i, ok := s.LastIndex(); ok {
		snap.LastIndex = &i
	}
	return snap
}
