// Package filter derives the filtered entity list and timeline from a
// dataset and a selection.
package filter

import (
	"savingsdash/internal/core"
	"savingsdash/internal/selection"
)

// Entities returns the entities whose keys are selected, keeping the given
// order. All returns the input unchanged.
func Entities(entities []core.Entity, s selection.State) []core.Entity {
	if s.IsAll() {
		return entities
	}
	out := make([]core.Entity, 0, s.Len())
	for _, e := range entities {
		if s.Contains(e.Key) {
			out = append(out, e)
		}
	}
	return out
}

// Timeline keeps unconditional points and points mentioning a selected key.
// When that leaves nothing while timeline is not empty, the full timeline is
// returned instead and fellBack is true.
func Timeline(timeline []core.TimelinePoint, s selection.State) (points []core.TimelinePoint, fellBack bool) {
	if s.IsAll() {
		return timeline, false
	}
	out := make([]core.TimelinePoint, 0, len(timeline))
	for _, p := range timeline {
		if p.Unconditional() || p.MentionsAny(s.Contains) {
			out = append(out, p)
		}
	}
	if len(out) == 0 && len(timeline) > 0 {
		return timeline, true
	}
	return out, false
}
