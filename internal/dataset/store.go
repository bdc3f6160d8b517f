// Package dataset holds the immutable entity list and timeline of one
// dashboard session together with the position index derived from them.
package dataset

import (
	"cmp"
	"errors"
	"slices"

	"savingsdash/internal/core"
	"savingsdash/internal/log"
)

// ErrMalformedInput is reported when a raw input is not a list of records.
var ErrMalformedInput = errors.New("dataset input is not a list of records")

// Store is created once per session and never mutated afterwards.
// Entities are kept in canonical order: descending savings, ties in load order.
type Store struct {
	entities  []core.Entity
	timeline  []core.TimelinePoint
	positions map[string]int
	err       error
}

// New builds a store from already decoded records. Records with an empty or
// duplicate key are dropped; the first occurrence of a key wins.
func New(entities []core.Entity, timeline []core.TimelinePoint) *Store {
	s := &Store{
		entities:  make([]core.Entity, 0, len(entities)),
		timeline:  slices.Clone(timeline),
		positions: make(map[string]int, len(entities)),
	}
	seen := make(map[string]struct{}, len(entities))
	for _, e := range entities {
		if e.Key == "" {
			continue
		}
		if _, dup := seen[e.Key]; dup {
			continue
		}
		seen[e.Key] = struct{}{}
		s.entities = append(s.entities, e)
	}
	slices.SortStableFunc(s.entities, func(a, b core.Entity) int {
		return cmp.Compare(b.Savings, a.Savings)
	})
	for i, e := range s.entities {
		s.positions[e.Key] = i
	}
	if s.timeline == nil {
		s.timeline = []core.TimelinePoint{}
	}
	return s
}

// Empty returns a store with no entities and no timeline.
func Empty() *Store {
	return New(nil, nil)
}

// Load decodes the two raw JSON lists. If either one is not a list the store
// degrades to empty, logs one warning and keeps ErrMalformedInput in Err.
func Load(rawEntities, rawTimeline []byte, logger *log.Logger) *Store {
	if logger == nil {
		logger = log.Discard()
	}
	logger = logger.WithComponent(log.ComponentDataset)

	entities, skippedEntities, errEntities := decodeEntities(rawEntities)
	timeline, skippedPoints, errTimeline := decodeTimeline(rawTimeline)

	if err := errors.Join(errEntities, errTimeline); err != nil {
		logger.Warn("Dataset degraded to empty",
			log.FieldOperation, log.OpLoad,
			log.FieldError, err.Error())
		s := Empty()
		s.err = err
		return s
	}

	s := New(entities, timeline)
	if dropped := skippedEntities + (len(entities) - len(s.entities)); dropped > 0 || skippedPoints > 0 {
		logger.Debug("Skipped unusable records",
			log.FieldOperation, log.OpLoad,
			"entities_skipped", dropped,
			"points_skipped", skippedPoints)
	}
	logger.Info("Dataset loaded",
		log.FieldEntities, len(s.entities),
		log.FieldTimeline, len(s.timeline))
	return s
}

// Err reports why the store degraded, or nil.
func (s *Store) Err() error { return s.err }

// Degraded reports whether Load fell back to an empty dataset.
func (s *Store) Degraded() bool { return s.err != nil }

// Entities returns the entities in canonical order.
func (s *Store) Entities() []core.Entity { return slices.Clone(s.entities) }

// Timeline returns the timeline in load order.
func (s *Store) Timeline() []core.TimelinePoint { return slices.Clone(s.timeline) }

// Len is the number of entities.
func (s *Store) Len() int { return len(s.entities) }

// Keys returns every entity key in canonical order.
func (s *Store) Keys() []string {
	keys := make([]string, len(s.entities))
	for i, e := range s.entities {
		keys[i] = e.Key
	}
	return keys
}

// Position returns the fixed position index of key.
func (s *Store) Position(key string) (int, bool) {
	i, ok := s.positions[key]
	return i, ok
}

// KeyAt returns the key at position i.
func (s *Store) KeyAt(i int) (string, bool) {
	if i < 0 || i >= len(s.entities) {
		return "", false
	}
	return s.entities[i].Key, true
}

// KeysInRange returns the keys whose position lies in [lo, hi], clamped to
// the valid positions. lo and hi may be given in either order.
func (s *Store) KeysInRange(lo, hi int) []string {
	if lo > hi {
		lo, hi = hi, lo
	}
	lo = max(lo, 0)
	hi = min(hi, len(s.entities)-1)
	if lo > hi {
		return nil
	}
	keys := make([]string, 0, hi-lo+1)
	for _, e := range s.entities[lo : hi+1] {
		keys = append(keys, e.Key)
	}
	return keys
}

// Lookup returns the full record for key. Chart tooltips use it.
func (s *Store) Lookup(key string) (core.Entity, bool) {
	i, ok := s.positions[key]
	if !ok {
		return core.Entity{}, false
	}
	return s.entities[i], true
}
