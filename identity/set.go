/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package identity

// Set holds entities unique under Equal, in insertion order. The zero value is
// an empty set.
type Set struct {
	buckets map[uint64][]Entity
	items   []Entity
}

// NewSet creates a Set holding the given entities.
func NewSet(items ...Entity) *Set {
	s := &Set{buckets: make(map[uint64][]Entity)}
	for _, e := range items {
		s.Add(e)
	}
	return s
}

// Add inserts e unless an equal entity is already present.
func (s *Set) Add(e Entity) bool {
	h := Hash(e)
	for _, existing := range s.buckets[h] {
		if Equal(existing, e) {
			return false
		}
	}
	if s.buckets == nil {
		s.buckets = make(map[uint64][]Entity)
	}
	s.buckets[h] = append(s.buckets[h], e)
	s.items = append(s.items, e)
	return true
}

// Contains reports whether an entity equal to e is present.
func (s *Set) Contains(e Entity) bool {
	for _, existing := range s.buckets[Hash(e)] {
		if Equal(existing, e) {
			return true
		}
	}
	return false
}

// Len returns the number of members.
func (s *Set) Len() int { return len(s.items) }

// Items returns the members in insertion order.
func (s *Set) Items() []Entity {
	out := make([]Entity, len(s.items))
	copy(out, s.items)
	return out
}
