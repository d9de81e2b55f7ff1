// Package selection holds the set of selected elements and the hit tests
// that feed it from pointer input.
package selection

import (
	"maps"
	"slices"

	"candedit/internal/cande"
)

// Mode says how a pick combines with the current selection.
type Mode int

const (
	ModeReplace Mode = iota
	ModeAdd
	ModeRemove
	ModeToggle
)

func (m Mode) String() string {
	switch m {
	case ModeAdd:
		return "add"
	case ModeRemove:
		return "remove"
	case ModeToggle:
		return "toggle"
	}
	return "replace"
}

// Set is a set of element IDs. The zero value is empty and ready to use.
type Set struct {
	ids map[cande.ElementID]struct{}
}

// New returns a set holding ids.
func New(ids ...cande.ElementID) *Set {
	s := &Set{}
	s.Add(ids...)
	return s
}

func (s *Set) Add(ids ...cande.ElementID) {
	if s.ids == nil {
		s.ids = make(map[cande.ElementID]struct{}, len(ids))
	}
	for _, id := range ids {
		s.ids[id] = struct{}{}
	}
}

func (s *Set) Remove(ids ...cande.ElementID) {
	for _, id := range ids {
		delete(s.ids, id)
	}
}

func (s *Set) Clear() { clear(s.ids) }

// Toggle flips membership of each id. An id listed twice flips twice.
func (s *Set) Toggle(ids ...cande.ElementID) {
	for _, id := range ids {
		if s.Contains(id) {
			delete(s.ids, id)
		} else {
			s.Add(id)
		}
	}
}

func (s *Set) Replace(ids ...cande.ElementID) {
	s.Clear()
	s.Add(ids...)
}

func (s *Set) Contains(id cande.ElementID) bool {
	_, ok := s.ids[id]
	return ok
}

func (s *Set) Len() int { return len(s.ids) }

// IDs returns the members in ascending order, never nil.
func (s *Set) IDs() []cande.ElementID {
	out := slices.Sorted(maps.Keys(s.ids))
	if out == nil {
		out = []cande.ElementID{}
	}
	return out
}

// Apply combines ids with the selection according to mode.
func (s *Set) Apply(mode Mode, ids []cande.ElementID) {
	switch mode {
	case ModeAdd:
		s.Add(ids...)
	case ModeRemove:
		s.Remove(ids...)
	case ModeToggle:
		s.Toggle(ids...)
	default:
		s.Replace(ids...)
	}
}

// Filter applies the elements of m matching all filters and returns how
// many matched.
func (s *Set) Filter(m *cande.Model, mode Mode, filters ...cande.Filter) int {
	ids := m.ElementsBy(filters...)
	s.Apply(mode, ids)
	return len(ids)
}

// Prune drops members that are no longer elements of m.
func (s *Set) Prune(m *cande.Model) {
	for id := range s.ids {
		if _, ok := m.Element(id); !ok {
			delete(s.ids, id)
		}
	}
}

// Count returns the number of selected elements of each kind.
func (s *Set) Count(m *cande.Model) map[cande.Kind]int {
	out := make(map[cande.Kind]int)
	for id := range s.ids {
		if e, ok := m.Element(id); ok {
			out[e.Kind()]++
		}
	}
	return out
}
