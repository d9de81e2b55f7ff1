package cande

import (
	"maps"
	"slices"
)

// Filter narrows ElementsBy.
type Filter func(*Element) bool

// MatchMaterial keeps beam and soil elements using material id from the
// soil/structural table. Interfaces number their materials in a table of
// their own; see MatchInterfaceMaterial.
func MatchMaterial(id MaterialID) Filter {
	return func(e *Element) bool { return e.Kind() != KindInterface && e.Material == id }
}

// MatchInterfaceMaterial keeps interfaces using interface material id.
func MatchInterfaceMaterial(id MaterialID) Filter {
	return func(e *Element) bool { return e.Kind() == KindInterface && e.Material == id }
}

// MatchStep keeps elements in construction step s.
func MatchStep(s int) Filter {
	return func(e *Element) bool { return e.Step == s }
}

// MatchKinds keeps elements of any of the given kinds. With no kinds it
// matches everything.
func MatchKinds(kinds ...Kind) Filter {
	return func(e *Element) bool {
		return len(kinds) == 0 || slices.Contains(kinds, e.Kind())
	}
}

// ElementsBy returns the sorted ids of the elements that pass every filter.
func (m *Model) ElementsBy(filters ...Filter) []ElementID {
	out := []ElementID{}
	for _, id := range slices.Sorted(maps.Keys(m.elements)) {
		e := m.elements[id]
		ok := true
		for _, f := range filters {
			if !f(e) {
				ok = false
				break
			}
		}
		if ok {
			out = append(out, id)
		}
	}
	return out
}

// SharedNodes returns the nodes of a that also appear in b, in a's order.
func (m *Model) SharedNodes(a, b ElementID) ([]NodeID, error) {
	ea, ok := m.elements[a]
	if !ok {
		return nil, &UnknownElementError{ID: a}
	}
	eb, ok := m.elements[b]
	if !ok {
		return nil, &UnknownElementError{ID: b}
	}
	out := []NodeID{}
	for _, n := range uniqueNodes(ea.Nodes) {
		if slices.Contains(eb.Nodes, n) {
			out = append(out, n)
		}
	}
	return out, nil
}

// InterfaceAt returns the interface already bridging beam and soil.
func (m *Model) InterfaceAt(beam, soil ElementID) (ElementID, bool) {
	b, ok := m.elements[beam]
	if !ok {
		return 0, false
	}
	for _, n := range b.Nodes {
		for _, id := range m.byNode[n] {
			if in, ok := m.elements[id].Interface(); ok && in.Beam == beam && in.Soil == soil {
				return id, true
			}
		}
	}
	return 0, false
}

// bridging returns the interfaces whose junction names soil.
func (m *Model) bridging(soil ElementID) []ElementID {
	s, ok := m.elements[soil]
	if !ok {
		return nil
	}
	var out []ElementID
	for _, n := range s.Nodes {
		for _, id := range m.byNode[n] {
			if in, ok := m.elements[id].Interface(); ok && in.Soil == soil && !slices.Contains(out, id) {
				out = append(out, id)
			}
		}
	}
	slices.Sort(out)
	return out
}
