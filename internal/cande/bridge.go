package cande

import "slices"

// InferBridges fills in the beam/soil junction of four-node interfaces that
// were read from disk without one. The diamond layout puts the beam nodes
// first, so the beam is the 1D element on nodes 0 and 1 and the soil is the
// lowest-id 2D element holding nodes 2 and 3 plus a beam node, with the same
// step as the interface. Interfaces that do not fit stay unbridged. It
// returns the number of interfaces bridged.
func (m *Model) InferBridges() int {
	taken := make(map[[2]ElementID]bool)
	for _, e := range m.elements {
		if in, ok := e.Interface(); ok && in.Soil != 0 {
			taken[[2]ElementID{in.Beam, in.Soil}] = true
		}
	}
	count := 0
	for _, id := range m.ElementsBy(MatchKinds(KindInterface)) {
		e := m.elements[id]
		in, _ := e.Interface()
		if in.Soil != 0 || len(e.Nodes) != 4 {
			continue
		}
		beam := m.beamOn(e.Nodes[0], e.Nodes[1])
		if beam == 0 {
			continue
		}
		for _, sid := range m.byNode[e.Nodes[2]] {
			s := m.elements[sid]
			if s.Kind() != KindSoil || s.Step != e.Step || taken[[2]ElementID{beam, sid}] {
				continue
			}
			if !slices.Contains(s.Nodes, e.Nodes[3]) {
				continue
			}
			if !slices.Contains(s.Nodes, e.Nodes[0]) && !slices.Contains(s.Nodes, e.Nodes[1]) {
				continue
			}
			if in.Soil == 0 || sid < in.Soil {
				in.Beam, in.Soil = beam, sid
			}
		}
		if in.Soil != 0 {
			e.Data = in
			taken[[2]ElementID{in.Beam, in.Soil}] = true
			count++
		}
	}
	return count
}

func (m *Model) beamOn(a, b NodeID) ElementID {
	best := ElementID(0)
	for _, id := range m.byNode[a] {
		e := m.elements[id]
		if e.Kind() != KindBeam {
			continue
		}
		if (e.Nodes[0] == a && e.Nodes[1] == b) || (e.Nodes[0] == b && e.Nodes[1] == a) {
			if best == 0 || id < best {
				best = id
			}
		}
	}
	return best
}
