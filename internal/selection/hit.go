package selection

import (
	"slices"

	"candedit/internal/cande"
	"candedit/internal/geom"
)

// Policy decides which elements a box selection keeps.
type Policy int

const (
	// Window keeps elements whose nodes are all inside the box.
	Window Policy = iota
	// Crossing keeps elements with at least one node inside the box.
	Crossing
)

func (p Policy) String() string {
	if p == Crossing {
		return "crossing"
	}
	return "window"
}

// PolicyForDrag picks the policy from the horizontal drag direction:
// left to right is Window, right to left is Crossing.
func PolicyForDrag(x0, x1 float64) Policy {
	if x1 < x0 {
		return Crossing
	}
	return Window
}

func wants(kinds []cande.Kind, k cande.Kind) bool {
	return len(kinds) == 0 || slices.Contains(kinds, k)
}

// HitPoint returns the element under p. Interfaces are tried first, then
// soil polygons, then beams within tol of p. Inside one kind the highest
// ID wins. An interface whose ring has the same nodes as a soil element
// under p yields to that soil element. kinds limits the search; none means
// all kinds.
func HitPoint(m *cande.Model, p geom.Point, tol float64, kinds ...cande.Kind) (cande.ElementID, bool) {
	best := map[cande.Kind]cande.ElementID{}
	var ifaces []cande.Element
	var soilRings [][]cande.NodeID
	for _, e := range m.Elements() {
		k := e.Kind()
		if !wants(kinds, k) {
			continue
		}
		pts, err := m.Points(e.ID)
		if err != nil {
			continue
		}
		var hit bool
		switch k {
		case cande.KindBeam:
			hit = geom.SegmentDistance(p, pts[0], pts[1]) <= tol
		default:
			hit = geom.ContainsPoint(pts, p)
		}
		if !hit {
			continue
		}
		// elements come sorted, so the last hit has the highest id
		best[k] = e.ID
		switch k {
		case cande.KindInterface:
			ifaces = append(ifaces, e)
		case cande.KindSoil:
			soilRings = append(soilRings, nodeSet(e.Nodes))
		}
	}
	delete(best, cande.KindInterface)
	for _, e := range slices.Backward(ifaces) {
		set := nodeSet(e.Nodes)
		if !slices.ContainsFunc(soilRings, func(r []cande.NodeID) bool { return slices.Equal(r, set) }) {
			best[cande.KindInterface] = e.ID
			break
		}
	}
	for _, k := range []cande.Kind{cande.KindInterface, cande.KindSoil, cande.KindBeam} {
		if id, ok := best[k]; ok {
			return id, true
		}
	}
	return 0, false
}

func nodeSet(ns []cande.NodeID) []cande.NodeID {
	return slices.Compact(slices.Sorted(slices.Values(ns)))
}

// HitBox returns the IDs of elements selected by box under policy, sorted.
func HitBox(m *cande.Model, box geom.BBox, policy Policy, kinds ...cande.Kind) []cande.ElementID {
	out := []cande.ElementID{}
	if !box.Valid() {
		return out
	}
	for _, e := range m.Elements() {
		if !wants(kinds, e.Kind()) {
			continue
		}
		pts, err := m.Points(e.ID)
		if err != nil || len(pts) == 0 {
			continue
		}
		inside := 0
		for _, pt := range pts {
			if box.Contains(pt) {
				inside++
			}
		}
		if (policy == Window && inside == len(pts)) || (policy == Crossing && inside > 0) {
			out = append(out, e.ID)
		}
	}
	return out
}
