// Package synth creates interface elements between beams and the soil
// elements that share their nodes.
package synth

import (
	"log/slog"
	"math"
	"slices"

	"candedit/internal/cande"
	"candedit/internal/geom"
)

// Synthesizer builds interfaces on a model.
type Synthesizer struct {
	Log *slog.Logger
}

// New returns a Synthesizer logging to l, or to slog.Default when l is nil.
func New(l *slog.Logger) *Synthesizer {
	if l == nil {
		l = slog.Default()
	}
	return &Synthesizer{Log: l}
}

// CreateInterfaces is New(nil).CreateInterfaces.
func CreateInterfaces(m *cande.Model, beams []cande.ElementID, friction float64) ([]cande.ElementID, error) {
	return New(nil).CreateInterfaces(m, beams, friction)
}

// junction is one planned interface.
type junction struct {
	beam, soil cande.ElementID
	nodes      []cande.NodeID
	angle      float64
	step       int
}

// CreateInterfaces adds one interface for every (beam, soil) pair that
// shares a node and is not bridged yet, and returns the new element ids in
// creation order. Ids in beams that are not beams are ignored. Nothing is
// changed when an error is returned.
func (s *Synthesizer) CreateInterfaces(m *cande.Model, beams []cande.ElementID, friction float64) ([]cande.ElementID, error) {
	if math.IsNaN(friction) || friction < 0 || friction > 1 {
		return nil, cande.Validationf("friction %v outside [0, 1]", friction)
	}
	if len(beams) == 0 {
		return []cande.ElementID{}, nil
	}

	var plan []junction
	seen := make(map[cande.ElementID]bool)
	for _, id := range beams {
		b, ok := m.Element(id)
		if !ok {
			return nil, &cande.UnknownElementError{ID: id}
		}
		if b.Kind() != cande.KindBeam || seen[id] {
			continue
		}
		seen[id] = true
		js, err := s.junctions(m, b)
		if err != nil {
			return nil, err
		}
		if len(js) == 0 {
			s.Log.Debug("beam has no adjacent soil", slog.Int("beam", int(id)))
		}
		plan = append(plan, js...)
	}

	created := make([]cande.ElementID, 0, len(plan))
	if len(plan) == 0 {
		return created, nil
	}
	snap := m.Clone()
	for _, j := range plan {
		mat, isNew, err := m.InterfaceMaterial(friction, j.angle)
		if err != nil {
			m.Restore(snap)
			return nil, err
		}
		if isNew {
			s.Log.Debug("allocated interface material", slog.Int("material", int(mat)),
				slog.Float64("friction", friction), slog.Float64("angle", j.angle))
		}
		f, a := cande.QuantizePair(friction, j.angle)
		id, err := m.AddElement(cande.Element{
			Nodes:    j.nodes,
			Material: mat,
			Step:     j.step,
			Data:     cande.Interface{Friction: f, Angle: a, Beam: j.beam, Soil: j.soil},
		})
		if err != nil {
			m.Restore(snap)
			return nil, err
		}
		s.Log.Debug("created interface", slog.Int("element", int(id)),
			slog.Int("beam", int(j.beam)), slog.Int("soil", int(j.soil)),
			slog.Float64("angle", a), slog.Int("step", j.step))
		created = append(created, id)
	}
	s.Log.Info("interfaces created", slog.Int("beams", len(seen)), slog.Int("count", len(created)),
		slog.Float64("friction", friction))
	return created, nil
}

// junctions plans the interfaces for one beam, one per adjacent soil
// element in id order.
func (s *Synthesizer) junctions(m *cande.Model, beam cande.Element) ([]junction, error) {
	pts, _ := m.Points(beam.ID)
	a, b := pts[0], pts[1]
	if b.Sub(a).Length() <= geom.Collinear {
		return nil, cande.Validationf("beam %d has zero length", beam.ID)
	}

	var soils []cande.ElementID
	for _, n := range beam.Nodes {
		for _, id := range m.ElementsAt(n) {
			if e, _ := m.Element(id); e.Kind() == cande.KindSoil && !slices.Contains(soils, id) {
				soils = append(soils, id)
			}
		}
	}
	slices.Sort(soils)

	var out []junction
	for _, sid := range soils {
		if iid, ok := m.InterfaceAt(beam.ID, sid); ok {
			s.Log.Debug("junction already bridged", slog.Int("beam", int(beam.ID)),
				slog.Int("soil", int(sid)), slog.Int("interface", int(iid)))
			continue
		}
		soil, _ := m.Element(sid)
		ring, _ := m.Points(sid)
		n, _ := geom.NormalAway(a, b, geom.Centroid(ring))
		out = append(out, junction{
			beam:  beam.ID,
			soil:  sid,
			nodes: diamond(beam.Nodes, soil.Nodes),
			angle: geom.Degrees(n),
			step:  soil.Step,
		})
	}
	return out, nil
}

// diamond returns the interface nodes [a, b, p, q] for beam a-b against a
// soil ring. When the soil holds the whole beam edge, p and q are the ring
// neighbours of b and a away from the edge. When it holds one beam node, p
// and q are that node's successor and predecessor in the ring.
func diamond(beam, ring []cande.NodeID) []cande.NodeID {
	a, b := beam[0], beam[1]
	ia, ib := slices.Index(ring, a), slices.Index(ring, b)
	next := func(i int) cande.NodeID { return ring[(i+1)%len(ring)] }
	prev := func(i int) cande.NodeID { return ring[(i-1+len(ring))%len(ring)] }
	away := func(i int, other cande.NodeID) cande.NodeID {
		if n := next(i); n != other {
			return n
		}
		return prev(i)
	}
	switch {
	case ia >= 0 && ib >= 0:
		return []cande.NodeID{a, b, away(ib, a), away(ia, b)}
	case ia >= 0:
		return []cande.NodeID{a, b, next(ia), prev(ia)}
	default:
		return []cande.NodeID{a, b, next(ib), prev(ib)}
	}
}
