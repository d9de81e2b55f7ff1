package cande

import (
	"fmt"
	"math"
	"slices"

	"candedit/internal/geom"
)

// InterfaceModelCode is the CANDE material model number for interfaces.
const InterfaceModelCode = 6

// Quantum is the resolution at which interface friction and angle are
// compared and stored. It matches the three decimals of the D-2 record.
const Quantum = 1e-3

// MaterialKind selects one of the two material tables. Soil covers every
// non-interface model (soil and structural groups).
type MaterialKind int

const (
	MaterialSoil MaterialKind = iota
	MaterialInterface
)

func materialKindOf(k Kind) MaterialKind {
	if k == KindInterface {
		return MaterialInterface
	}
	return MaterialSoil
}

func (k MaterialKind) String() string {
	if k == MaterialInterface {
		return "interface"
	}
	return "soil"
}

// Material is a CANDE D-1 material. Props holds the raw D-2 lines of a
// non-interface material, which this tool carries without interpreting.
type Material struct {
	ID       MaterialID
	Kind     MaterialKind
	Code     int
	Density  float64
	Name     string
	Friction float64
	Angle    float64
	Props    []string
}

func (m Material) clone() Material {
	m.Props = slices.Clone(m.Props)
	return m
}

type pairKey struct {
	friction, angle int64
}

// QuantizePair rounds an interface (friction, angle) pair to Quantum with the
// angle folded into [0, 360).
func QuantizePair(friction, angle float64) (float64, float64) {
	f := geom.Quantize(friction, Quantum)
	a := geom.Quantize(geom.NormalizeDegrees(angle), Quantum)
	if a >= 360 || a == 0 {
		a = 0 // also clears -0
	}
	if f == 0 {
		f = 0
	}
	return f, a
}

func keyOf(friction, angle float64) pairKey {
	f, a := QuantizePair(friction, angle)
	return pairKey{friction: int64(math.Round(f / Quantum)), angle: int64(math.Round(a / Quantum))}
}

// InterfaceMaterial returns the material for a (friction, angle) pair,
// allocating one the first time the pair is seen. created reports whether
// a new material was added.
func (m *Model) InterfaceMaterial(friction, angle float64) (id MaterialID, created bool, err error) {
	if math.IsNaN(friction) || friction < 0 || friction > 1 {
		return 0, false, Validationf("friction %v outside [0, 1]", friction)
	}
	if math.IsNaN(angle) || math.IsInf(angle, 0) {
		return 0, false, Validationf("invalid angle %v", angle)
	}
	k := keyOf(friction, angle)
	if id, ok := m.ifaceMat[k]; ok {
		return id, false, nil
	}
	f, a := QuantizePair(friction, angle)
	next := m.nextMaterial[MaterialInterface]
	mat := Material{
		ID:       next,
		Kind:     MaterialInterface,
		Code:     InterfaceModelCode,
		Name:     fmt.Sprintf("Inter #%d", next),
		Friction: f,
		Angle:    a,
	}
	id, err = m.AddMaterial(mat)
	if err != nil {
		return 0, false, err
	}
	return id, true, nil
}

// LookupInterfaceMaterial finds the material for a pair without allocating.
func (m *Model) LookupInterfaceMaterial(friction, angle float64) (MaterialID, bool) {
	id, ok := m.ifaceMat[keyOf(friction, angle)]
	return id, ok
}
