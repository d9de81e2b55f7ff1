package cande

import (
	"fmt"
	"slices"
	"strings"

	"candedit/internal/geom"
)

type (
	NodeID     int
	ElementID  int
	MaterialID int
)

// Node is a mesh point.
type Node struct {
	ID NodeID
	X  float64
	Y  float64
}

func (n Node) Point() geom.Point { return geom.Point{X: n.X, Y: n.Y} }

// Kind identifies an element variant.
type Kind int

const (
	KindBeam Kind = iota + 1
	KindSoil
	KindInterface
)

func (k Kind) String() string {
	switch k {
	case KindBeam:
		return "1D"
	case KindSoil:
		return "2D"
	case KindInterface:
		return "Interface"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// ParseKind accepts the display labels and a few common aliases.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1d", "beam":
		return KindBeam, nil
	case "2d", "soil":
		return KindSoil, nil
	case "interface", "iface":
		return KindInterface, nil
	}
	return 0, Validationf("unknown element kind %q", s)
}

// ElementData is the variant part of an Element. It is implemented only by
// Beam, Soil and Interface.
type ElementData interface {
	Kind() Kind
	elementData()
}

// Beam is a two-node structural element.
type Beam struct{}

// Soil is a three or four node continuum element.
type Soil struct{}

// Interface joins a beam to the soil around it. Friction and Angle come from
// its material. Beam and Soil name the junction it was built for; they are
// zero when unknown and are never written to disk.
type Interface struct {
	Friction float64
	Angle    float64
	Beam     ElementID
	Soil     ElementID
}

func (Beam) Kind() Kind      { return KindBeam }
func (Soil) Kind() Kind      { return KindSoil }
func (Interface) Kind() Kind { return KindInterface }

func (Beam) elementData()      {}
func (Soil) elementData()      {}
func (Interface) elementData() {}

// Element is a mesh element. Nodes is ordered as stored in the file.
type Element struct {
	ID       ElementID
	Nodes    []NodeID
	Material MaterialID
	Step     int
	Data     ElementData
}

// Kind returns the variant, or zero when Data is unset.
func (e Element) Kind() Kind {
	if e.Data == nil {
		return 0
	}
	return e.Data.Kind()
}

// Interface returns the interface attributes when e is an interface.
func (e Element) Interface() (Interface, bool) {
	in, ok := e.Data.(Interface)
	return in, ok
}

func (e Element) clone() Element {
	e.Nodes = slices.Clone(e.Nodes)
	return e
}

func nodeCountOK(k Kind, n int) bool {
	switch k {
	case KindBeam:
		return n == 2
	case KindSoil, KindInterface:
		return n == 3 || n == 4
	}
	return false
}
