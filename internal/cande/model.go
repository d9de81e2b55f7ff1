// Package cande is the in-memory CANDE mesh: nodes, elements, materials and
// the operations that edit them. Every mutating method either applies fully
// or returns an error and leaves the model as it was.
package cande

import (
	"maps"
	"slices"

	"candedit/internal/geom"
)

// Model owns the node, element and material collections together with the
// id allocators and lookup indices built over them.
type Model struct {
	nodes    map[NodeID]*Node
	elements map[ElementID]*Element
	// materials is indexed by MaterialKind: CANDE numbers soil and
	// interface materials independently.
	materials [2]map[MaterialID]*Material

	byNode   map[NodeID][]ElementID
	ifaceMat map[pairKey]MaterialID

	nextNode     NodeID
	nextElement  ElementID
	nextMaterial [2]MaterialID
}

// New returns an empty model.
func New() *Model {
	return &Model{
		nodes:        make(map[NodeID]*Node),
		elements:     make(map[ElementID]*Element),
		materials:    [2]map[MaterialID]*Material{make(map[MaterialID]*Material), make(map[MaterialID]*Material)},
		byNode:       make(map[NodeID][]ElementID),
		ifaceMat:     make(map[pairKey]MaterialID),
		nextNode:     1,
		nextElement:  1,
		nextMaterial: [2]MaterialID{1, 1},
	}
}

// AddNode inserts a node. id 0 takes the next free id.
func (m *Model) AddNode(id NodeID, x, y float64) (NodeID, error) {
	if id < 0 {
		return 0, Validationf("node id %d must be positive", id)
	}
	if id == 0 {
		id = m.nextNode
	}
	if _, ok := m.nodes[id]; ok {
		return 0, &DuplicateIdError{Kind: "node", ID: int(id)}
	}
	m.nodes[id] = &Node{ID: id, X: x, Y: y}
	if id >= m.nextNode {
		m.nextNode = id + 1
	}
	return id, nil
}

// AddMaterial inserts a material into the table for its kind. ID 0 takes
// the next free id of that table. Interface materials also enter the
// (friction, angle) index unless the pair is already mapped.
func (m *Model) AddMaterial(mat Material) (MaterialID, error) {
	if mat.Kind != MaterialSoil && mat.Kind != MaterialInterface {
		return 0, Validationf("material %d has unknown kind %d", mat.ID, mat.Kind)
	}
	if mat.ID < 0 {
		return 0, Validationf("material id %d must be positive", mat.ID)
	}
	if mat.ID == 0 {
		mat.ID = m.nextMaterial[mat.Kind]
	}
	tbl := m.materials[mat.Kind]
	if _, ok := tbl[mat.ID]; ok {
		return 0, &DuplicateIdError{Kind: mat.Kind.String() + " material", ID: int(mat.ID)}
	}
	mat = mat.clone()
	tbl[mat.ID] = &mat
	if mat.ID >= m.nextMaterial[mat.Kind] {
		m.nextMaterial[mat.Kind] = mat.ID + 1
	}
	if mat.Kind == MaterialInterface {
		k := keyOf(mat.Friction, mat.Angle)
		if _, ok := m.ifaceMat[k]; !ok {
			m.ifaceMat[k] = mat.ID
		}
	}
	return mat.ID, nil
}

// AddElement inserts an element. ID 0 takes the next free id. Interface
// elements are normally created by the synthesizer or the file decoder; an
// interface that names its soil element must carry that element's step.
// 2D rings are stored counter-clockwise.
func (m *Model) AddElement(e Element) (ElementID, error) {
	if e.Data == nil {
		return 0, Validationf("element %d has no variant", e.ID)
	}
	if e.ID < 0 {
		return 0, Validationf("element id %d must be positive", e.ID)
	}
	if !nodeCountOK(e.Kind(), len(e.Nodes)) {
		return 0, Validationf("%s element %d cannot have %d nodes", e.Kind(), e.ID, len(e.Nodes))
	}
	if e.Step < 1 {
		return 0, Validationf("element %d: step %d must be at least 1", e.ID, e.Step)
	}
	id := e.ID
	if id == 0 {
		id = m.nextElement
	}
	if _, ok := m.elements[id]; ok {
		return 0, &DuplicateIdError{Kind: "element", ID: int(id)}
	}
	for _, n := range e.Nodes {
		if _, ok := m.nodes[n]; !ok {
			return 0, &InvalidReferenceError{Element: id, Node: n}
		}
	}
	if e.Kind() == KindSoil {
		e.Nodes = m.ccw(e.Nodes)
	}
	if _, ok := m.materials[materialKindOf(e.Kind())][e.Material]; !ok {
		return 0, &InvalidReferenceError{Element: id, Material: e.Material}
	}
	if in, ok := e.Interface(); ok && in.Soil != 0 {
		soil, ok := m.elements[in.Soil]
		if !ok || soil.Kind() != KindSoil {
			return 0, Validationf("interface %d bridges %d, which is not a 2D element", id, in.Soil)
		}
		if e.Step != soil.Step {
			return 0, Validationf("interface %d step %d differs from soil %d step %d", id, e.Step, soil.ID, soil.Step)
		}
	}

	e = e.clone()
	e.ID = id
	m.elements[id] = &e
	for _, n := range uniqueNodes(e.Nodes) {
		m.byNode[n] = append(m.byNode[n], id)
	}
	if id >= m.nextElement {
		m.nextElement = id + 1
	}
	return id, nil
}

// ccw returns the nodes of a 2D ring in counter-clockwise order, keeping
// the first node first.
func (m *Model) ccw(ns []NodeID) []NodeID {
	pts := make([]geom.Point, len(ns))
	for i, n := range ns {
		nd := m.nodes[n]
		pts[i] = geom.Point{X: nd.X, Y: nd.Y}
	}
	out := make([]NodeID, len(ns))
	for i, j := range geom.CCWOrder(pts) {
		out[i] = ns[j]
	}
	return out
}

func uniqueNodes(ns []NodeID) []NodeID {
	out := make([]NodeID, 0, len(ns))
	for _, n := range ns {
		if !slices.Contains(out, n) {
			out = append(out, n)
		}
	}
	return out
}

// Node returns the node with the given id.
func (m *Model) Node(id NodeID) (Node, bool) {
	n, ok := m.nodes[id]
	if !ok {
		return Node{}, false
	}
	return *n, true
}

// Element returns a copy of the element with the given id.
func (m *Model) Element(id ElementID) (Element, bool) {
	e, ok := m.elements[id]
	if !ok {
		return Element{}, false
	}
	return e.clone(), true
}

// Material returns a copy of material id from the table for kind.
func (m *Model) Material(kind MaterialKind, id MaterialID) (Material, bool) {
	if kind != MaterialSoil && kind != MaterialInterface {
		return Material{}, false
	}
	mat, ok := m.materials[kind][id]
	if !ok {
		return Material{}, false
	}
	return mat.clone(), true
}

// MaterialOf returns the material an element refers to.
func (m *Model) MaterialOf(e Element) (Material, bool) {
	return m.Material(materialKindOf(e.Kind()), e.Material)
}

// Nodes returns all nodes ordered by id.
func (m *Model) Nodes() []Node {
	out := make([]Node, 0, len(m.nodes))
	for _, id := range slices.Sorted(maps.Keys(m.nodes)) {
		out = append(out, *m.nodes[id])
	}
	return out
}

// Elements returns copies of all elements ordered by id.
func (m *Model) Elements() []Element {
	out := make([]Element, 0, len(m.elements))
	for _, id := range slices.Sorted(maps.Keys(m.elements)) {
		out = append(out, m.elements[id].clone())
	}
	return out
}

// Materials returns copies of all materials, soil materials first, each
// table ordered by id.
func (m *Model) Materials() []Material {
	out := make([]Material, 0, m.MaterialCount())
	for _, tbl := range m.materials {
		for _, id := range slices.Sorted(maps.Keys(tbl)) {
			out = append(out, tbl[id].clone())
		}
	}
	return out
}

func (m *Model) NodeCount() int    { return len(m.nodes) }
func (m *Model) ElementCount() int { return len(m.elements) }
func (m *Model) MaterialCount() int {
	return len(m.materials[MaterialSoil]) + len(m.materials[MaterialInterface])
}

// MaxMaterialID returns the largest id in the table for kind, or zero.
func (m *Model) MaxMaterialID(kind MaterialKind) MaterialID {
	return m.nextMaterial[kind] - 1
}

// ElementsAt returns the ids of the elements that reference node n, in
// insertion order.
func (m *Model) ElementsAt(n NodeID) []ElementID {
	return slices.Clone(m.byNode[n])
}

// Points returns the coordinates of an element's nodes in reference order.
func (m *Model) Points(id ElementID) ([]geom.Point, error) {
	e, ok := m.elements[id]
	if !ok {
		return nil, &UnknownElementError{ID: id}
	}
	return m.points(e), nil
}

func (m *Model) points(e *Element) []geom.Point {
	pts := make([]geom.Point, 0, len(e.Nodes))
	for _, n := range e.Nodes {
		pts = append(pts, m.nodes[n].Point())
	}
	return pts
}

// Bounds returns the extent of all nodes.
func (m *Model) Bounds() geom.BBox {
	b := geom.EmptyBBox()
	for _, n := range m.nodes {
		b = b.Extend(n.Point())
	}
	return b
}

// MaxStep returns the largest step used by any element, or zero.
func (m *Model) MaxStep() int {
	s := 0
	for _, e := range m.elements {
		s = max(s, e.Step)
	}
	return s
}

// Clone returns a deep copy that shares nothing with m.
func (m *Model) Clone() *Model {
	c := New()
	for id, n := range m.nodes {
		nn := *n
		c.nodes[id] = &nn
	}
	for id, e := range m.elements {
		ee := e.clone()
		c.elements[id] = &ee
	}
	for k, tbl := range m.materials {
		for id, mat := range tbl {
			mm := mat.clone()
			c.materials[k][id] = &mm
		}
	}
	for n, ids := range m.byNode {
		c.byNode[n] = slices.Clone(ids)
	}
	maps.Copy(c.ifaceMat, m.ifaceMat)
	c.nextNode, c.nextElement, c.nextMaterial = m.nextNode, m.nextElement, m.nextMaterial
	return c
}

// Restore makes m a copy of snap, typically a Clone taken before a
// multi-step edit that has to be undone.
func (m *Model) Restore(snap *Model) {
	*m = *snap.Clone()
}
