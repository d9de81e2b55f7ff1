package cande_test

import (
	"errors"
	"slices"
	"testing"

	"candedit/internal/cande"
	"candedit/internal/cande/candetest"
	"candedit/internal/synth"
)

func TestAddNodeDuplicate(t *testing.T) {
	m := cande.New()
	if _, err := m.AddNode(1, 0, 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_, err := m.AddNode(1, 5, 5)
	var dup *cande.DuplicateIdError
	if !errors.As(err, &dup) || dup.Kind != "node" || dup.ID != 1 {
		t.Fatalf("expected DuplicateIdError for node 1, got %v", err)
	}
	if n, _ := m.Node(1); n.X != 0 {
		t.Errorf("duplicate insert changed node: %+v", n)
	}
}

func TestAddNodeAllocates(t *testing.T) {
	m := cande.New()
	if _, err := m.AddNode(7, 0, 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	id, err := m.AddNode(0, 1, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != 8 {
		t.Errorf("allocated id = %d, want 8", id)
	}
}

func TestAddElementErrors(t *testing.T) {
	tests := []struct {
		name  string
		e     cande.Element
		check func(error) bool
	}{
		{
			name: "unknown node",
			e:    cande.Element{ID: 20, Nodes: []cande.NodeID{1, 99}, Material: 1, Step: 1, Data: cande.Beam{}},
			check: func(err error) bool {
				var ref *cande.InvalidReferenceError
				return errors.As(err, &ref) && ref.Node == 99
			},
		},
		{
			name: "unknown material",
			e:    cande.Element{ID: 20, Nodes: []cande.NodeID{1, 2}, Material: 42, Step: 1, Data: cande.Beam{}},
			check: func(err error) bool {
				var ref *cande.InvalidReferenceError
				return errors.As(err, &ref) && ref.Material == 42
			},
		},
		{
			name: "duplicate id across variants",
			e:    cande.Element{ID: 5, Nodes: []cande.NodeID{1, 2, 3}, Material: 1, Step: 1, Data: cande.Soil{}},
			check: func(err error) bool {
				var dup *cande.DuplicateIdError
				return errors.As(err, &dup) && dup.Kind == "element" && dup.ID == 5
			},
		},
		{
			name: "beam with three nodes",
			e:    cande.Element{ID: 20, Nodes: []cande.NodeID{1, 2, 3}, Material: 1, Step: 1, Data: cande.Beam{}},
			check: func(err error) bool {
				var v *cande.ValidationError
				return errors.As(err, &v)
			},
		},
		{
			name: "step zero",
			e:    cande.Element{ID: 20, Nodes: []cande.NodeID{1, 2}, Material: 1, Step: 0, Data: cande.Beam{}},
			check: func(err error) bool {
				var v *cande.ValidationError
				return errors.As(err, &v)
			},
		},
		{
			name: "interface step off its soil",
			e: cande.Element{ID: 20, Nodes: []cande.NodeID{4, 5, 2, 1}, Material: 1, Step: 9,
				Data: cande.Interface{Beam: 5, Soil: 1}},
			check: func(err error) bool {
				var v *cande.ValidationError
				return errors.As(err, &v)
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := candetest.Grid()
			if _, _, err := m.InterfaceMaterial(0.3, 90); err != nil {
				t.Fatal(err)
			}
			before := m.ElementCount()
			_, err := m.AddElement(tt.e)
			if err == nil || !tt.check(err) {
				t.Fatalf("unexpected error: %v", err)
			}
			if m.ElementCount() != before {
				t.Errorf("failed insert changed element count")
			}
			if errs := m.Validate(); len(errs) > 0 {
				t.Errorf("invariants broken: %v", errs)
			}
		})
	}
}

func TestAddElementAllocates(t *testing.T) {
	m := candetest.Grid()
	id, err := m.AddElement(cande.Element{Nodes: []cande.NodeID{1, 5}, Material: 3, Step: 2, Data: cande.Beam{}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != 7 {
		t.Errorf("allocated id = %d, want 7", id)
	}
	if !slices.Contains(m.ElementsAt(1), id) {
		t.Errorf("node index missing new element")
	}
}

func TestElementsBy(t *testing.T) {
	m := candetest.Grid()
	tests := []struct {
		name    string
		filters []cande.Filter
		want    []cande.ElementID
	}{
		{"no filters", nil, []cande.ElementID{1, 2, 3, 4, 5, 6}},
		{"material 1", []cande.Filter{cande.MatchMaterial(1)}, []cande.ElementID{1, 2}},
		{"material absent", []cande.Filter{cande.MatchMaterial(77)}, []cande.ElementID{}},
		{"step 1", []cande.Filter{cande.MatchStep(1)}, []cande.ElementID{1, 5, 6}},
		{"beams", []cande.Filter{cande.MatchKinds(cande.KindBeam)}, []cande.ElementID{5, 6}},
		{"step 1 soil", []cande.Filter{cande.MatchStep(1), cande.MatchKinds(cande.KindSoil)}, []cande.ElementID{1}},
		{"material and step disagree", []cande.Filter{cande.MatchMaterial(2), cande.MatchStep(1)}, []cande.ElementID{}},
		{"several kinds", []cande.Filter{cande.MatchKinds(cande.KindBeam, cande.KindInterface)}, []cande.ElementID{5, 6}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := m.ElementsBy(tt.filters...); !slices.Equal(got, tt.want) {
				t.Errorf("ElementsBy() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestElementsByMaterialMatchesField(t *testing.T) {
	m := candetest.Grid()
	for mat := cande.MaterialID(0); mat <= 5; mat++ {
		got := m.ElementsBy(cande.MatchMaterial(mat))
		for _, e := range m.Elements() {
			if (e.Material == mat) != slices.Contains(got, e.ID) {
				t.Errorf("material %d: element %d misclassified", mat, e.ID)
			}
		}
	}
}

func TestSharedNodes(t *testing.T) {
	m := candetest.Grid()
	tests := []struct {
		a, b cande.ElementID
		want []cande.NodeID
	}{
		{5, 1, []cande.NodeID{4, 5}},
		{1, 5, []cande.NodeID{5, 4}},
		{5, 2, []cande.NodeID{5}},
		{1, 4, []cande.NodeID{5}},
		{1, 2, []cande.NodeID{2, 5}},
		{6, 3, []cande.NodeID{5}},
	}
	for _, tt := range tests {
		got, err := m.SharedNodes(tt.a, tt.b)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !slices.Equal(got, tt.want) {
			t.Errorf("SharedNodes(%d, %d) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
	m2 := candetest.Junction()
	got, _ := m2.SharedNodes(2, 3)
	if !slices.Equal(got, []cande.NodeID{10, 22}) {
		t.Errorf("SharedNodes(2, 3) = %v", got)
	}
	if _, err := m.SharedNodes(1, 99); err == nil {
		t.Error("expected UnknownElementError")
	}
}

func TestSharedNodesDisjoint(t *testing.T) {
	m := candetest.Junction()
	if _, err := m.AddNode(30, 9, 9); err != nil {
		t.Fatal(err)
	}
	if _, err := m.AddNode(31, 10, 9); err != nil {
		t.Fatal(err)
	}
	id, err := m.AddElement(cande.Element{Nodes: []cande.NodeID{30, 31}, Material: 2, Step: 1, Data: cande.Beam{}})
	if err != nil {
		t.Fatal(err)
	}
	got, err := m.SharedNodes(1, id)
	if err != nil || len(got) != 0 {
		t.Errorf("SharedNodes = %v, %v; want empty", got, err)
	}
}

func TestAssign(t *testing.T) {
	m := candetest.Grid()
	if n, err := m.Assign([]cande.ElementID{1, 2}, cande.SetMaterial(2)); err != nil || n != 2 {
		t.Fatalf("Assign = %d, %v; want 2 updated", n, err)
	}
	for _, id := range []cande.ElementID{1, 2} {
		e, _ := m.Element(id)
		if e.Material != 2 {
			t.Errorf("element %d material = %d, want 2", id, e.Material)
		}
		if e.Step != int(id) {
			t.Errorf("element %d step changed to %d", id, e.Step)
		}
	}
	if _, err := m.Assign([]cande.ElementID{5}, cande.SetStep(3)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if e, _ := m.Element(5); e.Step != 3 || e.Material != 3 {
		t.Errorf("element 5 = %+v", e)
	}
}

func TestAssignAtomic(t *testing.T) {
	tests := []struct {
		name string
		ids  []cande.ElementID
		opts []cande.AssignOption
		want any
	}{
		{"unknown element", []cande.ElementID{1, 99}, []cande.AssignOption{cande.SetMaterial(2)}, &cande.UnknownElementError{}},
		{"unknown material", []cande.ElementID{1, 2}, []cande.AssignOption{cande.SetMaterial(50)}, &cande.InvalidReferenceError{}},
		{"bad step", []cande.ElementID{1}, []cande.AssignOption{cande.SetStep(0)}, &cande.ValidationError{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := candetest.Grid()
			before := m.Elements()
			_, err := m.Assign(tt.ids, tt.opts...)
			if err == nil {
				t.Fatal("expected error")
			}
			switch tt.want.(type) {
			case *cande.UnknownElementError:
				var e *cande.UnknownElementError
				if !errors.As(err, &e) || e.ID != 99 {
					t.Errorf("got %v", err)
				}
			case *cande.InvalidReferenceError:
				var e *cande.InvalidReferenceError
				if !errors.As(err, &e) {
					t.Errorf("got %v", err)
				}
			case *cande.ValidationError:
				var e *cande.ValidationError
				if !errors.As(err, &e) {
					t.Errorf("got %v", err)
				}
			}
			after := m.Elements()
			for i := range before {
				if before[i].Material != after[i].Material || before[i].Step != after[i].Step {
					t.Errorf("element %d changed by failed assign", before[i].ID)
				}
			}
		})
	}
}

func TestInterfaceMaterialDedup(t *testing.T) {
	m := candetest.Grid()
	a, created, err := m.InterfaceMaterial(0.4, 90)
	if err != nil || !created {
		t.Fatalf("first pair: id=%d created=%v err=%v", a, created, err)
	}
	b, created, _ := m.InterfaceMaterial(0.4, 90.0000001)
	if b != a || created {
		t.Errorf("same pair gave %d (created %v), want %d", b, created, a)
	}
	c, _, _ := m.InterfaceMaterial(0.4, 450)
	if c != a {
		t.Errorf("angle 450 gave %d, want %d", c, a)
	}
	d, _, _ := m.InterfaceMaterial(0.5, 90)
	e, _, _ := m.InterfaceMaterial(0.4, 270)
	if d == a || e == a || d == e {
		t.Errorf("distinct pairs share materials: %d %d %d", a, d, e)
	}
	if a != 1 {
		t.Errorf("first interface material id = %d, want 1", a)
	}
	if _, ok := m.Material(cande.MaterialSoil, a); !ok {
		t.Errorf("soil material %d should still exist alongside interface material %d", a, a)
	}
	mat, _ := m.Material(cande.MaterialInterface, a)
	if mat.Kind != cande.MaterialInterface || mat.Code != cande.InterfaceModelCode || mat.Name != "Inter #1" {
		t.Errorf("material = %+v", mat)
	}
	if _, _, err := m.InterfaceMaterial(1.5, 0); err == nil {
		t.Error("expected friction out of range to fail")
	}
}

func TestCloneIsIndependent(t *testing.T) {
	m := candetest.Grid()
	c := m.Clone()
	if _, err := c.Assign([]cande.ElementID{1}, cande.SetMaterial(3)); err != nil {
		t.Fatal(err)
	}
	if _, err := c.AddNode(0, 9, 9); err != nil {
		t.Fatal(err)
	}
	if e, _ := m.Element(1); e.Material != 1 {
		t.Errorf("clone assign leaked into original")
	}
	if m.NodeCount() != 9 || c.NodeCount() != 10 {
		t.Errorf("node counts = %d, %d", m.NodeCount(), c.NodeCount())
	}
}

func TestBoundsAndMaxStep(t *testing.T) {
	m := candetest.Grid()
	b := m.Bounds()
	if b.MinX != 0 || b.MinY != 0 || b.MaxX != 2 || b.MaxY != 2 {
		t.Errorf("Bounds = %+v", b)
	}
	if s := m.MaxStep(); s != 4 {
		t.Errorf("MaxStep = %d, want 4", s)
	}
}

func TestParseKind(t *testing.T) {
	for in, want := range map[string]cande.Kind{"1D": cande.KindBeam, "2d": cande.KindSoil, "Interface": cande.KindInterface, "beam": cande.KindBeam} {
		got, err := cande.ParseKind(in)
		if err != nil || got != want {
			t.Errorf("ParseKind(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := cande.ParseKind("3D"); err == nil {
		t.Error("expected error for 3D")
	}
}

func TestInvariantsHoldAfterEdits(t *testing.T) {
	m := candetest.Grid()
	if errs := m.Validate(); len(errs) != 0 {
		t.Fatalf("fixture invalid: %v", errs)
	}
	if _, err := synth.New(nil).CreateInterfaces(m, []cande.ElementID{5, 6}, 0.3); err != nil {
		t.Fatal(err)
	}
	if _, err := m.Assign([]cande.ElementID{1, 4}, cande.SetStep(9)); err != nil {
		t.Fatal(err)
	}
	if _, err := m.AddNode(0, 3, 3); err != nil {
		t.Fatal(err)
	}
	if errs := m.Validate(); len(errs) != 0 {
		t.Fatalf("invariants broken: %v", errs)
	}
	for _, id := range m.ElementsBy(cande.MatchKinds(cande.KindInterface)) {
		e, _ := m.Element(id)
		in, _ := e.Interface()
		soil, _ := m.Element(in.Soil)
		if e.Step != soil.Step {
			t.Errorf("interface %d step %d, soil %d has step %d", id, e.Step, in.Soil, soil.Step)
		}
	}
}

func TestAssignSkipsInterfaces(t *testing.T) {
	m := candetest.Grid()
	if _, err := synth.New(nil).CreateInterfaces(m, []cande.ElementID{5, 6}, 0.3); err != nil {
		t.Fatal(err)
	}

	if got := m.ElementsBy(cande.MatchMaterial(1)); !slices.Equal(got, []cande.ElementID{1, 2}) {
		t.Errorf("MatchMaterial(1) = %v, want the soil elements only", got)
	}
	for _, id := range m.ElementsBy(cande.MatchInterfaceMaterial(1)) {
		if e, _ := m.Element(id); e.Kind() != cande.KindInterface {
			t.Errorf("MatchInterfaceMaterial(1) returned %s element %d", e.Kind(), id)
		}
	}

	sel := m.ElementsBy(cande.MatchStep(2))
	if len(m.ElementsBy(cande.MatchStep(2), cande.MatchKinds(cande.KindInterface))) == 0 {
		t.Fatalf("step 2 selection %v holds no interfaces", sel)
	}
	n, err := m.Assign(sel, cande.SetStep(3))
	if err != nil || n != 1 {
		t.Fatalf("Assign(step 2 selection) = %d, %v; want soil 2 updated", n, err)
	}
	for _, id := range sel {
		if e, _ := m.Element(id); e.Step != 3 {
			t.Errorf("element %d step = %d, want 3", id, e.Step)
		}
	}

	all := m.ElementsBy()
	n, err = m.Assign(all, cande.SetMaterial(2))
	if err != nil || n != 6 {
		t.Fatalf("Assign(all) = %d, %v; want 6 beam and soil elements", n, err)
	}
	if errs := m.Validate(); len(errs) != 0 {
		t.Errorf("invariants broken: %v", errs)
	}
}

func TestAddElementOrdersRingCounterClockwise(t *testing.T) {
	m := candetest.Grid()
	id, err := m.AddElement(cande.Element{Nodes: []cande.NodeID{1, 4, 5, 2}, Material: 1, Step: 1, Data: cande.Soil{}})
	if err != nil {
		t.Fatal(err)
	}
	e, _ := m.Element(id)
	if !slices.Equal(e.Nodes, []cande.NodeID{1, 2, 5, 4}) {
		t.Errorf("clockwise quad stored as %v, want [1 2 5 4]", e.Nodes)
	}
	if ccw, _ := m.Element(1); !slices.Equal(ccw.Nodes, []cande.NodeID{1, 2, 5, 4}) {
		t.Errorf("counter-clockwise quad reordered to %v", ccw.Nodes)
	}
}
