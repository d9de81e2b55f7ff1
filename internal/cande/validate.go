package cande

import (
	"fmt"
	"maps"
	"slices"
)

// Validate checks the model invariants and returns every violation found.
// An empty result means the model is consistent.
func (m *Model) Validate() []error {
	var errs []error
	for _, id := range slices.Sorted(maps.Keys(m.elements)) {
		e := m.elements[id]
		if e.ID != id {
			errs = append(errs, fmt.Errorf("element stored under %d has id %d", id, e.ID))
		}
		for _, n := range e.Nodes {
			if _, ok := m.nodes[n]; !ok {
				errs = append(errs, &InvalidReferenceError{Element: id, Node: n})
			}
		}
		if _, ok := m.materials[materialKindOf(e.Kind())][e.Material]; !ok {
			errs = append(errs, &InvalidReferenceError{Element: id, Material: e.Material})
		}
		if in, ok := e.Interface(); ok && in.Soil != 0 {
			if want := m.interfaceStep(e); e.Step != want {
				errs = append(errs, Validationf("interface %d step %d, want %d from soil %d", id, e.Step, want, in.Soil))
			}
		}
	}
	ifaces := m.materials[MaterialInterface]
	for _, id := range slices.Sorted(maps.Keys(ifaces)) {
		mat := ifaces[id]
		k := keyOf(mat.Friction, mat.Angle)
		owner, ok := m.ifaceMat[k]
		if !ok {
			errs = append(errs, Validationf("interface material %d is not indexed", id))
			continue
		}
		if o, ok := ifaces[owner]; !ok || keyOf(o.Friction, o.Angle) != k {
			errs = append(errs, Validationf("interface pair (%.3f, %.3f) maps to material %d with a different pair", mat.Friction, mat.Angle, owner))
		}
	}
	return errs
}
