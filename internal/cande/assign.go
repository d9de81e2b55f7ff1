package cande

type assignment struct {
	material    MaterialID
	setMaterial bool
	step        int
	setStep     bool
}

// AssignOption names a field for Assign to change.
type AssignOption func(*assignment)

// SetMaterial changes the material id.
func SetMaterial(id MaterialID) AssignOption {
	return func(a *assignment) { a.material, a.setMaterial = id, true }
}

// SetStep changes the construction step.
func SetStep(step int) AssignOption {
	return func(a *assignment) { a.step, a.setStep = step, true }
}

// Assign updates material and/or step on the listed beam and soil elements
// and returns how many it updated. Fields without an option are left alone.
// Interfaces in ids are skipped: their material and step are derived from
// the junction, and a step change on a 2D element is carried to the
// interfaces that bridge it. Duplicate ids count once.
func (m *Model) Assign(ids []ElementID, opts ...AssignOption) (int, error) {
	var a assignment
	for _, o := range opts {
		o(&a)
	}
	targets := make([]ElementID, 0, len(ids))
	seen := make(map[ElementID]bool, len(ids))
	for _, id := range ids {
		e, ok := m.elements[id]
		if !ok {
			return 0, &UnknownElementError{ID: id}
		}
		if e.Kind() == KindInterface || seen[id] {
			continue
		}
		seen[id] = true
		if a.setMaterial {
			if _, ok := m.materials[MaterialSoil][a.material]; !ok {
				return 0, &InvalidReferenceError{Element: id, Material: a.material}
			}
		}
		targets = append(targets, id)
	}
	if a.setStep && a.step < 1 {
		return 0, Validationf("step %d must be at least 1", a.step)
	}

	for _, id := range targets {
		e := m.elements[id]
		if a.setMaterial {
			e.Material = a.material
		}
		if a.setStep {
			e.Step = a.step
			if e.Kind() == KindSoil {
				for _, iid := range m.bridging(id) {
					m.elements[iid].Step = m.interfaceStep(m.elements[iid])
				}
			}
		}
	}
	return len(targets), nil
}

// interfaceStep is the smallest step among the 2D elements e bridges. An
// interface without a known junction keeps its own step.
func (m *Model) interfaceStep(e *Element) int {
	in, ok := e.Interface()
	if !ok || in.Soil == 0 {
		return e.Step
	}
	soil, ok := m.elements[in.Soil]
	if !ok {
		return e.Step
	}
	return soil.Step
}
