// Package candetest builds small meshes for tests.
package candetest

import "candedit/internal/cande"

// Grid is a 2x2 block of quads with two beams along the middle row:
//
//	7---8---9
//	| 3 | 4 |
//	4===5===6   beams 5 (4-5) and 6 (5-6)
//	| 1 | 2 |
//	1---2---3
//
// Soil steps are 1..4 by element id, soil materials 1 and 2, beam material 3.
func Grid() *cande.Model {
	m := cande.New()
	coords := [][2]float64{{0, 0}, {1, 0}, {2, 0}, {0, 1}, {1, 1}, {2, 1}, {0, 2}, {1, 2}, {2, 2}}
	for i, c := range coords {
		must(m.AddNode(cande.NodeID(i+1), c[0], c[1]))
	}
	must(m.AddMaterial(cande.Material{ID: 1, Code: 1, Name: "Soil A"}))
	must(m.AddMaterial(cande.Material{ID: 2, Code: 1, Name: "Soil B"}))
	must(m.AddMaterial(cande.Material{ID: 3, Code: 1, Name: "Pipe"}))
	soil := [][]cande.NodeID{{1, 2, 5, 4}, {2, 3, 6, 5}, {4, 5, 8, 7}, {5, 6, 9, 8}}
	for i, ns := range soil {
		mat := cande.MaterialID(1)
		if i >= 2 {
			mat = 2
		}
		must(m.AddElement(cande.Element{ID: cande.ElementID(i + 1), Nodes: ns, Material: mat, Step: i + 1, Data: cande.Soil{}}))
	}
	must(m.AddElement(cande.Element{ID: 5, Nodes: []cande.NodeID{4, 5}, Material: 3, Step: 1, Data: cande.Beam{}}))
	must(m.AddElement(cande.Element{ID: 6, Nodes: []cande.NodeID{5, 6}, Material: 3, Step: 1, Data: cande.Beam{}}))
	return m
}

// Junction is a beam 1 on nodes 10-11 whose start node touches two soil
// quads: 2 below (step 3) and 3 above (step 5).
//
//	24---23
//	| 3  |
//	22---10===11
//	| 2  |
//	20---21
func Junction() *cande.Model {
	m := cande.New()
	nodes := map[cande.NodeID][2]float64{
		10: {0, 0}, 11: {2, 0}, 20: {-2, -2}, 21: {0, -2}, 22: {-2, 0}, 23: {0, 2}, 24: {-2, 2},
	}
	for _, id := range []cande.NodeID{10, 11, 20, 21, 22, 23, 24} {
		must(m.AddNode(id, nodes[id][0], nodes[id][1]))
	}
	must(m.AddMaterial(cande.Material{ID: 1, Code: 1, Name: "Backfill"}))
	must(m.AddMaterial(cande.Material{ID: 2, Code: 1, Name: "Steel"}))
	must(m.AddElement(cande.Element{ID: 1, Nodes: []cande.NodeID{10, 11}, Material: 2, Step: 1, Data: cande.Beam{}}))
	must(m.AddElement(cande.Element{ID: 2, Nodes: []cande.NodeID{20, 21, 10, 22}, Material: 1, Step: 3, Data: cande.Soil{}}))
	must(m.AddElement(cande.Element{ID: 3, Nodes: []cande.NodeID{22, 10, 23, 24}, Material: 1, Step: 5, Data: cande.Soil{}}))
	return m
}

func must[T any](_ T, err error) {
	if err != nil {
		panic(err)
	}
}
