package cid

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"slices"
	"strconv"
	"strings"

	"candedit/internal/cande"
)

// Encode writes the deck to w. Records that still match the model are
// written as read; changed elements are rewritten in canonical layout and
// new nodes, elements and materials are appended to their groups.
func (d *Deck) Encode(w io.Writer) error {
	return d.write(w, d.render())
}

func (d *Deck) write(w io.Writer, recs []record) error {
	bw := bufio.NewWriter(w)
	for i, r := range recs {
		eol := r.eol
		if eol == "" && i < len(recs)-1 {
			eol = d.eol
		}
		if _, err := bw.WriteString(r.text + eol); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// render lays out the records the model currently needs.
func (d *Deck) render() []record {
	m := d.Model

	var newNodes []cande.Node
	for _, n := range m.Nodes() {
		if !d.nodes[n.ID] {
			newNodes = append(newNodes, n)
		}
	}
	var newElems []cande.Element
	for _, e := range m.Elements() {
		if _, ok := d.elements[e.ID]; !ok {
			newElems = append(newElems, e)
		}
	}
	var newMats []cande.Material
	for _, mat := range m.Materials() {
		if !d.materials[mat.Kind][mat.ID] {
			newMats = append(newMats, mat)
		}
	}
	dirty := len(newNodes)+len(newElems)+len(newMats) > 0

	lastNode, lastElem, lastD, lastD1, lastC5 := -1, -1, -1, -1, -1
	for i, r := range d.records {
		switch r.kind {
		case recNode:
			lastNode = i
		case recElement:
			lastElem = i
		case recMaterial:
			lastD, lastD1 = i, i
		case recProperty:
			lastD = i
		case recLoadStep:
			lastC5 = i
		}
	}

	clearFlag := make(map[int]bool)
	// groups appended after a record index; -1 is the end of the deck
	after := make(map[int][]record)

	if len(newNodes) > 0 {
		last := lastNode < 0 || d.records[lastNode].last
		if lastNode >= 0 {
			clearFlag[lastNode] = d.records[lastNode].last
		}
		var recs []record
		for i, n := range newNodes {
			recs = append(recs, record{
				text: nodePrefix + flagChar(last && i == len(newNodes)-1) + fmt.Sprintf("%4d  000%10.3f%10.3f", n.ID, n.X, n.Y),
				eol:  d.eol, kind: recNode, id: int(n.ID), last: last && i == len(newNodes)-1,
			})
		}
		after[lastNode] = append(after[lastNode], recs...)
	}

	if len(newElems) > 0 {
		anchor := lastElem
		if anchor < 0 {
			anchor = lastNode
		}
		last := lastElem < 0 || d.records[lastElem].last
		if lastElem >= 0 {
			clearFlag[lastElem] = d.records[lastElem].last
		}
		var recs []record
		for i, e := range newElems {
			l := last && i == len(newElems)-1
			recs = append(recs, record{
				text: elementPrefix + flagChar(l) + elementBody(e),
				eol:  d.eol, kind: recElement, id: int(e.ID), last: l,
			})
		}
		after[anchor] = append(after[anchor], recs...)
	}

	if len(newMats) > 0 {
		anchor := lastD
		for _, a := range []int{lastC5, lastElem, lastNode} {
			if anchor < 0 {
				anchor = a
			}
		}
		last := lastD1 < 0 || d.records[lastD1].last
		if lastD1 >= 0 {
			clearFlag[lastD1] = d.records[lastD1].last
		}
		var recs []record
		for i, mat := range newMats {
			recs = append(recs, materialRecords(mat, last && i == len(newMats)-1, d.eol)...)
		}
		after[anchor] = append(after[anchor], recs...)
	}

	out := make([]record, 0, len(d.records)+len(newNodes)+len(newElems)+2*len(newMats))
	for i, r := range d.records {
		if clearFlag[i] {
			r.text = withFlag(r.text, false)
			r.last = false
		}
		switch r.kind {
		case recElement:
			e, ok := m.Element(cande.ElementID(r.id))
			if ok && !d.elements[e.ID].matches(e) {
				prefix := r.text[:strings.Index(r.text, "!!")+2]
				r.text = prefix + flagChar(r.last) + elementBody(e)
				dirty = true
			}
		}
		out = append(out, r)
		out = append(out, after[i]...)
	}
	out = append(out, after[-1]...)

	if dirty {
		for i, r := range out {
			if r.kind == recControl {
				out[i].text = d.control(r.text)
			}
		}
	}
	return out
}

func elementBody(e cande.Element) string {
	var n [4]cande.NodeID
	copy(n[:], e.Nodes)
	class := classNormal
	if e.Kind() == cande.KindInterface {
		class = classInterface
	}
	return fmt.Sprintf("%4d%5d%5d%5d%5d%5d%5d%5d", e.ID, n[0], n[1], n[2], n[3], e.Material, e.Step, class)
}

func materialRecords(mat cande.Material, last bool, eol string) []record {
	dens := strconv.FormatFloat(mat.Density, 'f', -1, 64)
	recs := []record{{
		text: materialPrefix + flagChar(last) + fmt.Sprintf("%4d%5d%10s%20s", mat.ID, mat.Code, dens, mat.Name),
		eol:  eol, kind: recMaterial, id: int(mat.ID), table: mat.Kind, last: last,
	}}
	if mat.Kind == cande.MaterialInterface {
		return append(recs, record{
			text: ifacePrefix + fmt.Sprintf("%10.3f%10.3f", mat.Angle, mat.Friction),
			eol:  eol, kind: recProperty, id: int(mat.ID), table: mat.Kind,
		})
	}
	for _, p := range mat.Props {
		recs = append(recs, record{text: p, eol: eol, kind: recProperty, id: int(mat.ID), table: mat.Kind})
	}
	return recs
}

// C-2 field positions, each five columns wide.
const (
	ctlMaxStep        = 0
	ctlNodes          = 5
	ctlElements       = 6
	ctlSoilMaterials  = 8
	ctlIfaceMaterials = 9
	ctlWidth          = 5
)

// control brings the counts on a C-2 line up to date with the model.
// Maximum step and material counts only grow.
func (d *Deck) control(text string) string {
	i := strings.Index(text, "!!")
	prefix, rest := text[:i+2], text[i+2:]
	n := len(rest) / ctlWidth
	if n <= ctlIfaceMaterials {
		d.Log.Warn("C-2 record too short, counts left as read", slog.String("line", text))
		return text
	}
	fields := make([]string, n)
	for k := range fields {
		fields[k] = rest[k*ctlWidth : (k+1)*ctlWidth]
	}

	m := d.Model
	var soilMax, ifaceMax cande.MaterialID
	for _, e := range m.Elements() {
		if e.Kind() == cande.KindInterface {
			ifaceMax = max(ifaceMax, e.Material)
		} else {
			soilMax = max(soilMax, e.Material)
		}
	}
	want := map[int]func(old int) int{
		ctlMaxStep:        func(old int) int { return max(old, m.MaxStep()) },
		ctlNodes:          func(int) int { return m.NodeCount() },
		ctlElements:       func(int) int { return m.ElementCount() },
		ctlSoilMaterials:  func(old int) int { return max(old, int(soilMax)) },
		ctlIfaceMaterials: func(old int) int { return max(old, int(ifaceMax)) },
	}
	for _, k := range slices.Sorted(maps.Keys(want)) {
		old, err := strconv.Atoi(strings.TrimSpace(fields[k]))
		if err != nil {
			d.Log.Warn("C-2 field is not an integer, counts left as read", slog.Int("field", k), slog.String("line", text))
			return text
		}
		if v := want[k](old); v != old {
			fields[k] = fmt.Sprintf("%5d", v)
		}
	}
	return prefix + strings.Join(fields, "") + rest[n*ctlWidth:]
}
