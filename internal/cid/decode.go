package cid

import (
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strings"

	"candedit/internal/cande"
)

var (
	materialPattern      = regexp.MustCompile(`^\s*(\d+)\s+(\d+)\s+(-?\d+(?:\.\d*)?(?:[eE][-+]?\d+)?)\s*(.*?)\s*$`)
	materialShortPattern = regexp.MustCompile(`^\s*(\d+)\s+(\d+)\s*$`)
)

type parsedNode struct {
	line int
	node cande.Node
}

type parsedElement struct {
	line int
	elem cande.Element
}

type parsedMaterial struct {
	line     int
	mat      cande.Material
	hasIface bool
}

// Decode reads a deck from r.
func Decode(r io.Reader, opts ...Option) (*Deck, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	d := newDeck(cande.New(), opts)
	if err := d.decode(string(data)); err != nil {
		return nil, err
	}
	return d, nil
}

func perr(line int, field string, err error) error {
	return &cande.ParseError{Line: line, Field: field, Err: err}
}

func (d *Deck) decode(src string) error {
	var (
		nodes []parsedNode
		elems []parsedElement
		mats  []*parsedMaterial
		cur   *parsedMaterial
	)
	lines := strings.SplitAfter(src, "\n")
	if n := len(lines); n > 0 && lines[n-1] == "" {
		lines = lines[:n-1]
	}
	if len(lines) > 0 && strings.HasSuffix(lines[0], "\r\n") {
		d.eol = "\r\n"
	}

	recs := make([]record, 0, len(lines))
	for i, raw := range lines {
		n := i + 1
		text := strings.TrimRight(raw, "\r\n")
		rec := record{text: text, eol: raw[len(text):]}
		tag, rest, ok := marker(text)
		if ok && !strings.HasPrefix(tag, "D-") {
			cur = nil
		}
		switch {
		case !ok:
		case tag == "C-1.L3":
			rec.kind = recHeader
		case tag == "C-2.L3":
			rec.kind = recControl
		case tag == "C-3.L3":
			last, body := flagged(rest)
			node, err := parseNode(body)
			if err != nil {
				return perr(n, "node", err)
			}
			rec.kind, rec.id, rec.last = recNode, int(node.ID), last
			nodes = append(nodes, parsedNode{line: n, node: node})
		case tag == "C-4.L3":
			last, body := flagged(rest)
			e, err := parseElement(body)
			if err != nil {
				return perr(n, "element", err)
			}
			rec.kind, rec.id, rec.last = recElement, int(e.ID), last
			elems = append(elems, parsedElement{line: n, elem: e})
		case strings.HasPrefix(tag, "C-5"):
			rec.kind = recLoadStep
			rec.last, _ = flagged(rest)
		case tag == "D-1":
			if cur != nil && cur.mat.Kind == cande.MaterialInterface && !cur.hasIface {
				return perr(cur.line, "material", fmt.Errorf("interface material %d has no D-2.Interface record", cur.mat.ID))
			}
			last, body := flagged(rest)
			mat, err := parseMaterial(body)
			if err != nil {
				return perr(n, "material", err)
			}
			rec.kind, rec.id, rec.table, rec.last = recMaterial, int(mat.ID), mat.Kind, last
			cur = &parsedMaterial{line: n, mat: mat}
			mats = append(mats, cur)
		case tag == "D-2.Interface":
			if cur == nil || cur.mat.Kind != cande.MaterialInterface || cur.hasIface {
				return perr(n, "material", fmt.Errorf("D-2.Interface record without an interface D-1 record"))
			}
			angle, friction, err := parseInterfaceProps(rest)
			if err != nil {
				return perr(n, "material", err)
			}
			cur.mat.Angle, cur.mat.Friction = angle, friction
			cur.hasIface = true
			rec.kind, rec.id, rec.table = recProperty, int(cur.mat.ID), cur.mat.Kind
		case strings.HasPrefix(tag, "D-") && cur != nil:
			if cur.mat.Kind == cande.MaterialSoil {
				cur.mat.Props = append(cur.mat.Props, text)
			}
			rec.kind, rec.id, rec.table = recProperty, int(cur.mat.ID), cur.mat.Kind
		}
		recs = append(recs, rec)
	}
	if cur != nil && cur.mat.Kind == cande.MaterialInterface && !cur.hasIface {
		return perr(cur.line, "material", fmt.Errorf("interface material %d has no D-2.Interface record", cur.mat.ID))
	}

	m := d.Model
	for _, p := range nodes {
		if _, err := m.AddNode(p.node.ID, p.node.X, p.node.Y); err != nil {
			return perr(p.line, "node", err)
		}
	}
	for _, p := range mats {
		if _, err := m.AddMaterial(p.mat); err != nil {
			return perr(p.line, "material", err)
		}
	}
	for _, p := range elems {
		e := p.elem
		if in, ok := e.Interface(); ok {
			if mat, ok := m.Material(cande.MaterialInterface, e.Material); ok {
				in.Friction, in.Angle = mat.Friction, mat.Angle
				e.Data = in
			}
		}
		if _, err := m.AddElement(e); err != nil {
			return perr(p.line, "element", err)
		}
	}
	bridged := m.InferBridges()

	d.rebase(recs)
	d.Log.Debug("deck decoded", slog.Int("lines", len(recs)), slog.Int("nodes", len(nodes)),
		slog.Int("elements", len(elems)), slog.Int("materials", len(mats)), slog.Int("bridged", bridged))
	return nil
}

// parseNode reads "id code x y". Whitespace separated fields are tried
// first; fixed columns cover values that run together.
func parseNode(body string) (cande.Node, error) {
	f := strings.Fields(body)
	if len(f) >= 4 {
		if id, err := ints(f[:1]); err == nil {
			if xy, err := floats(f[2:4]); err == nil {
				return cande.Node{ID: cande.NodeID(id[0]), X: xy[0], Y: xy[1]}, nil
			}
		}
	}
	c := fixed(body, 4, 5, 10, 10)
	id, err := ints(c[:1])
	if err != nil {
		return cande.Node{}, err
	}
	xy, err := floats(c[2:4])
	if err != nil {
		return cande.Node{}, err
	}
	return cande.Node{ID: cande.NodeID(id[0]), X: xy[0], Y: xy[1]}, nil
}

// parseElement reads "id n1 n2 n3 n4 material step [class]" where unused
// node slots hold 0.
func parseElement(body string) (cande.Element, error) {
	v, err := elementFields(body)
	if err != nil {
		return cande.Element{}, err
	}
	e := cande.Element{ID: cande.ElementID(v[0]), Material: cande.MaterialID(v[5]), Step: v[6]}
	for _, n := range v[1:5] {
		if n != 0 {
			e.Nodes = append(e.Nodes, cande.NodeID(n))
		}
	}
	switch v[7] {
	case classInterface:
		e.Data = cande.Interface{}
		if len(e.Nodes) < 3 {
			return e, fmt.Errorf("interface element %d has %d nodes", e.ID, len(e.Nodes))
		}
	case classNormal:
		switch len(e.Nodes) {
		case 2:
			e.Data = cande.Beam{}
		case 3, 4:
			e.Data = cande.Soil{}
		default:
			return e, fmt.Errorf("element %d has %d nodes", e.ID, len(e.Nodes))
		}
	default:
		return e, fmt.Errorf("element %d has unknown type tag %d", e.ID, v[7])
	}
	return e, nil
}

// C-4 body layout: %4d id, then seven %5d fields, the last the class.
const (
	elementWidth = 4 + 7*5
	classWidth   = 5
)

// elementFields reads the eight C-4 values. Seven whitespace fields mean a
// record without a class column, which is only believed when the line is too
// short to hold one; otherwise fields have run together and the fixed
// columns decide, as long as the line has the canonical width.
func elementFields(body string) ([]int, error) {
	body = strings.TrimRight(body, " \t")
	f := strings.Fields(body)
	if len(f) == 8 {
		if v, err := ints(f); err == nil {
			return v, nil
		}
	}
	if len(f) == 7 && len(body) <= elementWidth-classWidth {
		if v, err := ints(f); err == nil {
			return append(v, classNormal), nil
		}
	}
	if len(body) > elementWidth {
		return nil, fmt.Errorf("fields run together in %q", strings.TrimSpace(body))
	}
	c := fixed(body, 4, 5, 5, 5, 5, 5, 5, 5)
	if c[7] == "" {
		c[7] = "0"
	}
	return ints(c)
}

// parseMaterial reads a D-1 body: id, model code, density and name.
func parseMaterial(body string) (cande.Material, error) {
	var mat cande.Material
	if g := materialPattern.FindStringSubmatch(body); g != nil {
		v, err := ints(g[1:3])
		if err != nil {
			return mat, err
		}
		dens, err := floats(g[3:4])
		if err != nil {
			return mat, err
		}
		mat = cande.Material{ID: cande.MaterialID(v[0]), Code: v[1], Density: dens[0], Name: g[4]}
	} else if g := materialShortPattern.FindStringSubmatch(body); g != nil {
		v, err := ints(g[1:3])
		if err != nil {
			return mat, err
		}
		mat = cande.Material{ID: cande.MaterialID(v[0]), Code: v[1]}
	} else {
		c := fixed(body, 4, 5, 10, 20)
		v, err := ints(c[:2])
		if err != nil {
			return mat, err
		}
		dens := 0.0
		if c[2] != "" {
			fs, err := floats(c[2:3])
			if err != nil {
				return mat, err
			}
			dens = fs[0]
		}
		mat = cande.Material{ID: cande.MaterialID(v[0]), Code: v[1], Density: dens, Name: c[3]}
	}
	if mat.ID < 1 {
		return mat, fmt.Errorf("material id %d must be positive", mat.ID)
	}
	if mat.Code == cande.InterfaceModelCode {
		mat.Kind = cande.MaterialInterface
	}
	return mat, nil
}

// parseInterfaceProps reads "angle friction" from a D-2.Interface body.
func parseInterfaceProps(body string) (angle, friction float64, err error) {
	f := strings.Fields(body)
	if len(f) < 2 {
		f = fixed(body, 10, 10)
	}
	v, err := floats(f[:2])
	if err != nil {
		return 0, 0, err
	}
	return v[0], v[1], nil
}
