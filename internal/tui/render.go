package tui

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"candedit/internal/cande"
	"candedit/internal/geom"
)

// projection maps model coordinates onto the braille microgrid of a w x h
// cell map. One scale serves both axes so the mesh keeps its shape.
type projection struct {
	wMic, hMic int
	scale      float64
	cx, cy     float64
	offX, offY int // pan in micro-pixels
}

func (m Model) projection(w, h int) (projection, bool) {
	if !m.bbox.Valid() || w <= 1 || h <= 1 {
		return projection{}, false
	}
	b := m.bbox
	p := projection{
		wMic: w * 2,
		hMic: h * 4,
		cx:   (b.MinX + b.MaxX) / 2,
		cy:   (b.MinY + b.MaxY) / 2,
		offX: m.offsetX * 2,
		offY: m.offsetY * 4,
	}
	bw, bh := math.Max(b.Width(), 1e-9), math.Max(b.Height(), 1e-9)
	p.scale = math.Min(float64(p.wMic-1)/bw, float64(p.hMic-1)/bh) * m.zoom
	return p, true
}

func (p projection) toMicro(pt geom.Point) (int, int) {
	mx := float64(p.wMic)/2 + (pt.X-p.cx)*p.scale + float64(p.offX)
	my := float64(p.hMic)/2 - (pt.Y-p.cy)*p.scale + float64(p.offY)
	return int(math.Round(mx)), int(math.Round(my))
}

func (p projection) toWorld(mx, my int) geom.Point {
	return geom.Point{
		X: p.cx + (float64(mx)-float64(p.wMic)/2-float64(p.offX))/p.scale,
		Y: p.cy - (float64(my)-float64(p.hMic)/2-float64(p.offY))/p.scale,
	}
}

// cellToWorld returns the model point at the centre of a map cell.
func (m Model) cellToWorld(cx, cy, w, h int) (geom.Point, bool) {
	p, ok := m.projection(w, h)
	if !ok {
		return geom.Point{}, false
	}
	return p.toWorld(cx*2+1, cy*4+2), true
}

// cellTolerance is the model distance covered by one cell, used for beam
// picking.
func (m Model) cellTolerance(w, h int) float64 {
	p, ok := m.projection(w, h)
	if !ok || p.scale == 0 {
		return 0
	}
	return 2 / p.scale
}

// canvas layers, bottom to top
const (
	layerSoil = iota
	layerIface
	layerBeam
	layerHover
	layerSelected
	layerDrag
)

func (m Model) renderMeshMap(w, h int) string {
	blank := strings.Repeat(" ", w)
	lines := make([]string, h)
	for y := range lines {
		lines[y] = blank
	}
	p, ok := m.projection(w, h)
	if !ok || m.deck == nil {
		return strings.Join(lines, "\n")
	}

	cv := newCanvas(w, h, soilStyle, ifaceStyle, beamStyle, hoverStyle, selectedStyle, dragStyle)
	mesh := m.deck.Model
	for _, e := range mesh.Elements() {
		if !m.visible(e.Kind()) {
			continue
		}
		pts, err := mesh.Points(e.ID)
		if err != nil {
			continue
		}
		layer := layerSoil
		switch e.Kind() {
		case cande.KindBeam:
			layer = layerBeam
		case cande.KindInterface:
			layer = layerIface
		}
		switch {
		case m.sel.Contains(e.ID):
			layer = layerSelected
		case m.hovering && m.hoverElem.ok && m.hoverElem.id == e.ID:
			layer = layerHover
		}
		br := cv.layer(layer)

		mic := make([][2]int, len(pts))
		for i, pt := range pts {
			mic[i][0], mic[i][1] = p.toMicro(pt)
		}
		if e.Kind() == cande.KindBeam {
			br.drawLineMicro(mic[0][0], mic[0][1], mic[1][0], mic[1][1])
			continue
		}
		for i := range mic {
			a, b := mic[i], mic[(i+1)%len(mic)]
			br.drawLineMicro(a[0], a[1], b[0], b[1])
		}
		// orientation tick from the middle of the beam edge
		if in, ok := e.Interface(); ok {
			mx, my := (mic[0][0]+mic[1][0])/2, (mic[0][1]+mic[1][1])/2
			rad := in.Angle * math.Pi / 180
			tx := mx + int(math.Round(3*math.Cos(rad)))
			ty := my - int(math.Round(3*math.Sin(rad)))
			br.drawLineMicro(mx, my, tx, ty)
		}
	}

	if m.dragging {
		x0, x1 := min(m.dragX0, m.dragX1)*2, max(m.dragX0, m.dragX1)*2+1
		y0, y1 := min(m.dragY0, m.dragY1)*4, max(m.dragY0, m.dragY1)*4+3
		br := cv.layer(layerDrag)
		br.drawLineMicro(x0, y0, x1, y0)
		br.drawLineMicro(x1, y0, x1, y1)
		br.drawLineMicro(x1, y1, x0, y1)
		br.drawLineMicro(x0, y1, x0, y0)
	}
	return strings.Join(cv.toLines(), "\n")
}

func (m Model) visible(k cande.Kind) bool {
	switch k {
	case cande.KindBeam:
		return m.showBeams
	case cande.KindSoil:
		return m.showSoil
	case cande.KindInterface:
		return m.showIfaces
	}
	return false
}

func (m Model) visibleKinds() []cande.Kind {
	var out []cande.Kind
	for _, k := range []cande.Kind{cande.KindBeam, cande.KindSoil, cande.KindInterface} {
		if m.visible(k) {
			out = append(out, k)
		}
	}
	return out
}

// swatch renders a small block in the palette colour of a material.
func swatch(n int) string {
	return lipgloss.NewStyle().Foreground(materialColor(n)).Render("■")
}
