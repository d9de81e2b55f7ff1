// Package diagram exports a CANDE mesh as an image with gonum/plot.
package diagram

import (
	"fmt"
	"image/color"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"candedit/internal/cande"
	"candedit/internal/geom"
)

// ColorBy selects what the element fill colour encodes.
type ColorBy int

const (
	ByMaterial ColorBy = iota
	ByStep
)

func (c ColorBy) String() string {
	if c == ByStep {
		return "step"
	}
	return "material"
}

func ParseColorBy(s string) (ColorBy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "material", "materials":
		return ByMaterial, nil
	case "step", "steps":
		return ByStep, nil
	}
	return 0, cande.Validationf("unknown colour mode %q, expected material or step", s)
}

// palette is the CANDE material colour table.
var palette = []string{
	"#FF0000", "#FFA500", "#FFFF00", "#00FF00", "#0000FF",
	"#800080", "#D3D3D3", "#00FFFF", "#FF00FF", "#FF4500",
	"#808080", "#FA8072", "#FFFFFF", "#A52A2A", "#CC5500",
	"#A9A9A9", "#8B0000", "#E6E6FA", "#00008B", "#D2B48C",
}

// Hex returns the palette entry for a 1-based material or step number.
// The table repeats past its end.
func Hex(n int) string {
	return palette[(max(n, 1)-1)%len(palette)]
}

// Color is Hex as a color.Color.
func Color(n int) color.Color {
	c, err := colorful.Hex(Hex(n))
	if err != nil {
		return color.Black
	}
	return c
}

// Options control an export. Zero values pick the defaults.
type Options struct {
	Title   string
	ColorBy ColorBy
	Width   vg.Length
	Height  vg.Length
	Labels  bool // element ids at centroids
}

var (
	edgeColor  = color.RGBA{R: 40, G: 40, B: 40, A: 255}
	ifaceColor = color.RGBA{R: 0, G: 0, B: 139, A: 255}
	tickColor  = color.RGBA{R: 255, G: 0, B: 0, A: 255}
)

// Export draws m and saves it to filename. The format follows the
// extension (png, svg, pdf, jpg, eps); a name without one gets ".png".
// It returns the name actually written.
func Export(m *cande.Model, filename string, opts Options) (string, error) {
	if m.ElementCount() == 0 {
		return "", cande.Validationf("mesh has no elements to draw")
	}
	p, err := build(m, opts)
	if err != nil {
		return "", err
	}

	if filepath.Ext(filename) == "" {
		filename += ".png"
	}
	if dir := filepath.Dir(filename); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", err
		}
	}
	w, h := opts.Width, opts.Height
	if w <= 0 {
		w = 8 * vg.Inch
	}
	if h <= 0 {
		h = 6 * vg.Inch
	}
	if err := p.Save(w, h, filename); err != nil {
		return "", fmt.Errorf("export %s: %w", filepath.Base(filename), err)
	}
	return filename, nil
}

func build(m *cande.Model, opts Options) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = opts.Title
	if p.Title.Text == "" {
		p.Title.Text = "CANDE mesh"
	}
	p.X.Label.Text = "X"
	p.Y.Label.Text = "Y"

	key := func(e cande.Element) int {
		if opts.ColorBy == ByStep {
			return e.Step
		}
		return int(e.Material)
	}
	legend := map[int]bool{}
	var labels plotter.XYLabels

	// soil first so beams and interfaces stay visible on top
	for _, kind := range []cande.Kind{cande.KindSoil, cande.KindInterface, cande.KindBeam} {
		for _, id := range m.ElementsBy(cande.MatchKinds(kind)) {
			e, _ := m.Element(id)
			pts, err := m.Points(id)
			if err != nil {
				return nil, err
			}
			xys := make(plotter.XYs, len(pts))
			for i, pt := range pts {
				xys[i] = plotter.XY{X: pt.X, Y: pt.Y}
			}

			switch kind {
			case cande.KindSoil:
				poly, err := plotter.NewPolygon(xys)
				if err != nil {
					return nil, err
				}
				poly.Color = Color(key(e))
				poly.LineStyle.Color = edgeColor
				poly.LineStyle.Width = vg.Points(0.5)
				p.Add(poly)
				if k := key(e); !legend[k] && opts.ColorBy == ByMaterial {
					legend[k] = true
					p.Legend.Add(materialName(m, e), poly)
				}
			case cande.KindInterface:
				poly, err := plotter.NewPolygon(xys)
				if err != nil {
					return nil, err
				}
				poly.Color = nil
				poly.LineStyle.Color = ifaceColor
				poly.LineStyle.Width = vg.Points(0.75)
				poly.LineStyle.Dashes = []vg.Length{vg.Points(3), vg.Points(2)}
				p.Add(poly)
				if tick := orientationTick(e, pts); tick != nil {
					l, err := plotter.NewLine(tick)
					if err != nil {
						return nil, err
					}
					l.LineStyle.Color = tickColor
					l.LineStyle.Width = vg.Points(1)
					p.Add(l)
				}
			case cande.KindBeam:
				l, err := plotter.NewLine(xys)
				if err != nil {
					return nil, err
				}
				l.LineStyle.Color = Color(key(e))
				l.LineStyle.Width = vg.Points(2.5)
				p.Add(l)
			}

			if opts.Labels {
				c := geom.Centroid(pts)
				labels.XYs = append(labels.XYs, plotter.XY{X: c.X, Y: c.Y})
				labels.Labels = append(labels.Labels, fmt.Sprint(e.ID))
			}
		}
	}
	if opts.ColorBy == ByStep {
		for s := 1; s <= m.MaxStep(); s++ {
			if len(m.ElementsBy(cande.MatchStep(s))) == 0 {
				continue
			}
			swatch, err := plotter.NewPolygon(plotter.XYs{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}})
			if err != nil {
				return nil, err
			}
			swatch.Color = Color(s)
			p.Legend.Add(fmt.Sprintf("step %d", s), swatch)
		}
	}
	if len(labels.Labels) > 0 {
		l, err := plotter.NewLabels(labels)
		if err != nil {
			return nil, err
		}
		p.Add(l)
	}

	b := m.Bounds().Pad(0.05)
	p.X.Min, p.X.Max = b.MinX, b.MaxX
	p.Y.Min, p.Y.Max = b.MinY, b.MaxY
	p.Legend.Top = true
	return p, nil
}

func materialName(m *cande.Model, e cande.Element) string {
	if mat, ok := m.MaterialOf(e); ok && mat.Name != "" {
		return fmt.Sprintf("%d %s", mat.ID, mat.Name)
	}
	return fmt.Sprintf("material %d", e.Material)
}

// orientationTick is a short segment from the midpoint of the interface's
// beam edge along its normal angle.
func orientationTick(e cande.Element, pts []geom.Point) plotter.XYs {
	in, ok := e.Interface()
	if !ok || len(pts) < 2 {
		return nil
	}
	a, b := pts[0], pts[1]
	length := b.Sub(a).Length() * 0.2
	if length == 0 {
		return nil
	}
	mid := a.Add(b).MulScalar(0.5)
	rad := in.Angle * math.Pi / 180
	return plotter.XYs{
		{X: mid.X, Y: mid.Y},
		{X: mid.X + length*math.Cos(rad), Y: mid.Y + length*math.Sin(rad)},
	}
}
