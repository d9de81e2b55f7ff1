package geom

import (
	"math"

	"github.com/deadsy/sdfx/sdf"
	v2 "github.com/deadsy/sdfx/vec/v2"
)

// Point is a model-space coordinate.
type Point = v2.Vec

// BBox is an axis-aligned extent in model coordinates.
type BBox struct {
	MinX float64
	MinY float64
	MaxX float64
	MaxY float64
}

// EmptyBBox returns a box that any call to Extend will replace.
func EmptyBBox() BBox {
	return BBox{MinX: math.Inf(1), MinY: math.Inf(1), MaxX: math.Inf(-1), MaxY: math.Inf(-1)}
}

// BoxFromCorners builds the box spanned by two opposite corners in any order.
func BoxFromCorners(a, b Point) BBox {
	return EmptyBBox().Extend(a).Extend(b)
}

// Extend grows the box to include p.
func (b BBox) Extend(p Point) BBox {
	if !b.Valid() {
		return BBox{MinX: p.X, MinY: p.Y, MaxX: p.X, MaxY: p.Y}
	}
	bx := b.Box2().Include(p)
	return BBox{MinX: bx.Min.X, MinY: bx.Min.Y, MaxX: bx.Max.X, MaxY: bx.Max.Y}
}

// Valid reports whether the box has been extended at least once.
func (b BBox) Valid() bool { return b.MinX <= b.MaxX && b.MinY <= b.MaxY }

// HasArea reports whether the box spans a non-zero width and height.
func (b BBox) HasArea() bool { return b.MaxX > b.MinX && b.MaxY > b.MinY }

func (b BBox) Width() float64  { return b.MaxX - b.MinX }
func (b BBox) Height() float64 { return b.MaxY - b.MinY }

// Contains reports whether p lies inside the box or on its border.
func (b BBox) Contains(p Point) bool {
	if !b.Valid() {
		return false
	}
	return b.Box2().Contains(p)
}

// Pad returns the box grown by frac of its larger side on every edge. A
// degenerate box is grown by one unit so it can still be projected.
func (b BBox) Pad(frac float64) BBox {
	if !b.Valid() {
		return b
	}
	d := math.Max(b.Width(), b.Height()) * frac
	if d == 0 {
		d = 1
	}
	return BBox{MinX: b.MinX - d, MinY: b.MinY - d, MaxX: b.MaxX + d, MaxY: b.MaxY + d}
}

// Box2 converts to the sdfx box type.
func (b BBox) Box2() sdf.Box2 {
	return sdf.Box2{Min: v2.Vec{X: b.MinX, Y: b.MinY}, Max: v2.Vec{X: b.MaxX, Y: b.MaxY}}
}
