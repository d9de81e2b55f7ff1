// Package geom holds the planar geometry used to place interfaces and to hit
// test elements: centroids, normals, polygon containment and distances.
package geom

import (
	"cmp"
	"math"
	"slices"

	v2 "github.com/deadsy/sdfx/vec/v2"
)

// Collinear is the tolerance below which a cross or dot product is treated
// as zero.
const Collinear = 1e-8

// Centroid returns the vertex average of pts.
func Centroid(pts []Point) Point {
	if len(pts) == 0 {
		return Point{}
	}
	var c v2.Vec
	for _, p := range pts {
		c = c.Add(p)
	}
	return c.DivScalar(float64(len(pts)))
}

// SegmentDistance returns the distance from p to the segment ab.
func SegmentDistance(p, a, b Point) float64 {
	ab := b.Sub(a)
	l2 := ab.Dot(ab)
	if l2 == 0 {
		return p.Sub(a).Length()
	}
	t := p.Sub(a).Dot(ab) / l2
	t = math.Max(0, math.Min(1, t))
	return p.Sub(a.Add(ab.MulScalar(t))).Length()
}

// ContainsPoint reports whether p is inside the closed polygon ring, points on
// an edge included. Even-odd rule, so the ring may wind either way.
func ContainsPoint(ring []Point, p Point) bool {
	n := len(ring)
	if n < 3 {
		return false
	}
	inside := false
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		a, b := ring[i], ring[j]
		if SegmentDistance(p, a, b) <= Collinear {
			return true
		}
		if (a.Y > p.Y) != (b.Y > p.Y) {
			x := a.X + (p.Y-a.Y)*(b.X-a.X)/(b.Y-a.Y)
			if p.X < x {
				inside = !inside
			}
		}
	}
	return inside
}

// SignedArea is positive for a counter-clockwise ring.
func SignedArea(ring []Point) float64 {
	var s float64
	for i := range ring {
		a, b := ring[i], ring[(i+1)%len(ring)]
		s += a.X*b.Y - b.X*a.Y
	}
	return s / 2
}

// CCWOrder returns the indices of ring in counter-clockwise order, starting
// from index 0. A simple ring that already winds counter-clockwise comes
// back as 0..n-1. Anything else (clockwise, or a quad whose edges cross) is
// sorted by angle around the centroid.
func CCWOrder(ring []Point) []int {
	idx := make([]int, len(ring))
	for i := range idx {
		idx[i] = i
	}
	if len(ring) < 3 || (SignedArea(ring) > 0 && !selfCrossing(ring)) {
		return idx
	}
	c := Centroid(ring)
	ang := make([]float64, len(ring))
	for i, p := range ring {
		ang[i] = math.Atan2(p.Y-c.Y, p.X-c.X)
	}
	slices.SortStableFunc(idx, func(a, b int) int { return cmp.Compare(ang[a], ang[b]) })
	k := slices.Index(idx, 0)
	return slices.Concat(idx[k:], idx[:k])
}

// selfCrossing reports whether two non-adjacent edges of ring cross.
func selfCrossing(ring []Point) bool {
	n := len(ring)
	for i := range n {
		for j := i + 2; j < n; j++ {
			if i == 0 && j == n-1 {
				continue
			}
			if segmentsCross(ring[i], ring[(i+1)%n], ring[j], ring[(j+1)%n]) {
				return true
			}
		}
	}
	return false
}

// segmentsCross reports a proper crossing of ab and cd. Touching ends do not
// count.
func segmentsCross(a, b, c, d Point) bool {
	side := func(p, q, r Point) float64 { return q.Sub(p).Cross(r.Sub(p)) }
	d1, d2 := side(a, b, c), side(a, b, d)
	d3, d4 := side(c, d, a), side(c, d, b)
	return ((d1 > Collinear && d2 < -Collinear) || (d1 < -Collinear && d2 > Collinear)) &&
		((d3 > Collinear && d4 < -Collinear) || (d3 < -Collinear && d4 > Collinear))
}

// NormalAway returns the unit normal of segment ab that points away from
// `from`. When `from` lies on the line through ab the left normal is
// returned. ok is false for a zero-length segment.
func NormalAway(a, b, from Point) (n Point, ok bool) {
	d := b.Sub(a)
	if d.Length() <= Collinear {
		return Point{}, false
	}
	left := v2.Vec{X: -d.Y, Y: d.X}.Normalize()
	mid := a.Add(b).MulScalar(0.5)
	if left.Dot(mid.Sub(from)) < -Collinear {
		return left.Neg(), true
	}
	return left, true
}

// Degrees returns the direction of v in degrees, normalized to [0, 360).
func Degrees(v Point) float64 {
	return NormalizeDegrees(math.Atan2(v.Y, v.X) * 180 / math.Pi)
}

// NormalizeDegrees folds any angle into [0, 360).
func NormalizeDegrees(d float64) float64 {
	d = math.Mod(d, 360)
	if d < 0 {
		d += 360
	}
	if d >= 360 {
		d = 0
	}
	return d
}

// Quantize rounds v to the nearest multiple of step, where step is a
// negative power of ten such as 1e-3. The result is the float closest to
// the decimal value.
func Quantize(v, step float64) float64 {
	inv := math.Round(1 / step)
	return math.Round(v*inv) / inv
}
