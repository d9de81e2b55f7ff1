package geom

import (
	"math"
	"slices"
	"testing"
)

func TestNormalAway(t *testing.T) {
	tests := []struct {
		name    string
		a, b    Point
		from    Point
		wantDeg float64
	}{
		{"soil below horizontal beam", Point{X: 0, Y: 1}, Point{X: 1, Y: 1}, Point{X: 0.5, Y: 0.5}, 90},
		{"soil above horizontal beam", Point{X: 0, Y: 1}, Point{X: 1, Y: 1}, Point{X: 0.5, Y: 1.5}, 270},
		{"soil right of vertical beam", Point{X: 0, Y: 0}, Point{X: 0, Y: 1}, Point{X: 1, Y: 0.5}, 180},
		{"soil left of vertical beam", Point{X: 0, Y: 0}, Point{X: 0, Y: 1}, Point{X: -1, Y: 0.5}, 0},
		{"centroid on the beam line", Point{X: 0, Y: 0}, Point{X: 1, Y: 0}, Point{X: 3, Y: 0}, 90},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, ok := NormalAway(tt.a, tt.b, tt.from)
			if !ok {
				t.Fatalf("unexpected degenerate segment")
			}
			if got := Degrees(n); math.Abs(got-tt.wantDeg) > 1e-9 {
				t.Errorf("Degrees() = %v, want %v", got, tt.wantDeg)
			}
		})
	}
}

func TestNormalAwayZeroLength(t *testing.T) {
	if _, ok := NormalAway(Point{X: 1, Y: 1}, Point{X: 1, Y: 1}, Point{}); ok {
		t.Fatal("expected zero-length segment to be rejected")
	}
}

func TestNormalizeDegrees(t *testing.T) {
	tests := []struct{ in, want float64 }{
		{0, 0}, {360, 0}, {-90, 270}, {725, 5}, {-720, 0}, {359.5, 359.5},
	}
	for _, tt := range tests {
		if got := NormalizeDegrees(tt.in); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("NormalizeDegrees(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestContainsPoint(t *testing.T) {
	square := []Point{{X: 0, Y: 0}, {X: 2, Y: 0}, {X: 2, Y: 2}, {X: 0, Y: 2}}
	tests := []struct {
		name string
		p    Point
		want bool
	}{
		{"inside", Point{X: 1, Y: 1}, true},
		{"outside", Point{X: 3, Y: 1}, false},
		{"on edge", Point{X: 2, Y: 1}, true},
		{"on vertex", Point{X: 0, Y: 0}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ContainsPoint(square, tt.p); got != tt.want {
				t.Errorf("ContainsPoint(%v) = %v, want %v", tt.p, got, tt.want)
			}
		})
	}
}

func TestSegmentDistance(t *testing.T) {
	a, b := Point{X: 0, Y: 0}, Point{X: 4, Y: 0}
	if d := SegmentDistance(Point{X: 2, Y: 3}, a, b); d != 3 {
		t.Errorf("mid distance = %v, want 3", d)
	}
	if d := SegmentDistance(Point{X: 7, Y: 4}, a, b); d != 5 {
		t.Errorf("end distance = %v, want 5", d)
	}
}

func TestBBox(t *testing.T) {
	b := EmptyBBox()
	if b.Valid() {
		t.Fatal("empty box reported valid")
	}
	b = b.Extend(Point{X: 1, Y: 2}).Extend(Point{X: -1, Y: 5})
	want := BBox{MinX: -1, MinY: 2, MaxX: 1, MaxY: 5}
	if b != want {
		t.Fatalf("Extend = %+v, want %+v", b, want)
	}
	if !b.Contains(Point{X: 0, Y: 3}) || b.Contains(Point{X: 2, Y: 3}) {
		t.Error("Contains gave the wrong answer")
	}
	if got := BoxFromCorners(Point{X: 3, Y: 0}, Point{X: 0, Y: 3}); got != (BBox{MaxX: 3, MaxY: 3}) {
		t.Errorf("BoxFromCorners = %+v", got)
	}
}

func TestCentroidAndArea(t *testing.T) {
	ring := []Point{{X: 0, Y: 0}, {X: 2, Y: 0}, {X: 2, Y: 2}, {X: 0, Y: 2}}
	if c := Centroid(ring); c != (Point{X: 1, Y: 1}) {
		t.Errorf("Centroid = %v", c)
	}
	if a := SignedArea(ring); a != 4 {
		t.Errorf("SignedArea = %v, want 4", a)
	}
}

func TestCCWOrder(t *testing.T) {
	tests := []struct {
		name string
		ring []Point
		want []int
	}{
		{"ccw square", []Point{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}, {X: 0, Y: 1}}, []int{0, 1, 2, 3}},
		{"cw square", []Point{{X: 0, Y: 0}, {X: 0, Y: 1}, {X: 1, Y: 1}, {X: 1, Y: 0}}, []int{0, 3, 2, 1}},
		{"cw square from another corner", []Point{{X: 1, Y: 1}, {X: 1, Y: 0}, {X: 0, Y: 0}, {X: 0, Y: 1}}, []int{0, 3, 2, 1}},
		{"bow-tie", []Point{{X: 0, Y: 0}, {X: 1, Y: 1}, {X: 1, Y: 0}, {X: 0, Y: 1}}, []int{0, 2, 1, 3}},
		{"bow-tie with positive area", []Point{{X: 0, Y: 0}, {X: 3, Y: 0}, {X: 0, Y: 1}, {X: 1, Y: 1}}, []int{0, 1, 3, 2}},
		{"cw triangle", []Point{{X: 0, Y: 0}, {X: 0, Y: 1}, {X: 1, Y: 0}}, []int{0, 2, 1}},
		{"ccw triangle", []Point{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 0, Y: 1}}, []int{0, 1, 2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CCWOrder(tt.ring)
			if !slices.Equal(got, tt.want) {
				t.Fatalf("CCWOrder = %v, want %v", got, tt.want)
			}
			ordered := make([]Point, len(got))
			for i, j := range got {
				ordered[i] = tt.ring[j]
			}
			if SignedArea(ordered) <= 0 {
				t.Errorf("reordered ring %v is not counter-clockwise", ordered)
			}
		})
	}
}

func TestQuantize(t *testing.T) {
	tests := []struct{ in, want float64 }{
		{90.00000000000001, 90}, {0.30000000000000004, 0.3}, {12.3456, 12.346}, {-0.0004, 0},
	}
	for _, tt := range tests {
		if got := Quantize(tt.in, 1e-3); got != tt.want {
			t.Errorf("Quantize(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
