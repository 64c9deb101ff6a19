package geometry

import (
	"math"
	"testing"
)

func TestLineSide(t *testing.T) {
	// Vertical segment pointing up; its front is +x.
	s := NewSeg(0, 0, 0, 64)

	tests := []struct {
		name string
		p    Point
		want int
	}{
		{"front", Pt(32, 32), 1},
		{"back", Pt(-32, 32), -1},
		{"collinear", Pt(0, 128), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := LineSide(tt.p, s)
			sign := 0
			if got > 0 {
				sign = 1
			} else if got < 0 {
				sign = -1
			}
			if sign != tt.want {
				t.Errorf("LineSide(%v) = %v, want sign %d", tt.p, got, tt.want)
			}
		})
	}
}

func TestDistanceToSegment(t *testing.T) {
	s := NewSeg(0, 0, 10, 0)

	tests := []struct {
		name string
		p    Point
		want float64
	}{
		{"perpendicular", Pt(5, 3), 3},
		{"past end", Pt(13, 4), 5},
		{"before start", Pt(-3, -4), 5},
		{"on segment", Pt(7, 0), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DistanceToSegment(tt.p, s); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("DistanceToSegment(%v) = %v, want %v", tt.p, got, tt.want)
			}
		})
	}
}

func TestSegmentsIntersect(t *testing.T) {
	tests := []struct {
		name   string
		a, b   Seg
		hit    bool
		expect Point
	}{
		{"cross", NewSeg(0, 0, 10, 10), NewSeg(0, 10, 10, 0), true, Pt(5, 5)},
		{"parallel", NewSeg(0, 0, 10, 0), NewSeg(0, 1, 10, 1), false, Point{}},
		{"collinear overlap", NewSeg(0, 0, 10, 0), NewSeg(5, 0, 15, 0), false, Point{}},
		{"endpoint touch", NewSeg(0, 0, 10, 0), NewSeg(10, 0, 10, 10), false, Point{}},
		{"t junction", NewSeg(0, 0, 10, 0), NewSeg(5, 0, 5, 10), false, Point{}},
		{"disjoint", NewSeg(0, 0, 1, 1), NewSeg(5, 0, 6, -1), false, Point{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, ok := SegmentsIntersect(tt.a, tt.b)
			if ok != tt.hit {
				t.Fatalf("SegmentsIntersect hit = %v, want %v", ok, tt.hit)
			}
			if ok && !Equal(p, tt.expect, 1e-9) {
				t.Errorf("intersection = %v, want %v", p, tt.expect)
			}
		})
	}
}

func TestRaySegmentDistance(t *testing.T) {
	s := NewSeg(10, -5, 10, 5)

	d, ok := RaySegmentDistance(Pt(0, 0), Pt(1, 0), s)
	if !ok || math.Abs(d-10) > 1e-9 {
		t.Errorf("ray east: got (%v, %v), want (10, true)", d, ok)
	}

	if _, ok := RaySegmentDistance(Pt(0, 0), Pt(-1, 0), s); ok {
		t.Error("ray west should miss")
	}

	if _, ok := RaySegmentDistance(Pt(0, 0), Pt(0, 1), s); ok {
		t.Error("parallel ray should miss")
	}
}

func TestAngleBetween(t *testing.T) {
	pivot := Pt(0, 0)
	down := Pt(0, -1)

	tests := []struct {
		name string
		next Point
		want float64
	}{
		{"right turn", Pt(1, 0), math.Pi / 2},
		{"straight", Pt(0, 1), math.Pi},
		{"left turn", Pt(-1, 0), 3 * math.Pi / 2},
		{"back", Pt(0, -5), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AngleBetween(down, pivot, tt.next)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("AngleBetween = %v, want %v", got, tt.want)
			}
			if got < 0 || got >= 2*math.Pi {
				t.Errorf("AngleBetween = %v out of [0, 2π)", got)
			}
		})
	}
}

func TestAngleBetweenReversal(t *testing.T) {
	// Swapping prev and next gives the complementary sweep.
	prev, pivot, next := Pt(3, -1), Pt(0, 0), Pt(-2, 4)
	a := AngleBetween(prev, pivot, next)
	b := AngleBetween(next, pivot, prev)
	if math.Abs(a+b-2*math.Pi) > 1e-9 {
		t.Errorf("sweeps %v and %v do not add up to 2π", a, b)
	}
}

func TestRotatePoint(t *testing.T) {
	got := RotatePoint(Pt(1, 1), Pt(2, 1), 90)
	if !Equal(got, Pt(1, 2), 1e-9) {
		t.Errorf("RotatePoint = %v, want (1, 2)", got)
	}
}

func TestSignedArea(t *testing.T) {
	ccw := []Point{Pt(0, 0), Pt(64, 0), Pt(64, 64), Pt(0, 64)}
	if a := SignedArea(ccw); a != 4096 {
		t.Errorf("ccw area = %v, want 4096", a)
	}

	cw := []Point{Pt(0, 0), Pt(0, 64), Pt(64, 64), Pt(64, 0)}
	if a := SignedArea(cw); a != -4096 {
		t.Errorf("cw area = %v, want -4096", a)
	}
}

func TestBBox(t *testing.T) {
	b := EmptyBBox()
	if b.Valid() {
		t.Fatal("empty box should not be valid")
	}
	b.Extend(Pt(1, 2))
	b.Extend(Pt(-3, 5))
	if !b.Valid() {
		t.Fatal("box should be valid after Extend")
	}
	if b.Min != Pt(-3, 2) || b.Max != Pt(1, 5) {
		t.Errorf("box = %+v", b)
	}
	if !b.Contains(Pt(0, 3)) || b.Contains(Pt(2, 3)) {
		t.Error("Contains mismatch")
	}
	if u := b.Union(EmptyBBox()); u != b {
		t.Errorf("union with empty changed box: %+v", u)
	}
}
