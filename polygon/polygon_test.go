package polygon

import (
	"errors"
	"math"
	"testing"

	"github.com/bloodmagesoftware/mapgeo/geometry"
	"go.uber.org/zap/zaptest"
)

// loop turns a point list into closed directed edges.
func loop(pts ...geometry.Point) []geometry.Seg {
	edges := make([]geometry.Seg, len(pts))
	for i := range pts {
		edges[i] = geometry.Seg{Start: pts[i], End: pts[(i+1)%len(pts)]}
	}
	return edges
}

func pt(x, y float64) geometry.Point { return geometry.Pt(x, y) }

type containsCase struct {
	name   string
	p      geometry.Point
	inside bool
}

func checkContains(t *testing.T, p *Polygon, cases []containsCase) {
	t.Helper()
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := p.Contains(tc.p); got != tc.inside {
				t.Errorf("Contains(%v) = %v, want %v", tc.p, got, tc.inside)
			}
		})
	}
}

func checkConvex(t *testing.T, p *Polygon) {
	t.Helper()
	for i, sub := range p.SubPolys() {
		n := len(sub.Vertices)
		if n < 3 {
			t.Errorf("subpoly %d has %d vertices", i, n)
			continue
		}
		for j := 0; j < n; j++ {
			a := sub.Vertices[j].Pos()
			b := sub.Vertices[(j+1)%n].Pos()
			c := sub.Vertices[(j+2)%n].Pos()
			if geometry.AngleBetween(a, b, c) > math.Pi+1e-6 {
				t.Errorf("subpoly %d is not convex at %v", i, b)
			}
		}
	}
}

func TestBuildSquare(t *testing.T) {
	p, err := Build(loop(pt(0, 0), pt(0, 64), pt(64, 64), pt(64, 0)), zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	if len(p.SubPolys()) != 1 {
		t.Fatalf("got %d subpolys, want 1", len(p.SubPolys()))
	}
	if p.TriangleCount() != 2 || len(p.Triangles()) != 2 {
		t.Errorf("got %d triangles, want 2", p.TriangleCount())
	}
	if math.Abs(p.Area()-4096) > 1e-9 {
		t.Errorf("area = %v, want 4096", p.Area())
	}

	checkContains(t, p, []containsCase{
		{"center", pt(32, 32), true},
		{"corner", pt(0, 0), true},
		{"outside", pt(100, 32), false},
	})
}

func TestBuildConcave(t *testing.T) {
	// L shape, clockwise.
	p, err := Build(loop(
		pt(0, 0), pt(0, 64), pt(32, 64), pt(32, 32), pt(64, 32), pt(64, 0),
	), zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	if len(p.SubPolys()) < 2 {
		t.Errorf("concave outline produced %d subpolys", len(p.SubPolys()))
	}
	checkConvex(t, p)
	if math.Abs(p.Area()-3072) > 1e-6 {
		t.Errorf("area = %v, want 3072", p.Area())
	}

	checkContains(t, p, []containsCase{
		{"upper arm", pt(16, 48), true},
		{"lower arm", pt(48, 16), true},
		{"notch", pt(48, 48), false},
	})
}

func TestBuildWithHole(t *testing.T) {
	edges := loop(pt(0, 0), pt(0, 128), pt(128, 128), pt(128, 0))
	// The hole runs counter-clockwise so the sector stays on the right.
	edges = append(edges, loop(pt(32, 32), pt(96, 32), pt(96, 96), pt(32, 96))...)

	p, err := Build(edges, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	checkConvex(t, p)
	if math.Abs(p.Area()-12288) > 1e-6 {
		t.Errorf("area = %v, want 12288", p.Area())
	}

	checkContains(t, p, []containsCase{
		{"ring", pt(16, 16), true},
		{"ring top", pt(64, 112), true},
		{"hole", pt(64, 64), false},
	})
}

func TestBuildIgnoresSisterEdges(t *testing.T) {
	edges := loop(pt(0, 0), pt(0, 64), pt(64, 64), pt(64, 0))
	edges = append(edges,
		geometry.Seg{Start: pt(32, 16), End: pt(32, 48)},
		geometry.Seg{Start: pt(32, 48), End: pt(32, 16)},
	)

	p, err := Build(edges, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if math.Abs(p.Area()-4096) > 1e-9 {
		t.Errorf("area = %v, want 4096", p.Area())
	}
}

func TestBuildClosesOpenEnd(t *testing.T) {
	edges := loop(pt(0, 0), pt(0, 64), pt(64, 64), pt(64, 0))
	edges = edges[:3]

	p, err := Build(edges, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if math.Abs(p.Area()-4096) > 1e-9 {
		t.Errorf("area = %v, want 4096", p.Area())
	}
}

func TestBuildDegenerate(t *testing.T) {
	// Counter-clockwise: the "sector" would be everything outside the square.
	p, err := Build(loop(pt(0, 0), pt(64, 0), pt(64, 64), pt(0, 64)), zaptest.NewLogger(t))
	if !errors.Is(err, ErrDegenerate) {
		t.Fatalf("err = %v, want ErrDegenerate", err)
	}
	if p == nil {
		t.Fatal("degenerate build must still return a polygon")
	}
	if !p.Empty() || p.TriangleCount() != 0 {
		t.Errorf("degenerate polygon has %d triangles", p.TriangleCount())
	}
	if p.Contains(pt(32, 32)) {
		t.Error("empty polygon should contain nothing")
	}
}

func TestBuildEmpty(t *testing.T) {
	p, err := Build(nil, nil)
	if err != nil {
		t.Fatalf("Build(nil): %v", err)
	}
	if !p.Empty() {
		t.Error("polygon from no edges should be empty")
	}
}

func TestTextureCoords(t *testing.T) {
	p, err := Build(loop(pt(0, 0), pt(0, 64), pt(64, 64), pt(64, 0)), nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	find := func(x, y float64) Vertex {
		t.Helper()
		for _, sub := range p.SubPolys() {
			for _, v := range sub.Vertices {
				if v.X == x && v.Y == y {
					return v
				}
			}
		}
		t.Fatalf("vertex (%v, %v) not found", x, y)
		return Vertex{}
	}

	tests := []struct {
		name   string
		params TexParams
		x, y   float64
		tx, ty float64
	}{
		{"default", DefaultTexParams(), 64, 64, 1, -1},
		{"offset", TexParams{ScaleX: 1, ScaleY: 1, OffsetX: 32, Width: 64, Height: 64}, 0, 0, 0.5, 0},
		{"scaled", TexParams{ScaleX: 2, ScaleY: 2, Width: 64, Height: 64}, 64, 0, 0.5, 0},
		{"rotated", TexParams{ScaleX: 1, ScaleY: 1, Rotation: 90, Width: 64, Height: 64}, 64, 0, 0, -1},
		{"texture size", TexParams{ScaleX: 1, ScaleY: 1, Width: 128, Height: 32}, 64, 64, 0.5, -2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p.UpdateTextureCoords(tt.params)
			v := find(tt.x, tt.y)
			if math.Abs(v.TX-tt.tx) > 1e-9 || math.Abs(v.TY-tt.ty) > 1e-9 {
				t.Errorf("tex coord = (%v, %v), want (%v, %v)", v.TX, v.TY, tt.tx, tt.ty)
			}
		})
	}
}
