// Package polygon turns a sector boundary into convex sub-polygons that can
// be drawn as triangle fans and tested for point containment.
package polygon

import (
	"errors"

	"github.com/bloodmagesoftware/mapgeo/geometry"
	"go.uber.org/zap"
)

// ErrDegenerate is returned when the boundary could not be fully split into
// closed convex pieces. The polygon returned alongside it is still usable,
// it just covers less than the whole sector.
var ErrDegenerate = errors.New("degenerate polygon")

// Vertex is a polygon corner with its texture coordinate.
type Vertex struct {
	X, Y   float64
	TX, TY float64
}

// Pos returns the vertex position.
func (v Vertex) Pos() geometry.Point {
	return geometry.Pt(v.X, v.Y)
}

// SubPoly is one convex piece, wound clockwise (interior on the right of
// every edge).
type SubPoly struct {
	Vertices []Vertex
	BBox     geometry.BBox
}

// Polygon is the triangulation of one sector.
type Polygon struct {
	subs []SubPoly
	bbox geometry.BBox
	tex  TexParams
}

// Build splits the area enclosed by edges into convex sub-polygons. Every
// edge must be directed so that the area it bounds lies on its right, which
// is how sector sides are oriented (front sides v1→v2, back sides v2→v1).
func Build(edges []geometry.Seg, log *zap.Logger) (*Polygon, error) {
	if log == nil {
		log = zap.NewNop()
	}

	s := newSplitter(log)
	for _, e := range edges {
		s.addEdge(e.Start, e.End, false)
	}
	s.removeSisterPairs()
	s.closeOpenEnds()
	splitErr := s.splitConcave()
	outlines, traceErr := s.convexOutlines()

	p := &Polygon{bbox: geometry.EmptyBBox(), tex: DefaultTexParams()}
	for _, outline := range outlines {
		sub := SubPoly{Vertices: make([]Vertex, len(outline)), BBox: geometry.EmptyBBox()}
		for i, pt := range outline {
			sub.Vertices[i] = Vertex{X: pt.X, Y: pt.Y}
			sub.BBox.Extend(pt)
		}
		p.bbox = p.bbox.Union(sub.BBox)
		p.subs = append(p.subs, sub)
	}
	p.UpdateTextureCoords(p.tex)

	if err := errors.Join(splitErr, traceErr); err != nil {
		log.Warn("polygon split incomplete",
			zap.Int("edges", len(edges)),
			zap.Int("subpolys", len(p.subs)),
			zap.Error(err))
		return p, err
	}
	return p, nil
}

// SubPolys returns the convex pieces.
func (p *Polygon) SubPolys() []SubPoly {
	return p.subs
}

// Empty reports whether the polygon has nothing to draw.
func (p *Polygon) Empty() bool {
	return len(p.subs) == 0
}

// BBox returns the bounding box of all sub-polygons.
func (p *Polygon) BBox() geometry.BBox {
	return p.bbox
}

// Triangles returns every sub-polygon as a triangle fan.
func (p *Polygon) Triangles() [][3]Vertex {
	var tris [][3]Vertex
	for _, sub := range p.subs {
		for i := 1; i+1 < len(sub.Vertices); i++ {
			tris = append(tris, [3]Vertex{sub.Vertices[0], sub.Vertices[i], sub.Vertices[i+1]})
		}
	}
	return tris
}

// TriangleCount returns len(p.Triangles()) without building the slice.
func (p *Polygon) TriangleCount() int {
	n := 0
	for _, sub := range p.subs {
		if len(sub.Vertices) >= 3 {
			n += len(sub.Vertices) - 2
		}
	}
	return n
}

// Area returns the total area covered by the sub-polygons.
func (p *Polygon) Area() float64 {
	var area float64
	for _, sub := range p.subs {
		pts := make([]geometry.Point, len(sub.Vertices))
		for i, v := range sub.Vertices {
			pts[i] = v.Pos()
		}
		area -= geometry.SignedArea(pts)
	}
	return area
}

// Contains reports whether pt lies inside (or on the border of) any piece.
func (p *Polygon) Contains(pt geometry.Point) bool {
	if !p.bbox.Valid() || !p.bbox.Contains(pt) {
		return false
	}
	for _, sub := range p.subs {
		if sub.contains(pt) {
			return true
		}
	}
	return false
}

func (s SubPoly) contains(pt geometry.Point) bool {
	if !s.BBox.Contains(pt) {
		return false
	}
	n := len(s.Vertices)
	for i := 0; i < n; i++ {
		seg := geometry.Seg{Start: s.Vertices[i].Pos(), End: s.Vertices[(i+1)%n].Pos()}
		if geometry.LineSide(pt, seg) < -geometry.Epsilon {
			return false
		}
	}
	return true
}
