// Package geometry provides the 2D primitives shared by the map graph, the
// sector tracer and the polygon splitter. Coordinates use a y-up convention.
package geometry

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Point is a 2D point or vector in map units.
type Point = r2.Vec

// Pt is shorthand for building a Point.
func Pt(x, y float64) Point {
	return Point{X: x, Y: y}
}

// Seg is a directed line segment from Start to End.
type Seg struct {
	Start Point
	End   Point
}

// NewSeg creates a segment from raw coordinates.
func NewSeg(x1, y1, x2, y2 float64) Seg {
	return Seg{Start: Pt(x1, y1), End: Pt(x2, y2)}
}

// Dir returns the End - Start vector.
func (s Seg) Dir() Point {
	return r2.Sub(s.End, s.Start)
}

// Length returns the euclidean length of the segment.
func (s Seg) Length() float64 {
	return r2.Norm(s.Dir())
}

// Mid returns the midpoint of the segment.
func (s Seg) Mid() Point {
	return r2.Scale(0.5, r2.Add(s.Start, s.End))
}

// Reverse returns the segment pointing the other way.
func (s Seg) Reverse() Seg {
	return Seg{Start: s.End, End: s.Start}
}

// FrontNormal returns the unit normal pointing to the front (right-hand)
// side of the segment. Zero-length segments yield the zero vector.
func (s Seg) FrontNormal() Point {
	d := s.Dir()
	l := r2.Norm(d)
	if l == 0 {
		return Point{}
	}
	return Pt(d.Y/l, -d.X/l)
}

// BBox returns the bounding box of the segment.
func (s Seg) BBox() BBox {
	b := EmptyBBox()
	b.Extend(s.Start)
	b.Extend(s.End)
	return b
}

func (s Seg) String() string {
	return fmt.Sprintf("(%g,%g)-(%g,%g)", s.Start.X, s.Start.Y, s.End.X, s.End.Y)
}

// BBox is an axis-aligned bounding box. The zero value is a degenerate box
// at the origin; use EmptyBBox for a box that can be grown with Extend.
type BBox struct {
	Min Point
	Max Point
}

// EmptyBBox returns an inverted box that any Extend call will replace.
func EmptyBBox() BBox {
	return BBox{
		Min: Pt(math.Inf(1), math.Inf(1)),
		Max: Pt(math.Inf(-1), math.Inf(-1)),
	}
}

// Valid reports whether the box contains at least one point.
func (b BBox) Valid() bool {
	return b.Min.X <= b.Max.X && b.Min.Y <= b.Max.Y
}

// Extend grows the box to include p.
func (b *BBox) Extend(p Point) {
	b.Min.X = math.Min(b.Min.X, p.X)
	b.Min.Y = math.Min(b.Min.Y, p.Y)
	b.Max.X = math.Max(b.Max.X, p.X)
	b.Max.Y = math.Max(b.Max.Y, p.Y)
}

// Union returns the smallest box containing both boxes.
func (b BBox) Union(other BBox) BBox {
	if !other.Valid() {
		return b
	}
	if !b.Valid() {
		return other
	}
	b.Extend(other.Min)
	b.Extend(other.Max)
	return b
}

// Contains reports whether p lies inside or on the border of the box.
func (b BBox) Contains(p Point) bool {
	return p.X >= b.Min.X && p.X <= b.Max.X && p.Y >= b.Min.Y && p.Y <= b.Max.Y
}

// Expand returns the box grown by d on every side.
func (b BBox) Expand(d float64) BBox {
	return BBox{
		Min: Pt(b.Min.X-d, b.Min.Y-d),
		Max: Pt(b.Max.X+d, b.Max.Y+d),
	}
}

func (b BBox) Width() float64  { return b.Max.X - b.Min.X }
func (b BBox) Height() float64 { return b.Max.Y - b.Min.Y }

// Center returns the middle of the box.
func (b BBox) Center() Point {
	return Pt((b.Min.X+b.Max.X)/2, (b.Min.Y+b.Max.Y)/2)
}
