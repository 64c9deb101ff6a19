package sectorbuilder

import (
	"fmt"
	"math"

	"github.com/bloodmagesoftware/mapgeo/geometry"
	"github.com/bloodmagesoftware/mapgeo/mapdata"
	"go.uber.org/zap"
)

// Edge is one face of a line. It is walked from start to end so that the
// space it faces lies on its right: front faces run v1→v2, back faces v2→v1.
type Edge struct {
	Line  mapdata.LineID
	Front bool
}

func (e Edge) String() string {
	if e.Front {
		return e.Line.String() + " front"
	}
	return e.Line.String() + " back"
}

// Reverse returns the opposite face of the same line.
func (e Edge) Reverse() Edge {
	return Edge{Line: e.Line, Front: !e.Front}
}

// Outline is one closed loop of edges.
type Outline struct {
	Edges []Edge
	// Clockwise outlines enclose their area; counter-clockwise ones are
	// holes seen from outside.
	Clockwise bool
	BBox      geometry.BBox
	Rightmost mapdata.VertexID
}

func (b *Builder) start(e Edge) mapdata.VertexID {
	v1, v2 := b.m.LineVertices(e.Line)
	if e.Front {
		return v1
	}
	return v2
}

func (b *Builder) end(e Edge) mapdata.VertexID {
	v1, v2 := b.m.LineVertices(e.Line)
	if e.Front {
		return v2
	}
	return v1
}

func (b *Builder) seg(e Edge) geometry.Seg {
	s := b.m.LineSeg(e.Line)
	if e.Front {
		return s
	}
	return s.Reverse()
}

// nextEdge picks the line at the end of e that turns right the most. When
// e leads into a dead end the walk turns around onto e's other face.
func (b *Builder) nextEdge(e Edge) Edge {
	pivot := b.end(e)
	prev := b.m.VertexPos(b.start(e))
	at := b.m.VertexPos(pivot)

	next := e.Reverse()
	best := math.Inf(1)
	for _, l := range b.m.VertexLines(pivot) {
		if l == e.Line {
			continue
		}
		v1, v2 := b.m.LineVertices(l)
		other, front := v2, true
		if v1 != pivot {
			other, front = v1, false
		}
		if angle := geometry.AngleBetween(prev, at, b.m.VertexPos(other)); angle < best {
			best = angle
			next = Edge{Line: l, Front: front}
		}
	}
	return next
}

// TraceOutline walks from seed until it comes back to seed. The map is not
// modified.
func (b *Builder) TraceOutline(seed Edge) (Outline, error) {
	v1, v2 := b.m.LineVertices(seed.Line)
	if v1 == v2 {
		panic(fmt.Sprintf("sectorbuilder: %v has zero length", seed.Line))
	}

	// The walk always closes unless two lines leave a vertex in the same
	// direction.
	limit := 2*b.m.NumLines() + 2
	o := Outline{BBox: geometry.EmptyBBox()}
	rightX := math.Inf(-1)
	var sum float64

	e := seed
	for {
		if len(o.Edges) >= limit {
			return Outline{}, fmt.Errorf("%w: outline from %v did not close within %d edges",
				ErrInvalidGeometry, seed, limit)
		}
		o.Edges = append(o.Edges, e)

		s := b.seg(e)
		sum += geometry.Cross(s.Start, s.End)
		o.BBox.Extend(s.Start)
		o.BBox.Extend(s.End)
		if s.Start.X > rightX {
			rightX = s.Start.X
			o.Rightmost = b.start(e)
		}

		e = b.nextEdge(e)
		if e == seed {
			break
		}
	}
	o.Clockwise = sum < 0
	return o, nil
}

// findOuterEdge casts a ray east from the outline's rightmost vertex and
// returns the face of the first line it meets. When the ray meets a vertex
// the face is picked from the wedge around that vertex that looks back at
// the ray.
func (b *Builder) findOuterEdge(o Outline) (Edge, bool) {
	origin := b.m.VertexPos(o.Rightmost)
	ext, ok := b.m.Extent()
	if !ok || ext.Max.X <= origin.X {
		return Edge{}, false
	}

	var (
		nearest  mapdata.LineID
		atVertex mapdata.VertexID
		bestDist = math.Inf(1)
	)
	ray := geometry.BBox{Min: origin, Max: geometry.Pt(ext.Max.X, origin.Y)}
	for _, l := range b.m.LinesInBox(ray) {
		v1, v2 := b.m.LineVertices(l)
		if v1 == o.Rightmost || v2 == o.Rightmost {
			continue
		}
		s := b.m.LineSeg(l)
		if s.Start.X <= origin.X && s.End.X <= origin.X {
			continue
		}
		if s.Start.Y == s.End.Y {
			continue
		}
		if (s.Start.Y < origin.Y && s.End.Y < origin.Y) || (s.Start.Y > origin.Y && s.End.Y > origin.Y) {
			continue
		}

		frac := (origin.Y - s.Start.Y) / (s.End.Y - s.Start.Y)
		x := s.Start.X + (s.End.X-s.Start.X)*frac
		if x <= origin.X {
			continue
		}
		dist := x - origin.X

		var hit mapdata.VertexID
		switch {
		case s.Start.Y == origin.Y:
			hit = v1
		case s.End.Y == origin.Y:
			hit = v2
		}

		switch {
		case nearest.IsNil() || dist < bestDist-1e-3:
			nearest, bestDist, atVertex = l, dist, hit
		case math.Abs(dist-bestDist) <= 1e-3 && atVertex.IsNil():
			atVertex = hit
		}
	}
	if nearest.IsNil() {
		return Edge{}, false
	}
	if !atVertex.IsNil() {
		return b.leavingEdge(atVertex, origin)
	}
	front := geometry.LineSide(origin, b.m.LineSeg(nearest)) >= 0
	return Edge{Line: nearest, Front: front}, true
}

// contains reports whether p lies in the space an outline faces, judged by
// the outline edge closest to p.
func (b *Builder) contains(o Outline, p geometry.Point) bool {
	if o.Clockwise && !o.BBox.Contains(p) {
		return false
	}

	n := len(o.Edges)
	nearest, bestDist, bestT := -1, math.Inf(1), 0.0
	for i, e := range o.Edges {
		s := b.seg(e)
		c, t := geometry.ClosestPoint(p, s)
		if d := geometry.Distance(p, c); d < bestDist {
			nearest, bestDist, bestT = i, d, t
		}
	}
	if nearest < 0 {
		return false
	}

	s := b.seg(o.Edges[nearest])
	switch bestT {
	case 0:
		in := b.seg(o.Edges[(nearest+n-1)%n])
		return inWedge(in.Start, s.Start, s.End, p)
	case 1:
		out := b.seg(o.Edges[(nearest+1)%n])
		return inWedge(s.Start, s.End, out.End, p)
	}
	return geometry.LineSide(p, s) >= 0
}

// inWedge reports whether p lies in the corner on the right of the path
// prev→pivot→next.
func inWedge(prev, pivot, next, p geometry.Point) bool {
	if prev == next {
		// the path turns back on itself, the whole plane but the line is on its right
		return true
	}
	return geometry.AngleBetween(prev, pivot, p) < geometry.AngleBetween(prev, pivot, next)
}

// holeSeed returns the face leaving v that hugs the space east of v.
func (b *Builder) holeSeed(v mapdata.VertexID) (Edge, bool) {
	at := b.m.VertexPos(v)
	return b.leavingEdge(v, geometry.Pt(at.X+32, at.Y))
}

// leavingEdge returns the face leaving v that is the first one met sweeping
// counter-clockwise from the direction of toward. The corner between toward
// and that face lies on its right.
func (b *Builder) leavingEdge(v mapdata.VertexID, toward geometry.Point) (Edge, bool) {
	at := b.m.VertexPos(v)

	var (
		seed  Edge
		found bool
		best  = math.Inf(1)
	)
	for _, l := range b.m.VertexLines(v) {
		v1, v2 := b.m.LineVertices(l)
		other, front := v2, true
		if v1 != v {
			other = v1
			front = false
		}
		if angle := geometry.AngleBetween(toward, at, b.m.VertexPos(other)); angle < best {
			best = angle
			seed = Edge{Line: l, Front: front}
			found = true
		}
	}
	return seed, found
}

func (b *Builder) debug(msg string, seed Edge, err error) {
	b.log.Debug(msg,
		zap.Stringer("line", seed.Line),
		zap.Bool("front", seed.Front),
		zap.Error(err))
}
