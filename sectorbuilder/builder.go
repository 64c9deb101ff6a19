// Package sectorbuilder finds the closed region of space a line face looks
// into and binds a sector to every face around it.
//
// Tracing only reads the map. A failed trace leaves the map exactly as it
// was; only CreateSector changes it.
package sectorbuilder

import (
	"errors"
	"fmt"

	"github.com/bloodmagesoftware/mapgeo/mapdata"
	"go.uber.org/zap"
)

var (
	// ErrOutsideMap means the traced face looks into unbounded space.
	ErrOutsideMap = errors.New("outside map area")
	// ErrInvalidGeometry means an outline did not close or the search for
	// the enclosing outline went in circles.
	ErrInvalidGeometry = errors.New("invalid map geometry")
)

type Builder struct {
	m   *mapdata.Map
	log *zap.Logger

	outlines []Outline
	edges    []Edge
}

func New(m *mapdata.Map, log *zap.Logger) *Builder {
	if log == nil {
		log = zap.NewNop()
	}
	return &Builder{m: m, log: log}
}

// Edges returns the faces found by the last successful TraceSector, outer
// outline first.
func (b *Builder) Edges() []Edge {
	return b.edges
}

// Outlines returns the outlines found by the last successful TraceSector.
// The first one is the outer boundary.
func (b *Builder) Outlines() []Outline {
	return b.outlines
}

// TraceSector collects every face bounding the region that one face of a
// line looks into: the enclosing clockwise outline plus all holes inside it.
func (b *Builder) TraceSector(l mapdata.LineID, front bool) error {
	b.outlines = nil
	b.edges = nil

	seed := Edge{Line: l, Front: front}
	outlines, err := b.traceSector(seed)
	if err != nil {
		b.debug("sector trace failed", seed, err)
		return err
	}
	b.outlines = outlines
	for _, o := range outlines {
		b.edges = append(b.edges, o.Edges...)
	}
	return nil
}

func (b *Builder) traceSector(seed Edge) ([]Outline, error) {
	outer, err := b.TraceOutline(seed)
	if err != nil {
		return nil, err
	}

	traced := make(map[Edge]bool)
	mark := func(o Outline) {
		for _, e := range o.Edges {
			traced[e] = true
		}
	}
	mark(outer)
	islands := []Outline{outer}

	// A counter-clockwise outline is an island seen from outside. Keep
	// stepping outward until the enclosing outline is found.
	for !outer.Clockwise {
		next, ok := b.findOuterEdge(outer)
		if !ok {
			return nil, ErrOutsideMap
		}
		// Every step starts further east than all outlines before it, so
		// only rounding can lead back to a traced face.
		if traced[next] {
			return nil, fmt.Errorf("%w: %v was reached twice looking for the outer outline", ErrInvalidGeometry, next)
		}
		if outer, err = b.TraceOutline(next); err != nil {
			return nil, err
		}
		mark(outer)
		islands = append(islands, outer)
	}

	// islands ends with the outer outline; the islands passed on the way
	// out are holes of this region too.
	outlines := []Outline{outer}
	outlines = append(outlines, islands[:len(islands)-1]...)

	valid := b.candidateVertices(outlines)
	for _, o := range outlines {
		b.discardOutside(valid, o)
	}

	for len(valid) > 0 {
		v := b.rightmost(valid)
		delete(valid, v)
		seed, ok := b.holeSeed(v)
		if !ok {
			continue
		}
		if traced[seed] {
			continue
		}
		hole, err := b.TraceOutline(seed)
		if err != nil {
			return nil, err
		}
		mark(hole)
		outlines = append(outlines, hole)
		for _, e := range hole.Edges {
			delete(valid, b.start(e))
		}
		b.discardOutside(valid, hole)
	}
	return outlines, nil
}

// candidateVertices returns every vertex with lines that is not part of any
// traced outline.
func (b *Builder) candidateVertices(outlines []Outline) map[mapdata.VertexID]bool {
	valid := make(map[mapdata.VertexID]bool)
	for _, v := range b.m.Vertices() {
		if len(b.m.VertexLines(v)) > 0 {
			valid[v] = true
		}
	}
	for _, o := range outlines {
		for _, e := range o.Edges {
			delete(valid, b.start(e))
		}
	}
	return valid
}

func (b *Builder) discardOutside(valid map[mapdata.VertexID]bool, o Outline) {
	for v := range valid {
		if !b.contains(o, b.m.VertexPos(v)) {
			delete(valid, v)
		}
	}
}

// rightmost returns the valid vertex with the largest x, breaking ties by
// the smaller handle so the result does not depend on map iteration order.
func (b *Builder) rightmost(valid map[mapdata.VertexID]bool) mapdata.VertexID {
	var (
		best  mapdata.VertexID
		bestX float64
	)
	for v := range valid {
		x := b.m.VertexPos(v).X
		if best.IsNil() || x > bestX || (x == bestX && v.Index < best.Index) {
			best, bestX = v, x
		}
	}
	return best
}

// IsValidSector reports whether the traced faces already form exactly one
// existing sector, with nothing missing and nothing extra.
func (b *Builder) IsValidSector() bool {
	if len(b.edges) == 0 {
		return false
	}
	sec := b.m.LineSector(b.edges[0].Line, b.edges[0].Front)
	if sec.IsNil() {
		return false
	}
	for _, e := range b.edges {
		if b.m.LineSector(e.Line, e.Front) != sec {
			return false
		}
	}
	return len(b.m.SectorSides(sec)) == len(b.edges)
}

// FindExistingSector returns a sector already bound to one of the traced
// faces. Sectors reached through sides in ignore are only used when nothing
// else is available.
func (b *Builder) FindExistingSector(ignore map[mapdata.SideID]bool) mapdata.SectorID {
	fallback := mapdata.NoSector
	for _, e := range b.edges {
		s := b.m.LineSide(e.Line, e.Front)
		if s.IsNil() {
			continue
		}
		if !ignore[s] {
			return b.m.SideSector(s)
		}
		if fallback.IsNil() {
			fallback = b.m.SideSector(s)
		}
	}
	return fallback
}

// FindCopySector returns the first sector bound to either face of a traced
// line, front before back, to copy properties from.
func (b *Builder) FindCopySector() mapdata.SectorID {
	for _, e := range b.edges {
		if s := b.m.LineSector(e.Line, true); !s.IsNil() {
			return s
		}
		if s := b.m.LineSector(e.Line, false); !s.IsNil() {
			return s
		}
	}
	return mapdata.NoSector
}

// CreateSector binds sec to every traced face. When sec is NoSector a new
// sector is created with the properties of copyFrom, or the map defaults
// when copyFrom is NoSector too. It returns the sector used.
func (b *Builder) CreateSector(sec, copyFrom mapdata.SectorID) mapdata.SectorID {
	if len(b.edges) == 0 {
		panic("sectorbuilder: CreateSector without a traced sector")
	}
	if sec.IsNil() {
		if copyFrom.IsNil() {
			sec = b.m.CreateDefaultSector()
		} else {
			sec = b.m.CreateSector(b.m.SectorProps(copyFrom))
		}
	}
	for _, e := range b.edges {
		b.m.SetLineSector(e.Line, e.Front, sec)
	}
	return sec
}
