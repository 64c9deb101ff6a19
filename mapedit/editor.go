// Package mapedit implements the editing operations that change map
// geometry and then repair sector assignments around the change.
//
// An Editor owns no state besides its settings; every operation works on the
// map it was created for and must not run concurrently with other mutations
// of that map.
package mapedit

import (
	"errors"

	"github.com/bloodmagesoftware/mapgeo/geometry"
	"github.com/bloodmagesoftware/mapgeo/mapdata"
	"github.com/bloodmagesoftware/mapgeo/sectorbuilder"
	"go.uber.org/zap"
)

// DefaultSplitDistance is how close a vertex must be to a line to split it.
const DefaultSplitDistance = 0.1

var (
	ErrNoLines      = errors.New("map has no lines")
	ErrSectorExists = errors.New("sector already exists")
)

type Editor struct {
	m         *mapdata.Map
	log       *zap.Logger
	splitDist float64
}

type Option func(*Editor)

func WithLogger(log *zap.Logger) Option {
	return func(e *Editor) {
		if log != nil {
			e.log = log
		}
	}
}

func WithSplitDistance(d float64) Option {
	return func(e *Editor) {
		if d > 0 {
			e.splitDist = d
		}
	}
}

func New(m *mapdata.Map, opts ...Option) *Editor {
	e := &Editor{
		m:         m,
		log:       zap.NewNop(),
		splitDist: DefaultSplitDistance,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Editor) Map() *mapdata.Map { return e.m }

func (e *Editor) builder() *sectorbuilder.Builder {
	return sectorbuilder.New(e.m, e.log)
}

// CreateSectorAt builds a sector for the empty space around p, starting
// from the face of the nearest line that looks at p. If that space already
// is a complete sector it is returned with ErrSectorExists.
func (e *Editor) CreateSectorAt(p geometry.Point) (mapdata.SectorID, error) {
	l, _, ok := e.m.NearestLine(p, -1)
	if !ok {
		return mapdata.NoSector, ErrNoLines
	}
	front := geometry.LineSide(p, e.m.LineSeg(l)) >= 0

	b := e.builder()
	if err := b.TraceSector(l, front); err != nil {
		return mapdata.NoSector, err
	}
	if b.IsValidSector() {
		return e.m.LineSector(l, front), ErrSectorExists
	}

	sec := b.CreateSector(mapdata.NoSector, b.FindCopySector())
	for _, edge := range b.Edges() {
		e.flipIfBackOnly(edge.Line)
	}
	e.m.RemoveDetachedSectors()
	e.log.Debug("created sector",
		zap.Stringer("sector", sec),
		zap.Int("sides", len(b.Edges())))
	return sec, nil
}

// MoveVertices shifts vertices by delta and merges them into the
// surrounding geometry.
func (e *Editor) MoveVertices(vertices []mapdata.VertexID, delta geometry.Point) MergeResult {
	for _, v := range vertices {
		p := e.m.VertexPos(v)
		e.m.MoveVertex(v, geometry.Pt(p.X+delta.X, p.Y+delta.Y))
	}
	return e.MergeArch(vertices)
}

// DrawLines adds a chain of lines through points, merges it into the map
// and assigns sectors to both sides of every affected line. Closed chains
// are turned clockwise so that their front sides face the enclosed area.
func (e *Editor) DrawLines(points []geometry.Point, closed bool) MergeResult {
	pts := make([]geometry.Point, 0, len(points))
	for _, p := range points {
		if len(pts) == 0 || pts[len(pts)-1] != p {
			pts = append(pts, p)
		}
	}
	if closed && len(pts) > 1 && pts[0] == pts[len(pts)-1] {
		pts = pts[:len(pts)-1]
	}
	if len(pts) < 2 {
		return MergeResult{}
	}
	if closed && len(pts) > 2 && geometry.SignedArea(pts) > 0 {
		for i, j := 0, len(pts)-1; i < j; i, j = i+1, j-1 {
			pts[i], pts[j] = pts[j], pts[i]
		}
	}

	verts := make([]mapdata.VertexID, len(pts))
	for i, p := range pts {
		verts[i] = e.m.CreateVertex(p, e.splitDist)
	}
	n := len(verts) - 1
	if closed && len(verts) > 2 {
		n = len(verts)
	}
	for i := 0; i < n; i++ {
		v1, v2 := verts[i], verts[(i+1)%len(verts)]
		if v1 != v2 {
			e.m.CreateLine(v1, v2)
		}
	}

	res := e.mergeArch(verts)
	res.Sectors = e.CorrectSectors(res.Lines, false)
	return res
}

func (e *Editor) flipIfBackOnly(l mapdata.LineID) bool {
	if !e.m.HasLine(l) {
		return false
	}
	front, back := e.m.LineSides(l)
	if front.IsNil() && !back.IsNil() {
		e.m.FlipLine(l, true)
		return true
	}
	return false
}

// TidyResult summarises a Tidy pass.
type TidyResult struct {
	Merge    MergeResult
	Detached int
}

// Tidy merges all architecture in the map, corrects sectors around every
// line and removes vertices, sides and sectors nothing refers to.
func (e *Editor) Tidy() TidyResult {
	var res TidyResult
	res.Merge = e.MergeArch(e.m.Vertices())
	res.Detached += e.m.RemoveDetachedSides()
	res.Detached += e.m.RemoveDetachedSectors()
	res.Detached += e.m.RemoveDetachedVertices()
	e.log.Debug("tidied map",
		zap.Int("merged", res.Merge.Merged),
		zap.Int("split", res.Merge.Split),
		zap.Int("removed", res.Merge.Removed),
		zap.Int("detached", res.Detached))
	return res
}
