package mapedit

import (
	"math"

	"github.com/bloodmagesoftware/mapgeo/geometry"
	"github.com/bloodmagesoftware/mapgeo/mapdata"
	"github.com/bloodmagesoftware/mapgeo/sectorbuilder"
	"go.uber.org/zap"
)

// Stats counts what a sector correction pass did.
type Stats struct {
	Traced     int
	Failed     int
	Created    int
	Reassigned int
	Removed    int
	Flipped    int
}

// Changed reports whether the pass modified the map.
func (s Stats) Changed() bool {
	return s.Created+s.Reassigned+s.Removed+s.Flipped > 0
}

type pending struct {
	edge sectorbuilder.Edge
	done bool
}

// CorrectSectors re-traces the space around the given lines and rebinds
// sectors so that every traced region is exactly one sector. With
// existingOnly only faces that already have a side are traced (plus the
// front of lines with no sides at all). Faces whose trace fails lose their
// side; lines left with only a back side are flipped.
func (e *Editor) CorrectSectors(lines []mapdata.LineID, existingOnly bool) Stats {
	var st Stats

	var live []mapdata.LineID
	seenLine := make(map[mapdata.LineID]bool)
	for _, l := range lines {
		if e.m.HasLine(l) && !seenLine[l] {
			seenLine[l] = true
			live = append(live, l)
		}
	}

	var edges []pending
	for _, l := range live {
		front, back := e.m.LineSides(l)
		if !existingOnly || !front.IsNil() || back.IsNil() {
			edges = append(edges, pending{edge: sectorbuilder.Edge{Line: l, Front: true}})
		}
		if !existingOnly || !back.IsNil() {
			edges = append(edges, pending{edge: sectorbuilder.Edge{Line: l, Front: false}})
		}
	}

	index := make(map[sectorbuilder.Edge]int, len(edges))
	ignore := make(map[mapdata.SideID]bool)
	for i, p := range edges {
		index[p.edge] = i
		if s := e.m.LineSide(p.edge.Line, p.edge.Front); !s.IsNil() {
			ignore[s] = true
		}
	}

	b := e.builder()
	reused := make(map[mapdata.SectorID]bool)
	for i := range edges {
		if edges[i].done {
			continue
		}
		seed := edges[i].edge
		err := b.TraceSector(seed.Line, seed.Front)
		st.Traced++
		for _, te := range b.Edges() {
			if j, ok := index[te]; ok {
				edges[j].done = true
			}
		}
		if err != nil {
			st.Failed++
			continue
		}
		if b.IsValidSector() {
			reused[e.m.LineSector(seed.Line, seed.Front)] = true
			continue
		}

		sec := b.FindExistingSector(ignore)
		if !sec.IsNil() {
			if reused[sec] {
				sec = mapdata.NoSector
			} else {
				reused[sec] = true
			}
		}
		if sec.IsNil() {
			st.Created++
		} else {
			st.Reassigned++
		}
		reused[b.CreateSector(sec, b.FindCopySector())] = true
	}

	for _, p := range edges {
		if p.done || !e.m.HasLine(p.edge.Line) {
			continue
		}
		if s := e.m.LineSide(p.edge.Line, p.edge.Front); !s.IsNil() {
			e.log.Warn("sector correction failed, removing side",
				zap.Stringer("line", p.edge.Line),
				zap.Bool("front", p.edge.Front),
				zap.String("reason", "face does not enclose a region"))
			e.m.RemoveSide(s)
			st.Removed++
		}
	}

	for _, l := range live {
		if e.flipIfBackOnly(l) {
			st.Flipped++
		}
	}
	e.m.RemoveDetachedSectors()
	return st
}

// CorrectLineSectors resolves the sector on each face of a line from its
// surroundings and rebinds the faces that disagree. It reports whether
// anything changed.
func (e *Editor) CorrectLineSectors(l mapdata.LineID) bool {
	changed := false
	for _, front := range []bool{true, false} {
		want := e.sectorFacing(l, front)
		if want == e.m.LineSector(l, front) {
			continue
		}
		e.m.SetLineSector(l, front, want)
		changed = true
	}
	if changed {
		e.flipIfBackOnly(l)
	}
	return changed
}

// sectorFacing casts a ray from the middle of a line away from one face and
// takes the sector of the first line it hits, on the side the ray came from.
func (e *Editor) sectorFacing(l mapdata.LineID, front bool) mapdata.SectorID {
	seg := e.m.LineSeg(l)
	mid := seg.Mid()
	n := seg.FrontNormal()
	if !front {
		n = geometry.Pt(-n.X, -n.Y)
	}
	// turn slightly so the ray does not run exactly through a vertex
	dir := geometry.RotatePoint(geometry.Point{}, n, 0.01)

	ext, ok := e.m.Extent()
	if !ok {
		return mapdata.NoSector
	}
	reach := ext.Width() + ext.Height() + 1
	ray := geometry.EmptyBBox()
	ray.Extend(mid)
	ray.Extend(geometry.Pt(mid.X+dir.X*reach, mid.Y+dir.Y*reach))

	var (
		hit  mapdata.LineID
		best = math.Inf(1)
	)
	for _, o := range e.m.LinesInBox(ray) {
		if o == l {
			continue
		}
		if t, ok := geometry.RaySegmentDistance(mid, dir, e.m.LineSeg(o)); ok && t > geometry.Epsilon && t < best {
			hit, best = o, t
		}
	}
	if hit.IsNil() {
		return mapdata.NoSector
	}

	hitFront := geometry.LineSide(mid, e.m.LineSeg(hit)) >= 0
	sec := e.m.LineSector(hit, hitFront)
	if sec == e.m.LineSector(l, front) {
		return sec
	}

	// only trust the hit if both faces bound the same region
	b := e.builder()
	if err := b.TraceSector(l, front); err != nil {
		return mapdata.NoSector
	}
	want := sectorbuilder.Edge{Line: hit, Front: hitFront}
	for _, te := range b.Edges() {
		if te == want {
			return sec
		}
	}
	return mapdata.NoSector
}
