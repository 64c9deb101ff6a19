package mapedit

import (
	"math"

	"github.com/bloodmagesoftware/mapgeo/geometry"
	"github.com/bloodmagesoftware/mapgeo/mapdata"
	"go.uber.org/zap"
)

// MergeResult summarises a merge of new or moved geometry into the map.
type MergeResult struct {
	// Lines touching the merged vertices after all splits.
	Lines []mapdata.LineID
	// Vertices folded into another one at the same position.
	Merged int
	// Lines split at a vertex or at a crossing.
	Split int
	// Duplicate lines removed.
	Removed int
	// Lines re-resolved one by one when nothing was merged, split or
	// removed.
	Corrected int
	Sectors   Stats
}

// Changed reports whether the merge altered the structure of the map.
func (r MergeResult) Changed() bool {
	return r.Merged+r.Split+r.Removed > 0
}

// MergeArch folds the given vertices and their lines into the surrounding
// geometry: coincident vertices are merged, lines are split where vertices
// lie on them and where they cross, and duplicate lines are removed. Sector
// assignments are then corrected on every affected line.
func (e *Editor) MergeArch(vertices []mapdata.VertexID) MergeResult {
	res := e.mergeArch(vertices)
	if res.Changed() {
		res.Sectors = e.CorrectSectors(res.Lines, true)
		return res
	}
	for _, l := range res.Lines {
		if e.CorrectLineSectors(l) {
			res.Corrected++
		}
	}
	return res
}

func (e *Editor) mergeArch(vertices []mapdata.VertexID) MergeResult {
	var res MergeResult

	var merged []mapdata.VertexID
	seen := make(map[mapdata.VertexID]bool)
	for _, v := range vertices {
		if !e.m.HasVertex(v) {
			continue
		}
		before := e.m.NumVertices()
		kept := e.m.MergeVerticesAt(e.m.VertexPos(v), geometry.Epsilon)
		res.Merged += before - e.m.NumVertices()
		if !seen[kept] {
			seen[kept] = true
			merged = append(merged, kept)
		}
	}

	for _, v := range merged {
		res.Split += e.splitLinesAt(v)
	}

	lines := e.connectedLines(merged)
	for i := 0; i < len(lines); i++ {
		l := lines[i]
		if !e.m.HasLine(l) {
			continue
		}
		if v, ok := e.vertexOnLine(l); ok {
			lines = append(lines, e.m.SplitLine(l, v))
			res.Split++
			i--
			continue
		}
		if v, added, ok := e.splitCrossing(l); ok {
			lines = append(lines, added...)
			res.Split += len(added)
			if !seen[v] {
				seen[v] = true
				merged = append(merged, v)
			}
			i--
		}
	}

	lines = e.connectedLines(merged)
	for i := 0; i < len(lines); i++ {
		for j := i + 1; j < len(lines); j++ {
			a, b := lines[i], lines[j]
			if !e.m.HasLine(a) || !e.m.HasLine(b) || !e.m.LinesOverlap(a, b) {
				continue
			}
			e.mergeOverlap(a, b)
			res.Removed++
		}
	}
	res.Removed += e.m.RemoveZeroLengthLines()

	res.Lines = e.connectedLines(merged)
	if res.Changed() {
		e.log.Debug("merged architecture",
			zap.Int("merged", res.Merged),
			zap.Int("split", res.Split),
			zap.Int("removed", res.Removed))
	}
	return res
}

// connectedLines lists the live lines of the given vertices, each once.
func (e *Editor) connectedLines(vertices []mapdata.VertexID) []mapdata.LineID {
	seen := make(map[mapdata.LineID]bool)
	var out []mapdata.LineID
	for _, v := range vertices {
		if !e.m.HasVertex(v) {
			continue
		}
		for _, l := range e.m.VertexLines(v) {
			if !seen[l] {
				seen[l] = true
				out = append(out, l)
			}
		}
	}
	return out
}

// splitLinesAt splits every line passing within the split distance of v,
// unless the closest point is one of the line's own ends.
func (e *Editor) splitLinesAt(v mapdata.VertexID) int {
	p := e.m.VertexPos(v)
	box := geometry.BBox{Min: p, Max: p}.Expand(e.splitDist)
	n := 0
	for _, l := range e.m.LinesInBox(box) {
		v1, v2 := e.m.LineVertices(l)
		if v1 == v || v2 == v {
			continue
		}
		c, t := geometry.ClosestPoint(p, e.m.LineSeg(l))
		if t <= 0 || t >= 1 || geometry.Distance(p, c) >= e.splitDist {
			continue
		}
		e.m.SplitLine(l, v)
		n++
	}
	return n
}

// vertexOnLine finds the vertex lying on l closest to its start.
func (e *Editor) vertexOnLine(l mapdata.LineID) (mapdata.VertexID, bool) {
	seg := e.m.LineSeg(l)
	v1, v2 := e.m.LineVertices(l)
	var (
		found mapdata.VertexID
		bestT = math.Inf(1)
	)
	for _, v := range e.m.VerticesInBox(seg.BBox().Expand(e.splitDist)) {
		if v == v1 || v == v2 {
			continue
		}
		p := e.m.VertexPos(v)
		c, t := geometry.ClosestPoint(p, seg)
		if t <= 0 || t >= 1 || geometry.Distance(p, c) >= e.splitDist {
			continue
		}
		if t < bestT {
			found, bestT = v, t
		}
	}
	return found, !found.IsNil()
}

// splitCrossing splits l and the first line crossing it at their
// intersection. It returns the new vertex and the lines split off.
func (e *Editor) splitCrossing(l mapdata.LineID) (mapdata.VertexID, []mapdata.LineID, bool) {
	a1, a2 := e.m.LineVertices(l)
	for _, o := range e.m.LinesInBox(e.m.LineSeg(l).BBox()) {
		if o == l {
			continue
		}
		b1, b2 := e.m.LineVertices(o)
		if a1 == b1 || a1 == b2 || a2 == b1 || a2 == b2 {
			continue
		}
		p, ok := e.m.LinesIntersect(l, o)
		if !ok {
			continue
		}
		v := e.m.CreateVertex(p, -1)
		var added []mapdata.LineID
		if v != a1 && v != a2 {
			added = append(added, e.m.SplitLine(l, v))
		}
		if v != b1 && v != b2 {
			added = append(added, e.m.SplitLine(o, v))
		}
		if len(added) == 0 {
			continue
		}
		return v, added, true
	}
	return mapdata.VertexID{}, nil, false
}

// mergeOverlap removes one of two lines joining the same vertices. The line
// with more sides survives and takes over the sectors of the other line on
// faces where it has no side of its own.
func (e *Editor) mergeOverlap(a, b mapdata.LineID) {
	keep, drop := a, b
	if sideCount(e.m, b) > sideCount(e.m, a) {
		keep, drop = b, a
	}
	k1, _ := e.m.LineVertices(keep)
	d1, _ := e.m.LineVertices(drop)
	same := k1 == d1

	for _, front := range []bool{true, false} {
		s := e.m.LineSide(drop, front)
		if s.IsNil() {
			continue
		}
		face := front
		if !same {
			face = !front
		}
		if !e.m.LineSide(keep, face).IsNil() {
			continue
		}
		ns := e.m.SetLineSector(keep, face, e.m.SideSector(s))
		e.m.SetSideProps(ns, e.m.SideProps(s))
	}

	e.log.Debug("removing duplicate line",
		zap.Stringer("line", drop),
		zap.Stringer("kept", keep))
	e.m.RemoveLine(drop)
}

func sideCount(m *mapdata.Map, l mapdata.LineID) int {
	front, back := m.LineSides(l)
	n := 0
	if !front.IsNil() {
		n++
	}
	if !back.IsNil() {
		n++
	}
	return n
}
