package mapdata

import (
	"fmt"
	"math"
	"slices"

	"github.com/bloodmagesoftware/mapgeo/geometry"
	"github.com/bloodmagesoftware/mapgeo/slotmap"
	"go.uber.org/zap"
)

// CreateVertex adds a vertex at p. If a vertex already sits exactly at p, that
// vertex is returned instead. When splitDist is not negative, every line
// passing closer than splitDist to p is split at the new vertex.
func (m *Map) CreateVertex(p geometry.Point, splitDist float64) VertexID {
	for _, v := range m.VerticesInBox(geometry.BBox{Min: p, Max: p}) {
		if m.vtx(v).pos == p {
			return v
		}
	}

	id := VertexID(m.vertices.Insert(vertex{pos: p}))
	m.indexVertex(id)
	if splitDist < 0 {
		return id
	}

	for _, l := range m.LinesInBox(geometry.BBox{Min: p, Max: p}.Expand(splitDist)) {
		if geometry.DistanceToSegment(p, m.LineSeg(l)) < splitDist {
			m.log.Debug("splitting line at new vertex",
				zap.Stringer("line", l),
				zap.Stringer("vertex", id))
			m.SplitLine(l, id)
		}
	}
	return id
}

// AddVertex inserts a vertex at p as is, without reusing a vertex at the same
// position or splitting lines. Loaders use it to keep records one to one.
func (m *Map) AddVertex(p geometry.Point) VertexID {
	id := VertexID(m.vertices.Insert(vertex{pos: p}))
	m.indexVertex(id)
	return id
}

// CreateLine connects two distinct vertices. The new line has no sides.
func (m *Map) CreateLine(v1, v2 VertexID) LineID {
	if v1 == v2 {
		panic(fmt.Sprintf("mapdata: line from %v to itself", v1))
	}
	m.vtx(v1)
	m.vtx(v2)

	id := LineID(m.lines.Insert(line{v1: v1, v2: v2}))
	m.connect(v1, id)
	m.connect(v2, id)
	m.indexLine(id)
	return id
}

// CreateSide binds a new side with the default properties to one face of a
// line. The face must be empty.
func (m *Map) CreateSide(l LineID, front bool, sec SectorID) SideID {
	ln := m.ln(l)
	if (front && !ln.s1.IsNil()) || (!front && !ln.s2.IsNil()) {
		panic(fmt.Sprintf("mapdata: %v already has a side on that face", l))
	}
	m.sec(sec)

	id := SideID(m.sides.Insert(side{line: l, sector: sec, props: m.defaults.Side}))
	if front {
		ln.s1 = id
	} else {
		ln.s2 = id
	}
	s := m.sec(sec)
	s.sides = append(s.sides, id)
	s.invalidate()
	m.updateSidedness(l)
	return id
}

// CreateSector adds a sector with no sides.
func (m *Map) CreateSector(props SectorProps) SectorID {
	return SectorID(m.sectors.Insert(sector{props: props}))
}

// CreateDefaultSector adds a sector with the map's default properties.
func (m *Map) CreateDefaultSector() SectorID {
	return m.CreateSector(m.defaults.Sector)
}

func (m *Map) CreateThing(t ThingProps) ThingID {
	return ThingID(m.things.Insert(t))
}

func (m *Map) RemoveThing(id ThingID) {
	if !m.things.Remove(slotmap.Key(id)) {
		panic(fmt.Sprintf("mapdata: %v does not exist", id))
	}
}

// SetSideSector moves a side to another sector.
func (m *Map) SetSideSector(id SideID, sec SectorID) {
	s := m.sd(id)
	if s.sector == sec {
		return
	}
	m.sec(sec)
	if m.HasSector(s.sector) {
		m.unbindSide(s.sector, id)
	}
	s.sector = sec
	ns := m.sec(sec)
	ns.sides = append(ns.sides, id)
	ns.invalidate()
}

// SetLineSector makes sec the sector on one face of a line. A side is created
// when the face is empty. Passing NoSector removes the side on that face.
func (m *Map) SetLineSector(l LineID, front bool, sec SectorID) SideID {
	sid := m.LineSide(l, front)
	switch {
	case sec.IsNil():
		if !sid.IsNil() {
			m.RemoveSide(sid)
		}
		return NoSide
	case sid.IsNil():
		return m.CreateSide(l, front, sec)
	default:
		m.SetSideSector(sid, sec)
		return sid
	}
}

// RemoveSide unbinds a side from its line and sector and deletes it. The
// line's two-sided and impassable flags follow the remaining side count.
func (m *Map) RemoveSide(id SideID) {
	m.removeSide(id, true)
}

func (m *Map) removeSide(id SideID, updateLine bool) {
	s := m.sd(id)
	if m.HasSector(s.sector) {
		m.unbindSide(s.sector, id)
	}
	if m.HasLine(s.line) {
		l := m.ln(s.line)
		if l.s1 == id {
			l.s1 = NoSide
		} else if l.s2 == id {
			l.s2 = NoSide
		}
		if updateLine {
			m.updateSidedness(s.line)
		}
	}
	m.sides.Remove(slotmap.Key(id))
}

// RemoveLine deletes a line together with its sides. Its vertices stay,
// even if they end up detached.
func (m *Map) RemoveLine(id LineID) {
	l := m.ln(id)
	s1, s2 := l.s1, l.s2
	if !s1.IsNil() {
		m.removeSide(s1, false)
	}
	if !s2.IsNil() {
		m.removeSide(s2, false)
	}

	l = m.ln(id)
	if m.HasVertex(l.v1) {
		m.disconnect(l.v1, id)
	}
	if m.HasVertex(l.v2) {
		m.disconnect(l.v2, id)
	}
	m.lines.Remove(slotmap.Key(id))
	m.lineIndex.mark(slotmap.Key(id).Index, m.lines.Len())
}

// RemoveVertex deletes a vertex and every line connected to it.
func (m *Map) RemoveVertex(id VertexID) {
	for _, l := range m.VertexLines(id) {
		m.RemoveLine(l)
	}
	m.vertices.Remove(slotmap.Key(id))
	m.indexVertex(id)
}

// RemoveSector deletes a sector and all sides bound to it.
func (m *Map) RemoveSector(id SectorID) {
	for _, s := range m.SectorSides(id) {
		m.RemoveSide(s)
	}
	m.sectors.Remove(slotmap.Key(id))
}

// MoveVertex places a vertex at p.
func (m *Map) MoveVertex(id VertexID, p geometry.Point) {
	v := m.vtx(id)
	v.pos = p
	m.indexVertex(id)
	for _, l := range v.lines {
		m.indexLine(l)
		m.touchLine(l)
	}
}

// FlipLine swaps the vertices of a line. With swapSides the sides are swapped
// as well, so every sector keeps facing the same area.
func (m *Map) FlipLine(id LineID, swapSides bool) {
	l := m.ln(id)
	l.v1, l.v2 = l.v2, l.v1
	if swapSides {
		l.s1, l.s2 = l.s2, l.s1
	}
	m.touchLine(id)
}

// SplitLine shortens a line to end at v and adds a new line from v to the
// old end. Sides are duplicated onto the new line with their texture x
// offsets continued along its length. It returns the new line.
func (m *Map) SplitLine(id LineID, v VertexID) LineID {
	l := m.ln(id)
	if l.v1 == v || l.v2 == v {
		panic(fmt.Sprintf("mapdata: cannot split %v at its own endpoint", id))
	}
	m.vtx(v)

	end := l.v2
	s1, s2 := l.s1, l.s2
	props := l.props

	m.disconnect(end, id)
	l.v2 = v
	m.connect(v, id)
	m.indexLine(id)
	m.touchLine(id)

	nl := m.CreateLine(v, end)
	if !s1.IsNil() {
		p := m.sd(s1).props
		p.OffsetX += int(math.Round(m.LineLength(id)))
		ns := m.CreateSide(nl, true, m.sd(s1).sector)
		m.sd(ns).props = p
	}
	if !s2.IsNil() {
		p := m.sd(s2).props
		ns := m.CreateSide(nl, false, m.sd(s2).sector)
		m.sd(ns).props = p
		m.sd(s2).props.OffsetX += int(math.Round(m.LineLength(nl)))
	}
	m.ln(nl).props = props
	return nl
}

// MergeVertices redirects every line of discard to keep and deletes discard.
// Lines that collapse to zero length are removed; their count is returned.
func (m *Map) MergeVertices(keep, discard VertexID) int {
	if keep == discard {
		return 0
	}
	m.vtx(keep)
	lines := m.VertexLines(discard)
	for _, l := range lines {
		ln := m.ln(l)
		if ln.v1 == discard {
			ln.v1 = keep
		}
		if ln.v2 == discard {
			ln.v2 = keep
		}
		m.connect(keep, l)
		m.indexLine(l)
		m.touchLine(l)
	}
	m.vtx(discard).lines = nil
	m.vertices.Remove(slotmap.Key(discard))
	m.indexVertex(discard)

	removed := 0
	for _, l := range lines {
		if m.HasLine(l) && m.ln(l).v1 == m.ln(l).v2 {
			m.RemoveLine(l)
			removed++
		}
	}
	return removed
}

// MergeVerticesAt merges every vertex within eps of p into the first one
// found. It returns the surviving vertex, or the zero handle if none was
// found.
func (m *Map) MergeVerticesAt(p geometry.Point, eps float64) VertexID {
	var found []VertexID
	for _, v := range m.VerticesInBox(geometry.BBox{Min: p, Max: p}.Expand(eps)) {
		if geometry.Equal(m.vtx(v).pos, p, eps) {
			found = append(found, v)
		}
	}
	if len(found) == 0 {
		return VertexID{}
	}
	for _, d := range found[1:] {
		m.MergeVertices(found[0], d)
	}
	return found[0]
}

// RemoveZeroLengthLines deletes lines whose ends coincide and returns how
// many were removed.
func (m *Map) RemoveZeroLengthLines() int {
	var doomed []LineID
	m.lines.Each(func(k slotmap.Key, l *line) bool {
		if l.v1 == l.v2 || m.vtx(l.v1).pos == m.vtx(l.v2).pos {
			doomed = append(doomed, LineID(k))
		}
		return true
	})
	for _, l := range doomed {
		m.RemoveLine(l)
	}
	return len(doomed)
}

// RemoveDetachedVertices deletes vertices without lines.
func (m *Map) RemoveDetachedVertices() int {
	var doomed []VertexID
	m.vertices.Each(func(k slotmap.Key, v *vertex) bool {
		if len(v.lines) == 0 {
			doomed = append(doomed, VertexID(k))
		}
		return true
	})
	for _, v := range doomed {
		m.vertices.Remove(slotmap.Key(v))
		m.indexVertex(v)
	}
	return len(doomed)
}

// RemoveDetachedSides deletes sides whose line is gone or no longer
// references them.
func (m *Map) RemoveDetachedSides() int {
	var doomed []SideID
	m.sides.Each(func(k slotmap.Key, s *side) bool {
		id := SideID(k)
		if !m.HasLine(s.line) {
			doomed = append(doomed, id)
			return true
		}
		if l := m.ln(s.line); l.s1 != id && l.s2 != id {
			doomed = append(doomed, id)
		}
		return true
	})
	for _, s := range doomed {
		m.removeSide(s, false)
	}
	return len(doomed)
}

// RemoveDetachedSectors deletes sectors without sides.
func (m *Map) RemoveDetachedSectors() int {
	var doomed []SectorID
	m.sectors.Each(func(k slotmap.Key, s *sector) bool {
		if len(s.sides) == 0 {
			doomed = append(doomed, SectorID(k))
		}
		return true
	})
	for _, s := range doomed {
		m.sectors.Remove(slotmap.Key(s))
	}
	return len(doomed)
}

func (m *Map) connect(v VertexID, l LineID) {
	vx := m.vtx(v)
	if !slices.Contains(vx.lines, l) {
		vx.lines = append(vx.lines, l)
	}
}

func (m *Map) disconnect(v VertexID, l LineID) {
	vx := m.vtx(v)
	if i := slices.Index(vx.lines, l); i >= 0 {
		vx.lines = slices.Delete(vx.lines, i, i+1)
	}
}

func (m *Map) unbindSide(sec SectorID, id SideID) {
	s := m.sec(sec)
	if i := slices.Index(s.sides, id); i >= 0 {
		s.sides = slices.Delete(s.sides, i, i+1)
	}
	s.invalidate()
}

func (m *Map) updateSidedness(id LineID) {
	l := m.ln(id)
	if !l.s1.IsNil() && !l.s2.IsNil() {
		l.props.Flags = l.props.Flags&^FlagImpassable | FlagTwoSided
	} else {
		l.props.Flags = l.props.Flags&^FlagTwoSided | FlagImpassable
	}
}

// touchLine drops the cached geometry of the sectors on both faces.
func (m *Map) touchLine(id LineID) {
	l := m.ln(id)
	for _, s := range [2]SideID{l.s1, l.s2} {
		if s.IsNil() {
			continue
		}
		if sec := m.sd(s).sector; m.HasSector(sec) {
			m.sec(sec).invalidate()
		}
	}
}

func (s *sector) invalidate() {
	s.bbox = nil
	s.poly = nil
	s.polyErr = nil
}
