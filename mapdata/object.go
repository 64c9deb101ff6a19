package mapdata

import (
	"fmt"

	"github.com/bloodmagesoftware/mapgeo/geometry"
)

// Object is any addressable map entity: VertexID, LineID, SideID, SectorID
// or ThingID.
type Object interface {
	fmt.Stringer
	isObject()
}

func (VertexID) isObject() {}
func (LineID) isObject()   {}
func (SideID) isObject()   {}
func (SectorID) isObject() {}
func (ThingID) isObject()  {}

// Exists reports whether o refers to a live entity.
func (m *Map) Exists(o Object) bool {
	switch id := o.(type) {
	case VertexID:
		return m.HasVertex(id)
	case LineID:
		return m.HasLine(id)
	case SideID:
		return m.HasSide(id)
	case SectorID:
		return m.HasSector(id)
	case ThingID:
		return m.HasThing(id)
	}
	return false
}

// Position returns a representative point: the vertex or thing position,
// the midpoint of a line or side, or the center of a sector's bounds.
func (m *Map) Position(o Object) (geometry.Point, bool) {
	if !m.Exists(o) {
		return geometry.Point{}, false
	}
	switch id := o.(type) {
	case VertexID:
		return m.VertexPos(id), true
	case LineID:
		return m.LineSeg(id).Mid(), true
	case SideID:
		return m.LineSeg(m.SideLine(id)).Mid(), true
	case SectorID:
		b := m.SectorBBox(id)
		if !b.Valid() {
			return geometry.Point{}, false
		}
		return b.Center(), true
	case ThingID:
		return m.Thing(id).Pos, true
	}
	return geometry.Point{}, false
}

// Describe returns a one-line human readable summary of o.
func (m *Map) Describe(o Object) string {
	if !m.Exists(o) {
		return fmt.Sprintf("%v (removed)", o)
	}
	switch id := o.(type) {
	case VertexID:
		p := m.VertexPos(id)
		return fmt.Sprintf("%v at (%g, %g), %d lines", id, p.X, p.Y, len(m.vtx(id).lines))
	case LineID:
		front, back := m.LineSides(id)
		return fmt.Sprintf("%v %v, front %v, back %v, flags %v",
			id, m.LineSeg(id), describeSide(front), describeSide(back), m.LineFlags(id))
	case SideID:
		face := "back"
		if m.SideIsFront(id) {
			face = "front"
		}
		return fmt.Sprintf("%v, %s of %v, %v", id, face, m.SideLine(id), m.SideSector(id))
	case SectorID:
		p := m.SectorProps(id)
		return fmt.Sprintf("%v, %d sides, floor %d %s, ceiling %d %s",
			id, len(m.sec(id).sides), p.FloorHeight, p.FloorTex, p.CeilingHeight, p.CeilingTex)
	case ThingID:
		t := m.Thing(id)
		return fmt.Sprintf("%v type %d at (%g, %g)", id, t.Type, t.Pos.X, t.Pos.Y)
	}
	return o.String()
}

func describeSide(s SideID) string {
	if s.IsNil() {
		return "none"
	}
	return s.String()
}
