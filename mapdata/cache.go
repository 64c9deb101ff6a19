package mapdata

import (
	"math"

	"github.com/bloodmagesoftware/mapgeo/geometry"
	"github.com/bloodmagesoftware/mapgeo/polygon"
	"github.com/bloodmagesoftware/mapgeo/slotmap"
	"go.uber.org/zap"
)

// SideEdge returns the line of a side directed so that the side's sector lies
// to its right.
func (m *Map) SideEdge(id SideID) geometry.Seg {
	seg := m.LineSeg(m.sd(id).line)
	if !m.SideIsFront(id) {
		return seg.Reverse()
	}
	return seg
}

// SectorEdges returns the boundary of a sector, one directed edge per side.
func (m *Map) SectorEdges(id SectorID) []geometry.Seg {
	s := m.sec(id)
	edges := make([]geometry.Seg, len(s.sides))
	for i, sid := range s.sides {
		edges[i] = m.SideEdge(sid)
	}
	return edges
}

// SectorBBox returns the bounding box of all lines bound to a sector.
func (m *Map) SectorBBox(id SectorID) geometry.BBox {
	s := m.sec(id)
	if s.bbox != nil {
		return *s.bbox
	}
	b := geometry.EmptyBBox()
	for _, sid := range s.sides {
		b = b.Union(fromBox(m.ln(m.sd(sid).line).box))
	}
	s.bbox = &b
	return b
}

// SectorPolygon returns the triangulated area of a sector. It is built on
// first use and kept until the sector's boundary changes. When the boundary
// could not be fully split the partial polygon is returned with the error.
func (m *Map) SectorPolygon(id SectorID) (*polygon.Polygon, error) {
	s := m.sec(id)
	if s.poly != nil {
		return s.poly, s.polyErr
	}
	poly, err := polygon.Build(m.SectorEdges(id), m.log)
	if err != nil {
		m.log.Warn("sector polygon is incomplete",
			zap.Stringer("sector", id),
			zap.Error(err))
	}
	s = m.sec(id)
	s.poly, s.polyErr = poly, err
	return poly, err
}

// SectorContains reports whether p lies inside a sector.
func (m *Map) SectorContains(id SectorID, p geometry.Point) bool {
	if !m.SectorBBox(id).Contains(p) {
		return false
	}
	poly, err := m.SectorPolygon(id)
	if err == nil {
		return poly.Contains(p)
	}
	return m.sectorContainsByNearestLine(id, p)
}

// sectorContainsByNearestLine looks at the face of the closest sector line
// that p is in front of.
func (m *Map) sectorContainsByNearestLine(id SectorID, p geometry.Point) bool {
	var (
		best     LineID
		bestDist = math.Inf(1)
	)
	for _, l := range m.SectorLines(id) {
		if d := geometry.DistanceToSegment(p, m.LineSeg(l)); d < bestDist {
			best, bestDist = l, d
		}
	}
	if best.IsNil() {
		return false
	}
	front := geometry.LineSide(p, m.LineSeg(best)) >= 0
	return m.LineSector(best, front) == id
}

// SectorAt returns the first sector containing p, or NoSector.
func (m *Map) SectorAt(p geometry.Point) SectorID {
	found := NoSector
	m.sectors.Each(func(k slotmap.Key, _ *sector) bool {
		if m.SectorContains(SectorID(k), p) {
			found = SectorID(k)
			return false
		}
		return true
	})
	return found
}
