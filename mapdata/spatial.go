package mapdata

import (
	"cmp"
	"math"
	"slices"

	"github.com/bloodmagesoftware/mapgeo/geometry"
	"github.com/bloodmagesoftware/mapgeo/slotmap"
	"github.com/peterstace/simplefeatures/rtree"
)

func toBox(b geometry.BBox) rtree.Box {
	return rtree.Box{MinX: b.Min.X, MinY: b.Min.Y, MaxX: b.Max.X, MaxY: b.Max.Y}
}

func fromBox(b rtree.Box) geometry.BBox {
	return geometry.BBox{
		Min: geometry.Pt(b.MinX, b.MinY),
		Max: geometry.Pt(b.MaxX, b.MaxY),
	}
}

// minPending is the number of changed records searched one by one before
// an index is bulk loaded again.
const minPending = 32

// lazyIndex is an R-tree that is bulk loaded when first queried. Records
// changed after the load are listed in pending and skipped in the tree; the
// tree is dropped once pending grows past an eighth of all records.
type lazyIndex struct {
	tree    *rtree.RTree
	pending []uint32
	changed map[uint32]bool
}

func (x *lazyIndex) mark(record uint32, total int) {
	if x.tree == nil || x.changed[record] {
		return
	}
	if len(x.pending) >= max(minPending, total/8) {
		x.reset()
		return
	}
	if x.changed == nil {
		x.changed = make(map[uint32]bool)
	}
	x.changed[record] = true
	x.pending = append(x.pending, record)
}

func (x *lazyIndex) reset() {
	x.tree = nil
	x.pending = nil
	x.changed = nil
}

func (x *lazyIndex) load(items func() []rtree.BulkItem) *rtree.RTree {
	if x.tree == nil {
		x.tree = rtree.BulkLoad(items())
		x.pending = nil
		x.changed = nil
	}
	return x.tree
}

func (x *lazyIndex) stale(record int) bool {
	return x.changed[uint32(record)]
}

func overlap(a, b rtree.Box) bool {
	return a.MinX <= b.MaxX && a.MaxX >= b.MinX &&
		a.MinY <= b.MaxY && a.MaxY >= b.MinY
}

// indexLine refreshes the cached box of a line.
func (m *Map) indexLine(id LineID) {
	m.ln(id).box = toBox(m.LineSeg(id).BBox())
	m.lineIndex.mark(slotmap.Key(id).Index, m.lines.Len())
}

// indexVertex records that a vertex was added, moved or removed.
func (m *Map) indexVertex(id VertexID) {
	m.vertexIndex.mark(slotmap.Key(id).Index, m.vertices.Len())
}

func (m *Map) lineTree() *rtree.RTree {
	return m.lineIndex.load(func() []rtree.BulkItem {
		items := make([]rtree.BulkItem, 0, m.lines.Len())
		m.lines.Each(func(k slotmap.Key, l *line) bool {
			items = append(items, rtree.BulkItem{Box: l.box, RecordID: int(k.Index)})
			return true
		})
		return items
	})
}

func (m *Map) vertexTree() *rtree.RTree {
	return m.vertexIndex.load(func() []rtree.BulkItem {
		items := make([]rtree.BulkItem, 0, m.vertices.Len())
		m.vertices.Each(func(k slotmap.Key, v *vertex) bool {
			items = append(items, rtree.BulkItem{Box: pointBox(v.pos), RecordID: int(k.Index)})
			return true
		})
		return items
	})
}

func pointBox(p geometry.Point) rtree.Box {
	return rtree.Box{MinX: p.X, MinY: p.Y, MaxX: p.X, MaxY: p.Y}
}

func (m *Map) lineAt(record int) (LineID, bool) {
	k, ok := m.lines.KeyAt(uint32(record))
	return LineID(k), ok
}

func (m *Map) vertexAt(record int) (VertexID, bool) {
	k, ok := m.vertices.KeyAt(uint32(record))
	return VertexID(k), ok
}

// LinesInBox returns the lines whose bounding box intersects b.
func (m *Map) LinesInBox(b geometry.BBox) []LineID {
	box := toBox(b)
	var out []LineID
	_ = m.lineTree().RangeSearch(box, func(record int) error {
		if m.lineIndex.stale(record) {
			return nil
		}
		if id, ok := m.lineAt(record); ok {
			out = append(out, id)
		}
		return nil
	})
	for _, record := range m.lineIndex.pending {
		if id, ok := m.lineAt(int(record)); ok && overlap(m.ln(id).box, box) {
			out = append(out, id)
		}
	}
	return out
}

// VerticesInBox returns the vertices inside b, edges included, in storage
// order.
func (m *Map) VerticesInBox(b geometry.BBox) []VertexID {
	box := toBox(b)
	var out []VertexID
	_ = m.vertexTree().RangeSearch(box, func(record int) error {
		if m.vertexIndex.stale(record) {
			return nil
		}
		if id, ok := m.vertexAt(record); ok {
			out = append(out, id)
		}
		return nil
	})
	for _, record := range m.vertexIndex.pending {
		if id, ok := m.vertexAt(int(record)); ok && overlap(pointBox(m.vtx(id).pos), box) {
			out = append(out, id)
		}
	}
	slices.SortFunc(out, func(a, b VertexID) int {
		return cmp.Compare(a.Index, b.Index)
	})
	return out
}

// NearestLine returns the line closest to p, provided it is no farther than
// maxDist. A negative maxDist means no limit.
func (m *Map) NearestLine(p geometry.Point, maxDist float64) (LineID, float64, bool) {
	if maxDist < 0 {
		maxDist = math.Inf(1)
	}
	var (
		best     LineID
		bestDist = math.Inf(1)
	)
	_ = m.lineTree().PrioritySearch(pointBox(p), func(record int) error {
		if m.lineIndex.stale(record) {
			return nil
		}
		id, ok := m.lineAt(record)
		if !ok {
			return nil
		}
		if boxDistance(m.ln(id).box, p) > math.Min(bestDist, maxDist) {
			return rtree.Stop
		}
		if d := geometry.DistanceToSegment(p, m.LineSeg(id)); d < bestDist {
			best, bestDist = id, d
		}
		return nil
	})
	for _, record := range m.lineIndex.pending {
		id, ok := m.lineAt(int(record))
		if !ok {
			continue
		}
		if d := geometry.DistanceToSegment(p, m.LineSeg(id)); d < bestDist {
			best, bestDist = id, d
		}
	}
	if best.IsNil() || bestDist > maxDist {
		return LineID{}, 0, false
	}
	return best, bestDist, true
}

func boxDistance(b rtree.Box, p geometry.Point) float64 {
	dx := math.Max(0, math.Max(b.MinX-p.X, p.X-b.MaxX))
	dy := math.Max(0, math.Max(b.MinY-p.Y, p.Y-b.MaxY))
	return math.Hypot(dx, dy)
}

// Extent returns the bounding box of all lines.
func (m *Map) Extent() (geometry.BBox, bool) {
	if len(m.lineIndex.pending) > 0 {
		m.lineIndex.reset()
	}
	b, ok := m.lineTree().Extent()
	if !ok {
		return geometry.EmptyBBox(), false
	}
	return fromBox(b), true
}

// LinesIntersect reports whether two lines cross at a point interior to
// both, returning that point.
func (m *Map) LinesIntersect(a, b LineID) (geometry.Point, bool) {
	return geometry.SegmentsIntersect(m.LineSeg(a), m.LineSeg(b))
}

// LinesOverlap reports whether two lines join the same pair of vertices,
// in either direction.
func (m *Map) LinesOverlap(a, b LineID) bool {
	la, lb := m.ln(a), m.ln(b)
	return (la.v1 == lb.v1 && la.v2 == lb.v2) || (la.v1 == lb.v2 && la.v2 == lb.v1)
}

// TraceSegment follows the segment from→to and returns the first blocking
// line it crosses, with the crossing point. Lines are blocking when they are
// impassable or have fewer than two sides.
func (m *Map) TraceSegment(from, to geometry.Point) (LineID, geometry.Point, bool) {
	path := geometry.Seg{Start: from, End: to}
	var (
		hit     LineID
		hitAt   geometry.Point
		hitDist = math.Inf(1)
	)
	for _, id := range m.LinesInBox(path.BBox()) {
		l := m.ln(id)
		if !l.props.Flags.Has(FlagImpassable) && !l.s1.IsNil() && !l.s2.IsNil() {
			continue
		}
		p, ok := geometry.SegmentsIntersect(path, m.LineSeg(id))
		if !ok {
			continue
		}
		if d := geometry.Distance(from, p); d < hitDist {
			hit, hitAt, hitDist = id, p, d
		}
	}
	return hit, hitAt, !hit.IsNil()
}
