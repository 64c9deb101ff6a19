// Package mapdata holds the entity graph of a Doom-style map: vertices,
// lines, sides, sectors and things, with all back-references kept in sync.
//
// Entities are addressed by generation-checked handles. Passing a handle to
// an entity that was removed is a programming error and panics.
package mapdata

import (
	"fmt"

	"github.com/bloodmagesoftware/mapgeo/geometry"
	"github.com/bloodmagesoftware/mapgeo/slotmap"
	"go.uber.org/zap"
)

type Map struct {
	vertices slotmap.Map[vertex]
	lines    slotmap.Map[line]
	sides    slotmap.Map[side]
	sectors  slotmap.Map[sector]
	things   slotmap.Map[ThingProps]

	// line boxes and vertex positions keyed by slot index
	lineIndex   lazyIndex
	vertexIndex lazyIndex

	defaults Defaults
	log      *zap.Logger
}

type Option func(*Map)

func WithLogger(log *zap.Logger) Option {
	return func(m *Map) {
		if log != nil {
			m.log = log
		}
	}
}

func WithDefaults(d Defaults) Option {
	return func(m *Map) {
		m.defaults = d
	}
}

// New returns an empty map.
func New(opts ...Option) *Map {
	m := &Map{
		defaults: DefaultProps(),
		log:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Map) Logger() *zap.Logger { return m.log }
func (m *Map) Defaults() Defaults  { return m.defaults }

func (m *Map) vtx(id VertexID) *vertex {
	v, ok := m.vertices.Get(slotmap.Key(id))
	if !ok {
		panic(fmt.Sprintf("mapdata: %v does not exist", id))
	}
	return v
}

func (m *Map) ln(id LineID) *line {
	l, ok := m.lines.Get(slotmap.Key(id))
	if !ok {
		panic(fmt.Sprintf("mapdata: %v does not exist", id))
	}
	return l
}

func (m *Map) sd(id SideID) *side {
	s, ok := m.sides.Get(slotmap.Key(id))
	if !ok {
		panic(fmt.Sprintf("mapdata: %v does not exist", id))
	}
	return s
}

func (m *Map) sec(id SectorID) *sector {
	s, ok := m.sectors.Get(slotmap.Key(id))
	if !ok {
		panic(fmt.Sprintf("mapdata: %v does not exist", id))
	}
	return s
}

func (m *Map) HasVertex(id VertexID) bool { return m.vertices.Contains(slotmap.Key(id)) }
func (m *Map) HasLine(id LineID) bool     { return m.lines.Contains(slotmap.Key(id)) }
func (m *Map) HasSide(id SideID) bool     { return m.sides.Contains(slotmap.Key(id)) }
func (m *Map) HasSector(id SectorID) bool { return m.sectors.Contains(slotmap.Key(id)) }
func (m *Map) HasThing(id ThingID) bool   { return m.things.Contains(slotmap.Key(id)) }

func (m *Map) NumVertices() int { return m.vertices.Len() }
func (m *Map) NumLines() int    { return m.lines.Len() }
func (m *Map) NumSides() int    { return m.sides.Len() }
func (m *Map) NumSectors() int  { return m.sectors.Len() }
func (m *Map) NumThings() int   { return m.things.Len() }

// Vertices returns all live vertices in storage order.
func (m *Map) Vertices() []VertexID {
	keys := m.vertices.Keys()
	ids := make([]VertexID, len(keys))
	for i, k := range keys {
		ids[i] = VertexID(k)
	}
	return ids
}

// Lines returns all live lines in storage order.
func (m *Map) Lines() []LineID {
	keys := m.lines.Keys()
	ids := make([]LineID, len(keys))
	for i, k := range keys {
		ids[i] = LineID(k)
	}
	return ids
}

// Sides returns all live sides in storage order.
func (m *Map) Sides() []SideID {
	keys := m.sides.Keys()
	ids := make([]SideID, len(keys))
	for i, k := range keys {
		ids[i] = SideID(k)
	}
	return ids
}

// Sectors returns all live sectors in storage order.
func (m *Map) Sectors() []SectorID {
	keys := m.sectors.Keys()
	ids := make([]SectorID, len(keys))
	for i, k := range keys {
		ids[i] = SectorID(k)
	}
	return ids
}

// Things returns all live things in storage order.
func (m *Map) Things() []ThingID {
	keys := m.things.Keys()
	ids := make([]ThingID, len(keys))
	for i, k := range keys {
		ids[i] = ThingID(k)
	}
	return ids
}

func (m *Map) VertexPos(id VertexID) geometry.Point {
	return m.vtx(id).pos
}

// VertexLines returns the lines connected to a vertex. The slice is a copy.
func (m *Map) VertexLines(id VertexID) []LineID {
	return append([]LineID(nil), m.vtx(id).lines...)
}

func (m *Map) LineVertices(id LineID) (VertexID, VertexID) {
	l := m.ln(id)
	return l.v1, l.v2
}

// LineSides returns the front and back side of a line. Either may be NoSide.
func (m *Map) LineSides(id LineID) (front, back SideID) {
	l := m.ln(id)
	return l.s1, l.s2
}

// LineSide returns the front or the back side of a line.
func (m *Map) LineSide(id LineID, front bool) SideID {
	l := m.ln(id)
	if front {
		return l.s1
	}
	return l.s2
}

// LineSector returns the sector on one face of a line, or NoSector.
func (m *Map) LineSector(id LineID, front bool) SectorID {
	s := m.LineSide(id, front)
	if s.IsNil() {
		return NoSector
	}
	return m.sd(s).sector
}

func (m *Map) LineSeg(id LineID) geometry.Seg {
	l := m.ln(id)
	return geometry.Seg{Start: m.vtx(l.v1).pos, End: m.vtx(l.v2).pos}
}

func (m *Map) LineLength(id LineID) float64 {
	return m.LineSeg(id).Length()
}

func (m *Map) LineProps(id LineID) LineProps {
	return m.ln(id).props
}

func (m *Map) SetLineProps(id LineID, p LineProps) {
	m.ln(id).props = p
}

func (m *Map) LineFlags(id LineID) LineFlags {
	return m.ln(id).props.Flags
}

func (m *Map) SideLine(id SideID) LineID {
	return m.sd(id).line
}

func (m *Map) SideSector(id SideID) SectorID {
	return m.sd(id).sector
}

// SideIsFront reports whether the side is its line's front side.
func (m *Map) SideIsFront(id SideID) bool {
	return m.ln(m.sd(id).line).s1 == id
}

func (m *Map) SideProps(id SideID) SideProps {
	return m.sd(id).props
}

func (m *Map) SetSideProps(id SideID, p SideProps) {
	m.sd(id).props = p
}

// SectorSides returns the sides bound to a sector. The slice is a copy.
func (m *Map) SectorSides(id SectorID) []SideID {
	return append([]SideID(nil), m.sec(id).sides...)
}

// SectorLines returns each line with at least one side in the sector, once,
// in side order.
func (m *Map) SectorLines(id SectorID) []LineID {
	s := m.sec(id)
	seen := make(map[LineID]bool, len(s.sides))
	var out []LineID
	for _, sid := range s.sides {
		l := m.sd(sid).line
		if !seen[l] {
			seen[l] = true
			out = append(out, l)
		}
	}
	return out
}

func (m *Map) SectorProps(id SectorID) SectorProps {
	return m.sec(id).props
}

func (m *Map) SetSectorProps(id SectorID, p SectorProps) {
	m.sec(id).props = p
}

func (m *Map) Thing(id ThingID) ThingProps {
	t, ok := m.things.Get(slotmap.Key(id))
	if !ok {
		panic(fmt.Sprintf("mapdata: %v does not exist", id))
	}
	return *t
}

func (m *Map) SetThing(id ThingID, p ThingProps) {
	t, ok := m.things.Get(slotmap.Key(id))
	if !ok {
		panic(fmt.Sprintf("mapdata: %v does not exist", id))
	}
	*t = p
}
