package level

import (
	"errors"
	"fmt"

	"github.com/bloodmagesoftware/mapgeo/geometry"
	"github.com/bloodmagesoftware/mapgeo/mapdata"
	"go.uber.org/zap"
)

var (
	// ErrInvalidReference is returned when a record points past the end of
	// the list it indexes, or a side is claimed by two line faces.
	ErrInvalidReference = errors.New("invalid reference")
	// ErrZeroLengthLine is returned for a line whose two ends are the same
	// vertex record.
	ErrZeroLengthLine = errors.New("zero-length line")
)

// ToMap builds the entity graph described by the level. Sides no line uses
// are dropped.
func (l *Level) ToMap(opts ...mapdata.Option) (*mapdata.Map, error) {
	m := mapdata.New(opts...)

	vertices := make([]mapdata.VertexID, len(l.Vertices))
	for i, v := range l.Vertices {
		vertices[i] = m.AddVertex(geometry.Pt(v.X, v.Y))
	}

	sectors := make([]mapdata.SectorID, len(l.Sectors))
	for i, s := range l.Sectors {
		sectors[i] = m.CreateSector(mapdata.SectorProps{
			FloorHeight:   s.FloorHeight,
			CeilingHeight: s.CeilingHeight,
			FloorTex:      s.FloorTex,
			CeilingTex:    s.CeilingTex,
			Light:         s.Light,
			Special:       s.Special,
			Tag:           s.Tag,
		})
	}

	used := make([]bool, len(l.Sides))
	bindSide := func(li int, id mapdata.LineID, index *int, front bool) error {
		if index == nil {
			return nil
		}
		si := *index
		if si < 0 || si >= len(l.Sides) {
			return fmt.Errorf("line %d: side %d: %w", li, si, ErrInvalidReference)
		}
		if used[si] {
			return fmt.Errorf("line %d: side %d is already used: %w", li, si, ErrInvalidReference)
		}
		used[si] = true

		s := l.Sides[si]
		if s.Sector < 0 || s.Sector >= len(sectors) {
			return fmt.Errorf("side %d: sector %d: %w", si, s.Sector, ErrInvalidReference)
		}
		sid := m.CreateSide(id, front, sectors[s.Sector])
		m.SetSideProps(sid, mapdata.SideProps{
			TexUpper:  s.Upper,
			TexMiddle: s.Middle,
			TexLower:  s.Lower,
			OffsetX:   s.OffsetX,
			OffsetY:   s.OffsetY,
		})
		return nil
	}

	for i, ln := range l.Lines {
		if ln.V1 < 0 || ln.V1 >= len(vertices) {
			return nil, fmt.Errorf("line %d: vertex %d: %w", i, ln.V1, ErrInvalidReference)
		}
		if ln.V2 < 0 || ln.V2 >= len(vertices) {
			return nil, fmt.Errorf("line %d: vertex %d: %w", i, ln.V2, ErrInvalidReference)
		}
		if ln.V1 == ln.V2 {
			return nil, fmt.Errorf("line %d: %w", i, ErrZeroLengthLine)
		}
		if len(ln.Args) > 5 {
			return nil, fmt.Errorf("line %d: %d special arguments, at most 5 allowed", i, len(ln.Args))
		}

		id := m.CreateLine(vertices[ln.V1], vertices[ln.V2])
		if err := bindSide(i, id, ln.Front, true); err != nil {
			return nil, err
		}
		if err := bindSide(i, id, ln.Back, false); err != nil {
			return nil, err
		}

		// sides reset the sidedness flags, the stored flags win
		props := mapdata.LineProps{
			Flags:   mapdata.LineFlags(ln.Flags),
			Special: ln.Special,
			Tag:     ln.Tag,
		}
		copy(props.Args[:], ln.Args)
		m.SetLineProps(id, props)
	}

	for i, ok := range used {
		if !ok {
			m.Logger().Debug("dropping unused side", zap.Int("side", i))
		}
	}

	for _, t := range l.Things {
		m.CreateThing(mapdata.ThingProps{
			Pos:   geometry.Pt(t.X, t.Y),
			Type:  t.Type,
			Angle: t.Angle,
			Flags: t.Flags,
		})
	}

	return m, nil
}

// FromMap flattens a map into a level. Records are numbered in storage
// order; sides are numbered in the order their lines reference them, front
// before back.
func FromMap(m *mapdata.Map) *Level {
	l := New()

	vertexIndex := make(map[mapdata.VertexID]int, m.NumVertices())
	for _, id := range m.Vertices() {
		vertexIndex[id] = len(l.Vertices)
		p := m.VertexPos(id)
		l.Vertices = append(l.Vertices, Vertex{X: p.X, Y: p.Y})
	}

	sectorIndex := make(map[mapdata.SectorID]int, m.NumSectors())
	for _, id := range m.Sectors() {
		sectorIndex[id] = len(l.Sectors)
		p := m.SectorProps(id)
		l.Sectors = append(l.Sectors, Sector{
			FloorHeight:   p.FloorHeight,
			CeilingHeight: p.CeilingHeight,
			FloorTex:      p.FloorTex,
			CeilingTex:    p.CeilingTex,
			Light:         p.Light,
			Special:       p.Special,
			Tag:           p.Tag,
		})
	}

	addSide := func(id mapdata.SideID) *int {
		if id.IsNil() {
			return nil
		}
		p := m.SideProps(id)
		index := len(l.Sides)
		l.Sides = append(l.Sides, Side{
			Sector:  sectorIndex[m.SideSector(id)],
			Upper:   p.TexUpper,
			Middle:  p.TexMiddle,
			Lower:   p.TexLower,
			OffsetX: p.OffsetX,
			OffsetY: p.OffsetY,
		})
		return &index
	}

	for _, id := range m.Lines() {
		v1, v2 := m.LineVertices(id)
		front, back := m.LineSides(id)
		p := m.LineProps(id)

		ln := Line{
			V1:      vertexIndex[v1],
			V2:      vertexIndex[v2],
			Front:   addSide(front),
			Back:    addSide(back),
			Flags:   uint16(p.Flags),
			Special: p.Special,
			Tag:     p.Tag,
		}
		if p.Args != [5]int{} {
			ln.Args = append([]int(nil), p.Args[:]...)
		}
		l.Lines = append(l.Lines, ln)
	}

	for _, id := range m.Things() {
		t := m.Thing(id)
		l.Things = append(l.Things, Thing{
			X:     t.Pos.X,
			Y:     t.Pos.Y,
			Type:  t.Type,
			Angle: t.Angle,
			Flags: t.Flags,
		})
	}

	return l
}

// LoadMap reads a level file and builds its entity graph.
func LoadMap(path string, opts ...mapdata.Option) (*mapdata.Map, error) {
	l := New()
	if err := l.Load(path); err != nil {
		return nil, fmt.Errorf("loading level %s: %w", path, err)
	}
	m, err := l.ToMap(opts...)
	if err != nil {
		return nil, fmt.Errorf("building level %s: %w", path, err)
	}
	return m, nil
}
