package mapdata

import (
	"fmt"

	"github.com/bloodmagesoftware/mapgeo/geometry"
	"github.com/bloodmagesoftware/mapgeo/polygon"
	"github.com/bloodmagesoftware/mapgeo/slotmap"
	"github.com/peterstace/simplefeatures/rtree"
)

type (
	VertexID slotmap.Key
	LineID   slotmap.Key
	SideID   slotmap.Key
	SectorID slotmap.Key
	ThingID  slotmap.Key
)

// The zero handles. A line face or side without a sector holds these.
var (
	NoSide   SideID
	NoSector SectorID
)

func (id VertexID) IsNil() bool { return slotmap.Key(id).IsZero() }
func (id LineID) IsNil() bool   { return slotmap.Key(id).IsZero() }
func (id SideID) IsNil() bool   { return slotmap.Key(id).IsZero() }
func (id SectorID) IsNil() bool { return slotmap.Key(id).IsZero() }
func (id ThingID) IsNil() bool  { return slotmap.Key(id).IsZero() }

func (id VertexID) String() string { return "vertex " + slotmap.Key(id).String() }
func (id LineID) String() string   { return "line " + slotmap.Key(id).String() }
func (id SideID) String() string   { return "side " + slotmap.Key(id).String() }
func (id SectorID) String() string { return "sector " + slotmap.Key(id).String() }
func (id ThingID) String() string  { return "thing " + slotmap.Key(id).String() }

// LineFlags uses the classic Doom linedef bit layout.
type LineFlags uint16

const (
	FlagImpassable LineFlags = 1 << iota
	FlagBlockMonsters
	FlagTwoSided
	FlagUpperUnpegged
	FlagLowerUnpegged
	FlagSecret
	FlagBlockSound
	FlagDontDraw
	FlagMapped
)

func (f LineFlags) Has(flag LineFlags) bool { return f&flag != 0 }

func (f LineFlags) String() string {
	return fmt.Sprintf("0x%03x", uint16(f))
}

type LineProps struct {
	Flags   LineFlags
	Special int
	Tag     int
	Args    [5]int
}

type SideProps struct {
	TexUpper  string
	TexMiddle string
	TexLower  string
	OffsetX   int
	OffsetY   int
}

type SectorProps struct {
	FloorHeight   int
	CeilingHeight int
	FloorTex      string
	CeilingTex    string
	Light         int
	Special       int
	Tag           int
}

type ThingProps struct {
	Pos   geometry.Point
	Type  int
	Angle int
	Flags int
}

// Defaults are the properties given to sides and sectors created by edit
// operations that have nothing to copy from.
type Defaults struct {
	Sector SectorProps
	Side   SideProps
}

// DefaultProps returns the stock Doom defaults.
func DefaultProps() Defaults {
	return Defaults{
		Sector: SectorProps{
			FloorHeight:   0,
			CeilingHeight: 128,
			FloorTex:      "FLOOR0_1",
			CeilingTex:    "CEIL1_1",
			Light:         160,
		},
		Side: SideProps{
			TexUpper:  "-",
			TexMiddle: "STARTAN2",
			TexLower:  "-",
		},
	}
}

type vertex struct {
	pos   geometry.Point
	lines []LineID
}

type line struct {
	v1, v2 VertexID
	s1, s2 SideID
	props  LineProps
	box    rtree.Box
}

type side struct {
	line   LineID
	sector SectorID
	props  SideProps
}

type sector struct {
	props SectorProps
	sides []SideID

	// nil until first requested, reset whenever the boundary changes
	bbox    *geometry.BBox
	poly    *polygon.Polygon
	polyErr error
}
