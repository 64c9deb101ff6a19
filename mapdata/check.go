package mapdata

import (
	"fmt"
	"slices"

	"github.com/bloodmagesoftware/mapgeo/slotmap"
)

// Check verifies that all references between entities agree with each other
// and returns one error per broken link.
func (m *Map) Check() []error {
	var errs []error
	fail := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf(format, args...))
	}

	m.vertices.Each(func(k slotmap.Key, v *vertex) bool {
		id := VertexID(k)
		for _, l := range v.lines {
			if !m.HasLine(l) {
				fail("%v lists missing %v", id, l)
				continue
			}
			if ln := m.ln(l); ln.v1 != id && ln.v2 != id {
				fail("%v lists %v which does not use it", id, l)
			}
		}
		return true
	})

	m.lines.Each(func(k slotmap.Key, l *line) bool {
		id := LineID(k)
		for _, v := range [2]VertexID{l.v1, l.v2} {
			if !m.HasVertex(v) {
				fail("%v uses missing %v", id, v)
			} else if !slices.Contains(m.vtx(v).lines, id) {
				fail("%v is not listed by %v", id, v)
			}
		}
		if l.v1 == l.v2 {
			fail("%v starts and ends at %v", id, l.v1)
		}
		for _, s := range [2]SideID{l.s1, l.s2} {
			if s.IsNil() {
				continue
			}
			if !m.HasSide(s) {
				fail("%v uses missing %v", id, s)
			} else if m.sd(s).line != id {
				fail("%v uses %v which belongs to %v", id, s, m.sd(s).line)
			}
		}
		if !l.s1.IsNil() && l.s1 == l.s2 {
			fail("%v has %v on both faces", id, l.s1)
		}
		return true
	})

	m.sides.Each(func(k slotmap.Key, s *side) bool {
		id := SideID(k)
		if !m.HasLine(s.line) {
			fail("%v belongs to missing %v", id, s.line)
		} else if l := m.ln(s.line); l.s1 != id && l.s2 != id {
			fail("%v is not used by %v", id, s.line)
		}
		if !m.HasSector(s.sector) {
			fail("%v faces missing %v", id, s.sector)
		} else if !slices.Contains(m.sec(s.sector).sides, id) {
			fail("%v is not listed by %v", id, s.sector)
		}
		return true
	})

	m.sectors.Each(func(k slotmap.Key, s *sector) bool {
		id := SectorID(k)
		for i, sid := range s.sides {
			if !m.HasSide(sid) {
				fail("%v lists missing %v", id, sid)
				continue
			}
			if m.sd(sid).sector != id {
				fail("%v lists %v which faces %v", id, sid, m.sd(sid).sector)
			}
			if slices.Index(s.sides, sid) != i {
				fail("%v lists %v twice", id, sid)
			}
		}
		return true
	})

	return errs
}
