package linter

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bloodmagesoftware/mapgeo/geometry"
	"github.com/bloodmagesoftware/mapgeo/level"
	"github.com/bloodmagesoftware/mapgeo/mapdata"
	"github.com/bloodmagesoftware/mapgeo/sectorbuilder"
	"go.uber.org/zap"
)

// Problem is one finding on one map entity.
type Problem struct {
	Object mapdata.Object
	Reason string
}

// Lint scans level files in levelsDir for broken geometry.
func Lint(levelsDir string, log *zap.Logger) error {
	fmt.Println("🔍 Linting level geometry...")

	violationCount := 0

	err := filepath.Walk(levelsDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() || !strings.HasSuffix(path, ".yaml") {
			return nil
		}

		m, err := level.LoadMap(path, mapdata.WithLogger(log))
		if err != nil {
			fmt.Printf("  [ERROR] File: %s\n    Reason: %v\n", path, err)
			fmt.Println(strings.Repeat("-", 60))
			violationCount++
			return nil
		}

		for _, p := range LintMap(m, log) {
			object := "map"
			if p.Object != nil {
				object = m.Describe(p.Object)
			}
			fmt.Printf(
				"  [ERROR] File: %s\n"+
					"    Object: %s\n"+
					"    Reason: %s\n",
				path, object, p.Reason,
			)
			fmt.Println(strings.Repeat("-", 60))
			violationCount++
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("walking directory %s: %w", levelsDir, err)
	}

	if violationCount > 0 {
		return fmt.Errorf("linter failed: found %d problems", violationCount)
	}

	fmt.Println("✅ Linter Passed: No geometry problems found.")
	return nil
}

// LintMap checks one map. Problems are reported per entity kind in storage
// order.
func LintMap(m *mapdata.Map, log *zap.Logger) []Problem {
	var problems []Problem
	report := func(o mapdata.Object, format string, args ...any) {
		problems = append(problems, Problem{Object: o, Reason: fmt.Sprintf(format, args...)})
	}

	for _, err := range m.Check() {
		problems = append(problems, Problem{Reason: err.Error()})
	}

	for _, v := range m.Vertices() {
		if len(m.VertexLines(v)) == 0 {
			report(v, "vertex is not used by any line")
		}
	}

	lines := m.Lines()
	for _, l := range lines {
		seg := m.LineSeg(l)
		if geometry.Equal(seg.Start, seg.End, geometry.Epsilon) {
			report(l, "zero-length line")
			continue
		}

		front, back := m.LineSides(l)
		flags := m.LineFlags(l)
		switch {
		case front.IsNil() && back.IsNil():
			report(l, "line has no sides")
		case front.IsNil():
			report(l, "line has a back side but no front side")
		case !back.IsNil() && !flags.Has(mapdata.FlagTwoSided):
			report(l, "two-sided line is missing the two-sided flag")
		case back.IsNil() && flags.Has(mapdata.FlagTwoSided):
			report(l, "one-sided line has the two-sided flag")
		}

		for _, other := range m.LinesInBox(seg.BBox()) {
			if other.Index <= l.Index {
				continue
			}
			if m.LinesOverlap(l, other) {
				report(l, "overlaps %v", other)
			} else if p, ok := m.LinesIntersect(l, other); ok {
				report(l, "crosses %v at (%g, %g)", other, p.X, p.Y)
			}
		}
	}

	for _, s := range m.Sectors() {
		if len(m.SectorSides(s)) == 0 {
			report(s, "sector has no sides")
			continue
		}
		if _, err := m.SectorPolygon(s); err != nil {
			report(s, "sector cannot be triangulated: %v", err)
		}
	}

	problems = append(problems, lintBoundaries(m, log)...)
	return problems
}

// lintBoundaries traces every side once and reports faces whose traced
// boundary disagrees with the sector bound to them.
func lintBoundaries(m *mapdata.Map, log *zap.Logger) []Problem {
	var problems []Problem
	seen := make(map[mapdata.SideID]bool)
	b := sectorbuilder.New(m, log)

	for _, l := range m.Lines() {
		if m.LineLength(l) == 0 {
			continue
		}
		for _, front := range []bool{true, false} {
			sd := m.LineSide(l, front)
			if sd.IsNil() || seen[sd] {
				continue
			}
			seen[sd] = true

			if err := b.TraceSector(l, front); err != nil {
				reason := err.Error()
				if errors.Is(err, sectorbuilder.ErrOutsideMap) {
					reason = "side faces the void"
				}
				problems = append(problems, Problem{Object: sd, Reason: reason})
				continue
			}

			sec := m.SideSector(sd)
			for _, e := range b.Edges() {
				other := m.LineSide(e.Line, e.Front)
				if other.IsNil() {
					problems = append(problems, Problem{
						Object: sd,
						Reason: fmt.Sprintf("%v is open: no side on %v", sec, e),
					})
					break
				}
				seen[other] = true
				if m.SideSector(other) != sec {
					problems = append(problems, Problem{
						Object: sd,
						Reason: fmt.Sprintf("%v leaks into %v through %v", sec, m.SideSector(other), e),
					})
					break
				}
			}
		}
	}
	return problems
}
