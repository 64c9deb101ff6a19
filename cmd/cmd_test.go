package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bloodmagesoftware/mapgeo/geometry"
	"github.com/bloodmagesoftware/mapgeo/level"
	"github.com/bloodmagesoftware/mapgeo/mapdata"
	"github.com/bloodmagesoftware/mapgeo/mapedit"
	"github.com/bloodmagesoftware/mapgeo/project"
	"go.uber.org/zap/zaptest"
)

func TestParsePoint(t *testing.T) {
	tests := []struct {
		in      string
		want    geometry.Point
		wantErr bool
	}{
		{in: "0,0", want: geometry.Pt(0, 0)},
		{in: "-16.5, 32", want: geometry.Pt(-16.5, 32)},
		{in: "12", wantErr: true},
		{in: "a,1", wantErr: true},
		{in: "1,b", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parsePoint(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parsePoint(%q) error = %v", tt.in, err)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("parsePoint(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}

	if _, err := parsePoints("0,0"); err == nil {
		t.Error("parsePoints accepted a single point")
	}
}

func TestEditTraceTriangulate(t *testing.T) {
	logger = zaptest.NewLogger(t)
	m := mapdata.New(mapdata.WithLogger(logger))
	e := mapedit.New(m, mapedit.WithLogger(logger))

	var out bytes.Buffer
	if err := editLevel(&out, e, []string{"0,0 0,64 64,64 64,0"}, true, []string{"32,32"}); err != nil {
		t.Fatalf("editLevel: %v", err)
	}
	for _, want := range []string{"drew 4 points", "32,32 is already inside"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("edit output lacks %q:\n%s", want, out.String())
		}
	}

	out.Reset()
	if err := traceLine(&out, m, 0, true); err != nil {
		t.Fatalf("traceLine: %v", err)
	}
	for _, want := range []string{"outer outline, 4 edges, clockwise", "valid: sector"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("trace output lacks %q:\n%s", want, out.String())
		}
	}

	out.Reset()
	if err := traceLine(&out, m, 0, false); err != nil {
		t.Fatalf("traceLine: %v", err)
	}
	if !strings.Contains(out.String(), "trace failed: outside map area") {
		t.Errorf("back trace output:\n%s", out.String())
	}

	if err := traceLine(&out, m, 4, true); err == nil {
		t.Error("traceLine accepted an out of range line")
	}

	out.Reset()
	triangulate(&out, m, m.Sectors(), nil)
	if !strings.Contains(out.String(), "1 pieces, 2 triangles, area 4096") {
		t.Errorf("triangulate output:\n%s", out.String())
	}
}

func TestBuildLevels(t *testing.T) {
	logger = zaptest.NewLogger(t)
	dir := t.TempDir()

	good := level.New()
	good.Vertices = []level.Vertex{{X: 0, Y: 0}, {X: 0, Y: 64}, {X: 64, Y: 64}, {X: 64, Y: 0}, {X: 300, Y: 300}}
	good.Sectors = []level.Sector{{CeilingHeight: 128, FloorTex: "FLOOR0_1", CeilingTex: "CEIL1_1", Light: 160}}
	for i := range 4 {
		s := i
		good.Sides = append(good.Sides, level.Side{Sector: 0, Upper: "-", Middle: "STARTAN2", Lower: "-"})
		good.Lines = append(good.Lines, level.Line{V1: i, V2: (i + 1) % 4, Front: &s, Flags: 1})
	}
	if err := good.Save(filepath.Join(dir, "a.yaml")); err != nil {
		t.Fatal(err)
	}

	broken := "vertices: []\nlines:\n    - {v1: 0, v2: 1}\nsides: []\nsectors: []\nthings: []\n"
	if err := os.WriteFile(filepath.Join(dir, "b.yaml"), []byte(broken), 0644); err != nil {
		t.Fatal(err)
	}

	var got []string
	var built []byte
	for rel, data := range buildLevelsIterator(context.Background(), dir, project.DefaultConfig()) {
		got = append(got, rel)
		if rel == "a.yaml" {
			built = data
		} else if data != nil {
			t.Errorf("%s built despite a dangling reference", rel)
		}
	}
	if strings.Join(got, ",") != "a.yaml,b.yaml" {
		t.Fatalf("yielded %v", got)
	}
	if built == nil {
		t.Fatal("a.yaml was not built")
	}

	path := filepath.Join(t.TempDir(), "a.yaml")
	if err := os.WriteFile(path, built, 0644); err != nil {
		t.Fatal(err)
	}
	m, err := level.LoadMap(path)
	if err != nil {
		t.Fatalf("built level does not load: %v", err)
	}
	if m.NumVertices() != 4 || m.NumSectors() != 1 {
		t.Errorf("built level has %d vertices and %d sectors, want 4 and 1", m.NumVertices(), m.NumSectors())
	}
}
