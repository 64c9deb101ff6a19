package linter

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/bloodmagesoftware/mapgeo/level"
	"github.com/bloodmagesoftware/mapgeo/mapdata"
	"go.uber.org/zap/zaptest"
)

func idx(i int) *int { return &i }

// room is a clockwise 64x64 room with every front side facing in.
func room() *level.Level {
	l := level.New()
	l.Vertices = []level.Vertex{{X: 0, Y: 0}, {X: 0, Y: 64}, {X: 64, Y: 64}, {X: 64, Y: 0}}
	l.Sectors = []level.Sector{{CeilingHeight: 128, FloorTex: "FLOOR0_1", CeilingTex: "CEIL1_1", Light: 160}}
	for i := range 4 {
		l.Sides = append(l.Sides, level.Side{Sector: 0, Upper: "-", Middle: "STARTAN2", Lower: "-"})
		l.Lines = append(l.Lines, level.Line{V1: i, V2: (i + 1) % 4, Front: idx(i), Flags: 1})
	}
	return l
}

// twoRooms adds a second room east of room, sharing the line x=64.
func twoRooms() *level.Level {
	l := room()
	l.Vertices = append(l.Vertices, level.Vertex{X: 128, Y: 64}, level.Vertex{X: 128, Y: 0})
	l.Sectors = append(l.Sectors, l.Sectors[0])
	for range 4 {
		l.Sides = append(l.Sides, level.Side{Sector: 1, Upper: "-", Middle: "STARTAN2", Lower: "-"})
	}
	l.Lines[2].Back = idx(4)
	l.Lines[2].Flags = 4
	l.Lines = append(l.Lines,
		level.Line{V1: 2, V2: 4, Front: idx(5), Flags: 1},
		level.Line{V1: 4, V2: 5, Front: idx(6), Flags: 1},
		level.Line{V1: 5, V2: 3, Front: idx(7), Flags: 1},
	)
	return l
}

func TestLintMap(t *testing.T) {
	tests := []struct {
		name string
		doc  func() *level.Level
		// substring expected in one of the reasons, empty for a clean map
		want string
	}{
		{name: "clean room", doc: room},
		{name: "clean neighbours", doc: twoRooms},
		{
			name: "stray vertex",
			doc: func() *level.Level {
				l := room()
				l.Vertices = append(l.Vertices, level.Vertex{X: 500, Y: 500})
				return l
			},
			want: "not used by any line",
		},
		{
			name: "back side only",
			doc: func() *level.Level {
				l := room()
				l.Lines[0].Back, l.Lines[0].Front = l.Lines[0].Front, nil
				return l
			},
			want: "back side but no front side",
		},
		{
			name: "stale two-sided flag",
			doc: func() *level.Level {
				l := room()
				l.Lines[1].Flags = 4
				return l
			},
			want: "one-sided line has the two-sided flag",
		},
		{
			name: "missing two-sided flag",
			doc: func() *level.Level {
				l := twoRooms()
				l.Lines[2].Flags = 1
				return l
			},
			want: "missing the two-sided flag",
		},
		{
			name: "crossing line",
			doc: func() *level.Level {
				l := room()
				l.Vertices = append(l.Vertices, level.Vertex{X: -16, Y: 32}, level.Vertex{X: 80, Y: 32})
				l.Lines = append(l.Lines, level.Line{V1: 4, V2: 5, Flags: 1})
				return l
			},
			want: "crosses",
		},
		{
			name: "sector leak",
			doc: func() *level.Level {
				l := twoRooms()
				l.Sides[4].Sector = 0
				return l
			},
			want: "leaks into",
		},
		{
			name: "zero-length line",
			doc: func() *level.Level {
				l := room()
				l.Vertices = append(l.Vertices, level.Vertex{X: 0, Y: 0})
				l.Lines = append(l.Lines, level.Line{V1: 0, V2: 4, Flags: 1})
				return l
			},
			want: "zero-length line",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log := zaptest.NewLogger(t)
			m, err := tt.doc().ToMap(mapdata.WithLogger(log))
			if err != nil {
				t.Fatalf("ToMap: %v", err)
			}

			problems := LintMap(m, log)
			if tt.want == "" {
				for _, p := range problems {
					t.Errorf("unexpected problem on %v: %s", p.Object, p.Reason)
				}
				return
			}
			for _, p := range problems {
				if strings.Contains(p.Reason, tt.want) {
					return
				}
			}
			t.Errorf("no problem mentions %q, got %+v", tt.want, problems)
		})
	}
}

func TestLint(t *testing.T) {
	dir := t.TempDir()
	log := zaptest.NewLogger(t)

	if err := twoRooms().Save(filepath.Join(dir, "e1m1.yaml")); err != nil {
		t.Fatal(err)
	}
	if err := Lint(dir, log); err != nil {
		t.Fatalf("Lint on clean levels: %v", err)
	}

	broken := room()
	broken.Lines[1].Flags = 4
	if err := broken.Save(filepath.Join(dir, "sub", "e1m2.yaml")); err != nil {
		t.Fatal(err)
	}
	if err := Lint(dir, log); err == nil {
		t.Error("Lint passed a level with problems")
	}
}
