package formatter

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap/zaptest"
)

// A triangle room with its sides listed out of line order and one unused
// side, indented with two spaces.
const messy = `vertices:
  - {x: 0, y: 0}
  - {x: 0, y: 64}
  - {x: 64, y: 0}
lines:
  - {v1: 0, v2: 1, front: 2, flags: 1}
  - {v1: 1, v2: 2, front: 0, flags: 1}
  - {v1: 2, v2: 0, front: 1, flags: 1}
sides:
  - {sector: 0, upper: "-", middle: B, lower: "-"}
  - {sector: 0, upper: "-", middle: C, lower: "-"}
  - {sector: 0, upper: "-", middle: A, lower: "-"}
  - {sector: 0, upper: "-", middle: UNUSED, lower: "-"}
sectors:
  - {floor_height: 0, ceiling_height: 128, floor_tex: F, ceiling_tex: C, light: 160}
things: []
`

func TestFormat(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tri.yaml")
	if err := os.WriteFile(path, []byte(messy), 0644); err != nil {
		t.Fatal(err)
	}
	log := zaptest.NewLogger(t)

	if err := Check(dir, log); err == nil {
		t.Fatal("Check passed an unformatted level")
	}
	if err := Format(dir, log); err != nil {
		t.Fatalf("Format: %v", err)
	}
	if err := Check(dir, log); err != nil {
		t.Fatalf("Check after Format: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	out := string(data)
	if strings.Contains(out, "UNUSED") {
		t.Error("unused side was kept")
	}
	a, b, c := strings.Index(out, "middle: A"), strings.Index(out, "middle: B"), strings.Index(out, "middle: C")
	if a < 0 || !(a < b && b < c) {
		t.Errorf("sides not in line order:\n%s", out)
	}
	if !strings.Contains(out, "\n    - x: 0\n") {
		t.Errorf("not indented with 4 spaces:\n%s", out)
	}
}

func TestFormatReportsBrokenLevel(t *testing.T) {
	dir := t.TempDir()
	broken := "vertices: []\nlines:\n  - {v1: 0, v2: 1}\nsides: []\nsectors: []\nthings: []\n"
	if err := os.WriteFile(filepath.Join(dir, "broken.yaml"), []byte(broken), 0644); err != nil {
		t.Fatal(err)
	}
	if err := Format(dir, zaptest.NewLogger(t)); err == nil {
		t.Error("Format accepted a level with dangling references")
	}
}
