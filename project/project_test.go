package project

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, dir, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, ConfigFileName), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestFindProjectRoot(t *testing.T) {
	root := t.TempDir()
	writeConfig(t, root, "name: doom\n")
	nested := filepath.Join(root, "levels", "episode1")
	if err := os.MkdirAll(nested, 0755); err != nil {
		t.Fatal(err)
	}

	got, err := FindProjectRoot(nested)
	if err != nil {
		t.Fatalf("FindProjectRoot: %v", err)
	}
	want, _ := filepath.Abs(root)
	if got != want {
		t.Errorf("FindProjectRoot = %s, want %s", got, want)
	}
}

func TestFindProjectRootMissing(t *testing.T) {
	_, err := FindProjectRoot(t.TempDir())
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestLoadConfig(t *testing.T) {
	tests := []struct {
		name    string
		content string
		check   func(t *testing.T, c *Config)
		wantErr bool
	}{
		{
			name:    "defaults fill missing fields",
			content: "name: doom\n",
			check: func(t *testing.T, c *Config) {
				if c.SplitDistance != 0.1 || c.Levels != "levels" || c.Textures != "textures" {
					t.Errorf("config = %+v", c)
				}
				if c.Defaults.Sector.CeilingHeight != 128 || c.Defaults.Side.TexMiddle != "STARTAN2" {
					t.Errorf("defaults = %+v", c.Defaults)
				}
			},
		},
		{
			name: "overrides",
			content: `name: heretic
levels: maps
split_distance: 0.5
defaults:
    sector:
        floor_tex: FLOOR04
        light: 96
    side:
        tex_middle: GRSTNPB
`,
			check: func(t *testing.T, c *Config) {
				if c.Levels != "maps" || c.SplitDistance != 0.5 {
					t.Errorf("config = %+v", c)
				}
				d := c.MapDefaults()
				if d.Sector.FloorTex != "FLOOR04" || d.Sector.Light != 96 || d.Sector.CeilingTex != "CEIL1_1" {
					t.Errorf("sector defaults = %+v", d.Sector)
				}
				if d.Side.TexMiddle != "GRSTNPB" || d.Side.TexUpper != "-" {
					t.Errorf("side defaults = %+v", d.Side)
				}
			},
		},
		{name: "missing name", content: "levels: maps\n", wantErr: true},
		{name: "negative split distance", content: "name: x\nsplit_distance: -1\n", wantErr: true},
		{name: "ceiling below floor", content: "name: x\ndefaults:\n    sector:\n        floor_height: 200\n", wantErr: true},
		{name: "not yaml", content: "name: [\n", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := t.TempDir()
			writeConfig(t, root, tt.content)

			c, err := LoadConfig(root)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("LoadConfig succeeded: %+v", c)
				}
				return
			}
			if err != nil {
				t.Fatalf("LoadConfig: %v", err)
			}
			tt.check(t, c)
		})
	}
}

func TestDirs(t *testing.T) {
	c := DefaultConfig()
	if got := c.LevelsDir("/proj"); got != filepath.Join("/proj", "levels") {
		t.Errorf("LevelsDir = %s", got)
	}
	c.Textures = "/shared/flats"
	if got := c.TexturesDir("/proj"); got != "/shared/flats" {
		t.Errorf("TexturesDir = %s", got)
	}
}
