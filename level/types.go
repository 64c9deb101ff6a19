package level

import (
	"bytes"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

type (
	// Level is the on-disk form of a map. Every list is order preserving and
	// entries reference each other by their index in the owning list.
	Level struct {
		Vertices []Vertex `yaml:"vertices"`
		// Lines reference two vertices and up to two sides.
		Lines []Line `yaml:"lines"`
		// Sides reference the sector they face. A side is used by exactly one
		// line face.
		Sides   []Side   `yaml:"sides"`
		Sectors []Sector `yaml:"sectors"`
		Things  []Thing  `yaml:"things"`
	}

	Vertex struct {
		X float64 `yaml:"x"`
		Y float64 `yaml:"y"`
	}

	Line struct {
		V1 int `yaml:"v1"`
		V2 int `yaml:"v2"`
		// Front and Back are side indices, nil when the face is empty.
		Front   *int   `yaml:"front,omitempty"`
		Back    *int   `yaml:"back,omitempty"`
		Flags   uint16 `yaml:"flags"`
		Special int    `yaml:"special,omitempty"`
		Tag     int    `yaml:"tag,omitempty"`
		Args    []int  `yaml:"args,omitempty,flow"`
	}

	Side struct {
		Sector  int    `yaml:"sector"`
		Upper   string `yaml:"upper"`
		Middle  string `yaml:"middle"`
		Lower   string `yaml:"lower"`
		OffsetX int    `yaml:"offset_x,omitempty"`
		OffsetY int    `yaml:"offset_y,omitempty"`
	}

	Sector struct {
		FloorHeight   int    `yaml:"floor_height"`
		CeilingHeight int    `yaml:"ceiling_height"`
		FloorTex      string `yaml:"floor_tex"`
		CeilingTex    string `yaml:"ceiling_tex"`
		Light         int    `yaml:"light"`
		Special       int    `yaml:"special,omitempty"`
		Tag           int    `yaml:"tag,omitempty"`
	}

	Thing struct {
		X     float64 `yaml:"x"`
		Y     float64 `yaml:"y"`
		Type  int     `yaml:"type"`
		Angle int     `yaml:"angle"`
		Flags int     `yaml:"flags,omitempty"`
	}
)

func New() *Level {
	return &Level{
		Vertices: make([]Vertex, 0),
		Lines:    make([]Line, 0),
		Sides:    make([]Side, 0),
		Sectors:  make([]Sector, 0),
		Things:   make([]Thing, 0),
	}
}

// Marshal encodes the level the way Save writes it.
func (l *Level) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(4)
	if err := encoder.Encode(l); err != nil {
		return nil, err
	}
	if err := encoder.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (l *Level) Save(path string) error {
	_ = os.MkdirAll(filepath.Dir(path), 0755)

	data, err := l.Marshal()
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (l *Level) Load(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	decoder := yaml.NewDecoder(f)
	decoder.KnownFields(true)
	return decoder.Decode(l)
}
