package project

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/bloodmagesoftware/mapgeo/mapdata"
	"gopkg.in/yaml.v3"
)

const ConfigFileName = "mapgeo.yaml"

// ErrNotFound is returned by FindProjectRoot when no parent directory holds
// a mapgeo.yaml.
var ErrNotFound = errors.New(ConfigFileName + " not found")

// Config represents the project configuration from mapgeo.yaml.
type Config struct {
	Name string `yaml:"name"`
	// Levels is the directory of level files, relative to the project root.
	Levels string `yaml:"levels"`
	// Textures is the directory of <NAME>.qoi flats, relative to the project root.
	Textures string `yaml:"textures"`
	// SplitDistance is how close a vertex must come to a line to split it.
	SplitDistance float64  `yaml:"split_distance"`
	Defaults      Defaults `yaml:"defaults"`
}

// Defaults are the game configuration values given to new sectors and sides
// when there is no neighbour to copy from.
type Defaults struct {
	Sector SectorDefaults `yaml:"sector"`
	Side   SideDefaults   `yaml:"side"`
}

type SectorDefaults struct {
	FloorTex      string `yaml:"floor_tex"`
	CeilingTex    string `yaml:"ceiling_tex"`
	FloorHeight   int    `yaml:"floor_height"`
	CeilingHeight int    `yaml:"ceiling_height"`
	Light         int    `yaml:"light"`
}

type SideDefaults struct {
	TexUpper  string `yaml:"tex_upper"`
	TexMiddle string `yaml:"tex_middle"`
	TexLower  string `yaml:"tex_lower"`
}

// DefaultConfig is used when a project has no mapgeo.yaml and fills the
// fields a mapgeo.yaml leaves out.
func DefaultConfig() *Config {
	d := mapdata.DefaultProps()
	return &Config{
		Name:          "mapgeo",
		Levels:        "levels",
		Textures:      "textures",
		SplitDistance: 0.1,
		Defaults: Defaults{
			Sector: SectorDefaults{
				FloorTex:      d.Sector.FloorTex,
				CeilingTex:    d.Sector.CeilingTex,
				FloorHeight:   d.Sector.FloorHeight,
				CeilingHeight: d.Sector.CeilingHeight,
				Light:         d.Sector.Light,
			},
			Side: SideDefaults{
				TexUpper:  d.Side.TexUpper,
				TexMiddle: d.Side.TexMiddle,
				TexLower:  d.Side.TexLower,
			},
		},
	}
}

// MapDefaults converts the configured defaults for mapdata.WithDefaults.
func (c *Config) MapDefaults() mapdata.Defaults {
	return mapdata.Defaults{
		Sector: mapdata.SectorProps{
			FloorHeight:   c.Defaults.Sector.FloorHeight,
			CeilingHeight: c.Defaults.Sector.CeilingHeight,
			FloorTex:      c.Defaults.Sector.FloorTex,
			CeilingTex:    c.Defaults.Sector.CeilingTex,
			Light:         c.Defaults.Sector.Light,
		},
		Side: mapdata.SideProps{
			TexUpper:  c.Defaults.Side.TexUpper,
			TexMiddle: c.Defaults.Side.TexMiddle,
			TexLower:  c.Defaults.Side.TexLower,
		},
	}
}

// LevelsDir returns the absolute levels directory of the project at root.
func (c *Config) LevelsDir(root string) string {
	return resolve(root, c.Levels)
}

// TexturesDir returns the absolute textures directory of the project at root.
func (c *Config) TexturesDir(root string) string {
	return resolve(root, c.Textures)
}

func resolve(root, dir string) string {
	if filepath.IsAbs(dir) {
		return dir
	}
	return filepath.Join(root, dir)
}

// FindProjectRoot walks up from dir looking for mapgeo.yaml.
// Returns the directory containing mapgeo.yaml, or ErrNotFound.
func FindProjectRoot(dir string) (string, error) {
	start, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolving %s: %w", dir, err)
	}

	dir = start
	for {
		configPath := filepath.Join(dir, ConfigFileName)
		if _, err := os.Stat(configPath); err == nil {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("%w in any parent directory of %s", ErrNotFound, start)
		}
		dir = parent
	}
}

// LoadConfig loads and parses the mapgeo.yaml file from the given project root.
func LoadConfig(projectRoot string) (*Config, error) {
	return LoadConfigFile(filepath.Join(projectRoot, ConfigFileName))
}

// LoadConfigFile parses a config file at an explicit path. Fields the file
// leaves out keep their DefaultConfig values, except name which is required.
func LoadConfigFile(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", configPath, err)
	}

	config := DefaultConfig()
	config.Name = ""
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", configPath, err)
	}

	// Validate required fields
	if config.Name == "" {
		return nil, fmt.Errorf("'name' field is required in %s", configPath)
	}
	if config.SplitDistance < 0 {
		return nil, fmt.Errorf("'split_distance' must not be negative in %s", configPath)
	}
	if config.Defaults.Sector.CeilingHeight < config.Defaults.Sector.FloorHeight {
		return nil, fmt.Errorf("default ceiling is below the default floor in %s", configPath)
	}

	return config, nil
}
