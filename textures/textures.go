// Package textures looks up flat sizes from a directory of QOI images so
// sector texture coordinates can be generated at the right scale.
package textures

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/bloodmagesoftware/mapgeo/polygon"
	"github.com/xfmoulet/qoi"
	"go.uber.org/zap"
)

// ErrNotFound is returned for a texture with no image in the directory.
var ErrNotFound = errors.New("texture not found")

// NoTexture is the name Doom uses for an empty texture slot.
const NoTexture = "-"

type Size struct {
	Width, Height int
}

// Resolver reads image headers on first use and remembers the result. It is
// safe for concurrent use.
type Resolver struct {
	dir string
	log *zap.Logger

	mu    sync.Mutex
	sizes map[string]Size
}

func NewResolver(dir string, log *zap.Logger) *Resolver {
	if log == nil {
		log = zap.NewNop()
	}
	return &Resolver{
		dir:   dir,
		log:   log,
		sizes: make(map[string]Size),
	}
}

// Size returns the pixel size of the named texture.
func (r *Resolver) Size(name string) (Size, error) {
	if name == "" || name == NoTexture {
		return Size{}, fmt.Errorf("%q: %w", name, ErrNotFound)
	}
	key := strings.ToUpper(name)

	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.sizes[key]; ok {
		return s, nil
	}

	path, err := r.find(key)
	if err != nil {
		return Size{}, err
	}
	f, err := os.Open(path)
	if err != nil {
		return Size{}, fmt.Errorf("opening texture %s: %w", path, err)
	}
	defer f.Close()

	cfg, err := qoi.DecodeConfig(f)
	if err != nil {
		return Size{}, fmt.Errorf("reading texture %s: %w", path, err)
	}

	s := Size{Width: cfg.Width, Height: cfg.Height}
	r.sizes[key] = s
	return s, nil
}

func (r *Resolver) find(key string) (string, error) {
	for _, name := range []string{key, strings.ToLower(key)} {
		path := filepath.Join(r.dir, name+".qoi")
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	return "", fmt.Errorf("%s in %s: %w", key, r.dir, ErrNotFound)
}

// TexParams returns the texture mapping for a flat. Missing or unreadable
// textures fall back to the 64x64 default.
func (r *Resolver) TexParams(name string) polygon.TexParams {
	tp := polygon.DefaultTexParams()
	s, err := r.Size(name)
	if err != nil {
		if name != NoTexture {
			r.log.Warn("using default texture size", zap.String("texture", name), zap.Error(err))
		}
		return tp
	}
	tp.Width = float64(s.Width)
	tp.Height = float64(s.Height)
	return tp
}
