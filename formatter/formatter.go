package formatter

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bloodmagesoftware/mapgeo/level"
	"github.com/bloodmagesoftware/mapgeo/mapdata"
	"go.uber.org/zap"
)

// Canonical returns the canonical encoding of a level file: sides renumbered
// in line order, unused sides dropped, 4 space indentation.
func Canonical(path string, log *zap.Logger) (current, canonical []byte, err error) {
	current, err = os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("reading %s: %w", path, err)
	}
	m, err := level.LoadMap(path, mapdata.WithLogger(log))
	if err != nil {
		return nil, nil, err
	}
	canonical, err = level.FromMap(m).Marshal()
	if err != nil {
		return nil, nil, fmt.Errorf("encoding %s: %w", path, err)
	}
	return current, canonical, nil
}

// Format rewrites every level file in levelsDir that is not in canonical form.
func Format(levelsDir string, log *zap.Logger) error {
	fmt.Println("Formatting level files...")

	err := eachLevel(levelsDir, func(path string) error {
		current, canonical, err := Canonical(path, log)
		if err != nil {
			return err
		}
		if bytes.Equal(current, canonical) {
			return nil
		}
		if err := os.WriteFile(path, canonical, 0644); err != nil {
			return fmt.Errorf("writing %s: %w", path, err)
		}
		fmt.Printf("  Formatted: %s\n", path)
		return nil
	})
	if err != nil {
		return err
	}

	fmt.Println("✅ Formatting completed")
	return nil
}

// Check reports level files that Format would change, without modifying them.
func Check(levelsDir string, log *zap.Logger) error {
	fmt.Println("Checking level formatting...")

	var unformatted []string
	err := eachLevel(levelsDir, func(path string) error {
		current, canonical, err := Canonical(path, log)
		if err != nil {
			return err
		}
		if !bytes.Equal(current, canonical) {
			unformatted = append(unformatted, path)
		}
		return nil
	})
	if err != nil {
		return err
	}

	if len(unformatted) > 0 {
		return fmt.Errorf("%d level files are not formatted:\n  %s",
			len(unformatted), strings.Join(unformatted, "\n  "))
	}

	fmt.Println("✅ Format check completed")
	return nil
}

func eachLevel(dir string, fn func(path string) error) error {
	return filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() || !strings.HasSuffix(path, ".yaml") {
			return nil
		}
		return fn(path)
	})
}
