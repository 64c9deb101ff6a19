package cmd

import (
	"context"
	"fmt"
	"iter"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bloodmagesoftware/mapgeo/level"
	"github.com/bloodmagesoftware/mapgeo/mapdata"
	"github.com/bloodmagesoftware/mapgeo/mapedit"
	"github.com/bloodmagesoftware/mapgeo/project"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	buildOutput  string
	buildInPlace bool
	buildTimeout time.Duration
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Repair the geometry of every level",
	Long: `Loads every level, merges overlapping architecture, corrects sector
assignments, removes detached entities and writes the result to the build
directory (or back to the level file with --in-place).`,
	RunE: func(cmd *cobra.Command, args []string) error {
		root, config, err := loadProject()
		if err != nil {
			return fmt.Errorf("getting project root: %w", err)
		}

		outDir := buildOutput
		if !filepath.IsAbs(outDir) {
			outDir = filepath.Join(root, outDir)
		}
		levelsDir := config.LevelsDir(root)

		fmt.Printf("Building levels of %s with %s timeout per level...\n", config.Name, buildTimeout)

		count := 0
		for relPath, data := range buildLevelsIterator(cmd.Context(), levelsDir, config) {
			if data == nil {
				return fmt.Errorf("building %s failed", relPath)
			}
			target := filepath.Join(outDir, relPath)
			if buildInPlace {
				target = filepath.Join(levelsDir, relPath)
			}
			if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
				return fmt.Errorf("creating %s: %w", filepath.Dir(target), err)
			}
			if err := os.WriteFile(target, data, 0644); err != nil {
				return fmt.Errorf("writing %s: %w", target, err)
			}
			count++
		}

		fmt.Printf("\n✅ Build complete: %d levels\n", count)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(buildCmd)
	buildCmd.Flags().StringVarP(&buildOutput, "output", "o", "build", "Output directory, relative to the project root")
	buildCmd.Flags().BoolVarP(&buildInPlace, "in-place", "i", false, "Overwrite the level files instead of writing to the output directory")
	buildCmd.Flags().DurationVarP(&buildTimeout, "timeout", "t", 30*time.Second, "Time limit per level")
}

// buildLevel loads a level, tidies its geometry and encodes the result.
func buildLevel(path string, config *project.Config, log *zap.Logger) ([]byte, mapedit.TidyResult, error) {
	m, err := level.LoadMap(path,
		mapdata.WithLogger(log),
		mapdata.WithDefaults(config.MapDefaults()))
	if err != nil {
		return nil, mapedit.TidyResult{}, err
	}

	e := mapedit.New(m,
		mapedit.WithLogger(log),
		mapedit.WithSplitDistance(config.SplitDistance))
	res := e.Tidy()

	data, err := level.FromMap(m).Marshal()
	if err != nil {
		return nil, res, fmt.Errorf("encoding level %s: %w", path, err)
	}
	return data, res, nil
}

// buildLevelsIterator yields (relativePath, levelBytes) pairs for each level
// file, with a timeout per level. A failed level is yielded with nil bytes
// and ends the iteration.
func buildLevelsIterator(ctx context.Context, levelsDir string, config *project.Config) iter.Seq2[string, []byte] {
	if ctx == nil {
		ctx = context.Background()
	}
	return func(yield func(string, []byte) bool) {
		var matches []string
		err := filepath.Walk(levelsDir, func(path string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if !info.IsDir() && strings.HasSuffix(path, ".yaml") {
				matches = append(matches, path)
			}
			return nil
		})
		if err != nil && !os.IsNotExist(err) {
			logger.Error("walking levels directory", zap.String("dir", levelsDir), zap.Error(err))
			yield(levelsDir, nil)
			return
		}

		for _, yamlPath := range matches {
			relPath, err := filepath.Rel(levelsDir, yamlPath)
			if err != nil {
				relPath = filepath.Base(yamlPath)
			}

			levelCtx, cancel := context.WithTimeout(ctx, buildTimeout)

			type result struct {
				bytes []byte
				tidy  mapedit.TidyResult
				err   error
			}
			resultChan := make(chan result, 1)

			// The worker owns its map. On timeout it is abandoned and its
			// result dropped into the buffered channel.
			go func() {
				data, tidy, err := buildLevel(yamlPath, config, logger.With(zap.String("level", relPath)))
				resultChan <- result{bytes: data, tidy: tidy, err: err}
			}()

			select {
			case <-levelCtx.Done():
				cancel()
				logger.Error("level build stopped",
					zap.String("level", yamlPath),
					zap.Duration("timeout", buildTimeout),
					zap.Error(levelCtx.Err()))
				yield(relPath, nil)
				return
			case res := <-resultChan:
				cancel()
				if res.err != nil {
					logger.Error("level build failed", zap.String("level", yamlPath), zap.Error(res.err))
					yield(relPath, nil)
					return
				}

				m := res.tidy.Merge
				fmt.Printf("  Built: %s (merged %d, split %d, removed %d, sectors +%d ~%d -%d, detached %d)\n",
					relPath, m.Merged, m.Split, m.Removed,
					m.Sectors.Created, m.Sectors.Reassigned, m.Sectors.Removed, res.tidy.Detached)
				if !yield(relPath, res.bytes) {
					return
				}
			}
		}
	}
}
