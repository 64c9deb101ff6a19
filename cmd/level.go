package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/bloodmagesoftware/mapgeo/geometry"
	"github.com/bloodmagesoftware/mapgeo/level"
	"github.com/bloodmagesoftware/mapgeo/mapdata"
	"github.com/bloodmagesoftware/mapgeo/mapedit"
	"github.com/bloodmagesoftware/mapgeo/project"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	levelDraw     []string
	levelOpen     bool
	levelSectorAt []string
)

var levelCmd = &cobra.Command{
	Use:   "level {level-name}",
	Short: "Edit the specified level",
	Long: `Creates a new level file if it doesn't exist, then applies the requested
edits and saves it. Points are written as x,y and separated by spaces:

  mapgeo level e1m1 --draw "0,0 0,256 256,256 256,0"
  mapgeo level e1m1 --sector-at 128,128`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		root, config, err := loadProject()
		if err != nil {
			return err
		}
		path := levelPath(root, config, args[0])

		m, err := openLevel(path, config)
		if err != nil {
			return err
		}

		e := mapedit.New(m,
			mapedit.WithLogger(logger),
			mapedit.WithSplitDistance(config.SplitDistance))
		if err := editLevel(cmd.OutOrStdout(), e, levelDraw, !levelOpen, levelSectorAt); err != nil {
			return err
		}

		if err := level.FromMap(m).Save(path); err != nil {
			return fmt.Errorf("saving level %s: %w", path, err)
		}
		logger.Info("saved level", zap.String("path", path))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(levelCmd)
	levelCmd.Flags().StringArrayVar(&levelDraw, "draw", nil, "Draw a chain of lines through the given points (repeatable)")
	levelCmd.Flags().BoolVar(&levelOpen, "open", false, "Do not close drawn chains")
	levelCmd.Flags().StringArrayVar(&levelSectorAt, "sector-at", nil, "Create a sector in the empty space around a point (repeatable)")
}

func openLevel(path string, config *project.Config) (*mapdata.Map, error) {
	opts := []mapdata.Option{
		mapdata.WithLogger(logger),
		mapdata.WithDefaults(config.MapDefaults()),
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		logger.Info("creating level", zap.String("path", path))
		return mapdata.New(opts...), nil
	}
	return level.LoadMap(path, opts...)
}

func editLevel(w io.Writer, e *mapedit.Editor, draws []string, closed bool, sectorAt []string) error {
	for _, d := range draws {
		pts, err := parsePoints(d)
		if err != nil {
			return err
		}
		res := e.DrawLines(pts, closed)
		fmt.Fprintf(w, "drew %d points: %d lines touched, %d split, sectors +%d ~%d -%d\n",
			len(pts), len(res.Lines), res.Split,
			res.Sectors.Created, res.Sectors.Reassigned, res.Sectors.Removed)
	}

	for _, s := range sectorAt {
		p, err := parsePoint(s)
		if err != nil {
			return err
		}
		sec, err := e.CreateSectorAt(p)
		switch {
		case errors.Is(err, mapedit.ErrSectorExists):
			fmt.Fprintf(w, "%s is already inside %v\n", s, sec)
		case err != nil:
			return fmt.Errorf("creating sector at %s: %w", s, err)
		default:
			fmt.Fprintf(w, "created %v at %s\n", sec, s)
		}
	}
	return nil
}

func parsePoints(s string) ([]geometry.Point, error) {
	var pts []geometry.Point
	for _, f := range strings.Fields(s) {
		p, err := parsePoint(f)
		if err != nil {
			return nil, err
		}
		pts = append(pts, p)
	}
	if len(pts) < 2 {
		return nil, fmt.Errorf("%q: at least two points are needed", s)
	}
	return pts, nil
}

func parsePoint(s string) (geometry.Point, error) {
	xs, ys, ok := strings.Cut(s, ",")
	if !ok {
		return geometry.Point{}, fmt.Errorf("point %q: expected x,y", s)
	}
	x, err := strconv.ParseFloat(strings.TrimSpace(xs), 64)
	if err != nil {
		return geometry.Point{}, fmt.Errorf("point %q: %w", s, err)
	}
	y, err := strconv.ParseFloat(strings.TrimSpace(ys), 64)
	if err != nil {
		return geometry.Point{}, fmt.Errorf("point %q: %w", s, err)
	}
	return geometry.Pt(x, y), nil
}
