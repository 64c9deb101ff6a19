package cmd

import (
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/bloodmagesoftware/mapgeo/level"
	"github.com/bloodmagesoftware/mapgeo/mapdata"
	"github.com/bloodmagesoftware/mapgeo/sectorbuilder"
	"github.com/spf13/cobra"
)

var traceBack bool

var traceCmd = &cobra.Command{
	Use:   "trace {level} {line-index}",
	Short: "Trace the sector a line faces",
	Long: `Traces the region of space the front (or back) of a line looks into and
prints every outline found: the enclosing one first, then the holes.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		root, config, err := loadProject()
		if err != nil {
			return err
		}
		index, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("line index %q: %w", args[1], err)
		}

		m, err := level.LoadMap(levelPath(root, config, args[0]),
			mapdata.WithLogger(logger),
			mapdata.WithDefaults(config.MapDefaults()))
		if err != nil {
			return err
		}
		return traceLine(cmd.OutOrStdout(), m, index, !traceBack)
	},
}

func init() {
	rootCmd.AddCommand(traceCmd)
	traceCmd.Flags().BoolVarP(&traceBack, "back", "b", false, "Trace from the back side of the line")
}

// traceLine prints the trace of one face. Lines are numbered as in the level
// file.
func traceLine(w io.Writer, m *mapdata.Map, index int, front bool) error {
	lines := m.Lines()
	if index < 0 || index >= len(lines) {
		return fmt.Errorf("line %d: level has %d lines", index, len(lines))
	}
	l := lines[index]
	if m.LineLength(l) == 0 {
		return fmt.Errorf("line %d has zero length", index)
	}

	b := sectorbuilder.New(m, logger)
	err := b.TraceSector(l, front)
	if errors.Is(err, sectorbuilder.ErrOutsideMap) || errors.Is(err, sectorbuilder.ErrInvalidGeometry) {
		fmt.Fprintf(w, "trace failed: %v\n", err)
		return nil
	}
	if err != nil {
		return err
	}

	for i, o := range b.Outlines() {
		kind := "outer"
		if i > 0 {
			kind = "hole"
		}
		winding := "counter-clockwise"
		if o.Clockwise {
			winding = "clockwise"
		}
		fmt.Fprintf(w, "%s outline, %d edges, %s, bounds %v..%v\n", kind, len(o.Edges), winding, o.BBox.Min, o.BBox.Max)
		for _, e := range o.Edges {
			fmt.Fprintf(w, "    %v: %s\n", e, m.Describe(m.LineSide(e.Line, e.Front)))
		}
	}

	if b.IsValidSector() {
		fmt.Fprintf(w, "valid: %v\n", m.LineSector(l, front))
		return nil
	}
	if sec := b.FindExistingSector(nil); !sec.IsNil() {
		fmt.Fprintf(w, "not a valid sector, would reuse %v\n", sec)
	} else {
		fmt.Fprintf(w, "not a valid sector, would create a new one\n")
	}
	return nil
}
