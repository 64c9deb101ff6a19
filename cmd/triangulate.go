package cmd

import (
	"fmt"
	"io"
	"strconv"

	"github.com/bloodmagesoftware/mapgeo/level"
	"github.com/bloodmagesoftware/mapgeo/mapdata"
	"github.com/bloodmagesoftware/mapgeo/textures"
	"github.com/spf13/cobra"
)

var triangulateTexCoords bool

var triangulateCmd = &cobra.Command{
	Use:   "triangulate {level} [sector-index]",
	Short: "Print the triangulation of sector floors",
	Long: `Splits every sector (or only the given one) into convex pieces and prints
them with their triangle count, area and optionally floor texture coordinates.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		root, config, err := loadProject()
		if err != nil {
			return err
		}

		m, err := level.LoadMap(levelPath(root, config, args[0]),
			mapdata.WithLogger(logger),
			mapdata.WithDefaults(config.MapDefaults()))
		if err != nil {
			return err
		}

		sectors := m.Sectors()
		if len(args) == 2 {
			index, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("sector index %q: %w", args[1], err)
			}
			if index < 0 || index >= len(sectors) {
				return fmt.Errorf("sector %d: level has %d sectors", index, len(sectors))
			}
			sectors = sectors[index : index+1]
		}

		var res *textures.Resolver
		if triangulateTexCoords {
			res = textures.NewResolver(config.TexturesDir(root), logger)
		}
		triangulate(cmd.OutOrStdout(), m, sectors, res)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(triangulateCmd)
	triangulateCmd.Flags().BoolVarP(&triangulateTexCoords, "texcoords", "t", false, "Print floor texture coordinates")
}

// triangulate prints the polygons of sectors. Texture coordinates are only
// printed when res is not nil.
func triangulate(w io.Writer, m *mapdata.Map, sectors []mapdata.SectorID, res *textures.Resolver) {
	for _, s := range sectors {
		poly, err := m.SectorPolygon(s)
		if err != nil {
			fmt.Fprintf(w, "%v: %v\n", s, err)
		}
		if poly == nil || poly.Empty() {
			fmt.Fprintf(w, "%v: nothing to draw\n", s)
			continue
		}

		if res != nil {
			poly.UpdateTextureCoords(res.TexParams(m.SectorProps(s).FloorTex))
		}

		fmt.Fprintf(w, "%v: %d pieces, %d triangles, area %g\n",
			s, len(poly.SubPolys()), poly.TriangleCount(), poly.Area())
		for i, sub := range poly.SubPolys() {
			fmt.Fprintf(w, "    piece %d:", i)
			for _, v := range sub.Vertices {
				if res != nil {
					fmt.Fprintf(w, " (%g, %g | %.4g, %.4g)", v.X, v.Y, v.TX, v.TY)
				} else {
					fmt.Fprintf(w, " (%g, %g)", v.X, v.Y)
				}
			}
			fmt.Fprintln(w)
		}
	}
}
