package cmd

import (
	"github.com/bloodmagesoftware/mapgeo/linter"
	"github.com/spf13/cobra"
)

var lintCmd = &cobra.Command{
	Use:   "lint",
	Short: "Lint level geometry",
	Long: `Scans level files for broken geometry: stray vertices, zero-length,
crossing or overlapping lines, wrong sidedness flags, sectors that leak or
cannot be triangulated.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		root, config, err := loadProject()
		if err != nil {
			return err
		}
		return linter.Lint(config.LevelsDir(root), logger)
	},
}

func init() {
	rootCmd.AddCommand(lintCmd)
}
