package cmd

import (
	"github.com/bloodmagesoftware/mapgeo/formatter"
	"github.com/spf13/cobra"
)

var (
	fmtCheck bool
)

var fmtCmd = &cobra.Command{
	Use:   "fmt",
	Short: "Format level files",
	Long:  `Rewrites level files in canonical form so that diffs between revisions stay small.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		root, config, err := loadProject()
		if err != nil {
			return err
		}

		levelsDir := config.LevelsDir(root)
		if fmtCheck {
			return formatter.Check(levelsDir, logger)
		}

		return formatter.Format(levelsDir, logger)
	},
}

func init() {
	rootCmd.AddCommand(fmtCmd)
	fmtCmd.Flags().BoolVar(&fmtCheck, "check", false, "Check formatting without modifying files")
}
