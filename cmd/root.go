package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/bloodmagesoftware/mapgeo/project"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	verbose    bool
	configPath string

	logger = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "mapgeo",
	Short: "mapgeo - Geometry tool for Doom-style maps",
	Long: `mapgeo loads Doom-style level files and works on their geometry.
It traces and repairs sectors, merges overlapping architecture, triangulates
sector floors and lints levels for broken geometry.`,
	SilenceUsage:      true,
	DisableAutoGenTag: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		log, err := newLogger(verbose)
		if err != nil {
			return fmt.Errorf("creating logger: %w", err)
		}
		logger = log
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log debug output")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to mapgeo.yaml (default: search parent directories)")
}

// Execute runs the root command.
func Execute() {
	err := rootCmd.Execute()
	_ = logger.Sync()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	return cfg.Build()
}

// loadProject returns the project root and its configuration. Without a
// mapgeo.yaml the working directory is used with the default configuration.
func loadProject() (string, *project.Config, error) {
	if configPath != "" {
		config, err := project.LoadConfigFile(configPath)
		if err != nil {
			return "", nil, err
		}
		root, err := filepath.Abs(filepath.Dir(configPath))
		if err != nil {
			return "", nil, err
		}
		return root, config, nil
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", nil, fmt.Errorf("getting current directory: %w", err)
	}
	root, err := project.FindProjectRoot(cwd)
	if errors.Is(err, project.ErrNotFound) {
		logger.Info("no project file, using defaults", zap.String("dir", cwd))
		return cwd, project.DefaultConfig(), nil
	}
	if err != nil {
		return "", nil, err
	}

	config, err := project.LoadConfig(root)
	if err != nil {
		return "", nil, fmt.Errorf("loading project config: %w", err)
	}
	return root, config, nil
}

// levelPath resolves a level argument: an existing file path, or a level
// name inside the project's levels directory.
func levelPath(root string, config *project.Config, arg string) string {
	if _, err := os.Stat(arg); err == nil {
		return arg
	}
	return filepath.Join(config.LevelsDir(root), arg+".yaml")
}
