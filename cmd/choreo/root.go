package main

import (
	"fmt"
	"os"

	"github.com/l1jgo/choreo/internal/config"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:           "choreo",
	Short:         "choreo plays time-driven action choreographies",
	Long:          `choreo compiles YAML choreography files into action trees and plays them on a scene at a fixed frame rate.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Path to a TOML config file (default: $CHOREO_CONFIG, then built-in defaults)")
	rootCmd.AddCommand(runCmd, validateCmd)
}

// loadConfig resolves --config, then CHOREO_CONFIG, then the defaults.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		path = os.Getenv("CHOREO_CONFIG")
	}
	if path == "" {
		return config.Default(), nil
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}
