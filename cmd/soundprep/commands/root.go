// Package commands implements the soundprep CLI commands.
package commands

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/storybutton/sound-engine/internal/config"
	"github.com/storybutton/sound-engine/internal/observability"
)

var (
	cfgFile     string
	catalogPath string
	verbose     bool

	cfg    *config.Config
	logger *observability.Logger
)

var rootCmd = &cobra.Command{
	Use:   "soundprep",
	Short: "Prepare and inspect the sound catalog and its embedding sidecar",
	Long: `soundprep is the operational companion to the sound engine: it builds the
embedding sidecar, validates catalog snapshots before they ship, and reports
catalog composition.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		_ = godotenv.Load()

		var err error
		cfg, err = config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if catalogPath != "" {
			cfg.Catalog.CSVPath = catalogPath
		}

		level := cfg.Logging.Level
		if verbose {
			level = "debug"
		}
		logger = observability.NewLogger(observability.LogConfig{
			Level:       level,
			Format:      cfg.Logging.Format,
			ServiceName: "soundprep",
		})
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().StringVar(&catalogPath, "catalog", "", "catalog CSV path (overrides config)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")

	rootCmd.AddCommand(newSidecarCmd())
	rootCmd.AddCommand(newValidateCmd())
	rootCmd.AddCommand(newStatsCmd())
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
