package cmd

import (
	"log/slog"
	"os"

	"github.com/mhewitt/strider/internal/config"
	"github.com/spf13/cobra"
)

var dataDir string

// SetVersion sets the version string shown by --version
func SetVersion(v string) {
	rootCmd.Version = v
}

var rootCmd = &cobra.Command{
	Use:   "strider",
	Short: "Strava gear league tables from your own activity history",
	Long: `strider - Sync your Strava activity history to local flat files and rank your
running shoes and bikes in per-gear usage league tables.

The pipeline is incremental and resumable: each stage persists its output to
a JSON file consumed by the next stage (activities.json, gear_ids.json,
all_gear.json) before the league tables are rendered.`,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initLogging)

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", "", "data directory for store and report files (default: current directory)")

	rootCmd.AddGroup(
		&cobra.Group{ID: "pipeline", Title: "Pipeline Commands:"},
		&cobra.Group{ID: "system", Title: "System Commands:"},
	)
	rootCmd.SetHelpCommandGroupID("system")
	rootCmd.SetCompletionCommandGroupID("system")
}

// initLogging configures slog on stderr; level comes from STRIDER_LOG.
func initLogging() {
	var level slog.Level
	switch os.Getenv("STRIDER_LOG") {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler))
}

// getDataDir resolves the data directory from flag, env and config.
func getDataDir() string {
	return config.GetDataDir(dataDir)
}
