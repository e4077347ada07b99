// Package commands implements skilllite's CLI subcommands using cobra.
package commands

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/agentskill/skilllite/pkg/config"
)

// NewRootCmd builds the root command with every subcommand registered.
func NewRootCmd(version string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "skilllite",
		Short: "Sandboxed execution for model-invoked skills",
		Long: `skilllite runs Python/Node/shell skill bundles under tiered OS
isolation, gated by a static security scan.

Examples:
  skilllite run ./skills/weather '{"city":"nyc"}'
  skilllite scan ./skills
  skilllite serve --stdio`,
		Version: version,
	}

	rootCmd.PersistentFlags().StringP("config", "c", "", "path to skilllite.yaml")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(
		newRunCmd(),
		newExecCmd(),
		newBashCmd(),
		newSecurityScanCmd(),
		newListCmd(),
		newScanCmd(),
		newServeCmd(),
	)

	return rootCmd
}

// resolveConfig loads the operator config from --config or standard
// discovery locations, tolerating absence.
func resolveConfig(cmd *cobra.Command) (*config.Config, error) {
	config.LoadEnvFiles()

	path, _ := cmd.Root().PersistentFlags().GetString("config")
	if path == "" {
		path = config.FindConfigFile()
	}
	return config.Load(path)
}

// buildLogger constructs the stderr-only structured logger per §10.2:
// JSON for machine consumers, text when --verbose requests an
// interactive session, never stdout (reserved for the daemon's wire
// protocol).
func buildLogger(cmd *cobra.Command, cfg *config.Config) *slog.Logger {
	verbose, _ := cmd.Root().PersistentFlags().GetBool("verbose")
	level := slog.LevelInfo
	if verbose || cfg.Logging.Level == "debug" {
		level = slog.LevelDebug
	}

	var handler slog.Handler
	if verbose || cfg.Logging.Format == "text" {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	} else {
		handler = slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	}
	return slog.New(handler)
}
