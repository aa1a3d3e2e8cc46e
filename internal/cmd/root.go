package cmd

import (
	"github.com/spf13/cobra"
)

// Version is injected at build time via -ldflags
var Version = "dev"

// NewRootCommand creates and returns the root cobra command for pattern-search-tool
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pattern-search-tool",
		Short: "Expand nested log archives and filter logs by pattern",
		Long: `pattern-search-tool unpacks .tar.gz and .zip archives, including archives
nested inside them, and filters every .log file under a directory down to
the lines containing any of a set of patterns (case-insensitive).

Filtered copies are written to <dir>_output/<name>_output.log.

Configuration is loaded from .pattern-search-tool/config.yaml (or
config.toml) if present. CLI flags override configuration file settings.`,
		Version: Version,
		// Silence usage on errors to avoid duplicate help text
		SilenceUsage: true,
	}

	cmd.PersistentFlags().String("config", "", "Path to config file (default: .pattern-search-tool/config.yaml)")
	cmd.PersistentFlags().String("log-level", "", "Log level: trace, debug, info, warn, error")
	cmd.PersistentFlags().String("log-dir", "", "Directory for run logs (default: $PST_HOME/logs)")
	cmd.PersistentFlags().String("metrics-file", "", "Write Prometheus text-format metrics to this file after the run")
	cmd.PersistentFlags().Bool("no-history", false, "Do not record this run in the history database")

	cmd.AddCommand(NewExtractCommand())
	cmd.AddCommand(NewScanCommand())
	cmd.AddCommand(NewRunCommand())
	cmd.AddCommand(NewPackCommand())
	cmd.AddCommand(NewExportCommand())
	cmd.AddCommand(NewPatternsCommand())
	cmd.AddCommand(NewHistoryCommand())

	return cmd
}
