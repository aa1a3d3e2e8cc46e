package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sankz2/pattern-search-tool/internal/config"
	"github.com/sankz2/pattern-search-tool/internal/matcher"
	"github.com/sankz2/pattern-search-tool/internal/parser"
)

// addScanFlags registers the flags shared by scan and run.
func addScanFlags(cmd *cobra.Command) {
	cmd.Flags().StringArrayP("pattern", "p", nil, "Pattern to search for (repeatable)")
	cmd.Flags().StringArray("patterns-file", nil, "File of patterns: text, markdown list or YAML (repeatable)")
	cmd.Flags().Bool("presets", false, "Add the preset patterns (Exception, Error, Failed)")
	cmd.Flags().Int("workers", -1, "Number of files scanned in parallel (0 = number of CPUs, -1 = use config)")
	cmd.Flags().StringArray("exclude", nil, "Glob of paths to skip, relative to the scanned directory (repeatable)")
	cmd.Flags().String("encoding", "", "Text encoding of the logs (default utf-8)")
	cmd.Flags().String("report", "", "Write a YAML report of the run to this file")
}

// scanOverrides collects config overrides from the scan flags that were set.
func scanOverrides(cmd *cobra.Command) config.FlagOverrides {
	var ov config.FlagOverrides
	if cmd.Flags().Changed("workers") {
		v, _ := cmd.Flags().GetInt("workers")
		ov.Workers = &v
	}
	if cmd.Flags().Changed("encoding") {
		v, _ := cmd.Flags().GetString("encoding")
		ov.Encoding = &v
	}
	if cmd.Flags().Changed("presets") {
		v, _ := cmd.Flags().GetBool("presets")
		ov.Presets = &v
	}
	ov.Exclude, _ = cmd.Flags().GetStringArray("exclude")
	return ov
}

// buildPatternSet assembles the pattern set: presets first when enabled, then
// pattern files in order, then -p patterns. Duplicates are dropped.
func buildPatternSet(cmd *cobra.Command, cfg *config.Config) (*matcher.PatternSet, error) {
	ps := matcher.NewPatternSet()
	if cfg.Presets {
		ps.AddPresets()
	}

	files, _ := cmd.Flags().GetStringArray("patterns-file")
	for _, path := range files {
		pf, err := parser.ParseFile(path)
		if err != nil {
			return nil, fmt.Errorf("load patterns: %w", err)
		}
		pf.Apply(ps)
	}

	patterns, _ := cmd.Flags().GetStringArray("pattern")
	ps.AddAll(patterns...)
	return ps, nil
}
