package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sankz2/pattern-search-tool/internal/matcher"
	"github.com/sankz2/pattern-search-tool/internal/parser"
)

// NewPatternsCommand creates the patterns command and its subcommands
func NewPatternsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "patterns",
		Short: "Inspect preset patterns and pattern files",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "presets",
		Short: "List the preset patterns",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, p := range matcher.Presets {
				fmt.Fprintln(cmd.OutOrStdout(), p)
			}
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "check <file>...",
		Short: "Load pattern files and print the deduplicated pattern set",
		Long: `Parse one or more pattern files and print the resulting patterns in
order, one per line. Text files hold one pattern per line ('#' starts a
comment), markdown files use list items and YAML files hold a list or a
mapping with 'patterns' and 'presets' keys.`,
		Args: cobra.MinimumNArgs(1),
		RunE: runPatternsCheck,
	})

	return cmd
}

func runPatternsCheck(cmd *cobra.Command, args []string) error {
	ps := matcher.NewPatternSet()
	for _, path := range args {
		pf, err := parser.ParseFile(path)
		if err != nil {
			return err
		}
		added := pf.Apply(ps)
		fmt.Fprintf(cmd.ErrOrStderr(), "%s (%s): %d pattern(s), %d new\n",
			path, parser.DetectFormat(path), len(pf.Patterns), added)
	}

	if _, err := ps.Compile(); err != nil {
		return err
	}
	for _, p := range ps.Patterns() {
		fmt.Fprintln(cmd.OutOrStdout(), p)
	}
	return nil
}
