package cmd

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/sankz2/pattern-search-tool/internal/archive"
	"github.com/sankz2/pattern-search-tool/internal/config"
	"github.com/sankz2/pattern-search-tool/internal/display"
	"github.com/sankz2/pattern-search-tool/internal/models"
)

// NewExtractCommand creates the extract command
func NewExtractCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "extract <archive>",
		Short: "Expand an archive and every archive nested inside it",
		Long: `Expand a .tar.gz, .tgz or .zip archive into a clean destination directory,
then keep expanding archives found inside it until none remain. Each nested
archive is unpacked next to itself into a directory named after it and then
deleted.

The destination is removed before extraction. By default it is the archive
path without its suffix (logs.tar.gz -> logs/).

Examples:
  pattern-search-tool extract logs.tar.gz
  pattern-search-tool extract bundle.zip --dest /tmp/bundle`,
		Args: cobra.ExactArgs(1),
		RunE: runExtract,
	}

	addExtractFlags(cmd)
	cmd.Flags().String("report", "", "Write a YAML report of the run to this file")
	return cmd
}

// addExtractFlags registers the flags shared by extract and run.
func addExtractFlags(cmd *cobra.Command) {
	cmd.Flags().String("dest", "", "Destination directory (default: archive path without suffix)")
	cmd.Flags().Int("max-depth", -1, "Maximum archive nesting depth (0 = unlimited, -1 = use config)")
}

// extractOverrides collects config overrides from the extract flags that were set.
func extractOverrides(cmd *cobra.Command, ov config.FlagOverrides) config.FlagOverrides {
	if cmd.Flags().Changed("max-depth") {
		v, _ := cmd.Flags().GetInt("max-depth")
		ov.MaxDepth = &v
	}
	return ov
}

// destFor returns the --dest flag or the archive's default destination.
func destFor(cmd *cobra.Command, archivePath string) string {
	if dest, _ := cmd.Flags().GetString("dest"); dest != "" {
		return dest
	}
	return archive.DefaultDestDir(archivePath)
}

func runExtract(cmd *cobra.Command, args []string) (err error) {
	s, err := openSession(cmd, extractOverrides(cmd, config.FlagOverrides{}))
	if err != nil {
		return err
	}
	defer func() { err = s.finish(err) }()

	ctx, cancel := s.withTimeout(cmd.Context())
	defer cancel()

	start := time.Now()
	archivePath := args[0]
	reportPath, _ := cmd.Flags().GetString("report")

	var res *models.ExpandResult
	res, err = s.expand(ctx, archivePath, destFor(cmd, archivePath))

	s.record(ctx, "extract", archivePath, start, res, nil, err)
	if rerr := s.writeReport(reportPath, "extract", res, nil, err); rerr != nil && err == nil {
		err = rerr
	}
	if err != nil {
		return err
	}

	display.PrintExpandSummary(s.out, res)
	return nil
}
