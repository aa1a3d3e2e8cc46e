package cmd

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/sankz2/pattern-search-tool/internal/display"
	"github.com/sankz2/pattern-search-tool/internal/models"
)

// NewRunCommand creates the run command
func NewRunCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <archive>",
		Short: "Expand an archive, then scan the expanded logs",
		Long: `Expand an archive exactly like extract, then scan the destination exactly
like scan. Patterns are resolved before anything is extracted, so a run
without patterns fails without touching the filesystem.

Examples:
  pattern-search-tool run logs.tar.gz -p ERROR
  pattern-search-tool run bundle.zip --dest /tmp/bundle --presets --report run.yaml`,
		Args: cobra.ExactArgs(1),
		RunE: runRun,
	}

	addExtractFlags(cmd)
	addScanFlags(cmd)
	return cmd
}

func runRun(cmd *cobra.Command, args []string) (err error) {
	s, err := openSession(cmd, extractOverrides(cmd, scanOverrides(cmd)))
	if err != nil {
		return err
	}
	defer func() { err = s.finish(err) }()

	ctx, cancel := s.withTimeout(cmd.Context())
	defer cancel()

	start := time.Now()
	archivePath := args[0]
	dest := destFor(cmd, archivePath)
	reportPath, _ := cmd.Flags().GetString("report")

	var exp *models.ExpandResult
	var res *models.ScanResult

	ps, err := buildPatternSet(cmd, s.cfg)
	if err == nil && ps.Len() == 0 {
		err = models.NewError(models.NoPatterns, "run", "", nil)
	}

	progress := display.NewProgressIndicator(s.out, 2)
	if err == nil {
		progress.Start(fmt.Sprintf("Processing %s", filepath.Base(archivePath)))
		progress.Step(fmt.Sprintf("Extracting into %s", dest))
		exp, err = s.expand(ctx, archivePath, dest)
	}
	if err == nil {
		progress.Step(fmt.Sprintf("Scanning %s for %d pattern(s)", dest, ps.Len()))
		res, err = s.scan(ctx, dest, ps)
	}

	s.record(ctx, "run", archivePath, start, exp, res, err)
	if rerr := s.writeReport(reportPath, "run", exp, res, err); rerr != nil && err == nil {
		err = rerr
	}
	if err != nil {
		return err
	}

	progress.Complete(fmt.Sprintf("%d archive(s) expanded, %d of %d lines matched; output in %s",
		exp.ArchivesExpanded, res.TotalMatched(), res.TotalScanned(), res.OutputDir))
	display.PrintScanTable(s.out, res)
	return nil
}
