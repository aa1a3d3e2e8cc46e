package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/sankz2/pattern-search-tool/internal/display"
	"github.com/sankz2/pattern-search-tool/internal/models"
)

// NewScanCommand creates the scan command
func NewScanCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan <directory>",
		Short: "Filter every .log file under a directory by pattern",
		Long: `Walk a directory and copy every line containing any of the patterns
(case-insensitive) from each .log file into <directory>_output/<name>_output.log.

Logs with no matching lines still get an empty output file. Logs with the same
name in different subdirectories write the same output file; the last one wins
and a warning lists the collision.

Examples:
  pattern-search-tool scan ./logs -p ERROR -p timeout
  pattern-search-tool scan ./logs --presets --exclude '**/archive/**'
  pattern-search-tool scan ./logs --patterns-file patterns.yaml --report scan.yaml`,
		Args: cobra.ExactArgs(1),
		RunE: runScan,
	}
	addScanFlags(cmd)
	return cmd
}

func runScan(cmd *cobra.Command, args []string) (err error) {
	s, err := openSession(cmd, scanOverrides(cmd))
	if err != nil {
		return err
	}
	defer func() { err = s.finish(err) }()

	ctx, cancel := s.withTimeout(cmd.Context())
	defer cancel()

	start := time.Now()
	rootDir := args[0]
	reportPath, _ := cmd.Flags().GetString("report")

	var res *models.ScanResult
	ps, err := buildPatternSet(cmd, s.cfg)
	if err == nil {
		res, err = s.scan(ctx, rootDir, ps)
	}

	s.record(ctx, "scan", rootDir, start, nil, res, err)
	if rerr := s.writeReport(reportPath, "scan", nil, res, err); rerr != nil && err == nil {
		err = rerr
	}
	if err != nil {
		return err
	}

	display.PrintScanTable(s.out, res)
	fmt.Fprintf(s.out, "\n%d of %d lines matched across %d file(s); output in %s\n",
		res.TotalMatched(), res.TotalScanned(), len(res.Files), res.OutputDir)
	return nil
}
