package display

import (
	"fmt"
	"io"
	"path/filepath"
	"text/tabwriter"

	"github.com/sankz2/pattern-search-tool/internal/models"
)

// ProgressIndicator manages multi-step progress display
type ProgressIndicator struct {
	writer  io.Writer
	total   int
	current int
	color   bool
}

// NewProgressIndicator creates a new progress indicator
func NewProgressIndicator(w io.Writer, total int) *ProgressIndicator {
	return &ProgressIndicator{
		writer: w,
		total:  total,
		color:  ColorEnabled(w),
	}
}

// Start displays the header message
func (p *ProgressIndicator) Start(header string) {
	fmt.Fprintf(p.writer, "%s:\n", header)
}

// Step displays progress for the current stage: [N/Total] label
func (p *ProgressIndicator) Step(label string) {
	p.current++
	fmt.Fprintln(p.writer, paint(p.color, ansiCyan, fmt.Sprintf("  [%d/%d] %s", p.current, p.total, label)))
}

// Complete displays a success message with a checkmark
func (p *ProgressIndicator) Complete(summary string) {
	fmt.Fprintf(p.writer, "%s %s\n", paint(p.color, ansiGreen, "✓"), summary)
}

// PrintScanTable writes one row per scanned file with its line counts, paths
// and the keyword found on the first matching line.
// Paths are shown relative to the scan root and output directory.
func PrintScanTable(w io.Writer, result *models.ScanResult) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "MATCHED\tSCANNED\tINPUT\tOUTPUT\tFIRST HIT")
	for _, f := range result.Files {
		in := f.Input
		if rel, err := filepath.Rel(result.RootDir, f.Input); err == nil {
			in = rel
		}
		hit := f.FirstHit
		if hit == "" {
			hit = "-"
		}
		fmt.Fprintf(tw, "%d\t%d\t%s\t%s\t%s\n", f.LinesMatched, f.LinesScanned, in, filepath.Base(f.Output), hit)
	}
	tw.Flush()
}

// PrintExpandSummary writes a one-line expansion summary.
func PrintExpandSummary(w io.Writer, result *models.ExpandResult) {
	fmt.Fprintf(w, "%s Expanded %s into %s (%d archive(s), %d file(s))\n",
		paint(ColorEnabled(w), ansiGreen, "✓"), filepath.Base(result.Archive), result.DestDir,
		result.ArchivesExpanded, result.FilesWritten)
}
