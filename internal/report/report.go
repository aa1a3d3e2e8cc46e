// Package report writes machine-readable YAML summaries of extract and scan runs.
package report

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/sankz2/pattern-search-tool/internal/filelock"
	"github.com/sankz2/pattern-search-tool/internal/models"
)

// Report is the document written by --report.
type Report struct {
	RunID       string         `yaml:"run_id"`
	GeneratedAt time.Time      `yaml:"generated_at"`
	Command     string         `yaml:"command"`
	Expand      *ExpandSection `yaml:"expand,omitempty"`
	Scan        *ScanSection   `yaml:"scan,omitempty"`
	Error       *ErrorSection  `yaml:"error,omitempty"`
}

// ExpandSection summarises an archive expansion.
type ExpandSection struct {
	Archive          string `yaml:"archive"`
	DestDir          string `yaml:"dest_dir"`
	ArchivesExpanded int    `yaml:"archives_expanded"`
	FilesWritten     int    `yaml:"files_written"`
	DurationMs       int64  `yaml:"duration_ms"`
}

// ScanSection summarises a pattern scan.
type ScanSection struct {
	RootDir      string              `yaml:"root_dir"`
	OutputDir    string              `yaml:"output_dir"`
	Patterns     []string            `yaml:"patterns"`
	LinesScanned int                 `yaml:"lines_scanned"`
	LinesMatched int                 `yaml:"lines_matched"`
	DurationMs   int64               `yaml:"duration_ms"`
	Files        []models.FileResult `yaml:"files"`
	Collisions   []Collision         `yaml:"collisions,omitempty"`
}

// Collision lists inputs that wrote the same output file; the last one was kept.
type Collision struct {
	Output string   `yaml:"output"`
	Inputs []string `yaml:"inputs"`
}

// ErrorSection records why a run failed.
type ErrorSection struct {
	Kind    string `yaml:"kind,omitempty"`
	Path    string `yaml:"path,omitempty"`
	Message string `yaml:"message"`
}

// New creates an empty report for command.
func New(runID, command string) *Report {
	return &Report{
		RunID:       runID,
		GeneratedAt: time.Now().UTC(),
		Command:     command,
	}
}

// WithExpand attaches an expansion result.
func (r *Report) WithExpand(res *models.ExpandResult) *Report {
	if res == nil {
		return r
	}
	r.Expand = &ExpandSection{
		Archive:          res.Archive,
		DestDir:          res.DestDir,
		ArchivesExpanded: res.ArchivesExpanded,
		FilesWritten:     res.FilesWritten,
		DurationMs:       res.Duration.Milliseconds(),
	}
	return r
}

// WithScan attaches a scan result. Collisions are sorted by output path.
func (r *Report) WithScan(res *models.ScanResult) *Report {
	if res == nil {
		return r
	}
	s := &ScanSection{
		RootDir:      res.RootDir,
		OutputDir:    res.OutputDir,
		Patterns:     res.Patterns,
		LinesScanned: res.TotalScanned(),
		LinesMatched: res.TotalMatched(),
		DurationMs:   res.Duration.Milliseconds(),
		Files:        res.Files,
	}
	for out, inputs := range res.Collisions {
		s.Collisions = append(s.Collisions, Collision{Output: out, Inputs: inputs})
	}
	sort.Slice(s.Collisions, func(i, j int) bool { return s.Collisions[i].Output < s.Collisions[j].Output })
	r.Scan = s
	return r
}

// WithError records a failure.
func (r *Report) WithError(err error) *Report {
	if err == nil {
		return r
	}
	section := &ErrorSection{Message: err.Error()}
	if kind := models.KindOf(err); kind != 0 {
		section.Kind = kind.String()
	}
	var classified *models.Error
	if errors.As(err, &classified) {
		section.Path = classified.Path
	}
	r.Error = section
	return r
}

// Marshal renders the report as YAML.
func (r *Report) Marshal() ([]byte, error) {
	data, err := yaml.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("marshal report: %w", err)
	}
	return data, nil
}

// Write renders the report and writes it to path atomically under a file lock,
// so concurrent runs sharing a report path never interleave.
func (r *Report) Write(path string) error {
	data, err := r.Marshal()
	if err != nil {
		return err
	}
	if err := filelock.LockAndWrite(path, data); err != nil {
		return fmt.Errorf("write report %s: %w", path, err)
	}
	return nil
}
