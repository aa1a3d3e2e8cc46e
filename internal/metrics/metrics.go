// Package metrics counts archive expansion and pattern scanning work and can
// dump the counters in Prometheus text format for node_exporter's textfile
// collector.
package metrics

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Collector holds Prometheus metrics for one process.
//
// Each Collector owns its registry, so several can coexist in tests without
// duplicate registration panics. All methods are safe on a nil *Collector.
//
// Metrics:
//   - pst_archives_expanded_total{kind} - archives extracted, top-level and nested
//   - pst_files_extracted_total - regular files written by extraction, excluding nested archives
//   - pst_expand_failures_total{kind} - failed expansions by error kind
//   - pst_files_scanned_total - log files read by the scanner
//   - pst_lines_scanned_total - lines read by the scanner
//   - pst_lines_matched_total - lines written to output files
//   - pst_scan_duration_seconds - histogram of whole scan durations
type Collector struct {
	registry *prometheus.Registry

	ArchivesExpandedTotal *prometheus.CounterVec
	FilesExtractedTotal   prometheus.Counter
	ExpandFailuresTotal   *prometheus.CounterVec

	FilesScannedTotal prometheus.Counter
	LinesScannedTotal prometheus.Counter
	LinesMatchedTotal prometheus.Counter
	ScanDuration      prometheus.Histogram
}

// NewCollector creates a Collector with a fresh registry.
func NewCollector() *Collector {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Collector{
		registry: reg,
		ArchivesExpandedTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pst_archives_expanded_total",
				Help: "Total number of archives extracted",
			},
			[]string{"kind"}, // "tar.gz" or "zip"
		),
		FilesExtractedTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "pst_files_extracted_total",
				Help: "Total number of regular files written by extraction, excluding nested archives",
			},
		),
		ExpandFailuresTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pst_expand_failures_total",
				Help: "Total number of failed expansions by error kind",
			},
			[]string{"kind"},
		),
		FilesScannedTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "pst_files_scanned_total",
				Help: "Total number of log files scanned",
			},
		),
		LinesScannedTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "pst_lines_scanned_total",
				Help: "Total number of log lines read",
			},
		),
		LinesMatchedTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "pst_lines_matched_total",
				Help: "Total number of log lines that matched a pattern",
			},
		),
		ScanDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "pst_scan_duration_seconds",
				Help:    "Duration of complete scans in seconds",
				Buckets: prometheus.ExponentialBuckets(0.01, 2, 12), // 10ms to ~40s
			},
		),
	}
}

// Registry exposes the underlying registry.
func (c *Collector) Registry() *prometheus.Registry {
	if c == nil {
		return nil
	}
	return c.registry
}

// RecordArchiveExpanded records one archive extracted.
func (c *Collector) RecordArchiveExpanded(kind string) {
	if c == nil {
		return
	}
	c.ArchivesExpandedTotal.WithLabelValues(kind).Inc()
}

// RecordFileExtracted records one regular file written by extraction.
func (c *Collector) RecordFileExtracted() {
	if c == nil {
		return
	}
	c.FilesExtractedTotal.Inc()
}

// RecordExpandFailure records a failed expansion.
func (c *Collector) RecordExpandFailure(kind string) {
	if c == nil {
		return
	}
	c.ExpandFailuresTotal.WithLabelValues(kind).Inc()
}

// RecordFileScanned records one scanned file and its line counts.
func (c *Collector) RecordFileScanned(linesScanned, linesMatched int) {
	if c == nil {
		return
	}
	c.FilesScannedTotal.Inc()
	c.LinesScannedTotal.Add(float64(linesScanned))
	c.LinesMatchedTotal.Add(float64(linesMatched))
}

// ObserveScanDuration records the wall time of a complete scan.
func (c *Collector) ObserveScanDuration(seconds float64) {
	if c == nil {
		return
	}
	c.ScanDuration.Observe(seconds)
}

// WriteTextfile writes all metrics to path in Prometheus text format.
// The write goes through a temp file and rename, as the textfile collector expects.
func (c *Collector) WriteTextfile(path string) error {
	if c == nil {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create metrics directory: %w", err)
	}
	if err := prometheus.WriteToTextfile(path, c.registry); err != nil {
		return fmt.Errorf("failed to write metrics to %s: %w", path, err)
	}
	return nil
}
