package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollector_Counters(t *testing.T) {
	c := NewCollector()

	c.RecordArchiveExpanded("tar.gz")
	c.RecordArchiveExpanded("tar.gz")
	c.RecordArchiveExpanded("zip")
	c.RecordFileExtracted()
	c.RecordExpandFailure("corrupt archive")
	c.RecordFileScanned(10, 3)
	c.RecordFileScanned(5, 0)
	c.ObserveScanDuration(0.25)

	assert.Equal(t, 2.0, testutil.ToFloat64(c.ArchivesExpandedTotal.WithLabelValues("tar.gz")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.ArchivesExpandedTotal.WithLabelValues("zip")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.FilesExtractedTotal))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.ExpandFailuresTotal.WithLabelValues("corrupt archive")))
	assert.Equal(t, 2.0, testutil.ToFloat64(c.FilesScannedTotal))
	assert.Equal(t, 15.0, testutil.ToFloat64(c.LinesScannedTotal))
	assert.Equal(t, 3.0, testutil.ToFloat64(c.LinesMatchedTotal))
}

func TestCollector_Independent(t *testing.T) {
	a := NewCollector()
	b := NewCollector()

	a.RecordFileExtracted()
	assert.Equal(t, 0.0, testutil.ToFloat64(b.FilesExtractedTotal))
}

func TestCollector_NilSafe(t *testing.T) {
	var c *Collector

	assert.NotPanics(t, func() {
		c.RecordArchiveExpanded("zip")
		c.RecordFileExtracted()
		c.RecordExpandFailure("io failure")
		c.RecordFileScanned(1, 1)
		c.ObserveScanDuration(1)
	})
	assert.Nil(t, c.Registry())
	assert.NoError(t, c.WriteTextfile(filepath.Join(t.TempDir(), "x.prom")))
}

func TestCollector_WriteTextfile(t *testing.T) {
	c := NewCollector()
	c.RecordFileScanned(4, 2)

	path := filepath.Join(t.TempDir(), "textfile", "pst.prom")
	require.NoError(t, c.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(data)
	assert.True(t, strings.Contains(text, "pst_lines_matched_total 2"), text)
	assert.True(t, strings.Contains(text, "pst_files_scanned_total 1"), text)
}
