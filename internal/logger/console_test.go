package logger

import (
	"bytes"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/sankz2/pattern-search-tool/internal/models"
)

var timestampPrefix = regexp.MustCompile(`^\[\d{2}:\d{2}:\d{2}\] `)

func TestConsoleLogger_LevelFiltering(t *testing.T) {
	tests := []struct {
		level    string
		expected []string
		filtered []string
	}{
		{"trace", []string{"TRACE", "DEBUG", "INFO", "WARN", "ERROR"}, nil},
		{"debug", []string{"DEBUG", "INFO", "WARN", "ERROR"}, []string{"TRACE"}},
		{"info", []string{"INFO", "WARN", "ERROR"}, []string{"TRACE", "DEBUG"}},
		{"WARN", []string{"WARN", "ERROR"}, []string{"TRACE", "DEBUG", "INFO"}},
		{"error", []string{"ERROR"}, []string{"TRACE", "DEBUG", "INFO", "WARN"}},
		{"bogus", []string{"INFO", "WARN", "ERROR"}, []string{"TRACE", "DEBUG"}},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			var buf bytes.Buffer
			cl := NewConsoleLogger(&buf, tt.level)
			cl.LogTrace("t")
			cl.LogDebug("d")
			cl.LogInfo("i")
			cl.LogWarn("w")
			cl.LogError("e")

			out := buf.String()
			for _, lvl := range tt.expected {
				if !strings.Contains(out, "["+lvl+"]") {
					t.Errorf("expected %s in output:\n%s", lvl, out)
				}
			}
			for _, lvl := range tt.filtered {
				if strings.Contains(out, "["+lvl+"]") {
					t.Errorf("%s should be filtered:\n%s", lvl, out)
				}
			}
		})
	}
}

func TestConsoleLogger_Format(t *testing.T) {
	var buf bytes.Buffer
	NewConsoleLogger(&buf, "info").LogInfo("hello")

	line := buf.String()
	if !timestampPrefix.MatchString(line) {
		t.Errorf("missing timestamp prefix: %q", line)
	}
	if !strings.HasSuffix(line, "[INFO] hello\n") {
		t.Errorf("unexpected line: %q", line)
	}
}

func TestConsoleLogger_NilWriter(t *testing.T) {
	cl := NewConsoleLogger(nil, "trace")
	cl.LogInfo("dropped")
	cl.LogExpandSummary(models.ExpandResult{})
	cl.LogScanSummary(models.ScanResult{})
	cl.LogProgress(1, 2)
}

func TestConsoleLogger_LogExpandSummary(t *testing.T) {
	var buf bytes.Buffer
	NewConsoleLogger(&buf, "info").LogExpandSummary(models.ExpandResult{
		Archive:          "/in/logs.tar.gz",
		DestDir:          "/in/logs",
		ArchivesExpanded: 1,
		FilesWritten:     3,
		Duration:         1500 * time.Millisecond,
	})

	want := "Expanded /in/logs.tar.gz -> /in/logs: 1 archive, 3 files (1s)"
	if !strings.Contains(buf.String(), want) {
		t.Errorf("got %q, want substring %q", buf.String(), want)
	}
}

func TestConsoleLogger_LogScanSummary(t *testing.T) {
	result := models.ScanResult{
		RootDir:   "/data/logs",
		OutputDir: "/data/logs_output",
		Patterns:  []string{"ERROR", "timeout"},
		Files: []models.FileResult{
			{Input: "/data/logs/a.log", LinesScanned: 10, LinesMatched: 2},
			{Input: "/data/logs/b.log", LinesScanned: 5, LinesMatched: 1},
		},
	}

	t.Run("info", func(t *testing.T) {
		var buf bytes.Buffer
		NewConsoleLogger(&buf, "info").LogScanSummary(result)
		out := buf.String()
		for _, s := range []string{"=== Scan Summary ===", "Patterns: 2", "Log files: 2", "Lines scanned: 15", "Lines matched: 3", "Output: /data/logs_output"} {
			if !strings.Contains(out, s) {
				t.Errorf("missing %q in:\n%s", s, out)
			}
		}
		if strings.Contains(out, "[DEBUG]") {
			t.Error("per-file lines should only appear at debug level")
		}
	})

	t.Run("debug", func(t *testing.T) {
		var buf bytes.Buffer
		NewConsoleLogger(&buf, "debug").LogScanSummary(result)
		if !strings.Contains(buf.String(), "/data/logs/a.log: 2/10 lines matched") {
			t.Errorf("missing per-file line:\n%s", buf.String())
		}
	})

	t.Run("warn suppresses summary", func(t *testing.T) {
		var buf bytes.Buffer
		NewConsoleLogger(&buf, "warn").LogScanSummary(result)
		if buf.Len() != 0 {
			t.Errorf("expected no output, got %q", buf.String())
		}
	})
}

func TestConsoleLogger_LogProgress(t *testing.T) {
	var buf bytes.Buffer
	NewConsoleLogger(&buf, "info").LogProgress(5, 10)
	if !strings.Contains(buf.String(), "Progress: [=====     ] 5/10 (50%)") {
		t.Errorf("got %q", buf.String())
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{120 * time.Millisecond, "120ms"},
		{5 * time.Second, "5s"},
		{90 * time.Second, "1m30s"},
		{2 * time.Minute, "2m"},
		{2*time.Hour + 15*time.Minute, "2h15m"},
		{3 * time.Hour, "3h"},
	}
	for _, tt := range tests {
		if got := formatDuration(tt.d); got != tt.want {
			t.Errorf("formatDuration(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}

func TestIsValidLevel(t *testing.T) {
	for _, l := range []string{"trace", "DEBUG", " info ", "Warn", "error"} {
		if !IsValidLevel(l) {
			t.Errorf("IsValidLevel(%q) = false", l)
		}
	}
	for _, l := range []string{"", "verbose", "fatal"} {
		if IsValidLevel(l) {
			t.Errorf("IsValidLevel(%q) = true", l)
		}
	}
}
