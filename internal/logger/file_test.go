package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sankz2/pattern-search-tool/internal/models"
)

func readRunLog(t *testing.T, fl *FileLogger) string {
	t.Helper()
	data, err := os.ReadFile(fl.RunFile())
	if err != nil {
		t.Fatalf("read run log: %v", err)
	}
	return string(data)
}

// TestFileLogger_CreatesRunLogAndLatest verifies the log directory, the per-run file and the latest.log symlink
func TestFileLogger_CreatesRunLogAndLatest(t *testing.T) {
	logDir := filepath.Join(t.TempDir(), "nested", "logs")

	fl, err := NewFileLogger(logDir)
	if err != nil {
		t.Fatalf("NewFileLogger() error = %v", err)
	}
	defer fl.Close()

	if !strings.HasPrefix(filepath.Base(fl.RunFile()), "run-") {
		t.Errorf("unexpected run file name %q", fl.RunFile())
	}

	target, err := os.Readlink(filepath.Join(logDir, "latest.log"))
	if err != nil {
		t.Fatalf("latest.log: %v", err)
	}
	if target != filepath.Base(fl.RunFile()) {
		t.Errorf("latest.log -> %q, want %q", target, filepath.Base(fl.RunFile()))
	}

	if !strings.Contains(readRunLog(t, fl), "=== Pattern Search Run Log ===") {
		t.Error("missing run log header")
	}
}

func TestFileLogger_ReplacesLatestSymlink(t *testing.T) {
	logDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(logDir, "latest.log"), []byte("stale"), 0644); err != nil {
		t.Fatal(err)
	}

	fl, err := NewFileLogger(logDir)
	if err != nil {
		t.Fatalf("NewFileLogger() error = %v", err)
	}
	defer fl.Close()

	info, err := os.Lstat(filepath.Join(logDir, "latest.log"))
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode()&os.ModeSymlink == 0 {
		t.Error("latest.log should be a symlink")
	}
}

func TestFileLogger_LevelFiltering(t *testing.T) {
	fl, err := NewFileLoggerWithLevel(t.TempDir(), "warn")
	if err != nil {
		t.Fatal(err)
	}
	defer fl.Close()

	fl.LogDebug("debug message")
	fl.LogInfo("info message")
	fl.LogWarn("warn message")
	fl.LogError("error message")
	fl.LogExpandSummary(models.ExpandResult{Archive: "a.zip"})

	content := readRunLog(t, fl)
	for _, s := range []string{"debug message", "info message", "Expanded a.zip"} {
		if strings.Contains(content, s) {
			t.Errorf("%q should be filtered", s)
		}
	}
	for _, s := range []string{"[WARN] warn message", "[ERROR] error message"} {
		if !strings.Contains(content, s) {
			t.Errorf("missing %q in:\n%s", s, content)
		}
	}
}

func TestFileLogger_Summaries(t *testing.T) {
	fl, err := NewFileLogger(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	defer fl.Close()

	fl.LogExpandSummary(models.ExpandResult{
		Archive:          "/in/logs.tar.gz",
		DestDir:          "/in/logs",
		ArchivesExpanded: 2,
		FilesWritten:     4,
		Duration:         250 * time.Millisecond,
	})
	fl.LogScanSummary(models.ScanResult{
		RootDir:   "/in/logs",
		OutputDir: "/in/logs_output",
		Patterns:  []string{"ERROR", "fatal"},
		Files: []models.FileResult{
			{Input: "/in/logs/a.log", Output: "/in/logs_output/a_output.log", LinesScanned: 3, LinesMatched: 1},
		},
		Collisions: map[string][]string{
			"/in/logs_output/a_output.log": {"/in/logs/x/a.log", "/in/logs/a.log"},
		},
	})

	content := readRunLog(t, fl)
	for _, s := range []string{
		"Expanded /in/logs.tar.gz -> /in/logs: archives=2 files=4 duration=0.25s",
		"(2 patterns: ERROR, fatal)",
		"/in/logs/a.log -> /in/logs_output/a_output.log matched=1 scanned=3",
		"collision on /in/logs_output/a_output.log",
		"Scan complete: files=1 matched=1 scanned=3",
	} {
		if !strings.Contains(content, s) {
			t.Errorf("missing %q in:\n%s", s, content)
		}
	}
}

func TestFileLogger_CloseIsIdempotent(t *testing.T) {
	fl, err := NewFileLogger(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if err := fl.Close(); err != nil {
		t.Fatalf("first Close() error = %v", err)
	}
	if err := fl.Close(); err != nil {
		t.Fatalf("second Close() error = %v", err)
	}
	fl.LogInfo("after close")
}
