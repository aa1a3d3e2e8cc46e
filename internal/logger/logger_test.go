package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sankz2/pattern-search-tool/internal/models"
)

type recordingLogger struct {
	messages []string
	expands  int
	scans    int
}

func (r *recordingLogger) LogTrace(m string) { r.messages = append(r.messages, "trace:"+m) }
func (r *recordingLogger) LogDebug(m string) { r.messages = append(r.messages, "debug:"+m) }
func (r *recordingLogger) LogInfo(m string)  { r.messages = append(r.messages, "info:"+m) }
func (r *recordingLogger) LogWarn(m string)  { r.messages = append(r.messages, "warn:"+m) }
func (r *recordingLogger) LogError(m string) { r.messages = append(r.messages, "error:"+m) }
func (r *recordingLogger) LogExpandSummary(models.ExpandResult) {
	r.expands++
}
func (r *recordingLogger) LogScanSummary(models.ScanResult) {
	r.scans++
}

func TestMultiLogger_FansOut(t *testing.T) {
	a, b := &recordingLogger{}, &recordingLogger{}
	m := NewMultiLogger(a, nil, b)

	m.LogTrace("1")
	m.LogDebug("2")
	m.LogInfo("3")
	m.LogWarn("4")
	m.LogError("5")
	m.LogExpandSummary(models.ExpandResult{})
	m.LogScanSummary(models.ScanResult{})

	want := []string{"trace:1", "debug:2", "info:3", "warn:4", "error:5"}
	for _, r := range []*recordingLogger{a, b} {
		assert.Equal(t, want, r.messages)
		assert.Equal(t, 1, r.expands)
		assert.Equal(t, 1, r.scans)
	}
}

func TestNoOpLogger_SatisfiesRunLogger(t *testing.T) {
	var l RunLogger = NewNoOpLogger()
	l.LogInfo("ignored")
	l.LogExpandSummary(models.ExpandResult{})
	l.LogScanSummary(models.ScanResult{})
}

func TestLogLevelOrdering(t *testing.T) {
	prev := -1
	for _, l := range ValidLevels {
		n := logLevelToInt(l)
		assert.Greater(t, n, prev, "level %s out of order", l)
		prev = n
	}
	assert.Equal(t, "info", normalizeLogLevel(""))
	assert.Equal(t, "debug", normalizeLogLevel(" DEBUG "))
}
