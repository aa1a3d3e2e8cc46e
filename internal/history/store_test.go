package history

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestNewStore_CreatesFileAndSchema(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "nested", "history", "runs.db")
	store, err := NewStore(dbPath)
	require.NoError(t, err)
	defer store.Close()

	assert.Equal(t, dbPath, store.Path())

	version, err := store.GetLatestVersion()
	require.NoError(t, err)
	assert.Equal(t, len(migrations), version)
}

func TestApplyMigrations_Idempotent(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.ApplyMigrations(context.Background()))
	require.NoError(t, store.ApplyMigrations(context.Background()))

	version, err := store.GetLatestVersion()
	require.NoError(t, err)
	assert.Equal(t, 2, version)
}

func TestRecordAndGetRun(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	run := &Run{
		Command:      "scan",
		Target:       "/data/logs",
		OutputDir:    "/data/logs_output",
		Patterns:     []string{"Error", "failed"},
		Success:      true,
		FilesScanned: 3,
		LinesMatched: 12,
		Collisions:   1,
		DurationMs:   250,
	}
	require.NoError(t, store.RecordRun(ctx, run))

	assert.NotZero(t, run.ID)
	_, err := uuid.Parse(run.RunID)
	assert.NoError(t, err, "RunID should be a UUID")
	assert.False(t, run.Timestamp.IsZero())

	got, err := store.GetRun(ctx, run.RunID)
	require.NoError(t, err)
	assert.Equal(t, run.Command, got.Command)
	assert.Equal(t, run.Target, got.Target)
	assert.Equal(t, run.OutputDir, got.OutputDir)
	assert.Equal(t, run.Patterns, got.Patterns)
	assert.True(t, got.Success)
	assert.Equal(t, 3, got.FilesScanned)
	assert.Equal(t, 12, got.LinesMatched)
	assert.Equal(t, 1, got.Collisions)
	assert.Equal(t, int64(250), got.DurationMs)
}

func TestGetRun_NotFound(t *testing.T) {
	store := newTestStore(t)
	_, err := store.GetRun(context.Background(), "missing")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestRecordRun_Failure(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	run := &Run{
		Command:      "extract",
		Target:       "/tmp/bad.zip",
		Success:      false,
		ErrorKind:    "corrupt archive",
		ErrorMessage: "corrupt archive: extract /tmp/bad.zip: zip: not a valid zip file",
	}
	require.NoError(t, store.RecordRun(ctx, run))

	got, err := store.GetRun(ctx, run.RunID)
	require.NoError(t, err)
	assert.False(t, got.Success)
	assert.Equal(t, "corrupt archive", got.ErrorKind)
	assert.Empty(t, got.Patterns)
}

func TestListRuns(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		cmd := "scan"
		if i%2 == 0 {
			cmd = "extract"
		}
		require.NoError(t, store.RecordRun(ctx, &Run{Command: cmd, Target: fmt.Sprintf("t%d", i), Success: true}))
	}

	all, err := store.ListRuns(ctx, "", 0)
	require.NoError(t, err)
	require.Len(t, all, 5)
	assert.Equal(t, "t4", all[0].Target, "newest first")

	limited, err := store.ListRuns(ctx, "", 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)

	scans, err := store.ListRuns(ctx, "scan", 0)
	require.NoError(t, err)
	assert.Len(t, scans, 2)
	for _, r := range scans {
		assert.Equal(t, "scan", r.Command)
	}
}

func TestClearAndPrune(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for i := 0; i < 6; i++ {
		require.NoError(t, store.RecordRun(ctx, &Run{Command: "scan", Target: fmt.Sprintf("t%d", i), Success: true}))
	}

	removed, err := store.Prune(ctx, 4)
	require.NoError(t, err)
	assert.Equal(t, int64(2), removed)

	runs, err := store.ListRuns(ctx, "", 0)
	require.NoError(t, err)
	require.Len(t, runs, 4)
	assert.Equal(t, "t5", runs[0].Target)
	assert.Equal(t, "t2", runs[3].Target)

	removed, err = store.Prune(ctx, 0)
	require.NoError(t, err)
	assert.Zero(t, removed)

	removed, err = store.Clear(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(4), removed)

	n, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}
