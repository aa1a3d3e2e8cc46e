// Package history persists a record of every extract and scan run in SQLite.
package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

// ErrNotFound is returned by GetRun for an unknown run id.
var ErrNotFound = errors.New("run not found")

// Run represents a single extract, scan or combined run
type Run struct {
	ID               int64
	RunID            string // UUID assigned on insert when empty
	Command          string // extract, scan or run
	Target           string // archive path or scanned root
	OutputDir        string
	Patterns         []string
	Success          bool
	ErrorKind        string
	ErrorMessage     string
	ArchivesExpanded int
	FilesScanned     int
	LinesMatched     int
	Collisions       int
	DurationMs       int64
	Timestamp        time.Time
}

// Store manages the SQLite database for run history
type Store struct {
	db     *sql.DB
	dbPath string
}

// NewStore creates a new Store instance and initializes the database
func NewStore(dbPath string) (*Store, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}
	return openAndInitStore(dbPath)
}

// openAndInitStore opens the database connection and initializes schema
func openAndInitStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if dbPath == ":memory:" {
		// Every pooled connection would otherwise get its own empty database.
		db.SetMaxOpenConns(1)
	}

	// busy_timeout first so the remaining pragmas wait on locks
	pragmas := []string{
		"PRAGMA busy_timeout=5000",
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
	}
	for _, pragma := range pragmas {
		if err := execWithRetry(db, pragma, 5, 10*time.Millisecond); err != nil {
			db.Close()
			return nil, fmt.Errorf("set %s: %w", pragma, err)
		}
	}

	store := &Store{db: db, dbPath: dbPath}
	if err := store.ApplyMigrations(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return store, nil
}

// execWithRetry executes a SQL statement with exponential backoff retry on lock errors.
func execWithRetry(db *sql.DB, stmt string, maxRetries int, baseDelay time.Duration) error {
	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		_, err := db.Exec(stmt)
		if err == nil {
			return nil
		}
		if !strings.Contains(err.Error(), "database is locked") {
			return err
		}
		lastErr = err
		time.Sleep(baseDelay * time.Duration(1<<attempt))
	}
	return lastErr
}

// Path returns the database path.
func (s *Store) Path() string {
	return s.dbPath
}

// Close closes the database connection
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// RecordRun inserts run and fills in its ID, RunID and Timestamp.
func (s *Store) RecordRun(ctx context.Context, run *Run) error {
	if run.RunID == "" {
		run.RunID = uuid.NewString()
	}
	if run.Timestamp.IsZero() {
		run.Timestamp = time.Now().UTC()
	}

	patternsJSON := "[]"
	if len(run.Patterns) > 0 {
		data, err := json.Marshal(run.Patterns)
		if err != nil {
			return fmt.Errorf("marshal patterns: %w", err)
		}
		patternsJSON = string(data)
	}

	query := `INSERT INTO runs
		(run_id, command, target, output_dir, patterns, success, error_kind, error_message,
		 archives_expanded, files_scanned, lines_matched, collisions, duration_ms, timestamp)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	result, err := s.db.ExecContext(ctx, query,
		run.RunID,
		run.Command,
		run.Target,
		run.OutputDir,
		patternsJSON,
		run.Success,
		run.ErrorKind,
		run.ErrorMessage,
		run.ArchivesExpanded,
		run.FilesScanned,
		run.LinesMatched,
		run.Collisions,
		run.DurationMs,
		run.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("get last insert id: %w", err)
	}
	run.ID = id
	return nil
}

const selectRun = `SELECT id, run_id, command, target, output_dir, patterns, success, error_kind, error_message,
	archives_expanded, files_scanned, lines_matched, collisions, duration_ms, timestamp FROM runs`

// ListRuns returns the most recent runs first. A limit <= 0 returns all runs.
// A non-empty command restricts the result to that command.
func (s *Store) ListRuns(ctx context.Context, command string, limit int) ([]*Run, error) {
	query := selectRun
	var args []interface{}
	if command != "" {
		query += ` WHERE command = ?`
		args = append(args, command)
	}
	query += ` ORDER BY id DESC`
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// GetRun looks up a run by its UUID.
func (s *Store) GetRun(ctx context.Context, runID string) (*Run, error) {
	row := s.db.QueryRowContext(ctx, selectRun+` WHERE run_id = ?`, runID)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", runID, ErrNotFound)
	}
	return run, err
}

// Count returns the number of stored runs.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM runs`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count runs: %w", err)
	}
	return n, nil
}

// Clear deletes every run and returns how many were removed.
func (s *Store) Clear(ctx context.Context) (int64, error) {
	result, err := s.db.ExecContext(ctx, `DELETE FROM runs`)
	if err != nil {
		return 0, fmt.Errorf("delete runs: %w", err)
	}
	return result.RowsAffected()
}

// Prune keeps only the newest keep runs. keep <= 0 is a no-op.
func (s *Store) Prune(ctx context.Context, keep int) (int64, error) {
	if keep <= 0 {
		return 0, nil
	}
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM runs WHERE id NOT IN (SELECT id FROM runs ORDER BY id DESC LIMIT ?)`, keep)
	if err != nil {
		return 0, fmt.Errorf("prune runs: %w", err)
	}
	return result.RowsAffected()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRun(row rowScanner) (*Run, error) {
	run := &Run{}
	var patternsJSON string
	var outputDir, errorKind, errorMessage sql.NullString

	err := row.Scan(
		&run.ID,
		&run.RunID,
		&run.Command,
		&run.Target,
		&outputDir,
		&patternsJSON,
		&run.Success,
		&errorKind,
		&errorMessage,
		&run.ArchivesExpanded,
		&run.FilesScanned,
		&run.LinesMatched,
		&run.Collisions,
		&run.DurationMs,
		&run.Timestamp,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("scan run: %w", err)
	}

	run.OutputDir = outputDir.String
	run.ErrorKind = errorKind.String
	run.ErrorMessage = errorMessage.String
	if patternsJSON != "" {
		if err := json.Unmarshal([]byte(patternsJSON), &run.Patterns); err != nil {
			return nil, fmt.Errorf("unmarshal patterns: %w", err)
		}
	}
	return run, nil
}
