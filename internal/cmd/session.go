package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/sankz2/pattern-search-tool/internal/archive"
	"github.com/sankz2/pattern-search-tool/internal/config"
	"github.com/sankz2/pattern-search-tool/internal/display"
	"github.com/sankz2/pattern-search-tool/internal/history"
	"github.com/sankz2/pattern-search-tool/internal/logger"
	"github.com/sankz2/pattern-search-tool/internal/matcher"
	"github.com/sankz2/pattern-search-tool/internal/metrics"
	"github.com/sankz2/pattern-search-tool/internal/models"
	"github.com/sankz2/pattern-search-tool/internal/report"
	"github.com/sankz2/pattern-search-tool/internal/scanner"
)

// session bundles what a command needs for one invocation: the merged
// configuration, loggers, metrics and the optional history store.
type session struct {
	cfg     *config.Config
	runID   string
	out     io.Writer
	errOut  io.Writer
	console *logger.ConsoleLogger
	fileLog *logger.FileLogger
	log     logger.RunLogger
	metrics *metrics.Collector
	history *history.Store
}

// loadConfig reads the config file named by --config, or the project
// config, and merges the global flags plus overrides into it.
func loadConfig(cmd *cobra.Command, overrides config.FlagOverrides) (*config.Config, error) {
	configPath, _ := cmd.Flags().GetString("config")

	var cfg *config.Config
	var err error
	if configPath != "" {
		cfg, err = config.LoadConfig(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config from %s: %w", configPath, err)
		}
	} else {
		cfg, err = config.LoadConfigFromDir(".")
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
	}

	if cmd.Flags().Changed("log-level") {
		v, _ := cmd.Flags().GetString("log-level")
		overrides.LogLevel = &v
	}
	if cmd.Flags().Changed("log-dir") {
		v, _ := cmd.Flags().GetString("log-dir")
		overrides.LogDir = &v
	}
	if cmd.Flags().Changed("metrics-file") {
		v, _ := cmd.Flags().GetString("metrics-file")
		overrides.MetricsFile = &v
	}
	if cmd.Flags().Changed("no-history") {
		v, _ := cmd.Flags().GetBool("no-history")
		overrides.NoHistory = &v
	}

	cfg.MergeWithFlags(overrides)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// openSession loads configuration and sets up logging, metrics and history.
// Failing to open the run log or the history database is reported as a
// warning; the command still runs.
func openSession(cmd *cobra.Command, overrides config.FlagOverrides) (*session, error) {
	cfg, err := loadConfig(cmd, overrides)
	if err != nil {
		return nil, err
	}

	s := &session{
		cfg:     cfg,
		runID:   uuid.NewString(),
		out:     cmd.OutOrStdout(),
		errOut:  cmd.ErrOrStderr(),
		metrics: metrics.NewCollector(),
	}
	s.console = logger.NewConsoleLogger(s.errOut, cfg.LogLevel)

	logDir := cfg.LogDir
	if logDir == "" {
		logDir, err = config.GetLogDir()
	}
	if err == nil {
		s.fileLog, err = logger.NewFileLoggerWithLevel(logDir, cfg.LogLevel)
	}
	if err != nil {
		s.console.LogWarn(fmt.Sprintf("Run log disabled: %v", err))
		s.log = s.console
	} else {
		s.log = logger.NewMultiLogger(s.console, s.fileLog)
		s.console.LogDebug(fmt.Sprintf("Run log: %s", s.fileLog.RunFile()))
	}

	if cfg.History.Enabled {
		store, err := openHistory(cfg)
		if err != nil {
			s.log.LogWarn(fmt.Sprintf("Run history disabled: %v", err))
		} else {
			s.history = store
		}
	}

	return s, nil
}

// openHistory opens the history database named by the configuration.
func openHistory(cfg *config.Config) (*history.Store, error) {
	dbPath := cfg.History.DBPath
	if dbPath == "" {
		var err error
		dbPath, err = config.GetHistoryDBPath()
		if err != nil {
			return nil, err
		}
	}
	return history.NewStore(dbPath)
}

// withTimeout derives the command context, bounded by the configured timeout.
func (s *session) withTimeout(parent context.Context) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	if s.cfg.Timeout > 0 {
		return context.WithTimeout(parent, s.cfg.Timeout)
	}
	return context.WithCancel(parent)
}

// expander builds an Expander wired to the session's logger and metrics.
func (s *session) expander() *archive.Expander {
	return archive.NewExpander(s.log).
		WithMaxDepth(s.cfg.MaxDepth).
		WithMetrics(s.metrics)
}

// scanner builds a Scanner wired to the session's logger and metrics. On an
// interactive terminal it also reports progress roughly every tenth file.
func (s *session) scanner() *scanner.Scanner {
	sc := scanner.NewScanner(s.log, scanner.Options{
		Workers:          s.cfg.Workers,
		Exclude:          s.cfg.Exclude,
		Encoding:         s.cfg.Encoding,
		OutputDirSuffix:  s.cfg.OutputDirSuffix,
		OutputFileSuffix: s.cfg.OutputFileSuffix,
	}).WithMetrics(s.metrics)

	if display.IsInteractive(s.errOut) {
		sc = sc.WithProgress(func(done, total int) {
			step := total / 10
			if step < 1 {
				step = 1
			}
			if done%step == 0 || done == total {
				s.console.LogProgress(done, total)
			}
		})
	}
	return sc
}

// expand runs an expansion and logs its summary.
func (s *session) expand(ctx context.Context, archivePath, destDir string) (*models.ExpandResult, error) {
	res, err := s.expander().Expand(ctx, archivePath, destDir)
	if err != nil {
		return nil, err
	}
	s.log.LogExpandSummary(*res)
	return res, nil
}

// scan runs a scan, logs its summary and warns about output collisions.
func (s *session) scan(ctx context.Context, rootDir string, patterns *matcher.PatternSet) (*models.ScanResult, error) {
	res, err := s.scanner().Scan(ctx, rootDir, patterns)
	if err != nil {
		return nil, err
	}
	s.log.LogScanSummary(*res)
	for _, w := range display.WarnCollisions(res.Collisions) {
		w.Display(s.errOut)
	}
	return res, nil
}

// record stores the outcome of a run in the history database.
func (s *session) record(ctx context.Context, command, target string, start time.Time,
	exp *models.ExpandResult, sc *models.ScanResult, runErr error) {
	if s.history == nil {
		return
	}

	run := &history.Run{
		RunID:      s.runID,
		Command:    command,
		Target:     target,
		Success:    runErr == nil,
		DurationMs: time.Since(start).Milliseconds(),
	}
	if exp != nil {
		run.ArchivesExpanded = exp.ArchivesExpanded
	}
	if sc != nil {
		run.OutputDir = sc.OutputDir
		run.Patterns = sc.Patterns
		run.FilesScanned = len(sc.Files)
		run.LinesMatched = sc.TotalMatched()
		run.Collisions = len(sc.Collisions)
	} else if exp != nil {
		run.OutputDir = exp.DestDir
	}
	if runErr != nil {
		run.ErrorMessage = runErr.Error()
		if kind := models.KindOf(runErr); kind != 0 {
			run.ErrorKind = kind.String()
		}
	}

	// Cancelled and timed-out runs are still recorded.
	if ctx.Err() != nil {
		ctx = context.Background()
	}
	if err := s.history.RecordRun(ctx, run); err != nil {
		s.log.LogWarn(fmt.Sprintf("Failed to record run history: %v", err))
		return
	}
	if _, err := s.history.Prune(ctx, s.cfg.History.KeepRuns); err != nil {
		s.log.LogWarn(fmt.Sprintf("Failed to prune run history: %v", err))
	}
}

// writeReport writes the YAML run report when path is set.
func (s *session) writeReport(path, command string, exp *models.ExpandResult, sc *models.ScanResult, runErr error) error {
	if path == "" {
		return nil
	}
	r := report.New(s.runID, command).WithExpand(exp).WithScan(sc).WithError(runErr)
	if err := r.Write(path); err != nil {
		return err
	}
	s.log.LogInfo(fmt.Sprintf("Report written to %s", path))
	return nil
}

// close writes the metrics textfile and releases the run log and history store.
func (s *session) close() error {
	var errs []error
	if s.cfg.MetricsFile != "" {
		if err := s.metrics.WriteTextfile(s.cfg.MetricsFile); err != nil {
			errs = append(errs, err)
		}
	}
	if s.history != nil {
		if err := s.history.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close history: %w", err))
		}
	}
	if s.fileLog != nil {
		if err := s.fileLog.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// finish closes the session, keeping runErr as the primary error.
func (s *session) finish(runErr error) error {
	if err := s.close(); err != nil {
		if runErr != nil {
			s.console.LogWarn(err.Error())
			return runErr
		}
		return err
	}
	return runErr
}
