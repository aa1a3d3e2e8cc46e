// Package scanner filters every .log file under a directory tree down to the
// lines containing at least one pattern, writing one filtered copy per input
// into a sibling output directory.
package scanner

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/text/encoding"

	"github.com/sankz2/pattern-search-tool/internal/fileutil"
	"github.com/sankz2/pattern-search-tool/internal/logger"
	"github.com/sankz2/pattern-search-tool/internal/matcher"
	"github.com/sankz2/pattern-search-tool/internal/metrics"
	"github.com/sankz2/pattern-search-tool/internal/models"
)

const (
	// LogExtension selects input files, compared case-insensitively.
	LogExtension = ".log"
	// DefaultOutputDirSuffix is appended to the root directory path.
	DefaultOutputDirSuffix = "_output"
	// DefaultOutputFileSuffix is appended to each input's stem.
	DefaultOutputFileSuffix = "_output"
)

// Options tunes a scan. The zero value is usable.
type Options struct {
	// Workers bounds how many output files are written concurrently.
	// Zero means runtime.NumCPU().
	Workers int
	// Exclude holds doublestar globs matched against paths relative to the root.
	Exclude []string
	// Encoding names the input text encoding; empty means UTF-8.
	Encoding string
	// OutputDirSuffix defaults to DefaultOutputDirSuffix.
	OutputDirSuffix string
	// OutputFileSuffix defaults to DefaultOutputFileSuffix.
	OutputFileSuffix string
}

// DefaultOptions returns Options with every default spelled out.
func DefaultOptions() Options {
	return Options{
		Workers:          runtime.NumCPU(),
		Encoding:         DefaultEncoding,
		OutputDirSuffix:  DefaultOutputDirSuffix,
		OutputFileSuffix: DefaultOutputFileSuffix,
	}
}

func (o Options) withDefaults() Options {
	if o.Workers <= 0 {
		o.Workers = runtime.NumCPU()
	}
	if o.Encoding == "" {
		o.Encoding = DefaultEncoding
	}
	if o.OutputDirSuffix == "" {
		o.OutputDirSuffix = DefaultOutputDirSuffix
	}
	if o.OutputFileSuffix == "" {
		o.OutputFileSuffix = DefaultOutputFileSuffix
	}
	return o
}

// Scanner runs pattern scans. A Scanner holds no per-scan state and may be
// reused, including concurrently for different roots.
type Scanner struct {
	opts     Options
	logger   logger.Logger
	metrics  *metrics.Collector
	progress func(done, total int)
}

// NewScanner creates a Scanner. A nil logger discards messages.
func NewScanner(log logger.Logger, opts Options) *Scanner {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &Scanner{
		opts:   opts.withDefaults(),
		logger: log,
	}
}

// WithMetrics attaches a metrics collector.
func (s *Scanner) WithMetrics(m *metrics.Collector) *Scanner {
	s.metrics = m
	return s
}

// WithProgress registers a callback invoked after each file completes.
// It may be called from several goroutines.
func (s *Scanner) WithProgress(fn func(done, total int)) *Scanner {
	s.progress = fn
	return s
}

// OutputDirFor returns the directory a scan of rootDir writes into.
func (s *Scanner) OutputDirFor(rootDir string) string {
	return filepath.Clean(rootDir) + s.opts.OutputDirSuffix
}

// OutputName returns the output file name for an input path:
// "<stem><suffix>.log" where stem is the base name without its extension.
func (s *Scanner) OutputName(input string) string {
	base := filepath.Base(input)
	stem := base[:len(base)-len(filepath.Ext(base))]
	return stem + s.opts.OutputFileSuffix + LogExtension
}

// job is every input that writes one output file, in walk order.
type job struct {
	output  string
	inputs  []string
	indexes []int
}

// Scan filters every .log file under rootDir into OutputDirFor(rootDir).
//
// The output directory is created if needed and never cleared. Outputs are
// flat: inputs with the same base name in different directories collide and
// the one visited last wins. Such collisions are listed in the result.
//
// The output directory is the root path plus a suffix, so for a root of "."
// it is "._output", inside the root. A later scan of "." then also filters
// the earlier outputs.
//
// Any failure aborts the scan and is returned as a *models.Error.
func (s *Scanner) Scan(ctx context.Context, rootDir string, patterns *matcher.PatternSet) (*models.ScanResult, error) {
	start := time.Now()

	if patterns == nil || patterns.Len() == 0 {
		return nil, models.NewError(models.NoPatterns, "scan", rootDir, nil)
	}

	info, err := os.Stat(rootDir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, models.NewError(models.FolderNotFound, "scan", rootDir, nil)
	}
	if err != nil {
		return nil, models.NewError(models.IOFailure, "scan", rootDir, err)
	}
	if !info.IsDir() {
		return nil, models.NewError(models.FolderNotFound, "scan", rootDir, errors.New("not a directory"))
	}

	enc, err := resolveEncoding(s.opts.Encoding)
	if err != nil {
		return nil, err
	}

	m, err := patterns.Compile()
	if err != nil {
		return nil, err
	}
	s.logger.LogDebug(fmt.Sprintf("Compiled %d pattern(s) into %d distinct keyword(s)", patterns.Len(), m.KeywordCount()))

	outputDir := s.OutputDirFor(rootDir)
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, models.NewError(models.IOFailure, "mkdir", outputDir, err)
	}

	walk, err := fileutil.ScanDirectory(rootDir, fileutil.ScanOptions{
		Extensions:    []string{LogExtension},
		Recursive:     true,
		IncludeHidden: true,
		Exclude:       s.opts.Exclude,
	})
	if err != nil {
		return nil, models.NewError(models.IOFailure, "walk", rootDir, err)
	}
	if err := walk.Err(); err != nil {
		return nil, models.NewError(models.IOFailure, "walk", rootDir, err)
	}

	s.logger.LogInfo(fmt.Sprintf("Scanning %d log file(s) under %s for %d pattern(s)", len(walk.Files), rootDir, patterns.Len()))

	jobs := s.groupByOutput(walk.Files, outputDir)
	files := make([]models.FileResult, len(walk.Files))

	var done atomic.Int64
	total := len(walk.Files)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.Workers)
	for _, j := range jobs {
		g.Go(func() error {
			for i, input := range j.inputs {
				if err := gctx.Err(); err != nil {
					return err
				}
				fr, err := s.scanFile(m, enc, input, j.output)
				if err != nil {
					return err
				}
				files[j.indexes[i]] = fr
				if s.progress != nil {
					s.progress(int(done.Add(1)), total)
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result := &models.ScanResult{
		RootDir:   rootDir,
		OutputDir: outputDir,
		Patterns:  patterns.Patterns(),
		Files:     files,
		Duration:  time.Since(start),
	}
	for _, j := range jobs {
		if len(j.inputs) > 1 {
			if result.Collisions == nil {
				result.Collisions = make(map[string][]string)
			}
			result.Collisions[j.output] = j.inputs
			s.logger.LogWarn(fmt.Sprintf("%d inputs share output %s; only %s is kept",
				len(j.inputs), j.output, j.inputs[len(j.inputs)-1]))
		}
	}

	s.metrics.ObserveScanDuration(result.Duration.Seconds())
	s.logger.LogInfo(fmt.Sprintf("Scan of %s finished: %d of %d line(s) matched",
		rootDir, result.TotalMatched(), result.TotalScanned()))
	return result, nil
}

// groupByOutput gathers inputs per output file so one goroutine owns each
// output and writes it in walk order.
func (s *Scanner) groupByOutput(inputs []string, outputDir string) []*job {
	var jobs []*job
	byOutput := make(map[string]*job)
	for i, input := range inputs {
		out := filepath.Join(outputDir, s.OutputName(input))
		j, ok := byOutput[out]
		if !ok {
			j = &job{output: out}
			byOutput[out] = j
			jobs = append(jobs, j)
		}
		j.inputs = append(j.inputs, input)
		j.indexes = append(j.indexes, i)
	}
	return jobs
}

// scanFile copies the matching lines of input to output, replacing output.
func (s *Scanner) scanFile(m *matcher.Matcher, enc encoding.Encoding, input, output string) (models.FileResult, error) {
	fr := models.FileResult{Input: input, Output: output}

	in, err := os.Open(input)
	if err != nil {
		return fr, models.NewError(models.IOFailure, "open", input, err)
	}
	defer in.Close()

	out, err := os.Create(output)
	if err != nil {
		return fr, models.NewError(models.IOFailure, "create", output, err)
	}
	w := bufio.NewWriter(out)

	lines := newLineReader(in, enc)
	for {
		line, err := lines.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			out.Close()
			return fr, models.NewError(models.IOFailure, "read", input, err)
		}
		fr.LinesScanned++
		keyword, ok := m.Find(line)
		if !ok {
			continue
		}
		if fr.FirstHit == "" {
			fr.FirstHit = keyword
		}
		if _, err := w.WriteString(line); err != nil {
			out.Close()
			return fr, models.NewError(models.IOFailure, "write", output, err)
		}
		fr.LinesMatched++
	}

	if err := w.Flush(); err != nil {
		out.Close()
		return fr, models.NewError(models.IOFailure, "write", output, err)
	}
	if err := out.Close(); err != nil {
		return fr, models.NewError(models.IOFailure, "write", output, err)
	}

	s.metrics.RecordFileScanned(fr.LinesScanned, fr.LinesMatched)
	s.logger.LogDebug(fmt.Sprintf("%s: %d/%d line(s) matched", input, fr.LinesMatched, fr.LinesScanned))
	return fr, nil
}
