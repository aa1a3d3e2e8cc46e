package archive

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/sankz2/pattern-search-tool/internal/filelock"
	"github.com/sankz2/pattern-search-tool/internal/fileutil"
	"github.com/sankz2/pattern-search-tool/internal/logger"
	"github.com/sankz2/pattern-search-tool/internal/metrics"
	"github.com/sankz2/pattern-search-tool/internal/models"
)

// DefaultMaxDepth is the default limit on archive-in-archive nesting.
const DefaultMaxDepth = 32

// emptyStemDir names the target directory for archives whose name is only a suffix.
const emptyStemDir = "_extracted"

// Expander extracts an archive into a fresh directory and then expands every
// archive found inside it until none remain.
type Expander struct {
	logger   logger.Logger
	metrics  *metrics.Collector
	maxDepth int
}

// NewExpander creates an Expander. A nil logger discards messages.
func NewExpander(log logger.Logger) *Expander {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &Expander{
		logger:   log,
		maxDepth: DefaultMaxDepth,
	}
}

// WithMaxDepth sets the nesting limit. Zero disables the limit.
func (e *Expander) WithMaxDepth(depth int) *Expander {
	if depth < 0 {
		depth = 0
	}
	e.maxDepth = depth
	return e
}

// WithMetrics attaches a metrics collector.
func (e *Expander) WithMetrics(m *metrics.Collector) *Expander {
	e.metrics = m
	return e
}

// workItem is either a directory to search for archives or an archive to expand.
type workItem struct {
	dir     string
	archive string
	depth   int
}

// Expand removes destDir, extracts archivePath into it and then expands nested
// archives depth-first. Each nested archive is extracted next to itself into a
// directory named after it without its suffix, and deleted once that succeeds.
// Only regular files are expanded: a symlink whose name carries an archive
// suffix is left in the tree as it is.
//
// The first failure aborts the run. Errors are *models.Error values carrying
// the kind and offending path.
func (e *Expander) Expand(ctx context.Context, archivePath, destDir string) (*models.ExpandResult, error) {
	start := time.Now()

	result, err := e.expand(ctx, archivePath, destDir)
	if err != nil {
		if kind := models.KindOf(err); kind != 0 {
			e.metrics.RecordExpandFailure(kind.String())
		}
		e.logger.LogError(fmt.Sprintf("Expansion of %s failed: %v", archivePath, err))
		return nil, err
	}

	result.Duration = time.Since(start)
	e.logger.LogInfo(fmt.Sprintf("Expanded %s into %s (%d archives, %d files)",
		result.Archive, result.DestDir, result.ArchivesExpanded, result.FilesWritten))
	return result, nil
}

func (e *Expander) expand(ctx context.Context, archivePath, destDir string) (*models.ExpandResult, error) {
	kind := DetectKind(archivePath)
	if kind == KindUnknown {
		return nil, models.NewError(models.UnsupportedFormat, "detect", archivePath, nil)
	}

	src, err := filepath.Abs(archivePath)
	if err != nil {
		return nil, models.NewError(models.IOFailure, "resolve", archivePath, err)
	}
	dest, err := filepath.Abs(destDir)
	if err != nil {
		return nil, models.NewError(models.IOFailure, "resolve", destDir, err)
	}

	info, err := os.Stat(src)
	if err != nil {
		return nil, models.NewError(models.IOFailure, "open", src, err)
	}
	if info.IsDir() {
		return nil, models.NewError(models.CorruptArchive, "open", src, errors.New("is a directory"))
	}
	if isWithin(dest, src) {
		return nil, models.NewError(models.IOFailure, "expand", src,
			fmt.Errorf("archive lies inside the destination %s", dest))
	}

	lock, err := filelock.AcquireDir(dest)
	if err != nil {
		return nil, models.NewError(models.IOFailure, "lock", dest, err)
	}
	defer func() {
		if err := lock.Release(); err != nil {
			e.logger.LogWarn(fmt.Sprintf("Failed to release lock for %s: %v", dest, err))
		}
	}()

	e.logger.LogInfo(fmt.Sprintf("Extracting %s into %s", src, dest))

	if err := os.RemoveAll(dest); err != nil {
		return nil, models.NewError(models.IOFailure, "clear", dest, err)
	}
	if err := os.MkdirAll(dest, 0755); err != nil {
		return nil, models.NewError(models.IOFailure, "mkdir", dest, err)
	}

	result := &models.ExpandResult{Archive: src, DestDir: dest}

	files, err := extractFile(ctx, src, dest, e.logger, e.metrics)
	if err != nil {
		return nil, err
	}
	result.ArchivesExpanded++
	result.FilesWritten += files
	e.metrics.RecordArchiveExpanded(kind.String())

	if err := e.expandNested(ctx, dest, result); err != nil {
		return nil, err
	}
	return result, nil
}

// expandNested drains an explicit LIFO worklist. Archives found in one
// directory are pushed in reverse so they pop in sorted order, and each
// expansion pushes its new directory on top so it is finished before the
// next sibling.
func (e *Expander) expandNested(ctx context.Context, root string, result *models.ExpandResult) error {
	stack := []workItem{{dir: root}}

	for len(stack) > 0 {
		if err := ctx.Err(); err != nil {
			return err
		}

		item := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if item.archive == "" {
			found, err := findArchives(item.dir)
			if err != nil {
				return err
			}
			for i := len(found) - 1; i >= 0; i-- {
				stack = append(stack, workItem{archive: found[i], depth: item.depth + 1})
			}
			continue
		}

		// Already consumed when a merge into an existing directory rediscovered it.
		if _, err := os.Lstat(item.archive); errors.Is(err, os.ErrNotExist) {
			continue
		}

		if e.maxDepth > 0 && item.depth > e.maxDepth {
			return models.NewError(models.CorruptArchive, "expand", item.archive,
				fmt.Errorf("archive nesting exceeds %d levels", e.maxDepth))
		}

		target, files, err := e.expandOne(ctx, item.archive)
		if err != nil {
			return err
		}
		result.ArchivesExpanded++
		result.FilesWritten += files

		stack = append(stack, workItem{dir: target, depth: item.depth})
	}
	return nil
}

// expandOne extracts a nested archive beside itself and deletes it.
// On failure the archive stays and a directory created here is removed.
func (e *Expander) expandOne(ctx context.Context, archivePath string) (string, int, error) {
	target := nestedTarget(archivePath)
	e.logger.LogDebug(fmt.Sprintf("Expanding nested archive %s", archivePath))

	created := false
	if _, err := os.Lstat(target); errors.Is(err, os.ErrNotExist) {
		created = true
	}
	if err := os.MkdirAll(target, 0755); err != nil {
		return "", 0, models.NewError(models.IOFailure, "mkdir", target, err)
	}

	files, err := extractFile(ctx, archivePath, target, e.logger, e.metrics)
	if err != nil {
		if created {
			if rmErr := os.RemoveAll(target); rmErr != nil {
				e.logger.LogWarn(fmt.Sprintf("Failed to clean up %s: %v", target, rmErr))
			}
		}
		return "", 0, err
	}

	if err := os.Remove(archivePath); err != nil {
		return "", 0, models.NewError(models.IOFailure, "delete", archivePath, err)
	}
	e.metrics.RecordArchiveExpanded(DetectKind(archivePath).String())
	return target, files, nil
}

// DefaultDestDir is the sibling directory an archive expands into when no
// destination is given: the archive path without its suffix.
func DefaultDestDir(archivePath string) string {
	return nestedTarget(archivePath)
}

// nestedTarget is the sibling directory an archive expands into.
func nestedTarget(archivePath string) string {
	dir := filepath.Dir(archivePath)
	stem := Stem(filepath.Base(archivePath))
	if stem == "" {
		stem = emptyStemDir
	}
	return filepath.Join(dir, stem)
}

// findArchives lists regular files with an archive suffix anywhere under dir.
// Symlinks are not followed, whatever their name.
func findArchives(dir string) ([]string, error) {
	scan, err := fileutil.ScanDirectory(dir, fileutil.ScanOptions{
		Match:         IsArchive,
		Recursive:     true,
		IncludeHidden: true,
		RegularOnly:   true,
	})
	if err != nil {
		return nil, models.NewError(models.IOFailure, "walk", dir, err)
	}
	if err := scan.Err(); err != nil {
		return nil, models.NewError(models.IOFailure, "walk", dir, err)
	}
	return scan.Files, nil
}

// isWithin reports whether path is dir or lies below it.
func isWithin(dir, path string) bool {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}
	return rel == "." || filepath.IsLocal(rel)
}
