package archive

import (
	"archive/tar"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"

	"github.com/mholt/archives"

	"github.com/sankz2/pattern-search-tool/internal/logger"
	"github.com/sankz2/pattern-search-tool/internal/metrics"
	"github.com/sankz2/pattern-search-tool/internal/models"
)

// maxLinkTargetSize bounds how much of a zip symlink entry is read as its target.
const maxLinkTargetSize = 4096

// extractorFor returns the decoder for kind.
func extractorFor(kind Kind) (archives.Extractor, bool) {
	switch kind {
	case KindTarGz:
		return archives.CompressedArchive{
			Compression: archives.Gz{},
			Extraction:  archives.Tar{},
		}, true
	case KindZip:
		return archives.Zip{}, true
	default:
		return nil, false
	}
}

// treeWriter materialises archive entries under root.
type treeWriter struct {
	archive string
	root    string
	log     logger.Logger
	metrics *metrics.Collector
	files   int
}

// extractFile decodes archivePath into root, which must already exist.
// It returns the number of regular files written, not counting archives.
func extractFile(ctx context.Context, archivePath, root string, log logger.Logger, m *metrics.Collector) (int, error) {
	kind := DetectKind(archivePath)
	ex, ok := extractorFor(kind)
	if !ok {
		return 0, models.NewError(models.UnsupportedFormat, "detect", archivePath, nil)
	}

	f, err := os.Open(archivePath)
	if err != nil {
		return 0, models.NewError(models.IOFailure, "open", archivePath, err)
	}
	defer f.Close()

	w := &treeWriter{archive: archivePath, root: root, log: log, metrics: m}
	if err := ex.Extract(ctx, f, w.handle); err != nil {
		return w.files, classifyExtractError(archivePath, err)
	}
	return w.files, nil
}

// classifyExtractError keeps errors already classified by the handler and
// cancellation as they are; anything else came from decoding the container.
func classifyExtractError(archivePath string, err error) error {
	var classified *models.Error
	if errors.As(err, &classified) {
		return classified
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return models.NewError(models.CorruptArchive, "extract", archivePath, err)
}

func (w *treeWriter) handle(ctx context.Context, f archives.FileInfo) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	target, err := safeJoin(w.root, f.NameInArchive)
	if err != nil {
		return models.NewError(models.CorruptArchive, "extract", w.archive, err)
	}
	if target == w.root {
		return nil
	}

	switch {
	case f.IsDir():
		if err := os.MkdirAll(target, 0755); err != nil {
			return models.NewError(models.IOFailure, "mkdir", target, err)
		}
		return nil
	case f.Mode()&fs.ModeSymlink != 0:
		return w.writeSymlink(f, target)
	case isHardLink(f):
		return w.writeHardLink(f, target)
	case f.Mode().IsRegular():
		return w.writeFile(f, target)
	default:
		w.log.LogWarn(fmt.Sprintf("Skipping %s in %s: unsupported entry type %s", f.NameInArchive, w.archive, f.Mode().Type()))
		return nil
	}
}

func (w *treeWriter) writeFile(f archives.FileInfo, target string) error {
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return models.NewError(models.IOFailure, "mkdir", filepath.Dir(target), err)
	}

	src, err := f.Open()
	if err != nil {
		return models.NewError(models.CorruptArchive, "read", w.archive, fmt.Errorf("%s: %w", f.NameInArchive, err))
	}
	defer src.Close()

	perm := f.Mode().Perm()
	if perm == 0 {
		perm = 0644
	}

	// An earlier entry may have left a symlink at this path; never write through it.
	if err := removeIfPresent(target); err != nil {
		return err
	}
	out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, perm|0600)
	if err != nil {
		return models.NewError(models.IOFailure, "create", target, err)
	}

	tr := &trackingReader{r: src}
	if _, err := io.Copy(out, tr); err != nil {
		out.Close()
		if tr.err != nil {
			return models.NewError(models.CorruptArchive, "read", w.archive, fmt.Errorf("%s: %w", f.NameInArchive, tr.err))
		}
		return models.NewError(models.IOFailure, "write", target, err)
	}
	if err := out.Close(); err != nil {
		return models.NewError(models.IOFailure, "write", target, err)
	}

	w.countFile(target)
	return nil
}

func (w *treeWriter) writeSymlink(f archives.FileInfo, target string) error {
	link := f.LinkTarget
	if link == "" {
		// zip stores the link target as the entry body
		body, err := readSmall(f)
		if err != nil {
			return models.NewError(models.CorruptArchive, "read", w.archive, fmt.Errorf("%s: %w", f.NameInArchive, err))
		}
		link = body
	}

	if !linkStaysInside(w.root, target, link) {
		w.log.LogWarn(fmt.Sprintf("Skipping symlink %s -> %s in %s: target leaves the extraction directory", f.NameInArchive, link, w.archive))
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return models.NewError(models.IOFailure, "mkdir", filepath.Dir(target), err)
	}
	if err := removeIfPresent(target); err != nil {
		return err
	}
	if err := os.Symlink(link, target); err != nil {
		return models.NewError(models.IOFailure, "symlink", target, err)
	}
	return nil
}

func (w *treeWriter) writeHardLink(f archives.FileInfo, target string) error {
	source, err := safeJoin(w.root, f.LinkTarget)
	if err != nil {
		return models.NewError(models.CorruptArchive, "extract", w.archive, err)
	}
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return models.NewError(models.IOFailure, "mkdir", filepath.Dir(target), err)
	}
	if err := removeIfPresent(target); err != nil {
		return err
	}
	if err := os.Link(source, target); err != nil {
		return models.NewError(models.IOFailure, "link", target, err)
	}
	w.countFile(target)
	return nil
}

// countFile counts a written file unless it is itself an archive. Nested
// archives are deleted once expanded, so the count matches the final tree.
func (w *treeWriter) countFile(target string) {
	if IsArchive(target) {
		return
	}
	w.files++
	w.metrics.RecordFileExtracted()
}

// safeJoin resolves an entry name below root, rejecting absolute names and
// names that climb out of root.
func safeJoin(root, name string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("empty entry name")
	}
	if path.IsAbs(name) || filepath.IsAbs(name) {
		return "", fmt.Errorf("absolute entry name %q", name)
	}
	clean := path.Clean(name)
	if clean == "." {
		return root, nil
	}
	local := filepath.FromSlash(clean)
	if !filepath.IsLocal(local) {
		return "", fmt.Errorf("entry %q escapes the extraction directory", name)
	}
	return filepath.Join(root, local), nil
}

// linkStaysInside reports whether a symlink at target pointing to link
// resolves within root.
func linkStaysInside(root, target, link string) bool {
	if link == "" || filepath.IsAbs(link) || path.IsAbs(link) {
		return false
	}
	resolved := filepath.Join(filepath.Dir(target), filepath.FromSlash(link))
	rel, err := filepath.Rel(root, resolved)
	if err != nil {
		return false
	}
	return rel == "." || filepath.IsLocal(rel)
}

func isHardLink(f archives.FileInfo) bool {
	hdr, ok := f.Header.(*tar.Header)
	return ok && hdr.Typeflag == tar.TypeLink
}

func readSmall(f archives.FileInfo) (string, error) {
	rc, err := f.Open()
	if err != nil {
		return "", err
	}
	defer rc.Close()
	data, err := io.ReadAll(io.LimitReader(rc, maxLinkTargetSize))
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func removeIfPresent(target string) error {
	info, err := os.Lstat(target)
	if err != nil {
		return nil
	}
	if info.IsDir() {
		return models.NewError(models.IOFailure, "create", target, fmt.Errorf("a directory already exists at this path"))
	}
	if err := os.Remove(target); err != nil {
		return models.NewError(models.IOFailure, "remove", target, err)
	}
	return nil
}

// trackingReader remembers read errors so io.Copy failures can be blamed on
// the archive rather than the destination.
type trackingReader struct {
	r   io.Reader
	err error
}

func (t *trackingReader) Read(p []byte) (int, error) {
	n, err := t.r.Read(p)
	if err != nil && err != io.EOF {
		t.err = err
	}
	return n, err
}
