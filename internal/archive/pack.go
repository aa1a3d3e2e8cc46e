package archive

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mholt/archives"

	"github.com/sankz2/pattern-search-tool/internal/filelock"
	"github.com/sankz2/pattern-search-tool/internal/models"
)

// Pack writes the contents of srcDir into a new archive at archivePath, with
// entries relative to srcDir. The container is chosen from the suffix of
// archivePath. The archive is written atomically.
func Pack(ctx context.Context, srcDir, archivePath string) error {
	kind := DetectKind(archivePath)

	var format archives.Archiver
	switch kind {
	case KindTarGz:
		format = archives.CompressedArchive{
			Compression: archives.Gz{},
			Archival:    archives.Tar{},
		}
	case KindZip:
		format = archives.Zip{}
	default:
		return models.NewError(models.UnsupportedFormat, "pack", archivePath, nil)
	}

	info, err := os.Stat(srcDir)
	if err != nil {
		return models.NewError(models.IOFailure, "pack", srcDir, err)
	}
	if !info.IsDir() {
		return models.NewError(models.IOFailure, "pack", srcDir, fmt.Errorf("not a directory"))
	}

	entries, err := os.ReadDir(srcDir)
	if err != nil {
		return models.NewError(models.IOFailure, "pack", srcDir, err)
	}

	// Map each top-level entry to its own name so srcDir itself is not a path component.
	filenames := make(map[string]string, len(entries))
	for _, entry := range entries {
		filenames[filepath.Join(srcDir, entry.Name())] = entry.Name()
	}

	files, err := archives.FilesFromDisk(ctx, &archives.FromDiskOptions{}, filenames)
	if err != nil {
		return models.NewError(models.IOFailure, "pack", srcDir, err)
	}

	var buf bytes.Buffer
	if err := format.Archive(ctx, &buf, files); err != nil {
		return models.NewError(models.IOFailure, "pack", archivePath, err)
	}

	if err := filelock.AtomicWrite(archivePath, buf.Bytes()); err != nil {
		return models.NewError(models.IOFailure, "write", archivePath, err)
	}
	return nil
}
