package fileutil

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// CopyTree copies src (a file or a directory) into destParent, so that
// destParent/<base(src)> mirrors src. Existing files at the destination are
// overwritten; unrelated files are left alone. Symlinks are recreated as links.
func CopyTree(src, destParent string) (string, error) {
	info, err := os.Stat(src)
	if err != nil {
		return "", fmt.Errorf("failed to access %s: %w", src, err)
	}
	dest := filepath.Join(destParent, filepath.Base(filepath.Clean(src)))

	if !info.IsDir() {
		if err := os.MkdirAll(destParent, 0755); err != nil {
			return "", fmt.Errorf("failed to create directory %s: %w", destParent, err)
		}
		return dest, copyFile(src, dest, info.Mode().Perm())
	}

	err = filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dest, rel)

		switch {
		case d.IsDir():
			return os.MkdirAll(target, 0755)
		case d.Type()&fs.ModeSymlink != 0:
			link, err := os.Readlink(path)
			if err != nil {
				return err
			}
			os.Remove(target)
			return os.Symlink(link, target)
		case d.Type().IsRegular():
			fi, err := d.Info()
			if err != nil {
				return err
			}
			return copyFile(path, target, fi.Mode().Perm())
		default:
			return nil
		}
	})
	if err != nil {
		return "", fmt.Errorf("failed to copy %s to %s: %w", src, destParent, err)
	}
	return dest, nil
}

func copyFile(src, dest string, perm fs.FileMode) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dest, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, perm|0600)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
