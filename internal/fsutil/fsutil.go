// Package fsutil provides the whole-file write and directory helpers used by
// the label and raster writers.
package fsutil

import (
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// DirPerm is the permission used for auto-created output directories.
const DirPerm = 0o755

// FilePerm is the permission of written output files.
const FilePerm = 0o644

// EnsureDir creates dir and any missing parents.
func EnsureDir(dir string) error {
	if dir == "" || dir == "." {
		return nil
	}
	if err := os.MkdirAll(dir, DirPerm); err != nil {
		return errors.Wrapf(err, "error creating directory %s", dir)
	}
	return nil
}

// WriteFile replaces the contents of name with the output of fn.  The data is
// written to a temporary file in the same directory and renamed over name, so
// readers see either the old contents or the complete new contents.  Missing
// parent directories are created.
func WriteFile(name string, fn func(w io.Writer) error) error {

	dir := filepath.Dir(name)

	if err := EnsureDir(dir); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(name)+".*")

	if err != nil {
		return errors.Wrapf(err, "error creating temp file for %s", name)
	}

	// remove the temp file on any failure path
	committed := false
	defer func() {
		if !committed {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	if err := fn(tmp); err != nil {
		return err
	}

	if err := tmp.Chmod(FilePerm); err != nil {
		return errors.Wrapf(err, "error setting mode of %s", name)
	}

	if err := tmp.Close(); err != nil {
		return errors.Wrapf(err, "error closing %s", name)
	}

	if err := os.Rename(tmp.Name(), name); err != nil {
		return errors.Wrapf(err, "error replacing %s", name)
	}

	committed = true
	return nil
}

// WriteBytes replaces the contents of name with data, see WriteFile.
func WriteBytes(name string, data []byte) error {
	return WriteFile(name, func(w io.Writer) error {
		_, err := w.Write(data)
		return errors.Wrapf(err, "error writing %s", name)
	})
}

// RemoveMatching deletes the files in dir matching the glob pattern and
// returns the number removed.  A missing dir is not an error.
func RemoveMatching(dir, pattern string) (int, error) {

	matches, err := filepath.Glob(filepath.Join(dir, pattern))

	if err != nil {
		return 0, errors.Wrapf(err, "bad pattern %q", pattern)
	}

	removed := 0

	for _, m := range matches {
		info, err := os.Stat(m)
		if err != nil || info.IsDir() {
			continue
		}
		if err := os.Remove(m); err != nil {
			return removed, errors.Wrapf(err, "error removing %s", m)
		}
		removed++
	}

	return removed, nil
}

// ResetDir removes dir with all its contents and recreates it empty.
func ResetDir(dir string) error {
	if err := os.RemoveAll(dir); err != nil {
		return errors.Wrapf(err, "error clearing %s", dir)
	}
	return EnsureDir(dir)
}

// CopyFile copies src to dst as a whole-file replacement.
func CopyFile(src, dst string) error {

	in, err := os.Open(src)

	if err != nil {
		return errors.Wrapf(err, "error opening %s", src)
	}

	defer in.Close()

	return WriteFile(dst, func(w io.Writer) error {
		_, err := io.Copy(w, in)
		return errors.Wrapf(err, "error copying %s", src)
	})
}
