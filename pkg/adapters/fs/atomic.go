package fs

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// TempFilePrefix names in-flight writes. Temp files carry no document
// extension, so listings and the watcher never pick them up.
const TempFilePrefix = "jotter-tmp-"

// writeFileAtomic replaces filename with data through a synced temp file in the
// same directory, so readers and the watcher see either the old document or the
// new one. An existing document keeps its permissions; a new one gets perm.
func writeFileAtomic(filename string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(filename)

	mode := perm
	if info, statErr := os.Stat(filename); statErr == nil {
		mode = info.Mode().Perm()
	} else if !errors.Is(statErr, fs.ErrNotExist) {
		return fmt.Errorf("failed to stat %s: %w", filename, statErr)
	}

	tmp, err := os.CreateTemp(dir, TempFilePrefix+"*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	if err := tmp.Chmod(mode); err != nil {
		return fmt.Errorf("failed to set mode on temp file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), filename); err != nil {
		_ = os.Remove(tmp.Name())
		committed = true
		return fmt.Errorf("failed to move document into place at %s: %w", filename, err)
	}
	committed = true

	syncDir(dir)
	return nil
}

// syncDir flushes the rename to disk where the platform allows it.
// Some systems (Windows) cannot fsync a directory; that is not an error.
func syncDir(dir string) {
	d, err := os.Open(dir)
	if err != nil {
		return
	}
	_ = d.Sync()
	_ = d.Close()
}
