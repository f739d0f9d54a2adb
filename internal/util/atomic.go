package util

import (
	"fmt"
	"os"
	"path/filepath"
)

// WriteFileAtomic writes data to a temporary file next to path and renames
// it into place. On failure path is left untouched.
func WriteFileAtomic(path string, data []byte, perm os.FileMode) error {
	p, err := StageFile(path, data, perm)
	if err != nil {
		return err
	}
	return p.Commit()
}

// PendingFile holds data written to a temporary file next to Path,
// waiting to replace it.
type PendingFile struct {
	Path string
	tmp  string
}

// StageFile writes data to a temporary file in path's directory. Nothing
// at path changes until Commit.
func StageFile(path string, data []byte, perm os.FileMode) (*PendingFile, error) {
	dir, base := filepath.Split(path)
	if dir == "" {
		dir = "."
	}
	f, err := os.CreateTemp(dir, "."+base+".tmp*")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	tmp := f.Name()
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(tmp)
		return nil, fmt.Errorf("write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return nil, fmt.Errorf("close %s: %w", path, err)
	}
	if err := os.Chmod(tmp, perm); err != nil {
		os.Remove(tmp)
		return nil, fmt.Errorf("chmod %s: %w", path, err)
	}
	return &PendingFile{Path: path, tmp: tmp}, nil
}

// Commit renames the staged file over Path.
func (p *PendingFile) Commit() error {
	if err := os.Rename(p.tmp, p.Path); err != nil {
		os.Remove(p.tmp)
		return fmt.Errorf("rename %s: %w", p.Path, err)
	}
	return nil
}

// Discard removes the staged file, leaving Path untouched.
func (p *PendingFile) Discard() {
	os.Remove(p.tmp)
}
