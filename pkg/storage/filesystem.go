package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Archive keeps rendered export files on disk under a single flat
// directory. Filenames come back out of signed download tokens, so
// anything that could escape the directory is rejected outright.
type Archive struct {
	dir string
}

// NewArchive creates the archive directory if needed.
func NewArchive(dir string) (*Archive, error) {
	if dir == "" {
		dir = "./exports"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create archive directory: %w", err)
	}
	return &Archive{dir: dir}, nil
}

// Save writes an export under the archive directory and returns the
// name it was stored as.
func (a *Archive) Save(filename string, data []byte) (string, error) {
	path, err := a.resolve(filename)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write archived export: %w", err)
	}
	return filename, nil
}

// Open returns a read-only handle for an archived export.
func (a *Archive) Open(filename string) (*os.File, error) {
	path, err := a.resolve(filename)
	if err != nil {
		return nil, err
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open archived export: %w", err)
	}
	return file, nil
}

// Delete removes an archived export if present.
func (a *Archive) Delete(filename string) error {
	path, err := a.resolve(filename)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete archived export: %w", err)
	}
	return nil
}

// CleanupOlderThan removes exports whose modification time predates
// the TTL and reports the names it deleted.
func (a *Archive) CleanupOlderThan(ttl time.Duration) ([]string, error) {
	entries, err := os.ReadDir(a.dir)
	if err != nil {
		return nil, fmt.Errorf("scan archive directory: %w", err)
	}

	cutoff := time.Now().Add(-ttl)
	deleted := make([]string, 0)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			return deleted, err
		}
		if info.ModTime().After(cutoff) {
			continue
		}
		if err := os.Remove(filepath.Join(a.dir, entry.Name())); err != nil && !os.IsNotExist(err) {
			return deleted, err
		}
		deleted = append(deleted, entry.Name())
	}
	return deleted, nil
}

func (a *Archive) resolve(filename string) (string, error) {
	if filename == "" || filename != filepath.Base(filename) || strings.HasPrefix(filename, ".") {
		return "", fmt.Errorf("invalid archive filename %q", filename)
	}
	return filepath.Join(a.dir, filename), nil
}
