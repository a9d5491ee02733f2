package filesystem

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Store implements ports.DocumentStore on the local filesystem.
type Store struct{}

// NewStore creates a filesystem document store.
func NewStore() *Store {
	return &Store{}
}

// Read returns the file's content as a string.
func (s *Store) Read(path string) (string, error) {
	data, err := os.ReadFile(expandHome(path))
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// WriteAtomic writes content via a temporary file in the same
// directory followed by a rename, so a crash or full disk never leaves
// a truncated file behind.
func (s *Store) WriteAtomic(path, content string) error {
	path = expandHome(path)
	dir := filepath.Dir(path)

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.WriteString(content); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("syncing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing temp file: %w", err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replacing %s: %w", path, err)
	}
	return nil
}

// expandHome expands a leading ~ to the user's home directory.
func expandHome(path string) string {
	if strings.HasPrefix(path, "~") {
		home, _ := os.UserHomeDir()
		return filepath.Join(home, path[1:])
	}
	return path
}
