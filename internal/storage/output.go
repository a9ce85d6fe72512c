package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// OutputDir writes build artifacts under a root directory. Writes are
// atomic (temp file, fsync, rename) so a crashed build never leaves a
// half-written page behind.
type OutputDir struct {
	root string
}

// NewOutputDir creates the output directory if needed and returns a writer
// rooted at it.
func NewOutputDir(root string) (*OutputDir, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("storage: resolve output root: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("storage: create output root: %w", err)
	}
	return &OutputDir{root: abs}, nil
}

// Root returns the absolute output root.
func (o *OutputDir) Root() string { return o.root }

// safePath resolves a relative path against the output root and rejects
// any result that escapes it.
func (o *OutputDir) safePath(rel string) (string, error) {
	cleaned := filepath.Clean(filepath.FromSlash(rel))
	if cleaned == "." || filepath.IsAbs(cleaned) {
		return "", fmt.Errorf("storage: invalid output path: %s", rel)
	}
	abs, err := filepath.Abs(filepath.Join(o.root, cleaned))
	if err != nil {
		return "", fmt.Errorf("storage: resolve output path: %w", err)
	}
	if !strings.HasPrefix(abs, o.root+string(os.PathSeparator)) {
		return "", fmt.Errorf("storage: path escapes output root: %s", rel)
	}
	return abs, nil
}

// Write atomically writes content: tmp file, fsync, rename.
func (o *OutputDir) Write(path string, content []byte) error {
	abs, err := o.safePath(path)
	if err != nil {
		return err
	}
	dir := filepath.Dir(abs)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("storage: mkdir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".ansuz-tmp-*")
	if err != nil {
		return fmt.Errorf("storage: create temp: %w", err)
	}
	tmpName := tmp.Name()

	// Clean up on any failure path.
	success := false
	defer func() {
		if !success {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(content); err != nil {
		return fmt.Errorf("storage: write temp: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("storage: fsync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("storage: close temp: %w", err)
	}
	if err := os.Rename(tmpName, abs); err != nil {
		return fmt.Errorf("storage: rename: %w", err)
	}
	success = true
	return nil
}

// CopyFrom copies a source file (an asset) into the output tree at the
// same relative path.
func (o *OutputDir) CopyFrom(src Provider, path string) error {
	data, err := src.Read(path)
	if err != nil {
		return err
	}
	return o.Write(path, data)
}
