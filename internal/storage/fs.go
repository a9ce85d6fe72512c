// Package storage provides file-system access to the Markdown source tree
// and an atomic writer for the build output directory. The build never
// mutates sources: every write goes to the output tree.
package storage

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/starford/ansuz/internal/checksum"
	"github.com/starford/ansuz/internal/models"
	"github.com/starford/ansuz/internal/nav"
)

// FS implements Provider backed by the local file system.
type FS struct {
	root string // absolute path to the source directory
}

// NewFS creates a new FS provider rooted at the given directory.
// The directory must already exist.
func NewFS(root string) (*FS, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("storage: resolve root: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("storage: stat root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("storage: root is not a directory: %s", abs)
	}
	return &FS{root: abs}, nil
}

// Root returns the absolute source root.
func (f *FS) Root() string { return f.root }

// safePath resolves a relative path against the source root and rejects
// any result that escapes it (directory traversal).
func (f *FS) safePath(rel string) (string, error) {
	if rel == "" {
		return f.root, nil
	}
	cleaned := filepath.Clean(filepath.FromSlash(rel))
	if filepath.IsAbs(cleaned) {
		return "", fmt.Errorf("storage: absolute paths not allowed: %s", rel)
	}
	joined := filepath.Join(f.root, cleaned)
	abs, err := filepath.Abs(joined)
	if err != nil {
		return "", fmt.Errorf("storage: resolve path: %w", err)
	}
	if !strings.HasPrefix(abs, f.root+string(os.PathSeparator)) && abs != f.root {
		return "", fmt.Errorf("storage: path escapes source root: %s", rel)
	}
	return abs, nil
}

// Documents walks dir (relative to root) and returns metadata for every .md
// file, skipping hidden files and directories.
func (f *FS) Documents(dir string) ([]models.DocumentMeta, error) {
	base, err := f.safePath(dir)
	if err != nil {
		return nil, err
	}
	var out []models.DocumentMeta
	err = filepath.WalkDir(base, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if hidden(d.Name()) && p != base {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), ".md") {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		data, err := os.ReadFile(p)
		if err != nil {
			return err
		}
		rel, _ := filepath.Rel(f.root, p)
		out = append(out, models.DocumentMeta{
			Path:      filepath.ToSlash(rel),
			Checksum:  checksum.Sum(data),
			UpdatedAt: info.ModTime(),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("storage: documents: %w", err)
	}
	return out, nil
}

// Files returns the relative slash path of every regular non-hidden file in
// the tree. The integrity checker resolves references against this set.
func (f *FS) Files() (map[string]struct{}, error) {
	out := make(map[string]struct{})
	err := filepath.WalkDir(f.root, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if hidden(d.Name()) && p != f.root {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		rel, _ := filepath.Rel(f.root, p)
		out[filepath.ToSlash(rel)] = struct{}{}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("storage: files: %w", err)
	}
	return out, nil
}

// Read returns the raw bytes of a source file.
func (f *FS) Read(path string) ([]byte, error) {
	abs, err := f.safePath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("storage: read %s: %w", path, err)
	}
	return data, nil
}

// Exists reports whether a relative path names an existing regular file.
func (f *FS) Exists(path string) bool {
	abs, err := f.safePath(path)
	if err != nil {
		return false
	}
	info, err := os.Stat(abs)
	return err == nil && info.Mode().IsRegular()
}

// Orders reads every per-directory ordering file in the tree and returns a
// map of directory path ("" for the root) to the listed entry names.
func (f *FS) Orders() (map[string][]string, error) {
	out := make(map[string][]string)
	err := filepath.WalkDir(f.root, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() || d.Name() != nav.OrderFile {
			return nil
		}
		names, err := readOrderFile(p)
		if err != nil {
			return err
		}
		rel, _ := filepath.Rel(f.root, filepath.Dir(p))
		dir := filepath.ToSlash(rel)
		if dir == "." {
			dir = ""
		}
		out[dir] = names
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("storage: orders: %w", err)
	}
	return out, nil
}

// readOrderFile parses an ordering file: a plain YAML list of entry names.
func readOrderFile(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("storage: read order file %s: %w", path, err)
	}
	var names []string
	if err := yaml.Unmarshal(data, &names); err != nil {
		return nil, fmt.Errorf("storage: parse order file %s: %w", path, err)
	}
	return names, nil
}

// hidden reports whether a file or directory name is hidden. Ordering files
// are dotfiles and therefore excluded from Documents and Files, which is
// what the integrity checker and the navigation assembler expect.
func hidden(name string) bool {
	return strings.HasPrefix(name, ".")
}
