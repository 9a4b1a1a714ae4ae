// Package cache persists minified template output. The disk store maps each
// canonicalized source path to a deterministic location under the cache
// directory; the in-memory content cache memoizes hot entries with LRU
// eviction and TTL so repeated lookups skip the filesystem.
package cache

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/tplslim/tplslim/internal/errors"
)

// Store is the filesystem collaborator for minification: it reads source
// templates, derives cache paths, and performs whole-file cache writes.
type Store struct {
	root string // absolute project root
	dir  string // cache directory, relative to root
}

// NewStore creates a store rooted at root with cache files under dir.
func NewStore(root, dir string) (*Store, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, errors.NewIOError("CACHE_ROOT", "failed to resolve cache root", err)
	}

	return &Store{root: absRoot, dir: dir}, nil
}

// Root returns the absolute project root.
func (s *Store) Root() string {
	return s.root
}

// RealPath resolves path to an absolute, symlink-free canonical path.
func (s *Store) RealPath(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", errors.NewIOError("CACHE_RESOLVE", "failed to resolve path", err)
	}

	real, err := filepath.EvalSymlinks(abs)
	if err != nil {
		// The source may not exist yet; the absolute path is still a
		// usable cache key.
		return abs, nil
	}

	return real, nil
}

// PathFor derives the cache path for a canonicalized source path: the
// root-relative source path materialized under the cache directory.
func (s *Store) PathFor(realPath string) string {
	rel, err := filepath.Rel(s.root, realPath)
	if err != nil || strings.HasPrefix(rel, "..") {
		// Sources outside the root flatten to their base name.
		rel = filepath.Base(realPath)
	}

	return filepath.Join(s.root, s.dir, rel)
}

// ReadSource reads the full content of a source template. A missing file
// yields empty content rather than an error; the pipeline runs on empty
// input and produces an empty cache entry.
func (s *Store) ReadSource(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", errors.NewIOError("CACHE_READ", "failed to read source", err).WithLocation(path, 0)
	}

	return string(data), nil
}

// Exists reports whether a cache file is already present.
func (s *Store) Exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// EnsureDir creates the parent directory for a cache file if absent.
func (s *Store) EnsureDir(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.NewIOError("CACHE_MKDIR", "failed to create cache directory", err)
	}

	return nil
}

// Write persists the final minified content as a whole-file write.
func (s *Store) Write(path, content string) error {
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return errors.NewIOError("CACHE_WRITE", "failed to write cache file", err).WithLocation(path, 0)
	}

	return nil
}

// Clean removes the entire cache directory.
func (s *Store) Clean() error {
	if err := os.RemoveAll(filepath.Join(s.root, s.dir)); err != nil {
		return errors.NewIOError("CACHE_CLEAN", "failed to remove cache directory", err)
	}

	return nil
}
