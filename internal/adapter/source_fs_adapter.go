package adapter

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	m "sfcc.dev/pkg/sfcc/internal/model"
)

// DescriptorSuffix is the file name suffix of component descriptors.
const DescriptorSuffix = ".sfc.yaml"

// SourceFSAdapter abstracts filesystem-specific operations that the domain layer
// relies on when scanning component trees and writing results. It hides direct
// `os` access so the workflow logic can be tested without touching the disk.
//
//nolint:interfacebloat // A richer interface keeps workflow logic decoupled from os/fs.
type SourceFSAdapter interface {
	// Get resolves Go-style path patterns (./..., dir, file) into descriptor
	// files, skipping any path matching one of the exclude regexes.
	Get(ctx context.Context, roots []m.Path, exclude ...string) ([]m.File, error)

	// Walk traverses the provided root path. When recursive is false the
	// implementation should limit itself to the root directory (no sub-dirs).
	Walk(root m.Path, recursive bool, fn FilepathWalkFunc) error

	// ReadFile loads a file from disk and returns its contents.
	ReadFile(path m.Path) ([]byte, error)

	// HashFile returns a stable fingerprint (SHA-256) for the file at path.
	HashFile(path m.Path) (string, error)

	// FileInfo returns metadata for a path so the domain can check existence.
	FileInfo(path m.Path) (os.FileInfo, error)

	// MkdirAll creates a directory and its parents.
	MkdirAll(path m.Path) error

	// RemoveAll removes a path and all its contents.
	RemoveAll(path m.Path) error

	// WriteFile writes content to a file with the given permissions.
	WriteFile(path m.Path, content []byte, perm os.FileMode) error

	// RelPath returns the relative path from base to target.
	RelPath(base, target m.Path) (m.Path, error)

	// JoinPath joins path elements into a single path.
	JoinPath(elem ...string) m.Path
}

// FilepathWalkFunc mirrors the callback shape used by filepath.Walk. It is
// defined here to avoid leaking the standard-library type directly into the
// domain layer.
type FilepathWalkFunc func(path string, info os.FileInfo, err error) error

// LocalSourceFSAdapter is the concrete, disk-backed SourceFSAdapter.
type LocalSourceFSAdapter struct{}

// NewLocalSourceFSAdapter constructs a LocalSourceFSAdapter instance ready to
// be wired into the workflow.
func NewLocalSourceFSAdapter() *LocalSourceFSAdapter {
	return &LocalSourceFSAdapter{}
}

// Get expands each root. `dir/...` walks recursively, a directory lists its
// own descriptors, a file is taken as is. No roots means `./...`.
func (a *LocalSourceFSAdapter) Get(ctx context.Context, roots []m.Path, exclude ...string) ([]m.File, error) {
	patterns, err := compileExcludes(exclude)
	if err != nil {
		return nil, err
	}

	if len(roots) == 0 {
		roots = []m.Path{"./..."}
	}

	seen := make(map[string]bool)

	var files []m.File

	for _, root := range roots {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		dir, recursive := splitPattern(string(root))

		info, err := os.Stat(dir)
		if err != nil {
			return nil, fmt.Errorf("root path error: %w", err)
		}

		if !info.IsDir() {
			if file, ok, err := a.collect(dir, patterns, seen); err != nil {
				return nil, err
			} else if ok {
				files = append(files, file)
			}

			continue
		}

		err = a.Walk(m.Path(dir), recursive, func(path string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}

			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}

			if info.IsDir() {
				if path != dir && skipDir(info.Name()) {
					return filepath.SkipDir
				}

				return nil
			}

			if !strings.HasSuffix(path, DescriptorSuffix) {
				return nil
			}

			file, ok, err := a.collect(path, patterns, seen)
			if err != nil {
				return err
			}

			if ok {
				files = append(files, file)
			}

			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })

	slog.Debug("resolved descriptor files", "roots", roots, "count", len(files))

	return files, nil
}

func (a *LocalSourceFSAdapter) collect(path string, exclude []*regexp.Regexp, seen map[string]bool) (m.File, bool, error) {
	path = filepath.Clean(path)
	if seen[path] || matchesAny(exclude, path) {
		return m.File{}, false, nil
	}

	seen[path] = true

	hash, err := a.HashFile(m.Path(path))
	if err != nil {
		return m.File{}, false, fmt.Errorf("hash %s: %w", path, err)
	}

	return m.File{Path: m.Path(path), Hash: hash}, true, nil
}

func splitPattern(root string) (string, bool) {
	if root == "..." {
		return ".", true
	}

	if strings.HasSuffix(root, "/...") {
		dir := strings.TrimSuffix(root, "/...")
		if dir == "" {
			dir = "/"
		}

		return dir, true
	}

	return root, false
}

func skipDir(name string) bool {
	return name == "node_modules" || name == ".git" || (strings.HasPrefix(name, ".") && name != "." && name != "..")
}

func compileExcludes(exclude []string) ([]*regexp.Regexp, error) {
	patterns := make([]*regexp.Regexp, 0, len(exclude))

	for _, expr := range exclude {
		re, err := regexp.Compile(expr)
		if err != nil {
			return nil, fmt.Errorf("invalid exclude pattern %q: %w", expr, err)
		}

		patterns = append(patterns, re)
	}

	return patterns, nil
}

func matchesAny(patterns []*regexp.Regexp, path string) bool {
	for _, re := range patterns {
		if re.MatchString(path) || re.MatchString(filepath.Base(path)) {
			return true
		}
	}

	return false
}

// Walk iterates over files under root, optionally descending into subdirectories.
func (a *LocalSourceFSAdapter) Walk(root m.Path, recursive bool, fn FilepathWalkFunc) error {
	rootStr := string(root)

	return filepath.Walk(rootStr, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return fn(path, info, err)
		}

		if info.IsDir() && !recursive && path != rootStr {
			return filepath.SkipDir
		}

		return fn(path, info, nil)
	})
}

// ReadFile loads file contents from disk.
func (a *LocalSourceFSAdapter) ReadFile(path m.Path) ([]byte, error) {
	return os.ReadFile(string(path))
}

// HashFile returns the SHA-256 hash of the file at the provided path.
func (a *LocalSourceFSAdapter) HashFile(path m.Path) (string, error) {
	f, err := os.Open(string(path))
	if err != nil {
		return "", err
	}

	defer func() {
		_ = f.Close()
	}()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}

	return fmt.Sprintf("%x", h.Sum(nil)), nil
}

// FileInfo returns os.FileInfo metadata for the given path.
func (a *LocalSourceFSAdapter) FileInfo(path m.Path) (os.FileInfo, error) {
	return os.Stat(string(path))
}

// MkdirAll creates path and any missing parents.
func (a *LocalSourceFSAdapter) MkdirAll(path m.Path) error {
	return os.MkdirAll(string(path), 0o750)
}

// RemoveAll removes a path and all its contents.
func (a *LocalSourceFSAdapter) RemoveAll(path m.Path) error {
	return os.RemoveAll(string(path))
}

// WriteFile writes content to a file with the given permissions, creating the
// parent directory when missing.
func (a *LocalSourceFSAdapter) WriteFile(path m.Path, content []byte, perm os.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(string(path)), 0o750); err != nil {
		return err
	}

	return os.WriteFile(string(path), content, perm)
}

// RelPath returns the relative path from base to target.
func (a *LocalSourceFSAdapter) RelPath(base, target m.Path) (m.Path, error) {
	rel, err := filepath.Rel(string(base), string(target))
	if err != nil {
		return "", err
	}

	return m.Path(rel), nil
}

// JoinPath joins path elements into a single path.
func (a *LocalSourceFSAdapter) JoinPath(elem ...string) m.Path {
	return m.Path(filepath.Join(elem...))
}

// IsNotExist reports whether err means the path does not exist.
func IsNotExist(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}
