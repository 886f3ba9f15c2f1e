// Package pkg provides generic helpers shared by the sfcc commands.
package pkg

import (
	"bufio"
	"encoding/gob"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
)

// spillDirName is the directory under os.TempDir holding spill files.
const spillDirName = "sfcc-spill"

// ErrSpillRemoved is returned by operations on a spill after Remove.
var ErrSpillRemoved = errors.New("spill removed")

// FileSpill keeps the records of a batch run on disk so memory stays flat
// however many components are compiled. Append is safe for concurrent
// workers; records are read back in append order.
type FileSpill[T any] interface {
	Append(item T) error
	Len() int
	Path() string
	// Each decodes every record in append order. fn must not call back into
	// the spill.
	Each(fn func(item T) error) error
	Slice() ([]T, error)
	Remove() error
}

type fileSpill[T any] struct {
	mu      sync.Mutex
	path    string
	file    *os.File
	buf     *bufio.Writer
	enc     *gob.Encoder
	count   int
	removed bool
}

// NewFileSpill creates a spill under the system temp directory.
func NewFileSpill[T any]() (FileSpill[T], error) {
	return NewFileSpillIn[T](filepath.Join(os.TempDir(), spillDirName))
}

// NewFileSpillIn creates a spill inside dir, creating dir when missing.
func NewFileSpillIn[T any](dir string) (FileSpill[T], error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("create spill dir %s: %w", dir, err)
	}

	file, err := os.CreateTemp(dir, "records-*.gob")
	if err != nil {
		return nil, fmt.Errorf("create spill file in %s: %w", dir, err)
	}

	buf := bufio.NewWriter(file)

	slog.Debug("spill created", "path", file.Name())

	return &fileSpill[T]{
		path: file.Name(),
		file: file,
		buf:  buf,
		enc:  gob.NewEncoder(buf),
	}, nil
}

func (s *fileSpill[T]) Append(item T) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.removed {
		return fmt.Errorf("%w: %s", ErrSpillRemoved, s.path)
	}

	if err := s.enc.Encode(item); err != nil {
		slog.Error("failed to spill record", "path", s.path, "index", s.count, "error", err)
		return fmt.Errorf("spill record %d: %w", s.count, err)
	}

	s.count++

	return nil
}

func (s *fileSpill[T]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.count
}

func (s *fileSpill[T]) Path() string {
	return s.path
}

func (s *fileSpill[T]) Each(fn func(item T) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.removed {
		return fmt.Errorf("%w: %s", ErrSpillRemoved, s.path)
	}

	if err := s.buf.Flush(); err != nil {
		return fmt.Errorf("flush spill %s: %w", s.path, err)
	}

	file, err := os.Open(s.path)
	if err != nil {
		return fmt.Errorf("open spill %s: %w", s.path, err)
	}

	defer func() {
		if err := file.Close(); err != nil {
			slog.Warn("failed to close spill reader", "path", s.path, "error", err)
		}
	}()

	dec := gob.NewDecoder(bufio.NewReader(file))

	for i := 0; i < s.count; i++ {
		// gob merges into existing maps, so every record gets a fresh value.
		var item T

		if err := dec.Decode(&item); err != nil {
			return fmt.Errorf("decode spill record %d: %w", i, err)
		}

		if err := fn(item); err != nil {
			return err
		}
	}

	return nil
}

func (s *fileSpill[T]) Slice() ([]T, error) {
	items := make([]T, 0, s.Len())

	err := s.Each(func(item T) error {
		items = append(items, item)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return items, nil
}

// Remove closes and deletes the backing file. Calling it again is a no-op.
func (s *fileSpill[T]) Remove() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.removed {
		return nil
	}

	s.removed = true

	if err := s.file.Close(); err != nil {
		slog.Warn("failed to close spill", "path", s.path, "error", err)
	}

	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove spill %s: %w", s.path, err)
	}

	slog.Debug("spill removed", "path", s.path, "records", s.count)

	return nil
}
