package adapter

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"

	m "sfcc.dev/pkg/sfcc/internal/model"
)

const (
	// IndexFileName is the cache index kept in the output directory.
	IndexFileName = "index.yaml"
	// BindingsSuffix is appended to the component name for the bindings file.
	BindingsSuffix = ".bindings.json"

	indexVersion = 1
)

// ResultStore persists compiled components and the cache index under an
// output directory.
type ResultStore interface {
	SaveResult(out m.Path, name string, result m.CompiledScriptResult, bindings []byte) error
	LoadResult(out m.Path, name string, entry m.IndexEntry) (m.CompiledScriptResult, error)
	LoadIndex(out m.Path) (m.CacheIndex, error)
	SaveIndex(out m.Path, index m.CacheIndex) error
	CleanResults(out m.Path, index m.CacheIndex, keep map[string]bool) (m.CacheIndex, error)
}

// FSResultStore writes `<name>.<ext>` and `<name>.bindings.json` files plus
// an `index.yaml` through a SourceFSAdapter.
type FSResultStore struct {
	fs SourceFSAdapter
}

// NewResultStore creates a store backed by fs.
func NewResultStore(fs SourceFSAdapter) *FSResultStore {
	return &FSResultStore{fs: fs}
}

// CodePath returns the file the generated code of name is written to.
func CodePath(out m.Path, name string, lang m.Language) m.Path {
	return m.Path(filepath.Join(string(out), name+"."+lang.Extension()))
}

// BindingsPath returns the file the bindings of name are written to.
func BindingsPath(out m.Path, name string) m.Path {
	return m.Path(filepath.Join(string(out), name+BindingsSuffix))
}

// SaveResult writes the generated code and the encoded bindings of name.
func (s *FSResultStore) SaveResult(out m.Path, name string, result m.CompiledScriptResult, bindings []byte) error {
	if err := s.fs.MkdirAll(out); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	if err := s.fs.WriteFile(CodePath(out, name, result.Language), []byte(result.Code), 0o644); err != nil {
		return fmt.Errorf("write code of %s: %w", name, err)
	}

	if err := s.fs.WriteFile(BindingsPath(out, name), bindings, 0o644); err != nil {
		return fmt.Errorf("write bindings of %s: %w", name, err)
	}

	slog.Debug("saved result", "name", name, "language", result.Language, "bindings", len(result.Bindings))

	return nil
}

// LoadResult reads a stored result back using the language recorded in entry.
func (s *FSResultStore) LoadResult(out m.Path, name string, entry m.IndexEntry) (m.CompiledScriptResult, error) {
	code, err := s.fs.ReadFile(CodePath(out, name, entry.Language))
	if err != nil {
		return m.CompiledScriptResult{}, fmt.Errorf("read code of %s: %w", name, err)
	}

	data, err := s.fs.ReadFile(BindingsPath(out, name))
	if err != nil {
		return m.CompiledScriptResult{}, fmt.Errorf("read bindings of %s: %w", name, err)
	}

	bindings := m.BindingMetadata{}
	if err := json.Unmarshal(data, &bindings); err != nil {
		return m.CompiledScriptResult{}, fmt.Errorf("decode bindings of %s: %w", name, err)
	}

	return m.CompiledScriptResult{Code: string(code), Bindings: bindings, Language: entry.Language}, nil
}

// LoadIndex reads the cache index. A missing index is an empty one.
func (s *FSResultStore) LoadIndex(out m.Path) (m.CacheIndex, error) {
	index := m.CacheIndex{Version: indexVersion, Components: map[string]m.IndexEntry{}}

	data, err := s.fs.ReadFile(s.fs.JoinPath(string(out), IndexFileName))
	if err != nil {
		if IsNotExist(err) {
			return index, nil
		}

		return index, fmt.Errorf("read index: %w", err)
	}

	if err := yaml.Unmarshal(data, &index); err != nil {
		return index, fmt.Errorf("decode index: %w", err)
	}

	if index.Version != indexVersion {
		slog.Warn("ignoring index with unknown version", "version", index.Version)
		return m.CacheIndex{Version: indexVersion, Components: map[string]m.IndexEntry{}}, nil
	}

	if index.Components == nil {
		index.Components = map[string]m.IndexEntry{}
	}

	return index, nil
}

// SaveIndex writes the cache index.
func (s *FSResultStore) SaveIndex(out m.Path, index m.CacheIndex) error {
	index.Version = indexVersion

	data, err := yaml.Marshal(index)
	if err != nil {
		return fmt.Errorf("encode index: %w", err)
	}

	if err := s.fs.MkdirAll(out); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	return s.fs.WriteFile(s.fs.JoinPath(string(out), IndexFileName), data, 0o644)
}

// CleanResults removes the files of every indexed component not in keep and
// returns the index without them.
func (s *FSResultStore) CleanResults(out m.Path, index m.CacheIndex, keep map[string]bool) (m.CacheIndex, error) {
	names := make([]string, 0, len(index.Components))
	for name := range index.Components {
		names = append(names, name)
	}

	sort.Strings(names)

	cleaned := m.CacheIndex{Version: indexVersion, Components: map[string]m.IndexEntry{}}

	for _, name := range names {
		entry := index.Components[name]
		if keep[name] {
			cleaned.Components[name] = entry
			continue
		}

		for _, path := range []m.Path{CodePath(out, name, entry.Language), BindingsPath(out, name)} {
			if err := s.fs.RemoveAll(path); err != nil {
				return index, fmt.Errorf("remove %s: %w", path, err)
			}
		}

		slog.Info("removed stale result", "name", name, "source", entry.Source)
	}

	return cleaned, nil
}
