package adapter

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	m "sfcc.dev/pkg/sfcc/internal/model"
)

// ErrInvalidDescriptor is returned for descriptor files that do not match the
// expected layout.
var ErrInvalidDescriptor = errors.New("invalid descriptor")

// DescriptorLoader turns a descriptor file into the blocks handed to the compiler.
type DescriptorLoader interface {
	LoadDescriptor(path m.Path) (m.Descriptor, error)
}

type descriptorFile struct {
	Name   string     `yaml:"name"`
	Script *blockFile `yaml:"script"`
	Setup  *blockFile `yaml:"setup"`
}

type blockFile struct {
	Lang    string            `yaml:"lang"`
	Content string            `yaml:"content"`
	Src     string            `yaml:"src"`
	Args    *string           `yaml:"args"`
	Attrs   map[string]string `yaml:"attrs"`
}

// YAMLDescriptorLoader reads `*.sfc.yaml` descriptors through a SourceFSAdapter.
type YAMLDescriptorLoader struct {
	fs SourceFSAdapter
}

// NewYAMLDescriptorLoader creates a loader reading files through fs.
func NewYAMLDescriptorLoader(fs SourceFSAdapter) *YAMLDescriptorLoader {
	return &YAMLDescriptorLoader{fs: fs}
}

// LoadDescriptor parses the descriptor at path. The component name defaults to
// the file name without its suffix. A plain block `src` is read relative to
// the descriptor; a setup block `src` is passed on as an attribute.
func (l *YAMLDescriptorLoader) LoadDescriptor(path m.Path) (m.Descriptor, error) {
	data, err := l.fs.ReadFile(path)
	if err != nil {
		return m.Descriptor{}, fmt.Errorf("read descriptor %s: %w", path, err)
	}

	var file descriptorFile

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	if err := dec.Decode(&file); err != nil && !errors.Is(err, io.EOF) {
		return m.Descriptor{}, fmt.Errorf("%w %s: %w", ErrInvalidDescriptor, path, err)
	}

	name := strings.TrimSpace(file.Name)
	if name == "" {
		name = strings.TrimSuffix(filepath.Base(string(path)), DescriptorSuffix)
	}

	desc := m.Descriptor{Name: name, Path: path}

	if file.Script != nil {
		if file.Script.Args != nil {
			return m.Descriptor{}, fmt.Errorf("%w %s: args are only allowed on the setup block", ErrInvalidDescriptor, path)
		}

		block, err := l.block(path, "script", file.Script)
		if err != nil {
			return m.Descriptor{}, err
		}

		if file.Script.Src != "" {
			content, err := l.fs.ReadFile(m.Path(filepath.Join(filepath.Dir(string(path)), file.Script.Src)))
			if err != nil {
				return m.Descriptor{}, fmt.Errorf("read script src of %s: %w", path, err)
			}

			block.Content = string(content)
		}

		desc.Script = block
	}

	if file.Setup != nil {
		block, err := l.block(path, "setup", file.Setup)
		if err != nil {
			return m.Descriptor{}, err
		}

		block.SetupArgs = file.Setup.Args

		if file.Setup.Src != "" {
			block.Attrs["src"] = file.Setup.Src
		}

		desc.Setup = block
	}

	return desc, nil
}

func (l *YAMLDescriptorLoader) block(path m.Path, key string, file *blockFile) (*m.SourceBlock, error) {
	lang, ok := m.ParseLanguage(file.Lang)
	if !ok {
		return nil, fmt.Errorf("%w %s: unknown %s lang %q", ErrInvalidDescriptor, path, key, file.Lang)
	}

	attrs := make(map[string]string, len(file.Attrs)+1)
	for k, v := range file.Attrs {
		attrs[k] = v
	}

	return &m.SourceBlock{
		Content:  file.Content,
		Language: lang,
		Attrs:    attrs,
	}, nil
}
