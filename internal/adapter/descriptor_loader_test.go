package adapter

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	m "sfcc.dev/pkg/sfcc/internal/model"
)

func TestYAMLDescriptorLoader_LoadDescriptor(t *testing.T) {
	loader := NewYAMLDescriptorLoader(NewLocalSourceFSAdapter())

	t.Run("both blocks", func(t *testing.T) {
		root := t.TempDir()
		path := filepath.Join(root, "Counter.sfc.yaml")
		writeTestFile(t, path, `name: MyCounter
script:
  content: |
    export default { name: 'Counter' }
setup:
  lang: ts
  args: "props: { step: number }"
  content: |
    export const count = 0
`)

		desc, err := loader.LoadDescriptor(m.Path(path))
		require.NoError(t, err)

		assert.Equal(t, "MyCounter", desc.Name)
		assert.Equal(t, m.Path(path), desc.Path)
		require.NotNil(t, desc.Script)
		assert.Equal(t, m.LangJS, desc.Script.Language)
		assert.Equal(t, "export default { name: 'Counter' }\n", desc.Script.Content)
		require.NotNil(t, desc.Setup)
		assert.Equal(t, m.LangTS, desc.Setup.Language)
		require.NotNil(t, desc.Setup.SetupArgs)
		assert.Equal(t, "props: { step: number }", *desc.Setup.SetupArgs)

		_, hasSrc := desc.Setup.Src()
		assert.False(t, hasSrc)
	})

	t.Run("name defaults to file name", func(t *testing.T) {
		root := t.TempDir()
		path := filepath.Join(root, "Badge.sfc.yaml")
		writeTestFile(t, path, "setup:\n  content: export const a = 1\n")

		desc, err := loader.LoadDescriptor(m.Path(path))
		require.NoError(t, err)
		assert.Equal(t, "Badge", desc.Name)
		assert.Nil(t, desc.Script)
	})

	t.Run("plain src is inlined", func(t *testing.T) {
		root := t.TempDir()
		writeTestFile(t, filepath.Join(root, "shared.js"), "export const shared = 1\n")
		path := filepath.Join(root, "Shared.sfc.yaml")
		writeTestFile(t, path, "script:\n  src: ./shared.js\n")

		desc, err := loader.LoadDescriptor(m.Path(path))
		require.NoError(t, err)
		require.NotNil(t, desc.Script)
		assert.Equal(t, "export const shared = 1\n", desc.Script.Content)
	})

	t.Run("setup src becomes an attribute", func(t *testing.T) {
		root := t.TempDir()
		path := filepath.Join(root, "Ext.sfc.yaml")
		writeTestFile(t, path, "setup:\n  src: ./ext.js\n")

		desc, err := loader.LoadDescriptor(m.Path(path))
		require.NoError(t, err)

		src, ok := desc.Setup.Src()
		assert.True(t, ok)
		assert.Equal(t, "./ext.js", src)
	})

	errorCases := []struct {
		name    string
		content string
	}{
		{name: "unknown field", content: "nmae: X\n"},
		{name: "unknown lang", content: "setup:\n  lang: coffee\n"},
		{name: "args on plain block", content: "script:\n  args: props\n"},
		{name: "malformed yaml", content: "setup: [\n"},
	}

	for _, tc := range errorCases {
		t.Run(tc.name, func(t *testing.T) {
			root := t.TempDir()
			path := filepath.Join(root, "Bad.sfc.yaml")
			writeTestFile(t, path, tc.content)

			_, err := loader.LoadDescriptor(m.Path(path))
			require.ErrorIs(t, err, ErrInvalidDescriptor)
		})
	}

	t.Run("missing plain src", func(t *testing.T) {
		root := t.TempDir()
		path := filepath.Join(root, "Missing.sfc.yaml")
		writeTestFile(t, path, "script:\n  src: ./nope.js\n")

		_, err := loader.LoadDescriptor(m.Path(path))
		require.Error(t, err)
		assert.True(t, IsNotExist(err))
	})
}
