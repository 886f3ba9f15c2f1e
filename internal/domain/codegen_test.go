package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sfcc.dev/pkg/sfcc/internal/adapter"
	m "sfcc.dev/pkg/sfcc/internal/model"
)

func TestUniqueName(t *testing.T) {
	module := scopeIndex{"setup": {}, "setup_": {}}
	setup := scopeIndex{"__default__": {}}

	assert.Equal(t, "setup__", uniqueName("setup", module, setup))
	assert.Equal(t, "__default___", uniqueName("__default__", module, setup))
	assert.Equal(t, "free", uniqueName("free", module, setup))
}

func TestTrimBlankLines(t *testing.T) {
	assert.Equal(t, "  a\nb", trimBlankLines("\n   \n  a\nb\n\n  "))
	assert.Equal(t, "", trimBlankLines("\n\n"))
}

func TestCutSpans(t *testing.T) {
	parser := adapter.NewTreeSitterParser()

	src := "import a from 'a';\nfoo()\nexport const x = 1\nbar()"
	p, err := parser.Parse(m.BlockSetup, m.LangJS, []byte(src))
	require.NoError(t, err)
	defer p.Close()

	exportAt := len("import a from 'a';\nfoo()\n")
	cuts := []span{
		{start: exportAt, end: exportAt + len("export ")},
		{start: 0, end: len("import a from 'a'")},
	}

	assert.Equal(t, "  foo()\n  const x = 1\n  bar()", cutSpans(p, cuts, "  "))
	assert.Equal(t, "foo()\nconst x = 1\nbar()", cutSpans(p, cuts, ""))
	assert.Equal(t, "", cutSpans(nil, cuts, ""))
}

func TestImportSetRender(t *testing.T) {
	parser := adapter.NewTreeSitterParser()

	src := `import def, { a, b as c } from 'one'
import * as ns from 'two'
import 'side-effect'
import type { T } from 'one'
import { a as a2 } from 'one'
import data from './a.json' with { type: 'json' }
import { extra } from './a.json' with { type:  'json' }
import raw from './a.json'
`
	p, err := parser.Parse(m.BlockSetup, m.LangTS, []byte(src))
	require.NoError(t, err)
	defer p.Close()

	set := newImportSet()
	for _, stmt := range p.Statements {
		require.NoError(t, set.collectImport(p, stmt.Node))
	}

	assert.Equal(t, `import def, { a, b as c, a as a2 } from 'one'
import * as ns from 'two'
import 'side-effect'
import type { T } from 'one'
import data, { extra } from './a.json' with { type: 'json' }
import raw from './a.json'
`, set.render())
	assert.True(t, set.isTypeOnly("T"))
	assert.False(t, set.isTypeOnly("a"))
}
