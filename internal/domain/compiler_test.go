package domain

import (
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sfcc.dev/pkg/sfcc/internal/adapter"
	m "sfcc.dev/pkg/sfcc/internal/model"
)

func newTestCompiler() Compiler {
	return NewCompiler(adapter.NewTreeSitterParser())
}

func block(lang m.Language, content string) *m.SourceBlock {
	return &m.SourceBlock{Content: content, Language: lang}
}

func withArgs(b *m.SourceBlock, args string) *m.SourceBlock {
	b.SetupArgs = &args
	return b
}

func requireKind(t *testing.T, err error, sentinel error) *m.CompileError {
	t.Helper()

	require.Error(t, err)
	require.True(t, errors.Is(err, sentinel), "got %v", err)

	var compileErr *m.CompileError
	require.True(t, errors.As(err, &compileErr))

	return compileErr
}

func TestCompile_SetupExportsOnly(t *testing.T) {
	desc := m.Descriptor{
		Name: "Counter",
		Setup: block(m.LangJS, `import { ref } from 'vue'

export const count = ref(0)
export const inc = () => count.value++
`),
	}

	result, err := newTestCompiler().Compile(desc, m.CompileOptions{})
	require.NoError(t, err)

	assert.Equal(t, m.BindingMetadata{"count": m.BindingSetup, "inc": m.BindingSetup}, result.Bindings)
	assert.Equal(t, m.LangJS, result.Language)
	assert.Equal(t, `import { ref } from 'vue'

function setup() {
  const count = ref(0)
  const inc = () => count.value++

  return { count, inc }
}

export default { setup }
`, result.Code)
}

func TestCompile_BaseOptionsWithProps(t *testing.T) {
	desc := m.Descriptor{
		Name: "Message",
		Setup: withArgs(block(m.LangJS, `import { computed } from 'vue'

export default { props: { msg: String } }

export const computedMsg = computed(() => props.msg)
`), "props"),
	}

	result, err := newTestCompiler().Compile(desc, m.CompileOptions{})
	require.NoError(t, err)

	assert.Equal(t, m.BindingMetadata{"computedMsg": m.BindingSetup, "msg": m.BindingProps}, result.Bindings)
	assert.Equal(t, `import { computed } from 'vue'

function setup(props) {
  const computedMsg = computed(() => props.msg)

  return { computedMsg }
}

const __default__ = { props: { msg: String } }
__default__.setup = setup
export default __default__
`, result.Code)
}

func TestCompile_ScopeViolation(t *testing.T) {
	desc := m.Descriptor{
		Name: "Leaky",
		Setup: block(m.LangJS, `const secret = 42

export default {
  data() {
    return { value: secret }
  }
}
`),
	}

	_, err := newTestCompiler().Compile(desc, m.CompileOptions{})
	compileErr := requireKind(t, err, m.ErrScopeViolation)

	assert.Equal(t, "secret", compileErr.Name)
	assert.Equal(t, m.BlockSetup, compileErr.Block)
	assert.Equal(t, 5, compileErr.Line)
}

func TestCompile_ScopeAllowsModuleNamesAndLocals(t *testing.T) {
	desc := m.Descriptor{
		Name: "Scoped",
		Script: block(m.LangJS, `const shared = 1
`),
		Setup: block(m.LangJS, `const count = 1

export default {
  data() {
    const count = shared
    return { count }
  }
}

export { count as total }
`),
	}

	result, err := newTestCompiler().Compile(desc, m.CompileOptions{})
	require.NoError(t, err)

	assert.Equal(t, m.BindingMetadata{"count": m.BindingData, "total": m.BindingSetupConst}, result.Bindings)
	assert.Contains(t, result.Code, "return { total: count }")
}

func TestCompile_TypedPropsInference(t *testing.T) {
	desc := m.Descriptor{
		Name:  "Greeting",
		Setup: withArgs(block(m.LangTS, "export const greeting = 'hi'\n"), "props: { msg: string }"),
	}

	dev, err := newTestCompiler().Compile(desc, m.CompileOptions{})
	require.NoError(t, err)

	assert.Equal(t, m.BindingMetadata{"greeting": m.BindingSetupConst, "msg": m.BindingProps}, dev.Bindings)
	assert.Equal(t, m.LangTS, dev.Language)
	assert.Equal(t, `function setup(props: { msg: string }) {
  const greeting = 'hi'

  return { greeting }
}

export default {
  props: { msg: String } as unknown as undefined,
  setup
}
`, dev.Code)

	prod, err := newTestCompiler().Compile(desc, m.CompileOptions{Production: true})
	require.NoError(t, err)

	assert.Contains(t, prod.Code, "props: ['msg'] as unknown as undefined,")
	assert.Equal(t, dev.Bindings, prod.Bindings)
}

func TestCompile_TypedPropsFromInterface(t *testing.T) {
	desc := m.Descriptor{
		Name: "Card",
		Setup: withArgs(block(m.LangTS, `interface Base { id: number | null }
interface Props extends Base {
  title: string
  tags?: string[]
  onClose(): void
  kind: 'a' | 'b'
  extra: string | number
}

export const size = 3
`), "props: Props"),
	}

	result, err := newTestCompiler().Compile(desc, m.CompileOptions{})
	require.NoError(t, err)

	assert.Contains(t, result.Code,
		"props: { id: { type: Number, required: false }, title: String, tags: { type: Array, required: false }, onClose: Function, kind: String, extra: null } as unknown as undefined")
	assert.Equal(t, m.BindingProps, result.Bindings["title"])
	assert.Equal(t, m.BindingSetupConst, result.Bindings["size"])

	interfaceAt := strings.Index(result.Code, "interface Props extends Base")
	setupAt := strings.Index(result.Code, "function setup(")
	require.GreaterOrEqual(t, interfaceAt, 0)
	assert.Less(t, interfaceAt, setupAt)
}

func TestCompile_AmbientPropsDeclaration(t *testing.T) {
	desc := m.Descriptor{
		Name: "Banner",
		Setup: withArgs(block(m.LangTS, `declare const props: { title?: string }

export const visible = true
`), "props"),
	}

	result, err := newTestCompiler().Compile(desc, m.CompileOptions{Production: true})
	require.NoError(t, err)

	assert.Contains(t, result.Code, "function setup(props: { title?: string }) {\n  const visible = true\n")
	assert.NotContains(t, result.Code, "declare const")
	assert.Contains(t, result.Code, "props: ['title'] as unknown as undefined")
	assert.Equal(t, m.BindingProps, result.Bindings["title"])
}

func TestCompile_ExplicitPropsSkipInference(t *testing.T) {
	desc := m.Descriptor{
		Name: "Explicit",
		Setup: withArgs(block(m.LangTS, `export default { props: ['label'] }
export const n = 1
`), "props: { other: string }"),
	}

	result, err := newTestCompiler().Compile(desc, m.CompileOptions{})
	require.NoError(t, err)

	assert.Equal(t, m.BindingMetadata{"label": m.BindingProps, "n": m.BindingSetupConst}, result.Bindings)
	assert.NotContains(t, result.Code, "__default__.props")
}

func TestCompile_ExternalPropsType(t *testing.T) {
	desc := m.Descriptor{
		Name: "External",
		Setup: withArgs(block(m.LangTS, `import type { Props } from './types'

export const n = 1
`), "props: Props"),
	}

	_, err := newTestCompiler().Compile(desc, m.CompileOptions{})
	compileErr := requireKind(t, err, m.ErrUnresolvedExternalType)
	assert.Equal(t, m.BlockSetupArgs, compileErr.Block)
	assert.Equal(t, 7, compileErr.Offset)
}

func TestCompile_ExternalTypeInsideProperty(t *testing.T) {
	desc := m.Descriptor{
		Name: "Nested",
		Setup: withArgs(block(m.LangTS, `import type { User } from './user'
export const n = 1
`), "props: { user: User }"),
	}

	_, err := newTestCompiler().Compile(desc, m.CompileOptions{})
	requireKind(t, err, m.ErrUnresolvedExternalType)
}

func TestCompile_DuplicateAcrossBlocks(t *testing.T) {
	desc := m.Descriptor{
		Name:   "Dup",
		Script: block(m.LangJS, "export const x = 1\n"),
		Setup:  block(m.LangJS, "export const x = 2\n"),
	}

	_, err := newTestCompiler().Compile(desc, m.CompileOptions{})
	compileErr := requireKind(t, err, m.ErrDuplicateBinding)
	assert.Equal(t, "x", compileErr.Name)
}

func TestCompile_PropAndSetupExportCollide(t *testing.T) {
	desc := m.Descriptor{
		Name: "Collide",
		Setup: block(m.LangJS, `export default { props: ['msg'] }
export const msg = 'x'
`),
	}

	_, err := newTestCompiler().Compile(desc, m.CompileOptions{})
	compileErr := requireKind(t, err, m.ErrDuplicateBinding)
	assert.Equal(t, "msg", compileErr.Name)
}

func TestCompile_DisallowedSrcOnSetup(t *testing.T) {
	setup := block(m.LangJS, "export const a = 1\n")
	setup.Attrs = map[string]string{"src": "./setup.js"}

	_, err := newTestCompiler().Compile(m.Descriptor{Name: "Src", Setup: setup}, m.CompileOptions{})
	requireKind(t, err, m.ErrDisallowedAttribute)
}

func TestCompile_ParseErrors(t *testing.T) {
	tests := []struct {
		name  string
		desc  m.Descriptor
		block m.BlockRole
	}{
		{
			name:  "setup block",
			desc:  m.Descriptor{Setup: block(m.LangJS, "const = ;\n")},
			block: m.BlockSetup,
		},
		{
			name:  "plain block",
			desc:  m.Descriptor{Script: block(m.LangJS, "function (\n"), Setup: block(m.LangJS, "")},
			block: m.BlockPlain,
		},
		{
			name:  "setup args",
			desc:  m.Descriptor{Setup: withArgs(block(m.LangJS, ""), "props,,")},
			block: m.BlockSetupArgs,
		},
		{
			name:  "typescript in javascript block",
			desc:  m.Descriptor{Setup: block(m.LangJS, "const a: number = 1\n")},
			block: m.BlockSetup,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newTestCompiler().Compile(tt.desc, m.CompileOptions{})
			compileErr := requireKind(t, err, m.ErrParse)
			assert.Equal(t, tt.block, compileErr.Block)
		})
	}
}

func TestCompile_DefaultExportShapes(t *testing.T) {
	tests := []struct {
		name     string
		desc     m.Descriptor
		sentinel error
	}{
		{
			name:     "not an object",
			desc:     m.Descriptor{Setup: block(m.LangJS, "export default 42\n")},
			sentinel: m.ErrUnsupportedDefaultExport,
		},
		{
			name:     "identifier",
			desc:     m.Descriptor{Script: block(m.LangJS, "const o = {}\nexport default o\n"), Setup: block(m.LangJS, "")},
			sentinel: m.ErrUnsupportedDefaultExport,
		},
		{
			name: "default in both blocks",
			desc: m.Descriptor{
				Script: block(m.LangJS, "export default {}\n"),
				Setup:  block(m.LangJS, "export default {}\n"),
			},
			sentinel: m.ErrDuplicateBinding,
		},
		{
			name:     "export star",
			desc:     m.Descriptor{Setup: block(m.LangJS, "export * from './all'\n")},
			sentinel: m.ErrUnsupportedSyntax,
		},
		{
			name:     "default specifier in setup",
			desc:     m.Descriptor{Setup: block(m.LangJS, "const a = 1\nexport { a as default }\n")},
			sentinel: m.ErrUnsupportedDefaultExport,
		},
		{
			name:     "default specifier in script",
			desc:     m.Descriptor{Script: block(m.LangJS, "const a = {}\nexport { a as default }\n"), Setup: block(m.LangJS, "")},
			sentinel: m.ErrUnsupportedDefaultExport,
		},
		{
			name:     "default re-export in script",
			desc:     m.Descriptor{Script: block(m.LangJS, "export { default } from './base'\n"), Setup: block(m.LangJS, "")},
			sentinel: m.ErrUnsupportedDefaultExport,
		},
		{
			name:     "default re-export in setup",
			desc:     m.Descriptor{Setup: block(m.LangJS, "export { base as default } from './base'\n")},
			sentinel: m.ErrUnsupportedDefaultExport,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newTestCompiler().Compile(tt.desc, m.CompileOptions{})
			requireKind(t, err, tt.sentinel)
		})
	}
}

func TestCompile_MissingBlock(t *testing.T) {
	_, err := newTestCompiler().Compile(m.Descriptor{Name: "Empty"}, m.CompileOptions{})
	requireKind(t, err, m.ErrMissingBlock)
}

func TestCompile_PlainOnly(t *testing.T) {
	content := `export default {
  props: ['a'],
  data: () => ({ b: 1 }),
  computed: { c() { return 2 } },
  methods: { d() {} },
  inject: ['e']
}
`

	result, err := newTestCompiler().Compile(m.Descriptor{Name: "Plain", Script: block(m.LangJS, content)}, m.CompileOptions{})
	require.NoError(t, err)

	assert.Equal(t, content, result.Code)
	assert.Equal(t, m.BindingMetadata{
		"a": m.BindingProps,
		"b": m.BindingData,
		"c": m.BindingOptions,
		"d": m.BindingOptions,
		"e": m.BindingOptions,
	}, result.Bindings)
}

func TestCompile_PlainAndSetupOrder(t *testing.T) {
	desc := m.Descriptor{
		Name: "Ordered",
		Script: block(m.LangJS, `import { track } from './track'
track('first')
export const VERSION = '1.0'
export function helper() {}
track('second')
export default { name: 'Ordered' }
`),
		Setup: block(m.LangJS, `import { ref } from 'vue'
import { track as t } from './track'
t('setup')
export let n = ref(1)
`),
	}

	result, err := newTestCompiler().Compile(desc, m.CompileOptions{})
	require.NoError(t, err)

	code := result.Code
	first := strings.Index(code, "track('first')")
	second := strings.Index(code, "track('second')")
	setupAt := strings.Index(code, "function setup(")

	require.GreaterOrEqual(t, first, 0)
	assert.Less(t, first, second)
	assert.Less(t, second, setupAt)

	assert.True(t, strings.HasPrefix(code, "import { track, track as t } from './track'\nimport { ref } from 'vue'\n"), code)
	assert.Contains(t, code, "  t('setup')\n  let n = ref(1)\n")
	assert.Contains(t, code, "return { helper, n }")
	assert.Contains(t, code, "const __default__ = { name: 'Ordered' }")
	assert.Equal(t, m.BindingMetadata{
		"VERSION": m.BindingLiteral,
		"helper":  m.BindingSetup,
		"n":       m.BindingSetup,
	}, result.Bindings)
}

func TestCompile_ReexportedComponent(t *testing.T) {
	desc := m.Descriptor{
		Name: "Parent",
		Setup: block(m.LangJS, `export { default as Child } from './Child'
export const label = 'parent'
`),
	}

	result, err := newTestCompiler().Compile(desc, m.CompileOptions{})
	require.NoError(t, err)

	assert.Equal(t, m.BindingMetadata{"Child": m.BindingSetup, "label": m.BindingSetupConst}, result.Bindings)
	assert.True(t, strings.HasPrefix(result.Code, "import Child from './Child'\n"), result.Code)
	assert.NotContains(t, result.Code, "export {")
}

func TestCompile_ReassignedLiteralIsSetup(t *testing.T) {
	desc := m.Descriptor{
		Name: "Counter",
		Setup: block(m.LangJS, `export let clicks = 0
export const label = 'x'
export function bump() { clicks++ }
`),
	}

	result, err := newTestCompiler().Compile(desc, m.CompileOptions{})
	require.NoError(t, err)

	assert.Equal(t, m.BindingMetadata{
		"clicks": m.BindingSetup,
		"label":  m.BindingSetupConst,
		"bump":   m.BindingSetup,
	}, result.Bindings)
}

func TestCompile_GeneratedNamesAvoidCollisions(t *testing.T) {
	desc := m.Descriptor{
		Name: "Named",
		Script: block(m.LangJS, `function setup() {}
const __default__ = 1
export default { a: 1 }
`),
		Setup: block(m.LangJS, "export const b = 2\n"),
	}

	result, err := newTestCompiler().Compile(desc, m.CompileOptions{})
	require.NoError(t, err)

	assert.Contains(t, result.Code, "function setup_() {")
	assert.Contains(t, result.Code, "const __default___ = { a: 1 }\n__default___.setup = setup_\nexport default __default___\n")
}

func TestCompile_TemplateLiteralNotIndented(t *testing.T) {
	desc := m.Descriptor{
		Name:  "Tpl",
		Setup: block(m.LangJS, "export const text = `line one\nline two`\n"),
	}

	result, err := newTestCompiler().Compile(desc, m.CompileOptions{})
	require.NoError(t, err)

	assert.Contains(t, result.Code, "  const text = `line one\nline two`\n")
}

func TestCompile_Deterministic(t *testing.T) {
	desc := m.Descriptor{
		Name: "Stable",
		Script: block(m.LangJS, `import a from './a'
import { b } from './b'
`),
		Setup: withArgs(block(m.LangTS, `import { c } from './c'
import { b as bb } from './b'
export const x = a + bb + c
export const y = 'y'
`), "props: { p: string, q?: number }"),
	}

	compiler := newTestCompiler()

	first, err := compiler.Compile(desc, m.CompileOptions{})
	require.NoError(t, err)

	var wg sync.WaitGroup

	results := make([]m.CompiledScriptResult, 8)
	for i := range results {
		wg.Add(1)

		go func(i int) {
			defer wg.Done()

			results[i], _ = compiler.Compile(desc, m.CompileOptions{})
		}(i)
	}

	wg.Wait()

	for _, result := range results {
		assert.Equal(t, first.Code, result.Code)
		assert.Equal(t, first.Bindings, result.Bindings)
	}
}

func TestCompile_DuplicateImportLocal(t *testing.T) {
	desc := m.Descriptor{
		Name:   "Imports",
		Script: block(m.LangJS, "import { a } from './one'\n"),
		Setup:  block(m.LangJS, "import { a } from './two'\nexport const b = a\n"),
	}

	_, err := newTestCompiler().Compile(desc, m.CompileOptions{})
	requireKind(t, err, m.ErrDuplicateBinding)
}

func TestCompile_TopLevelAwaitMakesSetupAsync(t *testing.T) {
	tests := []struct {
		name  string
		setup string
		async bool
	}{
		{
			name:  "await expression",
			setup: "const res = await fetch('/x')\nexport const data = res.json()\n",
			async: true,
		},
		{
			name:  "for await",
			setup: "const items = []\nfor await (const chunk of stream()) items.push(chunk)\nexport { items }\n",
			async: true,
		},
		{
			name:  "await inside nested function",
			setup: "export const load = async () => await fetch('/x')\n",
			async: false,
		},
		{
			name:  "await inside method",
			setup: "export const api = { async get() { return await fetch('/x') } }\n",
			async: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := newTestCompiler().Compile(m.Descriptor{Name: "Loader", Setup: block(m.LangJS, tt.setup)}, m.CompileOptions{})
			require.NoError(t, err)

			if tt.async {
				assert.Contains(t, result.Code, "async function setup() {\n")
			} else {
				assert.NotContains(t, result.Code, "async function setup(")
				assert.Contains(t, result.Code, "function setup() {\n")
			}
		})
	}
}

func TestCompile_TopLevelAwaitBody(t *testing.T) {
	desc := m.Descriptor{
		Name:  "Loader",
		Setup: block(m.LangJS, "const res = await fetch('/x')\nexport const data = res.json()\n"),
	}

	result, err := newTestCompiler().Compile(desc, m.CompileOptions{})
	require.NoError(t, err)

	assert.Contains(t, result.Code, "async function setup() {\n  const res = await fetch('/x')\n  const data = res.json()\n")
	assert.Contains(t, result.Code, "export default { setup }\n")
}

func TestCompile_ScopeViolationInSiblingMethod(t *testing.T) {
	desc := m.Descriptor{
		Name: "Siblings",
		Setup: block(m.LangJS, `const count = 1

export default {
  methods: {
    a() { const count = 2; return count },
    b() { return count }
  }
}
`),
	}

	_, err := newTestCompiler().Compile(desc, m.CompileOptions{})
	compileErr := requireKind(t, err, m.ErrScopeViolation)

	assert.Equal(t, "count", compileErr.Name)
	assert.Equal(t, 6, compileErr.Line)
}

func TestCompile_ScopeResolvesPerFunction(t *testing.T) {
	tests := []struct {
		name    string
		options string
		leaks   bool
	}{
		{
			name:    "parameter shadows",
			options: "export default { methods: { a(count) { return count } } }\n",
		},
		{
			name:    "nested function sees outer local",
			options: "export default { methods: { a() { const count = 2; return () => count } } }\n",
		},
		{
			name:    "catch parameter shadows",
			options: "export default { methods: { a() { try {} catch (count) { return count } } } }\n",
		},
		{
			name:    "nested function local does not leak out",
			options: "export default { methods: { a() { const f = () => { const count = 2 }; return count } } }\n",
			leaks:   true,
		},
		{
			name:    "catch parameter does not leak out",
			options: "export default { methods: { a() { try {} catch (count) {} return count } } }\n",
			leaks:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			desc := m.Descriptor{Name: "Scoped", Setup: block(m.LangJS, "const count = 1\n"+tt.options)}

			_, err := newTestCompiler().Compile(desc, m.CompileOptions{})
			if tt.leaks {
				compileErr := requireKind(t, err, m.ErrScopeViolation)
				assert.Equal(t, "count", compileErr.Name)

				return
			}

			require.NoError(t, err)
		})
	}
}

func TestCompile_SetupOptionConflicts(t *testing.T) {
	tests := []struct {
		name string
		desc m.Descriptor
		line int
	}{
		{
			name: "setup method in setup block options",
			desc: m.Descriptor{Setup: block(m.LangJS, "export default { setup() {} }\nexport const n = 1\n")},
			line: 1,
		},
		{
			name: "setup property in script options",
			desc: m.Descriptor{
				Script: block(m.LangJS, "export default {\n  name: 'x',\n  setup: () => ({})\n}\n"),
				Setup:  block(m.LangJS, "export const n = 1\n"),
			},
			line: 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newTestCompiler().Compile(tt.desc, m.CompileOptions{})
			compileErr := requireKind(t, err, m.ErrDuplicateBinding)

			assert.Equal(t, "setup", compileErr.Name)
			assert.Equal(t, tt.line, compileErr.Line)
		})
	}
}

func TestCompile_PlainOptionsKeepSetup(t *testing.T) {
	content := "export default { setup() { return {} } }\n"

	result, err := newTestCompiler().Compile(m.Descriptor{Name: "Plain", Script: block(m.LangJS, content)}, m.CompileOptions{})
	require.NoError(t, err)

	assert.Equal(t, content, result.Code)
}

func TestCompile_TypedPropsUtilityTypes(t *testing.T) {
	tests := []struct {
		name  string
		args  string
		props string
	}{
		{
			name:  "Partial",
			args:  "props: Partial<{ a: string; b: number }>",
			props: "{ a: { type: String, required: false }, b: { type: Number, required: false } }",
		},
		{
			name:  "Required",
			args:  "props: Required<{ a?: string }>",
			props: "{ a: String }",
		},
		{
			name:  "Readonly",
			args:  "props: Readonly<{ a: boolean; b?: string }>",
			props: "{ a: Boolean, b: { type: String, required: false } }",
		},
		{
			name:  "intersection",
			args:  "props: { a: string } & { b?: number }",
			props: "{ a: String, b: { type: Number, required: false } }",
		},
		{
			name:  "intersection overrides earlier member",
			args:  "props: { a: string } & { a?: number }",
			props: "{ a: { type: Number, required: false } }",
		},
		{
			name:  "Partial of named interface",
			args:  "props: Partial<Props>",
			props: "{ id: { type: Number, required: false } }",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			desc := m.Descriptor{
				Name:  "Typed",
				Setup: withArgs(block(m.LangTS, "interface Props { id: number }\n\nexport const size = 3\n"), tt.args),
			}

			result, err := newTestCompiler().Compile(desc, m.CompileOptions{})
			require.NoError(t, err)

			assert.Contains(t, result.Code, "props: "+tt.props+" as unknown as undefined")
		})
	}
}
