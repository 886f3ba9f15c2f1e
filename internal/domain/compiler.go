package domain

import (
	"sfcc.dev/pkg/sfcc/internal/adapter"
	m "sfcc.dev/pkg/sfcc/internal/model"
)

// Compiler turns one component descriptor into a module and its binding
// metadata. Implementations hold no mutable state and are safe for
// concurrent use.
type Compiler interface {
	Compile(desc m.Descriptor, opts m.CompileOptions) (m.CompiledScriptResult, error)
}

type compiler struct {
	adapter.ScriptParser
}

// NewCompiler creates a Compiler that parses blocks with parser.
func NewCompiler(parser adapter.ScriptParser) Compiler {
	return &compiler{ScriptParser: parser}
}

// Compile runs the pipeline: normalize, harvest, extract options, infer
// props, classify, generate. Every failure is a *model.CompileError.
func (c *compiler) Compile(desc m.Descriptor, opts m.CompileOptions) (m.CompiledScriptResult, error) {
	blocks, err := c.normalize(desc)
	if err != nil {
		return m.CompiledScriptResult{}, err
	}
	defer blocks.close()

	h, err := harvestBlocks(blocks)
	if err != nil {
		return m.CompiledScriptResult{}, err
	}

	base, err := extractBaseOptions(h)
	if err != nil {
		return m.CompiledScriptResult{}, err
	}

	if blocks.setup == nil {
		return c.compilePlain(desc, blocks, base)
	}

	if err := checkSetupOption(blocks, base); err != nil {
		return m.CompiledScriptResult{}, err
	}

	inferred, err := inferProps(blocks, h, base)
	if err != nil {
		return m.CompiledScriptResult{}, err
	}

	bindings, err := classify(blocks, h, base, inferred)
	if err != nil {
		return m.CompiledScriptResult{}, err
	}

	lang := outputLanguage(desc)

	g := &generator{
		blocks:     blocks,
		h:          h,
		base:       base,
		inferred:   inferred,
		bindings:   bindings,
		production: opts.Production,
		typed:      lang.Typed(),
	}

	return m.CompiledScriptResult{
		Code:     g.generate(),
		Bindings: emitMetadata(bindings),
		Language: lang,
	}, nil
}

// compilePlain handles a component without a setup block: the plain content
// is the module and only the options object contributes bindings.
func (c *compiler) compilePlain(desc m.Descriptor, blocks *normalizedBlocks, base *m.BaseOptionsObject) (m.CompiledScriptResult, error) {
	bindings, err := classify(blocks, &harvest{}, base, nil)
	if err != nil {
		return m.CompiledScriptResult{}, err
	}

	return m.CompiledScriptResult{
		Code:     desc.Script.Content,
		Bindings: emitMetadata(bindings),
		Language: outputLanguage(desc),
	}, nil
}

// outputLanguage is typed when either block is typed and keeps JSX when
// either block uses it.
func outputLanguage(desc m.Descriptor) m.Language {
	typed, jsx := false, false

	for _, block := range []*m.SourceBlock{desc.Script, desc.Setup} {
		if block == nil {
			continue
		}

		typed = typed || block.Language.Typed()
		jsx = jsx || block.Language == m.LangJSX || block.Language == m.LangTSX
	}

	switch {
	case typed && jsx:
		return m.LangTSX
	case typed:
		return m.LangTS
	case jsx:
		return m.LangJSX
	}

	return m.LangJS
}
