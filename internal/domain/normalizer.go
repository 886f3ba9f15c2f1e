package domain

import (
	"errors"

	sitter "github.com/tree-sitter/go-tree-sitter"

	m "sfcc.dev/pkg/sfcc/internal/model"
)

// setupArgsPrefix wraps the setup arguments so they parse as a parameter list.
const (
	setupArgsPrefix = "function __sfcc_setup_args__("
	setupArgsSuffix = ") {}"
)

// setupArgs is the parsed parameter list of the setup function.
type setupArgs struct {
	text   string
	module *m.ParsedModule
	// names are all identifiers the parameter list binds.
	names []string
	// propsName is the first parameter when it is a plain identifier.
	propsName string
	// propsNameEnd is the offset in text right after propsName.
	propsNameEnd int
	// propsType is the inline annotation of the first parameter.
	propsType *sitter.Node
}

// normalizedBlocks holds the parsed blocks of one descriptor.
type normalizedBlocks struct {
	plain *m.ParsedModule
	setup *m.ParsedModule
	args  *setupArgs
}

func (n *normalizedBlocks) close() {
	n.plain.Close()
	n.setup.Close()

	if n.args != nil {
		n.args.module.Close()
	}
}

// normalize validates block shape and parses every present block.
func (c *compiler) normalize(desc m.Descriptor) (*normalizedBlocks, error) {
	if desc.Script == nil && desc.Setup == nil {
		return nil, m.NewCompileError(m.KindMissingBlock, "", "", -1, "component %q has no script block", desc.Name)
	}

	if desc.Setup != nil {
		if src, ok := desc.Setup.Src(); ok {
			return nil, m.NewCompileError(m.KindDisallowedAttribute, m.BlockSetup, desc.Setup.Content, 0,
				"setup block cannot use src=%q: its code is compiled into the component and cannot be relocated", src)
		}
	}

	blocks := &normalizedBlocks{}

	if desc.Script != nil {
		module, err := c.Parse(m.BlockPlain, desc.Script.Language, []byte(desc.Script.Content))
		if err != nil {
			return nil, err
		}

		blocks.plain = module
	}

	if desc.Setup == nil {
		return blocks, nil
	}

	module, err := c.Parse(m.BlockSetup, desc.Setup.Language, []byte(desc.Setup.Content))
	if err != nil {
		blocks.close()
		return nil, err
	}

	blocks.setup = module

	if desc.Setup.SetupArgs != nil {
		args, err := c.parseSetupArgs(*desc.Setup.SetupArgs, desc.Setup.Language)
		if err != nil {
			blocks.close()
			return nil, err
		}

		blocks.args = args
	}

	return blocks, nil
}

func (c *compiler) parseSetupArgs(text string, lang m.Language) (*setupArgs, error) {
	wrapped := setupArgsPrefix + text + setupArgsSuffix

	module, err := c.Parse(m.BlockSetupArgs, lang, []byte(wrapped))
	if err != nil {
		var compileErr *m.CompileError
		if errors.As(err, &compileErr) {
			offset := min(max(compileErr.Offset-len(setupArgsPrefix), 0), len(text))
			return nil, m.NewCompileError(m.KindParse, m.BlockSetupArgs, text, offset, "%s", compileErr.Message)
		}

		return nil, err
	}

	fn := module.Root.NamedChild(0)
	if fn == nil || len(namedChildren(module.Root)) != 1 || fn.Kind() != "function_declaration" {
		module.Close()
		return nil, m.NewCompileError(m.KindParse, m.BlockSetupArgs, text, 0, "setup arguments must be a parameter list")
	}

	params := fn.ChildByFieldName("parameters")
	if params == nil || int(params.EndByte()) != len(wrapped)-len(setupArgsSuffix)+1 {
		module.Close()
		return nil, m.NewCompileError(m.KindParse, m.BlockSetupArgs, text, 0, "setup arguments must be a parameter list")
	}

	args := &setupArgs{
		text:   text,
		module: module,
		names:  patternNames(module, params),
	}

	first := params.NamedChild(0)
	for first != nil && first.Kind() == "comment" {
		first = first.NextNamedSibling()
	}

	if first == nil {
		return args, nil
	}

	name := first
	if first.Kind() == "required_parameter" || first.Kind() == "optional_parameter" {
		name = first.ChildByFieldName("pattern")

		if annotation := first.ChildByFieldName("type"); annotation != nil {
			args.propsType = typeOfAnnotation(annotation)
		}
	}

	if name != nil && name.Kind() == "identifier" {
		args.propsName = module.Text(name)
		args.propsNameEnd = int(name.EndByte()) - len(setupArgsPrefix)
	}

	return args, nil
}

// typeOfAnnotation unwraps a type_annotation node to the type it holds.
func typeOfAnnotation(annotation *sitter.Node) *sitter.Node {
	if annotation == nil {
		return nil
	}

	if annotation.Kind() != "type_annotation" {
		return annotation
	}

	children := namedChildren(annotation)
	if len(children) == 0 {
		return nil
	}

	return children[0]
}
