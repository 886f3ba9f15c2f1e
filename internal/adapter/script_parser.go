// Package adapter contains parsing and infrastructure adapters for the sfcc CLI.
package adapter

import (
	"fmt"
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"
	tsjavascript "github.com/tree-sitter/tree-sitter-javascript/bindings/go"
	tstypescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"

	m "sfcc.dev/pkg/sfcc/internal/model"
)

// ScriptParser encapsulates grammar selection and syntax-tree construction so
// the domain layer can focus on compile rules while delegating parsing to an
// infrastructure component.
type ScriptParser interface {
	// Parse builds a module for src using the grammar of lang. Syntax errors are
	// returned as *model.CompileError of kind ParseError.
	Parse(role m.BlockRole, lang m.Language, src []byte) (*m.ParsedModule, error)
}

// TreeSitterParser provides a ScriptParser backed by tree-sitter grammars.
// Languages are immutable and shared; a fresh parser is created per call so
// the adapter is safe for concurrent use.
type TreeSitterParser struct {
	javascript *sitter.Language
	typescript *sitter.Language
	tsx        *sitter.Language
}

// NewTreeSitterParser constructs a TreeSitterParser.
func NewTreeSitterParser() *TreeSitterParser {
	return &TreeSitterParser{
		javascript: sitter.NewLanguage(tsjavascript.Language()),
		typescript: sitter.NewLanguage(tstypescript.LanguageTypescript()),
		tsx:        sitter.NewLanguage(tstypescript.LanguageTSX()),
	}
}

func (p *TreeSitterParser) language(lang m.Language) *sitter.Language {
	switch lang {
	case m.LangTS:
		return p.typescript
	case m.LangTSX:
		return p.tsx
	default:
		return p.javascript
	}
}

// Parse builds a syntax tree for src and splits it into top-level statements.
func (p *TreeSitterParser) Parse(role m.BlockRole, lang m.Language, src []byte) (*m.ParsedModule, error) {
	parser := sitter.NewParser()
	defer parser.Close()

	if err := parser.SetLanguage(p.language(lang)); err != nil {
		return nil, fmt.Errorf("set %s grammar: %w", lang, err)
	}

	tree := parser.Parse(src, nil)
	if tree == nil {
		return nil, fmt.Errorf("parse %s block: parser returned no tree", role)
	}

	root := tree.RootNode()
	if root.HasError() {
		defer tree.Close()
		return nil, syntaxError(role, src, root)
	}

	return &m.ParsedModule{
		Role:       role,
		Language:   lang,
		Source:     src,
		Tree:       tree,
		Root:       root,
		Statements: splitStatements(root),
	}, nil
}

func splitStatements(root *sitter.Node) []m.TopLevelStatement {
	statements := make([]m.TopLevelStatement, 0, root.NamedChildCount())

	for i := uint(0); i < root.NamedChildCount(); i++ {
		node := root.NamedChild(i)
		if node == nil {
			continue
		}

		statements = append(statements, m.TopLevelStatement{Kind: statementKind(node), Node: node})
	}

	return statements
}

func statementKind(node *sitter.Node) m.StatementKind {
	switch node.Kind() {
	case "import_statement":
		return m.StmtImport
	case "export_statement":
		if m.ChildOfKind(node, "default") != nil {
			return m.StmtExportDefault
		}

		return m.StmtExportNamed
	case "comment", "hash_bang_line":
		return m.StmtComment
	case "lexical_declaration", "variable_declaration", "function_declaration",
		"generator_function_declaration", "class_declaration", "abstract_class_declaration",
		"interface_declaration", "type_alias_declaration", "enum_declaration", "ambient_declaration":
		return m.StmtDeclaration
	default:
		return m.StmtOther
	}
}

func syntaxError(role m.BlockRole, src []byte, root *sitter.Node) *m.CompileError {
	node := firstErrorNode(root)
	if node == nil {
		return m.NewCompileError(m.KindParse, role, string(src), 0, "invalid syntax")
	}

	offset := int(node.StartByte())
	if node.IsMissing() {
		return m.NewCompileError(m.KindParse, role, string(src), offset, "missing %s", node.Kind())
	}

	text := strings.TrimSpace(string(src[node.StartByte():node.EndByte()]))
	if idx := strings.IndexByte(text, '\n'); idx >= 0 {
		text = text[:idx]
	}

	if text == "" {
		return m.NewCompileError(m.KindParse, role, string(src), offset, "unexpected end of input")
	}

	return m.NewCompileError(m.KindParse, role, string(src), offset, "unexpected %q", text)
}

// firstErrorNode returns the earliest ERROR or MISSING node in document order.
func firstErrorNode(node *sitter.Node) *sitter.Node {
	if node.IsError() || node.IsMissing() {
		return node
	}

	if !node.HasError() {
		return nil
	}

	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		if child == nil {
			continue
		}

		if found := firstErrorNode(child); found != nil {
			return found
		}
	}

	return nil
}
