package model

import (
	sitter "github.com/tree-sitter/go-tree-sitter"
)

// StatementKind is the coarse shape of a top-level statement.
type StatementKind int

const (
	// StmtOther is any statement not listed below.
	StmtOther StatementKind = iota
	// StmtImport is an import declaration.
	StmtImport
	// StmtExportNamed is an export of declarations or specifiers.
	StmtExportNamed
	// StmtExportDefault is `export default ...`.
	StmtExportDefault
	// StmtDeclaration is an unexported declaration.
	StmtDeclaration
	// StmtComment is a top-level comment.
	StmtComment
)

// TopLevelStatement is one child of the program node.
type TopLevelStatement struct {
	Kind StatementKind
	Node *sitter.Node
}

// ParsedModule is a parsed block. The syntax tree is owned by the module and
// released by Close.
type ParsedModule struct {
	Role       BlockRole
	Language   Language
	Source     []byte
	Tree       *sitter.Tree
	Root       *sitter.Node
	Statements []TopLevelStatement
}

// Text returns the source text covered by node.
func (p *ParsedModule) Text(node *sitter.Node) string {
	if node == nil {
		return ""
	}

	return string(p.Source[node.StartByte():node.EndByte()])
}

// Close releases the syntax tree.
func (p *ParsedModule) Close() {
	if p == nil || p.Tree == nil {
		return
	}

	p.Tree.Close()
	p.Tree = nil
}

// ChildOfKind returns the first direct child of node with the given kind.
func ChildOfKind(node *sitter.Node, kind string) *sitter.Node {
	if node == nil {
		return nil
	}

	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		if child != nil && child.Kind() == kind {
			return child
		}
	}

	return nil
}
