package domain

import (
	"regexp"
	"strconv"
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"

	m "sfcc.dev/pkg/sfcc/internal/model"
)

var identifierPattern = regexp.MustCompile(`^[A-Za-z_$][A-Za-z0-9_$]*$`)

func namedChildren(node *sitter.Node) []*sitter.Node {
	if node == nil {
		return nil
	}

	children := make([]*sitter.Node, 0, node.NamedChildCount())

	for i := uint(0); i < node.NamedChildCount(); i++ {
		if child := node.NamedChild(i); child != nil {
			children = append(children, child)
		}
	}

	return children
}

func allChildren(node *sitter.Node) []*sitter.Node {
	if node == nil {
		return nil
	}

	children := make([]*sitter.Node, 0, node.ChildCount())

	for i := uint(0); i < node.ChildCount(); i++ {
		if child := node.Child(i); child != nil {
			children = append(children, child)
		}
	}

	return children
}

// walk visits node and its descendants in document order. Returning false
// from fn skips the children of the visited node.
func walk(node *sitter.Node, fn func(*sitter.Node) bool) {
	if node == nil || !fn(node) {
		return
	}

	for i := uint(0); i < node.ChildCount(); i++ {
		walk(node.Child(i), fn)
	}
}

func isFunctionNode(node *sitter.Node) bool {
	switch node.Kind() {
	case "arrow_function", "function", "function_expression", "generator_function",
		"function_declaration", "generator_function_declaration", "method_definition":
		return true
	}

	return false
}

func unwrapParens(node *sitter.Node) *sitter.Node {
	for node != nil && (node.Kind() == "parenthesized_expression" || node.Kind() == "parenthesized_type") {
		inner := namedChildren(node)
		if len(inner) == 0 {
			return node
		}

		node = inner[0]
	}

	return node
}

// isPrimitiveLiteral reports whether an initializer is a compile-time
// constant that never needs a reactive read.
func isPrimitiveLiteral(node *sitter.Node) bool {
	node = unwrapParens(node)
	if node == nil {
		return false
	}

	switch node.Kind() {
	case "string", "number", "true", "false", "null", "undefined":
		return true
	case "template_string":
		return m.ChildOfKind(node, "template_substitution") == nil
	case "unary_expression":
		op := node.ChildByFieldName("operator")
		arg := unwrapParens(node.ChildByFieldName("argument"))

		return op != nil && arg != nil && arg.Kind() == "number" &&
			(op.Kind() == "-" || op.Kind() == "+")
	}

	return false
}

// patternNames collects the identifiers bound by a binding pattern.
func patternNames(p *m.ParsedModule, node *sitter.Node) []string {
	if node == nil {
		return nil
	}

	switch node.Kind() {
	case "identifier", "shorthand_property_identifier_pattern":
		return []string{p.Text(node)}
	case "pair_pattern":
		return patternNames(p, node.ChildByFieldName("value"))
	case "assignment_pattern", "object_assignment_pattern":
		return patternNames(p, node.ChildByFieldName("left"))
	case "required_parameter", "optional_parameter":
		return patternNames(p, node.ChildByFieldName("pattern"))
	case "object_pattern", "array_pattern", "rest_pattern", "formal_parameters":
		var names []string
		for _, child := range namedChildren(node) {
			names = append(names, patternNames(p, child)...)
		}

		return names
	}

	return nil
}

// propertyKey returns the static name of an object key or member name.
func propertyKey(p *m.ParsedModule, node *sitter.Node) (string, bool) {
	if node == nil {
		return "", false
	}

	switch node.Kind() {
	case "property_identifier", "identifier", "shorthand_property_identifier",
		"private_property_identifier", "type_identifier":
		return p.Text(node), true
	case "string":
		return unquote(p.Text(node)), true
	case "number":
		return p.Text(node), true
	case "default":
		return "default", true
	}

	return "", false
}

func unquote(text string) string {
	if len(text) >= 2 {
		first, last := text[0], text[len(text)-1]
		if (first == '"' || first == '\'' || first == '`') && first == last {
			if first == '"' {
				if s, err := strconv.Unquote(text); err == nil {
					return s
				}
			}

			return text[1 : len(text)-1]
		}
	}

	return text
}

// jsKey renders an object key, quoting it when it is not an identifier.
func jsKey(name string) string {
	if identifierPattern.MatchString(name) {
		return name
	}

	return jsString(name)
}

func jsString(value string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `'`, `\'`, "\n", `\n`, "\r", `\r`)
	return "'" + replacer.Replace(value) + "'"
}
