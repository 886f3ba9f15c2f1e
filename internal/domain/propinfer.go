package domain

import (
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"

	"sfcc.dev/pkg/sfcc/internal/domain/validators"
	m "sfcc.dev/pkg/sfcc/internal/model"
)

// propsDeclaration is the statically typed props parameter.
type propsDeclaration struct {
	module *m.ParsedModule
	node   *sitter.Node
	// ambient is set when the type came from `declare const props: T`.
	ambient bool
}

// inferredProps is the runtime props option derived from a type.
type inferredProps struct {
	decl  propsDeclaration
	props []validators.Prop
}

// Names returns the inferred keys in declaration order.
func (p *inferredProps) Names() []string {
	if p == nil {
		return nil
	}

	names := make([]string, 0, len(p.props))
	for _, prop := range p.props {
		names = append(names, prop.Key)
	}

	return names
}

// Render emits the props option value. typed appends a cast that keeps the
// declared parameter type authoritative for the type checker.
func (p *inferredProps) Render(production, typed bool) string {
	value := validators.Verbose(p.props)
	if production {
		value = validators.Compact(p.props)
	}

	if typed {
		value += " as unknown as undefined"
	}

	return value
}

// findPropsDeclaration returns the props type from the setup arguments, or
// from an ambient declaration in the setup block.
func findPropsDeclaration(blocks *normalizedBlocks, h *harvest) (propsDeclaration, bool) {
	if blocks.args != nil && blocks.args.propsType != nil {
		return propsDeclaration{module: blocks.args.module, node: blocks.args.propsType}, true
	}

	if h.ambientProps != nil && blocks.setup != nil {
		return propsDeclaration{module: blocks.setup, node: h.ambientProps, ambient: true}, true
	}

	return propsDeclaration{}, false
}

// inferProps runs only when a props type exists and the base options object
// has no props option of its own.
func inferProps(blocks *normalizedBlocks, h *harvest, base *m.BaseOptionsObject) (*inferredProps, error) {
	decl, ok := findPropsDeclaration(blocks, h)
	if !ok || (base != nil && base.HasProps) {
		return nil, nil
	}

	in := &propInferencer{h: h, args: blocks.args, resolving: make(map[string]bool)}

	props, err := in.members(decl.module, decl.node)
	if err != nil {
		return nil, err
	}

	return &inferredProps{decl: decl, props: props}, nil
}

type propInferencer struct {
	h         *harvest
	args      *setupArgs
	resolving map[string]bool
}

func (in *propInferencer) fail(kind m.ErrorKind, p *m.ParsedModule, node *sitter.Node, format string, args ...any) error {
	src := string(p.Source)
	offset := int(node.StartByte())

	if p.Role == m.BlockSetupArgs && in.args != nil {
		src = in.args.text
		offset = max(offset-len(setupArgsPrefix), 0)
	}

	return m.NewCompileError(kind, p.Role, src, offset, format, args...)
}

func (in *propInferencer) isExternal(name string) bool {
	o, ok := in.h.module[name]
	return ok && o.form == m.FormImport
}

// members resolves a type to its list of properties.
func (in *propInferencer) members(p *m.ParsedModule, node *sitter.Node) ([]validators.Prop, error) {
	node = unwrapParens(node)
	if node == nil {
		return nil, nil
	}

	switch node.Kind() {
	case "object_type", "interface_body":
		return in.objectMembers(p, node)
	case "type_identifier":
		return in.namedMembers(p, node, p.Text(node))
	case "generic_type":
		nameNode := node.ChildByFieldName("name")
		name := p.Text(nameNode)

		switch name {
		case "Readonly", "Required", "Partial":
			args := namedChildren(node.ChildByFieldName("type_arguments"))
			if len(args) != 1 {
				break
			}

			props, err := in.members(p, args[0])
			if err != nil {
				return nil, err
			}

			for i := range props {
				switch name {
				case "Partial":
					props[i].Optional = true
				case "Required":
					props[i].Optional = false
				}
			}

			return props, nil
		}

		if nameNode.Kind() == "nested_type_identifier" {
			return nil, in.nestedError(p, nameNode)
		}

		return in.namedMembers(p, nameNode, name)
	case "intersection_type":
		var props []validators.Prop

		for _, part := range namedChildren(node) {
			more, err := in.members(p, part)
			if err != nil {
				return nil, err
			}

			props = mergeProps(props, more)
		}

		return props, nil
	case "nested_type_identifier":
		return nil, in.nestedError(p, node)
	}

	return nil, in.fail(m.KindUnsupportedSyntax, p, node, "props type %q is not an object type", firstLine(p.Text(node)))
}

func (in *propInferencer) namedMembers(p *m.ParsedModule, node *sitter.Node, name string) ([]validators.Prop, error) {
	decl, ok := in.h.types[name]
	if !ok {
		if in.isExternal(name) {
			return nil, in.fail(m.KindUnresolvedExternalType, p, node,
				"cannot resolve props type %q: it is imported from another module", name)
		}

		return nil, in.fail(m.KindUnresolvedExternalType, p, node, "cannot resolve props type %q", name)
	}

	if in.resolving[name] {
		return nil, nil
	}

	in.resolving[name] = true
	defer delete(in.resolving, name)

	if decl.node.Kind() == "type_alias_declaration" {
		return in.members(decl.module, decl.node.ChildByFieldName("value"))
	}

	var props []validators.Prop

	for _, parent := range namedChildren(m.ChildOfKind(decl.node, "extends_type_clause")) {
		inherited, err := in.members(decl.module, parent)
		if err != nil {
			return nil, err
		}

		props = mergeProps(props, inherited)
	}

	own, err := in.objectMembers(decl.module, decl.node.ChildByFieldName("body"))
	if err != nil {
		return nil, err
	}

	return mergeProps(props, own), nil
}

func (in *propInferencer) nestedError(p *m.ParsedModule, node *sitter.Node) error {
	text := p.Text(node)
	root, _, _ := strings.Cut(text, ".")

	if in.isExternal(root) {
		return in.fail(m.KindUnresolvedExternalType, p, node,
			"cannot resolve props type %q: it is imported from another module", text)
	}

	return in.fail(m.KindUnresolvedExternalType, p, node, "cannot resolve props type %q", text)
}

func (in *propInferencer) objectMembers(p *m.ParsedModule, body *sitter.Node) ([]validators.Prop, error) {
	var props []validators.Prop

	for _, member := range namedChildren(body) {
		switch member.Kind() {
		case "property_signature":
			key, ok := propertyKey(p, member.ChildByFieldName("name"))
			if !ok {
				continue
			}

			typeNode := typeOfAnnotation(member.ChildByFieldName("type"))
			if err := in.checkExternal(p, typeNode); err != nil {
				return nil, err
			}

			kind, nullable := in.kindOf(p, typeNode)
			props = mergeProps(props, []validators.Prop{{
				Key:      key,
				Kind:     kind,
				Optional: nullable || m.ChildOfKind(member, "?") != nil,
			}})
		case "method_signature":
			key, ok := propertyKey(p, member.ChildByFieldName("name"))
			if !ok {
				continue
			}

			props = mergeProps(props, []validators.Prop{{
				Key:      key,
				Kind:     validators.Function,
				Optional: m.ChildOfKind(member, "?") != nil,
			}})
		}
	}

	return props, nil
}

// checkExternal rejects any reference to an imported type inside node.
func (in *propInferencer) checkExternal(p *m.ParsedModule, node *sitter.Node) error {
	var err error

	walk(node, func(n *sitter.Node) bool {
		if err != nil {
			return false
		}

		switch n.Kind() {
		case "type_identifier":
			name := p.Text(n)
			if _, local := in.h.types[name]; !local && in.isExternal(name) {
				err = in.fail(m.KindUnresolvedExternalType, p, n,
					"cannot resolve type %q: it is imported from another module", name)
			}
		case "nested_type_identifier":
			root, _, _ := strings.Cut(p.Text(n), ".")
			if in.isExternal(root) {
				err = in.fail(m.KindUnresolvedExternalType, p, n,
					"cannot resolve type %q: it is imported from another module", p.Text(n))
			}

			return false
		}

		return true
	})

	return err
}

// kindOf maps a property type to its validator. nullable is set when the
// type admits null or undefined.
func (in *propInferencer) kindOf(p *m.ParsedModule, node *sitter.Node) (validators.Kind, bool) {
	node = unwrapParens(node)
	if node == nil {
		return validators.Any, false
	}

	if isNullish(p, node) {
		return validators.Any, true
	}

	switch node.Kind() {
	case "predefined_type":
		kind, _ := validators.FromPrimitive(p.Text(node))
		return kind, false
	case "literal_type":
		return literalKind(node), false
	case "template_literal_type":
		return validators.String, false
	case "object_type", "intersection_type":
		return validators.Object, false
	case "array_type", "tuple_type":
		return validators.Array, false
	case "readonly_type":
		children := namedChildren(node)
		if len(children) == 0 {
			return validators.Any, false
		}

		return in.kindOf(p, children[0])
	case "function_type", "constructor_type":
		return validators.Function, false
	case "type_identifier":
		return in.namedKind(p, p.Text(node)), false
	case "generic_type":
		return in.namedKind(p, p.Text(node.ChildByFieldName("name"))), false
	case "union_type":
		return in.unionKind(p, node)
	}

	return validators.Any, false
}

func (in *propInferencer) namedKind(p *m.ParsedModule, name string) validators.Kind {
	if decl, ok := in.h.types[name]; ok {
		if decl.node.Kind() == "interface_declaration" {
			return validators.Object
		}

		if in.resolving[name] {
			return validators.Any
		}

		in.resolving[name] = true
		defer delete(in.resolving, name)

		kind, _ := in.kindOf(decl.module, decl.node.ChildByFieldName("value"))

		return kind
	}

	if kind, ok := validators.FromGlobal(name); ok {
		return kind
	}

	return validators.Any
}

// unionKind strips null and undefined; the remaining members must agree on a
// single kind, otherwise the prop accepts any value.
func (in *propInferencer) unionKind(p *m.ParsedModule, node *sitter.Node) (validators.Kind, bool) {
	var (
		kinds    []validators.Kind
		nullable bool
	)

	for _, member := range unionMembers(node) {
		kind, isNullable := in.kindOf(p, member)
		if isNullish(p, unwrapParens(member)) {
			nullable = true
			continue
		}

		nullable = nullable || isNullable

		if !containsKind(kinds, kind) {
			kinds = append(kinds, kind)
		}
	}

	if len(kinds) == 1 {
		return kinds[0], nullable
	}

	return validators.Any, nullable
}

func unionMembers(node *sitter.Node) []*sitter.Node {
	var members []*sitter.Node

	for _, child := range namedChildren(node) {
		if unwrapped := unwrapParens(child); unwrapped.Kind() == "union_type" {
			members = append(members, unionMembers(unwrapped)...)
			continue
		}

		members = append(members, child)
	}

	return members
}

func containsKind(kinds []validators.Kind, kind validators.Kind) bool {
	for _, k := range kinds {
		if k == kind {
			return true
		}
	}

	return false
}

func isNullish(p *m.ParsedModule, node *sitter.Node) bool {
	if node == nil {
		return false
	}

	text := p.Text(node)

	return text == "null" || text == "undefined"
}

func literalKind(node *sitter.Node) validators.Kind {
	children := namedChildren(node)
	if len(children) == 0 {
		return validators.Any
	}

	switch children[0].Kind() {
	case "string":
		return validators.String
	case "number", "unary_expression":
		return validators.Number
	case "true", "false":
		return validators.Boolean
	}

	return validators.Any
}

// mergeProps appends more to props; a repeated key replaces the earlier entry
// in place.
func mergeProps(props, more []validators.Prop) []validators.Prop {
	for _, prop := range more {
		replaced := false

		for i := range props {
			if props[i].Key == prop.Key {
				props[i] = prop
				replaced = true

				break
			}
		}

		if !replaced {
			props = append(props, prop)
		}
	}

	return props
}
