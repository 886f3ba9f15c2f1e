package domain

import (
	sitter "github.com/tree-sitter/go-tree-sitter"

	m "sfcc.dev/pkg/sfcc/internal/model"
)

// Option keys whose object keys become Options bindings.
var optionsBindingKeys = []string{"computed", "methods", "inject"}

// extractBaseOptions isolates the default-exported object literal and checks
// that it only refers to module-scope names.
func extractBaseOptions(h *harvest) (*m.BaseOptionsObject, error) {
	if h.defaultExport == nil {
		return nil, nil
	}

	p := h.defaultExport.module
	obj := h.defaultExport.value

	if err := checkOptionsScope(p, obj, h.setup, h.module); err != nil {
		return nil, err
	}

	base := &m.BaseOptionsObject{
		Source: p.Role,
		Text:   p.Text(obj),
		Offset: int(obj.StartByte()),
	}

	values := make(map[string]*sitter.Node)

	for _, member := range namedChildren(obj) {
		key, value, ok := optionMember(p, member)
		if !ok {
			continue
		}

		base.Entries = append(base.Entries, m.OptionEntry{Key: key, ValueText: p.Text(value), Offset: int(member.StartByte())})
		values[key] = value
	}

	if props, ok := values["props"]; ok {
		base.HasProps = true
		base.Props = keysOf(p, props)
	}

	if data, ok := values["data"]; ok {
		base.Data = keysOf(p, returnedObject(data))
	}

	for _, key := range optionsBindingKeys {
		if value, ok := values[key]; ok {
			base.Options = append(base.Options, keysOf(p, value)...)
		}
	}

	return base, nil
}

// checkSetupOption rejects a `setup` option when the setup block generates
// the setup function.
func checkSetupOption(blocks *normalizedBlocks, base *m.BaseOptionsObject) error {
	entry, ok := base.Entry("setup")
	if !ok {
		return nil
	}

	return m.NewCompileError(m.KindDuplicateBinding, base.Source, string(blocks.source(base.Source)), entry.Offset,
		"the default export defines setup, which the setup block also generates").WithName("setup")
}

// optionMember splits an object member into its static key and value node.
func optionMember(p *m.ParsedModule, member *sitter.Node) (string, *sitter.Node, bool) {
	switch member.Kind() {
	case "pair":
		key, ok := propertyKey(p, member.ChildByFieldName("key"))
		return key, member.ChildByFieldName("value"), ok
	case "method_definition":
		key, ok := propertyKey(p, member.ChildByFieldName("name"))
		return key, member, ok
	case "shorthand_property_identifier":
		return p.Text(member), member, true
	}

	return "", nil, false
}

// keysOf lists the static names of an array of strings or an object literal.
func keysOf(p *m.ParsedModule, node *sitter.Node) []string {
	node = unwrapParens(node)
	if node == nil {
		return nil
	}

	var keys []string

	switch node.Kind() {
	case "array":
		for _, element := range namedChildren(node) {
			if element.Kind() == "string" {
				keys = append(keys, unquote(p.Text(element)))
			}
		}
	case "object":
		for _, member := range namedChildren(node) {
			if key, _, ok := optionMember(p, member); ok {
				keys = append(keys, key)
			}
		}
	}

	return keys
}

// returnedObject finds the object literal a data() function returns.
func returnedObject(fn *sitter.Node) *sitter.Node {
	fn = unwrapParens(fn)
	if fn == nil || !isFunctionNode(fn) {
		return nil
	}

	body := fn.ChildByFieldName("body")
	if body == nil {
		return nil
	}

	if body.Kind() != "statement_block" {
		if inner := unwrapParens(body); inner.Kind() == "object" {
			return inner
		}

		return nil
	}

	for _, stmt := range namedChildren(body) {
		if stmt.Kind() != "return_statement" {
			continue
		}

		for _, value := range namedChildren(stmt) {
			if inner := unwrapParens(value); inner.Kind() == "object" {
				return inner
			}
		}
	}

	return nil
}

// checkOptionsScope rejects identifiers in obj that only resolve inside the
// setup function. Resolution is lexical: a reference is local when one of
// its enclosing functions (or catch clauses) within the literal declares it.
func checkOptionsScope(p *m.ParsedModule, obj *sitter.Node, setup, module scopeIndex) error {
	var violation *sitter.Node

	var visit func(n *sitter.Node, scopes []map[string]bool)
	visit = func(n *sitter.Node, scopes []map[string]bool) {
		if n == nil || violation != nil {
			return
		}

		switch {
		case isFunctionNode(n):
			scopes = append(scopes[:len(scopes):len(scopes)], functionScope(p, n))
		case n.Kind() == "catch_clause":
			scopes = append(scopes[:len(scopes):len(scopes)], nameSet(patternNames(p, n.ChildByFieldName("parameter"))))
		}

		switch n.Kind() {
		case "identifier", "shorthand_property_identifier":
			name := p.Text(n)
			if _, inSetup := setup[name]; inSetup && !declaredIn(scopes, name) {
				if _, inModule := module[name]; !inModule {
					violation = n
					return
				}
			}
		}

		for i := uint(0); i < n.ChildCount(); i++ {
			visit(n.Child(i), scopes)
		}
	}

	visit(obj, nil)

	if violation == nil {
		return nil
	}

	name := p.Text(violation)

	return m.NewCompileError(m.KindScopeViolation, p.Role, string(p.Source), int(violation.StartByte()),
		"default export cannot reference %q: it is only defined inside the setup function", name).WithName(name)
}

// functionScope collects the names fn declares for its own body: its name,
// parameters, variables and nested declarations, without descending into
// nested functions.
func functionScope(p *m.ParsedModule, fn *sitter.Node) map[string]bool {
	names := make(map[string]bool)

	if name := fn.ChildByFieldName("name"); name != nil && name.Kind() == "identifier" {
		names[p.Text(name)] = true
	}

	if param := fn.ChildByFieldName("parameter"); param != nil {
		names[p.Text(param)] = true
	}

	for _, name := range patternNames(p, fn.ChildByFieldName("parameters")) {
		names[name] = true
	}

	walk(fn.ChildByFieldName("body"), func(n *sitter.Node) bool {
		switch n.Kind() {
		case "function_declaration", "generator_function_declaration", "class_declaration":
			if name := n.ChildByFieldName("name"); name != nil {
				names[p.Text(name)] = true
			}

			return false
		case "variable_declarator":
			for _, name := range patternNames(p, n.ChildByFieldName("name")) {
				names[name] = true
			}
		}

		return !isFunctionNode(n) && n.Kind() != "class"
	})

	return names
}

func nameSet(names []string) map[string]bool {
	set := make(map[string]bool, len(names))
	for _, name := range names {
		set[name] = true
	}

	return set
}

func declaredIn(scopes []map[string]bool, name string) bool {
	for i := len(scopes) - 1; i >= 0; i-- {
		if scopes[i][name] {
			return true
		}
	}

	return false
}
