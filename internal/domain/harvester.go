package domain

import (
	sitter "github.com/tree-sitter/go-tree-sitter"

	m "sfcc.dev/pkg/sfcc/internal/model"
)

// origin records where a top-level name was declared.
type origin struct {
	block  m.BlockRole
	form   m.DeclarationForm
	offset int
}

// scopeIndex maps a name to its declaration. Each harvest phase returns a new
// index that later phases only read.
type scopeIndex map[string]origin

type declared struct {
	name   string
	form   m.DeclarationForm
	offset int
}

// span is a byte range of a block.
type span struct {
	start int
	end   int
}

type typeDecl struct {
	module *m.ParsedModule
	node   *sitter.Node
}

type defaultExport struct {
	module *m.ParsedModule
	stmt   *sitter.Node
	value  *sitter.Node
}

// harvest is the immutable outcome of walking both blocks.
type harvest struct {
	imports *importSet
	// module holds imports and plain-block declarations.
	module scopeIndex
	// setup holds setup-block declarations and setup parameters.
	setup         scopeIndex
	candidates    []m.CandidateBinding
	defaultExport *defaultExport
	plainCuts     []span
	setupCuts     []span
	hoisted       []string
	types         map[string]typeDecl
	ambientProps  *sitter.Node
	reassigned    map[string]bool
	// async is set when the setup block awaits outside any nested function.
	async bool
}

// harvestBlocks runs the import, scope and export passes over both blocks.
func harvestBlocks(blocks *normalizedBlocks) (*harvest, error) {
	imports, module, err := moduleScope(blocks)
	if err != nil {
		return nil, err
	}

	setup, err := setupScope(blocks, module)
	if err != nil {
		return nil, err
	}

	h := &harvest{
		imports:    imports,
		module:     module,
		setup:      setup,
		types:      make(map[string]typeDecl),
		reassigned: reassignedNames(blocks.setup),
	}

	if err := h.collectPlain(blocks.plain); err != nil {
		return nil, err
	}

	if err := h.collectSetup(blocks.setup, blocks.args); err != nil {
		return nil, err
	}

	if err := h.checkCandidates(blocks); err != nil {
		return nil, err
	}

	return h, nil
}

// moduleScope is the first phase: imports of both blocks and declarations of
// the plain block.
func moduleScope(blocks *normalizedBlocks) (*importSet, scopeIndex, error) {
	imports := newImportSet()
	index := make(scopeIndex)

	for _, module := range []*m.ParsedModule{blocks.plain, blocks.setup} {
		if module == nil {
			continue
		}

		for _, stmt := range module.Statements {
			switch {
			case stmt.Kind == m.StmtImport:
				if m.ChildOfKind(stmt.Node, "import_require_clause") != nil {
					if module.Role == m.BlockSetup {
						return nil, nil, m.NewCompileError(m.KindUnsupportedSyntax, module.Role, string(module.Source),
							int(stmt.Node.StartByte()), "import-require declarations cannot be moved into the setup function")
					}

					for _, d := range importRequireNames(module, stmt.Node) {
						index[d.name] = origin{block: module.Role, form: d.form, offset: d.offset}
					}

					continue
				}

				if err := imports.collectImport(module, stmt.Node); err != nil {
					return nil, nil, err
				}
			case module.Role == m.BlockSetup && isReexport(stmt):
				if isTypeExport(stmt.Node) {
					continue
				}

				if _, err := imports.collectReexport(module, stmt.Node); err != nil {
					return nil, nil, err
				}
			case module.Role == m.BlockPlain:
				for _, d := range statementBindings(module, stmt) {
					index[d.name] = origin{block: m.BlockPlain, form: d.form, offset: d.offset}
				}
			}
		}
	}

	for _, key := range imports.order {
		rec := imports.records[key]

		for _, spec := range rec.specs {
			if prev, ok := index[spec.local]; ok && prev.form != m.FormImport {
				return nil, nil, m.NewCompileError(m.KindDuplicateBinding, prev.block, string(blocks.source(prev.block)), prev.offset,
					"%q is both imported from %q and declared in the %s block", spec.local, rec.source, prev.block).WithName(spec.local)
			}

			index[spec.local] = origin{block: "", form: m.FormImport, offset: -1}
		}
	}

	return imports, index, nil
}

// setupScope is the second phase: names only visible inside the generated
// setup function.
func setupScope(blocks *normalizedBlocks, module scopeIndex) (scopeIndex, error) {
	index := make(scopeIndex)
	if blocks.setup == nil {
		return index, nil
	}

	if blocks.args != nil {
		for _, name := range blocks.args.names {
			index[name] = origin{block: m.BlockSetupArgs, form: m.FormLetVar, offset: 0}
		}
	}

	for _, stmt := range blocks.setup.Statements {
		for _, d := range statementBindings(blocks.setup, stmt) {
			if prev, ok := module[d.name]; ok {
				what := "imported"
				if prev.block == m.BlockPlain {
					what = "declared in the script block"
				}

				return nil, m.NewCompileError(m.KindDuplicateBinding, m.BlockSetup, string(blocks.setup.Source), d.offset,
					"%q is declared in the setup block and %s", d.name, what).WithName(d.name)
			}

			if prev, ok := index[d.name]; ok && prev.block == m.BlockSetupArgs {
				return nil, m.NewCompileError(m.KindDuplicateBinding, m.BlockSetup, string(blocks.setup.Source), d.offset,
					"%q redeclares a setup argument", d.name).WithName(d.name)
			}

			index[d.name] = origin{block: m.BlockSetup, form: d.form, offset: d.offset}
		}
	}

	return index, nil
}

func (n *normalizedBlocks) source(role m.BlockRole) []byte {
	switch role {
	case m.BlockPlain:
		return n.plain.Source
	case m.BlockSetup:
		return n.setup.Source
	}

	return nil
}

// collectPlain records the default export and named exports of the plain
// block. Everything except imports and the default export stays in place.
func (h *harvest) collectPlain(p *m.ParsedModule) error {
	if p == nil {
		return nil
	}

	for _, stmt := range p.Statements {
		node := stmt.Node

		switch stmt.Kind {
		case m.StmtImport:
			if m.ChildOfKind(node, "import_require_clause") == nil {
				h.plainCuts = append(h.plainCuts, nodeSpan(node))
			}
		case m.StmtExportDefault:
			if err := h.setDefaultExport(p, node); err != nil {
				return err
			}

			h.plainCuts = append(h.plainCuts, nodeSpan(node))
		case m.StmtExportNamed:
			if decl := node.ChildByFieldName("declaration"); decl != nil {
				h.recordTypeDecl(p, decl)

				for _, d := range declarationBindings(p, decl) {
					h.addCandidate(p.Role, d.name, d.name, d.form, d.offset)
				}

				continue
			}

			if isTypeExport(node) {
				continue
			}

			if node.ChildByFieldName("source") != nil {
				if err := rejectDefaultSpecifier(p, node); err != nil {
					return err
				}

				continue
			}

			if err := h.collectExportClause(p, node, h.module); err != nil {
				return err
			}
		case m.StmtDeclaration:
			h.recordTypeDecl(p, node)
		}
	}

	return nil
}

// collectSetup plans the rewrite of the setup block into a function body.
func (h *harvest) collectSetup(p *m.ParsedModule, args *setupArgs) error {
	if p == nil {
		return nil
	}

	propsName := ""
	if args != nil {
		propsName = args.propsName
	}

	h.async = hasTopLevelAwait(p.Root)

	for _, stmt := range p.Statements {
		node := stmt.Node

		switch stmt.Kind {
		case m.StmtImport:
			h.setupCuts = append(h.setupCuts, nodeSpan(node))
		case m.StmtExportDefault:
			if err := h.setDefaultExport(p, node); err != nil {
				return err
			}

			h.setupCuts = append(h.setupCuts, nodeSpan(node))
		case m.StmtExportNamed:
			if err := h.collectSetupExport(p, node); err != nil {
				return err
			}
		case m.StmtDeclaration:
			switch node.Kind() {
			case "interface_declaration", "type_alias_declaration":
				h.recordTypeDecl(p, node)
				h.hoist(p, node)
			case "ambient_declaration":
				if t := ambientConstType(p, node, propsName); t != nil && h.ambientProps == nil {
					h.ambientProps = t
					h.setupCuts = append(h.setupCuts, nodeSpan(node))

					continue
				}

				h.hoist(p, node)
			}
		}
	}

	return nil
}

func (h *harvest) collectSetupExport(p *m.ParsedModule, node *sitter.Node) error {
	if isTypeExport(node) {
		h.hoist(p, node)
		return nil
	}

	if decl := node.ChildByFieldName("declaration"); decl != nil {
		switch decl.Kind() {
		case "interface_declaration", "type_alias_declaration", "ambient_declaration":
			h.recordTypeDecl(p, decl)
			h.hoist(p, node)

			return nil
		}

		h.setupCuts = append(h.setupCuts, span{start: int(node.StartByte()), end: int(decl.StartByte())})

		for _, d := range declarationBindings(p, decl) {
			h.addCandidate(p.Role, d.name, d.name, d.form, d.offset)
		}

		return nil
	}

	h.setupCuts = append(h.setupCuts, nodeSpan(node))

	if isReexport(m.TopLevelStatement{Kind: m.StmtExportNamed, Node: node}) {
		clause := m.ChildOfKind(node, "export_clause")
		for _, specNode := range namedChildren(clause) {
			if specNode.Kind() != "export_specifier" {
				continue
			}

			spec := namedSpec(p, specNode)
			h.addCandidate(p.Role, spec.local, spec.local, m.FormImport, int(specNode.StartByte()))
		}

		return nil
	}

	return h.collectExportClause(p, node, h.setup, h.module)
}

// collectExportClause handles `export { a, b as c }` without a source.
func (h *harvest) collectExportClause(p *m.ParsedModule, node *sitter.Node, scopes ...scopeIndex) error {
	clause := m.ChildOfKind(node, "export_clause")

	for _, specNode := range namedChildren(clause) {
		if specNode.Kind() != "export_specifier" {
			continue
		}

		spec := namedSpec(p, specNode)
		if spec.local == "default" {
			return defaultSpecifierError(p, specNode)
		}

		form, ok := lookupForm(spec.imported, scopes...)
		if !ok {
			return m.NewCompileError(m.KindParse, p.Role, string(p.Source), int(specNode.StartByte()),
				"exported name %q is not declared", spec.imported).WithName(spec.imported)
		}

		if h.imports.isTypeOnly(spec.imported) {
			continue
		}

		h.addCandidate(p.Role, spec.local, spec.imported, form, int(specNode.StartByte()))
	}

	return nil
}

// rejectDefaultSpecifier fails on `export { x as default }` style clauses.
func rejectDefaultSpecifier(p *m.ParsedModule, node *sitter.Node) error {
	for _, specNode := range namedChildren(m.ChildOfKind(node, "export_clause")) {
		if specNode.Kind() == "export_specifier" && namedSpec(p, specNode).local == "default" {
			return defaultSpecifierError(p, specNode)
		}
	}

	return nil
}

func defaultSpecifierError(p *m.ParsedModule, specNode *sitter.Node) error {
	return m.NewCompileError(m.KindUnsupportedDefaultExport, p.Role, string(p.Source), int(specNode.StartByte()),
		"default export must be an inline object literal, not %q", p.Text(specNode))
}

func lookupForm(name string, scopes ...scopeIndex) (m.DeclarationForm, bool) {
	for _, scope := range scopes {
		if o, ok := scope[name]; ok {
			return o.form, true
		}
	}

	return "", false
}

func (h *harvest) setDefaultExport(p *m.ParsedModule, stmt *sitter.Node) error {
	if h.defaultExport != nil {
		return m.NewCompileError(m.KindDuplicateBinding, p.Role, string(p.Source), int(stmt.StartByte()),
			"only one default export is allowed across both script blocks").WithName("default")
	}

	value := unwrapParens(stmt.ChildByFieldName("value"))
	if value == nil || value.Kind() != "object" {
		return m.NewCompileError(m.KindUnsupportedDefaultExport, p.Role, string(p.Source), int(stmt.StartByte()),
			"default export must be an inline object literal")
	}

	h.defaultExport = &defaultExport{module: p, stmt: stmt, value: value}

	return nil
}

func (h *harvest) addCandidate(block m.BlockRole, name, local string, form m.DeclarationForm, offset int) {
	h.candidates = append(h.candidates, m.CandidateBinding{
		Name:       name,
		Local:      local,
		Source:     block,
		Form:       form,
		IsExported: true,
		Reassigned: block == m.BlockSetup && h.reassigned[local],
		Offset:     offset,
	})
}

// checkCandidates rejects two exports under one name.
func (h *harvest) checkCandidates(blocks *normalizedBlocks) error {
	seen := make(map[string]m.CandidateBinding, len(h.candidates))

	for _, c := range h.candidates {
		if prev, ok := seen[c.Name]; ok {
			where := "twice from the " + string(c.Source) + " block"
			if prev.Source != c.Source {
				where = "from both the " + string(prev.Source) + " and the " + string(c.Source) + " block"
			}

			return m.NewCompileError(m.KindDuplicateBinding, c.Source, string(blocks.source(c.Source)), c.Offset,
				"%q is exported %s", c.Name, where).WithName(c.Name)
		}

		seen[c.Name] = c
	}

	return nil
}

// hasTopLevelAwait reports whether node contains an await expression or a
// for-await loop that does not belong to a nested function.
func hasTopLevelAwait(node *sitter.Node) bool {
	found := false

	walk(node, func(n *sitter.Node) bool {
		if found || isFunctionNode(n) || n.Kind() == "class_static_block" {
			return false
		}

		switch n.Kind() {
		case "await_expression":
			found = true
		case "for_in_statement":
			found = m.ChildOfKind(n, "await") != nil
		}

		return !found
	})

	return found
}

func (h *harvest) hoist(p *m.ParsedModule, node *sitter.Node) {
	h.hoisted = append(h.hoisted, p.Text(node))
	h.setupCuts = append(h.setupCuts, nodeSpan(node))
}

func (h *harvest) recordTypeDecl(p *m.ParsedModule, node *sitter.Node) {
	switch node.Kind() {
	case "interface_declaration", "type_alias_declaration":
		if name := node.ChildByFieldName("name"); name != nil {
			h.types[p.Text(name)] = typeDecl{module: p, node: node}
		}
	}
}

func nodeSpan(node *sitter.Node) span {
	return span{start: int(node.StartByte()), end: int(node.EndByte())}
}

func isReexport(stmt m.TopLevelStatement) bool {
	return stmt.Kind == m.StmtExportNamed && stmt.Node.ChildByFieldName("source") != nil
}

// isTypeExport matches `export type { ... }` and `export type * from`.
func isTypeExport(node *sitter.Node) bool {
	if node.ChildByFieldName("declaration") != nil {
		return false
	}

	return m.ChildOfKind(node, "type") != nil
}

// statementBindings lists the value names a top-level statement declares.
func statementBindings(p *m.ParsedModule, stmt m.TopLevelStatement) []declared {
	switch stmt.Kind {
	case m.StmtDeclaration:
		return declarationBindings(p, stmt.Node)
	case m.StmtExportNamed:
		return declarationBindings(p, stmt.Node.ChildByFieldName("declaration"))
	}

	return nil
}

func declarationBindings(p *m.ParsedModule, decl *sitter.Node) []declared {
	if decl == nil {
		return nil
	}

	switch decl.Kind() {
	case "lexical_declaration", "variable_declaration":
		isConst := decl.Kind() == "lexical_declaration" && decl.Child(0) != nil && decl.Child(0).Kind() == "const"

		var out []declared

		for _, declarator := range namedChildren(decl) {
			if declarator.Kind() != "variable_declarator" {
				continue
			}

			name := declarator.ChildByFieldName("name")
			if name == nil {
				continue
			}

			if name.Kind() == "identifier" {
				form := m.FormLetVar
				if isConst {
					form = m.FormConst
					if isPrimitiveLiteral(declarator.ChildByFieldName("value")) {
						form = m.FormConstLiteral
					}
				}

				out = append(out, declared{name: p.Text(name), form: form, offset: int(name.StartByte())})

				continue
			}

			for _, n := range patternNames(p, name) {
				out = append(out, declared{name: n, form: m.FormDestructured, offset: int(name.StartByte())})
			}
		}

		return out
	case "function_declaration", "generator_function_declaration", "class_declaration", "abstract_class_declaration":
		if name := decl.ChildByFieldName("name"); name != nil {
			return []declared{{name: p.Text(name), form: m.FormFunction, offset: int(name.StartByte())}}
		}
	case "enum_declaration":
		if name := decl.ChildByFieldName("name"); name != nil {
			return []declared{{name: p.Text(name), form: m.FormConst, offset: int(name.StartByte())}}
		}
	}

	return nil
}

func importRequireNames(p *m.ParsedModule, stmt *sitter.Node) []declared {
	clause := m.ChildOfKind(stmt, "import_require_clause")
	name := m.ChildOfKind(clause, "identifier")

	if name == nil {
		return nil
	}

	return []declared{{name: p.Text(name), form: m.FormImport, offset: int(name.StartByte())}}
}

// ambientConstType matches `declare const <name>: T` and returns T.
func ambientConstType(p *m.ParsedModule, node *sitter.Node, name string) *sitter.Node {
	if name == "" {
		return nil
	}

	for _, child := range namedChildren(node) {
		if child.Kind() != "lexical_declaration" && child.Kind() != "variable_declaration" {
			continue
		}

		declarators := namedChildren(child)
		if len(declarators) != 1 || declarators[0].Kind() != "variable_declarator" {
			return nil
		}

		id := declarators[0].ChildByFieldName("name")
		if id == nil || p.Text(id) != name {
			return nil
		}

		return typeOfAnnotation(declarators[0].ChildByFieldName("type"))
	}

	return nil
}

// reassignedNames lists identifiers that are assigned or updated anywhere in
// the module.
func reassignedNames(p *m.ParsedModule) map[string]bool {
	names := make(map[string]bool)
	if p == nil {
		return names
	}

	walk(p.Root, func(n *sitter.Node) bool {
		var target *sitter.Node

		switch n.Kind() {
		case "assignment_expression", "augmented_assignment_expression":
			target = unwrapParens(n.ChildByFieldName("left"))
		case "update_expression":
			target = unwrapParens(n.ChildByFieldName("argument"))
		}

		if target != nil && target.Kind() == "identifier" {
			names[p.Text(target)] = true
		}

		return true
	})

	return names
}
