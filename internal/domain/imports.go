package domain

import (
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"

	m "sfcc.dev/pkg/sfcc/internal/model"
)

type importKind int

const (
	importDefault importKind = iota
	importNamespace
	importNamed
)

type importSpec struct {
	kind     importKind
	imported string
	local    string
	typeOnly bool
}

type importRecord struct {
	source   string
	quoted   string
	typeOnly bool
	// attributes is the `with { ... }` (or legacy `assert { ... }`) clause.
	attributes string
	specs      []importSpec
}

type importBinding struct {
	source string
	spec   importSpec
}

// importSet merges the imports of both blocks per source module, keeping the
// order in which sources first appear.
type importSet struct {
	order   []string
	records map[string]*importRecord
	locals  map[string]importBinding
}

func newImportSet() *importSet {
	return &importSet{
		records: make(map[string]*importRecord),
		locals:  make(map[string]importBinding),
	}
}

func (s *importSet) record(source, quoted string, typeOnly bool, attributes string) *importRecord {
	key := source
	if typeOnly {
		key = "type:" + source
	}

	if attributes != "" {
		key += " " + attributes
	}

	rec, ok := s.records[key]
	if !ok {
		rec = &importRecord{source: source, quoted: quoted, typeOnly: typeOnly, attributes: attributes}
		s.records[key] = rec
		s.order = append(s.order, key)
	}

	return rec
}

// add registers spec. It reports false when the local name is already bound
// to a different import.
func (s *importSet) add(rec *importRecord, spec importSpec) bool {
	if existing, ok := s.locals[spec.local]; ok {
		return existing.source == rec.source && existing.spec.kind == spec.kind &&
			existing.spec.imported == spec.imported
	}

	s.locals[spec.local] = importBinding{source: rec.source, spec: spec}
	rec.specs = append(rec.specs, spec)

	return true
}

func (s *importSet) isTypeOnly(local string) bool {
	binding, ok := s.locals[local]
	if !ok {
		return false
	}

	rec := s.records["type:"+binding.source]

	return binding.spec.typeOnly || (rec != nil && containsSpec(rec.specs, local))
}

func containsSpec(specs []importSpec, local string) bool {
	for _, spec := range specs {
		if spec.local == local {
			return true
		}
	}

	return false
}

// collectImport merges one import_statement into the set.
func (s *importSet) collectImport(p *m.ParsedModule, stmt *sitter.Node) error {
	sourceNode := stmt.ChildByFieldName("source")
	if sourceNode == nil {
		return m.NewCompileError(m.KindUnsupportedSyntax, p.Role, string(p.Source), int(stmt.StartByte()),
			"unsupported import form %q", firstLine(p.Text(stmt)))
	}

	typeOnly := m.ChildOfKind(stmt, "type") != nil || m.ChildOfKind(stmt, "typeof") != nil
	rec := s.record(unquote(p.Text(sourceNode)), p.Text(sourceNode), typeOnly, importAttributes(p, stmt))

	clause := m.ChildOfKind(stmt, "import_clause")
	if clause == nil {
		return nil
	}

	for _, child := range namedChildren(clause) {
		switch child.Kind() {
		case "identifier":
			if err := s.bind(p, rec, child, importSpec{kind: importDefault, imported: "default", local: p.Text(child)}); err != nil {
				return err
			}
		case "namespace_import":
			name := m.ChildOfKind(child, "identifier")
			if err := s.bind(p, rec, child, importSpec{kind: importNamespace, imported: "*", local: p.Text(name)}); err != nil {
				return err
			}
		case "named_imports":
			for _, specNode := range namedChildren(child) {
				if specNode.Kind() != "import_specifier" {
					continue
				}

				spec := namedSpec(p, specNode)
				if err := s.bind(p, rec, specNode, spec); err != nil {
					return err
				}
			}
		}
	}

	return nil
}

// collectReexport turns `export { a as b } from 'm'` into an import of b.
func (s *importSet) collectReexport(p *m.ParsedModule, stmt *sitter.Node) ([]string, error) {
	sourceNode := stmt.ChildByFieldName("source")
	clause := m.ChildOfKind(stmt, "export_clause")

	if clause == nil {
		return nil, m.NewCompileError(m.KindUnsupportedSyntax, p.Role, string(p.Source), int(stmt.StartByte()),
			"%q cannot be relocated into the setup function", firstLine(p.Text(stmt)))
	}

	rec := s.record(unquote(p.Text(sourceNode)), p.Text(sourceNode), false, importAttributes(p, stmt))

	var locals []string

	for _, specNode := range namedChildren(clause) {
		if specNode.Kind() != "export_specifier" {
			continue
		}

		spec := namedSpec(p, specNode)
		if spec.local == "default" {
			return nil, m.NewCompileError(m.KindUnsupportedDefaultExport, p.Role, string(p.Source), int(specNode.StartByte()),
				"re-exported default needs a local name: use `export { default as Name } from`")
		}

		if spec.imported == "default" {
			spec.kind = importDefault
		}

		if err := s.bind(p, rec, specNode, spec); err != nil {
			return nil, err
		}

		locals = append(locals, spec.local)
	}

	return locals, nil
}

func (s *importSet) bind(p *m.ParsedModule, rec *importRecord, node *sitter.Node, spec importSpec) error {
	if !s.add(rec, spec) {
		return m.NewCompileError(m.KindDuplicateBinding, p.Role, string(p.Source), int(node.StartByte()),
			"%q is imported more than once from different sources", spec.local).WithName(spec.local)
	}

	return nil
}

func namedSpec(p *m.ParsedModule, node *sitter.Node) importSpec {
	name, _ := propertyKey(p, node.ChildByFieldName("name"))
	local := name

	if alias := node.ChildByFieldName("alias"); alias != nil {
		local, _ = propertyKey(p, alias)
	}

	return importSpec{
		kind:     importNamed,
		imported: name,
		local:    local,
		typeOnly: m.ChildOfKind(node, "type") != nil,
	}
}

// importAttributes returns the attribute clause of an import or re-export,
// normalised to single spaces.
func importAttributes(p *m.ParsedModule, stmt *sitter.Node) string {
	attr := m.ChildOfKind(stmt, "import_attribute")
	if attr == nil {
		return ""
	}

	return strings.Join(strings.Fields(p.Text(attr)), " ")
}

// render prints the merged import statements.
func (s *importSet) render() string {
	var b strings.Builder

	for _, key := range s.order {
		rec := s.records[key]
		keyword := "import "

		if rec.typeOnly {
			keyword = "import type "
		}

		from := rec.quoted
		if rec.attributes != "" {
			from += " " + rec.attributes
		}

		if len(rec.specs) == 0 {
			if !rec.typeOnly {
				b.WriteString("import " + from + "\n")
			}

			continue
		}

		var (
			defaults   []importSpec
			namespaces []importSpec
			named      []string
		)

		for _, spec := range rec.specs {
			switch spec.kind {
			case importDefault:
				defaults = append(defaults, spec)
			case importNamespace:
				namespaces = append(namespaces, spec)
			case importNamed:
				named = append(named, renderNamed(spec))
			}
		}

		var clauses []string

		switch {
		case len(defaults) > 0 && len(named) > 0:
			clauses = append(clauses, defaults[0].local+", { "+strings.Join(named, ", ")+" }")
			defaults = defaults[1:]
		case len(named) > 0:
			clauses = append(clauses, "{ "+strings.Join(named, ", ")+" }")
		}

		if len(defaults) > 0 && len(namespaces) > 0 {
			clauses = append(clauses, defaults[0].local+", * as "+namespaces[0].local)
			defaults = defaults[1:]
			namespaces = namespaces[1:]
		}

		for _, spec := range defaults {
			clauses = append(clauses, spec.local)
		}

		for _, spec := range namespaces {
			clauses = append(clauses, "* as "+spec.local)
		}

		for _, clause := range clauses {
			b.WriteString(keyword + clause + " from " + from + "\n")
		}
	}

	return b.String()
}

func renderNamed(spec importSpec) string {
	text := jsKey(spec.imported)
	if spec.imported != spec.local {
		text += " as " + spec.local
	}

	if spec.typeOnly {
		text = "type " + text
	}

	return text
}

func firstLine(text string) string {
	if idx := strings.IndexByte(text, '\n'); idx >= 0 {
		return text[:idx]
	}

	return text
}
