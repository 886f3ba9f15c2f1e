package domain

import (
	"sort"
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"

	m "sfcc.dev/pkg/sfcc/internal/model"
)

const (
	setupFunctionName  = "setup"
	defaultBindingName = "__default__"
)

// generator assembles the final module from the harvested pieces.
type generator struct {
	blocks     *normalizedBlocks
	h          *harvest
	base       *m.BaseOptionsObject
	inferred   *inferredProps
	bindings   m.BindingMetadata
	production bool
	typed      bool
}

// generate emits imports, plain statements, hoisted types, the setup function
// and the default export, in that order.
func (g *generator) generate() string {
	setupName := uniqueName(setupFunctionName, g.h.module, g.h.setup)

	sections := []string{
		strings.TrimSpace(g.h.imports.render()),
		cutSpans(g.blocks.plain, g.h.plainCuts, ""),
		strings.Join(g.h.hoisted, "\n"),
		g.setupFunction(setupName),
		g.defaultExport(setupName),
	}

	var b strings.Builder

	for _, section := range sections {
		if section == "" {
			continue
		}

		if b.Len() > 0 {
			b.WriteString("\n\n")
		}

		b.WriteString(section)
	}

	b.WriteString("\n")

	return b.String()
}

func (g *generator) setupFunction(name string) string {
	var b strings.Builder

	if g.h.async {
		b.WriteString("async ")
	}

	b.WriteString("function " + name + "(" + g.params() + ") {\n")

	if body := cutSpans(g.blocks.setup, g.h.setupCuts, "  "); body != "" {
		b.WriteString(body + "\n\n")
	}

	b.WriteString("  return " + g.returnObject() + "\n}")

	return b.String()
}

// params is the setup argument list. An ambient props type is moved onto the
// first parameter.
func (g *generator) params() string {
	args := g.blocks.args
	if args == nil {
		return ""
	}

	text := args.text
	if g.h.ambientProps != nil && args.propsType == nil && args.propsName != "" && g.typed {
		text = text[:args.propsNameEnd] + ": " + g.blocks.setup.Text(g.h.ambientProps) + text[args.propsNameEnd:]
	}

	return strings.TrimSpace(text)
}

func (g *generator) returnObject() string {
	var entries []string

	for _, c := range g.h.candidates {
		if !g.bindings[c.Name].Returned() {
			continue
		}

		if c.Name == c.Local {
			entries = append(entries, c.Name)
			continue
		}

		entries = append(entries, jsKey(c.Name)+": "+c.Local)
	}

	if len(entries) == 0 {
		return "{}"
	}

	return "{ " + strings.Join(entries, ", ") + " }"
}

func (g *generator) defaultExport(setupName string) string {
	setupEntry := "setup"
	if setupName != "setup" {
		setupEntry = "setup: " + setupName
	}

	if g.base == nil {
		if g.inferred == nil {
			return "export default { " + setupEntry + " }"
		}

		return "export default {\n  props: " + g.inferred.Render(g.production, g.typed) + ",\n  " + setupEntry + "\n}"
	}

	name := uniqueName(defaultBindingName, g.h.module, g.h.setup)

	lines := []string{"const " + name + " = " + g.base.Text}
	if g.inferred != nil {
		lines = append(lines, name+".props = "+g.inferred.Render(g.production, g.typed))
	}

	lines = append(lines,
		name+".setup = "+setupName,
		"export default "+name,
	)

	return strings.Join(lines, "\n")
}

// uniqueName appends underscores to base until no scope declares it.
func uniqueName(base string, scopes ...scopeIndex) string {
	name := base

	for {
		taken := false

		for _, scope := range scopes {
			if _, ok := scope[name]; ok {
				taken = true
				break
			}
		}

		if !taken {
			return name
		}

		name += "_"
	}
}

// cutSpans returns the module source without the given spans, prefixing each
// line with indent unless it continues a template literal. A cut also removes
// the rest of its line when only whitespace follows.
func cutSpans(p *m.ParsedModule, cuts []span, indent string) string {
	if p == nil {
		return ""
	}

	src := p.Source

	sorted := append([]span(nil), cuts...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].start < sorted[j].start })

	var kept []span

	pos := 0

	for _, cut := range sorted {
		if cut.start < pos {
			continue
		}

		kept = append(kept, span{start: pos, end: cut.start})
		pos = lineRest(src, cut.end)
	}

	kept = append(kept, span{start: pos, end: len(src)})

	templates := templateSpans(p)

	var b strings.Builder

	lineStart := true

	for _, k := range kept {
		for i := k.start; i < k.end; i++ {
			c := src[i]
			if lineStart && c != '\n' && c != '\r' && indent != "" && !insideAny(templates, i) {
				b.WriteString(indent)
			}

			b.WriteByte(c)
			lineStart = c == '\n'
		}
	}

	return trimBlankLines(b.String())
}

func templateSpans(p *m.ParsedModule) []span {
	var spans []span

	walk(p.Root, func(n *sitter.Node) bool {
		if n.Kind() == "template_string" {
			spans = append(spans, nodeSpan(n))
			return false
		}

		return true
	})

	return spans
}

func insideAny(spans []span, offset int) bool {
	for _, s := range spans {
		if offset > s.start && offset < s.end {
			return true
		}
	}

	return false
}

// trimBlankLines drops leading blank lines and trailing whitespace.
func trimBlankLines(text string) string {
	text = strings.TrimRight(text, " \t\r\n")

	for {
		line, rest, found := strings.Cut(text, "\n")
		if !found || strings.TrimSpace(line) != "" {
			return text
		}

		text = rest
	}
}

// lineRest skips trailing blanks, a semicolon and one newline after end.
func lineRest(src []byte, end int) int {
	i := end
	for i < len(src) && (src[i] == ' ' || src[i] == '\t' || src[i] == ';') {
		i++
	}

	if i < len(src) && src[i] == '\r' {
		i++
	}

	if i < len(src) && src[i] == '\n' {
		return i + 1
	}

	if i == len(src) {
		return i
	}

	return end
}
