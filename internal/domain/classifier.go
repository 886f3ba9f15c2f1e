package domain

import (
	m "sfcc.dev/pkg/sfcc/internal/model"
)

// bindingSource remembers where a classified name came from so a collision
// can point at it.
type bindingSource struct {
	kind   m.BindingKind
	block  m.BlockRole
	offset int
	what   string
}

type classifier struct {
	blocks   *normalizedBlocks
	bindings m.BindingMetadata
	sources  map[string]bindingSource
}

// classify assigns every render-context name exactly one kind. A name with
// two sources is a DuplicateBindingError; props never silently win.
func classify(blocks *normalizedBlocks, h *harvest, base *m.BaseOptionsObject, inferred *inferredProps) (m.BindingMetadata, error) {
	c := &classifier{
		blocks:   blocks,
		bindings: make(m.BindingMetadata),
		sources:  make(map[string]bindingSource),
	}

	if err := c.fromOptions(base, inferred); err != nil {
		return nil, err
	}

	for _, candidate := range h.candidates {
		if err := c.add(candidate.Name, candidateKind(candidate), candidate.Source, candidate.Offset, "exported binding"); err != nil {
			return nil, err
		}
	}

	return c.bindings, nil
}

func (c *classifier) fromOptions(base *m.BaseOptionsObject, inferred *inferredProps) error {
	if inferred != nil {
		block, offset := inferred.decl.module.Role, int(inferred.decl.node.StartByte())
		if block == m.BlockSetupArgs {
			offset = max(offset-len(setupArgsPrefix), 0)
		}

		for _, name := range inferred.Names() {
			if err := c.add(name, m.BindingProps, block, offset, "typed prop"); err != nil {
				return err
			}
		}
	}

	if base == nil {
		return nil
	}

	groups := []struct {
		names []string
		kind  m.BindingKind
		what  string
	}{
		{base.Props, m.BindingProps, "prop"},
		{base.Data, m.BindingData, "data() key"},
		{base.Options, m.BindingOptions, "option key"},
	}

	for _, group := range groups {
		for _, name := range group.names {
			if err := c.add(name, group.kind, base.Source, base.Offset, group.what); err != nil {
				return err
			}
		}
	}

	return nil
}

func (c *classifier) add(name string, kind m.BindingKind, block m.BlockRole, offset int, what string) error {
	if prev, ok := c.sources[name]; ok {
		src := ""
		if block == m.BlockSetupArgs {
			if c.blocks.args != nil {
				src = c.blocks.args.text
			}
		} else {
			src = string(c.blocks.source(block))
		}

		return m.NewCompileError(m.KindDuplicateBinding, block, src, offset,
			"%q is both a %s (%s) and a %s (%s)", name, prev.what, prev.kind, what, kind).WithName(name)
	}

	c.sources[name] = bindingSource{kind: kind, block: block, offset: offset, what: what}
	c.bindings[name] = kind

	return nil
}

func candidateKind(c m.CandidateBinding) m.BindingKind {
	if c.Form != m.FormConstLiteral || c.Reassigned {
		return m.BindingSetup
	}

	if c.Source == m.BlockPlain {
		return m.BindingLiteral
	}

	return m.BindingSetupConst
}
