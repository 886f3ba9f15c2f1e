// Package model defines the data structures shared by the script compiler.
package model

import "strings"

// Path represents a file system path.
type Path string

// Language selects the grammar a block is parsed with.
type Language string

const (
	// LangJS is plain JavaScript (module grammar).
	LangJS Language = "js"
	// LangJSX is JavaScript with JSX.
	LangJSX Language = "jsx"
	// LangTS is TypeScript.
	LangTS Language = "ts"
	// LangTSX is TypeScript with JSX.
	LangTSX Language = "tsx"
)

// ParseLanguage normalizes a block lang attribute. Empty means JavaScript.
func ParseLanguage(value string) (Language, bool) {
	switch Language(strings.ToLower(strings.TrimSpace(value))) {
	case "", LangJS, "javascript", "mjs":
		return LangJS, true
	case LangJSX:
		return LangJSX, true
	case LangTS, "typescript", "mts":
		return LangTS, true
	case LangTSX:
		return LangTSX, true
	}

	return "", false
}

// Typed reports whether the language carries static type annotations.
func (l Language) Typed() bool {
	return l == LangTS || l == LangTSX
}

// Extension returns the file extension used for generated code.
func (l Language) Extension() string {
	switch l {
	case LangTS, LangTSX, LangJSX:
		return string(l)
	}

	return "js"
}

// BlockRole identifies where a piece of source text came from.
type BlockRole string

const (
	// BlockPlain is the ordinary module-scope script block.
	BlockPlain BlockRole = "script"
	// BlockSetup is the setup script block.
	BlockSetup BlockRole = "setup"
	// BlockSetupArgs is the setup arguments expression.
	BlockSetupArgs BlockRole = "setupArgs"
)

// SourceBlock is one script region of a component.
type SourceBlock struct {
	Content  string
	Language Language
	// SetupArgs is the raw parameter list of the setup function. Only
	// meaningful on the setup block.
	SetupArgs *string
	// Attrs holds the remaining block attributes (for example src).
	Attrs map[string]string
}

// Src returns the external source attribute, if any.
func (b SourceBlock) Src() (string, bool) {
	src, ok := b.Attrs["src"]
	return src, ok
}

// Descriptor is the block splitter's view of a component: at most one plain
// block and at most one setup block.
type Descriptor struct {
	Name   string
	Path   Path
	Script *SourceBlock
	Setup  *SourceBlock
}

// File represents a descriptor file on disk.
type File struct {
	Path Path
	Hash string
}
