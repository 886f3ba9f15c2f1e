package model

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorKind classifies a compile failure.
type ErrorKind string

const (
	// KindParse indicates a block does not conform to its grammar.
	KindParse ErrorKind = "ParseError"
	// KindDisallowedAttribute indicates the setup block has an external source.
	KindDisallowedAttribute ErrorKind = "DisallowedAttributeError"
	// KindScopeViolation indicates the options object uses a setup-only name.
	KindScopeViolation ErrorKind = "ScopeViolationError"
	// KindDuplicateBinding indicates a name has more than one source of truth.
	KindDuplicateBinding ErrorKind = "DuplicateBindingError"
	// KindUnsupportedDefaultExport indicates a default export that is not an object literal.
	KindUnsupportedDefaultExport ErrorKind = "UnsupportedDefaultExportShapeError"
	// KindUnresolvedExternalType indicates a props type that cannot be resolved locally.
	KindUnresolvedExternalType ErrorKind = "UnresolvedExternalTypeError"
	// KindUnsupportedSyntax indicates valid syntax the compiler cannot relocate.
	KindUnsupportedSyntax ErrorKind = "UnsupportedSyntaxError"
	// KindMissingBlock indicates a descriptor without any script block.
	KindMissingBlock ErrorKind = "MissingBlockError"
)

// Sentinels for errors.Is matching against a *CompileError.
var (
	ErrParse                    = errors.New(string(KindParse))
	ErrDisallowedAttribute      = errors.New(string(KindDisallowedAttribute))
	ErrScopeViolation           = errors.New(string(KindScopeViolation))
	ErrDuplicateBinding         = errors.New(string(KindDuplicateBinding))
	ErrUnsupportedDefaultExport = errors.New(string(KindUnsupportedDefaultExport))
	ErrUnresolvedExternalType   = errors.New(string(KindUnresolvedExternalType))
	ErrUnsupportedSyntax        = errors.New(string(KindUnsupportedSyntax))
	ErrMissingBlock             = errors.New(string(KindMissingBlock))
)

var sentinels = map[ErrorKind]error{
	KindParse:                    ErrParse,
	KindDisallowedAttribute:      ErrDisallowedAttribute,
	KindScopeViolation:           ErrScopeViolation,
	KindDuplicateBinding:         ErrDuplicateBinding,
	KindUnsupportedDefaultExport: ErrUnsupportedDefaultExport,
	KindUnresolvedExternalType:   ErrUnresolvedExternalType,
	KindUnsupportedSyntax:        ErrUnsupportedSyntax,
	KindMissingBlock:             ErrMissingBlock,
}

// CompileError is a fatal compile failure with enough position data to render
// a source-mapped diagnostic.
type CompileError struct {
	Kind    ErrorKind
	Block   BlockRole
	Offset  int
	Line    int
	Column  int
	Name    string
	Message string
}

// NewCompileError builds a CompileError and derives the 1-based line and
// column of offset within src.
func NewCompileError(kind ErrorKind, block BlockRole, src string, offset int, format string, args ...any) *CompileError {
	line, column := LineColumn(src, offset)

	return &CompileError{
		Kind:    kind,
		Block:   block,
		Offset:  offset,
		Line:    line,
		Column:  column,
		Message: fmt.Sprintf(format, args...),
	}
}

// WithName attaches the offending identifier.
func (e *CompileError) WithName(name string) *CompileError {
	e.Name = name
	return e
}

func (e *CompileError) Error() string {
	var b strings.Builder

	b.WriteString(string(e.Kind))

	if e.Block != "" {
		fmt.Fprintf(&b, " [%s", e.Block)

		if e.Line > 0 {
			fmt.Fprintf(&b, " %d:%d", e.Line, e.Column)
		}

		b.WriteString("]")
	}

	b.WriteString(": ")
	b.WriteString(e.Message)

	return b.String()
}

// Is matches the sentinel of the error kind.
func (e *CompileError) Is(target error) bool {
	sentinel, ok := sentinels[e.Kind]
	return ok && sentinel == target
}

// LineColumn converts a byte offset into a 1-based line and column.
func LineColumn(src string, offset int) (int, int) {
	if offset < 0 {
		return 0, 0
	}

	if offset > len(src) {
		offset = len(src)
	}

	line := 1 + strings.Count(src[:offset], "\n")
	column := offset + 1

	if idx := strings.LastIndexByte(src[:offset], '\n'); idx >= 0 {
		column = offset - idx
	}

	return line, column
}
