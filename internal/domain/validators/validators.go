// Package validators maps structural prop types to the runtime validators
// emitted into the props option.
package validators

import (
	"regexp"
	"strings"
)

// Kind is the runtime check a prop is validated with.
type Kind int

const (
	// Any accepts every value and is emitted as null.
	Any Kind = iota
	String
	Number
	Boolean
	BigInt
	Symbol
	Object
	Array
	Function
	Date
)

var emitters = map[Kind]func() string{
	Any:      func() string { return "null" },
	String:   constructor("String"),
	Number:   constructor("Number"),
	Boolean:  constructor("Boolean"),
	BigInt:   constructor("BigInt"),
	Symbol:   constructor("Symbol"),
	Object:   constructor("Object"),
	Array:    constructor("Array"),
	Function: constructor("Function"),
	Date:     constructor("Date"),
}

func constructor(name string) func() string {
	return func() string { return name }
}

// Emit returns the runtime check token of k.
func (k Kind) Emit() string {
	if emit, ok := emitters[k]; ok {
		return emit()
	}

	return emitters[Any]()
}

func (k Kind) String() string {
	if k == Any {
		return "Any"
	}

	return k.Emit()
}

var primitives = map[string]Kind{
	"string":    String,
	"number":    Number,
	"boolean":   Boolean,
	"bigint":    BigInt,
	"symbol":    Symbol,
	"object":    Object,
	"any":       Any,
	"unknown":   Any,
	"never":     Any,
	"void":      Any,
	"undefined": Any,
	"null":      Any,
}

// FromPrimitive maps a predefined type keyword such as `string`.
func FromPrimitive(name string) (Kind, bool) {
	kind, ok := primitives[name]
	return kind, ok
}

var globals = map[string]Kind{
	"String":        String,
	"Number":        Number,
	"Boolean":       Boolean,
	"BigInt":        BigInt,
	"Symbol":        Symbol,
	"Object":        Object,
	"Record":        Object,
	"Map":           Object,
	"WeakMap":       Object,
	"Set":           Object,
	"WeakSet":       Object,
	"Promise":       Object,
	"RegExp":        Object,
	"Error":         Object,
	"Array":         Array,
	"ReadonlyArray": Array,
	"Function":      Function,
	"Date":          Date,
}

// FromGlobal maps a built-in type name such as `Date` or `Record`.
func FromGlobal(name string) (Kind, bool) {
	kind, ok := globals[name]
	return kind, ok
}

// Prop is one inferred property.
type Prop struct {
	Key      string
	Kind     Kind
	Optional bool
}

var identifier = regexp.MustCompile(`^[A-Za-z_$][A-Za-z0-9_$]*$`)

// Verbose renders the keyed validator object. Optional keys carry
// `required: false`.
func Verbose(props []Prop) string {
	if len(props) == 0 {
		return "{}"
	}

	entries := make([]string, 0, len(props))

	for _, prop := range props {
		value := prop.Kind.Emit()
		if prop.Optional {
			value = "{ type: " + value + ", required: false }"
		}

		entries = append(entries, key(prop.Key)+": "+value)
	}

	return "{ " + strings.Join(entries, ", ") + " }"
}

// Compact renders the names-only array used in production builds.
func Compact(props []Prop) string {
	names := make([]string, 0, len(props))
	for _, prop := range props {
		names = append(names, quote(prop.Key))
	}

	return "[" + strings.Join(names, ", ") + "]"
}

func key(name string) string {
	if identifier.MatchString(name) {
		return name
	}

	return quote(name)
}

func quote(value string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `'`, `\'`, "\n", `\n`, "\r", `\r`)
	return "'" + replacer.Replace(value) + "'"
}
