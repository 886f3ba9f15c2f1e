package model

import "sort"

// BindingKind tells the template compiler which access path to use for a name.
type BindingKind string

const (
	// BindingProps is declared in the props option.
	BindingProps BindingKind = "Props"
	// BindingSetup is a dynamic value returned from setup.
	BindingSetup BindingKind = "Setup"
	// BindingSetupConst is a setup value bound once to an immutable literal.
	BindingSetupConst BindingKind = "SetupConst"
	// BindingOptions comes from computed, methods or inject options.
	BindingOptions BindingKind = "Options"
	// BindingData comes from the object returned by data().
	BindingData BindingKind = "Data"
	// BindingLiteral is a module-scope compile-time constant.
	BindingLiteral BindingKind = "Literal"
)

// Returned reports whether the binding is part of the setup return object.
func (k BindingKind) Returned() bool {
	return k == BindingSetup || k == BindingSetupConst
}

// DeclarationForm is the syntactic shape a top-level name was declared with.
type DeclarationForm string

const (
	// FormConstLiteral is `const x = <primitive literal>`.
	FormConstLiteral DeclarationForm = "const-literal"
	// FormConst is any other single-name const declaration.
	FormConst DeclarationForm = "const"
	// FormLetVar is a let or var declaration.
	FormLetVar DeclarationForm = "let/var"
	// FormFunction is a function or class declaration.
	FormFunction DeclarationForm = "function"
	// FormImport is an import or a re-export from another module.
	FormImport DeclarationForm = "import"
	// FormDestructured is a name bound by a destructuring pattern.
	FormDestructured DeclarationForm = "destructured"
)

// CandidateBinding is an exported top-level name that may enter the render
// context.
type CandidateBinding struct {
	// Name is the exported name seen by the template.
	Name string
	// Local is the name inside the module; differs from Name for `export { a as b }`.
	Local      string
	Source     BlockRole
	Form       DeclarationForm
	IsExported bool
	Reassigned bool
	Offset     int
}

// BindingRecord is one classified name.
type BindingRecord struct {
	Name string
	Kind BindingKind
}

// BindingMetadata maps every render-context name to its access kind.
type BindingMetadata map[string]BindingKind

// Names returns the binding names in sorted order.
func (b BindingMetadata) Names() []string {
	names := make([]string, 0, len(b))
	for name := range b {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}

// Records returns the bindings as records sorted by name.
func (b BindingMetadata) Records() []BindingRecord {
	records := make([]BindingRecord, 0, len(b))
	for _, name := range b.Names() {
		records = append(records, BindingRecord{Name: name, Kind: b[name]})
	}

	return records
}

// OptionEntry is one top-level key of the base options object.
type OptionEntry struct {
	Key       string
	ValueText string
	Offset    int
}

// BaseOptionsObject is the default-exported object literal of a component.
type BaseOptionsObject struct {
	Source  BlockRole
	Text    string
	Offset  int
	Entries []OptionEntry
	// HasProps is set when a props key exists, even if its keys could not be
	// read statically.
	HasProps bool
	Props    []string
	Data     []string
	Options  []string
}

// Entry returns the option entry with the given key.
func (o *BaseOptionsObject) Entry(key string) (OptionEntry, bool) {
	if o == nil {
		return OptionEntry{}, false
	}

	for _, entry := range o.Entries {
		if entry.Key == key {
			return entry, true
		}
	}

	return OptionEntry{}, false
}
