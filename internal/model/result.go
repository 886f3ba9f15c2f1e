package model

// CompileOptions carries caller-selected switches for one compilation.
type CompileOptions struct {
	// Production selects the compact props form (names only).
	Production bool
}

// CompiledScriptResult is the output of one compilation.
type CompiledScriptResult struct {
	Code     string
	Bindings BindingMetadata
	// Language of the generated code.
	Language Language
}

// CompileStatus is the outcome of compiling one descriptor in a batch.
type CompileStatus int

const (
	// Compiled indicates the descriptor was compiled in this run.
	Compiled CompileStatus = iota
	// Cached indicates the stored result was still current.
	Cached
	// Failed indicates the compiler returned an error.
	Failed
)

func (s CompileStatus) String() string {
	switch s {
	case Compiled:
		return "compiled"
	case Cached:
		return "cached"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// CompileRecord is a batch result for one descriptor file.
type CompileRecord struct {
	Name   string
	Source File
	Status CompileStatus
	Result CompiledScriptResult
	// Err is the rendered compile error when Status is Failed.
	Err string
}

// IndexEntry is the cache index row of one compiled descriptor.
type IndexEntry struct {
	Source   Path     `yaml:"source"`
	Hash     string   `yaml:"hash"`
	Language Language `yaml:"language"`
	// Production records the props form the stored code was generated with.
	Production bool   `yaml:"production,omitempty"`
	Error      string `yaml:"error,omitempty"`
}

// CacheIndex maps component names to their last compiled source.
type CacheIndex struct {
	Version    int                   `yaml:"version"`
	Components map[string]IndexEntry `yaml:"components"`
}
