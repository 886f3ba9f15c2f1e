package domain

import (
	"encoding/json"
	"fmt"

	m "sfcc.dev/pkg/sfcc/internal/model"
)

// emitMetadata hands the classifier output over as the result table. The copy
// keeps the result independent of classifier state.
func emitMetadata(bindings m.BindingMetadata) m.BindingMetadata {
	out := make(m.BindingMetadata, len(bindings))
	for name, kind := range bindings {
		out[name] = kind
	}

	return out
}

// BindingsJSON serializes bindings as an indented JSON object with sorted
// keys, the format the template compiler reads as bindingMetadata.
func BindingsJSON(bindings m.BindingMetadata) ([]byte, error) {
	if bindings == nil {
		bindings = m.BindingMetadata{}
	}

	data, err := json.MarshalIndent(bindings, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode bindings: %w", err)
	}

	return append(data, '\n'), nil
}
