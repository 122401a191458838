package solc

import (
	"github.com/LegacyCodeHQ/solls/depgraph"
	"github.com/LegacyCodeHQ/solls/diagnostics"
)

// Input is the compiler's standard JSON input.
type Input struct {
	Language string                   `json:"language"`
	Settings Settings                 `json:"settings"`
	Sources  depgraph.CompilationUnit `json:"sources"`
}

// Settings is the "settings" object of the standard JSON input.
type Settings struct {
	Optimizer       Optimizer                      `json:"optimizer"`
	OutputSelection map[string]map[string][]string `json:"outputSelection"`
	Remappings      []string                       `json:"remappings,omitempty"`
}

// Optimizer toggles the optimizer.
type Optimizer struct {
	Enabled bool `json:"enabled"`
}

// NewInput builds the input for one validation pass. Only metadata is
// requested since the pass is interested in errors alone.
func NewInput(sources depgraph.CompilationUnit, remappings []string) Input {
	return Input{
		Language: "Solidity",
		Settings: Settings{
			Optimizer: Optimizer{Enabled: true},
			OutputSelection: map[string]map[string][]string{
				"*": {"*": {"metadata"}},
			},
			Remappings: remappings,
		},
		Sources: sources,
	}
}

// HasSource reports whether path is already part of the source set.
func (in Input) HasSource(path string) bool {
	for _, entry := range in.Sources {
		if entry.Path == path {
			return true
		}
	}
	return false
}

// Output is the part of the compiler's standard JSON output the server reads.
type Output struct {
	Errors []diagnostics.CompilerError `json:"errors,omitempty"`
}
