package formatters

import (
	"encoding/json"

	"github.com/LegacyCodeHQ/solls/depgraph"
)

// JSONFormatter formats dependency graphs as JSON.
type JSONFormatter struct{}

// Format converts the dependency graph to a JSON object mapping each node
// name to the names it imports.
func (f *JSONFormatter) Format(g depgraph.DependencyGraph, opts FormatOptions) (string, error) {
	named := make(map[string][]string, len(g))
	for source, deps := range g {
		names := make([]string, 0, len(deps))
		for _, dep := range deps {
			names = append(names, nodeName(dep, opts))
		}
		named[nodeName(source, opts)] = names
	}

	data, err := json.MarshalIndent(named, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}
