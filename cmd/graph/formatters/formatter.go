package formatters

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/LegacyCodeHQ/solls/depgraph"
)

// FormatOptions contains optional parameters for formatting dependency graphs.
type FormatOptions struct {
	// Label is an optional title for the graph
	Label string
	// Root makes node names relative when set
	Root string
	// PackagesDir marks nodes inside installed packages
	PackagesDir string
	// Cycles are the import cycles of the graph, as returned by Collection.Cycles
	Cycles [][]string
}

// Formatter is the interface that all graph formatters must implement.
type Formatter interface {
	// Format converts a dependency graph to a formatted string representation.
	Format(g depgraph.DependencyGraph, opts FormatOptions) (string, error)
}

// NewFormatter creates a Formatter for the specified format type.
func NewFormatter(format OutputFormat) (Formatter, error) {
	switch format {
	case OutputFormatDOT:
		return &DOTFormatter{}, nil
	case OutputFormatJSON:
		return &JSONFormatter{}, nil
	case OutputFormatMermaid:
		return &MermaidFormatter{}, nil
	default:
		return nil, fmt.Errorf("unknown format: %s (valid options: dot, json, mermaid, sources)", format)
	}
}

// nodeName is the display name of a contract path.
func nodeName(path string, opts FormatOptions) string {
	if opts.Root != "" {
		if rel, err := filepath.Rel(opts.Root, path); err == nil && !strings.HasPrefix(rel, "..") {
			return filepath.ToSlash(rel)
		}
	}
	return filepath.ToSlash(path)
}

func sortedSources(g depgraph.DependencyGraph) []string {
	sources := make([]string, 0, len(g))
	for source := range g {
		sources = append(sources, source)
	}
	sort.Strings(sources)
	return sources
}

// cycleMembership maps each path to the index of the cycle containing it.
func cycleMembership(cycles [][]string) map[string]int {
	membership := make(map[string]int)
	for i, cycle := range cycles {
		for _, path := range cycle {
			membership[path] = i
		}
	}
	return membership
}
