package formatters

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/LegacyCodeHQ/solls/depgraph"
)

// DOTFormatter formats dependency graphs as Graphviz DOT.
type DOTFormatter struct{}

// Format converts the dependency graph to Graphviz DOT format. Nodes and
// edges are emitted in sorted order; edges inside an import cycle are red.
func (f *DOTFormatter) Format(g depgraph.DependencyGraph, opts FormatOptions) (string, error) {
	var sb strings.Builder
	sb.WriteString("digraph dependencies {\n")
	sb.WriteString("  rankdir=LR;\n")
	sb.WriteString("  node [shape=box];\n")

	if opts.Label != "" {
		sb.WriteString(fmt.Sprintf("  label=%q;\n", opts.Label))
		sb.WriteString("  labelloc=t;\n")
		sb.WriteString("  labeljust=l;\n")
		sb.WriteString("  fontsize=10;\n")
		sb.WriteString("  fontname=Courier;\n")
	}
	sb.WriteString("\n")

	sources := sortedSources(g)
	for _, source := range sources {
		name := nodeName(source, opts)
		sb.WriteString(fmt.Sprintf("  %q [label=%q, style=filled, fillcolor=%s];\n", name, filepath.Base(source), nodeColor(source, opts)))
	}
	if len(sources) > 0 {
		sb.WriteString("\n")
	}

	membership := cycleMembership(opts.Cycles)
	for _, source := range sources {
		for _, dep := range g[source] {
			sb.WriteString(fmt.Sprintf("  %q -> %q", nodeName(source, opts), nodeName(dep, opts)))
			if inSameCycle(membership, source, dep) {
				sb.WriteString(" [color=red]")
			}
			sb.WriteString(";\n")
		}
	}

	sb.WriteString("}\n")
	return sb.String(), nil
}

func nodeColor(path string, opts FormatOptions) string {
	switch {
	case depgraph.IsTestFile(path):
		return "lightgreen"
	case opts.PackagesDir != "" && strings.HasPrefix(path, opts.PackagesDir+string(filepath.Separator)):
		return "lightblue"
	default:
		return "white"
	}
}

func inSameCycle(membership map[string]int, from, to string) bool {
	a, ok := membership[from]
	if !ok {
		return false
	}
	b, ok := membership[to]
	return ok && a == b
}
