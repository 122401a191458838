package formatters

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/url"
	"sort"
	"strings"

	"github.com/LegacyCodeHQ/solls/depgraph"
)

// MermaidFormatter formats dependency graphs as Mermaid.js flowcharts.
type MermaidFormatter struct{}

// Format converts the dependency graph to a Mermaid.js flowchart. Test
// contracts and package contracts get their own classes; cycle members and
// the edges between them are drawn in red.
func (f *MermaidFormatter) Format(g depgraph.DependencyGraph, opts FormatOptions) (string, error) {
	var sb strings.Builder

	if opts.Label != "" {
		sb.WriteString("---\n")
		sb.WriteString(fmt.Sprintf("title: %s\n", opts.Label))
		sb.WriteString("---\n")
	}
	sb.WriteString("flowchart LR\n")

	for i, cycle := range opts.Cycles {
		names := make([]string, 0, len(cycle))
		for _, path := range cycle {
			names = append(names, nodeName(path, opts))
		}
		sort.Strings(names)
		sb.WriteString(fmt.Sprintf("%%%% C%d: %s\n", i+1, strings.Join(names, ", ")))
	}

	// Mermaid node IDs can't have dots or slashes.
	sources := sortedSources(g)
	nodeIDs := make(map[string]string, len(sources))
	for i, source := range sources {
		nodeIDs[source] = fmt.Sprintf("n%d", i)
	}

	for _, source := range sources {
		label := strings.ReplaceAll(nodeName(source, opts), "\"", "#quot;")
		sb.WriteString(fmt.Sprintf("    %s[\"%s\"]\n", nodeIDs[source], label))
	}

	membership := cycleMembership(opts.Cycles)
	var edges strings.Builder
	var cycleEdges []int
	edgeIndex := 0
	for _, source := range sources {
		for _, dep := range g[source] {
			depID, ok := nodeIDs[dep]
			if !ok {
				continue
			}
			edges.WriteString(fmt.Sprintf("    %s --> %s\n", nodeIDs[source], depID))
			if inSameCycle(membership, source, dep) {
				cycleEdges = append(cycleEdges, edgeIndex)
			}
			edgeIndex++
		}
	}
	if edgeIndex > 0 {
		sb.WriteString("\n")
		sb.WriteString(edges.String())
	}

	var testNodes, packageNodes, cycleNodes []string
	for _, source := range sources {
		switch nodeColor(source, opts) {
		case "lightgreen":
			testNodes = append(testNodes, nodeIDs[source])
		case "lightblue":
			packageNodes = append(packageNodes, nodeIDs[source])
		}
		if _, ok := membership[source]; ok {
			cycleNodes = append(cycleNodes, nodeIDs[source])
		}
	}

	var styles strings.Builder
	if len(testNodes) > 0 {
		styles.WriteString("    classDef testFile fill:#90EE90,stroke:#228B22,color:#000000\n")
	}
	if len(packageNodes) > 0 {
		styles.WriteString("    classDef packageFile fill:#ADD8E6,stroke:#4682B4,color:#000000\n")
	}
	if len(testNodes) > 0 {
		styles.WriteString(fmt.Sprintf("    class %s testFile\n", strings.Join(testNodes, ",")))
	}
	if len(packageNodes) > 0 {
		styles.WriteString(fmt.Sprintf("    class %s packageFile\n", strings.Join(packageNodes, ",")))
	}
	for _, id := range cycleNodes {
		styles.WriteString(fmt.Sprintf("    style %s stroke:#d62728,stroke-width:3px\n", id))
	}
	for _, idx := range cycleEdges {
		styles.WriteString(fmt.Sprintf("    linkStyle %d stroke:#d62728,stroke-width:3px,stroke-dasharray: 5 5\n", idx))
	}
	if styles.Len() > 0 {
		sb.WriteString("\n")
		sb.WriteString(styles.String())
	}

	return sb.String(), nil
}

// GenerateURL creates a mermaid.live URL with the diagram embedded.
func (f *MermaidFormatter) GenerateURL(output string) string {
	payload := map[string]interface{}{
		"code": output,
		"mermaid": map[string]interface{}{
			"theme": "default",
		},
		"autoSync":      true,
		"updateDiagram": true,
	}

	jsonBytes, err := json.Marshal(payload)
	if err != nil {
		return fmt.Sprintf("https://mermaid.live/edit#%s", url.PathEscape(output))
	}

	encoded := base64.URLEncoding.EncodeToString(jsonBytes)
	return fmt.Sprintf("https://mermaid.live/edit#base64:%s", encoded)
}
