package formatters

import (
	"runtime"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LegacyCodeHQ/solls/depgraph"
)

func sampleGraph(t *testing.T) (depgraph.DependencyGraph, FormatOptions) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("unix paths")
	}
	g := depgraph.DependencyGraph{
		"/p/A.sol":                      {"/p/B.sol", "/p/lib/forge-std/src/Test.sol"},
		"/p/B.sol":                      {"/p/C.sol"},
		"/p/C.sol":                      {"/p/B.sol"},
		"/p/test/A.t.sol":               {"/p/A.sol"},
		"/p/lib/forge-std/src/Test.sol": {},
	}
	opts := FormatOptions{
		Label:       "A.sol",
		Root:        "/p",
		PackagesDir: "/p/lib",
		Cycles:      [][]string{{"/p/B.sol", "/p/C.sol"}},
	}
	return g, opts
}

func TestDOTFormatter_Golden(t *testing.T) {
	g, opts := sampleGraph(t)

	output, err := (&DOTFormatter{}).Format(g, opts)
	require.NoError(t, err)

	gold := goldie.New(t)
	gold.Assert(t, "dependency_graph", []byte(output))
}

func TestDOTFormatter_EmptyGraph(t *testing.T) {
	output, err := (&DOTFormatter{}).Format(depgraph.DependencyGraph{}, FormatOptions{})

	require.NoError(t, err)
	assert.Equal(t, "digraph dependencies {\n  rankdir=LR;\n  node [shape=box];\n\n}\n", output)
}

func TestJSONFormatter_UsesRelativeNames(t *testing.T) {
	g, opts := sampleGraph(t)

	output, err := (&JSONFormatter{}).Format(g, opts)

	require.NoError(t, err)
	assert.JSONEq(t, `{
		"A.sol": ["B.sol", "lib/forge-std/src/Test.sol"],
		"B.sol": ["C.sol"],
		"C.sol": ["B.sol"],
		"test/A.t.sol": ["A.sol"],
		"lib/forge-std/src/Test.sol": []
	}`, output)
}

func TestNewFormatter(t *testing.T) {
	f, err := NewFormatter(OutputFormatDOT)
	require.NoError(t, err)
	assert.IsType(t, &DOTFormatter{}, f)

	f, err = NewFormatter(OutputFormatMermaid)
	require.NoError(t, err)
	assert.IsType(t, &MermaidFormatter{}, f)

	_, err = NewFormatter("plantuml")
	assert.Error(t, err)
}

func TestMermaidFormatter_Golden(t *testing.T) {
	g, opts := sampleGraph(t)

	output, err := (&MermaidFormatter{}).Format(g, opts)
	require.NoError(t, err)

	gold := goldie.New(t)
	gold.Assert(t, "dependency_graph_mermaid", []byte(output))
}

func TestMermaidFormatter_EscapesQuotesAndSkipsStylesWhenPlain(t *testing.T) {
	g := depgraph.DependencyGraph{
		"/p/say\"hi\".sol": {"/p/B.sol"},
		"/p/B.sol":         {},
	}

	output, err := (&MermaidFormatter{}).Format(g, FormatOptions{Root: "/p"})

	require.NoError(t, err)
	assert.Equal(t, "flowchart LR\n    n0[\"B.sol\"]\n    n1[\"say#quot;hi#quot;.sol\"]\n\n    n1 --> n0\n", output)
}

func TestMermaidFormatter_GenerateURL(t *testing.T) {
	link := (&MermaidFormatter{}).GenerateURL("flowchart LR\n")

	assert.True(t, strings.HasPrefix(link, "https://mermaid.live/edit#base64:"))
}

func TestNodeName_OutsideRootStaysAbsolute(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("unix paths")
	}

	assert.Equal(t, "/elsewhere/X.sol", nodeName("/elsewhere/X.sol", FormatOptions{Root: "/p"}))
	assert.Equal(t, "src/X.sol", nodeName("/p/src/X.sol", FormatOptions{Root: "/p"}))
}
