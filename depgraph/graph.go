package depgraph

import (
	"sort"

	graphlib "github.com/dominikbraun/graph"
)

// Graph returns the import graph of the collection. Edges point from the
// importing contract to the imported one.
func (c *Collection) Graph() graphlib.Graph[string, string] {
	return c.graph
}

// DependencyGraph returns the import graph as sorted adjacency lists.
func (c *Collection) DependencyGraph() (DependencyGraph, error) {
	adjacency, err := c.graph.AdjacencyMap()
	if err != nil {
		return nil, err
	}

	graph := make(DependencyGraph, len(adjacency))
	for from, targets := range adjacency {
		deps := make([]string, 0, len(targets))
		for to := range targets {
			deps = append(deps, to)
		}
		sort.Strings(deps)
		graph[from] = deps
	}
	return graph, nil
}

// Cycles returns the groups of contracts that import each other, each group
// sorted, groups ordered by their first member.
func (c *Collection) Cycles() ([][]string, error) {
	components, err := graphlib.StronglyConnectedComponents(c.graph)
	if err != nil {
		return nil, err
	}

	var cycles [][]string
	for _, component := range components {
		if len(component) < 2 {
			continue
		}
		members := append([]string(nil), component...)
		sort.Strings(members)
		cycles = append(cycles, members)
	}
	sort.Slice(cycles, func(i, j int) bool {
		return cycles[i][0] < cycles[j][0]
	})
	return cycles, nil
}
