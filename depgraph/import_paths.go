package depgraph

import "sort"

// ImportPaths returns the subgraph of every contract lying on an import
// chain from entry to target, which explains why target is part of the
// compilation unit of entry. The result is empty when target is not
// reachable from entry.
func ImportPaths(graph DependencyGraph, entry, target string) DependencyGraph {
	importers := make(map[string][]string)
	for from, deps := range graph {
		for _, to := range deps {
			importers[to] = append(importers[to], from)
		}
	}

	fromEntry := reachable(entry, func(node string) []string { return graph[node] })
	if !fromEntry[target] {
		return DependencyGraph{}
	}
	toTarget := reachable(target, func(node string) []string { return importers[node] })

	onPath := make(map[string]bool)
	for node := range fromEntry {
		if toTarget[node] {
			onPath[node] = true
		}
	}

	result := make(DependencyGraph, len(onPath))
	for node := range onPath {
		deps := []string{}
		for _, dep := range graph[node] {
			if onPath[dep] {
				deps = append(deps, dep)
			}
		}
		sort.Strings(deps)
		result[node] = deps
	}
	return result
}

// reachable returns start and every node reachable from it, breadth first.
func reachable(start string, next func(string) []string) map[string]bool {
	seen := map[string]bool{start: true}
	queue := []string{start}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		for _, neighbor := range next(current) {
			if !seen[neighbor] {
				seen[neighbor] = true
				queue = append(queue, neighbor)
			}
		}
	}
	return seen
}
