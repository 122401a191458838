package depgraph

// DependencyGraph maps a contract path to the paths of the contracts it imports.
type DependencyGraph map[string][]string
