package depgraph

import (
	"path/filepath"
	"sort"
	"strings"
)

// Contract is one Solidity source file taking part in a resolution run.
type Contract struct {
	AbsolutePath string
	Code         string

	imports  []Import
	resolved map[string]string
}

func newContract(absolutePath, code string) *Contract {
	return &Contract{
		AbsolutePath: absolutePath,
		Code:         code,
		imports:      ParseImports([]byte(code)),
		resolved:     make(map[string]string),
	}
}

// Imports returns the raw import specifiers in order of appearance.
func (c *Contract) Imports() []string {
	specifiers := make([]string, 0, len(c.imports))
	for _, imp := range c.imports {
		specifiers = append(specifiers, imp.Path)
	}
	return specifiers
}

// ReplaceDependencyPath records that specifier resolves to absolutePath.
func (c *Contract) ReplaceDependencyPath(specifier, absolutePath string) {
	c.resolved[specifier] = absolutePath
}

// ResolvedImport returns the rewritten path recorded for specifier.
func (c *Contract) ResolvedImport(specifier string) (string, bool) {
	path, ok := c.resolved[specifier]
	return path, ok
}

// ResolvedImports returns a copy of the import table, specifier to absolute path.
func (c *Contract) ResolvedImports() map[string]string {
	table := make(map[string]string, len(c.resolved))
	for k, v := range c.resolved {
		table[k] = v
	}
	return table
}

// CompilerSource returns the code with every rewritten import specifier
// replaced by its resolved path, so the compiler finds it among the sources.
func (c *Contract) CompilerSource() string {
	if len(c.resolved) == 0 {
		return c.Code
	}

	rewrites := make([]Import, 0, len(c.imports))
	for _, imp := range c.imports {
		if _, ok := c.resolved[imp.Path]; ok {
			rewrites = append(rewrites, imp)
		}
	}
	sort.Slice(rewrites, func(i, j int) bool {
		return rewrites[i].Start < rewrites[j].Start
	})

	var sb strings.Builder
	last := 0
	for _, imp := range rewrites {
		sb.WriteString(c.Code[last:imp.Start])
		sb.WriteString(filepath.ToSlash(c.resolved[imp.Path]))
		last = imp.End
	}
	sb.WriteString(c.Code[last:])
	return sb.String()
}

// isRelativeSpecifier reports whether the compiler itself resolves specifier
// against the importing file.
func isRelativeSpecifier(specifier string) bool {
	return strings.HasPrefix(specifier, "./") || strings.HasPrefix(specifier, "../")
}
