package packages

import (
	"path/filepath"
	"strings"
)

// Package is an externally managed dependency installed under the project's
// packages directory.
type Package struct {
	// Name is the import prefix of the package, e.g. "forge-std" or "@openzeppelin/contracts".
	Name string
	// Root is the absolute directory of the package.
	Root string
	// SourcesDir is the directory, relative to Root, that package imports resolve into.
	SourcesDir string
	// Remappings apply to the part of an import that follows the package name.
	// Targets are absolute.
	Remappings []Remapping
}

// ResolveImport maps an import specifier that starts with the package name to
// an absolute path inside the package.
func (p *Package) ResolveImport(specifier string) string {
	remainder := strings.TrimPrefix(strings.TrimPrefix(specifier, p.Name), "/")

	if remapping, ok := longestMatch(p.Remappings, remainder); ok {
		return filepath.Clean(filepath.FromSlash(remapping.Apply(remainder)))
	}

	if p.SourcesDir != "" {
		sourcesPrefix := filepath.ToSlash(filepath.Clean(p.SourcesDir)) + "/"
		if !strings.HasPrefix(remainder, sourcesPrefix) {
			return filepath.Join(p.Root, filepath.FromSlash(p.SourcesDir), filepath.FromSlash(remainder))
		}
	}

	return filepath.Join(p.Root, filepath.FromSlash(remainder))
}

// packageNameOf returns the leading package segment(s) of an import specifier.
// Scoped names such as "@scope/name" span two segments.
func packageNameOf(specifier string) string {
	segments := strings.SplitN(specifier, "/", 3)
	if strings.HasPrefix(segments[0], "@") && len(segments) > 1 {
		return segments[0] + "/" + segments[1]
	}
	return segments[0]
}
