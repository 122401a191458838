package packages

import (
	"bufio"
	"fmt"
	"path/filepath"
	"strings"
)

// Remapping substitutes an import prefix with a filesystem prefix, written as
// "[context:]prefix=target" on the solc command line.
type Remapping struct {
	Context string
	Prefix  string
	Target  string
}

// ParseRemapping parses a single "prefix=target" rule.
func ParseRemapping(rule string) (Remapping, error) {
	rule = strings.TrimSpace(rule)
	prefix, target, ok := strings.Cut(rule, "=")
	if !ok || prefix == "" {
		return Remapping{}, fmt.Errorf("invalid remapping %q: expected prefix=target", rule)
	}

	var context string
	if ctx, p, found := strings.Cut(prefix, ":"); found {
		context, prefix = ctx, p
	}
	if prefix == "" {
		return Remapping{}, fmt.Errorf("invalid remapping %q: empty prefix", rule)
	}

	return Remapping{Context: context, Prefix: prefix, Target: target}, nil
}

// ParseRemappings parses newline separated rules as found in remappings.txt.
// Blank lines and lines starting with '#' are ignored; malformed lines are skipped.
func ParseRemappings(content []byte) []Remapping {
	var remappings []Remapping

	scanner := bufio.NewScanner(strings.NewReader(string(content)))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		remapping, err := ParseRemapping(line)
		if err != nil {
			continue
		}
		remappings = append(remappings, remapping)
	}

	return remappings
}

// String renders the rule in solc syntax.
func (r Remapping) String() string {
	if r.Context != "" {
		return r.Context + ":" + r.Prefix + "=" + r.Target
	}
	return r.Prefix + "=" + r.Target
}

// Matches reports whether the rule applies to importPath.
func (r Remapping) Matches(importPath string) bool {
	return r.Context == "" && strings.HasPrefix(importPath, r.Prefix)
}

// Apply substitutes the prefix of importPath with the target.
func (r Remapping) Apply(importPath string) string {
	return r.Target + strings.TrimPrefix(importPath, r.Prefix)
}

// absoluteTarget returns a copy of r whose target is absolute, resolving a
// relative target against baseDir. A trailing separator is preserved.
func (r Remapping) absoluteTarget(baseDir string) Remapping {
	target := r.Target
	if target == "" {
		return r
	}

	trailing := strings.HasSuffix(target, "/") || strings.HasSuffix(target, string(filepath.Separator))
	if !filepath.IsAbs(filepath.FromSlash(target)) {
		target = filepath.Join(baseDir, filepath.FromSlash(target))
	} else {
		target = filepath.Clean(filepath.FromSlash(target))
	}
	target = filepath.ToSlash(target)
	if trailing && !strings.HasSuffix(target, "/") {
		target += "/"
	}

	r.Target = target
	return r
}

// longestMatch returns the rule with the longest matching prefix. On equal
// prefix length the earliest rule wins.
func longestMatch(remappings []Remapping, importPath string) (Remapping, bool) {
	best := -1
	for i, r := range remappings {
		if !r.Matches(importPath) {
			continue
		}
		if best < 0 || len(r.Prefix) > len(remappings[best].Prefix) {
			best = i
		}
	}
	if best < 0 {
		return Remapping{}, false
	}
	return remappings[best], true
}

// dedupeRemappings drops later rules whose context and prefix were already declared.
func dedupeRemappings(remappings []Remapping) []Remapping {
	seen := make(map[string]bool)
	result := make([]Remapping, 0, len(remappings))
	for _, r := range remappings {
		key := r.Context + ":" + r.Prefix
		if seen[key] {
			continue
		}
		seen[key] = true
		result = append(result, r)
	}
	return result
}
