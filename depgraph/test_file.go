package depgraph

import (
	"path/filepath"
	"strings"
)

// IsTestFile reports whether a contract is a test: Foundry's ".t.sol"
// suffix, or a contract under a "test" directory.
func IsTestFile(filePath string) bool {
	slashed := filepath.ToSlash(filePath)
	if strings.HasSuffix(slashed, ".t.sol") {
		return true
	}
	dir := "/" + strings.TrimPrefix(filepath.ToSlash(filepath.Dir(filePath)), "/") + "/"
	return strings.Contains(dir, "/test/") && strings.HasSuffix(slashed, ".sol")
}
