package validation

import (
	"path/filepath"
	"strings"

	"github.com/LegacyCodeHQ/solls/checkers/solium"
)

// IsProjectConfig reports whether a change to path can alter validation
// results of unchanged documents.
func IsProjectConfig(path string) bool {
	if solium.IsStyleConfig(path) {
		return true
	}
	switch filepath.Base(path) {
	case "remappings.txt", "foundry.toml":
		return true
	}
	return strings.HasPrefix(filepath.Base(path), ".solls.")
}
