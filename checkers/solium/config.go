package solium

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/LegacyCodeHQ/solls/source"
)

// ErrNoStyleConfig is returned when no style config exists above a file.
var ErrNoStyleConfig = errors.New("no style config found")

// StyleConfigNames are the file names searched for, in order, in each directory.
var StyleConfigNames = []string{".soliumrc.json", ".soliumrc.yml", ".soliumrc.yaml"}

// StyleConfig is the parsed linter configuration.
type StyleConfig map[string]interface{}

// IsStyleConfig reports whether path names a style config file.
func IsStyleConfig(path string) bool {
	base := filepath.Base(path)
	for _, name := range StyleConfigNames {
		if base == name {
			return true
		}
	}
	return false
}

// FindStyleConfig returns the nearest style config in dir or one of its parents.
func FindStyleConfig(dir string) (string, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}
	for {
		for _, name := range StyleConfigNames {
			candidate := filepath.Join(dir, name)
			if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
				return candidate, nil
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", ErrNoStyleConfig
		}
		dir = parent
	}
}

// LoadStyleConfig parses the style config at path. JSON files are decoded
// strictly as JSON; anything else as YAML.
func LoadStyleConfig(path string, contentReader source.ContentReader) (StyleConfig, error) {
	content, err := contentReader(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read style config: %w", err)
	}

	config := StyleConfig{}
	if strings.EqualFold(filepath.Ext(path), ".json") {
		err = json.Unmarshal(content, &config)
	} else {
		err = yaml.Unmarshal(content, &config)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse style config %s: %w", path, err)
	}
	return config, nil
}
