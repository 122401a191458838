package packages

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/LegacyCodeHQ/solls/source"
)

const (
	foundryManifest    = "foundry.toml"
	remappingsManifest = "remappings.txt"
	defaultProfile     = "default"
)

// foundryManifestFile mirrors the parts of foundry.toml that affect import resolution.
type foundryManifestFile struct {
	Profile map[string]foundryProfile `toml:"profile"`
}

type foundryProfile struct {
	Src        string   `toml:"src"`
	Libs       []string `toml:"libs"`
	Remappings []string `toml:"remappings"`
}

// readFoundryProfile reads the default profile of dir/foundry.toml.
// The boolean is false when the manifest does not exist.
func readFoundryProfile(dir string, contentReader source.ContentReader) (foundryProfile, bool, error) {
	manifestPath := filepath.Join(dir, foundryManifest)
	data, err := contentReader(manifestPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return foundryProfile{}, false, nil
		}
		return foundryProfile{}, false, fmt.Errorf("reading %s: %w", manifestPath, err)
	}

	var manifest foundryManifestFile
	if err := toml.Unmarshal(data, &manifest); err != nil {
		return foundryProfile{}, false, fmt.Errorf("parsing %s: %w", manifestPath, err)
	}

	profile := manifest.Profile[defaultProfile]
	if profile.Src == "" {
		profile.Src = "src"
	}
	return profile, true, nil
}

// readRemappings collects remappings declared by dir/remappings.txt followed by
// the foundry profile, with relative targets resolved against dir.
func readRemappings(dir string, profile foundryProfile, contentReader source.ContentReader) []Remapping {
	var remappings []Remapping

	if data, err := contentReader(filepath.Join(dir, remappingsManifest)); err == nil {
		remappings = append(remappings, ParseRemappings(data)...)
	}

	for _, rule := range profile.Remappings {
		remapping, err := ParseRemapping(rule)
		if err != nil {
			continue
		}
		remappings = append(remappings, remapping)
	}

	for i := range remappings {
		remappings[i] = remappings[i].absoluteTarget(dir)
	}
	return remappings
}
