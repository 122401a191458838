package packages

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestNewProject_DiscoversPackages(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "lib", "solmate", "src", "tokens", "ERC20.sol"), "")
	writeFile(t, filepath.Join(root, "lib", "plain", "Lib.sol"), "")
	writeFile(t, filepath.Join(root, "lib", "@openzeppelin", "contracts", "token", "ERC20.sol"), "")
	require.NoError(t, os.MkdirAll(filepath.Join(root, "lib", ".git"), 0o755))

	project, err := NewProject(root, Options{ContractsDirectory: "src"})
	require.NoError(t, err)

	var names []string
	for _, pkg := range project.Packages() {
		names = append(names, pkg.Name)
	}
	assert.Equal(t, []string{"@openzeppelin/contracts", "plain", "solmate"}, names)

	resolved, ok := project.Resolve("solmate/tokens/ERC20.sol")
	require.True(t, ok)
	assert.Equal(t, filepath.Join(root, "lib", "solmate", "src", "tokens", "ERC20.sol"), resolved)

	resolved, ok = project.Resolve("plain/Lib.sol")
	require.True(t, ok)
	assert.Equal(t, filepath.Join(root, "lib", "plain", "Lib.sol"), resolved)

	resolved, ok = project.Resolve("@openzeppelin/contracts/token/ERC20.sol")
	require.True(t, ok)
	assert.Equal(t, filepath.Join(root, "lib", "@openzeppelin", "contracts", "token", "ERC20.sol"), resolved)
}

func TestNewProject_MissingPackagesDirectory(t *testing.T) {
	project, err := NewProject(t.TempDir(), Options{PackagesDirectory: "node_modules"})
	require.NoError(t, err)

	assert.Empty(t, project.Packages())
	_, ok := project.Resolve("anything/A.sol")
	assert.False(t, ok)
}

func TestResolve_RemappingTakesPrecedenceOverPackage(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "lib", "oz", "token", "ERC20.sol"), "")
	vendored := filepath.Join(root, "vendor", "oz")

	project, err := NewProject(root, Options{
		Remappings: []Remapping{{Prefix: "oz/", Target: vendored + "/"}},
	})
	require.NoError(t, err)

	resolved, ok := project.Resolve("oz/token/ERC20.sol")
	require.True(t, ok)
	assert.Equal(t, filepath.Join(vendored, "token", "ERC20.sol"), resolved)
}

func TestResolve_LongestPrefixWins(t *testing.T) {
	root := t.TempDir()

	project, err := NewProject(root, Options{
		Remappings: []Remapping{
			{Prefix: "a/", Target: "short/"},
			{Prefix: "a/b/", Target: "long/"},
		},
	})
	require.NoError(t, err)

	resolved, ok := project.Resolve("a/b/C.sol")
	require.True(t, ok)
	assert.Equal(t, filepath.Join(root, "long", "C.sol"), resolved)

	resolved, ok = project.Resolve("a/C.sol")
	require.True(t, ok)
	assert.Equal(t, filepath.Join(root, "short", "C.sol"), resolved)
}

func TestNewProject_ReadsFoundryManifestAndRemappingsFile(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "foundry.toml"), `
[profile.default]
src = "contracts"
remappings = ["ds-test/=lib/ds-test/src/"]
`)
	writeFile(t, filepath.Join(root, "remappings.txt"), "# comment\nforge-std/=lib/forge-std/src/\n")

	project, err := NewProject(root, Options{
		Remappings: []Remapping{{Prefix: "forge-std/", Target: "custom/"}},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{
		"forge-std/=" + filepath.ToSlash(filepath.Join(root, "custom")) + "/",
		"ds-test/=" + filepath.ToSlash(filepath.Join(root, "lib", "ds-test", "src")) + "/",
	}, project.RemappingStrings())
}

func TestNewProject_PackageFoundryManifest(t *testing.T) {
	root := t.TempDir()
	pkgRoot := filepath.Join(root, "lib", "forge-std")
	writeFile(t, filepath.Join(pkgRoot, "foundry.toml"), "[profile.default]\nsrc = \"source\"\n")
	writeFile(t, filepath.Join(pkgRoot, "remappings.txt"), "mocks/=test/mocks/\n")

	project, err := NewProject(root, Options{})
	require.NoError(t, err)

	resolved, ok := project.Resolve("forge-std/Test.sol")
	require.True(t, ok)
	assert.Equal(t, filepath.Join(pkgRoot, "source", "Test.sol"), resolved)

	resolved, ok = project.Resolve("forge-std/mocks/Mock.sol")
	require.True(t, ok)
	assert.Equal(t, filepath.Join(pkgRoot, "test", "mocks", "Mock.sol"), resolved)
}

func TestNewProject_MalformedFoundryManifest(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "foundry.toml"), "[profile.default\nremappings = [\"x/=y/\"]\n")
	writeFile(t, filepath.Join(root, "remappings.txt"), "ds-test/=lib/ds-test/src/\n")
	writeFile(t, filepath.Join(root, "lib", "forge-std", "src", "Test.sol"), "contract Test {}")

	project, err := NewProject(root, Options{
		ContractsDirectory: "src",
		Remappings:         []Remapping{{Prefix: "custom/", Target: "vendor/"}},
	})
	require.NoError(t, err)

	require.Len(t, project.Warnings, 1)
	assert.Contains(t, project.Warnings[0].Error(), "foundry.toml")
	assert.Equal(t, []string{
		"custom/=" + filepath.ToSlash(filepath.Join(root, "vendor")) + "/",
		"ds-test/=" + filepath.ToSlash(filepath.Join(root, "lib", "ds-test", "src")) + "/",
	}, project.RemappingStrings())

	resolved, ok := project.Resolve("forge-std/Test.sol")
	require.True(t, ok)
	assert.Equal(t, filepath.Join(root, "lib", "forge-std", "src", "Test.sol"), resolved)
}
