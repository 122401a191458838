package packages

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/LegacyCodeHQ/solls/source"
)

// Options controls how a Project discovers packages.
type Options struct {
	// PackagesDirectory is the directory, relative to the root, holding installed packages.
	PackagesDirectory string
	// ContractsDirectory is the sources directory assumed for packages that
	// contain one and do not declare their own.
	ContractsDirectory string
	// Remappings are explicit compiler remapping rules; they take precedence
	// over remappings discovered on disk.
	Remappings []Remapping
	// ContentReader reads manifests. Defaults to the filesystem.
	ContentReader source.ContentReader
}

// Project is the resolution context for one root directory.
type Project struct {
	Root        string
	PackagesDir string
	Remappings  []Remapping
	// Warnings lists manifests that could not be used. They do not stop
	// resolution.
	Warnings []error

	packages map[string]*Package
}

// NewProject scans root for installed packages and remapping manifests. A
// missing packages directory yields a project without packages. An
// unreadable foundry.toml is recorded in Warnings and its remappings skipped.
func NewProject(root string, opts Options) (*Project, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve project root %s: %w", root, err)
	}

	contentReader := opts.ContentReader
	if contentReader == nil {
		contentReader = source.FilesystemContentReader()
	}
	packagesDirectory := opts.PackagesDirectory
	if packagesDirectory == "" {
		packagesDirectory = "lib"
	}

	project := &Project{
		Root:        absRoot,
		PackagesDir: filepath.Join(absRoot, packagesDirectory),
		packages:    make(map[string]*Package),
	}

	remappings := make([]Remapping, 0, len(opts.Remappings))
	for _, r := range opts.Remappings {
		remappings = append(remappings, r.absoluteTarget(absRoot))
	}

	profile, _, err := readFoundryProfile(absRoot, contentReader)
	if err != nil {
		project.Warnings = append(project.Warnings, err)
	}
	remappings = append(remappings, readRemappings(absRoot, profile, contentReader)...)
	project.Remappings = dedupeRemappings(remappings)

	if err := project.discoverPackages(opts.ContractsDirectory, contentReader); err != nil {
		return nil, err
	}

	return project, nil
}

func (p *Project) discoverPackages(contractsDirectory string, contentReader source.ContentReader) error {
	entries, err := os.ReadDir(p.PackagesDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read packages directory %s: %w", p.PackagesDir, err)
	}

	for _, entry := range entries {
		if !entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}

		if strings.HasPrefix(entry.Name(), "@") {
			scopeDir := filepath.Join(p.PackagesDir, entry.Name())
			scoped, err := os.ReadDir(scopeDir)
			if err != nil {
				continue
			}
			for _, child := range scoped {
				if child.IsDir() {
					p.addPackage(entry.Name()+"/"+child.Name(), filepath.Join(scopeDir, child.Name()), contractsDirectory, contentReader)
				}
			}
			continue
		}

		p.addPackage(entry.Name(), filepath.Join(p.PackagesDir, entry.Name()), contractsDirectory, contentReader)
	}

	return nil
}

func (p *Project) addPackage(name, root, contractsDirectory string, contentReader source.ContentReader) {
	pkg := &Package{Name: name, Root: root}

	profile, hasManifest, err := readFoundryProfile(root, contentReader)
	if err == nil && hasManifest {
		pkg.SourcesDir = profile.Src
	} else if contractsDirectory != "" && isDir(filepath.Join(root, contractsDirectory)) {
		pkg.SourcesDir = contractsDirectory
	}
	pkg.Remappings = readRemappings(root, profile, contentReader)

	p.packages[name] = pkg
}

// Packages returns discovered packages sorted by name.
func (p *Project) Packages() []*Package {
	result := make([]*Package, 0, len(p.packages))
	for _, pkg := range p.packages {
		result = append(result, pkg)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Name < result[j].Name
	})
	return result
}

// FindPackage returns the package whose name leads the import specifier.
func (p *Project) FindPackage(specifier string) (*Package, bool) {
	pkg, ok := p.packages[packageNameOf(specifier)]
	return pkg, ok
}

// Resolve maps a non-local import specifier to an absolute path. Explicit
// remappings are tried before package lookup. Unknown specifiers report false.
func (p *Project) Resolve(specifier string) (string, bool) {
	if remapping, ok := longestMatch(p.Remappings, specifier); ok {
		return filepath.Clean(filepath.FromSlash(remapping.Apply(specifier))), true
	}

	if pkg, ok := p.FindPackage(specifier); ok {
		return pkg.ResolveImport(specifier), true
	}

	return "", false
}

// RemappingStrings renders the project remappings for the compiler input.
func (p *Project) RemappingStrings() []string {
	result := make([]string, 0, len(p.Remappings))
	for _, r := range p.Remappings {
		result = append(result, r.String())
	}
	return result
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
