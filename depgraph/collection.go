package depgraph

import (
	"path/filepath"

	graphlib "github.com/dominikbraun/graph"

	"github.com/LegacyCodeHQ/solls/source"
)

// ImportResolver maps a non-local import specifier to an absolute path.
// packages.Project is the production implementation.
type ImportResolver interface {
	Resolve(specifier string) (string, bool)
}

// Collection is the deduplicated, insertion-ordered set of contracts reachable
// from an entry file.
type Collection struct {
	contracts     map[string]*Contract
	order         []string
	graph         graphlib.Graph[string, string]
	contentReader source.ContentReader
}

// NewCollection creates an empty collection. A nil contentReader reads from disk.
func NewCollection(contentReader source.ContentReader) *Collection {
	if contentReader == nil {
		contentReader = source.FilesystemContentReader()
	}
	return &Collection{
		contracts:     make(map[string]*Contract),
		graph:         graphlib.New(graphlib.StringHash, graphlib.Directed()),
		contentReader: contentReader,
	}
}

// ContainsContract reports whether path has already been added.
func (c *Collection) ContainsContract(path string) bool {
	_, ok := c.contracts[filepath.Clean(path)]
	return ok
}

// Contract returns the contract registered for path.
func (c *Collection) Contract(path string) (*Contract, bool) {
	contract, ok := c.contracts[filepath.Clean(path)]
	return contract, ok
}

// Contracts returns contracts in the order they were discovered.
func (c *Collection) Contracts() []*Contract {
	result := make([]*Contract, 0, len(c.order))
	for _, path := range c.order {
		result = append(result, c.contracts[path])
	}
	return result
}

// Len returns the number of contracts in the collection.
func (c *Collection) Len() int {
	return len(c.order)
}

// AddAndResolve registers the contract at path and, depth first, every
// contract reachable through its imports. Paths already present are not
// visited again, so diamond and cyclic imports terminate. Imports that cannot
// be read or resolved are left for the compiler to report.
func (c *Collection) AddAndResolve(path, code string, resolver ImportResolver) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return
	}

	contract, added := c.addContract(absPath, code)
	if !added {
		return
	}

	dir := filepath.Dir(absPath)
	for _, specifier := range contract.Imports() {
		if localPath, content, ok := c.readLocalImport(dir, specifier); ok {
			if !c.ContainsContract(localPath) {
				c.AddAndResolve(localPath, string(content), resolver)
			}
			if c.ContainsContract(localPath) {
				c.addEdge(absPath, localPath)
				if !isRelativeSpecifier(specifier) && localPath != filepath.Clean(specifier) {
					contract.ReplaceDependencyPath(specifier, localPath)
				}
			}
			continue
		}

		if isRelativeSpecifier(specifier) || resolver == nil {
			continue
		}

		c.addDependencyImport(contract, specifier, resolver)
	}
}

// addDependencyImport resolves a package import and rewrites the referring
// contract's import table once the target is present.
func (c *Collection) addDependencyImport(contract *Contract, specifier string, resolver ImportResolver) {
	depPath, ok := resolver.Resolve(specifier)
	if !ok {
		return
	}
	depPath = filepath.Clean(depPath)

	if !c.ContainsContract(depPath) {
		content, err := c.contentReader(depPath)
		if err != nil {
			return
		}
		c.AddAndResolve(depPath, string(content), resolver)
	}

	if c.ContainsContract(depPath) {
		c.addEdge(contract.AbsolutePath, depPath)
		contract.ReplaceDependencyPath(specifier, depPath)
	}
}

// readLocalImport resolves specifier against dir and reads it. Relative
// specifiers are always local; other specifiers are local only if the file exists.
func (c *Collection) readLocalImport(dir, specifier string) (string, []byte, bool) {
	candidate := filepath.FromSlash(specifier)
	if !filepath.IsAbs(candidate) {
		candidate = filepath.Join(dir, candidate)
	}
	candidate = filepath.Clean(candidate)

	if c.ContainsContract(candidate) {
		return candidate, nil, true
	}

	content, err := c.contentReader(candidate)
	if err != nil {
		return "", nil, false
	}
	return candidate, content, true
}

func (c *Collection) addContract(absPath, code string) (*Contract, bool) {
	absPath = filepath.Clean(absPath)
	if _, ok := c.contracts[absPath]; ok {
		return nil, false
	}

	contract := newContract(absPath, code)
	c.contracts[absPath] = contract
	c.order = append(c.order, absPath)
	_ = c.graph.AddVertex(absPath, graphlib.VertexAttribute("label", filepath.Base(absPath)))

	return contract, true
}

func (c *Collection) addEdge(from, to string) {
	if from == to {
		return
	}
	// Both vertices are registered before any edge between them is added, so
	// the only possible error is ErrEdgeAlreadyExists.
	_ = c.graph.AddEdge(from, to)
}
