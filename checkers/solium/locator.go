package solium

import (
	"os"
	"path/filepath"
)

// ModuleName is the package name of the linter.
const ModuleName = "solium"

// Provider picks the linter to use for a given style config.
type Provider interface {
	LinterFor(styleConfigPath string) Linter
}

// Selector chooses between a linter installed in the workspace and the
// global one. The choice for the workspace is made once, when the selector
// is created; with multiProject set, an installation next to each style
// config takes precedence.
type Selector struct {
	defaultModule string
	local         bool
	multiProject  bool
	newLinter     func(module string) Linter
}

// NewSelector inspects root for a local installation. module is the global
// module to fall back to.
func NewSelector(root, nodePath, module string, multiProject bool) *Selector {
	s := &Selector{
		defaultModule: module,
		multiProject:  multiProject,
		newLinter: func(module string) Linter {
			return NewExecLinter(nodePath, module)
		},
	}
	if s.defaultModule == "" {
		s.defaultModule = ModuleName
	}
	if root != "" {
		if local, ok := LocalModule(root); ok {
			s.defaultModule = local
			s.local = true
		}
	}
	return s
}

// IsLocal reports whether the workspace's own installation is the default.
func (s *Selector) IsLocal() bool {
	return s.local
}

// DefaultModule returns the module used when no closer installation applies.
func (s *Selector) DefaultModule() string {
	return s.defaultModule
}

// ModuleFor returns the module that lints files governed by styleConfigPath.
func (s *Selector) ModuleFor(styleConfigPath string) string {
	if s.multiProject && styleConfigPath != "" {
		if module, ok := NearestModule(filepath.Dir(styleConfigPath)); ok {
			return module
		}
	}
	return s.defaultModule
}

// LinterFor implements Provider.
func (s *Selector) LinterFor(styleConfigPath string) Linter {
	return s.newLinter(s.ModuleFor(styleConfigPath))
}

// LocalModule returns dir/node_modules/solium when it is installed.
func LocalModule(dir string) (string, bool) {
	candidate := filepath.Join(dir, "node_modules", ModuleName)
	info, err := os.Stat(candidate)
	if err != nil || !info.IsDir() {
		return "", false
	}
	return candidate, true
}

// NearestModule looks for an installation in dir and its parents.
func NearestModule(dir string) (string, bool) {
	for {
		if module, ok := LocalModule(dir); ok {
			return module, true
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}
