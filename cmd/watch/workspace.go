package watch

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/LegacyCodeHQ/solls/config"
	"github.com/LegacyCodeHQ/solls/internal/logging"
	"github.com/LegacyCodeHQ/solls/validation"
)

// workspace tracks the contracts under a watched root and validates them as
// they change.
type workspace struct {
	root         string
	orchestrator *validation.Orchestrator
	logger       *logging.Logger

	// reload rereads the configuration after a configuration file edit.
	reload func() (config.Settings, error)
	// apply installs reloaded settings.
	apply func(config.Settings)

	mu        sync.Mutex
	contracts map[string]bool
	skip      map[string]bool
}

func newWorkspace(root string, orchestrator *validation.Orchestrator, logger *logging.Logger) *workspace {
	if logger == nil {
		logger = logging.Nop()
	}
	return &workspace{
		root:         root,
		orchestrator: orchestrator,
		logger:       logger,
		contracts:    make(map[string]bool),
		skip:         make(map[string]bool),
	}
}

// skipDir excludes an absolute directory, typically the packages directory,
// from the contract scan.
func (w *workspace) skipDir(dir string) {
	w.skip[filepath.Clean(dir)] = true
}

// scan records every contract under the root.
func (w *workspace) scan() error {
	found := make(map[string]bool)
	err := filepath.WalkDir(w.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		}
		if d.IsDir() {
			if path != w.root && (skippedDirs[d.Name()] || w.skip[filepath.Clean(path)]) {
				return filepath.SkipDir
			}
			return nil
		}
		if isContract(path) {
			found[path] = true
		}
		return nil
	})
	if err != nil {
		return err
	}

	w.mu.Lock()
	w.contracts = found
	w.mu.Unlock()
	return nil
}

// paths returns the tracked contracts sorted.
func (w *workspace) paths() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	paths := make([]string, 0, len(w.contracts))
	for path := range w.contracts {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	return paths
}

// documents reads every tracked contract from disk. Unreadable files are
// dropped from the set.
func (w *workspace) documents() []validation.Document {
	var docs []validation.Document
	for _, path := range w.paths() {
		doc, err := w.document(path)
		if err != nil {
			w.forget(path)
			continue
		}
		docs = append(docs, doc)
	}
	return docs
}

func (w *workspace) document(path string) (validation.Document, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return validation.Document{}, err
	}
	return validation.Document{URI: w.displayName(path), Path: path, Text: string(content)}, nil
}

func (w *workspace) forget(path string) {
	w.mu.Lock()
	delete(w.contracts, path)
	w.mu.Unlock()
}

func (w *workspace) track(path string) {
	w.mu.Lock()
	w.contracts[path] = true
	w.mu.Unlock()
}

// displayName is the root-relative name diagnostics are printed under.
func (w *workspace) displayName(path string) string {
	rel, err := filepath.Rel(w.root, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return path
	}
	return filepath.ToSlash(rel)
}

// validateAll runs one pass per tracked contract.
func (w *workspace) validateAll(ctx context.Context, trigger validation.Trigger) {
	w.orchestrator.ValidateAll(ctx, trigger, w.documents())
}

// contractChanged validates an edited contract, or clears the diagnostics of
// a deleted one. An edit inside an excluded directory is a project change
// and revalidates every contract, since any of them may import it.
func (w *workspace) contractChanged(ctx context.Context, path string) {
	if w.excluded(path) {
		w.validateAll(ctx, validation.TriggerConfigChange)
		return
	}
	doc, err := w.document(path)
	if err != nil {
		w.forget(path)
		w.orchestrator.Close(w.displayName(path))
		return
	}
	w.track(path)
	w.orchestrator.Validate(ctx, validation.TriggerChange, doc)
}

// configChanged reloads the configuration when needed and revalidates
// every contract.
func (w *workspace) configChanged(ctx context.Context, path string) {
	w.logger.Info("project configuration changed", logging.Fields{"file": w.displayName(path)})
	if w.reload != nil && strings.HasPrefix(filepath.Base(path), ".solls.") {
		settings, err := w.reload()
		if err != nil {
			w.logger.Error("failed to reload configuration", logging.Fields{"error": err.Error()})
		} else if w.apply != nil {
			w.apply(settings)
		}
	}
	w.validateAll(ctx, validation.TriggerConfigChange)
}

func (w *workspace) excluded(path string) bool {
	for dir := range w.skip {
		if strings.HasPrefix(path, dir+string(filepath.Separator)) {
			return true
		}
	}
	return false
}

func isContract(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".sol")
}
