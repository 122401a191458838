package watch

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/LegacyCodeHQ/solls/internal/logging"
	"github.com/LegacyCodeHQ/solls/validation"
)

const debounceInterval = 300 * time.Millisecond

var skippedDirs = map[string]bool{
	".git":         true,
	"node_modules": true,
	"out":          true,
	"cache":        true,
	"artifacts":    true,
	".idea":        true,
	".vscode":      true,
}

type changeKind int

const (
	changeIgnored changeKind = iota
	changeContract
	changeProjectConfig
)

// classifyChange maps a filesystem event to what it means for validation.
func classifyChange(event fsnotify.Event) changeKind {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return changeIgnored
	}
	switch {
	case isContract(event.Name):
		return changeContract
	case validation.IsProjectConfig(event.Name):
		return changeProjectConfig
	default:
		return changeIgnored
	}
}

// pendingChanges collects the changes seen during one debounce interval.
type pendingChanges struct {
	mu        sync.Mutex
	contracts map[string]bool
	config    string
}

func (p *pendingChanges) add(kind changeKind, path string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	switch kind {
	case changeContract:
		if p.contracts == nil {
			p.contracts = make(map[string]bool)
		}
		p.contracts[path] = true
	case changeProjectConfig:
		p.config = path
	}
}

// take returns and clears the collected changes.
func (p *pendingChanges) take() (contracts []string, config string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for path := range p.contracts {
		contracts = append(contracts, path)
	}
	config = p.config
	p.contracts = nil
	p.config = ""
	return contracts, config
}

// flush validates the collected changes. A configuration change revalidates
// everything, which covers any edited contracts too.
func flush(ctx context.Context, w *workspace, pending *pendingChanges) {
	contracts, config := pending.take()
	if config != "" {
		w.configChanged(ctx, config)
		return
	}
	for _, path := range contracts {
		w.contractChanged(ctx, path)
	}
}

func watchAndValidate(ctx context.Context, w *workspace, logger *logging.Logger) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer watcher.Close()

	if err := addWatchDirs(watcher, w.root); err != nil {
		return fmt.Errorf("failed to watch directories: %w", err)
	}

	pending := &pendingChanges{}
	var debounceTimer *time.Timer

	for {
		select {
		case <-ctx.Done():
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}

			if event.Has(fsnotify.Create) {
				addIfDirectory(watcher, event.Name)
			}

			kind := classifyChange(event)
			if kind == changeIgnored {
				continue
			}
			pending.add(kind, event.Name)

			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(debounceInterval, func() {
				flush(ctx, w, pending)
			})

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watcher error", logging.Fields{"error": err.Error()})
		}
	}
}

func addWatchDirs(watcher *fsnotify.Watcher, root string) error {
	return addWatchDirsWithAdder(root, watcher.Add)
}

func addWatchDirsWithAdder(root string, add func(string) error) error {
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && skippedDirs[d.Name()] {
			return filepath.SkipDir
		}
		if err := add(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
		return nil
	})
}

func addIfDirectory(watcher *fsnotify.Watcher, path string) {
	info, err := os.Stat(path)
	if err != nil {
		return
	}
	if info.IsDir() {
		_ = addWatchDirs(watcher, path)
	}
}
