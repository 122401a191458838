package watch

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LegacyCodeHQ/solls/checkers/solc"
	"github.com/LegacyCodeHQ/solls/checkers/solium"
	"github.com/LegacyCodeHQ/solls/config"
	"github.com/LegacyCodeHQ/solls/internal/app"
	"github.com/LegacyCodeHQ/solls/validation"
)

type countingCompiler struct {
	compiled []string
}

func (c *countingCompiler) Compile(_ context.Context, input solc.Input, _ solc.ImportCallback) (solc.Output, error) {
	paths := input.Sources.Paths()
	if len(paths) > 0 {
		c.compiled = append(c.compiled, paths[0])
	}
	return solc.Output{}, nil
}

type noLinter struct{}

func (noLinter) LinterFor(string) solium.Linter { return nil }

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func newTestWorkspace(t *testing.T) (*workspace, *countingCompiler, *bytes.Buffer) {
	t.Helper()
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "src", "A.sol"), "contract A {}\n")
	writeFile(t, filepath.Join(root, "src", "nested", "B.sol"), "contract B {}\n")
	writeFile(t, filepath.Join(root, "lib", "oz", "src", "C.sol"), "contract C {}\n")
	writeFile(t, filepath.Join(root, "node_modules", "x", "D.sol"), "contract D {}\n")
	writeFile(t, filepath.Join(root, "README.md"), "# project\n")

	var out bytes.Buffer
	printer := app.NewPrinter(&out, &out)
	printer.ReportClean = true

	compiler := &countingCompiler{}
	orchestrator := validation.New(validation.Options{
		WorkspaceRoot: root,
		Compiler:      compiler,
		Linters:       noLinter{},
		Publisher:     printer,
		Notifier:      printer,
	})

	w := newWorkspace(root, orchestrator, nil)
	w.skipDir(filepath.Join(root, "lib"))
	require.NoError(t, w.scan())
	return w, compiler, &out
}

func TestWorkspace_ScanSkipsPackagesAndIgnoredDirectories(t *testing.T) {
	w, _, _ := newTestWorkspace(t)

	assert.Equal(t, []string{
		filepath.Join(w.root, "src", "A.sol"),
		filepath.Join(w.root, "src", "nested", "B.sol"),
	}, w.paths())
}

func TestWorkspace_ValidateAllPrintsEveryContract(t *testing.T) {
	w, compiler, out := newTestWorkspace(t)

	w.validateAll(context.Background(), validation.TriggerOpen)

	assert.Len(t, compiler.compiled, 2)
	assert.Equal(t, "src/A.sol: no problems\nsrc/nested/B.sol: no problems\n", out.String())
}

func TestWorkspace_ContractChangedValidatesNewFile(t *testing.T) {
	w, compiler, _ := newTestWorkspace(t)
	path := filepath.Join(w.root, "src", "New.sol")
	writeFile(t, path, "contract New {}\n")

	w.contractChanged(context.Background(), path)

	assert.Equal(t, []string{path}, compiler.compiled)
	assert.Contains(t, w.paths(), path)
}

func TestWorkspace_ContractDeletedClearsDiagnostics(t *testing.T) {
	w, compiler, out := newTestWorkspace(t)
	path := filepath.Join(w.root, "src", "A.sol")
	require.NoError(t, os.Remove(path))

	w.contractChanged(context.Background(), path)

	assert.Empty(t, compiler.compiled)
	assert.NotContains(t, w.paths(), path)
	assert.Equal(t, "src/A.sol: no problems\n", out.String())
}

func TestWorkspace_PackageEditRevalidatesEverything(t *testing.T) {
	w, compiler, _ := newTestWorkspace(t)

	w.contractChanged(context.Background(), filepath.Join(w.root, "lib", "oz", "src", "C.sol"))

	assert.Len(t, compiler.compiled, 2)
	assert.NotContains(t, w.paths(), filepath.Join(w.root, "lib", "oz", "src", "C.sol"))
}

func TestWorkspace_PackageEditUsesConfigChangePolicy(t *testing.T) {
	w, compiler, _ := newTestWorkspace(t)
	w.orchestrator.SetSettings(config.Settings{
		ValidateOnChange:       config.PolicyAll,
		ValidateOnConfigChange: config.PolicyNone,
	})

	w.contractChanged(context.Background(), filepath.Join(w.root, "lib", "oz", "src", "C.sol"))
	assert.Empty(t, compiler.compiled)

	w.orchestrator.SetSettings(config.Settings{
		ValidateOnChange:       config.PolicyNone,
		ValidateOnConfigChange: config.PolicyCompiler,
	})

	w.contractChanged(context.Background(), filepath.Join(w.root, "lib", "oz", "src", "C.sol"))
	assert.Len(t, compiler.compiled, 2)
}

func TestWorkspace_ConfigFileChangeReloadsSettings(t *testing.T) {
	w, compiler, _ := newTestWorkspace(t)

	var applied []config.Settings
	w.reload = func() (config.Settings, error) {
		return config.Settings{ValidateOnConfigChange: config.PolicyNone}, nil
	}
	w.apply = func(settings config.Settings) {
		applied = append(applied, settings)
		w.orchestrator.SetSettings(settings)
	}

	w.configChanged(context.Background(), filepath.Join(w.root, ".solls.yaml"))

	require.Len(t, applied, 1)
	assert.Empty(t, compiler.compiled)
}

func TestWorkspace_StyleConfigChangeRevalidatesWithoutReload(t *testing.T) {
	w, compiler, _ := newTestWorkspace(t)
	w.reload = func() (config.Settings, error) {
		t.Fatal("reload must not run for a style config change")
		return config.Settings{}, nil
	}

	w.configChanged(context.Background(), filepath.Join(w.root, ".soliumrc.json"))

	assert.Len(t, compiler.compiled, 2)
}

func TestFlush_ConfigChangeSupersedesContractEdits(t *testing.T) {
	w, compiler, _ := newTestWorkspace(t)
	pending := &pendingChanges{}
	pending.add(changeContract, filepath.Join(w.root, "src", "A.sol"))
	pending.add(changeProjectConfig, filepath.Join(w.root, "remappings.txt"))

	flush(context.Background(), w, pending)

	assert.Len(t, compiler.compiled, 2)
}
