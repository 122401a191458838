// Package validation decides when the compiler and the linter run for a
// document and publishes their combined diagnostics.
package validation

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/LegacyCodeHQ/solls/checkers"
	"github.com/LegacyCodeHQ/solls/checkers/solc"
	"github.com/LegacyCodeHQ/solls/checkers/solium"
	"github.com/LegacyCodeHQ/solls/config"
	"github.com/LegacyCodeHQ/solls/depgraph"
	"github.com/LegacyCodeHQ/solls/depgraph/packages"
	"github.com/LegacyCodeHQ/solls/diagnostics"
	"github.com/LegacyCodeHQ/solls/internal/logging"
	"github.com/LegacyCodeHQ/solls/source"
)

// Document is the editor's view of one file.
type Document struct {
	URI  string
	Path string
	Text string
}

// Publisher delivers the complete diagnostic set of a document.
type Publisher interface {
	PublishDiagnostics(uri string, diags []diagnostics.Diagnostic)
}

// Notifier shows a message to the user.
type Notifier interface {
	ShowError(message string)
}

// Options configure an Orchestrator. Compiler, Linters and Publisher are
// required.
type Options struct {
	WorkspaceRoot string
	Settings      config.Settings
	Compiler      solc.Compiler
	Linters       solium.Provider
	ContentReader source.ContentReader
	Publisher     Publisher
	Notifier      Notifier
	Logger        *logging.Logger
	Now           func() time.Time
}

// Orchestrator runs validation passes. At most one pass runs at a time;
// requests arriving while a pass holds the lock are dropped.
type Orchestrator struct {
	workspaceRoot string
	contentReader source.ContentReader
	publisher     Publisher
	notifier      Notifier
	logger        *logging.Logger
	now           func() time.Time

	mu           sync.Mutex
	compiler     solc.Compiler
	linters      solium.Provider
	settings     config.Settings
	lock         *Lock
	lastCompiler []diagnostics.Diagnostic
	lastLinter   []diagnostics.Diagnostic
}

// New creates an Orchestrator.
func New(opts Options) *Orchestrator {
	o := &Orchestrator{
		workspaceRoot: opts.WorkspaceRoot,
		compiler:      opts.Compiler,
		linters:       opts.Linters,
		contentReader: opts.ContentReader,
		publisher:     opts.Publisher,
		notifier:      opts.Notifier,
		logger:        opts.Logger,
		now:           opts.Now,
		settings:      opts.Settings,
		lock:          NewLock(opts.Settings.ValidationLockWindow),
	}
	if o.contentReader == nil {
		o.contentReader = source.FilesystemContentReader()
	}
	if o.logger == nil {
		o.logger = logging.Nop()
	}
	if o.now == nil {
		o.now = time.Now
	}
	return o
}

// SetSettings replaces the settings used by subsequent passes.
func (o *Orchestrator) SetSettings(settings config.Settings) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.settings = settings
	o.lock.SetWindow(settings.ValidationLockWindow)
}

// SetCheckers replaces the compiler and linter adapters used by subsequent passes.
func (o *Orchestrator) SetCheckers(compiler solc.Compiler, linters solium.Provider) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.compiler = compiler
	o.linters = linters
}

// Settings returns the current settings.
func (o *Orchestrator) Settings() config.Settings {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.settings
}

// Validate runs one pass over doc unless another pass holds the lock. It
// reports whether the pass ran.
func (o *Orchestrator) Validate(ctx context.Context, trigger Trigger, doc Document) bool {
	o.mu.Lock()
	token, ok := o.lock.TryAcquire(o.now())
	if !ok {
		o.mu.Unlock()
		o.logger.Debug("skipping validation", logging.Fields{"file": filepath.Base(doc.Path), "trigger": trigger.String()})
		return false
	}
	settings := o.settings
	compiler, linters := o.compiler, o.linters
	o.mu.Unlock()

	defer func() {
		o.mu.Lock()
		o.lock.Release(token, o.now())
		o.mu.Unlock()
	}()

	o.runPass(ctx, trigger, doc, pass{settings: settings, compiler: compiler, linters: linters})
	return true
}

// ValidateAll validates every document in turn.
func (o *Orchestrator) ValidateAll(ctx context.Context, trigger Trigger, docs []Document) {
	o.logger.Debug("validating all open documents", logging.Fields{"count": len(docs), "trigger": trigger.String()})
	for _, doc := range docs {
		if ctx.Err() != nil {
			return
		}
		o.Validate(ctx, trigger, doc)
	}
}

// Close clears the diagnostics of a closed document.
func (o *Orchestrator) Close(uri string) {
	o.publisher.PublishDiagnostics(uri, []diagnostics.Diagnostic{})
}

// pass is the configuration snapshot a single pass runs with.
type pass struct {
	settings config.Settings
	compiler solc.Compiler
	linters  solium.Provider
}

func (o *Orchestrator) runPass(ctx context.Context, trigger Trigger, doc Document, p pass) {
	settings := p.settings
	start := o.now()
	policy := policyFor(settings, trigger)
	fields := logging.Fields{
		"pass":    uuid.NewString(),
		"file":    filepath.Base(doc.Path),
		"trigger": trigger.String(),
		"policy":  string(policy),
	}
	o.logger.Info("validating", fields)

	var compilerDiags, linterDiags []diagnostics.Diagnostic
	var compilerTime, linterTime time.Duration

	if policy.RunsCompiler() {
		compilerStart := o.now()
		compilerDiags = o.runChecker(fields, "solc", func() ([]diagnostics.Diagnostic, error) {
			return o.compile(ctx, doc, settings, p.compiler)
		})
		compilerTime = o.now().Sub(compilerStart)
		o.mu.Lock()
		o.lastCompiler = compilerDiags
		o.mu.Unlock()
	} else if settings.RetainPreviousResults {
		o.mu.Lock()
		compilerDiags = o.lastCompiler
		o.mu.Unlock()
	}

	if policy.RunsLinter() {
		linterStart := o.now()
		linterDiags = o.runChecker(fields, "solium", func() ([]diagnostics.Diagnostic, error) {
			return o.lint(ctx, doc, p.linters)
		})
		linterTime = o.now().Sub(linterStart)
		o.mu.Lock()
		o.lastLinter = linterDiags
		o.mu.Unlock()
	} else if settings.RetainPreviousResults {
		o.mu.Lock()
		linterDiags = o.lastLinter
		o.mu.Unlock()
	}

	diags := make([]diagnostics.Diagnostic, 0, len(compilerDiags)+len(linterDiags))
	diags = append(diags, compilerDiags...)
	diags = append(diags, linterDiags...)
	o.publisher.PublishDiagnostics(doc.URI, diags)

	done := logging.Fields{
		"diagnostics": len(diags),
		"elapsed":     o.now().Sub(start).String(),
		"solc":        compilerTime.String(),
		"solium":      linterTime.String(),
	}
	for k, v := range fields {
		done[k] = v
	}
	o.logger.Info("validation done", done)
}

// runChecker turns a checker failure, panics included, into a user
// notification and an empty result.
func (o *Orchestrator) runChecker(fields logging.Fields, name string, check func() ([]diagnostics.Diagnostic, error)) (diags []diagnostics.Diagnostic) {
	defer func() {
		if r := recover(); r != nil {
			o.reportFailure(fields, &checkers.InvocationError{Checker: name, Err: fmt.Errorf("panic: %v", r)})
			diags = nil
		}
	}()

	diags, err := check()
	if err == nil {
		return diags
	}
	if errors.Is(err, solium.ErrNoStyleConfig) {
		o.logger.Debug("no style config, skipping linter", fields)
		return nil
	}

	var invocationErr *checkers.InvocationError
	if !errors.As(err, &invocationErr) {
		invocationErr = &checkers.InvocationError{Checker: name, Err: err}
	}
	o.reportFailure(fields, invocationErr)
	return nil
}

func (o *Orchestrator) reportFailure(fields logging.Fields, err *checkers.InvocationError) {
	failure := logging.Fields{"error": err.Err.Error(), "checker": err.Checker}
	for k, v := range fields {
		failure[k] = v
	}
	o.logger.Error("checker failed", failure)
	if o.notifier != nil {
		o.notifier.ShowError(err.Error())
	}
}

// projectRoot is the directory packages and remappings resolve against.
func (o *Orchestrator) projectRoot(doc Document, settings config.Settings) string {
	root := o.workspaceRoot
	if root == "" {
		root = filepath.Dir(doc.Path)
	}
	if settings.RootDirectory != "" {
		if filepath.IsAbs(settings.RootDirectory) {
			return settings.RootDirectory
		}
		return filepath.Join(root, settings.RootDirectory)
	}
	return root
}

func (o *Orchestrator) compile(ctx context.Context, doc Document, settings config.Settings, compiler solc.Compiler) ([]diagnostics.Diagnostic, error) {
	if compiler == nil {
		return nil, solc.ErrCompilerNotFound
	}
	root := o.projectRoot(doc, settings)

	project, err := packages.NewProject(root, packages.Options{
		PackagesDirectory:  settings.PackageDefaultDependenciesDirectory,
		ContractsDirectory: settings.PackageDefaultDependenciesContractsDirectory,
		Remappings:         o.remappings(settings.CompilerRemappings),
		ContentReader:      o.contentReader,
	})
	if err != nil {
		return nil, err
	}
	for _, warning := range project.Warnings {
		o.logger.Warn("ignoring project manifest", logging.Fields{"root": root, "error": warning.Error()})
	}

	collection := depgraph.NewCollection(o.contentReader)
	collection.AddAndResolve(doc.Path, doc.Text, project)
	o.logger.Debug("resolved imports", logging.Fields{"file": filepath.Base(doc.Path), "contracts": collection.Len()})

	subRoot := ""
	if settings.RootDirectory != "" {
		subRoot = root
	}

	input := solc.NewInput(collection.CompilationUnit(), project.RemappingStrings())
	output, err := compiler.Compile(ctx, input, solc.NewImportCallback(o.contentReader, subRoot))
	if err != nil {
		return nil, err
	}

	diags := make([]diagnostics.Diagnostic, 0, len(output.Errors))
	for _, e := range output.Errors {
		diag, file := diagnostics.FromCompilerError(e)
		if subRoot != "" && !samePath(subRoot, file, doc.Path) {
			continue
		}
		diags = append(diags, diag)
	}
	return diags, nil
}

func (o *Orchestrator) lint(ctx context.Context, doc Document, linters solium.Provider) ([]diagnostics.Diagnostic, error) {
	if linters == nil {
		return nil, solium.ErrNoStyleConfig
	}
	return solium.Check(ctx, linters, doc.Path, doc.Text, o.contentReader)
}

func (o *Orchestrator) remappings(rules []string) []packages.Remapping {
	remappings := make([]packages.Remapping, 0, len(rules))
	for _, rule := range rules {
		r, err := packages.ParseRemapping(rule)
		if err != nil {
			o.logger.Warn("ignoring compiler remapping", logging.Fields{"rule": rule, "error": err.Error()})
			continue
		}
		remappings = append(remappings, r)
	}
	return remappings
}

// samePath compares two paths after making them relative to root.
func samePath(root, a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	return relativeTo(root, a) == relativeTo(root, b)
}

func relativeTo(root, path string) string {
	path = filepath.FromSlash(path)
	if !filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return filepath.Clean(path)
	}
	return rel
}
