// Package solc runs the Solidity compiler on a resolved source set.
package solc

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/LegacyCodeHQ/solls/depgraph"
	"github.com/LegacyCodeHQ/solls/source"
)

// ErrCompilerNotFound is returned when the compiler executable is missing.
var ErrCompilerNotFound = errors.New("compiler executable not found")

// ImportCallback supplies the text of a source the compiler asked for but
// that was not part of the input.
type ImportCallback func(path string) (string, error)

// Compiler compiles a standard JSON input.
type Compiler interface {
	Compile(ctx context.Context, input Input, importCallback ImportCallback) (Output, error)
}

// maxImportRounds bounds how many times missing sources are fed back.
const maxImportRounds = 8

var missingSource = regexp.MustCompile(`Source "([^"]+)" not found`)

// ExecCompiler runs a native compiler binary in standard JSON mode. The
// binary has no callback channel, so sources it reports as missing are
// fetched through the import callback and the compilation is repeated.
type ExecCompiler struct {
	Path string
	Dir  string
}

// NewExecCompiler returns a compiler running the binary at path.
func NewExecCompiler(path string) *ExecCompiler {
	if path == "" {
		path = "solc"
	}
	return &ExecCompiler{Path: path}
}

// Compile implements Compiler.
func (c *ExecCompiler) Compile(ctx context.Context, input Input, importCallback ImportCallback) (Output, error) {
	input.Sources = append(depgraph.CompilationUnit(nil), input.Sources...)

	for round := 0; ; round++ {
		output, err := c.run(ctx, input)
		if err != nil {
			return Output{}, err
		}
		if importCallback == nil || round == maxImportRounds {
			return output, nil
		}

		added := false
		for _, path := range missingSources(output, input) {
			content, err := importCallback(path)
			if err != nil {
				continue
			}
			input.Sources = append(input.Sources, depgraph.SourceEntry{Path: path, Content: content})
			added = true
		}
		if !added {
			return output, nil
		}
	}
}

func (c *ExecCompiler) run(ctx context.Context, input Input) (Output, error) {
	payload, err := json.Marshal(input)
	if err != nil {
		return Output{}, fmt.Errorf("failed to encode compiler input: %w", err)
	}

	cmd := exec.CommandContext(ctx, c.Path, "--standard-json")
	cmd.Dir = c.Dir
	cmd.Stdin = bytes.NewReader(payload)

	var stdout bytes.Buffer
	var stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if errors.Is(err, exec.ErrNotFound) || errors.Is(err, fs.ErrNotExist) {
			return Output{}, fmt.Errorf("%w: %s", ErrCompilerNotFound, c.Path)
		}
		if stdout.Len() == 0 {
			if stderr.Len() > 0 {
				return Output{}, fmt.Errorf("compiler failed: %s", strings.TrimSpace(stderr.String()))
			}
			return Output{}, fmt.Errorf("compiler failed: %w", err)
		}
	}

	var output Output
	if err := json.Unmarshal(stdout.Bytes(), &output); err != nil {
		return Output{}, fmt.Errorf("failed to parse compiler output: %w", err)
	}
	return output, nil
}

func missingSources(output Output, input Input) []string {
	var paths []string
	seen := make(map[string]bool)
	for _, e := range output.Errors {
		m := missingSource.FindStringSubmatch(e.Message)
		if m == nil {
			m = missingSource.FindStringSubmatch(e.FormattedMessage)
		}
		if m == nil || seen[m[1]] || input.HasSource(m[1]) {
			continue
		}
		seen[m[1]] = true
		paths = append(paths, m[1])
	}
	return paths
}

// NewImportCallback reads requested sources through contentReader. Relative
// paths are taken from subRoot when one is set.
func NewImportCallback(contentReader source.ContentReader, subRoot string) ImportCallback {
	return func(path string) (string, error) {
		target := filepath.FromSlash(path)
		if subRoot != "" && !filepath.IsAbs(target) {
			target = filepath.Join(subRoot, target)
		}
		content, err := contentReader(target)
		if err != nil {
			return "", fmt.Errorf("unable to read %q: %w", path, err)
		}
		return string(content), nil
	}
}
