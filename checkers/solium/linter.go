// Package solium runs the Solidity style linter on a document.
package solium

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os/exec"
	"strings"

	"github.com/LegacyCodeHQ/solls/diagnostics"
)

// ErrLinterNotFound is returned when node or the linter module is missing.
var ErrLinterNotFound = errors.New("linter not found")

// Linter lints one document's text with a style config.
type Linter interface {
	Lint(ctx context.Context, code string, config StyleConfig) ([]diagnostics.Finding, error)
}

// driverScript loads the linter module named in the request and prints its
// findings as JSON. Exceptions are written verbatim to stderr.
const driverScript = `
const chunks = [];
process.stdin.on('data', (chunk) => chunks.push(chunk));
process.stdin.on('end', () => {
  const request = JSON.parse(Buffer.concat(chunks).toString('utf8'));
  let items;
  try {
    items = require(request.module).lint(request.code, request.config);
  } catch (err) {
    process.stderr.write(String((err && err.message) || err));
    process.exit(2);
  }
  process.stdout.write(JSON.stringify(items || []));
});
`

type lintRequest struct {
	Module string      `json:"module"`
	Code   string      `json:"code"`
	Config StyleConfig `json:"config"`
}

// ExecLinter lints through a node process that loads the linter module.
type ExecLinter struct {
	NodePath string
	Module   string
}

// NewExecLinter returns a linter loading module (a package name or a
// directory) with the node binary at nodePath.
func NewExecLinter(nodePath, module string) *ExecLinter {
	if nodePath == "" {
		nodePath = "node"
	}
	if module == "" {
		module = ModuleName
	}
	return &ExecLinter{NodePath: nodePath, Module: module}
}

// Lint implements Linter. A document the linter cannot parse yields a
// *SyntaxError.
func (l *ExecLinter) Lint(ctx context.Context, code string, config StyleConfig) ([]diagnostics.Finding, error) {
	payload, err := json.Marshal(lintRequest{Module: l.Module, Code: code, Config: config})
	if err != nil {
		return nil, fmt.Errorf("failed to encode lint request: %w", err)
	}

	cmd := exec.CommandContext(ctx, l.NodePath, "-e", driverScript)
	cmd.Stdin = bytes.NewReader(payload)

	var stdout bytes.Buffer
	var stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if errors.Is(err, exec.ErrNotFound) || errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrLinterNotFound, l.NodePath)
		}
		message := stderr.String()
		if syntaxErr, ok := ParseSyntaxError(message); ok {
			return nil, syntaxErr
		}
		if strings.Contains(message, "Cannot find module") {
			return nil, fmt.Errorf("%w: %s", ErrLinterNotFound, l.Module)
		}
		if message != "" {
			return nil, fmt.Errorf("linter failed: %s", strings.TrimSpace(message))
		}
		return nil, fmt.Errorf("linter failed: %w", err)
	}

	var findings []diagnostics.Finding
	if err := json.Unmarshal(stdout.Bytes(), &findings); err != nil {
		return nil, fmt.Errorf("failed to parse linter output: %w", err)
	}
	return findings, nil
}
