package solium

import (
	"context"
	"errors"
	"path/filepath"

	"github.com/LegacyCodeHQ/solls/diagnostics"
	"github.com/LegacyCodeHQ/solls/source"
)

// Check lints code, the current text of the file at path, with the
// nearest style config. It returns ErrNoStyleConfig when there is none.
// A config that cannot be parsed is reported as a single diagnostic at
// the start of the document.
func Check(ctx context.Context, provider Provider, path, code string, contentReader source.ContentReader) ([]diagnostics.Diagnostic, error) {
	configPath, err := FindStyleConfig(filepath.Dir(path))
	if err != nil {
		return nil, err
	}

	config, err := LoadStyleConfig(configPath, contentReader)
	if err != nil {
		return []diagnostics.Diagnostic{
			diagnostics.OnLine(err.Error(), 0, 0, 0, diagnostics.SeverityError, diagnostics.SourceLinter),
		}, nil
	}

	findings, err := provider.LinterFor(configPath).Lint(ctx, code, config)
	if err != nil {
		var syntaxErr *SyntaxError
		if errors.As(err, &syntaxErr) {
			return []diagnostics.Diagnostic{syntaxErr.Diagnostic()}, nil
		}
		return nil, err
	}

	return diagnostics.FromLinterFindings(findings), nil
}
