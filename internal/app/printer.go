package app

import (
	"fmt"
	"io"
	"sync"

	"github.com/LegacyCodeHQ/solls/diagnostics"
)

// Printer writes published diagnostics as "file:line:column: severity:
// message [source]" lines. It is safe for concurrent use.
type Printer struct {
	// ReportClean prints "file: no problems" for an empty diagnostic set.
	ReportClean bool

	mu     sync.Mutex
	out    io.Writer
	errOut io.Writer
	errors int
}

// NewPrinter writes diagnostics to out and checker failures to errOut.
func NewPrinter(out, errOut io.Writer) *Printer {
	return &Printer{out: out, errOut: errOut}
}

// PublishDiagnostics implements validation.Publisher.
func (p *Printer) PublishDiagnostics(file string, diags []diagnostics.Diagnostic) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(diags) == 0 && p.ReportClean {
		_, _ = fmt.Fprintf(p.out, "%s: no problems\n", file)
		return
	}
	for _, d := range diags {
		if d.Severity == diagnostics.SeverityError {
			p.errors++
		}
		line := fmt.Sprintf("%s:%d:%d: %s: %s", file, d.Range.Start.Line+1, d.Range.Start.Character+1, d.Severity, d.Message)
		if d.Source != "" {
			line += " [" + d.Source + "]"
		}
		_, _ = fmt.Fprintln(p.out, line)
	}
}

// ShowError implements validation.Notifier.
func (p *Printer) ShowError(message string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, _ = fmt.Fprintln(p.errOut, message)
}

// ErrorCount returns how many error diagnostics were printed.
func (p *Printer) ErrorCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.errors
}
