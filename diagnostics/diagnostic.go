package diagnostics

// Severity uses the editor protocol's numbering.
type Severity int

const (
	SeverityError   Severity = 1
	SeverityWarning Severity = 2
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return "unknown"
	}
}

// Source tags identify which checker produced a diagnostic.
const (
	SourceCompiler = "solc"
	SourceLinter   = "solium"
)

// Position is a zero-based line and character offset.
type Position struct {
	Line      int `json:"line"`
	Character int `json:"character"`
}

// Range is a span on a single document.
type Range struct {
	Start Position `json:"start"`
	End   Position `json:"end"`
}

// Diagnostic is the normalized record published to the editor.
type Diagnostic struct {
	Message  string   `json:"message"`
	Range    Range    `json:"range"`
	Severity Severity `json:"severity"`
	Source   string   `json:"source,omitempty"`
}

// OnLine builds a diagnostic spanning [startChar, endChar) of one zero-based line.
func OnLine(message string, line, startChar, endChar int, severity Severity, source string) Diagnostic {
	if line < 0 {
		line = 0
	}
	if startChar < 0 {
		startChar = 0
	}
	if endChar < startChar {
		endChar = startChar
	}
	return Diagnostic{
		Message: message,
		Range: Range{
			Start: Position{Line: line, Character: startChar},
			End:   Position{Line: line, Character: endChar},
		},
		Severity: severity,
		Source:   source,
	}
}

// HasErrors reports whether any diagnostic is an error.
func HasErrors(diags []Diagnostic) bool {
	for _, d := range diags {
		if d.Severity == SeverityError {
			return true
		}
	}
	return false
}
