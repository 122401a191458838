package solium

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/LegacyCodeHQ/solls/diagnostics"
)

var syntaxErrorPattern = regexp.MustCompile(`An error .*?\nSyntaxError: (.*?) Line: (\d+), Column: (\d+)`)

// SyntaxError is raised by the linter when it cannot parse the document.
// Line and Column are 1-based.
type SyntaxError struct {
	Message string
	Line    int
	Column  int
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("syntax error: %s (line %d, column %d)", e.Message, e.Line, e.Column)
}

// Diagnostic returns the zero-width diagnostic at the error position.
func (e *SyntaxError) Diagnostic() diagnostics.Diagnostic {
	return diagnostics.OnLine("Syntax error: "+e.Message, e.Line-1, e.Column-1, e.Column-1,
		diagnostics.SeverityError, diagnostics.SourceLinter)
}

// ParseSyntaxError recognizes the linter's syntax error report in message.
func ParseSyntaxError(message string) (*SyntaxError, bool) {
	m := syntaxErrorPattern.FindStringSubmatch(message)
	if m == nil {
		return nil, false
	}
	line, _ := strconv.Atoi(m[2])
	column, _ := strconv.Atoi(m[3])
	return &SyntaxError{Message: m[1], Line: line, Column: column}, true
}
