package diagnostics

import (
	"regexp"
	"strings"
)

// CompilerError is one entry of the compiler's "errors" output array.
type CompilerError struct {
	Component        string          `json:"component,omitempty"`
	FormattedMessage string          `json:"formattedMessage"`
	Message          string          `json:"message"`
	Severity         string          `json:"severity"`
	Type             string          `json:"type,omitempty"`
	SourceLocation   *SourceLocation `json:"sourceLocation,omitempty"`
}

// SourceLocation is the byte range the compiler attaches to an error.
type SourceLocation struct {
	File  string `json:"file"`
	Start int    `json:"start"`
	End   int    `json:"end"`
}

var (
	// "   ^---^" under the offending code.
	caretMarker = regexp.MustCompile(`^(\s*)(\^-*\^?)\s*$`)
	// "   |     ^^^^" in the gutter layout of newer compilers.
	gutterCaretMarker = regexp.MustCompile(`^\s*\|(\s*)(\^+)\s*$`)
	// " --> path:line:column:" in the gutter layout of newer compilers.
	arrowLocation = regexp.MustCompile(`(?m)^\s*-->\s*(.+):(\d+):(\d+):?\s*$`)
)

// FromCompilerError converts a compiler error into a diagnostic and returns
// the name of the file the error refers to ("" if it carries no location).
//
// The column range is [start, end) with start <= end. When the message ends
// with a caret marker, the marker's indentation and length give the range;
// otherwise it collapses to the reported column.
func FromCompilerError(e CompilerError) (Diagnostic, string) {
	fileName, line, column, ok := classicLocation(e.FormattedMessage)
	if !ok {
		fileName, line, column, ok = arrowStyleLocation(e.FormattedMessage)
	}
	if !ok && e.SourceLocation != nil {
		fileName = e.SourceLocation.File
	}

	columnStart := column - 1
	columnEnd := columnStart

	lines := strings.Split(strings.TrimSpace(e.FormattedMessage), "\n")
	lastLine := lines[len(lines)-1]
	if m := caretMarker.FindStringSubmatch(lastLine); m != nil && len(lines) > 1 {
		columnStart = len(m[1])
		columnEnd = columnStart + len(m[2])
	} else if m := gutterCaretMarker.FindStringSubmatch(lastLine); m != nil {
		columnStart = len(m[1]) - 1
		columnEnd = columnStart + len(m[2])
	}

	message := e.Message
	if message == "" {
		message = strings.TrimSpace(lines[0])
	}

	return OnLine(message, line-1, columnStart, columnEnd, compilerSeverity(e.Severity), SourceCompiler), fileName
}

// classicLocation parses "file:line:column: Type: message". A drive letter
// ("C:\dir\A.sol") adds one colon-separated segment to the file name.
func classicLocation(formatted string) (string, int, int, bool) {
	firstLine, _, _ := strings.Cut(formatted, "\n")
	segments := strings.Split(firstLine, ":")
	if len(segments) < 3 {
		return "", 0, 0, false
	}

	fileName := segments[0]
	index := 1
	if isDriveLetter(segments[0]) && len(segments) > 3 {
		fileName = segments[0] + ":" + segments[1]
		index = 2
	}

	line, ok := leadingInt(segments[index])
	if !ok {
		return "", 0, 0, false
	}
	column, _ := leadingInt(segments[index+1])

	return fileName, line, column, true
}

func arrowStyleLocation(formatted string) (string, int, int, bool) {
	m := arrowLocation.FindStringSubmatch(formatted)
	if m == nil {
		return "", 0, 0, false
	}
	line, _ := leadingInt(m[2])
	column, _ := leadingInt(m[3])
	return strings.TrimSpace(m[1]), line, column, true
}

func isDriveLetter(segment string) bool {
	if len(segment) != 1 {
		return false
	}
	c := segment[0]
	return (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z')
}

// leadingInt parses the digits at the start of s, ignoring leading spaces.
func leadingInt(s string) (int, bool) {
	s = strings.TrimLeft(s, " \t")
	n, digits := 0, 0
	for digits < len(s) && s[digits] >= '0' && s[digits] <= '9' {
		n = n*10 + int(s[digits]-'0')
		digits++
	}
	return n, digits > 0
}

func compilerSeverity(severity string) Severity {
	switch severity {
	case "warning":
		return SeverityWarning
	default:
		return SeverityError
	}
}
