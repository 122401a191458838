package depgraph

import (
	"regexp"
)

// Import is one import directive found in Solidity source.
type Import struct {
	// Path is the raw specifier between the quotes.
	Path string
	// Start and End are the byte offsets of Path within the source.
	Start int
	End   int
}

// importPattern matches the four Solidity import forms:
//
//	import "path";
//	import "path" as alias;
//	import * as alias from "path";
//	import {a, b as c} from "path";
var importPattern = regexp.MustCompile(`\bimport\s+(?:(?:\*\s*as\s+[A-Za-z_$][\w$]*|\{[^}]*\}|[A-Za-z_$][\w$]*)\s+from\s+)?(?:"([^"\n]+)"|'([^'\n]+)')`)

// ParseImports extracts import specifiers from Solidity source in order of appearance.
// Directives inside comments and string literals are ignored.
func ParseImports(sourceCode []byte) []Import {
	stripped := stripComments(sourceCode)

	var imports []Import
	for _, match := range importPattern.FindAllSubmatchIndex(stripped, -1) {
		start, end := match[2], match[3]
		if start < 0 {
			start, end = match[4], match[5]
		}
		imports = append(imports, Import{
			Path:  string(sourceCode[start:end]),
			Start: start,
			End:   end,
		})
	}

	return imports
}

// stripComments blanks out line and block comments and the contents of string
// literals while keeping byte offsets, quotes and newlines intact. Specifiers
// are read back from the original source by offset.
func stripComments(sourceCode []byte) []byte {
	out := make([]byte, len(sourceCode))
	copy(out, sourceCode)

	const (
		code = iota
		lineComment
		blockComment
		doubleQuoted
		singleQuoted
	)

	state := code
	for i := 0; i < len(out); i++ {
		c := out[i]
		switch state {
		case code:
			switch {
			case c == '/' && i+1 < len(out) && out[i+1] == '/':
				state = lineComment
				out[i], out[i+1] = ' ', ' '
				i++
			case c == '/' && i+1 < len(out) && out[i+1] == '*':
				state = blockComment
				out[i], out[i+1] = ' ', ' '
				i++
			case c == '"':
				state = doubleQuoted
			case c == '\'':
				state = singleQuoted
			}
		case lineComment:
			if c == '\n' {
				state = code
			} else {
				out[i] = ' '
			}
		case blockComment:
			if c == '*' && i+1 < len(out) && out[i+1] == '/' {
				out[i], out[i+1] = ' ', ' '
				i++
				state = code
			} else if c != '\n' {
				out[i] = ' '
			}
		case doubleQuoted, singleQuoted:
			quote := byte('"')
			if state == singleQuoted {
				quote = '\''
			}
			switch c {
			case '\\':
				out[i] = ' '
				if i+1 < len(out) && out[i+1] != '\n' {
					out[i+1] = ' '
				}
				i++
			case quote, '\n':
				state = code
			default:
				out[i] = ' '
			}
		}
	}

	return out
}
