package diagnostics

// Finding is one issue reported by the style linter.
type Finding struct {
	Type     string      `json:"type"`
	RuleName string      `json:"ruleName"`
	Message  string      `json:"message"`
	Line     int         `json:"line"`
	Column   int         `json:"column"`
	Node     FindingNode `json:"node"`
}

// FindingNode carries the end offset of the offending node.
type FindingNode struct {
	End int `json:"end"`
}

// FromLinterFinding converts a linter finding. The linter reports exact
// character offsets, so they are used as they are.
func FromLinterFinding(f Finding) Diagnostic {
	severity := SeverityError
	if f.Type == "warning" {
		severity = SeverityWarning
	}

	return Diagnostic{
		Message: f.RuleName + ": " + f.Message,
		Range: Range{
			Start: Position{Line: f.Line - 1, Character: f.Column},
			End:   Position{Line: f.Line - 1, Character: f.Node.End},
		},
		Severity: severity,
		Source:   SourceLinter,
	}
}

// FromLinterFindings converts every finding in order.
func FromLinterFindings(findings []Finding) []Diagnostic {
	diags := make([]Diagnostic, 0, len(findings))
	for _, f := range findings {
		diags = append(diags, FromLinterFinding(f))
	}
	return diags
}
