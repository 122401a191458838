package config

import (
	"fmt"
	"strings"
)

// Policy selects which checkers run for a trigger.
type Policy string

const (
	PolicyAll      Policy = "all"
	PolicyCompiler Policy = "compiler"
	PolicyLinter   Policy = "linter"
	PolicyNone     Policy = "none"
)

// ParsePolicy accepts a policy name or a legacy boolean. An empty string
// selects PolicyAll.
func ParsePolicy(value interface{}) (Policy, error) {
	switch v := value.(type) {
	case bool:
		if v {
			return PolicyAll, nil
		}
		return PolicyNone, nil
	case string:
		switch p := Policy(strings.ToLower(strings.TrimSpace(v))); p {
		case PolicyAll, PolicyCompiler, PolicyLinter, PolicyNone:
			return p, nil
		case "true", "":
			return PolicyAll, nil
		case "false":
			return PolicyNone, nil
		}
	}
	return "", fmt.Errorf("invalid validation policy %v (expected all, compiler, linter or none)", value)
}

// RunsCompiler reports whether the compiler runs under p.
func (p Policy) RunsCompiler() bool {
	return p == PolicyAll || p == PolicyCompiler
}

// RunsLinter reports whether the linter runs under p.
func (p Policy) RunsLinter() bool {
	return p == PolicyAll || p == PolicyLinter
}
