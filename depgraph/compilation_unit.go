package depgraph

import (
	"bytes"
	"encoding/json"
	"path/filepath"
)

// SourceEntry is one file of the compiler's source set.
type SourceEntry struct {
	Path    string
	Content string
}

// CompilationUnit is the compiler's source set. It marshals to a JSON object
// keyed by path, preserving discovery order.
type CompilationUnit []SourceEntry

// CompilationUnit returns every contract keyed by its slash-separated
// absolute path, with package imports rewritten to resolved paths.
func (c *Collection) CompilationUnit() CompilationUnit {
	unit := make(CompilationUnit, 0, len(c.order))
	for _, path := range c.order {
		unit = append(unit, SourceEntry{
			Path:    filepath.ToSlash(path),
			Content: c.contracts[path].CompilerSource(),
		})
	}
	return unit
}

// Paths returns the source keys in order.
func (u CompilationUnit) Paths() []string {
	paths := make([]string, 0, len(u))
	for _, entry := range u {
		paths = append(paths, entry.Path)
	}
	return paths
}

type sourceContent struct {
	Content string `json:"content"`
}

// MarshalJSON implements json.Marshaler.
func (u CompilationUnit) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, entry := range u {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(entry.Path)
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(sourceContent{Content: entry.Content})
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
