package formatters

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"
)

// Concise renders one line per violation and one per diagnostic, with an
// indirect violation's call chain folded into a single "via" continuation
// line, followed by a summary line (spec 6, "seed for formatter tests").
type Concise struct{}

func (Concise) Format(r Result) ([]byte, error) {
	var buf bytes.Buffer
	files := make(map[string]bool)
	for _, v := range r.Violations {
		files[v.Position.File] = true
		fmt.Fprintf(&buf, "%s:%d:%d: %s %s\n", relPath(r.ProjectRoot, v.Position.File), v.Position.Line, v.Position.Column, v.Code, v.Message)
		if len(v.CallChain) == 0 {
			continue
		}
		first := v.CallChain[0]
		names := make([]string, len(v.CallChain))
		for i, cs := range v.CallChain {
			names[i] = cs.Name + "()"
		}
		fmt.Fprintf(&buf, "  via %s:%d:%d → %s\n", relPath(r.ProjectRoot, first.Position.File), first.Position.Line, first.Position.Column, strings.Join(names, " → "))
	}
	for _, d := range r.Diagnostics {
		fmt.Fprintf(&buf, "%s:%d:%d: %s %s\n", relPath(r.ProjectRoot, d.Position.File), d.Position.Line, d.Position.Column, d.Kind, d.Detail)
	}
	fmt.Fprintf(&buf, "Found %d violations in %d files.\n", len(r.Violations), len(files))
	return buf.Bytes(), nil
}

func relPath(root, path string) string {
	if root == "" {
		return path
	}
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return path
	}
	return rel
}
