package formatters

import (
	"bytes"
	"fmt"
	"strings"
)

// GitHubActions renders violations and diagnostics as workflow command
// annotations (`::error file=...,line=...,col=...::message`), the format
// GitHub Actions parses to annotate a pull request diff.
type GitHubActions struct{}

func (GitHubActions) Format(r Result) ([]byte, error) {
	var buf bytes.Buffer
	for _, v := range r.Violations {
		msg := v.Message
		if len(v.CallChain) > 0 {
			var steps []string
			for _, cs := range v.CallChain {
				steps = append(steps, cs.Name)
			}
			msg = fmt.Sprintf("%s (via %s)", msg, strings.Join(steps, " -> "))
		}
		fmt.Fprintf(&buf, "::error file=%s,line=%d,col=%d,title=%s::%s\n",
			relPath(r.ProjectRoot, v.Position.File), v.Position.Line, v.Position.Column, v.Code, escape(msg))
	}
	for _, d := range r.Diagnostics {
		fmt.Fprintf(&buf, "::warning file=%s,line=%d,col=%d,title=%s::%s\n",
			relPath(r.ProjectRoot, d.Position.File), d.Position.Line, d.Position.Column, d.Kind, escape(d.Detail))
	}
	return buf.Bytes(), nil
}

func escape(s string) string {
	s = strings.ReplaceAll(s, "%", "%25")
	s = strings.ReplaceAll(s, "\r", "%0D")
	s = strings.ReplaceAll(s, "\n", "%0A")
	return s
}
