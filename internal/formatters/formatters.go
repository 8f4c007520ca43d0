// Package formatters renders a check run's violations and diagnostics into
// the External Interfaces contract (spec 6): concise text for a terminal,
// JSON for tooling, GitHub Actions workflow commands, and SARIF 2.1.0 for
// code-scanning integrations. Each formatter takes the same Result value, the
// way circular's internal/ui/report/formats package renders one graph
// analysis into several outputs.
package formatters

import (
	"pythaw/internal/findings"
)

// Result is everything one `pythaw check` run produced, in the shape every
// formatter renders from.
type Result struct {
	ProjectRoot string
	Violations  []findings.Violation
	Diagnostics []findings.Diagnostic
}

// ExitCode returns the process exit code for a Result (spec 6: 0 clean,
// 1 violations or parse errors present).
func (r Result) ExitCode() int {
	if len(r.Violations) > 0 {
		return 1
	}
	for _, d := range r.Diagnostics {
		if d.Kind == findings.DiagnosticParseError {
			return 1
		}
	}
	return 0
}

type Formatter interface {
	Format(Result) ([]byte, error)
}
