package formatters

import "encoding/json"

// JSON renders the machine-readable shape (spec 6). It adds call_chain
// beyond what the original tool's flat JSON emitted, since this analyzer
// tracks the full path from handler to violation rather than a single
// handler/rule pair.
type JSON struct{}

type jsonReport struct {
	Violations  []jsonViolation  `json:"violations"`
	Diagnostics []jsonDiagnostic `json:"diagnostics"`
}

type jsonPosition struct {
	File   string `json:"file"`
	Line   int    `json:"line"`
	Column int    `json:"column"`
}

type jsonCallSite struct {
	Position jsonPosition `json:"position"`
	Name     string       `json:"name"`
}

type jsonViolation struct {
	Code      string         `json:"code"`
	Message   string         `json:"message"`
	Position  jsonPosition   `json:"position"`
	CallChain []jsonCallSite `json:"call_chain"`
}

type jsonDiagnostic struct {
	Kind     string       `json:"kind"`
	Position jsonPosition `json:"position"`
	Detail   string       `json:"detail"`
}

func (JSON) Format(r Result) ([]byte, error) {
	report := jsonReport{
		Violations:  make([]jsonViolation, 0, len(r.Violations)),
		Diagnostics: make([]jsonDiagnostic, 0, len(r.Diagnostics)),
	}
	for _, v := range r.Violations {
		chain := make([]jsonCallSite, 0, len(v.CallChain))
		for _, cs := range v.CallChain {
			chain = append(chain, jsonCallSite{
				Position: jsonPosition{File: cs.Position.File, Line: cs.Position.Line, Column: cs.Position.Column},
				Name:     cs.Name,
			})
		}
		report.Violations = append(report.Violations, jsonViolation{
			Code:      v.Code,
			Message:   v.Message,
			Position:  jsonPosition{File: v.Position.File, Line: v.Position.Line, Column: v.Position.Column},
			CallChain: chain,
		})
	}
	for _, d := range r.Diagnostics {
		report.Diagnostics = append(report.Diagnostics, jsonDiagnostic{
			Kind:     string(d.Kind),
			Position: jsonPosition{File: d.Position.File, Line: d.Position.Line, Column: d.Position.Column},
			Detail:   d.Detail,
		})
	}
	return json.MarshalIndent(report, "", "  ")
}
