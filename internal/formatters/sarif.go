package formatters

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"pythaw/internal/findings"
	"pythaw/internal/rules"
)

// SARIF v2.1.0 schema - https://schemastore.azurewebsites.net/schemas/json/sarif-2.1.0-rtm.5.json
const (
	sarifSchema  = "https://schemastore.azurewebsites.net/schemas/json/sarif-2.1.0-rtm.5.json"
	sarifVersion = "2.1.0"
	toolName     = "pythaw"
)

// SARIF renders violations as a SARIF 2.1.0 document; a violation's call
// chain is carried as relatedLocations on the result, one per hop, since
// SARIF has no native "call graph path" concept for a plain analysis rule.
type SARIF struct {
	ToolVersion string
	Registry    *rules.Registry
}

type sarifReport struct {
	Schema  string     `json:"$schema"`
	Version string     `json:"version"`
	Runs    []sarifRun `json:"runs"`
}

type sarifRun struct {
	Tool    sarifTool     `json:"tool"`
	Results []sarifResult `json:"results"`
}

type sarifTool struct {
	Driver sarifDriver `json:"driver"`
}

type sarifDriver struct {
	Name    string      `json:"name"`
	Version string      `json:"version"`
	Rules   []sarifRule `json:"rules"`
}

type sarifRule struct {
	ID               string                 `json:"id"`
	Name             string                 `json:"name"`
	ShortDescription sarifMessage           `json:"shortDescription"`
	FullDescription  sarifMessage           `json:"fullDescription"`
	DefaultConfig    sarifRuleDefaultConfig `json:"defaultConfiguration"`
}

type sarifRuleDefaultConfig struct {
	Level string `json:"level"`
}

type sarifResult struct {
	RuleID          string           `json:"ruleId"`
	Level           string           `json:"level"`
	Message         sarifMessage     `json:"message"`
	Locations       []sarifLocation  `json:"locations,omitempty"`
	RelatedLocation []sarifRelated   `json:"relatedLocations,omitempty"`
}

type sarifMessage struct {
	Text string `json:"text"`
}

type sarifLocation struct {
	PhysicalLocation sarifPhysicalLocation `json:"physicalLocation"`
}

type sarifRelated struct {
	PhysicalLocation sarifPhysicalLocation `json:"physicalLocation"`
	Message          sarifMessage          `json:"message"`
}

type sarifPhysicalLocation struct {
	ArtifactLocation sarifArtifactLocation `json:"artifactLocation"`
	Region           *sarifRegion          `json:"region,omitempty"`
}

type sarifArtifactLocation struct {
	URI       string `json:"uri"`
	URIBaseID string `json:"uriBaseId"`
}

type sarifRegion struct {
	StartLine   int `json:"startLine,omitempty"`
	StartColumn int `json:"startColumn,omitempty"`
}

func (s SARIF) Format(r Result) ([]byte, error) {
	usedCodes := make(map[string]bool)
	results := make([]sarifResult, 0, len(r.Violations))
	for _, v := range r.Violations {
		usedCodes[v.Code] = true
		result := sarifResult{
			RuleID:  v.Code,
			Level:   "warning",
			Message: sarifMessage{Text: v.Message},
			Locations: []sarifLocation{
				location(r.ProjectRoot, v.Position.File, v.Position.Line, v.Position.Column),
			},
			RelatedLocation: relatedFromChain(r.ProjectRoot, v.CallChain),
		}
		results = append(results, result)
	}
	for _, d := range r.Diagnostics {
		ruleID := "PYTHAW-" + string(d.Kind)
		usedCodes[ruleID] = true
		results = append(results, sarifResult{
			RuleID:  ruleID,
			Level:   "note",
			Message: sarifMessage{Text: d.Detail},
			Locations: []sarifLocation{
				location(r.ProjectRoot, d.Position.File, d.Position.Line, d.Position.Column),
			},
		})
	}

	report := sarifReport{
		Schema:  sarifSchema,
		Version: sarifVersion,
		Runs: []sarifRun{
			{
				Tool: sarifTool{
					Driver: sarifDriver{
						Name:    toolName,
						Version: s.ToolVersion,
						Rules:   s.buildRules(usedCodes),
					},
				},
				Results: results,
			},
		},
	}
	return json.MarshalIndent(report, "", "  ")
}

func (s SARIF) buildRules(used map[string]bool) []sarifRule {
	var out []sarifRule
	if s.Registry != nil {
		for _, rule := range s.Registry.All() {
			if !used[rule.Code] {
				continue
			}
			out = append(out, sarifRule{
				ID:               rule.Code,
				Name:             rule.Code,
				ShortDescription: sarifMessage{Text: rule.Message},
				FullDescription:  sarifMessage{Text: rule.Why},
				DefaultConfig:    sarifRuleDefaultConfig{Level: "warning"},
			})
		}
	}
	for code := range used {
		if code == "PYTHAW-parse_error" {
			out = append(out, sarifRule{
				ID:               code,
				Name:             "ParseError",
				ShortDescription: sarifMessage{Text: "A source file could not be parsed."},
				DefaultConfig:    sarifRuleDefaultConfig{Level: "note"},
			})
		}
		if code == "PYTHAW-unresolved_import" {
			out = append(out, sarifRule{
				ID:               code,
				Name:             "UnresolvedImport",
				ShortDescription: sarifMessage{Text: "An import could not be mapped to a project file."},
				DefaultConfig:    sarifRuleDefaultConfig{Level: "note"},
			})
		}
	}
	return out
}

func relatedFromChain(projectRoot string, chain findings.CallChain) []sarifRelated {
	if len(chain) == 0 {
		return nil
	}
	out := make([]sarifRelated, 0, len(chain))
	for i, cs := range chain {
		out = append(out, sarifRelated{
			PhysicalLocation: location(projectRoot, cs.Position.File, cs.Position.Line, cs.Position.Column).PhysicalLocation,
			Message:          sarifMessage{Text: fmt.Sprintf("step %d: %s", i+1, cs.Name)},
		})
	}
	return out
}

func location(projectRoot, file string, line, col int) sarifLocation {
	return sarifLocation{
		PhysicalLocation: sarifPhysicalLocation{
			ArtifactLocation: sarifArtifactLocation{
				URI:       filepath.ToSlash(relPath(projectRoot, file)),
				URIBaseID: "%SRCROOT%",
			},
			Region: &sarifRegion{StartLine: line, StartColumn: col},
		},
	}
}
