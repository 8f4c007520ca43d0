package formatters_test

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"pythaw/internal/findings"
	"pythaw/internal/formatters"
	"pythaw/internal/pyast"
	"pythaw/internal/rules"
)

func sampleResult() formatters.Result {
	return formatters.Result{
		ProjectRoot: "/proj",
		Violations: []findings.Violation{
			{
				Code:    "PW001",
				Message: "boto3.client() should be called at module scope",
				Position: pyast.Position{
					File: "/proj/infra/aws.py", Line: 6, Column: 8,
				},
				CallChain: findings.CallChain{
					{Position: pyast.Position{File: "/proj/h.py", Line: 3, Column: 4}, Name: "S3Client"},
				},
			},
		},
	}
}

func TestExitCodeCleanWhenNoFindings(t *testing.T) {
	require.Equal(t, 0, formatters.Result{}.ExitCode())
}

func TestExitCodeOneWhenViolations(t *testing.T) {
	require.Equal(t, 1, sampleResult().ExitCode())
}

func TestExitCodeOneOnParseErrorDiagnostic(t *testing.T) {
	r := formatters.Result{Diagnostics: []findings.Diagnostic{{Kind: findings.DiagnosticParseError}}}
	require.Equal(t, 1, r.ExitCode())
}

func TestJSONFormatterIncludesCallChain(t *testing.T) {
	out, err := formatters.JSON{}.Format(sampleResult())
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(out, &decoded))
	violations := decoded["violations"].([]any)
	require.Len(t, violations, 1)
	v := violations[0].(map[string]any)
	chain := v["call_chain"].([]any)
	require.Len(t, chain, 1)
}

func TestConciseFormatterMatchesLiteralGrammar(t *testing.T) {
	out, err := formatters.Concise{}.Format(sampleResult())
	require.NoError(t, err)
	want := "infra/aws.py:6:8: PW001 boto3.client() should be called at module scope\n" +
		"  via h.py:3:4 → S3Client()\n" +
		"Found 1 violations in 1 files.\n"
	require.Equal(t, want, string(out))
}

func TestConciseFormatterFoldsMultiHopChainIntoOneLine(t *testing.T) {
	r := sampleResult()
	r.Violations[0].CallChain = append(r.Violations[0].CallChain, findings.CallSite{
		Position: pyast.Position{File: "/proj/infra/aws.py", Line: 9, Column: 4},
		Name:     "make_client",
	})
	out, err := formatters.Concise{}.Format(r)
	require.NoError(t, err)
	require.Equal(t, 3, strings.Count(string(out), "\n"))
	require.Contains(t, string(out), "  via h.py:3:4 → S3Client() → make_client()\n")
}

func TestSARIFFormatterUsesViolationCodeAsRuleID(t *testing.T) {
	registry := rules.NewRegistry(nil, nil)
	out, err := formatters.SARIF{ToolVersion: "0.1.0", Registry: registry}.Format(sampleResult())
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(out, &decoded))
	runs := decoded["runs"].([]any)
	run := runs[0].(map[string]any)
	results := run["results"].([]any)
	result := results[0].(map[string]any)
	require.Equal(t, "PW001", result["ruleId"])
}

func TestGitHubActionsFormatterEmitsErrorAnnotation(t *testing.T) {
	out, err := formatters.GitHubActions{}.Format(sampleResult())
	require.NoError(t, err)
	require.Contains(t, string(out), "::error")
	require.Contains(t, string(out), "PW001")
}
