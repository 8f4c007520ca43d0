package rules_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"pythaw/internal/rules"
)

func TestBuiltinRulesHaveNoPW007(t *testing.T) {
	for _, r := range rules.BuiltinRules() {
		require.NotEqual(t, "PW007", r.Code)
	}
	require.Len(t, rules.BuiltinRules(), 8)
}

func TestNewRegistryFiltersToEnabledCodes(t *testing.T) {
	reg := rules.NewRegistry([]string{"PW001", "PW004"}, nil)
	all := reg.All()
	require.Len(t, all, 2)
	require.Equal(t, "PW001", all[0].Code)
	require.Equal(t, "PW004", all[1].Code)
}

func TestNewRegistryEmptyEnabledMeansAll(t *testing.T) {
	reg := rules.NewRegistry(nil, nil)
	require.Len(t, reg.All(), 8)
}

func TestCustomRuleUsesPatternAsCode(t *testing.T) {
	reg := rules.NewRegistry(nil, []rules.Custom{{Pattern: "acme.Client", Message: "acme.Client is heavy"}})
	rule, ok := reg.Get("acme.Client")
	require.True(t, ok)
	require.True(t, rule.Custom)
	require.Equal(t, "acme.Client", rule.Pattern)
}

func TestMatchReturnsAllRulesMatchingExactly(t *testing.T) {
	reg := rules.NewRegistry(nil, []rules.Custom{{Pattern: "boto3.client", Message: "custom dup"}})
	matched := reg.Match("boto3.client")
	require.Len(t, matched, 2) // built-in PW001 + the custom rule sharing the same pattern
}

func TestMatchIsExactNotPrefix(t *testing.T) {
	reg := rules.NewRegistry(nil, nil)
	require.Empty(t, reg.Match("boto3.client.extra"))
	require.Empty(t, reg.Match("boto3"))
}

func TestUnknownCodesRejectsNonBuiltins(t *testing.T) {
	require.Equal(t, []string{"PW999"}, rules.UnknownCodes([]string{"PW001", "PW999"}))
	require.Empty(t, rules.UnknownCodes([]string{"PW001", "PW002"}))
}
