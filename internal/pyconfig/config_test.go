package pyconfig_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"pythaw/internal/pyconfig"
)

func TestLoadAppliesDefaultsWhenSectionMissing(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pyproject.toml")
	require.NoError(t, os.WriteFile(path, []byte("[project]\nname = \"demo\"\n"), 0o644))

	cfg, err := pyconfig.Load(path)
	require.NoError(t, err)
	require.Equal(t, []string{"handler", "lambda_handler", "*_handler"}, cfg.HandlerPatterns)
	require.Empty(t, cfg.Exclude)
}

func TestLoadReadsCustomRules(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pyproject.toml")
	content := `
[tool.pythaw]
handler_patterns = ["*_handler"]
exclude = ["tests/*"]

[[tool.pythaw.custom_rules]]
pattern = "acme.HeavyClient"
message = "acme.HeavyClient should be module scope"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := pyconfig.Load(path)
	require.NoError(t, err)
	require.Equal(t, []string{"*_handler"}, cfg.HandlerPatterns)
	require.Equal(t, []string{"tests/*"}, cfg.Exclude)
	require.Len(t, cfg.CustomRules, 1)
	require.Equal(t, "acme.HeavyClient", cfg.CustomRules[0].Pattern)
}

func TestLoadRejectsDuplicateCustomRulePatterns(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pyproject.toml")
	content := `
[[tool.pythaw.custom_rules]]
pattern = "acme.X"
message = "one"

[[tool.pythaw.custom_rules]]
pattern = "acme.X"
message = "two"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	_, err := pyconfig.Load(path)
	require.Error(t, err)
}

func TestLoadRejectsCustomRuleMissingMessage(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pyproject.toml")
	content := `
[[tool.pythaw.custom_rules]]
pattern = "acme.X"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	_, err := pyconfig.Load(path)
	require.Error(t, err)
}

func TestFindManifestWalksUpward(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "pyproject.toml"), []byte("[project]\n"), 0o644))
	nested := filepath.Join(root, "src", "pkg")
	require.NoError(t, os.MkdirAll(nested, 0o755))

	found := pyconfig.FindManifest(nested)
	require.Equal(t, filepath.Join(root, "pyproject.toml"), found)
}

func TestFindManifestReturnsEmptyWhenNoneFound(t *testing.T) {
	root := t.TempDir()
	require.Equal(t, "", pyconfig.FindManifest(root))
}
