// Package pyconfig loads the [tool.pythaw] table (spec 4.1/6/7): handler
// name patterns, exclude globs, and custom rule declarations. Loading is
// staged the way the teacher's internal/core/config does it -- decode, apply
// defaults, validate -- so a manifest missing a section still produces a
// usable Config.
package pyconfig

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"pythaw/internal/pyerrors"
)

type Config struct {
	Tool Tool `toml:"tool"`
}

type Tool struct {
	Pythaw Pythaw `toml:"pythaw"`
}

type Pythaw struct {
	HandlerPatterns []string     `toml:"handler_patterns"`
	Exclude         []string     `toml:"exclude"`
	EnabledRules    []string     `toml:"rules"`
	CustomRules     []CustomRule `toml:"custom_rules"`
}

type CustomRule struct {
	Pattern string `toml:"pattern"`
	Message string `toml:"message"`
}

// defaultHandlerPatterns matches the original tool's built-in handler name
// glob set (spec 4.1).
var defaultHandlerPatterns = []string{"handler", "lambda_handler", "*_handler"}

// Load reads and decodes the manifest at path. A file that cannot be read
// (including a missing one) is a CodeConfigInvalid error; callers that have
// no manifest use Default() instead of calling Load.
func Load(path string) (*Pythaw, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, pyerrors.Wrap(pyerrors.CodeConfigInvalid, "read config", err).WithContext(pyerrors.CtxPath, path)
	}

	var cfg Config
	if _, err := toml.Decode(string(data), &cfg); err != nil {
		return nil, pyerrors.Wrap(pyerrors.CodeConfigInvalid, "parse config", err).WithContext(pyerrors.CtxPath, path)
	}

	pw := cfg.Tool.Pythaw
	applyDefaults(&pw)
	if err := validate(&pw); err != nil {
		return nil, err
	}
	return &pw, nil
}

// Default returns the configuration used when no manifest is found.
func Default() *Pythaw {
	pw := &Pythaw{}
	applyDefaults(pw)
	return pw
}

func applyDefaults(pw *Pythaw) {
	if len(pw.HandlerPatterns) == 0 {
		pw.HandlerPatterns = append([]string(nil), defaultHandlerPatterns...)
	}
	if pw.Exclude == nil {
		pw.Exclude = []string{}
	}
}

func validate(pw *Pythaw) error {
	seen := make(map[string]bool)
	for _, p := range pw.HandlerPatterns {
		if strings.TrimSpace(p) == "" {
			return pyerrors.New(pyerrors.CodeConfigInvalid, "handler_patterns entry must not be empty")
		}
	}
	for _, cr := range pw.CustomRules {
		if strings.TrimSpace(cr.Pattern) == "" {
			return pyerrors.New(pyerrors.CodeConfigInvalid, "custom_rules entry missing pattern")
		}
		if strings.TrimSpace(cr.Message) == "" {
			return pyerrors.New(pyerrors.CodeConfigInvalid, "custom_rules entry missing message").
				WithContext(pyerrors.CtxRule, cr.Pattern)
		}
		if seen[cr.Pattern] {
			return pyerrors.New(pyerrors.CodeConfigInvalid, fmt.Sprintf("duplicate custom rule pattern %q", cr.Pattern)).
				WithContext(pyerrors.CtxRule, cr.Pattern)
		}
		seen[cr.Pattern] = true
	}
	return nil
}

// FindManifest walks upward from start and returns the nearest
// pyproject.toml, whether or not it contains a [tool.pythaw] table. It
// returns "" when none is found before reaching the filesystem root.
func FindManifest(start string) string {
	abs, err := filepath.Abs(start)
	if err != nil {
		return ""
	}
	dir := abs
	if fi, err := os.Stat(abs); err == nil && !fi.IsDir() {
		dir = filepath.Dir(abs)
	}
	for {
		candidate := filepath.Join(dir, "pyproject.toml")
		if fi, err := os.Stat(candidate); err == nil && !fi.IsDir() {
			return candidate
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}
