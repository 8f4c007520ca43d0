// Package handlers is the handler finder (spec 4.6): it walks a file tree,
// parses each Python file, and enumerates top-level function definitions
// whose name matches a configured glob pattern. Exclude patterns restrict
// this enumeration only -- they never stop the reachability engine from
// following an import into an excluded location (spec's open question,
// adopted verbatim: this is not a bug to "fix").
package handlers

import (
	"context"
	"log/slog"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gobwas/glob"
	"golang.org/x/time/rate"

	"pythaw/internal/findings"
	"pythaw/internal/pyast"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

// Handler is a discovered entry point: a top-level function whose name
// matched a handler-name pattern.
type Handler struct {
	File     *pyast.File
	Name     string
	Node     *sitter.Node
	Position pyast.Position
}

type Finder struct {
	cache           *pyast.Cache
	handlerPatterns []glob.Glob
	exclude         []glob.Glob
	// limiter paces the sequential per-file parse loop during discovery
	// (one Wait per file); it does not run anything concurrently.
	limiter *rate.Limiter
}

func New(cache *pyast.Cache, handlerPatterns, exclude []string) (*Finder, error) {
	f := &Finder{cache: cache, limiter: rate.NewLimiter(rate.Limit(32), 8)}
	for _, p := range handlerPatterns {
		g, err := glob.Compile(p)
		if err != nil {
			return nil, err
		}
		f.handlerPatterns = append(f.handlerPatterns, g)
	}
	for _, p := range exclude {
		g, err := glob.Compile(p)
		if err != nil {
			return nil, err
		}
		f.exclude = append(f.exclude, g)
	}
	return f, nil
}

// Find enumerates handlers under the given target paths (files or
// directories), returning them in a stable, deterministic order (sorted by
// file, then by position) along with diagnostics for any file that failed
// to parse.
func (f *Finder) Find(ctx context.Context, targets []string) ([]Handler, []findings.Diagnostic, error) {
	var files []string
	for _, target := range targets {
		collected, err := CollectFiles(target, f.isExcluded)
		if err != nil {
			return nil, nil, err
		}
		files = append(files, collected...)
	}
	sort.Strings(files)

	var handlersOut []Handler
	var diags []findings.Diagnostic
	for _, path := range files {
		if err := f.limiter.Wait(ctx); err != nil {
			return nil, nil, err
		}
		file, err := f.cache.Get(path)
		if err != nil {
			return nil, nil, err
		}
		if file.Status == pyast.StatusFailed {
			diags = append(diags, findings.Diagnostic{
				Kind:     findings.DiagnosticParseError,
				Position: file.Err.Position,
				Detail:   file.Err.Message,
			})
			continue
		}
		found := f.extractHandlers(file)
		slog.Debug("scanned file for handlers", "path", path, "found", len(found))
		handlersOut = append(handlersOut, found...)
	}

	sort.SliceStable(handlersOut, func(i, j int) bool {
		a, b := handlersOut[i], handlersOut[j]
		if a.File.Path != b.File.Path {
			return a.File.Path < b.File.Path
		}
		if a.Position.Line != b.Position.Line {
			return a.Position.Line < b.Position.Line
		}
		return a.Position.Column < b.Position.Column
	})
	return handlersOut, diags, nil
}

func (f *Finder) extractHandlers(file *pyast.File) []Handler {
	var out []Handler
	if file.Root == nil {
		return out
	}
	for i := uint(0); i < file.Root.ChildCount(); i++ {
		node := file.Root.Child(i)
		defNode := node
		if node.Kind() == "decorated_definition" {
			defNode = pyast.ChildOfKind(node, "function_definition")
			if defNode == nil {
				continue
			}
		}
		if defNode.Kind() != "function_definition" {
			continue
		}
		name := functionName(file, defNode)
		if name == "" || !f.matchesHandlerName(name) {
			continue
		}
		out = append(out, Handler{
			File:     file,
			Name:     name,
			Node:     defNode,
			Position: file.Location(defNode),
		})
	}
	return out
}

func functionName(file *pyast.File, defNode *sitter.Node) string {
	if n := pyast.ChildOfKind(defNode, "identifier"); n != nil {
		return file.Text(n)
	}
	return ""
}

func (f *Finder) matchesHandlerName(name string) bool {
	for _, g := range f.handlerPatterns {
		if g.Match(name) {
			return true
		}
	}
	return false
}

func (f *Finder) isExcluded(relPath string) bool {
	for _, g := range f.exclude {
		if g.Match(relPath) {
			return true
		}
		for _, part := range strings.Split(relPath, string(filepath.Separator)) {
			if g.Match(part) {
				return true
			}
		}
	}
	return false
}

// CollectFiles gathers *.py files under target (a file or directory),
// preferring `git ls-files` (respecting .gitignore) when target sits inside
// a git repository, falling back to a recursive walk otherwise -- ported
// from the original tool's finder.collect_files.
func CollectFiles(target string, excluded func(relPath string) bool) ([]string, error) {
	abs, err := filepath.Abs(target)
	if err != nil {
		return nil, err
	}

	fi, err := osStat(abs)
	if err != nil {
		return nil, err
	}
	if !fi.IsDir() {
		return []string{abs}, nil
	}

	files := gitLsFiles(abs)
	if files == nil {
		files = rglobPy(abs)
	}

	var out []string
	for _, file := range files {
		rel, err := filepath.Rel(abs, file)
		if err != nil {
			rel = file
		}
		if excluded != nil && excluded(rel) {
			continue
		}
		out = append(out, file)
	}
	return out, nil
}

func gitLsFiles(dir string) []string {
	cmd := exec.Command("git", "ls-files", "--cached", "--others", "--exclude-standard", "-z", "*.py")
	cmd.Dir = dir
	out, err := cmd.Output()
	if err != nil {
		return nil
	}
	var files []string
	for _, name := range strings.Split(string(out), "\x00") {
		if name == "" {
			continue
		}
		full := filepath.Join(dir, name)
		if fi, err := osStat(full); err == nil && !fi.IsDir() {
			files = append(files, full)
		}
	}
	return files
}

func rglobPy(dir string) []string {
	var files []string
	_ = walkDir(dir, func(path string, isDir bool) {
		if !isDir && strings.HasSuffix(path, ".py") {
			files = append(files, path)
		}
	})
	return files
}
