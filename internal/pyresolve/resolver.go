// Package pyresolve maps a dotted import reference onto a concrete file
// inside the project root, or classifies it as external. This is the import
// resolver component of the spec (4.3); it has no knowledge of the call
// graph or rules, only of the file tree.
package pyresolve

import (
	"os"
	"path/filepath"
	"strings"
)

type Resolver struct {
	ProjectRoot string
}

func New(projectRoot string) *Resolver {
	return &Resolver{ProjectRoot: projectRoot}
}

// Resolve maps a module reference to a project-local file path. fromFile is
// the importing file, needed to anchor relative imports. module is the
// dotted path as recorded on the binding ("" for a bare "from . import x").
// isRelative/level carry the leading-dot count for "from .pkg import x"
// style references.
func (r *Resolver) Resolve(fromFile, module string, isRelative bool, level int) (string, bool) {
	if isRelative {
		return r.resolveRelative(fromFile, module, level)
	}
	return r.resolveAbsolute(module)
}

func (r *Resolver) resolveAbsolute(module string) (string, bool) {
	if module == "" {
		return "", false
	}
	parts := strings.Split(module, ".")
	base := filepath.Join(append([]string{r.ProjectRoot}, parts...)...)
	return probe(base)
}

func (r *Resolver) resolveRelative(fromFile, module string, level int) (string, bool) {
	dir := filepath.Dir(fromFile)
	for i := 1; i < level; i++ {
		dir = filepath.Dir(dir)
	}
	if module == "" {
		if fi, err := os.Stat(filepath.Join(dir, "__init__.py")); err == nil && !fi.IsDir() {
			return filepath.Join(dir, "__init__.py"), true
		}
		return "", false
	}
	parts := strings.Split(module, ".")
	base := filepath.Join(append([]string{dir}, parts...)...)
	return probe(base)
}

// probe tries base.py, then base/__init__.py.
func probe(base string) (string, bool) {
	asFile := base + ".py"
	if fi, err := os.Stat(asFile); err == nil && !fi.IsDir() {
		return asFile, true
	}
	asPackage := filepath.Join(base, "__init__.py")
	if fi, err := os.Stat(asPackage); err == nil && !fi.IsDir() {
		return asPackage, true
	}
	return "", false
}
