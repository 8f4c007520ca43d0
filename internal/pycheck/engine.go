// Package pycheck is the reachability engine (spec 4.5), the heart of the
// analyzer: starting from each handler it lazily explores called
// functions/classes across files, applies the rule registry at every call
// site, and records the call chain from handler to violation. It is the
// only component with mutable state during a run (spec 5): the per-handler
// VisitKey set and the run-wide ParsedFile/Index caches.
package pycheck

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"

	"pythaw/internal/findings"
	"pythaw/internal/handlers"
	"pythaw/internal/pyast"
	"pythaw/internal/pyresolve"
	"pythaw/internal/rules"
)

// Checker owns the ParsedFile cache (via pyast.Cache), the per-file binding
// index cache, the import resolver, and the rule registry. It accumulates
// diagnostics across every handler traversal in a run.
type Checker struct {
	cache    *pyast.Cache
	resolver *pyresolve.Resolver
	registry *rules.Registry

	indexes map[string]*pyast.Index

	importDiagSeen map[string]bool
	parseDiagSeen  map[string]bool

	Diagnostics []findings.Diagnostic
}

func New(cache *pyast.Cache, resolver *pyresolve.Resolver, registry *rules.Registry) *Checker {
	return &Checker{
		cache:          cache,
		resolver:       resolver,
		registry:       registry,
		indexes:        make(map[string]*pyast.Index),
		importDiagSeen: make(map[string]bool),
		parseDiagSeen:  make(map[string]bool),
	}
}

// defTarget identifies a concrete, visitable definition: a function or
// method body in a specific file.
type defTarget struct {
	File          *pyast.File
	Node          *sitter.Node // function_definition
	QualifiedName string       // e.g. "lambda_handler" or "S3Client.__init__"
}

// CheckHandler runs the reachability traversal rooted at h and returns every
// violation found, in source-chain-then-position order (spec 4.7: emission
// order is "all violations from handler 1 in traversal order").
func (c *Checker) CheckHandler(h handlers.Handler) []findings.Violation {
	root := defTarget{File: h.File, Node: h.Node, QualifiedName: h.Name}
	visited := make(map[string]bool) // VisitKey set, reset per handler (spec 3, 4.5)
	var out []findings.Violation
	c.visit(root, nil, visited, &out)
	return out
}

func (c *Checker) index(file *pyast.File) *pyast.Index {
	if idx, ok := c.indexes[file.Path]; ok {
		return idx
	}
	idx := pyast.BuildIndex(file)
	c.indexes[file.Path] = idx
	return idx
}

// visit maintains visited as a stack, not a permanent mark: a definition is
// only skipped while it is one of its own ancestors on the current path
// (spec 4.5's cycle guard). Popping it on return lets two disjoint call
// paths into the same function each produce their own violation with their
// own chain (spec 8's "two distinct-chain violations" property), while
// self- and mutual recursion along one path still terminate.
func (c *Checker) visit(def defTarget, chain findings.CallChain, visited map[string]bool, out *[]findings.Violation) {
	key := def.File.Path + "\x00" + def.QualifiedName
	if visited[key] {
		return
	}
	visited[key] = true
	defer delete(visited, key)

	body := pyast.ChildOfKind(def.Node, "block")
	if body == nil {
		return
	}

	idx := c.index(def.File)
	localClasses := c.localInstantiations(def.File, idx, body)
	calls := pyast.FindCalls(def.File, body)

	for _, call := range calls {
		if !call.Simple {
			continue
		}
		qname, binding, ok := c.qualifiedName(idx, call.Text, call.Base)
		matched := false
		if ok {
			for _, rule := range c.registry.Match(qname) {
				matched = true
				*out = append(*out, findings.Violation{
					Code:      rule.Code,
					Message:   rule.Message,
					Position:  call.Position,
					CallChain: append(findings.CallChain{}, chain...),
				})
			}
		}

		// A rule-matched call into a module outside the project is reported,
		// not followed, so it adds no unresolved_import diagnostic.
		if matched && binding != nil && (binding.Kind == pyast.BindImportModule || binding.Kind == pyast.BindImportSymbol) {
			if _, found := c.resolver.Resolve(def.File.Path, binding.Module, binding.IsRelative, binding.Level); !found {
				continue
			}
		}

		target, recurse := c.resolveCallTarget(def.File, idx, localClasses, call, binding)
		if !recurse {
			continue
		}
		nextChain := append(append(findings.CallChain{}, chain...), findings.CallSite{
			Position: call.Position,
			Name:     call.Text,
		})
		c.visit(target, nextChain, visited, out)
	}
}

// qualifiedName canonicalizes a call's raw callee text into a QualifiedName
// using the enclosing file's binding map (spec 3 "QualifiedName",
// 4.2's canonicalization rule). Returns ok=false when the callee's leftmost
// segment is not bound to anything -- an unresolvable callee that must not
// be rule-matched or diagnosed.
func (c *Checker) qualifiedName(idx *pyast.Index, calleeText, base string) (string, *pyast.Binding, bool) {
	binding, ok := idx.Bindings[base]
	if !ok {
		return "", nil, false
	}
	switch binding.Kind {
	case pyast.BindFunction, pyast.BindClass:
		return calleeText, binding, true
	case pyast.BindImportModule:
		if calleeText == binding.Name {
			return binding.Module, binding, true
		}
		rest, ok := moduleRemainder(binding, calleeText)
		if !ok || rest == "" {
			return "", binding, false
		}
		return joinDotted(binding.Module, rest), binding, true
	case pyast.BindImportSymbol:
		full := joinDotted(binding.Module, binding.Symbol)
		if calleeText == binding.Name {
			return full, binding, true
		}
		prefix := binding.Name + "."
		if !strings.HasPrefix(calleeText, prefix) {
			return "", binding, false
		}
		rest := strings.TrimPrefix(calleeText, prefix)
		return joinDotted(full, rest), binding, true
	}
	return "", binding, false
}

// moduleRemainder strips a BindImportModule binding's bound name from
// calleeText and, for an unaliased dotted import (`import pkg.sub`, where
// Name is only pkg's first segment and Module is the full "pkg.sub"), also
// strips the repeated submodule segments of Module so the caller doesn't
// re-join them a second time (spec 4.2's `import M.sub` binding form). ok is
// false when calleeText's leftmost segment isn't this binding's name at all.
func moduleRemainder(binding *pyast.Binding, calleeText string) (string, bool) {
	prefix := binding.Name + "."
	if !strings.HasPrefix(calleeText, prefix) {
		return "", false
	}
	rest := strings.TrimPrefix(calleeText, prefix)
	if suffix := strings.TrimPrefix(binding.Module, prefix); suffix != binding.Module {
		rest = strings.TrimPrefix(rest, suffix+".")
		if rest == suffix {
			rest = ""
		}
	}
	return rest, true
}

func joinDotted(a, b string) string {
	if a == "" {
		return b
	}
	if b == "" {
		return a
	}
	return a + "." + b
}

// localInstantiations maps a local variable name to the project Class it was
// built from (spec 4.2/4.5's "obj = SomeClass(...)" tracking), resolved
// through the same binding map used for calls.
func (c *Checker) localInstantiations(file *pyast.File, idx *pyast.Index, body *sitter.Node) map[string]*classRef {
	out := make(map[string]*classRef)
	for _, a := range pyast.FindAssignments(file, body) {
		ref := c.resolveClassRef(file, idx, a.CallText, a.CallBase)
		if ref != nil {
			out[a.Target] = ref
		}
	}
	return out
}

type classRef struct {
	File *pyast.File
	Info *pyast.ClassInfo
	Name string
}

// resolveClassRef resolves a constructor-call-shaped callee text to the
// project Class it names, whether the class is local to file or reached
// through an import.
func (c *Checker) resolveClassRef(file *pyast.File, idx *pyast.Index, calleeText, base string) *classRef {
	binding, ok := idx.Bindings[base]
	if !ok {
		return nil
	}
	switch binding.Kind {
	case pyast.BindClass:
		if calleeText != binding.Name {
			return nil
		}
		info, ok := idx.Classes[binding.Name]
		if !ok {
			return nil
		}
		return &classRef{File: file, Info: info, Name: binding.Name}
	case pyast.BindImportSymbol:
		if calleeText != binding.Name {
			return nil
		}
		target, ok := c.resolveImport(file.Path, binding.Module, binding.IsRelative, binding.Level)
		if !ok {
			return nil
		}
		targetIdx := c.index(target)
		info, ok := targetIdx.Classes[binding.Symbol]
		if !ok {
			return nil
		}
		return &classRef{File: target, Info: info, Name: binding.Symbol}
	case pyast.BindImportModule:
		rest, ok := moduleRemainder(binding, calleeText)
		if !ok || rest == "" || strings.Contains(rest, ".") {
			return nil
		}
		target, ok := c.resolveImport(file.Path, binding.Module, binding.IsRelative, binding.Level)
		if !ok {
			return nil
		}
		targetIdx := c.index(target)
		info, ok := targetIdx.Classes[rest]
		if !ok {
			return nil
		}
		return &classRef{File: target, Info: info, Name: rest}
	}
	return nil
}

// resolveCallTarget attempts to resolve call to a concrete Definition to
// recurse into (spec 4.5's third sub-bullet list). It is also where an
// unresolved import is detected and diagnosed exactly once per (importer,
// target) pair.
func (c *Checker) resolveCallTarget(file *pyast.File, idx *pyast.Index, localClasses map[string]*classRef, call pyast.CallExpr, binding *pyast.Binding) (defTarget, bool) {
	if binding != nil {
		switch binding.Kind {
		case pyast.BindFunction:
			if call.Text == binding.Name {
				return defTarget{File: file, Node: binding.Node, QualifiedName: binding.Name}, true
			}
			return defTarget{}, false

		case pyast.BindClass:
			if call.Text != binding.Name {
				return defTarget{}, false
			}
			info := idx.Classes[binding.Name]
			init := info.Methods["__init__"]
			if init == nil {
				return defTarget{}, false
			}
			return defTarget{File: file, Node: init, QualifiedName: binding.Name + ".__init__"}, true

		case pyast.BindImportModule, pyast.BindImportSymbol:
			return c.resolveImportedCallTarget(file, binding, call)
		}
	}

	// Not bound at the top level: check whether this is obj.method() on a
	// variable produced by a tracked local instantiation.
	if dot := strings.IndexByte(call.Text, '.'); dot > 0 {
		objName := call.Text[:dot]
		method := call.Text[dot+1:]
		if strings.Contains(method, ".") {
			return defTarget{}, false
		}
		if ref, ok := localClasses[objName]; ok {
			if m, ok := ref.Info.Methods[method]; ok {
				return defTarget{File: ref.File, Node: m, QualifiedName: ref.Name + "." + method}, true
			}
		}
	}
	return defTarget{}, false
}

func (c *Checker) resolveImportedCallTarget(file *pyast.File, binding *pyast.Binding, call pyast.CallExpr) (defTarget, bool) {
	var symbolChain []string
	switch binding.Kind {
	case pyast.BindImportSymbol:
		symbolChain = append(symbolChain, binding.Symbol)
		if call.Text != binding.Name {
			prefix := binding.Name + "."
			if !strings.HasPrefix(call.Text, prefix) {
				return defTarget{}, false
			}
			rest := strings.TrimPrefix(call.Text, prefix)
			symbolChain = append(symbolChain, strings.Split(rest, ".")...)
		}
	case pyast.BindImportModule:
		if call.Text == binding.Name {
			return defTarget{}, false // bare module reference, not a call target
		}
		rest, ok := moduleRemainder(binding, call.Text)
		if !ok || rest == "" {
			return defTarget{}, false
		}
		symbolChain = strings.Split(rest, ".")
	}
	if len(symbolChain) == 0 {
		return defTarget{}, false
	}

	target, ok := c.resolveImport(file.Path, binding.Module, binding.IsRelative, binding.Level)
	if !ok {
		return defTarget{}, false
	}

	targetIdx := c.index(target)
	first := symbolChain[0]

	if tb, ok := targetIdx.Bindings[first]; ok && tb.Kind == pyast.BindFunction && len(symbolChain) == 1 {
		return defTarget{File: target, Node: tb.Node, QualifiedName: first}, true
	}
	if info, ok := targetIdx.Classes[first]; ok {
		if len(symbolChain) == 1 {
			init := info.Methods["__init__"]
			if init == nil {
				return defTarget{}, false
			}
			return defTarget{File: target, Node: init, QualifiedName: first + ".__init__"}, true
		}
		if len(symbolChain) == 2 {
			if m, ok := info.Methods[symbolChain[1]]; ok {
				return defTarget{File: target, Node: m, QualifiedName: first + "." + symbolChain[1]}, true
			}
		}
	}
	return defTarget{}, false
}

// resolveImport follows an import binding to a concrete project file,
// parsing it through the shared cache. A failed resolution is reported as an
// unresolved_import diagnostic exactly once per (importer, module) pair.
func (c *Checker) resolveImport(fromFile, module string, isRelative bool, level int) (*pyast.File, bool) {
	path, ok := c.resolver.Resolve(fromFile, module, isRelative, level)
	if !ok {
		c.diagnoseUnresolvedImport(fromFile, module)
		return nil, false
	}
	target, err := c.cache.Get(path)
	if err != nil || target.Status == pyast.StatusFailed {
		c.diagnoseParseFailure(target)
		return nil, false
	}
	return target, true
}

func (c *Checker) diagnoseUnresolvedImport(fromFile, module string) {
	key := fromFile + "\x00" + module
	if c.importDiagSeen[key] {
		return
	}
	c.importDiagSeen[key] = true
	c.Diagnostics = append(c.Diagnostics, findings.Diagnostic{
		Kind:     findings.DiagnosticUnresolvedImport,
		Position: pyast.Position{File: fromFile, Line: 1, Column: 0},
		Detail:   fmt.Sprintf("unresolved import %q", module),
	})
	slog.Debug("unresolved import", "file", fromFile, "module", module)
}

func (c *Checker) diagnoseParseFailure(file *pyast.File) {
	if file == nil || file.Err == nil {
		return
	}
	if c.parseDiagSeen[file.Path] {
		return
	}
	c.parseDiagSeen[file.Path] = true
	c.Diagnostics = append(c.Diagnostics, findings.Diagnostic{
		Kind:     findings.DiagnosticParseError,
		Position: file.Err.Position,
		Detail:   file.Err.Message,
	})
}

// SortedDiagnostics returns diagnostics ordered by first occurrence, which is
// simply append order since diagnoseUnresolvedImport/diagnoseParseFailure
// already dedupe before appending.
func (c *Checker) SortedDiagnostics() []findings.Diagnostic {
	out := make([]findings.Diagnostic, len(c.Diagnostics))
	copy(out, c.Diagnostics)
	return out
}

// SortHandlers is used by the CLI layer to guarantee a deterministic
// handler visitation order before calling CheckHandler repeatedly.
func SortHandlers(hs []handlers.Handler) {
	sort.SliceStable(hs, func(i, j int) bool {
		if hs[i].File.Path != hs[j].File.Path {
			return hs[i].File.Path < hs[j].File.Path
		}
		return hs[i].Position.Line < hs[j].Position.Line
	})
}
