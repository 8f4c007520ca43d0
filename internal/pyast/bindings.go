package pyast

import (
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

type BindingKind int

const (
	BindFunction BindingKind = iota
	BindClass
	BindImportModule // "import M" or "import M as alias"
	BindImportSymbol // "from M import X" or "from M import X as alias"
)

// Binding is what a top-level identifier in a file resolves to. It mirrors
// the spec's Definition variant {Function, Class, Imported}, but keeps the
// syntax-tree reference instead of eagerly materializing a Definition, since
// the reachability engine only needs to look one further than a resolved
// callee at a time (a lazy call graph, not a fully built one).
type Binding struct {
	Kind BindingKind
	Name string

	// BindFunction / BindClass
	Node *sitter.Node

	// BindImportModule / BindImportSymbol
	Module     string // dotted module path, e.g. "infra.aws"
	Symbol     string // for BindImportSymbol: the imported name inside Module
	IsRelative bool
	Level      int // number of leading dots for a relative import
}

// ClassInfo is a project-local class's method table, built recursively so
// nested classes' methods are reachable the way the spec requires.
type ClassInfo struct {
	Node    *sitter.Node
	Methods map[string]*sitter.Node
	Nested  map[string]*ClassInfo
}

// Index is the per-file binding map: local identifier -> Binding, built once
// from a file's top-level statements only. Function bodies are not scanned
// here -- local assignments inside a function are handled separately by the
// reachability engine's own scan of that function's body (see pycheck).
type Index struct {
	File      *File
	Bindings  map[string]*Binding
	Classes   map[string]*ClassInfo
	Wildcards []string // modules imported via "from M import *"
}

func BuildIndex(file *File) *Index {
	idx := &Index{
		File:     file,
		Bindings: make(map[string]*Binding),
		Classes:  make(map[string]*ClassInfo),
	}
	if file.Root == nil {
		return idx
	}
	for i := uint(0); i < file.Root.ChildCount(); i++ {
		idx.indexTopLevelStatement(file.Root.Child(i))
	}
	return idx
}

func (idx *Index) indexTopLevelStatement(node *sitter.Node) {
	if node == nil {
		return
	}
	switch node.Kind() {
	case "decorated_definition":
		for i := uint(0); i < node.ChildCount(); i++ {
			child := node.Child(i)
			if child.Kind() == "function_definition" || child.Kind() == "class_definition" {
				idx.indexTopLevelStatement(child)
			}
		}
	case "function_definition":
		name := functionName(idx.File, node)
		if name != "" {
			idx.Bindings[name] = &Binding{Kind: BindFunction, Name: name, Node: node}
		}
	case "class_definition":
		name := functionName(idx.File, node)
		if name != "" {
			info := buildClassInfo(idx.File, node)
			idx.Classes[name] = info
			idx.Bindings[name] = &Binding{Kind: BindClass, Name: name, Node: node}
		}
	case "import_statement":
		idx.indexImportStatement(node)
	case "import_from_statement":
		idx.indexImportFromStatement(node)
	}
}

func functionName(file *File, defNode *sitter.Node) string {
	if n := ChildOfKind(defNode, "identifier"); n != nil {
		return file.Text(n)
	}
	return ""
}

func buildClassInfo(file *File, classNode *sitter.Node) *ClassInfo {
	info := &ClassInfo{
		Node:    classNode,
		Methods: make(map[string]*sitter.Node),
		Nested:  make(map[string]*ClassInfo),
	}
	body := ChildOfKind(classNode, "block")
	if body == nil {
		return info
	}
	for i := uint(0); i < body.ChildCount(); i++ {
		stmt := body.Child(i)
		switch stmt.Kind() {
		case "function_definition":
			if name := functionName(file, stmt); name != "" {
				info.Methods[name] = stmt
			}
		case "decorated_definition":
			for j := uint(0); j < stmt.ChildCount(); j++ {
				inner := stmt.Child(j)
				if inner.Kind() == "function_definition" {
					if name := functionName(file, inner); name != "" {
						info.Methods[name] = inner
					}
				} else if inner.Kind() == "class_definition" {
					if name := functionName(file, inner); name != "" {
						info.Nested[name] = buildClassInfo(file, inner)
					}
				}
			}
		case "class_definition":
			if name := functionName(file, stmt); name != "" {
				info.Nested[name] = buildClassInfo(file, stmt)
			}
		}
	}
	return info
}

// import_statement: "import" dotted_name ("," dotted_name)*  |  "import" aliased_import (...)
func (idx *Index) indexImportStatement(node *sitter.Node) {
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		switch child.Kind() {
		case "dotted_name", "identifier":
			module := idx.File.Text(child)
			base := firstSegment(module)
			idx.Bindings[base] = &Binding{Kind: BindImportModule, Name: base, Module: module}
		case "aliased_import":
			var module, alias string
			for j := uint(0); j < child.ChildCount(); j++ {
				sub := child.Child(j)
				switch sub.Kind() {
				case "dotted_name":
					module = idx.File.Text(sub)
				case "identifier":
					if module == "" {
						module = idx.File.Text(sub)
					} else {
						alias = idx.File.Text(sub)
					}
				}
			}
			if alias == "" {
				alias = firstSegment(module)
			}
			if module != "" {
				idx.Bindings[alias] = &Binding{Kind: BindImportModule, Name: alias, Module: module}
			}
		}
	}
}

// import_from_statement: "from" (relative_import | dotted_name) "import" (wildcard_import | import_list | aliased_import | dotted_name)
func (idx *Index) indexImportFromStatement(node *sitter.Node) {
	var module string
	isRelative := false
	level := 0

	seenImportKeyword := false
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		switch child.Kind() {
		case "import":
			seenImportKeyword = true
			continue
		case "relative_import":
			isRelative = true
			text := idx.File.Text(child)
			level = len(text) - len(strings.TrimLeft(text, "."))
			module = strings.TrimLeft(text, ".")
		case "dotted_name":
			if !seenImportKeyword {
				module = idx.File.Text(child)
				continue
			}
			idx.bindFromImport(module, idx.File.Text(child), "", isRelative, level)
		case "identifier":
			if !seenImportKeyword {
				module = idx.File.Text(child)
				continue
			}
			idx.bindFromImport(module, idx.File.Text(child), "", isRelative, level)
		case "wildcard_import":
			idx.Wildcards = append(idx.Wildcards, module)
		case "aliased_import":
			var symbol, alias string
			for j := uint(0); j < child.ChildCount(); j++ {
				sub := child.Child(j)
				switch sub.Kind() {
				case "dotted_name", "identifier":
					if symbol == "" {
						symbol = idx.File.Text(sub)
					} else {
						alias = idx.File.Text(sub)
					}
				}
			}
			idx.bindFromImport(module, symbol, alias, isRelative, level)
		case "import_list":
			idx.indexImportList(module, child, isRelative, level)
		}
	}
}

func (idx *Index) indexImportList(module string, list *sitter.Node, isRelative bool, level int) {
	for i := uint(0); i < list.ChildCount(); i++ {
		item := list.Child(i)
		switch item.Kind() {
		case "dotted_name", "identifier":
			idx.bindFromImport(module, idx.File.Text(item), "", isRelative, level)
		case "aliased_import":
			var symbol, alias string
			for j := uint(0); j < item.ChildCount(); j++ {
				sub := item.Child(j)
				switch sub.Kind() {
				case "dotted_name", "identifier":
					if symbol == "" {
						symbol = idx.File.Text(sub)
					} else {
						alias = idx.File.Text(sub)
					}
				}
			}
			idx.bindFromImport(module, symbol, alias, isRelative, level)
		}
	}
}

func (idx *Index) bindFromImport(module, symbol, alias string, isRelative bool, level int) {
	if symbol == "" {
		return
	}
	name := alias
	if name == "" {
		name = symbol
	}
	idx.Bindings[name] = &Binding{
		Kind:       BindImportSymbol,
		Name:       name,
		Module:     module,
		Symbol:     symbol,
		IsRelative: isRelative,
		Level:      level,
	}
}

func firstSegment(dotted string) string {
	if idx := strings.IndexByte(dotted, '.'); idx >= 0 {
		return dotted[:idx]
	}
	return dotted
}
