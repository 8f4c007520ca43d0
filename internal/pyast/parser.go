package pyast

import (
	"fmt"

	sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_python "github.com/tree-sitter/tree-sitter-python/bindings/go"
)

// Parser wraps a single tree-sitter Python grammar, mirroring the way
// internal/engine/parser.Parser in the teacher project owns one *sitter.Language
// per registered extension, except this analyzer only ever needs Python.
type Parser struct {
	language *sitter.Language
}

func NewParser() (*Parser, error) {
	lang := sitter.NewLanguage(tree_sitter_python.Language())
	if lang == nil {
		return nil, fmt.Errorf("pyast: failed to load python grammar")
	}
	return &Parser{language: lang}, nil
}

// Parse always returns a *File, never an error for syntax problems: a bad
// parse becomes StatusFailed so the caller can emit a diagnostic and move on.
func (p *Parser) Parse(path string, source []byte) *File {
	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(p.language)

	tree := parser.Parse(source, nil)
	file := &File{Path: path, Source: source}
	if tree == nil {
		file.Status = StatusFailed
		file.Err = &ParseError{Message: "parse failed", Position: Position{File: path, Line: 1, Column: 0}}
		return file
	}

	root := tree.RootNode()
	file.Tree = tree
	file.Root = root

	if root.HasError() {
		errNode := firstErrorNode(root)
		pos := Position{File: path, Line: 1, Column: 0}
		if errNode != nil {
			pos = Position{
				File:   path,
				Line:   int(errNode.StartPosition().Row) + 1,
				Column: int(errNode.StartPosition().Column),
			}
		}
		file.Status = StatusFailed
		file.Err = &ParseError{Message: "syntax error", Position: pos}
		return file
	}

	file.Status = StatusOK
	return file
}

func firstErrorNode(node *sitter.Node) *sitter.Node {
	if node.IsError() || node.IsMissing() {
		return node
	}
	for i := uint(0); i < node.ChildCount(); i++ {
		if found := firstErrorNode(node.Child(i)); found != nil {
			return found
		}
	}
	return nil
}
