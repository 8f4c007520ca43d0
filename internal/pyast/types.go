// Package pyast wraps the tree-sitter Python grammar and exposes the syntax
// tree in the shape the reachability engine needs: cached per path, source
// positions normalized to the 1-indexed-line/0-indexed-column convention the
// formatters emit, and a failed parse represented as a value instead of an
// error so a bad file degrades to a diagnostic rather than aborting the run.
package pyast

import (
	sitter "github.com/tree-sitter/go-tree-sitter"
)

// Position is a location in a source file, normalized to 1-indexed line and
// 0-indexed column to match the output format.
type Position struct {
	File   string
	Line   int
	Column int
}

type ParseStatus int

const (
	StatusOK ParseStatus = iota
	StatusFailed
)

type ParseError struct {
	Message  string
	Position Position
}

// File is a parsed source file. It is created on first access to a path and
// cached for the lifetime of a run; a given path is parsed at most once.
type File struct {
	Path   string
	Source []byte
	Tree   *sitter.Tree
	Root   *sitter.Node
	Status ParseStatus
	Err    *ParseError
}

func (f *File) Text(node *sitter.Node) string {
	if node == nil {
		return ""
	}
	return string(f.Source[node.StartByte():node.EndByte()])
}

func (f *File) Location(node *sitter.Node) Position {
	return Position{
		File:   f.Path,
		Line:   int(node.StartPosition().Row) + 1,
		Column: int(node.StartPosition().Column),
	}
}

func (f *File) Close() {
	if f.Tree != nil {
		f.Tree.Close()
	}
}
