package pyast

import (
	sitter "github.com/tree-sitter/go-tree-sitter"
)

// WalkBody visits node and its descendants in source order, the same
// depth-first-over-children traversal internal/engine/parser.ExtractorEngine
// uses in the teacher project. visit returns false to stop descending into a
// node's children -- used to keep a definition's body walk from wandering
// into a nested function or class, which is a separate scope that is only
// traversed if something actually calls it.
func WalkBody(node *sitter.Node, visit func(n *sitter.Node) bool) {
	if node == nil {
		return
	}
	if !visit(node) {
		return
	}
	for i := uint(0); i < node.ChildCount(); i++ {
		WalkBody(node.Child(i), visit)
	}
}

// IsSimpleCallee reports whether node is a plain identifier or a dotted chain
// of attribute accesses rooted at an identifier (e.g. "boto3.client",
// "infra.aws.S3Client"), the only shape the name resolver can turn into a
// QualifiedName. Anything else -- a call result, a subscript, a parenthesized
// expression -- is unresolvable and skipped without a diagnostic.
func IsSimpleCallee(node *sitter.Node) bool {
	if node == nil {
		return false
	}
	switch node.Kind() {
	case "identifier":
		return true
	case "attribute":
		return IsSimpleCallee(node.ChildByFieldName("object"))
	default:
		return false
	}
}

// BaseIdentifier returns the leftmost identifier of a dotted callee chain,
// e.g. "boto3" for "boto3.client.thing".
func BaseIdentifier(file *File, node *sitter.Node) string {
	for node != nil {
		switch node.Kind() {
		case "identifier":
			return file.Text(node)
		case "attribute":
			node = node.ChildByFieldName("object")
		default:
			return ""
		}
	}
	return ""
}

// ChildOfKind returns the first direct child with the given kind.
func ChildOfKind(node *sitter.Node, kind string) *sitter.Node {
	if node == nil {
		return nil
	}
	for i := uint(0); i < node.ChildCount(); i++ {
		if node.Child(i).Kind() == kind {
			return node.Child(i)
		}
	}
	return nil
}

// ChildrenOfKind returns every direct child with the given kind, in order.
func ChildrenOfKind(node *sitter.Node, kind string) []*sitter.Node {
	if node == nil {
		return nil
	}
	var out []*sitter.Node
	for i := uint(0); i < node.ChildCount(); i++ {
		if node.Child(i).Kind() == kind {
			out = append(out, node.Child(i))
		}
	}
	return out
}
