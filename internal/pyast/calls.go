package pyast

import (
	sitter "github.com/tree-sitter/go-tree-sitter"
)

// CallExpr is one "call" node found while walking a definition's body.
type CallExpr struct {
	Node     *sitter.Node
	Callee   *sitter.Node // first identifier or attribute child; nil for any other callee shape
	Simple   bool         // true when Callee is a plain dotted identifier chain
	Text     string       // raw text of Callee when Simple
	Base     string       // leftmost identifier of Text when Simple
	Position Position
}

// Assignment is a simple "name = Call(...)" top-level-of-scope assignment,
// used to track which project class a local variable was instantiated from
// (spec 4.2/4.5: "obj = SomeClass(...)" within the current function body).
type Assignment struct {
	Target   string
	CallText string // raw callee text of the right-hand call, e.g. "S3Client"
	CallBase string
}

// FindCalls walks body in source order collecting every "call" node,
// without descending into nested function_definition or class_definition
// bodies: those are separate scopes, only visited if something calls them.
func FindCalls(file *File, body *sitter.Node) []CallExpr {
	var calls []CallExpr
	WalkBody(body, func(n *sitter.Node) bool {
		if n != body && (n.Kind() == "function_definition" || n.Kind() == "class_definition") {
			return false
		}
		if n.Kind() == "call" {
			calls = append(calls, buildCallExpr(file, n))
		}
		return true
	})
	return calls
}

func buildCallExpr(file *File, callNode *sitter.Node) CallExpr {
	ce := CallExpr{Node: callNode, Position: file.Location(callNode)}
	callee := firstCalleeChild(callNode)
	if callee == nil {
		return ce
	}
	ce.Callee = callee
	if IsSimpleCallee(callee) {
		ce.Simple = true
		ce.Text = file.Text(callee)
		ce.Base = BaseIdentifier(file, callee)
	}
	return ce
}

// firstCalleeChild mirrors the teacher's extractCall: the callee is the
// first direct child of the call node that is an identifier or attribute
// chain (the node preceding the argument_list).
func firstCalleeChild(callNode *sitter.Node) *sitter.Node {
	for i := uint(0); i < callNode.ChildCount(); i++ {
		child := callNode.Child(i)
		if child.Kind() == "identifier" || child.Kind() == "attribute" {
			return child
		}
	}
	return nil
}

// FindAssignments collects "name = Call(...)" statements within body, at any
// depth but not crossing into a nested function/class scope, so the engine
// can resolve obj.method() back to the class obj was instantiated from.
func FindAssignments(file *File, body *sitter.Node) []Assignment {
	var out []Assignment
	WalkBody(body, func(n *sitter.Node) bool {
		if n != body && (n.Kind() == "function_definition" || n.Kind() == "class_definition") {
			return false
		}
		if n.Kind() == "assignment" {
			left := n.ChildByFieldName("left")
			right := n.ChildByFieldName("right")
			if left != nil && right != nil && left.Kind() == "identifier" && right.Kind() == "call" {
				callee := firstCalleeChild(right)
				if callee != nil && IsSimpleCallee(callee) {
					out = append(out, Assignment{
						Target:   file.Text(left),
						CallText: file.Text(callee),
						CallBase: BaseIdentifier(file, callee),
					})
				}
			}
		}
		return true
	})
	return out
}
