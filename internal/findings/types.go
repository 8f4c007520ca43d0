// Package findings holds the data model handed across the core/external
// boundary: CallSite, CallChain, Violation, and Diagnostic (spec 3, 6). They
// are plain value types with no behavior so any collaborator -- the
// reachability engine, a formatter, a test -- can construct and compare them
// without importing the engine itself.
package findings

import "pythaw/internal/pyast"

// CallSite is one step of a call chain: where a call was made and what name
// was written at the call.
type CallSite struct {
	Position pyast.Position
	Name     string
}

// CallChain is the ordered path of CallSites from a handler to a violation
// site. A nil/empty chain means the violation sits directly in the handler
// body.
type CallChain []CallSite

// Violation is one rule match, annotated with the exact chain that reached
// it. Two violations are distinct if any of {position, code, chain} differ --
// the same site reached by two different chains yields two violations.
type Violation struct {
	Code      string
	Message   string
	Position  pyast.Position
	CallChain CallChain
}

type DiagnosticKind string

const (
	DiagnosticParseError       DiagnosticKind = "parse_error"
	DiagnosticUnresolvedImport DiagnosticKind = "unresolved_import"
)

// Diagnostic is a non-fatal warning: a file failed to parse, or an import
// could not be mapped to a project file.
type Diagnostic struct {
	Kind     DiagnosticKind
	Position pyast.Position
	Detail   string
}
