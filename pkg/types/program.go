package types

import "fmt"

// ResultKind selects which aspect of the matched nodes an expression yields.
type ResultKind uint8

const (
	KindNode ResultKind = iota
	KindValue
	KindCount
	KindName
	KindPath
)

// String returns the type declarator spelling of the kind.
func (k ResultKind) String() string {
	switch k {
	case KindNode:
		return "node"
	case KindValue:
		return "value"
	case KindCount:
		return "count"
	case KindName:
		return "name"
	case KindPath:
		return "path"
	default:
		return fmt.Sprintf("ResultKind(%d)", k)
	}
}

// ParseResultKind parses a type declarator name.
func ParseResultKind(s string) (ResultKind, bool) {
	switch s {
	case "node":
		return KindNode, true
	case "value":
		return KindValue, true
	case "count":
		return KindCount, true
	case "name":
		return KindName, true
	case "path":
		return KindPath, true
	default:
		return KindNode, false
	}
}

// LogicalKind is a boolean set operator.
type LogicalKind uint8

const (
	LogicalOr LogicalKind = iota
	LogicalAnd
	LogicalXor
	LogicalNot
)

// String returns the operator symbol.
func (k LogicalKind) String() string {
	switch k {
	case LogicalOr:
		return "|"
	case LogicalAnd:
		return "&"
	case LogicalXor:
		return "^"
	case LogicalNot:
		return "!"
	default:
		return fmt.Sprintf("LogicalKind(%d)", k)
	}
}

// Logical combines the running set of its group with the set its own
// chain yields.
type Logical struct {
	Kind  LogicalKind
	Chain []Iterator
}

// Group is one parenthesized scope of an expression.
type Group struct {
	// Parent is the index of the enclosing group, or -1 for the outermost one.
	Parent int
	// Reference is set when the group starts with '@'.
	Reference bool
	// Logicals holds at least one entry; the first is always an OR.
	Logicals []Logical
}

// Program is a compiled expression: an arena of groups plus the type
// declarator. Groups[0] is the outermost group.
//
// A Program is immutable after compilation and safe for concurrent use.
type Program struct {
	Source  string
	Groups  []Group
	Kind    ResultKind
	Convert string
}

// NewProgram creates a program holding only an empty outermost group.
func NewProgram(source string) *Program {
	return &Program{
		Source: source,
		Groups: []Group{{Parent: -1, Logicals: []Logical{{Kind: LogicalOr}}}},
	}
}

// Reference reports whether the expression as a whole is a reference
// expression ("@@...").
func (p *Program) Reference() bool {
	return len(p.Groups) > 0 && p.Groups[0].Reference
}
