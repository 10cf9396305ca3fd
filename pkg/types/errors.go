package types

import (
	"errors"
	"fmt"
	"strings"

	"github.com/sandrolain/golambda/pkg/node"
)

// ErrorCode identifies a lambda expression error.
type ErrorCode string

// Error codes, grouped by family.
const (
	// S01xx: Lexical errors
	ErrStringNotClosed   ErrorCode = "S0101"
	ErrNewlineInString   ErrorCode = "S0102"
	ErrUnsupportedEscape ErrorCode = "S0103"
	ErrBadCarriageReturn ErrorCode = "S0104"

	// S02xx: Syntax errors
	ErrNotAnExpression    ErrorCode = "S0201"
	ErrUnopenedGroup      ErrorCode = "S0202"
	ErrUnclosedGroup      ErrorCode = "S0203"
	ErrBadRange           ErrorCode = "S0204"
	ErrBadModulo          ErrorCode = "S0205"
	ErrBadSibling         ErrorCode = "S0206"
	ErrUnknownType        ErrorCode = "S0207"
	ErrDuplicateReference ErrorCode = "S0208"
	ErrBadTypedValue      ErrorCode = "S0209"
	ErrBadFormat          ErrorCode = "S0210"

	// S03xx: Regex errors
	ErrRegexNotClosed ErrorCode = "S0301"
	ErrRegexOption    ErrorCode = "S0302"
	ErrRegexPattern   ErrorCode = "S0303"

	// D30xx: Semantic errors
	ErrReferenceType  ErrorCode = "D3010"
	ErrRecursionDepth ErrorCode = "D3020"
	ErrReadOnly       ErrorCode = "D3030"
	ErrNoNode         ErrorCode = "D3040"
	ErrCancelled      ErrorCode = "D3050"
	ErrNotFormatted   ErrorCode = "D3060"

	// T10xx: Coercion errors
	ErrConversion    ErrorCode = "T1001"
	ErrUnknownTarget ErrorCode = "T1002"
	ErrNotSingleNode ErrorCode = "T1003"
)

// Category is the broad class of an error.
type Category string

const (
	CategoryLexical  Category = "lexical"
	CategorySyntax   Category = "syntax"
	CategorySemantic Category = "semantic"
	CategoryCoercion Category = "coercion"
)

// Error represents a structured lambda expression error.
type Error struct {
	Code       ErrorCode
	Message    string
	Expression string
	Position   int
	Token      string
	// Node is a detached copy of the neighbourhood of the node being
	// evaluated when the error was raised, or nil.
	Node *node.Node
	Err  error
}

// NewError creates a new error. Use a negative position when none applies.
func NewError(code ErrorCode, message string, position int) *Error {
	return &Error{
		Code:     code,
		Message:  message,
		Position: position,
	}
}

// Error implements the error interface.
func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(string(e.Code))
	if e.Position >= 0 {
		fmt.Fprintf(&b, " at position %d", e.Position)
	}
	b.WriteString(": ")
	b.WriteString(e.Message)
	if e.Expression != "" {
		fmt.Fprintf(&b, " in expression %q", e.Expression)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

// Unwrap returns the wrapped error.
func (e *Error) Unwrap() error {
	return e.Err
}

// Category derives the error's class from its code.
func (e *Error) Category() Category {
	c := string(e.Code)
	switch {
	case strings.HasPrefix(c, "S01"):
		return CategoryLexical
	case strings.HasPrefix(c, "S"):
		return CategorySyntax
	case strings.HasPrefix(c, "T"):
		return CategoryCoercion
	default:
		return CategorySemantic
	}
}

// WithToken adds token information to the error.
func (e *Error) WithToken(token string) *Error {
	e.Token = token
	return e
}

// WithCause wraps another error.
func (e *Error) WithCause(err error) *Error {
	e.Err = err
	return e
}

// WithExpression records the expression text, unless one is already set.
func (e *Error) WithExpression(expr string) *Error {
	if e.Expression == "" {
		e.Expression = expr
	}
	return e
}

// WithNode records a detached copy of n's surroundings, taken from up to two
// levels above n so later mutation of the tree does not alter it.
func (e *Error) WithNode(n *node.Node) *Error {
	if n == nil || e.Node != nil {
		return e
	}
	ctx := n
	for i := 0; i < 2 && ctx.Parent() != nil; i++ {
		ctx = ctx.Parent()
	}
	e.Node = ctx.Clone()
	return e
}

// HasCode reports whether err's chain holds an *Error with the given code.
func HasCode(err error, code ErrorCode) bool {
	var e *Error
	for err != nil {
		if !errors.As(err, &e) {
			return false
		}
		if e.Code == code {
			return true
		}
		err = e.Err
	}
	return false
}

// Annotate attaches expression and node context to err when it is an *Error.
// Other errors are returned unchanged.
func Annotate(err error, expr string, n *node.Node) error {
	var e *Error
	if errors.As(err, &e) {
		e.WithExpression(expr).WithNode(n)
	}
	return err
}
