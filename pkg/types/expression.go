// Package types defines the core type system for golambda.
//
// This package contains type definitions for:
//   - Expression: the source text of a lambda expression
//   - Program: the group/iterator tree an expression compiles into
//   - Iterator and Logical: the stages of a group's evaluation chain
//   - Error types: Structured errors with codes
package types

// Expression is a lambda expression as written, e.g. "@/*/_data/?value".
//
// Creating an Expression performs no validation; the text is tokenized,
// compiled and executed on every evaluation by [evaluator.Evaluator.Evaluate].
// An Expression is immutable and safe for concurrent use.
type Expression struct {
	source string
}

// NewExpression creates an Expression from its source text.
func NewExpression(source string) *Expression {
	return &Expression{source: source}
}

// Source returns the original source code of the expression.
func (e *Expression) Source() string {
	return e.source
}

// String returns a string representation of the expression.
func (e *Expression) String() string {
	return e.source
}
