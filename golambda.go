// Package golambda evaluates lambda expressions: compact path expressions
// that select, filter and combine nodes of a name/value tree.
//
// An expression starts at the node it is evaluated against and pipes a set
// of nodes through iterators separated by '/':
//
//	@/*/_data/*/?value         values of every child of _data
//	@/*/"/^_tmp/"/?name        names of children matching a regex
//	@/*/_a/|/*/_b/?node        union of two selections
//	@@/0/?value                follow the expression stored in a value
//
// # Quick Start
//
//	root, _ := hyperlambda.Parse("_data\n  name:Thomas\n  age:int:44")
//
//	// Simple evaluation
//	m, err := golambda.Evaluate(ctx, "@/*/_data/*/?value", root)
//
//	// Compile once, evaluate many times
//	ev := golambda.New(golambda.WithCaching(true))
//	m1, _ := ev.EvaluateString(ctx, "@/*/_data/*/?name", root1)
//	m2, _ := ev.EvaluateString(ctx, "@/*/_data/*/?name", root2)
//
// Results are typed by the declarator after '?': node, value, name, count
// or path, optionally followed by a converter such as "?value.int".
//
// # More Information
//
// For detailed documentation, see:
//   - Parser: github.com/sandrolain/golambda/pkg/parser
//   - Evaluator: github.com/sandrolain/golambda/pkg/evaluator
//   - Node trees: github.com/sandrolain/golambda/pkg/node
//   - Helpers for formatted expressions: github.com/sandrolain/golambda/pkg/xutil
package golambda

import (
	"context"
	"fmt"

	"github.com/sandrolain/golambda/pkg/evaluator"
	"github.com/sandrolain/golambda/pkg/node"
	"github.com/sandrolain/golambda/pkg/parser"
	"github.com/sandrolain/golambda/pkg/types"
)

// Version returns the current version of golambda.
func Version() string {
	return "v0.1.0-dev"
}

// Create wraps expression text without validating it.
func Create(source string) *types.Expression {
	return types.NewExpression(source)
}

// Compile validates and compiles an expression.
//
// Example:
//
//	prog, err := golambda.Compile("@/*/[1,3]/?name")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(prog.Kind) // name
func Compile(source string, opts ...parser.CompileOption) (*types.Program, error) {
	return parser.Parse(source, opts...)
}

// MustCompile is like Compile but panics if the expression cannot be compiled.
// It simplifies safe initialization of global variables.
func MustCompile(source string) *types.Program {
	prog, err := Compile(source)
	if err != nil {
		panic(fmt.Sprintf("golambda: Compile(%q): %v", source, err))
	}
	return prog
}

// New creates an evaluator.
func New(opts ...evaluator.EvalOption) *evaluator.Evaluator {
	return evaluator.New(opts...)
}

// Evaluate is a convenience function that evaluates source against n with
// a fresh evaluator.
//
// For repeated evaluations, create an evaluator with New and enable caching.
func Evaluate(ctx context.Context, source string, n *node.Node, opts ...evaluator.EvalOption) (*evaluator.Match, error) {
	return evaluator.New(opts...).EvaluateString(ctx, source, n)
}

// Evaluator options.
var (
	WithCaching       = evaluator.WithCaching
	WithCacheSize     = evaluator.WithCacheSize
	WithCache         = evaluator.WithCache
	WithMaxDepth      = evaluator.WithMaxDepth
	WithTimeout       = evaluator.WithTimeout
	WithDebug         = evaluator.WithDebug
	WithLogger        = evaluator.WithLogger
	WithCoercer       = evaluator.WithCoercer
	WithRegexCompiler = evaluator.WithRegexCompiler
	WithMetrics       = evaluator.WithMetrics
	WithTracing       = evaluator.WithTracing
)
