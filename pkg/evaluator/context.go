package evaluator

import (
	"github.com/sandrolain/golambda/pkg/node"
	"github.com/sandrolain/golambda/pkg/types"
)

// EvalContext holds the state of one program run against one node.
type EvalContext struct {
	// program being executed
	program *types.Program

	// node is the node the expression was evaluated against
	node *node.Node

	// depth is the number of reference hops that led to this run
	depth int
}

// NewContext creates an evaluation context.
func NewContext(program *types.Program, n *node.Node, depth int) *EvalContext {
	return &EvalContext{
		program: program,
		node:    n,
		depth:   depth,
	}
}

// Program returns the program being executed.
func (c *EvalContext) Program() *types.Program {
	return c.program
}

// Node returns the node the expression was evaluated against.
func (c *EvalContext) Node() *node.Node {
	return c.node
}

// Depth returns the reference recursion depth.
func (c *EvalContext) Depth() int {
	return c.depth
}

// fail annotates err with the expression and its node.
func (c *EvalContext) fail(err error) error {
	return types.Annotate(err, c.program.Source, c.node)
}
