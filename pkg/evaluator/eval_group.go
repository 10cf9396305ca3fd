package evaluator

import (
	"context"

	"github.com/sandrolain/golambda/pkg/node"
	"github.com/sandrolain/golambda/pkg/parser"
	"github.com/sandrolain/golambda/pkg/types"
)

// evalGroup runs group idx of the program over seed.
//
// Every logical runs its chain from the same seed. The first logical
// produces the running set; each following logical combines the running
// set with its own chain's output, strictly left to right.
func (e *Evaluator) evalGroup(ctx context.Context, ec *EvalContext, idx int, seed []*node.Node) ([]*node.Node, error) {
	g := &ec.program.Groups[idx]

	var result []*node.Node
	for i := range g.Logicals {
		l := &g.Logicals[i]
		rhs, err := e.evalChain(ctx, ec, l.Chain, seed)
		if err != nil {
			return nil, err
		}
		if i == 0 {
			result = rhs
			continue
		}
		result = combine(l.Kind, result, rhs)
	}

	if g.Reference && idx != 0 {
		return e.dereference(ctx, ec, result)
	}
	return result, nil
}

// evalChain pipes set through every iterator in chain.
func (e *Evaluator) evalChain(ctx context.Context, ec *EvalContext, chain []types.Iterator, set []*node.Node) ([]*node.Node, error) {
	if len(chain) == 0 {
		return set, nil
	}
	out := set
	for i := range chain {
		if err := ctx.Err(); err != nil {
			return nil, types.NewError(types.ErrCancelled, "evaluation cancelled", chain[i].Position).
				WithToken(chain[i].Token).WithCause(err)
		}
		it := &chain[i]
		var err error
		if it.Kind == types.IterGroup {
			out, err = e.evalGroup(ctx, ec, it.Group, out)
		} else {
			out, err = e.apply(it, out)
		}
		if err != nil {
			return nil, err
		}
		if len(out) == 0 {
			return out, nil
		}
	}
	return out, nil
}

// dereference replaces every node holding an expression by the nodes that
// expression selects, evaluated against the node itself.
func (e *Evaluator) dereference(ctx context.Context, ec *EvalContext, set []*node.Node) ([]*node.Node, error) {
	out := make([]*node.Node, 0, len(set))
	for _, n := range set {
		source, ok := n.Value.(string)
		if !ok || !parser.IsExpression(source) {
			out = append(out, n)
			continue
		}
		m, err := e.hop(ctx, source, n)
		if err != nil {
			return nil, err
		}
		for _, ent := range m.entities {
			if ent.node != nil {
				out = append(out, ent.node)
			}
		}
	}
	return out, nil
}

// combine applies a logical operator. All comparisons are by node identity.
func combine(kind types.LogicalKind, left, right []*node.Node) []*node.Node {
	switch kind {
	case types.LogicalAnd:
		in := identitySet(right)
		out := make([]*node.Node, 0, len(left))
		for _, n := range left {
			if in[n] {
				out = append(out, n)
			}
		}
		return out
	case types.LogicalXor:
		l, r := identitySet(left), identitySet(right)
		out := make([]*node.Node, 0, len(left)+len(right))
		for _, n := range left {
			if !r[n] {
				out = append(out, n)
			}
		}
		for _, n := range right {
			if !l[n] {
				out = append(out, n)
			}
		}
		return out
	case types.LogicalNot:
		in := identitySet(right)
		out := make([]*node.Node, 0, len(left))
		for _, n := range left {
			if !in[n] {
				out = append(out, n)
			}
		}
		return out
	default:
		seen := identitySet(left)
		out := append(make([]*node.Node, 0, len(left)+len(right)), left...)
		for _, n := range right {
			if !seen[n] {
				seen[n] = true
				out = append(out, n)
			}
		}
		return out
	}
}

func identitySet(nodes []*node.Node) map[*node.Node]bool {
	set := make(map[*node.Node]bool, len(nodes))
	for _, n := range nodes {
		set[n] = true
	}
	return set
}
