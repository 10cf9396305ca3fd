package evaluator

import (
	"fmt"

	"github.com/sandrolain/golambda/pkg/coerce"
	"github.com/sandrolain/golambda/pkg/node"
	"github.com/sandrolain/golambda/pkg/types"
)

// apply runs a single non-group iterator over set.
func (e *Evaluator) apply(it *types.Iterator, set []*node.Node) ([]*node.Node, error) {
	switch it.Kind {
	case types.IterRoot:
		return distinctMap(set, (*node.Node).Root), nil

	case types.IterParent:
		return mapNodes(set, (*node.Node).Parent), nil

	case types.IterChildren:
		var out []*node.Node
		for _, n := range set {
			out = append(out, n.Children()...)
		}
		return out, nil

	case types.IterFlatten:
		var out []*node.Node
		for _, n := range set {
			n.Walk(func(d *node.Node) {
				out = append(out, d)
			})
		}
		return out, nil

	case types.IterNumbered:
		return mapNodes(set, func(n *node.Node) *node.Node {
			return n.Child(it.Number)
		}), nil

	case types.IterNamed:
		return filter(set, func(_ int, n *node.Node) bool {
			return n.Name == it.Name
		}), nil

	case types.IterNamedAncestor:
		return mapNodes(set, func(n *node.Node) *node.Node {
			for cur := n.Parent(); cur != nil; cur = cur.Parent() {
				if cur.Name == it.Name {
					return cur
				}
			}
			return nil
		}), nil

	case types.IterRange:
		end := it.End
		if end < 0 || end > len(set) {
			end = len(set)
		}
		if it.Start >= end {
			return nil, nil
		}
		return append([]*node.Node(nil), set[it.Start:end]...), nil

	case types.IterModulo:
		if it.Number == 0 {
			return nil, nil
		}
		return filter(set, func(i int, _ *node.Node) bool {
			return i%it.Number == 0
		}), nil

	case types.IterSibling:
		return mapNodes(set, func(n *node.Node) *node.Node {
			return n.Sibling(it.Number)
		}), nil

	case types.IterShiftLeft:
		return mapNodes(set, (*node.Node).PreviousNode), nil

	case types.IterShiftRight:
		return mapNodes(set, (*node.Node).NextNode), nil

	case types.IterReference:
		return mapNodes(set, func(n *node.Node) *node.Node {
			ref, _ := n.Value.(*node.Node)
			return ref
		}), nil

	case types.IterValued:
		return filter(set, func(_ int, n *node.Node) bool {
			return e.valueEquals(it, n.Value)
		}), nil

	case types.IterNamedRegex:
		return matchRegex(it, set, func(n *node.Node) (string, bool, error) {
			return n.Name, true, nil
		})

	case types.IterValuedRegex:
		return matchRegex(it, set, func(n *node.Node) (string, bool, error) {
			if n.Value == nil {
				return "", false, nil
			}
			s, err := e.coercer.ToString(n.Value)
			return s, err == nil, err
		})
	}
	return nil, types.NewError(types.ErrNotAnExpression,
		fmt.Sprintf("unsupported iterator %s", it.Kind), it.Position).WithToken(it.Token)
}

// valueEquals compares a node value with a Valued target. Untyped targets
// only match string values; typed targets compare strictly by type and value.
func (e *Evaluator) valueEquals(it *types.Iterator, v any) bool {
	if it.TypeName == "" {
		s, ok := v.(string)
		return ok && s == it.Value
	}
	return coerce.Equal(it.Value, v)
}

type subject func(n *node.Node) (s string, ok bool, err error)

func matchRegex(it *types.Iterator, set []*node.Node, text subject) ([]*node.Node, error) {
	var out []*node.Node
	var seen map[string]bool
	if it.Distinct {
		seen = make(map[string]bool)
	}
	for _, n := range set {
		s, ok, err := text(n)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		matched, err := it.Regex.MatchString(s)
		if err != nil {
			return nil, types.NewError(types.ErrRegexPattern, "regular expression failed", it.Position).
				WithToken(it.Token).WithCause(err)
		}
		if !matched {
			continue
		}
		if seen != nil {
			if seen[s] {
				continue
			}
			seen[s] = true
		}
		out = append(out, n)
	}
	return out, nil
}

// mapNodes replaces each node by fn(node), dropping nils.
func mapNodes(set []*node.Node, fn func(*node.Node) *node.Node) []*node.Node {
	out := make([]*node.Node, 0, len(set))
	for _, n := range set {
		if m := fn(n); m != nil {
			out = append(out, m)
		}
	}
	return out
}

// distinctMap is mapNodes without repeated identities.
func distinctMap(set []*node.Node, fn func(*node.Node) *node.Node) []*node.Node {
	seen := make(map[*node.Node]bool, len(set))
	out := make([]*node.Node, 0, 1)
	for _, n := range set {
		if m := fn(n); m != nil && !seen[m] {
			seen[m] = true
			out = append(out, m)
		}
	}
	return out
}

func filter(set []*node.Node, keep func(int, *node.Node) bool) []*node.Node {
	out := make([]*node.Node, 0, len(set))
	for i, n := range set {
		if keep(i, n) {
			out = append(out, n)
		}
	}
	return out
}
