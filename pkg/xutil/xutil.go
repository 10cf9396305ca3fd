// Package xutil holds helpers for nodes whose values may be expressions.
//
// A node value is used in one of three ways:
//   - an expression ("@/*/?value") is evaluated, with the node or an
//     explicit data source as its root
//   - a formatted value ("{0}cc{1}" with empty-named children) has its
//     placeholders filled from the children first, recursively
//   - anything else is a constant, converted to the requested type
package xutil

import (
	"context"
	"strings"

	"github.com/sandrolain/golambda/pkg/coerce"
	"github.com/sandrolain/golambda/pkg/evaluator"
	"github.com/sandrolain/golambda/pkg/node"
	"github.com/sandrolain/golambda/pkg/parser"
	"github.com/sandrolain/golambda/pkg/types"
)

// Evaluator is the part of *evaluator.Evaluator the helpers need.
type Evaluator interface {
	EvaluateString(ctx context.Context, source string, n *node.Node) (*evaluator.Match, error)
	Coercer() coerce.Coercer
}

var _ Evaluator = (*evaluator.Evaluator)(nil)

// IsExpression reports whether v is a string shaped like an expression.
func IsExpression(v any) bool {
	return parser.IsExpression(v)
}

// IsFormatted reports whether n's value is a string with placeholders to be
// filled from n's empty-named children.
func IsFormatted(n *node.Node) bool {
	if _, ok := n.Value.(string); !ok {
		return false
	}
	return len(n.Named("")) > 0
}

// FormatNode formats n using n itself as data source for expressions.
func FormatNode(ctx context.Context, ev Evaluator, n *node.Node) (string, error) {
	return FormatNodeWith(ctx, ev, n, n)
}

// FormatNodeWith fills the placeholders of n's value with the values of its
// empty-named children. Children that are expressions are evaluated against
// dataSource, or against the child itself when dataSource is n; formatted
// children are formatted first.
func FormatNodeWith(ctx context.Context, ev Evaluator, n, dataSource *node.Node) (string, error) {
	if !IsFormatted(n) {
		return "", types.NewError(types.ErrNotFormatted,
			"node has no formatting children or its value is not a string", -1).WithNode(n)
	}
	children := n.Named("")
	args := make([]string, len(children))
	for i, c := range children {
		src := dataSource
		if dataSource == n {
			src = c
		}
		s, err := formatChild(ctx, ev, c, src)
		if err != nil {
			return "", err
		}
		args[i] = s
	}
	out, err := Substitute(n.Value.(string), args)
	if err != nil {
		return "", types.Annotate(err, "", n)
	}
	return out, nil
}

func formatChild(ctx context.Context, ev Evaluator, c, dataSource *node.Node) (string, error) {
	formatted, expression := IsFormatted(c), IsExpression(c.Value)
	switch {
	case formatted && expression:
		source, err := FormatNodeWith(ctx, ev, c, dataSource)
		if err != nil {
			return "", err
		}
		return SingleExpression[string](ctx, ev, source, dataSource)
	case formatted:
		return FormatNodeWith(ctx, ev, c, dataSource)
	case expression:
		return SingleExpression[string](ctx, ev, c.Value.(string), dataSource)
	case c.Value == nil:
		return "", nil
	}
	return ev.Coercer().ToString(c.Value)
}

// expressionOf returns the expression held by n, with its placeholders
// filled when n is formatted. ok is false when n's raw value is not an
// expression; a constant that only formats into one stays a constant.
func expressionOf(ctx context.Context, ev Evaluator, n, dataSource *node.Node) (source string, ok bool, err error) {
	if !IsExpression(n.Value) {
		return "", false, nil
	}
	if IsFormatted(n) {
		source, err = FormatNodeWith(ctx, ev, n, dataSource)
		return source, err == nil, err
	}
	return n.Value.(string), true, nil
}

// constant returns n's value, formatted when n is formatted.
func constant(ctx context.Context, ev Evaluator, n, dataSource *node.Node) (any, error) {
	if IsFormatted(n) {
		return FormatNodeWith(ctx, ev, n, dataSource)
	}
	return n.Value, nil
}

// Single returns n's value as T, evaluating it against n when it is an
// expression.
func Single[T any](ctx context.Context, ev Evaluator, n *node.Node) (T, error) {
	return SingleFrom[T](ctx, ev, n, n)
}

// SingleFrom is Single with an explicit data source for expressions.
func SingleFrom[T any](ctx context.Context, ev Evaluator, n, dataSource *node.Node) (T, error) {
	var zero T
	source, ok, err := expressionOf(ctx, ev, n, dataSource)
	if err != nil {
		return zero, err
	}
	if ok {
		return SingleExpression[T](ctx, ev, source, dataSource)
	}
	v, err := constant(ctx, ev, n, dataSource)
	if err != nil {
		return zero, err
	}
	return coerce.To[T](ev.Coercer(), v)
}

// SingleExpression evaluates expression against dataSource and collapses
// the result to one T. A single result is converted as is; several results
// are concatenated as strings first. No result yields T's zero value.
func SingleExpression[T any](ctx context.Context, ev Evaluator, expression string, dataSource *node.Node) (T, error) {
	var zero T
	if err := parser.Validate(expression); err != nil {
		return zero, err
	}
	m, err := ev.EvaluateString(ctx, expression, dataSource)
	if err != nil {
		return zero, err
	}
	switch m.Len() {
	case 0:
		return zero, nil
	case 1:
		v, err := m.At(0).Value()
		if err != nil {
			return zero, err
		}
		return coerce.To[T](ev.Coercer(), v)
	}

	var b strings.Builder
	for _, ent := range m.Entities() {
		v, err := ent.Value()
		if err != nil {
			return zero, err
		}
		if v == nil {
			continue
		}
		s, err := ev.Coercer().ToString(v)
		if err != nil {
			return zero, err
		}
		b.WriteString(s)
	}
	return coerce.To[T](ev.Coercer(), b.String())
}

// Iterate calls fn for every value n stands for, converted to T:
//   - the results of n's expression, evaluated against n
//   - else n's constant value; a string iterated as *node.Node yields the
//     nodes it describes
//   - else, when n has no value, its children
//
// Iteration stops at the first error, including one returned by fn.
func Iterate[T any](ctx context.Context, ev Evaluator, n *node.Node, fn func(T) error) error {
	return IterateFrom(ctx, ev, n, n, fn)
}

// IterateFrom is Iterate with an explicit data source for expressions.
func IterateFrom[T any](ctx context.Context, ev Evaluator, n, dataSource *node.Node, fn func(T) error) error {
	source, ok, err := expressionOf(ctx, ev, n, dataSource)
	if err != nil {
		return err
	}
	if ok {
		return IterateExpression(ctx, ev, source, dataSource, fn)
	}

	var zero T
	_, wantNodes := any(zero).(*node.Node)

	if n.Value == nil {
		for _, c := range n.Children() {
			var item any = c
			if !wantNodes {
				item = c.Value
			}
			if err := yield(ev, item, fn); err != nil {
				return err
			}
		}
		return nil
	}

	v, err := constant(ctx, ev, n, dataSource)
	if err != nil {
		return err
	}
	if s, ok := v.(string); ok && wantNodes {
		parsed, err := ev.Coercer().Coerce(s, "node")
		if err != nil {
			return types.Annotate(err, "", n)
		}
		root, _ := parsed.(*node.Node)
		if root == nil {
			return nil
		}
		for _, c := range root.Children() {
			if err := yield(ev, c.Clone(), fn); err != nil {
				return err
			}
		}
		return nil
	}
	return yield(ev, v, fn)
}

// IterateExpression evaluates expression against dataSource and calls fn
// with every entity value converted to T. A count expression yields its
// count once.
func IterateExpression[T any](ctx context.Context, ev Evaluator, expression string, dataSource *node.Node, fn func(T) error) error {
	return EntitiesExpression(ctx, ev, expression, dataSource, func(ent *evaluator.MatchEntity) error {
		v, err := ent.Value()
		if err != nil {
			return err
		}
		return yield(ev, v, fn)
	})
}

// Entities calls fn for every entity of n's expression, evaluated against n.
func Entities(ctx context.Context, ev Evaluator, n *node.Node, fn func(*evaluator.MatchEntity) error) error {
	return EntitiesFrom(ctx, ev, n, n, fn)
}

// EntitiesFrom is Entities with an explicit data source.
func EntitiesFrom(ctx context.Context, ev Evaluator, n, dataSource *node.Node, fn func(*evaluator.MatchEntity) error) error {
	source, ok, err := expressionOf(ctx, ev, n, dataSource)
	if err != nil {
		return err
	}
	if !ok {
		source, _ = n.Value.(string)
	}
	return EntitiesExpression(ctx, ev, source, dataSource, fn)
}

// EntitiesExpression evaluates expression against dataSource and calls fn
// for every match entity.
func EntitiesExpression(ctx context.Context, ev Evaluator, expression string, dataSource *node.Node, fn func(*evaluator.MatchEntity) error) error {
	if err := parser.Validate(expression); err != nil {
		return err
	}
	m, err := ev.EvaluateString(ctx, expression, dataSource)
	if err != nil {
		return err
	}
	for _, ent := range m.Entities() {
		if err := fn(ent); err != nil {
			return err
		}
	}
	return nil
}

func yield[T any](ev Evaluator, v any, fn func(T) error) error {
	t, err := coerce.To[T](ev.Coercer(), v)
	if err != nil {
		return err
	}
	return fn(t)
}
