package evaluator

import (
	"fmt"

	"github.com/sandrolain/golambda/pkg/coerce"
	"github.com/sandrolain/golambda/pkg/node"
	"github.com/sandrolain/golambda/pkg/types"
)

// Match is the typed, ordered result of evaluating an expression.
type Match struct {
	kind     types.ResultKind
	convert  string
	entities []*MatchEntity
}

func newMatch(kind types.ResultKind, convert string, nodes []*node.Node, c coerce.Coercer) *Match {
	m := &Match{kind: kind, convert: convert}
	if kind == types.KindCount {
		m.entities = []*MatchEntity{{kind: kind, convert: convert, count: len(nodes), coercer: c}}
		return m
	}
	m.entities = make([]*MatchEntity, len(nodes))
	for i, n := range nodes {
		m.entities[i] = &MatchEntity{node: n, kind: kind, convert: convert, coercer: c}
	}
	return m
}

// Kind returns the type declarator of the expression.
func (m *Match) Kind() types.ResultKind {
	return m.kind
}

// Convert returns the converter named after the type declarator, or "".
func (m *Match) Convert() string {
	return m.convert
}

// Len returns the number of entities. A count match always has one.
func (m *Match) Len() int {
	return len(m.entities)
}

// At returns entity i.
func (m *Match) At(i int) *MatchEntity {
	return m.entities[i]
}

// Entities returns the entities in order.
func (m *Match) Entities() []*MatchEntity {
	return append([]*MatchEntity(nil), m.entities...)
}

// Values returns the value of every entity.
func (m *Match) Values() ([]any, error) {
	out := make([]any, len(m.entities))
	for i, ent := range m.entities {
		v, err := ent.Value()
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// Nodes returns the matched nodes. It is empty for a count match.
func (m *Match) Nodes() []*node.Node {
	out := make([]*node.Node, 0, len(m.entities))
	for _, ent := range m.entities {
		if ent.node != nil {
			out = append(out, ent.node)
		}
	}
	return out
}

// MatchEntity is one result of a Match, bound to the node it came from.
type MatchEntity struct {
	node    *node.Node
	kind    types.ResultKind
	convert string
	count   int
	coercer coerce.Coercer
}

// Node returns the matched node, or nil for a count entity.
func (e *MatchEntity) Node() *node.Node {
	return e.node
}

// Kind returns the result kind the entity projects.
func (e *MatchEntity) Kind() types.ResultKind {
	return e.kind
}

// Value returns the projected value, passed through the converter when
// one is set and the value is not nil.
func (e *MatchEntity) Value() (any, error) {
	var v any
	switch e.kind {
	case types.KindNode:
		v = e.node
	case types.KindName:
		v = e.node.Name
	case types.KindValue:
		v = e.node.Value
	case types.KindPath:
		v = e.node.Path()
	case types.KindCount:
		v = e.count
	}
	if e.convert == "" || v == nil {
		return v, nil
	}
	if e.convert == "string" {
		return e.coercer.ToString(v)
	}
	return e.coercer.Coerce(v, e.convert)
}

// SetValue writes v back into the tree.
//
//   - name renames the node to v's string form
//   - value stores v as is
//   - node detaches the node when v is nil, else replaces it by a deep
//     clone of v converted to a node
//   - count and path are read-only
func (e *MatchEntity) SetValue(v any) error {
	switch e.kind {
	case types.KindName:
		s := ""
		if v != nil {
			var err error
			if s, err = e.coercer.ToString(v); err != nil {
				return err
			}
		}
		e.node.Name = s
		return nil
	case types.KindValue:
		e.node.Value = v
		return nil
	case types.KindNode:
		if v == nil {
			e.node.UnTie()
			return nil
		}
		src, err := e.toNode(v)
		if err != nil {
			return err
		}
		e.node.Replace(src)
		return nil
	}
	return types.NewError(types.ErrReadOnly,
		fmt.Sprintf("cannot write to a %s match", e.kind), -1).WithNode(e.node)
}

// toNode converts v to the single node a node write replaces the entity
// with. Text is parsed by the coercer and must describe exactly one node.
func (e *MatchEntity) toNode(v any) (*node.Node, error) {
	if n, ok := v.(*node.Node); ok {
		return n, nil
	}
	out, err := e.coercer.Coerce(v, "node")
	if err != nil {
		return nil, err
	}
	root, ok := out.(*node.Node)
	if !ok || root == nil {
		return nil, types.NewError(types.ErrNotSingleNode,
			fmt.Sprintf("%T does not convert to a node", v), -1).WithNode(e.node)
	}
	if root.Name == "" && root.Value == nil {
		if root.Len() != 1 {
			return nil, types.NewError(types.ErrNotSingleNode,
				fmt.Sprintf("value describes %d nodes, expected exactly one", root.Len()), -1).WithNode(e.node)
		}
		return root.FirstChild(), nil
	}
	return root, nil
}
