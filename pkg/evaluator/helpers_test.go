package evaluator_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sandrolain/golambda/pkg/evaluator"
	"github.com/sandrolain/golambda/pkg/hyperlambda"
	"github.com/sandrolain/golambda/pkg/node"
)

// lambda parses hyperlambda text into a nameless root.
func lambda(t *testing.T, text string) *node.Node {
	t.Helper()
	root, err := hyperlambda.Parse(text)
	require.NoError(t, err)
	return root
}

func eval(t *testing.T, expression string, n *node.Node) *evaluator.Match {
	t.Helper()
	m, err := evaluator.New().EvaluateString(context.Background(), expression, n)
	require.NoError(t, err, expression)
	return m
}

func evalErr(expression string, n *node.Node) error {
	_, err := evaluator.New().EvaluateString(context.Background(), expression, n)
	return err
}

func names(m *evaluator.Match) []string {
	out := make([]string, 0, m.Len())
	for _, n := range m.Nodes() {
		out = append(out, n.Name)
	}
	return out
}

func values(t *testing.T, m *evaluator.Match) []any {
	t.Helper()
	v, err := m.Values()
	require.NoError(t, err)
	return v
}
