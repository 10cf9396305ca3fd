package golambda_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandrolain/golambda"
	"github.com/sandrolain/golambda/pkg/hyperlambda"
	"github.com/sandrolain/golambda/pkg/types"
)

func TestVersion(t *testing.T) {
	assert.NotEmpty(t, golambda.Version())
}

func TestCreate(t *testing.T) {
	expr := golambda.Create("not validated")
	assert.Equal(t, "not validated", expr.Source())
}

func TestCompile(t *testing.T) {
	prog, err := golambda.Compile("@/*/[1,3]/?name")
	require.NoError(t, err)
	assert.Equal(t, types.KindName, prog.Kind)

	_, err = golambda.Compile("@/(/*")
	assert.True(t, types.HasCode(err, types.ErrUnclosedGroup))
}

func TestMustCompile(t *testing.T) {
	assert.NotPanics(t, func() { golambda.MustCompile("@/*/?node") })
	assert.Panics(t, func() { golambda.MustCompile("nope") })
}

func TestEvaluate(t *testing.T) {
	root, err := hyperlambda.Parse("_data\n  name:Thomas\n  age:int:44")
	require.NoError(t, err)

	m, err := golambda.Evaluate(context.Background(), "@/*/_data/*/?value", root)
	require.NoError(t, err)
	values, err := m.Values()
	require.NoError(t, err)
	assert.Equal(t, []any{"Thomas", 44}, values)

	ev := golambda.New(golambda.WithCaching(true), golambda.WithMaxDepth(4))
	for i := 0; i < 2; i++ {
		m, err = ev.EvaluateString(context.Background(), "@/*/_data/*/?count", root)
		require.NoError(t, err)
	}
	assert.Equal(t, int64(1), ev.Cache().Stats().Hits)
}

func ExampleEvaluate() {
	root, _ := hyperlambda.Parse("_data\n  name:Thomas\n  age:int:44\n  city:Oslo")

	m, err := golambda.Evaluate(context.Background(), "@/*/_data/*/!/*/_data/*/age/?name", root)
	if err != nil {
		panic(err)
	}
	for _, ent := range m.Entities() {
		v, _ := ent.Value()
		fmt.Println(v)
	}
	// Output:
	// name
	// city
}

func ExampleEvaluate_reference() {
	root, _ := hyperlambda.Parse("_pointer:@/+/?value\n_target:found")

	m, _ := golambda.Evaluate(context.Background(), "@@/0/?value", root)
	values, _ := m.Values()
	fmt.Println(values...)
	// Output: found
}
