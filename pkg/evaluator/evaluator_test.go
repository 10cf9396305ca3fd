package evaluator_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandrolain/golambda/pkg/cache"
	"github.com/sandrolain/golambda/pkg/evaluator"
	"github.com/sandrolain/golambda/pkg/node"
	"github.com/sandrolain/golambda/pkg/types"
)

const threeNodes = "_tmp1:x\n  _tmp3:z\n_tmp2:y\n_tmp1:x2"

func TestResultKinds(t *testing.T) {
	root := lambda(t, "_tmp:x")

	t.Run("name", func(t *testing.T) {
		m := eval(t, "@/../0/?name", root)
		require.Equal(t, 1, m.Len())
		assert.Equal(t, types.KindName, m.Kind())
		assert.Equal(t, []any{"_tmp"}, values(t, m))
	})

	t.Run("value", func(t *testing.T) {
		m := eval(t, "@/../0/?value", root)
		assert.Equal(t, types.KindValue, m.Kind())
		assert.Equal(t, []any{"x"}, values(t, m))
	})

	t.Run("count", func(t *testing.T) {
		m := eval(t, "@/../0/?count", root)
		assert.Equal(t, types.KindCount, m.Kind())
		require.Equal(t, 1, m.Len())
		assert.Equal(t, []any{1}, values(t, m))
		assert.Nil(t, m.At(0).Node())
	})

	t.Run("path", func(t *testing.T) {
		m := eval(t, "@/../0/?path", root)
		assert.Equal(t, types.KindPath, m.Kind())
		assert.Equal(t, []any{node.Path{0}}, values(t, m))
	})

	t.Run("node", func(t *testing.T) {
		m := eval(t, "@/../0/?node", root)
		assert.Equal(t, types.KindNode, m.Kind())
		v, err := m.At(0).Value()
		require.NoError(t, err)
		assert.Same(t, root.Child(0), v)
	})

	t.Run("no declarator means node", func(t *testing.T) {
		m := eval(t, "@/../0", root)
		assert.Equal(t, types.KindNode, m.Kind())
		assert.Same(t, root.Child(0), m.At(0).Node())
	})
}

func TestIterators(t *testing.T) {
	tests := []struct {
		name  string
		tree  string
		start []int
		expr  string
		want  []string
	}{
		{name: "children", tree: "_tmp1:x\n_tmp2:y", expr: "@/../*/?node", want: []string{"_tmp1", "_tmp2"}},
		{name: "descendants", tree: "_tmp1:x\n  _tmp3:z\n_tmp2:y", expr: "@/../*/**/?node", want: []string{"_tmp1", "_tmp3", "_tmp2"}},
		{name: "root", tree: "_tmp1:x\n  _tmp3:z\n_tmp2:y", start: []int{0, 0}, expr: "@/../?node", want: []string{""}},
		{name: "named ancestor", tree: "_tmp1:x\n  _tmp3:z\n_tmp2:y", start: []int{0, 0}, expr: `@/".._tmp1"/?node`, want: []string{"_tmp1"}},
		{name: "unquoted named ancestor", tree: "_tmp1:x\n  _tmp3:z", start: []int{0, 0}, expr: "@/.._tmp1/?node", want: []string{"_tmp1"}},
		{name: "previous sibling", tree: threeNodes, start: []int{1}, expr: "@/-/?node", want: []string{"_tmp1"}},
		{name: "next sibling", tree: threeNodes, start: []int{0}, expr: "@/+/?node", want: []string{"_tmp2"}},
		{name: "named child", tree: threeNodes, expr: "@/*/_tmp2/?node", want: []string{"_tmp2"}},
		{name: "named child multiple", tree: threeNodes, expr: "@/*/_tmp1/?node", want: []string{"_tmp1", "_tmp1"}},
		{name: "numbered child", tree: threeNodes, expr: "@/1/?node", want: []string{"_tmp2"}},
		{name: "numbered out of range", tree: threeNodes, expr: "@/9/?node", want: []string{}},
		{name: "range", tree: threeNodes, expr: "@/*/**/[1,3]/?node", want: []string{"_tmp3", "_tmp2"}},
		{name: "range open end", tree: threeNodes, expr: "@/*/**/[2,]/?node", want: []string{"_tmp2", "_tmp1"}},
		{name: "range open start", tree: threeNodes, expr: "@/*/**/[,2]/?node", want: []string{"_tmp1", "_tmp3"}},
		{name: "parent", tree: "_tmp1:x\n  _tmp3:zz\n_tmp2:y", expr: "@/0/0/./?node", want: []string{"_tmp1"}},
		{name: "parent of root vanishes", tree: "a", expr: "@/./?node", want: []string{}},
		{name: "numbered next sibling", tree: "_tmp1:x\n_tmp2:y\n_tmp1:x2", expr: "@/0/+2/?value", want: []string{"_tmp1"}},
		{name: "numbered previous sibling", tree: "_tmp1:x\n_tmp2:y\n_tmp1:x2", start: []int{2}, expr: "@/-2/?node", want: []string{"_tmp1"}},
		{name: "sibling out of range", tree: "_tmp1:x\n_tmp2:y", start: []int{1}, expr: "@/+/?node", want: []string{}},
		{name: "named regex", tree: "_tmp1:x\n_xmp2:y\n_tmp1:x2", expr: `@/*/"/_tmp+/"/?node`, want: []string{"_tmp1", "_tmp1"}},
		{name: "named regex distinct", tree: "_tmp1:x\n_xmp2:y\n_tmp1:x2", expr: `@/*/"/_tmp+/d"/?node`, want: []string{"_tmp1"}},
		{name: "valued regex", tree: "_tmp1:x\n_tmp2:y\n_tmp3:x2", expr: `@/*/="/x+/"/?node`, want: []string{"_tmp1", "_tmp3"}},
		{name: "valued regex distinct", tree: "a:x\nb:x\nc:y", expr: `@/*/="/x|y/d"/?node`, want: []string{"a", "c"}},
		{name: "valued regex skips nil", tree: "a\nb:x", expr: `@/*/="/.*/"/?node`, want: []string{"b"}},
		{name: "modulo", tree: "_tmp1:x\n_tmp2:y\n_tmp3:x2", expr: "@/*/%2/?node", want: []string{"_tmp1", "_tmp3"}},
		{name: "modulo zero", tree: "_tmp1:x\n_tmp2:y", expr: "@/*/%0/?node", want: []string{}},
		{name: "right shift", tree: "_tmp1:x\n_tmp2:y\n_tmp3:x2", expr: "@/*/%2/>/?node", want: []string{"_tmp2"}},
		{name: "right shift into children", tree: "a\n  b", expr: "@/0/>/?node", want: []string{"b"}},
		{name: "right shift out of children", tree: "a\n  b\nc", expr: "@/0/0/>/?node", want: []string{"c"}},
		{name: "valued", tree: threeNodes, expr: "@/*/_tmp1/=x2/?node", want: []string{"_tmp1"}},
		{name: "valued escaped", tree: "a:=x\nb:x", expr: `@/*/=\=x/?name`, want: []string{"a"}},
		{name: "valued typed", tree: "a:int:5\nb:5\nc:long:5", expr: "@/*/=:int:5/?name", want: []string{"a"}},
		{name: "valued untyped ignores typed values", tree: "a:int:5\nb:5", expr: "@/*/=5/?name", want: []string{"b"}},
		{name: "escaped numeric name", tree: "1:x\n0:y", expr: `@/*/\1/?name`, want: []string{"1"}},
		{name: "empty name", tree: "a\n\"\":x", expr: "@/*//?node", want: []string{""}},
		{name: "or", tree: "_tmp1:x\n_tmp2:y\n_tmp3:x2", expr: "@/*/_tmp1/|/*/_tmp2/?node", want: []string{"_tmp1", "_tmp2"}},
		{name: "and", tree: "_tmp1:x\n_tmp2:y\n_tmp3:x2", expr: "@/*/_tmp1/&/*/=x/?node", want: []string{"_tmp1"}},
		{name: "xor", tree: "_tmp1:x\n_tmp2:y\n_tmp3:x2", expr: "@/(/*/_tmp1/|/*/_tmp3/)^(/*/_tmp2/|/*/_tmp3/)?node", want: []string{"_tmp1", "_tmp2"}},
		{name: "not", tree: "_tmp1:x\n_tmp1:x2\n_tmp1:y", expr: "@/*/_tmp1/!/*/=x2/?value", want: []string{"_tmp1", "_tmp1"}},
		{name: "no precedence", tree: "_tmp1:x\n_tmp2:y\n_tmp3:x2", expr: "@/*/_tmp1/|/*/_tmp2/&/*/=y/?node", want: []string{"_tmp2"}},
		{name: "ordered", tree: "_tmp1:x\n_tmp2:y\n_tmp3:x2", expr: "@/*/_tmp2/|/*/_tmp1/?node", want: []string{"_tmp2", "_tmp1"}},
		{name: "group", tree: "_tmp1:x\n_tmp2:y\n_tmp3:x2", expr: "@/*/_tmp1/|(/*/_tmp2/&/*/=y/)?node", want: []string{"_tmp1", "_tmp2"}},
		{name: "nested groups", tree: "succ\ness\nerror", expr: "@/*/((/succ/|/error/)^(/ess/|/error/))/?name", want: []string{"succ", "ess"}},
		{name: "group precedence", tree: "_1:error\n_2:error\n_3:success", expr: "@/*/(/_1/|/_2/|/_3/&/_3/)?name", want: []string{"_3"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := lambda(t, tt.tree)
			start := root
			for _, i := range tt.start {
				start = start.Child(i)
			}
			m := eval(t, tt.expr, start)
			assert.Equal(t, tt.want, names(m))
		})
	}
}

func TestNamedAncestorExcludesSelf(t *testing.T) {
	root := lambda(t, "_tmp1:x\n  _tmp1:z")
	m := eval(t, "@/.._tmp1/?value", root.Child(0).Child(0))
	assert.Equal(t, []any{"x"}, values(t, m))
}

func TestValuedNodeTypes(t *testing.T) {
	root := lambda(t, "a:date:2015-01-22T23:59:59\nb:2015-01-22T23:59:59")
	m := eval(t, "@/*/=:date:2015-01-22T23:59:59/?name", root)
	assert.Equal(t, []string{"a"}, names(m))
}

func TestLeftShift(t *testing.T) {
	root := lambda(t, "_tmp1:x\n_tmp2:y\n_tmp3:x2")
	root.Name = "foo"
	m := eval(t, "@/*/%2/</?node", root)
	assert.Equal(t, []string{"foo", "_tmp2"}, names(m))

	root = lambda(t, "a\n  b\n    c\nd")
	m = eval(t, "@/1/</?name", root)
	assert.Equal(t, []any{"c"}, values(t, m))
}

func TestReferenceNode(t *testing.T) {
	root := lambda(t, "_tmp1:x\n  _tmp3:node:@\"_x:zz\"\n_tmp2:y")
	m := eval(t, "@/0/0/#/?value", root)
	assert.Equal(t, []any{"zz"}, values(t, m))

	m = eval(t, "@/0/#/?value", root)
	assert.Equal(t, 0, m.Len())
}

func TestMultilineLiterals(t *testing.T) {
	root := node.New("root", nil).
		Add("error", nil).
		Add("success", "x\r\ny").
		Add("error", nil)
	m := eval(t, "@/*/=@\"x\ny\"/?name", root)
	assert.Equal(t, []any{"success"}, values(t, m))

	root = lambda(t, `"_tmp\n1":x`)
	m = eval(t, "@/*/@\"_tmp\n1\"/?node", root)
	require.Equal(t, 1, m.Len())
	assert.Equal(t, "_tmp\r\n1", m.At(0).Node().Name)
}

func TestSiblings(t *testing.T) {
	root := node.New("", nil).Add("error", nil).Add("error", nil).Add("success", nil)
	m := eval(t, "@/+2/?name", root.Child(0))
	assert.Equal(t, []any{"success"}, values(t, m))

	root = node.New("", nil).Add("success", nil).Add("error", nil).Add("error", nil)
	m = eval(t, "@/-2/?name", root.Child(2))
	assert.Equal(t, []any{"success"}, values(t, m))
}

func TestConverters(t *testing.T) {
	root := node.New("root", nil).Add("a", "5").Add("b", 7)

	m := eval(t, "@/*/?value.int", root)
	assert.Equal(t, []any{5, 7}, values(t, m))
	assert.Equal(t, "int", m.Convert())

	m = eval(t, "@/*/?value.string", root)
	assert.Equal(t, []any{"5", "7"}, values(t, m))

	m = eval(t, "@/*/?count.string", root)
	assert.Equal(t, []any{"2"}, values(t, m))

	_, err := eval(t, "@/0/?value.guid", root).Values()
	require.Error(t, err)
	assert.True(t, types.HasCode(err, types.ErrConversion))
}

func TestNodeToString(t *testing.T) {
	root := node.New("root", nil)
	root.Append(node.New("root", nil).Add("foo", 5))
	m := eval(t, "@/0/?node.string", root)
	assert.Equal(t, []any{"root\r\n  foo:int:5"}, values(t, m))
}

func TestWriteBack(t *testing.T) {
	t.Run("rename", func(t *testing.T) {
		root := lambda(t, "a\nb")
		m := eval(t, "@/*/?name", root)
		for _, ent := range m.Entities() {
			require.NoError(t, ent.SetValue(5))
		}
		assert.Equal(t, "5", root.Child(0).Name)
		assert.Equal(t, "5", root.Child(1).Name)
	})

	t.Run("value aliases", func(t *testing.T) {
		root := lambda(t, "a")
		v := node.New("x", nil)
		m := eval(t, "@/0/?value", root)
		require.NoError(t, m.At(0).SetValue(v))
		assert.Same(t, v, root.Child(0).Value)
	})

	t.Run("detach", func(t *testing.T) {
		root := lambda(t, "a\nb\nc")
		m := eval(t, "@/1/?node", root)
		require.NoError(t, m.At(0).SetValue(nil))
		assert.Equal(t, 2, root.Len())
		assert.Equal(t, "c", root.Child(1).Name)
	})

	t.Run("replace with clone", func(t *testing.T) {
		root := lambda(t, "a\nb")
		src := node.New("x", "y").Add("z", nil)
		m := eval(t, "@/0/?node", root)
		target := m.At(0).Node()
		require.NoError(t, m.At(0).SetValue(src))

		assert.Same(t, target, root.Child(0))
		assert.Equal(t, "x", target.Name)
		assert.Equal(t, "y", target.Value)
		require.Equal(t, 1, target.Len())
		assert.NotSame(t, src.Child(0), target.Child(0))
		assert.Same(t, target, target.Child(0).Parent())
	})

	t.Run("replace from text", func(t *testing.T) {
		root := lambda(t, "a\nb")
		m := eval(t, "@/1/?node", root)
		require.NoError(t, m.At(0).SetValue("x:int:5\r\n  y"))
		assert.Equal(t, "x", root.Child(1).Name)
		assert.Equal(t, 5, root.Child(1).Value)
		assert.Equal(t, "y", root.Child(1).Child(0).Name)
	})

	t.Run("text must describe one node", func(t *testing.T) {
		root := lambda(t, "a")
		m := eval(t, "@/0/?node", root)
		err := m.At(0).SetValue("x\r\ny")
		require.Error(t, err)
		assert.True(t, types.HasCode(err, types.ErrNotSingleNode))
	})

	t.Run("count is read-only", func(t *testing.T) {
		root := lambda(t, "a")
		err := eval(t, "@/*/?count", root).At(0).SetValue(3)
		require.Error(t, err)
		assert.True(t, types.HasCode(err, types.ErrReadOnly))
	})

	t.Run("path is read-only", func(t *testing.T) {
		root := lambda(t, "a")
		err := eval(t, "@/*/?path", root).At(0).SetValue(node.Path{0})
		require.Error(t, err)
		assert.True(t, types.HasCode(err, types.ErrReadOnly))
	})
}

func TestSyntaxErrors(t *testing.T) {
	root := lambda(t, "a\nb")
	tests := []struct {
		name string
		expr string
		code types.ErrorCode
	}{
		{"too short", "@/*", types.ErrNotAnExpression},
		{"wrong second character", "@x/*/?node", types.ErrNotAnExpression},
		{"unclosed group", "@/(/*?node", types.ErrUnclosedGroup},
		{"unopened group", "@/*/)?node", types.ErrUnopenedGroup},
		{"range end before start", "@/*/[2,1]/?node", types.ErrBadRange},
		{"range not numeric", "@/*/[a,1]/?node", types.ErrBadRange},
		{"range unterminated", "@/*/[1,2/?node", types.ErrBadRange},
		{"modulo", "@/*/%x/?node", types.ErrBadModulo},
		{"sibling", "@/+x/?node", types.ErrBadSibling},
		{"unknown type", "@/*/?nodes", types.ErrUnknownType},
		{"duplicate reference", "@@@/0/?value", types.ErrDuplicateReference},
		{"reference type", "@@/0/?node", types.ErrReferenceType},
		{"unclosed string", `@/*/"abc/?node`, types.ErrStringNotClosed},
		{"regex not closed", `@/*/"/abc"/?node`, types.ErrRegexNotClosed},
		{"regex option", `@/*/"/abc/q"/?node`, types.ErrRegexOption},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := evalErr(tt.expr, root)
			require.Error(t, err)
			assert.True(t, types.HasCode(err, tt.code), "got %v", err)

			var e *types.Error
			require.ErrorAs(t, err, &e)
			assert.Equal(t, tt.expr, e.Expression)
		})
	}
}

func TestErrorCarriesNode(t *testing.T) {
	root := lambda(t, "a\n  b")
	err := evalErr("@/(/?node", root.Child(0).Child(0))
	var e *types.Error
	require.ErrorAs(t, err, &e)
	require.NotNil(t, e.Node)
	assert.Equal(t, "", e.Node.Name)
	assert.NotSame(t, root, e.Node)
}

func TestNilInputs(t *testing.T) {
	ev := evaluator.New()
	_, err := ev.Evaluate(context.Background(), nil, node.New("", nil))
	assert.Error(t, err)

	_, err = ev.EvaluateString(context.Background(), "@/*/?node", nil)
	assert.True(t, types.HasCode(err, types.ErrNoNode))
}

func TestDeterministic(t *testing.T) {
	root := lambda(t, threeNodes)
	ev := evaluator.New()
	first, err := ev.EvaluateString(context.Background(), "@/*/**/?path", root)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := ev.EvaluateString(context.Background(), "@/*/**/?path", root)
		require.NoError(t, err)
		assert.Equal(t, values(t, first), values(t, again))
	}
}

func TestCountMatchesCardinality(t *testing.T) {
	root := lambda(t, threeNodes)
	for _, body := range []string{"@/*", "@/*/**", "@/*/_tmp1", "@/*/_none", "@/*/_tmp1/|/*/_tmp2"} {
		nodes := eval(t, body+"/?node", root)
		count := eval(t, body+"/?count", root)
		require.Equal(t, 1, count.Len(), body)
		assert.Equal(t, []any{nodes.Len()}, values(t, count), body)
	}
}

func TestOrIsIdempotentAndCommutative(t *testing.T) {
	root := lambda(t, "a\nb\nc")

	m := eval(t, "@/*/|/*/?node", root)
	assert.Equal(t, []string{"a", "b", "c"}, names(m))

	ab := eval(t, "@/0/|/1/|/*/?node", root)
	ba := eval(t, "@/*/|/1/|/0/?node", root)
	assert.ElementsMatch(t, ab.Nodes(), ba.Nodes())
	assert.Len(t, ab.Nodes(), 3)
}

func TestNotRemovesMiddle(t *testing.T) {
	root := lambda(t, "a\nb\nc")
	m := eval(t, "@/*/!/1/?name", root)
	assert.Equal(t, []any{"a", "c"}, values(t, m))
}

func TestPathRoundTrip(t *testing.T) {
	root := lambda(t, "a\n  b\n    c\n  d\ne")
	m := eval(t, "@/*/**/?path", root)
	nodes := eval(t, "@/*/**/?node", root).Nodes()
	require.Equal(t, len(nodes), m.Len())
	for i, v := range values(t, m) {
		p, ok := v.(node.Path)
		require.True(t, ok)
		assert.Same(t, nodes[i], root.Find(p))
	}
}

func TestRangeBounds(t *testing.T) {
	root := lambda(t, "a\nb\nc\nd")
	assert.Equal(t, names(eval(t, "@/*/[1,4]/?node", root)), names(eval(t, "@/*/[1,]/?node", root)))
	assert.Equal(t, names(eval(t, "@/*/[0,3]/?node", root)), names(eval(t, "@/*/[,3]/?node", root)))
	assert.Equal(t, []string{"b", "c", "d"}, names(eval(t, "@/*/[1,9]/?node", root)))
}

func TestCancellation(t *testing.T) {
	root := lambda(t, threeNodes)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := evaluator.New().EvaluateString(ctx, "@/*/**/?node", root)
	require.Error(t, err)
	assert.True(t, types.HasCode(err, types.ErrCancelled))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCaching(t *testing.T) {
	ev := evaluator.New(evaluator.WithCaching(true), evaluator.WithCacheSize(8))
	require.NotNil(t, ev.Cache())
	assert.Equal(t, 8, ev.Cache().Capacity())

	root := lambda(t, "a\nb")
	for i := 0; i < 3; i++ {
		_, err := ev.EvaluateString(context.Background(), "@/*/?name", root)
		require.NoError(t, err)
	}
	stats := ev.Cache().Stats()
	assert.Equal(t, 1, stats.Len)
	assert.Equal(t, int64(2), stats.Hits)

	_, err := ev.EvaluateString(context.Background(), "@/(/?name", root)
	require.Error(t, err)
	assert.Equal(t, 1, ev.Cache().Len())

	shared := cache.New(4)
	ev = evaluator.New(evaluator.WithCache(shared))
	assert.Same(t, shared, ev.Cache())

	assert.Nil(t, evaluator.New().Cache())
}

func TestCompileSharesPrograms(t *testing.T) {
	ev := evaluator.New(evaluator.WithCaching(true))
	p1, err := ev.Compile("@/*/?name")
	require.NoError(t, err)
	p2, err := ev.Compile("@/*/?name")
	require.NoError(t, err)
	assert.Same(t, p1, p2)
}

func TestDebugLogging(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	ev := evaluator.New(evaluator.WithDebug(true), evaluator.WithLogger(logger))

	root := node.New("root", nil).Add("error", "@/+/?name").Add("success", nil)
	_, err := ev.EvaluateString(context.Background(), "@@/0/?value", root)
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "expression evaluated")
	assert.Contains(t, out, "following reference")
	assert.Contains(t, out, "depth=1")
}

type recorder struct {
	evaluations int
	lastKind    string
	lastResults int
	lastErr     error
	hops        []int
}

func (r *recorder) RecordEvaluation(_ context.Context, kind string, results int, _ time.Duration, err error) {
	r.evaluations++
	r.lastKind, r.lastResults, r.lastErr = kind, results, err
}

func (r *recorder) RecordReferenceHop(_ context.Context, depth int) {
	r.hops = append(r.hops, depth)
}

func TestMetrics(t *testing.T) {
	rec := &recorder{}
	ev := evaluator.New(evaluator.WithMetrics(rec))

	root := node.New("root", nil).
		Add("error", "@@/+2/?value").
		Add("success", nil).
		Add("exp", "@/-/?name")
	m, err := ev.EvaluateString(context.Background(), "@@/0/?value", root)
	require.NoError(t, err)
	assert.Equal(t, []any{"success"}, values(t, m))

	assert.Equal(t, 1, rec.evaluations)
	assert.Equal(t, "value", rec.lastKind)
	assert.Equal(t, 1, rec.lastResults)
	assert.Equal(t, []int{1, 2}, rec.hops)

	_, err = ev.EvaluateString(context.Background(), "@/(/?name", root)
	require.Error(t, err)
	assert.Equal(t, 2, rec.evaluations)
	assert.Equal(t, "", rec.lastKind)
	assert.Error(t, rec.lastErr)
}
