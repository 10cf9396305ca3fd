package evaluator_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/sandrolain/golambda/pkg/evaluator"
	"github.com/sandrolain/golambda/pkg/node"
	"github.com/sandrolain/golambda/pkg/parser"
	"github.com/sandrolain/golambda/pkg/types"
)

var (
	mediumTree = buildUsers(10)
	largeTree  = buildUsers(100)
	xlTree     = buildUsers(1000)
)

func buildUsers(n int) *node.Node {
	departments := []string{"Engineering", "Sales", "Marketing", "HR", "Finance"}
	users := node.New("users", nil)
	for i := 0; i < n; i++ {
		u := node.New("", nil).
			Add("id", i+1).
			Add("name", fmt.Sprintf("User%d", i+1)).
			Add("age", 20+(i%40)).
			Add("department", departments[i%5]).
			Add("active", i%2 == 0)
		users.Append(u)
	}
	return node.New("", nil).Append(users)
}

// sharedEval is safe for concurrent use.
var sharedEval = evaluator.New()

func runEval(b *testing.B, ev *evaluator.Evaluator, expr *types.Expression, n *node.Node) {
	b.Helper()
	if _, err := ev.Evaluate(context.Background(), expr, n); err != nil {
		b.Fatal(err)
	}
}

func BenchmarkParseSimplePath(b *testing.B) {
	for i := 0; i < b.N; i++ {
		if _, err := parser.Parse("@/*/users/?node"); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkParseComplex(b *testing.B) {
	expr := `@/*/users/*/(/*/department/=Sales/./|/*/name/="/^User1/"/./)^(/*/active/=:bool:true/./)/*/name/?value.string`
	for i := 0; i < b.N; i++ {
		if _, err := parser.Parse(expr); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkEvalNamed_Medium(b *testing.B) {
	expr := types.NewExpression("@/*/users/*/0/*/name/?value")
	for i := 0; i < b.N; i++ {
		runEval(b, sharedEval, expr, mediumTree)
	}
}

func BenchmarkEvalValued_Large(b *testing.B) {
	expr := types.NewExpression("@/*/users/*/*/department/=Sales/./*/name/?value")
	for i := 0; i < b.N; i++ {
		runEval(b, sharedEval, expr, largeTree)
	}
}

func BenchmarkEvalFlatten_XL(b *testing.B) {
	expr := types.NewExpression("@/**/age/?count")
	for i := 0; i < b.N; i++ {
		runEval(b, sharedEval, expr, xlTree)
	}
}

func BenchmarkEvalRegex_Large(b *testing.B) {
	expr := types.NewExpression(`@/*/users/*/*/name/="/7$/"/?value`)
	for i := 0; i < b.N; i++ {
		runEval(b, sharedEval, expr, largeTree)
	}
}

func BenchmarkEvalLogicals_Large(b *testing.B) {
	expr := types.NewExpression("@/*/users/*/(/*/department/=HR/./|/*/active/=:bool:true/./)/?count")
	for i := 0; i < b.N; i++ {
		runEval(b, sharedEval, expr, largeTree)
	}
}

func BenchmarkEvalCached_Large(b *testing.B) {
	ev := evaluator.New(evaluator.WithCaching(true))
	expr := types.NewExpression("@/*/users/*/*/department/=Sales/./*/name/?value")
	for i := 0; i < b.N; i++ {
		runEval(b, ev, expr, largeTree)
	}
}

func BenchmarkEvalConcurrent_XL(b *testing.B) {
	ev := evaluator.New(evaluator.WithCaching(true))
	expr := types.NewExpression("@/*/users/*/*/department/=Finance/./?count")
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			if _, err := ev.Evaluate(context.Background(), expr, xlTree); err != nil {
				b.Error(err)
				return
			}
		}
	})
}
