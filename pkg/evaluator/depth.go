package evaluator

import (
	"context"
)

type referenceDepthKey struct{}

// referenceDepth returns how many reference hops led to the current
// evaluation; zero for a top-level call.
func referenceDepth(ctx context.Context) int {
	if d, ok := ctx.Value(referenceDepthKey{}).(int); ok {
		return d
	}
	return 0
}

// withReferenceDepth returns a context one reference hop deeper than ctx.
func withReferenceDepth(ctx context.Context) context.Context {
	return context.WithValue(ctx, referenceDepthKey{}, referenceDepth(ctx)+1)
}
