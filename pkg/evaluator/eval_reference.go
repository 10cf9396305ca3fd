package evaluator

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"

	"github.com/sandrolain/golambda/pkg/node"
	"github.com/sandrolain/golambda/pkg/parser"
)

// resolveReferences re-evaluates every entity of m whose value is itself an
// expression, against the entity's own node, and splices the results in its
// place. Other entities pass through unchanged.
func (e *Evaluator) resolveReferences(ctx context.Context, ec *EvalContext, m *Match) (*Match, error) {
	out := make([]*MatchEntity, 0, len(m.entities))
	for _, ent := range m.entities {
		v, err := ent.Value()
		if err != nil {
			return nil, ec.fail(err)
		}
		source, ok := v.(string)
		if !ok || !parser.IsExpression(source) {
			out = append(out, ent)
			continue
		}
		sub, err := e.hop(ctx, source, ent.node)
		if err != nil {
			return nil, err
		}
		out = append(out, sub.entities...)
	}
	m.entities = out
	return m, nil
}

// hop evaluates source against n one reference level deeper.
func (e *Evaluator) hop(ctx context.Context, source string, n *node.Node) (*Match, error) {
	ctx = withReferenceDepth(ctx)
	depth := referenceDepth(ctx)
	e.metrics.RecordReferenceHop(ctx, depth)
	e.spans.AddSpanEvent(ctx, "reference.hop",
		attribute.String("expression", source),
		attribute.Int("depth", depth),
	)
	if e.opts.Debug {
		e.logger.Debug("following reference",
			slog.String("expression", source),
			slog.Int("depth", depth),
		)
	}
	return e.evaluate(ctx, source, n)
}
