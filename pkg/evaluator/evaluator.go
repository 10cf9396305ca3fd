// Package evaluator implements the lambda expression evaluation engine.
//
// The evaluator compiles an expression into a program (see the parser
// package) and runs it against a node tree:
//   - the outermost group is seeded with the node being evaluated
//   - each group runs its logicals in order, combining node sets
//   - iterators navigate and filter the running set
//   - the result is projected into a typed Match
//   - reference expressions ("@@...") re-evaluate expression valued results
//
// # Example
//
//	ev := evaluator.New()
//	m, err := ev.Evaluate(ctx, types.NewExpression("@/*/?name"), root)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, ent := range m.Entities() {
//	    v, _ := ent.Value()
//	    fmt.Println(v)
//	}
//
// # Concurrency
//
// An Evaluator is immutable after New and may be shared by goroutines,
// provided nobody mutates the trees being evaluated at the same time.
package evaluator

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/sandrolain/golambda/pkg/cache"
	"github.com/sandrolain/golambda/pkg/coerce"
	"github.com/sandrolain/golambda/pkg/hyperlambda"
	"github.com/sandrolain/golambda/pkg/node"
	"github.com/sandrolain/golambda/pkg/observability"
	"github.com/sandrolain/golambda/pkg/parser"
	"github.com/sandrolain/golambda/pkg/regex"
	"github.com/sandrolain/golambda/pkg/types"
)

// Evaluator evaluates lambda expressions against node trees.
type Evaluator struct {
	opts    EvalOptions
	logger  *slog.Logger
	cache   *cache.Cache // non-nil when Caching is enabled
	coercer coerce.Coercer
	regex   regex.Compiler
	metrics observability.MetricsRecorder
	spans   observability.SpanManager
}

// EvalOptions configures evaluator behavior.
type EvalOptions struct {
	// Caching enables program caching.
	// When true, compiled programs are cached by expression text.
	// The default cache holds up to 256 entries with LRU eviction.
	Caching bool
	// CacheSize sets the maximum number of cached programs.
	// Only used when Caching is true and no explicit Cache is provided.
	// Defaults to 256.
	CacheSize int
	// Cache is a custom program cache. If non-nil, Caching is implicitly enabled.
	Cache *cache.Cache
	// MaxDepth limits reference expression recursion.
	MaxDepth int
	// Timeout sets evaluation timeout.
	Timeout time.Duration
	// Debug enables debug logging.
	Debug bool
	// Logger for structured logging.
	Logger *slog.Logger
	// Coercer converts values for typed literals, converters and writes.
	Coercer coerce.Coercer
	// Regex compiles regex iterator patterns.
	Regex regex.Compiler
	// Metrics records evaluation metrics.
	Metrics observability.MetricsRecorder
	// Spans traces evaluations.
	Spans observability.SpanManager
}

// New creates a new Evaluator with default options.
func New(opts ...EvalOption) *Evaluator {
	options := EvalOptions{
		Caching:  false, // Disabled by default
		MaxDepth: 128,
		Timeout:  30 * time.Second,
	}

	for _, opt := range opts {
		opt(&options)
	}

	if options.Logger == nil {
		options.Logger = slog.Default()
	}
	if options.Coercer == nil {
		options.Coercer = hyperlambda.NewCoercer()
	}
	if options.Regex == nil {
		options.Regex = regex.Default()
	}
	if options.Metrics == nil {
		options.Metrics = observability.NoopMetrics{}
	}
	if options.Spans == nil {
		options.Spans = observability.NoopSpanManager{}
	}

	// Initialise program cache when caching is enabled.
	var c *cache.Cache
	if options.Cache != nil {
		c = options.Cache
	} else if options.Caching {
		size := options.CacheSize
		if size <= 0 {
			size = 256
		}
		c = cache.New(size)
	}

	return &Evaluator{
		opts:    options,
		logger:  options.Logger,
		cache:   c,
		coercer: options.Coercer,
		regex:   options.Regex,
		metrics: options.Metrics,
		spans:   options.Spans,
	}
}

// Cache returns the program cache, or nil if caching is disabled.
func (e *Evaluator) Cache() *cache.Cache {
	return e.cache
}

// Coercer returns the value coercer used by the evaluator.
func (e *Evaluator) Coercer() coerce.Coercer {
	return e.coercer
}

// Compile compiles source with the evaluator's coercer and regex
// capability, consulting the cache when enabled.
func (e *Evaluator) Compile(source string) (*types.Program, error) {
	compile := func() (*types.Program, error) {
		return parser.Parse(source,
			parser.WithCoercer(e.coercer),
			parser.WithRegexCompiler(e.regex),
		)
	}
	if e.cache == nil {
		return compile()
	}
	return e.cache.GetOrCompile(source, compile)
}

// Evaluate evaluates expr against n.
func (e *Evaluator) Evaluate(ctx context.Context, expr *types.Expression, n *node.Node) (*Match, error) {
	if expr == nil {
		return nil, fmt.Errorf("invalid expression")
	}
	if n == nil {
		return nil, types.NewError(types.ErrNoNode, "cannot evaluate against a nil node", -1).
			WithExpression(expr.Source())
	}

	// Apply timeout if configured
	if e.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.opts.Timeout)
		defer cancel()
	}

	ctx, span := e.spans.StartEvalSpan(ctx, expr.Source())
	start := time.Now()
	m, err := e.evaluate(ctx, expr.Source(), n)
	elapsed := time.Since(start)
	e.spans.EndSpanWithError(span, err)

	kind, results := "", 0
	if m != nil {
		kind, results = m.Kind().String(), m.Len()
	}
	e.metrics.RecordEvaluation(ctx, kind, results, elapsed, err)

	if e.opts.Debug {
		e.logger.Debug("expression evaluated",
			slog.String("expression", expr.Source()),
			slog.String("kind", kind),
			slog.Int("results", results),
			slog.Duration("duration", elapsed),
			slog.Any("error", err),
		)
	}
	if err != nil {
		return nil, err
	}
	return m, nil
}

// EvaluateString is a shorthand for Evaluate(ctx, types.NewExpression(source), n).
func (e *Evaluator) EvaluateString(ctx context.Context, source string, n *node.Node) (*Match, error) {
	return e.Evaluate(ctx, types.NewExpression(source), n)
}

func (e *Evaluator) evaluate(ctx context.Context, source string, n *node.Node) (*Match, error) {
	depth := referenceDepth(ctx)
	if e.opts.MaxDepth > 0 && depth > e.opts.MaxDepth {
		return nil, types.NewError(types.ErrRecursionDepth,
			fmt.Sprintf("reference expressions nested deeper than %d levels", e.opts.MaxDepth), -1).
			WithExpression(source).WithNode(n)
	}

	prog, err := e.Compile(source)
	if err != nil {
		return nil, types.Annotate(err, source, n)
	}
	ec := NewContext(prog, n, depth)

	if e.opts.Debug {
		e.logger.Debug("program compiled",
			slog.String("expression", source),
			slog.String("kind", prog.Kind.String()),
			slog.Int("groups", len(prog.Groups)),
			slog.Int("depth", depth),
		)
	}

	nodes, err := e.evalGroup(ctx, ec, 0, []*node.Node{n})
	if err != nil {
		return nil, ec.fail(err)
	}

	m := newMatch(prog.Kind, prog.Convert, nodes, e.coercer)
	if prog.Reference() {
		return e.resolveReferences(ctx, ec, m)
	}
	return m, nil
}

// EvalOption configures evaluation behavior.
type EvalOption func(*EvalOptions)

// WithCaching enables or disables program caching.
// When enabled, a default LRU cache of 256 entries is created.
// To control the cache size use WithCacheSize; to supply your own cache use WithCache.
func WithCaching(enabled bool) EvalOption {
	return func(opts *EvalOptions) {
		opts.Caching = enabled
	}
}

// WithCacheSize sets the maximum number of cached programs.
// Only effective when combined with WithCaching(true).
func WithCacheSize(size int) EvalOption {
	return func(opts *EvalOptions) {
		opts.CacheSize = size
	}
}

// WithCache attaches an external program cache.
// The evaluator will use this cache regardless of the Caching flag.
func WithCache(c *cache.Cache) EvalOption {
	return func(opts *EvalOptions) {
		opts.Cache = c
	}
}

// WithTimeout sets the evaluation timeout.
func WithTimeout(timeout time.Duration) EvalOption {
	return func(opts *EvalOptions) {
		opts.Timeout = timeout
	}
}

// WithDebug enables or disables debug logging.
func WithDebug(enabled bool) EvalOption {
	return func(opts *EvalOptions) {
		opts.Debug = enabled
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) EvalOption {
	return func(opts *EvalOptions) {
		opts.Logger = logger
	}
}

// WithMaxDepth sets the maximum reference recursion depth.
// Zero disables the limit.
func WithMaxDepth(depth int) EvalOption {
	return func(opts *EvalOptions) {
		opts.MaxDepth = depth
	}
}

// WithCoercer sets the value coercer.
func WithCoercer(c coerce.Coercer) EvalOption {
	return func(opts *EvalOptions) {
		opts.Coercer = c
	}
}

// WithRegexCompiler sets the regex capability.
func WithRegexCompiler(c regex.Compiler) EvalOption {
	return func(opts *EvalOptions) {
		opts.Regex = c
	}
}

// WithMetrics sets the metrics recorder.
func WithMetrics(m observability.MetricsRecorder) EvalOption {
	return func(opts *EvalOptions) {
		opts.Metrics = m
	}
}

// WithTracing sets the span manager.
func WithTracing(s observability.SpanManager) EvalOption {
	return func(opts *EvalOptions) {
		opts.Spans = s
	}
}
