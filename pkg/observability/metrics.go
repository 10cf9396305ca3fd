// Package observability provides OpenTelemetry metrics and tracing for
// expression evaluation.
//
// Both concerns are optional: the evaluator uses NoopMetrics and
// NoopSpanManager unless a recorder is configured.
package observability

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// MetricsRecorder records evaluation metrics.
// Use NewMetricsRecorder() for OTel metrics or NoopMetrics{} when disabled.
type MetricsRecorder interface {
	// RecordEvaluation records one top-level evaluation. kind is the result
	// kind of the expression, empty when evaluation failed before it was known.
	RecordEvaluation(ctx context.Context, kind string, results int, duration time.Duration, err error)

	// RecordReferenceHop records one re-evaluation of a reference expression
	// at the given depth.
	RecordReferenceHop(ctx context.Context, depth int)
}

type otelMetrics struct {
	evaluations metric.Int64Counter
	latency     metric.Float64Histogram
	errors      metric.Int64Counter
	results     metric.Int64Histogram
	hops        metric.Int64Counter
	hopDepth    metric.Int64Histogram
}

var (
	defaultMetrics     *otelMetrics
	defaultMetricsOnce sync.Once
	defaultMetricsErr  error
)

func getDefaultMetrics() (*otelMetrics, error) {
	defaultMetricsOnce.Do(func() {
		defaultMetrics, defaultMetricsErr = newOtelMetrics()
	})
	return defaultMetrics, defaultMetricsErr
}

func newOtelMetrics() (*otelMetrics, error) {
	meter := otel.Meter("golambda")

	evaluations, err := meter.Int64Counter("golambda.evaluations",
		metric.WithDescription("Number of expression evaluations"),
	)
	if err != nil {
		return nil, err
	}

	latency, err := meter.Float64Histogram("golambda.evaluation.latency_ms",
		metric.WithDescription("Expression evaluation latency in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	evalErrors, err := meter.Int64Counter("golambda.evaluation.errors",
		metric.WithDescription("Number of failed expression evaluations"),
	)
	if err != nil {
		return nil, err
	}

	results, err := meter.Int64Histogram("golambda.evaluation.results",
		metric.WithDescription("Number of entities in a match"),
	)
	if err != nil {
		return nil, err
	}

	hops, err := meter.Int64Counter("golambda.reference.hops",
		metric.WithDescription("Number of reference expression re-evaluations"),
	)
	if err != nil {
		return nil, err
	}

	hopDepth, err := meter.Int64Histogram("golambda.reference.depth",
		metric.WithDescription("Depth of reference expression re-evaluations"),
	)
	if err != nil {
		return nil, err
	}

	return &otelMetrics{
		evaluations: evaluations,
		latency:     latency,
		errors:      evalErrors,
		results:     results,
		hops:        hops,
		hopDepth:    hopDepth,
	}, nil
}

// NewMetricsRecorder returns a MetricsRecorder that uses OpenTelemetry.
// If metrics initialization fails, returns a no-op recorder.
//
// The recorder uses the global OTel meter provider. Configure the provider
// before calling this function:
//
//	otel.SetMeterProvider(yourProvider)
func NewMetricsRecorder() MetricsRecorder {
	m, err := getDefaultMetrics()
	if err != nil {
		slog.Warn("metrics initialization failed, using no-op recorder",
			slog.String("error", err.Error()))
		return NoopMetrics{}
	}
	return m
}

func (m *otelMetrics) RecordEvaluation(ctx context.Context, kind string, results int, duration time.Duration, err error) {
	attrs := metric.WithAttributes(attribute.String("kind", kind))

	m.evaluations.Add(ctx, 1, attrs)
	m.latency.Record(ctx, float64(duration.Microseconds())/1000, attrs)
	if err != nil {
		m.errors.Add(ctx, 1, attrs)
		return
	}
	m.results.Record(ctx, int64(results), attrs)
}

func (m *otelMetrics) RecordReferenceHop(ctx context.Context, depth int) {
	m.hops.Add(ctx, 1)
	m.hopDepth.Record(ctx, int64(depth))
}
