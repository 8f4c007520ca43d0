// Package observability wires the run through an otel tracer and a set of
// prometheus metrics, additive to the check itself: nothing here changes a
// check's outcome, and both are safe to use with no configured exporter (the
// otel SDK's default TracerProvider is a no-op, prometheus registration is
// process-local). Modeled on the teacher project's
// internal/shared/observability package.
package observability

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/sdk/trace"
	oteltrace "go.opentelemetry.io/otel/trace"
)

const tracerName = "pythaw"

var Tracer = otel.Tracer(tracerName)

// NewLocalTracerProvider installs an in-process otel SDK TracerProvider with
// no exporter attached, so spans are created and timed but never shipped
// anywhere -- enough to let handler traversal be inspected with a debug
// span processor without requiring a collector for a CLI tool.
func NewLocalTracerProvider() *trace.TracerProvider {
	tp := trace.NewTracerProvider()
	otel.SetTracerProvider(tp)
	return tp
}

func StartHandlerSpan(ctx context.Context, handlerName string) (context.Context, oteltrace.Span) {
	return Tracer.Start(ctx, "pythaw.traverse_handler", oteltrace.WithAttributes(attribute.String("handler", handlerName)))
}

var (
	FilesParsedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pythaw_files_parsed_total",
		Help: "Total number of Python source files parsed during a run.",
	})

	ParseFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pythaw_parse_failures_total",
		Help: "Total number of files that failed to parse.",
	})

	HandlersFoundTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pythaw_handlers_found_total",
		Help: "Total number of handler entry points discovered.",
	})

	ViolationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pythaw_violations_total",
		Help: "Total number of rule violations found, by rule code.",
	}, []string{"code"})

	HandlerTraversalSeconds = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "pythaw_handler_traversal_seconds",
		Help:    "Time spent walking the call graph reachable from one handler.",
		Buckets: prometheus.DefBuckets,
	}, []string{"handler"})
)
