package application

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"microcms-mcp-server/internal/domain"
)

const instrumentationName = "microcms-mcp-server"

// Invocation outcomes recorded on spans and metrics.
const (
	OutcomeCompleted       = "completed"
	OutcomeUnknownTool     = "unknown_tool"
	OutcomeInvalidArgument = "invalid_arguments"
	OutcomeFailed          = "failed"
)

// ToolObserver records tool invocations into OpenTelemetry. A nil observer
// records nothing.
type ToolObserver struct {
	tracer      trace.Tracer
	invocations metric.Int64Counter
	latency     metric.Float64Histogram
}

// NewToolObserver creates a tool observer bound to the provided tracer/meter.
func NewToolObserver(tracer trace.Tracer, meter metric.Meter) (*ToolObserver, error) {
	invocations, err := meter.Int64Counter(
		"mcp.tool.invocations",
		metric.WithDescription("Number of tool invocations"),
	)
	if err != nil {
		return nil, err
	}
	latency, err := meter.Float64Histogram(
		"mcp.tool.latency",
		metric.WithDescription("Tool latency in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	return &ToolObserver{
		tracer:      tracer,
		invocations: invocations,
		latency:     latency,
	}, nil
}

// NewGlobalToolObserver uses the globally registered OpenTelemetry
// providers, which are no-ops unless an SDK has been installed.
func NewGlobalToolObserver() (*ToolObserver, error) {
	return NewToolObserver(otel.Tracer(instrumentationName), otel.Meter(instrumentationName))
}

// Invocation is an in-flight observed tool call.
type Invocation struct {
	observer *ToolObserver
	span     trace.Span
	tool     string
	start    time.Time
}

// Start opens a span for one tool call.
func (o *ToolObserver) Start(ctx context.Context, tool, invocationID string) (context.Context, *Invocation) {
	if o == nil {
		return ctx, nil
	}

	ctx, span := o.tracer.Start(ctx, "mcp.tool.call",
		trace.WithSpanKind(trace.SpanKindServer),
		trace.WithAttributes(
			attribute.String("tool.name", tool),
			attribute.String("tool.invocation_id", invocationID),
		),
	)

	return ctx, &Invocation{
		observer: o,
		span:     span,
		tool:     tool,
		start:    time.Now(),
	}
}

// End closes the span and records the outcome.
func (i *Invocation) End(ctx context.Context, outcome string, err error) {
	if i == nil {
		return
	}

	i.span.SetAttributes(attribute.String("tool.outcome", outcome))
	if err != nil {
		i.span.RecordError(err)
		i.span.SetStatus(codes.Error, err.Error())
	}
	i.span.End()

	attrs := metric.WithAttributes(
		attribute.String("tool_name", i.tool),
		attribute.String("outcome", outcome),
	)
	i.observer.invocations.Add(ctx, 1, attrs)
	i.observer.latency.Record(ctx, time.Since(i.start).Seconds(), attrs)
}

// recordUpstreamFailure annotates the active span with a caught upstream
// failure. The call itself still completes with an envelope.
func recordUpstreamFailure(ctx context.Context, err *domain.UpstreamError) {
	span := trace.SpanFromContext(ctx)
	span.SetAttributes(
		attribute.String("upstream.operation", err.Op),
		attribute.String("upstream.error_kind", string(err.Kind)),
	)
	span.RecordError(err)
}
