package observe

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
)

// StageMeta identifies one stage of a health evaluation for telemetry.
type StageMeta struct {
	Name string // Stage name (required), e.g. "process"
	Gate string // "hard" or "soft"
}

// SpanName returns the deterministic span name for this stage.
// Format: health.stage.<name>
func (m StageMeta) SpanName() string {
	return "health.stage." + m.Name
}

// Tracer wraps OpenTelemetry tracing with stage-specific span management.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: EndSpan must be best-effort and must not panic.
type Tracer interface {
	// StartSpan starts a new span for a stage.
	StartSpan(ctx context.Context, meta StageMeta) (context.Context, trace.Span)

	// EndSpan ends the span, recording the stage status and any error.
	EndSpan(span trace.Span, status string, err error)
}

type tracerImpl struct {
	tracer trace.Tracer
}

// NewTracer creates a Tracer wrapping the given OpenTelemetry tracer.
func NewTracer(t trace.Tracer) Tracer {
	if t == nil {
		return newNoopTracer()
	}
	return &tracerImpl{tracer: t}
}

// StartSpan starts a new span with stage metadata as attributes.
func (t *tracerImpl) StartSpan(ctx context.Context, meta StageMeta) (context.Context, trace.Span) {
	attrs := []attribute.KeyValue{
		attribute.String("stage.name", meta.Name),
		attribute.Bool("stage.error", false), // Will be updated in EndSpan if error
	}
	if meta.Gate != "" {
		attrs = append(attrs, attribute.String("stage.gate", meta.Gate))
	}

	return t.tracer.Start(ctx, meta.SpanName(),
		trace.WithAttributes(attrs...),
		trace.WithSpanKind(trace.SpanKindInternal),
	)
}

// EndSpan ends the span and records the error status if present.
func (t *tracerImpl) EndSpan(span trace.Span, status string, err error) {
	if status != "" {
		span.SetAttributes(attribute.String("stage.status", status))
	}
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		span.SetAttributes(attribute.Bool("stage.error", true))
		span.RecordError(err)
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

type noopTracer struct {
	noop trace.Tracer
}

func newNoopTracer() Tracer {
	return &noopTracer{
		noop: tracenoop.NewTracerProvider().Tracer("noop"),
	}
}

func (t *noopTracer) StartSpan(ctx context.Context, meta StageMeta) (context.Context, trace.Span) {
	return t.noop.Start(ctx, meta.SpanName())
}

func (t *noopTracer) EndSpan(span trace.Span, status string, err error) {
	span.End()
}
