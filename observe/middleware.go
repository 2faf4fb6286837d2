package observe

import (
	"context"
	"time"
)

// StageFunc runs one stage and reports its status string and error.
type StageFunc func(ctx context.Context) (status string, err error)

// Middleware wraps stage execution with tracing and logging.
//
// Contract:
//   - Context: Propagates context through tracing spans.
//   - Errors: Errors from the wrapped function are recorded and propagated unchanged.
type Middleware struct {
	tracer Tracer
	logger Logger
}

// NewMiddleware creates a new Middleware with the given observability components.
func NewMiddleware(tracer Tracer, logger Logger) *Middleware {
	if tracer == nil {
		tracer = newNoopTracer()
	}
	if logger == nil {
		logger = NewNopLogger()
	}
	return &Middleware{
		tracer: tracer,
		logger: logger,
	}
}

// Wrap wraps a StageFunc with a span and a completion log line.
// Failed hard stages log at error level, failed soft stages at warn.
func (m *Middleware) Wrap(meta StageMeta, fn StageFunc) StageFunc {
	return func(ctx context.Context) (string, error) {
		ctx, span := m.tracer.StartSpan(ctx, meta)
		start := time.Now()

		status, err := fn(ctx)

		duration := time.Since(start)
		m.tracer.EndSpan(span, status, err)

		stageLogger := m.logger.WithStage(meta)
		fields := []Field{
			{Key: "status", Value: status},
			{Key: "duration_ms", Value: float64(duration.Microseconds()) / 1000},
		}

		switch {
		case err == nil:
			stageLogger.Debug(ctx, "stage completed", fields...)
		case meta.Gate == "soft":
			fields = append(fields, Field{Key: "error", Value: err.Error()})
			stageLogger.Warn(ctx, "soft stage failed", fields...)
		default:
			fields = append(fields, Field{Key: "error", Value: err.Error()})
			stageLogger.Error(ctx, "stage failed", fields...)
		}

		return status, err
	}
}

// MiddlewareFromObserver creates a Middleware from an Observer.
func MiddlewareFromObserver(obs Observer) *Middleware {
	return NewMiddleware(NewTracer(obs.Tracer()), obs.Logger())
}
