package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Operation holds observability context for a tracked unit of work, such
// as an assembly task or a lifecycle stage.
type Operation struct {
	Service   string
	Name      string
	RunID     string
	StartTime time.Time
	Metrics   *Metrics
}

// NewOperation creates a tracked operation.
// If metrics is nil, metric recording is silently skipped.
func NewOperation(service, name, runID string, metrics *Metrics) *Operation {
	return &Operation{
		Service:   service,
		Name:      name,
		RunID:     runID,
		StartTime: time.Now(),
		Metrics:   metrics,
	}
}

// operationKey is the context key for Operation.
type operationKey struct{}

// WithOperation stores an Operation in the context.
func WithOperation(ctx context.Context, op *Operation) context.Context {
	return context.WithValue(ctx, operationKey{}, op)
}

// OperationFromContext retrieves the Operation from context, or nil.
func OperationFromContext(ctx context.Context) *Operation {
	if op, ok := ctx.Value(operationKey{}).(*Operation); ok {
		return op
	}
	return nil
}

// StartSpan starts a traced span carrying the operation's identity.
func (op *Operation) StartSpan(ctx context.Context, spanName string) (context.Context, trace.Span) {
	ctx, span := StartSpan(ctx, spanName)
	span.SetAttributes(
		attribute.String(AttrServiceName, op.Service),
		attribute.String(AttrOperationName, op.Name),
	)
	if op.RunID != "" {
		span.SetAttributes(attribute.String(AttrRunID, op.RunID))
	}
	return ctx, span
}

// End closes the span and records the task metric.
func (op *Operation) End(ctx context.Context, span trace.Span, status string, err error) {
	duration := time.Since(op.StartTime)

	if err != nil {
		span.RecordError(err)
		span.SetAttributes(attribute.String(AttrErrorMessage, err.Error()))
	}

	span.SetAttributes(
		attribute.String(AttrStatus, status),
		attribute.Int64(AttrDurationMs, duration.Milliseconds()),
	)
	span.End()

	if op.Metrics != nil {
		op.Metrics.RecordTask(ctx, op.Service, op.Name, status, duration)
	}
}

// Duration returns the elapsed time since the operation started.
func (op *Operation) Duration() time.Duration {
	return time.Since(op.StartTime)
}
