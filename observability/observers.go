package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/skillsenselab/wirekit/errors"
	"github.com/skillsenselab/wirekit/logger"
	"github.com/skillsenselab/wirekit/registry"
)

// resolveErrCode labels a resolution failure for metric and span
// attributes.
func resolveErrCode(err error) errors.ErrorCode {
	if code := errors.CodeOf(err); code != "" {
		return code
	}
	return errors.ErrCodeInternal
}

// LogObserver logs registry events through the structured logger. Register
// and maintenance events log at debug; failed resolutions log at warn.
type LogObserver struct {
	log *logger.Logger
}

// NewLogObserver creates a log observer. A nil logger falls back to the
// named "registry.events" logger.
func NewLogObserver(log *logger.Logger) *LogObserver {
	if log == nil {
		log = logger.Get("registry.events")
	}
	return &LogObserver{log: log}
}

// Observe implements registry.Observer.
func (o *LogObserver) Observe(ev registry.Event) {
	switch ev.Op {
	case registry.OpRegister:
		o.log.Debug("registered", map[string]interface{}{
			logger.FieldRegistry: ev.Registry,
			logger.FieldKey:      ev.Key.String(),
			logger.FieldScope:    ev.Scope.String(),
			"replaced":           ev.Replaced,
		})
	case registry.OpResolve:
		if ev.Err != nil {
			o.log.Warn("resolution failed", map[string]interface{}{
				logger.FieldRegistry: ev.Registry,
				logger.FieldKey:      ev.Key.String(),
				logger.FieldError:    ev.Err.Error(),
				logger.FieldDuration: ev.Duration.Milliseconds(),
			})
			return
		}
		o.log.Debug("resolved", map[string]interface{}{
			logger.FieldRegistry: ev.Registry,
			logger.FieldKey:      ev.Key.String(),
			logger.FieldScope:    ev.Scope.String(),
			logger.FieldCacheHit: ev.CacheHit,
			logger.FieldDuration: ev.Duration.Milliseconds(),
		})
	case registry.OpClearCache:
		o.log.Debug("cache cleared", map[string]interface{}{
			logger.FieldRegistry: ev.Registry,
			logger.FieldGroup:    ev.Group,
			"cleared":            ev.Count,
		})
	case registry.OpReset:
		o.log.Debug("registry reset", map[string]interface{}{
			logger.FieldRegistry: ev.Registry,
			"dropped":            ev.Count,
		})
	}
}

// MetricsObserver translates registry events into metric recordings.
type MetricsObserver struct {
	metrics *Metrics
}

// NewMetricsObserver creates a metrics observer over the given instrument
// bundle.
func NewMetricsObserver(metrics *Metrics) *MetricsObserver {
	return &MetricsObserver{metrics: metrics}
}

// Observe implements registry.Observer.
func (o *MetricsObserver) Observe(ev registry.Event) {
	ctx := context.Background()
	switch ev.Op {
	case registry.OpRegister:
		o.metrics.RecordRegistration(ctx, ev.Replaced)
	case registry.OpResolve:
		outcome := "ok"
		if ev.Err != nil {
			outcome = string(resolveErrCode(ev.Err))
		}
		o.metrics.RecordResolution(ctx, ev.Scope.String(), outcome, ev.CacheHit, ev.Duration)
	case registry.OpClearCache:
		o.metrics.RecordCacheClear(ctx, ev.Group, ev.Count)
	case registry.OpReset:
		o.metrics.RecordReset(ctx, ev.Count)
	}
}

// TraceObserver reconstructs a span per resolution from the event's
// duration. Spans parent to the background context; resolutions are
// process-local and carry the registry id for correlation instead.
type TraceObserver struct {
	tracer trace.Tracer
}

// NewTraceObserver creates a trace observer. A nil tracer falls back to
// the package default tracer.
func NewTraceObserver(tracer trace.Tracer) *TraceObserver {
	if tracer == nil {
		tracer = Tracer(defaultTracerName)
	}
	return &TraceObserver{tracer: tracer}
}

// Observe implements registry.Observer.
func (o *TraceObserver) Observe(ev registry.Event) {
	if ev.Op != registry.OpResolve {
		return
	}
	end := time.Now()
	start := end.Add(-ev.Duration)

	_, span := o.tracer.Start(context.Background(), SpanResolve,
		trace.WithTimestamp(start),
		trace.WithSpanKind(trace.SpanKindInternal),
	)
	span.SetAttributes(
		attribute.String(AttrRegistryID, ev.Registry),
		attribute.String(AttrKey, ev.Key.String()),
		attribute.String(AttrScope, ev.Scope.String()),
		attribute.Bool(AttrCacheHit, ev.CacheHit),
	)
	if ev.Err != nil {
		span.RecordError(ev.Err)
		span.SetAttributes(attribute.String(AttrErrorCode, string(resolveErrCode(ev.Err))))
		span.SetStatus(codes.Error, ev.Err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End(trace.WithTimestamp(end))
}
