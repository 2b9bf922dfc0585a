package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/skillsenselab/wirekit/logger"
	"github.com/skillsenselab/wirekit/validation"
)

// MeterConfig configures the OpenTelemetry meter provider.
type MeterConfig struct {
	// Enabled toggles meter initialization.
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`
	// ServiceName is the name of the service.
	ServiceName string `yaml:"service_name" mapstructure:"service_name"`
	// ServiceVersion is the version of the service.
	ServiceVersion string `yaml:"service_version" mapstructure:"service_version"`
	// Environment is the deployment environment (development, staging, production).
	Environment string `yaml:"environment" mapstructure:"environment"`
	// Endpoint is the OTLP HTTP endpoint host:port (e.g., "localhost:4318").
	Endpoint string `yaml:"endpoint" mapstructure:"endpoint"`
	// Insecure allows insecure connections (for development).
	Insecure bool `yaml:"insecure" mapstructure:"insecure"`
	// Interval is the metric export interval.
	Interval time.Duration `yaml:"interval" mapstructure:"interval"`
}

// DefaultMeterConfig returns sensible defaults for development.
func DefaultMeterConfig(serviceName string) MeterConfig {
	return MeterConfig{
		Enabled:        true,
		ServiceName:    serviceName,
		ServiceVersion: "1.0.0",
		Environment:    "development",
		Endpoint:       "localhost:4318",
		Insecure:       true,
		Interval:       15 * time.Second,
	}
}

// ApplyDefaults fills unset fields with development defaults.
func (c *MeterConfig) ApplyDefaults() {
	if c.Endpoint == "" {
		c.Endpoint = "localhost:4318"
	}
	if c.Environment == "" {
		c.Environment = "development"
	}
	if c.Interval <= 0 {
		c.Interval = 15 * time.Second
	}
}

// Validate checks the configuration.
func (c *MeterConfig) Validate() error {
	v := validation.New()
	if c.Enabled {
		v.Required("metrics.endpoint", c.Endpoint)
		v.HostPort("metrics.endpoint", c.Endpoint)
		v.Required("metrics.service_name", c.ServiceName)
	}
	return v.Validate()
}

// InitMeter initializes the OpenTelemetry meter provider and installs it
// globally. Returns a MeterProvider that should be shut down on
// application exit.
func InitMeter(ctx context.Context, config MeterConfig) (*sdkmetric.MeterProvider, error) {
	opts := []otlpmetrichttp.Option{
		otlpmetrichttp.WithEndpoint(config.Endpoint),
	}
	if config.Insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}

	exporter, err := otlpmetrichttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating metric exporter: %w", err)
	}

	res, err := newResource(config.ServiceName, config.ServiceVersion, config.Environment)
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	readerOpts := []sdkmetric.PeriodicReaderOption{}
	if config.Interval > 0 {
		readerOpts = append(readerOpts, sdkmetric.WithInterval(config.Interval))
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, readerOpts...)),
		sdkmetric.WithResource(res),
	)

	otel.SetMeterProvider(mp)

	logger.Info("meter initialized", logger.Fields(
		"service", config.ServiceName,
		"endpoint", config.Endpoint,
		"interval", config.Interval.String(),
	))

	return mp, nil
}

// Meter returns a named meter from the global provider.
func Meter(name string) metric.Meter {
	return otel.Meter(name)
}

// Metrics holds the metric instruments for registry, lifecycle, and task
// telemetry.
type Metrics struct {
	resolutionsTotal  metric.Int64Counter
	resolveDuration   metric.Float64Histogram
	cacheHits         metric.Int64Counter
	cacheMisses       metric.Int64Counter
	cacheClears       metric.Int64Counter
	registrations     metric.Int64UpDownCounter
	taskTotal         metric.Int64Counter
	taskDuration      metric.Float64Histogram
	lifecycleDuration metric.Float64Histogram
}

// NewMetrics creates metric instruments on the given meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	resolutionsTotal, err := meter.Int64Counter("registry.resolutions",
		metric.WithDescription("Total resolutions by scope and outcome"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating registry.resolutions counter: %w", err)
	}

	resolveDuration, err := meter.Float64Histogram("registry.resolve.duration",
		metric.WithDescription("Duration of resolutions in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating registry.resolve.duration histogram: %w", err)
	}

	cacheHits, err := meter.Int64Counter("registry.cache.hits",
		metric.WithDescription("Resolutions served from a cached instance"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating registry.cache.hits counter: %w", err)
	}

	cacheMisses, err := meter.Int64Counter("registry.cache.misses",
		metric.WithDescription("Resolutions that invoked the creation closure"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating registry.cache.misses counter: %w", err)
	}

	cacheClears, err := meter.Int64Counter("registry.cache.clears",
		metric.WithDescription("Cache invalidations by group"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating registry.cache.clears counter: %w", err)
	}

	registrations, err := meter.Int64UpDownCounter("registry.registrations",
		metric.WithDescription("Live registrations in the registry"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating registry.registrations gauge: %w", err)
	}

	taskTotal, err := meter.Int64Counter("assembly.task.total",
		metric.WithDescription("Total tracked task executions"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating assembly.task.total counter: %w", err)
	}

	taskDuration, err := meter.Float64Histogram("assembly.task.duration",
		metric.WithDescription("Duration of tracked tasks in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating assembly.task.duration histogram: %w", err)
	}

	lifecycleDuration, err := meter.Float64Histogram("lifecycle.stage.duration",
		metric.WithDescription("Duration of lifecycle stages in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating lifecycle.stage.duration histogram: %w", err)
	}

	return &Metrics{
		resolutionsTotal:  resolutionsTotal,
		resolveDuration:   resolveDuration,
		cacheHits:         cacheHits,
		cacheMisses:       cacheMisses,
		cacheClears:       cacheClears,
		registrations:     registrations,
		taskTotal:         taskTotal,
		taskDuration:      taskDuration,
		lifecycleDuration: lifecycleDuration,
	}, nil
}

// RecordResolution records one resolution outcome.
func (m *Metrics) RecordResolution(ctx context.Context, scope, outcome string, cacheHit bool, duration time.Duration) {
	attrs := metric.WithAttributes(
		attribute.String("scope", scope),
		attribute.String("outcome", outcome),
	)
	m.resolutionsTotal.Add(ctx, 1, attrs)
	m.resolveDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String("scope", scope),
	))
	if outcome != "ok" {
		return
	}
	if cacheHit {
		m.cacheHits.Add(ctx, 1)
	} else {
		m.cacheMisses.Add(ctx, 1)
	}
}

// RecordRegistration tracks the live registration gauge. Overwrites leave
// the count unchanged.
func (m *Metrics) RecordRegistration(ctx context.Context, replaced bool) {
	if replaced {
		return
	}
	m.registrations.Add(ctx, 1)
}

// RecordReset subtracts the dropped registrations from the gauge.
func (m *Metrics) RecordReset(ctx context.Context, dropped int) {
	m.registrations.Add(ctx, -int64(dropped))
}

// RecordCacheClear records one cache invalidation.
func (m *Metrics) RecordCacheClear(ctx context.Context, group string, count int) {
	m.cacheClears.Add(ctx, int64(count), metric.WithAttributes(
		attribute.String("group", group),
	))
}

// RecordTask records one tracked task execution.
func (m *Metrics) RecordTask(ctx context.Context, service, task, status string, duration time.Duration) {
	attrs := metric.WithAttributes(
		attribute.String("service", service),
		attribute.String("task", task),
		attribute.String("status", status),
	)
	m.taskTotal.Add(ctx, 1, attrs)
	m.taskDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String("service", service),
		attribute.String("task", task),
	))
}

// RecordLifecycleStage records the duration of a lifecycle stage for one
// managed service.
func (m *Metrics) RecordLifecycleStage(ctx context.Context, service, stage, status string, duration time.Duration) {
	m.lifecycleDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String("service", service),
		attribute.String("stage", stage),
		attribute.String("status", status),
	))
}
