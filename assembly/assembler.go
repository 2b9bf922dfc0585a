package assembly

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/skillsenselab/wirekit/config"
	"github.com/skillsenselab/wirekit/errors"
	"github.com/skillsenselab/wirekit/inspect"
	"github.com/skillsenselab/wirekit/lifecycle"
	"github.com/skillsenselab/wirekit/logger"
	"github.com/skillsenselab/wirekit/observability"
	"github.com/skillsenselab/wirekit/registry"
)

// Assembler wires a wirekit application together with a uniform
// lifecycle. The type parameter C is the config type, which must
// satisfy config.Provider. Any struct embedding config.Runtime
// automatically satisfies Provider.
//
// Example:
//
//	app, err := assembly.New("billing", "1.2.0", &cfg, billingAssembly)
//	app.Manage(registry.KeyOf[*Server](), registry.KeyOf[*Database]())
//	app.Run(context.Background())
type Assembler[C config.Provider] struct {
	Name      string
	Version   string
	Cfg       C
	Registry  *registry.Registry
	Lifecycle *lifecycle.Manager
	Logger    *logger.Logger
	Summary   *Summary

	assemblies      []Assembly
	gracefulTimeout time.Duration
	observers       []registry.Observer
	managed         []managedKey

	metrics        *observability.Metrics
	tracerProvider *sdktrace.TracerProvider
	meterProvider  *sdkmetric.MeterProvider
	inspectSrv     *inspect.Server

	onReady []Hook
	onStop  []Hook
}

// New creates an application assembler from a typed config.
// It loads configuration (file, env files, environment), applies
// defaults, validates, and initializes the logger and registry.
// The name and version arguments seed the runtime identity; values
// from the loaded configuration take precedence when present.
//
// Assemblies run later, during Run or RunTask, after telemetry and
// observers are in place so their registrations are observed.
func New[C config.Provider](name, version string, cfg C, assemblies ...Assembly) (*Assembler[C], error) {
	return NewWithOptions(name, version, cfg, nil, assemblies...)
}

// NewWithOptions is New with explicit options. Options must be known
// before configuration loads (config loader options, logger and
// registry overrides), which is why they cannot ride the assemblies
// variadic.
func NewWithOptions[C config.Provider](name, version string, cfg C, opts []Option, assemblies ...Assembly) (*Assembler[C], error) {
	o := resolveOptions(opts)

	// Seed identity before loading so a config file can override it
	// while absent keys fall back to the arguments.
	rt := cfg.GetRuntime()
	if rt.Name == "" {
		rt.Name = name
	}
	if rt.Version == "" {
		rt.Version = version
	}

	if err := config.Load(name, cfg, o.configOpts...); err != nil {
		return nil, err
	}
	rt = cfg.GetRuntime()

	app := &Assembler[C]{
		Name:            rt.Name,
		Version:         rt.Version,
		Cfg:             cfg,
		assemblies:      assemblies,
		gracefulTimeout: 15 * time.Second,
		observers:       o.observers,
		managed:         o.managed,
	}
	if o.gracefulTimeout != nil {
		app.gracefulTimeout = *o.gracefulTimeout
	}

	// Logger: use custom if provided, otherwise init from config.
	if o.logger != nil {
		app.Logger = o.logger
	} else {
		app.Logger = logger.New(&rt.Logging, rt.Name)
		logger.SetGlobalLogger(app.Logger)
	}

	// Registry: use custom if provided, otherwise create a fresh one.
	if o.registry != nil {
		app.Registry = o.registry
	} else {
		app.Registry = registry.New(registry.WithLogger(app.Logger.WithComponent("registry")))
	}

	app.Summary = NewSummary(rt.Name, rt.Version)
	return app, nil
}

// Manage places a registration under lifecycle management with the
// given start dependencies. Call before Run; managed services start in
// dependency order and stop in reverse.
func (a *Assembler[C]) Manage(key registry.Key, deps ...registry.Key) {
	a.managed = append(a.managed, managedKey{key: key, deps: deps})
}

// Run executes the full application lifecycle for long-running services:
// telemetry → observers → assemblies → managed services → inspect server →
// OnReady hooks → block on signal → OnStop hooks → graceful shutdown.
func (a *Assembler[C]) Run(ctx context.Context) error {
	if err := a.startup(ctx); err != nil {
		return err
	}

	// Block until shutdown signal
	a.Logger.Info("Application ready — waiting for shutdown signal")
	a.WaitForSignal(ctx)

	// Graceful shutdown
	return a.stop()
}

// RunTask executes a finite task with the full assembly lifecycle.
// Unlike Run(), it does not block on shutdown signals — it runs the task
// function and gracefully shuts down when the task completes or the context
// is canceled (e.g., via SIGINT/SIGTERM).
//
// Use RunTask for CLI tools, batch jobs, and one-shot processes that need
// the same infrastructure (config, logger, registry, managed services)
// but have a finite workflow instead of running forever.
//
// Example:
//
//	app, _ := assembly.New("reindex", "1.0.0", &cfg, searchAssembly)
//	app.RunTask(ctx, func(ctx context.Context) error {
//	    return rebuildIndex(ctx)
//	})
func (a *Assembler[C]) RunTask(ctx context.Context, task func(ctx context.Context) error) error {
	if err := a.startup(ctx); err != nil {
		return err
	}

	// Set up signal-based cancellation for the task
	taskCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	go func() {
		select {
		case sig := <-sigCh:
			a.Logger.Info("Received signal — canceling task", map[string]interface{}{
				"signal": sig.String(),
			})
			cancel()
		case <-taskCtx.Done():
		}
	}()

	// Execute the task as a tracked operation. The registry id doubles
	// as the run correlator across spans and log lines.
	op := observability.NewOperation(a.Name, "task", a.Registry.ID(), a.metrics)
	taskCtx = observability.WithOperation(taskCtx, op)
	taskCtx = logger.ContextWithRunID(taskCtx, a.Registry.ID())

	opCtx, span := op.StartSpan(taskCtx, observability.SpanTask)
	taskErr := task(opCtx)

	status := "ok"
	if taskErr != nil {
		status = "error"
	}
	op.End(opCtx, span, status, taskErr)

	// Graceful shutdown
	if stopErr := a.stop(); stopErr != nil {
		if taskErr != nil {
			return taskErr
		}
		return stopErr
	}

	return taskErr
}

// startup performs the common initialization sequence shared by Run and RunTask.
func (a *Assembler[C]) startup(ctx context.Context) error {
	start := time.Now()
	rt := a.Cfg.GetRuntime()

	a.Logger.Info("Starting application", map[string]interface{}{
		"name":        a.Name,
		"version":     a.Version,
		"environment": rt.Environment,
	})

	// Phase 1: Telemetry — tracer and meter providers, registry observers
	if err := a.initTelemetry(ctx, rt); err != nil {
		return err
	}

	// Phase 2: Assemble — run registration units against the registry
	if err := a.runAssemblies(); err != nil {
		return err
	}

	// Phase 3: Start — bring up managed services in dependency order
	a.Lifecycle = lifecycle.NewManager(a.Registry,
		lifecycle.WithLogger(a.Logger.WithComponent("lifecycle")),
		lifecycle.WithMetrics(a.metrics),
	)
	for _, m := range a.managed {
		a.Lifecycle.Add(m.key, m.deps...)
	}
	if err := a.Lifecycle.Start(ctx); err != nil {
		return fmt.Errorf("service startup failed: %w", err)
	}

	// Phase 4: Inspect — optional HTTP introspection server
	if rt.Inspect.Enabled {
		a.inspectSrv = inspect.New(rt.Inspect, a.Registry,
			inspect.WithServiceName(a.Name),
			inspect.WithHealthSource(a.Lifecycle),
			inspect.WithLogger(a.Logger.WithComponent("inspect")),
		)
		if err := a.inspectSrv.Start(ctx); err != nil {
			return fmt.Errorf("inspect server failed: %w", err)
		}
	}

	// Run OnReady hooks
	if err := runHooks(ctx, a.onReady); err != nil {
		return fmt.Errorf("onReady hook failed: %w", err)
	}

	// Display startup summary
	a.Summary.SetStartupDuration(time.Since(start))
	a.DisplaySummary()

	return nil
}

// initTelemetry initializes tracing and metrics per configuration and
// attaches the registry observers. The meter provider must exist before
// NewMetrics so instruments bind to it rather than the global no-op.
func (a *Assembler[C]) initTelemetry(ctx context.Context, rt *config.Runtime) error {
	if rt.Tracing.Enabled {
		tp, err := observability.InitTracer(ctx, rt.Tracing)
		if err != nil {
			return fmt.Errorf("tracing initialization failed: %w", err)
		}
		a.tracerProvider = tp
	}
	if rt.Metrics.Enabled {
		mp, err := observability.InitMeter(ctx, rt.Metrics)
		if err != nil {
			return fmt.Errorf("metrics initialization failed: %w", err)
		}
		a.meterProvider = mp
	}

	metrics, err := observability.NewMetrics(observability.Meter("wirekit"))
	if err != nil {
		return fmt.Errorf("metrics instruments failed: %w", err)
	}
	a.metrics = metrics

	a.Registry.AddObserver(observability.NewLogObserver(a.Logger.WithComponent("registry.events")))
	if rt.Metrics.Enabled {
		a.Registry.AddObserver(observability.NewMetricsObserver(a.metrics))
	}
	if rt.Tracing.Enabled {
		a.Registry.AddObserver(observability.NewTraceObserver(nil))
	}
	for _, obs := range a.observers {
		a.Registry.AddObserver(obs)
	}
	return nil
}

// runAssemblies executes each registration unit against the registry.
// A panicking assembly is converted to an INTERNAL_ERROR instead of
// crashing startup.
func (a *Assembler[C]) runAssemblies() error {
	if len(a.assemblies) == 0 {
		return nil
	}

	a.Logger.Info("Running assemblies", map[string]interface{}{
		"count": len(a.assemblies),
	})

	for i, asm := range a.assemblies {
		if err := a.runAssembly(asm); err != nil {
			return fmt.Errorf("assembly %d failed: %w", i, err)
		}
	}

	a.Logger.Info("Assembly complete", map[string]interface{}{
		"registrations": a.Registry.Len(),
	})
	return nil
}

func (a *Assembler[C]) runAssembly(asm Assembly) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.FromPanic(r)
		}
	}()
	return asm.Assemble(a.Registry)
}

// DisplaySummary prints the startup summary. It auto-collects
// registration and scope counts from the registry and health from the
// lifecycle manager.
func (a *Assembler[C]) DisplaySummary() {
	a.Summary.Display(a.Registry, a.Lifecycle, a.inspectSrv)
}

// WaitForSignal blocks until an OS interrupt/term signal or context cancellation.
func (a *Assembler[C]) WaitForSignal(ctx context.Context) os.Signal {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case sig := <-sigCh:
		a.Logger.Info("Received shutdown signal — graceful shutdown starting", map[string]interface{}{
			"signal": sig.String(),
		})
		return sig
	case <-ctx.Done():
		a.Logger.Info("Context canceled — shutting down")
		return nil
	}
}

// Shutdown performs graceful shutdown. Use when managing your own lifecycle.
func (a *Assembler[C]) Shutdown(ctx context.Context) error {
	return a.stop()
}

// stop gracefully shuts down hooks, the inspect server, managed
// services, and telemetry providers within the graceful timeout.
func (a *Assembler[C]) stop() error {
	a.Logger.Info("Shutting down application", map[string]interface{}{
		"timeout": a.gracefulTimeout.String(),
	})

	ctx, cancel := context.WithTimeout(context.Background(), a.gracefulTimeout)
	defer cancel()

	var shutdownErr error

	// Run OnStop hooks before stopping services
	if err := runHooks(ctx, a.onStop); err != nil {
		a.Logger.Error("OnStop hook error", map[string]interface{}{
			"error": err.Error(),
		})
		shutdownErr = err
	}

	// Stop the inspect server so health probes fail fast during drain
	if a.inspectSrv != nil {
		if err := a.inspectSrv.Stop(ctx); err != nil {
			a.Logger.Error("Inspect server stop error", map[string]interface{}{
				"error": err.Error(),
			})
			if shutdownErr == nil {
				shutdownErr = err
			}
		}
	}

	// Stop managed services (reverse order)
	if a.Lifecycle != nil {
		if err := a.Lifecycle.Stop(ctx); err != nil {
			a.Logger.Error("Shutdown completed with errors", map[string]interface{}{
				"error": err.Error(),
			})
			if shutdownErr == nil {
				shutdownErr = err
			}
		}
	}

	// Flush telemetry last so shutdown spans and counters still export
	if a.tracerProvider != nil {
		if err := a.tracerProvider.Shutdown(ctx); err != nil {
			a.Logger.Error("Tracer provider shutdown error", map[string]interface{}{
				"error": err.Error(),
			})
			if shutdownErr == nil {
				shutdownErr = err
			}
		}
	}
	if a.meterProvider != nil {
		if err := a.meterProvider.Shutdown(ctx); err != nil {
			a.Logger.Error("Meter provider shutdown error", map[string]interface{}{
				"error": err.Error(),
			})
			if shutdownErr == nil {
				shutdownErr = err
			}
		}
	}

	a.Logger.Info("Application shutdown complete")
	return shutdownErr
}
