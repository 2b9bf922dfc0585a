package lifecycle

import (
	"context"
	stderrors "errors"
	"sync"
	"time"

	"github.com/skillsenselab/wirekit/errors"
	"github.com/skillsenselab/wirekit/graph"
	"github.com/skillsenselab/wirekit/logger"
	"github.com/skillsenselab/wirekit/observability"
	"github.com/skillsenselab/wirekit/registry"
	"github.com/skillsenselab/wirekit/util"
)

// DefaultStopTimeout bounds how long each service gets to stop before
// its context is cancelled.
const DefaultStopTimeout = 10 * time.Second

// Starter is implemented by managed services that need startup work.
type Starter interface {
	Start(ctx context.Context) error
}

// Stopper is implemented by managed services that release resources on
// shutdown.
type Stopper interface {
	Stop(ctx context.Context) error
}

// HealthReporter is implemented by managed services that report their
// own health.
type HealthReporter interface {
	Health(ctx context.Context) Health
}

// managedService tracks one managed key, its declared dependencies and
// the instance resolved at start.
type managedService struct {
	key      registry.Key
	deps     []registry.Key
	instance any
	started  bool
}

// Manager starts and stops services registered in a registry,
// respecting declared dependencies.
type Manager struct {
	reg         *registry.Registry
	log         *logger.Logger
	metrics     *observability.Metrics
	stopTimeout time.Duration

	mu       sync.Mutex
	services map[string]*managedService
	started  []string
}

// ManagerOption adjusts manager behavior.
type ManagerOption func(*Manager)

// WithLogger substitutes the manager's logger.
func WithLogger(log *logger.Logger) ManagerOption {
	return func(m *Manager) { m.log = log }
}

// WithMetrics attaches a metrics bundle; lifecycle stage durations are
// recorded through it.
func WithMetrics(metrics *observability.Metrics) ManagerOption {
	return func(m *Manager) { m.metrics = metrics }
}

// WithStopTimeout overrides the per-service stop timeout.
func WithStopTimeout(d time.Duration) ManagerOption {
	return func(m *Manager) {
		if d > 0 {
			m.stopTimeout = d
		}
	}
}

// NewManager creates a manager bound to the given registry.
func NewManager(reg *registry.Registry, opts ...ManagerOption) *Manager {
	m := &Manager{
		reg:         reg,
		log:         logger.Get("lifecycle"),
		stopTimeout: DefaultStopTimeout,
		services:    make(map[string]*managedService),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Add declares a managed key and the keys it depends on. Dependencies
// that are themselves managed impose start ordering; dependencies that
// are merely registered are checked for existence at start but not
// ordered. Re-adding a key replaces its dependency list.
func (m *Manager) Add(key registry.Key, deps ...registry.Key) *Manager {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.services[key.String()] = &managedService{
		key:  key,
		deps: append([]registry.Key(nil), deps...),
	}
	return m
}

// Len returns the number of managed keys.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.services)
}

// Keys returns the managed keys sorted by their rendered identity.
func (m *Manager) Keys() []registry.Key {
	m.mu.Lock()
	defer m.mu.Unlock()

	names := util.SortedKeys(m.services)
	keys := make([]registry.Key, len(names))
	for i, name := range names {
		keys[i] = m.services[name].key
	}
	return keys
}

// StartOrder returns the managed keys grouped into start levels:
// everything in level i depends only on keys in earlier levels. It
// fails when the declared dependencies contain a cycle or reference an
// unregistered key.
func (m *Manager) StartOrder() ([][]registry.Key, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	levels, err := m.levelsLocked()
	if err != nil {
		return nil, err
	}
	order := make([][]registry.Key, len(levels))
	for i, level := range levels {
		keys := make([]registry.Key, len(level))
		for j, name := range level {
			keys[j] = m.services[name].key
		}
		order[i] = keys
	}
	return order, nil
}

// Start resolves and starts every managed service in dependency order.
// On the first failure the services started so far are stopped again
// in reverse order and the start error is returned.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	levels, err := m.levelsLocked()
	if err != nil {
		return err
	}

	m.log.Info("starting managed services", map[string]interface{}{
		"count":  len(m.services),
		"levels": len(levels),
	})

	for _, level := range levels {
		for _, name := range level {
			svc := m.services[name]
			if svc.started {
				continue
			}
			if err := m.startOne(ctx, svc); err != nil {
				if stopErr := m.stopStartedLocked(ctx); stopErr != nil {
					m.log.Error("rollback after failed start left services dirty", map[string]interface{}{
						"error": stopErr.Error(),
					})
				}
				return err
			}
		}
	}

	m.log.Info("all managed services started", map[string]interface{}{
		"count": len(m.started),
	})
	return nil
}

// Stop shuts down started services in reverse start order. Every
// service is attempted even when earlier ones fail; the errors are
// joined.
func (m *Manager) Stop(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.started) == 0 {
		return nil
	}
	m.log.Info("stopping managed services", map[string]interface{}{
		"count": len(m.started),
	})
	err := m.stopStartedLocked(ctx)
	if err == nil {
		m.log.Info("all managed services stopped")
	}
	return err
}

// HealthAll collects per-service health in sorted key order and folds
// it into an overall report. Services that have not started report
// unhealthy; started services without a HealthReporter count as
// healthy.
func (m *Manager) HealthAll(ctx context.Context) Report {
	m.mu.Lock()
	defer m.mu.Unlock()

	names := util.SortedKeys(m.services)

	services := make([]Health, 0, len(names))
	for _, name := range names {
		services = append(services, m.healthOf(ctx, m.services[name]))
	}
	return NewReport(services)
}

func (m *Manager) healthOf(ctx context.Context, svc *managedService) Health {
	if !svc.started {
		return Health{Name: svc.key.String(), Status: StatusUnhealthy, Message: "not started"}
	}
	if hr, ok := svc.instance.(HealthReporter); ok {
		h := hr.Health(ctx)
		if h.Name == "" {
			h.Name = svc.key.String()
		}
		if h.Status == "" {
			h.Status = StatusHealthy
		}
		return h
	}
	return Health{Name: svc.key.String(), Status: StatusHealthy}
}

// levelsLocked builds the dependency graph over managed keys and
// returns its levels. Unmanaged dependencies only assert registration.
func (m *Manager) levelsLocked() ([][]string, error) {
	g := graph.New()
	for name, svc := range m.services {
		g.AddNode(name)
		for _, dep := range svc.deps {
			depName := dep.String()
			if _, managed := m.services[depName]; managed {
				g.AddEdge(depName, name)
				continue
			}
			if !m.reg.Has(dep) {
				return nil, errors.NotRegistered(depName).WithDetail("required_by", name)
			}
		}
	}
	return g.Levels()
}

func (m *Manager) startOne(ctx context.Context, svc *managedService) error {
	sctx, span := observability.StartSpan(ctx, observability.SpanLifecycleStart)
	defer span.End()
	observability.SetSpanAttribute(sctx, observability.AttrKey, svc.key.String())

	begin := time.Now()
	instance, err := m.reg.Lookup(svc.key)
	if err != nil {
		m.recordStage(sctx, svc, "start", "error", time.Since(begin))
		observability.SetSpanError(sctx, err)
		return errors.StartFailed(svc.key.String(), err)
	}
	svc.instance = instance

	if starter, ok := instance.(Starter); ok {
		if err := starter.Start(sctx); err != nil {
			m.recordStage(sctx, svc, "start", "error", time.Since(begin))
			observability.SetSpanError(sctx, err)
			m.log.Error("managed service failed to start", map[string]interface{}{
				"service": svc.key.String(),
				"error":   err.Error(),
			})
			return errors.StartFailed(svc.key.String(), err)
		}
	}

	svc.started = true
	m.started = append(m.started, svc.key.String())
	m.recordStage(sctx, svc, "start", "ok", time.Since(begin))
	m.log.Debug("managed service started", map[string]interface{}{
		"service":     svc.key.String(),
		"duration_ms": time.Since(begin).Milliseconds(),
	})
	return nil
}

// stopStartedLocked stops services in reverse start order and clears
// the started list. It must be called with m.mu held.
func (m *Manager) stopStartedLocked(ctx context.Context) error {
	var errs []error
	for i := len(m.started) - 1; i >= 0; i-- {
		svc := m.services[m.started[i]]
		if svc == nil || !svc.started {
			continue
		}
		if err := m.stopOne(ctx, svc); err != nil {
			errs = append(errs, err)
		}
	}
	m.started = nil
	return stderrors.Join(errs...)
}

func (m *Manager) stopOne(ctx context.Context, svc *managedService) error {
	sctx, span := observability.StartSpan(ctx, observability.SpanLifecycleStop)
	defer span.End()
	observability.SetSpanAttribute(sctx, observability.AttrKey, svc.key.String())

	begin := time.Now()
	svc.started = false

	stopper, ok := svc.instance.(Stopper)
	if !ok {
		m.recordStage(sctx, svc, "stop", "ok", time.Since(begin))
		return nil
	}

	stopCtx, cancel := context.WithTimeout(sctx, m.stopTimeout)
	defer cancel()

	if err := stopper.Stop(stopCtx); err != nil {
		m.recordStage(sctx, svc, "stop", "error", time.Since(begin))
		observability.SetSpanError(sctx, err)
		m.log.Error("managed service failed to stop", map[string]interface{}{
			"service": svc.key.String(),
			"error":   err.Error(),
		})
		return errors.StopFailed(svc.key.String(), err)
	}

	m.recordStage(sctx, svc, "stop", "ok", time.Since(begin))
	m.log.Debug("managed service stopped", map[string]interface{}{
		"service": svc.key.String(),
	})
	return nil
}

func (m *Manager) recordStage(ctx context.Context, svc *managedService, stage, status string, d time.Duration) {
	if m.metrics == nil {
		return
	}
	m.metrics.RecordLifecycleStage(ctx, svc.key.String(), stage, status, d)
}
