package lifecycle

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/skillsenselab/wirekit/errors"
	"github.com/skillsenselab/wirekit/registry"
)

// fakeService implements Starter and Stopper and records call order
// through shared slices.
type fakeService struct {
	name       string
	startErr   error
	stopErr    error
	startOrder *[]string
	stopOrder  *[]string
}

func (s *fakeService) Start(ctx context.Context) error {
	if s.startOrder != nil {
		*s.startOrder = append(*s.startOrder, s.name)
	}
	return s.startErr
}

func (s *fakeService) Stop(ctx context.Context) error {
	if s.stopOrder != nil {
		*s.stopOrder = append(*s.stopOrder, s.name)
	}
	return s.stopErr
}

// reportingService only reports health.
type reportingService struct {
	health Health
}

func (s *reportingService) Health(ctx context.Context) Health { return s.health }

// plainService implements no lifecycle interfaces.
type plainService struct {
	id int
}

// deadlineProbe records whether Stop received a deadline-bounded context.
type deadlineProbe struct {
	sawDeadline bool
}

func (d *deadlineProbe) Stop(ctx context.Context) error {
	_, d.sawDeadline = ctx.Deadline()
	return nil
}

func managed(r *registry.Registry, name string, svc *fakeService) registry.Key {
	registry.RegisterNamedValue(r, name, svc)
	return registry.NamedKeyOf[*fakeService](name)
}

func TestNewManager(t *testing.T) {
	m := NewManager(registry.New())
	if m == nil {
		t.Fatal("expected non-nil manager")
	}
	if m.Len() != 0 {
		t.Errorf("expected empty manager, got %d services", m.Len())
	}
	if m.stopTimeout != DefaultStopTimeout {
		t.Errorf("stopTimeout = %v, want %v", m.stopTimeout, DefaultStopTimeout)
	}
}

func TestAddAndKeys(t *testing.T) {
	r := registry.New()
	m := NewManager(r)

	dbKey := managed(r, "db", &fakeService{name: "db"})
	cacheKey := managed(r, "cache", &fakeService{name: "cache"})
	m.Add(dbKey).Add(cacheKey, dbKey)

	if m.Len() != 2 {
		t.Fatalf("Len = %d, want 2", m.Len())
	}
	keys := m.Keys()
	if keys[0].Name != "cache" || keys[1].Name != "db" {
		t.Errorf("Keys not sorted: %v", keys)
	}
}

func TestAddReplacesDependencies(t *testing.T) {
	r := registry.New()
	m := NewManager(r)

	dbKey := managed(r, "db", &fakeService{name: "db"})
	cacheKey := managed(r, "cache", &fakeService{name: "cache"})

	m.Add(cacheKey, dbKey)
	m.Add(cacheKey)
	m.Add(dbKey)

	order, err := m.StartOrder()
	if err != nil {
		t.Fatalf("StartOrder failed: %v", err)
	}
	if len(order) != 1 {
		t.Errorf("expected a single level after dependency removal, got %d", len(order))
	}
}

func TestStartRespectsDependencyOrder(t *testing.T) {
	r := registry.New()
	m := NewManager(r)
	order := []string{}

	dbKey := managed(r, "db", &fakeService{name: "db", startOrder: &order})
	cacheKey := managed(r, "cache", &fakeService{name: "cache", startOrder: &order})
	serverKey := managed(r, "server", &fakeService{name: "server", startOrder: &order})

	m.Add(serverKey, dbKey, cacheKey)
	m.Add(cacheKey, dbKey)
	m.Add(dbKey)

	if err := m.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	want := []string{"db", "cache", "server"}
	if len(order) != len(want) {
		t.Fatalf("started %v, want %v", order, want)
	}
	for i, name := range want {
		if order[i] != name {
			t.Errorf("start order[%d] = %q, want %q", i, order[i], name)
		}
	}
}

func TestStartOrderLevels(t *testing.T) {
	r := registry.New()
	m := NewManager(r)

	aKey := managed(r, "a", &fakeService{name: "a"})
	bKey := managed(r, "b", &fakeService{name: "b"})
	cKey := managed(r, "c", &fakeService{name: "c"})

	m.Add(aKey)
	m.Add(bKey)
	m.Add(cKey, aKey, bKey)

	order, err := m.StartOrder()
	if err != nil {
		t.Fatalf("StartOrder failed: %v", err)
	}
	if len(order) != 2 {
		t.Fatalf("expected 2 levels, got %d", len(order))
	}
	if len(order[0]) != 2 {
		t.Errorf("level 0 = %v, want a and b", order[0])
	}
	if order[0][0].Name != "a" || order[0][1].Name != "b" {
		t.Errorf("level 0 not sorted: %v", order[0])
	}
	if len(order[1]) != 1 || order[1][0].Name != "c" {
		t.Errorf("level 1 = %v, want c", order[1])
	}
}

func TestStartFailureRollsBackStarted(t *testing.T) {
	r := registry.New()
	m := NewManager(r)
	starts := []string{}
	stops := []string{}

	dbKey := managed(r, "db", &fakeService{name: "db", startOrder: &starts, stopOrder: &stops})
	cacheKey := managed(r, "cache", &fakeService{
		name: "cache", startOrder: &starts, stopOrder: &stops,
		startErr: fmt.Errorf("connection refused"),
	})

	m.Add(dbKey)
	m.Add(cacheKey, dbKey)

	err := m.Start(context.Background())
	if !errors.IsCode(err, errors.ErrCodeStartFailed) {
		t.Fatalf("expected LIFECYCLE_START_FAILED, got %v", err)
	}
	if len(stops) != 1 || stops[0] != "db" {
		t.Errorf("expected db rolled back, got stops %v", stops)
	}

	// Rollback cleared the started list, so Stop has nothing to do.
	if err := m.Stop(context.Background()); err != nil {
		t.Errorf("Stop after rollback failed: %v", err)
	}
	if len(stops) != 1 {
		t.Errorf("expected no further stops, got %v", stops)
	}
}

func TestStartUnresolvableKeyFails(t *testing.T) {
	r := registry.New()
	m := NewManager(r)

	m.Add(registry.NamedKeyOf[*fakeService]("ghost"))

	err := m.Start(context.Background())
	if !errors.IsCode(err, errors.ErrCodeStartFailed) {
		t.Fatalf("expected LIFECYCLE_START_FAILED, got %v", err)
	}
	e, _ := errors.AsError(err)
	if !errors.IsCode(e.Cause, errors.ErrCodeNotRegistered) {
		t.Errorf("expected NOT_REGISTERED cause, got %v", e.Cause)
	}
}

func TestStartUnregisteredDependencyFails(t *testing.T) {
	r := registry.New()
	m := NewManager(r)

	serverKey := managed(r, "server", &fakeService{name: "server"})
	m.Add(serverKey, registry.NamedKeyOf[*plainService]("missing"))

	err := m.Start(context.Background())
	if !errors.IsCode(err, errors.ErrCodeNotRegistered) {
		t.Fatalf("expected NOT_REGISTERED, got %v", err)
	}
	e, _ := errors.AsError(err)
	if e.Details["required_by"] == nil {
		t.Error("expected required_by detail on dependency error")
	}
}

func TestStartRegisteredUnmanagedDependencyAllowed(t *testing.T) {
	r := registry.New()
	m := NewManager(r)

	registry.RegisterNamedValue(r, "pool", &plainService{id: 1})
	serverKey := managed(r, "server", &fakeService{name: "server"})
	m.Add(serverKey, registry.NamedKeyOf[*plainService]("pool"))

	if err := m.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
}

func TestStartCycleFails(t *testing.T) {
	r := registry.New()
	m := NewManager(r)

	aKey := managed(r, "a", &fakeService{name: "a"})
	bKey := managed(r, "b", &fakeService{name: "b"})
	m.Add(aKey, bKey)
	m.Add(bKey, aKey)

	err := m.Start(context.Background())
	if !errors.IsCode(err, errors.ErrCodeDependencyCycle) {
		t.Fatalf("expected DEPENDENCY_CYCLE, got %v", err)
	}
}

func TestStartTwiceSkipsStarted(t *testing.T) {
	r := registry.New()
	m := NewManager(r)
	starts := []string{}

	dbKey := managed(r, "db", &fakeService{name: "db", startOrder: &starts})
	m.Add(dbKey)

	if err := m.Start(context.Background()); err != nil {
		t.Fatalf("first Start failed: %v", err)
	}
	if err := m.Start(context.Background()); err != nil {
		t.Fatalf("second Start failed: %v", err)
	}
	if len(starts) != 1 {
		t.Errorf("expected 1 start call, got %d", len(starts))
	}
}

func TestStopReverseOrder(t *testing.T) {
	r := registry.New()
	m := NewManager(r)
	stops := []string{}

	dbKey := managed(r, "db", &fakeService{name: "db", stopOrder: &stops})
	cacheKey := managed(r, "cache", &fakeService{name: "cache", stopOrder: &stops})
	serverKey := managed(r, "server", &fakeService{name: "server", stopOrder: &stops})

	m.Add(dbKey)
	m.Add(cacheKey, dbKey)
	m.Add(serverKey, cacheKey)

	if err := m.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if err := m.Stop(context.Background()); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}

	want := []string{"server", "cache", "db"}
	for i, name := range want {
		if stops[i] != name {
			t.Errorf("stop order[%d] = %q, want %q", i, stops[i], name)
		}
	}
}

func TestStopWithoutStartIsNoop(t *testing.T) {
	r := registry.New()
	m := NewManager(r)
	stops := []string{}

	m.Add(managed(r, "db", &fakeService{name: "db", stopOrder: &stops}))

	if err := m.Stop(context.Background()); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}
	if len(stops) != 0 {
		t.Errorf("expected no stops, got %v", stops)
	}
}

func TestStopCollectsAllErrors(t *testing.T) {
	r := registry.New()
	m := NewManager(r)
	stops := []string{}

	m.Add(managed(r, "db", &fakeService{
		name: "db", stopOrder: &stops, stopErr: fmt.Errorf("db wedged"),
	}))
	m.Add(managed(r, "cache", &fakeService{
		name: "cache", stopOrder: &stops, stopErr: fmt.Errorf("cache wedged"),
	}))

	if err := m.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	err := m.Stop(context.Background())
	if !errors.IsCode(err, errors.ErrCodeStopFailed) {
		t.Fatalf("expected LIFECYCLE_STOP_FAILED, got %v", err)
	}
	if len(stops) != 2 {
		t.Errorf("expected both services attempted, got %v", stops)
	}
}

func TestStopAppliesTimeout(t *testing.T) {
	r := registry.New()
	m := NewManager(r, WithStopTimeout(50*time.Millisecond))

	probe := &deadlineProbe{}
	registry.RegisterNamedValue(r, "probe", probe)
	m.Add(registry.NamedKeyOf[*deadlineProbe]("probe"))

	if err := m.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if err := m.Stop(context.Background()); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}
	if !probe.sawDeadline {
		t.Error("expected Stop context to carry a deadline")
	}
}

func TestStartWithoutStarterJustResolves(t *testing.T) {
	r := registry.New()
	m := NewManager(r)

	registry.RegisterNamedValue(r, "plain", &plainService{id: 7})
	m.Add(registry.NamedKeyOf[*plainService]("plain"))

	if err := m.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	report := m.HealthAll(context.Background())
	if report.Status != StatusHealthy {
		t.Errorf("Status = %s, want healthy", report.Status)
	}
}

func TestHealthAllBeforeStart(t *testing.T) {
	r := registry.New()
	m := NewManager(r)
	m.Add(managed(r, "db", &fakeService{name: "db"}))

	report := m.HealthAll(context.Background())
	if report.Status != StatusUnhealthy {
		t.Errorf("Status = %s, want unhealthy before start", report.Status)
	}
	if len(report.Services) != 1 || report.Services[0].Message != "not started" {
		t.Errorf("unexpected services: %+v", report.Services)
	}
}

func TestHealthAllAggregates(t *testing.T) {
	r := registry.New()
	m := NewManager(r)

	registry.RegisterNamedValue(r, "db", &reportingService{
		health: Health{Name: "db", Status: StatusHealthy, Message: "connected"},
	})
	registry.RegisterNamedValue(r, "cache", &reportingService{
		health: Health{Name: "cache", Status: StatusDegraded, Message: "slow"},
	})
	m.Add(registry.NamedKeyOf[*reportingService]("db"))
	m.Add(registry.NamedKeyOf[*reportingService]("cache"))

	if err := m.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	report := m.HealthAll(context.Background())
	if report.Status != StatusDegraded {
		t.Errorf("Status = %s, want degraded", report.Status)
	}
	if len(report.Services) != 2 {
		t.Fatalf("expected 2 services, got %d", len(report.Services))
	}
}

func TestHealthAllFillsMissingName(t *testing.T) {
	r := registry.New()
	m := NewManager(r)

	registry.RegisterNamedValue(r, "anon", &reportingService{
		health: Health{Status: StatusHealthy},
	})
	key := registry.NamedKeyOf[*reportingService]("anon")
	m.Add(key)

	if err := m.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	report := m.HealthAll(context.Background())
	if report.Services[0].Name != key.String() {
		t.Errorf("Name = %q, want %q", report.Services[0].Name, key.String())
	}
}

func TestManagerOptions(t *testing.T) {
	m := NewManager(registry.New(), WithStopTimeout(0))
	if m.stopTimeout != DefaultStopTimeout {
		t.Errorf("zero timeout should be ignored, got %v", m.stopTimeout)
	}

	m2 := NewManager(registry.New(), WithStopTimeout(time.Second))
	if m2.stopTimeout != time.Second {
		t.Errorf("stopTimeout = %v, want 1s", m2.stopTimeout)
	}
}
