package registry

import (
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/skillsenselab/wirekit/errors"
)

// Shared test fixtures.

type testLogger interface{ Tag() string }

type consoleLogger struct{ id int }

func (c *consoleLogger) Tag() string { return "console" }

type fileLogger struct{ path string }

func (f *fileLogger) Tag() string { return "file" }

type testClock interface{ Tick() int }

type systemClock struct{ seq int }

func (s *systemClock) Tick() int { return s.seq }

func TestNew(t *testing.T) {
	r := New()
	if r == nil {
		t.Fatal("expected non-nil registry")
	}
	if r.ID() == "" {
		t.Error("expected a non-empty registry id")
	}
	if r.Len() != 0 {
		t.Errorf("expected empty registry, got %d keys", r.Len())
	}
}

func TestTransientYieldsDistinctInstances(t *testing.T) {
	r := New()
	Register[testClock](r, func() testClock { return &systemClock{} })

	a := MustResolve[testClock](r)
	b := MustResolve[testClock](r)
	if a == b {
		t.Error("expected transient resolutions to yield distinct instances")
	}
}

func TestSingletonYieldsSameInstance(t *testing.T) {
	r := New()
	Register[testLogger](r, func() testLogger { return &consoleLogger{} }).Scope(Singleton)

	a := MustResolve[testLogger](r)
	b := MustResolve[testLogger](r)
	if a != b {
		t.Error("expected singleton resolutions to yield the same instance")
	}
}

func TestSingletonCreatesOnce(t *testing.T) {
	r := New()
	calls := 0
	Register[testLogger](r, func() testLogger {
		calls++
		return &consoleLogger{id: calls}
	}).Scope(Singleton)

	MustResolve[testLogger](r)
	MustResolve[testLogger](r)
	if calls != 1 {
		t.Errorf("expected one creation, got %d", calls)
	}
}

func TestCachedScopeUntilCleared(t *testing.T) {
	r := New()
	calls := 0
	Register[testClock](r, func() testClock {
		calls++
		return &systemClock{seq: calls}
	}).Scope(Cached("session"))

	a := MustResolve[testClock](r)
	b := MustResolve[testClock](r)
	if a != b {
		t.Error("expected cached resolutions to yield the same instance")
	}
	if calls != 1 {
		t.Fatalf("expected one creation before clear, got %d", calls)
	}

	r.ClearCached("session")

	c := MustResolve[testClock](r)
	if c == a {
		t.Error("expected a fresh instance after clearing the group")
	}
	if calls != 2 {
		t.Errorf("expected a second creation after clear, got %d", calls)
	}
}

func TestClearCachedGroupPrecision(t *testing.T) {
	r := New()
	sessionCalls, reportCalls, singletonCalls := 0, 0, 0

	RegisterNamed[testClock](r, "session", func() testClock {
		sessionCalls++
		return &systemClock{}
	}).Scope(Cached("session"))
	RegisterNamed[testClock](r, "report", func() testClock {
		reportCalls++
		return &systemClock{}
	}).Scope(Cached("report"))
	RegisterNamed[testClock](r, "forever", func() testClock {
		singletonCalls++
		return &systemClock{}
	}).Scope(Singleton)

	MustResolveNamed[testClock](r, "session")
	MustResolveNamed[testClock](r, "report")
	MustResolveNamed[testClock](r, "forever")

	r.ClearCached("session")

	MustResolveNamed[testClock](r, "session")
	MustResolveNamed[testClock](r, "report")
	MustResolveNamed[testClock](r, "forever")

	if sessionCalls != 2 {
		t.Errorf("expected cached(session) to be re-created, got %d calls", sessionCalls)
	}
	if reportCalls != 1 {
		t.Errorf("expected cached(report) to be untouched, got %d calls", reportCalls)
	}
	if singletonCalls != 1 {
		t.Errorf("expected singleton to be untouched, got %d calls", singletonCalls)
	}
}

func TestClearAllCachedSparesSingletons(t *testing.T) {
	r := New()
	cachedCalls, singletonCalls := 0, 0

	RegisterNamed[testClock](r, "a", func() testClock {
		cachedCalls++
		return &systemClock{}
	}).Scope(Cached("a"))
	RegisterNamed[testClock](r, "b", func() testClock {
		cachedCalls++
		return &systemClock{}
	}).Scope(Cached("b"))
	RegisterNamed[testClock](r, "s", func() testClock {
		singletonCalls++
		return &systemClock{}
	}).Scope(Singleton)

	MustResolveNamed[testClock](r, "a")
	MustResolveNamed[testClock](r, "b")
	MustResolveNamed[testClock](r, "s")

	r.ClearAllCached()

	MustResolveNamed[testClock](r, "a")
	MustResolveNamed[testClock](r, "b")
	MustResolveNamed[testClock](r, "s")

	if cachedCalls != 4 {
		t.Errorf("expected both cached groups re-created, got %d calls", cachedCalls)
	}
	if singletonCalls != 1 {
		t.Errorf("expected singleton spared by ClearAllCached, got %d calls", singletonCalls)
	}
}

func TestClearCachedUnknownGroupIsNoop(t *testing.T) {
	r := New()
	calls := 0
	Register[testClock](r, func() testClock {
		calls++
		return &systemClock{}
	}).Scope(Cached("real"))

	MustResolve[testClock](r)
	r.ClearCached("no-such-group")
	MustResolve[testClock](r)

	if calls != 1 {
		t.Errorf("expected unknown group clear to be a no-op, got %d calls", calls)
	}
}

func TestRegisterOverwriteLastWriteWins(t *testing.T) {
	r := New()
	Register[testLogger](r, func() testLogger { return &consoleLogger{} })
	Register[testLogger](r, func() testLogger { return &fileLogger{path: "/tmp/x"} })

	if r.Len() != 1 {
		t.Fatalf("expected exactly one live registration, got %d", r.Len())
	}
	got := MustResolve[testLogger](r)
	if got.Tag() != "file" {
		t.Errorf("expected the most recent registration to win, got %q", got.Tag())
	}
}

func TestNamedRegistrationsIndependent(t *testing.T) {
	r := New()
	Register[testLogger](r, func() testLogger { return &consoleLogger{} })
	RegisterNamed[testLogger](r, "audit", func() testLogger { return &fileLogger{} })

	if r.Len() != 2 {
		t.Fatalf("expected two independent registrations, got %d", r.Len())
	}
	if MustResolve[testLogger](r).Tag() != "console" {
		t.Error("expected unnamed key to resolve the unnamed registration")
	}
	if MustResolveNamed[testLogger](r, "audit").Tag() != "file" {
		t.Error("expected named key to resolve the named registration")
	}
}

func TestReset(t *testing.T) {
	r := New()
	Register[testLogger](r, func() testLogger { return &consoleLogger{} })
	Register[testClock](r, func() testClock { return &systemClock{} })

	r.Reset()

	if r.Len() != 0 {
		t.Errorf("expected empty registry after reset, got %d keys", r.Len())
	}
	if _, ok := TryResolve[testLogger](r); ok {
		t.Error("expected resolutions to miss after reset")
	}
}

func TestScopeSwitchLeavesCacheInPlace(t *testing.T) {
	r := New()
	calls := 0
	h := Register[testLogger](r, func() testLogger {
		calls++
		return &consoleLogger{id: calls}
	}).Scope(Singleton)

	cached := MustResolve[testLogger](r)

	// Switching to transient leaves the cached instance as garbage, no
	// longer consulted.
	h.Scope(Transient)
	a := MustResolve[testLogger](r)
	b := MustResolve[testLogger](r)
	if a == cached || b == cached || a == b {
		t.Error("expected transient resolutions to bypass the stale cache")
	}

	// Switching back to a caching scope exposes the retained instance
	// again; the switch itself neither clears nor populates the cache.
	h.Scope(Singleton)
	back := MustResolve[testLogger](r)
	if back != cached {
		t.Error("expected the retained cached instance after restoring a caching scope")
	}
}

func TestConcurrentSingletonFirstAccess(t *testing.T) {
	r := New()
	var creations atomic.Int64
	Register[testLogger](r, func() testLogger {
		creations.Add(1)
		return &consoleLogger{}
	}).Scope(Singleton)

	const workers = 50
	var wg sync.WaitGroup
	start := make(chan struct{})
	results := make([]testLogger, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			<-start
			results[idx] = MustResolve[testLogger](r)
		}(i)
	}
	close(start)
	wg.Wait()

	if n := creations.Load(); n != 1 {
		t.Fatalf("expected exactly one creation under concurrent first access, got %d", n)
	}
	first := results[0]
	for i, got := range results {
		if got != first {
			t.Fatalf("worker %d observed a different instance", i)
		}
	}
}

func TestConcurrentMixedOperations(t *testing.T) {
	r := New()
	Register[testClock](r, func() testClock { return &systemClock{} }).Scope(Cached("grp"))
	Register[testLogger](r, func() testLogger { return &consoleLogger{} }).Scope(Singleton)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				switch n % 4 {
				case 0:
					MustResolve[testClock](r)
				case 1:
					MustResolve[testLogger](r)
				case 2:
					r.ClearCached("grp")
				default:
					RegisterNamed[testClock](r, fmt.Sprintf("w%d", n), func() testClock { return &systemClock{} })
				}
			}
		}(i)
	}
	wg.Wait()

	// The registry must stay consistent after the storm.
	if _, ok := TryResolve[testLogger](r); !ok {
		t.Error("expected singleton to remain resolvable")
	}
}

func TestLookupInvalidKey(t *testing.T) {
	r := New()
	_, err := r.Lookup(Key{})
	if err == nil {
		t.Fatal("expected error for invalid key")
	}
	if !errors.IsCode(err, errors.ErrCodeInvalidKey) {
		t.Errorf("expected INVALID_KEY, got %v", err)
	}
}

func TestHasAndLen(t *testing.T) {
	r := New()
	if r.Has(KeyOf[testLogger]()) {
		t.Error("expected Has to be false before registration")
	}
	Register[testLogger](r, func() testLogger { return &consoleLogger{} })
	if !r.Has(KeyOf[testLogger]()) {
		t.Error("expected Has to be true after registration")
	}
	if r.Len() != 1 {
		t.Errorf("expected Len 1, got %d", r.Len())
	}
}

func TestSnapshotDeterministicOrder(t *testing.T) {
	r := New()
	RegisterNamed[testClock](r, "b", func() testClock { return &systemClock{} })
	RegisterNamed[testClock](r, "a", func() testClock { return &systemClock{} }).Scope(Singleton)
	Register[testLogger](r, func() testLogger { return &consoleLogger{} }).Scope(Cached("g"))

	first := r.Snapshot()
	second := r.Snapshot()
	if len(first) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(first))
	}
	for i := range first {
		if first[i].Key != second[i].Key {
			t.Fatal("expected snapshot order to be deterministic")
		}
	}
	for i := 1; i < len(first); i++ {
		if first[i-1].Key.String() > first[i].Key.String() {
			t.Fatal("expected snapshot sorted by rendered key")
		}
	}
}

func TestSnapshotTracksCacheAndResolves(t *testing.T) {
	r := New()
	Register[testLogger](r, func() testLogger { return &consoleLogger{} }).Scope(Singleton)

	key := KeyOf[testLogger]()
	info, ok := r.Inspect(key)
	if !ok {
		t.Fatal("expected Inspect to find the registration")
	}
	if info.Cached {
		t.Error("expected no cached instance before first resolution")
	}
	if info.Resolves != 0 {
		t.Errorf("expected zero resolves, got %d", info.Resolves)
	}

	MustResolve[testLogger](r)
	MustResolve[testLogger](r)

	info, _ = r.Inspect(key)
	if !info.Cached {
		t.Error("expected cached instance after resolution")
	}
	if info.Resolves != 2 {
		t.Errorf("expected 2 resolves, got %d", info.Resolves)
	}
	if !info.Scope.IsSingleton() {
		t.Errorf("expected singleton scope, got %s", info.Scope)
	}
}

func TestInspectMissingKey(t *testing.T) {
	r := New()
	if _, ok := r.Inspect(KeyOf[testClock]()); ok {
		t.Error("expected Inspect to report a missing key")
	}
}

func TestKeysSorted(t *testing.T) {
	r := New()
	RegisterNamed[testClock](r, "z", func() testClock { return &systemClock{} })
	RegisterNamed[testClock](r, "a", func() testClock { return &systemClock{} })

	keys := r.Keys()
	if len(keys) != 2 {
		t.Fatalf("expected 2 keys, got %d", len(keys))
	}
	if keys[0].String() > keys[1].String() {
		t.Error("expected keys in sorted order")
	}
}

func TestDefaultRegistry(t *testing.T) {
	orig := Default()
	defer SetDefault(orig)

	if Default() == nil {
		t.Fatal("expected a process-wide default registry")
	}

	r := New()
	SetDefault(r)
	if Default() != r {
		t.Error("expected SetDefault to swap the default registry")
	}

	SetDefault(nil)
	if Default() != r {
		t.Error("expected SetDefault(nil) to be ignored")
	}

	Register[testLogger](Default(), func() testLogger { return &consoleLogger{} })
	Reset()
	if Default().Len() != 0 {
		t.Error("expected package-level Reset to empty the default registry")
	}
}

func TestPackageLevelCacheClears(t *testing.T) {
	orig := Default()
	defer SetDefault(orig)
	SetDefault(New())

	calls := 0
	Register[testClock](Default(), func() testClock {
		calls++
		return &systemClock{}
	}).Scope(Cached("boot"))

	MustResolve[testClock](Default())
	ClearCached("boot")
	MustResolve[testClock](Default())
	ClearAllCached()
	MustResolve[testClock](Default())

	if calls != 3 {
		t.Errorf("expected three creations across package-level clears, got %d", calls)
	}
}
