package registry

import (
	"strings"
	"testing"

	"github.com/skillsenselab/wirekit/errors"
)

func TestResolveSuccess(t *testing.T) {
	r := New()
	Register[testLogger](r, func() testLogger { return &consoleLogger{} })

	got, err := Resolve[testLogger](r)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Tag() != "console" {
		t.Errorf("expected console logger, got %q", got.Tag())
	}
}

func TestResolveNotRegistered(t *testing.T) {
	r := New()
	_, err := Resolve[testLogger](r)
	if err == nil {
		t.Fatal("expected error for missing registration")
	}
	if !errors.IsCode(err, errors.ErrCodeNotRegistered) {
		t.Errorf("expected NOT_REGISTERED, got %v", err)
	}
	if !strings.Contains(err.Error(), "registry.testLogger") {
		t.Errorf("expected error to name the key, got %q", err.Error())
	}
}

func TestResolveNamedMissIsDistinct(t *testing.T) {
	r := New()
	Register[testLogger](r, func() testLogger { return &consoleLogger{} })

	if _, err := ResolveNamed[testLogger](r, "audit"); err == nil {
		t.Error("expected named miss despite unnamed registration")
	}
	if _, err := Resolve[testLogger](r); err != nil {
		t.Errorf("expected unnamed hit, got %v", err)
	}
}

func TestResolveTypeMismatchViaAlias(t *testing.T) {
	r := New()
	// Re-indexing under a type the product does not satisfy is accepted
	// silently; the fault surfaces at resolution.
	Register[*consoleLogger](r, func() *consoleLogger { return &consoleLogger{} }).
		Implements(TypeOf[testClock]())

	_, err := Resolve[testClock](r)
	if err == nil {
		t.Fatal("expected type mismatch at resolution")
	}
	if !errors.IsCode(err, errors.ErrCodeTypeMismatch) {
		t.Errorf("expected TYPE_MISMATCH, got %v", err)
	}
	if !strings.Contains(err.Error(), "registry.testClock") {
		t.Errorf("expected error to name the wanted type, got %q", err.Error())
	}
}

func TestResolveNilProductFailsCoercion(t *testing.T) {
	r := New()
	Register[testLogger](r, func() testLogger { return nil })

	_, err := Resolve[testLogger](r)
	if err == nil {
		t.Fatal("expected error for nil product")
	}
	if !errors.IsCode(err, errors.ErrCodeTypeMismatch) {
		t.Errorf("expected TYPE_MISMATCH, got %v", err)
	}
}

func TestMustResolvePanicsOnMiss(t *testing.T) {
	r := New()
	defer func() {
		rec := recover()
		if rec == nil {
			t.Fatal("expected panic for missing registration")
		}
		e, ok := rec.(*errors.Error)
		if !ok {
			t.Fatalf("expected *errors.Error panic value, got %T", rec)
		}
		if e.Code != errors.ErrCodeNotRegistered {
			t.Errorf("expected NOT_REGISTERED, got %s", e.Code)
		}
	}()
	MustResolve[testLogger](r)
}

func TestMustResolveNamedPanicsOnMiss(t *testing.T) {
	r := New()
	Register[testLogger](r, func() testLogger { return &consoleLogger{} })

	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for missing named registration")
		}
	}()
	MustResolveNamed[testLogger](r, "audit")
}

func TestTryResolveHit(t *testing.T) {
	r := New()
	Register[testLogger](r, func() testLogger { return &consoleLogger{} })

	got, ok := TryResolve[testLogger](r)
	if !ok {
		t.Fatal("expected hit")
	}
	if got == nil {
		t.Error("expected non-nil instance")
	}
}

func TestTryResolveMissIsSilent(t *testing.T) {
	r := New()
	got, ok := TryResolve[testLogger](r)
	if ok {
		t.Error("expected miss")
	}
	if got != nil {
		t.Errorf("expected zero value on miss, got %v", got)
	}
}

func TestTryResolveNamed(t *testing.T) {
	r := New()
	RegisterNamed[testLogger](r, "audit", func() testLogger { return &fileLogger{} })

	if _, ok := TryResolveNamed[testLogger](r, "audit"); !ok {
		t.Error("expected named hit")
	}
	if _, ok := TryResolveNamed[testLogger](r, "other"); ok {
		t.Error("expected miss for unknown name")
	}
}

func TestStrictAndOptionalAgreeOnHit(t *testing.T) {
	r := New()
	Register[testLogger](r, func() testLogger { return &consoleLogger{} }).Scope(Singleton)

	strict := MustResolve[testLogger](r)
	soft, ok := TryResolve[testLogger](r)
	if !ok || strict != soft {
		t.Error("expected strict and optional resolution to observe the same singleton")
	}
}

func TestResolveValueTypeRegistration(t *testing.T) {
	r := New()
	Register[int](r, func() int { return 42 })

	n, err := Resolve[int](r)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 42 {
		t.Errorf("expected 42, got %d", n)
	}
}
