package registry

import "time"

// Op identifies a registry operation in an observer event.
type Op string

const (
	OpRegister   Op = "register"
	OpResolve    Op = "resolve"
	OpClearCache Op = "clear_cache"
	OpReset      Op = "reset"
)

// Event describes one completed registry operation. Err is set when a
// resolution misses or the produced value cannot be coerced to the
// requested type; optional lookups report their misses the same way.
type Event struct {
	Registry string
	Op       Op
	Key      Key
	Scope    Scope
	Group    string
	CacheHit bool
	// Replaced is set on register events that overwrote a prior factory.
	Replaced bool
	// Count carries the affected registration or instance count for
	// clear_cache and reset events.
	Count    int
	Err      error
	Duration time.Duration
}

// Observer receives registry events. Implementations must be safe for
// concurrent use; they are invoked synchronously after the operation
// completes, outside registry locks, and cannot alter outcomes.
type Observer interface {
	Observe(ev Event)
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(ev Event)

func (f ObserverFunc) Observe(ev Event) { f(ev) }
