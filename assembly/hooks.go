package assembly

import (
	"context"
	"fmt"
)

// Hook is a lifecycle callback that runs during application startup or
// shutdown. Assemblies register hooks to perform setup/teardown without
// the assembler knowing about specific infrastructure.
type Hook func(ctx context.Context) error

// OnReady registers a hook that runs after all managed services have
// started and the inspect server (if enabled) is listening, right
// before the startup summary is printed.
func (a *Assembler[C]) OnReady(hooks ...Hook) {
	a.onReady = append(a.onReady, hooks...)
}

// OnStop registers a hook that runs during graceful shutdown before
// managed services are stopped. Use this for cleanup tasks like
// draining connections or deregistering from service discovery.
func (a *Assembler[C]) OnStop(hooks ...Hook) {
	a.onStop = append(a.onStop, hooks...)
}

// runHooks executes a slice of hooks sequentially, returning the first error.
func runHooks(ctx context.Context, hooks []Hook) error {
	for i, h := range hooks {
		if err := h(ctx); err != nil {
			return fmt.Errorf("hook %d failed: %w", i, err)
		}
	}
	return nil
}
