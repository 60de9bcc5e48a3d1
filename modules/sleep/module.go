// Package sleep provides a task runner that simply waits for a configured
// duration. It is the canonical "long-running work" stand-in for scenarios
// whose interesting behavior lives in the sources and invariants.
package sleep

import (
	"context"
	"time"

	"github.com/zclconf/go-cty/cty"

	"github.com/vk/vigilgo/internal/ctxlog"
	"github.com/vk/vigilgo/internal/registry"
	"github.com/vk/vigilgo/internal/state"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// OnRunSleep is the handler for the 'sleep' task runner.
func OnRunSleep(ctx context.Context, _ *state.Store[cty.Value], args registry.Args) error {
	logger := ctxlog.FromContext(ctx)

	duration, ok := args.Duration("duration")
	if !ok {
		logger.Warn("Failed to parse duration, using default 1s")
		duration = time.Second
	}
	logger.Debug("Sleep task started.", "duration", duration)

	timer := time.NewTimer(duration)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		logger.Debug("Sleep task finished.")
		return nil
	}
}

// Register registers the handler with the engine.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterTask("sleep", OnRunSleep)
}
