// Package ticker provides a state source that periodically applies a numeric
// step to one state key. It is the simplest way to drive state in demos and
// integration scenarios.
package ticker

import (
	"context"
	"time"

	"github.com/zclconf/go-cty/cty"

	"github.com/vk/vigilgo/internal/ctxlog"
	"github.com/vk/vigilgo/internal/ctystate"
	"github.com/vk/vigilgo/internal/registry"
	"github.com/vk/vigilgo/internal/state"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// OnRunTicker is the handler for the 'ticker' source runner.
func OnRunTicker(ctx context.Context, store *state.Store[cty.Value], args registry.Args) error {
	logger := ctxlog.FromContext(ctx)

	key, ok := args.String("key")
	if !ok {
		key = "ticks"
	}
	interval, ok := args.Duration("interval")
	if !ok {
		logger.Warn("Failed to parse interval, using default 1s")
		interval = time.Second
	}
	step, ok := args.Number("step")
	if !ok {
		step = 1
	}
	logger.Debug("Ticker source started.", "key", key, "interval", interval, "step", step)

	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
			store.Update(func(s cty.Value) cty.Value {
				return ctystate.AddNumber(s, key, step)
			})
		}
	}
}

// Register registers the handler with the engine.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterSource("ticker", OnRunTicker)
}
